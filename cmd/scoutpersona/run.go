// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tomtom215/scoutpersona/internal/pipeline"
)

var stageNames []string

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run pipeline stages",
	Long: `Run the selected pipeline stages in order: persona, profile,
recommend, demand. Stages whose inputs were not built in the same run
read the previous documents from the output directory.

Examples:
  scoutpersona run
  scoutpersona run --stages persona,profile
  scoutpersona run --start "2025-01-01 00:00:00" --end "2025-03-31 23:59:59"`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		stages, err := parseStages(stageNames)
		if err != nil {
			return err
		}
		return runStages(cmd, stages)
	},
}

func init() {
	runCmd.Flags().StringSliceVar(&stageNames, "stages", nil, "Comma-separated stages (default: all)")
	rootCmd.AddCommand(runCmd)

	for _, sc := range []struct {
		stage pipeline.Stage
		short string
	}{
		{pipeline.StagePersona, "Build requester personas"},
		{pipeline.StageProfile, "Build target profiles"},
		{pipeline.StageRecommend, "Recommend virtual tasks from the persona and profile documents"},
		{pipeline.StageDemand, "Generate demand combinations from the profile document"},
	} {
		stage := sc.stage
		rootCmd.AddCommand(&cobra.Command{
			Use:   string(stage),
			Short: sc.short,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return runStages(cmd, []pipeline.Stage{stage})
			},
		})
	}
}

func parseStages(names []string) ([]pipeline.Stage, error) {
	stages := make([]pipeline.Stage, 0, len(names))
	for _, name := range names {
		s, err := pipeline.ParseStage(name)
		if err != nil {
			return nil, err
		}
		stages = append(stages, s)
	}
	return stages, nil
}

func runStages(cmd *cobra.Command, stages []pipeline.Stage) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	summary, err := a.pipeline.Run(ctx, stages...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s (version %s) finished in %s\n", summary.RunID, summary.Version, summary.Duration)
	for _, path := range summary.Outputs {
		fmt.Fprintf(out, "  wrote %s\n", path)
	}
	return nil
}
