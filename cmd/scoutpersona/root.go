// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/tomtom215/scoutpersona/internal/config"
	"github.com/tomtom215/scoutpersona/internal/logging"
)

// flagValues holds the persistent flags shared by every command.
type flagValues struct {
	configPath string
	targets    string
	missions   string
	tasks      string
	outDir     string
	start      string
	end        string
	workers    int
	logLevel   string
}

var flags flagValues

var rootCmd = &cobra.Command{
	Use:   "scoutpersona",
	Short: "Reconnaissance persona and recommendation pipeline",
	Long: `scoutpersona mines reconnaissance mission history for requester
personas and target profiles, recommends virtual tasks and generates
demand combinations.

Batch Commands:
  run        Run the selected stages (default: all)
  persona    Build requester personas
  profile    Build target profiles
  recommend  Recommend virtual tasks
  demand     Generate demand combinations

Service Commands:
  serve      Serve stored results and run the pipeline on a schedule
  version    Show version information`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command and logs a failure.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return err
	}
	return nil
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flags.configPath, "config", "", "Config file (default: ./config.yaml or $"+config.ConfigPathEnvVar+")")
	pf.StringVar(&flags.targets, "targets", "", "Targets JSON file")
	pf.StringVar(&flags.missions, "missions", "", "Missions JSON file")
	pf.StringVar(&flags.tasks, "tasks", "", "Virtual tasks JSON file")
	pf.StringVar(&flags.outDir, "out-dir", "", "Directory for output documents")
	pf.StringVar(&flags.start, "start", "", `Window start, "2006-01-02 15:04:05"`)
	pf.StringVar(&flags.end, "end", "", `Window end, "2006-01-02 15:04:05"`)
	pf.IntVar(&flags.workers, "workers", 0, "Worker goroutines (0 = GOMAXPROCS)")
	pf.StringVar(&flags.logLevel, "log-level", "", "Log level (debug, info, warn, error)")
}

// loadConfig loads the layered configuration, applies flags that were set
// explicitly and initializes logging.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load(flags.configPath)
	if err != nil {
		return nil, fmt.Errorf("load configuration: %w", err)
	}
	applyFlags(cmd, cfg, flags)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logging.Init(cfg.Logging)
	return cfg, nil
}

// applyFlags copies every changed persistent flag onto cfg.
func applyFlags(cmd *cobra.Command, cfg *config.Config, v flagValues) {
	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("targets") {
		cfg.Pipeline.TargetsPath = v.targets
	}
	if changed("missions") {
		cfg.Pipeline.MissionsPath = v.missions
	}
	if changed("tasks") {
		cfg.Pipeline.TasksPath = v.tasks
	}
	if changed("out-dir") {
		cfg.Pipeline.OutputDir = v.outDir
	}
	if changed("start") {
		cfg.Pipeline.Start = v.start
	}
	if changed("end") {
		cfg.Pipeline.End = v.end
	}
	if changed("workers") {
		cfg.Pipeline.Workers = v.workers
	}
	if changed("log-level") {
		cfg.Logging.Level = v.logLevel
	}
}
