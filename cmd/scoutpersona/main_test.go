// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package main

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"

	"github.com/tomtom215/scoutpersona/internal/config"
	"github.com/tomtom215/scoutpersona/internal/dataset"
	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/pipeline"
)

func TestApplyFlags(t *testing.T) {
	t.Parallel()

	var v flagValues
	cmd := &cobra.Command{Use: "test"}
	cmd.Flags().StringVar(&v.targets, "targets", "", "")
	cmd.Flags().StringVar(&v.missions, "missions", "", "")
	cmd.Flags().StringVar(&v.outDir, "out-dir", "", "")
	cmd.Flags().StringVar(&v.start, "start", "", "")
	cmd.Flags().IntVar(&v.workers, "workers", 0, "")

	for name, value := range map[string]string{
		"targets": "in/t.json",
		"start":   "2025-01-01 00:00:00",
		"workers": "3",
	} {
		if err := cmd.Flags().Set(name, value); err != nil {
			t.Fatalf("Set(%s) error = %v", name, err)
		}
	}

	cfg := config.DefaultConfig()
	applyFlags(cmd, cfg, v)

	if cfg.Pipeline.TargetsPath != "in/t.json" {
		t.Errorf("TargetsPath = %q, want in/t.json", cfg.Pipeline.TargetsPath)
	}
	if cfg.Pipeline.Start != "2025-01-01 00:00:00" || cfg.Pipeline.Workers != 3 {
		t.Errorf("Start = %q, Workers = %d", cfg.Pipeline.Start, cfg.Pipeline.Workers)
	}
	// Unset flags keep the loaded configuration.
	def := config.DefaultConfig()
	if cfg.Pipeline.MissionsPath != def.Pipeline.MissionsPath || cfg.Pipeline.OutputDir != def.Pipeline.OutputDir {
		t.Errorf("unchanged flags overwrote config: %+v", cfg.Pipeline)
	}
}

func TestParseStages(t *testing.T) {
	t.Parallel()

	got, err := parseStages([]string{"persona", "demand"})
	if err != nil {
		t.Fatalf("parseStages() error = %v", err)
	}
	if len(got) != 2 || got[0] != pipeline.StagePersona || got[1] != pipeline.StageDemand {
		t.Errorf("parseStages() = %v", got)
	}

	if got, err := parseStages(nil); err != nil || len(got) != 0 {
		t.Errorf("parseStages(nil) = %v, %v; want empty", got, err)
	}

	if _, err := parseStages([]string{"persona", "bogus"}); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("parseStages(bogus) error = %v, want ErrInvalidConfig", err)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"run", "persona", "profile", "recommend", "demand", "serve", "version"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered (got %v, %v)", name, cmd, err)
		}
	}
}

const (
	cliTargets = `[
	{"target_id": "T1", "target_type": "POINT", "target_category": "机场", "trajectory_list": [{"lat": "30.0", "lon": "120.0"}]},
	{"target_id": "T2", "target_type": "POINT", "target_category": "港口", "trajectory_list": [{"lat": "30.1", "lon": "120.1"}]}
]`
	cliMissions = `[
	{"req_id": "R1", "req_unit": "U1", "req_group": "G1", "target_id": "T1", "req_start_time": "2025-03-01 08:00:00", "req_times": "2"},
	{"req_id": "R2", "req_unit": "U2", "req_group": "G1", "target_id": "T2", "req_start_time": "2025-03-02 08:00:00", "req_times": "1"}
]`
	cliConfig = `database:
  driver: none
logging:
  level: error
`
)

// TestPersonaCommand runs the persona command end to end. It is the only
// test that executes rootCmd, whose flags keep their state between runs.
func TestPersonaCommand(t *testing.T) {
	dir := t.TempDir()
	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatalf("WriteFile(%s) error = %v", name, err)
		}
		return path
	}
	cfgPath := write("config.yaml", cliConfig)
	targets := write("targets.json", cliTargets)
	missions := write("missions.json", cliMissions)
	outDir := filepath.Join(dir, "out")

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"persona",
		"--config", cfgPath,
		"--targets", targets,
		"--missions", missions,
		"--out-dir", outDir,
	})
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}

	personaPath := filepath.Join(outDir, dataset.PersonaFile)
	if !strings.Contains(out.String(), personaPath) {
		t.Errorf("output %q does not mention %s", out.String(), personaPath)
	}
	doc, err := dataset.LoadPersonas(personaPath)
	if err != nil {
		t.Fatalf("LoadPersonas() error = %v", err)
	}
	if len(doc.Personas) != 2 {
		t.Errorf("personas = %d, want 2", len(doc.Personas))
	}
	if _, err := os.Stat(filepath.Join(outDir, dataset.ProfileFile)); !os.IsNotExist(err) {
		t.Errorf("profile document written by persona command: %v", err)
	}
}
