// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/preference"
)

// isolate points the config search away from the working directory so a
// stray config.yaml cannot leak into a test.
func isolate(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, "")
	t.Chdir(t.TempDir())
}

func writeYAML(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func TestLoad_Defaults(t *testing.T) {
	isolate(t)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Persona.Algorithm != preference.AlgorithmAuto {
		t.Errorf("Persona.Algorithm = %q, want auto", cfg.Persona.Algorithm)
	}
	if cfg.Clustering.EpsKm != 60 || cfg.Clustering.MinSamples != 4 {
		t.Errorf("Clustering = %+v, want profile clustering defaults", cfg.Clustering)
	}
	if cfg.Recommend.BaseTopN != 10 {
		t.Errorf("Recommend.BaseTopN = %d, want 10", cfg.Recommend.BaseTopN)
	}
	if cfg.Demand.TopN != 3 {
		t.Errorf("Demand.TopN = %d, want 3", cfg.Demand.TopN)
	}
	if cfg.Database.Driver != "duckdb" {
		t.Errorf("Database.Driver = %q, want duckdb", cfg.Database.Driver)
	}
	if cfg.Server.Addr() != "0.0.0.0:8470" {
		t.Errorf("Server.Addr() = %q, want 0.0.0.0:8470", cfg.Server.Addr())
	}
	if cfg.Schedule.Cron != "0 2 * * *" {
		t.Errorf("Schedule.Cron = %q", cfg.Schedule.Cron)
	}
	if cfg.Logging.Output == nil {
		t.Error("Logging.Output = nil, want stderr")
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	isolate(t)

	path := writeYAML(t, `
persona:
  algorithm: bm25
  top_n: 7
clustering:
  scales: [1, 2]
recommend:
  knn:
    k: 3
pipeline:
  start: "2025-01-01 00:00:00"
server:
  port: 9000
  timeout: 5s
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Persona.Algorithm != preference.AlgorithmBM25 || cfg.Persona.TopN != 7 {
		t.Errorf("Persona = %+v, want bm25/7", cfg.Persona)
	}
	if cfg.Persona.TargetTopN != preference.DefaultConfig().TargetTopN {
		t.Errorf("Persona.TargetTopN = %d, unset keys must keep defaults", cfg.Persona.TargetTopN)
	}
	if !reflect.DeepEqual(cfg.Clustering.Scales, []float64{1, 2}) {
		t.Errorf("Clustering.Scales = %v, want [1 2]", cfg.Clustering.Scales)
	}
	if cfg.Recommend.KNN.K != 3 {
		t.Errorf("Recommend.KNN.K = %d, want 3", cfg.Recommend.KNN.K)
	}
	if cfg.Server.Port != 9000 || cfg.Server.Timeout != 5*time.Second {
		t.Errorf("Server = %+v", cfg.Server)
	}
	w, invalid := cfg.Pipeline.TimeWindow()
	if !w.Active() || len(invalid) != 0 {
		t.Errorf("TimeWindow() = %+v, %v", w, invalid)
	}
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	isolate(t)

	path := writeYAML(t, "persona:\n  top_n: 7\n")
	t.Setenv("PERSONA_TOP_N", "9")
	t.Setenv("DATABASE_DRIVER", "sqlite")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("CLUSTERING_SCALES", "1, 1.5")
	t.Setenv("NATS_RECONNECT_WAIT", "3s")
	t.Setenv("UNRELATED_SETTING", "ignored")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Persona.TopN != 9 {
		t.Errorf("Persona.TopN = %d, want 9", cfg.Persona.TopN)
	}
	if cfg.Database.Driver != "sqlite" {
		t.Errorf("Database.Driver = %q, want sqlite", cfg.Database.Driver)
	}
	wantOrigins := []string{"https://a.example", "https://b.example"}
	if !reflect.DeepEqual(cfg.Server.CORSOrigins, wantOrigins) {
		t.Errorf("Server.CORSOrigins = %v, want %v", cfg.Server.CORSOrigins, wantOrigins)
	}
	if !reflect.DeepEqual(cfg.Clustering.Scales, []float64{1, 1.5}) {
		t.Errorf("Clustering.Scales = %v, want [1 1.5]", cfg.Clustering.Scales)
	}
	if cfg.Events.ReconnectWait != 3*time.Second {
		t.Errorf("Events.ReconnectWait = %v, want 3s", cfg.Events.ReconnectWait)
	}
}

func TestLoad_ConfigPathEnvVar(t *testing.T) {
	isolate(t)

	path := writeYAML(t, "demand:\n  top_n: 5\n")
	t.Setenv(ConfigPathEnvVar, path)

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Demand.TopN != 5 {
		t.Errorf("Demand.TopN = %d, want 5", cfg.Demand.TopN)
	}
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		env     map[string]string
		missing bool
		wantErr error
	}{
		{name: "explicit file missing", missing: true, wantErr: ErrConfigNotFound},
		{name: "unknown algorithm", yaml: "persona:\n  algorithm: magic\n", wantErr: models.ErrInvalidConfig},
		{name: "zero demand top_n", yaml: "demand:\n  top_n: 0\n", wantErr: models.ErrInvalidConfig},
		{name: "mysql without dsn", env: map[string]string{"DATABASE_DRIVER": "mysql"}, wantErr: models.ErrInvalidConfig},
		{name: "nats without url", env: map[string]string{"EVENTS_BACKEND": "nats"}, wantErr: models.ErrInvalidConfig},
		{name: "port out of range", env: map[string]string{"HTTP_PORT": "70000"}, wantErr: models.ErrInvalidConfig},
		{name: "bad scale", env: map[string]string{"CLUSTERING_SCALES": "1,x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			path := ""
			switch {
			case tt.missing:
				path = filepath.Join(t.TempDir(), "nope.yaml")
			case tt.yaml != "":
				path = writeYAML(t, tt.yaml)
			}

			_, err := Load(path)
			if err == nil {
				t.Fatal("Load() error = nil, want error")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Load() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfig_ValidateSchedule(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Schedule.Enabled = true
	cfg.Schedule.Cron = ""
	if err := cfg.Validate(); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
	}

	cfg = DefaultConfig()
	cfg.Server.RateLimitWindow = 0
	if err := cfg.Validate(); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("Validate() zero window error = %v, want ErrInvalidConfig", err)
	}

	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	t.Parallel()

	tests := []struct {
		key  string
		want string
	}{
		{"PERSONA_TOP_N", "persona.top_n"},
		{"recommend_knn_k", "recommend.knn.k"},
		{"NATS_URL", "events.url"},
		{"LOG_LEVEL", "logging.level"},
		{"HOME", ""},
	}
	for _, tt := range tests {
		if got := envTransformFunc(tt.key); got != tt.want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}
