// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package config

import (
	"fmt"
	"time"

	"github.com/tomtom215/scoutpersona/internal/database"
	"github.com/tomtom215/scoutpersona/internal/demand"
	"github.com/tomtom215/scoutpersona/internal/events"
	"github.com/tomtom215/scoutpersona/internal/logging"
	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/preference"
	"github.com/tomtom215/scoutpersona/internal/profile"
	"github.com/tomtom215/scoutpersona/internal/recommend"
	"github.com/tomtom215/scoutpersona/internal/spatial"
	"github.com/tomtom215/scoutpersona/internal/validation"
)

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: DefaultConfig
//  2. Config File: optional YAML file (config.yaml)
//  3. Environment Variables: override any mapped setting
//
// Each algorithm section is the component's own Config type, so a value
// loaded here is passed to the component unchanged:
//
//	cfg, err := config.Load("")
//	builder, err := persona.NewBuilder(cfg.Persona, logger)
type Config struct {
	Persona    preference.Config `koanf:"persona" json:"persona"`
	Profile    profile.Config    `koanf:"profile" json:"profile"`
	Clustering spatial.Config    `koanf:"clustering" json:"clustering"`
	Recommend  recommend.Config  `koanf:"recommend" json:"recommend"`
	Demand     demand.Config     `koanf:"demand" json:"demand"`
	Pipeline   PipelineConfig    `koanf:"pipeline" json:"pipeline"`
	Database   database.Config   `koanf:"database" json:"database"`
	Events     events.Config     `koanf:"events" json:"events"`
	Server     ServerConfig      `koanf:"server" json:"server"`
	Schedule   ScheduleConfig    `koanf:"schedule" json:"schedule"`
	Logging    logging.Config    `koanf:"logging" json:"logging"`
}

// PipelineConfig selects the pipeline inputs, outputs and time window.
type PipelineConfig struct {
	// TargetsPath is the target list JSON file.
	// Default: data/targets.json.
	TargetsPath string `koanf:"targets_path" json:"targets_path" validate:"required"`

	// MissionsPath is the historical mission JSON file.
	// Default: data/missions.json.
	MissionsPath string `koanf:"missions_path" json:"missions_path" validate:"required"`

	// TasksPath is the virtual task pool. Recommendation is skipped when the
	// file does not exist.
	// Default: data/virtual_tasks.json.
	TasksPath string `koanf:"tasks_path" json:"tasks_path"`

	// OutputDir receives the generated documents.
	// Default: output.
	OutputDir string `koanf:"output_dir" json:"output_dir" validate:"required"`

	// Start and End bound mission create times (inclusive). Empty means open.
	Start string `koanf:"start" json:"start"`
	End   string `koanf:"end" json:"end"`

	// Workers caps per-entity parallelism. Zero means GOMAXPROCS.
	// Default: 0.
	Workers int `koanf:"workers" json:"workers" validate:"gte=0"`
}

// TimeWindow parses Start and End. Unparseable bounds are returned in
// invalid and left open.
func (p *PipelineConfig) TimeWindow() (models.TimeWindow, []string) {
	return models.NewTimeWindow(p.Start, p.End)
}

// ServerConfig configures the read-only HTTP API.
type ServerConfig struct {
	// Host is the bind address.
	// Default: 0.0.0.0.
	Host string `koanf:"host" json:"host"`

	// Port is the listen port.
	// Default: 8470.
	Port int `koanf:"port" json:"port" validate:"gte=1,lte=65535"`

	// Timeout bounds request handling.
	// Default: 30s.
	Timeout time.Duration `koanf:"timeout" json:"timeout"`

	// CORSOrigins lists allowed browser origins. "*" allows all.
	// Default: ["*"].
	CORSOrigins []string `koanf:"cors_origins" json:"cors_origins"`

	// RateLimitReqs requests are allowed per RateLimitWindow per client IP.
	// Zero disables rate limiting.
	// Default: 100 per 1m.
	RateLimitReqs   int           `koanf:"rate_limit_reqs" json:"rate_limit_reqs" validate:"gte=0"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window" json:"rate_limit_window"`

	// CacheTTL bounds how long store reads are cached. Zero disables the
	// cache.
	// Default: 30s.
	CacheTTL time.Duration `koanf:"cache_ttl" json:"cache_ttl" validate:"gte=0"`
}

// Addr returns host:port.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// ScheduleConfig configures periodic pipeline runs in serve mode.
type ScheduleConfig struct {
	// Enabled turns the cron scheduler on.
	// Default: false.
	Enabled bool `koanf:"enabled" json:"enabled"`

	// Cron is a standard five-field cron expression.
	// Default: "0 2 * * *".
	Cron string `koanf:"cron" json:"cron"`

	// RunOnStart triggers one run as soon as the scheduler starts.
	// Default: false.
	RunOnStart bool `koanf:"run_on_start" json:"run_on_start"`
}

// DefaultConfig returns a Config with every default applied.
func DefaultConfig() *Config {
	return &Config{
		Persona:    preference.DefaultConfig(),
		Profile:    profile.DefaultConfig(),
		Clustering: spatial.ProfileConfig(),
		Recommend:  recommend.DefaultConfig(),
		Demand:     demand.DefaultConfig(),
		Pipeline: PipelineConfig{
			TargetsPath:  "data/targets.json",
			MissionsPath: "data/missions.json",
			TasksPath:    "data/virtual_tasks.json",
			OutputDir:    "output",
		},
		Database: database.DefaultConfig(),
		Events:   events.DefaultConfig(),
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8470,
			Timeout:         30 * time.Second,
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CacheTTL:        30 * time.Second,
		},
		Schedule: ScheduleConfig{
			Cron: "0 2 * * *",
		},
		Logging: logging.DefaultConfig(),
	}
}

// Validate checks every section. Struct tags are checked first, then each
// component's own Validate.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}

	checks := []struct {
		section string
		fn      func() error
	}{
		{"persona", c.Persona.Validate},
		{"profile", c.Profile.Validate},
		{"clustering", c.Clustering.Validate},
		{"recommend", c.Recommend.Validate},
		{"demand", c.Demand.Validate},
		{"database", c.Database.Validate},
		{"events", c.Events.Validate},
	}
	for _, chk := range checks {
		if err := chk.fn(); err != nil {
			return fmt.Errorf("%s: %w", chk.section, err)
		}
	}

	if c.Server.RateLimitReqs > 0 && c.Server.RateLimitWindow <= 0 {
		return fmt.Errorf("%w: server.rate_limit_window must be positive when rate limiting is on", models.ErrInvalidConfig)
	}
	if c.Schedule.Enabled && c.Schedule.Cron == "" {
		return fmt.Errorf("%w: schedule.cron is required when the scheduler is enabled", models.ErrInvalidConfig)
	}
	return nil
}
