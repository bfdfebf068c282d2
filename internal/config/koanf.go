// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/scoutpersona/config.yaml",
	"/etc/scoutpersona/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "SCOUTPERSONA_CONFIG"

// ErrConfigNotFound is returned when an explicitly requested config file is missing.
var ErrConfigNotFound = errors.New("config file not found")

// Load loads configuration using Koanf v2 with the following precedence
// (lowest to highest):
//  1. Defaults: DefaultConfig
//  2. Config File: path, else $SCOUTPERSONA_CONFIG, else DefaultConfigPaths
//  3. Environment Variables: see envMappings
//
// An explicit path that does not exist is an error; a missing default file
// is not.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: defaults
	if err := k.Load(structs.Provider(DefaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: config file (optional)
	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: environment variables
	// PERSONA_TOP_N -> persona.top_n
	// DATABASE_DRIVER -> database.driver
	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if cfg.Logging.Output == nil {
		cfg.Logging.Output = os.Stderr
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

// findConfigFile resolves the config file to load. Returns "" when no file
// applies.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("%w: %s", ErrConfigNotFound, explicit)
		}
		return explicit, nil
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", nil
}

// stringSlicePaths are parsed as comma-separated lists when set from env.
var stringSlicePaths = []string{
	"server.cors_origins",
}

// floatSlicePaths are parsed as comma-separated numbers when set from env.
var floatSlicePaths = []string{
	"clustering.scales",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// Env vars arrive as strings; YAML lists are left untouched.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range stringSlicePaths {
		parts, ok := splitString(k.Get(path))
		if !ok {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}

	for _, path := range floatSlicePaths {
		parts, ok := splitString(k.Get(path))
		if !ok {
			continue
		}
		values := make([]float64, len(parts))
		for i, p := range parts {
			v, err := strconv.ParseFloat(p, 64)
			if err != nil {
				return fmt.Errorf("%s: invalid number %q: %w", path, p, err)
			}
			values[i] = v
		}
		if err := k.Set(path, values); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

func splitString(val any) ([]string, bool) {
	s, ok := val.(string)
	if !ok || s == "" {
		return nil, false
	}
	raw := strings.Split(s, ",")
	parts := make([]string, 0, len(raw))
	for _, p := range raw {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	return parts, len(parts) > 0
}

// envMappings maps lowercased environment variable names to koanf paths.
// Unmapped variables are ignored so unrelated environment never leaks into
// the configuration.
var envMappings = map[string]string{
	// Persona preference scoring
	"persona_algorithm":               "persona.algorithm",
	"persona_top_n":                   "persona.top_n",
	"persona_target_top_n":            "persona.target_top_n",
	"persona_hhi_threshold":           "persona.hhi_threshold",
	"persona_cv_threshold":            "persona.cv_threshold",
	"persona_zscore_threshold":        "persona.zscore_threshold",
	"persona_tfidf_smoothing":         "persona.tfidf_smoothing",
	"persona_bm25_k1":                 "persona.bm25_k1",
	"persona_bm25_b":                  "persona.bm25_b",
	"persona_auto_tfidf_min_users":    "persona.auto_tfidf_min_users",
	"persona_auto_tfidf_min_targets":  "persona.auto_tfidf_min_targets",
	"persona_auto_bm25_min_users":     "persona.auto_bm25_min_users",
	"persona_auto_bm25_min_targets":   "persona.auto_bm25_min_targets",
	"persona_auto_zscore_min_targets": "persona.auto_zscore_min_targets",

	// Target profiles
	"profile_top_n": "profile.top_n",

	// Spatial clustering
	"clustering_eps_km":           "clustering.eps_km",
	"clustering_min_samples":      "clustering.min_samples",
	"clustering_auto_tune":        "clustering.auto_tune",
	"clustering_desired_clusters": "clustering.desired_clusters",
	"clustering_max_attempts":     "clustering.max_attempts",
	"clustering_noise_threshold":  "clustering.noise_threshold",
	"clustering_scales":           "clustering.scales",

	// Recommendation
	"recommend_base_top_n":                  "recommend.base_top_n",
	"recommend_collaborative_filtering":     "recommend.collaborative_filtering",
	"recommend_content_weight":              "recommend.content_weight",
	"recommend_cf_weight":                   "recommend.cf_weight",
	"recommend_workers":                     "recommend.workers",
	"recommend_weight_target":               "recommend.weights.target",
	"recommend_weight_region":               "recommend.weights.region",
	"recommend_weight_category":             "recommend.weights.category",
	"recommend_weight_topic":                "recommend.weights.topic",
	"recommend_weight_scenario":             "recommend.weights.scenario",
	"recommend_knn_k":                       "recommend.knn.k",
	"recommend_knn_similarity":              "recommend.knn.similarity",
	"recommend_knn_min_similarity":          "recommend.knn.min_similarity",
	"recommend_knn_workers":                 "recommend.knn.workers",
	"recommend_discovery_hybrid_share":      "recommend.discovery.hybrid_share",
	"recommend_discovery_min_cf_score":      "recommend.discovery.min_cf_score",
	"recommend_discovery_max_content_score": "recommend.discovery.max_content_score",

	// Demand generation
	"demand_top_n":       "demand.top_n",
	"demand_field_top_k": "demand.field_top_k",

	// Pipeline inputs and outputs
	"targets_path":     "pipeline.targets_path",
	"missions_path":    "pipeline.missions_path",
	"tasks_path":       "pipeline.tasks_path",
	"output_dir":       "pipeline.output_dir",
	"pipeline_start":   "pipeline.start",
	"pipeline_end":     "pipeline.end",
	"pipeline_workers": "pipeline.workers",

	// Persistence
	"database_driver":     "database.driver",
	"database_path":       "database.path",
	"database_dsn":        "database.dsn",
	"database_batch_size": "database.batch_size",

	// Events
	"events_backend":              "events.backend",
	"events_topic":                "events.topic",
	"nats_url":                    "events.url",
	"nats_track_msg_id":           "events.track_msg_id",
	"nats_max_reconnects":         "events.max_reconnects",
	"nats_reconnect_wait":         "events.reconnect_wait",
	"events_cb_max_requests":      "events.circuit_breaker.max_requests",
	"events_cb_interval":          "events.circuit_breaker.interval",
	"events_cb_timeout":           "events.circuit_breaker.timeout",
	"events_cb_failure_threshold": "events.circuit_breaker.failure_threshold",

	// HTTP server
	"http_host":         "server.host",
	"http_port":         "server.port",
	"http_timeout":      "server.timeout",
	"cors_origins":      "server.cors_origins",
	"rate_limit_reqs":   "server.rate_limit_reqs",
	"rate_limit_window": "server.rate_limit_window",
	"http_cache_ttl":    "server.cache_ttl",

	// Scheduler
	"schedule_enabled":      "schedule.enabled",
	"schedule_cron":         "schedule.cron",
	"schedule_run_on_start": "schedule.run_on_start",

	// Logging
	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - PERSONA_TOP_N -> persona.top_n
//   - DATABASE_DRIVER -> database.driver
//   - NATS_URL -> events.url
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
