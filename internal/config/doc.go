// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

/*
Package config provides centralized configuration management for ScoutPersona.

Configuration is layered with Koanf v2: built-in defaults, then an optional
YAML file, then environment variables. Later layers win.

# Config File

The file is taken from the --config flag, the SCOUTPERSONA_CONFIG
environment variable, or the first of DefaultConfigPaths that exists:

	persona:
	  algorithm: auto
	  top_n: 5
	clustering:
	  eps_km: 60
	  scales: [1.0, 1.5, 2.0]
	recommend:
	  base_top_n: 10
	  knn:
	    k: 5
	pipeline:
	  targets_path: data/targets.json
	  missions_path: data/missions.json
	  start: "2025-01-01 00:00:00"
	database:
	  driver: sqlite
	  path: data/scoutpersona.db

# Environment Variables

Only mapped variables are read. A few examples:

  - PERSONA_ALGORITHM, PERSONA_TOP_N: preference scoring
  - CLUSTERING_EPS_KM, CLUSTERING_SCALES (comma-separated)
  - RECOMMEND_BASE_TOP_N, RECOMMEND_KNN_K
  - DEMAND_TOP_N, DEMAND_FIELD_TOP_K
  - TARGETS_PATH, MISSIONS_PATH, TASKS_PATH, OUTPUT_DIR
  - DATABASE_DRIVER, DATABASE_PATH, DATABASE_DSN
  - EVENTS_BACKEND, NATS_URL
  - HTTP_HOST, HTTP_PORT, HTTP_TIMEOUT, HTTP_CACHE_TTL, CORS_ORIGINS (comma-separated)
  - RATE_LIMIT_REQS, RATE_LIMIT_WINDOW
  - SCHEDULE_ENABLED, SCHEDULE_CRON
  - LOG_LEVEL, LOG_FORMAT

# Validation

Load validates struct tags with go-playground/validator and then calls
each component's own Validate. Every failure wraps models.ErrInvalidConfig.
*/
package config
