// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package main is the entry point for the scoutpersona command.
//
// scoutpersona turns reconnaissance mission history into requester
// personas, target profiles, task recommendations and demand combinations.
//
// # Commands
//
//	scoutpersona run        run every stage (or --stages persona,profile)
//	scoutpersona persona    build requester personas
//	scoutpersona profile    build target profiles
//	scoutpersona recommend  recommend virtual tasks from stored documents
//	scoutpersona demand     generate demand combinations from profiles
//	scoutpersona serve      read-only API plus optional cron schedule
//	scoutpersona version    print build information
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest priority wins):
//   - Command line flags (--targets, --missions, --out-dir, ...)
//   - Environment variables (see internal/config)
//   - Config file (--config, $SCOUTPERSONA_CONFIG or ./config.yaml)
//   - Built-in defaults
//
// # Signal Handling
//
// Every command stops on SIGINT and SIGTERM. A batch run abandons the
// current phase without writing partial documents; serve stops the
// scheduler and drains in-flight HTTP requests.
//
// # Example Usage
//
//	scoutpersona run --targets data/targets.json --missions data/missions.json --out-dir out
//	scoutpersona persona --start "2025-01-01 00:00:00" --end "2025-03-31 23:59:59"
//	SCHEDULE_ENABLED=true DATABASE_DRIVER=sqlite scoutpersona serve
package main

import "os"

func main() {
	if err := Execute(); err != nil {
		os.Exit(1)
	}
}
