// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package database persists user personas and target profiles by version.
//
// # Overview
//
// Each pipeline run derives a version string from its time window and
// stores one JSON payload per persona and per target profile:
//
//	user_profiles   (id, version, created_time, req_unit, req_group, user_profile)
//	target_profiles (id, version, created_time, target_id, target_profile)
//
// Saving a version deletes its previous rows and inserts the new ones inside
// a single transaction, so readers see either the old or the new version.
// Personas without a unit or group and profiles without a target id are
// skipped.
//
// # Backends
//
//   - duckdb_store.go: DuckDB through database/sql (the default)
//   - gorm_store.go: MySQL and SQLite through gorm
//
// All backends satisfy Store and record operation timings and failures in
// the scoutpersona_store_* metrics.
//
// # Usage
//
//	store, err := database.Open(ctx, cfg.Database, logger)
//	if errors.Is(err, database.ErrDisabled) {
//		// persistence turned off
//	}
//	defer store.Close()
//	n, err := store.SavePersonas(ctx, version, personas)
//
// Lookups return an error wrapping ErrNotFound when no row matches.
package database
