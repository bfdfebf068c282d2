// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/duckdb/duckdb-go/v2" // register the duckdb driver
	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/metrics"
	"github.com/tomtom215/scoutpersona/internal/models"
)

const duckDBSchema = `
	CREATE SEQUENCE IF NOT EXISTS user_profiles_id_seq;
	CREATE TABLE IF NOT EXISTS user_profiles (
		id BIGINT PRIMARY KEY DEFAULT nextval('user_profiles_id_seq'),
		version TEXT NOT NULL,
		created_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		req_unit TEXT NOT NULL,
		req_group TEXT NOT NULL,
		user_profile TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_user_profiles_version ON user_profiles(version);

	CREATE SEQUENCE IF NOT EXISTS target_profiles_id_seq;
	CREATE TABLE IF NOT EXISTS target_profiles (
		id BIGINT PRIMARY KEY DEFAULT nextval('target_profiles_id_seq'),
		version TEXT NOT NULL,
		created_time TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
		target_id TEXT NOT NULL,
		target_profile TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_target_profiles_version ON target_profiles(version);
`

// DuckDBStore implements Store on DuckDB through database/sql.
type DuckDBStore struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
	mu     sync.RWMutex
}

// NewDuckDBStore wraps an open DuckDB handle. Call CreateTables before use.
func NewDuckDBStore(db *sql.DB, logger zerolog.Logger) *DuckDBStore {
	return &DuckDBStore{
		db:     db,
		logger: logger.With().Str("component", "store").Str("driver", DriverDuckDB).Logger(),
		now:    time.Now,
	}
}

// OpenDuckDB opens (or creates) a DuckDB file and its tables. An empty
// path opens an in-memory database.
func OpenDuckDB(ctx context.Context, path string, logger zerolog.Logger) (*DuckDBStore, error) {
	if path != "" {
		if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	db, err := sql.Open("duckdb", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open duckdb: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		closeQuietly(db)
		return nil, fmt.Errorf("failed to connect to duckdb: %w", err)
	}

	s := NewDuckDBStore(db, logger)
	if err := s.CreateTables(ctx); err != nil {
		closeQuietly(db)
		return nil, err
	}
	return s, nil
}

// CreateTables creates the result tables if they don't exist.
func (s *DuckDBStore) CreateTables(ctx context.Context) error {
	for _, stmt := range strings.Split(duckDBSchema, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}
	s.logger.Debug().Msg("Result tables created/verified")
	return nil
}

// SavePersonas replaces all personas of version.
func (s *DuckDBStore) SavePersonas(ctx context.Context, version string, personas []models.UserPersona) (n int, err error) {
	defer observe(DriverDuckDB, "save_personas", time.Now(), &err)

	rows, err := personaRows(personas)
	if err != nil {
		return 0, err
	}
	created := s.now()
	err = s.replace(ctx, userProfilesTable, version,
		`INSERT INTO user_profiles (version, created_time, req_unit, req_group, user_profile) VALUES (?, ?, ?, ?, ?)`,
		len(rows), func(stmt *sql.Stmt, i int) error {
			_, execErr := stmt.ExecContext(ctx, version, created, rows[i].unit, rows[i].group, rows[i].payload)
			return execErr
		})
	if err != nil {
		return 0, err
	}
	metrics.StoreWrites.WithLabelValues(DriverDuckDB, userProfilesTable).Add(float64(len(rows)))
	s.logger.Info().Str("version", version).Int("saved", len(rows)).Int("total", len(personas)).Msg("Saved user personas")
	return len(rows), nil
}

// SaveProfiles replaces all target profiles of version.
func (s *DuckDBStore) SaveProfiles(ctx context.Context, version string, profiles []models.TargetProfile) (n int, err error) {
	defer observe(DriverDuckDB, "save_profiles", time.Now(), &err)

	rows, err := profileRows(profiles)
	if err != nil {
		return 0, err
	}
	created := s.now()
	err = s.replace(ctx, targetProfilesTable, version,
		`INSERT INTO target_profiles (version, created_time, target_id, target_profile) VALUES (?, ?, ?, ?)`,
		len(rows), func(stmt *sql.Stmt, i int) error {
			_, execErr := stmt.ExecContext(ctx, version, created, rows[i].targetID, rows[i].payload)
			return execErr
		})
	if err != nil {
		return 0, err
	}
	metrics.StoreWrites.WithLabelValues(DriverDuckDB, targetProfilesTable).Add(float64(len(rows)))
	s.logger.Info().Str("version", version).Int("saved", len(rows)).Int("total", len(profiles)).Msg("Saved target profiles")
	return len(rows), nil
}

// replace deletes the version's rows and inserts n new ones in one
// transaction.
func (s *DuckDBStore) replace(ctx context.Context, table, version, insert string, n int, exec func(*sql.Stmt, int) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, "DELETE FROM "+table+" WHERE version = ?", version); err != nil {
		return fmt.Errorf("failed to delete %s version %q: %w", table, version, err)
	}

	stmt, err := tx.PrepareContext(ctx, insert)
	if err != nil {
		return fmt.Errorf("failed to prepare %s insert: %w", table, err)
	}
	defer closeWithLog(stmt, s.logger, "prepared statement")

	for i := 0; i < n; i++ {
		if err = exec(stmt, i); err != nil {
			return fmt.Errorf("failed to insert into %s: %w", table, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

// ListVersions returns every stored version, newest first.
func (s *DuckDBStore) ListVersions(ctx context.Context) (versions []VersionInfo, err error) {
	defer observe(DriverDuckDB, "list_versions", time.Now(), &err)
	s.mu.RLock()
	defer s.mu.RUnlock()

	personas, err := s.countByVersion(ctx, userProfilesTable)
	if err != nil {
		return nil, err
	}
	profiles, err := s.countByVersion(ctx, targetProfilesTable)
	if err != nil {
		return nil, err
	}
	return mergeVersions(personas, profiles), nil
}

// countByVersion executes a GROUP BY query and returns row counts per version.
func (s *DuckDBStore) countByVersion(ctx context.Context, table string) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT version, COUNT(*) FROM "+table+" GROUP BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to count %s: %w", table, err)
	}
	defer closeWithLog(rows, s.logger, "rows")

	result := make(map[string]int)
	for rows.Next() {
		var version string
		var count int
		if err := rows.Scan(&version, &count); err != nil {
			return nil, fmt.Errorf("failed to scan %s count: %w", table, err)
		}
		result[version] = count
	}
	return result, rows.Err()
}

// LoadPersonas returns all personas of version in insertion order.
func (s *DuckDBStore) LoadPersonas(ctx context.Context, version string) (out []models.UserPersona, err error) {
	defer observe(DriverDuckDB, "load_personas", time.Now(), &err)

	err = s.scanPayloads(ctx, "SELECT user_profile FROM user_profiles WHERE version = ? ORDER BY id", []any{version}, func(payload string) error {
		p, decodeErr := decodePersona(payload)
		if decodeErr != nil {
			return decodeErr
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

// LoadProfiles returns all target profiles of version in insertion order.
func (s *DuckDBStore) LoadProfiles(ctx context.Context, version string) (out []models.TargetProfile, err error) {
	defer observe(DriverDuckDB, "load_profiles", time.Now(), &err)

	err = s.scanPayloads(ctx, "SELECT target_profile FROM target_profiles WHERE version = ? ORDER BY id", []any{version}, func(payload string) error {
		p, decodeErr := decodeProfile(payload)
		if decodeErr != nil {
			return decodeErr
		}
		out = append(out, p)
		return nil
	})
	return out, err
}

func (s *DuckDBStore) scanPayloads(ctx context.Context, query string, args []any, fn func(string) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to query payloads: %w", err)
	}
	defer closeWithLog(rows, s.logger, "rows")

	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return fmt.Errorf("failed to scan payload: %w", err)
		}
		if err := fn(payload); err != nil {
			return err
		}
	}
	return rows.Err()
}

// GetPersona returns the persona of user in version.
func (s *DuckDBStore) GetPersona(ctx context.Context, version string, user models.UserKey) (p *models.UserPersona, err error) {
	defer observe(DriverDuckDB, "get_persona", time.Now(), &err)

	payload, err := s.queryPayload(ctx,
		"SELECT user_profile FROM user_profiles WHERE version = ? AND req_unit = ? AND req_group = ? ORDER BY id DESC LIMIT 1",
		version, user.ReqUnit, user.ReqGroup)
	if err != nil {
		return nil, fmt.Errorf("persona %s in version %q: %w", user, version, err)
	}
	persona, err := decodePersona(payload)
	if err != nil {
		return nil, err
	}
	return &persona, nil
}

// GetProfile returns the profile of targetID in version.
func (s *DuckDBStore) GetProfile(ctx context.Context, version, targetID string) (p *models.TargetProfile, err error) {
	defer observe(DriverDuckDB, "get_profile", time.Now(), &err)

	payload, err := s.queryPayload(ctx,
		"SELECT target_profile FROM target_profiles WHERE version = ? AND target_id = ? ORDER BY id DESC LIMIT 1",
		version, targetID)
	if err != nil {
		return nil, fmt.Errorf("profile %s in version %q: %w", targetID, version, err)
	}
	profile, err := decodeProfile(payload)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func (s *DuckDBStore) queryPayload(ctx context.Context, query string, args ...any) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var payload string
	err := s.db.QueryRowContext(ctx, query, args...).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to query payload: %w", err)
	}
	return payload, nil
}

// Close closes the database handle.
func (s *DuckDBStore) Close() error {
	return s.db.Close()
}
