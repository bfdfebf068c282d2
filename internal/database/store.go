// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package database

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/scoutpersona/internal/metrics"
	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/validation"
)

// Supported drivers.
const (
	DriverNone   = "none"
	DriverDuckDB = "duckdb"
	DriverSQLite = "sqlite"
	DriverMySQL  = "mysql"
)

// Table names.
const (
	userProfilesTable   = "user_profiles"
	targetProfilesTable = "target_profiles"
)

// Config selects and configures the result store.
type Config struct {
	// Driver is one of none, duckdb, sqlite, mysql.
	// Default: duckdb.
	Driver string `koanf:"driver" json:"driver" validate:"oneof=none duckdb sqlite mysql"`

	// Path is the database file for duckdb and sqlite. Empty means an
	// in-memory database.
	// Default: data/scoutpersona.duckdb.
	Path string `koanf:"path" json:"path"`

	// DSN is the MySQL data source name.
	DSN string `koanf:"dsn" json:"-"`

	// BatchSize bounds rows per INSERT batch for the gorm backends.
	// Default: 100.
	BatchSize int `koanf:"batch_size" json:"batch_size" validate:"gte=1"`
}

// DefaultConfig returns the default store configuration.
func DefaultConfig() Config {
	return Config{
		Driver:    DriverDuckDB,
		Path:      "data/scoutpersona.duckdb",
		BatchSize: 100,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: database: %v", models.ErrInvalidConfig, err)
	}
	if c.Driver == DriverMySQL && c.DSN == "" {
		return fmt.Errorf("%w: database.dsn is required for mysql", models.ErrInvalidConfig)
	}
	return nil
}

// Enabled reports whether results should be persisted.
func (c *Config) Enabled() bool {
	return c.Driver != "" && c.Driver != DriverNone
}

// VersionInfo summarises one stored version.
type VersionInfo struct {
	Version  string `json:"version"`
	Personas int    `json:"personas"`
	Profiles int    `json:"profiles"`
}

// Store persists personas and target profiles by version. Saving a
// version replaces all of its rows atomically.
type Store interface {
	SavePersonas(ctx context.Context, version string, personas []models.UserPersona) (int, error)
	SaveProfiles(ctx context.Context, version string, profiles []models.TargetProfile) (int, error)
	ListVersions(ctx context.Context) ([]VersionInfo, error)
	LoadPersonas(ctx context.Context, version string) ([]models.UserPersona, error)
	LoadProfiles(ctx context.Context, version string) ([]models.TargetProfile, error)
	GetPersona(ctx context.Context, version string, user models.UserKey) (*models.UserPersona, error)
	GetProfile(ctx context.Context, version, targetID string) (*models.TargetProfile, error)
	Close() error
}

// LatestVersion returns the greatest stored version string.
func LatestVersion(ctx context.Context, s Store) (string, error) {
	versions, err := s.ListVersions(ctx)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("no stored versions: %w", ErrNotFound)
	}
	return versions[0].Version, nil
}

// personaRow is a persona ready for insertion.
type personaRow struct {
	unit, group string
	payload     string
}

// personaRows serialises personas, skipping those without a unit or group.
func personaRows(personas []models.UserPersona) ([]personaRow, error) {
	rows := make([]personaRow, 0, len(personas))
	for i := range personas {
		p := &personas[i]
		if p.UserID.ReqUnit == "" || p.UserID.ReqGroup == "" {
			continue
		}
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode persona %s: %w", p.UserID, err)
		}
		rows = append(rows, personaRow{unit: p.UserID.ReqUnit, group: p.UserID.ReqGroup, payload: string(data)})
	}
	return rows, nil
}

type profileRow struct {
	targetID string
	payload  string
}

// profileRows serialises profiles, skipping those without a target id.
func profileRows(profiles []models.TargetProfile) ([]profileRow, error) {
	rows := make([]profileRow, 0, len(profiles))
	for i := range profiles {
		p := &profiles[i]
		if p.TargetID == "" {
			continue
		}
		data, err := json.Marshal(p)
		if err != nil {
			return nil, fmt.Errorf("encode profile %s: %w", p.TargetID, err)
		}
		rows = append(rows, profileRow{targetID: p.TargetID, payload: string(data)})
	}
	return rows, nil
}

func decodePersona(payload string) (models.UserPersona, error) {
	var p models.UserPersona
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return p, fmt.Errorf("decode persona: %w", err)
	}
	return p, nil
}

func decodeProfile(payload string) (models.TargetProfile, error) {
	var p models.TargetProfile
	if err := json.Unmarshal([]byte(payload), &p); err != nil {
		return p, fmt.Errorf("decode profile: %w", err)
	}
	return p, nil
}

// mergeVersions joins per-table counts and sorts newest first.
func mergeVersions(personas, profiles map[string]int) []VersionInfo {
	byVersion := make(map[string]*VersionInfo)
	get := func(v string) *VersionInfo {
		info, ok := byVersion[v]
		if !ok {
			info = &VersionInfo{Version: v}
			byVersion[v] = info
		}
		return info
	}
	for v, n := range personas {
		get(v).Personas = n
	}
	for v, n := range profiles {
		get(v).Profiles = n
	}

	out := make([]VersionInfo, 0, len(byVersion))
	for _, info := range byVersion {
		out = append(out, *info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out
}

// observe records duration and failure of a store call. Use with defer and
// a named error result.
func observe(driver, operation string, start time.Time, err *error) {
	metrics.RecordStoreOperation(driver, operation, time.Since(start), *err)
}
