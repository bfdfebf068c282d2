// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package database

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/driver/mysql"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/tomtom215/scoutpersona/internal/metrics"
	"github.com/tomtom215/scoutpersona/internal/models"
)

// UserProfileRow is a row of user_profiles.
type UserProfileRow struct {
	ID          uint      `gorm:"primaryKey;autoIncrement"`
	Version     string    `gorm:"size:128;not null;index:idx_user_profiles_version"`
	CreatedTime time.Time `gorm:"not null"`
	ReqUnit     string    `gorm:"size:255;not null"`
	ReqGroup    string    `gorm:"size:255;not null"`
	UserProfile string    `gorm:"type:text;not null"`
}

// TableName implements gorm's Tabler.
func (UserProfileRow) TableName() string { return userProfilesTable }

// TargetProfileRow is a row of target_profiles.
type TargetProfileRow struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	Version       string    `gorm:"size:128;not null;index:idx_target_profiles_version"`
	CreatedTime   time.Time `gorm:"not null"`
	TargetID      string    `gorm:"size:255;not null"`
	TargetProfile string    `gorm:"type:text;not null"`
}

// TableName implements gorm's Tabler.
func (TargetProfileRow) TableName() string { return targetProfilesTable }

type versionCount struct {
	Version string
	Count   int
}

// GormStore implements Store on MySQL or SQLite through gorm.
type GormStore struct {
	db        *gorm.DB
	driver    string
	batchSize int
	logger    zerolog.Logger
	now       func() time.Time
}

// NewGormStore wraps an open gorm handle and migrates the result tables.
func NewGormStore(db *gorm.DB, driver string, batchSize int, zl zerolog.Logger) (*GormStore, error) {
	if batchSize < 1 {
		batchSize = 100
	}
	if err := db.AutoMigrate(&UserProfileRow{}, &TargetProfileRow{}); err != nil {
		return nil, fmt.Errorf("failed to migrate result tables: %w", err)
	}
	return &GormStore{
		db:        db,
		driver:    driver,
		batchSize: batchSize,
		logger:    zl.With().Str("component", "store").Str("driver", driver).Logger(),
		now:       time.Now,
	}, nil
}

// gormLogger routes gorm's warnings through zerolog.
func gormLogger(zl zerolog.Logger) logger.Interface {
	return logger.New(
		log.New(zl.With().Str("component", "gorm").Logger(), "", 0),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
}

// OpenSQLite opens a SQLite file through gorm. An empty path opens a
// private in-memory database.
func OpenSQLite(path string, batchSize int, zl zerolog.Logger) (*GormStore, error) {
	dsn := path
	if dsn == "" {
		dsn = ":memory:"
	} else if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLogger(zl)})
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite: %w", err)
	}
	if path == "" {
		// Every pooled connection to :memory: would see its own database.
		if sqlDB, dbErr := db.DB(); dbErr == nil {
			sqlDB.SetMaxOpenConns(1)
		}
	}
	return NewGormStore(db, DriverSQLite, batchSize, zl)
}

// OpenMySQL opens a MySQL database through gorm. parseTime and utf8mb4 are
// added to the DSN when missing.
func OpenMySQL(dsn string, batchSize int, zl zerolog.Logger) (*GormStore, error) {
	dsn = ensureParam(dsn, "parseTime", "true")
	if !strings.Contains(dsn, "charset=") {
		dsn = ensureParam(dsn, "charset", "utf8mb4")
		dsn = ensureParam(dsn, "collation", "utf8mb4_unicode_ci")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{Logger: gormLogger(zl)})
	if err != nil {
		return nil, fmt.Errorf("failed to open mysql: %w", err)
	}
	return NewGormStore(db, DriverMySQL, batchSize, zl)
}

func ensureParam(dsn, key, val string) string {
	if strings.Contains(dsn, key+"=") {
		return dsn
	}
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + key + "=" + val
}

// SavePersonas replaces all personas of version.
func (s *GormStore) SavePersonas(ctx context.Context, version string, personas []models.UserPersona) (n int, err error) {
	defer observe(s.driver, "save_personas", time.Now(), &err)

	rows, err := personaRows(personas)
	if err != nil {
		return 0, err
	}
	created := s.now()
	records := make([]UserProfileRow, len(rows))
	for i, r := range rows {
		records[i] = UserProfileRow{Version: version, CreatedTime: created, ReqUnit: r.unit, ReqGroup: r.group, UserProfile: r.payload}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("version = ?", version).Delete(&UserProfileRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete personas of version %q: %w", version, err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, s.batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert personas: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	metrics.StoreWrites.WithLabelValues(s.driver, userProfilesTable).Add(float64(len(records)))
	s.logger.Info().Str("version", version).Int("saved", len(records)).Int("total", len(personas)).Msg("Saved user personas")
	return len(records), nil
}

// SaveProfiles replaces all target profiles of version.
func (s *GormStore) SaveProfiles(ctx context.Context, version string, profiles []models.TargetProfile) (n int, err error) {
	defer observe(s.driver, "save_profiles", time.Now(), &err)

	rows, err := profileRows(profiles)
	if err != nil {
		return 0, err
	}
	created := s.now()
	records := make([]TargetProfileRow, len(rows))
	for i, r := range rows {
		records[i] = TargetProfileRow{Version: version, CreatedTime: created, TargetID: r.targetID, TargetProfile: r.payload}
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("version = ?", version).Delete(&TargetProfileRow{}).Error; err != nil {
			return fmt.Errorf("failed to delete profiles of version %q: %w", version, err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(records, s.batchSize).Error; err != nil {
			return fmt.Errorf("failed to insert profiles: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	metrics.StoreWrites.WithLabelValues(s.driver, targetProfilesTable).Add(float64(len(records)))
	s.logger.Info().Str("version", version).Int("saved", len(records)).Int("total", len(profiles)).Msg("Saved target profiles")
	return len(records), nil
}

// ListVersions returns every stored version, newest first.
func (s *GormStore) ListVersions(ctx context.Context) (versions []VersionInfo, err error) {
	defer observe(s.driver, "list_versions", time.Now(), &err)

	personas, err := s.countByVersion(ctx, &UserProfileRow{})
	if err != nil {
		return nil, err
	}
	profiles, err := s.countByVersion(ctx, &TargetProfileRow{})
	if err != nil {
		return nil, err
	}
	return mergeVersions(personas, profiles), nil
}

func (s *GormStore) countByVersion(ctx context.Context, model any) (map[string]int, error) {
	var counts []versionCount
	err := s.db.WithContext(ctx).Model(model).
		Select("version, COUNT(*) AS count").
		Group("version").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count versions: %w", err)
	}
	out := make(map[string]int, len(counts))
	for _, c := range counts {
		out[c.Version] = c.Count
	}
	return out, nil
}

// LoadPersonas returns all personas of version in insertion order.
func (s *GormStore) LoadPersonas(ctx context.Context, version string) (out []models.UserPersona, err error) {
	defer observe(s.driver, "load_personas", time.Now(), &err)

	var rows []UserProfileRow
	if err := s.db.WithContext(ctx).Where("version = ?", version).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load personas: %w", err)
	}
	out = make([]models.UserPersona, 0, len(rows))
	for _, r := range rows {
		p, err := decodePersona(r.UserProfile)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// LoadProfiles returns all target profiles of version in insertion order.
func (s *GormStore) LoadProfiles(ctx context.Context, version string) (out []models.TargetProfile, err error) {
	defer observe(s.driver, "load_profiles", time.Now(), &err)

	var rows []TargetProfileRow
	if err := s.db.WithContext(ctx).Where("version = ?", version).Order("id").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to load profiles: %w", err)
	}
	out = make([]models.TargetProfile, 0, len(rows))
	for _, r := range rows {
		p, err := decodeProfile(r.TargetProfile)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, nil
}

// GetPersona returns the persona of user in version.
func (s *GormStore) GetPersona(ctx context.Context, version string, user models.UserKey) (p *models.UserPersona, err error) {
	defer observe(s.driver, "get_persona", time.Now(), &err)

	var row UserProfileRow
	err = s.db.WithContext(ctx).
		Where("version = ? AND req_unit = ? AND req_group = ?", version, user.ReqUnit, user.ReqGroup).
		Order("id DESC").
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("persona %s in version %q: %w", user, version, notFound(err))
	}
	persona, err := decodePersona(row.UserProfile)
	if err != nil {
		return nil, err
	}
	return &persona, nil
}

// GetProfile returns the profile of targetID in version.
func (s *GormStore) GetProfile(ctx context.Context, version, targetID string) (p *models.TargetProfile, err error) {
	defer observe(s.driver, "get_profile", time.Now(), &err)

	var row TargetProfileRow
	err = s.db.WithContext(ctx).
		Where("version = ? AND target_id = ?", version, targetID).
		Order("id DESC").
		First(&row).Error
	if err != nil {
		return nil, fmt.Errorf("profile %s in version %q: %w", targetID, version, notFound(err))
	}
	profile, err := decodeProfile(row.TargetProfile)
	if err != nil {
		return nil, err
	}
	return &profile, nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Close closes the underlying connection pool.
func (s *GormStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
