// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package database

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/models"
)

func openStores(t *testing.T) map[string]Store {
	t.Helper()
	ctx := context.Background()

	duck, err := OpenDuckDB(ctx, "", zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenDuckDB() error = %v", err)
	}
	lite, err := OpenSQLite("", 2, zerolog.Nop())
	if err != nil {
		t.Fatalf("OpenSQLite() error = %v", err)
	}
	stores := map[string]Store{DriverDuckDB: duck, DriverSQLite: lite}
	t.Cleanup(func() {
		for _, s := range stores {
			_ = s.Close()
		}
	})
	return stores
}

func testPersona(unit, group string, requests int) models.UserPersona {
	p := models.UserPersona{UserID: models.UserKey{ReqUnit: unit, ReqGroup: group}}
	p.Tags.RequestFrequency.TotalCount = requests
	p.Tags.PreferredTargets = []models.TargetShare{{TargetID: "T1", Share: models.Share{Count: requests, Percentage: 100}}}
	return p
}

func testProfile(id string, cluster int) models.TargetProfile {
	p := models.TargetProfile{TargetID: id}
	p.Tags.SpatialDensity = []models.RegionShare{{ClusterID: cluster, Share: models.Share{Count: 1, Percentage: 100}}}
	p.Tags.TopicGroup = []models.TopicShare{{TopicGroupKey: models.TopicGroupKey{TopicID: "1", GroupName: "无分组"}}}
	return p
}

func TestStore_PersonaRoundTrip(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			personas := []models.UserPersona{
				testPersona("U1", "G1", 4),
				testPersona("", "G1", 2),
				testPersona("U2", "G2", 7),
				testPersona("U3", "G3", 1),
			}

			n, err := s.SavePersonas(ctx, "v1", personas)
			if err != nil {
				t.Fatalf("SavePersonas() error = %v", err)
			}
			if n != 3 {
				t.Errorf("SavePersonas() saved %d, want 3 (empty unit skipped)", n)
			}

			got, err := s.GetPersona(ctx, "v1", models.UserKey{ReqUnit: "U2", ReqGroup: "G2"})
			if err != nil {
				t.Fatalf("GetPersona() error = %v", err)
			}
			if got.Tags.RequestFrequency.TotalCount != 7 || got.Tags.PreferredTargets[0].TargetID != "T1" {
				t.Errorf("GetPersona() = %+v", got)
			}

			all, err := s.LoadPersonas(ctx, "v1")
			if err != nil {
				t.Fatalf("LoadPersonas() error = %v", err)
			}
			if len(all) != 3 || all[0].UserID.ReqUnit != "U1" || all[2].UserID.ReqUnit != "U3" {
				t.Errorf("LoadPersonas() = %+v, want U1, U2, U3 in order", all)
			}

			_, err = s.GetPersona(ctx, "v1", models.UserKey{ReqUnit: "U9", ReqGroup: "G9"})
			if !errors.Is(err, ErrNotFound) {
				t.Errorf("GetPersona(missing) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_SaveReplacesVersion(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := s.SaveProfiles(ctx, "v1", []models.TargetProfile{testProfile("T1", 0), testProfile("T2", 1)}); err != nil {
				t.Fatalf("SaveProfiles() error = %v", err)
			}
			if _, err := s.SaveProfiles(ctx, "v2", []models.TargetProfile{testProfile("T1", 5)}); err != nil {
				t.Fatalf("SaveProfiles(v2) error = %v", err)
			}
			if _, err := s.SaveProfiles(ctx, "v1", []models.TargetProfile{testProfile("T3", 2), testProfile("", 9)}); err != nil {
				t.Fatalf("SaveProfiles(v1 again) error = %v", err)
			}

			v1, err := s.LoadProfiles(ctx, "v1")
			if err != nil {
				t.Fatalf("LoadProfiles() error = %v", err)
			}
			if len(v1) != 1 || v1[0].TargetID != "T3" {
				t.Errorf("LoadProfiles(v1) = %+v, want only T3", v1)
			}

			p, err := s.GetProfile(ctx, "v2", "T1")
			if err != nil {
				t.Fatalf("GetProfile() error = %v", err)
			}
			if id, ok := p.ClusterID(); !ok || id != 5 {
				t.Errorf("GetProfile() cluster = %d, %v; want 5", id, ok)
			}
			if p.Tags.TopicGroup[0].GroupName != "无分组" {
				t.Errorf("GroupName = %q, want 无分组", p.Tags.TopicGroup[0].GroupName)
			}

			if _, err := s.GetProfile(ctx, "v1", "T1"); !errors.Is(err, ErrNotFound) {
				t.Errorf("GetProfile(replaced) error = %v, want ErrNotFound", err)
			}
		})
	}
}

func TestStore_ListVersions(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			if _, err := LatestVersion(ctx, s); !errors.Is(err, ErrNotFound) {
				t.Errorf("LatestVersion(empty) error = %v, want ErrNotFound", err)
			}

			if _, err := s.SavePersonas(ctx, "2025-01-01-2025-02-01", []models.UserPersona{testPersona("U1", "G1", 1)}); err != nil {
				t.Fatal(err)
			}
			if _, err := s.SaveProfiles(ctx, "2025-03-01-2025-04-01", []models.TargetProfile{testProfile("T1", 0), testProfile("T2", 0)}); err != nil {
				t.Fatal(err)
			}

			versions, err := s.ListVersions(ctx)
			if err != nil {
				t.Fatalf("ListVersions() error = %v", err)
			}
			want := []VersionInfo{
				{Version: "2025-03-01-2025-04-01", Profiles: 2},
				{Version: "2025-01-01-2025-02-01", Personas: 1},
			}
			if len(versions) != len(want) {
				t.Fatalf("ListVersions() = %+v, want %+v", versions, want)
			}
			for i := range want {
				if versions[i] != want[i] {
					t.Errorf("versions[%d] = %+v, want %+v", i, versions[i], want[i])
				}
			}

			latest, err := LatestVersion(ctx, s)
			if err != nil || latest != "2025-03-01-2025-04-01" {
				t.Errorf("LatestVersion() = %q, %v", latest, err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{"defaults", DefaultConfig(), false},
		{"disabled", Config{Driver: DriverNone, BatchSize: 1}, false},
		{"unknown driver", Config{Driver: "postgres", BatchSize: 1}, true},
		{"mysql without dsn", Config{Driver: DriverMySQL, BatchSize: 1}, true},
		{"zero batch", Config{Driver: DriverSQLite}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, models.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}

	if _, err := Open(context.Background(), Config{Driver: DriverNone, BatchSize: 1}, zerolog.Nop()); !errors.Is(err, ErrDisabled) {
		t.Errorf("Open(none) error = %v, want ErrDisabled", err)
	}
}

func TestEnsureParam(t *testing.T) {
	t.Parallel()

	tests := []struct {
		dsn, key, val, want string
	}{
		{"u:p@tcp(h:3306)/db", "parseTime", "true", "u:p@tcp(h:3306)/db?parseTime=true"},
		{"u:p@tcp(h:3306)/db?x=1", "parseTime", "true", "u:p@tcp(h:3306)/db?x=1&parseTime=true"},
		{"u:p@tcp(h:3306)/db?parseTime=false", "parseTime", "true", "u:p@tcp(h:3306)/db?parseTime=false"},
	}
	for _, tt := range tests {
		if got := ensureParam(tt.dsn, tt.key, tt.val); got != tt.want {
			t.Errorf("ensureParam(%q) = %q, want %q", tt.dsn, got, tt.want)
		}
	}
}
