// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package persona

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/preference"
)

var fixedNow = time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(preference.DefaultConfig(), zerolog.New(io.Discard),
		WithClock(func() time.Time { return fixedNow }), WithWorkers(2))
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func testTargets() []models.Target {
	return []models.Target{
		{TargetID: "T1", TargetType: "POINT", TargetCategory: "机场", Groups: []models.Group{{GroupName: "G-A"}, {GroupName: "G-B"}}},
		{TargetID: "T2", TargetType: "POINT", TargetCategory: "港口"},
		{TargetID: "T3", TargetType: "AREA", TargetCategory: "机场", Groups: []models.Group{{GroupName: "G-A"}}},
	}
}

func mission(unit, group, target, topic, start string) models.Mission {
	return models.Mission{
		ReqUnit: unit, ReqGroup: group, TargetID: target, TopicID: topic, ReqStartTime: start,
		TaskType: "5", ScoutType: "LDCXMB", TaskScene: "核查", IsPrecise: true,
	}
}

func TestBuild_InsufficientData(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	if _, err := b.Build(context.Background(), Input{Missions: []models.Mission{mission("U", "G", "T1", "1", "")}}); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("empty targets: error = %v, want ErrInsufficientData", err)
	}
	if _, err := b.Build(context.Background(), Input{Targets: testTargets()}); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("empty missions: error = %v, want ErrInsufficientData", err)
	}
}

func TestBuild_Tags(t *testing.T) {
	t.Parallel()

	missions := []models.Mission{
		mission("U1", "G1", "T1", "7", ""),
		mission("U1", "G1", "T1", "7", ""),
		mission("U1", "G1", "T2", "7", ""),
		mission("U1", "G1", "UNKNOWN", "8", ""),
		mission("U2", "G1", "T3", "7", ""),
	}
	clusters := map[string]int{"T1": 0, "T2": -1}

	b := newTestBuilder(t)
	personas, err := b.Build(context.Background(), Input{Targets: testTargets(), Missions: missions, Clusters: clusters})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(personas) != 2 {
		t.Fatalf("got %d personas, want 2", len(personas))
	}

	p := personas[0]
	if p.UserID != (models.UserKey{ReqUnit: "U1", ReqGroup: "G1"}) {
		t.Errorf("first persona = %v, want U1/G1", p.UserID)
	}
	if p.GenerationTime != "2026-03-01T08:30:00.000000" {
		t.Errorf("GenerationTime = %q", p.GenerationTime)
	}
	if p.Tags.RequestFrequency.TotalCount != 4 {
		t.Errorf("TotalCount = %d, want 4", p.Tags.RequestFrequency.TotalCount)
	}

	// T1:2, T2:1, UNKNOWN:1 -> concentrated -> percentage
	targets := p.Tags.PreferredTargets
	if len(targets) != 3 || targets[0].TargetID != "T1" || targets[0].Percentage != 50 {
		t.Errorf("PreferredTargets = %+v", targets)
	}
	if targets[1].TargetID != "T2" || targets[2].TargetID != "UNKNOWN" {
		t.Errorf("tie not broken by target id: %+v", targets)
	}

	// Clustered missions only: cluster 0 x2, noise x1.
	regions := p.Tags.PreferredRegions
	if len(regions) != 2 || regions[0].ClusterID != 0 || regions[0].Count != 2 || regions[0].Percentage != 66.67 {
		t.Errorf("PreferredRegions = %+v", regions)
	}
	if regions[1].ClusterID != -1 || regions[1].Percentage != 33.33 {
		t.Errorf("noise region = %+v", regions[1])
	}

	// Unknown target skipped: POINT/机场 x2, POINT/港口 x1.
	cats := p.Tags.PreferredCategory
	if len(cats) != 2 || cats[0].TargetCategory != "机场" || cats[0].Percentage != 66.67 {
		t.Errorf("PreferredCategory = %+v", cats)
	}

	// T1 counts once per group; T2 and the unknown target count as NoGroup.
	topics := p.Tags.PreferredTopic
	want := map[models.TopicGroupKey]int{
		{TopicID: "7", GroupName: "G-A"}:   2,
		{TopicID: "7", GroupName: "G-B"}:   2,
		{TopicID: "7", GroupName: NoGroup}: 1,
	}
	if len(topics) != 3 {
		t.Fatalf("PreferredTopic = %+v", topics)
	}
	for _, tp := range topics {
		if want[tp.TopicGroupKey] != tp.Count {
			t.Errorf("topic %+v count = %d, want %d", tp.TopicGroupKey, tp.Count, want[tp.TopicGroupKey])
		}
	}
	if topics[0].GroupName != "G-A" || topics[1].GroupName != "G-B" {
		t.Errorf("topic order = %+v", topics)
	}

	scen := p.Tags.PreferredScenarios
	if len(scen) != 1 || scen[0].Count != 4 || scen[0].Percentage != 100 || !scen[0].IsPrecise {
		t.Errorf("PreferredScenarios = %+v", scen)
	}
}

func TestBuild_NoClusterMap(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	personas, err := b.Build(context.Background(), Input{
		Targets:  testTargets(),
		Missions: []models.Mission{mission("U1", "G1", "T1", "1", "")},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if r := personas[0].Tags.PreferredRegions; r == nil || len(r) != 0 {
		t.Errorf("PreferredRegions = %#v, want empty list", r)
	}
}

func TestBuild_TimeWindow(t *testing.T) {
	t.Parallel()

	missions := []models.Mission{
		mission("U1", "G1", "T1", "1", "2025-01-05 10:00:00"),
		mission("U1", "G1", "T2", "1", "2025/02/10"),
		mission("U2", "G1", "T2", "1", "not a time"),
		mission("U3", "G1", "T3", "1", "2025-06-01"),
	}
	window, invalid := models.NewTimeWindow("2025-01-01", "2025-03-01")
	if len(invalid) != 0 {
		t.Fatalf("unexpected invalid bounds %v", invalid)
	}

	b := newTestBuilder(t)
	personas, err := b.Build(context.Background(), Input{Targets: testTargets(), Missions: missions, Window: window})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(personas) != 1 {
		t.Fatalf("got %d personas, want 1", len(personas))
	}
	if personas[0].Tags.RequestFrequency.TotalCount != 2 {
		t.Errorf("TotalCount = %d, want 2", personas[0].Tags.RequestFrequency.TotalCount)
	}
	if personas[0].DataTimeRange.StartTime != "2025-01-01" {
		t.Errorf("DataTimeRange = %+v", personas[0].DataTimeRange)
	}
}

func TestBuild_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	b := newTestBuilder(t)
	_, err := b.Build(ctx, Input{Targets: testTargets(), Missions: []models.Mission{mission("U", "G", "T1", "1", "")}})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
}

func TestBuild_Sentinels(t *testing.T) {
	t.Parallel()

	targets := []models.Target{
		{TargetID: "T1", TargetType: "", TargetCategory: "NaN"},
		{TargetID: "T2", TargetType: "POINT", TargetCategory: "机场"},
	}
	blank := func(unit, target string) models.Mission {
		return models.Mission{ReqUnit: unit, ReqGroup: "G", TargetID: target, TopicID: "1"}
	}
	missions := []models.Mission{
		blank("U1", "T1"),
		blank("U1", "T1"),
		blank("U2", "T1"),
		blank("U2", "T2"),
	}

	b := newTestBuilder(t)
	personas, err := b.Build(context.Background(), Input{Targets: targets, Missions: missions})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(personas) != 2 {
		t.Fatalf("got %d personas, want 2", len(personas))
	}

	nan := models.TypeCategoryKey{TargetType: "NAN", TargetCategory: "NAN"}

	// U1 only has invalid categories and scenario fields.
	u1 := personas[0].Tags
	if len(u1.PreferredCategory) != 1 || u1.PreferredCategory[0].TypeCategoryKey != nan ||
		u1.PreferredCategory[0].Count != 2 || u1.PreferredCategory[0].Percentage != 100 {
		t.Errorf("U1 PreferredCategory = %+v, want single NAN sentinel", u1.PreferredCategory)
	}
	wantScen := models.ScenarioKey{TaskType: "NAN", ScoutType: "NAN", TaskScene: "NAN"}
	if len(u1.PreferredScenarios) != 1 || u1.PreferredScenarios[0].ScenarioKey != wantScen || u1.PreferredScenarios[0].Count != 2 {
		t.Errorf("U1 PreferredScenarios = %+v, want single NAN sentinel", u1.PreferredScenarios)
	}

	// U2 keeps its valid category; the invalid one is dropped but still
	// counts toward the percentage.
	u2 := personas[1].Tags
	if len(u2.PreferredCategory) != 1 || u2.PreferredCategory[0].TargetCategory != "机场" || u2.PreferredCategory[0].Percentage != 50 {
		t.Errorf("U2 PreferredCategory = %+v, want 机场 at 50%%", u2.PreferredCategory)
	}
}
