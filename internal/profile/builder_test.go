// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package profile

import (
	"context"
	"errors"
	"io"
	"math"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/tagging"
)

var fixedNow = time.Date(2026, 3, 1, 8, 30, 0, 0, time.UTC)

func newTestBuilder(t *testing.T) *Builder {
	t.Helper()
	b, err := NewBuilder(DefaultConfig(), zerolog.New(io.Discard),
		WithClock(func() time.Time { return fixedNow }), WithWorkers(2))
	if err != nil {
		t.Fatalf("NewBuilder() error = %v", err)
	}
	return b
}

func testTargets() []models.Target {
	return []models.Target{
		{TargetID: "T1", TargetType: "POINT", TargetCategory: "机场", Groups: []models.Group{{GroupName: "G-A"}, {GroupName: "G-B"}}},
		{TargetID: "T2", TargetType: "", TargetCategory: "nan"},
	}
}

func mission(target string) models.Mission {
	return models.Mission{
		ReqUnit: "U1", ReqGroup: "G1", TargetID: target, TopicID: "7",
		TaskType: "5", ScoutType: "LDCXMB", TaskScene: "核查", IsPrecise: true,
	}
}

func TestNewBuilder_InvalidConfig(t *testing.T) {
	t.Parallel()

	if _, err := NewBuilder(Config{TopN: 0}, zerolog.New(io.Discard)); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("NewBuilder() error = %v, want ErrInvalidConfig", err)
	}
}

func TestBuild_InsufficientData(t *testing.T) {
	t.Parallel()

	b := newTestBuilder(t)
	if _, err := b.Build(context.Background(), Input{Missions: []models.Mission{mission("T1")}}); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("empty targets: error = %v, want ErrInsufficientData", err)
	}
	if _, err := b.Build(context.Background(), Input{Targets: testTargets()}); !errors.Is(err, models.ErrInsufficientData) {
		t.Errorf("empty missions: error = %v, want ErrInsufficientData", err)
	}
}

func TestBuild_Dimensions(t *testing.T) {
	t.Parallel()

	m1 := mission("T1")
	m1.ReqCycle, m1.ReqCycleTime, m1.HasCycleTime = "一周", 3, true
	m1.ReqTimes, m1.HasReqTimes = 2, true
	m1.TargetPriority, m1.HasPriority = 1.5, true
	m1.Resolution = "0.5-1.0"
	m1.MissionPlanType = "2"

	m2 := m1
	m2.Resolution = "（1.0~2.0）"

	m3 := mission("T1")
	m3.TaskType = ""
	m3.Resolution = "bad"

	b := newTestBuilder(t)
	profiles, err := b.Build(context.Background(), Input{
		Targets:  testTargets(),
		Missions: []models.Mission{m1, m2, m3},
		Clusters: map[string]int{"T1": 4},
	})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(profiles) != 1 {
		t.Fatalf("got %d profiles, want 1", len(profiles))
	}
	p := profiles[0]
	if p.GenerationTime != "2026-03-01T08:30:00.000000" {
		t.Errorf("GenerationTime = %q", p.GenerationTime)
	}

	cycles := p.Tags.ScoutCycle
	if len(cycles) != 1 || cycles[0].CycleLabel != "1周3次" || cycles[0].ReqCycle != "1周" || cycles[0].ReqCycleTimes != 3 {
		t.Errorf("ScoutCycle = %+v", cycles)
	}
	if cycles[0].Count != 2 || cycles[0].Percentage != 66.67 {
		t.Errorf("cycle share = %+v, want 2 / 66.67", cycles[0].Share)
	}

	freq := p.Tags.ScoutFrequency
	if len(freq) != 1 || freq[0].FrequencyLabel != "周期频次为2" || freq[0].ReqTimes != 2 {
		t.Errorf("ScoutFrequency = %+v", freq)
	}

	scen := p.Tags.ScoutScenario
	if len(scen) != 2 || scen[0].Count != 2 || scen[1].TaskType != UnknownTaskType {
		t.Errorf("ScoutScenario = %+v", scen)
	}

	if id, ok := p.ClusterID(); !ok || id != 4 || p.Tags.SpatialDensity[0].Count != 3 {
		t.Errorf("SpatialDensity = %+v", p.Tags.SpatialDensity)
	}

	tc := p.Tags.TargetType
	if len(tc) != 1 || tc[0].TargetType != "POINT" || tc[0].TargetCategory != "机场" || tc[0].Percentage != 100 {
		t.Errorf("TargetType = %+v", tc)
	}
	if len(p.Tags.TargetCategory) != 1 || p.Tags.TargetCategory[0] != tc[0] {
		t.Errorf("TargetCategory = %+v", p.Tags.TargetCategory)
	}

	topics := p.Tags.TopicGroup
	if len(topics) != 2 || topics[0].GroupName != "G-A" || topics[0].Count != 3 || topics[0].Percentage != 50 {
		t.Errorf("TopicGroup = %+v", topics)
	}

	prio := p.Tags.TargetPriority
	if len(prio) != 1 || prio[0].Priority != "1.5" || prio[0].Count != 2 {
		t.Errorf("TargetPriority = %+v", prio)
	}

	res := p.Tags.Resolution
	if len(res) != 1 || res[0].Resolution != "0.5-2" || res[0].Count != 2 || res[0].Percentage != 66.67 {
		t.Errorf("Resolution = %+v", res)
	}

	plan := p.Tags.MissionPlanType
	if len(plan) != 1 || plan[0].MissionPlanType != "2" || plan[0].Count != 2 {
		t.Errorf("MissionPlanType = %+v", plan)
	}
}

func TestBuild_Sentinels(t *testing.T) {
	t.Parallel()

	m := mission("T2")
	m.TargetPriority, m.HasPriority = math.NaN(), true
	orphan := mission("MISSING")

	b := newTestBuilder(t)
	profiles, err := b.Build(context.Background(), Input{Targets: testTargets(), Missions: []models.Mission{m, orphan}})
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if len(profiles) != 2 {
		t.Fatalf("got %d profiles, want 2", len(profiles))
	}

	for _, p := range profiles {
		tags := p.Tags
		if len(tags.ScoutCycle) != 1 || tags.ScoutCycle[0].CycleLabel != tagging.Sentinel || tags.ScoutCycle[0].Percentage != 100 {
			t.Errorf("%s: ScoutCycle = %+v", p.TargetID, tags.ScoutCycle)
		}
		if tags.ScoutFrequency[0].FrequencyLabel != tagging.Sentinel {
			t.Errorf("%s: ScoutFrequency = %+v", p.TargetID, tags.ScoutFrequency)
		}
		if tags.TargetPriority[0].Priority != tagging.Sentinel {
			t.Errorf("%s: TargetPriority = %+v", p.TargetID, tags.TargetPriority)
		}
		if tags.Resolution[0].Resolution != tagging.Sentinel {
			t.Errorf("%s: Resolution = %+v", p.TargetID, tags.Resolution)
		}
		if tags.MissionPlanType[0].MissionPlanType != tagging.Sentinel {
			t.Errorf("%s: MissionPlanType = %+v", p.TargetID, tags.MissionPlanType)
		}
		want := models.TypeCategoryKey{TargetType: tagging.Sentinel, TargetCategory: tagging.Sentinel}
		if tags.TargetType[0].TypeCategoryKey != want {
			t.Errorf("%s: TargetType = %+v, want sentinel", p.TargetID, tags.TargetType)
		}
		if tags.TopicGroup[0].GroupName != NoGroup {
			t.Errorf("%s: TopicGroup = %+v", p.TargetID, tags.TopicGroup)
		}
		if id, _ := p.ClusterID(); id != -1 {
			t.Errorf("%s: cluster = %d, want -1", p.TargetID, id)
		}
	}
}

func TestPriorityLabel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		m    models.Mission
		want string
	}{
		{"integer", models.Mission{TargetPriority: 3, HasPriority: true}, "3"},
		{"fraction", models.Mission{TargetPriority: 0.25, HasPriority: true}, "0.25"},
		{"missing", models.Mission{TargetPriority: 3}, ""},
		{"nan", models.Mission{TargetPriority: math.NaN(), HasPriority: true}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := PriorityLabel(&tt.m); got != tt.want {
				t.Errorf("PriorityLabel() = %q, want %q", got, tt.want)
			}
		})
	}
}
