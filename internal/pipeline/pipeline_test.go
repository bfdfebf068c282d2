// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package pipeline

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/config"
	"github.com/tomtom215/scoutpersona/internal/dataset"
	"github.com/tomtom215/scoutpersona/internal/events"
	"github.com/tomtom215/scoutpersona/internal/logging"
	"github.com/tomtom215/scoutpersona/internal/models"
)

const targetsJSON = `{"targets": [
	{"target_id": "T1", "target_type": "POINT", "target_category": "机场", "group_list": [{"group_name": "east"}],
	 "trajectory_list": [{"lat": "30.0", "lon": "120.0"}]},
	{"target_id": "T2", "target_type": "POINT", "target_category": "港口",
	 "trajectory_list": [{"lat": "30.1", "lon": "120.1"}]},
	{"target_id": "T3", "target_type": "AREA", "target_category": "机场",
	 "trajectory_list": [{"lat": "45.0", "lon": "80.0"}]}
]}`

const missionsJSON = `[
	{"req_id": "R1", "req_unit": "U1", "req_group": "G1", "target_id": "T1", "task_type": "5", "scout_type": "LDCXMB",
	 "req_start_time": "2025-03-01 08:00:00", "req_cycle": "1", "req_cycle_time": "2", "target_priority": 2},
	{"req_id": "R2", "req_unit": "U1", "req_group": "G1", "target_id": "T1", "task_type": "5",
	 "req_start_time": "2025-03-02 08:00:00", "req_times": "3"},
	{"req_id": "R3", "req_unit": "U1", "req_group": "G1", "target_id": "T2",
	 "req_start_time": "2025-03-03 08:00:00", "req_times": "1"},
	{"req_id": "R4", "req_unit": "U2", "req_group": "G1", "target_id": "T2",
	 "req_start_time": "2025-03-04 08:00:00", "req_times": "2"},
	{"req_id": "R5", "req_unit": "U2", "req_group": "G1", "target_id": "T3",
	 "req_start_time": "2024-12-01 08:00:00", "req_times": "1"}
]`

const tasksJSON = `{"virtual_tasks": [
	{"generateTaskId": "task-1", "targetId": "T1"},
	{"generateTaskId": "task-2", "targetId": "T2"},
	{"generateTaskId": "task-3", "targetId": "T3"}
]}`

var fixedNow = time.Date(2025, 10, 21, 8, 30, 0, 0, time.UTC)

type fakeStore struct {
	mu       sync.Mutex
	personas map[string]int
	profiles map[string]int
	err      error
}

func (s *fakeStore) SavePersonas(_ context.Context, version string, p []models.UserPersona) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	if s.personas == nil {
		s.personas = make(map[string]int)
	}
	s.personas[version] = len(p)
	return len(p), nil
}

func (s *fakeStore) SaveProfiles(_ context.Context, version string, p []models.TargetProfile) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return 0, s.err
	}
	if s.profiles == nil {
		s.profiles = make(map[string]int)
	}
	s.profiles[version] = len(p)
	return len(p), nil
}

type fakePublisher struct {
	events []*events.PipelineCompleted
	err    error
}

func (f *fakePublisher) PublishCompleted(_ context.Context, e *events.PipelineCompleted) error {
	f.events = append(f.events, e)
	return f.err
}

func writeInput(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	return path
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	in := t.TempDir()
	cfg := config.DefaultConfig()
	cfg.Pipeline.TargetsPath = writeInput(t, in, "targets.json", targetsJSON)
	cfg.Pipeline.MissionsPath = writeInput(t, in, "missions.json", missionsJSON)
	cfg.Pipeline.TasksPath = writeInput(t, in, "virtual_tasks.json", tasksJSON)
	cfg.Pipeline.OutputDir = filepath.Join(t.TempDir(), "out")
	cfg.Pipeline.Workers = 2
	return cfg
}

func newPipeline(cfg *config.Config, opts ...Option) *Pipeline {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return New(cfg, zerolog.Nop(), opts...)
}

func TestRun_AllStages(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	store := &fakeStore{}
	pub := &fakePublisher{}
	p := newPipeline(cfg, WithStore(store), WithPublisher(pub))

	summary, err := p.Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	want := events.Counts{Targets: 3, Missions: 5, Personas: 2, Profiles: 3}
	got := summary.Counts
	if got.Targets != want.Targets || got.Missions != want.Missions || got.Personas != want.Personas || got.Profiles != want.Profiles {
		t.Errorf("Counts = %+v, want %+v", got, want)
	}
	if got.Recommendations == 0 || got.Demands == 0 {
		t.Errorf("Counts = %+v, want recommendations and demands", got)
	}
	if summary.Version != AllVersion {
		t.Errorf("Version = %q, want %q", summary.Version, AllVersion)
	}
	if len(summary.Stages) != len(AllStages) {
		t.Errorf("Stages = %v, want %v", summary.Stages, AllStages)
	}

	for _, name := range []string{dataset.PersonaFile, dataset.ProfileFile, dataset.RecommendationFile, dataset.DemandFile} {
		if _, err := os.Stat(filepath.Join(cfg.Pipeline.OutputDir, name)); err != nil {
			t.Errorf("output %s: %v", name, err)
		}
	}
	if len(summary.Outputs) != 4 {
		t.Errorf("Outputs = %v, want 4 documents", summary.Outputs)
	}

	doc, err := dataset.LoadPersonas(filepath.Join(cfg.Pipeline.OutputDir, dataset.PersonaFile))
	if err != nil {
		t.Fatalf("LoadPersonas() error = %v", err)
	}
	if doc.Statistics.Total != 2 || doc.DataSource != nil {
		t.Errorf("persona document = total %d, data_source %+v", doc.Statistics.Total, doc.DataSource)
	}
	if doc.Personas[0].GenerationTime != fixedNow.Format(models.GenerationTimeLayout) {
		t.Errorf("GenerationTime = %q", doc.Personas[0].GenerationTime)
	}

	if store.personas[AllVersion] != 2 || store.profiles[AllVersion] != 3 {
		t.Errorf("store = %v / %v, want 2 personas and 3 profiles under %q", store.personas, store.profiles, AllVersion)
	}

	if len(pub.events) != 1 {
		t.Fatalf("published %d events, want 1", len(pub.events))
	}
	if e := pub.events[0]; e.RunID != summary.RunID || e.Counts != summary.Counts || e.EventID == "" {
		t.Errorf("event = %+v, want run %s", e, summary.RunID)
	}
	if p.LastRun() != summary {
		t.Error("LastRun() does not return the last summary")
	}
}

func TestRun_TimeWindow(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Pipeline.Start = "2025-01-01 00:00:00"
	cfg.Pipeline.End = "not a time"
	store := &fakeStore{}
	p := newPipeline(cfg, WithStore(store))

	summary, err := p.Run(context.Background(), StagePersona, StageProfile)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	const wantVersion = "2025-01-01_00-00-00-"
	if summary.Version != wantVersion {
		t.Errorf("Version = %q, want %q", summary.Version, wantVersion)
	}
	// R5 predates the window, so T3 has no profile.
	if summary.Counts.Profiles != 2 {
		t.Errorf("Profiles = %d, want 2", summary.Counts.Profiles)
	}
	if _, ok := store.profiles[wantVersion]; !ok {
		t.Errorf("store versions = %v, want %q", store.profiles, wantVersion)
	}

	doc, err := dataset.LoadProfiles(filepath.Join(cfg.Pipeline.OutputDir, dataset.ProfileFile))
	if err != nil {
		t.Fatalf("LoadProfiles() error = %v", err)
	}
	if doc.DataSource == nil || doc.DataSource.TimeRange.Start != cfg.Pipeline.Start {
		t.Errorf("DataSource = %+v, want start %q", doc.DataSource, cfg.Pipeline.Start)
	}
}

func TestRun_StagesReadPreviousOutputs(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	p := newPipeline(cfg)
	if _, err := p.Run(context.Background(), StagePersona, StageProfile); err != nil {
		t.Fatalf("Run(persona, profile) error = %v", err)
	}

	summary, err := p.Run(context.Background(), StageDemand, StageRecommend)
	if err != nil {
		t.Fatalf("Run(demand, recommend) error = %v", err)
	}
	if len(summary.Stages) != 2 || summary.Stages[0] != StageRecommend {
		t.Errorf("Stages = %v, want [recommend demand]", summary.Stages)
	}
	if summary.Counts.Demands == 0 || summary.Counts.Recommendations == 0 {
		t.Errorf("Counts = %+v", summary.Counts)
	}
	if summary.Counts.Targets != 0 {
		t.Errorf("Targets = %d, inputs should not be reloaded", summary.Counts.Targets)
	}
}

func TestRun_DemandWithoutProfiles(t *testing.T) {
	t.Parallel()

	p := newPipeline(testConfig(t))
	_, err := p.Run(context.Background(), StageDemand)
	if !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("Run(demand) error = %v, want fs.ErrNotExist", err)
	}
}

func TestRun_MissingTasksSkipsRecommendation(t *testing.T) {
	t.Parallel()

	cfg := testConfig(t)
	cfg.Pipeline.TasksPath = filepath.Join(t.TempDir(), "missing.json")
	summary, err := newPipeline(cfg).Run(context.Background())
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.Counts.Recommendations != 0 {
		t.Errorf("Recommendations = %d, want 0", summary.Counts.Recommendations)
	}
	if _, err := os.Stat(filepath.Join(cfg.Pipeline.OutputDir, dataset.RecommendationFile)); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("recommendation document written without tasks: %v", err)
	}
}

func TestRun_Failures(t *testing.T) {
	t.Parallel()

	t.Run("missing missions", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.Pipeline.MissionsPath = filepath.Join(t.TempDir(), "none.json")
		if _, err := newPipeline(cfg).Run(context.Background()); !errors.Is(err, fs.ErrNotExist) {
			t.Errorf("Run() error = %v, want fs.ErrNotExist", err)
		}
	})

	t.Run("empty missions", func(t *testing.T) {
		t.Parallel()
		cfg := testConfig(t)
		cfg.Pipeline.MissionsPath = writeInput(t, t.TempDir(), "missions.json", `[]`)
		if _, err := newPipeline(cfg).Run(context.Background()); !errors.Is(err, models.ErrInsufficientData) {
			t.Errorf("Run() error = %v, want ErrInsufficientData", err)
		}
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		boom := errors.New("disk full")
		pub := &fakePublisher{}
		p := newPipeline(testConfig(t), WithStore(&fakeStore{err: boom}), WithPublisher(pub))
		if _, err := p.Run(context.Background()); !errors.Is(err, boom) {
			t.Errorf("Run() error = %v, want %v", err, boom)
		}
		if len(pub.events) != 0 {
			t.Error("failed run must not publish")
		}
	})

	t.Run("publish failure is not fatal", func(t *testing.T) {
		t.Parallel()
		pub := &fakePublisher{err: errors.New("broker down")}
		if _, err := newPipeline(testConfig(t), WithPublisher(pub)).Run(context.Background()); err != nil {
			t.Errorf("Run() error = %v, want nil", err)
		}
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := newPipeline(testConfig(t)).Run(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("Run() error = %v, want context.Canceled", err)
		}
	})
}

func TestRun_KeepsCallerRunID(t *testing.T) {
	t.Parallel()

	ctx := logging.ContextWithRunID(context.Background(), "run-42")
	summary, err := newPipeline(testConfig(t)).Run(ctx, StagePersona)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if summary.RunID != "run-42" {
		t.Errorf("RunID = %q, want run-42", summary.RunID)
	}
}

func TestParseStage(t *testing.T) {
	t.Parallel()

	for _, s := range AllStages {
		got, err := ParseStage(string(s))
		if err != nil || got != s {
			t.Errorf("ParseStage(%q) = %q, %v", s, got, err)
		}
	}
	if _, err := ParseStage("train"); !errors.Is(err, models.ErrInvalidConfig) {
		t.Errorf("ParseStage(train) error = %v, want ErrInvalidConfig", err)
	}
}
