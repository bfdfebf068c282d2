// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/config"
	"github.com/tomtom215/scoutpersona/internal/events"
	"github.com/tomtom215/scoutpersona/internal/logging"
	"github.com/tomtom215/scoutpersona/internal/metrics"
	"github.com/tomtom215/scoutpersona/internal/models"
)

// AllVersion is the persistence version used when no time window is set.
const AllVersion = "all"

// Stage is one selectable unit of work.
type Stage string

const (
	StagePersona   Stage = "persona"
	StageProfile   Stage = "profile"
	StageRecommend Stage = "recommend"
	StageDemand    Stage = "demand"
)

// AllStages is the full pipeline in execution order.
var AllStages = []Stage{StagePersona, StageProfile, StageRecommend, StageDemand}

// ResultStore persists personas and profiles by version.
// Satisfied by database.Store.
type ResultStore interface {
	SavePersonas(ctx context.Context, version string, personas []models.UserPersona) (int, error)
	SaveProfiles(ctx context.Context, version string, profiles []models.TargetProfile) (int, error)
}

// EventPublisher announces completed runs. Satisfied by *events.Publisher.
type EventPublisher interface {
	PublishCompleted(ctx context.Context, e *events.PipelineCompleted) error
}

// Summary describes one finished run.
type Summary struct {
	RunID       string        `json:"run_id"`
	Version     string        `json:"version"`
	Stages      []Stage       `json:"stages"`
	Counts      events.Counts `json:"counts"`
	Outputs     []string      `json:"outputs"`
	Duration    time.Duration `json:"duration"`
	CompletedAt time.Time     `json:"completed_at"`
}

// Pipeline runs the batch transform from targets and missions to the
// persona, profile, recommendation and demand documents.
//
// Thread Safety:
//   - runMu serialises runs; a second Run waits for the first
//   - mu protects lastRun
type Pipeline struct {
	cfg       *config.Config
	store     ResultStore
	publisher EventPublisher
	logger    zerolog.Logger
	now       func() time.Time

	runMu   sync.Mutex
	mu      sync.RWMutex
	lastRun *Summary
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithStore saves personas and profiles after they are built.
func WithStore(s ResultStore) Option {
	return func(p *Pipeline) { p.store = s }
}

// WithPublisher publishes a completion event after each successful run.
func WithPublisher(pub EventPublisher) Option {
	return func(p *Pipeline) { p.publisher = pub }
}

// WithClock overrides the time source for generation timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Pipeline) { p.now = now }
}

// New creates a pipeline. cfg must already be validated.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg *config.Config, logger zerolog.Logger, opts ...Option) *Pipeline {
	p := &Pipeline{
		cfg:    cfg,
		logger: logger.With().Str("component", "pipeline").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// ParseStage parses a stage name.
func ParseStage(s string) (Stage, error) {
	for _, st := range AllStages {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown stage %q", models.ErrInvalidConfig, s)
}

// Run executes the given stages, or all of them when none are given.
// Stages always execute in AllStages order. A stage whose inputs were not
// produced in the same run reads them from the output directory.
func (p *Pipeline) Run(ctx context.Context, stages ...Stage) (*Summary, error) {
	p.runMu.Lock()
	defer p.runMu.Unlock()

	if len(stages) == 0 {
		stages = AllStages
	}
	selected := make(map[Stage]bool, len(stages))
	for _, s := range stages {
		selected[s] = true
	}

	if logging.RunIDFromContext(ctx) == "" {
		ctx = logging.ContextWithNewRunID(ctx)
	}
	runID := logging.RunIDFromContext(ctx)
	logger := p.logger.With().Str("run_id", runID).Logger()
	ctx = logging.ContextWithLogger(ctx, logger)

	start := time.Now()
	r := newRun(p, logger)
	logger.Info().
		Str("version", r.version).
		Interface("stages", stages).
		Msg("Pipeline run starting")

	err := r.execute(ctx, selected)
	metrics.RecordPipelineRun(err)
	if err != nil {
		logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Pipeline run failed")
		return nil, err
	}

	summary := &Summary{
		RunID:       runID,
		Version:     r.version,
		Stages:      r.stages,
		Counts:      r.counts,
		Outputs:     r.outputs,
		Duration:    time.Since(start),
		CompletedAt: p.now(),
	}
	p.mu.Lock()
	p.lastRun = summary
	p.mu.Unlock()

	logger.Info().
		Int("personas", summary.Counts.Personas).
		Int("profiles", summary.Counts.Profiles).
		Int("recommendations", summary.Counts.Recommendations).
		Int("demands", summary.Counts.Demands).
		Dur("duration", summary.Duration).
		Msg("Pipeline run complete")

	p.publish(ctx, logger, summary)
	return summary, nil
}

// publish sends the completion event. Failures are logged only.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func (p *Pipeline) publish(ctx context.Context, logger zerolog.Logger, s *Summary) {
	if p.publisher == nil {
		return
	}
	e := events.NewPipelineCompleted(s.RunID, s.Version, s.Counts, s.Duration, s.CompletedAt)
	if err := p.publisher.PublishCompleted(ctx, e); err != nil {
		logger.Warn().Err(err).Str("event_id", e.EventID).Msg("Failed to publish pipeline completion event")
	}
}

// LastRun returns the summary of the last successful run, or nil.
func (p *Pipeline) LastRun() *Summary {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.lastRun
}
