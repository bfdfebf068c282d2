// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package services

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/models"
)

// PipelineRunner runs the pipeline once. In serve mode it is a closure over
// (*pipeline.Pipeline).Run.
type PipelineRunner func(ctx context.Context) error

// SchedulerConfig configures the scheduler service.
type SchedulerConfig struct {
	// Cron is a standard five-field expression or a descriptor such as
	// "@daily".
	Cron string

	// RunOnStart triggers one run as soon as the service starts.
	RunOnStart bool

	// StopTimeout bounds the wait for a running job on shutdown.
	// Default: 30s
	StopTimeout time.Duration
}

// SchedulerService triggers pipeline runs on a cron schedule. A trigger
// that fires while a run is still in progress is skipped.
type SchedulerService struct {
	run      PipelineRunner
	cfg      SchedulerConfig
	schedule cron.Schedule
	logger   zerolog.Logger
	name     string

	running atomic.Bool
	runs    atomic.Int64
	skipped atomic.Int64
}

// NewSchedulerService validates the cron expression and creates the service.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewSchedulerService(run PipelineRunner, cfg SchedulerConfig, logger zerolog.Logger) (*SchedulerService, error) {
	schedule, err := cron.ParseStandard(cfg.Cron)
	if err != nil {
		return nil, fmt.Errorf("%w: schedule.cron %q: %v", models.ErrInvalidConfig, cfg.Cron, err)
	}
	if cfg.StopTimeout <= 0 {
		cfg.StopTimeout = 30 * time.Second
	}
	return &SchedulerService{
		run:      run,
		cfg:      cfg,
		schedule: schedule,
		logger:   logger.With().Str("service", "scheduler").Logger(),
		name:     "pipeline-scheduler",
	}, nil
}

// Serve implements suture.Service.
func (s *SchedulerService) Serve(ctx context.Context) error {
	c := cron.New(cron.WithLogger(cronLogger{logger: s.logger}))
	c.Schedule(s.schedule, cron.FuncJob(func() { s.trigger(ctx, "cron") }))
	c.Start()

	s.logger.Info().
		Str("cron", s.cfg.Cron).
		Bool("run_on_start", s.cfg.RunOnStart).
		Msg("Pipeline scheduler started")

	if s.cfg.RunOnStart {
		s.trigger(ctx, "startup")
	}

	<-ctx.Done()

	stopped := c.Stop()
	select {
	case <-stopped.Done():
	case <-time.After(s.cfg.StopTimeout):
		s.logger.Warn().Dur("timeout", s.cfg.StopTimeout).Msg("Scheduled run still active at shutdown")
	}
	s.logger.Info().Msg("Pipeline scheduler stopped")
	return ctx.Err()
}

// trigger runs the pipeline unless a run is already active. Failures are
// logged; the next trigger retries.
func (s *SchedulerService) trigger(ctx context.Context, reason string) {
	if !s.running.CompareAndSwap(false, true) {
		s.skipped.Add(1)
		s.logger.Warn().Str("reason", reason).Msg("Previous pipeline run still active, skipping trigger")
		return
	}
	defer s.running.Store(false)

	s.runs.Add(1)
	start := time.Now()
	s.logger.Info().Str("reason", reason).Msg("Scheduled pipeline run starting")
	if err := s.run(ctx); err != nil {
		s.logger.Error().Err(err).Str("reason", reason).Msg("Scheduled pipeline run failed")
		return
	}
	s.logger.Info().
		Str("reason", reason).
		Dur("duration", time.Since(start)).
		Time("next", s.schedule.Next(time.Now())).
		Msg("Scheduled pipeline run complete")
}

// Runs returns how many runs were started.
func (s *SchedulerService) Runs() int64 {
	return s.runs.Load()
}

// Skipped returns how many triggers were skipped because a run was active.
func (s *SchedulerService) Skipped() int64 {
	return s.skipped.Load()
}

// String implements fmt.Stringer for suture's logs.
func (s *SchedulerService) String() string {
	return s.name
}

// cronLogger adapts zerolog to cron.Logger.
type cronLogger struct {
	logger zerolog.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error().Err(err).Fields(keysAndValues).Msg(msg)
}
