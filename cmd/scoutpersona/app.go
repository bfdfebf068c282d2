// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package main

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/config"
	"github.com/tomtom215/scoutpersona/internal/database"
	"github.com/tomtom215/scoutpersona/internal/events"
	"github.com/tomtom215/scoutpersona/internal/logging"
	"github.com/tomtom215/scoutpersona/internal/metrics"
	"github.com/tomtom215/scoutpersona/internal/pipeline"
)

// app holds the components shared by the batch and serve commands.
type app struct {
	cfg       *config.Config
	logger    zerolog.Logger
	store     database.Store
	publisher *events.Publisher
	pipeline  *pipeline.Pipeline
}

// newApp opens the result store and event publisher and assembles the
// pipeline. A disabled store leaves app.store nil.
func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	logger := logging.Logger()
	metrics.AppInfo.WithLabelValues(version, runtime.Version()).Set(1)

	a := &app{cfg: cfg, logger: logger}

	store, err := database.Open(ctx, cfg.Database, logger)
	switch {
	case errors.Is(err, database.ErrDisabled):
		logger.Info().Msg("Result store disabled")
	case err != nil:
		return nil, fmt.Errorf("open result store: %w", err)
	default:
		a.store = store
		logger.Info().Str("driver", cfg.Database.Driver).Msg("Result store opened")
	}

	publisher, err := events.NewPublisher(cfg.Events, logger)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("create event publisher: %w", err)
	}
	a.publisher = publisher

	opts := []pipeline.Option{pipeline.WithPublisher(publisher)}
	if a.store != nil {
		opts = append(opts, pipeline.WithStore(a.store))
	}
	a.pipeline = pipeline.New(cfg, logger, opts...)
	return a, nil
}

func (a *app) close() {
	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing event publisher")
		}
	}
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Error closing result store")
		}
	}
}
