// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/tomtom215/scoutpersona/internal/api"
	"github.com/tomtom215/scoutpersona/internal/cache"
	"github.com/tomtom215/scoutpersona/internal/logging"
	"github.com/tomtom215/scoutpersona/internal/supervisor"
	"github.com/tomtom215/scoutpersona/internal/supervisor/services"
)

const (
	readHeaderTimeout = 10 * time.Second
	shutdownTimeout   = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve stored results and run the pipeline on a schedule",
	Long: `Start the read-only HTTP API under a supervisor tree. When
schedule.enabled is set, the full pipeline also runs on the configured
cron expression.

Examples:
  scoutpersona serve
  SCHEDULE_ENABLED=true SCHEDULE_CRON="@hourly" scoutpersona serve`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	a, err := newApp(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close()

	tree := supervisor.NewTree(logging.NewSlogLogger("supervisor"), supervisor.DefaultTreeConfig())

	handlerOpts := []api.Option{
		api.WithRunStatus(a.pipeline),
		api.WithBuildVersion(version),
	}
	if cfg.Server.CacheTTL > 0 {
		handlerOpts = append(handlerOpts, api.WithCache(cache.New("api", cfg.Server.CacheTTL)))
	}
	handler := api.NewHandler(a.store, a.logger, handlerOpts...)
	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, cfg.Server),
		ReadHeaderTimeout: readHeaderTimeout,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, shutdownTimeout, a.logger))

	if cfg.Schedule.Enabled {
		scheduler, err := services.NewSchedulerService(
			func(ctx context.Context) error {
				if _, err := a.pipeline.Run(ctx); err != nil {
					return err
				}
				handler.Invalidate()
				return nil
			},
			services.SchedulerConfig{Cron: cfg.Schedule.Cron, RunOnStart: cfg.Schedule.RunOnStart},
			a.logger,
		)
		if err != nil {
			return err
		}
		tree.AddPipelineService(scheduler)
	}

	a.logger.Info().
		Str("addr", server.Addr).
		Bool("schedule", cfg.Schedule.Enabled).
		Str("cron", cfg.Schedule.Cron).
		Msg("Starting supervisor tree")

	err = tree.Serve(ctx)

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		a.logger.Warn().Str("service", svc.Name).Msg("Service failed to stop")
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	a.logger.Info().Msg("Stopped gracefully")
	return nil
}
