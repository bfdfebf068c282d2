// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

/*
Package services adapts long-running components to suture.Service.

  - HTTPServerService: runs the read-only API server and shuts it down
    gracefully when its context is canceled.
  - SchedulerService: triggers pipeline runs from a robfig/cron schedule,
    skipping triggers while a run is active.

Both implement String() so suture's event hook can name them.

Example:

	tree := supervisor.NewTree(slogLogger, supervisor.DefaultTreeConfig())
	sched, err := services.NewSchedulerService(func(ctx context.Context) error {
	    _, err := p.Run(ctx)
	    return err
	}, services.SchedulerConfig{Cron: cfg.Schedule.Cron}, logger)
	tree.AddPipelineService(sched)
	tree.AddAPIService(services.NewHTTPServerService(srv, addr, 10*time.Second, logger))
*/
package services
