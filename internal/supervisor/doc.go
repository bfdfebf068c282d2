// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

/*
Package supervisor provides process supervision for serve mode using suture v4.

The tree has two layers so a failing scheduler cannot take the API down:

	Root ("scoutpersona")
	├── PipelineSupervisor ("pipeline-layer")
	│   └── SchedulerService (if schedule.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services restart with suture's backoff (FailureThreshold,
FailureDecay, FailureBackoff). Canceling the Serve context shuts every
service down within ShutdownTimeout; UnstoppedServiceReport lists the ones
that did not make it.

Supervisor events are logged through sutureslog onto the zerolog logger via
logging.NewSlogHandler.

Usage:

	slogger := slog.New(logging.NewSlogHandler(logger))
	tree := supervisor.NewTree(slogger, supervisor.DefaultTreeConfig())
	tree.AddAPIService(httpService)
	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
	    return err
	}
*/
package supervisor
