// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

/*
Package pipeline orchestrates one batch run over an immutable input snapshot.

Phases run sequentially; work inside a phase is spread over a bounded
worker pool by the component that owns it:

	load       targets and missions from JSON
	cluster    global DBSCAN over every target (barrier for spatial tags)
	persona    per-requester personas      -> user_persona.json
	profile    per-target profiles         -> target_profile.json
	recommend  hybrid task ranking         -> recommendations.json
	demand     synthetic demand generation -> recommendation_demands.json
	store      personas and profiles saved under the run version

Run accepts a subset of stages. A stage whose inputs were not built in the
same run reads the previous documents from the output directory, so

	p.Run(ctx, pipeline.StageDemand)

regenerates demands from an existing target_profile.json.

When a time window is configured every document carries
data_source.time_range and the persistence version is derived from it;
otherwise the version is AllVersion.

After a successful run a pipeline.completed event is published when a
publisher is configured. Publish failures are logged and never fail the run.
*/
package pipeline
