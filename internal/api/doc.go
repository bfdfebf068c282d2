// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

/*
Package api serves stored personas and target profiles over a read-only
HTTP API built on chi.

# Endpoints

	GET /health                              liveness, store probe, last run
	GET /metrics                             Prometheus exposition
	GET /api/v1/versions                     stored versions, newest first
	GET /api/v1/personas?version=            all personas of a version
	GET /api/v1/personas/{unit}/{group}      one persona
	GET /api/v1/profiles/{targetID}?version= one target profile
	GET /api/v1/runs/last                    summary of the last pipeline run

When version is omitted the greatest stored version is used. Responses
share one envelope:

	{"status":"success","data":{...},"metadata":{"timestamp":"...","version":"all","count":3}}
	{"status":"error","error":{"code":"NOT_FOUND","message":"persona not found"},"metadata":{...}}

# Status Codes

  - 404 NOT_FOUND: unknown version, persona or profile
  - 429: rate limit exceeded (httprate)
  - 503 STORE_UNAVAILABLE: the result store is disabled (database.driver none)
  - 500 STORE_ERROR: any other store failure

# Middleware

Request ids, Prometheus instrumentation and gzip come from internal/middleware;
CORS from go-chi/cors; per-IP rate limiting from go-chi/httprate. The
rate limiter only wraps /api/v1 so that probes and scrapes are never limited.
*/
package api
