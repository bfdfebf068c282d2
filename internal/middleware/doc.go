// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

/*
Package middleware provides HTTP middleware for the read-only API.

All middleware has the chi signature func(http.Handler) http.Handler and is
installed with r.Use in the api package.

Key Components:

  - RequestID: reuses or generates an X-Request-ID and stores it in the
    context so logging.Ctx(ctx) includes it
  - PrometheusMetrics: request count and latency, labelled by chi route
    pattern
  - Compression: gzip for clients that send Accept-Encoding: gzip

Middleware Stack:

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(cors.Handler(...))
	r.Route("/api/v1", func(r chi.Router) {
	    r.Use(httprate.Limit(...))
	    r.Use(middleware.Compression)
	    ...
	})

See Also:

  - internal/api: router and handlers
  - internal/metrics: APIRequestsTotal and APIRequestDuration
*/
package middleware
