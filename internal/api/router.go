// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/scoutpersona/internal/config"
	"github.com/tomtom215/scoutpersona/internal/middleware"
)

// NewRouter builds the chi router for the read-only API.
//
// Middleware order (outermost first):
//  1. RequestID: request tracking for logs and error bodies
//  2. RealIP: client address for rate limiting
//  3. Recoverer: panic recovery
//  4. PrometheusMetrics: request instrumentation by route pattern
//  5. CORS
//  6. Timeout (when server.timeout > 0)
//
// /api/v1 additionally gets per-IP rate limiting and gzip.
func NewRouter(h *Handler, cfg config.ServerConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.PrometheusMetrics)
	r.Use(corsHandler(cfg.CORSOrigins))
	if cfg.Timeout > 0 {
		r.Use(chimiddleware.Timeout(cfg.Timeout))
	}

	r.NotFound(func(w http.ResponseWriter, req *http.Request) {
		h.fail(w, req, http.StatusNotFound, ErrCodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, req *http.Request) {
		h.fail(w, req, http.StatusMethodNotAllowed, ErrCodeMethodNotAllowed, "method not allowed", nil)
	})

	r.Get("/health", h.Health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(rateLimit(cfg))
		r.Use(middleware.Compression)

		r.Get("/versions", h.Versions)
		r.Get("/personas", h.Personas)
		r.Get("/personas/{unit}/{group}", h.Persona)
		r.Get("/profiles/{targetID}", h.Profile)
		r.Get("/runs/last", h.LastRun)
	})

	return r
}

func corsHandler(origins []string) func(http.Handler) http.Handler {
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{http.MethodGet, http.MethodHead, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Content-Type", "If-None-Match", middleware.RequestIDHeader},
		ExposedHeaders:   []string{"ETag", middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	})
}

// rateLimit limits requests per client IP. A non-positive request count
// disables limiting.
func rateLimit(cfg config.ServerConfig) func(http.Handler) http.Handler {
	if cfg.RateLimitReqs <= 0 || cfg.RateLimitWindow <= 0 {
		return func(next http.Handler) http.Handler { return next }
	}
	return httprate.Limit(
		cfg.RateLimitReqs,
		cfg.RateLimitWindow,
		httprate.WithKeyFuncs(httprate.KeyByIP),
	)
}
