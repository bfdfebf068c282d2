// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package api

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/cache"
	"github.com/tomtom215/scoutpersona/internal/database"
	"github.com/tomtom215/scoutpersona/internal/logging"
	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/pipeline"
)

// healthProbeTimeout bounds the store probe in Health.
const healthProbeTimeout = 2 * time.Second

// RunStatus reports the most recent pipeline run. *pipeline.Pipeline
// satisfies it.
type RunStatus interface {
	LastRun() *pipeline.Summary
}

// Handler serves the read-only API. A nil store is valid: data endpoints
// then answer 503.
type Handler struct {
	store     database.Store
	cache     *cache.Cache
	runs      RunStatus
	logger    zerolog.Logger
	version   string
	now       func() time.Time
	startTime time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithRunStatus exposes pipeline run summaries on /health and /api/v1/runs/last.
func WithRunStatus(runs RunStatus) Option {
	return func(h *Handler) { h.runs = runs }
}

// WithCache caches store reads. Call Invalidate after storing a new
// version.
func WithCache(c *cache.Cache) Option {
	return func(h *Handler) { h.cache = c }
}

// WithBuildVersion sets the application version reported by /health.
func WithBuildVersion(version string) Option {
	return func(h *Handler) { h.version = version }
}

// WithClock overrides the response timestamp source.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

// NewHandler creates a Handler reading from store.
func NewHandler(store database.Store, logger zerolog.Logger, opts ...Option) *Handler {
	h := &Handler{
		store:   store,
		logger:  logger.With().Str("component", "api").Logger(),
		version: "dev",
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	h.startTime = h.now()
	return h
}

// Invalidate drops cached store reads.
func (h *Handler) Invalidate() {
	if h.cache != nil {
		h.cache.Clear()
	}
}

// HealthStatus is the payload of /health.
type HealthStatus struct {
	Status        string            `json:"status"`
	Version       string            `json:"version"`
	StoreEnabled  bool              `json:"store_enabled"`
	StoreHealthy  bool              `json:"store_healthy"`
	LatestVersion string            `json:"latest_version,omitempty"`
	LastRun       *pipeline.Summary `json:"last_run,omitempty"`
	Uptime        float64           `json:"uptime_seconds"`
}

// Health reports liveness. It answers 200 even when the store probe
// fails; Status is then "degraded".
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	health := HealthStatus{
		Status:       "healthy",
		Version:      h.version,
		StoreEnabled: h.store != nil,
		Uptime:       h.now().Sub(h.startTime).Seconds(),
	}

	if h.store != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthProbeTimeout)
		versions, err := h.store.ListVersions(ctx)
		cancel()
		if err != nil {
			health.Status = "degraded"
			h.log(r).Warn().Err(err).Msg("Store health probe failed")
		} else {
			health.StoreHealthy = true
			if len(versions) > 0 {
				health.LatestVersion = versions[0].Version
			}
		}
	}
	if h.runs != nil {
		health.LastRun = h.runs.LastRun()
	}

	h.success(w, r, health, "", nil)
}

// Versions lists stored versions, newest first.
func (h *Handler) Versions(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	versions, err := h.listVersions(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	if versions == nil {
		versions = []database.VersionInfo{}
	}
	count := len(versions)
	h.success(w, r, versions, "", &count)
}

// Personas lists every persona of a version.
func (h *Handler) Personas(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	version, ok := h.resolveVersion(w, r)
	if !ok {
		return
	}
	v, err := h.cached(cache.GenerateKey("personas", version), func() (interface{}, error) {
		return h.store.LoadPersonas(r.Context(), version)
	})
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	personas := v.([]models.UserPersona)
	if len(personas) == 0 {
		h.fail(w, r, http.StatusNotFound, ErrCodeNotFound, "no personas stored for version "+version, nil)
		return
	}
	count := len(personas)
	h.success(w, r, personas, version, &count)
}

// Persona returns the persona of one requesting unit and group.
func (h *Handler) Persona(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	unit, okUnit := pathParam(r, "unit")
	group, okGroup := pathParam(r, "group")
	if !okUnit || !okGroup {
		h.fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "unit and group are required", nil)
		return
	}
	version, ok := h.resolveVersion(w, r)
	if !ok {
		return
	}
	user := models.UserKey{ReqUnit: unit, ReqGroup: group}
	persona, err := h.cached(cache.GenerateKey("persona", []string{version, unit, group}), func() (interface{}, error) {
		return h.store.GetPersona(r.Context(), version, user)
	})
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.success(w, r, persona, version, nil)
}

// Profile returns the profile of one target.
func (h *Handler) Profile(w http.ResponseWriter, r *http.Request) {
	if !h.requireStore(w, r) {
		return
	}
	targetID, ok := pathParam(r, "targetID")
	if !ok {
		h.fail(w, r, http.StatusBadRequest, ErrCodeBadRequest, "target id is required", nil)
		return
	}
	version, ok := h.resolveVersion(w, r)
	if !ok {
		return
	}
	profile, err := h.cached(cache.GenerateKey("profile", []string{version, targetID}), func() (interface{}, error) {
		return h.store.GetProfile(r.Context(), version, targetID)
	})
	if err != nil {
		h.storeError(w, r, err)
		return
	}
	h.success(w, r, profile, version, nil)
}

// LastRun returns the summary of the most recent pipeline run.
func (h *Handler) LastRun(w http.ResponseWriter, r *http.Request) {
	var last *pipeline.Summary
	if h.runs != nil {
		last = h.runs.LastRun()
	}
	if last == nil {
		h.fail(w, r, http.StatusNotFound, ErrCodeNotFound, "no pipeline run has completed", nil)
		return
	}
	h.success(w, r, last, last.Version, nil)
}

// resolveVersion returns the version query parameter or, when absent,
// the latest stored version.
func (h *Handler) resolveVersion(w http.ResponseWriter, r *http.Request) (string, bool) {
	if v := r.URL.Query().Get("version"); v != "" {
		return v, true
	}
	versions, err := h.listVersions(r.Context())
	if err != nil {
		h.storeError(w, r, err)
		return "", false
	}
	if len(versions) == 0 {
		h.fail(w, r, http.StatusNotFound, ErrCodeNotFound, "no stored versions", nil)
		return "", false
	}
	return versions[0].Version, true
}

func (h *Handler) listVersions(ctx context.Context) ([]database.VersionInfo, error) {
	v, err := h.cached("versions", func() (interface{}, error) {
		return h.store.ListVersions(ctx)
	})
	if err != nil {
		return nil, err
	}
	return v.([]database.VersionInfo), nil
}

// cached returns the cached value for key or stores the result of load.
// Errors are never cached.
func (h *Handler) cached(key string, load func() (interface{}, error)) (interface{}, error) {
	if h.cache == nil {
		return load()
	}
	if v, ok := h.cache.Get(key); ok {
		return v, nil
	}
	v, err := load()
	if err != nil {
		return nil, err
	}
	h.cache.Set(key, v)
	return v, nil
}

func (h *Handler) requireStore(w http.ResponseWriter, r *http.Request) bool {
	if h.store != nil {
		return true
	}
	h.fail(w, r, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "result store is disabled", nil)
	return false
}

func (h *Handler) storeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, database.ErrNotFound):
		h.fail(w, r, http.StatusNotFound, ErrCodeNotFound, err.Error(), nil)
	case errors.Is(err, database.ErrDisabled):
		h.fail(w, r, http.StatusServiceUnavailable, ErrCodeStoreUnavailable, "result store is disabled", nil)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		h.fail(w, r, http.StatusServiceUnavailable, ErrCodeStoreError, "request cancelled", err)
	default:
		h.fail(w, r, http.StatusInternalServerError, ErrCodeStoreError, "failed to read result store", err)
	}
}

func (h *Handler) success(w http.ResponseWriter, r *http.Request, data interface{}, version string, count *int) {
	respondJSON(w, r, http.StatusOK, &Response{
		Status: "success",
		Data:   data,
		Metadata: Metadata{
			Timestamp: h.now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
			Version:   version,
			Count:     count,
		},
	}, h.logger)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		h.log(r).Error().
			Str("code", code).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, r, status, &Response{
		Status: "error",
		Metadata: Metadata{
			Timestamp: h.now(),
			RequestID: logging.RequestIDFromContext(r.Context()),
		},
		Error: &Error{Code: code, Message: message},
	}, h.logger)
}

func (h *Handler) log(r *http.Request) *zerolog.Logger {
	l := h.logger.With().Str("request_id", logging.RequestIDFromContext(r.Context())).Logger()
	return &l
}

// pathParam returns a decoded chi URL parameter. chi reads parameters
// from RawPath when the request path carried escapes such as %2F.
func pathParam(r *http.Request, name string) (string, bool) {
	v := chi.URLParam(r, name)
	if r.URL.RawPath != "" {
		if decoded, err := url.PathUnescape(v); err == nil {
			v = decoded
		}
	}
	return v, v != ""
}
