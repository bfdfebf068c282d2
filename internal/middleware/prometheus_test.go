// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/tomtom215/scoutpersona/internal/metrics"
)

func TestPrometheusMetrics_RoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics)
	r.Get("/api/v1/profiles/{targetID}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, "/api/v1/profiles/{targetID}", "404")
	before := testutil.ToFloat64(counter)

	for _, id := range []string{"T1", "T2", "T3"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/profiles/"+id, nil))
		if rec.Code != http.StatusNotFound {
			t.Fatalf("status = %d, want 404", rec.Code)
		}
	}

	if got := testutil.ToFloat64(counter) - before; got != 3 {
		t.Errorf("requests recorded under route pattern = %v, want 3", got)
	}
}

func TestPrometheusMetrics_StatusCapture(t *testing.T) {
	tests := []struct {
		name   string
		write  func(w http.ResponseWriter)
		status string
	}{
		{"implicit ok", func(w http.ResponseWriter) { _, _ = w.Write([]byte("ok")) }, "200"},
		{"explicit error", func(w http.ResponseWriter) { w.WriteHeader(http.StatusServiceUnavailable) }, "503"},
		{"first header wins", func(w http.ResponseWriter) {
			w.WriteHeader(http.StatusBadRequest)
			w.WriteHeader(http.StatusOK)
		}, "400"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := PrometheusMetrics(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				tt.write(w)
			}))

			counter := metrics.APIRequestsTotal.WithLabelValues(http.MethodGet, unmatchedRoute, tt.status)
			before := testutil.ToFloat64(counter)

			handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/x", nil))

			if got := testutil.ToFloat64(counter) - before; got != 1 {
				t.Errorf("status %s delta = %v, want 1", tt.status, got)
			}
		})
	}
}
