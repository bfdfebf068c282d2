// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pipeline Metrics
	PipelineRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutpersona_pipeline_runs_total",
			Help: "Total number of pipeline runs",
		},
		[]string{"status"}, // "success", "failure"
	)

	PipelineLastSuccess = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scoutpersona_pipeline_last_success_timestamp",
			Help: "Unix timestamp of the last successful pipeline run",
		},
	)

	PhaseDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoutpersona_phase_duration_seconds",
			Help:    "Duration of pipeline phases in seconds",
			Buckets: []float64{.01, .05, .1, .5, 1, 5, 10, 30, 60, 300},
		},
		[]string{"phase"}, // "load", "cluster", "persona", "profile", "recommend", "demand", "store"
	)

	EntitiesProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutpersona_entities_processed_total",
			Help: "Total number of personas, profiles, recommendation lists and demand sets built",
		},
		[]string{"kind"},
	)

	LookupMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutpersona_lookup_misses_total",
			Help: "Total number of references to unknown targets, profiles or tasks",
		},
		[]string{"kind"},
	)

	// Algorithm Metrics
	PreferenceSelections = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutpersona_preference_algorithm_selections_total",
			Help: "Total number of requesters scored per preference algorithm",
		},
		[]string{"algorithm"},
	)

	ClusteringAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scoutpersona_clustering_attempts",
			Help:    "Number of DBSCAN runs per clustering",
			Buckets: []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10},
		},
	)

	ClusterCount = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scoutpersona_clusters",
			Help: "Number of clusters found by the last global clustering",
		},
	)

	ClusterNoiseRatio = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "scoutpersona_cluster_noise_ratio",
			Help: "Noise ratio of the last global clustering",
		},
	)

	RecommendationsEmitted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutpersona_recommendations_total",
			Help: "Total number of recommended tasks emitted",
		},
		[]string{"source"}, // "hybrid", "discovery", "content"
	)

	DemandsEmitted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "scoutpersona_demands_total",
			Help: "Total number of recommendation demands emitted",
		},
	)

	// Storage Metrics
	StoreWrites = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutpersona_store_rows_written_total",
			Help: "Total number of rows written to the result store",
		},
		[]string{"driver", "table"},
	)

	StoreDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoutpersona_store_operation_duration_seconds",
			Help:    "Duration of result store operations in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"driver", "operation"},
	)

	StoreErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutpersona_store_errors_total",
			Help: "Total number of failed result store operations",
		},
		[]string{"driver", "operation"},
	)

	// Event Metrics
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutpersona_events_published_total",
			Help: "Total number of published pipeline events",
		},
		[]string{"topic", "result"}, // result: "success", "failure", "rejected"
	)

	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scoutpersona_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutpersona_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scoutpersona_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: []float64{.001, .005, .01, .05, .1, .5, 1, 5},
		},
		[]string{"method", "endpoint"},
	)

	// CacheLookups counts API read cache lookups by result.
	CacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "scoutpersona_cache_lookups_total",
			Help: "Total number of cache lookups by result (hit, miss)",
		},
		[]string{"cache", "result"},
	)

	// System Metrics
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "scoutpersona_app_info",
			Help: "Application version and build information",
		},
		[]string{"version", "go_version"},
	)
)

// RecordPhase records the duration of a pipeline phase.
func RecordPhase(phase string, duration time.Duration) {
	PhaseDuration.WithLabelValues(phase).Observe(duration.Seconds())
}

// RecordPipelineRun records the outcome of a pipeline run.
func RecordPipelineRun(err error) {
	if err != nil {
		PipelineRuns.WithLabelValues("failure").Inc()
		return
	}
	PipelineRuns.WithLabelValues("success").Inc()
	PipelineLastSuccess.Set(float64(time.Now().Unix()))
}

// RecordClustering records the diagnostics of a global clustering.
func RecordClustering(attempts, clusters int, noiseRatio float64) {
	if attempts < 1 {
		attempts = 1
	}
	ClusteringAttempts.Observe(float64(attempts))
	ClusterCount.Set(float64(clusters))
	ClusterNoiseRatio.Set(noiseRatio)
}

// RecordStoreOperation records a result store call.
func RecordStoreOperation(driver, operation string, duration time.Duration, err error) {
	StoreDuration.WithLabelValues(driver, operation).Observe(duration.Seconds())
	if err != nil {
		StoreErrors.WithLabelValues(driver, operation).Inc()
	}
}

// RecordAPIRequest records an API request metric.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(cache, result).Inc()
}
