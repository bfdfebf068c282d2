// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

/*
Package metrics provides Prometheus instrumentation for the batch pipeline
and the read-only API.

Collectors are registered on the default registry through promauto and are
exposed at /metrics when running in serve mode:

	curl http://localhost:8080/metrics

# Available Metrics

Pipeline Metrics:
  - scoutpersona_pipeline_runs_total: Runs (counter)
    Labels: status
  - scoutpersona_phase_duration_seconds: Phase latency (histogram)
    Labels: phase
  - scoutpersona_entities_processed_total: Built entities (counter)
    Labels: kind (persona, profile, recommendation, demand)
  - scoutpersona_lookup_misses_total: Unknown references (counter)
    Labels: kind (target, profile, task)

Algorithm Metrics:
  - scoutpersona_preference_algorithm_selections_total (counter)
    Labels: algorithm
  - scoutpersona_clustering_attempts (histogram)
  - scoutpersona_clusters, scoutpersona_cluster_noise_ratio (gauges)
  - scoutpersona_recommendations_total (counter)
    Labels: source (hybrid, discovery, content)
  - scoutpersona_demands_total (counter)

Storage and Event Metrics:
  - scoutpersona_store_rows_written_total (counter)
    Labels: driver, table
  - scoutpersona_store_operation_duration_seconds (histogram)
  - scoutpersona_store_errors_total (counter)
  - scoutpersona_events_published_total (counter)
    Labels: topic, result
  - scoutpersona_circuit_breaker_state (gauge)

API Metrics:
  - scoutpersona_api_requests_total, scoutpersona_api_request_duration_seconds
*/
package metrics
