// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package metrics

import (
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

func counterValue(t *testing.T, c prometheus.Counter) float64 {
	t.Helper()
	var m dto.Metric
	if err := c.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetCounter().GetValue()
}

func gaugeValue(t *testing.T, g prometheus.Gauge) float64 {
	t.Helper()
	var m dto.Metric
	if err := g.Write(&m); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	return m.GetGauge().GetValue()
}

// TestRecordPipelineRun tests success and failure counting
func TestRecordPipelineRun(t *testing.T) {
	success := PipelineRuns.WithLabelValues("success")
	failure := PipelineRuns.WithLabelValues("failure")
	beforeOK, beforeFail := counterValue(t, success), counterValue(t, failure)

	RecordPipelineRun(nil)
	RecordPipelineRun(errors.New("boom"))

	if got := counterValue(t, success) - beforeOK; got != 1 {
		t.Errorf("success delta = %v, want 1", got)
	}
	if got := counterValue(t, failure) - beforeFail; got != 1 {
		t.Errorf("failure delta = %v, want 1", got)
	}
	if gaugeValue(t, PipelineLastSuccess) == 0 {
		t.Error("last success timestamp not set")
	}
}

// TestRecordClustering tests the clustering gauges
func TestRecordClustering(t *testing.T) {
	RecordClustering(0, 7, 0.25)

	if got := gaugeValue(t, ClusterCount); got != 7 {
		t.Errorf("ClusterCount = %v, want 7", got)
	}
	if got := gaugeValue(t, ClusterNoiseRatio); got != 0.25 {
		t.Errorf("ClusterNoiseRatio = %v, want 0.25", got)
	}
}

// TestRecordStoreOperation tests that only failures are counted as errors
func TestRecordStoreOperation(t *testing.T) {
	errs := StoreErrors.WithLabelValues("sqlite", "save_personas")
	before := counterValue(t, errs)

	RecordStoreOperation("sqlite", "save_personas", 5*time.Millisecond, nil)
	RecordStoreOperation("sqlite", "save_personas", 5*time.Millisecond, errors.New("locked"))

	if got := counterValue(t, errs) - before; got != 1 {
		t.Errorf("error delta = %v, want 1", got)
	}
}

// TestRecordAPIRequest tests request counting
func TestRecordAPIRequest(t *testing.T) {
	c := APIRequestsTotal.WithLabelValues("GET", "/health", "200")
	before := counterValue(t, c)

	RecordAPIRequest("GET", "/health", "200", time.Millisecond)

	if got := counterValue(t, c) - before; got != 1 {
		t.Errorf("request delta = %v, want 1", got)
	}
}

func TestRecordCacheLookup(t *testing.T) {
	hit := CacheLookups.WithLabelValues("test", "hit")
	miss := CacheLookups.WithLabelValues("test", "miss")
	beforeHit, beforeMiss := counterValue(t, hit), counterValue(t, miss)

	RecordCacheLookup("test", true)
	RecordCacheLookup("test", false)
	RecordCacheLookup("test", false)

	if got := counterValue(t, hit) - beforeHit; got != 1 {
		t.Errorf("hit delta = %v, want 1", got)
	}
	if got := counterValue(t, miss) - beforeMiss; got != 2 {
		t.Errorf("miss delta = %v, want 2", got)
	}
}
