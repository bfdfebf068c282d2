// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package events

import (
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/scoutpersona/internal/metrics"
)

// NewCircuitBreaker creates the publish circuit breaker. State changes are
// logged and exported as scoutpersona_circuit_breaker_state.
func NewCircuitBreaker(name string, cfg CircuitBreakerConfig, logger zerolog.Logger) *gobreaker.CircuitBreaker[interface{}] {
	threshold := cfg.FailureThreshold
	if threshold == 0 {
		threshold = 1
	}
	settings := gobreaker.Settings{
		Name:        "events-" + name,
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateValue(to))
			logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("Circuit breaker state changed")
		},
	}
	metrics.CircuitBreakerState.WithLabelValues(settings.Name).Set(0)
	return gobreaker.NewCircuitBreaker[interface{}](settings)
}

func stateValue(s gobreaker.State) float64 {
	switch s {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
