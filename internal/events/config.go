// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package events

import (
	"fmt"
	"time"

	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/validation"
)

// Publisher backends.
const (
	BackendNone      = "none"
	BackendGoChannel = "gochannel"
	BackendNATS      = "nats"
)

// TopicPipelineCompleted is published after every successful run.
const TopicPipelineCompleted = "pipeline.completed"

// Config holds event publishing configuration.
type Config struct {
	// Backend is one of none, gochannel, nats.
	// Default: none.
	Backend string `koanf:"backend" json:"backend" validate:"oneof=none gochannel nats"`

	// URL is the NATS server URL.
	// Default: nats://127.0.0.1:4222.
	URL string `koanf:"url" json:"url"`

	// Topic overrides the completion topic.
	// Default: pipeline.completed.
	Topic string `koanf:"topic" json:"topic" validate:"required"`

	// TrackMsgID sets Nats-Msg-Id so JetStream drops duplicate publishes.
	// Default: true.
	TrackMsgID bool `koanf:"track_msg_id" json:"track_msg_id"`

	// MaxReconnects is the NATS client reconnect limit (-1 is unlimited).
	// Default: 10.
	MaxReconnects int `koanf:"max_reconnects" json:"max_reconnects"`

	// ReconnectWait is the delay between reconnect attempts.
	// Default: 2s.
	ReconnectWait time.Duration `koanf:"reconnect_wait" json:"reconnect_wait"`

	CircuitBreaker CircuitBreakerConfig `koanf:"circuit_breaker" json:"circuit_breaker"`
}

// CircuitBreakerConfig configures the publish circuit breaker.
type CircuitBreakerConfig struct {
	// MaxRequests allowed through while half-open.
	// Default: 1.
	MaxRequests uint32 `koanf:"max_requests" json:"max_requests"`

	// Interval clears the failure counts while closed (0 never clears).
	// Default: 1m.
	Interval time.Duration `koanf:"interval" json:"interval"`

	// Timeout is how long the breaker stays open.
	// Default: 30s.
	Timeout time.Duration `koanf:"timeout" json:"timeout"`

	// FailureThreshold consecutive failures open the breaker.
	// Default: 5.
	FailureThreshold uint32 `koanf:"failure_threshold" json:"failure_threshold" validate:"gte=1"`
}

// DefaultConfig returns the default event configuration.
func DefaultConfig() Config {
	return Config{
		Backend:       BackendNone,
		URL:           "nats://127.0.0.1:4222",
		Topic:         TopicPipelineCompleted,
		TrackMsgID:    true,
		MaxReconnects: 10,
		ReconnectWait: 2 * time.Second,
		CircuitBreaker: CircuitBreakerConfig{
			MaxRequests:      1,
			Interval:         time.Minute,
			Timeout:          30 * time.Second,
			FailureThreshold: 5,
		},
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: events: %v", models.ErrInvalidConfig, err)
	}
	if c.Backend == BackendNATS && c.URL == "" {
		return fmt.Errorf("%w: events.url is required for nats", models.ErrInvalidConfig)
	}
	return nil
}
