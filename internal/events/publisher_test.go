// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package events

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/scoutpersona/internal/models"
)

func testEvent() *PipelineCompleted {
	return NewPipelineCompleted("run-1", "2025-01-01-2025-02-01",
		Counts{Targets: 3, Missions: 10, Personas: 2, Profiles: 3, Recommendations: 6, Demands: 9},
		1500*time.Millisecond, time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC))
}

func TestPublisher_GoChannel(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Backend = BackendGoChannel
	p, err := NewPublisher(cfg, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	defer p.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	msgs, err := p.Subscriber().Subscribe(ctx, p.Topic())
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	event := testEvent()
	if err := p.PublishCompleted(ctx, event); err != nil {
		t.Fatalf("PublishCompleted() error = %v", err)
	}

	select {
	case msg := <-msgs:
		msg.Ack()
		if msg.UUID != event.EventID {
			t.Errorf("UUID = %s, want %s", msg.UUID, event.EventID)
		}
		if msg.Metadata.Get("run_id") != "run-1" {
			t.Errorf("run_id metadata = %q", msg.Metadata.Get("run_id"))
		}
		got, err := UnmarshalPipelineCompleted(msg.Payload)
		if err != nil {
			t.Fatalf("UnmarshalPipelineCompleted() error = %v", err)
		}
		if got.Counts != event.Counts || got.DurationMS != 1500 || got.Version != event.Version {
			t.Errorf("payload = %+v, want %+v", got, event)
		}
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}

	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
	if err := p.PublishCompleted(context.Background(), event); !errors.Is(err, ErrClosed) {
		t.Errorf("PublishCompleted() after Close error = %v, want ErrClosed", err)
	}
}

func TestPublisher_None(t *testing.T) {
	t.Parallel()

	p, err := NewPublisher(DefaultConfig(), zerolog.Nop())
	if err != nil {
		t.Fatalf("NewPublisher() error = %v", err)
	}
	if p.Enabled() {
		t.Error("Enabled() = true for backend none")
	}
	if err := p.PublishCompleted(context.Background(), testEvent()); err != nil {
		t.Errorf("PublishCompleted() error = %v, want nil", err)
	}
	if err := p.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

// failingPublisher fails every publish.
type failingPublisher struct {
	calls int
}

func (f *failingPublisher) Publish(string, ...*message.Message) error {
	f.calls++
	return errors.New("broker unavailable")
}

func (f *failingPublisher) Close() error { return nil }

func TestPublisher_CircuitBreakerOpens(t *testing.T) {
	t.Parallel()

	cb := CircuitBreakerConfig{MaxRequests: 1, Timeout: time.Minute, FailureThreshold: 2}
	failing := &failingPublisher{}
	p := &Publisher{
		publisher: failing,
		breaker:   NewCircuitBreaker("test", cb, zerolog.Nop()),
		topic:     TopicPipelineCompleted,
		logger:    zerolog.Nop(),
	}

	for i := 0; i < 2; i++ {
		if err := p.PublishCompleted(context.Background(), testEvent()); err == nil {
			t.Fatalf("publish %d: error = nil, want failure", i)
		}
	}
	err := p.PublishCompleted(context.Background(), testEvent())
	if !errors.Is(err, gobreaker.ErrOpenState) {
		t.Errorf("third publish error = %v, want ErrOpenState", err)
	}
	if failing.calls != 2 {
		t.Errorf("broker calls = %d, want 2", failing.calls)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown backend", func(c *Config) { c.Backend = "kafka" }},
		{"nats without url", func(c *Config) { c.Backend = BackendNATS; c.URL = "" }},
		{"empty topic", func(c *Config) { c.Topic = "" }},
		{"zero failure threshold", func(c *Config) { c.CircuitBreaker.FailureThreshold = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, models.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}
