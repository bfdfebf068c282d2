// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package events

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	wmNats "github.com/ThreeDotsLabs/watermill-nats/v2/pkg/nats"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	natsgo "github.com/nats-io/nats.go"
	"github.com/rs/zerolog"
	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/tomtom215/scoutpersona/internal/logging"
	"github.com/tomtom215/scoutpersona/internal/metrics"
)

// ErrClosed is returned when publishing after Close.
var ErrClosed = errors.New("publisher is closed")

// Publisher publishes pipeline events with circuit breaker protection.
// A Publisher for the "none" backend accepts every event and drops it.
type Publisher struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	breaker    *gobreaker.CircuitBreaker[interface{}]
	topic      string
	backend    string
	logger     zerolog.Logger
	mu         sync.RWMutex
	closed     bool
}

// NewPublisher creates the publisher for cfg.Backend.
func NewPublisher(cfg Config, logger zerolog.Logger) (*Publisher, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger = logger.With().Str("component", "events").Str("backend", cfg.Backend).Logger()
	wmLogger := watermill.NewSlogLogger(slog.New(logging.NewSlogHandler(logger)))

	p := &Publisher{
		topic:   cfg.Topic,
		backend: cfg.Backend,
		logger:  logger,
		breaker: NewCircuitBreaker(cfg.Backend, cfg.CircuitBreaker, logger),
	}

	switch cfg.Backend {
	case BackendNone:
	case BackendGoChannel:
		ch := gochannel.NewGoChannel(gochannel.Config{OutputChannelBuffer: 16}, wmLogger)
		p.publisher = ch
		p.subscriber = ch
	case BackendNATS:
		pub, err := newNATSPublisher(cfg, wmLogger)
		if err != nil {
			return nil, err
		}
		p.publisher = pub
	default:
		return nil, fmt.Errorf("unsupported event backend %q", cfg.Backend)
	}
	return p, nil
}

// newNATSPublisher creates a JetStream publisher. The stream must exist;
// it is not provisioned here.
func newNATSPublisher(cfg Config, logger watermill.LoggerAdapter) (message.Publisher, error) {
	natsOpts := []natsgo.Option{
		natsgo.RetryOnFailedConnect(true),
		natsgo.MaxReconnects(cfg.MaxReconnects),
		natsgo.ReconnectWait(cfg.ReconnectWait),
		natsgo.DisconnectErrHandler(func(nc *natsgo.Conn, err error) {
			if err != nil {
				logger.Error("NATS disconnected", err, nil)
			}
		}),
		natsgo.ReconnectHandler(func(nc *natsgo.Conn) {
			logger.Info("NATS reconnected", watermill.LogFields{
				"url": nc.ConnectedUrl(),
			})
		}),
	}

	wmConfig := wmNats.PublisherConfig{
		URL:         cfg.URL,
		NatsOptions: natsOpts,
		Marshaler:   &wmNats.NATSMarshaler{},
		JetStream: wmNats.JetStreamConfig{
			Disabled:      false,
			AutoProvision: false,
			TrackMsgId:    cfg.TrackMsgID,
			PublishOptions: []natsgo.PubOpt{
				natsgo.RetryAttempts(3),
				natsgo.RetryWait(100 * time.Millisecond),
			},
		},
	}

	pub, err := wmNats.NewPublisher(wmConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("create watermill publisher: %w", err)
	}
	return pub, nil
}

// Enabled reports whether events leave the process.
func (p *Publisher) Enabled() bool {
	return p != nil && p.publisher != nil
}

// Subscriber returns the in-process subscriber of the gochannel backend,
// nil for other backends.
func (p *Publisher) Subscriber() message.Subscriber {
	return p.subscriber
}

// Topic returns the completion topic.
func (p *Publisher) Topic() string {
	return p.topic
}

// PublishCompleted publishes a pipeline completion event. The event id is
// used as the message UUID and as Nats-Msg-Id for deduplication.
func (p *Publisher) PublishCompleted(ctx context.Context, e *PipelineCompleted) error {
	if !p.Enabled() {
		return nil
	}

	p.mu.RLock()
	defer p.mu.RUnlock()
	if p.closed {
		return ErrClosed
	}

	data, err := e.Marshal()
	if err != nil {
		return fmt.Errorf("serialize event: %w", err)
	}
	msg := message.NewMessage(e.EventID, data)
	msg.SetContext(ctx)
	msg.Metadata.Set("run_id", e.RunID)
	msg.Metadata.Set("version", e.Version)
	if msg.Metadata.Get(natsgo.MsgIdHdr) == "" {
		msg.Metadata.Set(natsgo.MsgIdHdr, msg.UUID)
	}

	_, err = p.breaker.Execute(func() (interface{}, error) {
		return nil, p.publisher.Publish(p.topic, msg)
	})
	switch {
	case errors.Is(err, gobreaker.ErrOpenState), errors.Is(err, gobreaker.ErrTooManyRequests):
		metrics.EventsPublished.WithLabelValues(p.topic, "rejected").Inc()
	case err != nil:
		metrics.EventsPublished.WithLabelValues(p.topic, "failure").Inc()
	default:
		metrics.EventsPublished.WithLabelValues(p.topic, "success").Inc()
	}
	if err != nil {
		return fmt.Errorf("publish %s: %w", p.topic, err)
	}

	p.logger.Debug().Str("event_id", e.EventID).Str("run_id", e.RunID).Msg("Published pipeline event")
	return nil
}

// Close shuts down the publisher. It is safe to call more than once.
func (p *Publisher) Close() error {
	if p == nil {
		return nil
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || p.publisher == nil {
		p.closed = true
		return nil
	}
	p.closed = true
	return p.publisher.Close()
}
