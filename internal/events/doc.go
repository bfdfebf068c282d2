// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package events publishes pipeline completion events through Watermill.
//
// Backends:
//   - nats: NATS JetStream via watermill-nats; the stream is expected to
//     exist and Nats-Msg-Id deduplicates retried publishes
//   - gochannel: in-process pub/sub, mainly for tests and embedding
//   - none: events are dropped
//
// Every publish goes through a sony/gobreaker circuit breaker. Publish
// failures are returned to the caller, which logs them; they never
// fail a pipeline run.
package events
