// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	if cfg.Level != "info" {
		t.Errorf("expected default level 'info', got '%s'", cfg.Level)
	}
	if cfg.Format != "json" {
		t.Errorf("expected default format 'json', got '%s'", cfg.Format)
	}
	if cfg.Output == nil {
		t.Error("expected default output to be set")
	}
}

func TestInitWritesJSON(t *testing.T) {
	var buf bytes.Buffer
	Init(Config{Level: "debug", Format: "json", Output: &buf})
	defer Init(DefaultConfig())

	l := WithComponent("persona")
	l.Info().Str("user", "CC-BJ").Msg("persona built")

	out := buf.String()
	for _, want := range []string{`"level":"info"`, `"component":"persona"`, `"message":"persona built"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %s, got: %s", want, out)
		}
	}
}

func TestParseLevel(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input    string
		expected zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"debug", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"warn", zerolog.WarnLevel},
		{"warning", zerolog.WarnLevel},
		{"ERROR", zerolog.ErrorLevel},
		{" disabled ", zerolog.Disabled},
		{"bogus", zerolog.InfoLevel},
		{"", zerolog.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()
			if got := parseLevel(tt.input); got != tt.expected {
				t.Errorf("parseLevel(%q) = %v, want %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCtxAddsRunID(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	ctx := ContextWithLogger(context.Background(), NewTestLogger(&buf))
	ctx = ContextWithRunID(ctx, "abcd1234")
	ctx = ContextWithRequestID(ctx, "req-1")

	Ctx(ctx).Info().Msg("done")

	out := buf.String()
	if !strings.Contains(out, `"run_id":"abcd1234"`) {
		t.Errorf("expected run_id in output, got: %s", out)
	}
	if !strings.Contains(out, `"request_id":"req-1"`) {
		t.Errorf("expected request_id in output, got: %s", out)
	}
}

func TestGenerateRunID(t *testing.T) {
	t.Parallel()

	a, b := GenerateRunID(), GenerateRunID()
	if len(a) != 8 {
		t.Errorf("expected 8 character run id, got %q", a)
	}
	if a == b {
		t.Errorf("expected distinct run ids, got %q twice", a)
	}
	if RunIDFromContext(context.Background()) != "" {
		t.Error("expected empty run id on bare context")
	}
}

func TestSlogHandler(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	slogger := slog.New(NewSlogHandler(NewTestLogger(&buf)))
	slogger.WithGroup("svc").With("name", "pipeline").Warn("restart",
		"attempt", 2, "err", errors.New("boom"))

	out := buf.String()
	for _, want := range []string{`"level":"warn"`, `"svc.name":"pipeline"`, `"svc.attempt":2`, `"svc.err":"boom"`, `"message":"restart"`} {
		if !strings.Contains(out, want) {
			t.Errorf("expected output to contain %s, got: %s", want, out)
		}
	}
}
