// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package database

import (
	"errors"
	"io"

	"github.com/rs/zerolog"
)

var (
	// ErrNotFound is returned when no row matches a lookup.
	ErrNotFound = errors.New("not found")

	// ErrDisabled is returned by Open when the driver is "none".
	ErrDisabled = errors.New("result store disabled")
)

// closeWithLog closes a resource and logs any error.
// Use this for cleanup operations where errors should be acknowledged but not fail the operation
func closeWithLog(closer io.Closer, logger zerolog.Logger, resourceType string) {
	if closer == nil {
		return
	}
	if err := closer.Close(); err != nil {
		logger.Warn().Str("type", resourceType).Err(err).Msg("Failed to close resource")
	}
}

// closeQuietly closes a resource and explicitly ignores any error.
// Use this for cleanup operations in error paths where Close() errors are not actionable
func closeQuietly(closer io.Closer) {
	if closer != nil {
		_ = closer.Close()
	}
}
