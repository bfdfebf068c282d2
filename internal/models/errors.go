// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package models

import "errors"

var (
	// ErrInvalidConfig is returned before any computation when a parameter is
	// out of range. Callers wrap it with the offending field.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrInsufficientData is returned when a mandatory input collection is empty.
	ErrInsufficientData = errors.New("insufficient data")

	// ErrInvalidRecord marks an input record that failed normalisation.
	ErrInvalidRecord = errors.New("invalid record")
)
