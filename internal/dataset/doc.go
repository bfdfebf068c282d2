// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package dataset is the JSON file boundary of the pipeline.
//
// Input files (targets, missions, virtual tasks) are decoded into loose
// records and normalised by the models constructors, so snake_case and
// camelCase keys and stringly typed numbers are both accepted. Output
// documents are written atomically with non-ASCII text left unescaped.
//
// Errors wrap the underlying cause, so errors.Is matches fs.ErrNotExist and
// models.ErrInvalidRecord.
package dataset
