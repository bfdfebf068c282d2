// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package database

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
)

// Open validates cfg and opens the configured store. It returns
// ErrDisabled when the driver is "none".
func Open(ctx context.Context, cfg Config, logger zerolog.Logger) (Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		s   Store
		err error
	)
	switch cfg.Driver {
	case DriverNone:
		return nil, ErrDisabled
	case DriverDuckDB:
		s, err = OpenDuckDB(ctx, cfg.Path, logger)
	case DriverSQLite:
		s, err = OpenSQLite(cfg.Path, cfg.BatchSize, logger)
	case DriverMySQL:
		s, err = OpenMySQL(cfg.DSN, cfg.BatchSize, logger)
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
	if err != nil {
		return nil, err
	}

	logger.Info().Str("driver", cfg.Driver).Str("path", cfg.Path).Msg("Result store opened")
	return s, nil
}
