// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package preference

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/models"
)

// Ranking is the outcome of scoring one requester.
type Ranking struct {
	Targets       []models.TargetShare
	Algorithm     Algorithm
	Concentration Concentration
}

// Scorer selects and applies a strategy per requester. It is safe for
// concurrent use once built.
type Scorer struct {
	cfg    Config
	stats  *GlobalStats
	logger zerolog.Logger
}

// NewScorer validates cfg. stats may be nil when the algorithm does not
// need it; tfidf and bm25 then fall back to single-requester defaults.
func NewScorer(cfg Config, stats *GlobalStats, logger zerolog.Logger) (*Scorer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("preference: %w", err)
	}
	return &Scorer{
		cfg:    cfg,
		stats:  stats,
		logger: logger.With().Str("component", "preference").Logger(),
	}, nil
}

// Rank scores counts.
func (s *Scorer) Rank(counts Counts) Ranking {
	values := counts.Values()
	conc := NewConcentration(values, s.cfg.HHIThreshold)
	algo := Select(NewShape(values, s.stats, s.cfg.HHIThreshold), &s.cfg)

	s.logger.Debug().
		Str("algorithm", string(algo)).
		Float64("hhi", conc.HHI).
		Str("concentration_level", conc.Level).
		Bool("is_concentrated", conc.IsConcentrated).
		Int("targets", len(counts)).
		Msg("Preference algorithm selected")

	return Ranking{
		Targets:       NewStrategy(algo, &s.cfg).Score(counts, s.stats),
		Algorithm:     algo,
		Concentration: conc,
	}
}
