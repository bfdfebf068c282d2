// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package preference

// Shape is the information auto selection looks at.
type Shape struct {
	// HHI is the concentration index rounded to four decimals.
	HHI float64
	// Users is the global requester count, 0 without global statistics.
	Users int
	// Targets is the number of distinct targets of the requester.
	Targets int
	// CV is the coefficient of variation of the requester's counts.
	CV float64
}

// NewShape describes counts. stats may be nil.
func NewShape(counts []int, stats *GlobalStats, hhiThreshold float64) Shape {
	s := Shape{
		HHI:     NewConcentration(counts, hhiThreshold).HHI,
		Targets: len(counts),
		CV:      CV(counts),
	}
	if stats != nil {
		s.Users = stats.TotalUsers
	}
	return s
}

// Select picks the strategy for a requester. A fixed algorithm in cfg is
// returned unchanged.
func Select(s Shape, cfg *Config) Algorithm {
	if cfg.Algorithm != AlgorithmAuto && cfg.Algorithm != "" {
		return cfg.Algorithm
	}
	switch {
	case s.HHI > cfg.HHIThreshold:
		return AlgorithmPercentage
	case s.Users >= cfg.TFIDFMinUsers && s.Targets >= cfg.TFIDFMinTargets:
		return AlgorithmTFIDF
	case s.Users >= cfg.BM25MinUsers && s.Targets >= cfg.BM25MinTargets:
		if s.CV > cfg.CVThreshold {
			return AlgorithmBM25
		}
		return AlgorithmTFIDF
	case s.Targets >= cfg.ZScoreMinTargets:
		return AlgorithmZScore
	default:
		return AlgorithmPercentage
	}
}
