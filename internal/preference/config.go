// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package preference

import (
	"fmt"

	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/validation"
)

// Algorithm names a preference scoring strategy.
type Algorithm string

// Supported algorithms.
const (
	AlgorithmAuto       Algorithm = "auto"
	AlgorithmPercentage Algorithm = "percentage"
	AlgorithmZScore     Algorithm = "zscore"
	AlgorithmTFIDF      Algorithm = "tfidf"
	AlgorithmBM25       Algorithm = "bm25"
)

// NeedsGlobalStats reports whether the algorithm may read GlobalStats.
func (a Algorithm) NeedsGlobalStats() bool {
	return a == AlgorithmAuto || a == AlgorithmTFIDF || a == AlgorithmBM25
}

// Config contains the persona preference parameters.
type Config struct {
	// Algorithm selects the target scoring strategy.
	// Default: auto.
	Algorithm Algorithm `koanf:"algorithm" json:"algorithm" validate:"algorithm"`

	// TopN bounds every persona dimension except preferred targets.
	// Default: 3.
	TopN int `koanf:"top_n" json:"top_n"`

	// TargetTopN bounds the preferred target list.
	// Default: 50.
	TargetTopN int `koanf:"target_top_n" json:"target_top_n"`

	// HHIThreshold marks a requester as concentrated.
	// Default: 0.05.
	HHIThreshold float64 `koanf:"hhi_threshold" json:"hhi_threshold"`

	// CVThreshold separates bm25 from tfidf in auto mode.
	// Default: 1.0.
	CVThreshold float64 `koanf:"cv_threshold" json:"cv_threshold"`

	// ZScoreThreshold is the significance cut of the zscore strategy.
	// Default: 1.0.
	ZScoreThreshold float64 `koanf:"zscore_threshold" json:"zscore_threshold"`

	// TFIDFSmoothing is added to every idf.
	// Default: 1.0.
	TFIDFSmoothing float64 `koanf:"tfidf_smoothing" json:"tfidf_smoothing"`

	// BM25K1 controls term frequency saturation.
	// Default: 1.5.
	BM25K1 float64 `koanf:"bm25_k1" json:"bm25_k1"`

	// BM25B controls length normalisation.
	// Default: 0.75.
	BM25B float64 `koanf:"bm25_b" json:"bm25_b"`

	// Auto mode gates.
	TFIDFMinUsers    int `koanf:"auto_tfidf_min_users" json:"auto_tfidf_min_users"`
	TFIDFMinTargets  int `koanf:"auto_tfidf_min_targets" json:"auto_tfidf_min_targets"`
	BM25MinUsers     int `koanf:"auto_bm25_min_users" json:"auto_bm25_min_users"`
	BM25MinTargets   int `koanf:"auto_bm25_min_targets" json:"auto_bm25_min_targets"`
	ZScoreMinTargets int `koanf:"auto_zscore_min_targets" json:"auto_zscore_min_targets"`
}

// DefaultConfig returns the default preference parameters.
func DefaultConfig() Config {
	return Config{
		Algorithm:        AlgorithmAuto,
		TopN:             3,
		TargetTopN:       50,
		HHIThreshold:     0.05,
		CVThreshold:      1.0,
		ZScoreThreshold:  1.0,
		TFIDFSmoothing:   1.0,
		BM25K1:           1.5,
		BM25B:            0.75,
		TFIDFMinUsers:    10,
		TFIDFMinTargets:  20,
		BM25MinUsers:     5,
		BM25MinTargets:   10,
		ZScoreMinTargets: 5,
	}
}

// Validate checks the configuration. Every failure wraps
// models.ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}
	if c.TopN < 1 {
		return fmt.Errorf("%w: top_n must be positive, got %d", models.ErrInvalidConfig, c.TopN)
	}
	if c.TargetTopN < 1 {
		return fmt.Errorf("%w: target_top_n must be positive, got %d", models.ErrInvalidConfig, c.TargetTopN)
	}
	if c.HHIThreshold < 0 || c.HHIThreshold > 1 {
		return fmt.Errorf("%w: hhi_threshold must be in [0, 1], got %f", models.ErrInvalidConfig, c.HHIThreshold)
	}
	if c.CVThreshold < 0 {
		return fmt.Errorf("%w: cv_threshold must be non-negative, got %f", models.ErrInvalidConfig, c.CVThreshold)
	}
	if c.ZScoreThreshold < 0 {
		return fmt.Errorf("%w: zscore_threshold must be non-negative, got %f", models.ErrInvalidConfig, c.ZScoreThreshold)
	}
	if c.TFIDFSmoothing < 0 {
		return fmt.Errorf("%w: tfidf_smoothing must be non-negative, got %f", models.ErrInvalidConfig, c.TFIDFSmoothing)
	}
	if c.BM25K1 <= 0 {
		return fmt.Errorf("%w: bm25_k1 must be positive, got %f", models.ErrInvalidConfig, c.BM25K1)
	}
	if c.BM25B < 0 || c.BM25B > 1 {
		return fmt.Errorf("%w: bm25_b must be in [0, 1], got %f", models.ErrInvalidConfig, c.BM25B)
	}
	gates := []struct {
		name  string
		value int
	}{
		{"auto_tfidf_min_users", c.TFIDFMinUsers},
		{"auto_tfidf_min_targets", c.TFIDFMinTargets},
		{"auto_bm25_min_users", c.BM25MinUsers},
		{"auto_bm25_min_targets", c.BM25MinTargets},
		{"auto_zscore_min_targets", c.ZScoreMinTargets},
	}
	for _, g := range gates {
		if g.value < 1 {
			return fmt.Errorf("%w: %s must be positive, got %d", models.ErrInvalidConfig, g.name, g.value)
		}
	}
	return nil
}
