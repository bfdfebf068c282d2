// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package recommend

import (
	"fmt"
	"math"

	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/validation"
)

// weightTolerance is how far a weight sum may drift from 1 before it is
// normalised.
const weightTolerance = 1e-6

// Config contains all configuration for the recommendation engine.
type Config struct {
	// BaseTopN is the recommendation count of a requester with 5-9
	// historical requests. Other activity levels scale it.
	// Default: 10.
	BaseTopN int `koanf:"base_top_n" json:"base_top_n"`

	// Weights defines the contribution of each content sub-score.
	Weights Weights `koanf:"weights" json:"weights"`

	// CollaborativeFiltering enables hybrid ranking.
	// Default: true.
	CollaborativeFiltering bool `koanf:"collaborative_filtering" json:"collaborative_filtering"`

	// ContentWeight and CFWeight blend the two signals. They are normalised
	// to sum to 1.
	// Default: 0.7 and 0.3.
	ContentWeight float64 `koanf:"content_weight" json:"content_weight" validate:"gte=0"`
	CFWeight      float64 `koanf:"cf_weight" json:"cf_weight" validate:"gte=0"`

	// KNN configures the user-based collaborative filter.
	KNN KNNConfig `koanf:"knn" json:"knn"`

	// Discovery configures the discovery slot reservation.
	Discovery DiscoveryConfig `koanf:"discovery" json:"discovery"`

	// Workers bounds the number of requesters scored concurrently.
	// Zero uses runtime.NumCPU().
	Workers int `koanf:"workers" json:"workers" validate:"gte=0"`
}

// Weights are the content sub-score weights.
type Weights struct {
	Target   float64 `koanf:"target" json:"target" validate:"gte=0"`
	Region   float64 `koanf:"region" json:"region" validate:"gte=0"`
	Category float64 `koanf:"category" json:"category" validate:"gte=0"`
	Topic    float64 `koanf:"topic" json:"topic" validate:"gte=0"`
	Scenario float64 `koanf:"scenario" json:"scenario" validate:"gte=0"`
}

// Sum returns the total weight.
func (w Weights) Sum() float64 {
	return w.Target + w.Region + w.Category + w.Topic + w.Scenario
}

// Normalize returns a copy summing to 1 when the sum is off by more than
// 1e-6. Ratios are preserved.
func (w Weights) Normalize() Weights {
	sum := w.Sum()
	if sum <= 0 || math.Abs(sum-1) <= weightTolerance {
		return w
	}
	return Weights{
		Target:   w.Target / sum,
		Region:   w.Region / sum,
		Category: w.Category / sum,
		Topic:    w.Topic / sum,
		Scenario: w.Scenario / sum,
	}
}

// KNNConfig contains configuration for the user-based collaborative filter.
type KNNConfig struct {
	// K is the number of neighbours to consider.
	// Default: 5.
	K int `koanf:"k" json:"k"`

	// SimilarityMetric is "cosine" or "jaccard".
	// Default: cosine.
	SimilarityMetric string `koanf:"similarity" json:"similarity" validate:"similarity"`

	// MinSimilarity drops neighbours at or below this similarity.
	// Default: 0.
	MinSimilarity float64 `koanf:"min_similarity" json:"min_similarity" validate:"unitinterval"`

	// NumWorkers is the number of parallel workers computing neighbours.
	// Zero uses runtime.NumCPU().
	NumWorkers int `koanf:"workers" json:"workers" validate:"gte=0"`
}

// DiscoveryConfig contains the discovery slot parameters.
type DiscoveryConfig struct {
	// HybridShare is the fraction of slots filled from the hybrid ranking,
	// rounded down. The remainder goes to discovery candidates.
	// Default: 0.8.
	HybridShare float64 `koanf:"hybrid_share" json:"hybrid_share" validate:"unitinterval"`

	// MinCFScore is the CF score a discovery candidate must exceed.
	// Default: 0.5.
	MinCFScore float64 `koanf:"min_cf_score" json:"min_cf_score" validate:"unitinterval"`

	// MaxContentScore is the content score a discovery candidate must stay
	// below.
	// Default: 0.3.
	MaxContentScore float64 `koanf:"max_content_score" json:"max_content_score" validate:"unitinterval"`
}

// DefaultConfig returns the default recommendation parameters.
func DefaultConfig() Config {
	return Config{
		BaseTopN: 10,
		Weights: Weights{
			Target:   0.25,
			Region:   0.20,
			Category: 0.20,
			Topic:    0.15,
			Scenario: 0.20,
		},
		CollaborativeFiltering: true,
		ContentWeight:          0.7,
		CFWeight:               0.3,
		KNN:                    DefaultKNNConfig(),
		Discovery:              DefaultDiscoveryConfig(),
	}
}

// DefaultKNNConfig returns default KNN configuration.
func DefaultKNNConfig() KNNConfig {
	return KNNConfig{K: 5, SimilarityMetric: "cosine"}
}

// DefaultDiscoveryConfig returns default discovery configuration.
func DefaultDiscoveryConfig() DiscoveryConfig {
	return DiscoveryConfig{HybridShare: 0.8, MinCFScore: 0.5, MaxContentScore: 0.3}
}

// Validate checks the configuration. Every failure wraps
// models.ErrInvalidConfig.
func (c *Config) Validate() error {
	if err := validation.ValidateStruct(c); err != nil {
		return fmt.Errorf("%w: %v", models.ErrInvalidConfig, err)
	}
	if c.BaseTopN <= 0 {
		return fmt.Errorf("%w: base_top_n must be positive, got %d", models.ErrInvalidConfig, c.BaseTopN)
	}
	if c.Weights.Sum() <= 0 {
		return fmt.Errorf("%w: content weights must not all be zero", models.ErrInvalidConfig)
	}
	if c.ContentWeight+c.CFWeight <= 0 {
		return fmt.Errorf("%w: content_weight and cf_weight must not both be zero", models.ErrInvalidConfig)
	}
	if c.KNN.K < 1 {
		return fmt.Errorf("%w: knn.k must be positive, got %d", models.ErrInvalidConfig, c.KNN.K)
	}
	return nil
}

// BlendWeights returns the normalised content and CF weights.
func (c *Config) BlendWeights() (content, cf float64) {
	sum := c.ContentWeight + c.CFWeight
	if sum <= 0 {
		return 1, 0
	}
	return c.ContentWeight / sum, c.CFWeight / sum
}
