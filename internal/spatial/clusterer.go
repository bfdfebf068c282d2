// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package spatial

import (
	"fmt"
	"math"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/models"
)

// DefaultScales is the eps ladder tried by auto-tuning.
var DefaultScales = []float64{0.2, 0.3, 0.4, 0.5, 0.6, 0.8, 1.0, 1.3, 1.7, 2.2}

// Weight of the distance to DesiredClusters in the attempt score.
const desiredPenalty = 0.7

// Config controls one clusterer.
type Config struct {
	// EpsKm is the neighbourhood radius in kilometres.
	// Default: 80.
	EpsKm float64 `koanf:"eps_km" json:"eps_km"`

	// MinSamples is the weight a neighbourhood needs to form a core point.
	// It is clamped to half the input size for small inputs.
	// Default: 3.
	MinSamples int `koanf:"min_samples" json:"min_samples"`

	// AutoTune enables the eps/min_samples search.
	// Default: true.
	AutoTune bool `koanf:"auto_tune" json:"auto_tune"`

	// DesiredClusters stops the search once reached.
	// Default: 5.
	DesiredClusters int `koanf:"desired_clusters" json:"desired_clusters"`

	// MaxAttempts truncates the scale ladder.
	// Default: 10.
	MaxAttempts int `koanf:"max_attempts" json:"max_attempts"`

	// NoiseThreshold accepts an attempt with any cluster and at most this
	// noise ratio.
	// Default: 0.45.
	NoiseThreshold float64 `koanf:"noise_threshold" json:"noise_threshold"`

	// Scales multiplies EpsKm per attempt.
	// Default: DefaultScales.
	Scales []float64 `koanf:"scales" json:"scales"`
}

// DefaultConfig returns the general purpose clustering parameters.
func DefaultConfig() Config {
	return Config{
		EpsKm:           80,
		MinSamples:      3,
		AutoTune:        true,
		DesiredClusters: 5,
		MaxAttempts:     10,
		NoiseThreshold:  0.45,
		Scales:          append([]float64(nil), DefaultScales...),
	}
}

// ProfileConfig returns the parameters used for the global target
// clustering shared by personas and target profiles.
func ProfileConfig() Config {
	cfg := DefaultConfig()
	cfg.EpsKm = 60
	cfg.MinSamples = 4
	cfg.DesiredClusters = 7
	return cfg
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.EpsKm <= 0 || math.IsNaN(c.EpsKm) || math.IsInf(c.EpsKm, 0) {
		return fmt.Errorf("%w: eps_km must be positive, got %f", models.ErrInvalidConfig, c.EpsKm)
	}
	if c.MinSamples < 1 {
		return fmt.Errorf("%w: min_samples must be positive, got %d", models.ErrInvalidConfig, c.MinSamples)
	}
	if c.DesiredClusters < 1 {
		return fmt.Errorf("%w: desired_clusters must be positive, got %d", models.ErrInvalidConfig, c.DesiredClusters)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: max_attempts must be positive, got %d", models.ErrInvalidConfig, c.MaxAttempts)
	}
	if c.NoiseThreshold < 0 || c.NoiseThreshold > 1 {
		return fmt.Errorf("%w: noise_threshold must be in [0, 1], got %f", models.ErrInvalidConfig, c.NoiseThreshold)
	}
	for i, s := range c.Scales {
		if s <= 0 {
			return fmt.Errorf("%w: scales[%d] must be positive, got %f", models.ErrInvalidConfig, i, s)
		}
	}
	return nil
}

func (c *Config) scales() []float64 {
	s := c.Scales
	if len(s) == 0 {
		s = DefaultScales
	}
	if c.MaxAttempts < len(s) {
		s = s[:c.MaxAttempts]
	}
	return s
}

// Point is one clustering input. Several points may share an ID; they then
// share the label of the last one.
type Point struct {
	ID  string
	Lat float64
	Lon float64
}

// Attempt describes one DBSCAN run of the auto-tune search.
type Attempt struct {
	EpsKm      float64 `json:"eps_km"`
	MinSamples int     `json:"min_samples"`
	Clusters   int     `json:"clusters"`
	NoiseRatio float64 `json:"noise_ratio"`
	Score      float64 `json:"score"`
}

// Result maps item ids to cluster ids and records how they were found.
type Result struct {
	Labels     map[string]int `json:"labels"`
	Clusters   int            `json:"clusters"`
	NoiseRatio float64        `json:"noise_ratio"`
	EpsKm      float64        `json:"eps_km"`
	MinSamples int            `json:"min_samples"`
	Points     int            `json:"points"`
	Attempts   []Attempt      `json:"attempts,omitempty"`
}

// Clusterer runs (auto-tuned) DBSCAN over geographic points.
type Clusterer struct {
	cfg    Config
	logger zerolog.Logger
}

// NewClusterer validates cfg and creates a clusterer.
func NewClusterer(cfg Config, logger zerolog.Logger) (*Clusterer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("clustering: %w", err)
	}
	return &Clusterer{
		cfg:    cfg,
		logger: logger.With().Str("component", "spatial").Logger(),
	}, nil
}

// Config returns the clusterer configuration.
func (c *Clusterer) Config() Config {
	return c.cfg
}

// ClusterPoints clusters points. Empty input yields an empty mapping.
func (c *Clusterer) ClusterPoints(points []Point) Result {
	res := Result{Labels: make(map[string]int), EpsKm: c.cfg.EpsKm, Points: len(points)}
	if len(points) == 0 {
		return res
	}

	type coord struct{ lat, lon float64 }
	wp := newWeightedPoints()
	index := make(map[coord]int, len(points))
	itemPoint := make([]int, len(points))
	for i, p := range points {
		key := coord{p.Lat, p.Lon}
		idx, ok := index[key]
		if ok {
			wp.bump(idx)
		} else {
			idx = wp.len()
			index[key] = idx
			wp.add(p.Lat, p.Lon)
		}
		itemPoint[i] = idx
	}

	n := len(points)
	half := n / 2
	if half == 0 {
		half = 1
	}
	base := max(1, min(c.cfg.MinSamples, half))

	labels := c.run(wp, base, &res)

	// Contiguous ids in first-seen item order.
	remap := make(map[int]int)
	for i, p := range points {
		raw := labels[itemPoint[i]]
		if raw == Noise {
			res.Labels[p.ID] = Noise
			continue
		}
		id, ok := remap[raw]
		if !ok {
			id = len(remap)
			remap[raw] = id
		}
		res.Labels[p.ID] = id
	}

	c.logger.Debug().
		Int("points", n).
		Int("unique_points", wp.len()).
		Int("clusters", res.Clusters).
		Float64("noise_ratio", res.NoiseRatio).
		Float64("eps_km", res.EpsKm).
		Int("min_samples", res.MinSamples).
		Int("attempts", len(res.Attempts)).
		Msg("Clustering complete")
	return res
}

// run returns per unique point labels and fills the diagnostics of res.
func (c *Clusterer) run(wp *weightedPoints, base int, res *Result) []int {
	if !c.cfg.AutoTune {
		labels := wp.dbscan(c.cfg.EpsKm, base)
		res.Clusters, res.NoiseRatio = wp.summarize(labels)
		res.EpsKm, res.MinSamples = c.cfg.EpsKm, base
		return labels
	}

	scales := c.cfg.scales()
	relaxAfter := len(scales) / 3

	var (
		bestLabels  []int
		bestAttempt Attempt
		bestScore   = math.Inf(-1)
		allLabels   [][]int
	)
	for i, scale := range scales {
		eps := c.cfg.EpsKm * scale
		ms := max(1, base-max(0, i-relaxAfter))
		ms = min(ms, wp.total)

		labels := wp.dbscan(eps, ms)
		clusters, noise := wp.summarize(labels)
		score := float64(clusters) - math.Abs(float64(clusters-c.cfg.DesiredClusters))*desiredPenalty - noise
		a := Attempt{EpsKm: eps, MinSamples: ms, Clusters: clusters, NoiseRatio: noise, Score: score}
		res.Attempts = append(res.Attempts, a)
		allLabels = append(allLabels, labels)

		c.logger.Trace().
			Float64("eps_km", eps).
			Int("min_samples", ms).
			Int("clusters", clusters).
			Float64("noise_ratio", noise).
			Float64("score", score).
			Msg("Clustering attempt")

		if clusters >= c.cfg.DesiredClusters || (clusters >= 1 && noise <= c.cfg.NoiseThreshold) {
			bestLabels, bestAttempt = labels, a
			break
		}
		if score > bestScore {
			bestScore = score
			bestLabels, bestAttempt = labels, a
		}
	}

	if bestLabels == nil && len(res.Attempts) > 0 {
		most := 0
		for i, a := range res.Attempts {
			if a.Clusters > res.Attempts[most].Clusters {
				most = i
			}
		}
		bestLabels, bestAttempt = allLabels[most], res.Attempts[most]
	}
	if bestLabels == nil {
		bestLabels = make([]int, wp.len())
		for i := range bestLabels {
			bestLabels[i] = Noise
		}
		res.NoiseRatio = 1
		return bestLabels
	}

	res.Clusters = bestAttempt.Clusters
	res.NoiseRatio = bestAttempt.NoiseRatio
	res.EpsKm = bestAttempt.EpsKm
	res.MinSamples = bestAttempt.MinSamples
	return bestLabels
}

// ClusterMissions clusters one point per mission, placed at the coordinate
// of its target and keyed by id(mission). Missions whose target is unknown
// or has no coordinate are left out.
func (c *Clusterer) ClusterMissions(missions []models.Mission, targets map[string]*models.Target, id func(*models.Mission) string) Result {
	points := make([]Point, 0, len(missions))
	for i := range missions {
		m := &missions[i]
		t, ok := targets[m.TargetID]
		if !ok {
			continue
		}
		if lat, lon, ok := t.Coordinate(); ok {
			points = append(points, Point{ID: id(m), Lat: lat, Lon: lon})
		}
	}
	return c.ClusterPoints(points)
}

// ByTargetID keys mission points by their target id.
func ByTargetID(m *models.Mission) string {
	return m.TargetID
}
