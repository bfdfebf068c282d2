// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package demand

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/metrics"
	"github.com/tomtom215/scoutpersona/internal/models"
)

// Defaults applied to fields the profile does not determine.
const (
	DefaultTaskType       = "5"
	DefaultScoutType      = "LDCXMB"
	DefaultTaskScene      = "1陆上态势-目标核查"
	DefaultTargetType     = "POINT"
	DefaultTargetCategory = "其他"
	DefaultResolution     = "（0.5-1.0）"
	DefaultTargetPriority = 1.0
	DefaultPlanType       = 2
	DefaultReqTimes       = "1"

	// ValidityPeriod is the distance between reqStartTime and reqEndTime.
	ValidityPeriod = 7 * 24 * time.Hour
)

// Config controls demand generation.
type Config struct {
	// TopN is the number of demands emitted per target.
	// Default: 3.
	TopN int `koanf:"top_n" json:"top_n"`

	// FieldTopK bounds the candidate values kept per field before the
	// Cartesian product.
	// Default: 3.
	FieldTopK int `koanf:"field_top_k" json:"field_top_k"`
}

// DefaultConfig returns the default demand parameters.
func DefaultConfig() Config {
	return Config{TopN: 3, FieldTopK: 3}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.TopN < 1 {
		return fmt.Errorf("%w: top_n must be positive, got %d", models.ErrInvalidConfig, c.TopN)
	}
	if c.FieldTopK < 1 {
		return fmt.Errorf("%w: field_top_k must be positive, got %d", models.ErrInvalidConfig, c.FieldTopK)
	}
	return nil
}

// Combinator turns target profiles into ranked synthetic demands.
type Combinator struct {
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
}

// Option configures a Combinator.
type Option func(*Combinator)

// WithClock overrides the time source used for demand timestamps.
func WithClock(now func() time.Time) Option {
	return func(c *Combinator) { c.now = now }
}

// NewCombinator validates cfg and creates a combinator.
func NewCombinator(cfg Config, logger zerolog.Logger, opts ...Option) (*Combinator, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("demand: %w", err)
	}
	c := &Combinator{
		cfg:    cfg,
		logger: logger.With().Str("component", "demand").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// combination is one choice index per field and its weight product.
type combination struct {
	choice []int
	score  float64
}

// Generate produces the demand document for profiles in input order.
func (c *Combinator) Generate(ctx context.Context, profiles []models.TargetProfile) (models.DemandDocument, error) {
	now := c.now()
	doc := models.DemandDocument{
		Demands:        make([]models.TargetDemands, 0, len(profiles)),
		GenerationTime: now.Format(models.GenerationTimeLayout),
	}

	for i := range profiles {
		if err := ctx.Err(); err != nil {
			return models.DemandDocument{}, err
		}
		p := &profiles[i]
		demands := c.ForProfile(p, now)
		doc.Demands = append(doc.Demands, models.TargetDemands{TargetID: p.TargetID, Demands: demands})
		doc.Statistics.Total += len(demands)
	}
	doc.Statistics.TargetCount = len(profiles)

	metrics.DemandsEmitted.Add(float64(doc.Statistics.Total))
	metrics.EntitiesProcessed.WithLabelValues("demand").Add(float64(len(profiles)))
	c.logger.Info().
		Int("targets", doc.Statistics.TargetCount).
		Int("demands", doc.Statistics.Total).
		Msg("Generated recommendation demands")
	return doc, nil
}

// ForProfile returns the top demands of one profile, best first.
func (c *Combinator) ForProfile(p *models.TargetProfile, now time.Time) []models.Demand {
	fs := fields(p)
	for i := range fs {
		opts := fs[i].options
		sort.SliceStable(opts, func(a, b int) bool { return opts[a].weight > opts[b].weight })
		if len(opts) > c.cfg.FieldTopK {
			fs[i].options = opts[:c.cfg.FieldTopK]
		}
	}

	combos := product(fs)
	sort.SliceStable(combos, func(a, b int) bool { return combos[a].score > combos[b].score })
	if len(combos) > c.cfg.TopN {
		combos = combos[:c.cfg.TopN]
	}

	out := make([]models.Demand, 0, len(combos))
	for _, combo := range combos {
		d := baseDemand(p.TargetID, now)
		for fi, oi := range combo.choice {
			if apply := fs[fi].options[oi].apply; apply != nil {
				apply(&d)
			}
		}
		d.WeightScore = combo.score
		out = append(out, d)
	}
	return out
}

// product enumerates the Cartesian product of field options with the first
// field varying slowest. No fields yields one empty combination.
func product(fs []field) []combination {
	total := 1
	for _, f := range fs {
		total *= len(f.options)
	}
	out := make([]combination, 0, total)
	choice := make([]int, len(fs))
	for {
		score := 1.0
		for fi, oi := range choice {
			score *= fs[fi].options[oi].weight
		}
		out = append(out, combination{choice: append([]int(nil), choice...), score: score})

		i := len(fs) - 1
		for ; i >= 0; i-- {
			choice[i]++
			if choice[i] < len(fs[i].options) {
				break
			}
			choice[i] = 0
		}
		if i < 0 {
			return out
		}
	}
}

// baseDemand returns a demand carrying every fixed message field and the
// defaults for profile-derived fields.
func baseDemand(targetID string, now time.Time) models.Demand {
	stamp := now.Format(models.DateTimeLayout)
	return models.Demand{
		TargetID:        targetID,
		TargetPriority:  DefaultTargetPriority,
		TaskType:        DefaultTaskType,
		ScoutType:       DefaultScoutType,
		TaskScene:       DefaultTaskScene,
		IsPrecise:       "False",
		Resolution:      DefaultResolution,
		TargetType:      DefaultTargetType,
		TargetCategory:  DefaultTargetCategory,
		MissionPlanType: DefaultPlanType,

		MessageType:       "SCOUTREQ",
		MessageID:         123456,
		OriginatorAddress: "中国台湾",
		CreationTime:      stamp,
		MessageStatus:     0,
		ReqCount:          1,
		ReqGround:         "20251021-ZQ-2161",
		GenerateReqID:     "20251021-MPSS-00000901",
		ReqOperation:      "0",
		ReqUnit:           "CC-BJ",
		ReqGroup:          "CC-BJ",
		ReqName:           "GE-二岛链监视区覆盖",
		ReqStartTime:      stamp,
		ReqEndTime:        now.Add(ValidityPeriod).Format(models.DateTimeLayout),
		TopicName:         "默认专题",
		TopicID:           "0",
		TopicLevel:        1.0,
		TargetName:        "二岛链监视区域",
		CountryName:       "未知",
		IsEmcon:           "0",
		CenterLocation:    "(110.4,31.5)",
		Elevation:         "9",
		ReqIntervalMax:    7200,
		ReqIntervalMin:    3600,
		Speed:             0,
		Heading:           0,
	}
}
