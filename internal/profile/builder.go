// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package profile builds per-target profiles from the missions that
// requested each target.
//
// Label dimensions drop uninformative labels (empty, NaN spellings, unknown
// placeholders, frequency sentinels) before ranking. A dimension whose
// labels were all uninformative degrades to one "NAN" entry covering every
// mission, so an empty list always means "no data".
package profile

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/frequency"
	"github.com/tomtom215/scoutpersona/internal/metrics"
	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/tagging"
	"github.com/tomtom215/scoutpersona/internal/workerpool"
)

// Placeholders for missing scenario fields and plan types.
const (
	UnknownTaskType  = "未知类型"
	UnknownScoutType = "未知侦察"
	UnknownScene     = "未知场景"
	UnknownPlanType  = "未知筹划方式"
	NoGroup          = "无分组"
)

// Config controls the profile builder.
type Config struct {
	// TopN bounds every ranked dimension.
	// Default: 3.
	TopN int `koanf:"top_n" json:"top_n"`
}

// DefaultConfig returns the default profile parameters.
func DefaultConfig() Config {
	return Config{TopN: 3}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	if c.TopN < 1 {
		return fmt.Errorf("%w: top_n must be positive, got %d", models.ErrInvalidConfig, c.TopN)
	}
	return nil
}

// Input is everything one profile run reads. Clusters is the global
// target id to cluster id map.
type Input struct {
	Targets  []models.Target
	Missions []models.Mission
	Clusters map[string]int
	Window   models.TimeWindow
}

// Builder builds target profiles.
type Builder struct {
	cfg     Config
	workers int
	logger  zerolog.Logger
	now     func() time.Time
}

// Option configures a Builder.
type Option func(*Builder)

// WithClock overrides the generation time source.
func WithClock(now func() time.Time) Option {
	return func(b *Builder) { b.now = now }
}

// WithWorkers bounds the number of targets processed concurrently.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// NewBuilder validates cfg and creates a builder.
func NewBuilder(cfg Config, logger zerolog.Logger, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}
	b := &Builder{
		cfg:    cfg,
		logger: logger.With().Str("component", "profile").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

type targetGroup struct {
	id       string
	missions []models.Mission
}

func groupByTarget(missions []models.Mission) []targetGroup {
	index := make(map[string]int)
	var groups []targetGroup
	for _, m := range missions {
		i, ok := index[m.TargetID]
		if !ok {
			i = len(groups)
			index[m.TargetID] = i
			groups = append(groups, targetGroup{id: m.TargetID})
		}
		groups[i].missions = append(groups[i].missions, m)
	}
	return groups
}

// Build returns one profile per requested target in first-seen order.
// Targets that no mission references get no profile.
func (b *Builder) Build(ctx context.Context, in Input) ([]models.TargetProfile, error) {
	if len(in.Targets) == 0 {
		return nil, fmt.Errorf("%w: target list is empty", models.ErrInsufficientData)
	}
	if len(in.Missions) == 0 {
		return nil, fmt.Errorf("%w: mission list is empty", models.ErrInsufficientData)
	}

	missions := in.Window.Filter(in.Missions)
	if len(missions) < len(in.Missions) {
		b.logger.Info().
			Int("kept", len(missions)).
			Int("total", len(in.Missions)).
			Msg("Missions filtered by time window")
	}

	targets := models.IndexTargets(in.Targets)
	groups := groupByTarget(missions)
	generated := b.now().Format(models.GenerationTimeLayout)
	timeRange := in.Window.Range()

	profiles := make([]models.TargetProfile, len(groups))
	err := workerpool.Run(ctx, len(groups), b.workers, func(i int) {
		g := groups[i]
		target, ok := targets[g.id]
		if !ok {
			metrics.LookupMisses.WithLabelValues("target").Inc()
			b.logger.Warn().Str("target_id", g.id).Msg("Missions reference unknown target")
		}
		profiles[i] = models.TargetProfile{
			TargetID:       g.id,
			Tags:           b.tags(g.missions, target, in.Clusters),
			GenerationTime: generated,
			DataTimeRange:  timeRange,
		}
	})
	if err != nil {
		return nil, fmt.Errorf("profile: %w", err)
	}

	metrics.EntitiesProcessed.WithLabelValues("profile").Add(float64(len(profiles)))
	b.logger.Info().Int("profiles", len(profiles)).Msg("Target profiles built")
	return profiles, nil
}

// tags computes every dimension for one target. target may be nil.
func (b *Builder) tags(missions []models.Mission, target *models.Target, clusters map[string]int) models.ProfileTags {
	n := len(missions)
	typeCategory := typeCategoryShare(target, n)
	return models.ProfileTags{
		ScoutCycle:      b.cycles(missions),
		ScoutFrequency:  b.frequencies(missions),
		ScoutScenario:   b.scenarios(missions),
		SpatialDensity:  spatialDensity(missions, clusters),
		TargetType:      typeCategory,
		TargetCategory:  append([]models.CategoryShare(nil), typeCategory...),
		TopicGroup:      b.topics(missions, target),
		TargetPriority:  b.priorities(missions),
		Resolution:      b.resolutions(missions),
		MissionPlanType: b.planTypes(missions),
	}
}

func share[K any](r tagging.Ranked[K]) models.Share {
	return models.Share{Count: r.Count, Percentage: r.Percentage}
}

func (b *Builder) cycles(missions []models.Mission) []models.CycleShare {
	c := tagging.NewCounter[string]()
	details := make(map[string]frequency.Labels)
	for i := range missions {
		l := labelsOf(&missions[i])
		c.Add(l.Cycle)
		if _, ok := details[l.Cycle]; !ok {
			details[l.Cycle] = l
		}
	}
	ranked := tagging.RankValid(c, b.cfg.TopN)
	out := make([]models.CycleShare, len(ranked))
	for i, r := range ranked {
		d := details[r.Key]
		out[i] = models.CycleShare{CycleLabel: r.Key, ReqCycle: d.ReqCycle, ReqCycleTimes: d.ReqCycleTimes, Share: share(r)}
	}
	return out
}

func (b *Builder) frequencies(missions []models.Mission) []models.FrequencyShare {
	c := tagging.NewCounter[string]()
	details := make(map[string]frequency.Labels)
	for i := range missions {
		l := labelsOf(&missions[i])
		c.Add(l.Frequency)
		if _, ok := details[l.Frequency]; !ok {
			details[l.Frequency] = l
		}
	}
	ranked := tagging.RankValid(c, b.cfg.TopN)
	out := make([]models.FrequencyShare, len(ranked))
	for i, r := range ranked {
		out[i] = models.FrequencyShare{FrequencyLabel: r.Key, ReqTimes: details[r.Key].ReqTimes, Share: share(r)}
	}
	return out
}

func labelsOf(m *models.Mission) frequency.Labels {
	return frequency.Build(m.ReqCycle, m.ReqCycleTime, m.HasCycleTime, m.ReqTimes, m.HasReqTimes)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

func (b *Builder) scenarios(missions []models.Mission) []models.ScenarioShare {
	c := tagging.NewCounter[models.ScenarioKey]()
	for i := range missions {
		m := &missions[i]
		c.Add(models.ScenarioKey{
			TaskType:  orDefault(m.TaskType, UnknownTaskType),
			ScoutType: orDefault(m.ScoutType, UnknownScoutType),
			TaskScene: orDefault(m.TaskScene, UnknownScene),
			IsPrecise: m.IsPrecise,
		})
	}
	ranked := tagging.Rank(c, models.ScenarioKey.Label, b.cfg.TopN, c.Total())
	out := make([]models.ScenarioShare, len(ranked))
	for i, r := range ranked {
		out[i] = models.ScenarioShare{ScenarioKey: r.Key, Share: share(r)}
	}
	return out
}

// spatialDensity is the single global cluster id of the target, -1 when
// it was not clustered.
func spatialDensity(missions []models.Mission, clusters map[string]int) []models.RegionShare {
	if len(missions) == 0 {
		return []models.RegionShare{}
	}
	id, ok := clusters[missions[0].TargetID]
	if !ok {
		id = -1
	}
	return []models.RegionShare{{ClusterID: id, Share: models.Share{Count: len(missions), Percentage: 100}}}
}

// typeCategoryShare is the (type, category) of the target record, shared by
// all its missions.
func typeCategoryShare(target *models.Target, n int) []models.CategoryShare {
	if n == 0 {
		return []models.CategoryShare{}
	}
	key := models.TypeCategoryKey{TargetType: tagging.Sentinel, TargetCategory: tagging.Sentinel}
	if target != nil && !(tagging.IsInvalid(target.TargetType) && tagging.IsInvalid(target.TargetCategory)) {
		key = target.TypeCategory()
	}
	return []models.CategoryShare{{TypeCategoryKey: key, Share: models.Share{Count: n, Percentage: 100}}}
}

func (b *Builder) topics(missions []models.Mission, target *models.Target) []models.TopicShare {
	var groups []string
	if target != nil {
		groups = target.GroupNames()
	}
	if len(groups) == 0 {
		groups = []string{NoGroup}
	}
	c := tagging.NewCounter[models.TopicGroupKey]()
	for i := range missions {
		for _, g := range groups {
			c.Add(models.TopicGroupKey{TopicID: missions[i].TopicID, GroupName: g})
		}
	}
	ranked := tagging.Rank(c, models.TopicGroupKey.Label, b.cfg.TopN, c.Total())
	out := make([]models.TopicShare, len(ranked))
	for i, r := range ranked {
		out[i] = models.TopicShare{TopicGroupKey: r.Key, Share: share(r)}
	}
	return out
}

// PriorityLabel renders a mission priority; empty when it was missing.
func PriorityLabel(m *models.Mission) string {
	if !m.HasPriority || math.IsNaN(m.TargetPriority) || math.IsInf(m.TargetPriority, 0) {
		return ""
	}
	return strconv.FormatFloat(m.TargetPriority, 'f', -1, 64)
}

func (b *Builder) priorities(missions []models.Mission) []models.PriorityShare {
	c := tagging.NewCounter[string]()
	for i := range missions {
		c.Add(PriorityLabel(&missions[i]))
	}
	ranked := tagging.RankValid(c, b.cfg.TopN)
	out := make([]models.PriorityShare, len(ranked))
	for i, r := range ranked {
		out[i] = models.PriorityShare{Priority: r.Key, Share: share(r)}
	}
	return out
}

func invalidResolution(s string) bool {
	if tagging.IsInvalid(s) {
		return true
	}
	_, ok := tagging.ParseInterval(s)
	return !ok
}

// resolutions merges the Top-N resolution intervals into one "min-max"
// entry whose count is the sum of the merged counts.
func (b *Builder) resolutions(missions []models.Mission) []models.ResolutionShare {
	c := tagging.NewCounter[string]()
	for i := range missions {
		c.Add(missions[i].Resolution)
	}
	ranked := tagging.RankValidFunc(c, b.cfg.TopN, invalidResolution)
	if len(ranked) == 0 {
		return []models.ResolutionShare{}
	}
	if ranked[0].Key == tagging.Sentinel {
		return []models.ResolutionShare{{Resolution: tagging.Sentinel, Share: share(ranked[0])}}
	}

	labels := make([]string, len(ranked))
	count := 0
	for i, r := range ranked {
		labels[i] = r.Key
		count += r.Count
	}
	merged, _ := tagging.MergeIntervals(labels)
	return []models.ResolutionShare{{
		Resolution: merged.String(),
		Share:      models.Share{Count: count, Percentage: tagging.Percent(count, c.Total())},
	}}
}

func (b *Builder) planTypes(missions []models.Mission) []models.PlanTypeShare {
	c := tagging.NewCounter[string]()
	for i := range missions {
		c.Add(orDefault(missions[i].MissionPlanType, UnknownPlanType))
	}
	ranked := tagging.RankValid(c, b.cfg.TopN)
	out := make([]models.PlanTypeShare, len(ranked))
	for i, r := range ranked {
		out[i] = models.PlanTypeShare{MissionPlanType: r.Key, Share: share(r)}
	}
	return out
}
