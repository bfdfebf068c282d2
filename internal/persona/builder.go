// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package persona builds requester personas from their mission history.
//
// A requester is identified by (req_unit, req_group). Its persona ranks the
// targets, regions, target categories, topic groups and scout scenarios it
// asks for most. Target preference goes through the preference package; the
// other dimensions are plain Top-N shares.
package persona

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/metrics"
	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/preference"
	"github.com/tomtom215/scoutpersona/internal/tagging"
	"github.com/tomtom215/scoutpersona/internal/workerpool"
)

// NoGroup is the group name counted for targets without groups.
const NoGroup = "无分组"

// Input is everything one persona run reads. Clusters is the global
// target id to cluster id map; a nil map leaves preferred regions empty.
type Input struct {
	Targets  []models.Target
	Missions []models.Mission
	Clusters map[string]int
	Window   models.TimeWindow
}

// Builder builds personas.
type Builder struct {
	cfg     preference.Config
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

// WithWorkers bounds the number of requesters processed concurrently.
func WithWorkers(n int) Option {
	return func(b *Builder) { b.workers = n }
}

// NewBuilder validates cfg and creates a builder.
func NewBuilder(cfg preference.Config, logger zerolog.Logger, opts ...Option) (*Builder, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("persona: %w", err)
	}
	b := &Builder{
		cfg:    cfg,
		logger: logger.With().Str("component", "persona").Logger(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

type userGroup struct {
	key      models.UserKey
	missions []models.Mission
}

// groupByUser groups missions per requester in first-seen order.
func groupByUser(missions []models.Mission) []userGroup {
	index := make(map[models.UserKey]int)
	var groups []userGroup
	for _, m := range missions {
		key := m.User()
		i, ok := index[key]
		if !ok {
			i = len(groups)
			index[key] = i
			groups = append(groups, userGroup{key: key})
		}
		groups[i].missions = append(groups[i].missions, m)
	}
	return groups
}

// Build returns one persona per requester in first-seen order. Empty target
// or mission input fails with models.ErrInsufficientData.
func (b *Builder) Build(ctx context.Context, in Input) ([]models.UserPersona, error) {
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
			Str("start", in.Window.RawStart).
			Str("end", in.Window.RawEnd).
			Msg("Missions filtered by time window")
	}

	var stats *preference.GlobalStats
	if b.cfg.Algorithm.NeedsGlobalStats() {
		stats = preference.ComputeGlobalStats(missions)
		b.logger.Info().
			Int("total_users", stats.TotalUsers).
			Float64("avg_mission_count", stats.AvgMissionCount).
			Msg("Global requester statistics computed")
	}
	scorer, err := preference.NewScorer(b.cfg, stats, b.logger)
	if err != nil {
		return nil, err
	}

	targets := models.IndexTargets(in.Targets)
	groups := groupByUser(missions)
	generated := b.now().Format(models.GenerationTimeLayout)
	timeRange := in.Window.Range()

	personas := make([]models.UserPersona, len(groups))
	err = workerpool.Run(ctx, len(groups), b.workers, func(i int) {
		g := groups[i]
		tags, algo := b.tags(g.missions, targets, in.Clusters, scorer)
		metrics.PreferenceSelections.WithLabelValues(string(algo)).Inc()
		personas[i] = models.UserPersona{
			UserID:         g.key,
			Tags:           tags,
			GenerationTime: generated,
			DataTimeRange:  timeRange,
		}
		b.logger.Debug().
			Str("user", g.key.String()).
			Int("missions", len(g.missions)).
			Msg("Persona built")
	})
	if err != nil {
		return nil, fmt.Errorf("persona: %w", err)
	}

	metrics.EntitiesProcessed.WithLabelValues("persona").Add(float64(len(personas)))
	b.logger.Info().Int("personas", len(personas)).Msg("Personas built")
	return personas, nil
}

func (b *Builder) tags(missions []models.Mission, targets map[string]*models.Target, clusters map[string]int, scorer *preference.Scorer) (models.PersonaTags, preference.Algorithm) {
	ranking := scorer.Rank(targetCounts(missions))
	return models.PersonaTags{
		RequestFrequency:   models.RequestFrequency{TotalCount: len(missions)},
		PreferredTargets:   ranking.Targets,
		PreferredRegions:   regions(missions, clusters, b.cfg.TopN),
		PreferredCategory:  categories(missions, targets, b.cfg.TopN),
		PreferredTopic:     topics(missions, targets, b.cfg.TopN),
		PreferredScenarios: scenarios(missions, b.cfg.TopN),
	}, ranking.Algorithm
}

func targetCounts(missions []models.Mission) preference.Counts {
	counts := make(preference.Counts)
	for i := range missions {
		counts[missions[i].TargetID]++
	}
	return counts
}

// regions ranks global cluster ids. Missions whose target has no cluster
// are skipped; noise (-1) is a regular label.
func regions(missions []models.Mission, clusters map[string]int, topN int) []models.RegionShare {
	if len(clusters) == 0 {
		return []models.RegionShare{}
	}
	c := tagging.NewCounter[int]()
	for i := range missions {
		if id, ok := clusters[missions[i].TargetID]; ok {
			c.Add(id)
		}
	}
	ranked := tagging.Rank(c, clusterLabel, topN, c.Total())
	out := make([]models.RegionShare, len(ranked))
	for i, r := range ranked {
		out[i] = models.RegionShare{ClusterID: r.Key, Share: share(r)}
	}
	return out
}

func clusterLabel(id int) string {
	return fmt.Sprintf("%010d", id+1)
}

// categories ranks (target_type, target_category) of known targets. Keys
// with neither field set degrade to a NAN/NAN sentinel.
func categories(missions []models.Mission, targets map[string]*models.Target, topN int) []models.CategoryShare {
	c := tagging.NewCounter[models.TypeCategoryKey]()
	for i := range missions {
		if t, ok := targets[missions[i].TargetID]; ok {
			c.Add(t.TypeCategory())
		}
	}
	ranked := tagging.RankValidKeys(c, models.TypeCategoryKey.Label, topN, c.Total(),
		invalidCategory, models.TypeCategoryKey{TargetType: tagging.Sentinel, TargetCategory: tagging.Sentinel}, len(missions))
	out := make([]models.CategoryShare, len(ranked))
	for i, r := range ranked {
		out[i] = models.CategoryShare{TypeCategoryKey: r.Key, Share: share(r)}
	}
	return out
}

// topics ranks (topic_id, group_name). A mission counts once per group of
// its target, or once under NoGroup when the target is unknown or has no
// groups.
func topics(missions []models.Mission, targets map[string]*models.Target, topN int) []models.TopicShare {
	c := tagging.NewCounter[models.TopicGroupKey]()
	for i := range missions {
		m := &missions[i]
		var groups []string
		if t, ok := targets[m.TargetID]; ok {
			groups = t.GroupNames()
		}
		if len(groups) == 0 {
			c.Add(models.TopicGroupKey{TopicID: m.TopicID, GroupName: NoGroup})
			continue
		}
		for _, g := range groups {
			c.Add(models.TopicGroupKey{TopicID: m.TopicID, GroupName: g})
		}
	}
	ranked := tagging.RankValidKeys(c, models.TopicGroupKey.Label, topN, c.Total(),
		invalidTopic, models.TopicGroupKey{TopicID: tagging.Sentinel, GroupName: tagging.Sentinel}, len(missions))
	out := make([]models.TopicShare, len(ranked))
	for i, r := range ranked {
		out[i] = models.TopicShare{TopicGroupKey: r.Key, Share: share(r)}
	}
	return out
}

// scenarios ranks the (task_type, scout_type, task_scene, is_precise)
// tuple against the mission count.
func scenarios(missions []models.Mission, topN int) []models.ScenarioShare {
	c := tagging.NewCounter[models.ScenarioKey]()
	for i := range missions {
		c.Add(missions[i].Scenario())
	}
	ranked := tagging.RankValidKeys(c, models.ScenarioKey.Label, topN, len(missions),
		invalidScenario, models.ScenarioKey{TaskType: tagging.Sentinel, ScoutType: tagging.Sentinel, TaskScene: tagging.Sentinel}, len(missions))
	out := make([]models.ScenarioShare, len(ranked))
	for i, r := range ranked {
		out[i] = models.ScenarioShare{ScenarioKey: r.Key, Share: share(r)}
	}
	return out
}

func invalidCategory(k models.TypeCategoryKey) bool {
	return tagging.AllInvalid(k.TargetType, k.TargetCategory)
}

func invalidTopic(k models.TopicGroupKey) bool {
	return tagging.AllInvalid(k.TopicID, k.GroupName)
}

func invalidScenario(k models.ScenarioKey) bool {
	return tagging.AllInvalid(k.TaskType, k.ScoutType, k.TaskScene)
}

func share[K any](r tagging.Ranked[K]) models.Share {
	return models.Share{Count: r.Count, Percentage: r.Percentage}
}
