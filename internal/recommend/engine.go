// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package recommend

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/metrics"
	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/workerpool"
)

// Engine coordinates content scoring, collaborative filtering and
// reranking. It is safe for concurrent use once constructed.
type Engine struct {
	config Config
	logger zerolog.Logger
	scorer *Scorer

	cf       CollaborativeFilter
	reranker Reranker
}

// Option configures an Engine.
type Option func(*Engine)

// WithCollaborativeFilter registers the CF algorithm used in hybrid mode.
func WithCollaborativeFilter(cf CollaborativeFilter) Option {
	return func(e *Engine) { e.cf = cf }
}

// WithReranker registers the reranker that fills the hybrid list.
func WithReranker(rr Reranker) Option {
	return func(e *Engine) { e.reranker = rr }
}

// Input is everything one recommendation run reads.
type Input struct {
	Personas []models.UserPersona
	Profiles []models.TargetProfile
	Tasks    []models.VirtualTask

	// Interactions overrides the implicit interactions derived from
	// preferred targets.
	Interactions []Interaction
}

// NewEngine creates a new recommendation engine.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewEngine(cfg Config, logger zerolog.Logger, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	scorer, err := NewScorer(cfg.Weights)
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	e := &Engine{
		config: cfg,
		logger: logger.With().Str("component", "recommend").Logger(),
		scorer: scorer,
	}
	for _, opt := range opts {
		opt(e)
	}
	for _, name := range e.registered() {
		e.logger.Info().Str("algorithm", name).Msg("registered algorithm")
	}
	return e, nil
}

func (e *Engine) registered() []string {
	var names []string
	if e.cf != nil {
		names = append(names, e.cf.Name())
	}
	if e.reranker != nil {
		names = append(names, e.reranker.Name())
	}
	return names
}

// hybrid reports whether a run over n personas blends in CF scores.
func (e *Engine) hybrid(n int) bool {
	return e.config.CollaborativeFiltering && e.cf != nil && n >= 2
}

// Recommend ranks tasks for every persona, in persona input order. Empty
// persona or task lists produce no results.
func (e *Engine) Recommend(ctx context.Context, in Input) ([]UserResults, error) {
	start := time.Now()
	if len(in.Tasks) == 0 {
		e.logger.Warn().Msg("virtual task list is empty")
		return nil, nil
	}
	if len(in.Personas) == 0 {
		e.logger.Warn().Msg("persona list is empty")
		return nil, nil
	}
	if len(in.Profiles) == 0 {
		e.logger.Warn().Msg("target profile list is empty, content scores will be degraded")
	}

	hybrid := e.hybrid(len(in.Personas))
	if hybrid {
		if err := e.trainCF(ctx, in); err != nil {
			return nil, err
		}
	} else if e.config.CollaborativeFiltering {
		e.logger.Info().
			Int("personas", len(in.Personas)).
			Msg("collaborative filtering unavailable, using content scores only")
	}

	profiles := models.IndexProfiles(in.Profiles)
	e.warnMissingProfiles(in.Tasks, profiles)

	results := make([]UserResults, len(in.Personas))
	var (
		errMu    sync.Mutex
		firstErr error
	)
	err := workerpool.Run(ctx, len(in.Personas), e.config.Workers, func(i int) {
		p := &in.Personas[i]
		ranked, err := e.recommendUser(ctx, i, p, in.Tasks, profiles, hybrid)
		if err != nil {
			errMu.Lock()
			if firstErr == nil {
				firstErr = fmt.Errorf("recommend %s: %w", p.UserID, err)
			}
			errMu.Unlock()
			return
		}
		results[i] = UserResults{User: p.UserID, Results: ranked}
	})
	if err != nil {
		return nil, fmt.Errorf("recommend: %w", err)
	}
	if firstErr != nil {
		return nil, firstErr
	}

	total := 0
	for _, r := range results {
		total += len(r.Results)
		for _, res := range r.Results {
			metrics.RecommendationsEmitted.WithLabelValues(string(res.Source)).Inc()
		}
	}
	metrics.EntitiesProcessed.WithLabelValues("recommendation").Add(float64(total))
	e.logger.Info().
		Int("users", len(results)).
		Int("recommendations", total).
		Bool("hybrid", hybrid).
		Dur("duration", time.Since(start)).
		Msg("recommendations generated")
	return results, nil
}

// trainCF fits the collaborative filter on implicit or supplied
// interactions.
func (e *Engine) trainCF(ctx context.Context, in Input) error {
	features := make([]Features, len(in.Personas))
	for i := range in.Personas {
		features[i] = NewFeatures(&in.Personas[i])
	}
	interactions := in.Interactions
	if interactions == nil {
		interactions = ImplicitInteractions(in.Personas, in.Tasks)
	}
	if err := e.cf.Train(ctx, features, interactions); err != nil {
		return fmt.Errorf("train %s: %w", e.cf.Name(), err)
	}
	e.logger.Debug().
		Str("algorithm", e.cf.Name()).
		Int("interactions", len(interactions)).
		Msg("collaborative filter trained")
	return nil
}

// ImplicitInteractions marks every persona as interested in the tasks
// whose target is among its preferred targets.
func ImplicitInteractions(personas []models.UserPersona, tasks []models.VirtualTask) []Interaction {
	byTarget := make(map[string][]string)
	for i := range tasks {
		byTarget[tasks[i].TargetID] = append(byTarget[tasks[i].TargetID], tasks[i].GenerateTaskID)
	}
	var out []Interaction
	for u := range personas {
		for _, target := range personas[u].PreferredTargetIDs() {
			for _, id := range byTarget[target] {
				out = append(out, Interaction{User: u, TaskID: id})
			}
		}
	}
	return out
}

// warnMissingProfiles logs once per task target that has no profile.
func (e *Engine) warnMissingProfiles(tasks []models.VirtualTask, profiles map[string]*models.TargetProfile) {
	seen := make(map[string]struct{})
	for i := range tasks {
		id := tasks[i].TargetID
		if _, ok := profiles[id]; ok {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		metrics.LookupMisses.WithLabelValues("profile").Inc()
		e.logger.Warn().Str("target_id", id).Msg("no target profile, scoring against an empty profile")
	}
}

func (e *Engine) recommendUser(ctx context.Context, user int, p *models.UserPersona, tasks []models.VirtualTask, profiles map[string]*models.TargetProfile, hybrid bool) ([]Result, error) {
	k, err := RecommendationCount(p.Tags.RequestFrequency.TotalCount, e.config.BaseTopN)
	if err != nil {
		return nil, err
	}

	items := make([]Result, len(tasks))
	for i := range tasks {
		t := &tasks[i]
		d := e.scorer.Score(p, t, profiles[t.TargetID])
		items[i] = Result{TaskID: t.GenerateTaskID, TargetID: t.TargetID, Score: d.Total, Source: SourceContent}
	}

	if !hybrid {
		sortByScore(items)
		return truncate(items, k), nil
	}

	cf, err := e.cf.Predict(ctx, user)
	if err != nil {
		return nil, fmt.Errorf("predict %s: %w", e.cf.Name(), err)
	}
	cw, fw := e.config.BlendWeights()
	for i := range items {
		content := items[i].Score
		cfScore := round4(cf[items[i].TaskID])
		items[i].ContentScore = content
		items[i].CFScore = cfScore
		items[i].Score = round4(cw*content + fw*cfScore)
		items[i].Source = SourceHybrid
	}
	sortByScore(items)

	if e.reranker == nil {
		return truncate(items, k), nil
	}
	return e.reranker.Rerank(ctx, items, k), nil
}

// sortByScore orders items by descending score, keeping catalogue order
// on ties.
func sortByScore(items []Result) {
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].Score > items[j].Score
	})
}

func truncate(items []Result, k int) []Result {
	if len(items) > k {
		return items[:k]
	}
	return items
}
