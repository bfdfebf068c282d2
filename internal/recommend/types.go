// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package recommend

import (
	"context"
	"strconv"

	"github.com/tomtom215/scoutpersona/internal/models"
)

// Source tells which ranking placed a result in the final list.
type Source string

// Result sources.
const (
	SourceContent   Source = "content"
	SourceHybrid    Source = "hybrid"
	SourceDiscovery Source = "discovery"
)

// Result is one ranked task of a requester. ContentScore, CFScore and
// Discovery are only filled in hybrid mode.
type Result struct {
	TaskID       string  `json:"task_id"`
	TargetID     string  `json:"target_id"`
	Score        float64 `json:"score"`
	ContentScore float64 `json:"content_score,omitempty"`
	CFScore      float64 `json:"cf_score,omitempty"`
	Discovery    bool    `json:"is_discovery,omitempty"`
	Source       Source  `json:"-"`
}

// UserResults is the ranked list of one requester.
type UserResults struct {
	User    models.UserKey
	Results []Result
}

// Interaction marks a requester, by persona index, as interested in a task.
type Interaction struct {
	User   int
	TaskID string
}

// FeatureSet is a set of categorical feature labels.
type FeatureSet map[string]struct{}

// NewFeatureSet builds a set from labels.
func NewFeatureSet(labels ...string) FeatureSet {
	s := make(FeatureSet, len(labels))
	for _, l := range labels {
		s[l] = struct{}{}
	}
	return s
}

// Intersect returns |s ∩ o|.
func (s FeatureSet) Intersect(o FeatureSet) int {
	small, large := s, o
	if len(large) < len(small) {
		small, large = large, small
	}
	n := 0
	for k := range small {
		if _, ok := large[k]; ok {
			n++
		}
	}
	return n
}

// Features holds the five persona feature sets compared by collaborative
// filtering.
type Features struct {
	Targets    FeatureSet
	Regions    FeatureSet
	Categories FeatureSet
	Topics     FeatureSet
	Scenarios  FeatureSet
}

// Sets returns the feature sets in a fixed order.
func (f *Features) Sets() []FeatureSet {
	return []FeatureSet{f.Targets, f.Regions, f.Categories, f.Topics, f.Scenarios}
}

// NewFeatures extracts the feature sets of a persona.
func NewFeatures(p *models.UserPersona) Features {
	tags := &p.Tags
	f := Features{
		Targets:    NewFeatureSet(p.PreferredTargetIDs()...),
		Regions:    make(FeatureSet, len(tags.PreferredRegions)),
		Categories: make(FeatureSet, len(tags.PreferredCategory)),
		Topics:     make(FeatureSet, len(tags.PreferredTopic)),
		Scenarios:  make(FeatureSet, len(tags.PreferredScenarios)),
	}
	for _, r := range tags.PreferredRegions {
		f.Regions[strconv.Itoa(r.ClusterID)] = struct{}{}
	}
	for _, c := range tags.PreferredCategory {
		f.Categories[c.TypeCategoryKey.Label()] = struct{}{}
	}
	for _, t := range tags.PreferredTopic {
		f.Topics[t.TopicGroupKey.Label()] = struct{}{}
	}
	for _, s := range tags.PreferredScenarios {
		f.Scenarios[s.ScenarioKey.Label()] = struct{}{}
	}
	return f
}

// CollaborativeFilter scores tasks for a requester from the interactions
// of similar requesters.
type CollaborativeFilter interface {
	// Name returns the filter identifier.
	Name() string

	// Train computes neighbourhoods. users is indexed like the persona list;
	// interactions reference those indices.
	Train(ctx context.Context, users []Features, interactions []Interaction) error

	// Predict returns scores in [0, 1] for tasks the user has not
	// interacted with. Tasks without signal are absent.
	Predict(ctx context.Context, user int) (map[string]float64, error)
}

// Reranker selects the final list from hybrid-ranked results.
type Reranker interface {
	// Name returns the reranker identifier.
	Name() string

	// Rerank returns at most k results. items are sorted by descending
	// Score.
	Rerank(ctx context.Context, items []Result, k int) []Result
}
