// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package recommend

import (
	"fmt"
	"math"

	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/tagging"
)

// Sub-score levels shared by every content dimension.
const (
	ScoreNoPreference = 0.5
	ScoreNoProfile    = 0.3
	ScoreMiss         = 0.1
	decayStep         = 0.2
	decayFloor        = 0.2
)

// ScoreDetails is the content score breakdown of one persona/task pair.
type ScoreDetails struct {
	Total    float64 `json:"total_score"`
	Target   float64 `json:"target_match_score"`
	Region   float64 `json:"region_match_score"`
	Category float64 `json:"category_match_score"`
	Topic    float64 `json:"topic_match_score"`
	Scenario float64 `json:"scenario_score"`
}

// Scorer computes content scores.
type Scorer struct {
	weights Weights
}

// NewScorer normalises w and returns a scorer.
func NewScorer(w Weights) (*Scorer, error) {
	if w.Sum() <= 0 {
		return nil, fmt.Errorf("%w: content weights must not all be zero", models.ErrInvalidConfig)
	}
	return &Scorer{weights: w.Normalize()}, nil
}

// Weights returns the normalised weights.
func (s *Scorer) Weights() Weights {
	return s.weights
}

// Score compares a persona with the profile of a task target. profile may
// be nil, in which case every dimension the persona has a preference for
// scores ScoreNoProfile.
func (s *Scorer) Score(p *models.UserPersona, task *models.VirtualTask, profile *models.TargetProfile) ScoreDetails {
	var tags models.ProfileTags
	if profile != nil {
		tags = profile.Tags
	}
	d := ScoreDetails{
		Target:   round4(matchTarget(p.Tags.PreferredTargets, task.TargetID)),
		Region:   round4(matchRegion(p.Tags.PreferredRegions, tags.SpatialDensity)),
		Category: round4(matchCategory(p.Tags.PreferredCategory, tags.TargetCategory)),
		Topic:    round4(matchTopic(p.Tags.PreferredTopic, tags.TopicGroup)),
		Scenario: round4(matchScenario(p.Tags.PreferredScenarios, tags.ScoutScenario)),
	}
	w := s.weights
	d.Total = round4(d.Target*w.Target + d.Region*w.Region + d.Category*w.Category +
		d.Topic*w.Topic + d.Scenario*w.Scenario)
	return d
}

func round4(x float64) float64 {
	return tagging.Round(x, 4)
}

// decay is the score of a match at rank i.
func decay(i int) float64 {
	return math.Max(1-decayStep*float64(i), decayFloor)
}

func matchTarget(preferred []models.TargetShare, targetID string) float64 {
	if len(preferred) == 0 {
		return ScoreNoPreference
	}
	for i, t := range preferred {
		if t.TargetID == targetID {
			return decay(i)
		}
	}
	return ScoreMiss
}

// matchRegion compares preferred clusters with the single cluster id of the
// target.
func matchRegion(preferred []models.RegionShare, density []models.RegionShare) float64 {
	if len(preferred) == 0 {
		return ScoreNoPreference
	}
	if len(density) == 0 {
		return ScoreNoProfile
	}
	cluster := density[0].ClusterID
	for i, r := range preferred {
		if r.ClusterID == cluster {
			return decay(i)
		}
	}
	return ScoreMiss
}

// matchCategory scores the best ranked preferred (type, category) present
// on the target.
func matchCategory(preferred []models.CategoryShare, target []models.CategoryShare) float64 {
	if len(preferred) == 0 {
		return ScoreNoPreference
	}
	if len(target) == 0 {
		return ScoreNoProfile
	}
	keys := make(map[models.TypeCategoryKey]struct{}, len(target))
	for _, c := range target {
		keys[c.TypeCategoryKey] = struct{}{}
	}
	best := 0.0
	for i, c := range preferred {
		if _, ok := keys[c.TypeCategoryKey]; ok {
			best = math.Max(best, decay(i))
		}
	}
	return math.Max(best, ScoreMiss)
}

// matchTopic is the share of preferred topic groups present on the target.
func matchTopic(preferred []models.TopicShare, target []models.TopicShare) float64 {
	if len(preferred) == 0 {
		return ScoreNoPreference
	}
	if len(target) == 0 {
		return ScoreNoProfile
	}
	keys := make(map[models.TopicGroupKey]struct{}, len(target))
	for _, t := range target {
		keys[t.TopicGroupKey] = struct{}{}
	}
	matched := 0
	for _, t := range preferred {
		if _, ok := keys[t.TopicGroupKey]; ok {
			matched++
		}
	}
	if matched == 0 {
		return ScoreMiss
	}
	return math.Max(float64(matched)/float64(len(preferred)), ScoreMiss)
}

// matchScenario is the share of preferred scenarios present on the target.
// Scenario keys already carry empty strings for missing fields and a
// boolean precision flag.
func matchScenario(preferred []models.ScenarioShare, target []models.ScenarioShare) float64 {
	if len(preferred) == 0 {
		return ScoreNoPreference
	}
	if len(target) == 0 {
		return ScoreNoProfile
	}
	keys := make(map[models.ScenarioKey]struct{}, len(target))
	for _, s := range target {
		keys[s.ScenarioKey] = struct{}{}
	}
	matched := 0
	for _, s := range preferred {
		if _, ok := keys[s.ScenarioKey]; ok {
			matched++
		}
	}
	if matched == 0 {
		return ScoreMiss
	}
	return math.Max(round4(float64(matched)/float64(len(preferred))), ScoreMiss)
}

// RecommendationCount scales base by the historical request count of a
// requester.
func RecommendationCount(totalRequests, base int) (int, error) {
	if base <= 0 {
		return 0, fmt.Errorf("%w: base_top_n must be positive, got %d", models.ErrInvalidConfig, base)
	}
	switch {
	case totalRequests <= 0:
		return max(3, base/2), nil
	case totalRequests < 5:
		return max(5, int(float64(base)*0.7)), nil
	case totalRequests < 10:
		return base, nil
	case totalRequests < 20:
		return int(math.RoundToEven(float64(base) * 1.5)), nil
	default:
		return base * 2, nil
	}
}
