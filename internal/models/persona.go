// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package models

// TimeRange records the mission time window a document was built from.
type TimeRange struct {
	StartTime string `json:"start_time,omitempty"`
	EndTime   string `json:"end_time,omitempty"`
}

// UserPersona is the ranked preference profile of one requester.
type UserPersona struct {
	UserID         UserKey     `json:"user_id"`
	Tags           PersonaTags `json:"persona_tags"`
	GenerationTime string      `json:"generation_time"`
	DataTimeRange  TimeRange   `json:"data_time_range"`
}

// PersonaTags holds the persona dimensions.
type PersonaTags struct {
	RequestFrequency   RequestFrequency `json:"request_frequency"`
	PreferredTargets   []TargetShare    `json:"preferred_targets"`
	PreferredRegions   []RegionShare    `json:"preferred_regions"`
	PreferredCategory  []CategoryShare  `json:"preferred_target_category"`
	PreferredTopic     []TopicShare     `json:"preferred_topic_group"`
	PreferredScenarios []ScenarioShare  `json:"preferred_scout_scenario"`
}

// PreferredTargetIDs returns the preferred target ids in rank order.
func (p *UserPersona) PreferredTargetIDs() []string {
	ids := make([]string, len(p.Tags.PreferredTargets))
	for i, t := range p.Tags.PreferredTargets {
		ids[i] = t.TargetID
	}
	return ids
}
