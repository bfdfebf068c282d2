// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package models

// TargetProfile is the ranked characteristic profile of one target.
type TargetProfile struct {
	TargetID       string      `json:"target_id"`
	Tags           ProfileTags `json:"profile_tags"`
	GenerationTime string      `json:"generation_time"`
	DataTimeRange  TimeRange   `json:"data_time_range"`
}

// ProfileTags holds the target profile dimensions. SpatialDensity has at
// most one entry: the cluster id of the target.
type ProfileTags struct {
	ScoutCycle      []CycleShare      `json:"scout_cycle_label"`
	ScoutFrequency  []FrequencyShare  `json:"scout_frequency_label"`
	ScoutScenario   []ScenarioShare   `json:"preferred_scout_scenario_label"`
	SpatialDensity  []RegionShare     `json:"spatial_density_label"`
	TargetType      []CategoryShare   `json:"target_type_label"`
	TargetCategory  []CategoryShare   `json:"target_category"`
	TopicGroup      []TopicShare      `json:"topic_group"`
	TargetPriority  []PriorityShare   `json:"target_priority_label"`
	Resolution      []ResolutionShare `json:"resolution_label"`
	MissionPlanType []PlanTypeShare   `json:"mission_plan_type_label"`
}

// ClusterID returns the spatial cluster of the profile and whether one is
// recorded.
func (p *TargetProfile) ClusterID() (int, bool) {
	if len(p.Tags.SpatialDensity) == 0 {
		return -1, false
	}
	return p.Tags.SpatialDensity[0].ClusterID, true
}

// IndexProfiles maps target id to profile.
func IndexProfiles(profiles []TargetProfile) map[string]*TargetProfile {
	idx := make(map[string]*TargetProfile, len(profiles))
	for i := range profiles {
		idx[profiles[i].TargetID] = &profiles[i]
	}
	return idx
}
