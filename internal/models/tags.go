// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package models

// Share is the count/percentage pair carried by every ranked tag entry.
// Percentage is count/total*100 rounded to two decimals, where total is the
// denominator of the dimension.
type Share struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// TargetShare is a preferred_targets entry.
type TargetShare struct {
	TargetID string `json:"target_id"`
	Share
}

// RegionShare is a cluster id entry. ClusterID -1 is noise.
type RegionShare struct {
	ClusterID int `json:"cluster_id"`
	Share
}

// CategoryShare is a target type x category entry.
type CategoryShare struct {
	TypeCategoryKey
	Share
}

// TopicShare is a topic x group entry.
type TopicShare struct {
	TopicGroupKey
	Share
}

// ScenarioShare is a scout scenario entry.
type ScenarioShare struct {
	ScenarioKey
	Share
}

// CycleShare is a scout_cycle_label entry. ReqCycle and ReqCycleTimes hold
// the structured parts of CycleLabel; both are empty for the sentinel.
type CycleShare struct {
	CycleLabel    string `json:"cycle_label"`
	ReqCycle      string `json:"req_cycle,omitempty"`
	ReqCycleTimes int    `json:"req_cycle_times,omitempty"`
	Share
}

// FrequencyShare is a scout_frequency_label entry. ReqTimes is zero for the
// sentinel.
type FrequencyShare struct {
	FrequencyLabel string `json:"scout_frequency_label"`
	ReqTimes       int    `json:"req_times,omitempty"`
	Share
}

// PriorityShare is a target_priority_label entry.
type PriorityShare struct {
	Priority string `json:"target_priority_label"`
	Share
}

// ResolutionShare is a resolution_label entry ("min-max").
type ResolutionShare struct {
	Resolution string `json:"resolution"`
	Share
}

// PlanTypeShare is a mission_plan_type_label entry.
type PlanTypeShare struct {
	MissionPlanType string `json:"mission_plan_type"`
	Share
}

// RequestFrequency is the plain mission count of a requester.
type RequestFrequency struct {
	TotalCount int `json:"total_count"`
}
