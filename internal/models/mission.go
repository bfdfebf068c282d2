// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package models

import (
	"fmt"

	"github.com/tomtom215/scoutpersona/internal/validation"
)

// Mission is one historical reconnaissance request.
//
// Resolution is an interval string such as "0.5-1.0". ReqCycleTime and
// ReqTimes are zero when absent; HasCycleTime and HasReqTimes tell absence
// apart from an explicit zero.
type Mission struct {
	ReqID           string  `json:"req_id"`
	ReqUnit         string  `json:"req_unit"`
	ReqGroup        string  `json:"req_group"`
	ReqStartTime    string  `json:"req_start_time"`
	ReqEndTime      string  `json:"req_end_time"`
	TaskType        string  `json:"task_type"`
	TargetID        string  `json:"target_id" validate:"required"`
	CountryName     string  `json:"country_name"`
	TargetPriority  float64 `json:"target_priority"`
	IsEmcon         string  `json:"is_emcon"`
	ScoutType       string  `json:"scout_type"`
	TaskScene       string  `json:"task_scene"`
	Resolution      string  `json:"resolution"`
	ReqCycle        string  `json:"req_cycle"`
	ReqCycleTime    int     `json:"req_cycle_time"`
	ReqTimes        int     `json:"req_times"`
	MissionPlanType string  `json:"mission_plan_type"`
	TopicID         string  `json:"topic_id"`
	IsPrecise       bool    `json:"is_precise"`

	HasPriority  bool `json:"-"`
	HasCycleTime bool `json:"-"`
	HasReqTimes  bool `json:"-"`
}

// User returns the requester identity of the mission.
func (m *Mission) User() UserKey {
	return UserKey{ReqUnit: m.ReqUnit, ReqGroup: m.ReqGroup}
}

// Scenario returns the scout scenario 4-tuple of the mission.
func (m *Mission) Scenario() ScenarioKey {
	return ScenarioKey{
		TaskType:  m.TaskType,
		ScoutType: m.ScoutType,
		TaskScene: m.TaskScene,
		IsPrecise: m.IsPrecise,
	}
}

// MissionFromRecord normalises a raw record. Both snake_case and camelCase
// keys are accepted.
func MissionFromRecord(r Record) (Mission, error) {
	m := Mission{
		ReqID:           r.String("req_id", "reqId"),
		ReqUnit:         r.String("req_unit", "reqUnit"),
		ReqGroup:        r.String("req_group", "reqGroup"),
		ReqStartTime:    r.String("req_start_time", "reqStartTime"),
		ReqEndTime:      r.String("req_end_time", "reqEndTime"),
		TaskType:        r.String("task_type", "taskType"),
		TargetID:        r.String("target_id", "targetId"),
		CountryName:     r.String("country_name", "countryName"),
		IsEmcon:         r.String("is_emcon", "isEmcon"),
		ScoutType:       r.String("scout_type", "scoutType"),
		TaskScene:       r.String("task_scene", "taskScene"),
		Resolution:      r.String("resolution"),
		ReqCycle:        r.String("req_cycle", "reqCycle"),
		MissionPlanType: r.String("mission_plan_type", "missionPlanType"),
		TopicID:         r.String("topic_id", "topicId"),
		IsPrecise:       r.Bool("is_precise", "isPrecise"),
	}
	m.TargetPriority, m.HasPriority = r.Float("target_priority", "targetPriority")
	m.ReqCycleTime, m.HasCycleTime = r.Int("req_cycle_time", "reqCycleTime", "reqCycleTimes")
	m.ReqTimes, m.HasReqTimes = r.Int("req_times", "reqTimes")

	if err := validation.ValidateStruct(&m); err != nil {
		return Mission{}, fmt.Errorf("%w: mission %q: %v", ErrInvalidRecord, m.ReqID, err)
	}
	return m, nil
}

// MissionsFromRecords normalises a batch, returning the first failure with
// its index.
func MissionsFromRecords(records []Record) ([]Mission, error) {
	out := make([]Mission, 0, len(records))
	for i, r := range records {
		m, err := MissionFromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("missions[%d]: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}
