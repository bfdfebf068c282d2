// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package models

import (
	"strconv"
	"strings"
)

// UserKey identifies a requester.
type UserKey struct {
	ReqUnit  string `json:"req_unit"`
	ReqGroup string `json:"req_group"`
}

// String renders the key as "unit/group".
func (k UserKey) String() string {
	return k.ReqUnit + "/" + k.ReqGroup
}

// Less orders user keys by unit, then group.
func (k UserKey) Less(o UserKey) bool {
	if k.ReqUnit != o.ReqUnit {
		return k.ReqUnit < o.ReqUnit
	}
	return k.ReqGroup < o.ReqGroup
}

// TypeCategoryKey is the target type x category composite label.
type TypeCategoryKey struct {
	TargetType     string `json:"target_type"`
	TargetCategory string `json:"target_category"`
}

// Label is the canonical string used for tie-breaking.
func (k TypeCategoryKey) Label() string {
	return k.TargetType + "\x00" + k.TargetCategory
}

// TopicGroupKey is the topic x group composite label.
type TopicGroupKey struct {
	TopicID   string `json:"topic_id"`
	GroupName string `json:"group_name"`
}

// Label is the canonical string used for tie-breaking.
func (k TopicGroupKey) Label() string {
	return k.TopicID + "\x00" + k.GroupName
}

// ScenarioKey is the task/scout/scene/precision 4-tuple.
type ScenarioKey struct {
	TaskType  string `json:"task_type"`
	ScoutType string `json:"scout_type"`
	TaskScene string `json:"task_scene"`
	IsPrecise bool   `json:"is_precise"`
}

// Label is the canonical string used for tie-breaking. false sorts before
// true, matching the natural tuple order.
func (k ScenarioKey) Label() string {
	return strings.Join([]string{k.TaskType, k.ScoutType, k.TaskScene, strconv.FormatBool(k.IsPrecise)}, "\x00")
}
