// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package models

import (
	"fmt"

	"github.com/tomtom215/scoutpersona/internal/validation"
)

// VirtualTask is a candidate task that can be recommended to a requester.
type VirtualTask struct {
	GenerateTaskID string      `json:"generateTaskId" validate:"required"`
	TargetID       string      `json:"targetId"`
	ReqStartTime   string      `json:"reqStartTime"`
	ReqEndTime     string      `json:"reqEndTime"`
	GridCodeList   string      `json:"gridCodeList"`
	ScoutNodes     []ScoutNode `json:"scoutNodeInputDto"`
}

// ScoutNode is one sensor tasking requirement of a virtual task.
type ScoutNode struct {
	Satellite        string `json:"satellite"`
	GuideSatellite   string `json:"guideSatellite"`
	Resolution       string `json:"resolution"`
	WorkMode         string `json:"workMode"`
	SensorID         string `json:"sensorId"`
	SensorMode       string `json:"sensorMode"`
	ScoutStartTime   string `json:"scoutStartTime"`
	ScoutEndTime     string `json:"scoutEndTime"`
	ReqCycle         string `json:"reqCycle"`
	ReqCycleTimes    *int   `json:"reqCycleTimes"`
	ReqTimes         string `json:"reqTimes"`
	ReqIntervalMin   string `json:"reqIntervalMin"`
	ReqIntervalMax   string `json:"reqIntervalMax"`
	TargetPreprocess string `json:"targetPreprocess"`
	IsOnboard        string `json:"isOnboard"`
	ReceivingAnt     string `json:"receivingAnt"`
	ReceivingStation string `json:"receivingStation"`
}

// VirtualTaskFromRecord normalises a raw task record.
func VirtualTaskFromRecord(r Record) (VirtualTask, error) {
	t := VirtualTask{
		GenerateTaskID: r.String("generateTaskId", "generate_task_id"),
		TargetID:       r.String("targetId", "target_id"),
		ReqStartTime:   r.String("reqStartTime", "req_start_time"),
		ReqEndTime:     r.String("reqEndTime", "req_end_time"),
		GridCodeList:   r.String("gridCodeList", "grid_code_list"),
	}
	for _, n := range r.Records("scoutNodeInputDto", "scout_node_input_dto") {
		node := ScoutNode{
			Satellite:        n.String("satellite"),
			GuideSatellite:   n.String("guideSatellite", "guide_satellite"),
			Resolution:       n.String("resolution"),
			WorkMode:         n.String("workMode", "work_mode"),
			SensorID:         n.String("sensorId", "sensor_id"),
			SensorMode:       n.String("sensorMode", "sensor_mode"),
			ScoutStartTime:   n.String("scoutStartTime", "scout_start_time"),
			ScoutEndTime:     n.String("scoutEndTime", "scout_end_time"),
			ReqCycle:         n.String("reqCycle", "req_cycle"),
			ReqTimes:         n.String("reqTimes", "req_times"),
			ReqIntervalMin:   n.String("reqIntervalMin", "req_interval_min"),
			ReqIntervalMax:   n.String("reqIntervalMax", "req_interval_max"),
			TargetPreprocess: n.String("targetPreprocess", "target_preprocess"),
			IsOnboard:        n.String("isOnboard", "is_onboard"),
			ReceivingAnt:     n.String("receivingAnt", "receiving_ant"),
			ReceivingStation: n.String("receivingStation", "receiving_station"),
		}
		if v, ok := n.Int("reqCycleTimes", "req_cycle_times"); ok {
			node.ReqCycleTimes = &v
		}
		t.ScoutNodes = append(t.ScoutNodes, node)
	}

	if err := validation.ValidateStruct(&t); err != nil {
		return VirtualTask{}, fmt.Errorf("%w: task for target %q: %v", ErrInvalidRecord, t.TargetID, err)
	}
	return t, nil
}

// VirtualTasksFromRecords normalises a batch of tasks.
func VirtualTasksFromRecords(records []Record) ([]VirtualTask, error) {
	out := make([]VirtualTask, 0, len(records))
	for i, r := range records {
		t, err := VirtualTaskFromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("tasks[%d]: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}
