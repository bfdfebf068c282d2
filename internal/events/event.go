// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package events

import (
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Counts is the size of every pipeline output.
type Counts struct {
	Targets         int `json:"targets"`
	Missions        int `json:"missions"`
	Personas        int `json:"personas"`
	Profiles        int `json:"profiles"`
	Recommendations int `json:"recommendations"`
	Demands         int `json:"demands"`
}

// PipelineCompleted announces a successful pipeline run.
type PipelineCompleted struct {
	EventID     string    `json:"event_id"`
	RunID       string    `json:"run_id"`
	Version     string    `json:"version"`
	Counts      Counts    `json:"counts"`
	DurationMS  int64     `json:"duration_ms"`
	CompletedAt time.Time `json:"completed_at"`
}

// NewPipelineCompleted creates an event with a fresh id.
func NewPipelineCompleted(runID, version string, counts Counts, duration time.Duration, completedAt time.Time) *PipelineCompleted {
	return &PipelineCompleted{
		EventID:     uuid.NewString(),
		RunID:       runID,
		Version:     version,
		Counts:      counts,
		DurationMS:  duration.Milliseconds(),
		CompletedAt: completedAt.UTC(),
	}
}

// Marshal serialises the event payload.
func (e *PipelineCompleted) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalPipelineCompleted decodes an event payload.
func UnmarshalPipelineCompleted(data []byte) (*PipelineCompleted, error) {
	var e PipelineCompleted
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
