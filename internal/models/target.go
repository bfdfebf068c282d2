// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package models

import (
	"fmt"
	"math"
	"strings"

	"github.com/spf13/cast"

	"github.com/tomtom215/scoutpersona/internal/validation"
)

// Target is a physical reconnaissance target.
type Target struct {
	TargetID       string            `json:"target_id" validate:"required"`
	TargetName     string            `json:"target_name"`
	TargetType     string            `json:"target_type"`
	TargetCategory string            `json:"target_category"`
	TargetPriority float64           `json:"target_priority"`
	TargetAreaType string            `json:"target_area_type"`
	Groups         []Group           `json:"group_list"`
	Trajectory     []TrajectoryPoint `json:"trajectory_list"`
}

// Group is a topic group membership of a target.
type Group struct {
	GroupName string `json:"group_name"`
	Source    string `json:"source"`
	Status    string `json:"status"`
}

// TrajectoryPoint is one timestamped position. Fields stay as received; Lon
// and Lat are parsed on demand because upstream feeds send them as strings.
type TrajectoryPoint struct {
	Lon          string `json:"lon"`
	Lat          string `json:"lat"`
	Alt          string `json:"alt"`
	PointTime    string `json:"point_time"`
	Speed        string `json:"speed"`
	Heading      string `json:"heading"`
	Seq          string `json:"seq"`
	ElectSilence string `json:"elect_silence"`
}

// LatLon parses the point, reporting false for missing, non-numeric or
// out-of-range values.
func (p TrajectoryPoint) LatLon() (lat, lon float64, ok bool) {
	lon, err := cast.ToFloat64E(strings.TrimSpace(p.Lon))
	if err != nil || strings.TrimSpace(p.Lon) == "" {
		return 0, 0, false
	}
	lat, err = cast.ToFloat64E(strings.TrimSpace(p.Lat))
	if err != nil || strings.TrimSpace(p.Lat) == "" {
		return 0, 0, false
	}
	if math.IsNaN(lat) || math.IsNaN(lon) || math.Abs(lat) > 90 || math.Abs(lon) > 180 {
		return 0, 0, false
	}
	return lat, lon, true
}

// Coordinate returns the first valid trajectory position of the target.
func (t *Target) Coordinate() (lat, lon float64, ok bool) {
	for _, p := range t.Trajectory {
		if lat, lon, ok = p.LatLon(); ok {
			return lat, lon, true
		}
	}
	return 0, 0, false
}

// TypeCategory returns the composite type/category key of the target.
func (t *Target) TypeCategory() TypeCategoryKey {
	return TypeCategoryKey{TargetType: t.TargetType, TargetCategory: t.TargetCategory}
}

// GroupNames returns the non-empty group names in list order.
func (t *Target) GroupNames() []string {
	names := make([]string, 0, len(t.Groups))
	for _, g := range t.Groups {
		if g.GroupName != "" {
			names = append(names, g.GroupName)
		}
	}
	return names
}

// TargetFromRecord normalises a raw target record.
func TargetFromRecord(r Record) (Target, error) {
	t := Target{
		TargetID:       r.String("target_id", "targetId"),
		TargetName:     r.String("target_name", "targetName"),
		TargetType:     r.String("target_type", "targetType"),
		TargetCategory: r.String("target_category", "targetCategory"),
		TargetAreaType: r.String("target_area_type", "targetAreaType"),
	}
	t.TargetPriority, _ = r.Float("target_priority", "targetPriority")

	for _, g := range r.Records("group_list", "groupList") {
		t.Groups = append(t.Groups, Group{
			GroupName: g.String("group_name", "groupName"),
			Source:    g.String("source"),
			Status:    g.String("status"),
		})
	}
	for _, p := range r.Records("trajectory_list", "trajectoryList") {
		t.Trajectory = append(t.Trajectory, TrajectoryPoint{
			Lon:          p.String("lon"),
			Lat:          p.String("lat"),
			Alt:          p.String("alt"),
			PointTime:    p.String("point_time", "pointTime"),
			Speed:        p.String("speed"),
			Heading:      p.String("heading"),
			Seq:          p.String("seq"),
			ElectSilence: p.String("elect_silence", "electSilence"),
		})
	}

	if err := validation.ValidateStruct(&t); err != nil {
		return Target{}, fmt.Errorf("%w: target %q: %v", ErrInvalidRecord, t.TargetName, err)
	}
	return t, nil
}

// TargetsFromRecords normalises a batch of targets.
func TargetsFromRecords(records []Record) ([]Target, error) {
	out := make([]Target, 0, len(records))
	for i, r := range records {
		t, err := TargetFromRecord(r)
		if err != nil {
			return nil, fmt.Errorf("targets[%d]: %w", i, err)
		}
		out = append(out, t)
	}
	return out, nil
}

// IndexTargets maps target id to target. Later duplicates win.
func IndexTargets(targets []Target) map[string]*Target {
	idx := make(map[string]*Target, len(targets))
	for i := range targets {
		idx[targets[i].TargetID] = &targets[i]
	}
	return idx
}
