// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package models

import (
	"strings"
	"time"
)

// Output timestamp layouts.
const (
	GenerationTimeLayout = "2006-01-02T15:04:05.000000"
	DateTimeLayout       = "2006-01-02 15:04:05"
)

// TimeLayouts are the accepted mission timestamp layouts, tried in order.
var TimeLayouts = []string{
	DateTimeLayout,
	"2006-01-02",
	"2006/01/02 15:04:05",
	"2006/01/02",
}

// ParseTime parses s with TimeLayouts in local time.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range TimeLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// TimeWindow is an inclusive filter on Mission.ReqStartTime. A zero bound
// is open.
type TimeWindow struct {
	Start    time.Time
	End      time.Time
	RawStart string
	RawEnd   string
}

// NewTimeWindow parses the raw bounds. Unparseable bounds are dropped and
// returned in invalid so the caller can warn about them.
func NewTimeWindow(start, end string) (w TimeWindow, invalid []string) {
	if start = strings.TrimSpace(start); start != "" {
		if t, ok := ParseTime(start); ok {
			w.Start, w.RawStart = t, start
		} else {
			invalid = append(invalid, start)
		}
	}
	if end = strings.TrimSpace(end); end != "" {
		if t, ok := ParseTime(end); ok {
			w.End, w.RawEnd = t, end
		} else {
			invalid = append(invalid, end)
		}
	}
	return w, invalid
}

// Active reports whether any bound was requested.
func (w TimeWindow) Active() bool {
	return !w.Start.IsZero() || !w.End.IsZero()
}

// Range returns the bounds as recorded on generated documents.
func (w TimeWindow) Range() TimeRange {
	return TimeRange{StartTime: w.RawStart, EndTime: w.RawEnd}
}

// Filter returns the missions whose start time falls inside the window.
// With no bound set every mission is kept; otherwise missions with an
// unparseable start time are dropped.
func (w TimeWindow) Filter(missions []Mission) []Mission {
	if !w.Active() {
		return missions
	}
	out := make([]Mission, 0, len(missions))
	for _, m := range missions {
		t, ok := ParseTime(m.ReqStartTime)
		if !ok {
			continue
		}
		if !w.Start.IsZero() && t.Before(w.Start) {
			continue
		}
		if !w.End.IsZero() && t.After(w.End) {
			continue
		}
		out = append(out, m)
	}
	return out
}
