// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package models

import (
	"math"
	"strings"

	"github.com/spf13/cast"
)

// Record is one decoded JSON object before normalisation.
type Record map[string]any

// lookup returns the first non-nil value stored under any of keys.
func (r Record) lookup(keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := r[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

// String returns the value as a trimmed string. Whole floats print without
// a fraction so a numeric id 101 and "101" compare equal.
func (r Record) String(keys ...string) string {
	v, ok := r.lookup(keys...)
	if !ok {
		return ""
	}
	if f, isFloat := v.(float64); isFloat && f == math.Trunc(f) && !math.IsInf(f, 0) {
		return cast.ToString(int64(f))
	}
	return strings.TrimSpace(cast.ToString(v))
}

// Int returns the value as an int and whether it was present and parseable.
func (r Record) Int(keys ...string) (int, bool) {
	v, ok := r.lookup(keys...)
	if !ok {
		return 0, false
	}
	if s, isStr := v.(string); isStr {
		s = strings.TrimSpace(s)
		if s == "" {
			return 0, false
		}
		if f, err := cast.ToFloat64E(s); err == nil && f == math.Trunc(f) {
			return int(f), true
		}
		return 0, false
	}
	n, err := cast.ToIntE(v)
	if err != nil {
		return 0, false
	}
	return n, true
}

// Float returns the value as a float64 and whether it was parseable.
func (r Record) Float(keys ...string) (float64, bool) {
	v, ok := r.lookup(keys...)
	if !ok {
		return 0, false
	}
	if s, isStr := v.(string); isStr {
		v = strings.TrimSpace(s)
	}
	f, err := cast.ToFloat64E(v)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// Bool returns the value as a bool; "1", "true", "是" count as true.
func (r Record) Bool(keys ...string) bool {
	v, ok := r.lookup(keys...)
	if !ok {
		return false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "是" {
		return true
	}
	return cast.ToBool(v)
}

// Records returns a nested list of objects.
func (r Record) Records(keys ...string) []Record {
	v, ok := r.lookup(keys...)
	if !ok {
		return nil
	}
	items := cast.ToSlice(v)
	out := make([]Record, 0, len(items))
	for _, item := range items {
		m, err := cast.ToStringMapE(item)
		if err != nil {
			continue
		}
		out = append(out, Record(m))
	}
	return out
}
