// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package tagging

import (
	"strconv"
	"strings"

	"github.com/tomtom215/scoutpersona/internal/frequency"
)

// Interval is a closed numeric range such as a resolution requirement.
type Interval struct {
	Min, Max float64
}

// String renders the interval as "min-max".
func (iv Interval) String() string {
	return strconv.FormatFloat(iv.Min, 'f', -1, 64) + "-" + strconv.FormatFloat(iv.Max, 'f', -1, 64)
}

var intervalTrim = strings.NewReplacer("(", "", ")", "", "（", "", "）", "", " ", "", "~", "-", "～", "-")

// ParseInterval parses "min-max" (optionally parenthesised) or a single
// value. Bounds are swapped when given in reverse.
func ParseInterval(s string) (Interval, bool) {
	s = intervalTrim.Replace(frequency.Fold(s))
	if s == "" {
		return Interval{}, false
	}
	parts := strings.Split(s, "-")
	switch len(parts) {
	case 1:
		v, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Interval{}, false
		}
		return Interval{Min: v, Max: v}, true
	case 2:
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return Interval{}, false
		}
		if lo > hi {
			lo, hi = hi, lo
		}
		return Interval{Min: lo, Max: hi}, true
	default:
		return Interval{}, false
	}
}

// MergeIntervals returns the smallest interval covering every parseable
// input, and false when none parse.
//
//	MergeIntervals([]string{"0.5-0.7", "0.6-0.9"}) // 0.5-0.9
func MergeIntervals(labels []string) (Interval, bool) {
	var merged Interval
	found := false
	for _, l := range labels {
		iv, ok := ParseInterval(l)
		if !ok {
			continue
		}
		if !found {
			merged, found = iv, true
			continue
		}
		if iv.Min < merged.Min {
			merged.Min = iv.Min
		}
		if iv.Max > merged.Max {
			merged.Max = iv.Max
		}
	}
	return merged, found
}
