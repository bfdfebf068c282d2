// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package tagging

import (
	"strings"

	"github.com/tomtom215/scoutpersona/internal/frequency"
)

// Sentinel replaces a dimension whose labels were all invalid.
const Sentinel = "NAN"

// IsInvalid reports whether a label carries no information: empty, a NaN or
// null spelling, an "unknown" placeholder, or a frequency sentinel.
func IsInvalid(label string) bool {
	s := strings.TrimSpace(label)
	switch strings.ToLower(s) {
	case "", "nan", "none", "null", "nil":
		return true
	}
	if strings.HasPrefix(s, "未知") {
		return true
	}
	return s == frequency.NoCycle || s == frequency.Unspecified
}

// RankValid ranks string labels after dropping invalid ones. Percentages
// use the full total so coverage of valid labels stays visible. A counter
// with only invalid labels yields a single Sentinel entry holding the whole
// total; an empty counter yields nil.
func RankValid(c *Counter[string], topN int) []Ranked[string] {
	return RankValidFunc(c, topN, IsInvalid)
}

// RankValidFunc is RankValid with a caller supplied invalid predicate.
func RankValidFunc(c *Counter[string], topN int, invalid func(string) bool) []Ranked[string] {
	if c.Len() == 0 {
		return nil
	}
	valid := NewCounter[string]()
	for k, n := range c.counts {
		if !invalid(k) {
			valid.AddN(k, n)
		}
	}
	if valid.Len() == 0 {
		return []Ranked[string]{{Key: Sentinel, Count: c.Total(), Percentage: 100}}
	}
	return Rank(valid, Identity, topN, c.Total())
}

// RankValidKeys is RankValidFunc for composite keys. Keys for which invalid
// reports true are dropped before ranking against total. When no valid key
// remains the result is a single sentinel entry counting sentinelCount at
// 100%; an empty counter yields nil.
func RankValidKeys[K comparable](c *Counter[K], label func(K) string, topN, total int, invalid func(K) bool, sentinel K, sentinelCount int) []Ranked[K] {
	if c.Len() == 0 {
		return nil
	}
	valid := NewCounter[K]()
	for k, n := range c.counts {
		if !invalid(k) {
			valid.AddN(k, n)
		}
	}
	if valid.Len() == 0 {
		return []Ranked[K]{{Key: sentinel, Count: sentinelCount, Percentage: 100}}
	}
	return Rank(valid, label, topN, total)
}

// AllInvalid reports whether every label is invalid.
func AllInvalid(labels ...string) bool {
	for _, l := range labels {
		if !IsInvalid(l) {
			return false
		}
	}
	return true
}
