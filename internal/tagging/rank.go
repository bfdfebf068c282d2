// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package tagging holds the counting and Top-N ranking helpers shared by the
// persona and target profile builders.
//
// Every ranked list is ordered by descending count, ties broken by the
// ascending label string, and carries percentages of a stated denominator
// rounded to two decimals.
package tagging

import (
	"math"
	"sort"
)

// Counter counts occurrences of comparable labels.
type Counter[K comparable] struct {
	counts map[K]int
	total  int
}

// NewCounter creates an empty counter.
func NewCounter[K comparable]() *Counter[K] {
	return &Counter[K]{counts: make(map[K]int)}
}

// Add counts k once.
func (c *Counter[K]) Add(k K) {
	c.AddN(k, 1)
}

// AddN counts k n times.
func (c *Counter[K]) AddN(k K, n int) {
	c.counts[k] += n
	c.total += n
}

// Get returns the count of k.
func (c *Counter[K]) Get(k K) int {
	return c.counts[k]
}

// Total is the sum of all counts.
func (c *Counter[K]) Total() int {
	return c.total
}

// Len is the number of distinct labels.
func (c *Counter[K]) Len() int {
	return len(c.counts)
}

// Counts returns a copy of the raw counts.
func (c *Counter[K]) Counts() map[K]int {
	out := make(map[K]int, len(c.counts))
	for k, v := range c.counts {
		out[k] = v
	}
	return out
}

// Ranked is one entry of a ranked list.
type Ranked[K any] struct {
	Key        K
	Count      int
	Percentage float64
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}

// Percent is count/total*100 rounded to two decimals; zero for an empty total.
func Percent(count, total int) float64 {
	if total <= 0 {
		return 0
	}
	return Round(float64(count)/float64(total)*100, 2)
}

// Rank orders the counter and keeps the first topN entries (all when
// topN <= 0). Percentages use total; pass c.Total() for the plain share.
func Rank[K comparable](c *Counter[K], label func(K) string, topN, total int) []Ranked[K] {
	if c.Len() == 0 {
		return nil
	}
	entries := make([]Ranked[K], 0, c.Len())
	for k, n := range c.counts {
		entries = append(entries, Ranked[K]{Key: k, Count: n})
	}
	SortRanked(entries, label)
	if topN > 0 && len(entries) > topN {
		entries = entries[:topN]
	}
	for i := range entries {
		entries[i].Percentage = Percent(entries[i].Count, total)
	}
	return entries
}

// SortRanked sorts by descending count, then ascending label.
func SortRanked[K any](entries []Ranked[K], label func(K) string) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Count != entries[j].Count {
			return entries[i].Count > entries[j].Count
		}
		return label(entries[i].Key) < label(entries[j].Key)
	})
}

// Identity is the label function of string keys.
func Identity(s string) string { return s }
