// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package algorithms

import (
	"math"

	"github.com/tomtom215/scoutpersona/internal/recommend"
)

// Supported similarity metrics.
const (
	MetricCosine  = "cosine"
	MetricJaccard = "jaccard"
)

// SimilarityFunc compares the feature sets of two requesters.
type SimilarityFunc func(a, b *recommend.Features) float64

// Similarity returns the metric by name, cosine for unknown names.
func Similarity(metric string) SimilarityFunc {
	if metric == MetricJaccard {
		return JaccardSimilarity
	}
	return CosineSimilarity
}

// CosineSimilarity averages |A∩B|/sqrt(|A||B|) over the dimensions where
// both sets are non-empty. Zero when no dimension can be compared.
func CosineSimilarity(a, b *recommend.Features) float64 {
	sa, sb := a.Sets(), b.Sets()
	var sum float64
	compared := 0
	for i := range sa {
		if len(sa[i]) == 0 || len(sb[i]) == 0 {
			continue
		}
		compared++
		sum += float64(sa[i].Intersect(sb[i])) / math.Sqrt(float64(len(sa[i])*len(sb[i])))
	}
	if compared == 0 {
		return 0
	}
	return sum / float64(compared)
}

// JaccardSimilarity averages |A∩B|/|A∪B| over the dimensions where at least
// one set is non-empty.
func JaccardSimilarity(a, b *recommend.Features) float64 {
	sa, sb := a.Sets(), b.Sets()
	var sum float64
	compared := 0
	for i := range sa {
		inter := sa[i].Intersect(sb[i])
		union := len(sa[i]) + len(sb[i]) - inter
		if union == 0 {
			continue
		}
		compared++
		sum += float64(inter) / float64(union)
	}
	if compared == 0 {
		return 0
	}
	return sum / float64(compared)
}
