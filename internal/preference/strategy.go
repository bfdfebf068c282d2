// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package preference

import (
	"math"
	"sort"

	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/tagging"
)

// Counts is one requester's mission count per target id.
type Counts map[string]int

// Total is the number of missions.
func (c Counts) Total() int {
	total := 0
	for _, n := range c {
		total += n
	}
	return total
}

// Values returns the counts in ascending target id order.
func (c Counts) Values() []int {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	values := make([]int, len(ids))
	for i, id := range ids {
		values[i] = c[id]
	}
	return values
}

// Strategy ranks a requester's targets.
type Strategy interface {
	Score(counts Counts, stats *GlobalStats) []models.TargetShare
}

// NewStrategy returns the strategy for a concrete algorithm. AlgorithmAuto
// and unknown names map to percentage.
func NewStrategy(a Algorithm, cfg *Config) Strategy {
	switch a {
	case AlgorithmZScore:
		return ZScore{TopN: cfg.TargetTopN, Threshold: cfg.ZScoreThreshold}
	case AlgorithmTFIDF:
		return TFIDF{TopN: cfg.TargetTopN, Smoothing: cfg.TFIDFSmoothing}
	case AlgorithmBM25:
		return BM25{TopN: cfg.TargetTopN, K1: cfg.BM25K1, B: cfg.BM25B}
	default:
		return Percentage{TopN: cfg.TargetTopN}
	}
}

type scored struct {
	id    string
	count int
	score float64
}

// rankScored orders by descending score then ascending id and converts the
// first topN entries.
func rankScored(items []scored, topN, total int) []models.TargetShare {
	sort.Slice(items, func(i, j int) bool {
		if items[i].score != items[j].score {
			return items[i].score > items[j].score
		}
		return items[i].id < items[j].id
	})
	if topN > 0 && len(items) > topN {
		items = items[:topN]
	}
	out := make([]models.TargetShare, len(items))
	for i, it := range items {
		out[i] = models.TargetShare{
			TargetID: it.id,
			Share:    models.Share{Count: it.count, Percentage: tagging.Percent(it.count, total)},
		}
	}
	return out
}

// Percentage ranks targets by mission share.
type Percentage struct {
	TopN int
}

// Score implements Strategy.
func (p Percentage) Score(counts Counts, _ *GlobalStats) []models.TargetShare {
	items := make([]scored, 0, len(counts))
	for id, n := range counts {
		items = append(items, scored{id: id, count: n, score: float64(n)})
	}
	return rankScored(items, p.TopN, counts.Total())
}

// ZScore keeps targets whose count lies more than Threshold population
// standard deviations above the mean, ranked by z. It falls back to
// Percentage when the counts are uniform or nothing passes.
type ZScore struct {
	TopN      int
	Threshold float64
}

// Score implements Strategy.
func (z ZScore) Score(counts Counts, _ *GlobalStats) []models.TargetShare {
	values := counts.Values()
	sd := stdev(values, 0)
	if sd == 0 {
		return Percentage{TopN: z.TopN}.Score(counts, nil)
	}
	mu := mean(values)
	items := make([]scored, 0, len(counts))
	for id, n := range counts {
		if zs := (float64(n) - mu) / sd; zs > z.Threshold {
			items = append(items, scored{id: id, count: n, score: zs})
		}
	}
	if len(items) == 0 {
		return Percentage{TopN: z.TopN}.Score(counts, nil)
	}
	return rankScored(items, z.TopN, counts.Total())
}

// statsOrDefault fills the values a missing GlobalStats stands for.
func statsOrDefault(stats *GlobalStats, id string, total int) (users, targetUsers int, avg float64) {
	users, targetUsers, avg = 1, 1, float64(total)
	if stats == nil {
		return
	}
	users = stats.TotalUsers
	if n, ok := stats.TargetUsers[id]; ok {
		targetUsers = n
	}
	if stats.AvgMissionCount > 0 {
		avg = stats.AvgMissionCount
	}
	return
}

// TFIDF weights the requester's share of a target by how rare the target is
// among requesters: idf = ln((U+1)/(u_t+1)) + Smoothing.
type TFIDF struct {
	TopN      int
	Smoothing float64
}

// Score implements Strategy.
func (t TFIDF) Score(counts Counts, stats *GlobalStats) []models.TargetShare {
	total := counts.Total()
	items := make([]scored, 0, len(counts))
	for id, n := range counts {
		users, ut, _ := statsOrDefault(stats, id, total)
		tf := float64(n) / float64(total)
		idf := math.Log(float64(users+1)/float64(ut+1)) + t.Smoothing
		items = append(items, scored{id: id, count: n, score: tf * idf})
	}
	return rankScored(items, t.TopN, total)
}

// BM25 scores targets with Okapi BM25 where a requester is a document and
// its length is the mission count.
type BM25 struct {
	TopN int
	K1   float64
	B    float64
}

// Score implements Strategy.
func (b BM25) Score(counts Counts, stats *GlobalStats) []models.TargetShare {
	total := counts.Total()
	items := make([]scored, 0, len(counts))
	for id, n := range counts {
		users, ut, avg := statsOrDefault(stats, id, total)
		items = append(items, scored{id: id, count: n, score: b.termScore(n, total, users, ut, avg)})
	}
	return rankScored(items, b.TopN, total)
}

func (b BM25) termScore(count, total, users, targetUsers int, avg float64) float64 {
	idf := math.Log((float64(users-targetUsers)+0.5)/(float64(targetUsers)+0.5) + 1)
	c := float64(count)
	tf := c * (b.K1 + 1) / (c + b.K1*(1-b.B+b.B*(float64(total)/avg)))
	return idf * tf
}
