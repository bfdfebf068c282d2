// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package reranking

import (
	"context"
	"math"
	"sort"

	"github.com/tomtom215/scoutpersona/internal/recommend"
)

// maxRerankSize limits slice allocations; k is also bounded by len(items).
const maxRerankSize = 10000

// Discovery reserves part of the list for tasks collaborative filtering
// ranks highly but content scoring would bury.
//
// With k slots, floor(k*HybridShare) are taken from the top of the hybrid
// ranking. The rest go to discovery candidates (cf > MinCFScore and
// content < MaxContentScore) not already selected, best hybrid score first.
// Slots discovery cannot fill are backfilled from the hybrid ranking.
type Discovery struct {
	config recommend.DiscoveryConfig
}

// NewDiscovery creates a new discovery reranker. Out-of-range shares are
// clamped to [0, 1].
func NewDiscovery(cfg recommend.DiscoveryConfig) *Discovery {
	cfg.HybridShare = math.Min(math.Max(cfg.HybridShare, 0), 1)
	return &Discovery{config: cfg}
}

// Name returns the reranker identifier.
func (d *Discovery) Name() string {
	return "discovery"
}

// IsCandidate reports whether a result qualifies for a discovery slot.
func (d *Discovery) IsCandidate(r *recommend.Result) bool {
	return r.CFScore > d.config.MinCFScore && r.ContentScore < d.config.MaxContentScore
}

// Rerank fills k slots from items sorted by descending hybrid score.
//
//nolint:gocritic // rangeValCopy: Result passed by value in range, acceptable for clarity
func (d *Discovery) Rerank(ctx context.Context, items []recommend.Result, k int) []recommend.Result {
	if len(items) == 0 || k <= 0 {
		return nil
	}
	if k > maxRerankSize {
		k = maxRerankSize
	}
	if k > len(items) {
		k = len(items)
	}

	for i := range items {
		items[i].Discovery = d.IsCandidate(&items[i])
	}

	hybridSlots := int(math.Floor(float64(k) * d.config.HybridShare))
	selected := make([]recommend.Result, 0, k)
	taken := make(map[string]struct{}, k)

	take := func(r recommend.Result, src recommend.Source) {
		r.Source = src
		selected = append(selected, r)
		taken[r.TaskID] = struct{}{}
	}

	for _, r := range items {
		if len(selected) >= hybridSlots {
			break
		}
		if _, dup := taken[r.TaskID]; dup {
			continue
		}
		take(r, recommend.SourceHybrid)
	}

	if ContextCancelled(ctx) {
		return selected
	}

	var candidates []recommend.Result
	for _, r := range items {
		if _, dup := taken[r.TaskID]; !dup && r.Discovery {
			candidates = append(candidates, r)
		}
	}
	// Best hybrid score first; CF score breaks ties.
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Score != candidates[j].Score {
			return candidates[i].Score > candidates[j].Score
		}
		return candidates[i].CFScore > candidates[j].CFScore
	})
	for _, r := range candidates {
		if len(selected) >= k {
			break
		}
		if _, dup := taken[r.TaskID]; dup {
			continue
		}
		take(r, recommend.SourceDiscovery)
	}

	for _, r := range items {
		if len(selected) >= k {
			break
		}
		if _, dup := taken[r.TaskID]; dup {
			continue
		}
		take(r, recommend.SourceHybrid)
	}
	return selected
}

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

var _ recommend.Reranker = (*Discovery)(nil)
