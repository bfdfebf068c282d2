// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package algorithms

import (
	"context"
	"sync"
	"time"

	"github.com/tomtom215/scoutpersona/internal/recommend"
)

// BaseAlgorithm provides common functionality for all algorithms.
type BaseAlgorithm struct {
	name          string
	trained       bool
	version       int
	lastTrainedAt time.Time
	mu            sync.RWMutex
}

// NewBaseAlgorithm creates a new base algorithm with the given name.
func NewBaseAlgorithm(name string) BaseAlgorithm {
	return BaseAlgorithm{
		name: name,
	}
}

// Name returns the algorithm identifier.
func (b *BaseAlgorithm) Name() string {
	return b.name
}

// IsTrained returns whether the model has been trained.
func (b *BaseAlgorithm) IsTrained() bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.trained
}

// Version returns the model version.
func (b *BaseAlgorithm) Version() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.version
}

// LastTrainedAt returns when the model was last trained.
func (b *BaseAlgorithm) LastTrainedAt() time.Time {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.lastTrainedAt
}

// markTrained updates the trained state.
// Must be called while holding the training lock (acquireTrainLock).
func (b *BaseAlgorithm) markTrained() {
	b.trained = true
	b.version++
	b.lastTrainedAt = time.Now()
}

func (b *BaseAlgorithm) acquireTrainLock()   { b.mu.Lock() }
func (b *BaseAlgorithm) releaseTrainLock()   { b.mu.Unlock() }
func (b *BaseAlgorithm) acquirePredictLock() { b.mu.RLock() }
func (b *BaseAlgorithm) releasePredictLock() { b.mu.RUnlock() }

// normalizeByMax divides every score by the maximum so the best task
// scores 1. Non-positive maxima leave the map empty.
func normalizeByMax(scores map[string]float64) map[string]float64 {
	maxScore := 0.0
	for _, s := range scores {
		if s > maxScore {
			maxScore = s
		}
	}
	if maxScore <= 0 {
		return map[string]float64{}
	}
	for id, s := range scores {
		scores[id] = s / maxScore
	}
	return scores
}

// Ensure all algorithms implement the interface.
var _ recommend.CollaborativeFilter = (*UserKNN)(nil)

// ContextCancelled checks if the context has been canceled.
func ContextCancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}
