// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package algorithms

import (
	"context"
	"sort"

	"github.com/tomtom215/scoutpersona/internal/recommend"
	"github.com/tomtom215/scoutpersona/internal/workerpool"
)

// neighbor represents a similar requester with its similarity score.
type neighbor struct {
	ID         int
	Similarity float64
}

// UserKNN implements user-based collaborative filtering over persona
// feature sets.
//
// For a requester u and a task t that u has not interacted with:
// score(u, t) = sum_{v in N(u), t in I(v)} sim(u, v), divided by the
// maximum score of u
//
// where N(u) is the set of K requesters most similar to u.
type UserKNN struct {
	BaseAlgorithm
	config     recommend.KNNConfig
	similarity SimilarityFunc

	// userTasks stores the tasks each requester interacted with
	userTasks []map[string]struct{}

	// userNeighbors stores the precomputed top K neighbours
	userNeighbors [][]neighbor
}

// NewUserKNN creates a new user-based CF algorithm.
func NewUserKNN(cfg recommend.KNNConfig) *UserKNN {
	if cfg.K <= 0 {
		cfg.K = 5
	}
	if cfg.SimilarityMetric == "" {
		cfg.SimilarityMetric = MetricCosine
	}
	return &UserKNN{
		BaseAlgorithm: NewBaseAlgorithm("userknn"),
		config:        cfg,
		similarity:    Similarity(cfg.SimilarityMetric),
	}
}

// Train indexes interactions and precomputes every requester's
// neighbourhood.
func (u *UserKNN) Train(ctx context.Context, users []recommend.Features, interactions []recommend.Interaction) error {
	u.acquireTrainLock()
	defer u.releaseTrainLock()

	if ContextCancelled(ctx) {
		return ctx.Err()
	}

	u.userTasks = make([]map[string]struct{}, len(users))
	for i := range u.userTasks {
		u.userTasks[i] = make(map[string]struct{})
	}
	for _, inter := range interactions {
		if inter.User < 0 || inter.User >= len(users) {
			continue
		}
		u.userTasks[inter.User][inter.TaskID] = struct{}{}
	}

	u.userNeighbors = make([][]neighbor, len(users))
	err := workerpool.Run(ctx, len(users), u.config.NumWorkers, func(i int) {
		u.userNeighbors[i] = u.computeUserNeighbors(i, users)
	})
	if err != nil {
		return err
	}

	u.markTrained()
	return nil
}

// computeUserNeighbors computes the K most similar requesters. Ties keep
// the lower index first.
func (u *UserKNN) computeUserNeighbors(userID int, users []recommend.Features) []neighbor {
	neighbors := make([]neighbor, 0, len(users))
	for other := range users {
		if other == userID {
			continue
		}
		sim := u.similarity(&users[userID], &users[other])
		if sim > 0 && sim > u.config.MinSimilarity {
			neighbors = append(neighbors, neighbor{ID: other, Similarity: sim})
		}
	}

	sort.SliceStable(neighbors, func(i, j int) bool {
		return neighbors[i].Similarity > neighbors[j].Similarity
	})
	if len(neighbors) > u.config.K {
		neighbors = neighbors[:u.config.K]
	}
	return neighbors
}

// neighborIDs returns the neighbour indices of a requester, most similar
// first.
func (u *UserKNN) neighborIDs(userID int) []int {
	u.acquirePredictLock()
	defer u.releasePredictLock()

	if userID < 0 || userID >= len(u.userNeighbors) {
		return nil
	}
	ids := make([]int, len(u.userNeighbors[userID]))
	for i, n := range u.userNeighbors[userID] {
		ids[i] = n.ID
	}
	return ids
}

// Predict accumulates neighbour similarity on tasks the requester has not
// interacted with and normalises by the maximum.
func (u *UserKNN) Predict(ctx context.Context, userID int) (map[string]float64, error) {
	u.acquirePredictLock()
	defer u.releasePredictLock()

	if ContextCancelled(ctx) {
		return nil, ctx.Err()
	}
	if !u.trained || userID < 0 || userID >= len(u.userNeighbors) {
		return map[string]float64{}, nil
	}

	own := u.userTasks[userID]
	scores := make(map[string]float64)
	for _, n := range u.userNeighbors[userID] {
		for task := range u.userTasks[n.ID] {
			if _, seen := own[task]; seen {
				continue
			}
			scores[task] += n.Similarity
		}
	}
	return normalizeByMax(scores), nil
}
