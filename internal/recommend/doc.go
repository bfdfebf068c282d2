// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package recommend ranks candidate virtual tasks for every requester.
//
// # Architecture
//
// Two signal families are combined:
//
//   - Content scoring (Scorer): five sub-scores comparing the requester
//     persona with the profile of the task's target.
//   - Collaborative filtering (CollaborativeFilter): tasks liked by similar
//     requesters, implemented by algorithms.UserKNN.
//
// The hybrid score is content_weight*content + cf_weight*cf. A Reranker
// (reranking.Discovery) then fills the final list, reserving a share of the
// slots for tasks that CF surfaced but content scoring would bury.
//
// When CF is disabled, no filter is registered, or fewer than two personas
// exist, the engine falls back to pure content ranking.
//
// # Usage
//
//	cfg := recommend.DefaultConfig()
//	engine, err := recommend.NewEngine(cfg, logger,
//	    recommend.WithCollaborativeFilter(algorithms.NewUserKNN(cfg.KNN)),
//	    recommend.WithReranker(reranking.NewDiscovery(cfg.Discovery)),
//	)
//	results, err := engine.Recommend(ctx, recommend.Input{
//	    Personas: personas,
//	    Profiles: profiles,
//	    Tasks:    tasks,
//	})
//	doc := recommend.Resolve(results, tasks, logger)
//
// # Determinism
//
// Results follow persona input order. Every sort is stable, so ties keep
// the task catalogue order.
package recommend
