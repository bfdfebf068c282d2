// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package algorithms implements collaborative filtering for the hybrid
// recommendation engine.
//
// UserKNN implements recommend.CollaborativeFilter. Requesters are compared
// on five persona feature sets (preferred targets, regions, categories,
// topic groups and scout scenarios) with either metric:
//
//   - cosine: |A∩B| / sqrt(|A|·|B|) per dimension where both sets are
//     non-empty, averaged over those dimensions
//   - jaccard: |A∩B| / |A∪B| per dimension where either set is non-empty,
//     averaged over those dimensions
//
// # Thread Safety
//
// Training acquires an exclusive lock while prediction uses a shared lock.
// Neighbourhoods are computed in parallel across requesters.
package algorithms
