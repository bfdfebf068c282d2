// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package reranking implements post-processing of hybrid recommendation
// lists.
//
// # Discovery slot reservation
//
// Discovery keeps most of the list for the best hybrid scores and reserves
// the remainder for "discovery" tasks: tasks similar requesters asked for
// (high CF score) that the content scorer rates poorly. With the default
// 0.8 share and k=10:
//
//	slots 1-8   top hybrid scores
//	slots 9-10  discovery candidates, best hybrid score first
//	            (backfilled from the hybrid ranking when too few exist)
//
// Task ids never repeat in the output.
package reranking
