// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package demand generates synthetic reconnaissance demands from target
// profiles.
//
// Each profile is split into independent fields (task type, scout type,
// scene, precision, cycle or frequency, target type, category, priority,
// resolution, plan type). Every field keeps its highest weighted values,
// the Cartesian product of all fields is scored by the product of the
// weights, and the best combinations become demand messages:
//
//	c, err := demand.NewCombinator(demand.DefaultConfig(), logger)
//	if err != nil {
//		return err
//	}
//	doc, err := c.Generate(ctx, profiles)
//
// A demand carries either reqCycle and reqCycleTimes or reqTimes, never
// both. Fields with no usable profile data keep fixed defaults.
package demand
