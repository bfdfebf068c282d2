// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

/*
Package preference ranks the targets a requester prefers.

Four scoring strategies are available:

  - percentage: plain share of the requester's missions
  - zscore: targets more than ZScoreThreshold population standard
    deviations above the requester's mean count
  - tfidf: term frequency weighted by how rare the target is across
    requesters
  - bm25: saturating term frequency with length normalisation against the
    average requester

With AlgorithmAuto the strategy is chosen per requester from the shape of
the counts:

	HHI > HHIThreshold                          -> percentage
	users >= 10 and targets >= 20               -> tfidf
	users >= 5 and targets >= 10, CV > 1.0      -> bm25
	users >= 5 and targets >= 10, CV <= 1.0     -> tfidf
	targets >= 5                                -> zscore
	otherwise                                   -> percentage

Thresholds are configurable. The tfidf and bm25 strategies need GlobalStats
computed over every requester before any requester is scored.

Every strategy returns at most TargetTopN entries, each carrying the raw
count and its percentage of the requester's missions. Ties are broken by
ascending target id.
*/
package preference
