// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

/*
Package cache provides a thread-safe TTL cache for API store reads.

The API caches version lists, persona lists and single persona or profile
lookups under keys built with GenerateKey. Stored versions only change
when the pipeline saves a run, so serve clears the cache after every
scheduled run; the TTL bounds staleness when another process writes to
the same database.

Usage:

	c := cache.New("api", 30*time.Second)
	key := cache.GenerateKey("persona", []string{version, unit, group})
	if v, ok := c.Get(key); ok {
	    return v.(*models.UserPersona), nil
	}

Lookups are counted in scoutpersona_cache_lookups_total{cache,result}.
Expired entries are removed on Get and by Cleanup.
*/
package cache
