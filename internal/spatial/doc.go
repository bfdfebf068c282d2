// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

/*
Package spatial groups geographic points into density-based regions.

Targets are clustered with DBSCAN under the haversine great-circle metric.
The clusterer returns a mapping from caller supplied item ids to contiguous
cluster ids starting at 0, with -1 marking noise.

# Auto-tuning

With AutoTune enabled the clusterer retries DBSCAN over a ladder of radius
scales (0.2x to 2.2x of EpsKm by default), relaxing min_samples in the later
two thirds of the ladder. Each attempt is scored as

	clusters - 0.7*|clusters - desired| - noise_ratio

and the search stops at the first attempt that reaches DesiredClusters, or
that finds at least one cluster with a noise ratio at or under
NoiseThreshold. Otherwise the highest scoring attempt wins.

# Weighted points

Identical coordinates are collapsed into one weighted point before DBSCAN.
A point is core when the summed weight of its neighbourhood, itself
included, reaches min_samples, which gives the same labels as running on
the duplicated input.

# Neighbour Queries

Range queries go through a spatial hash grid whose cells are EpsKm wide.
Longitude spans are widened by 1/cos(latitude), wrap at the antimeridian and
degrade to a full row scan near the poles. Every candidate is confirmed
with an exact haversine check.

# Usage Example

	c, err := spatial.NewClusterer(spatial.DefaultConfig(), logger)
	if err != nil {
	    return err
	}
	res := c.ClusterMissions(missions, models.IndexTargets(targets), spatial.ByTargetID)
	region := res.Labels["T-001"] // -1 when noise
*/
package spatial
