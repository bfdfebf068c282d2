// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package spatial

// Noise is the label of points that belong to no cluster.
const Noise = -1

// weightedPoints is the deduplicated input of one clustering run. Points
// keep first-seen order.
type weightedPoints struct {
	lats    []float64
	lons    []float64
	weights []int
	total   int
	// neighbourhoods keyed by eps in km
	neighbours map[float64][][]int
}

func newWeightedPoints() *weightedPoints {
	return &weightedPoints{neighbours: make(map[float64][][]int)}
}

func (wp *weightedPoints) add(lat, lon float64) {
	wp.lats = append(wp.lats, lat)
	wp.lons = append(wp.lons, lon)
	wp.weights = append(wp.weights, 1)
	wp.total++
}

func (wp *weightedPoints) bump(idx int) {
	wp.weights[idx]++
	wp.total++
}

func (wp *weightedPoints) len() int {
	return len(wp.lats)
}

// neighbourhoods returns, for every point, the indices within epsKm of it
// (itself included).
func (wp *weightedPoints) neighbourhoods(epsKm float64) [][]int {
	if nb, ok := wp.neighbours[epsKm]; ok {
		return nb
	}
	grid := NewGrid(epsKm)
	for i := range wp.lats {
		grid.Insert(wp.lats[i], wp.lons[i])
	}
	nb := make([][]int, wp.len())
	for i := range wp.lats {
		nb[i] = grid.QueryNearby(nil, wp.lats[i], wp.lons[i], epsKm)
	}
	wp.neighbours[epsKm] = nb
	return nb
}

// dbscan labels every point. Clusters are numbered in discovery order; a
// border point reachable from several clusters joins the first one that
// expands over it.
func (wp *weightedPoints) dbscan(epsKm float64, minSamples int) []int {
	n := wp.len()
	labels := make([]int, n)
	for i := range labels {
		labels[i] = Noise
	}
	if n == 0 {
		return labels
	}

	nb := wp.neighbourhoods(epsKm)
	core := make([]bool, n)
	for i, hood := range nb {
		w := 0
		for _, j := range hood {
			w += wp.weights[j]
		}
		core[i] = w >= minSamples
	}

	next := 0
	stack := make([]int, 0, 16)
	for i := 0; i < n; i++ {
		if labels[i] != Noise || !core[i] {
			continue
		}
		p := i
		for {
			if labels[p] == Noise {
				labels[p] = next
				if core[p] {
					for _, q := range nb[p] {
						if labels[q] == Noise {
							stack = append(stack, q)
						}
					}
				}
			}
			if len(stack) == 0 {
				break
			}
			p = stack[len(stack)-1]
			stack = stack[:len(stack)-1]
		}
		next++
	}
	return labels
}

// summarize counts clusters and the weighted noise ratio of a labelling.
func (wp *weightedPoints) summarize(labels []int) (clusters int, noiseRatio float64) {
	seen := make(map[int]struct{})
	noise := 0
	for i, l := range labels {
		if l == Noise {
			noise += wp.weights[i]
			continue
		}
		seen[l] = struct{}{}
	}
	if wp.total > 0 {
		noiseRatio = float64(noise) / float64(wp.total)
	}
	return len(seen), noiseRatio
}
