// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package spatial

import "math"

// polarLatitude is where a longitude window stops being useful and a query
// scans the whole row instead.
const polarLatitude = 89.0

// Grid divides the globe into cells for fixed-radius proximity queries.
// Instead of comparing a point against every other point, a query only
// checks the cells around it.
//
// Time Complexity:
//   - Insert: O(1)
//   - QueryNearby: O(k) where k = entries in the scanned cells
//
// A Grid is built once and then only read, so it carries no lock.
type Grid struct {
	cellSize float64               // cell size in degrees
	numCols  int                   // longitude columns around the globe
	rows     map[int]map[int][]int // row -> column -> entry indices
	lats     []float64
	lons     []float64
}

// NewGrid creates a grid whose cells are roughly cellSizeKm wide.
func NewGrid(cellSizeKm float64) *Grid {
	if cellSizeKm <= 0 {
		cellSizeKm = 100
	}
	cellSize := cellSizeKm / kmPerDegree
	numCols := int(math.Ceil(360 / cellSize))
	if numCols < 1 {
		numCols = 1
	}
	return &Grid{
		cellSize: cellSize,
		numCols:  numCols,
		rows:     make(map[int]map[int][]int),
	}
}

func (g *Grid) row(lat float64) int {
	return int(math.Floor(lat / g.cellSize))
}

func (g *Grid) col(lon float64) int {
	x := int(math.Floor((lon + 180) / g.cellSize))
	return ((x % g.numCols) + g.numCols) % g.numCols
}

// Insert adds a point and returns its index.
func (g *Grid) Insert(lat, lon float64) int {
	idx := len(g.lats)
	g.lats = append(g.lats, lat)
	g.lons = append(g.lons, lon)

	y, x := g.row(lat), g.col(lon)
	cols, ok := g.rows[y]
	if !ok {
		cols = make(map[int][]int)
		g.rows[y] = cols
	}
	cols[x] = append(cols[x], idx)
	return idx
}

// QueryNearby appends to dst the indices of all points within radiusKm of
// (lat, lon), in no particular order.
func (g *Grid) QueryNearby(dst []int, lat, lon, radiusKm float64) []int {
	radiusDeg := radiusKm / kmPerDegree
	minRow := g.row(lat - radiusDeg)
	maxRow := g.row(lat + radiusDeg)

	// Longitude window at the most poleward latitude the radius reaches.
	maxAbsLat := math.Abs(lat) + radiusDeg
	allCols := maxAbsLat >= polarLatitude
	var span int
	if !allCols {
		lonSpan := radiusDeg / math.Cos(maxAbsLat*math.Pi/180)
		span = int(math.Ceil(lonSpan/g.cellSize)) + 1
		allCols = lonSpan >= 180 || 2*span+1 >= g.numCols
	}
	center := g.col(lon)

	for y := minRow; y <= maxRow; y++ {
		cols, ok := g.rows[y]
		if !ok {
			continue
		}
		if allCols {
			for _, cell := range cols {
				dst = g.filter(dst, cell, lat, lon, radiusKm)
			}
			continue
		}
		for dx := -span; dx <= span; dx++ {
			x := (((center + dx) % g.numCols) + g.numCols) % g.numCols
			if cell, ok := cols[x]; ok {
				dst = g.filter(dst, cell, lat, lon, radiusKm)
			}
		}
	}
	return dst
}

func (g *Grid) filter(dst, cell []int, lat, lon, radiusKm float64) []int {
	for _, idx := range cell {
		if Haversine(lat, lon, g.lats[idx], g.lons[idx]) <= radiusKm {
			dst = append(dst, idx)
		}
	}
	return dst
}
