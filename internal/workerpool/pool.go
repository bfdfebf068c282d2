// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package workerpool runs independent per-entity work on a bounded number of
// goroutines.
//
// Work is split into contiguous chunks, one per worker. Each index is
// processed exactly once and results are expected to be written by index,
// so callers get input order back without sorting or locking.
package workerpool

import (
	"context"
	"runtime"
	"sync"
)

// Workers returns n, or the number of CPUs when n is not positive.
func Workers(n int) int {
	if n <= 0 {
		return runtime.NumCPU()
	}
	return n
}

// Cancelled reports whether ctx is done without blocking.
func Cancelled(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	default:
		return false
	}
}

// Run calls fn(i) for every i in [0, n) using at most workers goroutines.
// It stops handing out indices once ctx is cancelled and returns ctx.Err().
func Run(ctx context.Context, n, workers int, fn func(i int)) error {
	if n == 0 {
		return ctx.Err()
	}
	workers = Workers(workers)
	if workers > n {
		workers = n
	}

	var wg sync.WaitGroup
	chunkSize := (n + workers - 1) / workers

	for w := 0; w < workers; w++ {
		start := w * chunkSize
		end := start + chunkSize
		if end > n {
			end = n
		}
		if start >= end {
			break
		}

		wg.Add(1)
		go func(start, end int) {
			defer wg.Done()
			for i := start; i < end; i++ {
				if Cancelled(ctx) {
					return
				}
				fn(i)
			}
		}(start, end)
	}

	wg.Wait()
	return ctx.Err()
}
