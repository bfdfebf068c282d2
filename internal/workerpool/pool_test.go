// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package workerpool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestRun_VisitsEveryIndexOnce(t *testing.T) {
	t.Parallel()

	for _, workers := range []int{0, 1, 3, 8, 100} {
		out := make([]int32, 37)
		if err := Run(context.Background(), len(out), workers, func(i int) {
			atomic.AddInt32(&out[i], 1)
		}); err != nil {
			t.Fatalf("Run(workers=%d) error = %v", workers, err)
		}
		for i, v := range out {
			if v != 1 {
				t.Errorf("workers=%d: index %d visited %d times", workers, i, v)
			}
		}
	}
}

func TestRun_Empty(t *testing.T) {
	t.Parallel()

	called := false
	if err := Run(context.Background(), 0, 4, func(int) { called = true }); err != nil {
		t.Errorf("Run() error = %v", err)
	}
	if called {
		t.Error("fn called for empty input")
	}
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var calls int32
	err := Run(ctx, 100, 4, func(int) { atomic.AddInt32(&calls, 1) })
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() error = %v, want context.Canceled", err)
	}
	if calls != 0 {
		t.Errorf("fn called %d times after cancellation", calls)
	}
}
