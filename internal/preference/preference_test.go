// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package preference

import (
	"errors"
	"fmt"
	"io"
	"math"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/models"
)

func TestHHI(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		counts []int
		want   float64
	}{
		{"empty", nil, 0},
		{"single", []int{7}, 1},
		{"uniform four", []int{2, 2, 2, 2}, 0.25},
		{"skewed", []int{5, 3, 2}, 0.38},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := HHI(tt.counts)
			if math.Abs(got-tt.want) > 1e-12 {
				t.Errorf("HHI(%v) = %v, want %v", tt.counts, got, tt.want)
			}
			if got < 0 || got > 1 {
				t.Errorf("HHI(%v) = %v outside [0, 1]", tt.counts, got)
			}
		})
	}
}

func TestCV(t *testing.T) {
	t.Parallel()

	if got := CV([]int{4}); got != 0 {
		t.Errorf("CV of one count = %v, want 0", got)
	}
	// mean 2, sample variance ((1)+(0)+(1))/2 = 1
	if got := CV([]int{1, 2, 3}); math.Abs(got-0.5) > 1e-12 {
		t.Errorf("CV([1 2 3]) = %v, want 0.5", got)
	}
}

func TestSelect(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	tests := []struct {
		name  string
		shape Shape
		want  Algorithm
	}{
		{"concentrated", Shape{HHI: 0.2, Users: 50, Targets: 40}, AlgorithmPercentage},
		{"many users and targets", Shape{HHI: 0.01, Users: 10, Targets: 20}, AlgorithmTFIDF},
		{"bm25 gate high cv", Shape{HHI: 0.01, Users: 5, Targets: 10, CV: 1.2}, AlgorithmBM25},
		{"bm25 gate low cv", Shape{HHI: 0.01, Users: 5, Targets: 10, CV: 1.0}, AlgorithmTFIDF},
		{"no global stats", Shape{HHI: 0.04, Users: 0, Targets: 25}, AlgorithmZScore},
		{"too few targets", Shape{HHI: 0.04, Users: 0, Targets: 4}, AlgorithmPercentage},
		{"boundary hhi", Shape{HHI: 0.05, Users: 0, Targets: 5}, AlgorithmZScore},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := Select(tt.shape, &cfg); got != tt.want {
				t.Errorf("Select(%+v) = %s, want %s", tt.shape, got, tt.want)
			}
		})
	}

	fixed := DefaultConfig()
	fixed.Algorithm = AlgorithmBM25
	if got := Select(Shape{HHI: 1}, &fixed); got != AlgorithmBM25 {
		t.Errorf("fixed algorithm overridden: got %s", got)
	}
}

func TestPercentage_TopN(t *testing.T) {
	t.Parallel()

	got := Percentage{TopN: 2}.Score(Counts{"A": 5, "B": 3, "C": 2}, nil)
	want := []models.TargetShare{
		{TargetID: "A", Share: models.Share{Count: 5, Percentage: 50}},
		{TargetID: "B", Share: models.Share{Count: 3, Percentage: 30}},
	}
	if fmt.Sprint(got) != fmt.Sprint(want) {
		t.Errorf("Score() = %+v, want %+v", got, want)
	}
}

func TestPercentage_TiesByTargetID(t *testing.T) {
	t.Parallel()

	got := Percentage{TopN: 3}.Score(Counts{"T9": 2, "T1": 2, "T5": 2}, nil)
	for i, id := range []string{"T1", "T5", "T9"} {
		if got[i].TargetID != id {
			t.Errorf("got[%d] = %s, want %s", i, got[i].TargetID, id)
		}
	}
}

func TestZScore(t *testing.T) {
	t.Parallel()

	t.Run("uniform counts fall back to percentage", func(t *testing.T) {
		t.Parallel()
		counts := Counts{"A": 3, "B": 3, "C": 3, "D": 3, "E": 3}
		got := ZScore{TopN: 50, Threshold: 1}.Score(counts, nil)
		want := Percentage{TopN: 50}.Score(counts, nil)
		if fmt.Sprint(got) != fmt.Sprint(want) {
			t.Errorf("ZScore = %+v, want percentage %+v", got, want)
		}
	})

	t.Run("keeps significant targets only", func(t *testing.T) {
		t.Parallel()
		counts := Counts{"A": 20, "B": 1, "C": 1, "D": 1, "E": 1}
		got := ZScore{TopN: 50, Threshold: 1}.Score(counts, nil)
		if len(got) != 1 || got[0].TargetID != "A" || got[0].Percentage != 83.33 {
			t.Errorf("ZScore = %+v, want only A at 83.33%%", got)
		}
	})

	t.Run("nothing significant falls back", func(t *testing.T) {
		t.Parallel()
		counts := Counts{"A": 2, "B": 1}
		got := ZScore{TopN: 50, Threshold: 1}.Score(counts, nil)
		if len(got) != 2 || got[0].TargetID != "A" {
			t.Errorf("ZScore = %+v, want percentage fallback", got)
		}
	})
}

func TestTFIDF_PrefersRareTargets(t *testing.T) {
	t.Parallel()

	stats := &GlobalStats{
		TotalUsers:      10,
		TargetUsers:     map[string]int{"common": 10, "rare": 1},
		AvgMissionCount: 4,
	}
	got := TFIDF{TopN: 50, Smoothing: 1}.Score(Counts{"common": 3, "rare": 2}, stats)
	if got[0].TargetID != "rare" {
		t.Errorf("expected rare target first, got %+v", got)
	}
	if got[0].Count != 2 || got[0].Percentage != 40 {
		t.Errorf("percentage must come from raw counts, got %+v", got[0])
	}
}

func TestBM25_MonotoneWithDiminishingReturns(t *testing.T) {
	t.Parallel()

	b := BM25{TopN: 50, K1: 1.5, B: 0.75}
	prev, prevInc := 0.0, math.Inf(1)
	for c := 1; c <= 20; c++ {
		s := b.termScore(c, 20, 10, 3, 20)
		inc := s - prev
		if inc <= 0 {
			t.Fatalf("score not increasing at count %d: %v -> %v", c, prev, s)
		}
		if inc > prevInc+1e-12 {
			t.Fatalf("increment grew at count %d: %v > %v", c, inc, prevInc)
		}
		prev, prevInc = s, inc
	}
}

func TestBM25_MissingStatsDefaults(t *testing.T) {
	t.Parallel()

	got := BM25{TopN: 1, K1: 1.5, B: 0.75}.Score(Counts{"A": 4, "B": 1}, nil)
	if len(got) != 1 || got[0].TargetID != "A" {
		t.Errorf("Score() = %+v, want A", got)
	}
}

func TestComputeGlobalStats(t *testing.T) {
	t.Parallel()

	missions := []models.Mission{
		{ReqUnit: "U1", ReqGroup: "G1", TargetID: "T1"},
		{ReqUnit: "U1", ReqGroup: "G1", TargetID: "T1"},
		{ReqUnit: "U1", ReqGroup: "G2", TargetID: "T1"},
		{ReqUnit: "U2", ReqGroup: "G1", TargetID: "T2"},
	}
	stats := ComputeGlobalStats(missions)
	if stats.TotalUsers != 3 {
		t.Errorf("TotalUsers = %d, want 3", stats.TotalUsers)
	}
	if stats.TargetUsers["T1"] != 2 || stats.TargetUsers["T2"] != 1 {
		t.Errorf("TargetUsers = %v", stats.TargetUsers)
	}
	if math.Abs(stats.AvgMissionCount-4.0/3.0) > 1e-12 {
		t.Errorf("AvgMissionCount = %v", stats.AvgMissionCount)
	}
}

func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"unknown algorithm", func(c *Config) { c.Algorithm = "magic" }},
		{"zero top n", func(c *Config) { c.TopN = 0 }},
		{"zero target top n", func(c *Config) { c.TargetTopN = 0 }},
		{"hhi above one", func(c *Config) { c.HHIThreshold = 2 }},
		{"negative cv", func(c *Config) { c.CVThreshold = -1 }},
		{"zero k1", func(c *Config) { c.BM25K1 = 0 }},
		{"b above one", func(c *Config) { c.BM25B = 1.1 }},
		{"negative smoothing", func(c *Config) { c.TFIDFSmoothing = -0.1 }},
		{"zero gate", func(c *Config) { c.ZScoreMinTargets = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, models.ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestScorer_Rank(t *testing.T) {
	t.Parallel()

	s, err := NewScorer(DefaultConfig(), nil, zerolog.New(io.Discard))
	if err != nil {
		t.Fatalf("NewScorer() error = %v", err)
	}
	r := s.Rank(Counts{"A": 5, "B": 3, "C": 2})
	if r.Algorithm != AlgorithmPercentage {
		t.Errorf("Algorithm = %s, want percentage", r.Algorithm)
	}
	if !r.Concentration.IsConcentrated || r.Concentration.Level != LevelConcentrated {
		t.Errorf("Concentration = %+v", r.Concentration)
	}
	if len(r.Targets) != 3 || r.Targets[0].TargetID != "A" {
		t.Errorf("Targets = %+v", r.Targets)
	}
}
