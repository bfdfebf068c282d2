// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package preference

import (
	"math"

	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/tagging"
)

// GlobalStats describes every requester at once. It is computed before any
// requester is scored and only read afterwards.
type GlobalStats struct {
	// TotalUsers is the number of distinct requesters.
	TotalUsers int `json:"total_users"`

	// TargetUsers maps target id to the number of requesters that used it.
	TargetUsers map[string]int `json:"target_user_count"`

	// AvgMissionCount is the mean number of missions per requester.
	AvgMissionCount float64 `json:"avg_mission_count"`
}

// ComputeGlobalStats aggregates missions across requesters.
func ComputeGlobalStats(missions []models.Mission) *GlobalStats {
	targetUsers := make(map[string]map[models.UserKey]struct{})
	userMissions := make(map[models.UserKey]int)
	for i := range missions {
		m := &missions[i]
		user := m.User()
		users, ok := targetUsers[m.TargetID]
		if !ok {
			users = make(map[models.UserKey]struct{})
			targetUsers[m.TargetID] = users
		}
		users[user] = struct{}{}
		userMissions[user]++
	}

	stats := &GlobalStats{
		TotalUsers:  len(userMissions),
		TargetUsers: make(map[string]int, len(targetUsers)),
	}
	for id, users := range targetUsers {
		stats.TargetUsers[id] = len(users)
	}
	if stats.TotalUsers > 0 {
		stats.AvgMissionCount = float64(len(missions)) / float64(stats.TotalUsers)
	}
	return stats
}

// HHI is the Herfindahl-Hirschman index of counts: the sum of squared
// shares. It is 0 for empty input and 1 for a single positive count.
func HHI(counts []int) float64 {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return 0
	}
	hhi := 0.0
	for _, c := range counts {
		p := float64(c) / float64(total)
		hhi += p * p
	}
	return hhi
}

// Concentration summarises how focused a requester is.
type Concentration struct {
	HHI            float64 `json:"hhi"`
	Level          string  `json:"concentration_level"`
	IsConcentrated bool    `json:"is_concentrated"`
}

// Concentration levels.
const (
	LevelConcentrated = "集中"
	LevelDispersed    = "分散"
	LevelUnknown      = "未知"
)

// NewConcentration classifies counts against threshold. HHI is rounded to
// four decimals before the comparison.
func NewConcentration(counts []int, threshold float64) Concentration {
	total := 0
	for _, c := range counts {
		total += c
	}
	if total == 0 {
		return Concentration{Level: LevelUnknown}
	}
	hhi := tagging.Round(HHI(counts), 4)
	if hhi > threshold {
		return Concentration{HHI: hhi, Level: LevelConcentrated, IsConcentrated: true}
	}
	return Concentration{HHI: hhi, Level: LevelDispersed}
}

func mean(counts []int) float64 {
	if len(counts) == 0 {
		return 0
	}
	sum := 0
	for _, c := range counts {
		sum += c
	}
	return float64(sum) / float64(len(counts))
}

// stdev is the population (ddof 0) or sample (ddof 1) standard deviation.
func stdev(counts []int, ddof int) float64 {
	n := len(counts)
	if n-ddof <= 0 {
		return 0
	}
	mu := mean(counts)
	ss := 0.0
	for _, c := range counts {
		d := float64(c) - mu
		ss += d * d
	}
	return math.Sqrt(ss / float64(n-ddof))
}

// CV is the coefficient of variation with the sample standard deviation.
// It is 0 with fewer than two counts or a zero mean.
func CV(counts []int) float64 {
	mu := mean(counts)
	if mu <= 0 || len(counts) < 2 {
		return 0
	}
	return stdev(counts, 1) / mu
}
