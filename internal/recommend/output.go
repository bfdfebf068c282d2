// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package recommend

import (
	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/metrics"
	"github.com/tomtom215/scoutpersona/internal/models"
)

// Resolve replaces ranked task ids with full catalogue tasks. Ids missing
// from the catalogue are logged and skipped; OriginalRecommendations still
// counts them.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func Resolve(results []UserResults, tasks []models.VirtualTask, logger zerolog.Logger) models.RecommendationDocument {
	catalog := make(map[string]*models.VirtualTask, len(tasks))
	for i := range tasks {
		catalog[tasks[i].GenerateTaskID] = &tasks[i]
	}

	doc := models.RecommendationDocument{
		Recommendations: make([]models.UserRecommendations, 0, len(results)),
	}
	for _, ur := range results {
		resolved := make([]models.VirtualTask, 0, len(ur.Results))
		for _, r := range ur.Results {
			doc.Statistics.OriginalRecommendations++
			if r.TaskID == "" {
				logger.Warn().Str("user", ur.User.String()).Msg("recommended task has no task id")
				continue
			}
			t, ok := catalog[r.TaskID]
			if !ok {
				metrics.LookupMisses.WithLabelValues("task").Inc()
				logger.Warn().Str("user", ur.User.String()).Str("task_id", r.TaskID).Msg("recommended task not in catalogue")
				continue
			}
			resolved = append(resolved, *t)
		}
		doc.Statistics.TotalRecommendations += len(resolved)
		doc.Recommendations = append(doc.Recommendations, models.UserRecommendations{
			UserID: ur.User,
			Tasks:  resolved,
		})
	}
	doc.Statistics.TotalUsers = len(results)

	if doc.Statistics.OriginalRecommendations != doc.Statistics.TotalRecommendations {
		logger.Warn().
			Int("original", doc.Statistics.OriginalRecommendations).
			Int("resolved", doc.Statistics.TotalRecommendations).
			Msg("some recommendations could not be resolved")
	}
	return doc
}
