// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package pipeline

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"slices"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/scoutpersona/internal/dataset"
	"github.com/tomtom215/scoutpersona/internal/demand"
	"github.com/tomtom215/scoutpersona/internal/events"
	"github.com/tomtom215/scoutpersona/internal/metrics"
	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/persona"
	"github.com/tomtom215/scoutpersona/internal/profile"
	"github.com/tomtom215/scoutpersona/internal/recommend"
	"github.com/tomtom215/scoutpersona/internal/recommend/algorithms"
	"github.com/tomtom215/scoutpersona/internal/recommend/reranking"
	"github.com/tomtom215/scoutpersona/internal/spatial"
)

// run holds the state shared between the phases of one pipeline run.
// Everything is written by one phase and only read afterwards.
type run struct {
	p       *Pipeline
	logger  zerolog.Logger
	window  models.TimeWindow
	source  *models.DataSource
	version string

	targets  []models.Target
	missions []models.Mission
	clusters map[string]int

	personas     []models.UserPersona
	profiles     []models.TargetProfile
	havePersonas bool
	haveProfiles bool

	stages  []Stage
	counts  events.Counts
	outputs []string
}

//nolint:gocritic // logger passed by value is acceptable for zerolog
func newRun(p *Pipeline, logger zerolog.Logger) *run {
	window, invalid := p.cfg.Pipeline.TimeWindow()
	for _, v := range invalid {
		logger.Warn().Str("value", v).Msg("Ignoring unparseable time window bound")
	}
	source := models.NewDataSource(window)
	version := source.Version()
	if version == "" {
		version = AllVersion
	}
	return &run{
		p:       p,
		logger:  logger,
		window:  window,
		source:  source,
		version: version,
	}
}

func (r *run) execute(ctx context.Context, selected map[Stage]bool) error {
	if selected[StagePersona] || selected[StageProfile] {
		if err := r.phase(ctx, "load", r.loadInputs); err != nil {
			return err
		}
		if err := r.phase(ctx, "cluster", r.cluster); err != nil {
			return err
		}
	}

	steps := []struct {
		stage Stage
		fn    func(context.Context) error
	}{
		{StagePersona, r.buildPersonas},
		{StageProfile, r.buildProfiles},
		{StageRecommend, r.recommend},
		{StageDemand, r.demands},
	}
	for _, s := range steps {
		if !selected[s.stage] {
			continue
		}
		if err := r.phase(ctx, string(s.stage), s.fn); err != nil {
			return err
		}
		r.stages = append(r.stages, s.stage)
	}

	if r.p.store != nil && (r.built(StagePersona) || r.built(StageProfile)) {
		if err := r.phase(ctx, "store", r.save); err != nil {
			return err
		}
	}
	return nil
}

func (r *run) built(s Stage) bool {
	return slices.Contains(r.stages, s)
}

// phase runs fn as a named, timed step. Cancellation is checked between
// phases.
func (r *run) phase(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	start := time.Now()
	err := fn(ctx)
	metrics.RecordPhase(name, time.Since(start))
	if err != nil {
		return fmt.Errorf("%s phase: %w", name, err)
	}
	r.logger.Debug().Str("phase", name).Dur("duration", time.Since(start)).Msg("Phase complete")
	return nil
}

func (r *run) output(name string) string {
	return filepath.Join(r.p.cfg.Pipeline.OutputDir, name)
}

func (r *run) write(name string, v any) error {
	path := r.output(name)
	if err := dataset.WriteJSON(path, v); err != nil {
		return err
	}
	r.outputs = append(r.outputs, path)
	r.logger.Info().Str("path", path).Msg("Wrote document")
	return nil
}

func (r *run) loadInputs(_ context.Context) error {
	targets, err := dataset.LoadTargets(r.p.cfg.Pipeline.TargetsPath)
	if err != nil {
		return err
	}
	missions, err := dataset.LoadMissions(r.p.cfg.Pipeline.MissionsPath)
	if err != nil {
		return err
	}
	r.targets = targets
	r.missions = missions
	r.counts.Targets = len(targets)
	r.counts.Missions = len(missions)
	r.logger.Info().
		Int("targets", len(targets)).
		Int("missions", len(missions)).
		Msg("Loaded inputs")
	return nil
}

// cluster runs the global clustering over every mission, placed at its
// target and keyed by target id. It must finish before any spatial tag is
// computed.
func (r *run) cluster(_ context.Context) error {
	clusterer, err := spatial.NewClusterer(r.p.cfg.Clustering, r.logger)
	if err != nil {
		return err
	}
	res := clusterer.ClusterMissions(r.missions, models.IndexTargets(r.targets), spatial.ByTargetID)
	metrics.RecordClustering(len(res.Attempts), res.Clusters, res.NoiseRatio)
	r.clusters = res.Labels
	r.logger.Info().
		Int("points", res.Points).
		Int("clusters", res.Clusters).
		Float64("noise_ratio", res.NoiseRatio).
		Float64("eps_km", res.EpsKm).
		Int("min_samples", res.MinSamples).
		Msg("Clustered targets")
	return nil
}

func (r *run) buildPersonas(ctx context.Context) error {
	b, err := persona.NewBuilder(r.p.cfg.Persona, r.logger,
		persona.WithWorkers(r.p.cfg.Pipeline.Workers),
		persona.WithClock(r.p.now),
	)
	if err != nil {
		return err
	}
	personas, err := b.Build(ctx, persona.Input{
		Targets:  r.targets,
		Missions: r.missions,
		Clusters: r.clusters,
		Window:   r.window,
	})
	if err != nil {
		return err
	}
	if personas == nil {
		personas = []models.UserPersona{}
	}
	r.personas, r.havePersonas = personas, true
	r.counts.Personas = len(personas)

	return r.write(dataset.PersonaFile, models.PersonaDocument{
		Personas:   personas,
		Statistics: models.CountStatistics{Total: len(personas)},
		DataSource: r.source,
	})
}

func (r *run) buildProfiles(ctx context.Context) error {
	b, err := profile.NewBuilder(r.p.cfg.Profile, r.logger,
		profile.WithWorkers(r.p.cfg.Pipeline.Workers),
		profile.WithClock(r.p.now),
	)
	if err != nil {
		return err
	}
	profiles, err := b.Build(ctx, profile.Input{
		Targets:  r.targets,
		Missions: r.missions,
		Clusters: r.clusters,
		Window:   r.window,
	})
	if err != nil {
		return err
	}
	if profiles == nil {
		profiles = []models.TargetProfile{}
	}
	r.profiles, r.haveProfiles = profiles, true
	r.counts.Profiles = len(profiles)

	return r.write(dataset.ProfileFile, models.ProfileDocument{
		Profiles:   profiles,
		Statistics: models.CountStatistics{Total: len(profiles)},
		DataSource: r.source,
	})
}

// ensurePersonas reads the persona document from the output directory when
// this run did not build personas.
func (r *run) ensurePersonas() error {
	if r.havePersonas {
		return nil
	}
	doc, err := dataset.LoadPersonas(r.output(dataset.PersonaFile))
	if err != nil {
		return fmt.Errorf("load personas: %w", err)
	}
	r.personas, r.havePersonas = doc.Personas, true
	return nil
}

// ensureProfiles reads the profile document from the output directory when
// this run did not build profiles. A missing document is not an error when
// optional is set.
func (r *run) ensureProfiles(optional bool) error {
	if r.haveProfiles {
		return nil
	}
	doc, err := dataset.LoadProfiles(r.output(dataset.ProfileFile))
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn().Msg("No target profiles available, scoring without them")
			return nil
		}
		return fmt.Errorf("load profiles: %w", err)
	}
	r.profiles, r.haveProfiles = doc.Profiles, true
	return nil
}

func (r *run) recommend(ctx context.Context) error {
	tasks, err := dataset.LoadTasks(r.p.cfg.Pipeline.TasksPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			r.logger.Warn().
				Str("path", r.p.cfg.Pipeline.TasksPath).
				Msg("Virtual task file not found, skipping recommendation")
			return nil
		}
		return err
	}
	if err := r.ensurePersonas(); err != nil {
		return err
	}
	if err := r.ensureProfiles(true); err != nil {
		return err
	}

	cfg := r.p.cfg.Recommend
	engine, err := recommend.NewEngine(cfg, r.logger,
		recommend.WithCollaborativeFilter(algorithms.NewUserKNN(cfg.KNN)),
		recommend.WithReranker(reranking.NewDiscovery(cfg.Discovery)),
	)
	if err != nil {
		return err
	}
	results, err := engine.Recommend(ctx, recommend.Input{
		Personas: r.personas,
		Profiles: r.profiles,
		Tasks:    tasks,
	})
	if err != nil {
		return err
	}

	doc := recommend.Resolve(results, tasks, r.logger)
	doc.DataSource = r.source
	r.counts.Recommendations = doc.Statistics.TotalRecommendations
	return r.write(dataset.RecommendationFile, doc)
}

func (r *run) demands(ctx context.Context) error {
	if err := r.ensureProfiles(false); err != nil {
		return err
	}
	c, err := demand.NewCombinator(r.p.cfg.Demand, r.logger, demand.WithClock(r.p.now))
	if err != nil {
		return err
	}
	doc, err := c.Generate(ctx, r.profiles)
	if err != nil {
		return err
	}
	doc.DataSource = r.source
	r.counts.Demands = doc.Statistics.Total
	return r.write(dataset.DemandFile, doc)
}

// save persists what this run built under the run version.
func (r *run) save(ctx context.Context) error {
	if r.built(StagePersona) {
		n, err := r.p.store.SavePersonas(ctx, r.version, r.personas)
		if err != nil {
			return fmt.Errorf("save personas: %w", err)
		}
		r.logger.Info().Int("rows", n).Str("version", r.version).Msg("Saved personas")
	}
	if r.built(StageProfile) {
		n, err := r.p.store.SaveProfiles(ctx, r.version, r.profiles)
		if err != nil {
			return fmt.Errorf("save profiles: %w", err)
		}
		r.logger.Info().Int("rows", n).Str("version", r.version).Msg("Saved profiles")
	}
	return nil
}
