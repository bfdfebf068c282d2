// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package demand

import (
	"math"
	"strconv"

	"github.com/tomtom215/scoutpersona/internal/models"
	"github.com/tomtom215/scoutpersona/internal/tagging"
)

// option is one candidate value of a demand field. apply writes the value
// into a demand; a nil apply leaves the field at its default.
type option struct {
	label  string
	weight float64
	apply  func(*models.Demand)
}

// field is one independent demand dimension.
type field struct {
	name    string
	options []option
}

// accumulator sums share weights per distinct value in first-seen order.
type accumulator struct {
	order   []string
	weights map[string]float64
}

func newAccumulator() *accumulator {
	return &accumulator{weights: make(map[string]float64)}
}

func (a *accumulator) add(value string, weight float64) {
	if _, ok := a.weights[value]; !ok {
		a.order = append(a.order, value)
	}
	a.weights[value] += weight
}

// options returns one option per value with its weight capped at 1.
func (a *accumulator) options(apply func(value string) func(*models.Demand)) []option {
	out := make([]option, 0, len(a.order))
	for _, v := range a.order {
		out = append(out, option{label: v, weight: math.Min(a.weights[v], 1), apply: apply(v)})
	}
	return out
}

// effectivePercent returns the share percentage, recomputed from counts when
// the stored percentage is zero.
func effectivePercent(s models.Share, total int) float64 {
	if s.Percentage == 0 && total > 0 {
		return float64(s.Count) / float64(total) * 100
	}
	return s.Percentage
}

func scenarioFields(shares []models.ScenarioShare) []field {
	if len(shares) == 0 {
		return nil
	}
	taskTypes, scoutTypes, scenes, precise := newAccumulator(), newAccumulator(), newAccumulator(), newAccumulator()
	for _, s := range shares {
		w := s.Percentage / 100
		if s.TaskType != "" {
			taskTypes.add(s.TaskType, w)
		}
		if s.ScoutType != "" {
			scoutTypes.add(s.ScoutType, w)
		}
		if s.TaskScene != "" {
			scenes.add(s.TaskScene, w)
		}
		precise.add(preciseLabel(s.IsPrecise), w)
	}
	return []field{
		{name: "taskType", options: taskTypes.options(func(v string) func(*models.Demand) {
			return func(d *models.Demand) { d.TaskType = v }
		})},
		{name: "scoutType", options: scoutTypes.options(func(v string) func(*models.Demand) {
			return func(d *models.Demand) { d.ScoutType = v }
		})},
		{name: "taskScene", options: scenes.options(func(v string) func(*models.Demand) {
			return func(d *models.Demand) { d.TaskScene = v }
		})},
		{name: "isPrecise", options: precise.options(func(v string) func(*models.Demand) {
			return func(d *models.Demand) { d.IsPrecise = v }
		})},
	}
}

func preciseLabel(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// validCycle reports whether a cycle entry carries usable structured data.
func validCycle(s models.CycleShare) bool {
	return !tagging.IsInvalid(s.CycleLabel) && s.ReqCycle != ""
}

func validFrequency(s models.FrequencyShare) bool {
	return !tagging.IsInvalid(s.FrequencyLabel) && s.ReqTimes > 0
}

// scheduleFields decides between the cycle and the frequency encoding.
// The side with the larger valid percentage wins; ties go to the cycle.
// The losing side is pinned to nil with weight 1, and with no data at all
// the demand asks for a single acquisition.
func scheduleFields(cycles []models.CycleShare, freqs []models.FrequencyShare) []field {
	cycleTotal := 0
	for _, s := range cycles {
		cycleTotal += s.Count
	}
	freqTotal := 0
	for _, s := range freqs {
		freqTotal += s.Count
	}

	var cyclePct, freqPct float64
	reqCycles, cycleTimes := newAccumulator(), newAccumulator()
	for _, s := range cycles {
		if !validCycle(s) {
			continue
		}
		pct := effectivePercent(s.Share, cycleTotal)
		cyclePct += pct
		reqCycles.add(s.ReqCycle, pct/100)
		cycleTimes.add(strconv.Itoa(s.ReqCycleTimes), pct/100)
	}

	var freqOptions []option
	for _, s := range freqs {
		if !validFrequency(s) {
			continue
		}
		pct := effectivePercent(s.Share, freqTotal)
		freqPct += pct
		times := strconv.Itoa(s.ReqTimes)
		freqOptions = append(freqOptions, option{
			label:  times,
			weight: pct / 100,
			apply:  func(d *models.Demand) { d.ReqTimes = &times },
		})
	}

	cycleFields := func() []field {
		return []field{
			{name: "reqCycle", options: reqCycles.options(func(v string) func(*models.Demand) {
				return func(d *models.Demand) { d.ReqCycle = &v }
			})},
			{name: "reqCycleTimes", options: cycleTimes.options(func(v string) func(*models.Demand) {
				n, _ := strconv.Atoi(v)
				return func(d *models.Demand) { d.ReqCycleTimes = &n }
			})},
			nullField("reqTimes"),
		}
	}
	freqFields := func() []field {
		return []field{
			nullField("reqCycle"),
			nullField("reqCycleTimes"),
			{name: "reqTimes", options: freqOptions},
		}
	}

	hasCycle := len(reqCycles.order) > 0
	hasFreq := len(freqOptions) > 0
	useCycle := cyclePct >= freqPct
	switch {
	case useCycle && hasCycle:
		return cycleFields()
	case !useCycle && hasFreq:
		return freqFields()
	case hasCycle:
		return cycleFields()
	case hasFreq:
		return freqFields()
	}
	once := DefaultReqTimes
	return []field{
		nullField("reqCycle"),
		nullField("reqCycleTimes"),
		{name: "reqTimes", options: []option{{label: once, weight: 1, apply: func(d *models.Demand) { d.ReqTimes = &once }}}},
	}
}

func nullField(name string) field {
	return field{name: name, options: []option{{label: "null", weight: 1}}}
}

// typeCategoryFields splits target_type_label into independent type and
// category fields. Sentinel entries are skipped.
func typeCategoryFields(shares []models.CategoryShare) []field {
	types, categories := newAccumulator(), newAccumulator()
	for _, s := range shares {
		w := s.Percentage / 100
		if !tagging.IsInvalid(s.TargetType) {
			types.add(s.TargetType, w)
		}
		if !tagging.IsInvalid(s.TargetCategory) {
			categories.add(s.TargetCategory, w)
		}
	}
	return []field{
		{name: "targetType", options: types.options(func(v string) func(*models.Demand) {
			return func(d *models.Demand) { d.TargetType = v }
		})},
		{name: "targetCategory", options: categories.options(func(v string) func(*models.Demand) {
			return func(d *models.Demand) { d.TargetCategory = v }
		})},
	}
}

func priorityField(shares []models.PriorityShare) field {
	f := field{name: "targetPriority"}
	for _, s := range shares {
		if tagging.IsInvalid(s.Priority) {
			continue
		}
		p, err := strconv.ParseFloat(s.Priority, 64)
		if err != nil || math.IsNaN(p) || math.IsInf(p, 0) {
			continue
		}
		f.options = append(f.options, option{
			label:  s.Priority,
			weight: s.Percentage / 100,
			apply:  func(d *models.Demand) { d.TargetPriority = p },
		})
	}
	return f
}

func resolutionField(shares []models.ResolutionShare) field {
	f := field{name: "resolution"}
	for _, s := range shares {
		if tagging.IsInvalid(s.Resolution) {
			continue
		}
		r := s.Resolution
		f.options = append(f.options, option{
			label:  r,
			weight: s.Percentage / 100,
			apply:  func(d *models.Demand) { d.Resolution = r },
		})
	}
	return f
}

func planTypeField(shares []models.PlanTypeShare) field {
	f := field{name: "missionPlanType"}
	for _, s := range shares {
		if tagging.IsInvalid(s.MissionPlanType) {
			continue
		}
		v := PlanTypeValue(s.MissionPlanType)
		f.options = append(f.options, option{
			label:  s.MissionPlanType,
			weight: s.Percentage / 100,
			apply:  func(d *models.Demand) { d.MissionPlanType = v },
		})
	}
	return f
}

// PlanTypeValue returns label as an int when it consists only of ASCII
// digits, otherwise the label itself.
func PlanTypeValue(label string) any {
	if label == "" {
		return label
	}
	for _, r := range label {
		if r < '0' || r > '9' {
			return label
		}
	}
	n, err := strconv.Atoi(label)
	if err != nil {
		return label
	}
	return n
}

// fields extracts every independent field of a profile in output order.
// Fields without options are left out, so the demand keeps its default.
func fields(p *models.TargetProfile) []field {
	var all []field
	all = append(all, scenarioFields(p.Tags.ScoutScenario)...)
	all = append(all, scheduleFields(p.Tags.ScoutCycle, p.Tags.ScoutFrequency)...)
	all = append(all, typeCategoryFields(p.Tags.TargetType)...)
	all = append(all,
		priorityField(p.Tags.TargetPriority),
		resolutionField(p.Tags.Resolution),
		planTypeField(p.Tags.MissionPlanType),
	)

	out := all[:0]
	for _, f := range all {
		if len(f.options) > 0 {
			out = append(out, f)
		}
	}
	return out
}
