// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

// Package frequency turns the raw cycle and count fields of a mission into
// normalised scout cycle and scout frequency labels.
//
//	labels := frequency.Build("一周", 3, true, 2, true)
//	labels.Cycle      // "1周3次"
//	labels.Frequency  // "周期频次为2"
//
// Input is folded to half-width first, so "３个月" and "3个月" are the same
// cycle.
package frequency

import (
	"strconv"
	"strings"

	"golang.org/x/text/width"
)

const (
	// NoCycle is the cycle label of missions without a usable cycle.
	NoCycle = "无周期需求"

	// Unspecified is the frequency label of missions without a usable count.
	Unspecified = "频率未指定"
)

// cycleAliases maps spelled-out cycles to their short form. Unknown cycles
// are kept as written.
var cycleAliases = map[string]string{
	"一周":  "1周",
	"两周":  "2周",
	"三周":  "3周",
	"一个月": "1月",
	"一月":  "1月",
	"两个月": "2月",
	"两月":  "2月",
	"三个月": "3月",
	"三月":  "3月",
	"四个月": "4月",
	"半年":  "6月",
	"六个月": "6月",
	"一年":  "12月",
	"两年":  "24月",
}

// Labels is the pair of labels derived from one mission.
type Labels struct {
	Cycle     string
	Frequency string

	// ReqCycle and ReqCycleTimes are the structured parts of Cycle. Both are
	// zero when Cycle is NoCycle.
	ReqCycle      string
	ReqCycleTimes int

	// ReqTimes is zero when Frequency is Unspecified.
	ReqTimes int
}

// Fold trims s and converts full-width characters to their narrow form.
func Fold(s string) string {
	return strings.TrimSpace(width.Narrow.String(s))
}

// NormalizeCycle returns the short form of a cycle text.
func NormalizeCycle(cycle string) string {
	cycle = Fold(cycle)
	if alias, ok := cycleAliases[cycle]; ok {
		return alias
	}
	return cycle
}

// Build derives both labels. cycleTimes and reqTimes only count when present
// and positive. Single-shot and unparseable cycles get NoCycle.
func Build(reqCycle string, cycleTimes int, hasCycleTimes bool, reqTimes int, hasReqTimes bool) Labels {
	var l Labels

	cycle := Fold(reqCycle)
	if _, ok := IntervalDays(cycle); !ok || !hasCycleTimes || cycleTimes <= 0 {
		l.Cycle = NoCycle
	} else {
		l.ReqCycle = NormalizeCycle(cycle)
		l.ReqCycleTimes = cycleTimes
		l.Cycle = l.ReqCycle + strconv.Itoa(cycleTimes) + "次"
	}

	if !hasReqTimes || reqTimes <= 0 {
		l.Frequency = Unspecified
	} else {
		l.ReqTimes = reqTimes
		l.Frequency = "周期频次为" + strconv.Itoa(reqTimes)
	}
	return l
}
