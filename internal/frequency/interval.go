// ScoutPersona - Reconnaissance Persona and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/scoutpersona

package frequency

import (
	"strconv"
	"strings"
	"unicode"
)

var cnDigits = map[rune]float64{
	'零': 0, '一': 1, '二': 2, '两': 2, '三': 3, '四': 4,
	'五': 5, '六': 6, '七': 7, '八': 8, '九': 9, '半': 0.5,
}

// IntervalDays converts a cycle such as "30天", "3个月", "两周" or "12小时"
// to a length in days. One-off cycles (单次, 一次, 临时), empty input and
// non-positive amounts report false. A missing unit means days.
func IntervalDays(reqCycle string) (float64, bool) {
	cycle := Fold(reqCycle)
	switch cycle {
	case "", "单次", "一次", "临时":
		return 0, false
	}

	var number, unit strings.Builder
	for _, r := range cycle {
		_, isCN := cnDigits[r]
		switch {
		case unicode.IsDigit(r) || r == '.' || isCN || r == '十':
			number.WriteRune(r)
		default:
			unit.WriteRune(r)
		}
	}

	n, ok := parseAmount(number.String())
	if !ok || n <= 0 {
		return 0, false
	}

	u := unit.String()
	switch {
	case strings.Contains(u, "年"):
		return n * 365, true
	case strings.Contains(u, "月"):
		return n * 30, true
	case strings.Contains(u, "周"), strings.Contains(u, "星期"):
		return n * 7, true
	case strings.Contains(u, "时"):
		return n / 24, true
	default:
		return n, true
	}
}

// parseAmount reads an Arabic or Chinese numeral. 十 multiplies what
// precedes it (or 1) by ten, so 十二 is 12 and 二十 is 20.
func parseAmount(text string) (float64, bool) {
	if text == "" {
		return 0, false
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil {
		return f, true
	}

	var value, pending float64
	for _, r := range text {
		if r == '十' {
			if pending == 0 {
				pending = 1
			}
			value += pending * 10
			pending = 0
			continue
		}
		d, ok := cnDigits[r]
		if !ok {
			return 0, false
		}
		pending += d
	}
	return value + pending, true
}
