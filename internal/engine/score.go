package engine

import (
	"math"
	"strconv"
	"strings"
)

// Priority formula: charges weigh in per $500, each day of age counts
// 1.5, and a denied status adds a flat penalty before rounding.
const (
	chargeDivisor = 500.0
	ageWeight     = 1.5
	denyPenalty   = 100.0
)

// Score computes the urgency rank for an actionable claim.
func Score(totalCharges float64, age int, status string) int {
	score := totalCharges/chargeDivisor + float64(age)*ageWeight
	if status == "DENY" {
		score += denyPenalty
	}
	return int(math.Round(score))
}

// parseAmount reads a decimal cell value; absent or non-numeric input
// degrades to zero rather than failing the row.
func parseAmount(value string) (float64, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, true
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, false
	}
	return parsed, true
}

// parseWholeNumber reads an integer cell value with the same
// degrade-to-zero contract; a decimal cell truncates.
func parseWholeNumber(value string) int {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0
	}
	if parsed, err := strconv.Atoi(value); err == nil {
		return parsed
	}
	if parsed, err := strconv.ParseFloat(value, 64); err == nil {
		return int(parsed)
	}
	return 0
}
