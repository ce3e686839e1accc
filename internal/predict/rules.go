// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package predict

import "github.com/tomtom215/cultivar/internal/models"

// Rule labels inputs that satisfy Match. Rules are evaluated in slice order
// and the first match wins.
type Rule[T any] struct {
	Label string
	Match func(T) bool
}

func firstMatch[T any](rules []Rule[T], v T, fallback string) string {
	for _, r := range rules {
		if r.Match(v) {
			return r.Label
		}
	}
	return fallback
}

// RiskRules bucket a churn probability; anything unmatched is Critical.
var RiskRules = []Rule[float64]{
	{Label: models.RiskLow, Match: func(p float64) bool { return p < 0.3 }},
	{Label: models.RiskMedium, Match: func(p float64) bool { return p < 0.5 }},
	{Label: models.RiskHigh, Match: func(p float64) bool { return p < 0.7 }},
}

// RiskLevel returns the churn risk level for probability p.
func RiskLevel(p float64) string {
	return firstMatch(RiskRules, p, models.RiskCritical)
}

// CLVQuantiles are the prediction quantiles CLV categories are cut on.
type CLVQuantiles struct {
	P25, P50, P75, P90 float64
}

// CLVCategory buckets a predicted CLV against the population quantiles.
func CLVCategory(v float64, q CLVQuantiles) string {
	rules := []Rule[float64]{
		{Label: models.CLVVeryHigh, Match: func(v float64) bool { return v >= q.P90 }},
		{Label: models.CLVHigh, Match: func(v float64) bool { return v >= q.P75 }},
		{Label: models.CLVMedium, Match: func(v float64) bool { return v >= q.P50 }},
		{Label: models.CLVLow, Match: func(v float64) bool { return v >= q.P25 }},
	}
	return firstMatch(rules, v, models.CLVVeryLow)
}

// TimingInput is what the purchase timing rules look at.
type TimingInput struct {
	Frequency int
	Recency   float64
	Expected  float64
}

// TimingRules classify purchase timing; anything unmatched is Severely
// Overdue.
var TimingRules = []Rule[TimingInput]{
	{Label: models.TimingNewOneTime, Match: func(t TimingInput) bool { return t.Frequency == 1 }},
	{Label: models.TimingDueSoon, Match: func(t TimingInput) bool { return t.Recency < 0.8*t.Expected }},
	{Label: models.TimingOnTrack, Match: func(t TimingInput) bool { return t.Recency < 1.2*t.Expected }},
	{Label: models.TimingSlightlyOverdue, Match: func(t TimingInput) bool { return t.Recency < 2*t.Expected }},
	{Label: models.TimingOverdue, Match: func(t TimingInput) bool { return t.Recency < 3*t.Expected }},
}

// PriorityInput is what the priority rules look at.
type PriorityInput struct {
	CLV   float64
	Churn float64
	Q50   float64
	Q75   float64
}

// PriorityRules bucket customers by value and churn risk; anything
// unmatched is Low.
var PriorityRules = []Rule[PriorityInput]{
	{Label: models.PriorityCritical, Match: func(p PriorityInput) bool { return p.CLV > p.Q75 && p.Churn > 0.5 }},
	{Label: models.PriorityHigh, Match: func(p PriorityInput) bool { return p.CLV > p.Q75 }},
	{Label: models.PriorityMedium, Match: func(p PriorityInput) bool { return p.Churn > 0.5 && p.CLV > p.Q50 }},
}
