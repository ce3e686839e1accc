// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package features

// Frequency buckets.
const (
	FrequencyOneTime  = "One-time"
	FrequencyLow      = "Low"
	FrequencyMedium   = "Medium"
	FrequencyHigh     = "High"
	FrequencyVeryHigh = "Very High"
)

// Monetary buckets and their exclusive upper bounds.
const (
	MonetaryLow      = "Low Value"
	MonetaryMedium   = "Medium Value"
	MonetaryHigh     = "High Value"
	MonetaryVeryHigh = "Very High Value"

	monetaryLowBound    = 50_000
	monetaryMediumBound = 200_000
	monetaryHighBound   = 1_000_000
)

// Recency buckets.
const (
	RecencyActive  = "Active (0-30 days)"
	RecencyRecent  = "Recent (31-90 days)"
	RecencyCooling = "Cooling (91-180 days)"
	RecencyAtRisk  = "At Risk (181-365 days)"
	RecencyLost    = "Lost (>365 days)"
)

// FrequencyCategory buckets an order count.
func FrequencyCategory(f int) string {
	switch {
	case f == 1:
		return FrequencyOneTime
	case f <= 3:
		return FrequencyLow
	case f <= 10:
		return FrequencyMedium
	case f <= 20:
		return FrequencyHigh
	default:
		return FrequencyVeryHigh
	}
}

// MonetaryCategory buckets a revenue total.
func MonetaryCategory(m float64) string {
	switch {
	case m < monetaryLowBound:
		return MonetaryLow
	case m < monetaryMediumBound:
		return MonetaryMedium
	case m < monetaryHighBound:
		return MonetaryHigh
	default:
		return MonetaryVeryHigh
	}
}

// RecencyCategory buckets days since the last purchase.
func RecencyCategory(days int) string {
	switch {
	case days <= 30:
		return RecencyActive
	case days <= 90:
		return RecencyRecent
	case days <= 180:
		return RecencyCooling
	case days <= 365:
		return RecencyAtRisk
	default:
		return RecencyLost
	}
}
