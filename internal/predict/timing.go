// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package predict

import (
	"math"

	"github.com/tomtom215/cultivar/internal/models"
)

// purchaseProbability30 is the 30-day purchase likelihood per timing status.
var purchaseProbability30 = map[string]float64{
	models.TimingNewOneTime:      0.3,
	models.TimingDueSoon:         0.8,
	models.TimingOnTrack:         0.6,
	models.TimingSlightlyOverdue: 0.4,
	models.TimingOverdue:         0.2,
	models.TimingSeverelyOverdue: 0.1,
}

// ExpectedInterval is the customer's average days between purchases. A zero
// frequency is treated as one.
func ExpectedInterval(ageDays, frequency int) float64 {
	return float64(ageDays) / float64(max(frequency, 1))
}

// ScoreTiming fills the purchase timing columns. It needs no training data.
func ScoreTiming(r *models.CustomerScore) {
	expected := ExpectedInterval(r.CustomerAgeDays, r.Frequency)
	in := TimingInput{Frequency: r.Frequency, Recency: float64(r.Recency), Expected: expected}

	r.ExpectedDaysToNextPurchase = expected
	r.DaysOverdue = math.Max(in.Recency-expected, 0)
	r.PurchaseTimingStatus = firstMatch(TimingRules, in, models.TimingSeverelyOverdue)
	r.PurchaseProbability30Days = purchaseProbability30[r.PurchaseTimingStatus]
}
