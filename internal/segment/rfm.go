// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package segment

import (
	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/stats"
)

// quintiles is the number of RFM score bins.
const quintiles = 5

// Rule is one row of a first-match-wins decision table.
type Rule struct {
	Label string
	Match func(r, f, m int) bool
}

// SegmentRules is the RFM segment decision table.
var SegmentRules = []Rule{
	{models.SegmentChampions, func(r, f, m int) bool { return r >= 4 && f >= 4 && m >= 4 }},
	{models.SegmentLoyal, func(r, f, _ int) bool { return r >= 3 && f >= 4 }},
	{models.SegmentBigSpenders, func(_, f, m int) bool { return m >= 4 && f <= 3 }},
	{models.SegmentPromising, func(r, f, _ int) bool { return r >= 4 && f <= 2 }},
	{models.SegmentNeedsAttention, func(r, f, m int) bool { return r >= 3 && f >= 2 && m >= 2 }},
	{models.SegmentAboutToSleep, func(r, _, _ int) bool { return r == 2 || r == 3 }},
	{models.SegmentAtRisk, func(r, f, m int) bool { return r <= 2 && f >= 3 && m >= 3 }},
	{models.SegmentCantLose, func(_, f, m int) bool { return f >= 4 && m >= 4 }},
	{models.SegmentHibernating, func(r, f, m int) bool { return r <= 2 && f <= 2 && m >= 2 }},
}

// AssignSegment returns the first matching segment, or Lost.
func AssignSegment(r, f, m int) string {
	for _, rule := range SegmentRules {
		if rule.Match(r, f, m) {
			return rule.Label
		}
	}
	return models.SegmentLost
}

// ScoreRFM sets R/F/M quintile scores, RFM_Score and RFM_Segment on every row.
// Recency is inverted (5 = most recent); Frequency is binned on its
// first-occurrence rank so ties never collapse bins.
func ScoreRFM(rows []models.CustomerScore) {
	n := len(rows)
	recency := make([]float64, n)
	frequency := make([]float64, n)
	monetary := make([]float64, n)
	for i := range rows {
		recency[i] = float64(rows[i].Recency)
		frequency[i] = float64(rows[i].Frequency)
		monetary[i] = rows[i].Monetary
	}

	rBins := stats.QCut(recency, quintiles)
	fBins := stats.QCut(stats.RankFirst(frequency), quintiles)
	mBins := stats.QCut(monetary, quintiles)

	for i := range rows {
		row := &rows[i]
		row.RScore = quintiles + 1 - rBins[i]
		row.FScore = fBins[i]
		row.MScore = mBins[i]
		row.RFMScore = row.RScore + row.FScore + row.MScore
		row.RFMSegment = AssignSegment(row.RScore, row.FScore, row.MScore)
	}
}
