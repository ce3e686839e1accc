// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package recommend

import (
	"testing"

	"github.com/tomtom215/cultivar/internal/models"
)

func TestSummarize(t *testing.T) {
	t.Parallel()

	recs := []models.Recommendation{
		{CustomerID: "C1", RecommendedCategory: "Books", Confidence: 0.8},
		{CustomerID: "C1", RecommendedCategory: "Games", Confidence: 0.5},
		{CustomerID: "C2", RecommendedCategory: "Games", Confidence: 0.9},
	}

	s := Summarize(10, 3, recs, 4, 12)

	if s.CustomersAnalyzed != 10 || s.CustomersTargeted != 3 || s.CustomersWithRecs != 2 {
		t.Errorf("customer counts = %d/%d/%d, want 10/3/2", s.CustomersAnalyzed, s.CustomersTargeted, s.CustomersWithRecs)
	}
	if s.TotalRecommendations != 3 || !approx(s.AvgPerCustomer, 1.0) {
		t.Errorf("totals = %d, %v", s.TotalRecommendations, s.AvgPerCustomer)
	}
	if s.UniqueCategories != 2 {
		t.Errorf("UniqueCategories = %d, want 2", s.UniqueCategories)
	}
	if !approx(s.AvgConfidence, 2.2/3) {
		t.Errorf("AvgConfidence = %v, want %v", s.AvgConfidence, 2.2/3)
	}
	if s.HighConfidenceCount != 2 || !approx(s.HighConfidenceShare, 2.0/3) {
		t.Errorf("high confidence = %d, %v", s.HighConfidenceCount, s.HighConfidenceShare)
	}
	if s.CrossSellOpportunities != 4 || s.AssociationRules != 12 {
		t.Errorf("cross-sell/rules = %d/%d, want 4/12", s.CrossSellOpportunities, s.AssociationRules)
	}
	if s.TopRecommendedCategory != "Games" {
		t.Errorf("TopRecommendedCategory = %q, want Games", s.TopRecommendedCategory)
	}
}

func TestSummarize_Edges(t *testing.T) {
	t.Parallel()

	empty := Summarize(5, 0, nil, 0, 0)
	if empty.AvgPerCustomer != 0 || empty.TopRecommendedCategory != "" {
		t.Errorf("empty summary = %+v", empty)
	}

	tied := Summarize(2, 2, []models.Recommendation{
		{CustomerID: "C1", RecommendedCategory: "Toys"},
		{CustomerID: "C2", RecommendedCategory: "Books"},
	}, 0, 0)
	if tied.TopRecommendedCategory != "Books" {
		t.Errorf("tied TopRecommendedCategory = %q, want Books", tied.TopRecommendedCategory)
	}
}

func TestTopPerCustomer(t *testing.T) {
	t.Parallel()

	recs := []models.Recommendation{
		{CustomerID: "C2", RecommendedCategory: "A", Confidence: 0.2},
		{CustomerID: "C2", RecommendedCategory: "B", Confidence: 0.9},
		{CustomerID: "C2", RecommendedCategory: "C", Confidence: 0.5},
		{CustomerID: "C2", RecommendedCategory: "D", Confidence: 0.7},
		{CustomerID: "C1", RecommendedCategory: "E", Confidence: 0.1},
	}

	got := TopPerCustomer(recs, 3)
	want := []string{"C1/E", "C2/B", "C2/D", "C2/C"}
	if len(got) != len(want) {
		t.Fatalf("TopPerCustomer() returned %d, want %d", len(got), len(want))
	}
	for i, w := range want {
		if g := got[i].CustomerID + "/" + got[i].RecommendedCategory; g != w {
			t.Errorf("TopPerCustomer()[%d] = %s, want %s", i, g, w)
		}
	}

	if recs[0].RecommendedCategory != "A" {
		t.Error("TopPerCustomer() must not reorder its input")
	}
}
