// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package models

import (
	"strings"
	"testing"
	"time"
)

func TestScoredCustomersTable(t *testing.T) {
	t.Parallel()

	prob := 0.25
	ct := &CustomerTable{
		CategoryNames: []string{"Feed", "Poultry"},
		Rows: []CustomerScore{
			{
				CustomerID:       "C1",
				Monetary:         100,
				Frequency:        2,
				LastPurchaseDate: time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC),
				Categories:       map[string]int{"Poultry": 2},
				ChurnProbability: &prob,
			},
		},
	}

	table := ScoredCustomersTable(ct)
	header := table.Header()

	if header[0] != "Customer_ID" {
		t.Errorf("first column = %q, want Customer_ID", header[0])
	}
	idx := map[string]int{}
	for i, h := range header {
		idx[h] = i
	}
	if idx["Category_Feed"] >= idx["Category_Poultry"] {
		t.Error("category columns should follow CategoryNames order")
	}
	if idx["Recency_Category"] >= idx["Category_Feed"] || idx["Category_Poultry"] >= idx["R_Score"] {
		t.Error("category block should sit between features and stage columns")
	}

	row := table.Rows[0]
	if got := row[idx["Category_Poultry"]]; got != int64(2) {
		t.Errorf("Category_Poultry = %v, want 2", got)
	}
	if got := row[idx["Category_Feed"]]; got != int64(0) {
		t.Errorf("Category_Feed = %v, want zero-filled 0", got)
	}
	if got := row[idx["Churn_Probability"]]; got != 0.25 {
		t.Errorf("Churn_Probability = %v, want 0.25", got)
	}
	if got := row[idx["Predicted_CLV"]]; got != nil {
		t.Errorf("Predicted_CLV = %v, want nil for missing model", got)
	}
	if got := row[idx["Cluster"]]; got != nil {
		t.Errorf("Cluster = %v, want nil", got)
	}
	if len(row) != len(table.Columns) {
		t.Errorf("row width %d != column count %d", len(row), len(table.Columns))
	}
}

func TestProjectCustomers(t *testing.T) {
	t.Parallel()

	rows := []CustomerScore{{CustomerID: "A", RFMSegment: SegmentChampions, Monetary: 5}}

	table, err := ProjectCustomers(TableHighRisk, rows, "Customer_ID", "RFM_Segment", "Monetary")
	if err != nil {
		t.Fatalf("ProjectCustomers: %v", err)
	}
	if strings.Join(table.Header(), ",") != "Customer_ID,RFM_Segment,Monetary" {
		t.Errorf("header = %v", table.Header())
	}
	if table.Rows[0][1] != SegmentChampions || table.Rows[0][2] != 5.0 {
		t.Errorf("row = %v", table.Rows[0])
	}

	if _, err := ProjectCustomers("bad", rows, "Nope"); err == nil {
		t.Error("expected error for unknown column")
	}
}

func TestDistinctCategories(t *testing.T) {
	t.Parallel()

	c := CustomerScore{Categories: map[string]int{"Feed": 3, "Seeds": 0, "Poultry": 1}}
	if got := c.DistinctCategories(); got != 2 {
		t.Errorf("DistinctCategories() = %d, want 2", got)
	}
	if got := c.CategoryCount("Fruits"); got != 0 {
		t.Errorf("CategoryCount(absent) = %d, want 0", got)
	}
}

func TestSummaryTables(t *testing.T) {
	t.Parallel()

	rs := RecommendationSummaryTable(RecommendationSummary{})
	last := rs.Rows[len(rs.Rows)-1]
	if last[1] != "N/A" {
		t.Errorf("empty top category should render N/A, got %v", last[1])
	}

	ms := ModelSummaryTable([]ModelSummary{{
		Model:   "churn",
		Metrics: map[string]float64{"auc": 0.9, "accuracy": 0.8},
	}})
	if got := ms.Rows[0][2]; got != "accuracy=0.8000; auc=0.9000" {
		t.Errorf("metrics cell = %v", got)
	}
}

func TestInputTables(t *testing.T) {
	t.Parallel()

	txs := TransactionsTable(TableTransactions, []Transaction{
		{CustomerID: "C1", Date: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), Revenue: 5, OrderID: "9"},
	})
	if got := strings.Join(txs.Header(), "|"); got != "Customer_ID|Date|Revenue|Product(s)|Order #" {
		t.Errorf("transactions header = %s", got)
	}
	if txs.Rows[0][3] != nil {
		t.Errorf("blank product = %v, want nil", txs.Rows[0][3])
	}

	aov := 12.5
	items := 3
	cs := CustomersTable(TableCustomers, []Customer{
		{CustomerID: "C1", Monetary: 25, Frequency: 2, AvgOrderValue: &aov, TotalItemsSold: &items},
		{CustomerID: "C2", Monetary: 5, Frequency: 1, CustomerType: "Retail"},
	})
	if len(cs.Columns) != 7 {
		t.Fatalf("customer columns = %d, want 7", len(cs.Columns))
	}
	if cs.Rows[0][4] != 12.5 || cs.Rows[0][5] != nil || cs.Rows[0][6] != int64(3) {
		t.Errorf("C1 optional cells = %v", cs.Rows[0][4:])
	}
	if cs.Rows[0][3] != nil || cs.Rows[1][3] != "Retail" {
		t.Errorf("Customer_Type cells = %v, %v", cs.Rows[0][3], cs.Rows[1][3])
	}
}
