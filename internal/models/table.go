// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package models

import (
	"fmt"
	"time"
)

// ColumnType is the storage type of a Table column.
type ColumnType int

const (
	TypeString ColumnType = iota
	TypeInt
	TypeFloat
	TypeBool
	TypeTime
)

// String returns the DuckDB/PostgreSQL type name.
func (t ColumnType) String() string {
	switch t {
	case TypeInt:
		return "BIGINT"
	case TypeFloat:
		return "DOUBLE PRECISION"
	case TypeBool:
		return "BOOLEAN"
	case TypeTime:
		return "TIMESTAMP"
	default:
		return "TEXT"
	}
}

// Column describes one output column.
type Column struct {
	Name string
	Type ColumnType
}

// Table is a sink-agnostic output table. Cell values are string, int64,
// float64, bool, time.Time, or nil for null.
type Table struct {
	Name    string
	Columns []Column
	Rows    [][]any
}

// Header returns the column names.
func (t *Table) Header() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Output table names.
const (
	TableScoredCustomers   = "rfm_with_predictions"
	TableSegmentSummary    = "rfm_segment_summary"
	TableClusterSummary    = "cluster_summary"
	TableHighRisk          = "high_risk_customers"
	TableHighValue         = "high_value_opportunities"
	TableActionPriority    = "action_priority_list"
	TableModelSummary      = "model_summary"
	TableImpactSummary     = "prediction_impact_summary"
	TableRecommendations   = "product_recommendations"
	TableTopRecommendation = "top_recommendations_per_customer"
	TableAssociationRules  = "product_association_rules"
	TableCrossSell         = "cross_sell_opportunities"
	TableRecSummary        = "recommendation_summary"
)

type scoreColumn struct {
	typ ColumnType
	get func(*CustomerScore) any
}

func floatPtr(p *float64) any {
	if p == nil {
		return nil
	}
	return *p
}

func optString(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// scoreColumns maps every fixed CustomerScore column to its accessor.
var scoreColumns = map[string]scoreColumn{
	"Customer_ID":                    {TypeString, func(c *CustomerScore) any { return c.CustomerID }},
	"Customer_Type":                  {TypeString, func(c *CustomerScore) any { return c.CustomerType }},
	"Monetary":                       {TypeFloat, func(c *CustomerScore) any { return c.Monetary }},
	"Frequency":                      {TypeInt, func(c *CustomerScore) any { return int64(c.Frequency) }},
	"Avg_Order_Value":                {TypeFloat, func(c *CustomerScore) any { return c.AvgOrderValue }},
	"Purchase_Rate":                  {TypeFloat, func(c *CustomerScore) any { return c.PurchaseRate }},
	"Total_Items_Sold":               {TypeInt, func(c *CustomerScore) any { return int64(c.TotalItemsSold) }},
	"Recency":                        {TypeInt, func(c *CustomerScore) any { return int64(c.Recency) }},
	"Last_Purchase_Date":             {TypeTime, func(c *CustomerScore) any { return c.LastPurchaseDate }},
	"First_Purchase_Date":            {TypeTime, func(c *CustomerScore) any { return c.FirstPurchaseDate }},
	"Customer_Age_Days":              {TypeInt, func(c *CustomerScore) any { return int64(c.CustomerAgeDays) }},
	"Frequency_Category":             {TypeString, func(c *CustomerScore) any { return c.FrequencyCategory }},
	"Monetary_Category":              {TypeString, func(c *CustomerScore) any { return c.MonetaryCategory }},
	"Recency_Category":               {TypeString, func(c *CustomerScore) any { return c.RecencyCategory }},
	"Days_Between_Purchases":         {TypeFloat, func(c *CustomerScore) any { return c.DaysBetweenPurchases }},
	"R_Score":                        {TypeInt, func(c *CustomerScore) any { return int64(c.RScore) }},
	"F_Score":                        {TypeInt, func(c *CustomerScore) any { return int64(c.FScore) }},
	"M_Score":                        {TypeInt, func(c *CustomerScore) any { return int64(c.MScore) }},
	"RFM_Score":                      {TypeInt, func(c *CustomerScore) any { return int64(c.RFMScore) }},
	"RFM_Segment":                    {TypeString, func(c *CustomerScore) any { return optString(c.RFMSegment) }},
	"Cluster":                        {TypeInt, clusterValue},
	"Cluster_Name":                   {TypeString, func(c *CustomerScore) any { return optString(c.ClusterName) }},
	"Is_Churned":                     {TypeBool, func(c *CustomerScore) any { return c.IsChurned }},
	"Churn_Probability":              {TypeFloat, func(c *CustomerScore) any { return floatPtr(c.ChurnProbability) }},
	"Churn_Risk_Level":               {TypeString, func(c *CustomerScore) any { return optString(c.ChurnRiskLevel) }},
	"Predicted_CLV":                  {TypeFloat, func(c *CustomerScore) any { return floatPtr(c.PredictedCLV) }},
	"CLV_6_Month":                    {TypeFloat, func(c *CustomerScore) any { return floatPtr(c.CLV6Month) }},
	"CLV_Category":                   {TypeString, func(c *CustomerScore) any { return optString(c.CLVCategory) }},
	"Expected_Days_To_Next_Purchase": {TypeFloat, func(c *CustomerScore) any { return c.ExpectedDaysToNextPurchase }},
	"Days_Overdue":                   {TypeFloat, func(c *CustomerScore) any { return c.DaysOverdue }},
	"Purchase_Timing_Status":         {TypeString, func(c *CustomerScore) any { return optString(c.PurchaseTimingStatus) }},
	"Purchase_Probability_30_Days":   {TypeFloat, func(c *CustomerScore) any { return c.PurchaseProbability30Days }},
	"Customer_Value_Score":           {TypeFloat, func(c *CustomerScore) any { return floatPtr(c.CustomerValueScore) }},
	"Customer_Priority":              {TypeString, func(c *CustomerScore) any { return optString(c.CustomerPriority) }},
}

func clusterValue(c *CustomerScore) any {
	if c.Cluster == nil {
		return nil
	}
	return int64(*c.Cluster)
}

// Feature columns precede the Category_* block; stage columns follow it.
var (
	scoreFeatureColumns = []string{
		"Customer_ID", "Customer_Type", "Monetary", "Frequency", "Avg_Order_Value",
		"Purchase_Rate", "Total_Items_Sold", "Recency", "Last_Purchase_Date",
		"First_Purchase_Date", "Customer_Age_Days", "Frequency_Category",
		"Monetary_Category", "Recency_Category",
	}
	scoreStageColumns = []string{
		"Days_Between_Purchases", "R_Score", "F_Score", "M_Score", "RFM_Score",
		"RFM_Segment", "Cluster", "Cluster_Name", "Is_Churned", "Churn_Probability",
		"Churn_Risk_Level", "Predicted_CLV", "CLV_6_Month", "CLV_Category",
		"Expected_Days_To_Next_Purchase", "Days_Overdue", "Purchase_Timing_Status",
		"Purchase_Probability_30_Days", "Customer_Value_Score", "Customer_Priority",
	}
)

// ScoredCustomersTable renders the full scored customer table.
func ScoredCustomersTable(ct *CustomerTable) *Table {
	t := &Table{Name: TableScoredCustomers}
	for _, name := range scoreFeatureColumns {
		t.Columns = append(t.Columns, Column{Name: name, Type: scoreColumns[name].typ})
	}
	for _, cat := range ct.CategoryNames {
		t.Columns = append(t.Columns, Column{Name: CategoryColumn(cat), Type: TypeInt})
	}
	for _, name := range scoreStageColumns {
		t.Columns = append(t.Columns, Column{Name: name, Type: scoreColumns[name].typ})
	}

	t.Rows = make([][]any, len(ct.Rows))
	for i := range ct.Rows {
		row := &ct.Rows[i]
		vals := make([]any, 0, len(t.Columns))
		for _, name := range scoreFeatureColumns {
			vals = append(vals, scoreColumns[name].get(row))
		}
		for _, cat := range ct.CategoryNames {
			vals = append(vals, int64(row.CategoryCount(cat)))
		}
		for _, name := range scoreStageColumns {
			vals = append(vals, scoreColumns[name].get(row))
		}
		t.Rows[i] = vals
	}
	return t
}

// ProjectCustomers renders the named columns of a customer subset.
func ProjectCustomers(name string, rows []CustomerScore, columns ...string) (*Table, error) {
	t := &Table{Name: name}
	getters := make([]func(*CustomerScore) any, len(columns))
	for i, col := range columns {
		sc, ok := scoreColumns[col]
		if !ok {
			return nil, fmt.Errorf("table %s: unknown column %q", name, col)
		}
		t.Columns = append(t.Columns, Column{Name: col, Type: sc.typ})
		getters[i] = sc.get
	}

	t.Rows = make([][]any, len(rows))
	for i := range rows {
		vals := make([]any, len(getters))
		for j, get := range getters {
			vals[j] = get(&rows[i])
		}
		t.Rows[i] = vals
	}
	return t, nil
}

// RecommendationsTable renders recommendations under the given table name.
func RecommendationsTable(name string, recs []Recommendation) *Table {
	t := &Table{
		Name: name,
		Columns: []Column{
			{"Customer_ID", TypeString},
			{"Recommended_Category", TypeString},
			{"Confidence", TypeFloat},
			{"Reason", TypeString},
		},
		Rows: make([][]any, len(recs)),
	}
	for i, r := range recs {
		t.Rows[i] = []any{r.CustomerID, r.RecommendedCategory, r.Confidence, r.Reason}
	}
	return t
}

// AssociationRulesTable renders mined rules.
func AssociationRulesTable(rules []AssociationRule) *Table {
	t := &Table{
		Name: TableAssociationRules,
		Columns: []Column{
			{"Antecedent", TypeString},
			{"Consequent", TypeString},
			{"Support", TypeFloat},
			{"Confidence", TypeFloat},
			{"Lift", TypeFloat},
		},
		Rows: make([][]any, len(rules)),
	}
	for i, r := range rules {
		t.Rows[i] = []any{r.Antecedent, r.Consequent, r.Support, r.Confidence, r.Lift}
	}
	return t
}

// CrossSellTable renders cross-sell opportunities.
func CrossSellTable(items []CrossSell) *Table {
	t := &Table{
		Name: TableCrossSell,
		Columns: []Column{
			{"Customer_ID", TypeString},
			{"RFM_Segment", TypeString},
			{"Current_Categories", TypeInt},
			{"Predicted_CLV", TypeFloat},
			{"Recommended_Category", TypeString},
			{"Confidence", TypeFloat},
			{"Potential_Value", TypeFloat},
		},
		Rows: make([][]any, len(items)),
	}
	for i, c := range items {
		t.Rows[i] = []any{
			c.CustomerID, c.RFMSegment, int64(c.CurrentCategories), c.PredictedCLV,
			c.RecommendedCategory, c.Confidence, c.PotentialValue,
		}
	}
	return t
}

// GroupSummaryTable renders segment or cluster summaries. groupColumn is
// RFM_Segment or Cluster_Name.
func GroupSummaryTable(name, groupColumn string, groups []GroupSummary) *Table {
	t := &Table{
		Name: name,
		Columns: []Column{
			{groupColumn, TypeString},
			{"Customer_ID_count", TypeInt},
			{"Monetary_sum", TypeFloat},
			{"Monetary_mean", TypeFloat},
			{"Monetary_std", TypeFloat},
			{"Frequency_mean", TypeFloat},
			{"Recency_mean", TypeFloat},
			{"Avg_Order_Value_mean", TypeFloat},
			{"Purchase_Rate_mean", TypeFloat},
			{"Customer_Age_Days_mean", TypeFloat},
		},
		Rows: make([][]any, len(groups)),
	}
	for i, g := range groups {
		t.Rows[i] = []any{
			g.Group, int64(g.Count), g.MonetarySum, g.MonetaryMean, g.MonetaryStd,
			g.FrequencyMean, g.RecencyMean, g.AvgOrderValueMean, g.PurchaseRateMean,
			g.CustomerAgeDaysMean,
		}
	}
	return t
}

// ModelSummaryTable renders one row per trained model. Training time is
// left to the run report so equal inputs give equal tables.
func ModelSummaryTable(models []ModelSummary) *Table {
	t := &Table{
		Name: TableModelSummary,
		Columns: []Column{
			{"Model", TypeString},
			{"Version", TypeInt},
			{"Metrics", TypeString},
			{"Training_Samples", TypeInt},
			{"Test_Samples", TypeInt},
			{"Features_Used", TypeInt},
			{"Top_Features", TypeString},
		},
		Rows: make([][]any, len(models)),
	}
	for i, m := range models {
		t.Rows[i] = []any{
			m.Model, int64(m.Version), formatMetrics(m.Metrics), int64(m.TrainingSamples),
			int64(m.TestSamples), int64(m.FeaturesUsed), formatImportances(m.TopFeatures),
		}
	}
	return t
}

// MetricTable renders a two-column Metric/Value table.
func MetricTable(name string, metrics [][2]string) *Table {
	t := &Table{
		Name:    name,
		Columns: []Column{{"Metric", TypeString}, {"Value", TypeString}},
		Rows:    make([][]any, len(metrics)),
	}
	for i, m := range metrics {
		t.Rows[i] = []any{m[0], m[1]}
	}
	return t
}

// ImpactSummaryTable renders the prediction impact summary.
func ImpactSummaryTable(s ImpactSummary) *Table {
	return MetricTable(TableImpactSummary, [][2]string{
		{"Total Customers", fmt.Sprintf("%d", s.TotalCustomers)},
		{"Churned Customers", fmt.Sprintf("%d (%.1f%%)", s.ChurnedCustomers, s.ChurnedShare*100)},
		{"High Risk Customers", fmt.Sprintf("%d", s.HighRiskCustomers)},
		{"Total Predicted CLV", fmt.Sprintf("%.2f", s.TotalPredictedCLV)},
		{"High Value Customers (Top 10%)", fmt.Sprintf("%d", s.HighValueCustomers)},
		{"Due Soon Customers", fmt.Sprintf("%d", s.DueSoonCustomers)},
		{"Critical Priority Customers", fmt.Sprintf("%d", s.CriticalCustomers)},
	})
}

// RecommendationSummaryTable renders the recommendation summary.
func RecommendationSummaryTable(s RecommendationSummary) *Table {
	top := s.TopRecommendedCategory
	if top == "" {
		top = "N/A"
	}
	return MetricTable(TableRecSummary, [][2]string{
		{"Total Customers Analyzed", fmt.Sprintf("%d", s.CustomersAnalyzed)},
		{"Customers with Recommendations", fmt.Sprintf("%d", s.CustomersWithRecs)},
		{"Total Recommendations Generated", fmt.Sprintf("%d", s.TotalRecommendations)},
		{"Avg Recommendations per Customer", fmt.Sprintf("%.1f", s.AvgPerCustomer)},
		{"Unique Categories Recommended", fmt.Sprintf("%d", s.UniqueCategories)},
		{"Avg Recommendation Confidence", fmt.Sprintf("%.2f", s.AvgConfidence)},
		{"High Confidence Recs (>0.7)", fmt.Sprintf("%d (%.1f%%)", s.HighConfidenceCount, s.HighConfidenceShare*100)},
		{"Cross-sell Opportunities", fmt.Sprintf("%d", s.CrossSellOpportunities)},
		{"Product Association Rules", fmt.Sprintf("%d", s.AssociationRules)},
		{"Top Recommended Category", top},
	})
}

func formatMetrics(m map[string]float64) string {
	// Fixed order keeps output byte-identical across runs.
	order := []string{"accuracy", "auc", "r2", "mae", "rmse"}
	out := ""
	for _, k := range order {
		v, ok := m[k]
		if !ok {
			continue
		}
		if out != "" {
			out += "; "
		}
		out += fmt.Sprintf("%s=%.4f", k, v)
	}
	return out
}

func formatImportances(fi []FeatureImportance) string {
	out := ""
	for i, f := range fi {
		if i > 0 {
			out += "; "
		}
		out += fmt.Sprintf("%s=%.4f", f.Feature, f.Importance)
	}
	return out
}

// FormatTime renders a time cell the way every text sink does.
func FormatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format("2006-01-02 15:04:05")
}
