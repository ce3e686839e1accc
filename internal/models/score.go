// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package models

import "time"

// RFM segment labels, in decision-table order.
const (
	SegmentChampions      = "Champions"
	SegmentLoyal          = "Loyal Customers"
	SegmentBigSpenders    = "Big Spenders"
	SegmentPromising      = "Promising"
	SegmentNeedsAttention = "Needs Attention"
	SegmentAboutToSleep   = "About to Sleep"
	SegmentAtRisk         = "At Risk"
	SegmentCantLose       = "Can't Lose Them"
	SegmentHibernating    = "Hibernating"
	SegmentLost           = "Lost"
)

// Churn risk levels.
const (
	RiskLow      = "Low"
	RiskMedium   = "Medium"
	RiskHigh     = "High"
	RiskCritical = "Critical"
)

// CLV categories.
const (
	CLVVeryHigh = "Very High Value"
	CLVHigh     = "High Value"
	CLVMedium   = "Medium Value"
	CLVLow      = "Low Value"
	CLVVeryLow  = "Very Low Value"
)

// Purchase timing statuses.
const (
	TimingNewOneTime      = "New/One-time"
	TimingDueSoon         = "Due Soon"
	TimingOnTrack         = "On Track"
	TimingSlightlyOverdue = "Slightly Overdue"
	TimingOverdue         = "Overdue"
	TimingSeverelyOverdue = "Severely Overdue"
)

// Customer priorities.
const (
	PriorityCritical = "Critical"
	PriorityHigh     = "High"
	PriorityMedium   = "Medium"
	PriorityLow      = "Low"
)

// CustomerScore is the scored customer row. Stage 1 fills the features,
// later stages append their columns. Predictor outputs are pointers so a
// failed or skipped model leaves them null instead of zero.
type CustomerScore struct {
	// Stage 1: features
	CustomerID           string         `csv:"Customer_ID" json:"Customer_ID" validate:"required"`
	CustomerType         string         `csv:"Customer_Type" json:"Customer_Type"`
	Monetary             float64        `csv:"Monetary" json:"Monetary" validate:"gte=0"`
	Frequency            int            `csv:"Frequency" json:"Frequency" validate:"gte=0"`
	AvgOrderValue        float64        `csv:"Avg_Order_Value" json:"Avg_Order_Value"`
	PurchaseRate         float64        `csv:"Purchase_Rate" json:"Purchase_Rate" validate:"gte=0"`
	TotalItemsSold       int            `csv:"Total_Items_Sold" json:"Total_Items_Sold" validate:"gte=0"`
	Recency              int            `csv:"Recency" json:"Recency" validate:"gte=0"`
	LastPurchaseDate     time.Time      `csv:"Last_Purchase_Date" json:"Last_Purchase_Date"`
	FirstPurchaseDate    time.Time      `csv:"First_Purchase_Date" json:"First_Purchase_Date"`
	CustomerAgeDays      int            `csv:"Customer_Age_Days" json:"Customer_Age_Days" validate:"gte=0"`
	FrequencyCategory    string         `csv:"Frequency_Category" json:"Frequency_Category" validate:"required"`
	MonetaryCategory     string         `csv:"Monetary_Category" json:"Monetary_Category" validate:"required"`
	RecencyCategory      string         `csv:"Recency_Category" json:"Recency_Category" validate:"required"`
	DaysBetweenPurchases float64        `csv:"Days_Between_Purchases" json:"Days_Between_Purchases" validate:"gte=0"`
	Categories           map[string]int `csv:"-" json:"categories"` // Category name -> purchase count

	// Stage 2: segmentation
	RScore      int    `csv:"R_Score" json:"R_Score" validate:"omitempty,min=1,max=5"`
	FScore      int    `csv:"F_Score" json:"F_Score" validate:"omitempty,min=1,max=5"`
	MScore      int    `csv:"M_Score" json:"M_Score" validate:"omitempty,min=1,max=5"`
	RFMScore    int    `csv:"RFM_Score" json:"RFM_Score" validate:"omitempty,min=3,max=15"`
	RFMSegment  string `csv:"RFM_Segment" json:"RFM_Segment"`
	Cluster     *int   `csv:"Cluster" json:"Cluster,omitempty" validate:"omitempty,gte=0"`
	ClusterName string `csv:"Cluster_Name" json:"Cluster_Name"`

	// Stage 3: prediction
	IsChurned                  bool     `csv:"Is_Churned" json:"Is_Churned"`
	ChurnProbability           *float64 `csv:"Churn_Probability" json:"Churn_Probability,omitempty" validate:"omitempty,gte=0,lte=1"`
	ChurnRiskLevel             string   `csv:"Churn_Risk_Level" json:"Churn_Risk_Level"`
	PredictedCLV               *float64 `csv:"Predicted_CLV" json:"Predicted_CLV,omitempty" validate:"omitempty,gte=0"`
	CLV6Month                  *float64 `csv:"CLV_6_Month" json:"CLV_6_Month,omitempty" validate:"omitempty,gte=0"`
	CLVCategory                string   `csv:"CLV_Category" json:"CLV_Category"`
	ExpectedDaysToNextPurchase float64  `csv:"Expected_Days_To_Next_Purchase" json:"Expected_Days_To_Next_Purchase" validate:"gte=0"`
	DaysOverdue                float64  `csv:"Days_Overdue" json:"Days_Overdue" validate:"gte=0"`
	PurchaseTimingStatus       string   `csv:"Purchase_Timing_Status" json:"Purchase_Timing_Status"`
	PurchaseProbability30Days  float64  `csv:"Purchase_Probability_30_Days" json:"Purchase_Probability_30_Days" validate:"gte=0,lte=1"`
	CustomerValueScore         *float64 `csv:"Customer_Value_Score" json:"Customer_Value_Score,omitempty" validate:"omitempty,gte=0,lte=100"`
	CustomerPriority           string   `csv:"Customer_Priority" json:"Customer_Priority"`
}

// CustomerTable is the scored customer table. CategoryNames lists the
// Category_* columns in output order (sorted by name).
type CustomerTable struct {
	Rows          []CustomerScore `json:"rows"`
	CategoryNames []string        `json:"category_names"`
	AnalysisDate  time.Time       `json:"analysis_date"` // max transaction date
}

// CategoryColumn returns the output column name for a category.
func CategoryColumn(name string) string {
	return "Category_" + name
}

// CategoryCount returns the purchase count for a category, 0 when absent.
func (c *CustomerScore) CategoryCount(name string) int {
	return c.Categories[name]
}

// DistinctCategories returns how many categories the customer bought.
func (c *CustomerScore) DistinctCategories() int {
	n := 0
	for _, v := range c.Categories {
		if v > 0 {
			n++
		}
	}
	return n
}
