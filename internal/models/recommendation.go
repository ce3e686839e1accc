// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package models

// Recommendation method tags used in Reason.
const (
	MethodCollaborative = "Collaborative"
	MethodAssociation   = "Association"
)

// Recommendation is one ranked category recommendation for a customer.
type Recommendation struct {
	CustomerID          string  `csv:"Customer_ID" json:"Customer_ID" validate:"required"`
	RecommendedCategory string  `csv:"Recommended_Category" json:"Recommended_Category" validate:"required"`
	Confidence          float64 `csv:"Confidence" json:"Confidence" validate:"gte=0,lte=1"`
	Reason              string  `csv:"Reason" json:"Reason" validate:"required"`
	Score               float64 `csv:"-" json:"-"` // Blended score before capping
}

// AssociationRule is a directional category rule A -> B.
type AssociationRule struct {
	Antecedent string  `csv:"Antecedent" json:"Antecedent" validate:"required"`
	Consequent string  `csv:"Consequent" json:"Consequent" validate:"required,nefield=Antecedent"`
	Support    float64 `csv:"Support" json:"Support" validate:"gt=0,lte=1"`
	Confidence float64 `csv:"Confidence" json:"Confidence" validate:"gt=0,lte=1"`
	Lift       float64 `csv:"Lift" json:"Lift" validate:"gt=0"`
}

// CrossSell is a cross-sell opportunity for a narrow-basket, high-CLV customer.
type CrossSell struct {
	CustomerID          string  `csv:"Customer_ID" json:"Customer_ID" validate:"required"`
	RFMSegment          string  `csv:"RFM_Segment" json:"RFM_Segment"`
	CurrentCategories   int     `csv:"Current_Categories" json:"Current_Categories" validate:"gte=0"`
	PredictedCLV        float64 `csv:"Predicted_CLV" json:"Predicted_CLV" validate:"gte=0"`
	RecommendedCategory string  `csv:"Recommended_Category" json:"Recommended_Category" validate:"required"`
	Confidence          float64 `csv:"Confidence" json:"Confidence" validate:"gte=0,lte=1"`
	PotentialValue      float64 `csv:"Potential_Value" json:"Potential_Value" validate:"gte=0"`
}

// RecommendationSummary aggregates one recommendation run.
type RecommendationSummary struct {
	CustomersAnalyzed      int     `json:"customers_analyzed"`
	CustomersTargeted      int     `json:"customers_targeted"`
	CustomersWithRecs      int     `json:"customers_with_recommendations"`
	TotalRecommendations   int     `json:"total_recommendations"`
	AvgPerCustomer         float64 `json:"avg_recommendations_per_customer"`
	UniqueCategories       int     `json:"unique_categories_recommended"`
	AvgConfidence          float64 `json:"avg_confidence"`
	HighConfidenceCount    int     `json:"high_confidence_count"` // Confidence > 0.7
	HighConfidenceShare    float64 `json:"high_confidence_share"`
	CrossSellOpportunities int     `json:"cross_sell_opportunities"`
	AssociationRules       int     `json:"association_rules"`
	TopRecommendedCategory string  `json:"top_recommended_category"`
}
