// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package models

import "time"

// GroupSummary aggregates one RFM segment or K-Means cluster.
type GroupSummary struct {
	Group               string  `json:"group"`
	Count               int     `json:"count"`
	MonetarySum         float64 `json:"monetary_sum"`
	MonetaryMean        float64 `json:"monetary_mean"`
	MonetaryStd         float64 `json:"monetary_std"` // Sample std-dev, 0 for single-member groups
	FrequencyMean       float64 `json:"frequency_mean"`
	RecencyMean         float64 `json:"recency_mean"`
	AvgOrderValueMean   float64 `json:"avg_order_value_mean"`
	PurchaseRateMean    float64 `json:"purchase_rate_mean"`
	CustomerAgeDaysMean float64 `json:"customer_age_days_mean"`
}

// KEvaluation is one point of the elbow/silhouette report.
type KEvaluation struct {
	K          int     `json:"k"`
	Inertia    float64 `json:"inertia"`
	Silhouette float64 `json:"silhouette"`
}

// FeatureImportance is a model feature and its share of total split gain.
type FeatureImportance struct {
	Feature    string  `json:"feature"`
	Importance float64 `json:"importance"`
}

// ModelSummary describes one trained predictor.
type ModelSummary struct {
	Model            string              `json:"model"`
	Version          int                 `json:"version,omitempty"`
	Checksum         string              `json:"checksum,omitempty"`
	Metrics          map[string]float64  `json:"metrics"`
	TrainingSamples  int                 `json:"training_samples"`
	TestSamples      int                 `json:"test_samples"`
	FeaturesUsed     int                 `json:"features_used"`
	TopFeatures      []FeatureImportance `json:"top_features"`
	TrainingDuration time.Duration       `json:"training_duration"`
}

// ImpactSummary is the prediction impact summary.
type ImpactSummary struct {
	TotalCustomers     int     `json:"total_customers"`
	ChurnedCustomers   int     `json:"churned_customers"`
	ChurnedShare       float64 `json:"churned_share"`
	HighRiskCustomers  int     `json:"high_risk_customers"`
	TotalPredictedCLV  float64 `json:"total_predicted_clv"`
	HighValueCustomers int     `json:"high_value_customers"`
	DueSoonCustomers   int     `json:"due_soon_customers"`
	CriticalCustomers  int     `json:"critical_priority_customers"`
}
