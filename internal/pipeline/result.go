// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package pipeline

import (
	"time"

	"github.com/tomtom215/cultivar/internal/features"
	"github.com/tomtom215/cultivar/internal/ingest"
	"github.com/tomtom215/cultivar/internal/metrics"
	"github.com/tomtom215/cultivar/internal/models"
	"github.com/tomtom215/cultivar/internal/segment"
)

// Stage names, in execution order.
const (
	StageLoad      = "load"
	StageFeatures  = "features"
	StageSegment   = "segment"
	StagePredict   = "predict"
	StageRecommend = "recommend"
	StageExport    = "export"
)

// Status is the outcome of a stage or sink.
type Status string

const (
	StatusOK      Status = metrics.StatusOK
	StatusFailed  Status = metrics.StatusFailed
	StatusSkipped Status = metrics.StatusSkipped
)

// StageResult records one stage execution.
type StageResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Rows     int           `json:"rows"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
	// Warnings lists degraded sub-steps of a stage that otherwise succeeded,
	// such as a predictor that could not train.
	Warnings []string `json:"warnings,omitempty"`
}

// SinkResult records one sink write.
type SinkResult struct {
	Name     string        `json:"name"`
	Status   Status        `json:"status"`
	Duration time.Duration `json:"duration"`
	Error    string        `json:"error,omitempty"`
}

// TableCount is the row count of one output table.
type TableCount struct {
	Name string `json:"name"`
	Rows int    `json:"rows"`
}

// Result describes one pipeline run. It is returned even when Run fails,
// with the stages that ran so far. The untagged fields carry the in-memory
// outputs and are not part of the run report.
type Result struct {
	RunID        string        `json:"run_id"`
	StartedAt    time.Time     `json:"started_at"`
	FinishedAt   time.Time     `json:"finished_at"`
	Duration     time.Duration `json:"duration"`
	Fingerprint  string        `json:"fingerprint,omitempty"`
	AnalysisDate time.Time     `json:"analysis_date"`
	Error        string        `json:"error,omitempty"`

	Stages []StageResult `json:"stages"`
	Sinks  []SinkResult  `json:"sinks,omitempty"`
	Tables []TableCount  `json:"tables,omitempty"`

	Load            *ingest.LoadStats             `json:"load,omitempty"`
	Features        *features.Stats               `json:"features,omitempty"`
	Segmentation    *segment.Result               `json:"segmentation,omitempty"`
	Models          []models.ModelSummary         `json:"models,omitempty"`
	Impact          *models.ImpactSummary         `json:"impact,omitempty"`
	Recommendations *models.RecommendationSummary `json:"recommendations,omitempty"`

	Customers       *models.CustomerTable    `json:"-"`
	Recommended     []models.Recommendation  `json:"-"`
	Rules           []models.AssociationRule `json:"-"`
	CrossSell       []models.CrossSell       `json:"-"`
	OutputTables    []*models.Table          `json:"-"`
	ReportPath      string                   `json:"-"`
	MetricsTextfile string                   `json:"-"`
}

// Stage returns the result of the named stage, or nil if it never ran.
func (r *Result) Stage(name string) *StageResult {
	for i := range r.Stages {
		if r.Stages[i].Name == name {
			return &r.Stages[i]
		}
	}
	return nil
}

// OK reports whether every stage and sink succeeded or was skipped.
func (r *Result) OK() bool {
	for _, s := range r.Stages {
		if s.Status == StatusFailed {
			return false
		}
	}
	for _, s := range r.Sinks {
		if s.Status == StatusFailed {
			return false
		}
	}
	return true
}
