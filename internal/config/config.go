// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package config

import "time"

// Config holds all application configuration.
//
// Configuration Loading Order (Koanf v2):
//  1. Defaults: built-in values reproducing the reference pipeline
//  2. Config File: optional YAML file (cultivar.yaml)
//  3. Environment Variables: CULTIVAR_SECTION__KEY overrides
//  4. CLI flags, applied by the caller after Load
//
// Config is immutable after Load() and safe for concurrent read access.
type Config struct {
	// Seed drives every randomized component (K-Means initialisation,
	// train/test splits, tree subsampling, synthetic data).
	Seed int64 `koanf:"seed" validate:"gte=0"`

	Input     InputConfig     `koanf:"input"`
	Output    OutputConfig    `koanf:"output"`
	Segment   SegmentConfig   `koanf:"segment"`
	Predict   PredictConfig   `koanf:"predict"`
	Recommend RecommendConfig `koanf:"recommend"`
	Cache     CacheConfig     `koanf:"cache"`
	Schedule  ScheduleConfig  `koanf:"schedule"`
	Metrics   MetricsConfig   `koanf:"metrics"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// InputConfig locates the input snapshot.
//
// The source type is chosen from the file extension: .csv, .xlsx, or
// .duckdb/.db (tables named by TransactionsTable/CustomersTable).
type InputConfig struct {
	TransactionsPath  string `koanf:"transactions_path"`
	CustomersPath     string `koanf:"customers_path"` // Optional: derived from transactions when empty
	TransactionsTable string `koanf:"transactions_table" validate:"required"`
	CustomersTable    string `koanf:"customers_table" validate:"required"`
}

// OutputConfig selects the sinks for the output tables.
type OutputConfig struct {
	Dir            string `koanf:"dir" validate:"required"`
	XLSX           bool   `koanf:"xlsx"`
	DuckDBPath     string `koanf:"duckdb_path"`  // Optional: DuckDB sink
	PostgresURL    string `koanf:"postgres_url"` // Optional: PostgreSQL sink
	PostgresSchema string `koanf:"postgres_schema" validate:"required"`
	ModelDir       string `koanf:"model_dir"` // Optional: persist trained models
	KeepModels     int    `koanf:"keep_models" validate:"gte=1"`
}

// SegmentConfig tunes K-Means. The cluster count is a business choice and is
// not optimized programmatically.
type SegmentConfig struct {
	Clusters             int     `koanf:"clusters" validate:"gte=1"`
	Inits                int     `koanf:"inits" validate:"gte=1"`
	MaxIterations        int     `koanf:"max_iterations" validate:"gte=1"`
	Tolerance            float64 `koanf:"tolerance" validate:"gte=0"`
	EvaluateMinK         int     `koanf:"evaluate_min_k" validate:"gte=2"`
	EvaluateMaxK         int     `koanf:"evaluate_max_k" validate:"gtefield=EvaluateMinK"`
	SilhouetteSampleSize int     `koanf:"silhouette_sample_size" validate:"gte=0"`
}

// PredictConfig holds the churn rule and gradient boosting hyper-parameters
// shared by the churn and CLV models.
type PredictConfig struct {
	ChurnThresholdDays int     `koanf:"churn_threshold_days" validate:"gte=1"`
	TestFraction       float64 `koanf:"test_fraction" validate:"gt=0,lt=1"`
	Trees              int     `koanf:"trees" validate:"gte=1"`
	LearningRate       float64 `koanf:"learning_rate" validate:"gt=0,lte=1"`
	MaxDepth           int     `koanf:"max_depth" validate:"gte=1,lte=16"`
	Subsample          float64 `koanf:"subsample" validate:"gt=0,lte=1"`
	MinSamplesSplit    int     `koanf:"min_samples_split" validate:"gte=2"`
	MinSamplesLeaf     int     `koanf:"min_samples_leaf" validate:"gte=1"`
}

// RecommendConfig holds the recommendation engine parameters. The blend
// weights, confidence cap and cross-sell uplift are fixed business
// assumptions kept configurable.
type RecommendConfig struct {
	TargetCustomers        int     `koanf:"target_customers" validate:"gte=0"`
	Neighbors              int     `koanf:"neighbors" validate:"gte=1"`
	CandidatesPerMethod    int     `koanf:"candidates_per_method" validate:"gte=1"`
	TopN                   int     `koanf:"top_n" validate:"gte=1"`
	CollaborativeWeight    float64 `koanf:"collaborative_weight" validate:"gte=0,lte=1"`
	AssociationWeight      float64 `koanf:"association_weight" validate:"gte=0,lte=1"`
	ConfidenceCap          float64 `koanf:"confidence_cap" validate:"gt=0"`
	MinSupport             float64 `koanf:"min_support" validate:"gte=0,lte=1"`
	MinConfidence          float64 `koanf:"min_confidence" validate:"gte=0,lte=1"`
	CrossSellMaxCategories int     `koanf:"cross_sell_max_categories" validate:"gte=1"`
	CrossSellUplift        float64 `koanf:"cross_sell_uplift" validate:"gte=0"`
	Workers                int     `koanf:"workers" validate:"gte=0"` // 0 = runtime.NumCPU()
}

// CacheConfig selects the snapshot cache backend.
type CacheConfig struct {
	Backend string        `koanf:"backend" validate:"oneof=none memory badger"`
	Dir     string        `koanf:"dir"`
	TTL     time.Duration `koanf:"ttl" validate:"gte=0"`
}

// ScheduleConfig controls the supervised periodic runner.
type ScheduleConfig struct {
	Interval         time.Duration `koanf:"interval" validate:"gt=0"`
	RunOnStart       bool          `koanf:"run_on_start"`
	FailureThreshold float64       `koanf:"failure_threshold" validate:"gt=0"`
	FailureBackoff   time.Duration `koanf:"failure_backoff" validate:"gt=0"`
	ShutdownTimeout  time.Duration `koanf:"shutdown_timeout" validate:"gt=0"`
}

// MetricsConfig controls run metrics export.
type MetricsConfig struct {
	// TextfilePath writes Prometheus text format after each run when set,
	// for pickup by node_exporter's textfile collector.
	TextfilePath string `koanf:"textfile_path"`

	// Addr serves /metrics and /healthz while the scheduler runs
	// (e.g. "127.0.0.1:9464"). Empty disables the listener.
	Addr string `koanf:"addr"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `koanf:"level" validate:"oneof=trace debug info warn error"`
	Format string `koanf:"format" validate:"oneof=json console"`
	Caller bool   `koanf:"caller"`
}
