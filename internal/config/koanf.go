// Cultivar - Customer Intelligence and Recommendation Pipeline
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cultivar

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"cultivar.yaml",
	"cultivar.yml",
	"/etc/cultivar/config.yaml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CULTIVAR_CONFIG"

// EnvPrefix is the prefix for configuration environment variables.
// CULTIVAR_RECOMMEND__TOP_N maps to recommend.top_n.
const EnvPrefix = "CULTIVAR_"

// defaultConfig returns a Config struct with all default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Seed: 42,
		Input: InputConfig{
			TransactionsPath:  "",
			CustomersPath:     "",
			TransactionsTable: "transactions",
			CustomersTable:    "customers",
		},
		Output: OutputConfig{
			Dir:            "output",
			XLSX:           false,
			DuckDBPath:     "",
			PostgresURL:    "",
			PostgresSchema: "public",
			ModelDir:       "",
			KeepModels:     3,
		},
		Segment: SegmentConfig{
			Clusters:             5,
			Inits:                10,
			MaxIterations:        300,
			Tolerance:            1e-4,
			EvaluateMinK:         2,
			EvaluateMaxK:         10,
			SilhouetteSampleSize: 2000,
		},
		Predict: PredictConfig{
			ChurnThresholdDays: 90,
			TestFraction:       0.2,
			Trees:              100,
			LearningRate:       0.1,
			MaxDepth:           5,
			Subsample:          0.8,
			MinSamplesSplit:    2,
			MinSamplesLeaf:     1,
		},
		Recommend: RecommendConfig{
			TargetCustomers:        1000,
			Neighbors:              20,
			CandidatesPerMethod:    10,
			TopN:                   5,
			CollaborativeWeight:    0.3,
			AssociationWeight:      0.7,
			ConfidenceCap:          5.0,
			MinSupport:             0.01,
			MinConfidence:          0.1,
			CrossSellMaxCategories: 3,
			CrossSellUplift:        0.2,
			Workers:                0, // 0 = use runtime.NumCPU()
		},
		Cache: CacheConfig{
			Backend: "memory",
			Dir:     ".cultivar-cache",
			TTL:     time.Hour,
		},
		Schedule: ScheduleConfig{
			Interval:         24 * time.Hour,
			RunOnStart:       true,
			FailureThreshold: 5.0,
			FailureBackoff:   15 * time.Second,
			ShutdownTimeout:  10 * time.Second,
		},
		Metrics: MetricsConfig{
			TextfilePath: "",
			Addr:         "",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
			Caller: false,
		},
	}
}

// Default returns the built-in configuration without reading any file or
// environment variable. Tests and the generate command use it directly.
func Default() *Config {
	return defaultConfig()
}

// Load loads configuration from defaults, an optional YAML file and the
// environment, then validates it.
//
// path may be empty, in which case CULTIVAR_CONFIG and DefaultConfigPaths are
// searched. An explicit path that does not exist is an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath, err := findConfigFile(path)
	if err != nil {
		return nil, err
	}
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	if err := k.Load(env.Provider(EnvPrefix, ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile resolves the config file to read.
// Returns empty string when no file is configured or found.
func findConfigFile(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicit, err)
		}
		return explicit, nil
	}

	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath, nil
		}
	}

	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}

	return "", nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - CULTIVAR_SEED -> seed
//   - CULTIVAR_RECOMMEND__TOP_N -> recommend.top_n
//   - CULTIVAR_OUTPUT__POSTGRES_URL -> output.postgres_url
//   - CULTIVAR_CONFIG -> "" (skipped, handled by findConfigFile)
func envTransformFunc(key string) string {
	key = strings.ToLower(strings.TrimPrefix(key, EnvPrefix))
	if key == "config" {
		return ""
	}
	return strings.ReplaceAll(key, "__", ".")
}
