// Package config provides configuration management for COMPASS with layered precedence.
//
// Configuration sources are loaded in the following order (highest precedence first):
//  1. Environment variables (COMPASS_* prefix)
//  2. Project config (.compass/config.yaml)
//  3. Global config (~/.compass/config.yaml)
//  4. Built-in defaults
//
// Each higher level completely overrides the lower level for the same key.
//
// All tunable thresholds of the core live here: the failure-rate trigger,
// confidence bands, retry budget, and insight usage are configuration values
// with built-in defaults, never hard-coded at call sites.
//
// IMPORTANT: This package may import internal/constants and internal/errors,
// but MUST NOT import internal/domain or other internal packages.
package config

import "time"

// Config is the root configuration structure for COMPASS.
// It contains all configuration sections for the planning core.
type Config struct {
	// Decompose contains settings for goal decomposition.
	Decompose DecomposeConfig `yaml:"decompose" mapstructure:"decompose"`

	// Planner contains settings for plan supervision and replanning.
	Planner PlannerConfig `yaml:"planner" mapstructure:"planner"`

	// Decision contains settings for the decision engine.
	Decision DecisionConfig `yaml:"decision" mapstructure:"decision"`

	// Trial contains settings for the trial-and-error engine.
	Trial TrialConfig `yaml:"trial" mapstructure:"trial"`

	// Insights contains settings for advisory insight usage.
	Insights InsightsConfig `yaml:"insights" mapstructure:"insights"`
}

// DecomposeConfig contains settings for goal decomposition.
type DecomposeConfig struct {
	// DefaultStrategy is the strategy used when the caller does not name one.
	// Valid values: "hierarchical", "sequential", "parallel", "hybrid".
	// Default: "hybrid"
	DefaultStrategy string `yaml:"default_strategy" mapstructure:"default_strategy"`

	// DepthLimit bounds recursive sub-goal splitting for the hierarchical
	// strategy.
	// Default: 3, Valid range: 1-10
	DepthLimit int `yaml:"depth_limit" mapstructure:"depth_limit"`
}

// PlannerConfig contains settings for plan supervision.
type PlannerConfig struct {
	// FailureRateThreshold is the failure rate above which an executing plan
	// triggers replanning.
	// Default: 0.30, Valid range: (0, 1)
	FailureRateThreshold float64 `yaml:"failure_rate_threshold" mapstructure:"failure_rate_threshold"`

	// MinSampleSize is the minimum number of attempted tasks before the
	// failure rate is evaluated.
	// Default: 3
	MinSampleSize int `yaml:"min_sample_size" mapstructure:"min_sample_size"`

	// MaxReplans bounds how many times one plan may replan before failing.
	// Default: 3
	MaxReplans int `yaml:"max_replans" mapstructure:"max_replans"`

	// MaxConcurrent limits how many ready tasks are dispatched concurrently.
	// Default: 4
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
}

// DecisionConfig contains settings for the decision engine.
type DecisionConfig struct {
	// HighThreshold is the exclusive lower bound for HIGH confidence.
	// Default: 0.80
	HighThreshold float64 `yaml:"high_threshold" mapstructure:"high_threshold"`

	// LowThreshold is the bound below which confidence is LOW and human
	// confirmation is forced.
	// Default: 0.50
	LowThreshold float64 `yaml:"low_threshold" mapstructure:"low_threshold"`

	// TuningFile is an optional YAML file with rule priority overrides.
	// Explicit tuning always beats insight adjustments.
	TuningFile string `yaml:"tuning_file,omitempty" mapstructure:"tuning_file"`
}

// TrialConfig contains settings for the trial-and-error engine.
type TrialConfig struct {
	// MaxAttempts is the attempt budget per task.
	// Default: 4, Valid range: 1-20
	MaxAttempts int `yaml:"max_attempts" mapstructure:"max_attempts"`

	// BaseBackoff is the delay before the second attempt; later delays
	// double each attempt.
	// Default: 1s
	BaseBackoff time.Duration `yaml:"base_backoff" mapstructure:"base_backoff"`

	// StorePath is the SQLite trial-history database path.
	// Empty selects the in-memory store.
	StorePath string `yaml:"store_path,omitempty" mapstructure:"store_path"`
}

// InsightsConfig contains settings for advisory insight usage.
// Insights never silently override explicit configuration: when disabled,
// confidence estimates and decision scores use their configured values only.
type InsightsConfig struct {
	// Enabled toggles insight-driven adjustment of decomposition confidence
	// and decision scores.
	// Default: true
	Enabled bool `yaml:"enabled" mapstructure:"enabled"`

	// MaxAdjustment bounds how far an insight may move a score or
	// confidence estimate in either direction.
	// Default: 0.10, Valid range: [0, 0.5]
	MaxAdjustment float64 `yaml:"max_adjustment" mapstructure:"max_adjustment"`
}
