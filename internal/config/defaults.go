package config

import (
	"github.com/mrz1836/compass/internal/constants"
)

// DefaultConfig returns a new Config with sensible default values.
// These defaults are used as the base layer that can be overridden by
// config files and environment variables.
func DefaultConfig() *Config {
	return &Config{
		Decompose: DecomposeConfig{
			// Hybrid combines parallel phases with sequential chaining and
			// is the right default for most goals.
			DefaultStrategy: string(constants.StrategyHybrid),

			// DepthLimit: 3 keeps hierarchical graphs readable while still
			// splitting compound goals meaningfully.
			DepthLimit: constants.DefaultDepthLimit,
		},
		Planner: PlannerConfig{
			// FailureRateThreshold: above 30% failures the remaining graph
			// is usually worth regenerating.
			FailureRateThreshold: constants.DefaultFailureRateThreshold,

			// MinSampleSize: 3 avoids replanning on a single unlucky task.
			MinSampleSize: constants.DefaultMinSampleSize,

			// MaxReplans: 3 bounds the regenerate-and-retry loop.
			MaxReplans: constants.DefaultMaxReplans,

			// MaxConcurrent: 4 concurrent dispatches balances throughput
			// against executor pressure.
			MaxConcurrent: constants.DefaultMaxConcurrent,
		},
		Decision: DecisionConfig{
			// Band boundaries per the escalation policy: >0.80 auto-executes,
			// <0.50 always goes to a human.
			HighThreshold: constants.HighConfidenceThreshold,
			LowThreshold:  constants.LowConfidenceThreshold,
		},
		Trial: TrialConfig{
			// MaxAttempts: 4 gives three retries after the original attempt.
			MaxAttempts: constants.DefaultMaxAttempts,

			// BaseBackoff: 1s doubling per attempt (1s, 2s, 4s).
			BaseBackoff: constants.DefaultBaseBackoff,
		},
		Insights: InsightsConfig{
			// Insights are advisory and on by default; MaxAdjustment keeps
			// them from overwhelming configured scores.
			Enabled:       true,
			MaxAdjustment: 0.10,
		},
	}
}
