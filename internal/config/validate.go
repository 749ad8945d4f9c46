package config

import (
	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/errors"
)

// Validate checks a Config for invalid or out-of-range values.
// It returns a wrapped sentinel error identifying the offending section.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errors.ErrConfigNil
	}

	if err := validateDecompose(&cfg.Decompose); err != nil {
		return err
	}
	if err := validatePlanner(&cfg.Planner); err != nil {
		return err
	}
	if err := validateDecision(&cfg.Decision); err != nil {
		return err
	}
	if err := validateTrial(&cfg.Trial); err != nil {
		return err
	}
	return validateInsights(&cfg.Insights)
}

func validateDecompose(c *DecomposeConfig) error {
	if !constants.Strategy(c.DefaultStrategy).Valid() {
		return errors.Wrapf(errors.ErrConfigInvalidDecompose,
			"unknown default_strategy %q", c.DefaultStrategy)
	}
	if c.DepthLimit < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidDecompose,
			"depth_limit must be at least 1, got %d", c.DepthLimit)
	}
	return nil
}

func validatePlanner(c *PlannerConfig) error {
	if c.FailureRateThreshold <= 0 || c.FailureRateThreshold >= 1 {
		return errors.Wrapf(errors.ErrConfigInvalidPlanner,
			"failure_rate_threshold must be in (0, 1), got %v", c.FailureRateThreshold)
	}
	if c.MinSampleSize < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidPlanner,
			"min_sample_size must be at least 1, got %d", c.MinSampleSize)
	}
	if c.MaxReplans < 0 {
		return errors.Wrapf(errors.ErrConfigInvalidPlanner,
			"max_replans cannot be negative, got %d", c.MaxReplans)
	}
	if c.MaxConcurrent < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidPlanner,
			"max_concurrent must be at least 1, got %d", c.MaxConcurrent)
	}
	return nil
}

func validateDecision(c *DecisionConfig) error {
	if c.HighThreshold <= 0 || c.HighThreshold > 1 {
		return errors.Wrapf(errors.ErrConfigInvalidDecision,
			"high_threshold must be in (0, 1], got %v", c.HighThreshold)
	}
	if c.LowThreshold <= 0 || c.LowThreshold >= 1 {
		return errors.Wrapf(errors.ErrConfigInvalidDecision,
			"low_threshold must be in (0, 1), got %v", c.LowThreshold)
	}
	if c.LowThreshold >= c.HighThreshold {
		return errors.Wrapf(errors.ErrConfigInvalidDecision,
			"low_threshold %v must be below high_threshold %v", c.LowThreshold, c.HighThreshold)
	}
	return nil
}

func validateTrial(c *TrialConfig) error {
	if c.MaxAttempts < 1 {
		return errors.Wrapf(errors.ErrConfigInvalidTrial,
			"max_attempts must be at least 1, got %d", c.MaxAttempts)
	}
	if c.BaseBackoff <= 0 {
		return errors.Wrapf(errors.ErrConfigInvalidTrial,
			"base_backoff must be positive, got %v", c.BaseBackoff)
	}
	return nil
}

func validateInsights(c *InsightsConfig) error {
	if c.MaxAdjustment < 0 || c.MaxAdjustment > 0.5 {
		return errors.Wrapf(errors.ErrConfigInvalidDecision,
			"insights max_adjustment must be in [0, 0.5], got %v", c.MaxAdjustment)
	}
	return nil
}
