package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	compasserrors "github.com/mrz1836/compass/internal/errors"
)

// TestValidate_NilConfig tests that nil config returns error
func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()

	err := Validate(nil)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrConfigNil)
}

// TestValidate_DefaultConfig tests that default config is valid
func TestValidate_DefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	err := Validate(cfg)

	require.NoError(t, err)
}

// TestValidate_MinimumBoundaryValues tests minimum valid values
func TestValidate_MinimumBoundaryValues(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Decompose.DepthLimit = 1
	cfg.Planner.FailureRateThreshold = 0.01
	cfg.Planner.MinSampleSize = 1
	cfg.Planner.MaxReplans = 0
	cfg.Planner.MaxConcurrent = 1
	cfg.Trial.MaxAttempts = 1
	cfg.Trial.BaseBackoff = 1 * time.Millisecond
	cfg.Insights.MaxAdjustment = 0

	err := Validate(cfg)

	require.NoError(t, err)
}

// TestValidateDecompose_UnknownStrategy tests that an unrecognized strategy is rejected
func TestValidateDecompose_UnknownStrategy(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Decompose.DefaultStrategy = "waterfall"

	err := Validate(cfg)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrConfigInvalidDecompose)
	assert.Contains(t, err.Error(), "waterfall")
}

// TestValidateDecompose_ZeroDepthLimit tests that depth limit below one is invalid
func TestValidateDecompose_ZeroDepthLimit(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Decompose.DepthLimit = 0

	err := Validate(cfg)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrConfigInvalidDecompose)
}

// TestValidatePlanner_FailureRateOutOfRange tests threshold bounds
func TestValidatePlanner_FailureRateOutOfRange(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		threshold float64
	}{
		{name: "zero", threshold: 0},
		{name: "one", threshold: 1},
		{name: "negative", threshold: -0.3},
		{name: "above one", threshold: 1.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			cfg.Planner.FailureRateThreshold = tt.threshold

			err := Validate(cfg)

			require.Error(t, err)
			require.ErrorIs(t, err, compasserrors.ErrConfigInvalidPlanner)
			assert.Contains(t, err.Error(), "failure_rate_threshold")
		})
	}
}

// TestValidatePlanner_ZeroMinSampleSize tests minimum sample size bound
func TestValidatePlanner_ZeroMinSampleSize(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Planner.MinSampleSize = 0

	err := Validate(cfg)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrConfigInvalidPlanner)
}

// TestValidatePlanner_NegativeMaxReplans tests replan bound cannot be negative
func TestValidatePlanner_NegativeMaxReplans(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Planner.MaxReplans = -1

	err := Validate(cfg)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrConfigInvalidPlanner)
	assert.Contains(t, err.Error(), "max_replans")
}

// TestValidatePlanner_ZeroMaxConcurrent tests concurrency floor
func TestValidatePlanner_ZeroMaxConcurrent(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Planner.MaxConcurrent = 0

	err := Validate(cfg)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrConfigInvalidPlanner)
}

// TestValidateDecision_InvertedThresholds tests that low must stay below high
func TestValidateDecision_InvertedThresholds(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Decision.HighThreshold = 0.40
	cfg.Decision.LowThreshold = 0.60

	err := Validate(cfg)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrConfigInvalidDecision)
	assert.Contains(t, err.Error(), "below high_threshold")
}

// TestValidateDecision_HighThresholdAboveOne tests upper band bound
func TestValidateDecision_HighThresholdAboveOne(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Decision.HighThreshold = 1.2

	err := Validate(cfg)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrConfigInvalidDecision)
}

// TestValidateTrial_ZeroMaxAttempts tests attempt floor
func TestValidateTrial_ZeroMaxAttempts(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Trial.MaxAttempts = 0

	err := Validate(cfg)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrConfigInvalidTrial)
	assert.Contains(t, err.Error(), "max_attempts")
}

// TestValidateTrial_NonPositiveBackoff tests backoff must be positive
func TestValidateTrial_NonPositiveBackoff(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Trial.BaseBackoff = 0

	err := Validate(cfg)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrConfigInvalidTrial)
}

// TestValidateInsights_AdjustmentOutOfRange tests the advisory adjustment cap
func TestValidateInsights_AdjustmentOutOfRange(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()
	cfg.Insights.MaxAdjustment = 0.75

	err := Validate(cfg)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrConfigInvalidDecision)
	assert.Contains(t, err.Error(), "max_adjustment")
}
