package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/compass/internal/constants"
)

func TestLoadFromPaths_ReturnsDefaultsWhenNoConfigFile(t *testing.T) {
	ctx := context.Background()

	cfg, err := LoadFromPaths(ctx, "", "")
	require.NoError(t, err, "LoadFromPaths should not fail when no config file exists")
	require.NotNil(t, cfg, "Config should not be nil")

	// Verify defaults are applied
	assert.Equal(t, string(constants.StrategyHybrid), cfg.Decompose.DefaultStrategy, "should use default strategy")
	assert.Equal(t, constants.DefaultFailureRateThreshold, cfg.Planner.FailureRateThreshold, "should use default failure rate threshold")
	assert.Equal(t, constants.DefaultMaxAttempts, cfg.Trial.MaxAttempts, "should use default attempt budget")
	assert.Equal(t, constants.DefaultBaseBackoff, cfg.Trial.BaseBackoff, "should use default base backoff")
	assert.True(t, cfg.Insights.Enabled, "insights should be enabled by default")
}

func TestLoadFromPaths_ProjectConfigOverridesGlobal(t *testing.T) {
	ctx := context.Background()

	globalDir := t.TempDir()
	projectDir := t.TempDir()

	globalConfig := filepath.Join(globalDir, "config.yaml")
	err := os.WriteFile(globalConfig, []byte(`
planner:
  failure_rate_threshold: 0.5
  max_concurrent: 8
decompose:
  default_strategy: sequential
`), 0o600)
	require.NoError(t, err)

	projectConfig := filepath.Join(projectDir, "config.yaml")
	err = os.WriteFile(projectConfig, []byte(`
planner:
  failure_rate_threshold: 0.25
`), 0o600)
	require.NoError(t, err)

	cfg, err := LoadFromPaths(ctx, projectConfig, globalConfig)
	require.NoError(t, err, "LoadFromPaths should succeed")

	// Project config overrides global for the shared key
	assert.InEpsilon(t, 0.25, cfg.Planner.FailureRateThreshold, 1e-9, "project config should override global")

	// Global config values that aren't overridden should persist
	assert.Equal(t, 8, cfg.Planner.MaxConcurrent, "global max_concurrent should be preserved")
	assert.Equal(t, "sequential", cfg.Decompose.DefaultStrategy, "global default_strategy should be preserved")
}

func TestLoadFromPaths_GlobalConfigOnly(t *testing.T) {
	ctx := context.Background()

	globalDir := t.TempDir()

	globalConfig := filepath.Join(globalDir, "config.yaml")
	err := os.WriteFile(globalConfig, []byte(`
trial:
  max_attempts: 6
  base_backoff: 250ms
decision:
  high_threshold: 0.9
`), 0o600)
	require.NoError(t, err)

	cfg, err := LoadFromPaths(ctx, "", globalConfig)
	require.NoError(t, err, "LoadFromPaths should succeed with only global config")

	assert.Equal(t, 6, cfg.Trial.MaxAttempts, "should use global max_attempts")
	assert.Equal(t, 250*time.Millisecond, cfg.Trial.BaseBackoff, "should parse duration string")
	assert.InEpsilon(t, 0.9, cfg.Decision.HighThreshold, 1e-9, "should use global high_threshold")

	// Untouched sections keep defaults
	assert.Equal(t, constants.DefaultMaxConcurrent, cfg.Planner.MaxConcurrent, "untouched planner section keeps defaults")
}

func TestLoadFromPaths_InvalidValuesRejected(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(configPath, []byte(`
planner:
  failure_rate_threshold: 2.0
`), 0o600)
	require.NoError(t, err)

	cfg, err := LoadFromPaths(ctx, configPath, "")
	require.Error(t, err, "out-of-range threshold should be rejected")
	assert.Nil(t, cfg)
	assert.Contains(t, err.Error(), "failure_rate_threshold")
}

func TestLoadFromPaths_MalformedYAML(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.yaml")
	err := os.WriteFile(configPath, []byte("planner: [not: valid\n"), 0o600)
	require.NoError(t, err)

	cfg, err := LoadFromPaths(ctx, configPath, "")
	require.Error(t, err, "malformed YAML should be rejected")
	assert.Nil(t, cfg)
}

func TestLoad_EnvVarOverridesDefaults(t *testing.T) {
	ctx := context.Background()

	tempDir := t.TempDir()
	oldWd, err := os.Getwd()
	require.NoError(t, err)
	err = os.Chdir(tempDir)
	require.NoError(t, err)
	defer func() {
		_ = os.Chdir(oldWd)
	}()

	t.Setenv("HOME", tempDir)
	t.Setenv("COMPASS_PLANNER_MAX_CONCURRENT", "2")
	t.Setenv("COMPASS_DECOMPOSE_DEFAULT_STRATEGY", "parallel")

	cfg, err := Load(ctx)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Planner.MaxConcurrent, "env var should override default")
	assert.Equal(t, "parallel", cfg.Decompose.DefaultStrategy, "env var should override default")
}
