// Package cli provides the command-line interface for compass.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/mrz1836/compass/internal/config"
	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/decision"
	"github.com/mrz1836/compass/internal/decompose"
	"github.com/mrz1836/compass/internal/trial"
)

// loadConfigOrDefaults loads the layered configuration, falling back to
// built-in defaults when loading fails. Commands should run with defaults
// rather than refuse to start over a broken config file.
func loadConfigOrDefaults(ctx context.Context, logger zerolog.Logger) *config.Config {
	cfg, err := config.Load(ctx)
	if err != nil {
		logger.Warn().Err(err).Msg("failed to load config, using defaults")
		return config.DefaultConfig()
	}
	return cfg
}

// loadGoalContext reads a YAML goal-context file into the free-form map the
// decomposer consumes ("steps", "phases", and any strategy-specific keys).
// An empty path yields a nil context.
func loadGoalContext(path string) (map[string]any, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // Path comes from a user flag
	if err != nil {
		return nil, fmt.Errorf("read context file: %w", err)
	}

	var goalCtx map[string]any
	if err := yaml.Unmarshal(data, &goalCtx); err != nil {
		return nil, fmt.Errorf("parse context file %s: %w", path, err)
	}
	return goalCtx, nil
}

// openTrialStore opens the trial history database. The configured path wins;
// otherwise the store lives under the compass home so insights persist
// across invocations.
func openTrialStore(cfg *config.Config) (*trial.SQLiteStore, error) {
	path := cfg.Trial.StorePath
	if path == "" {
		home, err := getCompassHome()
		if err != nil {
			return nil, err
		}
		path = filepath.Join(home, constants.TrialsDBFileName)
	}
	return trial.NewSQLiteStore(path)
}

// newDecomposer builds a decomposer from configuration with optional
// insight-driven confidence adjustment.
func newDecomposer(cfg *config.Config, insights *trial.StoreInsights, logger zerolog.Logger) *decompose.Decomposer {
	opts := decompose.Options{
		DefaultStrategy: constants.Strategy(cfg.Decompose.DefaultStrategy),
		DepthLimit:      cfg.Decompose.DepthLimit,
		Logger:          logger,
	}
	if cfg.Insights.Enabled && insights != nil {
		opts.InsightsEnabled = true
		opts.MaxAdjustment = cfg.Insights.MaxAdjustment
		opts.Insights = insights
	}
	return decompose.New(opts)
}

// newDecisionEngine builds a decision engine from configuration, applying
// rule tuning from the configured file or ~/.compass/rules.yaml when present.
func newDecisionEngine(cfg *config.Config, insights *trial.StoreInsights, logger zerolog.Logger) (*decision.Engine, error) {
	registry := decision.DefaultRegistry()

	tuningPath := cfg.Decision.TuningFile
	if tuningPath == "" {
		if home, err := getCompassHome(); err == nil {
			tuningPath = filepath.Join(home, constants.RuleTuningFileName)
		}
	}
	tuning, err := decision.LoadTuning(tuningPath)
	if err != nil {
		return nil, err
	}
	if tuning != nil {
		registry.ApplyTuning(tuning)
	}

	opts := decision.Options{
		Registry:      registry,
		HighThreshold: cfg.Decision.HighThreshold,
		LowThreshold:  cfg.Decision.LowThreshold,
		Logger:        logger,
	}
	if cfg.Insights.Enabled && insights != nil {
		opts.InsightsEnabled = true
		opts.MaxAdjustment = cfg.Insights.MaxAdjustment
		opts.Insights = insights
	}
	return decision.NewEngine(opts), nil
}

// newTrialEngine builds a trial engine from configuration on top of the
// given store.
func newTrialEngine(cfg *config.Config, store trial.Store, logger zerolog.Logger) *trial.Engine {
	return trial.NewEngine(trial.Options{
		MaxAttempts: cfg.Trial.MaxAttempts,
		BaseBackoff: cfg.Trial.BaseBackoff,
		Store:       store,
		Logger:      logger,
	})
}
