package trial

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
)

func makeTrial(taskID string, outcome constants.TrialOutcome, sig constants.ErrorSignature, strategy constants.Strategy, params map[string]any) *domain.Trial {
	trial := domain.NewTrial(taskID, 1, params)
	trial.Outcome = outcome
	trial.Signature = sig
	trial.Strategy = strategy
	return trial
}

func TestExtractInsights_EmptyInput(t *testing.T) {
	t.Parallel()

	assert.Nil(t, ExtractInsights(nil))
	assert.Nil(t, ExtractInsights([]*domain.Trial{}))
}

func TestExtractInsights_FailurePatternBySignature(t *testing.T) {
	t.Parallel()

	trials := []*domain.Trial{
		makeTrial("t1", constants.TrialFailure, constants.SignatureTransient, "", nil),
		makeTrial("t2", constants.TrialFailure, constants.SignatureTransient, "", nil),
		makeTrial("t3", constants.TrialFailure, constants.SignatureTransient, "", nil),
		makeTrial("t4", constants.TrialFailure, constants.SignaturePermission, "", nil),
	}

	insights := ExtractInsights(trials)

	var failurePatterns []domain.Insight
	for _, in := range insights {
		if in.Category == constants.InsightFailurePattern {
			failurePatterns = append(failurePatterns, in)
		}
	}

	// permission has only one trial, below the cluster minimum
	require.Len(t, failurePatterns, 1)
	assert.Equal(t, "transient", failurePatterns[0].Payload["signature"])
	assert.Len(t, failurePatterns[0].TrialIDs, 3)
	assert.Greater(t, failurePatterns[0].Confidence, 0.0)
	assert.LessOrEqual(t, failurePatterns[0].Confidence, 1.0)
}

func TestExtractInsights_SuccessPattern(t *testing.T) {
	t.Parallel()

	trials := []*domain.Trial{
		makeTrial("t1", constants.TrialSuccess, "", "", nil),
		makeTrial("t2", constants.TrialSuccess, "", "", nil),
		makeTrial("t3", constants.TrialFailure, constants.SignatureUnknown, "", nil),
	}

	insights := ExtractInsights(trials)

	var success *domain.Insight
	for i := range insights {
		if insights[i].Category == constants.InsightSuccessPattern {
			success = &insights[i]
		}
	}
	require.NotNil(t, success)
	assert.InEpsilon(t, 2.0/3.0, success.Payload["success_rate"], 1e-9)
}

func TestExtractInsights_StrategyEffectiveness(t *testing.T) {
	t.Parallel()

	trials := []*domain.Trial{
		makeTrial("t1", constants.TrialSuccess, "", constants.StrategyParallel, nil),
		makeTrial("t2", constants.TrialSuccess, "", constants.StrategyParallel, nil),
		makeTrial("t3", constants.TrialFailure, constants.SignatureUnknown, constants.StrategyParallel, nil),
		makeTrial("t4", constants.TrialFailure, constants.SignatureUnknown, constants.StrategySequential, nil),
		makeTrial("t5", constants.TrialFailure, constants.SignatureUnknown, constants.StrategySequential, nil),
	}

	insights := ExtractInsights(trials)

	rates := map[string]float64{}
	for _, in := range insights {
		if in.Category == constants.InsightStrategyEffectiveness {
			rates[in.Payload["strategy"].(string)] = in.Payload["success_rate"].(float64)
		}
	}

	require.Len(t, rates, 2)
	assert.InEpsilon(t, 2.0/3.0, rates["parallel"], 1e-9)
	assert.Zero(t, rates["sequential"])
}

func TestExtractInsights_ParameterEffect(t *testing.T) {
	t.Parallel()

	// trials with "cache" succeed, trials without mostly fail
	trials := []*domain.Trial{
		makeTrial("t1", constants.TrialSuccess, "", "", map[string]any{"cache": true}),
		makeTrial("t2", constants.TrialSuccess, "", "", map[string]any{"cache": true}),
		makeTrial("t3", constants.TrialFailure, constants.SignatureUnknown, "", nil),
		makeTrial("t4", constants.TrialFailure, constants.SignatureUnknown, "", nil),
	}

	insights := ExtractInsights(trials)

	var effect *domain.Insight
	for i := range insights {
		if insights[i].Category == constants.InsightParameterEffect {
			effect = &insights[i]
		}
	}
	require.NotNil(t, effect)
	assert.Equal(t, "cache", effect.Payload["parameter"])
	assert.InEpsilon(t, 1.0, effect.Payload["success_rate"], 1e-9)
}

func TestExtractInsights_PureAndDeterministic(t *testing.T) {
	t.Parallel()

	trials := []*domain.Trial{
		makeTrial("t1", constants.TrialSuccess, "", constants.StrategyHybrid, map[string]any{"x": 1}),
		makeTrial("t2", constants.TrialFailure, constants.SignatureTransient, constants.StrategyHybrid, map[string]any{"x": 2}),
		makeTrial("t3", constants.TrialFailure, constants.SignatureTransient, constants.StrategySequential, nil),
		makeTrial("t4", constants.TrialSuccess, "", constants.StrategySequential, nil),
	}

	first := ExtractInsights(trials)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, ExtractInsights(trials), "extraction must be deterministic")
	}

	// input untouched
	assert.Equal(t, constants.TrialSuccess, trials[0].Outcome)
	assert.Equal(t, map[string]any{"x": 1}, trials[0].Parameters)
}

func TestStoreInsights_MinesStoreHistory(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	require.NoError(t, store.Record(ctx, makeTrial("t1", constants.TrialSuccess, "", constants.StrategyHybrid, nil)))
	require.NoError(t, store.Record(ctx, makeTrial("t2", constants.TrialSuccess, "", constants.StrategyHybrid, nil)))

	source := NewStoreInsights(store, zerolog.Nop())
	insights := source.Insights(ctx)

	assert.NotEmpty(t, insights)
}

func TestStoreInsights_StoreFailureYieldsNoInsights(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	require.NoError(t, store.Close())

	source := NewStoreInsights(store, zerolog.Nop())

	assert.Nil(t, source.Insights(context.Background()))
}
