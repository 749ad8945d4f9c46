package errors_test

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	compasserrors "github.com/mrz1836/compass/internal/errors"
)

func TestSentinelErrors_Existence(t *testing.T) {
	sentinels := []struct {
		name string
		err  error
	}{
		{"ErrDecomposition", compasserrors.ErrDecomposition},
		{"ErrCycleDetected", compasserrors.ErrCycleDetected},
		{"ErrUnknownTask", compasserrors.ErrUnknownTask},
		{"ErrInvalidTransition", compasserrors.ErrInvalidTransition},
		{"ErrReplanningExhausted", compasserrors.ErrReplanningExhausted},
		{"ErrExecution", compasserrors.ErrExecution},
		{"ErrNonRetryable", compasserrors.ErrNonRetryable},
		{"ErrMaxAttemptsExceeded", compasserrors.ErrMaxAttemptsExceeded},
		{"ErrPlanNotFound", compasserrors.ErrPlanNotFound},
		{"ErrPlanExists", compasserrors.ErrPlanExists},
		{"ErrPlanCorrupted", compasserrors.ErrPlanCorrupted},
		{"ErrPlanCanceled", compasserrors.ErrPlanCanceled},
		{"ErrLockTimeout", compasserrors.ErrLockTimeout},
		{"ErrNoExecution", compasserrors.ErrNoExecution},
		{"ErrRuleNil", compasserrors.ErrRuleNil},
		{"ErrRuleDuplicate", compasserrors.ErrRuleDuplicate},
		{"ErrRuleIDEmpty", compasserrors.ErrRuleIDEmpty},
		{"ErrUnknownDecisionType", compasserrors.ErrUnknownDecisionType},
		{"ErrUnknownStrategy", compasserrors.ErrUnknownStrategy},
		{"ErrConfirmationTimeout", compasserrors.ErrConfirmationTimeout},
		{"ErrInvalidOutputFormat", compasserrors.ErrInvalidOutputFormat},
		{"ErrEmptyValue", compasserrors.ErrEmptyValue},
		{"ErrStoreClosed", compasserrors.ErrStoreClosed},
	}

	for _, tc := range sentinels {
		t.Run(tc.name, func(t *testing.T) {
			require.Error(t, tc.err, "%s should not be nil", tc.name)
			assert.NotEmpty(t, tc.err.Error(), "%s should have a message", tc.name)
		})
	}
}

func TestWrap(t *testing.T) {
	base := compasserrors.ErrExecution

	wrapped := compasserrors.Wrap(base, "dispatching task")
	require.Error(t, wrapped)
	assert.Equal(t, "dispatching task: task execution failed", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
}

func TestWrap_NilPassthrough(t *testing.T) {
	assert.NoError(t, compasserrors.Wrap(nil, "context"))
	assert.NoError(t, compasserrors.Wrapf(nil, "context %s", "x"))
}

func TestWrapf(t *testing.T) {
	base := compasserrors.ErrPlanNotFound

	wrapped := compasserrors.Wrapf(base, "loading plan %s", "p1")
	require.Error(t, wrapped)
	assert.Equal(t, "loading plan p1: plan not found", wrapped.Error())
	assert.ErrorIs(t, wrapped, base)
}

func TestCycleError_SortsTaskIDs(t *testing.T) {
	err := compasserrors.NewCycleError([]string{"c", "a", "b"})

	assert.Equal(t, []string{"a", "b", "c"}, err.TaskIDs)
	assert.Equal(t, "task graph contains a cycle: {a, b, c}", err.Error())
}

func TestCycleError_UnwrapsToSentinel(t *testing.T) {
	err := compasserrors.NewCycleError([]string{"t1", "t2"})

	require.ErrorIs(t, err, compasserrors.ErrCycleDetected)

	var cycleErr *compasserrors.CycleError
	require.True(t, stderrors.As(err, &cycleErr))
	assert.Equal(t, []string{"t1", "t2"}, cycleErr.TaskIDs)
}

func TestCycleError_WrappedStillMatches(t *testing.T) {
	err := fmt.Errorf("approve: %w", compasserrors.NewCycleError([]string{"x"}))

	assert.ErrorIs(t, err, compasserrors.ErrCycleDetected)
}

func TestCycleError_CopiesInput(t *testing.T) {
	ids := []string{"b", "a"}
	err := compasserrors.NewCycleError(ids)

	// Mutating the caller's slice must not affect the error
	ids[0] = "mutated"
	assert.Equal(t, []string{"a", "b"}, err.TaskIDs)
}
