package plan

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
)

func TestIsValidTransition_AllValidTransitions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from constants.PlanState
		to   constants.PlanState
	}{
		{"draft to approved", constants.PlanStateDraft, constants.PlanStateApproved},
		{"approved to executing", constants.PlanStateApproved, constants.PlanStateExecuting},
		{"executing to completed", constants.PlanStateExecuting, constants.PlanStateCompleted},
		{"executing to failed", constants.PlanStateExecuting, constants.PlanStateFailed},
		{"executing to replanning", constants.PlanStateExecuting, constants.PlanStateReplanning},
		{"replanning to executing", constants.PlanStateReplanning, constants.PlanStateExecuting},
		{"replanning to failed", constants.PlanStateReplanning, constants.PlanStateFailed},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.True(t, IsValidTransition(tc.from, tc.to))
		})
	}
}

func TestIsValidTransition_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		from constants.PlanState
		to   constants.PlanState
	}{
		{"draft to executing skips approval", constants.PlanStateDraft, constants.PlanStateExecuting},
		{"draft to completed", constants.PlanStateDraft, constants.PlanStateCompleted},
		{"draft to failed", constants.PlanStateDraft, constants.PlanStateFailed},
		{"approved to completed", constants.PlanStateApproved, constants.PlanStateCompleted},
		{"approved to draft", constants.PlanStateApproved, constants.PlanStateDraft},
		{"completed is terminal", constants.PlanStateCompleted, constants.PlanStateExecuting},
		{"failed is terminal", constants.PlanStateFailed, constants.PlanStateExecuting},
		{"same state", constants.PlanStateExecuting, constants.PlanStateExecuting},
		{"unknown state", constants.PlanState("bogus"), constants.PlanStateDraft},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.False(t, IsValidTransition(tc.from, tc.to))
		})
	}
}

func TestTransition_RecordsAuditTrail(t *testing.T) {
	t.Parallel()

	pl := domain.NewPlan(&domain.TaskGraph{})
	ctx := context.Background()

	require.NoError(t, Transition(ctx, pl, constants.PlanStateApproved, "looks good"))
	require.NoError(t, Transition(ctx, pl, constants.PlanStateExecuting, ""))
	require.NoError(t, Transition(ctx, pl, constants.PlanStateCompleted, "done"))

	require.Len(t, pl.Transitions, 3)
	assert.Equal(t, constants.PlanStateDraft, pl.Transitions[0].FromState)
	assert.Equal(t, constants.PlanStateApproved, pl.Transitions[0].ToState)
	assert.Equal(t, "looks good", pl.Transitions[0].Reason)
	assert.Equal(t, constants.PlanStateCompleted, pl.State)
	require.NotNil(t, pl.CompletedAt)
	assert.False(t, pl.CompletedAt.IsZero())
}

func TestTransition_Invalid(t *testing.T) {
	t.Parallel()

	pl := domain.NewPlan(&domain.TaskGraph{})
	err := Transition(context.Background(), pl, constants.PlanStateExecuting, "")
	require.ErrorIs(t, err, compasserrors.ErrInvalidTransition)
	assert.Equal(t, constants.PlanStateDraft, pl.State)
	assert.Empty(t, pl.Transitions)
}

func TestTransition_NilPlan(t *testing.T) {
	t.Parallel()

	err := Transition(context.Background(), nil, constants.PlanStateApproved, "")
	require.ErrorIs(t, err, compasserrors.ErrInvalidTransition)
}

func TestTransition_CanceledContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pl := domain.NewPlan(&domain.TaskGraph{})
	err := Transition(ctx, pl, constants.PlanStateApproved, "")
	require.ErrorIs(t, err, context.Canceled)
}

func TestValidTargetStates(t *testing.T) {
	t.Parallel()

	targets := ValidTargetStates(constants.PlanStateExecuting)
	assert.Len(t, targets, 3)

	// terminal states have no targets
	assert.Nil(t, ValidTargetStates(constants.PlanStateCompleted))
	assert.Nil(t, ValidTargetStates(constants.PlanStateFailed))

	// returned slice is a copy
	targets[0] = constants.PlanStateDraft
	assert.NotEqual(t, targets[0], ValidTransitions[constants.PlanStateExecuting][0])
}

func BenchmarkIsValidTransition(b *testing.B) {
	for i := 0; i < b.N; i++ {
		IsValidTransition(constants.PlanStateExecuting, constants.PlanStateReplanning)
	}
}
