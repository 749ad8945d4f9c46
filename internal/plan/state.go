// Package plan provides plan lifecycle supervision for COMPASS.
//
// A plan wraps a decomposed task graph and drives it through the
// supervisory state machine: draft, approved, executing, and the terminal
// completed/failed states, with a replanning detour on elevated failure
// rate. This file implements the state machine, which enforces valid
// transitions and maintains an audit trail of all state changes.
//
// Import rules:
//   - CAN import: internal/constants, internal/contracts, internal/ctxutil,
//     internal/domain, internal/errors, internal/events, internal/flock,
//     internal/graph, std lib
//   - MUST NOT import: internal/cli
package plan

import (
	"context"
	"fmt"
	"time"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/ctxutil"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
)

// ValidTransitions defines all allowed state transitions in the plan
// lifecycle. Format: from_state -> []to_states
//
// The state machine follows this flow:
//
//	Draft → Approved
//	Approved → Executing
//	Executing → Completed, Failed, Replanning
//	Replanning → Executing, Failed
//
// Completed and Failed are terminal.
//
//nolint:gochecknoglobals // Exported for testing and read-only lookup table
var ValidTransitions = map[constants.PlanState][]constants.PlanState{
	constants.PlanStateDraft:    {constants.PlanStateApproved},
	constants.PlanStateApproved: {constants.PlanStateExecuting},
	constants.PlanStateExecuting: {
		constants.PlanStateCompleted,
		constants.PlanStateFailed,
		constants.PlanStateReplanning,
	},
	constants.PlanStateReplanning: {constants.PlanStateExecuting, constants.PlanStateFailed},
}

// IsValidTransition checks if a transition from one state to another is
// allowed. Returns false for transitions from terminal states or to the
// same state.
func IsValidTransition(from, to constants.PlanState) bool {
	if from == to {
		return false
	}
	validTargets, exists := ValidTransitions[from]
	if !exists {
		return false
	}
	for _, target := range validTargets {
		if target == to {
			return true
		}
	}
	return false
}

// ValidTargetStates returns all valid target states for a given state.
// Returns nil for terminal or unknown states. The returned slice is a copy.
func ValidTargetStates(from constants.PlanState) []constants.PlanState {
	targets, exists := ValidTransitions[from]
	if !exists {
		return nil
	}
	result := make([]constants.PlanState, len(targets))
	copy(result, targets)
	return result
}

// Transition validates and applies a state transition to the plan. It
// records the transition in the plan's audit trail and updates timestamps.
// The caller is responsible for persisting the updated plan.
//
// Returns a wrapped ErrInvalidTransition when the transition is not
// allowed, including attempts to leave a terminal state.
func Transition(ctx context.Context, p *domain.Plan, to constants.PlanState, reason string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("%w: plan is nil", compasserrors.ErrInvalidTransition)
	}

	from := p.State
	if !IsValidTransition(from, to) {
		return fmt.Errorf("%w: cannot transition from %s to %s",
			compasserrors.ErrInvalidTransition, from, to)
	}

	now := time.Now().UTC()
	p.Transitions = append(p.Transitions, domain.Transition{
		FromState: from,
		ToState:   to,
		Timestamp: now,
		Reason:    reason,
	})
	p.State = to
	p.UpdatedAt = now
	if to.Terminal() {
		p.CompletedAt = &now
	}
	return nil
}
