package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/compass/internal/constants"
)

// Plan wraps a task graph with its supervisory lifecycle state.
// The plan exclusively owns its graph: replanning swaps the graph
// wholesale rather than mutating it in place.
//
// Example JSON representation:
//
//	{
//	    "id": "b8a3cf22-...",
//	    "state": "executing",
//	    "graph": {...},
//	    "execution_order": ["t1", "t2", "t3"],
//	    "failure_count": 1,
//	    "total_attempted": 5,
//	    "replan_count": 0,
//	    "transitions": [...],
//	    "schema_version": 1
//	}
type Plan struct {
	// ID is the unique identifier for the plan.
	ID string `json:"id"`

	// State is the current lifecycle state.
	State constants.PlanState `json:"state"`

	// Graph is the owned task graph.
	Graph *TaskGraph `json:"graph"`

	// ExecutionOrder is the topological task ID sequence, recomputed on
	// approval and on every replan.
	ExecutionOrder []string `json:"execution_order,omitempty"`

	// FailureCount counts failed task completions in the current window.
	FailureCount int `json:"failure_count"`

	// TotalAttempted counts all task completions in the current window.
	// The window resets when replanning re-enters executing.
	TotalAttempted int `json:"total_attempted"`

	// ReplanCount counts how many times the plan has replanned. It persists
	// across windows and is bounded by configuration.
	ReplanCount int `json:"replan_count"`

	// Transitions is the audit trail of state changes.
	Transitions []Transition `json:"transitions,omitempty"`

	// CreatedAt is when the plan was created.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is when the plan was last modified.
	UpdatedAt time.Time `json:"updated_at"`

	// CompletedAt is when the plan reached a terminal state (nil otherwise).
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// SchemaVersion indicates the version of the Plan struct schema.
	// This enables forward-compatible schema migrations.
	SchemaVersion int `json:"schema_version"`
}

// NewPlan creates a draft plan owning the given graph.
func NewPlan(graph *TaskGraph) *Plan {
	now := time.Now().UTC()
	return &Plan{
		ID:            uuid.NewString(),
		State:         constants.PlanStateDraft,
		Graph:         graph,
		CreatedAt:     now,
		UpdatedAt:     now,
		SchemaVersion: constants.PlanSchemaVersion,
	}
}

// FailureRate returns failure_count / total_attempted for the current
// window, or 0 when nothing has been attempted.
func (p *Plan) FailureRate() float64 {
	if p.TotalAttempted == 0 {
		return 0
	}
	return float64(p.FailureCount) / float64(p.TotalAttempted)
}

// Transition records one plan state change for the audit trail.
type Transition struct {
	// FromState is the state before the transition.
	FromState constants.PlanState `json:"from_state"`

	// ToState is the state after the transition.
	ToState constants.PlanState `json:"to_state"`

	// Timestamp is when the transition occurred.
	Timestamp time.Time `json:"timestamp"`

	// Reason is an optional explanation for the transition.
	Reason string `json:"reason,omitempty"`
}

// FailureDetail is one entry in a failed plan's causal chain,
// reconstructable from the audit trail alone.
type FailureDetail struct {
	// TaskID identifies the failed task.
	TaskID string `json:"task_id"`

	// Signature is the final classified error signature.
	Signature constants.ErrorSignature `json:"signature"`

	// Attempts is how many attempts the trial engine made.
	Attempts int `json:"attempts"`

	// ReplanAttempted reports whether the plan tried replanning after
	// this failure.
	ReplanAttempted bool `json:"replan_attempted"`

	// Error is the final error message.
	Error string `json:"error,omitempty"`
}
