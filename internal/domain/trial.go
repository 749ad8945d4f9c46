package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/compass/internal/constants"
)

// Trial records one execution attempt of a task with a specific parameter
// set. Trials are owned by the trial engine's learning store; they reference
// tasks by ID and are never mutated after recording.
type Trial struct {
	// ID is the unique identifier for the trial.
	ID string `json:"id"`

	// TaskID references the attempted task.
	TaskID string `json:"task_id"`

	// Attempt is the 1-based attempt number.
	Attempt int `json:"attempt"`

	// Parameters is a snapshot of the parameters used for this attempt.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Outcome classifies the attempt result.
	Outcome constants.TrialOutcome `json:"outcome"`

	// Signature is the classified error signature for failures, empty on success.
	Signature constants.ErrorSignature `json:"signature,omitempty"`

	// Error is the failure message, empty on success.
	Error string `json:"error,omitempty"`

	// Strategy labels the decomposition strategy that produced the task,
	// used for strategy-effectiveness mining.
	Strategy constants.Strategy `json:"strategy,omitempty"`

	// Duration is how long the attempt took.
	Duration time.Duration `json:"duration"`

	// StartedAt is when the attempt began.
	StartedAt time.Time `json:"started_at"`
}

// NewTrial creates a trial record for one attempt.
func NewTrial(taskID string, attempt int, params map[string]any) *Trial {
	return &Trial{
		ID:         uuid.NewString(),
		TaskID:     taskID,
		Attempt:    attempt,
		Parameters: params,
		StartedAt:  time.Now().UTC(),
	}
}

// TrialRun summarizes a full retry loop for one task.
type TrialRun struct {
	// TaskID identifies the task that was run.
	TaskID string `json:"task_id"`

	// Outcome is the final classification after all attempts.
	Outcome constants.TrialOutcome `json:"outcome"`

	// Attempts is the number of attempts made.
	Attempts int `json:"attempts"`

	// Signature is the final error signature for failed runs.
	Signature constants.ErrorSignature `json:"signature,omitempty"`

	// Result is the executor result of the successful attempt, nil on failure.
	Result *Result `json:"result,omitempty"`

	// Parameters are the parameters used on the final attempt, which may
	// differ from the originals when a known fix adjusted them.
	Parameters map[string]any `json:"parameters,omitempty"`

	// Trials are the per-attempt records, in attempt order.
	Trials []*Trial `json:"trials,omitempty"`
}

// Insight is a derived, read-only summary over a trial set. Insights are
// advisory: they tune confidence estimates and decision scores but never
// silently override explicit configuration.
type Insight struct {
	// Category identifies the kind of pattern.
	Category constants.InsightCategory `json:"category"`

	// Summary is a human-readable description of the pattern.
	Summary string `json:"summary"`

	// TrialIDs are the supporting trials.
	TrialIDs []string `json:"trial_ids,omitempty"`

	// Confidence is the 0..1 strength of the pattern.
	Confidence float64 `json:"confidence"`

	// Payload carries category-specific data: the signature, parameter
	// name, or strategy the pattern is about, plus observed rates.
	Payload map[string]any `json:"payload,omitempty"`
}
