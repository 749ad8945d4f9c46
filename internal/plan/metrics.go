package plan

import (
	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
)

// Report summarizes one plan execution: task outcomes, the failure rate
// over everything attempted, per-signature failure counts, and the causal
// chain of every failed task.
type Report struct {
	// PlanID identifies the executed plan.
	PlanID string `json:"plan_id"`

	// Attempted counts task completions, success or failure.
	Attempted int `json:"attempted"`

	// Succeeded counts tasks that finished successfully.
	Succeeded int `json:"succeeded"`

	// Failed counts tasks that failed after retries.
	Failed int `json:"failed"`

	// Skipped counts tasks never dispatched.
	Skipped int `json:"skipped"`

	// FailureRate is failed/attempted over the whole execution, across
	// replan windows.
	FailureRate float64 `json:"failure_rate"`

	// Replans is how many times the plan replanned.
	Replans int `json:"replans"`

	// BySignature counts failures per classified error signature.
	BySignature map[constants.ErrorSignature]int `json:"by_signature,omitempty"`

	// Failures is the causal chain: one entry per failed task, in failure
	// order.
	Failures []domain.FailureDetail `json:"failures,omitempty"`
}

// buildReport assembles the execution report from the final graph statuses
// and the execution's failure bookkeeping. Called once per Execute, after
// the dispatch loop has fully stopped.
func buildReport(pl *domain.Plan, ex *execution) *Report {
	r := &Report{
		PlanID:      pl.ID,
		Replans:     pl.ReplanCount,
		BySignature: make(map[constants.ErrorSignature]int, len(ex.signatures)),
		Failures:    append([]domain.FailureDetail(nil), ex.failures...),
	}
	for sig, n := range ex.signatures {
		r.BySignature[sig] = n
	}

	for _, task := range pl.Graph.Tasks {
		switch task.Status {
		case constants.TaskStatusSucceeded:
			r.Succeeded++
		case constants.TaskStatusFailed:
			r.Failed++
		case constants.TaskStatusSkipped:
			r.Skipped++
		}
	}
	// failures on tasks replaced by a replan are gone from the graph but
	// still part of the record
	if len(r.Failures) > r.Failed {
		r.Failed = len(r.Failures)
	}
	r.Attempted = r.Succeeded + r.Failed
	if r.Attempted > 0 {
		r.FailureRate = float64(r.Failed) / float64(r.Attempted)
	}
	return r
}

// Summarize computes task status counts for a plan at rest, without
// execution bookkeeping. Used to display stored plans.
func Summarize(pl *domain.Plan) *Report {
	r := &Report{PlanID: pl.ID, Replans: pl.ReplanCount}
	for _, task := range pl.Graph.Tasks {
		switch task.Status {
		case constants.TaskStatusSucceeded:
			r.Succeeded++
		case constants.TaskStatusFailed:
			r.Failed++
		case constants.TaskStatusSkipped:
			r.Skipped++
		}
	}
	r.Attempted = r.Succeeded + r.Failed
	if r.Attempted > 0 {
		r.FailureRate = float64(r.Failed) / float64(r.Attempted)
	}
	return r
}
