package constants

// TaskStatus represents the state of a task within a plan's task graph.
// Status values use snake_case for JSON serialization compatibility.
type TaskStatus string

// Task status constants define the valid states a task can be in.
const (
	// TaskStatusPending indicates a task has unsatisfied dependencies.
	TaskStatusPending TaskStatus = "pending"

	// TaskStatusReady indicates all dependencies are satisfied and the task
	// is waiting for dispatch.
	TaskStatusReady TaskStatus = "ready"

	// TaskStatusRunning indicates the executor is actively working the task.
	TaskStatusRunning TaskStatus = "running"

	// TaskStatusSucceeded indicates the task finished successfully.
	TaskStatusSucceeded TaskStatus = "succeeded"

	// TaskStatusFailed indicates the task failed after retries were exhausted.
	TaskStatusFailed TaskStatus = "failed"

	// TaskStatusSkipped indicates the task was never dispatched, usually
	// because the plan was canceled or replanned around it.
	TaskStatusSkipped TaskStatus = "skipped"
)

// String returns the string representation of the TaskStatus.
func (s TaskStatus) String() string {
	return string(s)
}

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusReady, TaskStatusRunning,
		TaskStatusSucceeded, TaskStatusFailed, TaskStatusSkipped:
		return true
	}
	return false
}

// Terminal reports whether no further status changes are expected.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusSucceeded, TaskStatusFailed, TaskStatusSkipped:
		return true
	}
	return false
}

// PlanState represents the lifecycle state of an execution plan.
type PlanState string

// Plan state constants follow the supervisory state machine:
//
//	Draft → Approved → Executing → {Completed, Failed, Replanning}
//	Replanning → Executing, Failed
//	Completed and Failed are terminal.
const (
	// PlanStateDraft indicates a newly created, unapproved plan.
	PlanStateDraft PlanState = "draft"

	// PlanStateApproved indicates the plan passed validation and has a
	// computed execution order.
	PlanStateApproved PlanState = "approved"

	// PlanStateExecuting indicates tasks are being dispatched.
	PlanStateExecuting PlanState = "executing"

	// PlanStateCompleted indicates every task succeeded or was skipped.
	PlanStateCompleted PlanState = "completed"

	// PlanStateFailed indicates the plan was canceled or could not recover.
	PlanStateFailed PlanState = "failed"

	// PlanStateReplanning indicates an elevated failure rate triggered
	// regeneration of the remaining task graph.
	PlanStateReplanning PlanState = "replanning"
)

// String returns the string representation of the PlanState.
func (s PlanState) String() string {
	return string(s)
}

// Valid reports whether s is a known plan state.
func (s PlanState) Valid() bool {
	switch s {
	case PlanStateDraft, PlanStateApproved, PlanStateExecuting,
		PlanStateCompleted, PlanStateFailed, PlanStateReplanning:
		return true
	}
	return false
}

// Terminal reports whether the plan can make no further transitions.
func (s PlanState) Terminal() bool {
	return s == PlanStateCompleted || s == PlanStateFailed
}

// Strategy identifies a decomposition strategy.
type Strategy string

// Decomposition strategy constants.
const (
	// StrategyHierarchical splits the goal recursively into sub-goal branches.
	StrategyHierarchical Strategy = "hierarchical"

	// StrategySequential produces a strict finish-to-start chain.
	StrategySequential Strategy = "sequential"

	// StrategyParallel produces independent siblings joined by a single join task.
	StrategyParallel Strategy = "parallel"

	// StrategyHybrid chains phases of parallel siblings sequentially.
	// This is the default strategy.
	StrategyHybrid Strategy = "hybrid"
)

// String returns the string representation of the Strategy.
func (s Strategy) String() string {
	return string(s)
}

// Valid reports whether s is a known strategy.
func (s Strategy) Valid() bool {
	switch s {
	case StrategyHierarchical, StrategySequential, StrategyParallel, StrategyHybrid:
		return true
	}
	return false
}

// DependencyType identifies how a dependency constrains its successor.
type DependencyType string

// Dependency type constants.
const (
	// FinishToStart requires the predecessor to succeed before the
	// successor may start.
	FinishToStart DependencyType = "finish_to_start"

	// StartToStart requires the predecessor to be running or succeeded
	// before the successor may start.
	StartToStart DependencyType = "start_to_start"

	// FinishToFinish lets the successor start early but blocks its own
	// completion until the predecessor succeeded.
	FinishToFinish DependencyType = "finish_to_finish"

	// DataDependency requires the predecessor to succeed and injects one of
	// its named outputs into the successor's parameters before dispatch.
	DataDependency DependencyType = "data_dependency"
)

// String returns the string representation of the DependencyType.
func (t DependencyType) String() string {
	return string(t)
}

// Valid reports whether t is a known dependency type.
func (t DependencyType) Valid() bool {
	switch t {
	case FinishToStart, StartToStart, FinishToFinish, DataDependency:
		return true
	}
	return false
}

// DecisionType identifies the category of an autonomous decision.
type DecisionType string

// Decision type constants.
const (
	// DecisionRouting selects where work should be sent.
	DecisionRouting DecisionType = "routing"

	// DecisionResource selects how resources are allocated.
	DecisionResource DecisionType = "resource"

	// DecisionErrorHandling selects how a failure should be handled.
	DecisionErrorHandling DecisionType = "error_handling"

	// DecisionPriority selects relative ordering of work.
	DecisionPriority DecisionType = "priority"

	// DecisionEscalation selects whether to involve a human.
	DecisionEscalation DecisionType = "escalation"

	// DecisionOptimization selects tuning adjustments.
	DecisionOptimization DecisionType = "optimization"
)

// String returns the string representation of the DecisionType.
func (t DecisionType) String() string {
	return string(t)
}

// Valid reports whether t is a known decision type.
func (t DecisionType) Valid() bool {
	switch t {
	case DecisionRouting, DecisionResource, DecisionErrorHandling,
		DecisionPriority, DecisionEscalation, DecisionOptimization:
		return true
	}
	return false
}

// ConfidenceLevel is the banded classification of a decision's confidence score.
type ConfidenceLevel string

// Confidence level constants. The bands gate autonomous execution:
// HIGH auto-executes, MEDIUM auto-executes flagged for review, LOW always
// requires human confirmation.
const (
	// ConfidenceHigh is assigned for scores above HighConfidenceThreshold.
	ConfidenceHigh ConfidenceLevel = "high"

	// ConfidenceMedium is assigned for scores between the thresholds, inclusive.
	ConfidenceMedium ConfidenceLevel = "medium"

	// ConfidenceLow is assigned for scores below LowConfidenceThreshold.
	ConfidenceLow ConfidenceLevel = "low"
)

// String returns the string representation of the ConfidenceLevel.
func (l ConfidenceLevel) String() string {
	return string(l)
}

// LevelForScore maps a confidence score onto its band.
func LevelForScore(score float64) ConfidenceLevel {
	switch {
	case score > HighConfidenceThreshold:
		return ConfidenceHigh
	case score < LowConfidenceThreshold:
		return ConfidenceLow
	default:
		return ConfidenceMedium
	}
}

// TrialOutcome is the result classification of a single execution attempt.
type TrialOutcome string

// Trial outcome constants.
const (
	// TrialSuccess indicates the attempt completed without error.
	TrialSuccess TrialOutcome = "success"

	// TrialFailure indicates the attempt returned an error.
	TrialFailure TrialOutcome = "failure"
)

// String returns the string representation of the TrialOutcome.
func (o TrialOutcome) String() string {
	return string(o)
}

// ErrorSignature classifies an execution failure for retry decisions.
type ErrorSignature string

// Error signature constants. InvalidInput and Permission are non-retryable.
const (
	// SignatureTransient covers network and other transient failures.
	SignatureTransient ErrorSignature = "transient"

	// SignatureResourceExhaustion covers quota, memory, and rate limits.
	SignatureResourceExhaustion ErrorSignature = "resource_exhaustion"

	// SignatureInvalidInput covers malformed parameters. Never retried.
	SignatureInvalidInput ErrorSignature = "invalid_input"

	// SignaturePermission covers authorization failures. Never retried.
	SignaturePermission ErrorSignature = "permission"

	// SignatureUnknown covers everything else.
	SignatureUnknown ErrorSignature = "unknown"
)

// String returns the string representation of the ErrorSignature.
func (s ErrorSignature) String() string {
	return string(s)
}

// Retryable reports whether an attempt with this signature may be retried.
func (s ErrorSignature) Retryable() bool {
	return s != SignatureInvalidInput && s != SignaturePermission
}

// InsightCategory identifies the kind of pattern an insight describes.
type InsightCategory string

// Insight category constants.
const (
	// InsightSuccessPattern clusters successful trials by signature and parameters.
	InsightSuccessPattern InsightCategory = "success_pattern"

	// InsightFailurePattern clusters failed trials by signature and parameters.
	InsightFailurePattern InsightCategory = "failure_pattern"

	// InsightParameterEffect correlates a parameter value with outcomes.
	InsightParameterEffect InsightCategory = "parameter_effect"

	// InsightStrategyEffectiveness summarizes per-decomposition-strategy success rates.
	InsightStrategyEffectiveness InsightCategory = "strategy_effectiveness"
)

// String returns the string representation of the InsightCategory.
func (c InsightCategory) String() string {
	return string(c)
}
