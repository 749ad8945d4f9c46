// Package errors provides centralized error handling for COMPASS.
//
// This package defines sentinel errors used for programmatic error categorization
// throughout the application. All error types can be checked using errors.Is().
//
// IMPORTANT: This package MUST NOT import any other internal packages.
// Only standard library imports are allowed.
package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Sentinel errors for error categorization.
// These allow callers to check error types with errors.Is().
// All errors use lowercase descriptions per Go conventions.
var (
	// ErrDecomposition indicates the goal could not be decomposed
	// (empty or unparseable goal text).
	ErrDecomposition = errors.New("goal decomposition failed")

	// ErrCycleDetected indicates a task graph contains a dependency cycle.
	// Use errors.As with *CycleError to recover the offending task IDs.
	ErrCycleDetected = errors.New("task graph contains a cycle")

	// ErrUnknownTask indicates a dependency references a task ID that does
	// not exist in the graph.
	ErrUnknownTask = errors.New("dependency references unknown task")

	// ErrInvalidTransition indicates an attempt to make an invalid plan
	// state transition, such as approving a non-draft plan.
	ErrInvalidTransition = errors.New("invalid state transition")

	// ErrReplanningExhausted indicates no viable replacement graph could be
	// produced; the plan transitions to failed.
	ErrReplanningExhausted = errors.New("replanning exhausted")

	// ErrExecution indicates the executor reported a task failure.
	// Execution errors are recoverable via the trial engine.
	ErrExecution = errors.New("task execution failed")

	// ErrNonRetryable indicates a failure with an invalid-input or
	// permission signature, surfaced immediately without retry.
	ErrNonRetryable = errors.New("non-retryable failure")

	// ErrMaxAttemptsExceeded indicates the trial engine reached its attempt
	// budget without a success.
	ErrMaxAttemptsExceeded = errors.New("maximum retry attempts exceeded")

	// ErrPlanNotFound indicates the requested plan does not exist in the store.
	ErrPlanNotFound = errors.New("plan not found")

	// ErrPlanExists indicates an attempt to create a plan that already exists.
	ErrPlanExists = errors.New("plan already exists")

	// ErrPlanCorrupted indicates the plan state file is corrupted or unreadable.
	ErrPlanCorrupted = errors.New("plan state corrupted")

	// ErrPlanCanceled indicates the plan was canceled by the caller.
	ErrPlanCanceled = errors.New("plan canceled")

	// ErrLockTimeout indicates a file lock could not be acquired within the
	// timeout period.
	ErrLockTimeout = errors.New("lock acquisition timeout")

	// ErrNoExecution indicates no execution is in flight for the plan.
	ErrNoExecution = errors.New("plan is not executing")

	// ErrRuleNil indicates a nil decision rule was registered.
	ErrRuleNil = errors.New("rule cannot be nil")

	// ErrRuleDuplicate indicates a rule with the same ID is already registered.
	ErrRuleDuplicate = errors.New("rule already registered")

	// ErrRuleIDEmpty indicates a decision rule has an empty ID.
	ErrRuleIDEmpty = errors.New("rule id is required")

	// ErrUnknownDecisionType indicates an unrecognized decision type value.
	ErrUnknownDecisionType = errors.New("unknown decision type")

	// ErrUnknownStrategy indicates an unrecognized decomposition strategy value.
	ErrUnknownStrategy = errors.New("unknown strategy")

	// ErrConfirmationTimeout indicates the human confirmer did not answer in time.
	ErrConfirmationTimeout = errors.New("confirmation timed out")

	// ErrConfigNil indicates that a nil config was passed to validation.
	ErrConfigNil = errors.New("config is nil")

	// ErrConfigInvalidPlanner indicates an invalid planner configuration value.
	ErrConfigInvalidPlanner = errors.New("invalid planner configuration")

	// ErrConfigInvalidDecision indicates an invalid decision configuration value.
	ErrConfigInvalidDecision = errors.New("invalid decision configuration")

	// ErrConfigInvalidTrial indicates an invalid trial configuration value.
	ErrConfigInvalidTrial = errors.New("invalid trial configuration")

	// ErrConfigInvalidDecompose indicates an invalid decompose configuration value.
	ErrConfigInvalidDecompose = errors.New("invalid decompose configuration")

	// ErrInvalidOutputFormat indicates an invalid output format was specified.
	ErrInvalidOutputFormat = errors.New("invalid output format")

	// ErrEmptyValue indicates that a required value was empty.
	ErrEmptyValue = errors.New("value cannot be empty")

	// ErrStoreClosed indicates an operation on a closed trial store.
	ErrStoreClosed = errors.New("store is closed")
)

// CycleError reports a dependency cycle and names the tasks on it.
// It unwraps to ErrCycleDetected so errors.Is(err, ErrCycleDetected) holds.
type CycleError struct {
	// TaskIDs are the IDs of tasks participating in a cycle, sorted for
	// deterministic messages.
	TaskIDs []string
}

// NewCycleError creates a CycleError naming the given task IDs.
func NewCycleError(taskIDs []string) *CycleError {
	ids := make([]string, len(taskIDs))
	copy(ids, taskIDs)
	sort.Strings(ids)
	return &CycleError{TaskIDs: ids}
}

// Error implements the error interface.
func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: {%s}", ErrCycleDetected, strings.Join(e.TaskIDs, ", "))
}

// Unwrap returns the underlying sentinel.
func (e *CycleError) Unwrap() error {
	return ErrCycleDetected
}
