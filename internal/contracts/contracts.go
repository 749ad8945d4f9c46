// Package contracts provides shared interfaces to avoid circular dependencies.
// This package can be imported by any internal package and should have minimal
// dependencies.
//
// The interfaces here are the core's external collaborators: the concrete
// task-execution backend, human confirmation, and event delivery are all
// consumed, never implemented, by the core packages.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, standard library
//   - MUST NOT import: any other internal packages
package contracts

import (
	"context"

	"github.com/mrz1836/compass/internal/domain"
)

// Executor is the external task-execution backend. Execution is
// asynchronous from the core's point of view: the call blocks until the
// backend reports, and all waiting happens through ctx.
type Executor interface {
	// Execute runs one task with the given parameters.
	// A non-nil error is execution-error material, recoverable via the
	// trial engine.
	Execute(ctx context.Context, task *domain.Task, params map[string]any) (*domain.Result, error)
}

// ExecutorFunc adapts a function to the Executor interface.
type ExecutorFunc func(ctx context.Context, task *domain.Task, params map[string]any) (*domain.Result, error)

// Execute implements Executor.
func (f ExecutorFunc) Execute(ctx context.Context, task *domain.Task, params map[string]any) (*domain.Result, error) {
	return f(ctx, task, params)
}

// HumanConfirmer requests confirmation for a decision from a human.
// Implementations may time out; timeouts are reported as errors.
// The decision engine itself never blocks on this interface; it flags
// decisions instead, and callers consult the confirmer afterwards.
type HumanConfirmer interface {
	// RequestConfirmation asks a human to approve or reject the decision.
	RequestConfirmation(ctx context.Context, decision *domain.Decision) (approved bool, err error)
}

// EventSink receives core events. Emit is fire-and-forget: implementations
// must never block the caller, and a failure to deliver must never
// propagate to the emitting operation.
type EventSink interface {
	Emit(event domain.Event)
}

// EventSinkFunc adapts a function to the EventSink interface.
type EventSinkFunc func(event domain.Event)

// Emit implements EventSink.
func (f EventSinkFunc) Emit(event domain.Event) {
	f(event)
}

// InsightSource supplies advisory insights mined from trial history.
// The decomposer and decision engine consult it when insight usage is
// enabled in configuration.
type InsightSource interface {
	// Insights returns the current insight set. Implementations may
	// recompute lazily or serve a cached batch.
	Insights(ctx context.Context) []domain.Insight
}
