package plan

import (
	"context"
	"fmt"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
	"github.com/mrz1836/compass/internal/graph"
)

// replanPending reports whether the failure rate tripped the replanning
// trigger.
func (ex *execution) replanPending() bool {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.replanDue
}

// checkReplanTrigger arms replanning once enough completions have been
// observed and the failure rate exceeds the threshold. Cancellation
// suppresses the trigger.
func (p *Planner) checkReplanTrigger(ex *execution) {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	if ex.canceled || ex.replanDue {
		return
	}
	if ex.plan.TotalAttempted < p.minSample {
		return
	}
	if ex.plan.FailureRate() <= p.threshold {
		return
	}
	ex.replanDue = true

	p.logger.Debug().
		Str("plan_id", ex.plan.ID).
		Float64("failure_rate", ex.plan.FailureRate()).
		Int("attempted", ex.plan.TotalAttempted).
		Msg("replanning triggered")
}

// replan regenerates the not-yet-succeeded part of the graph, splices it
// next to the succeeded tasks, recomputes the execution order, and resets
// the failure window. Dispatch has already drained: no task is running.
//
// Returns a wrapped ErrReplanningExhausted when the replan budget is spent
// or the decomposer cannot produce a viable replacement.
func (p *Planner) replan(ctx context.Context, ex *execution) error {
	pl := ex.plan

	if pl.ReplanCount >= p.maxReplans {
		return fmt.Errorf("%w: plan %s replanned %d times", compasserrors.ErrReplanningExhausted, pl.ID, pl.ReplanCount)
	}
	if p.decomposer == nil {
		return fmt.Errorf("%w: no decomposer configured", compasserrors.ErrReplanningExhausted)
	}

	reason := fmt.Sprintf("failure rate %.2f exceeded %.2f", pl.FailureRate(), p.threshold)
	if err := p.transition(ctx, pl, constants.PlanStateReplanning, reason); err != nil {
		return err
	}

	ex.mu.Lock()
	remaining := remainingSteps(pl.Graph, pl.ExecutionOrder)
	strategy := pl.Graph.Strategy
	goal := pl.Graph.Goal
	ex.mu.Unlock()

	if len(remaining) == 0 {
		return fmt.Errorf("%w: nothing left to replan", compasserrors.ErrReplanningExhausted)
	}

	goalCtx := map[string]any{constants.GoalContextSteps: remaining}
	sub, err := p.decomposer.Decompose(ctx, goal, goalCtx, strategy)
	if err != nil {
		return fmt.Errorf("%w: %s", compasserrors.ErrReplanningExhausted, err)
	}

	ex.mu.Lock()
	merged := spliceGraph(pl.Graph, sub)
	ex.mu.Unlock()

	order, err := graph.TopologicalOrder(merged)
	if err != nil {
		return fmt.Errorf("%w: %s", compasserrors.ErrReplanningExhausted, err)
	}

	ex.mu.Lock()
	pl.Graph = merged
	pl.ExecutionOrder = order
	pl.FailureCount = 0
	pl.TotalAttempted = 0
	pl.ReplanCount++
	for i := range ex.failures {
		ex.failures[i].ReplanAttempted = true
	}
	ex.replanDue = false
	ex.mu.Unlock()

	if err := p.transition(ctx, pl, constants.PlanStateExecuting, "replanned"); err != nil {
		return err
	}
	return p.persist(ctx, pl)
}

// remainingSteps collects the descriptions of every not-succeeded task, in
// execution order, so the decomposer can regenerate just the unfinished
// work.
func remainingSteps(g *domain.TaskGraph, order []string) []string {
	var steps []string
	seen := make(map[string]bool, len(order))
	for _, id := range order {
		seen[id] = true
		task := g.Task(id)
		if task == nil || task.Status == constants.TaskStatusSucceeded {
			continue
		}
		steps = append(steps, task.Description)
	}
	// tasks missing from the order still count as unfinished work
	for _, task := range g.Tasks {
		if !seen[task.ID] && task.Status != constants.TaskStatusSucceeded {
			steps = append(steps, task.Description)
		}
	}
	return steps
}

// spliceGraph replaces the unfinished portion of old with the freshly
// decomposed subgraph: succeeded tasks and the edges among them are kept,
// everything else is swapped for the new tasks wholesale.
func spliceGraph(old, sub *domain.TaskGraph) *domain.TaskGraph {
	merged := &domain.TaskGraph{
		Strategy: old.Strategy,
		Goal:     old.Goal,
	}

	kept := make(map[string]bool, len(old.Tasks))
	for _, task := range old.Tasks {
		if task.Status == constants.TaskStatusSucceeded {
			merged.Tasks = append(merged.Tasks, task)
			kept[task.ID] = true
		}
	}
	for _, dep := range old.Dependencies {
		if kept[dep.PredecessorID] && kept[dep.SuccessorID] {
			merged.Dependencies = append(merged.Dependencies, dep)
		}
	}

	merged.Tasks = append(merged.Tasks, sub.Tasks...)
	merged.Dependencies = append(merged.Dependencies, sub.Dependencies...)
	return merged
}
