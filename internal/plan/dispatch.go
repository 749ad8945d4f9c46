package plan

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
)

// completion is one finished task run delivered to the dispatch loop.
type completion struct {
	taskID string
	run    *domain.TrialRun
	err    error
}

// execution is the per-plan dispatch state. All mutable fields are guarded
// by mu; the dispatch loop is the only reader of done.
type execution struct {
	plan    *domain.Plan
	cancelF context.CancelFunc

	mu         sync.Mutex
	canceled   bool
	running    int
	replanDue  bool
	parked     map[string]completion
	outputs    map[string]map[string]any
	failures   []domain.FailureDetail
	signatures map[constants.ErrorSignature]int

	done chan completion
}

func newExecution(pl *domain.Plan, cancel context.CancelFunc) *execution {
	return &execution{
		plan:       pl,
		cancelF:    cancel,
		parked:     make(map[string]completion),
		outputs:    make(map[string]map[string]any),
		signatures: make(map[constants.ErrorSignature]int),
		done:       make(chan completion, len(pl.Graph.Tasks)+1),
	}
}

// cancel flags the execution as canceled and cancels its context. Safe to
// call from any goroutine.
func (ex *execution) cancel() {
	ex.mu.Lock()
	ex.canceled = true
	ex.mu.Unlock()
	ex.cancelF()
}

func (ex *execution) isCanceled() bool {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.canceled
}

func (ex *execution) runningCount() int {
	ex.mu.Lock()
	defer ex.mu.Unlock()
	return ex.running
}

// Execute drives an approved plan to a terminal state: it dispatches ready
// tasks concurrently, folds task completions into the plan's failure
// bookkeeping, replans on elevated failure rate, and finishes as completed
// or failed. The call blocks until the plan is terminal; cancellation goes
// through ctx or Cancel.
func (p *Planner) Execute(ctx context.Context, pl *domain.Plan) error {
	if pl == nil {
		return fmt.Errorf("%w: plan", compasserrors.ErrEmptyValue)
	}
	if p.runner == nil || p.executor == nil {
		return fmt.Errorf("%w: planner has no runner or executor", compasserrors.ErrEmptyValue)
	}

	if err := p.transition(ctx, pl, constants.PlanStateExecuting, "execution started"); err != nil {
		return err
	}
	if err := p.persist(ctx, pl); err != nil {
		return err
	}

	execCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	ex := newExecution(pl, cancel)

	p.mu.Lock()
	p.executions[pl.ID] = ex
	p.mu.Unlock()
	defer func() {
		p.mu.Lock()
		delete(p.executions, pl.ID)
		p.reports[pl.ID] = buildReport(pl, ex)
		p.mu.Unlock()
	}()

	runErr := p.runLoop(execCtx, ex)
	return p.finish(ctx, ex, runErr)
}

// runLoop is the event-driven dispatch loop: launch everything ready, wait
// for one completion, fold it in, repeat. It returns a non-nil error only
// for replanning exhaustion.
func (p *Planner) runLoop(ctx context.Context, ex *execution) error {
	g := &errgroup.Group{}
	g.SetLimit(p.maxConcurrent)
	defer func() { _ = g.Wait() }()

	for {
		if !ex.isCanceled() && !ex.replanPending() {
			p.dispatchReady(ctx, ex, g)
		}

		if ex.runningCount() == 0 {
			p.resolveParked(ex, true)

			switch {
			case ex.isCanceled():
				return nil
			case ex.replanPending():
				if err := p.replan(ctx, ex); err != nil {
					return err
				}
				continue
			default:
				return nil
			}
		}

		if ex.isCanceled() {
			// in-flight runs wind down cooperatively; just drain them
			p.handleCompletion(ex, <-ex.done)
			continue
		}

		select {
		case <-ctx.Done():
			ex.cancel()
		case c := <-ex.done:
			p.handleCompletion(ex, c)
		}
	}
}

// dispatchReady launches every dispatchable task, walking the execution
// order for determinism. Tasks whose gating predecessor terminally failed
// are skipped in place.
func (p *Planner) dispatchReady(ctx context.Context, ex *execution, g *errgroup.Group) {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	for _, id := range ex.plan.ExecutionOrder {
		task := ex.plan.Graph.Task(id)
		if task == nil || task.Status != constants.TaskStatusPending {
			continue
		}

		switch readiness(ex, task) {
		case taskBlocked:
			continue
		case taskUnreachable:
			task.Status = constants.TaskStatusSkipped
			p.emitTask(ex.plan.ID, task, "predecessor did not succeed")
		case taskReady:
			params := dispatchParams(ex, task)
			t := task
			launched := g.TryGo(func() error {
				run, err := p.runner.RunWithRetry(ctx, t, params, p.executor)
				ex.done <- completion{taskID: t.ID, run: run, err: err}
				return nil
			})
			if !launched {
				// concurrency limit reached, retried after the next completion
				return
			}
			task.Status = constants.TaskStatusRunning
			ex.running++
			p.emitTask(ex.plan.ID, task, "")
		}
	}
}

// taskReadiness classifies whether a pending task can be dispatched.
type taskReadiness int

const (
	taskBlocked taskReadiness = iota
	taskReady
	taskUnreachable
)

// readiness evaluates the start gates of a pending task. Callers hold ex.mu.
//
// Finish-to-start and data dependencies need a succeeded predecessor;
// start-to-start needs the predecessor running or succeeded;
// finish-to-finish never gates the start, only the completion.
func readiness(ex *execution, task *domain.Task) taskReadiness {
	result := taskReady
	for _, dep := range ex.plan.Graph.Predecessors(task.ID) {
		pred := ex.plan.Graph.Task(dep.PredecessorID)
		if pred == nil {
			continue
		}
		switch dep.Type {
		case constants.FinishToStart, constants.DataDependency:
			if pred.Status.Terminal() && pred.Status != constants.TaskStatusSucceeded {
				return taskUnreachable
			}
			if pred.Status != constants.TaskStatusSucceeded {
				result = taskBlocked
			}
		case constants.StartToStart:
			if pred.Status.Terminal() && pred.Status != constants.TaskStatusSucceeded {
				return taskUnreachable
			}
			if pred.Status != constants.TaskStatusRunning && pred.Status != constants.TaskStatusSucceeded {
				result = taskBlocked
			}
		case constants.FinishToFinish:
			// completion gate only
		}
	}
	return result
}

// dispatchParams clones the task parameters and injects data-dependency
// outputs. Callers hold ex.mu.
func dispatchParams(ex *execution, task *domain.Task) map[string]any {
	params := task.CloneParameters()
	for _, dep := range ex.plan.Graph.Predecessors(task.ID) {
		if dep.Type != constants.DataDependency || dep.OutputKey == "" {
			continue
		}
		if out, ok := ex.outputs[dep.PredecessorID]; ok {
			if v, ok := out[dep.OutputKey]; ok {
				params[dep.OutputKey] = v
			}
		}
	}
	return params
}

// handleCompletion folds one task completion into the plan: status,
// counters, parked finish-to-finish gates, and the replanning trigger.
func (p *Planner) handleCompletion(ex *execution, c completion) {
	ex.mu.Lock()
	ex.running--
	task := ex.plan.Graph.Task(c.taskID)
	if task == nil {
		ex.mu.Unlock()
		return
	}

	switch {
	case c.err != nil && c.run == nil && errors.Is(c.err, context.Canceled):
		// never completed: canceled mid-flight
		task.Status = constants.TaskStatusSkipped
		ex.mu.Unlock()
		p.emitTask(ex.plan.ID, task, "canceled")
		return
	case c.err != nil:
		p.finalizeFailure(ex, task, c)
	default:
		if !ffSatisfied(ex, task) {
			// completion parks until the finish-to-finish predecessor succeeds
			ex.parked[task.ID] = c
			ex.mu.Unlock()
			return
		}
		p.finalizeSuccess(ex, task, c)
	}
	ex.mu.Unlock()

	p.resolveParked(ex, false)
	p.checkReplanTrigger(ex)
}

// finalizeSuccess marks the task succeeded. Callers hold ex.mu.
func (p *Planner) finalizeSuccess(ex *execution, task *domain.Task, c completion) {
	task.Status = constants.TaskStatusSucceeded
	ex.plan.TotalAttempted++
	if c.run != nil && c.run.Result != nil && len(c.run.Result.Output) > 0 {
		ex.outputs[task.ID] = c.run.Result.Output
	}
	p.emitTask(ex.plan.ID, task, "")
}

// finalizeFailure marks the task failed and records the causal detail.
// Callers hold ex.mu.
func (p *Planner) finalizeFailure(ex *execution, task *domain.Task, c completion) {
	task.Status = constants.TaskStatusFailed
	ex.plan.TotalAttempted++
	ex.plan.FailureCount++

	detail := domain.FailureDetail{TaskID: task.ID, Error: c.err.Error()}
	if c.run != nil {
		detail.Signature = c.run.Signature
		detail.Attempts = c.run.Attempts
		ex.signatures[c.run.Signature]++
	}
	ex.failures = append(ex.failures, detail)
	p.emitTask(ex.plan.ID, task, c.err.Error())
}

// ffSatisfied reports whether all finish-to-finish predecessors of the task
// have succeeded. Callers hold ex.mu.
func ffSatisfied(ex *execution, task *domain.Task) bool {
	for _, dep := range ex.plan.Graph.Predecessors(task.ID) {
		if dep.Type != constants.FinishToFinish {
			continue
		}
		pred := ex.plan.Graph.Task(dep.PredecessorID)
		if pred != nil && pred.Status != constants.TaskStatusSucceeded {
			return false
		}
	}
	return true
}

// resolveParked releases parked completions whose finish-to-finish gate is
// now satisfied and fails those whose gate can never be satisfied. With
// force set, every remaining parked task fails: the loop is winding down
// and its gate will not open.
func (p *Planner) resolveParked(ex *execution, force bool) {
	ex.mu.Lock()
	defer ex.mu.Unlock()

	for {
		progressed := false
		for id, c := range ex.parked {
			task := ex.plan.Graph.Task(id)
			if task == nil {
				delete(ex.parked, id)
				continue
			}
			switch {
			case ffSatisfied(ex, task):
				delete(ex.parked, id)
				p.finalizeSuccess(ex, task, c)
				progressed = true
			case ffGateDead(ex, task) || force:
				delete(ex.parked, id)
				task.Status = constants.TaskStatusFailed
				ex.plan.TotalAttempted++
				ex.plan.FailureCount++
				ex.failures = append(ex.failures, domain.FailureDetail{
					TaskID: task.ID,
					Error:  "finish-to-finish predecessor did not succeed",
				})
				p.emitTask(ex.plan.ID, task, "finish-to-finish predecessor did not succeed")
				progressed = true
			}
		}
		if !progressed {
			return
		}
	}
}

// ffGateDead reports whether a finish-to-finish predecessor terminally
// failed, making the parked completion unreleasable. Callers hold ex.mu.
func ffGateDead(ex *execution, task *domain.Task) bool {
	for _, dep := range ex.plan.Graph.Predecessors(task.ID) {
		if dep.Type != constants.FinishToFinish {
			continue
		}
		pred := ex.plan.Graph.Task(dep.PredecessorID)
		if pred != nil && pred.Status.Terminal() && pred.Status != constants.TaskStatusSucceeded {
			return true
		}
	}
	return false
}

// finish transitions the plan to its terminal state based on how the loop
// ended.
func (p *Planner) finish(ctx context.Context, ex *execution, runErr error) error {
	pl := ex.plan

	// terminal bookkeeping must land even when the caller's ctx is gone
	ctx = context.WithoutCancel(ctx)

	// whatever never started stays skipped
	ex.mu.Lock()
	for _, task := range pl.Graph.Tasks {
		if !task.Status.Terminal() {
			task.Status = constants.TaskStatusSkipped
		}
	}
	failed := 0
	for _, task := range pl.Graph.Tasks {
		if task.Status == constants.TaskStatusFailed {
			failed++
		}
	}
	canceled := ex.canceled
	ex.mu.Unlock()

	switch {
	case runErr != nil:
		_ = p.transition(ctx, pl, constants.PlanStateFailed, runErr.Error())
		_ = p.persist(ctx, pl)
		return runErr
	case canceled:
		_ = p.transition(ctx, pl, constants.PlanStateFailed, "canceled")
		_ = p.persist(ctx, pl)
		return fmt.Errorf("%w: %s", compasserrors.ErrPlanCanceled, pl.ID)
	case failed > 0:
		if err := p.transition(ctx, pl, constants.PlanStateFailed, "tasks failed"); err != nil {
			return err
		}
		if err := p.persist(ctx, pl); err != nil {
			return err
		}
		return fmt.Errorf("%w: %d of %d tasks failed", compasserrors.ErrExecution, failed, len(pl.Graph.Tasks))
	default:
		if err := p.transition(ctx, pl, constants.PlanStateCompleted, "all tasks finished"); err != nil {
			return err
		}
		return p.persist(ctx, pl)
	}
}

// emitTask publishes a task status change.
func (p *Planner) emitTask(planID string, task *domain.Task, reason string) {
	evt := domain.NewEvent(domain.TopicTask, "task.status_changed")
	evt.PlanID = planID
	evt.TaskID = task.ID
	evt.Payload["status"] = task.Status.String()
	if reason != "" {
		evt.Payload["reason"] = reason
	}
	p.sink.Emit(evt)
}
