package plan

import (
	"context"
	"fmt"
	"sync"

	"github.com/gammazero/toposort"
	"github.com/rs/zerolog"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/contracts"
	"github.com/mrz1836/compass/internal/ctxutil"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
	"github.com/mrz1836/compass/internal/events"
	"github.com/mrz1836/compass/internal/graph"
)

// Decomposer regenerates a task graph during replanning. The concrete
// implementation lives in internal/decompose; the planner only needs this
// slice of it.
type Decomposer interface {
	Decompose(ctx context.Context, goal string, goalCtx map[string]any, strategy constants.Strategy) (*domain.TaskGraph, error)
}

// TaskRunner executes one task with adaptive retries. The concrete
// implementation is the trial engine.
type TaskRunner interface {
	RunWithRetry(ctx context.Context, task *domain.Task, params map[string]any, executor contracts.Executor) (*domain.TrialRun, error)
}

// Options configures a Planner. Zero fields take defaults; Decomposer,
// Runner, and Executor are required for Execute but not for Create/Approve.
type Options struct {
	// Decomposer regenerates graphs on replanning.
	Decomposer Decomposer

	// Runner executes individual tasks with retries.
	Runner TaskRunner

	// Executor is the external task-execution backend passed to the runner.
	Executor contracts.Executor

	// Store persists plans across transitions when set.
	Store Store

	// Sink receives plan and task events.
	Sink contracts.EventSink

	// FailureRateThreshold triggers replanning when exceeded
	// (default constants.DefaultFailureRateThreshold).
	FailureRateThreshold float64

	// MinSampleSize is the minimum completions before the failure rate is
	// meaningful (default constants.DefaultMinSampleSize).
	MinSampleSize int

	// MaxReplans bounds replanning per plan (default constants.DefaultMaxReplans).
	MaxReplans int

	// MaxConcurrent limits concurrent task dispatch
	// (default constants.DefaultMaxConcurrent).
	MaxConcurrent int

	// Logger for supervision diagnostics.
	Logger zerolog.Logger
}

// Planner creates, approves, executes, and cancels plans.
type Planner struct {
	decomposer    Decomposer
	runner        TaskRunner
	executor      contracts.Executor
	store         Store
	sink          contracts.EventSink
	threshold     float64
	minSample     int
	maxReplans    int
	maxConcurrent int
	logger        zerolog.Logger

	mu         sync.Mutex
	executions map[string]*execution
	reports    map[string]*Report
}

// NewPlanner creates a planner from options.
func NewPlanner(opts Options) *Planner {
	if opts.Sink == nil {
		opts.Sink = events.NoopSink{}
	}
	if opts.FailureRateThreshold <= 0 {
		opts.FailureRateThreshold = constants.DefaultFailureRateThreshold
	}
	if opts.MinSampleSize <= 0 {
		opts.MinSampleSize = constants.DefaultMinSampleSize
	}
	if opts.MaxReplans <= 0 {
		opts.MaxReplans = constants.DefaultMaxReplans
	}
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = constants.DefaultMaxConcurrent
	}
	return &Planner{
		decomposer:    opts.Decomposer,
		runner:        opts.Runner,
		executor:      opts.Executor,
		store:         opts.Store,
		sink:          opts.Sink,
		threshold:     opts.FailureRateThreshold,
		minSample:     opts.MinSampleSize,
		maxReplans:    opts.MaxReplans,
		maxConcurrent: opts.MaxConcurrent,
		logger:        opts.Logger.With().Str("component", "plan").Logger(),
		executions:    make(map[string]*execution),
		reports:       make(map[string]*Report),
	}
}

// Create validates the graph and wraps it into a draft plan.
func (p *Planner) Create(ctx context.Context, g *domain.TaskGraph) (*domain.Plan, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if err := graph.Validate(g); err != nil {
		return nil, err
	}
	if err := graph.DetectCycle(g); err != nil {
		return nil, err
	}

	pl := domain.NewPlan(g)
	if p.store != nil {
		if err := p.store.Create(ctx, pl); err != nil {
			return nil, err
		}
	}

	evt := domain.NewEvent(domain.TopicPlan, "plan.created")
	evt.PlanID = pl.ID
	evt.Payload["tasks"] = len(g.Tasks)
	p.sink.Emit(evt)

	p.logger.Debug().Str("plan_id", pl.ID).Int("tasks", len(g.Tasks)).Msg("plan created")
	return pl, nil
}

// Approve moves a draft plan to approved and computes its execution order.
// The graph's acyclicity is re-validated with an independent topological
// sort before the order is trusted.
func (p *Planner) Approve(ctx context.Context, pl *domain.Plan) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if pl == nil {
		return fmt.Errorf("%w: plan", compasserrors.ErrEmptyValue)
	}

	order, err := graph.TopologicalOrder(pl.Graph)
	if err != nil {
		return err
	}
	if err := recheckAcyclic(pl.Graph); err != nil {
		return err
	}

	if err := p.transition(ctx, pl, constants.PlanStateApproved, "approved"); err != nil {
		return err
	}
	pl.ExecutionOrder = order
	return p.persist(ctx, pl)
}

// Cancel stops an executing plan: not-yet-started tasks are never
// dispatched, in-flight tasks finish cooperatively, and the plan fails
// with a canceled reason. Returns ErrNoExecution when the plan has no
// execution in flight.
func (p *Planner) Cancel(planID string) error {
	p.mu.Lock()
	ex, ok := p.executions[planID]
	p.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", compasserrors.ErrNoExecution, planID)
	}
	ex.cancel()
	return nil
}

// Report returns the execution report recorded for the plan's most recent
// Execute call, or nil when the plan never executed.
func (p *Planner) Report(planID string) *Report {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.reports[planID]
}

// transition applies a state change, emits the transition event, and logs it.
func (p *Planner) transition(ctx context.Context, pl *domain.Plan, to constants.PlanState, reason string) error {
	from := pl.State
	if err := Transition(ctx, pl, to, reason); err != nil {
		return err
	}

	evt := domain.NewEvent(domain.TopicPlan, "plan.state_changed")
	evt.PlanID = pl.ID
	evt.Payload["from"] = from.String()
	evt.Payload["to"] = to.String()
	if reason != "" {
		evt.Payload["reason"] = reason
	}
	p.sink.Emit(evt)

	p.logger.Debug().
		Str("plan_id", pl.ID).
		Str("from", from.String()).
		Str("to", to.String()).
		Str("reason", reason).
		Msg("plan state changed")
	return nil
}

// persist saves the plan when a store is configured.
func (p *Planner) persist(ctx context.Context, pl *domain.Plan) error {
	if p.store == nil {
		return nil
	}
	return p.store.Update(ctx, pl)
}

// recheckAcyclic re-validates acyclicity with gammazero/toposort, an
// implementation independent of internal/graph. Disagreement between the
// two would indicate a bug in either.
func recheckAcyclic(g *domain.TaskGraph) error {
	edges := make([]toposort.Edge, 0, len(g.Tasks)+len(g.Dependencies))
	for _, t := range g.Tasks {
		edges = append(edges, toposort.Edge{nil, t.ID})
	}
	for _, d := range g.Dependencies {
		edges = append(edges, toposort.Edge{d.PredecessorID, d.SuccessorID})
	}
	if _, err := toposort.Toposort(edges); err != nil {
		return fmt.Errorf("%w: %s", compasserrors.ErrCycleDetected, err)
	}
	return nil
}
