// Package decompose turns a high-level goal into a validated task graph.
//
// Four strategies are supported: hierarchical (recursive sub-goal splitting
// to a depth limit), sequential (a strict finish-to-start chain), parallel
// (independent siblings joined by a single join task), and hybrid (phases
// of parallel siblings chained sequentially). Every produced graph is
// validated and cycle-checked before it is returned.
//
// Import rules:
//   - CAN import: internal/constants, internal/contracts, internal/ctxutil,
//     internal/domain, internal/errors, internal/graph, std lib
//   - MUST NOT import: internal/plan, internal/decision, internal/cli
package decompose

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/contracts"
	"github.com/mrz1836/compass/internal/ctxutil"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
	"github.com/mrz1836/compass/internal/graph"
)

// chainDecay is the per-link confidence decay along a sequential chain.
// It keeps chain confidence strictly non-increasing.
const chainDecay = 0.98

// confidenceFloor is the lowest confidence any adjustment may produce.
const confidenceFloor = 0.05

// Context keys callers may use to structure a goal explicitly instead of
// relying on text splitting. The canonical values live in
// internal/constants so non-importers of this package can build contexts.
const (
	// ContextSteps holds an ordered []string of step descriptions.
	ContextSteps = constants.GoalContextSteps

	// ContextPhases holds an ordered [][]string: phases of parallel steps.
	ContextPhases = constants.GoalContextPhases
)

// Options configures a Decomposer. Zero fields take defaults.
type Options struct {
	// DefaultStrategy is used when Decompose is called with an empty
	// strategy (default constants.StrategyHybrid).
	DefaultStrategy constants.Strategy

	// DepthLimit bounds recursive splitting for the hierarchical strategy
	// (default constants.DefaultDepthLimit).
	DepthLimit int

	// InsightsEnabled toggles advisory confidence adjustment.
	InsightsEnabled bool

	// MaxAdjustment bounds how far an insight may move a confidence
	// estimate in either direction.
	MaxAdjustment float64

	// Insights supplies strategy-effectiveness history when enabled.
	Insights contracts.InsightSource

	// Logger for decomposition diagnostics.
	Logger zerolog.Logger
}

// Decomposer produces task graphs from goals.
type Decomposer struct {
	defaultStrategy constants.Strategy
	depthLimit      int
	insightsEnabled bool
	maxAdjustment   float64
	insights        contracts.InsightSource
	logger          zerolog.Logger
}

// New creates a decomposer from options.
func New(opts Options) *Decomposer {
	if opts.DefaultStrategy == "" {
		opts.DefaultStrategy = constants.StrategyHybrid
	}
	if opts.DepthLimit <= 0 {
		opts.DepthLimit = constants.DefaultDepthLimit
	}
	return &Decomposer{
		defaultStrategy: opts.DefaultStrategy,
		depthLimit:      opts.DepthLimit,
		insightsEnabled: opts.InsightsEnabled,
		maxAdjustment:   opts.MaxAdjustment,
		insights:        opts.Insights,
		logger:          opts.Logger.With().Str("component", "decompose").Logger(),
	}
}

// Decompose turns a goal into a validated task graph using the named
// strategy (empty selects the configured default). The goal context may
// structure the goal explicitly via the "steps" or "phases" keys; otherwise
// the goal text is split on common separators.
//
// An empty or unparseable goal fails with ErrDecomposition. A cyclic
// product, which indicates a decomposition bug, fails with a CycleError
// naming the offending tasks.
func (d *Decomposer) Decompose(ctx context.Context, goal string, goalCtx map[string]any, strategy constants.Strategy) (*domain.TaskGraph, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	goal = strings.TrimSpace(goal)
	if goal == "" {
		return nil, fmt.Errorf("%w: goal is empty", compasserrors.ErrDecomposition)
	}

	if strategy == "" {
		strategy = d.defaultStrategy
	}
	if !strategy.Valid() {
		return nil, fmt.Errorf("%w: %q", compasserrors.ErrUnknownStrategy, strategy)
	}

	var (
		g   *domain.TaskGraph
		err error
	)
	switch strategy {
	case constants.StrategyHierarchical:
		g, err = d.hierarchical(goal, goalCtx)
	case constants.StrategySequential:
		g, err = d.sequential(goal, goalCtx)
	case constants.StrategyParallel:
		g, err = d.parallel(goal, goalCtx)
	case constants.StrategyHybrid:
		g, err = d.hybrid(goal, goalCtx)
	}
	if err != nil {
		return nil, err
	}

	g.Strategy = strategy
	g.Goal = goal
	for _, t := range g.Tasks {
		t.Strategy = strategy
	}

	if d.insightsEnabled {
		d.adjustConfidence(ctx, g, strategy)
	}

	if err := graph.Validate(g); err != nil {
		return nil, fmt.Errorf("%w: produced invalid graph: %s", compasserrors.ErrDecomposition, err)
	}
	if err := graph.DetectCycle(g); err != nil {
		return nil, err
	}

	d.logger.Debug().
		Str("strategy", strategy.String()).
		Int("tasks", len(g.Tasks)).
		Int("dependencies", len(g.Dependencies)).
		Msg("goal decomposed")

	return g, nil
}

// adjustConfidence applies a bounded advisory adjustment from
// strategy-effectiveness insights for the chosen strategy. Confidence never
// drops below the floor or rises above 1.
func (d *Decomposer) adjustConfidence(ctx context.Context, g *domain.TaskGraph, strategy constants.Strategy) {
	if d.insights == nil || d.maxAdjustment <= 0 {
		return
	}

	var direction float64
	for _, in := range d.insights.Insights(ctx) {
		if in.Category != constants.InsightStrategyEffectiveness {
			continue
		}
		if in.Payload["strategy"] != strategy.String() {
			continue
		}
		rate, ok := in.Payload["success_rate"].(float64)
		if !ok {
			continue
		}
		// centered on 0.5: better-than-even history pushes up
		direction += (rate - 0.5) * 2 * in.Confidence
	}
	if direction == 0 {
		return
	}
	if direction > 1 {
		direction = 1
	}
	if direction < -1 {
		direction = -1
	}

	delta := direction * d.maxAdjustment
	for _, t := range g.Tasks {
		t.Confidence = clampConfidence(t.Confidence + delta)
	}

	d.logger.Debug().
		Str("strategy", strategy.String()).
		Float64("delta", delta).
		Msg("insight adjustment applied to task confidence")
}

func clampConfidence(v float64) float64 {
	if v < confidenceFloor {
		return confidenceFloor
	}
	if v > 1 {
		return 1
	}
	return v
}
