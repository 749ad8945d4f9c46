package decision

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/mrz1836/compass/internal/clock"
	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/contracts"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
	"github.com/mrz1836/compass/internal/events"
)

// FallbackActionName is the action produced when no rule matches a context.
const FallbackActionName = "escalate_to_human"

// fallbackScore keeps no-rule decisions firmly in the LOW band.
const fallbackScore = 0.25

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	// Registry supplies the rules (default: DefaultRegistry()).
	Registry *Registry

	// HighThreshold is the exclusive lower bound for HIGH confidence
	// (default constants.HighConfidenceThreshold).
	HighThreshold float64

	// LowThreshold is the bound below which confidence is LOW
	// (default constants.LowConfidenceThreshold).
	LowThreshold float64

	// InsightsEnabled toggles advisory score blending.
	InsightsEnabled bool

	// MaxAdjustment bounds how far insights may move a score (either
	// direction).
	MaxAdjustment float64

	// Insights supplies historical insights when blending is enabled.
	Insights contracts.InsightSource

	// Audit receives every decision (default: a fresh trail).
	Audit *AuditTrail

	// Sink receives a decision event per Decide call (default no-op).
	Sink contracts.EventSink

	// Clock supplies decision timestamps (default real clock).
	Clock clock.Clock

	// Logger for decision diagnostics.
	Logger zerolog.Logger
}

// Engine evaluates decision contexts against the rule registry. Decide is
// synchronous and never blocks on human input: low-confidence decisions are
// flagged for confirmation, and the caller consults the confirmer.
// Evaluation is read-mostly; only the audit append takes a lock.
type Engine struct {
	registry        *Registry
	highThreshold   float64
	lowThreshold    float64
	insightsEnabled bool
	maxAdjustment   float64
	insights        contracts.InsightSource
	audit           *AuditTrail
	sink            contracts.EventSink
	clk             clock.Clock
	logger          zerolog.Logger
}

// NewEngine creates a decision engine from options.
func NewEngine(opts Options) *Engine {
	if opts.Registry == nil {
		opts.Registry = DefaultRegistry()
	}
	if opts.HighThreshold <= 0 {
		opts.HighThreshold = constants.HighConfidenceThreshold
	}
	if opts.LowThreshold <= 0 {
		opts.LowThreshold = constants.LowConfidenceThreshold
	}
	if opts.Audit == nil {
		opts.Audit = NewAuditTrail()
	}
	if opts.Sink == nil {
		opts.Sink = events.NoopSink{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	return &Engine{
		registry:        opts.Registry,
		highThreshold:   opts.HighThreshold,
		lowThreshold:    opts.LowThreshold,
		insightsEnabled: opts.InsightsEnabled,
		maxAdjustment:   opts.MaxAdjustment,
		insights:        opts.Insights,
		audit:           opts.Audit,
		sink:            opts.Sink,
		clk:             opts.Clock,
		logger:          opts.Logger.With().Str("component", "decision").Logger(),
	}
}

// Audit exposes the engine's audit trail.
func (e *Engine) Audit() *AuditTrail {
	return e.audit
}

// Decide evaluates a decision context and returns a scored, explainable
// decision. Rules for the context's type are walked in registry order;
// the first applicable rule fires. No applicable rule yields the fallback
// action with forced human confirmation.
func (e *Engine) Decide(ctx context.Context, dctx *domain.DecisionContext) (*domain.Decision, error) {
	if dctx == nil {
		return nil, fmt.Errorf("%w: decision context is nil", compasserrors.ErrEmptyValue)
	}
	if !dctx.Type.Valid() {
		return nil, fmt.Errorf("%w: %q", compasserrors.ErrUnknownDecisionType, dctx.Type)
	}

	decision := domain.NewDecision(*dctx)
	decision.CreatedAt = e.clk.Now().UTC()

	rules := e.registry.ForType(dctx.Type)
	var fired *Rule
	for _, rule := range rules {
		decision.EvaluatedRules = append(decision.EvaluatedRules, rule.ID)
		if fired == nil && rule.Applies(dctx) {
			fired = rule
		}
	}

	if fired != nil {
		decision.FiredRule = fired.ID
		decision.Action = fired.Produce(dctx)
		score := e.blendInsights(ctx, dctx, clamp01(fired.Score(dctx)))
		decision.ConfidenceScore = score
		decision.ConfidenceLevel = e.band(score)

		switch decision.ConfidenceLevel {
		case constants.ConfidenceLow:
			// LOW always goes to a human, regardless of the rule's preference.
			decision.RequiresHumanConfirmation = true
		case constants.ConfidenceMedium:
			decision.FlaggedForReview = true
		case constants.ConfidenceHigh:
		}
	} else {
		// No applicable rule: unconditionally LOW and escalated. Insights
		// are advisory and never lift a fallback out of forced confirmation.
		decision.Action = domain.Action{
			Name: FallbackActionName,
			Parameters: map[string]any{
				"reason": "no applicable rule",
			},
		}
		decision.ConfidenceScore = fallbackScore
		decision.ConfidenceLevel = constants.ConfidenceLow
		decision.RequiresHumanConfirmation = true
	}

	e.audit.Append(decision)

	evt := domain.NewEvent(domain.TopicDecision, "decision.made")
	evt.PlanID = dctx.PlanID
	evt.TaskID = dctx.TaskID
	evt.DecisionID = decision.ID
	evt.Payload["type"] = decision.Type.String()
	evt.Payload["action"] = decision.Action.Name
	evt.Payload["confidence_score"] = decision.ConfidenceScore
	evt.Payload["confidence_level"] = decision.ConfidenceLevel.String()
	e.sink.Emit(evt)

	e.logger.Debug().
		Str("decision_id", decision.ID).
		Str("type", decision.Type.String()).
		Str("fired_rule", decision.FiredRule).
		Float64("score", decision.ConfidenceScore).
		Str("level", decision.ConfidenceLevel.String()).
		Msg("decision made")

	return decision, nil
}

// band maps a score onto the engine's configured confidence bands.
func (e *Engine) band(score float64) constants.ConfidenceLevel {
	switch {
	case score > e.highThreshold:
		return constants.ConfidenceHigh
	case score < e.lowThreshold:
		return constants.ConfidenceLow
	default:
		return constants.ConfidenceMedium
	}
}

// blendInsights applies a bounded advisory adjustment from historical
// insights. Disabled blending or an absent source returns the score as-is.
func (e *Engine) blendInsights(ctx context.Context, dctx *domain.DecisionContext, score float64) float64 {
	if !e.insightsEnabled || e.insights == nil || e.maxAdjustment <= 0 {
		return score
	}

	direction := insightDirection(e.insights.Insights(ctx), dctx)
	if direction == 0 {
		return score
	}
	return clamp01(score + direction*e.maxAdjustment)
}

// insightDirection reduces the insights relevant to a context to a value in
// [-1, 1]: positive when history favors the situation, negative against.
func insightDirection(insights []domain.Insight, dctx *domain.DecisionContext) float64 {
	var direction float64
	for _, in := range insights {
		switch in.Category {
		case constants.InsightFailurePattern:
			// History of the same failure signature argues against confidence.
			if dctx.Signature != "" && in.Payload["signature"] == dctx.Signature.String() {
				direction -= in.Confidence
			}
		case constants.InsightSuccessPattern:
			if rate, ok := in.Payload["success_rate"].(float64); ok {
				// Centered on 0.5: better-than-even history pushes up.
				direction += (rate - 0.5) * 2 * in.Confidence
			}
		case constants.InsightParameterEffect, constants.InsightStrategyEffectiveness:
			// Consumed by the decomposer, not by decision scoring.
		}
	}
	return clampRange(direction, -1, 1)
}

func clamp01(v float64) float64 {
	return clampRange(v, 0, 1)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
