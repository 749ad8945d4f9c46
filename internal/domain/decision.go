package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/compass/internal/constants"
)

// DecisionContext is the input to the decision engine: the decision type
// plus whatever situational facts the caller can supply.
type DecisionContext struct {
	// Type selects which rules apply.
	Type constants.DecisionType `json:"type"`

	// PlanID and TaskID scope the decision when known.
	PlanID string `json:"plan_id,omitempty"`
	TaskID string `json:"task_id,omitempty"`

	// Signature is the classified error signature for error-handling
	// decisions, empty otherwise.
	Signature constants.ErrorSignature `json:"signature,omitempty"`

	// Facts carries free-form situational data rules may inspect.
	Facts map[string]any `json:"facts,omitempty"`
}

// Fact returns a named fact, or nil if absent.
func (c *DecisionContext) Fact(key string) any {
	if c.Facts == nil {
		return nil
	}
	return c.Facts[key]
}

// FloatFact returns a named numeric fact and whether it was present.
func (c *DecisionContext) FloatFact(key string) (float64, bool) {
	switch v := c.Fact(key).(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	}
	return 0, false
}

// Action is the concrete action a decision selects.
type Action struct {
	// Name identifies the action (e.g., "retry_with_backoff", "reroute").
	Name string `json:"name"`

	// Parameters carry action-specific values.
	Parameters map[string]any `json:"parameters,omitempty"`
}

// Decision is a scored, explainable decision produced by the engine.
// Every decision records the ordered rule IDs it evaluated and which
// fired, enabling deterministic replay from the audit trail.
type Decision struct {
	// ID is the unique identifier for the decision.
	ID string `json:"id"`

	// Type is the decision category.
	Type constants.DecisionType `json:"type"`

	// Action is the chosen action.
	Action Action `json:"action"`

	// ConfidenceScore is the 0..1 score behind the band.
	ConfidenceScore float64 `json:"confidence_score"`

	// ConfidenceLevel is the banded classification of the score.
	ConfidenceLevel constants.ConfidenceLevel `json:"confidence_level"`

	// EvaluatedRules lists every rule ID evaluated, in registry order.
	EvaluatedRules []string `json:"evaluated_rules"`

	// FiredRule is the ID of the rule that produced the action, empty when
	// the fallback fired.
	FiredRule string `json:"fired_rule,omitempty"`

	// RequiresHumanConfirmation is forced true for LOW confidence
	// regardless of the rule's own preference.
	RequiresHumanConfirmation bool `json:"requires_human_confirmation"`

	// FlaggedForReview marks MEDIUM decisions for post-hoc review.
	FlaggedForReview bool `json:"flagged_for_review"`

	// CreatedAt is when the decision was made.
	CreatedAt time.Time `json:"created_at"`
}

// NewDecision creates a decision shell for the given context.
func NewDecision(dctx DecisionContext) *Decision {
	return &Decision{
		ID:        uuid.NewString(),
		Type:      dctx.Type,
		CreatedAt: time.Now().UTC(),
	}
}
