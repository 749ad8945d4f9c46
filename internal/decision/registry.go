// Package decision provides the rule-based decision engine: a registry of
// scored rules per decision type, a synchronous Decide operation with
// confidence banding and a human-escalation policy, YAML priority tuning,
// and an append-only audit trail for replay.
//
// Import rules:
//   - CAN import: internal/clock, internal/constants, internal/contracts,
//     internal/domain, internal/errors, internal/events, std lib
//   - MUST NOT import: internal/plan, internal/decompose, internal/cli
package decision

import (
	"fmt"
	"sort"
	"sync"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
)

// Rule is one decision rule: an applicability predicate, an action
// producer, and a scoring function, registered for a single decision type
// with a priority. Rule values are immutable after registration; tuning
// adjusts effective priority in the registry, never the rule itself.
type Rule struct {
	// ID uniquely identifies the rule; required.
	ID string

	// Type is the decision type the rule can answer.
	Type constants.DecisionType

	// Priority orders rules within a type: highest first. Registration
	// order breaks ties, first registered winning.
	Priority int

	// Applies reports whether the rule can decide the given context.
	Applies func(dctx *domain.DecisionContext) bool

	// Produce builds the action the rule selects.
	Produce func(dctx *domain.DecisionContext) domain.Action

	// Score estimates confidence in the produced action, 0..1.
	Score func(dctx *domain.DecisionContext) float64
}

// registered couples a rule with its registry bookkeeping.
type registered struct {
	rule     *Rule
	index    int // insertion index, the final tie-break
	priority int // effective priority after tuning
	disabled bool
}

// Registry holds rules ordered by (type, priority desc, insertion index).
// The order is rebuilt on every registration and tuning change, so Decide
// only ever walks a precomputed slice.
type Registry struct {
	mu      sync.RWMutex
	rules   map[string]*registered
	byType  map[constants.DecisionType][]*registered
	nextIdx int
}

// NewRegistry creates an empty rule registry.
func NewRegistry() *Registry {
	return &Registry{
		rules:  make(map[string]*registered),
		byType: make(map[constants.DecisionType][]*registered),
	}
}

// Register adds a rule. Rules must have a unique non-empty ID, a valid
// type, and all three functions.
func (r *Registry) Register(rule *Rule) error {
	if rule == nil {
		return compasserrors.ErrRuleNil
	}
	if rule.ID == "" {
		return compasserrors.ErrRuleIDEmpty
	}
	if !rule.Type.Valid() {
		return fmt.Errorf("%w: %q", compasserrors.ErrUnknownDecisionType, rule.Type)
	}
	if rule.Applies == nil || rule.Produce == nil || rule.Score == nil {
		return fmt.Errorf("%w: rule %s is missing a function", compasserrors.ErrRuleNil, rule.ID)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rules[rule.ID]; exists {
		return fmt.Errorf("%w: %s", compasserrors.ErrRuleDuplicate, rule.ID)
	}

	reg := &registered{
		rule:     rule,
		index:    r.nextIdx,
		priority: rule.Priority,
	}
	r.nextIdx++
	r.rules[rule.ID] = reg
	r.rebuildLocked()
	return nil
}

// MustRegister registers a rule and panics on error. Used for the built-in
// default rule set, where a registration failure is a programming error.
func (r *Registry) MustRegister(rule *Rule) {
	if err := r.Register(rule); err != nil {
		panic(err)
	}
}

// ForType returns the enabled rules for a decision type in evaluation
// order: priority descending, registration order breaking ties.
func (r *Registry) ForType(dt constants.DecisionType) []*Rule {
	r.mu.RLock()
	defer r.mu.RUnlock()

	regs := r.byType[dt]
	rules := make([]*Rule, 0, len(regs))
	for _, reg := range regs {
		rules = append(rules, reg.rule)
	}
	return rules
}

// Len returns the number of registered rules, including disabled ones.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.rules)
}

// ApplyTuning overrides effective priorities and disables rules per the
// tuning document, then rebuilds evaluation order. Overrides for unknown
// rule IDs are ignored: tuning files outlive rule sets.
func (r *Registry) ApplyTuning(t *Tuning) {
	if t == nil {
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, override := range t.Rules {
		reg, ok := r.rules[override.ID]
		if !ok {
			continue
		}
		if override.Priority != nil {
			reg.priority = *override.Priority
		}
		reg.disabled = override.Disabled
	}
	r.rebuildLocked()
}

// rebuildLocked recomputes the per-type evaluation order. Callers hold the
// write lock.
func (r *Registry) rebuildLocked() {
	byType := make(map[constants.DecisionType][]*registered, len(r.byType))
	for _, reg := range r.rules {
		if reg.disabled {
			continue
		}
		byType[reg.rule.Type] = append(byType[reg.rule.Type], reg)
	}
	for _, regs := range byType {
		sort.Slice(regs, func(i, j int) bool {
			if regs[i].priority != regs[j].priority {
				return regs[i].priority > regs[j].priority
			}
			return regs[i].index < regs[j].index
		})
	}
	r.byType = byType
}
