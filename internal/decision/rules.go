package decision

import (
	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
)

// DefaultRegistry returns a registry preloaded with the built-in rule set.
// Every decision type has at least a catch-all rule so the fallback only
// fires for contexts the defaults were tuned away from.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	for _, rule := range defaultRules() {
		r.MustRegister(rule)
	}
	return r
}

// defaultRules builds the built-in rule set, two to three rules per
// decision type: a specific high-priority rule gated on context facts and a
// low-priority catch-all.
func defaultRules() []*Rule {
	return []*Rule{
		// Routing
		{
			ID:       "route-by-capability",
			Type:     constants.DecisionRouting,
			Priority: 100,
			Applies: func(dctx *domain.DecisionContext) bool {
				caps, ok := dctx.Fact("required_capabilities").([]string)
				return ok && len(caps) > 0
			},
			Produce: func(dctx *domain.DecisionContext) domain.Action {
				return domain.Action{
					Name: "route_to_capable_executor",
					Parameters: map[string]any{
						"required_capabilities": dctx.Fact("required_capabilities"),
					},
				}
			},
			Score: func(*domain.DecisionContext) float64 { return 0.90 },
		},
		{
			ID:       "route-default",
			Type:     constants.DecisionRouting,
			Priority: 10,
			Applies:  func(*domain.DecisionContext) bool { return true },
			Produce: func(*domain.DecisionContext) domain.Action {
				return domain.Action{Name: "route_to_default_executor"}
			},
			Score: func(*domain.DecisionContext) float64 { return 0.70 },
		},

		// Resource
		{
			ID:       "resource-reduce-on-pressure",
			Type:     constants.DecisionResource,
			Priority: 100,
			Applies: func(dctx *domain.DecisionContext) bool {
				util, ok := dctx.FloatFact("utilization")
				return ok && util > 0.8
			},
			Produce: func(*domain.DecisionContext) domain.Action {
				return domain.Action{
					Name:       "reduce_concurrency",
					Parameters: map[string]any{"factor": 0.5},
				}
			},
			Score: func(dctx *domain.DecisionContext) float64 {
				util, _ := dctx.FloatFact("utilization")
				// deeper pressure means a clearer call
				return clampRange(0.6+(util-0.8), 0.6, 0.85)
			},
		},
		{
			ID:       "resource-keep-allocation",
			Type:     constants.DecisionResource,
			Priority: 10,
			Applies:  func(*domain.DecisionContext) bool { return true },
			Produce: func(*domain.DecisionContext) domain.Action {
				return domain.Action{Name: "keep_allocation"}
			},
			Score: func(*domain.DecisionContext) float64 { return 0.75 },
		},

		// Error handling
		{
			ID:       "error-fail-fast-non-retryable",
			Type:     constants.DecisionErrorHandling,
			Priority: 110,
			Applies: func(dctx *domain.DecisionContext) bool {
				return dctx.Signature != "" && !dctx.Signature.Retryable()
			},
			Produce: func(*domain.DecisionContext) domain.Action {
				return domain.Action{Name: "fail_task"}
			},
			Score: func(*domain.DecisionContext) float64 { return 0.95 },
		},
		{
			ID:       "error-retry-transient",
			Type:     constants.DecisionErrorHandling,
			Priority: 100,
			Applies: func(dctx *domain.DecisionContext) bool {
				return dctx.Signature == constants.SignatureTransient ||
					dctx.Signature == constants.SignatureResourceExhaustion
			},
			Produce: func(dctx *domain.DecisionContext) domain.Action {
				return domain.Action{
					Name:       "retry_with_backoff",
					Parameters: map[string]any{"signature": dctx.Signature.String()},
				}
			},
			Score: func(*domain.DecisionContext) float64 { return 0.85 },
		},
		{
			ID:       "error-unknown-signature",
			Type:     constants.DecisionErrorHandling,
			Priority: 10,
			Applies:  func(*domain.DecisionContext) bool { return true },
			Produce: func(*domain.DecisionContext) domain.Action {
				return domain.Action{Name: "retry_once_then_fail"}
			},
			// Unclassified failures are a guess; keep this below the LOW
			// band so a human confirms.
			Score: func(*domain.DecisionContext) float64 { return 0.45 },
		},

		// Priority
		{
			ID:       "priority-boost-at-risk",
			Type:     constants.DecisionPriority,
			Priority: 100,
			Applies: func(dctx *domain.DecisionContext) bool {
				atRisk, ok := dctx.Fact("deadline_at_risk").(bool)
				return ok && atRisk
			},
			Produce: func(dctx *domain.DecisionContext) domain.Action {
				return domain.Action{
					Name:       "boost_priority",
					Parameters: map[string]any{"task_id": dctx.TaskID},
				}
			},
			Score: func(*domain.DecisionContext) float64 { return 0.82 },
		},
		{
			ID:       "priority-keep-order",
			Type:     constants.DecisionPriority,
			Priority: 10,
			Applies:  func(*domain.DecisionContext) bool { return true },
			Produce: func(*domain.DecisionContext) domain.Action {
				return domain.Action{Name: "keep_order"}
			},
			Score: func(*domain.DecisionContext) float64 { return 0.70 },
		},

		// Escalation
		{
			ID:       "escalate-repeated-failure",
			Type:     constants.DecisionEscalation,
			Priority: 100,
			Applies: func(dctx *domain.DecisionContext) bool {
				rate, ok := dctx.FloatFact("failure_rate")
				return ok && rate > 0.5
			},
			Produce: func(dctx *domain.DecisionContext) domain.Action {
				return domain.Action{
					Name:       "notify_operator",
					Parameters: map[string]any{"plan_id": dctx.PlanID},
				}
			},
			Score: func(*domain.DecisionContext) float64 { return 0.90 },
		},
		{
			ID:       "escalate-hold",
			Type:     constants.DecisionEscalation,
			Priority: 10,
			Applies:  func(*domain.DecisionContext) bool { return true },
			Produce: func(*domain.DecisionContext) domain.Action {
				return domain.Action{Name: "no_escalation"}
			},
			Score: func(*domain.DecisionContext) float64 { return 0.65 },
		},

		// Optimization
		{
			ID:       "optimize-batch-size",
			Type:     constants.DecisionOptimization,
			Priority: 100,
			Applies: func(dctx *domain.DecisionContext) bool {
				drop, ok := dctx.FloatFact("throughput_drop")
				return ok && drop > 0.2
			},
			Produce: func(*domain.DecisionContext) domain.Action {
				return domain.Action{
					Name:       "tune_batch_size",
					Parameters: map[string]any{"direction": "down"},
				}
			},
			Score: func(*domain.DecisionContext) float64 { return 0.60 },
		},
		{
			ID:       "optimize-no-change",
			Type:     constants.DecisionOptimization,
			Priority: 10,
			Applies:  func(*domain.DecisionContext) bool { return true },
			Produce: func(*domain.DecisionContext) domain.Action {
				return domain.Action{Name: "no_change"}
			},
			Score: func(*domain.DecisionContext) float64 { return 0.80 },
		},
	}
}
