package trial

import (
	"context"
	"fmt"
	"sort"

	"github.com/rs/zerolog"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
)

// minClusterSize is the smallest trial cluster worth reporting as a pattern.
const minClusterSize = 2

// ExtractInsights mines advisory insights from a trial set. The function is
// pure: it never mutates its input and re-running it over the same trials
// yields the same insights in the same order.
//
// Four categories are mined: success and failure clusters by signature,
// per-parameter outcome correlation, and per-strategy success rates.
func ExtractInsights(trials []*domain.Trial) []domain.Insight {
	if len(trials) == 0 {
		return nil
	}

	var insights []domain.Insight
	insights = append(insights, outcomePatterns(trials)...)
	insights = append(insights, parameterEffects(trials)...)
	insights = append(insights, strategyEffectiveness(trials)...)
	return insights
}

// sampleConfidence maps a sample size onto a 0..1 confidence weight.
// Small samples stay weak: 2 trials give 0.4, 8 give 0.73, 30 give 0.91.
func sampleConfidence(n int) float64 {
	return float64(n) / float64(n+3)
}

// outcomePatterns clusters failed trials by signature and successful trials
// as one cluster, emitting a pattern insight per cluster above the minimum
// size.
func outcomePatterns(trials []*domain.Trial) []domain.Insight {
	failuresBySig := map[constants.ErrorSignature][]*domain.Trial{}
	var successes []*domain.Trial

	for _, t := range trials {
		if t.Outcome == constants.TrialSuccess {
			successes = append(successes, t)
			continue
		}
		failuresBySig[t.Signature] = append(failuresBySig[t.Signature], t)
	}

	var insights []domain.Insight

	if len(successes) >= minClusterSize {
		insights = append(insights, domain.Insight{
			Category:   constants.InsightSuccessPattern,
			Summary:    fmt.Sprintf("%d of %d trials succeeded", len(successes), len(trials)),
			TrialIDs:   trialIDs(successes),
			Confidence: sampleConfidence(len(successes)),
			Payload: map[string]any{
				"success_count": len(successes),
				"total":         len(trials),
				"success_rate":  float64(len(successes)) / float64(len(trials)),
			},
		})
	}

	// deterministic iteration over signature clusters
	sigs := make([]constants.ErrorSignature, 0, len(failuresBySig))
	for sig := range failuresBySig {
		sigs = append(sigs, sig)
	}
	sort.Slice(sigs, func(i, j int) bool { return sigs[i] < sigs[j] })

	for _, sig := range sigs {
		cluster := failuresBySig[sig]
		if len(cluster) < minClusterSize {
			continue
		}
		insights = append(insights, domain.Insight{
			Category:   constants.InsightFailurePattern,
			Summary:    fmt.Sprintf("%d failures with signature %s", len(cluster), sig),
			TrialIDs:   trialIDs(cluster),
			Confidence: sampleConfidence(len(cluster)),
			Payload: map[string]any{
				"signature":     sig.String(),
				"failure_count": len(cluster),
				"total":         len(trials),
			},
		})
	}

	return insights
}

// parameterEffects correlates the presence of each parameter key with trial
// outcomes. A key whose trials succeed at a rate meaningfully different from
// the overall rate becomes a parameter_effect insight.
func parameterEffects(trials []*domain.Trial) []domain.Insight {
	overallSuccesses := 0
	withKey := map[string][]*domain.Trial{}
	successWithKey := map[string]int{}

	for _, t := range trials {
		if t.Outcome == constants.TrialSuccess {
			overallSuccesses++
		}
		for key := range t.Parameters {
			withKey[key] = append(withKey[key], t)
			if t.Outcome == constants.TrialSuccess {
				successWithKey[key]++
			}
		}
	}

	overallRate := float64(overallSuccesses) / float64(len(trials))

	keys := make([]string, 0, len(withKey))
	for key := range withKey {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var insights []domain.Insight
	for _, key := range keys {
		cluster := withKey[key]
		if len(cluster) < minClusterSize || len(cluster) == len(trials) {
			// A key every trial carries says nothing about the key.
			continue
		}
		rate := float64(successWithKey[key]) / float64(len(cluster))
		delta := rate - overallRate
		if delta < 0.2 && delta > -0.2 {
			continue
		}
		direction := "improves"
		if delta < 0 {
			direction = "degrades"
		}
		insights = append(insights, domain.Insight{
			Category:   constants.InsightParameterEffect,
			Summary:    fmt.Sprintf("parameter %q %s success rate (%.0f%% vs %.0f%% overall)", key, direction, rate*100, overallRate*100),
			TrialIDs:   trialIDs(cluster),
			Confidence: sampleConfidence(len(cluster)),
			Payload: map[string]any{
				"parameter":    key,
				"success_rate": rate,
				"overall_rate": overallRate,
				"delta":        delta,
			},
		})
	}
	return insights
}

// strategyEffectiveness summarizes per-decomposition-strategy success rates.
// These are the insights the decomposer consults when adjusting confidence.
func strategyEffectiveness(trials []*domain.Trial) []domain.Insight {
	byStrategy := map[constants.Strategy][]*domain.Trial{}
	successByStrategy := map[constants.Strategy]int{}

	for _, t := range trials {
		if t.Strategy == "" {
			continue
		}
		byStrategy[t.Strategy] = append(byStrategy[t.Strategy], t)
		if t.Outcome == constants.TrialSuccess {
			successByStrategy[t.Strategy]++
		}
	}

	strategies := make([]constants.Strategy, 0, len(byStrategy))
	for s := range byStrategy {
		strategies = append(strategies, s)
	}
	sort.Slice(strategies, func(i, j int) bool { return strategies[i] < strategies[j] })

	var insights []domain.Insight
	for _, strategy := range strategies {
		cluster := byStrategy[strategy]
		if len(cluster) < minClusterSize {
			continue
		}
		rate := float64(successByStrategy[strategy]) / float64(len(cluster))
		insights = append(insights, domain.Insight{
			Category:   constants.InsightStrategyEffectiveness,
			Summary:    fmt.Sprintf("strategy %s succeeds in %.0f%% of %d trials", strategy, rate*100, len(cluster)),
			TrialIDs:   trialIDs(cluster),
			Confidence: sampleConfidence(len(cluster)),
			Payload: map[string]any{
				"strategy":     strategy.String(),
				"success_rate": rate,
				"sample_size":  len(cluster),
			},
		})
	}
	return insights
}

func trialIDs(trials []*domain.Trial) []string {
	ids := make([]string, len(trials))
	for i, t := range trials {
		ids[i] = t.ID
	}
	return ids
}

// StoreInsights adapts a trial store to the contracts.InsightSource
// interface by mining the full history on each call.
type StoreInsights struct {
	store  Store
	logger zerolog.Logger
}

// NewStoreInsights wraps a store as an insight source.
func NewStoreInsights(store Store, logger zerolog.Logger) *StoreInsights {
	return &StoreInsights{
		store:  store,
		logger: logger.With().Str("component", "trial").Logger(),
	}
}

// Insights implements contracts.InsightSource. A store read failure yields
// no insights rather than an error: insights are advisory.
func (s *StoreInsights) Insights(ctx context.Context) []domain.Insight {
	trials, err := s.store.All(ctx)
	if err != nil {
		s.logger.Warn().Err(err).Msg("failed to load trial history for insights")
		return nil
	}
	return ExtractInsights(trials)
}
