// Package cli provides the command-line interface for compass.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
	"github.com/mrz1836/compass/internal/errors"
	"github.com/mrz1836/compass/internal/trial"
)

// AddDecideCommand adds the decide command to the root command.
func AddDecideCommand(root *cobra.Command) {
	root.AddCommand(newDecideCmd())
}

func newDecideCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decide <type>",
		Short: "Evaluate a decision against the rule registry",
		Long: `Evaluate a decision context against the rule registry and print the
scored, explainable result.

Types: routing, resource, error_handling, priority, escalation, optimization.

Situational facts are passed as repeated --fact key=value flags; numeric and
boolean values are coerced. Rule priorities can be tuned via
~/.compass/rules.yaml. Low-confidence decisions prompt for confirmation when
a terminal is attached.

Examples:
  compass decide error_handling --signature transient --fact attempts=2
  compass decide routing --fact queue_depth=40 --task 7f3a...
  compass decide escalation --fact failure_rate=0.6 --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecide(cmd.Context(), cmd, args[0], os.Stdout)
		},
	}

	cmd.Flags().StringArrayP("fact", "f", nil, "situational fact as key=value (repeatable)")
	cmd.Flags().String("signature", "", "classified error signature for error_handling decisions")
	cmd.Flags().String("plan", "", "plan ID the decision is scoped to")
	cmd.Flags().String("task", "", "task ID the decision is scoped to")

	return cmd
}

func runDecide(ctx context.Context, cmd *cobra.Command, decisionType string, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	out := NewOutput(w, cmd.Flag("output").Value.String())

	dt := constants.DecisionType(decisionType)
	if !dt.Valid() {
		return fmt.Errorf("%w: %q", errors.ErrUnknownDecisionType, decisionType)
	}

	facts, err := parseFacts(cmd)
	if err != nil {
		return err
	}

	cfg := loadConfigOrDefaults(ctx, logger)

	store, err := openTrialStore(cfg)
	if err != nil {
		return fmt.Errorf("open trial store: %w", err)
	}
	defer func() { _ = store.Close() }()

	engine, err := newDecisionEngine(cfg, trial.NewStoreInsights(store, logger), logger)
	if err != nil {
		return err
	}

	dctx := &domain.DecisionContext{
		Type:      dt,
		PlanID:    cmd.Flag("plan").Value.String(),
		TaskID:    cmd.Flag("task").Value.String(),
		Signature: constants.ErrorSignature(cmd.Flag("signature").Value.String()),
		Facts:     facts,
	}

	d, err := engine.Decide(ctx, dctx)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(d)
	}
	writeDecision(out, d)

	if d.RequiresHumanConfirmation {
		approved, err := NewTerminalConfirmer().RequestConfirmation(ctx, d)
		if err != nil {
			logger.Warn().Err(err).Str("decision_id", d.ID).Msg("confirmation unavailable")
			out.Linef("Confirmation unavailable; treat the action as rejected.")
			return nil
		}
		if approved {
			out.Linef("Approved.")
		} else {
			out.Linef("Rejected.")
		}
	}
	return nil
}

// parseFacts turns repeated --fact key=value flags into a fact map, coercing
// numeric and boolean values so rules can compare them directly.
func parseFacts(cmd *cobra.Command) (map[string]any, error) {
	raw, err := cmd.Flags().GetStringArray("fact")
	if err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, nil
	}

	facts := make(map[string]any, len(raw))
	for _, pair := range raw {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("%w: fact %q must be key=value", errors.ErrEmptyValue, pair)
		}
		facts[key] = coerceFact(value)
	}
	return facts, nil
}

// coerceFact converts a fact value string to the most specific of
// float64, bool, or string.
func coerceFact(value string) any {
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	if b, err := strconv.ParseBool(value); err == nil {
		return b
	}
	return value
}
