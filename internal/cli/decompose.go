// Package cli provides the command-line interface for compass.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/errors"
	"github.com/mrz1836/compass/internal/trial"
)

// AddDecomposeCommand adds the decompose command to the root command.
func AddDecomposeCommand(root *cobra.Command) {
	root.AddCommand(newDecomposeCmd())
}

func newDecomposeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decompose <goal>",
		Short: "Decompose a goal into a task graph",
		Long: `Decompose a goal into a validated task graph without creating a plan.

The goal may be structured explicitly through a YAML context file with
"steps" (ordered list) or "phases" (list of parallel step lists); otherwise
the goal text is split on common separators.

Examples:
  compass decompose "fetch data then aggregate then publish"
  compass decompose "ship the release" --strategy hierarchical
  compass decompose "deploy" --context deploy.yaml --strategy hybrid
  compass decompose "deploy" --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDecompose(cmd.Context(), cmd, args[0], os.Stdout)
		},
	}

	cmd.Flags().StringP("strategy", "s", "", "decomposition strategy (hierarchical|sequential|parallel|hybrid)")
	cmd.Flags().StringP("context", "c", "", "YAML goal-context file")

	return cmd
}

func runDecompose(ctx context.Context, cmd *cobra.Command, goal string, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	out := NewOutput(w, cmd.Flag("output").Value.String())

	strategy, err := strategyFlag(cmd)
	if err != nil {
		return err
	}

	goalCtx, err := loadGoalContext(cmd.Flag("context").Value.String())
	if err != nil {
		return err
	}

	cfg := loadConfigOrDefaults(ctx, logger)

	store, err := openTrialStore(cfg)
	if err != nil {
		return fmt.Errorf("open trial store: %w", err)
	}
	defer func() { _ = store.Close() }()

	dec := newDecomposer(cfg, trial.NewStoreInsights(store, logger), logger)

	g, err := dec.Decompose(ctx, goal, goalCtx, strategy)
	if err != nil {
		return err
	}

	logger.Info().Str("strategy", g.Strategy.String()).Int("tasks", len(g.Tasks)).Msg("goal decomposed")

	if out.IsJSON() {
		return out.JSON(g)
	}
	writeGraph(out, g)
	return nil
}

// strategyFlag reads and validates the --strategy flag. An empty value lets
// the decomposer fall back to its configured default.
func strategyFlag(cmd *cobra.Command) (constants.Strategy, error) {
	raw := cmd.Flag("strategy").Value.String()
	if raw == "" {
		return "", nil
	}
	s := constants.Strategy(raw)
	if !s.Valid() {
		return "", fmt.Errorf("%w: %q", errors.ErrUnknownStrategy, raw)
	}
	return s, nil
}
