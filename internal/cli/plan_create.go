// Package cli provides the command-line interface for compass.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/compass/internal/plan"
	"github.com/mrz1836/compass/internal/trial"
)

func newPlanCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create <goal>",
		Short: "Decompose a goal and create a draft plan",
		Long: `Decompose a goal into a task graph and wrap it in a draft plan.

The draft must be approved before it can execute. The plan is persisted
under ~/.compass/plans.

Examples:
  compass plan create "fetch data then aggregate then publish"
  compass plan create "ship the release" --strategy sequential
  compass plan create "deploy" --context deploy.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanCreate(cmd.Context(), cmd, args[0], os.Stdout)
		},
	}

	cmd.Flags().StringP("strategy", "s", "", "decomposition strategy (hierarchical|sequential|parallel|hybrid)")
	cmd.Flags().StringP("context", "c", "", "YAML goal-context file")

	return cmd
}

func runPlanCreate(ctx context.Context, cmd *cobra.Command, goal string, w io.Writer) error {
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

	trialStore, err := openTrialStore(cfg)
	if err != nil {
		return fmt.Errorf("open trial store: %w", err)
	}
	defer func() { _ = trialStore.Close() }()

	planStore, err := openPlanStore()
	if err != nil {
		return fmt.Errorf("open plan store: %w", err)
	}

	dec := newDecomposer(cfg, trial.NewStoreInsights(trialStore, logger), logger)

	g, err := dec.Decompose(ctx, goal, goalCtx, strategy)
	if err != nil {
		return err
	}

	planner := plan.NewPlanner(plan.Options{Store: planStore, Logger: logger})
	pl, err := planner.Create(ctx, g)
	if err != nil {
		return err
	}

	logger.Info().Str("plan_id", pl.ID).Int("tasks", len(g.Tasks)).Msg("plan created")

	if out.IsJSON() {
		return out.JSON(pl)
	}
	writePlanSummary(out, pl)
	out.Linef("")
	out.Linef("Approve with: compass plan approve %s", pl.ID)
	return nil
}
