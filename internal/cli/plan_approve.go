// Package cli provides the command-line interface for compass.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/compass/internal/plan"
)

func newPlanApproveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "approve <plan-id>",
		Short: "Approve a draft plan for execution",
		Long: `Approve a draft plan: validate the graph is still acyclic, compute the
execution order, and transition the plan to approved.

Examples:
  compass plan approve b8a3cf22-9f41-4c6e-a0d3-1f2e3d4c5b6a
  compass plan approve b8a3cf22-9f41-4c6e-a0d3-1f2e3d4c5b6a --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanApprove(cmd.Context(), cmd, args[0], os.Stdout)
		},
	}
}

func runPlanApprove(ctx context.Context, cmd *cobra.Command, planID string, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	out := NewOutput(w, cmd.Flag("output").Value.String())

	store, err := openPlanStore()
	if err != nil {
		return fmt.Errorf("open plan store: %w", err)
	}

	pl, err := loadPlan(ctx, store, planID)
	if err != nil {
		return err
	}

	planner := plan.NewPlanner(plan.Options{Store: store, Logger: logger})
	if err := planner.Approve(ctx, pl); err != nil {
		return err
	}

	logger.Info().Str("plan_id", pl.ID).Int("order", len(pl.ExecutionOrder)).Msg("plan approved")

	if out.IsJSON() {
		return out.JSON(pl)
	}
	writePlanSummary(out, pl)
	out.Linef("")
	out.Linef("Execute with: compass plan execute %s", pl.ID)
	return nil
}
