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
	"github.com/mrz1836/compass/internal/plan"
)

func newPlanCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <plan-id>",
		Short: "Cancel an executing plan",
		Long: `Cancel a plan left in the executing state, marking it failed.

This recovers plans orphaned by an interrupted process. A live execution
in the current process is canceled with Ctrl-C instead.

Examples:
  compass plan cancel b8a3cf22-9f41-4c6e-a0d3-1f2e3d4c5b6a`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanCancel(cmd.Context(), cmd, args[0], os.Stdout)
		},
	}
}

func runPlanCancel(ctx context.Context, cmd *cobra.Command, planID string, w io.Writer) error {
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

	if pl.State != constants.PlanStateExecuting && pl.State != constants.PlanStateReplanning {
		return fmt.Errorf("%w: plan %s is %s", errors.ErrNoExecution, pl.ID, pl.State)
	}

	if err := plan.Transition(ctx, pl, constants.PlanStateFailed, "canceled by user"); err != nil {
		return err
	}
	if err := store.Update(ctx, pl); err != nil {
		return fmt.Errorf("persist canceled plan: %w", err)
	}

	logger.Info().Str("plan_id", pl.ID).Msg("plan canceled")

	if out.IsJSON() {
		return out.JSON(pl)
	}
	writePlanSummary(out, pl)
	return nil
}
