// Package cli provides the command-line interface for compass.
package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mrz1836/compass/internal/domain"
	"github.com/mrz1836/compass/internal/plan"
)

// AddPlanCommand adds the plan command group to the root command.
func AddPlanCommand(root *cobra.Command) {
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Create, approve, execute, and inspect plans",
		Long: `Manage the plan lifecycle: draft -> approved -> executing -> terminal.

Plans are stored under ~/.compass/plans as JSON, one directory per plan,
guarded by an advisory file lock.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(newPlanCreateCmd())
	cmd.AddCommand(newPlanApproveCmd())
	cmd.AddCommand(newPlanExecuteCmd())
	cmd.AddCommand(newPlanShowCmd())
	cmd.AddCommand(newPlanListCmd())
	cmd.AddCommand(newPlanCancelCmd())

	root.AddCommand(cmd)
}

// openPlanStore opens the file-backed plan store under the compass home.
func openPlanStore() (*plan.FileStore, error) {
	home, err := getCompassHome()
	if err != nil {
		return nil, err
	}
	return plan.NewFileStore(home)
}

// loadPlan fetches one plan by ID from the store.
func loadPlan(ctx context.Context, store plan.Store, planID string) (*domain.Plan, error) {
	pl, err := store.Get(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("load plan %s: %w", planID, err)
	}
	return pl, nil
}
