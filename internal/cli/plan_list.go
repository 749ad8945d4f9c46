// Package cli provides the command-line interface for compass.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newPlanListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored plans",
		Long: `List all stored plans, newest first. Corrupted plan files are skipped.

Examples:
  compass plan list
  compass plan list --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runPlanList(cmd.Context(), cmd, os.Stdout)
		},
	}
}

func runPlanList(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	out := NewOutput(w, cmd.Flag("output").Value.String())

	store, err := openPlanStore()
	if err != nil {
		return fmt.Errorf("open plan store: %w", err)
	}

	plans, err := store.List(ctx)
	if err != nil {
		return fmt.Errorf("list plans: %w", err)
	}

	if out.IsJSON() {
		return out.JSON(plans)
	}

	if len(plans) == 0 {
		out.Linef("No plans. Create one with: compass plan create <goal>")
		return nil
	}

	out.Linef("%-38s %-12s %-6s %s", "PLAN", "STATE", "TASKS", "CREATED")
	for _, pl := range plans {
		out.Linef("%-38s %-12s %-6d %s",
			pl.ID, TitleCase(pl.State.String()), len(pl.Graph.Tasks),
			pl.CreatedAt.Format("2006-01-02 15:04:05"))
	}
	return nil
}
