// Package cli provides the command-line interface for compass.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
)

func newPlanShowCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show <plan-id>",
		Short: "Show a plan's state, tasks, and audit trail",
		Long: `Show a stored plan: lifecycle state, task status counts, and with
--graph the full task graph and dependency edges.

Examples:
  compass plan show b8a3cf22-9f41-4c6e-a0d3-1f2e3d4c5b6a
  compass plan show b8a3cf22-9f41-4c6e-a0d3-1f2e3d4c5b6a --graph
  compass plan show b8a3cf22-9f41-4c6e-a0d3-1f2e3d4c5b6a --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanShow(cmd.Context(), cmd, args[0], os.Stdout)
		},
	}

	cmd.Flags().BoolP("graph", "g", false, "include the task graph and dependencies")

	return cmd
}

func runPlanShow(ctx context.Context, cmd *cobra.Command, planID string, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	out := NewOutput(w, cmd.Flag("output").Value.String())
	showGraph := cmd.Flag("graph").Value.String() == "true"

	store, err := openPlanStore()
	if err != nil {
		return fmt.Errorf("open plan store: %w", err)
	}

	pl, err := loadPlan(ctx, store, planID)
	if err != nil {
		return err
	}

	if out.IsJSON() {
		return out.JSON(pl)
	}

	writePlanSummary(out, pl)

	if len(pl.Transitions) > 0 {
		out.Linef("")
		out.Heading("transitions")
		for _, tr := range pl.Transitions {
			line := fmt.Sprintf("  %s  %s -> %s",
				tr.Timestamp.Format("2006-01-02 15:04:05"),
				TitleCase(tr.FromState.String()), TitleCase(tr.ToState.String()))
			if tr.Reason != "" {
				line += " (" + tr.Reason + ")"
			}
			out.Linef("%s", line)
		}
	}

	if showGraph {
		out.Linef("")
		writeGraph(out, pl.Graph)
	}
	return nil
}
