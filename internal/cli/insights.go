// Package cli provides the command-line interface for compass.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mrz1836/compass/internal/trial"
)

// AddInsightsCommand adds the insights command to the root command.
func AddInsightsCommand(root *cobra.Command) {
	root.AddCommand(newInsightsCmd())
}

func newInsightsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "insights",
		Short: "Show insights mined from trial history",
		Long: `Mine the recorded trial history for advisory patterns: recurring
success and failure signatures, parameter effects, and per-strategy
success rates.

Insights are advisory: they adjust confidence estimates and decision
scores within a configured bound but never override explicit
configuration.

Examples:
  compass insights
  compass insights --output json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInsights(cmd.Context(), cmd, os.Stdout)
		},
	}
}

func runInsights(ctx context.Context, cmd *cobra.Command, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	out := NewOutput(w, cmd.Flag("output").Value.String())

	cfg := loadConfigOrDefaults(ctx, logger)

	store, err := openTrialStore(cfg)
	if err != nil {
		return fmt.Errorf("open trial store: %w", err)
	}
	defer func() { _ = store.Close() }()

	trials, err := store.All(ctx)
	if err != nil {
		return fmt.Errorf("load trials: %w", err)
	}

	insights := trial.ExtractInsights(trials)
	logger.Debug().Int("trials", len(trials)).Int("insights", len(insights)).Msg("insights extracted")

	if out.IsJSON() {
		return out.JSON(insights)
	}
	writeInsights(out, insights)
	return nil
}
