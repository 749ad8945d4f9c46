// Package cli provides the command-line interface for compass.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/mrz1836/compass/internal/domain"
	"github.com/mrz1836/compass/internal/events"
	"github.com/mrz1836/compass/internal/plan"
	"github.com/mrz1836/compass/internal/signal"
	"github.com/mrz1836/compass/internal/trial"
)

func newPlanExecuteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "execute <plan-id>",
		Short: "Execute an approved plan",
		Long: `Execute an approved plan: dispatch ready tasks to the subprocess
executor, retry failures with adaptive backoff, and replan when the
failure rate climbs too high.

Tasks with a "command" parameter run via sh -c; tasks without one succeed
immediately. Press Ctrl-C to cancel: running tasks finish cooperatively
and pending tasks are skipped.

Examples:
  compass plan execute b8a3cf22-9f41-4c6e-a0d3-1f2e3d4c5b6a
  compass plan execute b8a3cf22-9f41-4c6e-a0d3-1f2e3d4c5b6a --verbose
  compass plan execute b8a3cf22-9f41-4c6e-a0d3-1f2e3d4c5b6a --output json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlanExecute(cmd.Context(), cmd, args[0], os.Stdout)
		},
	}

	cmd.Flags().String("workdir", "", "working directory for task commands (default: current directory)")

	return cmd
}

//nolint:gocognit // Command wiring is linear: stores, engines, signal handling, report
func runPlanExecute(ctx context.Context, cmd *cobra.Command, planID string, w io.Writer) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}

	logger := GetLogger()
	out := NewOutput(w, cmd.Flag("output").Value.String())

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

	pl, err := loadPlan(ctx, planStore, planID)
	if err != nil {
		return err
	}

	workDir := cmd.Flag("workdir").Value.String()
	if workDir == "" {
		if workDir, err = os.Getwd(); err != nil {
			return fmt.Errorf("failed to get working directory: %w", err)
		}
	}

	// Event bus feeds progress lines; delivery runs through a circuit
	// breaker so a wedged sink can never stall dispatch.
	bus := events.NewBus()
	defer bus.Close()
	sink := events.NewBreakerSink(func(event domain.Event) error {
		bus.Emit(event)
		return nil
	}, logger)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		logEvents(bus.SubscribeAll(0), logger)
	}()

	planner := plan.NewPlanner(plan.Options{
		Decomposer:           newDecomposer(cfg, trial.NewStoreInsights(trialStore, logger), logger),
		Runner:               newTrialEngine(cfg, trialStore, logger),
		Executor:             NewSubprocessExecutor(workDir, logger),
		Store:                planStore,
		Sink:                 sink,
		FailureRateThreshold: cfg.Planner.FailureRateThreshold,
		MinSampleSize:        cfg.Planner.MinSampleSize,
		MaxReplans:           cfg.Planner.MaxReplans,
		MaxConcurrent:        cfg.Planner.MaxConcurrent,
		Logger:               logger,
	})

	// SIGINT cancels the execution context; dispatch stops and in-flight
	// tasks drain before the plan is marked failed.
	h := signal.NewHandler(ctx)
	defer h.Stop()
	go func() {
		<-h.Interrupted()
		logger.Warn().Str("plan_id", pl.ID).Msg("interrupt received, canceling plan")
	}()

	execErr := planner.Execute(h.Context(), pl)

	bus.Close()
	wg.Wait()

	report := planner.Report(pl.ID)
	if report == nil {
		report = plan.Summarize(pl)
	}

	if out.IsJSON() {
		if err := out.JSON(report); err != nil {
			return err
		}
		return execErr
	}

	writePlanSummary(out, pl)
	out.Linef("")
	writeReport(out, report)
	return execErr
}

// logEvents turns core events into progress log lines until the channel
// closes.
func logEvents(ch <-chan domain.Event, logger zerolog.Logger) {
	for ev := range ch {
		e := logger.Info()
		if ev.PlanID != "" {
			e = e.Str("plan_id", ev.PlanID)
		}
		if ev.TaskID != "" {
			e = e.Str("task_id", shortID(ev.TaskID))
		}
		for k, v := range ev.Payload {
			e = e.Interface(k, v)
		}
		e.Msg(ev.Kind)
	}
}
