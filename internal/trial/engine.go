package trial

import (
	"context"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/rs/zerolog"

	"github.com/mrz1836/compass/internal/clock"
	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/contracts"
	"github.com/mrz1836/compass/internal/ctxutil"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
	"github.com/mrz1836/compass/internal/events"
)

// Sleeper waits for the given duration or until the context is done.
// Injected so backoff tests run without real sleeping.
type Sleeper func(ctx context.Context, d time.Duration) error

// defaultSleeper waits on a real timer.
func defaultSleeper(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Options configures an Engine. Zero fields take defaults.
type Options struct {
	// MaxAttempts is the attempt budget per task (default constants.DefaultMaxAttempts).
	MaxAttempts int

	// BaseBackoff is the delay before the second attempt; later delays
	// double (default constants.DefaultBaseBackoff).
	BaseBackoff time.Duration

	// Fixes maps signatures to parameter adjustments (default DefaultFixes).
	Fixes map[constants.ErrorSignature]Fix

	// Store records every attempt (default in-memory).
	Store Store

	// Sink receives a trial event per attempt (default no-op).
	Sink contracts.EventSink

	// Clock supplies attempt timestamps (default real clock).
	Clock clock.Clock

	// Sleeper performs backoff waits (default real timer).
	Sleeper Sleeper

	// Logger for attempt-level diagnostics.
	Logger zerolog.Logger
}

// Engine runs one task with bounded adaptive retries. Retries for a single
// task are strictly sequential; engines are safe for concurrent use across
// tasks because all per-run state lives on the stack.
type Engine struct {
	maxAttempts int
	baseBackoff time.Duration
	fixes       map[constants.ErrorSignature]Fix
	store       Store
	sink        contracts.EventSink
	clk         clock.Clock
	sleep       Sleeper
	logger      zerolog.Logger
}

// NewEngine creates a trial engine from options.
func NewEngine(opts Options) *Engine {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = constants.DefaultMaxAttempts
	}
	if opts.BaseBackoff <= 0 {
		opts.BaseBackoff = constants.DefaultBaseBackoff
	}
	if opts.Fixes == nil {
		opts.Fixes = DefaultFixes()
	}
	if opts.Store == nil {
		opts.Store = NewMemoryStore()
	}
	if opts.Sink == nil {
		opts.Sink = events.NoopSink{}
	}
	if opts.Clock == nil {
		opts.Clock = clock.RealClock{}
	}
	if opts.Sleeper == nil {
		opts.Sleeper = defaultSleeper
	}
	return &Engine{
		maxAttempts: opts.MaxAttempts,
		baseBackoff: opts.BaseBackoff,
		fixes:       opts.Fixes,
		store:       opts.Store,
		sink:        opts.Sink,
		clk:         opts.Clock,
		sleep:       opts.Sleeper,
		logger:      opts.Logger.With().Str("component", "trial").Logger(),
	}
}

// Store exposes the engine's learning store.
func (e *Engine) Store() Store {
	return e.store
}

// newBackoff builds the deterministic delay schedule: base, base*2, base*4...
// Zero jitter keeps delays reproducible.
func (e *Engine) newBackoff() *backoff.ExponentialBackOff {
	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = e.baseBackoff
	bo.Multiplier = 2
	bo.RandomizationFactor = 0
	bo.MaxInterval = e.baseBackoff << 16
	bo.MaxElapsedTime = 0
	bo.Reset()
	return bo
}

// RunWithRetry executes the task until it succeeds, the attempt budget is
// exhausted, or a non-retryable signature appears.
//
// The first attempt uses the given parameters unchanged. After a retryable
// failure a known fix for the signature adjusts the parameters and the next
// attempt runs immediately; failures without a fix wait out an exponential
// backoff delay. Every attempt is recorded in the learning store and
// emitted as a trial event regardless of outcome.
//
// The returned TrialRun is non-nil whenever at least one attempt ran, even
// alongside a non-nil error.
func (e *Engine) RunWithRetry(ctx context.Context, task *domain.Task, params map[string]any, executor contracts.Executor) (*domain.TrialRun, error) {
	if task == nil {
		return nil, fmt.Errorf("%w: task is nil", compasserrors.ErrEmptyValue)
	}
	if executor == nil {
		return nil, fmt.Errorf("%w: executor is nil", compasserrors.ErrEmptyValue)
	}
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	if params == nil {
		params = map[string]any{}
	}

	run := &domain.TrialRun{TaskID: task.ID, Parameters: params}
	bo := e.newBackoff()

	for attempt := 1; attempt <= e.maxAttempts; attempt++ {
		run.Attempts = attempt
		run.Parameters = params

		trial, result, execErr := e.attempt(ctx, task, params, attempt, executor)
		run.Trials = append(run.Trials, trial)

		if execErr == nil {
			run.Outcome = constants.TrialSuccess
			run.Result = result
			return run, nil
		}

		run.Outcome = constants.TrialFailure
		run.Signature = trial.Signature

		if !trial.Signature.Retryable() {
			e.logger.Debug().
				Str("task_id", task.ID).
				Str("signature", trial.Signature.String()).
				Msg("non-retryable failure, giving up")
			return run, fmt.Errorf("%w: %s: %s", compasserrors.ErrNonRetryable, trial.Signature, execErr)
		}

		if attempt == e.maxAttempts {
			return run, fmt.Errorf("%w: task %s failed after %d attempts: %s",
				compasserrors.ErrMaxAttemptsExceeded, task.ID, attempt, execErr)
		}

		// A known fix replaces the wait: adjusted parameters retry
		// immediately. Without one, back off before the next attempt.
		if adjusted, fixed := e.applyFix(trial.Signature, params); fixed {
			e.logger.Debug().
				Str("task_id", task.ID).
				Str("signature", trial.Signature.String()).
				Int("attempt", attempt).
				Msg("applying known fix, retrying immediately")
			params = adjusted
			continue
		}

		delay := bo.NextBackOff()
		if err := e.sleep(ctx, delay); err != nil {
			return run, err
		}
	}

	// Unreachable: the loop returns on success, non-retryable, or budget.
	return run, compasserrors.ErrMaxAttemptsExceeded
}

// attempt runs a single execution and records its trial.
func (e *Engine) attempt(ctx context.Context, task *domain.Task, params map[string]any, attempt int, executor contracts.Executor) (*domain.Trial, *domain.Result, error) {
	trial := domain.NewTrial(task.ID, attempt, cloneParams(params))
	trial.Strategy = task.Strategy
	trial.StartedAt = e.clk.Now().UTC()

	result, execErr := executor.Execute(ctx, task, params)
	trial.Duration = e.clk.Now().UTC().Sub(trial.StartedAt)

	if execErr == nil {
		trial.Outcome = constants.TrialSuccess
	} else {
		trial.Outcome = constants.TrialFailure
		trial.Signature = ClassifySignature(execErr)
		trial.Error = execErr.Error()
	}

	if err := e.store.Record(ctx, trial); err != nil {
		// Recording failure never fails the run; the attempt already happened.
		e.logger.Warn().Err(err).Str("trial_id", trial.ID).Msg("failed to record trial")
	}

	evt := domain.NewEvent(domain.TopicTrial, "trial.attempt")
	evt.TaskID = task.ID
	evt.Payload["trial_id"] = trial.ID
	evt.Payload["attempt"] = attempt
	evt.Payload["outcome"] = trial.Outcome.String()
	if trial.Signature != "" {
		evt.Payload["signature"] = trial.Signature.String()
	}
	e.sink.Emit(evt)

	return trial, result, execErr
}

// applyFix runs the registered fix for a signature, if any.
func (e *Engine) applyFix(sig constants.ErrorSignature, params map[string]any) (map[string]any, bool) {
	fix, ok := e.fixes[sig]
	if !ok {
		return params, false
	}
	return fix.Apply(params)
}
