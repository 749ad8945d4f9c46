// Package cli provides the command-line interface for compass.
package cli

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/mrz1836/compass/internal/domain"
	"github.com/mrz1836/compass/internal/logging"
)

// paramCommand is the task parameter naming the shell command to run.
// Tasks without it succeed immediately, which keeps dry planning runs
// useful without an execution backend.
const paramCommand = "command"

// SubprocessExecutor runs tasks as shell subprocesses. The command comes
// from the task's "command" parameter and runs via sh -c, the same trust
// model as Makefiles or npm scripts: whoever writes the plan context
// already runs code as this user.
type SubprocessExecutor struct {
	workDir string
	logger  zerolog.Logger
}

// NewSubprocessExecutor creates an executor running commands in workDir.
func NewSubprocessExecutor(workDir string, logger zerolog.Logger) *SubprocessExecutor {
	return &SubprocessExecutor{
		workDir: workDir,
		logger:  logger.With().Str("component", "executor").Logger(),
	}
}

// Execute implements contracts.Executor. Command output lands in the
// result under "stdout" so data dependencies can consume it.
func (e *SubprocessExecutor) Execute(ctx context.Context, task *domain.Task, params map[string]any) (*domain.Result, error) {
	start := time.Now()

	command, _ := params[paramCommand].(string)
	if strings.TrimSpace(command) == "" {
		// No backing command; the task is a planning placeholder.
		e.logger.Debug().Str("task_id", task.ID).Msg("no command parameter, succeeding immediately")
		return &domain.Result{TaskID: task.ID, Duration: time.Since(start)}, nil
	}

	e.logger.Debug().
		Str("task_id", task.ID).
		Str("params", logging.ParameterSummary(params)).
		Msg("running task command")

	cmd := exec.CommandContext(ctx, "sh", "-c", command) //nolint:gosec // Commands come from user-authored plan context
	cmd.Dir = e.workDir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg == "" {
			msg = err.Error()
		}
		return nil, fmt.Errorf("command failed: %s", msg)
	}

	return &domain.Result{
		TaskID:   task.ID,
		Output:   map[string]any{"stdout": strings.TrimSpace(stdout.String())},
		Duration: time.Since(start),
	}, nil
}
