// Package cli provides the command-line interface for compass.
package cli

import (
	stderrors "errors"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mrz1836/compass/internal/errors"
)

// Process exit codes.
const (
	// ExitSuccess reports a clean run.
	ExitSuccess = 0
	// ExitError reports a runtime failure.
	ExitError = 1
	// ExitInvalidInput reports bad flags or arguments.
	ExitInvalidInput = 2
)

// Output formats accepted by --output.
const (
	// OutputText renders human-readable output (the default).
	OutputText = "text"
	// OutputJSON renders machine-readable JSON.
	OutputJSON = "json"
)

// GlobalFlags holds the persistent flags shared by every command.
type GlobalFlags struct {
	// Output selects the rendering format (text or json).
	Output string
	// Verbose lowers the log level to debug.
	Verbose bool
	// Quiet raises the log level to warn.
	Quiet bool
}

// AddGlobalFlags registers the persistent flags on the root command so
// every subcommand inherits them. Verbose and quiet are mutually exclusive.
func AddGlobalFlags(cmd *cobra.Command, flags *GlobalFlags) {
	cmd.PersistentFlags().StringVarP(&flags.Output, "output", "o", OutputText, "output format (text|json)")
	cmd.PersistentFlags().BoolVarP(&flags.Verbose, "verbose", "v", false, "enable verbose output")
	cmd.PersistentFlags().BoolVarP(&flags.Quiet, "quiet", "q", false, "suppress non-essential output")
	cmd.MarkFlagsMutuallyExclusive("verbose", "quiet")
}

// BindGlobalFlags wires the persistent flags into viper so environment
// variables (COMPASS_OUTPUT, COMPASS_VERBOSE, COMPASS_QUIET) can supply
// their values.
func BindGlobalFlags(v *viper.Viper, cmd *cobra.Command) error {
	// The flags live on the root; resolve through it since this runs from
	// any subcommand's PersistentPreRunE.
	rootFlags := cmd.Root().PersistentFlags()

	if err := v.BindPFlag("output", rootFlags.Lookup("output")); err != nil {
		return err
	}
	if err := v.BindPFlag("verbose", rootFlags.Lookup("verbose")); err != nil {
		return err
	}
	if err := v.BindPFlag("quiet", rootFlags.Lookup("quiet")); err != nil {
		return err
	}

	v.SetEnvPrefix("COMPASS")
	v.AutomaticEnv()

	return nil
}

// ValidOutputFormats lists the accepted --output values.
func ValidOutputFormats() []string {
	return []string{OutputText, OutputJSON}
}

// IsValidOutputFormat reports whether format is an accepted --output value.
func IsValidOutputFormat(format string) bool {
	for _, valid := range ValidOutputFormats() {
		if format == valid {
			return true
		}
	}
	return false
}

// ExitCodeForError maps an error onto a process exit code: nil exits 0,
// input mistakes (bad flags, unknown values) exit 2, everything else
// exits 1.
func ExitCodeForError(err error) int {
	if err == nil {
		return ExitSuccess
	}

	if stderrors.Is(err, errors.ErrInvalidOutputFormat) ||
		stderrors.Is(err, errors.ErrEmptyValue) ||
		stderrors.Is(err, errors.ErrUnknownStrategy) ||
		stderrors.Is(err, errors.ErrUnknownDecisionType) {
		return ExitInvalidInput
	}

	if isUsageError(err.Error()) {
		return ExitInvalidInput
	}

	return ExitError
}

// isUsageError recognizes cobra's own flag and argument validation
// failures, which arrive as plain error strings rather than sentinels.
func isUsageError(errMsg string) bool {
	usagePatterns := []string{
		"unknown flag",
		"unknown shorthand flag",
		"flag needs an argument",
		"invalid argument",
		"if any flags in the group",
		"required flag",
		"unknown command",
	}

	for _, pattern := range usagePatterns {
		if strings.Contains(errMsg, pattern) {
			return true
		}
	}
	return false
}
