package cli

import (
	"io"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// findCommand builds a fresh command tree and locates the command at path.
// The global logger is initialized to a discarding writer so command
// handlers can log without a prior PersistentPreRunE run.
func findCommand(t *testing.T, path ...string) *cobra.Command {
	t.Helper()

	globalLoggerMu.Lock()
	globalLogger = InitLoggerWithWriter(false, false, io.Discard)
	globalLoggerMu.Unlock()

	flags := &GlobalFlags{}
	root := newRootCmd(flags, BuildInfo{})

	cmd, _, err := root.Find(path)
	require.NoError(t, err)
	return cmd
}

// setFlag sets a flag on the command, falling back to the root's persistent
// flags for inherited globals like --output.
func setFlag(t *testing.T, cmd *cobra.Command, name, value string) {
	t.Helper()

	if cmd.Flags().Lookup(name) != nil {
		require.NoError(t, cmd.Flags().Set(name, value))
		return
	}
	require.NoError(t, cmd.Root().PersistentFlags().Set(name, value))
}
