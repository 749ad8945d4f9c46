package cli

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/compass/internal/errors"
)

func TestRootCommand_Structure(t *testing.T) {
	flags := &GlobalFlags{}
	rootCmd := newRootCmd(flags, BuildInfo{})

	assert.Equal(t, "compass", rootCmd.Name())

	for _, name := range []string{"decompose", "plan", "decide", "insights", "version"} {
		sub, _, err := rootCmd.Find([]string{name})
		require.NoError(t, err, "subcommand %s", name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCommand_PlanSubcommands(t *testing.T) {
	flags := &GlobalFlags{}
	rootCmd := newRootCmd(flags, BuildInfo{})

	for _, name := range []string{"create", "approve", "execute", "show", "list", "cancel"} {
		sub, _, err := rootCmd.Find([]string{"plan", name})
		require.NoError(t, err, "plan %s", name)
		assert.Equal(t, name, sub.Name())
	}
}

func TestRootCommand_RejectsInvalidOutputFormat(t *testing.T) {
	t.Setenv("COMPASS_HOME", t.TempDir())

	flags := &GlobalFlags{}
	rootCmd := newRootCmd(flags, BuildInfo{})
	rootCmd.SetArgs([]string{"version", "--output", "yaml"})

	err := rootCmd.ExecuteContext(context.Background())
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrInvalidOutputFormat)
	assert.Equal(t, ExitInvalidInput, ExitCodeForError(err))
}

func TestFormatVersion(t *testing.T) {
	tests := []struct {
		name string
		info BuildInfo
		want string
	}{
		{
			name: "all set",
			info: BuildInfo{Version: "1.2.3", Commit: "abc1234", Date: "2026-01-01"},
			want: "1.2.3 (commit: abc1234, built: 2026-01-01)",
		},
		{
			name: "all empty",
			info: BuildInfo{},
			want: "dev (commit: none, built: unknown)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, formatVersion(tt.info))
		})
	}
}

func TestExecute_Help(t *testing.T) {
	t.Setenv("COMPASS_HOME", t.TempDir())

	flags := &GlobalFlags{}
	rootCmd := newRootCmd(flags, BuildInfo{})
	rootCmd.SetArgs([]string{"--help"})

	require.NoError(t, rootCmd.ExecuteContext(context.Background()))
}
