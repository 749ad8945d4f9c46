package cli

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/compass/internal/errors"
)

func TestValidOutputFormats(t *testing.T) {
	formats := ValidOutputFormats()
	assert.Equal(t, []string{OutputText, OutputJSON}, formats)
}

func TestIsValidOutputFormat(t *testing.T) {
	tests := []struct {
		format string
		want   bool
	}{
		{"text", true},
		{"json", true},
		{"", false},
		{"yaml", false},
		{"JSON", false},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			assert.Equal(t, tt.want, IsValidOutputFormat(tt.format))
		})
	}
}

func TestAddGlobalFlags(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "compass"}
	AddGlobalFlags(cmd, flags)

	assert.NotNil(t, cmd.PersistentFlags().Lookup("output"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("verbose"))
	assert.NotNil(t, cmd.PersistentFlags().Lookup("quiet"))

	// Defaults
	assert.Equal(t, OutputText, cmd.PersistentFlags().Lookup("output").DefValue)
}

func TestGlobalFlags_VerboseQuietMutuallyExclusive(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := &cobra.Command{
		Use:  "compass",
		RunE: func(*cobra.Command, []string) error { return nil },
	}
	AddGlobalFlags(cmd, flags)

	cmd.SetArgs([]string{"--verbose", "--quiet"})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "if any flags in the group")
}

func TestBindGlobalFlags(t *testing.T) {
	flags := &GlobalFlags{}
	cmd := &cobra.Command{Use: "compass"}
	AddGlobalFlags(cmd, flags)

	v := viper.New()
	require.NoError(t, BindGlobalFlags(v, cmd))

	require.NoError(t, cmd.PersistentFlags().Set("output", "json"))
	assert.Equal(t, "json", v.GetString("output"))
}

func TestExitCodeForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"invalid output format", errors.ErrInvalidOutputFormat, ExitInvalidInput},
		{"wrapped invalid format", fmt.Errorf("bad: %w", errors.ErrInvalidOutputFormat), ExitInvalidInput},
		{"empty value", errors.ErrEmptyValue, ExitInvalidInput},
		{"unknown strategy", errors.ErrUnknownStrategy, ExitInvalidInput},
		{"unknown decision type", errors.ErrUnknownDecisionType, ExitInvalidInput},
		{"cobra unknown flag", stderrors.New(`unknown flag: --bogus`), ExitInvalidInput},
		{"cobra unknown command", stderrors.New(`unknown command "bogus" for "compass"`), ExitInvalidInput},
		{"general error", stderrors.New("boom"), ExitError},
		{"execution error", errors.ErrExecution, ExitError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCodeForError(tt.err))
		})
	}
}
