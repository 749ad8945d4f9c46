package cli

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/compass/internal/constants"
)

func TestSelectLevel(t *testing.T) {
	tests := []struct {
		name    string
		verbose bool
		quiet   bool
		want    zerolog.Level
	}{
		{"default", false, false, zerolog.InfoLevel},
		{"verbose", true, false, zerolog.DebugLevel},
		{"quiet", false, true, zerolog.WarnLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, selectLevel(tt.verbose, tt.quiet))
		})
	}
}

func TestInitLoggerWithWriter_FieldNames(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, false, &buf)

	logger.Info().Str("plan_id", "p1").Msg("plan created")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Contains(t, entry, "ts")
	assert.Equal(t, "plan created", entry["event"])
	assert.Equal(t, "p1", entry["plan_id"])
}

func TestInitLoggerWithWriter_QuietSuppressesInfo(t *testing.T) {
	var buf bytes.Buffer
	logger := InitLoggerWithWriter(false, true, &buf)

	logger.Info().Msg("hidden")
	assert.Empty(t, buf.String())

	logger.Warn().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestGetCompassHome_EnvOverride(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("COMPASS_HOME", tmp)

	home, err := getCompassHome()
	require.NoError(t, err)
	assert.Equal(t, tmp, home)
}

func TestGetCompassHome_DefaultsToUserHome(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("COMPASS_HOME", "")
	t.Setenv("HOME", tmp)

	home, err := getCompassHome()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, constants.CompassHome), home)
}

func TestLogFilePath(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("COMPASS_HOME", tmp)

	path, err := LogFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmp, constants.LogsDir, constants.CLILogFileName), path)
}

func TestCreateLogFileWriter_RedactsSensitiveData(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("COMPASS_HOME", tmp)

	w, err := createLogFileWriter()
	require.NoError(t, err)
	defer func() { _ = w.Close() }()

	_, err = w.Write([]byte(`{"event":"run","api_key":"sk-abcdefghijklmnop1234"}` + "\n"))
	require.NoError(t, err)
}
