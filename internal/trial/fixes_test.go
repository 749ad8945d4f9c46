package trial

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/compass/internal/constants"
)

func TestHalveBatchSize(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		params      map[string]any
		wantChanged bool
		wantSize    int
	}{
		{name: "halves int", params: map[string]any{"batch_size": 100}, wantChanged: true, wantSize: 50},
		{name: "halves float from json", params: map[string]any{"batch_size": float64(8)}, wantChanged: true, wantSize: 4},
		{name: "bottoms out at one", params: map[string]any{"batch_size": 1}, wantChanged: false},
		{name: "missing key", params: map[string]any{}, wantChanged: false},
		{name: "wrong type", params: map[string]any{"batch_size": "lots"}, wantChanged: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out, changed := halveBatchSize(tt.params)

			assert.Equal(t, tt.wantChanged, changed)
			if changed {
				assert.Equal(t, tt.wantSize, out["batch_size"])
			}
		})
	}
}

func TestExtendTimeoutAndFailover(t *testing.T) {
	t.Parallel()

	t.Run("doubles duration timeout", func(t *testing.T) {
		t.Parallel()

		out, changed := extendTimeoutAndFailover(map[string]any{"timeout": 5 * time.Second})

		require.True(t, changed)
		assert.Equal(t, 10*time.Second, out["timeout"])
	})

	t.Run("parses string timeout", func(t *testing.T) {
		t.Parallel()

		out, changed := extendTimeoutAndFailover(map[string]any{"timeout": "30s"})

		require.True(t, changed)
		assert.Equal(t, time.Minute, out["timeout"])
	})

	t.Run("swaps to fallback endpoint", func(t *testing.T) {
		t.Parallel()

		out, changed := extendTimeoutAndFailover(map[string]any{
			"endpoint":          "https://primary",
			"fallback_endpoint": "https://secondary",
		})

		require.True(t, changed)
		assert.Equal(t, "https://secondary", out["endpoint"])
	})

	t.Run("nothing to adjust", func(t *testing.T) {
		t.Parallel()

		_, changed := extendTimeoutAndFailover(map[string]any{"other": 1})

		assert.False(t, changed)
	})

	t.Run("already on fallback", func(t *testing.T) {
		t.Parallel()

		_, changed := extendTimeoutAndFailover(map[string]any{
			"endpoint":          "https://secondary",
			"fallback_endpoint": "https://secondary",
		})

		assert.False(t, changed)
	})
}

func TestDefaultFixes_NonRetryableSignaturesHaveNoFix(t *testing.T) {
	t.Parallel()

	fixes := DefaultFixes()

	assert.NotContains(t, fixes, constants.SignatureInvalidInput)
	assert.NotContains(t, fixes, constants.SignaturePermission)
	assert.NotContains(t, fixes, constants.SignatureUnknown)
	assert.Contains(t, fixes, constants.SignatureTransient)
	assert.Contains(t, fixes, constants.SignatureResourceExhaustion)
}

func TestFixesDoNotMutateInput(t *testing.T) {
	t.Parallel()

	params := map[string]any{"batch_size": 64, "timeout": "10s"}

	_, _ = halveBatchSize(params)
	_, _ = extendTimeoutAndFailover(params)

	assert.Equal(t, 64, params["batch_size"])
	assert.Equal(t, "10s", params["timeout"])
}
