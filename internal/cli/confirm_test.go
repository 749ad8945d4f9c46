package cli

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
	"github.com/mrz1836/compass/internal/errors"
)

func confirmDecision() *domain.Decision {
	return &domain.Decision{
		ID:              "d1",
		Type:            constants.DecisionEscalation,
		Action:          domain.Action{Name: "pause_and_escalate"},
		ConfidenceScore: 0.40,
		ConfidenceLevel: constants.ConfidenceLow,
	}
}

func TestTerminalConfirmer_Approves(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"yes short", "y\n", true},
		{"yes long", "yes\n", true},
		{"yes mixed case", "Y\n", true},
		{"no", "n\n", false},
		{"empty defaults to no", "\n", false},
		{"garbage defaults to no", "maybe\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var out bytes.Buffer
			c := newTerminalConfirmerForTest(strings.NewReader(tt.input), &out)

			approved, err := c.RequestConfirmation(context.Background(), confirmDecision())
			require.NoError(t, err)
			assert.Equal(t, tt.want, approved)
			assert.Contains(t, out.String(), "pause_and_escalate")
		})
	}
}

func TestTerminalConfirmer_NoTerminalRejects(t *testing.T) {
	t.Parallel()

	c := &TerminalConfirmer{in: strings.NewReader(""), out: io.Discard, isTTY: false}

	approved, err := c.RequestConfirmation(context.Background(), confirmDecision())
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrConfirmationTimeout)
	assert.False(t, approved)
}

func TestTerminalConfirmer_ContextExpiry(t *testing.T) {
	t.Parallel()

	// Reader that never delivers a line
	r, _ := io.Pipe()
	c := newTerminalConfirmerForTest(r, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	approved, err := c.RequestConfirmation(ctx, confirmDecision())
	require.Error(t, err)
	require.ErrorIs(t, err, errors.ErrConfirmationTimeout)
	assert.False(t, approved)
}

func TestTerminalConfirmer_AnswerWithoutTrailingNewline(t *testing.T) {
	t.Parallel()

	c := newTerminalConfirmerForTest(strings.NewReader("y"), io.Discard)

	approved, err := c.RequestConfirmation(context.Background(), confirmDecision())
	require.NoError(t, err)
	assert.True(t, approved)
}
