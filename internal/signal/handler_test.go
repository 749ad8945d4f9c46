package signal

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHandler_InitialState(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	assert.NoError(t, h.Context().Err())

	select {
	case <-h.Interrupted():
		t.Fatal("interrupted channel should be open before any signal")
	default:
	}
}

func TestHandler_SignalCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	// Simulate delivery without sending a real OS signal
	h.handleSignal()

	require.Error(t, h.Context().Err())
	assert.Equal(t, context.Canceled, h.Context().Err())
}

func TestHandler_SignalClosesInterruptedChannel(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.handleSignal()

	select {
	case <-h.Interrupted():
	default:
		t.Fatal("interrupted channel should be closed after signal")
	}
}

func TestHandler_RepeatedSignalsProcessedOnce(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	h.handleSignal()
	h.handleSignal()
	h.handleSignal()

	require.Error(t, h.Context().Err())

	select {
	case <-h.Interrupted():
	default:
		t.Fatal("interrupted channel should be closed")
	}
}

func TestHandler_ListenSurvivesRepeatedDelivery(t *testing.T) {
	h := NewHandler(context.Background())
	defer h.Stop()

	// If listen exited after the first signal, the second send would
	// never be drained and a third would block forever.
	h.sigChan <- nil
	h.sigChan <- nil

	select {
	case <-h.Interrupted():
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for signal to be processed")
	}

	require.Error(t, h.Context().Err())
	assert.Equal(t, context.Canceled, h.Context().Err())
}

func TestHandler_StopCancelsContext(t *testing.T) {
	h := NewHandler(context.Background())
	h.Stop()

	assert.Error(t, h.Context().Err())
}

func TestHandler_StopIsIdempotent(t *testing.T) {
	h := NewHandler(context.Background())

	h.Stop()
	h.Stop()
	h.Stop()

	assert.Error(t, h.Context().Err())
}

func TestHandler_ParentCancellationPropagates(t *testing.T) {
	parent, cancel := context.WithCancel(context.Background())
	h := NewHandler(parent)
	defer h.Stop()

	cancel()

	assert.Error(t, h.Context().Err())
}
