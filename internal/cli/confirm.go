// Package cli provides the command-line interface for compass.
package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/mrz1836/compass/internal/domain"
	"github.com/mrz1836/compass/internal/errors"
)

// TerminalConfirmer asks a human to approve a decision on the terminal.
// It satisfies contracts.HumanConfirmer.
type TerminalConfirmer struct {
	in    io.Reader
	out   io.Writer
	isTTY bool
}

// NewTerminalConfirmer creates a confirmer reading from stdin.
// When stdin is not a terminal the confirmer rejects every decision, so
// non-interactive runs never hang on a prompt.
func NewTerminalConfirmer() *TerminalConfirmer {
	return &TerminalConfirmer{
		in:    os.Stdin,
		out:   os.Stderr,
		isTTY: term.IsTerminal(int(os.Stdin.Fd())),
	}
}

// newTerminalConfirmerForTest creates a confirmer with injected streams.
func newTerminalConfirmerForTest(in io.Reader, out io.Writer) *TerminalConfirmer {
	return &TerminalConfirmer{in: in, out: out, isTTY: true}
}

// RequestConfirmation implements contracts.HumanConfirmer. It prints the
// proposed action and waits for a y/n answer; ctx expiry reports
// ErrConfirmationTimeout.
func (c *TerminalConfirmer) RequestConfirmation(ctx context.Context, decision *domain.Decision) (bool, error) {
	if !c.isTTY {
		return false, fmt.Errorf("%w: no terminal attached", errors.ErrConfirmationTimeout)
	}

	fmt.Fprintf(c.out, "Decision %s proposes action %q (confidence %.2f). Approve? [y/N] ",
		shortID(decision.ID), decision.Action.Name, decision.ConfidenceScore)

	type answer struct {
		text string
		err  error
	}
	ch := make(chan answer, 1)
	go func() {
		line, err := bufio.NewReader(c.in).ReadString('\n')
		ch <- answer{text: line, err: err}
	}()

	select {
	case <-ctx.Done():
		return false, fmt.Errorf("%w: %v", errors.ErrConfirmationTimeout, ctx.Err())
	case a := <-ch:
		if a.err != nil && a.text == "" {
			return false, fmt.Errorf("read confirmation: %w", a.err)
		}
		switch strings.ToLower(strings.TrimSpace(a.text)) {
		case "y", "yes":
			return true, nil
		default:
			return false, nil
		}
	}
}
