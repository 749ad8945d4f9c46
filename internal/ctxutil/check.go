// Package ctxutil provides context helpers shared across packages.
package ctxutil

import "context"

// Canceled reports whether ctx is done, returning its error (Canceled or
// DeadlineExceeded) or nil. Callers use it as an entry-point guard before
// starting work.
//
// ctx.Err() already returns nil while Done is open, so no select is needed.
func Canceled(ctx context.Context) error {
	return ctx.Err()
}
