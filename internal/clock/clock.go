// Package clock abstracts time lookups so time-dependent behavior can be
// pinned in tests. Production code takes a Clock instead of calling
// time.Now() directly.
package clock

import "time"

// Clock supplies the current time.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}

// RealClock reads the system clock.
type RealClock struct{}

// Now returns the current system time.
func (RealClock) Now() time.Time {
	return time.Now()
}

var _ Clock = RealClock{}
