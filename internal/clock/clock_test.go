package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRealClock_Now(t *testing.T) {
	c := RealClock{}

	before := time.Now()
	got := c.Now()
	after := time.Now()

	assert.False(t, got.Before(before), "Now() went backwards")
	assert.False(t, got.After(after), "Now() ran ahead of the system clock")
}

// fixedClock pins Now to a single instant for deterministic tests.
type fixedClock struct {
	at time.Time
}

func (f fixedClock) Now() time.Time { return f.at }

func TestFixedClock_Now(t *testing.T) {
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	var c Clock = fixedClock{at: at}

	assert.Equal(t, at, c.Now())
	assert.Equal(t, at, c.Now())
}
