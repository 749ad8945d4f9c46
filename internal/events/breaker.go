package events

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/sony/gobreaker"

	"github.com/mrz1836/compass/internal/domain"
)

// DeliveryFunc forwards one event to a downstream that can fail, such as a
// forwarding socket or an external subscriber process.
type DeliveryFunc func(event domain.Event) error

// BreakerSink guards a fallible downstream delivery behind a circuit
// breaker so a failing downstream stops being hammered. Emit never
// propagates errors: failed or breaker-rejected events are logged and
// dropped, keeping the fire-and-forget contract of event sinks.
type BreakerSink struct {
	deliver DeliveryFunc
	breaker *gobreaker.CircuitBreaker
	logger  zerolog.Logger
}

// NewBreakerSink wraps deliver behind a circuit breaker.
// The breaker trips after 5 consecutive delivery failures and drops events
// while open; gobreaker's default timeout governs when test deliveries are
// allowed through again. A panicking delivery counts as a failure.
func NewBreakerSink(deliver DeliveryFunc, logger zerolog.Logger) *BreakerSink {
	s := &BreakerSink{
		deliver: deliver,
		logger:  logger.With().Str("component", "events").Logger(),
	}
	s.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "event-sink",
		MaxRequests: 3, // test deliveries allowed in half-open state
		Interval:    0, // never clear counts automatically
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			s.logger.Warn().
				Str("breaker", name).
				Str("from", from.String()).
				Str("to", to.String()).
				Msg("event sink breaker state changed")
		},
	})
	return s
}

// Emit implements contracts.EventSink.
func (s *BreakerSink) Emit(event domain.Event) {
	_, err := s.breaker.Execute(func() (any, error) {
		return nil, s.safeDeliver(event)
	})
	if err != nil {
		s.logger.Debug().
			Err(err).
			Str("topic", event.Topic).
			Str("kind", event.Kind).
			Msg("event dropped")
	}
}

// State exposes the breaker state for tests and diagnostics.
func (s *BreakerSink) State() gobreaker.State {
	return s.breaker.State()
}

// safeDeliver converts a downstream panic into an error the breaker counts.
func (s *BreakerSink) safeDeliver(event domain.Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("event delivery panicked: %v", r)
		}
	}()
	return s.deliver(event)
}
