// Package events provides in-process event delivery for the planning core.
//
// The Bus is a channel-based pub-sub sink: core packages emit through the
// contracts.EventSink interface and subscribers consume read-only channels.
// Delivery is best-effort. Publish never blocks: a subscriber whose buffer
// is full misses the event.
package events

import (
	"sync"

	"github.com/mrz1836/compass/internal/domain"
)

// DefaultBufferSize is the subscriber channel buffer used when the caller
// does not choose one.
const DefaultBufferSize = 256

// Bus is a channel-based pub-sub event sink.
// Supports topic-based subscriptions and SubscribeAll for cross-topic consumption.
type Bus struct {
	mu      sync.RWMutex
	subs    map[string][]chan domain.Event // topic -> subscriber channels
	allSubs []chan domain.Event            // channels subscribed to all topics
	closed  bool
}

// NewBus creates a new event bus.
func NewBus() *Bus {
	return &Bus{
		subs:    make(map[string][]chan domain.Event),
		allSubs: make([]chan domain.Event, 0),
	}
}

// Subscribe creates a subscription to a specific topic.
// Returns a read-only channel that receives events emitted on that topic.
// bufSize determines the channel buffer size (defaults to DefaultBufferSize
// if <= 0).
func (b *Bus) Subscribe(topic string, bufSize int) <-chan domain.Event {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	ch := make(chan domain.Event, bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}

	b.subs[topic] = append(b.subs[topic], ch)

	return ch
}

// SubscribeAll creates a subscription to ALL topics.
// Returns a single read-only channel that receives events from every topic.
func (b *Bus) SubscribeAll(bufSize int) <-chan domain.Event {
	if bufSize <= 0 {
		bufSize = DefaultBufferSize
	}

	ch := make(chan domain.Event, bufSize)

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		close(ch)
		return ch
	}

	b.allSubs = append(b.allSubs, ch)

	return ch
}

// Emit sends an event to all subscribers of its topic and to all-topic
// subscribers. Non-blocking: if a subscriber's channel is full, the event
// is dropped for that subscriber. Implements contracts.EventSink.
func (b *Bus) Emit(event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if b.closed {
		return
	}

	for _, ch := range b.subs[event.Topic] {
		select {
		case ch <- event:
		default:
			// subscriber buffer full, drop
		}
	}

	for _, ch := range b.allSubs {
		select {
		case ch <- event:
		default:
		}
	}
}

// Close closes the bus and all subscriber channels.
// Safe to call multiple times (idempotent).
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.closed = true

	for _, channels := range b.subs {
		for _, ch := range channels {
			close(ch)
		}
	}

	for _, ch := range b.allSubs {
		close(ch)
	}
}

// NoopSink discards every event. Used wherever a caller does not care
// about event delivery.
type NoopSink struct{}

// Emit implements contracts.EventSink.
func (NoopSink) Emit(domain.Event) {}
