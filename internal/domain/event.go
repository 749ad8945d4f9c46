package domain

import "time"

// Event topics emitted by the core.
const (
	// TopicPlan carries plan state transitions.
	TopicPlan = "plan"

	// TopicTask carries task status changes.
	TopicTask = "task"

	// TopicDecision carries decisions as they are made.
	TopicDecision = "decision"

	// TopicTrial carries individual trial attempts.
	TopicTrial = "trial"
)

// Event is the envelope published to event sinks on every plan transition,
// task status change, decision, and trial attempt. Emission is
// fire-and-forget: a failure to emit never fails the calling operation.
type Event struct {
	// Topic groups related events (plan, task, decision, trial).
	Topic string `json:"topic"`

	// Kind names the specific occurrence (e.g., "plan.state_changed").
	Kind string `json:"kind"`

	// PlanID, TaskID, and DecisionID scope the event where applicable.
	PlanID     string `json:"plan_id,omitempty"`
	TaskID     string `json:"task_id,omitempty"`
	DecisionID string `json:"decision_id,omitempty"`

	// Payload carries event-specific data.
	Payload map[string]any `json:"payload,omitempty"`

	// Timestamp is when the event was emitted.
	Timestamp time.Time `json:"timestamp"`
}

// NewEvent creates an event with the current timestamp.
func NewEvent(topic, kind string) Event {
	return Event{
		Topic:     topic,
		Kind:      kind,
		Payload:   map[string]any{},
		Timestamp: time.Now().UTC(),
	}
}
