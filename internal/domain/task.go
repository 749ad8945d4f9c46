// Package domain provides shared domain types for the COMPASS planning core.
// These types are used across all internal packages to ensure consistent data structures.
//
// This package follows strict import rules:
//   - CAN import: internal/constants, internal/errors, standard library
//   - MUST NOT import: any other internal packages
//
// All JSON field names use snake_case per architecture requirements.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/mrz1836/compass/internal/constants"
)

// Task represents a single unit of work in a decomposed goal.
// Tasks are produced by the decomposer and executed through plans.
//
// Example JSON representation:
//
//	{
//	    "id": "6f1f0e9a-...",
//	    "description": "collect upstream metrics",
//	    "type": "work",
//	    "status": "pending",
//	    "confidence": 0.85,
//	    "priority": 10,
//	    "estimated_duration": 30000000000,
//	    "required_capabilities": ["http"],
//	    "parameters": {"batch_size": 100}
//	}
type Task struct {
	// ID is the unique identifier for the task.
	ID string `json:"id"`

	// Description is a human-readable summary of what the task does.
	Description string `json:"description"`

	// Type labels the kind of work (e.g., "work", "join", "analysis").
	Type string `json:"type"`

	// Status represents the current state in the task lifecycle.
	Status constants.TaskStatus `json:"status"`

	// EstimatedDuration is the decomposer's duration estimate.
	EstimatedDuration time.Duration `json:"estimated_duration,omitempty"`

	// RequiredCapabilities lists executor capabilities the task needs.
	RequiredCapabilities []string `json:"required_capabilities,omitempty"`

	// Confidence is the 0..1 estimate of successful completion.
	Confidence float64 `json:"confidence"`

	// Priority breaks execution-order ties: higher priority sorts first.
	Priority int `json:"priority,omitempty"`

	// Strategy labels the decomposition strategy that produced the task.
	// Trials carry the label for strategy-effectiveness mining.
	Strategy constants.Strategy `json:"strategy,omitempty"`

	// Parameters are the input parameters passed to the executor.
	Parameters map[string]any `json:"parameters,omitempty"`
}

// NewTask creates a pending task with a generated ID and default confidence.
func NewTask(description, taskType string) *Task {
	return &Task{
		ID:          uuid.NewString(),
		Description: description,
		Type:        taskType,
		Status:      constants.TaskStatusPending,
		Confidence:  constants.DefaultTaskConfidence,
	}
}

// CloneParameters returns a shallow copy of the task's parameters.
// Dispatch mutates parameter maps (data-dependency injection), so callers
// copy before handing them to the executor.
func (t *Task) CloneParameters() map[string]any {
	if t.Parameters == nil {
		return map[string]any{}
	}
	params := make(map[string]any, len(t.Parameters))
	for k, v := range t.Parameters {
		params[k] = v
	}
	return params
}

// Dependency is a typed edge between two tasks in a task graph.
type Dependency struct {
	// PredecessorID is the task that constrains.
	PredecessorID string `json:"predecessor_id"`

	// SuccessorID is the task being constrained.
	SuccessorID string `json:"successor_id"`

	// Type determines the satisfaction rule for this edge.
	Type constants.DependencyType `json:"type"`

	// OutputKey names the predecessor output a data dependency injects into
	// the successor's parameters. Only set for data dependencies.
	OutputKey string `json:"output_key,omitempty"`
}

// TaskGraph is the DAG of tasks and typed dependencies produced by the
// decomposer. A graph is never mutated in place once a plan leaves draft;
// replans replace it wholesale.
type TaskGraph struct {
	// Tasks in insertion order. Insertion order is the final execution-order
	// tie-break, so it must be preserved across serialization.
	Tasks []*Task `json:"tasks"`

	// Dependencies are the typed edges between tasks.
	Dependencies []Dependency `json:"dependencies"`

	// Strategy records which decomposition strategy produced the graph.
	Strategy constants.Strategy `json:"strategy"`

	// Goal is the original goal text the graph was decomposed from.
	Goal string `json:"goal,omitempty"`
}

// Task returns the task with the given ID, or nil if absent.
func (g *TaskGraph) Task(id string) *Task {
	for _, t := range g.Tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// Predecessors returns the dependencies whose successor is the given task.
func (g *TaskGraph) Predecessors(taskID string) []Dependency {
	var deps []Dependency
	for _, d := range g.Dependencies {
		if d.SuccessorID == taskID {
			deps = append(deps, d)
		}
	}
	return deps
}

// Successors returns the dependencies whose predecessor is the given task.
func (g *TaskGraph) Successors(taskID string) []Dependency {
	var deps []Dependency
	for _, d := range g.Dependencies {
		if d.PredecessorID == taskID {
			deps = append(deps, d)
		}
	}
	return deps
}

// Result is the executor's report for one task execution.
type Result struct {
	// TaskID identifies the executed task.
	TaskID string `json:"task_id"`

	// Output carries named outputs consumed by data dependencies.
	Output map[string]any `json:"output,omitempty"`

	// Duration is how long the execution took.
	Duration time.Duration `json:"duration"`
}
