// Package graph provides validation and ordering algorithms over task graphs.
//
// The graph itself is the domain.TaskGraph value type; this package holds the
// algorithms that operate on it: structural validation, cycle detection, and
// deterministic topological ordering. Determinism matters because execution
// order is persisted with the plan and must survive serialize/reload: ties
// are broken by task priority (higher first), then by insertion order.
//
// Import rules:
//   - CAN import: internal/constants, internal/domain, internal/errors, std lib
//   - MUST NOT import: internal/plan, internal/decompose, internal/cli
package graph

import (
	"errors"
	"fmt"

	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
)

// Validate checks the structural invariants of a task graph: task IDs are
// unique and non-empty, every dependency references existing tasks, and no
// task depends on itself. Acyclicity is checked separately by
// TopologicalOrder; callers that only need a yes/no answer use Validate
// followed by DetectCycle.
func Validate(g *domain.TaskGraph) error {
	if g == nil || len(g.Tasks) == 0 {
		return fmt.Errorf("%w: task graph has no tasks", compasserrors.ErrEmptyValue)
	}

	seen := make(map[string]struct{}, len(g.Tasks))
	for _, t := range g.Tasks {
		if t.ID == "" {
			return fmt.Errorf("%w: task id is empty", compasserrors.ErrEmptyValue)
		}
		if _, dup := seen[t.ID]; dup {
			return fmt.Errorf("%w: duplicate task id %s", compasserrors.ErrEmptyValue, t.ID)
		}
		seen[t.ID] = struct{}{}
	}

	for _, d := range g.Dependencies {
		if _, ok := seen[d.PredecessorID]; !ok {
			return fmt.Errorf("%w: predecessor %s", compasserrors.ErrUnknownTask, d.PredecessorID)
		}
		if _, ok := seen[d.SuccessorID]; !ok {
			return fmt.Errorf("%w: successor %s", compasserrors.ErrUnknownTask, d.SuccessorID)
		}
		if d.PredecessorID == d.SuccessorID {
			return fmt.Errorf("%w: task %s depends on itself", compasserrors.ErrCycleDetected, d.PredecessorID)
		}
		if !d.Type.Valid() {
			return fmt.Errorf("%w: unknown dependency type %q", compasserrors.ErrEmptyValue, d.Type)
		}
	}

	return nil
}

// TopologicalOrder returns task IDs in dependency order using Kahn's
// algorithm. Among simultaneously-ready tasks the one with the highest
// priority is emitted first; equal priorities fall back to insertion order.
// All dependency types contribute ordering edges.
//
// If the graph contains a cycle the returned error is a
// *compasserrors.CycleError naming the tasks on it.
func TopologicalOrder(g *domain.TaskGraph) ([]string, error) {
	if err := Validate(g); err != nil {
		return nil, err
	}

	inDegree := make(map[string]int, len(g.Tasks))
	successors := make(map[string][]string, len(g.Tasks))
	for _, t := range g.Tasks {
		inDegree[t.ID] = 0
	}
	for _, d := range g.Dependencies {
		inDegree[d.SuccessorID]++
		successors[d.PredecessorID] = append(successors[d.PredecessorID], d.SuccessorID)
	}

	// insertion index backs the final tie-break
	index := make(map[string]int, len(g.Tasks))
	priority := make(map[string]int, len(g.Tasks))
	for i, t := range g.Tasks {
		index[t.ID] = i
		priority[t.ID] = t.Priority
	}

	var ready []string
	for _, t := range g.Tasks {
		if inDegree[t.ID] == 0 {
			ready = append(ready, t.ID)
		}
	}

	order := make([]string, 0, len(g.Tasks))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			a, b := ready[i], ready[best]
			if priority[a] > priority[b] || (priority[a] == priority[b] && index[a] < index[b]) {
				best = i
			}
		}
		id := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, id)

		for _, succ := range successors[id] {
			inDegree[succ]--
			if inDegree[succ] == 0 {
				ready = append(ready, succ)
			}
		}
	}

	if len(order) != len(g.Tasks) {
		return nil, cycleFromLeftover(g, order, successors)
	}

	return order, nil
}

// DetectCycle returns a *compasserrors.CycleError naming the tasks on a
// cycle, or nil if the graph is acyclic.
func DetectCycle(g *domain.TaskGraph) error {
	_, err := TopologicalOrder(g)
	if err != nil && errors.Is(err, compasserrors.ErrCycleDetected) {
		return err
	}
	return nil
}

// cycleFromLeftover narrows the set of tasks Kahn's algorithm could not
// order down to the tasks actually on a cycle. The leftover set contains
// cycle members plus their downstream tasks; repeatedly discarding leftover
// tasks with no outgoing edge inside the set strips the downstream tail so
// the error names only the cycle itself.
func cycleFromLeftover(g *domain.TaskGraph, ordered []string, successors map[string][]string) error {
	leftover := make(map[string]struct{}, len(g.Tasks))
	for _, t := range g.Tasks {
		leftover[t.ID] = struct{}{}
	}
	for _, id := range ordered {
		delete(leftover, id)
	}

	for {
		trimmed := false
		for id := range leftover {
			hasInternalEdge := false
			for _, succ := range successors[id] {
				if _, in := leftover[succ]; in {
					hasInternalEdge = true
					break
				}
			}
			if !hasInternalEdge {
				delete(leftover, id)
				trimmed = true
			}
		}
		if !trimmed {
			break
		}
	}

	// insertion order keeps the error message deterministic
	ids := make([]string, 0, len(leftover))
	for _, t := range g.Tasks {
		if _, in := leftover[t.ID]; in {
			ids = append(ids, t.ID)
		}
	}
	return compasserrors.NewCycleError(ids)
}
