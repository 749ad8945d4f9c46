package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
)

// newTask builds a task with a fixed ID for graph assertions.
func newTask(id string, priority int) *domain.Task {
	return &domain.Task{
		ID:          id,
		Description: "task " + id,
		Type:        "work",
		Status:      constants.TaskStatusPending,
		Confidence:  0.9,
		Priority:    priority,
	}
}

func finishToStart(pred, succ string) domain.Dependency {
	return domain.Dependency{
		PredecessorID: pred,
		SuccessorID:   succ,
		Type:          constants.FinishToStart,
	}
}

func TestValidate_EmptyGraph(t *testing.T) {
	t.Parallel()

	err := Validate(&domain.TaskGraph{})

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrEmptyValue)
}

func TestValidate_NilGraph(t *testing.T) {
	t.Parallel()

	err := Validate(nil)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrEmptyValue)
}

func TestValidate_UnknownDependencyTarget(t *testing.T) {
	t.Parallel()

	g := &domain.TaskGraph{
		Tasks:        []*domain.Task{newTask("a", 0)},
		Dependencies: []domain.Dependency{finishToStart("a", "ghost")},
	}

	err := Validate(g)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrUnknownTask)
	assert.Contains(t, err.Error(), "ghost")
}

func TestValidate_DuplicateTaskID(t *testing.T) {
	t.Parallel()

	g := &domain.TaskGraph{
		Tasks: []*domain.Task{newTask("a", 0), newTask("a", 0)},
	}

	err := Validate(g)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrEmptyValue)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestValidate_SelfDependency(t *testing.T) {
	t.Parallel()

	g := &domain.TaskGraph{
		Tasks:        []*domain.Task{newTask("a", 0)},
		Dependencies: []domain.Dependency{finishToStart("a", "a")},
	}

	err := Validate(g)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrCycleDetected)
}

func TestTopologicalOrder_LinearChain(t *testing.T) {
	t.Parallel()

	g := &domain.TaskGraph{
		Tasks: []*domain.Task{newTask("a", 0), newTask("b", 0), newTask("c", 0)},
		Dependencies: []domain.Dependency{
			finishToStart("a", "b"),
			finishToStart("b", "c"),
		},
	}

	order, err := TopologicalOrder(g)

	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c"}, order)
}

func TestTopologicalOrder_PriorityBreaksTies(t *testing.T) {
	t.Parallel()

	// b has no dependencies and higher priority than a, so it leads even
	// though a was inserted first.
	g := &domain.TaskGraph{
		Tasks: []*domain.Task{newTask("a", 1), newTask("b", 5), newTask("c", 1)},
	}

	order, err := TopologicalOrder(g)

	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, order)
}

func TestTopologicalOrder_InsertionOrderBreaksEqualPriority(t *testing.T) {
	t.Parallel()

	g := &domain.TaskGraph{
		Tasks: []*domain.Task{newTask("z", 0), newTask("m", 0), newTask("a", 0)},
	}

	order, err := TopologicalOrder(g)

	require.NoError(t, err)
	assert.Equal(t, []string{"z", "m", "a"}, order, "equal priority should keep insertion order")
}

func TestTopologicalOrder_Deterministic(t *testing.T) {
	t.Parallel()

	g := &domain.TaskGraph{
		Tasks: []*domain.Task{
			newTask("a", 2), newTask("b", 2), newTask("c", 7),
			newTask("d", 1), newTask("e", 2),
		},
		Dependencies: []domain.Dependency{
			finishToStart("a", "d"),
			finishToStart("b", "d"),
			finishToStart("c", "e"),
		},
	}

	first, err := TopologicalOrder(g)
	require.NoError(t, err)

	for i := 0; i < 20; i++ {
		again, err := TopologicalOrder(g)
		require.NoError(t, err)
		assert.Equal(t, first, again, "order must be stable across runs")
	}
}

func TestTopologicalOrder_CycleNamesMembers(t *testing.T) {
	t.Parallel()

	g := &domain.TaskGraph{
		Tasks: []*domain.Task{newTask("a", 0), newTask("b", 0), newTask("c", 0)},
		Dependencies: []domain.Dependency{
			finishToStart("a", "b"),
			finishToStart("b", "c"),
			finishToStart("c", "a"),
		},
	}

	_, err := TopologicalOrder(g)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrCycleDetected)

	var cycleErr *compasserrors.CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cycleErr.TaskIDs)
}

func TestTopologicalOrder_CycleExcludesDownstreamTasks(t *testing.T) {
	t.Parallel()

	// d hangs off the cycle but is not on it; the error must not name it.
	g := &domain.TaskGraph{
		Tasks: []*domain.Task{newTask("a", 0), newTask("b", 0), newTask("c", 0), newTask("d", 0)},
		Dependencies: []domain.Dependency{
			finishToStart("a", "b"),
			finishToStart("b", "c"),
			finishToStart("c", "a"),
			finishToStart("c", "d"),
		},
	}

	_, err := TopologicalOrder(g)

	require.Error(t, err)

	var cycleErr *compasserrors.CycleError
	require.True(t, errors.As(err, &cycleErr))
	assert.ElementsMatch(t, []string{"a", "b", "c"}, cycleErr.TaskIDs)
	assert.NotContains(t, cycleErr.TaskIDs, "d")
}

func TestDetectCycle_Acyclic(t *testing.T) {
	t.Parallel()

	g := &domain.TaskGraph{
		Tasks:        []*domain.Task{newTask("a", 0), newTask("b", 0)},
		Dependencies: []domain.Dependency{finishToStart("a", "b")},
	}

	require.NoError(t, DetectCycle(g))
}

func TestDetectCycle_AllDependencyTypesContribute(t *testing.T) {
	t.Parallel()

	g := &domain.TaskGraph{
		Tasks: []*domain.Task{newTask("a", 0), newTask("b", 0)},
		Dependencies: []domain.Dependency{
			{PredecessorID: "a", SuccessorID: "b", Type: constants.StartToStart},
			{PredecessorID: "b", SuccessorID: "a", Type: constants.FinishToFinish},
		},
	}

	err := DetectCycle(g)

	require.Error(t, err)
	require.ErrorIs(t, err, compasserrors.ErrCycleDetected)
}

func BenchmarkTopologicalOrder(b *testing.B) {
	tasks := make([]*domain.Task, 0, 100)
	deps := make([]domain.Dependency, 0, 99)
	prev := ""
	for i := 0; i < 100; i++ {
		id := string(rune('a'+i%26)) + "-" + string(rune('0'+i/26))
		tasks = append(tasks, newTask(id, i%5))
		if prev != "" {
			deps = append(deps, finishToStart(prev, id))
		}
		prev = id
	}
	g := &domain.TaskGraph{Tasks: tasks, Dependencies: deps}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := TopologicalOrder(g); err != nil {
			b.Fatal(err)
		}
	}
}
