package plan

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
)

func storedPlan() *domain.Plan {
	g := &domain.TaskGraph{
		Tasks: []*domain.Task{
			{ID: "a", Description: "first", Type: "work", Status: constants.TaskStatusPending, Confidence: 0.9, Priority: 1},
			{ID: "b", Description: "second", Type: "work", Status: constants.TaskStatusPending, Confidence: 0.88, Priority: 5},
			{ID: "c", Description: "third", Type: "work", Status: constants.TaskStatusPending, Confidence: 0.86},
		},
		Dependencies: []domain.Dependency{
			{PredecessorID: "a", SuccessorID: "c", Type: constants.FinishToStart},
		},
		Strategy: constants.StrategySequential,
		Goal:     "do the thing",
	}
	return domain.NewPlan(g)
}

func TestFileStoreRoundTrip(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	ctx := context.Background()
	pl := storedPlan()
	pl.ExecutionOrder = []string{"b", "a", "c"}

	require.NoError(t, store.Create(ctx, pl))

	got, err := store.Get(ctx, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, pl.ID, got.ID)
	assert.Equal(t, constants.PlanStateDraft, got.State)
	assert.Equal(t, "do the thing", got.Graph.Goal)
	require.Len(t, got.Graph.Tasks, 3)

	// insertion order and execution order survive serialization exactly
	assert.Equal(t, "a", got.Graph.Tasks[0].ID)
	assert.Equal(t, "b", got.Graph.Tasks[1].ID)
	assert.Equal(t, []string{"b", "a", "c"}, got.ExecutionOrder)
	assert.Equal(t, constants.PlanSchemaVersion, got.SchemaVersion)
}

func TestFileStoreReloadReproducesExecutionOrder(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	p := NewPlanner(Options{Store: store})
	pl, err := p.Create(ctx, storedPlan().Graph)
	require.NoError(t, err)
	require.NoError(t, p.Approve(ctx, pl))

	got, err := store.Get(ctx, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, pl.ExecutionOrder, got.ExecutionOrder)

	// re-sorting the reloaded graph yields the same order
	reorder, err := NewPlanner(Options{}).Create(ctx, got.Graph)
	require.NoError(t, err)
	require.NoError(t, NewPlanner(Options{}).Approve(ctx, reorder))
	assert.Equal(t, pl.ExecutionOrder, reorder.ExecutionOrder)
}

func TestFileStoreCreateDuplicate(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	pl := storedPlan()
	require.NoError(t, store.Create(ctx, pl))
	require.ErrorIs(t, store.Create(ctx, pl), compasserrors.ErrPlanExists)
}

func TestFileStoreGetMissing(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	_, err = store.Get(context.Background(), "nope")
	require.ErrorIs(t, err, compasserrors.ErrPlanNotFound)
}

func TestFileStoreUpdateMissing(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	err = store.Update(context.Background(), storedPlan())
	require.ErrorIs(t, err, compasserrors.ErrPlanNotFound)
}

func TestFileStoreUpdatePersistsStateChanges(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	pl := storedPlan()
	require.NoError(t, store.Create(ctx, pl))

	require.NoError(t, Transition(ctx, pl, constants.PlanStateApproved, "ok"))
	require.NoError(t, store.Update(ctx, pl))

	got, err := store.Get(ctx, pl.ID)
	require.NoError(t, err)
	assert.Equal(t, constants.PlanStateApproved, got.State)
	require.Len(t, got.Transitions, 1)
	assert.Equal(t, "ok", got.Transitions[0].Reason)
}

func TestFileStoreCorruptedPlan(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	store, err := NewFileStore(home)
	require.NoError(t, err)
	ctx := context.Background()

	pl := storedPlan()
	require.NoError(t, store.Create(ctx, pl))

	planFile := filepath.Join(home, constants.PlansDir, pl.ID, constants.PlanFileName)
	require.NoError(t, os.WriteFile(planFile, []byte("{not json"), 0o600))

	_, err = store.Get(ctx, pl.ID)
	require.ErrorIs(t, err, compasserrors.ErrPlanCorrupted)
}

func TestFileStoreListSkipsCorrupted(t *testing.T) {
	t.Parallel()

	home := t.TempDir()
	store, err := NewFileStore(home)
	require.NoError(t, err)
	ctx := context.Background()

	good := storedPlan()
	require.NoError(t, store.Create(ctx, good))

	bad := storedPlan()
	require.NoError(t, store.Create(ctx, bad))
	badFile := filepath.Join(home, constants.PlansDir, bad.ID, constants.PlanFileName)
	require.NoError(t, os.WriteFile(badFile, []byte("junk"), 0o600))

	plans, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, plans, 1)
	assert.Equal(t, good.ID, plans[0].ID)
}

func TestFileStoreListEmpty(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)

	plans, err := store.List(context.Background())
	require.NoError(t, err)
	assert.Empty(t, plans)
}

func TestFileStoreDelete(t *testing.T) {
	t.Parallel()

	store, err := NewFileStore(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	pl := storedPlan()
	require.NoError(t, store.Create(ctx, pl))
	require.NoError(t, store.Delete(ctx, pl.ID))

	_, err = store.Get(ctx, pl.ID)
	require.ErrorIs(t, err, compasserrors.ErrPlanNotFound)

	require.ErrorIs(t, store.Delete(ctx, pl.ID), compasserrors.ErrPlanNotFound)
}
