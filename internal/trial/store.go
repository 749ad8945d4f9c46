package trial

import (
	"context"
	"sync"

	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
)

// Store is the trial engine's learning store. Implementations must be safe
// for concurrent use: trial loops for different tasks run independently.
type Store interface {
	// Record persists one trial.
	Record(ctx context.Context, trial *domain.Trial) error

	// ByTask returns all trials for a task in attempt order.
	ByTask(ctx context.Context, taskID string) ([]*domain.Trial, error)

	// All returns every recorded trial in recording order.
	All(ctx context.Context) ([]*domain.Trial, error)

	// Close releases store resources.
	Close() error
}

// MemoryStore keeps trials in memory. It is the default store and the one
// used in tests; histories do not survive the process.
type MemoryStore struct {
	mu     sync.RWMutex
	trials []*domain.Trial
	byTask map[string][]*domain.Trial
	closed bool
}

// NewMemoryStore creates an empty in-memory trial store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byTask: make(map[string][]*domain.Trial),
	}
}

// Record implements Store.
func (s *MemoryStore) Record(_ context.Context, trial *domain.Trial) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return compasserrors.ErrStoreClosed
	}
	s.trials = append(s.trials, trial)
	s.byTask[trial.TaskID] = append(s.byTask[trial.TaskID], trial)
	return nil
}

// ByTask implements Store.
func (s *MemoryStore) ByTask(_ context.Context, taskID string) ([]*domain.Trial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, compasserrors.ErrStoreClosed
	}
	trials := s.byTask[taskID]
	out := make([]*domain.Trial, len(trials))
	copy(out, trials)
	return out, nil
}

// All implements Store.
func (s *MemoryStore) All(_ context.Context) ([]*domain.Trial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, compasserrors.ErrStoreClosed
	}
	out := make([]*domain.Trial, len(s.trials))
	copy(out, s.trials)
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
