package plan

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/ctxutil"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
	"github.com/mrz1836/compass/internal/flock"
)

// LockTimeout is the maximum duration to wait for acquiring a plan lock.
const LockTimeout = 5 * time.Second

// lockRetryDelay is the pause between lock acquisition attempts.
const lockRetryDelay = 50 * time.Millisecond

// Directory and file permission constants.
const (
	dirPerm  = 0o750
	filePerm = 0o600
)

// Store defines the interface for plan persistence operations.
type Store interface {
	// Create persists a new plan. Returns ErrPlanExists if it already exists.
	Create(ctx context.Context, pl *domain.Plan) error

	// Get retrieves a plan by ID. Returns ErrPlanNotFound if absent.
	Get(ctx context.Context, planID string) (*domain.Plan, error)

	// Update saves the current plan state (atomic write).
	Update(ctx context.Context, pl *domain.Plan) error

	// List returns all stored plans, newest first.
	List(ctx context.Context) ([]*domain.Plan, error)

	// Delete removes a plan and its artifacts.
	Delete(ctx context.Context, planID string) error
}

// FileStore implements Store using the local filesystem: one directory per
// plan under <home>/plans, a JSON state file written atomically, and an
// advisory file lock serializing access across processes.
type FileStore struct {
	compassHome string
}

// Ensure FileStore implements Store.
var _ Store = (*FileStore)(nil)

// NewFileStore creates a FileStore rooted at the given compass home
// directory. An empty home selects ~/.compass.
func NewFileStore(compassHome string) (*FileStore, error) {
	if compassHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		compassHome = filepath.Join(home, constants.CompassHome)
	}
	return &FileStore{compassHome: compassHome}, nil
}

// Create persists a new plan.
func (s *FileStore) Create(ctx context.Context, pl *domain.Plan) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if pl == nil || pl.ID == "" {
		return fmt.Errorf("failed to create plan: plan %w", compasserrors.ErrEmptyValue)
	}

	planDir := s.planDir(pl.ID)
	if _, err := os.Stat(planDir); err == nil {
		return fmt.Errorf("failed to create plan '%s': %w", pl.ID, compasserrors.ErrPlanExists)
	}
	if err := os.MkdirAll(planDir, dirPerm); err != nil {
		return fmt.Errorf("failed to create plan directory: %w", err)
	}

	lockFile, err := s.acquireLock(ctx, pl.ID)
	if err != nil {
		_ = os.RemoveAll(planDir)
		return fmt.Errorf("failed to create plan '%s': %w", pl.ID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	pl.SchemaVersion = constants.PlanSchemaVersion
	if err := s.writePlan(pl); err != nil {
		_ = os.RemoveAll(planDir)
		return fmt.Errorf("failed to create plan '%s': %w", pl.ID, err)
	}
	return nil
}

// Get retrieves a plan by ID.
func (s *FileStore) Get(ctx context.Context, planID string) (*domain.Plan, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}
	if planID == "" {
		return nil, fmt.Errorf("failed to get plan: plan ID %w", compasserrors.ErrEmptyValue)
	}

	planDir := s.planDir(planID)
	if _, err := os.Stat(planDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to get plan '%s': %w", planID, compasserrors.ErrPlanNotFound)
	}

	lockFile, err := s.acquireLock(ctx, planID)
	if err != nil {
		return nil, fmt.Errorf("failed to get plan '%s': %w", planID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	data, err := os.ReadFile(s.planFilePath(planID)) //#nosec G304 -- path is constructed from trusted base
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to get plan '%s': %w", planID, compasserrors.ErrPlanNotFound)
		}
		return nil, fmt.Errorf("failed to read plan '%s': %w", planID, err)
	}

	var pl domain.Plan
	if err := json.Unmarshal(data, &pl); err != nil {
		return nil, fmt.Errorf("failed to parse plan '%s': %w: %s", planID, compasserrors.ErrPlanCorrupted, err)
	}
	return &pl, nil
}

// Update saves the current plan state atomically.
func (s *FileStore) Update(ctx context.Context, pl *domain.Plan) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if pl == nil || pl.ID == "" {
		return fmt.Errorf("failed to update plan: plan %w", compasserrors.ErrEmptyValue)
	}

	if _, err := os.Stat(s.planDir(pl.ID)); os.IsNotExist(err) {
		return fmt.Errorf("failed to update plan '%s': %w", pl.ID, compasserrors.ErrPlanNotFound)
	}

	lockFile, err := s.acquireLock(ctx, pl.ID)
	if err != nil {
		return fmt.Errorf("failed to update plan '%s': %w", pl.ID, err)
	}
	defer func() { _ = s.releaseLock(lockFile) }()

	pl.UpdatedAt = time.Now().UTC()
	if err := s.writePlan(pl); err != nil {
		return fmt.Errorf("failed to update plan '%s': %w", pl.ID, err)
	}
	return nil
}

// List returns all stored plans sorted by creation time, newest first.
func (s *FileStore) List(ctx context.Context) ([]*domain.Plan, error) {
	if err := ctxutil.Canceled(ctx); err != nil {
		return nil, err
	}

	plansDir := filepath.Join(s.compassHome, constants.PlansDir)
	entries, err := os.ReadDir(plansDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to list plans: %w", err)
	}

	plans := make([]*domain.Plan, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		pl, err := s.Get(ctx, entry.Name())
		if err != nil {
			// a corrupted entry must not hide the rest
			continue
		}
		plans = append(plans, pl)
	}

	sort.Slice(plans, func(i, j int) bool {
		return plans[i].CreatedAt.After(plans[j].CreatedAt)
	})
	return plans, nil
}

// Delete removes a plan and all its artifacts.
func (s *FileStore) Delete(ctx context.Context, planID string) error {
	if err := ctxutil.Canceled(ctx); err != nil {
		return err
	}
	if planID == "" {
		return fmt.Errorf("failed to delete plan: plan ID %w", compasserrors.ErrEmptyValue)
	}

	planDir := s.planDir(planID)
	if _, err := os.Stat(planDir); os.IsNotExist(err) {
		return fmt.Errorf("failed to delete plan '%s': %w", planID, compasserrors.ErrPlanNotFound)
	}
	if err := os.RemoveAll(planDir); err != nil {
		return fmt.Errorf("failed to delete plan '%s': %w", planID, err)
	}
	return nil
}

func (s *FileStore) planDir(planID string) string {
	return filepath.Join(s.compassHome, constants.PlansDir, planID)
}

func (s *FileStore) planFilePath(planID string) string {
	return filepath.Join(s.planDir(planID), constants.PlanFileName)
}

func (s *FileStore) lockFilePath(planID string) string {
	return filepath.Join(s.planDir(planID), constants.PlanFileName+".lock")
}

// writePlan marshals and atomically writes the plan state file.
func (s *FileStore) writePlan(pl *domain.Plan) error {
	data, err := json.MarshalIndent(pl, "", "  ")
	if err != nil {
		return err
	}
	return atomicWrite(s.planFilePath(pl.ID), data)
}

// acquireLock takes the advisory lock for a plan, retrying until
// LockTimeout. The lock serializes reads and writes across processes.
func (s *FileStore) acquireLock(ctx context.Context, planID string) (*os.File, error) {
	f, err := os.OpenFile(s.lockFilePath(planID), os.O_CREATE|os.O_RDWR, filePerm) //#nosec G302,G304 -- lock file needs write access, path is constructed from trusted base
	if err != nil {
		return nil, fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(LockTimeout)
	for {
		if err := ctxutil.Canceled(ctx); err != nil {
			_ = f.Close()
			return nil, err
		}

		if err := flock.Exclusive(f.Fd()); err == nil {
			return f, nil
		}

		if time.Now().After(deadline) {
			_ = f.Close()
			return nil, fmt.Errorf("%w: %s", compasserrors.ErrLockTimeout, planID)
		}
		time.Sleep(lockRetryDelay)
	}
}

// releaseLock releases the advisory lock and closes the lock file.
func (s *FileStore) releaseLock(f *os.File) error {
	if f == nil {
		return nil
	}
	if err := flock.Unlock(f.Fd()); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return f.Close()
}

// atomicWrite writes data to a file atomically using write-then-rename.
func atomicWrite(path string, data []byte) error {
	tmpPath := path + ".tmp"
	f, err := os.OpenFile(tmpPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, filePerm) //#nosec G304 -- path is constructed internally
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to sync file: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to close file: %w", err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	return nil
}
