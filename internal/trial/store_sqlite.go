package trial

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "modernc.org/sqlite" // database/sql driver

	"github.com/mrz1836/compass/internal/constants"
	"github.com/mrz1836/compass/internal/domain"
	compasserrors "github.com/mrz1836/compass/internal/errors"
)

// SQLiteStore is the durable trial store. Trial history survives the
// process, so insights can be mined across runs.
type SQLiteStore struct {
	db     *sql.DB
	dbPath string
	mu     sync.RWMutex
	closed bool
}

// DefaultDBPath returns the default trial database path under the user's
// compass home.
func DefaultDBPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, constants.CompassHome, constants.TrialsDBFileName)
}

// NewSQLiteStore opens (creating if necessary) the trial database at dbPath
// and applies pending schema migrations. Parent directories are created.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// WAL allows concurrent readers while a trial loop writes
	if _, err := conn.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}

	store := &SQLiteStore{
		db:     conn,
		dbPath: dbPath,
	}

	if err := store.migrate(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate trial schema: %w", err)
	}

	return store, nil
}

// Path returns the path to the database file.
func (s *SQLiteStore) Path() string {
	return s.dbPath
}

// migrate creates the necessary tables and indexes if they don't exist.
func (s *SQLiteStore) migrate() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.Exec(`
		CREATE TABLE IF NOT EXISTS trial_schema_version (
			version INTEGER PRIMARY KEY,
			applied_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)
	`)
	if err != nil {
		return err
	}

	var currentVersion int
	row := s.db.QueryRow("SELECT COALESCE(MAX(version), 0) FROM trial_schema_version")
	if err = row.Scan(&currentVersion); err != nil {
		return err
	}

	migrations := []struct {
		version int
		sql     string
	}{
		{1, migrationV1Trials},
	}

	for _, m := range migrations {
		if m.version <= currentVersion {
			continue
		}

		tx, err := s.db.Begin()
		if err != nil {
			return err
		}

		if _, err = tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return err
		}

		if _, err = tx.Exec("INSERT INTO trial_schema_version (version) VALUES (?)", m.version); err != nil {
			_ = tx.Rollback()
			return err
		}

		if err = tx.Commit(); err != nil {
			return err
		}
	}

	return nil
}

const migrationV1Trials = `
CREATE TABLE IF NOT EXISTS trials (
	id TEXT PRIMARY KEY,
	task_id TEXT NOT NULL,
	attempt INTEGER NOT NULL,
	parameters TEXT,
	outcome TEXT NOT NULL,
	signature TEXT,
	error TEXT,
	strategy TEXT,
	duration_ns INTEGER NOT NULL DEFAULT 0,
	started_at DATETIME NOT NULL,
	recorded_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_trials_task_id ON trials(task_id, attempt);
CREATE INDEX IF NOT EXISTS idx_trials_signature ON trials(signature);
`

// Record implements Store.
func (s *SQLiteStore) Record(ctx context.Context, trial *domain.Trial) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return compasserrors.ErrStoreClosed
	}

	paramsJSON, err := json.Marshal(trial.Parameters)
	if err != nil {
		return fmt.Errorf("marshal trial parameters: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO trials (id, task_id, attempt, parameters, outcome, signature, error, strategy, duration_ns, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		trial.ID,
		trial.TaskID,
		trial.Attempt,
		string(paramsJSON),
		trial.Outcome.String(),
		trial.Signature.String(),
		trial.Error,
		trial.Strategy.String(),
		trial.Duration.Nanoseconds(),
		trial.StartedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert trial: %w", err)
	}
	return nil
}

// ByTask implements Store.
func (s *SQLiteStore) ByTask(ctx context.Context, taskID string) ([]*domain.Trial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, compasserrors.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, attempt, parameters, outcome, signature, error, strategy, duration_ns, started_at
		FROM trials WHERE task_id = ? ORDER BY attempt`, taskID)
	if err != nil {
		return nil, fmt.Errorf("query trials by task: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTrials(rows)
}

// All implements Store.
func (s *SQLiteStore) All(ctx context.Context) ([]*domain.Trial, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.closed {
		return nil, compasserrors.ErrStoreClosed
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, task_id, attempt, parameters, outcome, signature, error, strategy, duration_ns, started_at
		FROM trials ORDER BY recorded_at, attempt`)
	if err != nil {
		return nil, fmt.Errorf("query trials: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanTrials(rows)
}

// Close implements Store.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true
	return s.db.Close()
}

// scanTrials reads trial rows into domain values.
func scanTrials(rows *sql.Rows) ([]*domain.Trial, error) {
	var trials []*domain.Trial
	for rows.Next() {
		var (
			t          domain.Trial
			paramsJSON string
			outcome    string
			signature  string
			strategy   string
			durationNS int64
			startedAt  string
		)
		if err := rows.Scan(&t.ID, &t.TaskID, &t.Attempt, &paramsJSON, &outcome,
			&signature, &t.Error, &strategy, &durationNS, &startedAt); err != nil {
			return nil, fmt.Errorf("scan trial row: %w", err)
		}

		if paramsJSON != "" && paramsJSON != "null" {
			if err := json.Unmarshal([]byte(paramsJSON), &t.Parameters); err != nil {
				return nil, fmt.Errorf("unmarshal trial parameters: %w", err)
			}
		}
		t.Outcome = constants.TrialOutcome(outcome)
		t.Signature = constants.ErrorSignature(signature)
		t.Strategy = constants.Strategy(strategy)
		t.Duration = time.Duration(durationNS)

		parsed, err := time.Parse(time.RFC3339Nano, startedAt)
		if err != nil {
			return nil, fmt.Errorf("parse trial timestamp: %w", err)
		}
		t.StartedAt = parsed

		trials = append(trials, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate trial rows: %w", err)
	}
	return trials, nil
}

var _ Store = (*SQLiteStore)(nil)
var _ Store = (*MemoryStore)(nil)
