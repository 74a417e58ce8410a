//go:build sqlite

package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/samuelfneumann/gridagent/agent"
	"github.com/samuelfneumann/gridagent/environment/gridworld"

	_ "modernc.org/sqlite"
)

// SQLiteStore is a Store backed by a SQLite database
type SQLiteStore struct {
	path string

	mu sync.RWMutex
	db *sql.DB
}

// NewSQLiteStore returns a new SQLiteStore which keeps its database at
// path. Init must be called before use.
func NewSQLiteStore(path string) *SQLiteStore {
	return &SQLiteStore{path: path}
}

func newSQLiteStore(path string) (Store, error) {
	return NewSQLiteStore(path), nil
}

func (s *SQLiteStore) Init(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path == "" {
		return errors.New("init: sqlite path is required")
	}
	if s.db != nil {
		return nil
	}

	db, err := sql.Open("sqlite", s.path)
	if err != nil {
		return fmt.Errorf("init: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("init: %w", err)
	}

	if err := createTables(ctx, db); err != nil {
		_ = db.Close()
		return fmt.Errorf("init: could not create tables: %w", err)
	}

	s.db = db
	return nil
}

func (s *SQLiteStore) SaveRun(ctx context.Context, run Run) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO runs (id, agent, map, seed, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			agent = excluded.agent,
			map = excluded.map,
			seed = excluded.seed,
			created_at = excluded.created_at
	`, run.ID, string(run.Agent), run.Map, int64(run.Seed),
		run.CreatedAt.UTC().Format(time.RFC3339Nano))
	return err
}

func (s *SQLiteStore) GetRun(ctx context.Context, id string) (Run, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return Run{}, false, err
	}

	var (
		run       Run
		agentType string
		seed      int64
		created   string
	)
	err = db.QueryRowContext(ctx, `
		SELECT id, agent, map, seed, created_at FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &agentType, &run.Map, &seed, &created)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, false, nil
		}
		return Run{}, false, err
	}

	run.Agent = agent.Type(agentType)
	run.Seed = uint64(seed)
	run.CreatedAt, err = time.Parse(time.RFC3339Nano, created)
	if err != nil {
		return Run{}, false, fmt.Errorf("getRun: run %s: %w", id, err)
	}
	return run, true, nil
}

func (s *SQLiteStore) SavePath(ctx context.Context, runID string,
	path []gridworld.Position) error {
	payload, err := EncodePath(path)
	if err != nil {
		return err
	}
	return s.savePayload(ctx, "paths", runID, payload)
}

func (s *SQLiteStore) GetPath(ctx context.Context,
	runID string) ([]gridworld.Position, bool, error) {
	payload, ok, err := s.getPayload(ctx, "paths", runID)
	if err != nil || !ok {
		return nil, ok, err
	}

	path, err := DecodePath(payload)
	if err != nil {
		return nil, false, fmt.Errorf("getPath: run %s: %w", runID, err)
	}
	return path, true, nil
}

func (s *SQLiteStore) SaveValues(ctx context.Context, runID string,
	table agent.ValueTable) error {
	payload, err := EncodeValues(table)
	if err != nil {
		return err
	}
	return s.savePayload(ctx, "value_tables", runID, payload)
}

func (s *SQLiteStore) GetValues(ctx context.Context,
	runID string) (agent.ValueTable, bool, error) {
	payload, ok, err := s.getPayload(ctx, "value_tables", runID)
	if err != nil || !ok {
		return nil, ok, err
	}

	table, err := DecodeValues(payload)
	if err != nil {
		return nil, false, fmt.Errorf("getValues: run %s: %w", runID, err)
	}
	return table, true, nil
}

func (s *SQLiteStore) SaveHistory(ctx context.Context, runID, name string,
	history []float64) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	payload, err := json.Marshal(history)
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, `
		INSERT INTO histories (run_id, name, payload)
		VALUES (?, ?, ?)
		ON CONFLICT(run_id, name) DO UPDATE SET payload = excluded.payload
	`, runID, name, payload)
	return err
}

func (s *SQLiteStore) GetHistory(ctx context.Context, runID,
	name string) ([]float64, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx, `
		SELECT payload FROM histories WHERE run_id = ? AND name = ?
	`, runID, name).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}

	var history []float64
	if err := json.Unmarshal(payload, &history); err != nil {
		return nil, false, fmt.Errorf("getHistory: run %s: %w", runID, err)
	}
	return history, true, nil
}

// savePayload upserts payload into the run-keyed table
func (s *SQLiteStore) savePayload(ctx context.Context, table, runID string,
	payload []byte) error {
	db, err := s.getDB()
	if err != nil {
		return err
	}

	_, err = db.ExecContext(ctx, fmt.Sprintf(`
		INSERT INTO %s (run_id, payload)
		VALUES (?, ?)
		ON CONFLICT(run_id) DO UPDATE SET payload = excluded.payload
	`, table), runID, payload)
	return err
}

// getPayload reads the payload of runID from the run-keyed table
func (s *SQLiteStore) getPayload(ctx context.Context, table,
	runID string) ([]byte, bool, error) {
	db, err := s.getDB()
	if err != nil {
		return nil, false, err
	}

	var payload []byte
	err = db.QueryRowContext(ctx,
		fmt.Sprintf(`SELECT payload FROM %s WHERE run_id = ?`, table),
		runID).Scan(&payload)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return payload, true, nil
}

func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteStore) getDB() (*sql.DB, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if s.db == nil {
		return nil, errNotInitialized
	}
	return s.db, nil
}

func createTables(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			agent TEXT NOT NULL,
			map TEXT NOT NULL,
			seed INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);
		CREATE TABLE IF NOT EXISTS paths (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS value_tables (
			run_id TEXT PRIMARY KEY,
			payload BLOB NOT NULL
		);
		CREATE TABLE IF NOT EXISTS histories (
			run_id TEXT NOT NULL,
			name TEXT NOT NULL,
			payload BLOB NOT NULL,
			PRIMARY KEY (run_id, name)
		);
	`)
	return err
}
