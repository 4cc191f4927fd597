package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for persisted search runs.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in transactions.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS runs (
  id              TEXT PRIMARY KEY,
  suite           TEXT NOT NULL,
  case_name       TEXT NOT NULL,
  strategy        TEXT NOT NULL,
  strategy_hash   TEXT NOT NULL,
  bound           TEXT NOT NULL,
  results         INTEGER NOT NULL,
  pulls           INTEGER NOT NULL,
  stop            TEXT NOT NULL,
  outcome         TEXT NOT NULL,
  fault           TEXT,
  sample          TEXT,
  duration_ns     INTEGER NOT NULL,
  first_result_ns INTEGER NOT NULL,
  started_at      TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_suite ON runs(suite, case_name);
CREATE INDEX IF NOT EXISTS idx_runs_outcome ON runs(outcome);
CREATE INDEX IF NOT EXISTS idx_runs_strategy_hash ON runs(strategy_hash);
CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);
`

// DeleteRuns removes every run of a suite and returns how many were deleted.
// An empty suite deletes all runs.
func (s *Store) DeleteRuns(suite string) (int64, error) {
	q, args := "DELETE FROM runs", []any{}
	if suite != "" {
		q += " WHERE suite = ?"
		args = append(args, suite)
	}
	res, err := s.db.Exec(q, args...)
	if err != nil {
		return 0, fmt.Errorf("delete runs: %w", err)
	}
	return res.RowsAffected()
}
