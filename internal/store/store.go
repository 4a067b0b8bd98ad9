package store

import (
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// Store is the SQLite data access layer for call graph snapshots.
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

// DB returns the underlying *sql.DB.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the snapshot tables and indexes. Idempotent.
func (s *Store) Migrate() error {
	_, err := s.db.Exec(schemaDDL)
	if err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS nodes (
  id              INTEGER PRIMARY KEY,
  routine         TEXT NOT NULL,
  kind            TEXT NOT NULL,
  type_args       TEXT NOT NULL DEFAULT '',
  UNIQUE (routine, kind, type_args)
);

-- Edge order within a (caller, callee) pair is the id order.
CREATE TABLE IF NOT EXISTS edges (
  id              INTEGER PRIMARY KEY,
  caller_id       INTEGER NOT NULL REFERENCES nodes(id),
  callee_id       INTEGER NOT NULL REFERENCES nodes(id),
  file            TEXT,
  line            INTEGER,
  col             INTEGER,
  resolutions     TEXT NOT NULL DEFAULT '[]'
);

CREATE TABLE IF NOT EXISTS cycles (
  cycle_id        INTEGER NOT NULL,
  position        INTEGER NOT NULL,
  node_id         INTEGER NOT NULL REFERENCES nodes(id),
  PRIMARY KEY (cycle_id, position)
);

CREATE TABLE IF NOT EXISTS metadata (
  key             TEXT PRIMARY KEY,
  value           TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_edges_caller ON edges(caller_id);
CREATE INDEX IF NOT EXISTS idx_edges_callee ON edges(callee_id);
CREATE INDEX IF NOT EXISTS idx_nodes_routine ON nodes(routine);
`
