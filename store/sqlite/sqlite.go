/*
Package sqlite provides a SQLite-backed implementation of the ledger's storage.

PURPOSE:
  One database file holds everything the ledger service reads and writes:
  the tagged record list (config, quotas, snapshots), the employee master
  list and the leave requests. In production the same patterns apply to
  any SQL database with an upsert clause.

INTERFACES IMPLEMENTED:
  generic.RecordStore:    Tagged config/quota/snapshot records
  timeoff.EmployeeSource: Employee master list
  timeoff.RequestSource:  Leave requests joined with requester identity

KEY TABLES:
  records:        (tag, record_key) -> payload_json, upserted in place
  employees:      Directory records with department and policy code
  leave_requests: Requests with denormalized requester id/name/email

UPSERT:
  Every write is INSERT ... ON CONFLICT DO UPDATE. Saving the same
  snapshot twice leaves exactly one row.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. Each statement is atomic; there is
  no cross-row transaction for a ledger save.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging):
  - Multiple readers don't block
  - Single writer at a time

USAGE:
  store, err := sqlite.New("./data/ledger.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  repo := timeoff.NewRepository(store)
  svc := timeoff.NewService(repo, store, store, logger)

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - generic/store.go: RecordStore contract
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Tagged records: config, quota and snapshot rows side by side
	CREATE TABLE IF NOT EXISTS records (
		id TEXT PRIMARY KEY,
		tag TEXT NOT NULL,
		record_key TEXT NOT NULL,
		payload_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL,
		UNIQUE(tag, record_key)
	);

	CREATE INDEX IF NOT EXISTS idx_records_tag
		ON records(tag);

	-- Employees (master list)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		department TEXT,
		policy_code TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Leave requests, denormalized with requester identity
	CREATE TABLE IF NOT EXISTS leave_requests (
		id TEXT PRIMARY KEY,
		employee_id TEXT,
		employee_name TEXT,
		employee_email TEXT,
		leave_type TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		days TEXT NOT NULL,
		is_half_day BOOLEAN DEFAULT FALSE,
		status TEXT NOT NULL DEFAULT 'Pending',
		category TEXT,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_leave_requests_employee
		ON leave_requests(employee_id);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_status
		ON leave_requests(status);
	CREATE INDEX IF NOT EXISTS idx_leave_requests_start
		ON leave_requests(start_date);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"records", "employees", "leave_requests"} {
		if _, err := s.db.Exec("DELETE FROM " + table); err != nil {
			return err
		}
	}
	return nil
}

// Helper functions

func now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
