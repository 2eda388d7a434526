// Package database stores documents, translation memory and processing jobs
// in SQLite.
package database

import (
	"database/sql"
	"fmt"
	"time"

	"sbs-go/internal/database/migrations"
	"sbs-go/internal/sbs"
)

// SQLiteStore owns the connection pool and hands out the per-table stores.
type SQLiteStore struct {
	db   *sql.DB
	path string

	documents *DocumentStore
	memory    *TMStore
	jobs      *JobStore
}

var (
	_ sbs.DocumentStore = (*DocumentStore)(nil)
	_ sbs.TMStore       = (*TMStore)(nil)
	_ sbs.JobStore      = (*JobStore)(nil)
)

// NewSQLiteStore opens the database at path, migrating it to the latest
// schema. path can be a file path or ":memory:".
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating database: %w", err)
	}
	return newStore(db, path), nil
}

// NewSQLiteStoreFromDB wraps an existing, already migrated connection.
func NewSQLiteStoreFromDB(db *sql.DB) *SQLiteStore {
	return newStore(db, "")
}

func newStore(db *sql.DB, path string) *SQLiteStore {
	return &SQLiteStore{
		db:        db,
		path:      path,
		documents: &DocumentStore{db: db},
		memory:    &TMStore{db: db},
		jobs:      &JobStore{db: db},
	}
}

// OpenConnection opens a SQLite connection with foreign keys enforced.
// An in-memory database lives as long as its connection, so the pool is
// limited to one.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open(driverName, dsn(path))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		db.SetMaxOpenConns(1)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	return db, nil
}

func (s *SQLiteStore) Documents() *DocumentStore { return s.documents }
func (s *SQLiteStore) Memory() *TMStore          { return s.memory }
func (s *SQLiteStore) Jobs() *JobStore           { return s.jobs }

// DB exposes the connection for migration status checks.
func (s *SQLiteStore) DB() *sql.DB { return s.db }

// Path returns the database path, empty for wrapped connections.
func (s *SQLiteStore) Path() string { return s.path }

// Close closes the connection pool.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Times are stored as RFC 3339 text so they sort and read back in UTC.
func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("parsing stored time %q: %w", s, err)
	}
	return t.UTC(), nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	s := ns.String
	return &s
}
