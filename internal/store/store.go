// Package store is the typed persistence layer over Postgres (spec.md §4.1).
// All writes are upsert-idempotent; claim-and-delete on the snapshot
// tables is the collectors' serialisation point (spec.md §4.5/§4.6).
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/lib/pq" // Postgres driver
	"github.com/rs/zerolog"
)

// Store wraps the database connection, following the teacher's
// internal/database/db.go shape (New/Close/Conn, pool tuning) with the
// SQLite driver swapped for lib/pq.
type Store struct {
	db  *sql.DB
	log zerolog.Logger
}

// New opens a Postgres connection pool and verifies connectivity.
func New(dsn string, log zerolog.Logger) (*Store, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return &Store{db: db, log: log.With().Str("component", "store").Logger()}, nil
}

// Close closes the underlying connection pool.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB, for components (tests, migrations)
// that need direct access.
func (s *Store) DB() *sql.DB {
	return s.db
}

// WithTx runs fn inside a transaction, committing on success and rolling
// back on error or panic.
func (s *Store) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			tx.Rollback()
			panic(p)
		}
		if err != nil {
			tx.Rollback()
			return
		}
		err = tx.Commit()
	}()

	return fn(tx)
}
