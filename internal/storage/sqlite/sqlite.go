// Package sqlite provides a SQLite-backed implementation of the storage.Store interface.
package sqlite

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	sqlitedrv "modernc.org/sqlite" // Pure Go SQLite driver (no CGO)
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/mmynk/splitledger/internal/config"
	"github.com/mmynk/splitledger/internal/storage"
)

func init() {
	sqlx.BindDriver("sqlite", sqlx.QUESTION)
}

// Ensure Store implements storage.Store
var _ storage.Store = (*Store)(nil)

// Store implements storage.Store using SQLite.
type Store struct {
	*queries
	db *sqlx.DB
}

// queries runs statements against either the pool or an open transaction.
type queries struct {
	ext sqlx.ExtContext
	db  *sqlx.DB // nil inside a transaction
}

// Open creates the parent directory and opens the database without
// migrating it.
func Open(cfg config.DBConfig) (*sqlx.DB, error) {
	dir := filepath.Dir(cfg.Path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	db, err := sqlx.Open("sqlite", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// New opens the database and applies pending migrations.
func New(cfg config.DBConfig) (*Store, error) {
	db, err := Open(cfg)
	if err != nil {
		return nil, err
	}

	mg, err := NewMigrator(db.DB)
	if err != nil {
		db.Close()
		return nil, err
	}
	// The migrator shares db, so it is not closed here.
	if err := mg.Up(); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{queries: &queries{ext: db, db: db}, db: db}, nil
}

// InTx runs fn inside one database transaction.
func (s *Store) InTx(ctx context.Context, fn func(storage.Repository) error) error {
	return s.queries.atomic(ctx, func(q *queries) error { return fn(q) })
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// atomic runs fn in a transaction, or directly when q already is one.
func (q *queries) atomic(ctx context.Context, fn func(*queries) error) error {
	if q.db == nil {
		return fn(q)
	}

	tx, err := q.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{ext: tx}); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var se *sqlitedrv.Error
	if !errors.As(err, &se) {
		return false
	}
	return se.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE || se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
}

func rowsAffected(res interface{ RowsAffected() (int64, error) }) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return n, nil
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
