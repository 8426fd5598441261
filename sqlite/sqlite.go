// Package sqlite provides SQLite-based storage implementations for
// mangaingest services.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ncruces/go-sqlite3"
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// DB represents a SQLite database connection.
type DB struct {
	db   *sql.DB
	path string
}

// NewDB creates a new DB instance with the given path.
// Use ":memory:" for an in-memory database.
func NewDB(path string) *DB {
	return &DB{path: path}
}

// Open opens the database connection and creates the schema if needed.
func (db *DB) Open() error {
	conn, err := sql.Open("sqlite3", db.path)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit to one connection.
	conn.SetMaxOpenConns(1)

	if err := conn.Ping(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	if _, err := conn.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set busy timeout: %w", err)
	}

	// WAL mode is not supported for in-memory databases.
	if db.path != ":memory:" {
		if _, err := conn.Exec("PRAGMA journal_mode = WAL"); err != nil {
			conn.Close()
			return fmt.Errorf("failed to enable WAL mode: %w", err)
		}
	}

	if _, err := conn.Exec("PRAGMA foreign_keys = ON"); err != nil {
		conn.Close()
		return fmt.Errorf("failed to enable foreign keys: %w", err)
	}

	db.db = conn

	if err := db.createSchema(); err != nil {
		conn.Close()
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	if db.db != nil {
		return db.db.Close()
	}
	return nil
}

// QueryRowContext executes a query that returns a single row.
func (db *DB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return db.db.QueryRowContext(ctx, query, args...)
}

// QueryContext executes a query that returns rows.
func (db *DB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.db.QueryContext(ctx, query, args...)
}

// ExecContext executes a statement that doesn't return rows.
func (db *DB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.db.ExecContext(ctx, query, args...)
}

// BeginTx starts a transaction.
func (db *DB) BeginTx(ctx context.Context) (*sql.Tx, error) {
	return db.db.BeginTx(ctx, nil)
}

// createSchema creates the database tables if they don't exist.
func (db *DB) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS series (
			id TEXT PRIMARY KEY,
			slug TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			alt_titles TEXT NOT NULL DEFAULT '[]',
			description TEXT NOT NULL DEFAULT '',
			cover_url TEXT NOT NULL,
			thumbnail_url TEXT NOT NULL DEFAULT '',
			authors TEXT NOT NULL DEFAULT '[]',
			artists TEXT NOT NULL DEFAULT '[]',
			type TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL DEFAULT '',
			genres TEXT NOT NULL DEFAULT '[]',
			platform TEXT NOT NULL,
			release_date TEXT NOT NULL,
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE TABLE IF NOT EXISTS chapters (
			id TEXT PRIMARY KEY,
			series_id TEXT NOT NULL REFERENCES series(id) ON DELETE CASCADE,
			number REAL NOT NULL,
			title TEXT NOT NULL DEFAULT '',
			slug TEXT NOT NULL DEFAULT '',
			release_date TEXT NOT NULL,
			created_at TEXT NOT NULL,
			UNIQUE (series_id, number)
		);

		CREATE TABLE IF NOT EXISTS pages (
			chapter_id TEXT NOT NULL REFERENCES chapters(id) ON DELETE CASCADE,
			number INTEGER NOT NULL,
			image_url TEXT NOT NULL,
			PRIMARY KEY (chapter_id, number)
		);

		CREATE TABLE IF NOT EXISTS similarities (
			source_id TEXT NOT NULL REFERENCES series(id) ON DELETE CASCADE,
			target_id TEXT NOT NULL REFERENCES series(id) ON DELETE CASCADE,
			score REAL NOT NULL CHECK (score >= 0 AND score <= 1),
			updated_at TEXT NOT NULL,
			PRIMARY KEY (source_id, target_id),
			CHECK (source_id <> target_id)
		);

		CREATE INDEX IF NOT EXISTS idx_chapters_series_id ON chapters(series_id);
		CREATE INDEX IF NOT EXISTS idx_similarities_source_score ON similarities(source_id, score DESC);
	`

	_, err := db.db.Exec(schema)
	return err
}

// isUniqueViolation reports whether err is a UNIQUE or PRIMARY KEY
// constraint failure.
func isUniqueViolation(err error) bool {
	var serr *sqlite3.Error
	if errors.As(err, &serr) {
		switch serr.ExtendedCode() {
		case sqlite3.CONSTRAINT_UNIQUE, sqlite3.CONSTRAINT_PRIMARYKEY:
			return true
		}
	}
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
