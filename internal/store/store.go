package store

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/qplan/internal/schema"
)

// Store runs queries for one schema against a SQLite database.
type Store struct {
	db     *sqlx.DB
	schema *schema.Schema
}

// Open creates or opens a SQLite database at the given path and creates a
// table for every collection of s that does not have one yet. Use
// ":memory:" for a private in-memory database.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// This function is idempotent - safe to call multiple times.
func Open(path string, s *schema.Schema) (*Store, error) {
	if s == nil {
		return nil, fmt.Errorf("store requires a schema")
	}

	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time. A single connection also
	// keeps ":memory:" databases from splitting across connections.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	st := &Store{db: db, schema: s}
	if err := st.applySchema(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	slog.Debug("store opened", "path", path, "collections", len(s.Collections()))
	return st, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Schema returns the schema the store was opened with.
func (s *Store) Schema() *schema.Schema {
	return s.schema
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sqlx.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates missing collection tables. Existing tables are left
// untouched.
func (s *Store) applySchema(ctx context.Context) error {
	for _, c := range s.schema.Collections() {
		if c.Len() == 0 {
			return fmt.Errorf("collection %s has no properties", c.Name())
		}
		if _, err := s.db.ExecContext(ctx, CreateTableSQL(c)); err != nil {
			return fmt.Errorf("create table %s: %w", c.Name(), err)
		}
	}
	return nil
}

// CreateTableSQL renders the DDL for c. Identifiers were validated when the
// collection was declared.
func CreateTableSQL(c *schema.Collection) string {
	props := c.Properties()
	cols := make([]string, len(props))
	for i, p := range props {
		cols[i] = p.Name + " " + p.Type.Affinity()
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", c.Name(), strings.Join(cols, ", "))
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func (s *Store) verifyPragma(name, expected string) error {
	var value string
	if err := s.db.Get(&value, "PRAGMA "+name); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
