// Package dbtest builds throwaway SQLite databases for tests.
package dbtest

import (
	"database/sql"
	"path/filepath"
	"testing"

	_ "modernc.org/sqlite"
)

// SalesSchema is a small customers/orders schema with a foreign key.
var SalesSchema = []string{
	`CREATE TABLE customers (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		region TEXT
	)`,
	`CREATE TABLE orders (
		id INTEGER PRIMARY KEY,
		customer_id INTEGER REFERENCES customers(id),
		amount REAL NOT NULL,
		placed_at TEXT
	)`,
	`INSERT INTO customers (id, name, region) VALUES
		(1, 'Acme', 'north'),
		(2, 'Globex', 'south'),
		(3, 'Initech', 'north')`,
	`INSERT INTO orders (id, customer_id, amount, placed_at) VALUES
		(1, 1, 120.5, '2024-01-03'),
		(2, 1, 80.0, '2024-02-11'),
		(3, 2, 300.0, '2024-02-20'),
		(4, 3, 45.25, '2024-03-01')`,
}

// NewSQLite creates a database file in t.TempDir, runs statements against it
// and returns its path.
func NewSQLite(t testing.TB, statements ...string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "research.db")
	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	defer db.Close()

	for _, stmt := range statements {
		if _, err := db.Exec(stmt); err != nil {
			t.Fatalf("exec %q: %v", stmt, err)
		}
	}
	// An empty database file is only materialized once something is written.
	if len(statements) == 0 {
		if _, err := db.Exec(`PRAGMA user_version = 1`); err != nil {
			t.Fatalf("init sqlite: %v", err)
		}
	}
	return path
}

// Sales returns the path of a database seeded with SalesSchema.
func Sales(t testing.TB) string {
	t.Helper()
	return NewSQLite(t, SalesSchema...)
}
