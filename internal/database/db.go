// Package database opens read-only connections to the database under study
// and runs the queries the research pipeline generates.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/ConceptCodes/deep-sql-research/internal/model"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Dialect identifies the SQL engine behind a locator.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

const (
	// DefaultQueryTimeout bounds a single query.
	DefaultQueryTimeout = 30 * time.Second

	// DefaultMaxOpenConns caps the pool shared by parallel search branches.
	DefaultMaxOpenConns = 4

	// DefaultMaxRows caps the rows kept from one query.
	DefaultMaxRows = 1000
)

var (
	// ErrNotConnected is returned when the handle was never opened or is closed.
	ErrNotConnected = errors.New("database not connected")

	// ErrConnection marks failures to open or reach the database.
	ErrConnection = errors.New("database connection failed")
)

// ConnectionError reports a failure to open a locator.
type ConnectionError struct {
	Locator string
	Err     error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("connect %s: %v", e.Locator, e.Err)
}

func (e *ConnectionError) Unwrap() []error { return []error{ErrConnection, e.Err} }

// QueryError reports a failed query. It is recoverable: the search loop
// feeds Message back to query generation.
type QueryError struct {
	Query string
	Err   error
}

func (e *QueryError) Error() string { return "query failed: " + e.Err.Error() }

func (e *QueryError) Unwrap() error { return e.Err }

// Observer receives one event per executed query.
type Observer interface {
	ObserveQuery(outcome string, elapsed time.Duration)
}

type nopObserver struct{}

func (nopObserver) ObserveQuery(string, time.Duration) {}

// Config describes how to reach the database.
type Config struct {
	Locator      string
	QueryTimeout time.Duration
	MaxOpenConns int
	// MaxRows caps rows read per query; zero means DefaultMaxRows.
	MaxRows      int
	Observer     Observer
}

// DB is a read-only handle safe for concurrent use by parallel search branches.
type DB struct {
	db           *sql.DB
	dialect      Dialect
	locator      string
	queryTimeout time.Duration
	maxRows      int
	observer     Observer

	mu     sync.RWMutex
	closed bool
}

// ParseLocator returns the dialect and driver DSN for a locator. Locators
// starting with postgres:// or postgresql:// select PostgreSQL; anything else
// is a SQLite file path, optionally prefixed with sqlite://.
func ParseLocator(locator string) (Dialect, string, error) {
	locator = strings.TrimSpace(locator)
	if locator == "" {
		return "", "", errors.New("empty database locator")
	}

	if strings.HasPrefix(locator, "postgres://") || strings.HasPrefix(locator, "postgresql://") {
		sep := "?"
		if strings.Contains(locator, "?") {
			sep = "&"
		}
		return Postgres, locator + sep + "default_transaction_read_only=on", nil
	}

	path := strings.TrimPrefix(locator, "sqlite://")
	return SQLite, "file:" + path + "?mode=ro&_pragma=busy_timeout(5000)", nil
}

// Open connects to the database in read-only mode and verifies it is reachable.
func Open(ctx context.Context, cfg Config) (*DB, error) {
	dialect, dsn, err := ParseLocator(cfg.Locator)
	if err != nil {
		return nil, &ConnectionError{Locator: cfg.Locator, Err: err}
	}

	if dialect == SQLite {
		path := strings.TrimPrefix(strings.TrimSpace(cfg.Locator), "sqlite://")
		if _, err := os.Stat(path); err != nil {
			return nil, &ConnectionError{Locator: cfg.Locator, Err: err}
		}
	}

	sqlDB, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, &ConnectionError{Locator: cfg.Locator, Err: err}
	}

	maxConns := cfg.MaxOpenConns
	if maxConns <= 0 {
		maxConns = DefaultMaxOpenConns
	}
	sqlDB.SetMaxOpenConns(maxConns)
	sqlDB.SetMaxIdleConns(maxConns)

	if err := sqlDB.PingContext(ctx); err != nil {
		_ = sqlDB.Close()
		return nil, &ConnectionError{Locator: cfg.Locator, Err: err}
	}

	timeout := cfg.QueryTimeout
	if timeout <= 0 {
		timeout = DefaultQueryTimeout
	}
	maxRows := cfg.MaxRows
	if maxRows <= 0 {
		maxRows = DefaultMaxRows
	}
	var obs Observer = nopObserver{}
	if cfg.Observer != nil {
		obs = cfg.Observer
	}

	return &DB{
		db:           sqlDB,
		dialect:      dialect,
		locator:      cfg.Locator,
		queryTimeout: timeout,
		maxRows:      maxRows,
		observer:     obs,
	}, nil
}

// Dialect returns the SQL dialect of the connection.
func (d *DB) Dialect() Dialect { return d.dialect }

// Close releases the connection pool. It is safe to call more than once.
func (d *DB) Close() error {
	if d == nil {
		return nil
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.db == nil {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

func (d *DB) handle() (*sql.DB, error) {
	if d == nil {
		return nil, ErrNotConnected
	}
	d.mu.RLock()
	defer d.mu.RUnlock()
	if d.closed || d.db == nil {
		return nil, ErrNotConnected
	}
	return d.db, nil
}

// Execute runs query with positional params and returns at most MaxRows
// rows; the rest of the result set is not read. Failures other than ErrNotConnected are wrapped in *QueryError.
func (d *DB) Execute(ctx context.Context, query string, params []any) ([]model.Row, error) {
	db, err := d.handle()
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, d.queryTimeout)
	defer cancel()

	start := time.Now()
	rows, err := d.query(ctx, db, query, params)
	outcome := "ok"
	if err != nil {
		outcome = "error"
		if errors.Is(err, context.DeadlineExceeded) {
			err = fmt.Errorf("query exceeded %s timeout: %w", d.queryTimeout, err)
		}
		err = &QueryError{Query: query, Err: err}
	}
	d.observer.ObserveQuery(outcome, time.Since(start))
	return rows, err
}

func (d *DB) query(ctx context.Context, db *sql.DB, query string, params []any) ([]model.Row, error) {
	rows, err := db.QueryContext(ctx, query, params...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}

	result := []model.Row{}
	for len(result) < d.maxRows && rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		row := make(model.Row, len(cols))
		for i, col := range cols {
			row[col] = normalize(values[i])
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// normalize converts driver values into JSON-friendly ones.
func normalize(v any) any {
	switch x := v.(type) {
	case []byte:
		return string(x)
	case time.Time:
		return x.UTC().Format(time.RFC3339)
	default:
		return x
	}
}
