package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // SQLite3 driver (cgo)
	_ "modernc.org/sqlite"          // pure Go SQLite driver

	"searchable-gallery/internal/logging"
	"searchable-gallery/internal/metrics"
)

// Default timeout for database operations
const defaultTimeout = 5 * time.Second

// Supported driver names.
const (
	DriverCGO    = "sqlite3"
	DriverPureGo = "sqlite"
)

// Options tunes how the store connects.
type Options struct {
	// Driver selects the database/sql driver: DriverCGO (default) or DriverPureGo.
	Driver string

	// MaxOpenConns caps the connection pool. Zero means 25.
	MaxOpenConns int
}

// Database is the catalog store. It owns the connection pool and exposes
// read primitives for the query engine plus the ingestion write path.
type Database struct {
	db     *sql.DB
	dbPath string
	driver string
	mu     sync.RWMutex
	closed bool
}

// Querier is the read surface shared by *sql.DB and *sql.Tx.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// New opens (creating if necessary) the catalog database at dbPath.
// dbPath is the full path to the database FILE and its parent directory
// must already exist and be writable.
func New(ctx context.Context, dbPath string, opts *Options) (*Database, error) {
	if opts == nil {
		opts = &Options{}
	}
	driver := opts.Driver
	if driver == "" {
		driver = DriverCGO
	}

	dsn, err := dataSourceName(driver, dbPath)
	if err != nil {
		return nil, err
	}

	logging.Info("Database path: %s (driver: %s)", dbPath, driver)

	if err := diagnoseDatabasePermissions(dbPath); err != nil {
		logging.Warn("Database permission diagnostics: %v", err)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		metrics.DBConnectionErrors.Inc()
		return nil, &ConnectionError{Err: fmt.Errorf("failed to open database: %w", err)}
	}

	pingCtx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := db.PingContext(pingCtx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after ping failure: %v", closeErr)
		}
		metrics.DBConnectionErrors.Inc()
		return nil, &ConnectionError{Err: fmt.Errorf("failed to connect to database: %w", err)}
	}

	maxOpen := opts.MaxOpenConns
	if maxOpen <= 0 {
		maxOpen = 25
	}
	db.SetMaxOpenConns(maxOpen)
	db.SetMaxIdleConns(min(10, maxOpen))
	db.SetConnMaxLifetime(time.Hour)

	d := &Database{
		db:     db,
		dbPath: dbPath,
		driver: driver,
	}

	if err := d.initialize(ctx); err != nil {
		if closeErr := db.Close(); closeErr != nil {
			logging.Error("failed to close database after initialization failure: %v", closeErr)
		}
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	logging.Info("Database initialized successfully at %s", dbPath)
	return d, nil
}

// dataSourceName builds the DSN for the chosen driver. Both enable WAL,
// a busy timeout and foreign key enforcement (needed for cascading deletes).
func dataSourceName(driver, dbPath string) (string, error) {
	switch driver {
	case DriverCGO:
		return fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=5000&_foreign_keys=on", dbPath), nil
	case DriverPureGo:
		return fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", dbPath), nil
	default:
		return "", fmt.Errorf("unsupported database driver %q", driver)
	}
}

func (d *Database) initialize(ctx context.Context) error {
	schema := `
	-- Catalog entries. id is a 16-byte opaque identifier.
	CREATE TABLE IF NOT EXISTS items (
		id BLOB PRIMARY KEY CHECK (length(id) = 16),
		full_path TEXT NOT NULL,
		description TEXT,
		short_title TEXT,
		text_contents TEXT,
		thumbnail_ref TEXT,
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_items_created ON items(created_at DESC, id ASC);
	CREATE INDEX IF NOT EXISTS idx_items_full_path ON items(full_path);

	-- Tag names are unique and case-sensitive.
	CREATE TABLE IF NOT EXISTS tags (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL UNIQUE COLLATE BINARY CHECK (name <> ''),
		created_at INTEGER NOT NULL,
		updated_at INTEGER NOT NULL
	);

	-- Item-tag associations
	CREATE TABLE IF NOT EXISTS item_tags (
		item_id BLOB NOT NULL,
		tag_id INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		PRIMARY KEY (item_id, tag_id),
		FOREIGN KEY (item_id) REFERENCES items(id) ON DELETE CASCADE,
		FOREIGN KEY (tag_id) REFERENCES tags(id) ON DELETE CASCADE
	) WITHOUT ROWID;

	CREATE INDEX IF NOT EXISTS idx_item_tags_tag ON item_tags(tag_id, item_id);

	-- Metadata table
	CREATE TABLE IF NOT EXISTS metadata (
		key TEXT PRIMARY KEY,
		value TEXT
	);
	`

	if _, err := d.db.ExecContext(ctx, schema); err != nil {
		return err
	}

	return d.runMigrations(ctx)
}

// runMigrations applies database schema migrations
func (d *Database) runMigrations(ctx context.Context) error {
	// Catalogs written by early labeler builds predate OCR text and thumbnails.
	for _, col := range []struct{ table, name, ddl string }{
		{"items", "text_contents", "ALTER TABLE items ADD COLUMN text_contents TEXT"},
		{"items", "thumbnail_ref", "ALTER TABLE items ADD COLUMN thumbnail_ref TEXT"},
	} {
		var exists bool
		err := d.db.QueryRowContext(ctx, `
			SELECT COUNT(*) > 0
			FROM pragma_table_info(?)
			WHERE name = ?
		`, col.table, col.name).Scan(&exists)
		if err != nil {
			return fmt.Errorf("failed to check for %s.%s column: %w", col.table, col.name, err)
		}
		if exists {
			continue
		}

		logging.Info("Migrating database: adding %s column to %s table", col.name, col.table)
		if _, err := d.db.ExecContext(ctx, col.ddl); err != nil {
			return fmt.Errorf("failed to add %s column: %w", col.name, err)
		}
	}

	return nil
}

// Path returns the database file path.
func (d *Database) Path() string {
	return d.dbPath
}

// Driver returns the database/sql driver name in use.
func (d *Database) Driver() string {
	return d.driver
}

// Close closes the database connection. Subsequent calls fail with a
// ConnectionError.
func (d *Database) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed || d.db == nil {
		return nil
	}
	d.closed = true
	return d.db.Close()
}

// conn returns the pool or a ConnectionError. Callers hold d.mu.
func (d *Database) conn() (*sql.DB, error) {
	if d == nil || d.db == nil {
		return nil, &ConnectionError{Err: ErrNotOpen}
	}
	if d.closed {
		return nil, &ConnectionError{Err: ErrClosed}
	}
	return d.db, nil
}

// Ping checks that a usable connection exists.
func (d *Database) Ping(ctx context.Context) error {
	if d == nil {
		return &ConnectionError{Err: ErrNotOpen}
	}
	d.mu.RLock()
	defer d.mu.RUnlock()

	db, err := d.conn()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		metrics.DBConnectionErrors.Inc()
		return &ConnectionError{Err: err}
	}
	return nil
}

// Query runs a parameterized read query. op labels the query in metrics
// and errors. The caller must close the returned rows.
func (d *Database) Query(ctx context.Context, op, query string, args ...any) (*sql.Rows, error) {
	done := observeQuery(op)

	if d == nil {
		err := &ConnectionError{Err: ErrNotOpen}
		done(err)
		return nil, err
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	db, err := d.conn()
	if err != nil {
		done(err)
		return nil, err
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		err = classify(op, err)
		done(err)
		return nil, err
	}
	done(nil)
	return rows, nil
}

// View runs fn inside a single transaction so that every statement fn
// issues observes the same snapshot. The transaction is always rolled back;
// View is for reads only.
func (d *Database) View(ctx context.Context, op string, fn func(q Querier) error) (err error) {
	done := observeQuery(op)
	defer func() { done(err) }()

	if d == nil {
		return &ConnectionError{Err: ErrNotOpen}
	}

	d.mu.RLock()
	defer d.mu.RUnlock()

	db, err := d.conn()
	if err != nil {
		return err
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify(op, err)
	}
	defer func() {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			logging.Debug("rollback of read transaction %s failed: %v", op, rbErr)
		}
	}()

	if err := fn(tx); err != nil {
		return classify(op, err)
	}
	return nil
}

// update runs fn inside a write transaction, committing on success.
func (d *Database) update(ctx context.Context, op string, fn func(tx *sql.Tx) error) (err error) {
	done := observeQuery(op)
	defer func() { done(err) }()

	if d == nil {
		return &ConnectionError{Err: ErrNotOpen}
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	db, err := d.conn()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return classify(op, err)
	}

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil {
			return errors.Join(classify(op, err), fmt.Errorf("rollback also failed: %w", rbErr))
		}
		return classify(op, err)
	}

	if err := tx.Commit(); err != nil {
		return classify(op, err)
	}
	return nil
}

// classify wraps a raw driver error as a QueryError unless it already
// carries a store error type.
func classify(op string, err error) error {
	var connErr *ConnectionError
	var queryErr *QueryError
	switch {
	case err == nil:
		return nil
	case errors.As(err, &connErr), errors.As(err, &queryErr), errors.Is(err, ErrNotFound):
		return err
	case errors.Is(err, sql.ErrConnDone):
		metrics.DBConnectionErrors.Inc()
		return &ConnectionError{Err: err}
	default:
		return &QueryError{Op: op, Err: err}
	}
}

// observeQuery starts timing op and returns a func that records the outcome.
func observeQuery(op string) func(err error) {
	start := time.Now()
	return func(err error) {
		recordQuery(op, start, err)
	}
}

// recordQuery records database query metrics
func recordQuery(operation string, start time.Time, err error) {
	duration := time.Since(start).Seconds()
	status := "success"
	if err != nil {
		status = "error"
	}
	metrics.DBQueryTotal.WithLabelValues(operation, status).Inc()
	metrics.DBQueryDuration.WithLabelValues(operation).Observe(duration)
}

// UpdateDBMetrics updates database connection metrics
func (d *Database) UpdateDBMetrics() {
	d.mu.RLock()
	defer d.mu.RUnlock()
	db, err := d.conn()
	if err != nil {
		return
	}
	stats := db.Stats()
	metrics.DBConnectionsOpen.Set(float64(stats.OpenConnections))
}

// diagnoseDatabasePermissions checks database directory and file permissions
func diagnoseDatabasePermissions(dbPath string) error {
	dir := filepath.Dir(dbPath)

	dirInfo, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("cannot stat database directory: %w", err)
	}

	logging.Debug("Database directory: %s (mode: %v)", dir, dirInfo.Mode())

	testFile := filepath.Join(dir, ".perm-test")
	if err := os.WriteFile(testFile, []byte("test"), 0o600); err != nil {
		return fmt.Errorf("database directory not writable: %w", err)
	}
	_ = os.Remove(testFile)
	logging.Debug("Database directory is writable")

	if dbInfo, err := os.Stat(dbPath); err == nil {
		logging.Debug("Database file exists: %s (mode: %v, size: %d bytes)", dbPath, dbInfo.Mode(), dbInfo.Size())
		if dbInfo.Mode().Perm()&0o200 == 0 {
			logging.Warn("Database file is read-only! Mode: %v", dbInfo.Mode())
		}
	}

	for _, suffix := range []string{"-wal", "-shm"} {
		p := dbPath + suffix
		info, err := os.Stat(p)
		if err != nil {
			continue
		}
		logging.Debug("%s file exists: %s (mode: %v, size: %d bytes)", suffix[1:], p, info.Mode(), info.Size())
		if info.Mode().Perm()&0o200 == 0 {
			logging.Warn("%s file is read-only! Mode: %v - this will cause write failures", suffix[1:], info.Mode())
			if chmodErr := os.Chmod(p, 0o600); chmodErr != nil {
				logging.Error("Failed to fix %s file permissions: %v", suffix[1:], chmodErr)
			} else {
				logging.Info("Fixed %s file permissions", suffix[1:])
			}
		}
	}

	return nil
}
