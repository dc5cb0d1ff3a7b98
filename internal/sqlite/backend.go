// Package sqlite implements the SQLite storage backend for almanac.
// Values are bound and decoded through a caller-supplied TypeMap, so custom
// column types such as LUNARDATE round-trip without global driver state.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"cloudeng.io/errors"
	"cloudeng.io/logging/ctxlog"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/almanac/pkg/types"
)

// dbFileName is the database file created inside Config.DataDir.
const dbFileName = "almanac.db"

// Backend implements the types.Store interface using SQLite.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB
	tables   map[string]*table
	typeMap  *TypeMap
	logger   *slog.Logger
}

// Option configures a Backend.
type Option func(*Backend)

// WithTypeMap sets the adapters and converters the backend applies.
func WithTypeMap(tm *TypeMap) Option {
	return func(b *Backend) {
		b.typeMap = tm
	}
}

// WithLogger sets the logger used for lifecycle events.
func WithLogger(l *slog.Logger) Option {
	return func(b *Backend) {
		b.logger = l
	}
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend(opts ...Option) *Backend {
	b := &Backend{
		tables:  make(map[string]*table),
		typeMap: NewTypeMap(),
		logger:  ctxlog.Logger(context.Background()),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// GetTable returns a Table interface for the specified table name.
// Returns ErrTableNotFound if the table name is not recognized.
// Returns ErrDetached if the backend is not attached.
func (b *Backend) GetTable(name string) (types.Table, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}

	t, ok := b.tables[name]
	if !ok {
		return nil, types.ErrTableNotFound
	}
	return t, nil
}

// Attach opens the database described by config and applies the schema.
// Creates DataDir if it does not exist. An existing database is reused.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}

	if err := config.Validate(); err != nil {
		return err
	}

	db, err := openDB(config)
	if err != nil {
		return err
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return fmt.Errorf("apply schema: %w", err)
	}

	b.db = db
	b.config = config
	b.attached = true
	b.tables[types.MembersTable] = newTable(b, types.MembersTable)

	b.logger.Debug("attached", "data_dir", config.DataDir, "parse_decl_types", config.ParseDeclTypes)
	return nil
}

func openDB(config types.Config) (*sql.DB, error) {
	if config.InMemory() {
		db, err := sql.Open("sqlite", ":memory:")
		if err != nil {
			return nil, err
		}
		// Every connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
		return db, nil
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, err
	}
	dsn := filepath.Join(dataDir, dbFileName) +
		"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	return db, nil
}

func applySchema(db *sql.DB) error {
	for _, stmt := range schemaDDL {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	for _, stmt := range indexDDL {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}

// Detach releases all resources held by the backend.
// After Detach, all operations return ErrDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	errs := &errors.M{}
	if b.config.InMemory() {
		// Nothing to flush; closing discards the database.
		b.logger.Debug("discarding in-memory database")
	} else if _, err := b.db.Exec("PRAGMA wal_checkpoint(TRUNCATE)"); err != nil {
		errs.Append(fmt.Errorf("checkpoint: %w", err))
	}
	errs.Append(b.db.Close())

	b.db = nil
	b.attached = false
	b.tables = make(map[string]*table)

	b.logger.Debug("detached", "data_dir", b.config.DataDir)
	return errs.Err()
}

// Exec runs a statement with args bound through the backend's adapters.
func (b *Backend) Exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	bound, err := b.typeMap.bind(args)
	if err != nil {
		return nil, err
	}
	ctxlog.Logger(ctx).Debug("exec", "query", query, "args", len(args))
	return b.db.ExecContext(ctx, query, bound...)
}

// Query runs a query with args bound through the backend's adapters and
// returns every row. When Config.ParseDeclTypes is set, columns are passed
// through the converter registered for their declared type.
func (b *Backend) Query(ctx context.Context, query string, args ...any) ([][]any, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrDetached
	}
	bound, err := b.typeMap.bind(args)
	if err != nil {
		return nil, err
	}
	ctxlog.Logger(ctx).Debug("query", "query", query, "args", len(args))
	rows, err := b.db.QueryContext(ctx, query, bound...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return b.typeMap.scanRows(rows, b.config.ParseDeclTypes)
}
