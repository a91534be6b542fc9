package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/roach88/tagvault/internal/tag"
)

//go:embed schema.sql
var schemaSQL string

// ErrNotInitialized is returned by operations that need the contract row
// before Init has seeded it.
var ErrNotInitialized = errors.New("store: ledger not initialized")

// ErrAlreadyInitialized is returned by Init when the contract row exists.
var ErrAlreadyInitialized = errors.New("store: ledger already initialized")

// Store is the authoritative home of tags, the participant index, usage
// counters, the id allocator, and the pause flag. Uses SQLite with WAL mode.
//
// All mutation goes through Update, which wraps the work in one transaction:
// either every write of an operation lands or none do.
type Store struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path.
// Applies required pragmas and the schema automatically; idempotent.
//
// Use ":memory:" for an ephemeral store in tests.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite only supports one writer at a time, so limit connections.
	// This also preserves the single-writer execution model the ledger
	// assumes: one invocation completes fully before the next begins.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to execute schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Init seeds the contract row with deployment parameters.
// Parameters are immutable afterwards; calling Init twice is an error.
func (s *Store) Init(ctx context.Context, params tag.Params) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO contract (id, admin, paused, next_tag_id, min_amount, max_duration, max_memo_bytes)
		VALUES (1, ?, 0, 1, ?, ?, ?)
		ON CONFLICT(id) DO NOTHING
	`, params.Admin, params.MinAmount, params.MaxDuration, params.MaxMemoBytes)
	if err != nil {
		return fmt.Errorf("init contract: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("init contract: %w", err)
	}
	if n == 0 {
		return ErrAlreadyInitialized
	}
	return nil
}

// Update runs fn inside a single transaction.
// If fn returns an error every pending write is rolled back; this is the
// all-or-nothing boundary every ledger operation relies on.
func (s *Store) Update(ctx context.Context, fn func(*Tx) error) error {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}

	tx := &Tx{tx: sqlTx, ctx: ctx}
	if err := fn(tx); err != nil {
		if rbErr := sqlTx.Rollback(); rbErr != nil {
			return fmt.Errorf("rollback after %w: %v", err, rbErr)
		}
		return err
	}

	if err := sqlTx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}
