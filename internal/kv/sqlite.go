package kv

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"strconv"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql
var schemaSQL string

// SQLite is a single-file durable Store.
//
// The database is configured with:
//   - WAL mode for concurrent reads during writes
//   - NORMAL synchronous mode (balance durability/performance)
//   - 5-second busy timeout for lock contention
//
// SQLite supports one writer at a time, so the pool is capped at a
// single connection; Incr and Append run their read-modify-write in a
// transaction to stay atomic with respect to concurrent callers.
type SQLite struct {
	db *sql.DB
}

var _ Store = (*SQLite)(nil)

// OpenSQLite creates or opens a database at the given path and applies
// pragmas and schema. Idempotent - safe to call on an existing file.
func OpenSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// Single writer to avoid SQLITE_BUSY errors
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &SQLite{db: db}, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
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

// Close closes the database connection.
func (s *SQLite) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLite) Set(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set %s: begin tx: %w", key, err)
	}
	defer tx.Rollback() // No-op if committed

	// Like the reference backend, Set replaces whatever held the key
	// before, a list included.
	if _, err := tx.ExecContext(ctx, `DELETE FROM kv_list WHERE key = ?`, key); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, value)
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set %s: commit: %w", key, err)
	}
	return nil
}

func (s *SQLite) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		isList, lerr := listKeyExists(ctx, s.db, key)
		if lerr != nil {
			return nil, false, fmt.Errorf("get %s: %w", key, lerr)
		}
		if isList {
			return nil, false, fmt.Errorf("get %s: %w", key, ErrWrongType)
		}
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *SQLite) Incr(ctx context.Context, key string) (int64, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("incr %s: begin tx: %w", key, err)
	}
	defer tx.Rollback()

	isList, err := listKeyExists(ctx, tx, key)
	if err != nil {
		return 0, fmt.Errorf("incr %s: %w", key, err)
	}
	if isList {
		return 0, fmt.Errorf("incr %s: %w", key, ErrWrongType)
	}

	var n int64
	var raw []byte
	err = tx.QueryRowContext(ctx, `SELECT value FROM kv WHERE key = ?`, key).Scan(&raw)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		n = 0
	case err != nil:
		return 0, fmt.Errorf("incr %s: read: %w", key, err)
	default:
		n, err = strconv.ParseInt(string(raw), 10, 64)
		if err != nil {
			return 0, fmt.Errorf("incr %s: %w", key, ErrWrongType)
		}
	}

	n++
	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv (key, value) VALUES (?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value
	`, key, []byte(strconv.FormatInt(n, 10)))
	if err != nil {
		return 0, fmt.Errorf("incr %s: write: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("incr %s: commit: %w", key, err)
	}
	return n, nil
}

func (s *SQLite) Append(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("append %s: begin tx: %w", key, err)
	}
	defer tx.Rollback()

	isScalar, err := scalarKeyExists(ctx, tx, key)
	if err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}
	if isScalar {
		return fmt.Errorf("append %s: %w", key, ErrWrongType)
	}

	// Next dense position for this key; MAX is stable under the
	// single-writer transaction.
	_, err = tx.ExecContext(ctx, `
		INSERT INTO kv_list (key, pos, value)
		SELECT ?, COALESCE(MAX(pos) + 1, 0), ? FROM kv_list WHERE key = ?
	`, key, value, key)
	if err != nil {
		return fmt.Errorf("append %s: %w", key, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("append %s: commit: %w", key, err)
	}
	return nil
}

func (s *SQLite) List(ctx context.Context, key string) ([][]byte, error) {
	isScalar, err := scalarKeyExists(ctx, s.db, key)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}
	if isScalar {
		return nil, fmt.Errorf("list %s: %w", key, ErrWrongType)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT value FROM kv_list WHERE key = ? ORDER BY pos ASC
	`, key)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", key, err)
	}
	defer rows.Close()

	out := [][]byte{}
	for rows.Next() {
		var value []byte
		if err := rows.Scan(&value); err != nil {
			return nil, fmt.Errorf("list %s: scan: %w", key, err)
		}
		out = append(out, value)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list %s: rows: %w", key, err)
	}

	return out, nil
}

func (s *SQLite) FlushAll(ctx context.Context) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("flush: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM kv`); err != nil {
		return fmt.Errorf("flush: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM kv_list`); err != nil {
		return fmt.Errorf("flush: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("flush: commit: %w", err)
	}
	return nil
}

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func listKeyExists(ctx context.Context, q querier, key string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM kv_list WHERE key = ? LIMIT 1`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func scalarKeyExists(ctx context.Context, q querier, key string) (bool, error) {
	var one int
	err := q.QueryRowContext(ctx, `SELECT 1 FROM kv WHERE key = ? LIMIT 1`, key).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}
