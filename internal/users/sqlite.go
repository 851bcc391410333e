package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY,
	date_started INTEGER NOT NULL,
	date_last_used INTEGER NOT NULL
);`

// Timestamps are stored as Unix microseconds.
const sqliteTouch = `
INSERT INTO users (id, date_started, date_last_used)
VALUES (?, ?, ?)
ON CONFLICT(id) DO UPDATE SET
	date_last_used = MAX(date_last_used, excluded.date_last_used)
RETURNING id, date_started, date_last_used`

// SQLiteStore implements Store on a pooled SQLite handle.
type SQLiteStore struct {
	db    *sql.DB
	clock func() time.Time
}

// NewSQLite opens (and creates, if needed) the database file and applies the schema.
// path may be a plain file name or a file: URI, either with query parameters.
func NewSQLite(path string) (*SQLiteStore, error) {
	file, _, _ := strings.Cut(strings.TrimPrefix(path, "file:"), "?")
	memory := file == ":memory:"
	if !memory {
		if err := os.MkdirAll(filepath.Dir(file), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", sqliteDSN(path))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if memory {
		// every connection to :memory: is a separate database
		db.SetMaxOpenConns(1)
	} else {
		db.SetMaxOpenConns(8)
		db.SetMaxIdleConns(2)
		db.SetConnMaxLifetime(5 * time.Minute)
	}

	s := &SQLiteStore{db: db, clock: time.Now}
	if err := s.Migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// sqliteDSN adds the connection pragmas, keeping any query the caller passed.
func sqliteDSN(path string) string {
	const pragmas = "_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)"
	if strings.Contains(path, "?") {
		return path + "&" + pragmas
	}
	return path + "?" + pragmas
}

func (s *SQLiteStore) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("create schema: %w: %w", ErrStorage, err)
	}
	return nil
}

func (s *SQLiteStore) Touch(ctx context.Context, id int64) (Record, error) {
	ts := now(s.clock)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Record{}, storageErr("begin touch", id, err)
	}
	defer tx.Rollback() //nolint:errcheck

	var started, lastUsed int64
	row := tx.QueryRowContext(ctx, sqliteTouch, id, ts.UnixMicro(), ts.UnixMicro())
	rec := Record{}
	if err := row.Scan(&rec.ID, &started, &lastUsed); err != nil {
		return Record{}, storageErr("touch", id, err)
	}
	if err := tx.Commit(); err != nil {
		return Record{}, storageErr("commit touch", id, err)
	}

	rec.DateStarted = time.UnixMicro(started).UTC()
	rec.DateLastUsed = time.UnixMicro(lastUsed).UTC()
	return rec, nil
}

func (s *SQLiteStore) Get(ctx context.Context, id int64) (Record, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, date_started, date_last_used FROM users WHERE id = ?`, id)

	var started, lastUsed int64
	rec := Record{}
	err := row.Scan(&rec.ID, &started, &lastUsed)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, storageErr("get", id, err)
	}

	rec.DateStarted = time.UnixMicro(started).UTC()
	rec.DateLastUsed = time.UnixMicro(lastUsed).UTC()
	return rec, nil
}

func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
