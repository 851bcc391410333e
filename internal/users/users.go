// Package users persists one activity record per bot user.
package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrStorage wraps every failure of the underlying database.
	ErrStorage = errors.New("user store unavailable")
	// ErrNotFound is returned by Get for an unknown identity.
	ErrNotFound = errors.New("user not found")
)

// Record tracks when a user first and last talked to the bot.
// DateStarted is set once; DateLastUsed never moves backwards.
type Record struct {
	ID           int64     `json:"id"`
	DateStarted  time.Time `json:"date_started"`
	DateLastUsed time.Time `json:"date_last_used"`
}

// Store is the user record persistence contract.
type Store interface {
	// Touch creates the record on first contact, otherwise bumps DateLastUsed.
	Touch(ctx context.Context, id int64) (Record, error)
	Get(ctx context.Context, id int64) (Record, error)
	// Migrate creates the users table if it does not exist.
	Migrate(ctx context.Context) error
	Ping(ctx context.Context) error
	Close() error
}

// Open picks a backend by DSN scheme: postgres:// and postgresql:// use pgx,
// sqlite://, file: or a bare path use SQLite.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return NewPostgres(ctx, PostgresConfig{DSN: dsn})
	case strings.HasPrefix(dsn, "sqlite://"):
		return NewSQLite(strings.TrimPrefix(dsn, "sqlite://"))
	case strings.HasPrefix(dsn, "file:"):
		return NewSQLite(dsn)
	case dsn == "":
		return nil, fmt.Errorf("empty database url")
	default:
		return NewSQLite(dsn)
	}
}

func storageErr(op string, id int64, err error) error {
	return fmt.Errorf("%s user %d: %w: %w", op, id, ErrStorage, err)
}

// now is truncated to microseconds so both backends round-trip it exactly.
func now(clock func() time.Time) time.Time {
	return clock().UTC().Truncate(time.Microsecond)
}
