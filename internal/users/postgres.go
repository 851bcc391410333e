package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS users (
	id BIGINT PRIMARY KEY,
	date_started TIMESTAMPTZ NOT NULL,
	date_last_used TIMESTAMPTZ NOT NULL
)`

const postgresTouch = `
INSERT INTO users (id, date_started, date_last_used)
VALUES ($1, $2, $2)
ON CONFLICT (id) DO UPDATE SET
	date_last_used = GREATEST(users.date_last_used, EXCLUDED.date_last_used)
RETURNING id, date_started, date_last_used`

type PostgresConfig struct {
	DSN      string
	MaxConns int32
	MinConns int32
}

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool  *pgxpool.Pool
	clock func() time.Time
}

func NewPostgres(ctx context.Context, cfg PostgresConfig) (*PostgresStore, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parsing database config: %w", err)
	}
	if cfg.MaxConns > 0 {
		poolCfg.MaxConns = cfg.MaxConns
	} else {
		poolCfg.MaxConns = 10
	}
	if cfg.MinConns > 0 {
		poolCfg.MinConns = cfg.MinConns
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w: %w", ErrStorage, err)
	}

	s := &PostgresStore{pool: pool, clock: time.Now}
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, postgresSchema); err != nil {
		return fmt.Errorf("create schema: %w: %w", ErrStorage, err)
	}
	return nil
}

func (s *PostgresStore) Touch(ctx context.Context, id int64) (Record, error) {
	ts := now(s.clock)

	var rec Record
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		return tx.QueryRow(ctx, postgresTouch, id, ts).
			Scan(&rec.ID, &rec.DateStarted, &rec.DateLastUsed)
	})
	if err != nil {
		return Record{}, storageErr("touch", id, err)
	}

	rec.DateStarted = rec.DateStarted.UTC()
	rec.DateLastUsed = rec.DateLastUsed.UTC()
	return rec, nil
}

func (s *PostgresStore) Get(ctx context.Context, id int64) (Record, error) {
	var rec Record
	err := s.pool.QueryRow(ctx,
		`SELECT id, date_started, date_last_used FROM users WHERE id = $1`, id).
		Scan(&rec.ID, &rec.DateStarted, &rec.DateLastUsed)
	if errors.Is(err, pgx.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	if err != nil {
		return Record{}, storageErr("get", id, err)
	}

	rec.DateStarted = rec.DateStarted.UTC()
	rec.DateLastUsed = rec.DateLastUsed.UTC()
	return rec, nil
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}
