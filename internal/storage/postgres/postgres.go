// Package postgres implements the run, seller and strategy stores on PostgreSQL.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"seller-segment-lab/internal/observability"
	"seller-segment-lab/internal/storage"
)

// Pool is the connection pool shared by the run, seller and strategy stores.
type Pool struct {
	*pgxpool.Pool
}

// applicationName tags the sessions opened by the stores in pg_stat_activity.
const applicationName = "seller-segment-lab"

// NewPool connects to the DSN and pings the server before returning.
func NewPool(ctx context.Context, dsn string) (*Pool, error) {
	config, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse postgres dsn: %w", err)
	}
	if _, ok := config.ConnConfig.RuntimeParams["application_name"]; !ok {
		config.ConnConfig.RuntimeParams["application_name"] = applicationName
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &Pool{Pool: pool}, nil
}

const pgErrUniqueViolation = "23505"

// storeError maps driver errors onto the storage sentinels, prefixed with op.
// A unique violation becomes ErrDuplicateKey and an empty result ErrNotFound.
func storeError(op string, err error) error {
	var pgErr *pgconn.PgError
	switch {
	case errors.As(err, &pgErr) && pgErr.Code == pgErrUniqueViolation:
		return fmt.Errorf("%s: %w", op, storage.ErrDuplicateKey)
	case errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

// observe records the duration and outcome of one store write.
func observe(operation string, start time.Time, err error) {
	observability.RecordDBQuery("postgres", operation, time.Since(start).Seconds(), err)
}
