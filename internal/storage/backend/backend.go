// Package backend selects and opens the store implementations for a process.
package backend

import (
	"context"
	"fmt"
	"log"

	"seller-segment-lab/internal/storage"
	chstore "seller-segment-lab/internal/storage/clickhouse"
	"seller-segment-lab/internal/storage/memory"
	"seller-segment-lab/internal/storage/migrations"
	pgstore "seller-segment-lab/internal/storage/postgres"
)

// Stores holds every store used by the segmentation commands.
type Stores struct {
	RunStore       storage.RunStore
	CleanItemStore storage.CleanItemStore
	SellerStore    storage.SellerStore
	StrategyStore  storage.StrategyStore
}

// Options selects the backends. Empty DSNs fall back to memory stores:
// PostgreSQL holds runs, sellers and strategies; ClickHouse holds curated items.
type Options struct {
	PostgresDSN   string
	ClickhouseDSN string
	Logger        *log.Logger
}

// Open creates the stores, applying migrations to any configured database.
// The returned cleanup closes every opened connection.
func Open(ctx context.Context, opts Options) (*Stores, func(), error) {
	stores := &Stores{
		RunStore:       memory.NewRunStore(),
		CleanItemStore: memory.NewCleanItemStore(),
		SellerStore:    memory.NewSellerStore(),
		StrategyStore:  memory.NewStrategyStore(),
	}
	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	if opts.PostgresDSN != "" {
		pool, err := pgstore.NewPool(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, nil, fmt.Errorf("connect to postgres: %w", err)
		}
		closers = append(closers, pool.Close)

		if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("postgres migrations: %w", err)
		}
		stores.RunStore = pgstore.NewRunStore(pool)
		stores.SellerStore = pgstore.NewSellerStore(pool)
		stores.StrategyStore = pgstore.NewStrategyStore(pool)
		logf(opts.Logger, "Using PostgreSQL for runs, sellers and strategies")
	}

	if opts.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, opts.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { conn.Close() })
		stores.CleanItemStore = chstore.NewCleanItemStore(conn)
		logf(opts.Logger, "Using ClickHouse for curated items")
	}

	return stores, cleanup, nil
}

func logf(logger *log.Logger, format string, args ...any) {
	if logger != nil {
		logger.Printf(format, args...)
	}
}
