package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
)

// StrategyStore implements storage.StrategyStore using PostgreSQL.
type StrategyStore struct {
	pool *Pool
}

// NewStrategyStore creates a new StrategyStore.
func NewStrategyStore(pool *Pool) *StrategyStore {
	return &StrategyStore{pool: pool}
}

// Compile-time interface check.
var _ storage.StrategyStore = (*StrategyStore)(nil)

const (
	strategyColumns = `run_id, seller_id, seller_size, performance_level, strategy, failed, generated_at`
	insertStrategy  = `INSERT INTO seller_strategies (` + strategyColumns + `) VALUES ($1, $2, $3, $4, $5, $6, $7)`
)

// execer is satisfied by both the pool and a transaction.
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func insertStrategyRecord(ctx context.Context, db execer, r *domain.StrategyRecord) error {
	if r == nil || r.RunID == "" || r.SellerID == "" {
		return storage.ErrInvalidInput
	}
	_, err := db.Exec(ctx, insertStrategy,
		r.RunID, r.SellerID, r.SellerSize, r.PerformanceLevel, r.Strategy, r.Failed, r.GeneratedAt,
	)
	if err != nil {
		return storeError("insert strategy "+r.SellerID, err)
	}
	return nil
}

// Insert adds a strategy. Returns ErrDuplicateKey if (run_id, seller_id) exists.
func (s *StrategyStore) Insert(ctx context.Context, r *domain.StrategyRecord) error {
	return insertStrategyRecord(ctx, s.pool, r)
}

// InsertBulk adds multiple strategies atomically. Fails entire batch on any duplicate.
func (s *StrategyStore) InsertBulk(ctx context.Context, records []*domain.StrategyRecord) (err error) {
	if len(records) == 0 {
		return nil
	}
	defer func(start time.Time) { observe("insert_strategies", start, err) }(time.Now())

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, r := range records {
		if err := insertStrategyRecord(ctx, tx, r); err != nil {
			return err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetBySeller retrieves a seller's strategy. Returns ErrNotFound if not exists.
func (s *StrategyStore) GetBySeller(ctx context.Context, runID, sellerID string) (*domain.StrategyRecord, error) {
	query := `SELECT ` + strategyColumns + ` FROM seller_strategies WHERE run_id = $1 AND seller_id = $2`

	r, err := scanStrategy(s.pool.QueryRow(ctx, query, runID, sellerID))
	if err != nil {
		return nil, storeError("get strategy", err)
	}
	return r, nil
}

// GetByRun retrieves all strategies of a run, ordered by seller_id ASC.
func (s *StrategyStore) GetByRun(ctx context.Context, runID string) ([]*domain.StrategyRecord, error) {
	query := `SELECT ` + strategyColumns + ` FROM seller_strategies WHERE run_id = $1 ORDER BY seller_id COLLATE "C" ASC`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get strategies by run: %w", err)
	}
	defer rows.Close()

	var result []*domain.StrategyRecord
	for rows.Next() {
		r, err := scanStrategy(rows)
		if err != nil {
			return nil, fmt.Errorf("scan strategy: %w", err)
		}
		result = append(result, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate strategies: %w", err)
	}
	return result, nil
}

// scanStrategy scans a single row into a StrategyRecord.
func scanStrategy(row pgx.Row) (*domain.StrategyRecord, error) {
	var r domain.StrategyRecord
	err := row.Scan(&r.RunID, &r.SellerID, &r.SellerSize, &r.PerformanceLevel, &r.Strategy, &r.Failed, &r.GeneratedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
