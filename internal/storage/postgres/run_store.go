package postgres

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
)

// RunStore implements storage.RunStore using PostgreSQL.
type RunStore struct {
	pool *Pool
}

// NewRunStore creates a new RunStore.
func NewRunStore(pool *Pool) *RunStore {
	return &RunStore{pool: pool}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

const runColumns = `
	run_id, source, items_loaded, dropped_missing_price, price_outliers, items_curated,
	sellers, sellers_scored, scoring_errors,
	price_p99, stock_p95, stock_max, size_q30, size_q60, size_q90, created_at`

// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(ctx context.Context, r *domain.Run) (err error) {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}
	defer func(start time.Time) { observe("insert_run", start, err) }(time.Now())

	query := `INSERT INTO segmentation_runs (` + runColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`

	_, err = s.pool.Exec(ctx, query,
		r.RunID, r.Source, r.ItemsLoaded, r.DroppedMissingPrice, r.PriceOutliers, r.ItemsCurated,
		r.Sellers, r.SellersScored, r.ScoringErrors,
		r.PriceP99, r.StockP95, r.StockMax, r.SizeQ30, r.SizeQ60, r.SizeQ90, r.CreatedAt,
	)
	if err != nil {
		return storeError("insert run", err)
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(ctx context.Context, runID string) (*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM segmentation_runs WHERE run_id = $1`
	return s.getOne(ctx, "get run by id", query, runID)
}

// GetLatest retrieves the most recently created run. Returns ErrNotFound if empty.
func (s *RunStore) GetLatest(ctx context.Context) (*domain.Run, error) {
	query := `SELECT ` + runColumns + ` FROM segmentation_runs ORDER BY created_at DESC, run_id COLLATE "C" ASC LIMIT 1`
	return s.getOne(ctx, "get latest run", query)
}

func (s *RunStore) getOne(ctx context.Context, op, query string, args ...any) (*domain.Run, error) {
	r, err := scanRun(s.pool.QueryRow(ctx, query, args...))
	if err != nil {
		return nil, storeError(op, err)
	}
	return r, nil
}

// scanRun scans a single row into a Run.
func scanRun(row pgx.Row) (*domain.Run, error) {
	var r domain.Run
	err := row.Scan(
		&r.RunID, &r.Source, &r.ItemsLoaded, &r.DroppedMissingPrice, &r.PriceOutliers, &r.ItemsCurated,
		&r.Sellers, &r.SellersScored, &r.ScoringErrors,
		&r.PriceP99, &r.StockP95, &r.StockMax, &r.SizeQ30, &r.SizeQ60, &r.SizeQ90, &r.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &r, nil
}
