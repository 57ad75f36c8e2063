package storage

import (
	"context"

	"seller-segment-lab/internal/domain"
)

// RunStore provides access to segmentation run summaries.
type RunStore interface {
	// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
	Insert(ctx context.Context, r *domain.Run) error

	// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
	GetByID(ctx context.Context, runID string) (*domain.Run, error)

	// GetLatest retrieves the most recently created run. Returns ErrNotFound if empty.
	GetLatest(ctx context.Context) (*domain.Run, error)
}

// CleanItemStore provides access to curated item rows.
type CleanItemStore interface {
	// InsertBulk adds curated items for a run. Fails entire batch on duplicate (run_id, line).
	InsertBulk(ctx context.Context, runID string, items []*domain.CleanItem) error

	// GetByRun retrieves all curated items of a run, ordered by line ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.CleanItem, error)

	// GetBySeller retrieves one seller's curated items of a run, ordered by line ASC.
	GetBySeller(ctx context.Context, runID, sellerID string) ([]*domain.CleanItem, error)
}

// SellerStore provides access to scored seller rows.
type SellerStore interface {
	// InsertBulk adds seller rows. Fails entire batch on duplicate (run_id, seller_id).
	InsertBulk(ctx context.Context, sellers []*domain.SellerPerformance) error

	// GetBySeller retrieves one seller of a run. Returns ErrNotFound if not exists.
	GetBySeller(ctx context.Context, runID, sellerID string) (*domain.SellerPerformance, error)

	// GetByRun retrieves all sellers of a run, ordered by seller_id ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.SellerPerformance, error)

	// GetBySegment retrieves the sellers of one (size, level) segment, ordered by seller_id ASC.
	GetBySegment(ctx context.Context, runID, sellerSize, performanceLevel string) ([]*domain.SellerPerformance, error)
}

// StrategyStore provides access to generated strategies.
type StrategyStore interface {
	// Insert adds a strategy. Returns ErrDuplicateKey if (run_id, seller_id) exists.
	Insert(ctx context.Context, r *domain.StrategyRecord) error

	// InsertBulk adds multiple strategies atomically. Fails entire batch on any duplicate.
	InsertBulk(ctx context.Context, records []*domain.StrategyRecord) error

	// GetBySeller retrieves a seller's strategy. Returns ErrNotFound if not exists.
	GetBySeller(ctx context.Context, runID, sellerID string) (*domain.StrategyRecord, error)

	// GetByRun retrieves all strategies of a run, ordered by seller_id ASC.
	GetByRun(ctx context.Context, runID string) ([]*domain.StrategyRecord, error)
}
