package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
)

// SellerStore implements storage.SellerStore using PostgreSQL.
type SellerStore struct {
	pool *Pool
}

// NewSellerStore creates a new SellerStore.
func NewSellerStore(pool *Pool) *SellerStore {
	return &SellerStore{pool: pool}
}

// Compile-time interface check.
var _ storage.SellerStore = (*SellerStore)(nil)

const sellerColumns = `
	run_id, seller_id, n_items, total_stock, logistic_type, total_value, avg_stock_per_item,
	n_categories, main_category, pct_main_category,
	pct_new, pct_used, pct_refurbished, avg_price_regular, median_price_regular,
	reputation, reputation_score, seller_size, diversification, quality,
	div_score, qual_score, log_score, total_score,
	performance_level, performance_segment, matched_rule`

// InsertBulk adds seller rows in one transaction. Fails entire batch on duplicate (run_id, seller_id).
func (s *SellerStore) InsertBulk(ctx context.Context, sellers []*domain.SellerPerformance) (err error) {
	if len(sellers) == 0 {
		return nil
	}
	defer func(start time.Time) { observe("insert_sellers", start, err) }(time.Now())

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO seller_performance (` + sellerColumns + `) VALUES (
		$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15,
		$16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26, $27)`

	for _, p := range sellers {
		if p == nil || p.RunID == "" || p.SellerID == "" {
			return storage.ErrInvalidInput
		}
		_, err := tx.Exec(ctx, query,
			p.RunID, p.SellerID, p.NItems, p.TotalStock, p.LogisticType, p.TotalValue, p.AvgStockPerItem,
			p.NCategories, p.MainCategory, p.PctMainCategory,
			p.PctNew, p.PctUsed, p.PctRefurbished, p.AvgPriceRegular, p.MedianPriceRegular,
			p.Reputation, p.ReputationScore, p.SellerSize, p.Diversification, p.Quality,
			p.DivScore, p.QualScore, p.LogScore, p.TotalScore,
			p.PerformanceLevel, p.PerformanceSegment, p.MatchedRule,
		)
		if err != nil {
			return storeError("insert seller "+p.SellerID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

// GetBySeller retrieves one seller of a run. Returns ErrNotFound if not exists.
func (s *SellerStore) GetBySeller(ctx context.Context, runID, sellerID string) (*domain.SellerPerformance, error) {
	query := `SELECT ` + sellerColumns + ` FROM seller_performance WHERE run_id = $1 AND seller_id = $2`

	p, err := scanSeller(s.pool.QueryRow(ctx, query, runID, sellerID))
	if err != nil {
		return nil, storeError("get seller", err)
	}
	return p, nil
}

// GetByRun retrieves all sellers of a run, ordered by seller_id ASC.
func (s *SellerStore) GetByRun(ctx context.Context, runID string) ([]*domain.SellerPerformance, error) {
	query := `SELECT ` + sellerColumns + ` FROM seller_performance WHERE run_id = $1 ORDER BY seller_id COLLATE "C" ASC`

	rows, err := s.pool.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("get sellers by run: %w", err)
	}
	defer rows.Close()

	return scanSellers(rows)
}

// GetBySegment retrieves the sellers of one (size, level) segment, ordered by seller_id ASC.
func (s *SellerStore) GetBySegment(ctx context.Context, runID, sellerSize, performanceLevel string) ([]*domain.SellerPerformance, error) {
	query := `SELECT ` + sellerColumns + ` FROM seller_performance
		WHERE run_id = $1 AND seller_size = $2 AND performance_level = $3
		ORDER BY seller_id COLLATE "C" ASC`

	rows, err := s.pool.Query(ctx, query, runID, sellerSize, performanceLevel)
	if err != nil {
		return nil, fmt.Errorf("get sellers by segment: %w", err)
	}
	defer rows.Close()

	return scanSellers(rows)
}

// scanSeller scans a single row into a SellerPerformance.
func scanSeller(row pgx.Row) (*domain.SellerPerformance, error) {
	var p domain.SellerPerformance
	err := row.Scan(
		&p.RunID, &p.SellerID, &p.NItems, &p.TotalStock, &p.LogisticType, &p.TotalValue, &p.AvgStockPerItem,
		&p.NCategories, &p.MainCategory, &p.PctMainCategory,
		&p.PctNew, &p.PctUsed, &p.PctRefurbished, &p.AvgPriceRegular, &p.MedianPriceRegular,
		&p.Reputation, &p.ReputationScore, &p.SellerSize, &p.Diversification, &p.Quality,
		&p.DivScore, &p.QualScore, &p.LogScore, &p.TotalScore,
		&p.PerformanceLevel, &p.PerformanceSegment, &p.MatchedRule,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// scanSellers scans multiple rows into a slice of SellerPerformance.
func scanSellers(rows pgx.Rows) ([]*domain.SellerPerformance, error) {
	var result []*domain.SellerPerformance
	for rows.Next() {
		p, err := scanSeller(rows)
		if err != nil {
			return nil, fmt.Errorf("scan seller: %w", err)
		}
		result = append(result, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sellers: %w", err)
	}
	return result, nil
}
