package clickhouse

import (
	"context"
	"fmt"
	"time"

	"github.com/ClickHouse/clickhouse-go/v2/lib/driver"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
)

// CleanItemStore implements storage.CleanItemStore using ClickHouse.
type CleanItemStore struct {
	conn *Conn
}

// NewCleanItemStore creates a new CleanItemStore.
func NewCleanItemStore(conn *Conn) *CleanItemStore {
	return &CleanItemStore{conn: conn}
}

// Compile-time interface check.
var _ storage.CleanItemStore = (*CleanItemStore)(nil)

const cleanItemColumns = `
	line, seller_id, title, price, stock, stock_norm,
	category_id, condition, logistic_type, reputation`

// InsertBulk adds curated items for a run. Fails entire batch on duplicate (run_id, line).
// MergeTree does not enforce keys, so stored lines are checked before the batch is sent.
func (s *CleanItemStore) InsertBulk(ctx context.Context, runID string, items []*domain.CleanItem) (err error) {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(items) == 0 {
		return nil
	}

	defer func(start time.Time) { observe("insert_clean_items", start, err) }(time.Now())

	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if it == nil || it.Line < 0 {
			return storage.ErrInvalidInput
		}
		if _, exists := seen[it.Line]; exists {
			return storage.ErrDuplicateKey
		}
		seen[it.Line] = struct{}{}
	}

	stored, err := s.storedLines(ctx, runID)
	if err != nil {
		return fmt.Errorf("check exists: %w", err)
	}
	for line := range seen {
		if _, exists := stored[line]; exists {
			return storage.ErrDuplicateKey
		}
	}

	batch, err := s.conn.PrepareBatch(ctx, `INSERT INTO clean_items (run_id, `+cleanItemColumns+`)`)
	if err != nil {
		return fmt.Errorf("prepare batch: %w", err)
	}

	for _, it := range items {
		err = batch.Append(
			runID, uint32(it.Line), it.SellerID, it.Title, it.Price, it.Stock, it.StockNorm,
			it.CategoryID, it.Condition, it.LogisticType, it.Reputation,
		)
		if err != nil {
			return fmt.Errorf("append to batch: %w", err)
		}
	}

	if err := batch.Send(); err != nil {
		return fmt.Errorf("send batch: %w", err)
	}
	return nil
}

// GetByRun retrieves all curated items of a run, ordered by line ASC.
func (s *CleanItemStore) GetByRun(ctx context.Context, runID string) ([]*domain.CleanItem, error) {
	query := `SELECT ` + cleanItemColumns + ` FROM clean_items WHERE run_id = ? ORDER BY line ASC`

	rows, err := s.conn.Query(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("query by run: %w", err)
	}
	defer rows.Close()

	return scanCleanItems(rows)
}

// GetBySeller retrieves one seller's curated items of a run, ordered by line ASC.
func (s *CleanItemStore) GetBySeller(ctx context.Context, runID, sellerID string) ([]*domain.CleanItem, error) {
	query := `SELECT ` + cleanItemColumns + ` FROM clean_items
		WHERE run_id = ? AND seller_id = ? ORDER BY line ASC`

	rows, err := s.conn.Query(ctx, query, runID, sellerID)
	if err != nil {
		return nil, fmt.Errorf("query by seller: %w", err)
	}
	defer rows.Close()

	return scanCleanItems(rows)
}

func (s *CleanItemStore) storedLines(ctx context.Context, runID string) (map[int]struct{}, error) {
	rows, err := s.conn.Query(ctx, `SELECT line FROM clean_items WHERE run_id = ?`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	lines := make(map[int]struct{})
	for rows.Next() {
		var line uint32
		if err := rows.Scan(&line); err != nil {
			return nil, err
		}
		lines[int(line)] = struct{}{}
	}
	return lines, rows.Err()
}

// scanCleanItems scans multiple rows into a slice of CleanItem.
func scanCleanItems(rows driver.Rows) ([]*domain.CleanItem, error) {
	var result []*domain.CleanItem
	for rows.Next() {
		var it domain.CleanItem
		var line uint32
		err := rows.Scan(
			&line, &it.SellerID, &it.Title, &it.Price, &it.Stock, &it.StockNorm,
			&it.CategoryID, &it.Condition, &it.LogisticType, &it.Reputation,
		)
		if err != nil {
			return nil, fmt.Errorf("scan clean item: %w", err)
		}
		it.Line = int(line)
		result = append(result, &it)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate clean items: %w", err)
	}
	return result, nil
}
