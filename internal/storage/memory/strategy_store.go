package memory

import (
	"context"
	"sort"
	"sync"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
)

// StrategyStore is an in-memory implementation of storage.StrategyStore.
type StrategyStore struct {
	mu   sync.RWMutex
	data map[sellerKey]*domain.StrategyRecord
}

// NewStrategyStore creates a new in-memory strategy store.
func NewStrategyStore() *StrategyStore {
	return &StrategyStore{
		data: make(map[sellerKey]*domain.StrategyRecord),
	}
}

// Compile-time interface check.
var _ storage.StrategyStore = (*StrategyStore)(nil)

// Insert adds a strategy. Returns ErrDuplicateKey if (run_id, seller_id) exists.
func (s *StrategyStore) Insert(_ context.Context, r *domain.StrategyRecord) error {
	if r == nil || r.RunID == "" || r.SellerID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key := sellerKey{r.RunID, r.SellerID}
	if _, exists := s.data[key]; exists {
		return storage.ErrDuplicateKey
	}

	recCopy := *r
	s.data[key] = &recCopy
	return nil
}

// InsertBulk adds multiple strategies atomically. Fails entire batch on any duplicate.
func (s *StrategyStore) InsertBulk(_ context.Context, records []*domain.StrategyRecord) error {
	if len(records) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[sellerKey]struct{}, len(records))
	for _, r := range records {
		if r == nil || r.RunID == "" || r.SellerID == "" {
			return storage.ErrInvalidInput
		}
		key := sellerKey{r.RunID, r.SellerID}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, r := range records {
		recCopy := *r
		s.data[sellerKey{r.RunID, r.SellerID}] = &recCopy
	}
	return nil
}

// GetBySeller retrieves a seller's strategy. Returns ErrNotFound if not exists.
func (s *StrategyStore) GetBySeller(_ context.Context, runID, sellerID string) (*domain.StrategyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[sellerKey{runID, sellerID}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	recCopy := *r
	return &recCopy, nil
}

// GetByRun retrieves all strategies of a run, ordered by seller_id ASC.
func (s *StrategyStore) GetByRun(_ context.Context, runID string) ([]*domain.StrategyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.StrategyRecord
	for key, r := range s.data {
		if key.runID == runID {
			recCopy := *r
			result = append(result, &recCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SellerID < result[j].SellerID
	})
	return result, nil
}
