package memory

import (
	"context"
	"sort"
	"sync"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
)

// SellerStore is an in-memory implementation of storage.SellerStore.
type SellerStore struct {
	mu   sync.RWMutex
	data map[sellerKey]*domain.SellerPerformance
}

type sellerKey struct {
	runID    string
	sellerID string
}

// NewSellerStore creates a new in-memory seller store.
func NewSellerStore() *SellerStore {
	return &SellerStore{
		data: make(map[sellerKey]*domain.SellerPerformance),
	}
}

// Compile-time interface check.
var _ storage.SellerStore = (*SellerStore)(nil)

// InsertBulk adds seller rows. Fails entire batch on duplicate (run_id, seller_id).
func (s *SellerStore) InsertBulk(_ context.Context, sellers []*domain.SellerPerformance) error {
	if len(sellers) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	batchKeys := make(map[sellerKey]struct{}, len(sellers))
	for _, p := range sellers {
		if p == nil || p.RunID == "" || p.SellerID == "" {
			return storage.ErrInvalidInput
		}
		key := sellerKey{p.RunID, p.SellerID}
		if _, exists := batchKeys[key]; exists {
			return storage.ErrDuplicateKey
		}
		if _, exists := s.data[key]; exists {
			return storage.ErrDuplicateKey
		}
		batchKeys[key] = struct{}{}
	}

	for _, p := range sellers {
		sellerCopy := *p
		s.data[sellerKey{p.RunID, p.SellerID}] = &sellerCopy
	}
	return nil
}

// GetBySeller retrieves one seller of a run. Returns ErrNotFound if not exists.
func (s *SellerStore) GetBySeller(_ context.Context, runID, sellerID string) (*domain.SellerPerformance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.data[sellerKey{runID, sellerID}]
	if !ok {
		return nil, storage.ErrNotFound
	}
	sellerCopy := *p
	return &sellerCopy, nil
}

// GetByRun retrieves all sellers of a run, ordered by seller_id ASC.
func (s *SellerStore) GetByRun(_ context.Context, runID string) ([]*domain.SellerPerformance, error) {
	return s.filter(runID, func(*domain.SellerPerformance) bool { return true }), nil
}

// GetBySegment retrieves the sellers of one (size, level) segment, ordered by seller_id ASC.
func (s *SellerStore) GetBySegment(_ context.Context, runID, sellerSize, performanceLevel string) ([]*domain.SellerPerformance, error) {
	return s.filter(runID, func(p *domain.SellerPerformance) bool {
		return p.SellerSize == sellerSize && p.PerformanceLevel == performanceLevel
	}), nil
}

func (s *SellerStore) filter(runID string, keep func(*domain.SellerPerformance) bool) []*domain.SellerPerformance {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.SellerPerformance
	for key, p := range s.data {
		if key.runID == runID && keep(p) {
			sellerCopy := *p
			result = append(result, &sellerCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].SellerID < result[j].SellerID
	})
	return result
}
