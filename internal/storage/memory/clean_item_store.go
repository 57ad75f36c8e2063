package memory

import (
	"context"
	"sort"
	"sync"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
)

// CleanItemStore is an in-memory implementation of storage.CleanItemStore.
type CleanItemStore struct {
	mu   sync.RWMutex
	data map[string]map[int]*domain.CleanItem // run_id -> line -> item
}

// NewCleanItemStore creates a new in-memory curated item store.
func NewCleanItemStore() *CleanItemStore {
	return &CleanItemStore{
		data: make(map[string]map[int]*domain.CleanItem),
	}
}

// Compile-time interface check.
var _ storage.CleanItemStore = (*CleanItemStore)(nil)

// InsertBulk adds curated items for a run. Fails entire batch on duplicate (run_id, line).
func (s *CleanItemStore) InsertBulk(_ context.Context, runID string, items []*domain.CleanItem) error {
	if runID == "" {
		return storage.ErrInvalidInput
	}
	if len(items) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	existing := s.data[runID]

	// Check intra-batch and stored duplicates before writing anything
	seen := make(map[int]struct{}, len(items))
	for _, it := range items {
		if it == nil {
			return storage.ErrInvalidInput
		}
		if _, dup := seen[it.Line]; dup {
			return storage.ErrDuplicateKey
		}
		if _, dup := existing[it.Line]; dup {
			return storage.ErrDuplicateKey
		}
		seen[it.Line] = struct{}{}
	}

	if existing == nil {
		existing = make(map[int]*domain.CleanItem, len(items))
		s.data[runID] = existing
	}
	for _, it := range items {
		itemCopy := *it
		existing[it.Line] = &itemCopy
	}
	return nil
}

// GetByRun retrieves all curated items of a run, ordered by line ASC.
func (s *CleanItemStore) GetByRun(_ context.Context, runID string) ([]*domain.CleanItem, error) {
	return s.filter(runID, func(*domain.CleanItem) bool { return true }), nil
}

// GetBySeller retrieves one seller's curated items of a run, ordered by line ASC.
func (s *CleanItemStore) GetBySeller(_ context.Context, runID, sellerID string) ([]*domain.CleanItem, error) {
	return s.filter(runID, func(it *domain.CleanItem) bool { return it.SellerID == sellerID }), nil
}

func (s *CleanItemStore) filter(runID string, keep func(*domain.CleanItem) bool) []*domain.CleanItem {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []*domain.CleanItem
	for _, it := range s.data[runID] {
		if keep(it) {
			itemCopy := *it
			result = append(result, &itemCopy)
		}
	}

	sort.Slice(result, func(i, j int) bool {
		return result[i].Line < result[j].Line
	})
	return result
}
