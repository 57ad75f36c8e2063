package memory

import (
	"context"
	"sync"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
)

// RunStore is an in-memory implementation of storage.RunStore.
type RunStore struct {
	mu     sync.RWMutex
	data   map[string]*domain.Run
	latest string
}

// NewRunStore creates a new in-memory run store.
func NewRunStore() *RunStore {
	return &RunStore{
		data: make(map[string]*domain.Run),
	}
}

// Compile-time interface check.
var _ storage.RunStore = (*RunStore)(nil)

// Insert adds a run summary. Returns ErrDuplicateKey if run_id exists.
func (s *RunStore) Insert(_ context.Context, r *domain.Run) error {
	if r == nil || r.RunID == "" {
		return storage.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.data[r.RunID]; exists {
		return storage.ErrDuplicateKey
	}

	runCopy := *r
	s.data[r.RunID] = &runCopy

	// Ties on CreatedAt resolve to the later insert.
	if prev, ok := s.data[s.latest]; !ok || runCopy.CreatedAt >= prev.CreatedAt {
		s.latest = r.RunID
	}
	return nil
}

// GetByID retrieves a run by its ID. Returns ErrNotFound if not exists.
func (s *RunStore) GetByID(_ context.Context, runID string) (*domain.Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.data[runID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	runCopy := *r
	return &runCopy, nil
}

// GetLatest retrieves the most recently created run. Returns ErrNotFound if empty.
func (s *RunStore) GetLatest(ctx context.Context) (*domain.Run, error) {
	s.mu.RLock()
	latest := s.latest
	s.mu.RUnlock()

	if latest == "" {
		return nil, storage.ErrNotFound
	}
	return s.GetByID(ctx, latest)
}
