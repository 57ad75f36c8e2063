package stub

import (
	"context"

	"seller-segment-lab/internal/domain"
)

// StubItemSource returns fixed in-memory items for testing.
// Implements ingestion.ItemSource interface.
type StubItemSource struct {
	items []*domain.Item
	err   error
}

// NewStubItemSource creates a new stub item source with the given items.
func NewStubItemSource(items []*domain.Item) *StubItemSource {
	return &StubItemSource{items: items}
}

// NewFailingItemSource creates a stub source whose Load always returns err.
func NewFailingItemSource(err error) *StubItemSource {
	return &StubItemSource{err: err}
}

// Load returns copies of the configured items to prevent mutation.
func (s *StubItemSource) Load(_ context.Context) ([]*domain.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	result := make([]*domain.Item, 0, len(s.items))
	for _, it := range s.items {
		itemCopy := *it
		if it.Price != nil {
			price := *it.Price
			itemCopy.Price = &price
		}
		result = append(result, &itemCopy)
	}
	return result, nil
}
