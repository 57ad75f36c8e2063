package ingestion

import (
	"context"

	"seller-segment-lab/internal/domain"
)

// ItemSource provides raw item rows from an external dataset.
type ItemSource interface {
	// Load returns every item in source order.
	// Order is significant: first-value and first-seen tie-breaks depend on it.
	Load(ctx context.Context) ([]*domain.Item, error)
}
