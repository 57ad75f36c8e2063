package cleaning

import (
	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/metrics"
)

// ImputeSellerReputation fills missing reputations with the seller's own modal
// reputation. Sellers with no observed reputation get domain.UnknownReputation.
// Returns new items; input is not modified.
func ImputeSellerReputation(items []*domain.CleanItem) []*domain.CleanItem {
	observed := make(map[string][]string)
	for _, it := range items {
		if it.Reputation != "" {
			observed[it.SellerID] = append(observed[it.SellerID], it.Reputation)
		}
	}

	modes := make(map[string]string, len(observed))
	for seller, reps := range observed {
		if mode, ok := metrics.Mode(reps); ok {
			modes[seller] = mode
		}
	}

	out := make([]*domain.CleanItem, len(items))
	for i, it := range items {
		copy := *it
		if copy.Reputation == "" {
			if mode, ok := modes[it.SellerID]; ok {
				copy.Reputation = mode
			} else {
				copy.Reputation = domain.UnknownReputation
			}
		}
		out[i] = &copy
	}
	return out
}
