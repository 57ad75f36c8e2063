package segmentation

import (
	"math"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/metrics"
)

// SizeQuantiles are the total_value cut points, ascending.
type SizeQuantiles struct {
	LocalHero  float64 // lower bound for Local Hero
	CoreSeller float64 // lower bound for Core Seller
	KeyAccount float64 // lower bound for Key Account
}

// DefaultSizeQuantiles returns the 30th/60th/90th percentile cut points.
func DefaultSizeQuantiles() SizeQuantiles {
	return SizeQuantiles{LocalHero: 0.30, CoreSeller: 0.60, KeyAccount: 0.90}
}

// SizeThresholds are the total_value boundaries computed for one batch.
type SizeThresholds struct {
	Q30 float64
	Q60 float64
	Q90 float64
}

// ComputeSizeThresholds derives thresholds from the batch total_value distribution.
// NaN values count as 0.
func ComputeSizeThresholds(profiles []*domain.SellerProfile, q SizeQuantiles) SizeThresholds {
	values := make([]float64, len(profiles))
	for i, p := range profiles {
		values[i] = totalValue(p)
	}
	qs := metrics.Quantiles(values, q.LocalHero, q.CoreSeller, q.KeyAccount)
	return SizeThresholds{Q30: qs[0], Q60: qs[1], Q90: qs[2]}
}

// ClassifySize maps a total_value onto a size tier.
// A value equal to a threshold belongs to the higher tier.
func ClassifySize(value float64, t SizeThresholds) string {
	switch {
	case value >= t.Q90:
		return domain.SizeKeyAccount
	case value >= t.Q60:
		return domain.SizeCoreSeller
	case value >= t.Q30:
		return domain.SizeLocalHero
	default:
		return domain.SizeLongTail
	}
}

// AddSellerSize labels every profile with its size tier relative to the batch.
// Returns labelled copies and the thresholds used.
func AddSellerSize(profiles []*domain.SellerProfile, q SizeQuantiles) ([]*domain.SellerProfile, SizeThresholds) {
	t := ComputeSizeThresholds(profiles, q)
	out := copyProfiles(profiles)
	for _, p := range out {
		p.SellerSize = ClassifySize(totalValue(p), t)
	}
	return out, t
}

func totalValue(p *domain.SellerProfile) float64 {
	if math.IsNaN(p.TotalValue) {
		return 0
	}
	return p.TotalValue
}

func copyProfiles(profiles []*domain.SellerProfile) []*domain.SellerProfile {
	out := make([]*domain.SellerProfile, len(profiles))
	for i, p := range profiles {
		profileCopy := *p
		out[i] = &profileCopy
	}
	return out
}
