package segmentation

import "seller-segment-lab/internal/domain"

// ClassifyDiversification labels a seller by category breadth.
// Rules are evaluated top to bottom, first match wins:
//
//	1 category,  1 item       → Superficial
//	1 category,  >1 items     → Especialista
//	2 categories, >=2 items   → Híbrido
//	>=3 categories, or >=2 categories with <=3 items → Disperso
//	otherwise                 → Sin clasificar
func ClassifyDiversification(nCategories, nItems int) string {
	switch {
	case nCategories == 1 && nItems == 1:
		return domain.DiversificationSuperficial
	case nCategories == 1 && nItems > 1:
		return domain.DiversificationSpecialist
	case nCategories == 2 && nItems >= 2:
		return domain.DiversificationHybrid
	case nCategories >= 3 || (nCategories >= 2 && nItems <= 3):
		return domain.DiversificationDispersed
	default:
		return domain.DiversificationUnclassified
	}
}

// ClassifyQuality labels a seller by new-item share and reputation score.
// confiable_gold is checked before alto_riesgo, so score 3 with pct_new == 0.8
// is confiable_gold.
func ClassifyQuality(pctNew float64, reputationScore int) string {
	switch {
	case pctNew == 1 && reputationScore == 5:
		return domain.QualityPremium
	case (reputationScore == 3 || reputationScore == 4) && pctNew >= 0.8:
		return domain.QualityReliableGold
	case reputationScore >= 0 && reputationScore <= 3 && pctNew <= 0.8:
		return domain.QualityHighRisk
	default:
		return domain.QualityStandard
	}
}

// AddDiversification labels every profile with its diversification class.
// Returns labelled copies.
func AddDiversification(profiles []*domain.SellerProfile) []*domain.SellerProfile {
	out := copyProfiles(profiles)
	for _, p := range out {
		p.Diversification = ClassifyDiversification(p.NCategories, p.NItems)
	}
	return out
}

// AddQuality labels every profile with its quality class.
// Returns labelled copies.
func AddQuality(profiles []*domain.SellerProfile) []*domain.SellerProfile {
	out := copyProfiles(profiles)
	for _, p := range out {
		p.Quality = ClassifyQuality(p.PctNew, p.ReputationScore)
	}
	return out
}

// Bucket applies size, diversification and quality labels in order.
func Bucket(profiles []*domain.SellerProfile, q SizeQuantiles) ([]*domain.SellerProfile, SizeThresholds) {
	sized, t := AddSellerSize(profiles, q)
	return AddQuality(AddDiversification(sized)), t
}
