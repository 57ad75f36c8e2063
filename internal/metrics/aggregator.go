package metrics

import (
	"errors"
	"sort"

	"seller-segment-lab/internal/domain"
)

// ErrNoItems is returned when there are no items to aggregate.
var ErrNoItems = errors.New("no items available for aggregation")

// ReputationScores maps a reputation label to its 0-5 score.
// Labels missing from the table score 0.
type ReputationScores map[string]int

// DefaultReputationScores is the marketplace reputation scale.
func DefaultReputationScores() ReputationScores {
	return ReputationScores{
		"green_platinum": 5,
		"green_gold":     4,
		"green":          4,
		"green_silver":   3,
		"yellow":         2,
		"light_green":    2,
		"red":            1,
		"orange":         1,
		"newbie":         0,
		"unknown":        0,
	}
}

// Score returns the score for label, 0 when unseen.
func (r ReputationScores) Score(label string) int {
	return r[label]
}

// Aggregator builds seller-level profiles from clean items.
type Aggregator struct {
	reputation ReputationScores
}

// NewAggregator creates a seller aggregator. A nil table uses DefaultReputationScores.
func NewAggregator(reputation ReputationScores) *Aggregator {
	if reputation == nil {
		reputation = DefaultReputationScores()
	}
	return &Aggregator{reputation: reputation}
}

// BuildSellerTable collapses item rows into one profile per seller.
// Every seller present in items appears exactly once, sorted by seller id ASC.
// Per-seller item order follows input order, which fixes the "first" picks
// (logistic type, main category ties).
// Returns ErrNoItems when items is empty.
func (a *Aggregator) BuildSellerTable(items []*domain.CleanItem) ([]*domain.SellerProfile, error) {
	if len(items) == 0 {
		return nil, ErrNoItems
	}

	groups := make(map[string][]*domain.CleanItem)
	for _, it := range items {
		groups[it.SellerID] = append(groups[it.SellerID], it)
	}

	sellerIDs := make([]string, 0, len(groups))
	for id := range groups {
		sellerIDs = append(sellerIDs, id)
	}
	sort.Strings(sellerIDs)

	profiles := make([]*domain.SellerProfile, 0, len(sellerIDs))
	for _, id := range sellerIDs {
		profiles = append(profiles, a.buildProfile(id, groups[id]))
	}
	return profiles, nil
}

// buildProfile computes every seller aggregate from the same item group.
func (a *Aggregator) buildProfile(sellerID string, items []*domain.CleanItem) *domain.SellerProfile {
	n := len(items)
	p := &domain.SellerProfile{
		SellerID:     sellerID,
		NItems:       n,
		LogisticType: items[0].LogisticType,
	}

	// 1. Size and intensity
	for _, it := range items {
		p.TotalStock += it.StockNorm
		p.TotalValue += it.Value()
	}
	p.AvgStockPerItem = p.TotalStock / float64(n)

	// 2. Diversification vs specialization
	categories := make([]string, n)
	for i, it := range items {
		categories[i] = it.CategoryID
	}
	p.NCategories = countDistinct(categories)
	mainCategory, mainCount := FirstMostFrequent(categories)
	p.MainCategory = mainCategory
	p.PctMainCategory = float64(mainCount) / float64(n)

	// 3. Condition mix
	p.PctNew, p.PctUsed, p.PctRefurbished = conditionShares(items)

	// 4. Price positioning
	prices := make([]float64, n)
	for i, it := range items {
		prices[i] = it.Price
	}
	p.AvgPriceRegular = Mean(prices)
	p.MedianPriceRegular = Median(prices)

	// 5. Reputation
	reputations := make([]string, n)
	for i, it := range items {
		reputations[i] = it.Reputation
	}
	if rep, ok := Mode(reputations); ok {
		p.Reputation = rep
	} else {
		p.Reputation = domain.UnknownReputation
	}
	p.ReputationScore = a.reputation.Score(p.Reputation)

	return p
}

// conditionShares returns the fraction of items in each condition.
// Items with an unrecognized condition count towards none of them.
func conditionShares(items []*domain.CleanItem) (pctNew, pctUsed, pctRefurbished float64) {
	var nNew, nUsed, nRefurb int
	for _, it := range items {
		switch it.Condition {
		case domain.ConditionNew:
			nNew++
		case domain.ConditionUsed:
			nUsed++
		case domain.ConditionRefurbished:
			nRefurb++
		}
	}
	n := float64(len(items))
	return float64(nNew) / n, float64(nUsed) / n, float64(nRefurb) / n
}

func countDistinct(values []string) int {
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return len(set)
}
