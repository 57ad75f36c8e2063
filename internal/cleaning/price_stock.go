package cleaning

import (
	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/metrics"
)

// Cut points for price filtering and stock tail compression.
const (
	PricePercentile = 0.99
	StockPercentile = 0.95
)

// Result is the output of CleanPriceAndStock.
type Result struct {
	Clean               []*domain.CleanItem // 0 < price <= p99, with stock_norm
	Outliers            []*domain.Item      // priced rows outside (0, p99]
	DroppedMissingPrice int                 // rows without a price

	PriceP99 float64
	StockP95 float64 // over Clean rows
	StockMax float64 // over Clean rows
}

// CleanPriceAndStock drops unpriced items, routes price outliers aside and
// compresses the stock tail of the remaining items.
// Input items are not modified. Clean and Outliers keep input order.
func CleanPriceAndStock(items []*domain.Item) *Result {
	res := &Result{}

	priced := make([]*domain.Item, 0, len(items))
	prices := make([]float64, 0, len(items))
	for _, it := range items {
		if !it.HasPrice() {
			res.DroppedMissingPrice++
			continue
		}
		priced = append(priced, it)
		prices = append(prices, *it.Price)
	}
	if len(priced) == 0 {
		return res
	}

	res.PriceP99 = metrics.Percentile(prices, PricePercentile)

	kept := make([]*domain.Item, 0, len(priced))
	for _, it := range priced {
		if *it.Price > 0 && *it.Price <= res.PriceP99 {
			kept = append(kept, it)
		} else {
			res.Outliers = append(res.Outliers, it)
		}
	}
	if len(kept) == 0 {
		return res
	}

	stocks := make([]float64, len(kept))
	for i, it := range kept {
		stocks[i] = it.Stock
	}
	res.StockP95 = metrics.Percentile(stocks, StockPercentile)
	res.StockMax = metrics.Max(stocks)

	res.Clean = make([]*domain.CleanItem, len(kept))
	for i, it := range kept {
		res.Clean[i] = &domain.CleanItem{
			Line:         it.Line,
			SellerID:     it.SellerID,
			Title:        it.Title,
			Price:        *it.Price,
			Stock:        it.Stock,
			StockNorm:    NormalizeStockTail(it.Stock, res.StockP95, res.StockMax),
			CategoryID:   it.CategoryID,
			Condition:    it.Condition,
			LogisticType: it.LogisticType,
			Reputation:   it.Reputation,
		}
	}
	return res
}

// NormalizeStockTail maps the tail [p95, max] linearly onto [p95, 2*p95].
// Values at or below p95 pass through unchanged.
// When stockMax == p95 the tail has no width and p95 is returned.
func NormalizeStockTail(v, p95, stockMax float64) float64 {
	if v <= p95 {
		return v
	}
	if stockMax <= p95 {
		return p95
	}
	return p95 + (v-p95)/(stockMax-p95)*p95
}
