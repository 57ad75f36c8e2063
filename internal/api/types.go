package api

import "seller-segment-lab/internal/domain"

// RunResponse is the JSON rendering of a run summary.
type RunResponse struct {
	RunID               string  `json:"run_id"`
	Source              string  `json:"source"`
	ItemsLoaded         int     `json:"items_loaded"`
	DroppedMissingPrice int     `json:"dropped_missing_price"`
	PriceOutliers       int     `json:"price_outliers"`
	ItemsCurated        int     `json:"items_curated"`
	Sellers             int     `json:"sellers"`
	SellersScored       int     `json:"sellers_scored"`
	ScoringErrors       int     `json:"scoring_errors"`
	PriceP99            float64 `json:"price_p99"`
	StockP95            float64 `json:"stock_p95"`
	StockMax            float64 `json:"stock_max"`
	SizeQ30             float64 `json:"size_q30"`
	SizeQ60             float64 `json:"size_q60"`
	SizeQ90             float64 `json:"size_q90"`
	CreatedAt           int64   `json:"created_at"`
}

// SellerResponse is the JSON rendering of a scored seller.
// Field names follow the seller_profile.csv columns.
type SellerResponse struct {
	SellerID           string  `json:"seller_nickname"`
	NItems             int     `json:"n_items"`
	TotalStock         float64 `json:"total_stock"`
	LogisticType       string  `json:"logistic_type"`
	TotalValue         float64 `json:"total_value"`
	AvgStockPerItem    float64 `json:"avg_stock_per_item"`
	NCategories        int     `json:"n_categories"`
	MainCategory       string  `json:"main_category"`
	PctMainCategory    float64 `json:"pct_main_category"`
	PctNew             float64 `json:"pct_new"`
	PctUsed            float64 `json:"pct_used"`
	PctRefurbished     float64 `json:"pct_refurbished"`
	AvgPriceRegular    float64 `json:"avg_price_regular"`
	MedianPriceRegular float64 `json:"median_price_regular"`
	Reputation         string  `json:"seller_reputation"`
	ReputationScore    int     `json:"seller_reputation_score"`
	SellerSize         string  `json:"seller_size"`
	Diversification    string  `json:"clasificacion_diversificacion"`
	Quality            string  `json:"clasificacion_calidad"`
	DivScore           int     `json:"div_score"`
	QualScore          int     `json:"qual_score"`
	LogScore           int     `json:"log_score"`
	TotalScore         int     `json:"total_score"`
	PerformanceLevel   string  `json:"performance_level"`
	PerformanceSegment string  `json:"performance_segment"`
	MatchedRule        string  `json:"matched_rule"`
}

// StrategyResponse is the JSON rendering of a generated strategy.
type StrategyResponse struct {
	SellerID         string `json:"seller_nickname"`
	SellerSize       string `json:"seller_size"`
	PerformanceLevel string `json:"performance_level"`
	Strategy         string `json:"strategy"`
	Failed           bool   `json:"failed"`
	GeneratedAt      int64  `json:"generated_at"`
}

// ListResponse wraps a list endpoint's items with the run they belong to.
type ListResponse[T any] struct {
	RunID string `json:"run_id"`
	Count int    `json:"count"`
	Items []T    `json:"items"`
}

func newRunResponse(r *domain.Run) RunResponse {
	return RunResponse{
		RunID:               r.RunID,
		Source:              r.Source,
		ItemsLoaded:         r.ItemsLoaded,
		DroppedMissingPrice: r.DroppedMissingPrice,
		PriceOutliers:       r.PriceOutliers,
		ItemsCurated:        r.ItemsCurated,
		Sellers:             r.Sellers,
		SellersScored:       r.SellersScored,
		ScoringErrors:       r.ScoringErrors,
		PriceP99:            r.PriceP99,
		StockP95:            r.StockP95,
		StockMax:            r.StockMax,
		SizeQ30:             r.SizeQ30,
		SizeQ60:             r.SizeQ60,
		SizeQ90:             r.SizeQ90,
		CreatedAt:           r.CreatedAt,
	}
}

func newSellerResponse(p *domain.SellerPerformance) SellerResponse {
	return SellerResponse{
		SellerID:           p.SellerID,
		NItems:             p.NItems,
		TotalStock:         p.TotalStock,
		LogisticType:       p.LogisticType,
		TotalValue:         p.TotalValue,
		AvgStockPerItem:    p.AvgStockPerItem,
		NCategories:        p.NCategories,
		MainCategory:       p.MainCategory,
		PctMainCategory:    p.PctMainCategory,
		PctNew:             p.PctNew,
		PctUsed:            p.PctUsed,
		PctRefurbished:     p.PctRefurbished,
		AvgPriceRegular:    p.AvgPriceRegular,
		MedianPriceRegular: p.MedianPriceRegular,
		Reputation:         p.Reputation,
		ReputationScore:    p.ReputationScore,
		SellerSize:         p.SellerSize,
		Diversification:    p.Diversification,
		Quality:            p.Quality,
		DivScore:           p.DivScore,
		QualScore:          p.QualScore,
		LogScore:           p.LogScore,
		TotalScore:         p.TotalScore,
		PerformanceLevel:   p.PerformanceLevel,
		PerformanceSegment: p.PerformanceSegment,
		MatchedRule:        p.MatchedRule,
	}
}

func newStrategyResponse(r *domain.StrategyRecord) StrategyResponse {
	return StrategyResponse{
		SellerID:         r.SellerID,
		SellerSize:       r.SellerSize,
		PerformanceLevel: r.PerformanceLevel,
		Strategy:         r.Strategy,
		Failed:           r.Failed,
		GeneratedAt:      r.GeneratedAt,
	}
}
