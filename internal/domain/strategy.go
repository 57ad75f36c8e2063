package domain

// StrategyRecord is the generated commercial strategy for one seller.
type StrategyRecord struct {
	RunID            string
	SellerID         string
	SellerSize       string
	PerformanceLevel string
	Strategy         string // generated text, or the captured error message when Failed
	Failed           bool
	GeneratedAt      int64 // Unix timestamp in milliseconds
}
