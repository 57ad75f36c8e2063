package domain

// Run summarizes one segmentation run over a dataset version.
// RunID is derived from the dataset version and the bucketing parameters, so
// re-running the same input with the same parameters maps to the same run.
type Run struct {
	RunID  string
	Source string // input path or label

	ItemsLoaded         int
	DroppedMissingPrice int
	PriceOutliers       int
	ItemsCurated        int
	Sellers             int
	SellersScored       int
	ScoringErrors       int

	PriceP99 float64
	StockP95 float64
	StockMax float64

	SizeQ30 float64
	SizeQ60 float64
	SizeQ90 float64

	CreatedAt int64 // Unix timestamp in milliseconds
}
