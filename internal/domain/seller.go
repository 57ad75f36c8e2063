package domain

// SellerProfile is the seller-level feature row built from a seller's clean items.
// Bucket labels are appended by segmentation; every other field is fixed once built.
type SellerProfile struct {
	SellerID string // seller_nickname

	// Size and intensity
	NItems          int
	TotalStock      float64 // sum of stock_norm
	LogisticType    string  // first observed logistic type
	TotalValue      float64 // sum of price × stock_norm
	AvgStockPerItem float64 // TotalStock / NItems

	// Diversification
	NCategories     int
	MainCategory    string
	PctMainCategory float64

	// Condition mix
	PctNew         float64
	PctUsed        float64
	PctRefurbished float64

	// Price positioning (raw price)
	AvgPriceRegular    float64
	MedianPriceRegular float64

	// Reputation
	Reputation      string // modal reputation label
	ReputationScore int    // 0-5

	// Buckets
	SellerSize      string // Key Account | Core Seller | Local Hero | Long Tail
	Diversification string // clasificacion_diversificacion
	Quality         string // clasificacion_calidad
}

// SellerPerformance is a seller profile with axis scores and the final performance label.
type SellerPerformance struct {
	SellerProfile

	DivScore   int // 0-2
	QualScore  int // 0-2
	LogScore   int // 0-2
	TotalScore int // DivScore + QualScore + LogScore

	PerformanceLevel   string // Diamante | Top performance | Expected performance | Low performance
	PerformanceSegment string // SellerSize + " - " + PerformanceLevel
	MatchedRule        string // name of the decision rule that produced PerformanceLevel

	RunID string // dataset version this row was produced from
}
