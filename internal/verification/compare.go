package verification

import (
	"math"

	"seller-segment-lab/internal/domain"
)

// FieldDivergence represents a mismatch between stored and recomputed values.
type FieldDivergence struct {
	Field    string
	Expected interface{} // stored value
	Actual   interface{} // recomputed value
}

// CompareSellerRecords compares the derived fields of two performance rows.
// RunID is not compared. Floats use FloatTolerance.
func CompareSellerRecords(stored, recomputed *domain.SellerPerformance) []FieldDivergence {
	var divergences []FieldDivergence

	str := func(field, a, b string) {
		if a != b {
			divergences = append(divergences, FieldDivergence{field, a, b})
		}
	}
	num := func(field string, a, b int) {
		if a != b {
			divergences = append(divergences, FieldDivergence{field, a, b})
		}
	}
	flt := func(field string, a, b float64) {
		if !floatEquals(a, b) {
			divergences = append(divergences, FieldDivergence{field, a, b})
		}
	}

	str("SellerID", stored.SellerID, recomputed.SellerID)

	// Profile
	num("NItems", stored.NItems, recomputed.NItems)
	flt("TotalValue", stored.TotalValue, recomputed.TotalValue)
	num("NCategories", stored.NCategories, recomputed.NCategories)
	flt("PctNew", stored.PctNew, recomputed.PctNew)
	num("ReputationScore", stored.ReputationScore, recomputed.ReputationScore)
	str("LogisticType", stored.LogisticType, recomputed.LogisticType)

	// Buckets
	str("SellerSize", stored.SellerSize, recomputed.SellerSize)
	str("Diversification", stored.Diversification, recomputed.Diversification)
	str("Quality", stored.Quality, recomputed.Quality)

	// Scores
	num("DivScore", stored.DivScore, recomputed.DivScore)
	num("QualScore", stored.QualScore, recomputed.QualScore)
	num("LogScore", stored.LogScore, recomputed.LogScore)
	num("TotalScore", stored.TotalScore, recomputed.TotalScore)
	str("PerformanceLevel", stored.PerformanceLevel, recomputed.PerformanceLevel)
	str("PerformanceSegment", stored.PerformanceSegment, recomputed.PerformanceSegment)
	str("MatchedRule", stored.MatchedRule, recomputed.MatchedRule)

	return divergences
}

// floatEquals compares two float64 values within FloatTolerance.
func floatEquals(a, b float64) bool {
	return math.Abs(a-b) <= FloatTolerance
}
