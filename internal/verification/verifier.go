// Package verification checks the invariants of a finished segmentation run.
// Checks never fail fast: every violation found is reported.
package verification

import (
	"fmt"
	"math"
	"sort"

	"seller-segment-lab/internal/cleaning"
	"seller-segment-lab/internal/decision"
	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/segmentation"
)

// FloatTolerance is the tolerance for float64 comparisons.
const FloatTolerance = 1e-7

// Check names.
const (
	CheckPriceBounds       = "price_bounds"
	CheckOutliersDisjoint  = "outliers_disjoint"
	CheckStockSquash       = "stock_squash"
	CheckScoreSum          = "score_sum"
	CheckConditionShares   = "condition_shares"
	CheckSegmentLabel      = "segment_label"
	CheckSellerOrder       = "seller_order"
	CheckRelabelIdempotent = "relabel_idempotent"
)

// Violation is one failed invariant.
type Violation struct {
	Check   string
	Subject string // seller id or "line N"
	Detail  string
}

func (v Violation) String() string {
	return fmt.Sprintf("%s [%s]: %s", v.Check, v.Subject, v.Detail)
}

// Report collects the checks run and the violations found.
type Report struct {
	Checks     []string
	Violations []Violation
}

// OK reports whether no violations were found.
func (r *Report) OK() bool {
	return len(r.Violations) == 0
}

// Artifacts are the intermediate results of one run.
type Artifacts struct {
	Cleaning    *cleaning.Result
	Items       []*domain.CleanItem // after reputation imputation
	Profiles    []*domain.SellerProfile
	Performance []*domain.SellerPerformance
	Quantiles   segmentation.SizeQuantiles
	Evaluator   *decision.Evaluator // nil skips re-scoring
}

// VerifyRun runs every check that applies to the provided artifacts.
func VerifyRun(a Artifacts) *Report {
	r := &Report{}
	if a.Cleaning != nil {
		r.Checks = append(r.Checks, CheckPriceBounds, CheckOutliersDisjoint, CheckStockSquash)
		r.Violations = append(r.Violations, VerifyCleaning(a.Cleaning)...)
	}
	if a.Performance != nil {
		r.Checks = append(r.Checks, CheckScoreSum, CheckSegmentLabel, CheckSellerOrder, CheckConditionShares)
		r.Violations = append(r.Violations, VerifyPerformance(a.Performance, a.Items)...)
	}
	if a.Profiles != nil {
		r.Checks = append(r.Checks, CheckRelabelIdempotent)
		r.Violations = append(r.Violations, VerifyRelabel(a.Profiles, a.Quantiles, a.Evaluator, a.Performance)...)
	}
	return r
}

// VerifyCleaning checks price bounds, outlier routing and the stock squash.
func VerifyCleaning(res *cleaning.Result) []Violation {
	var out []Violation

	cleanLines := make(map[int]bool, len(res.Clean))
	for _, it := range res.Clean {
		if !(it.Price > 0 && it.Price <= res.PriceP99) {
			out = append(out, Violation{CheckPriceBounds, lineSubject(it.Line),
				fmt.Sprintf("price %g outside (0, %g]", it.Price, res.PriceP99)})
		}
		if it.Line > 0 {
			cleanLines[it.Line] = true
		}
	}

	for _, it := range res.Outliers {
		if it.Price == nil {
			out = append(out, Violation{CheckOutliersDisjoint, lineSubject(it.Line), "outlier without price"})
			continue
		}
		if *it.Price > 0 && *it.Price <= res.PriceP99 {
			out = append(out, Violation{CheckOutliersDisjoint, lineSubject(it.Line),
				fmt.Sprintf("in-range price %g routed to outliers", *it.Price)})
		}
		if it.Line > 0 && cleanLines[it.Line] {
			out = append(out, Violation{CheckOutliersDisjoint, lineSubject(it.Line), "row is both clean and outlier"})
		}
	}

	return append(out, verifyStockSquash(res)...)
}

func verifyStockSquash(res *cleaning.Result) []Violation {
	var out []Violation
	p95 := res.StockP95
	upper := 2 * p95
	zeroWidth := res.StockMax <= p95

	for _, it := range res.Clean {
		switch {
		case it.Stock <= p95:
			if it.StockNorm != it.Stock {
				out = append(out, Violation{CheckStockSquash, lineSubject(it.Line),
					fmt.Sprintf("stock %g at or below p95 changed to %g", it.Stock, it.StockNorm)})
			}
		case zeroWidth:
			if it.StockNorm != p95 {
				out = append(out, Violation{CheckStockSquash, lineSubject(it.Line),
					fmt.Sprintf("zero-width tail should map to p95 %g, got %g", p95, it.StockNorm)})
			}
		default:
			if it.StockNorm < p95 || it.StockNorm > upper+FloatTolerance {
				out = append(out, Violation{CheckStockSquash, lineSubject(it.Line),
					fmt.Sprintf("stock_norm %g outside [%g, %g]", it.StockNorm, p95, upper)})
			}
		}
	}

	// Monotonic in raw stock.
	sorted := make([]*domain.CleanItem, len(res.Clean))
	copy(sorted, res.Clean)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Stock < sorted[j].Stock })
	for i := 1; i < len(sorted); i++ {
		if sorted[i].StockNorm+FloatTolerance < sorted[i-1].StockNorm {
			out = append(out, Violation{CheckStockSquash, lineSubject(sorted[i].Line),
				fmt.Sprintf("stock_norm decreases: %g after %g", sorted[i].StockNorm, sorted[i-1].StockNorm)})
		}
	}
	return out
}

// VerifyPerformance checks per-seller invariants of the scored table.
// items, when given, lets the condition check require a full share for sellers
// whose conditions are all known.
func VerifyPerformance(perfs []*domain.SellerPerformance, items []*domain.CleanItem) []Violation {
	var out []Violation

	fullyKnown := make(map[string]bool)
	for _, it := range items {
		known, seen := fullyKnown[it.SellerID]
		if !seen {
			known = true
		}
		fullyKnown[it.SellerID] = known && isKnownCondition(it.Condition)
	}

	for i, p := range perfs {
		if sum := p.DivScore + p.QualScore + p.LogScore; sum != p.TotalScore {
			out = append(out, Violation{CheckScoreSum, p.SellerID,
				fmt.Sprintf("axis scores sum to %d, total is %d", sum, p.TotalScore)})
		}

		if want := domain.Segment(p.SellerSize, p.PerformanceLevel); p.PerformanceSegment != want {
			out = append(out, Violation{CheckSegmentLabel, p.SellerID,
				fmt.Sprintf("segment %q, expected %q", p.PerformanceSegment, want)})
		}

		if i > 0 && perfs[i-1].SellerID >= p.SellerID {
			out = append(out, Violation{CheckSellerOrder, p.SellerID,
				fmt.Sprintf("follows %q", perfs[i-1].SellerID)})
		}

		share := p.PctNew + p.PctUsed + p.PctRefurbished
		if share > 1+FloatTolerance {
			out = append(out, Violation{CheckConditionShares, p.SellerID,
				fmt.Sprintf("condition shares sum to %g", share)})
		} else if fullyKnown[p.SellerID] && math.Abs(share-1) > FloatTolerance {
			out = append(out, Violation{CheckConditionShares, p.SellerID,
				fmt.Sprintf("known conditions sum to %g, expected 1", share)})
		}
	}
	return out
}

// VerifyRelabel re-derives bucket labels from the base columns and checks they
// match. With an evaluator, perfs are also re-scored and compared field by field.
func VerifyRelabel(profiles []*domain.SellerProfile, q segmentation.SizeQuantiles, ev *decision.Evaluator, perfs []*domain.SellerPerformance) []Violation {
	var out []Violation

	relabelled, _ := segmentation.Bucket(profiles, q)
	for i, p := range profiles {
		r := relabelled[i]
		if p.SellerSize != r.SellerSize || p.Diversification != r.Diversification || p.Quality != r.Quality {
			out = append(out, Violation{CheckRelabelIdempotent, p.SellerID,
				fmt.Sprintf("labels (%s, %s, %s) re-derived as (%s, %s, %s)",
					p.SellerSize, p.Diversification, p.Quality,
					r.SellerSize, r.Diversification, r.Quality)})
		}
	}

	if ev == nil {
		return out
	}
	for _, p := range perfs {
		rescored, err := ev.Evaluate(&p.SellerProfile)
		if err != nil {
			out = append(out, Violation{CheckRelabelIdempotent, p.SellerID, err.Error()})
			continue
		}
		for _, d := range CompareSellerRecords(p, rescored) {
			out = append(out, Violation{CheckRelabelIdempotent, p.SellerID,
				fmt.Sprintf("%s: stored %v, re-scored %v", d.Field, d.Expected, d.Actual)})
		}
	}
	return out
}

func isKnownCondition(c string) bool {
	return c == domain.ConditionNew || c == domain.ConditionUsed || c == domain.ConditionRefurbished
}

func lineSubject(line int) string {
	return fmt.Sprintf("line %d", line)
}
