package verification

import (
	"context"
	"fmt"

	"seller-segment-lab/internal/decision"
	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/segmentation"
	"seller-segment-lab/internal/storage"
)

// SellerResult is the outcome of re-scoring one stored seller.
type SellerResult struct {
	SellerID    string
	Match       bool
	Divergences []FieldDivergence
	Err         error // scoring error, if any

	// Trace lists the rules evaluated for a divergent seller, up to the match.
	Trace []decision.RuleCheck
}

// StoreReport contains results for a stored run.
type StoreReport struct {
	RunID            string
	TotalSellers     int
	MatchedSellers   int
	DivergentSellers int
	Results          []SellerResult
	Invariants       *Report
}

// OK reports whether every seller matched and no invariant failed.
func (r *StoreReport) OK() bool {
	return r.DivergentSellers == 0 && r.Invariants.OK()
}

// StoreVerifier re-derives labels and scores for a stored run from its base
// columns and compares them with what was persisted.
type StoreVerifier struct {
	runs      storage.RunStore
	sellers   storage.SellerStore
	evaluator *decision.Evaluator
}

// NewStoreVerifier creates a verifier over the run and seller stores.
func NewStoreVerifier(runs storage.RunStore, sellers storage.SellerStore, ev *decision.Evaluator) *StoreVerifier {
	return &StoreVerifier{runs: runs, sellers: sellers, evaluator: ev}
}

// VerifyRun re-labels and re-scores every stored seller of runID.
// Size tiers use the thresholds recorded on the run, since sellers that failed
// scoring are not stored and the batch cannot be re-derived from the store alone.
func (v *StoreVerifier) VerifyRun(ctx context.Context, runID string) (*StoreReport, error) {
	run, err := v.runs.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	stored, err := v.sellers.GetByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load sellers of run %s: %w", runID, err)
	}

	thresholds := segmentation.SizeThresholds{Q30: run.SizeQ30, Q60: run.SizeQ60, Q90: run.SizeQ90}
	profiles := make([]*domain.SellerProfile, len(stored))
	for i, p := range stored {
		profile := p.SellerProfile
		profile.SellerSize = segmentation.ClassifySize(profile.TotalValue, thresholds)
		profiles[i] = &profile
	}
	relabelled := segmentation.AddQuality(segmentation.AddDiversification(profiles))

	report := &StoreReport{RunID: runID, TotalSellers: len(stored)}
	for i, p := range stored {
		res := SellerResult{SellerID: p.SellerID}
		rescored, err := v.evaluator.Evaluate(relabelled[i])
		if err != nil {
			res.Err = err
		} else {
			res.Divergences = CompareSellerRecords(p, rescored)
			res.Match = len(res.Divergences) == 0
			if !res.Match {
				res.Trace, _ = v.evaluator.Explain(relabelled[i])
			}
		}
		if res.Match {
			report.MatchedSellers++
		} else {
			report.DivergentSellers++
		}
		report.Results = append(report.Results, res)
	}

	report.Invariants = &Report{
		Checks:     []string{CheckScoreSum, CheckSegmentLabel, CheckSellerOrder, CheckConditionShares},
		Violations: VerifyPerformance(stored, nil),
	}
	return report, nil
}
