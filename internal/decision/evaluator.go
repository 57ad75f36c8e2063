package decision

import (
	"fmt"

	"seller-segment-lab/internal/domain"
)

// Evaluator scores bucketed seller profiles and assigns performance levels.
type Evaluator struct {
	tables   ScoreTables
	rulebook *Rulebook
}

// NewEvaluator creates a new performance evaluator.
// A nil rulebook uses DefaultRulebook.
func NewEvaluator(tables ScoreTables, rulebook *Rulebook) *Evaluator {
	if rulebook == nil {
		rulebook = DefaultRulebook()
	}
	return &Evaluator{tables: tables, rulebook: rulebook}
}

// Rulebook returns the rules used by the evaluator.
func (e *Evaluator) Rulebook() *Rulebook {
	return e.rulebook
}

// Tables returns the score tables used by the evaluator.
func (e *Evaluator) Tables() ScoreTables {
	return e.tables
}

// Facts computes axis scores and risk flags for a bucketed profile.
// Returns an error wrapping ErrUnknownLabel when a label has no score.
func (e *Evaluator) Facts(p *domain.SellerProfile) (Facts, error) {
	div, err := e.tables.Diversification.Score(p.Diversification)
	if err != nil {
		return Facts{}, err
	}
	qual, err := e.tables.Quality.Score(p.Quality)
	if err != nil {
		return Facts{}, err
	}
	logistic, err := e.tables.Logistic.Score(p.LogisticType)
	if err != nil {
		return Facts{}, err
	}

	return Facts{
		SellerSize:      p.SellerSize,
		Diversification: p.Diversification,
		Quality:         p.Quality,
		LogisticType:    p.LogisticType,
		DivScore:        div,
		QualScore:       qual,
		LogScore:        logistic,
		TotalScore:      div + qual + logistic,
		HighRisk:        p.Quality == domain.QualityHighRisk,
		Dispersed:       p.Diversification == domain.DiversificationDispersed,
		FBM:             p.LogisticType == domain.LogisticFBM,
	}, nil
}

// Evaluate produces the performance row for one seller.
// The profile is copied; the input is not modified.
func (e *Evaluator) Evaluate(p *domain.SellerProfile) (*domain.SellerPerformance, error) {
	f, err := e.Facts(p)
	if err != nil {
		return nil, fmt.Errorf("score seller %s: %w", p.SellerID, err)
	}
	d := e.rulebook.Decide(f)

	return &domain.SellerPerformance{
		SellerProfile:      *p,
		DivScore:           f.DivScore,
		QualScore:          f.QualScore,
		LogScore:           f.LogScore,
		TotalScore:         f.TotalScore,
		PerformanceLevel:   d.Level,
		PerformanceSegment: domain.Segment(p.SellerSize, d.Level),
		MatchedRule:        d.Rule,
	}, nil
}

// Explain returns the rules evaluated for p, in order, up to the match.
func (e *Evaluator) Explain(p *domain.SellerProfile) ([]RuleCheck, error) {
	f, err := e.Facts(p)
	if err != nil {
		return nil, fmt.Errorf("score seller %s: %w", p.SellerID, err)
	}
	return e.rulebook.Explain(f), nil
}

// ScoringError is a seller that could not be scored.
type ScoringError struct {
	SellerID string
	Err      error
}

func (e *ScoringError) Error() string { return e.Err.Error() }

func (e *ScoringError) Unwrap() error { return e.Err }

// EvaluateAll scores every profile. Sellers that cannot be scored are left
// out of the result and reported as scoring errors, in input order.
func (e *Evaluator) EvaluateAll(profiles []*domain.SellerProfile) ([]*domain.SellerPerformance, []*ScoringError) {
	var out []*domain.SellerPerformance
	var errs []*ScoringError
	for _, p := range profiles {
		perf, err := e.Evaluate(p)
		if err != nil {
			errs = append(errs, &ScoringError{SellerID: p.SellerID, Err: err})
			continue
		}
		out = append(out, perf)
	}
	return out, errs
}
