package decision

import (
	"errors"
	"fmt"

	"seller-segment-lab/internal/domain"
)

// ErrUnknownLabel is returned when a label is missing from a score table
// that has no default.
var ErrUnknownLabel = errors.New("unknown label")

// Axis names.
const (
	AxisDiversification = "diversification"
	AxisQuality         = "quality"
	AxisLogistic        = "logistic"
)

// ScoreTable maps the labels of one axis to a 0-2 score.
type ScoreTable struct {
	Axis    string
	Scores  map[string]int
	Default *int // used for unseen labels; nil makes them an error
}

// Score returns the score for label.
// Unseen labels return Default, or ErrUnknownLabel when Default is nil.
func (t ScoreTable) Score(label string) (int, error) {
	if s, ok := t.Scores[label]; ok {
		return s, nil
	}
	if t.Default != nil {
		return *t.Default, nil
	}
	return 0, fmt.Errorf("%s %q: %w", t.Axis, label, ErrUnknownLabel)
}

// WithDefault returns a copy of t that scores unseen labels as def.
func (t ScoreTable) WithDefault(def int) ScoreTable {
	t.Default = &def
	return t
}

// ScoreTables holds the three axis tables.
type ScoreTables struct {
	Diversification ScoreTable
	Quality         ScoreTable
	Logistic        ScoreTable
}

// DefaultScoreTables returns the standard axis tables. None has a default.
func DefaultScoreTables() ScoreTables {
	return ScoreTables{
		Diversification: ScoreTable{
			Axis: AxisDiversification,
			Scores: map[string]int{
				domain.DiversificationSpecialist:  2,
				domain.DiversificationHybrid:      2,
				domain.DiversificationSuperficial: 1,
				domain.DiversificationDispersed:   0,
			},
		},
		Quality: ScoreTable{
			Axis: AxisQuality,
			Scores: map[string]int{
				domain.QualityPremium:      2,
				domain.QualityReliableGold: 2,
				domain.QualityStandard:     1,
				domain.QualityHighRisk:     0,
			},
		},
		Logistic: ScoreTable{
			Axis: AxisLogistic,
			Scores: map[string]int{
				domain.LogisticCrossDocking: 2,
				domain.LogisticDropShipping: 2,
				domain.LogisticFlex:         2,
				domain.LogisticOther:        1,
				domain.LogisticFBM:          0,
			},
		},
	}
}
