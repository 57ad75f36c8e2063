package decision

import "seller-segment-lab/internal/domain"

// DefaultRulebook returns the performance rules.
// Diamante applies to every size; each size tier then checks Top, Low and
// Expected in that order.
func DefaultRulebook() *Rulebook {
	return &Rulebook{
		Global: []Rule{
			{
				Name:      "diamond",
				Level:     domain.LevelDiamond,
				Condition: "total == 6 AND NOT alto_riesgo AND NOT Disperso AND NOT FBM",
				When: func(f Facts) bool {
					return f.TotalScore == 6 && !f.HighRisk && !f.Dispersed && !f.FBM
				},
			},
		},
		BySize: map[string][]Rule{
			domain.SizeKeyAccount: {
				{
					Name:      "key_account_top",
					Level:     domain.LevelTop,
					Condition: "total >= 5 AND NOT alto_riesgo AND NOT Disperso AND NOT FBM",
					When: func(f Facts) bool {
						return f.TotalScore >= 5 && !f.HighRisk && !f.Dispersed && !f.FBM
					},
				},
				{
					Name:      "key_account_low",
					Level:     domain.LevelLow,
					Condition: "alto_riesgo OR Disperso OR total <= 2",
					When: func(f Facts) bool {
						return f.HighRisk || f.Dispersed || f.TotalScore <= 2
					},
				},
				expectedRule("key_account_expected"),
			},
			domain.SizeCoreSeller: {
				{
					Name:      "core_seller_top",
					Level:     domain.LevelTop,
					Condition: "total >= 5 AND NOT alto_riesgo AND NOT Disperso",
					When: func(f Facts) bool {
						return f.TotalScore >= 5 && !f.HighRisk && !f.Dispersed
					},
				},
				{
					Name:      "core_seller_low",
					Level:     domain.LevelLow,
					Condition: "alto_riesgo OR total <= 1",
					When: func(f Facts) bool {
						return f.HighRisk || f.TotalScore <= 1
					},
				},
				expectedRule("core_seller_expected"),
			},
			domain.SizeLocalHero: {
				{
					Name:      "local_hero_top",
					Level:     domain.LevelTop,
					Condition: "qual_score == 2 AND total >= 5 AND NOT Disperso",
					When: func(f Facts) bool {
						return f.QualScore == 2 && f.TotalScore >= 5 && !f.Dispersed
					},
				},
				{
					Name:      "local_hero_low",
					Level:     domain.LevelLow,
					Condition: "alto_riesgo OR (total <= 2 AND Disperso)",
					When: func(f Facts) bool {
						return f.HighRisk || (f.TotalScore <= 2 && f.Dispersed)
					},
				},
				expectedRule("local_hero_expected"),
			},
			domain.SizeLongTail: {
				{
					Name:      "long_tail_top",
					Level:     domain.LevelTop,
					Condition: "total >= 4 AND div_score >= 1 AND qual_score >= 1 AND log_score >= 1",
					When: func(f Facts) bool {
						return f.TotalScore >= 4 && f.DivScore >= 1 && f.QualScore >= 1 && f.LogScore >= 1
					},
				},
				{
					Name:      "long_tail_low",
					Level:     domain.LevelLow,
					Condition: "alto_riesgo OR total <= 1",
					When: func(f Facts) bool {
						return f.HighRisk || f.TotalScore <= 1
					},
				},
				expectedRule("long_tail_expected"),
			},
		},
		Sizes:    append([]string(nil), domain.SellerSizes...),
		Fallback: domain.LevelExpected,
	}
}

func expectedRule(name string) Rule {
	return Rule{
		Name:      name,
		Level:     domain.LevelExpected,
		Condition: "otherwise",
		When:      func(Facts) bool { return true },
	}
}

// Decide runs the rulebook over f. First match wins.
func (rb *Rulebook) Decide(f Facts) Decision {
	for _, r := range rb.Global {
		if r.When(f) {
			return Decision{Level: r.Level, Rule: r.Name}
		}
	}
	for _, r := range rb.BySize[f.SellerSize] {
		if r.When(f) {
			return Decision{Level: r.Level, Rule: r.Name}
		}
	}
	return Decision{Level: rb.Fallback, Rule: FallbackRuleName}
}

// Explain lists every rule evaluated for f, up to and including the match.
func (rb *Rulebook) Explain(f Facts) []RuleCheck {
	var checks []RuleCheck
	for _, rules := range [][]Rule{rb.Global, rb.BySize[f.SellerSize]} {
		for _, r := range rules {
			matched := r.When(f)
			checks = append(checks, RuleCheck{Rule: r.Name, Level: r.Level, Matched: matched})
			if matched {
				return checks
			}
		}
	}
	return append(checks, RuleCheck{Rule: FallbackRuleName, Level: rb.Fallback, Matched: true})
}
