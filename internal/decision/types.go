package decision

// Facts are the inputs a performance rule may look at.
type Facts struct {
	SellerSize      string
	Diversification string
	Quality         string
	LogisticType    string

	DivScore   int
	QualScore  int
	LogScore   int
	TotalScore int

	// Risk flags derived from the bucket labels
	HighRisk  bool // quality == alto_riesgo
	Dispersed bool // diversification == Disperso
	FBM       bool // logistic_type == FBM
}

// Rule assigns Level when When holds.
type Rule struct {
	Name      string // stable identifier, recorded on the performance row
	Level     string
	Condition string // human-readable form of When, rendered in reports
	When      func(Facts) bool
}

// Rulebook is an ordered decision list.
// Global rules run first, then the rules for the seller's size tier.
// The first matching rule wins; Fallback applies when none match.
type Rulebook struct {
	Global   []Rule
	BySize   map[string][]Rule
	Sizes    []string // render order for BySize
	Fallback string
}

// Decision is the outcome of running a Rulebook.
type Decision struct {
	Level string
	Rule  string // matched rule name, "fallback" when none matched
}

// FallbackRuleName is recorded when no rule matched.
const FallbackRuleName = "fallback"

// RuleCheck records one rule evaluated while classifying a seller.
type RuleCheck struct {
	Rule    string
	Level   string
	Matched bool
}
