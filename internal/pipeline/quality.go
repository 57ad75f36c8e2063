package pipeline

import (
	"fmt"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/orchestrator"
)

// QualityCheck represents one data quality criterion.
type QualityCheck struct {
	Name      string
	Threshold string
	Actual    string
	Pass      bool
}

// QualityResult contains all quality checks.
type QualityResult struct {
	Checks  []QualityCheck
	AllPass bool
	Errors  []string // data integrity errors
}

// QualityThresholds bound the acceptable input defects.
// Shares are fractions in [0, 1].
type QualityThresholds struct {
	MaxMissingPriceShare      float64
	MaxOutlierShare           float64
	MaxUnknownReputationShare float64
	MaxUnknownConditionShare  float64
	MinSellers                int
	MaxScoringErrors          int
}

// DefaultQualityThresholds returns the thresholds used by the CLI.
func DefaultQualityThresholds() QualityThresholds {
	return QualityThresholds{
		MaxMissingPriceShare:      0.05,
		MaxOutlierShare:           0.02,
		MaxUnknownReputationShare: 0.20,
		MaxUnknownConditionShare:  0.05,
		MinSellers:                10,
		MaxScoringErrors:          0,
	}
}

// QualityChecker validates a finished run against quality thresholds.
type QualityChecker struct {
	thresholds QualityThresholds
}

// NewQualityChecker creates a new quality checker.
func NewQualityChecker(thresholds QualityThresholds) *QualityChecker {
	return &QualityChecker{thresholds: thresholds}
}

// Check performs all quality checks over a run result.
// res.Errors are carried over as integrity errors.
func (c *QualityChecker) Check(res *orchestrator.RunResult) *QualityResult {
	result := &QualityResult{
		Checks:  make([]QualityCheck, 0, 6),
		AllPass: true,
		Errors:  append([]string{}, res.Errors...),
	}

	checks := []QualityCheck{
		c.checkMissingPrice(res),
		c.checkOutliers(res),
		c.checkUnknownReputation(res),
		c.checkUnknownCondition(res),
		c.checkSellerCount(res),
		c.checkScoringErrors(res),
	}
	for _, check := range checks {
		result.Checks = append(result.Checks, check)
		if !check.Pass {
			result.AllPass = false
		}
	}
	if len(result.Errors) > 0 {
		result.AllPass = false
	}
	return result
}

// checkMissingPrice: rows without price / rows loaded.
func (c *QualityChecker) checkMissingPrice(res *orchestrator.RunResult) QualityCheck {
	dropped := res.Cleaning.DroppedMissingPrice
	share := ratio(dropped, len(res.Items))
	return QualityCheck{
		Name:      "Rows with missing price",
		Threshold: fmt.Sprintf("<= %s", formatPct(c.thresholds.MaxMissingPriceShare)),
		Actual:    fmt.Sprintf("%s (%d/%d)", formatPct(share), dropped, len(res.Items)),
		Pass:      share <= c.thresholds.MaxMissingPriceShare,
	}
}

// checkOutliers: priced rows outside (0, p99] / priced rows.
func (c *QualityChecker) checkOutliers(res *orchestrator.RunResult) QualityCheck {
	outliers := len(res.Cleaning.Outliers)
	priced := len(res.Items) - res.Cleaning.DroppedMissingPrice
	share := ratio(outliers, priced)
	return QualityCheck{
		Name:      "Price outlier share",
		Threshold: fmt.Sprintf("<= %s", formatPct(c.thresholds.MaxOutlierShare)),
		Actual:    fmt.Sprintf("%s (%d/%d)", formatPct(share), outliers, priced),
		Pass:      share <= c.thresholds.MaxOutlierShare,
	}
}

// checkUnknownReputation: sellers with no observed reputation / sellers.
func (c *QualityChecker) checkUnknownReputation(res *orchestrator.RunResult) QualityCheck {
	unknown := 0
	for _, p := range res.Profiles {
		if p.Reputation == domain.UnknownReputation {
			unknown++
		}
	}
	share := ratio(unknown, len(res.Profiles))
	return QualityCheck{
		Name:      "Sellers with unknown reputation",
		Threshold: fmt.Sprintf("<= %s", formatPct(c.thresholds.MaxUnknownReputationShare)),
		Actual:    fmt.Sprintf("%s (%d/%d)", formatPct(share), unknown, len(res.Profiles)),
		Pass:      share <= c.thresholds.MaxUnknownReputationShare,
	}
}

// checkUnknownCondition: curated items whose condition is not new/used/refurbished.
func (c *QualityChecker) checkUnknownCondition(res *orchestrator.RunResult) QualityCheck {
	unknown := 0
	for _, it := range res.Curated {
		switch it.Condition {
		case domain.ConditionNew, domain.ConditionUsed, domain.ConditionRefurbished:
		default:
			unknown++
		}
	}
	share := ratio(unknown, len(res.Curated))
	return QualityCheck{
		Name:      "Items with unrecognized condition",
		Threshold: fmt.Sprintf("<= %s", formatPct(c.thresholds.MaxUnknownConditionShare)),
		Actual:    fmt.Sprintf("%s (%d/%d)", formatPct(share), unknown, len(res.Curated)),
		Pass:      share <= c.thresholds.MaxUnknownConditionShare,
	}
}

// checkSellerCount: size tiers are batch-relative, so tiny batches are unreliable.
func (c *QualityChecker) checkSellerCount(res *orchestrator.RunResult) QualityCheck {
	n := len(res.Profiles)
	return QualityCheck{
		Name:      "Sellers profiled",
		Threshold: fmt.Sprintf(">= %d", c.thresholds.MinSellers),
		Actual:    fmt.Sprintf("%d", n),
		Pass:      n >= c.thresholds.MinSellers,
	}
}

// checkScoringErrors: sellers left out of the performance table.
func (c *QualityChecker) checkScoringErrors(res *orchestrator.RunResult) QualityCheck {
	n := 0
	if res.Run != nil {
		n = res.Run.ScoringErrors
	}
	return QualityCheck{
		Name:      "Sellers failing scoring",
		Threshold: fmt.Sprintf("<= %d", c.thresholds.MaxScoringErrors),
		Actual:    fmt.Sprintf("%d", n),
		Pass:      n <= c.thresholds.MaxScoringErrors,
	}
}

func ratio(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total)
}

func formatPct(share float64) string {
	return fmt.Sprintf("%.1f%%", share*100)
}
