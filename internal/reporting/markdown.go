package reporting

import (
	"fmt"
	"strings"
	"time"
)

// RenderMarkdown renders report as Markdown string.
func RenderMarkdown(r *Report) string {
	var sb strings.Builder

	// Header
	sb.WriteString("# Seller Segmentation Report\n\n")
	sb.WriteString(fmt.Sprintf("Generated: %s\n\n", r.GeneratedAt.Format(time.RFC3339)))
	sb.WriteString(fmt.Sprintf("Run: `%s`\n\n", r.RunID))

	// Data Summary
	d := r.DataSummary
	sb.WriteString("## Data Summary\n\n")
	sb.WriteString("| Metric | Value |\n")
	sb.WriteString("|--------|-------|\n")
	if d.Source != "" {
		sb.WriteString(fmt.Sprintf("| Source | %s |\n", d.Source))
	}
	sb.WriteString(fmt.Sprintf("| Items Loaded | %d |\n", d.ItemsLoaded))
	sb.WriteString(fmt.Sprintf("| Dropped (missing price) | %d |\n", d.DroppedMissingPrice))
	sb.WriteString(fmt.Sprintf("| Price Outliers | %d |\n", d.PriceOutliers))
	sb.WriteString(fmt.Sprintf("| Curated Items | %d |\n", d.ItemsCurated))
	sb.WriteString(fmt.Sprintf("| Sellers | %d |\n", d.Sellers))
	sb.WriteString(fmt.Sprintf("| Sellers Scored | %d |\n", d.SellersScored))
	sb.WriteString(fmt.Sprintf("| Scoring Errors | %d |\n", d.ScoringErrors))
	sb.WriteString("\n")

	sb.WriteString("### Cut Points\n\n")
	sb.WriteString("| Cut | Value |\n")
	sb.WriteString("|-----|-------|\n")
	sb.WriteString(fmt.Sprintf("| price p99 | %.2f |\n", d.PriceP99))
	sb.WriteString(fmt.Sprintf("| stock p95 | %.2f |\n", d.StockP95))
	sb.WriteString(fmt.Sprintf("| stock max | %.2f |\n", d.StockMax))
	sb.WriteString(fmt.Sprintf("| total_value q30 (Local Hero) | %.2f |\n", d.SizeQ30))
	sb.WriteString(fmt.Sprintf("| total_value q60 (Core Seller) | %.2f |\n", d.SizeQ60))
	sb.WriteString(fmt.Sprintf("| total_value q90 (Key Account) | %.2f |\n", d.SizeQ90))
	sb.WriteString("\n")

	// Data Quality
	sb.WriteString("## Data Quality\n\n")
	if len(r.DataQuality.SufficiencyChecks) > 0 {
		sb.WriteString("### Quality Checks\n\n")
		sb.WriteString("| Check | Threshold | Actual | Status |\n")
		sb.WriteString("|-------|-----------|--------|--------|\n")
		for _, check := range r.DataQuality.SufficiencyChecks {
			status := "FAIL"
			if check.Pass {
				status = "PASS"
			}
			sb.WriteString(fmt.Sprintf("| %s | %s | %s | %s |\n",
				check.Name, check.Threshold, check.Actual, status))
		}
		sb.WriteString("\n")

		if r.DataQuality.AllChecksPassed {
			sb.WriteString("**All checks passed.**\n\n")
		} else {
			sb.WriteString("**Some checks failed.** Review the segments below with care.\n\n")
		}
	} else if len(r.DataQuality.IntegrityErrors) == 0 {
		sb.WriteString("No data quality checks performed.\n\n")
	}

	// Integrity errors (always shown if present, even without quality checks)
	if len(r.DataQuality.IntegrityErrors) > 0 {
		sb.WriteString("### Integrity Errors\n\n")
		for _, err := range r.DataQuality.IntegrityErrors {
			sb.WriteString(fmt.Sprintf("- %s\n", err))
		}
		sb.WriteString("\n")
	}

	// Distributions
	writeDistribution(&sb, "Performance Level Distribution", "Level", r.LevelDistribution)
	writeDistribution(&sb, "Seller Size Distribution", "Size", r.SizeDistribution)
	writeDistribution(&sb, "Segment Distribution", "Segment", r.SegmentDistribution)

	// Strategies
	if r.Strategies.Generated > 0 {
		sb.WriteString("## Strategies\n\n")
		sb.WriteString(fmt.Sprintf("Generated: %d | Failed: %d\n\n", r.Strategies.Generated, r.Strategies.Failed))
	}

	// Decision configuration
	if r.ScoreTablesMarkdown != "" {
		sb.WriteString("## Score Tables\n\n")
		sb.WriteString(r.ScoreTablesMarkdown)
		sb.WriteString("\n")
	}
	if r.RulesMarkdown != "" {
		sb.WriteString("## Performance Rules\n\n")
		sb.WriteString(r.RulesMarkdown)
		sb.WriteString("\n")
	}

	// Reproducibility
	rep := r.Reproducibility
	if rep.GeneratorVersion != "" {
		sb.WriteString("## Reproducibility\n\n")
		sb.WriteString("| Field | Value |\n")
		sb.WriteString("|-------|-------|\n")
		sb.WriteString(fmt.Sprintf("| Report Timestamp | %s |\n", rep.ReportTimestamp.Format(time.RFC3339)))
		sb.WriteString(fmt.Sprintf("| Generator Version | %s |\n", rep.GeneratorVersion))
		sb.WriteString(fmt.Sprintf("| Data Version | %s |\n", rep.DataVersion))
		sb.WriteString(fmt.Sprintf("| Run ID | %s |\n", rep.RunID))
		if rep.ReplayCommand != "" {
			sb.WriteString(fmt.Sprintf("| Replay Command | `%s` |\n", rep.ReplayCommand))
		}
		sb.WriteString("\n")
	}

	return sb.String()
}

func writeDistribution(sb *strings.Builder, title, column string, rows []DistributionRow) {
	sb.WriteString(fmt.Sprintf("## %s\n\n", title))
	if len(rows) == 0 {
		sb.WriteString("No scored sellers.\n\n")
		return
	}
	sb.WriteString(fmt.Sprintf("| %s | Sellers | %% |\n", column))
	sb.WriteString("|---|---|---|\n")
	for _, row := range rows {
		sb.WriteString(fmt.Sprintf("| %s | %d | %.2f |\n", row.Label, row.Count, row.Pct))
	}
	sb.WriteString("\n")
}
