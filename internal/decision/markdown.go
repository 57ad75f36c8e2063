package decision

import (
	"fmt"
	"sort"
	"strings"
)

// RenderRulesMarkdown renders the rulebook as Markdown tables, one per scope,
// in evaluation order.
func RenderRulesMarkdown(rb *Rulebook) string {
	var sb strings.Builder

	sb.WriteString("### Global Rules\n\n")
	writeRuleTable(&sb, rb.Global)

	for _, size := range rb.Sizes {
		rules, ok := rb.BySize[size]
		if !ok {
			continue
		}
		sb.WriteString(fmt.Sprintf("### %s\n\n", size))
		writeRuleTable(&sb, rules)
	}

	sb.WriteString(fmt.Sprintf("Fallback for any other size: %s\n", rb.Fallback))
	return sb.String()
}

func writeRuleTable(sb *strings.Builder, rules []Rule) {
	sb.WriteString("| # | Rule | Condition | Level |\n")
	sb.WriteString("|---|------|-----------|-------|\n")
	for i, r := range rules {
		sb.WriteString(fmt.Sprintf("| %d | %s | %s | %s |\n", i+1, r.Name, r.Condition, r.Level))
	}
	sb.WriteString("\n")
}

// RenderScoreTablesMarkdown renders the axis score tables.
func RenderScoreTablesMarkdown(tables ScoreTables) string {
	var sb strings.Builder
	for _, t := range []ScoreTable{tables.Diversification, tables.Quality, tables.Logistic} {
		sb.WriteString(fmt.Sprintf("### %s\n\n", t.Axis))
		sb.WriteString("| Label | Score |\n")
		sb.WriteString("|-------|-------|\n")

		labels := make([]string, 0, len(t.Scores))
		for label := range t.Scores {
			labels = append(labels, label)
		}
		sort.Slice(labels, func(i, j int) bool {
			si, sj := t.Scores[labels[i]], t.Scores[labels[j]]
			if si != sj {
				return si > sj
			}
			return labels[i] < labels[j]
		})
		for _, label := range labels {
			sb.WriteString(fmt.Sprintf("| %s | %d |\n", label, t.Scores[label]))
		}
		if t.Default != nil {
			sb.WriteString(fmt.Sprintf("| (other) | %d |\n", *t.Default))
		} else {
			sb.WriteString("| (other) | error |\n")
		}
		sb.WriteString("\n")
	}
	return sb.String()
}
