package reporting

import (
	"context"
	"fmt"
	"sort"
	"time"

	"seller-segment-lab/internal/decision"
	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
)

// Generator produces reports from stored data.
type Generator struct {
	runStore      storage.RunStore
	sellerStore   storage.SellerStore
	strategyStore storage.StrategyStore // optional
	evaluator     *decision.Evaluator   // optional, renders rules and score tables
	now           func() time.Time      // Injectable clock for deterministic output
}

// NewGenerator creates a new report generator.
// strategyStore may be nil when strategies are not persisted.
func NewGenerator(
	runStore storage.RunStore,
	sellerStore storage.SellerStore,
	strategyStore storage.StrategyStore,
) *Generator {
	return &Generator{
		runStore:      runStore,
		sellerStore:   sellerStore,
		strategyStore: strategyStore,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (g *Generator) WithClock(now func() time.Time) *Generator {
	g.now = now
	return g
}

// WithEvaluator includes the evaluator's score tables and rulebook in the report.
func (g *Generator) WithEvaluator(ev *decision.Evaluator) *Generator {
	g.evaluator = ev
	return g
}

// Generate produces the report for runID, or for the latest run when runID is empty.
func (g *Generator) Generate(ctx context.Context, runID string) (*Report, error) {
	run, err := g.loadRun(ctx, runID)
	if err != nil {
		return nil, err
	}

	sellers, err := g.sellerStore.GetByRun(ctx, run.RunID)
	if err != nil {
		return nil, fmt.Errorf("load sellers for run %s: %w", run.RunID, err)
	}

	report := &Report{
		GeneratedAt:         g.now(),
		RunID:               run.RunID,
		DataSummary:         summaryFromRun(run),
		LevelDistribution:   LevelDistribution(sellers),
		SizeDistribution:    SizeDistribution(sellers),
		SegmentDistribution: SegmentDistribution(sellers),
	}

	if g.strategyStore != nil {
		records, err := g.strategyStore.GetByRun(ctx, run.RunID)
		if err != nil {
			return nil, fmt.Errorf("load strategies for run %s: %w", run.RunID, err)
		}
		report.Strategies = SummarizeStrategies(records)
	}

	if g.evaluator != nil {
		report.ScoreTablesMarkdown = decision.RenderScoreTablesMarkdown(g.evaluator.Tables())
		report.RulesMarkdown = decision.RenderRulesMarkdown(g.evaluator.Rulebook())
	}

	return report, nil
}

func (g *Generator) loadRun(ctx context.Context, runID string) (*domain.Run, error) {
	if runID == "" {
		run, err := g.runStore.GetLatest(ctx)
		if err != nil {
			return nil, fmt.Errorf("load latest run: %w", err)
		}
		return run, nil
	}
	run, err := g.runStore.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("load run %s: %w", runID, err)
	}
	return run, nil
}

func summaryFromRun(run *domain.Run) DataSummary {
	return DataSummary{
		Source:              run.Source,
		ItemsLoaded:         run.ItemsLoaded,
		DroppedMissingPrice: run.DroppedMissingPrice,
		PriceOutliers:       run.PriceOutliers,
		ItemsCurated:        run.ItemsCurated,
		Sellers:             run.Sellers,
		SellersScored:       run.SellersScored,
		ScoringErrors:       run.ScoringErrors,
		PriceP99:            run.PriceP99,
		StockP95:            run.StockP95,
		StockMax:            run.StockMax,
		SizeQ30:             run.SizeQ30,
		SizeQ60:             run.SizeQ60,
		SizeQ90:             run.SizeQ90,
	}
}

// SummarizeStrategies counts generated and failed strategy records.
func SummarizeStrategies(records []*domain.StrategyRecord) StrategySummary {
	var s StrategySummary
	for _, r := range records {
		s.Generated++
		if r.Failed {
			s.Failed++
		}
	}
	return s
}

// LevelDistribution counts sellers per performance_level.
func LevelDistribution(sellers []*domain.SellerPerformance) []DistributionRow {
	return distribution(sellers, domain.PerformanceLevels, func(p *domain.SellerPerformance) string {
		return p.PerformanceLevel
	})
}

// SizeDistribution counts sellers per seller_size.
func SizeDistribution(sellers []*domain.SellerPerformance) []DistributionRow {
	return distribution(sellers, domain.SellerSizes, func(p *domain.SellerPerformance) string {
		return p.SellerSize
	})
}

// SegmentDistribution counts sellers per performance_segment.
func SegmentDistribution(sellers []*domain.SellerPerformance) []DistributionRow {
	order := make([]string, 0, len(domain.SellerSizes)*len(domain.PerformanceLevels))
	for _, size := range domain.SellerSizes {
		for _, level := range domain.PerformanceLevels {
			order = append(order, domain.Segment(size, level))
		}
	}
	return distribution(sellers, order, func(p *domain.SellerPerformance) string {
		return domain.Segment(p.SellerSize, p.PerformanceLevel)
	})
}

// distribution counts labels and orders rows by the canonical order,
// followed by any other label alphabetically. Labels with no sellers are omitted.
func distribution(sellers []*domain.SellerPerformance, order []string, label func(*domain.SellerPerformance) string) []DistributionRow {
	counts := make(map[string]int)
	for _, s := range sellers {
		counts[label(s)]++
	}

	rank := make(map[string]int, len(order))
	for i, l := range order {
		rank[l] = i
	}

	labels := make([]string, 0, len(counts))
	for l := range counts {
		labels = append(labels, l)
	}
	sort.Slice(labels, func(i, j int) bool {
		ri, iKnown := rank[labels[i]]
		rj, jKnown := rank[labels[j]]
		switch {
		case iKnown && jKnown:
			return ri < rj
		case iKnown != jKnown:
			return iKnown
		default:
			return labels[i] < labels[j]
		}
	})

	rows := make([]DistributionRow, len(labels))
	for i, l := range labels {
		rows[i] = DistributionRow{
			Label: l,
			Count: counts[l],
			Pct:   float64(counts[l]) / float64(len(sellers)) * 100,
		}
	}
	return rows
}
