package strategy

import (
	"context"
	"fmt"
	"log"
	"time"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/observability"
)

// ErrorPrefix marks strategy text that holds a captured failure.
const ErrorPrefix = "[ERROR calling language model]"

// Target is the seller triple the generator consumes.
type Target struct {
	SellerID         string
	SellerSize       string
	PerformanceLevel string
}

// TargetFromPerformance extracts the generator input from a scored seller.
func TargetFromPerformance(p *domain.SellerPerformance) Target {
	return Target{
		SellerID:         p.SellerID,
		SellerSize:       p.SellerSize,
		PerformanceLevel: p.PerformanceLevel,
	}
}

// DemoLevels are the levels sampled by SampleTargets by default.
var DemoLevels = []string{domain.LevelDiamond, domain.LevelTop, domain.LevelLow}

// SampleTargets keeps the first target per (size, level) among levels,
// preserving input order.
func SampleTargets(targets []Target, levels []string) []Target {
	allowed := make(map[string]bool, len(levels))
	for _, l := range levels {
		allowed[l] = true
	}

	seen := make(map[PlaybookKey]bool)
	var out []Target
	for _, t := range targets {
		if !allowed[t.PerformanceLevel] {
			continue
		}
		key := PlaybookKey{SellerSize: t.SellerSize, PerformanceLevel: t.PerformanceLevel}
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// Generator produces strategy text for sellers through a Completer.
type Generator struct {
	completer Completer
	playbook  *Playbook
	runID     string
	clock     func() time.Time
	logger    *log.Logger
}

// GeneratorOptions configures a Generator.
type GeneratorOptions struct {
	Completer Completer
	Playbook  *Playbook // nil uses DefaultPlaybook
	RunID     string
	Clock     func() time.Time
	Logger    *log.Logger
}

// NewGenerator creates a strategy generator.
func NewGenerator(opts GeneratorOptions) *Generator {
	playbook := opts.Playbook
	if playbook == nil {
		playbook = DefaultPlaybook()
	}
	clock := opts.Clock
	if clock == nil {
		clock = time.Now
	}
	return &Generator{
		completer: opts.Completer,
		playbook:  playbook,
		runID:     opts.RunID,
		clock:     clock,
		logger:    opts.Logger,
	}
}

// Generate produces the strategy for one seller.
// A completer failure is captured in the record with Failed set; it is never returned.
func (g *Generator) Generate(ctx context.Context, t Target) *domain.StrategyRecord {
	rec := &domain.StrategyRecord{
		RunID:            g.runID,
		SellerID:         t.SellerID,
		SellerSize:       t.SellerSize,
		PerformanceLevel: t.PerformanceLevel,
	}

	start := time.Now()
	text, err := g.complete(ctx, BuildPrompt(t, g.playbook))
	observability.RecordStrategyGenerated(err != nil, time.Since(start).Seconds())

	if err != nil {
		rec.Strategy = fmt.Sprintf("%s: %v", ErrorPrefix, err)
		rec.Failed = true
		if g.logger != nil {
			g.logger.Printf("strategy for %s failed: %v", t.SellerID, err)
		}
	} else {
		rec.Strategy = text
	}
	rec.GeneratedAt = g.clock().UnixMilli()
	return rec
}

func (g *Generator) complete(ctx context.Context, prompt string) (string, error) {
	if g.completer == nil {
		return "", ErrMissingAPIKey
	}
	return g.completer.Complete(ctx, SystemPrompt, prompt)
}

// GenerateAll produces strategies sequentially, in target order.
// Per-seller failures are captured in their records; only context
// cancellation stops the batch.
func (g *Generator) GenerateAll(ctx context.Context, targets []Target) ([]*domain.StrategyRecord, error) {
	records := make([]*domain.StrategyRecord, 0, len(targets))
	for i, t := range targets {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		if g.logger != nil {
			g.logger.Printf("generating strategy %d/%d: %s (%s)", i+1, len(targets), t.SellerID, domain.Segment(t.SellerSize, t.PerformanceLevel))
		}
		records = append(records, g.Generate(ctx, t))
	}
	return records, nil
}
