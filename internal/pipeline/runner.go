package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/ingestion"
	"seller-segment-lab/internal/orchestrator"
	"seller-segment-lab/internal/storage"
	"seller-segment-lab/internal/storage/backend"
	"seller-segment-lab/internal/strategy"
	"seller-segment-lab/internal/verification"
)

// RunnerOptions configures a Runner.
type RunnerOptions struct {
	Source      ingestion.ItemSource
	SourceLabel string // SourceFixtures or the input CSV path

	Stores    *backend.Stores
	OutputDir string

	QualityThresholds *QualityThresholds // nil uses DefaultQualityThresholds
	Clock             func() time.Time
	Verbose           bool
	Logger            *log.Logger
}

// Runner ties the orchestrator to the output files and strategy generation.
type Runner struct {
	opts RunnerOptions
	orch *orchestrator.Orchestrator
}

// NewRunner creates a runner.
func NewRunner(opts RunnerOptions) *Runner {
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	return &Runner{
		opts: opts,
		orch: orchestrator.New(orchestrator.Options{
			Source:         opts.Source,
			SourceLabel:    opts.SourceLabel,
			RunStore:       opts.Stores.RunStore,
			CleanItemStore: opts.Stores.CleanItemStore,
			SellerStore:    opts.Stores.SellerStore,
			Clock:          opts.Clock,
			Verbose:        opts.Verbose,
			Logger:         opts.Logger,
		}),
	}
}

func (r *Runner) pipeline() *Pipeline {
	p := NewPipeline(r.opts.Stores.RunStore, r.opts.Stores.SellerStore, r.opts.Stores.StrategyStore, r.opts.OutputDir).
		WithClock(r.opts.Clock).
		WithEvaluator(r.orch.Evaluator()).
		WithDataSource(r.opts.SourceLabel)
	if r.opts.QualityThresholds != nil {
		p = p.WithQualityThresholds(*r.opts.QualityThresholds)
	}
	return p
}

// Prepare cleans the dataset and writes the curated and outlier files.
func (r *Runner) Prepare(ctx context.Context) (*orchestrator.Prepared, error) {
	prep, err := r.orch.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.pipeline().WritePrepared(prep); err != nil {
		return nil, fmt.Errorf("write prepared dataset: %w", err)
	}
	return prep, nil
}

// Segment runs the full segmentation and writes every output file.
func (r *Runner) Segment(ctx context.Context) (*orchestrator.RunResult, error) {
	res, err := r.orch.Run(ctx)
	if err != nil {
		return nil, err
	}
	if err := r.pipeline().Run(ctx, res); err != nil {
		return nil, fmt.Errorf("write outputs: %w", err)
	}
	return res, nil
}

// Verify re-scores the stored sellers of runID and compares them with the stored rows.
func (r *Runner) Verify(ctx context.Context, runID string) (*verification.StoreReport, error) {
	v := verification.NewStoreVerifier(r.opts.Stores.RunStore, r.opts.Stores.SellerStore, r.orch.Evaluator())
	return v.VerifyRun(ctx, runID)
}

// StrategyOptions configures strategy generation.
type StrategyOptions struct {
	Completer strategy.Completer // nil captures ErrMissingAPIKey for every seller
	Playbook  *strategy.Playbook
	All       bool // every seller instead of one per demo segment
}

// GenerateStrategies generates strategies for sellers, writes strategies_sample.csv
// and stores the records under runID. Records already stored for the run are kept.
func (r *Runner) GenerateStrategies(ctx context.Context, runID string, sellers []*domain.SellerPerformance, opts StrategyOptions) ([]*domain.StrategyRecord, error) {
	targets := make([]strategy.Target, len(sellers))
	for i, s := range sellers {
		targets[i] = strategy.TargetFromPerformance(s)
	}
	if !opts.All {
		targets = strategy.SampleTargets(targets, strategy.DemoLevels)
	}

	gen := strategy.NewGenerator(strategy.GeneratorOptions{
		Completer: opts.Completer,
		Playbook:  opts.Playbook,
		RunID:     runID,
		Clock:     r.opts.Clock,
		Logger:    r.opts.Logger,
	})
	records, err := gen.GenerateAll(ctx, targets)
	if err != nil {
		return records, fmt.Errorf("generate strategies: %w", err)
	}

	if err := r.pipeline().WriteStrategies(records); err != nil {
		return records, err
	}
	if err := r.storeStrategies(ctx, records); err != nil {
		return records, err
	}
	return records, nil
}

func (r *Runner) storeStrategies(ctx context.Context, records []*domain.StrategyRecord) error {
	store := r.opts.Stores.StrategyStore
	if store == nil {
		return nil
	}
	for _, rec := range records {
		if err := store.Insert(ctx, rec); err != nil {
			if errors.Is(err, storage.ErrDuplicateKey) {
				continue
			}
			return fmt.Errorf("store strategy for %s: %w", rec.SellerID, err)
		}
	}
	return nil
}
