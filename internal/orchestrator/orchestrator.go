// Package orchestrator provides end-to-end segmentation orchestration.
// It coordinates: load → cleaning → aggregation → bucketing → scoring → persistence → verification
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"time"

	"seller-segment-lab/internal/cleaning"
	"seller-segment-lab/internal/decision"
	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/idhash"
	"seller-segment-lab/internal/ingestion"
	"seller-segment-lab/internal/metrics"
	"seller-segment-lab/internal/observability"
	"seller-segment-lab/internal/segmentation"
	"seller-segment-lab/internal/storage"
	"seller-segment-lab/internal/verification"
)

// Orchestrator coordinates the segmentation run.
type Orchestrator struct {
	source      ingestion.ItemSource
	sourceLabel string

	// Stores (all optional; nil skips persistence of that table)
	runStore       storage.RunStore
	cleanItemStore storage.CleanItemStore
	sellerStore    storage.SellerStore

	// Configs
	aggregator *metrics.Aggregator
	quantiles  segmentation.SizeQuantiles
	evaluator  *decision.Evaluator

	// Options
	skipVerification bool
	clock            func() time.Time
	verbose          bool
	logger           *log.Logger
}

// Options for creating Orchestrator.
type Options struct {
	// Required source
	Source      ingestion.ItemSource
	SourceLabel string // recorded on the run, e.g. the input path

	// Optional stores
	RunStore       storage.RunStore
	CleanItemStore storage.CleanItemStore
	SellerStore    storage.SellerStore

	// Segmentation configs (zero values use the defaults)
	ReputationScores metrics.ReputationScores // nil uses metrics.DefaultReputationScores
	SizeQuantiles    segmentation.SizeQuantiles
	Evaluator        *decision.Evaluator

	// Options
	SkipVerification bool
	Clock            func() time.Time
	Verbose          bool
	Logger           *log.Logger // nil logs through the standard logger
}

// New creates a new Orchestrator.
func New(opts Options) *Orchestrator {
	quantiles := opts.SizeQuantiles
	if quantiles == (segmentation.SizeQuantiles{}) {
		quantiles = segmentation.DefaultSizeQuantiles()
	}
	evaluator := opts.Evaluator
	if evaluator == nil {
		evaluator = decision.NewEvaluator(decision.DefaultScoreTables(), decision.DefaultRulebook())
	}
	clock := opts.Clock
	if clock == nil {
		clock = func() time.Time { return time.Now().UTC() }
	}
	return &Orchestrator{
		source:           opts.Source,
		sourceLabel:      opts.SourceLabel,
		runStore:         opts.RunStore,
		cleanItemStore:   opts.CleanItemStore,
		sellerStore:      opts.SellerStore,
		aggregator:       metrics.NewAggregator(opts.ReputationScores),
		quantiles:        quantiles,
		evaluator:        evaluator,
		skipVerification: opts.SkipVerification,
		clock:            clock,
		verbose:          opts.Verbose,
		logger:           opts.Logger,
	}
}

// Evaluator returns the evaluator used for scoring.
func (o *Orchestrator) Evaluator() *decision.Evaluator {
	return o.evaluator
}

// Prepared holds the loaded and cleaned dataset.
type Prepared struct {
	DatasetVersion string
	Items          []*domain.Item      // raw rows, source order
	Cleaning       *cleaning.Result    // price/stock cleaning output
	Curated        []*domain.CleanItem // clean rows with imputed reputation
}

// RunResult contains results from orchestrator execution.
type RunResult struct {
	Prepared

	Run          *domain.Run
	Profiles     []*domain.SellerProfile     // bucketed, sorted by seller id
	Performance  []*domain.SellerPerformance // scored sellers only, sorted by seller id
	Thresholds   segmentation.SizeThresholds
	Verification *verification.Report // nil when verification is skipped

	ScoringErrors map[string]string // seller id -> why it could not be scored
	Errors        []string          // per-seller scoring errors and invariant violations
}

// Prepare loads the dataset, cleans prices and stock, and imputes reputation.
func (o *Orchestrator) Prepare(ctx context.Context) (*Prepared, error) {
	// Phase 1: Load items
	o.log("Phase 1: Loading items...")
	if o.source == nil {
		return nil, errors.New("phase 1 (load items) failed: no item source configured")
	}
	items, err := o.source.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("phase 1 (load items) failed: %w", err)
	}
	o.log("  Loaded %d items", len(items))

	// Phase 2: Cleaning
	o.log("Phase 2: Cleaning prices and stock...")
	res := cleaning.CleanPriceAndStock(items)
	curated := cleaning.ImputeSellerReputation(res.Clean)
	observability.RecordCleaning(len(items), res.DroppedMissingPrice, len(res.Outliers), len(curated))
	o.log("  Kept %d items (%d missing price, %d outliers, p99=%.2f)",
		len(curated), res.DroppedMissingPrice, len(res.Outliers), res.PriceP99)

	return &Prepared{
		DatasetVersion: idhash.ComputeDatasetVersion(items),
		Items:          items,
		Cleaning:       res,
		Curated:        curated,
	}, nil
}

// Run executes the full segmentation pipeline.
// Phases:
//  1. Load items
//  2. Clean prices/stock and impute reputation
//  3. Aggregate sellers
//  4. Bucket sellers (size, diversification, quality)
//  5. Score performance
//  6. Persist run, curated items and sellers
//  7. Verify invariants
func (o *Orchestrator) Run(ctx context.Context) (result *RunResult, err error) {
	start := time.Now()
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
		}
		observability.RecordPipelineRun("segment", status, time.Since(start).Seconds())
		if err == nil {
			observability.RecordPipelineSuccess(o.clock().Unix())
		}
	}()

	prep, err := o.Prepare(ctx)
	if err != nil {
		return nil, err
	}
	result = &RunResult{Prepared: *prep}

	// Phase 3: Aggregation
	o.log("Phase 3: Aggregating sellers...")
	profiles, err := o.aggregator.BuildSellerTable(prep.Curated)
	if err != nil {
		return nil, fmt.Errorf("phase 3 (aggregation) failed: %w", err)
	}
	observability.RecordSellersProfiled(len(profiles))
	o.log("  Built %d seller profiles", len(profiles))

	// Phase 4: Bucketing
	o.log("Phase 4: Bucketing sellers...")
	bucketed, thresholds := segmentation.Bucket(profiles, o.quantiles)
	result.Profiles = bucketed
	result.Thresholds = thresholds
	o.log("  Size thresholds: q30=%.2f q60=%.2f q90=%.2f", thresholds.Q30, thresholds.Q60, thresholds.Q90)

	// Phase 5: Scoring
	o.log("Phase 5: Scoring performance...")
	runID := idhash.ComputeRunID(prep.DatasetVersion,
		formatQuantile(o.quantiles.LocalHero),
		formatQuantile(o.quantiles.CoreSeller),
		formatQuantile(o.quantiles.KeyAccount))
	perfs, scoreErrors := o.evaluator.EvaluateAll(bucketed)
	for _, p := range perfs {
		p.RunID = runID
	}
	result.Performance = perfs
	result.ScoringErrors = make(map[string]string, len(scoreErrors))
	for _, e := range scoreErrors {
		result.ScoringErrors[e.SellerID] = e.Error()
		result.Errors = append(result.Errors, e.Error())
	}
	observability.RecordScoringErrors(len(scoreErrors))
	observability.SetSegmentCounts(segmentCounts(perfs))
	o.log("  Scored %d sellers (%d errors)", len(perfs), len(scoreErrors))

	result.Run = &domain.Run{
		RunID:               runID,
		Source:              o.sourceLabel,
		ItemsLoaded:         len(prep.Items),
		DroppedMissingPrice: prep.Cleaning.DroppedMissingPrice,
		PriceOutliers:       len(prep.Cleaning.Outliers),
		ItemsCurated:        len(prep.Curated),
		Sellers:             len(bucketed),
		SellersScored:       len(perfs),
		ScoringErrors:       len(scoreErrors),
		PriceP99:            prep.Cleaning.PriceP99,
		StockP95:            prep.Cleaning.StockP95,
		StockMax:            prep.Cleaning.StockMax,
		SizeQ30:             thresholds.Q30,
		SizeQ60:             thresholds.Q60,
		SizeQ90:             thresholds.Q90,
		CreatedAt:           o.clock().UnixMilli(),
	}

	// Phase 6: Persistence
	o.log("Phase 6: Persisting run %s...", runID)
	if err := o.persist(ctx, result); err != nil {
		return nil, fmt.Errorf("phase 6 (persistence) failed: %w", err)
	}

	// Phase 7: Verification
	if !o.skipVerification {
		o.log("Phase 7: Verifying invariants...")
		report := verification.VerifyRun(verification.Artifacts{
			Cleaning:    prep.Cleaning,
			Items:       prep.Curated,
			Profiles:    bucketed,
			Performance: perfs,
			Quantiles:   o.quantiles,
			Evaluator:   o.evaluator,
		})
		result.Verification = report
		for _, v := range report.Violations {
			result.Errors = append(result.Errors, "verify "+v.String())
		}
		o.log("  %d checks, %d violations", len(report.Checks), len(report.Violations))
	} else {
		o.log("Phase 7: Skipping verification (skipVerification=true)")
	}

	o.log("Pipeline completed: run %s, %d items, %d sellers, %d scored, %d errors",
		runID, len(prep.Items), len(bucketed), len(perfs), len(result.Errors))

	return result, nil
}

// persist writes curated items, sellers and finally the run summary.
// Rows already stored for this run are skipped, so re-running the same input is a no-op.
func (o *Orchestrator) persist(ctx context.Context, result *RunResult) error {
	runID := result.Run.RunID

	if o.cleanItemStore != nil && len(result.Curated) > 0 {
		if err := o.cleanItemStore.InsertBulk(ctx, runID, result.Curated); err != nil {
			if !errors.Is(err, storage.ErrDuplicateKey) {
				return fmt.Errorf("insert curated items: %w", err)
			}
			o.log("  Curated items for run %s already stored, skipping", runID)
		}
	}

	if o.sellerStore != nil && len(result.Performance) > 0 {
		if err := o.sellerStore.InsertBulk(ctx, result.Performance); err != nil {
			if !errors.Is(err, storage.ErrDuplicateKey) {
				return fmt.Errorf("insert sellers: %w", err)
			}
			o.log("  Sellers for run %s already stored, skipping", runID)
		}
	}

	if o.runStore != nil {
		if err := o.runStore.Insert(ctx, result.Run); err != nil {
			if !errors.Is(err, storage.ErrDuplicateKey) {
				return fmt.Errorf("insert run: %w", err)
			}
			o.log("  Run %s already stored, skipping", runID)
		}
	}
	return nil
}

func segmentCounts(perfs []*domain.SellerPerformance) map[[2]string]int {
	counts := make(map[[2]string]int)
	for _, p := range perfs {
		counts[[2]string{p.SellerSize, p.PerformanceLevel}]++
	}
	return counts
}

func formatQuantile(q float64) string {
	return strconv.FormatFloat(q, 'g', -1, 64)
}

func (o *Orchestrator) log(format string, args ...interface{}) {
	if !o.verbose {
		return
	}
	if o.logger != nil {
		o.logger.Printf(format, args...)
		return
	}
	log.Printf("[orchestrator] "+format, args...)
}
