package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"seller-segment-lab/internal/decision"
	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/observability"
	"seller-segment-lab/internal/orchestrator"
	"seller-segment-lab/internal/reporting"
	"seller-segment-lab/internal/storage"
)

// GeneratorVersion is recorded in report metadata for reproducibility.
const GeneratorVersion = "1.0.0"

// Output file names.
const (
	CuratedFile       = "df_curated.csv"
	OutliersFile      = "outliers_price.csv"
	SellerProfileFile = "seller_profile.csv"
	ReportFile        = "SEGMENTATION_REPORT.md"
	StrategiesFile    = "strategies_sample.csv"
)

// SourceFixtures labels runs over the built-in fixture dataset.
const SourceFixtures = "fixtures"

// ErrNoRun is returned when a run result carries no run summary.
var ErrNoRun = errors.New("run result has no run summary")

// Pipeline writes the output files of a segmentation run.
type Pipeline struct {
	reportGen       *reporting.Generator
	sellerStore     storage.SellerStore
	qualityChecker  *QualityChecker
	outputDir       string
	clock           func() time.Time
	integrityErrors []string // additional integrity errors
	dataSource      string   // "fixtures" or the input CSV path
}

// NewPipeline creates a new pipeline.
// strategyStore may be nil.
func NewPipeline(
	runStore storage.RunStore,
	sellerStore storage.SellerStore,
	strategyStore storage.StrategyStore,
	outputDir string,
) *Pipeline {
	return &Pipeline{
		reportGen:      reporting.NewGenerator(runStore, sellerStore, strategyStore),
		sellerStore:    sellerStore,
		qualityChecker: NewQualityChecker(DefaultQualityThresholds()),
		outputDir:      outputDir,
		clock:          func() time.Time { return time.Now().UTC() },
	}
}

// WithClock sets a custom clock function for deterministic output.
func (p *Pipeline) WithClock(clock func() time.Time) *Pipeline {
	p.clock = clock
	p.reportGen = p.reportGen.WithClock(clock)
	return p
}

// WithEvaluator renders the evaluator's score tables and rules in the report.
func (p *Pipeline) WithEvaluator(ev *decision.Evaluator) *Pipeline {
	p.reportGen = p.reportGen.WithEvaluator(ev)
	return p
}

// WithQualityThresholds replaces the default quality thresholds.
func (p *Pipeline) WithQualityThresholds(t QualityThresholds) *Pipeline {
	p.qualityChecker = NewQualityChecker(t)
	return p
}

// WithIntegrityErrors adds additional integrity errors to include in the report.
func (p *Pipeline) WithIntegrityErrors(errs []string) *Pipeline {
	p.integrityErrors = append(p.integrityErrors, errs...)
	return p
}

// WithDataSource sets the data source for the replay command:
// SourceFixtures or the input CSV path.
func (p *Pipeline) WithDataSource(source string) *Pipeline {
	p.dataSource = source
	return p
}

// WritePrepared writes the curated dataset and the price outliers:
// - df_curated.csv
// - outliers_price.csv
func (p *Pipeline) WritePrepared(prep *orchestrator.Prepared) error {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return err
	}

	curated, err := reporting.RenderCuratedCSV(prep.Curated)
	if err != nil {
		return fmt.Errorf("render %s: %w", CuratedFile, err)
	}
	if err := p.writeFile(CuratedFile, curated); err != nil {
		return err
	}

	outliers, err := reporting.RenderOutliersCSV(prep.Cleaning.Outliers)
	if err != nil {
		return fmt.Errorf("render %s: %w", OutliersFile, err)
	}
	return p.writeFile(OutliersFile, outliers)
}

// Run writes every output file of a finished run:
// - df_curated.csv
// - outliers_price.csv
// - seller_profile.csv
// - SEGMENTATION_REPORT.md
func (p *Pipeline) Run(ctx context.Context, res *orchestrator.RunResult) error {
	if res.Run == nil {
		return ErrNoRun
	}

	// 1. Curated and outlier datasets
	if err := p.WritePrepared(&res.Prepared); err != nil {
		return err
	}

	// 2. Seller profile: every bucketed seller, scores read back from the store
	sellers, err := p.sellerStore.GetByRun(ctx, res.Run.RunID)
	if err != nil {
		return fmt.Errorf("load sellers for run %s: %w", res.Run.RunID, err)
	}
	rows := reporting.JoinSellerProfiles(res.Profiles, sellers, res.ScoringErrors)
	profileCSV, err := reporting.RenderSellerProfileCSV(rows)
	if err != nil {
		return fmt.Errorf("render %s: %w", SellerProfileFile, err)
	}
	if err := p.writeFile(SellerProfileFile, profileCSV); err != nil {
		return err
	}

	// 3. Report with data quality section
	report, err := p.reportGen.Generate(ctx, res.Run.RunID)
	if err != nil {
		return err
	}
	report.DataQuality = p.dataQuality(res)
	report.Reproducibility = reporting.ReproducibilityMetadata{
		ReportTimestamp:  p.clock(),
		GeneratorVersion: GeneratorVersion,
		DataVersion:      res.DatasetVersion,
		RunID:            res.Run.RunID,
		ReplayCommand:    p.buildReplayCommand(),
	}

	if err := p.writeFile(ReportFile, []byte(reporting.RenderMarkdown(report))); err != nil {
		return err
	}
	observability.RecordReportGenerated()
	return nil
}

// WriteStrategies writes strategies_sample.csv.
func (p *Pipeline) WriteStrategies(records []*domain.StrategyRecord) error {
	if err := os.MkdirAll(p.outputDir, 0755); err != nil {
		return err
	}
	data, err := reporting.RenderStrategiesCSV(records)
	if err != nil {
		return fmt.Errorf("render %s: %w", StrategiesFile, err)
	}
	return p.writeFile(StrategiesFile, data)
}

// dataQuality runs the quality checks and merges extra integrity errors.
func (p *Pipeline) dataQuality(res *orchestrator.RunResult) reporting.DataQualitySection {
	result := p.qualityChecker.Check(res)
	checks := make([]reporting.SufficiencyCheckRow, len(result.Checks))
	for i, c := range result.Checks {
		checks[i] = reporting.SufficiencyCheckRow{
			Name:      c.Name,
			Threshold: c.Threshold,
			Actual:    c.Actual,
			Pass:      c.Pass,
		}
	}
	dq := reporting.DataQualitySection{
		SufficiencyChecks: checks,
		IntegrityErrors:   result.Errors,
		AllChecksPassed:   result.AllPass,
	}
	if len(p.integrityErrors) > 0 {
		dq.IntegrityErrors = append(dq.IntegrityErrors, p.integrityErrors...)
		dq.AllChecksPassed = false
	}
	return dq
}

// buildReplayCommand returns the command to reproduce this report.
func (p *Pipeline) buildReplayCommand() string {
	switch p.dataSource {
	case "", SourceFixtures:
		return "go run ./cmd/segment segment --use-fixtures"
	default:
		return fmt.Sprintf("go run ./cmd/segment segment --input %q", p.dataSource)
	}
}

func (p *Pipeline) writeFile(name string, data []byte) error {
	path := filepath.Join(p.outputDir, name)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
