// Command segment runs the seller segmentation pipeline.
//
// Usage:
//
//	segment prepare  --input items.csv
//	segment segment  --input items.csv --output-dir output
//	segment strategies --output-dir output [--all]
//	segment run --use-fixtures
//	segment verify --postgres-dsn ... [--run-id ID]
package main

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"seller-segment-lab/internal/config"
	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/idhash"
	"seller-segment-lab/internal/ingestion"
	"seller-segment-lab/internal/orchestrator"
	"seller-segment-lab/internal/pipeline"
	"seller-segment-lab/internal/storage"
	"seller-segment-lab/internal/storage/backend"
	"seller-segment-lab/internal/strategy"
)

var logger = log.New(os.Stdout, "[segment] ", log.LstdFlags)

// flags shared by every subcommand
type rootFlags struct {
	input         string
	useFixtures   bool
	outputDir     string
	postgresDSN   string
	clickhouseDSN string
	verbose       bool
}

func main() {
	config.LoadEnvFiles()
	cfg := config.Load()

	flags := &rootFlags{}
	root := &cobra.Command{
		Use:           "segment",
		Short:         "Seller segmentation and strategy generation",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	pf := root.PersistentFlags()
	pf.StringVar(&flags.input, "input", cfg.InputCSV, "Input items CSV path")
	pf.BoolVar(&flags.useFixtures, "use-fixtures", false, "Use the built-in fixture dataset instead of --input")
	pf.StringVar(&flags.outputDir, "output-dir", cfg.OutputDir, "Output directory for generated files")
	pf.StringVar(&flags.postgresDSN, "postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string (empty uses memory)")
	pf.StringVar(&flags.clickhouseDSN, "clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string (empty uses memory)")
	pf.BoolVar(&flags.verbose, "verbose", cfg.Verbose, "Verbose output")

	root.AddCommand(prepareCmd(cfg, flags))
	root.AddCommand(segmentCmd(cfg, flags))
	root.AddCommand(strategiesCmd(cfg, flags))
	root.AddCommand(runCmd(cfg, flags))
	root.AddCommand(verifyCmd(cfg, flags))

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// --------------------------------------------------------------------------
// prepare
// --------------------------------------------------------------------------

func prepareCmd(cfg *config.Config, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "prepare",
		Short: "Load and clean items, write df_curated.csv and outliers_price.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), cfg, flags, func(ctx context.Context, r *pipeline.Runner, _ *backend.Stores) error {
				prep, err := r.Prepare(ctx)
				if err != nil {
					return err
				}
				logger.Printf("Prepared %d curated items (%d missing price, %d outliers) to %s/",
					len(prep.Curated), prep.Cleaning.DroppedMissingPrice, len(prep.Cleaning.Outliers), flags.outputDir)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// segment
// --------------------------------------------------------------------------

func segmentCmd(cfg *config.Config, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "segment",
		Short: "Run the full segmentation and write seller_profile.csv and the report",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), cfg, flags, func(ctx context.Context, r *pipeline.Runner, _ *backend.Stores) error {
				res, err := r.Segment(ctx)
				if err != nil {
					return err
				}
				printRunSummary(res, flags.outputDir)
				return nil
			})
		},
	}
}

// --------------------------------------------------------------------------
// strategies
// --------------------------------------------------------------------------

func strategiesCmd(cfg *config.Config, flags *rootFlags) *cobra.Command {
	var (
		profilePath string
		runID       string
		all         bool
	)
	cmd := &cobra.Command{
		Use:   "strategies",
		Short: "Generate commercial strategies from seller_profile.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			path := profilePath
			if path == "" {
				path = filepath.Join(flags.outputDir, pipeline.SellerProfileFile)
			}
			return withRunner(cmd.Context(), cfg, flags, func(ctx context.Context, r *pipeline.Runner, stores *backend.Stores) error {
				sellers, err := ingestion.NewSegmentCSVSource(path).Load(ctx)
				if err != nil {
					return fmt.Errorf("load seller profile: %w", err)
				}
				id, err := resolveStrategyRunID(ctx, runID, path, stores.RunStore)
				if err != nil {
					return err
				}
				return generateStrategies(ctx, cfg, r, id, sellers, all)
			})
		},
	}
	cmd.Flags().StringVar(&profilePath, "profile", "", "seller_profile.csv path (default <output-dir>/seller_profile.csv)")
	cmd.Flags().StringVar(&runID, "run-id", "", "Run id to store strategies under (default latest stored run)")
	cmd.Flags().BoolVar(&all, "all", false, "Generate for every seller instead of one per demo segment")
	return cmd
}

// --------------------------------------------------------------------------
// run
// --------------------------------------------------------------------------

func runCmd(cfg *config.Config, flags *rootFlags) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run segmentation, then strategy generation",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), cfg, flags, func(ctx context.Context, r *pipeline.Runner, _ *backend.Stores) error {
				res, err := r.Segment(ctx)
				if err != nil {
					return err
				}
				printRunSummary(res, flags.outputDir)
				return generateStrategies(ctx, cfg, r, res.Run.RunID, res.Performance, all)
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Generate for every seller instead of one per demo segment")
	return cmd
}

// --------------------------------------------------------------------------
// verify
// --------------------------------------------------------------------------

func verifyCmd(cfg *config.Config, flags *rootFlags) *cobra.Command {
	var runID string
	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Re-score the sellers of a stored run and compare with the stored rows",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withRunner(cmd.Context(), cfg, flags, func(ctx context.Context, r *pipeline.Runner, stores *backend.Stores) error {
				id := runID
				if id == "" {
					latest, err := stores.RunStore.GetLatest(ctx)
					if err != nil {
						return fmt.Errorf("load latest run: %w", err)
					}
					id = latest.RunID
				}

				report, err := r.Verify(ctx, id)
				if err != nil {
					return err
				}
				fmt.Printf("Verification of run %s:\n", report.RunID)
				fmt.Printf("  Sellers: %d total, %d matched, %d divergent\n",
					report.TotalSellers, report.MatchedSellers, report.DivergentSellers)
				for _, res := range report.Results {
					if res.Err != nil {
						fmt.Printf("  ! %s: %v\n", res.SellerID, res.Err)
					}
					for _, d := range res.Divergences {
						fmt.Printf("  ! %s: %s stored=%v recomputed=%v\n", res.SellerID, d.Field, d.Expected, d.Actual)
					}
					for _, c := range res.Trace {
						mark := "-"
						if c.Matched {
							mark = "+"
						}
						fmt.Printf("      %s %s (%s)\n", mark, c.Rule, c.Level)
					}
				}
				for _, v := range report.Invariants.Violations {
					fmt.Printf("  ! %s\n", v)
				}
				if !report.OK() {
					return errors.New("verification failed")
				}
				fmt.Println("  OK")
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&runID, "run-id", "", "Run id to verify (default latest stored run)")
	return cmd
}

// --------------------------------------------------------------------------
// helpers
// --------------------------------------------------------------------------

// withRunner opens the stores, builds the runner and calls fn.
func withRunner(ctx context.Context, cfg *config.Config, flags *rootFlags,
	fn func(ctx context.Context, r *pipeline.Runner, stores *backend.Stores) error) error {
	source, label := itemSource(flags)

	stores, cleanup, err := backend.Open(ctx, backend.Options{
		PostgresDSN:   flags.postgresDSN,
		ClickhouseDSN: flags.clickhouseDSN,
		Logger:        logger,
	})
	if err != nil {
		return fmt.Errorf("open stores: %w", err)
	}
	defer cleanup()

	thresholds := qualityThresholds(cfg)
	r := pipeline.NewRunner(pipeline.RunnerOptions{
		Source:            source,
		SourceLabel:       label,
		Stores:            stores,
		OutputDir:         flags.outputDir,
		QualityThresholds: &thresholds,
		Verbose:           flags.verbose,
		Logger:            logger,
	})
	return fn(ctx, r, stores)
}

// itemSource picks the fixture dataset or the input CSV.
// The strategies command never loads items, so a missing input is only
// reported when a source is actually used.
func itemSource(flags *rootFlags) (ingestion.ItemSource, string) {
	if flags.useFixtures {
		return pipeline.FixtureSource(), pipeline.SourceFixtures
	}
	if flags.input == "" {
		return missingInput{}, ""
	}
	return ingestion.NewCSVSource(flags.input), flags.input
}

// errNoInput is returned when neither --input nor --use-fixtures is set.
var errNoInput = errors.New("--input (or SEGMENT_INPUT_CSV) is required unless --use-fixtures is set")

type missingInput struct{}

func (missingInput) Load(context.Context) ([]*domain.Item, error) {
	return nil, errNoInput
}

func qualityThresholds(cfg *config.Config) pipeline.QualityThresholds {
	return pipeline.QualityThresholds{
		MaxMissingPriceShare:      cfg.MaxMissingPriceShare,
		MaxOutlierShare:           cfg.MaxOutlierShare,
		MaxUnknownReputationShare: cfg.MaxUnknownReputationShare,
		MaxUnknownConditionShare:  cfg.MaxUnknownConditionShare,
		MinSellers:                cfg.MinSellers,
		MaxScoringErrors:          cfg.MaxScoringErrors,
	}
}

// newCompleter returns the language model client, or nil when no API key is set.
// A nil completer records ErrMissingAPIKey on every strategy.
func newCompleter(cfg *config.Config) (strategy.Completer, error) {
	if cfg.OpenAIAPIKey == "" {
		logger.Println("OPENAI_API_KEY is not set; strategies will record the error")
		return nil, nil
	}
	client, err := strategy.NewOpenAIClient(strategy.ClientOptions{
		BaseURL:           cfg.OpenAIBaseURL,
		APIKey:            cfg.OpenAIAPIKey,
		Model:             cfg.OpenAIModel,
		RequestsPerMinute: cfg.StrategyRequestsPerMinute,
	})
	if err != nil {
		return nil, fmt.Errorf("create language model client: %w", err)
	}
	return client, nil
}

func generateStrategies(ctx context.Context, cfg *config.Config, r *pipeline.Runner, runID string,
	sellers []*domain.SellerPerformance, all bool) error {
	completer, err := newCompleter(cfg)
	if err != nil {
		return err
	}
	records, err := r.GenerateStrategies(ctx, runID, sellers, pipeline.StrategyOptions{
		Completer: completer,
		All:       all,
	})
	if err != nil {
		return err
	}

	failed := 0
	for _, rec := range records {
		if rec.Failed {
			failed++
		}
	}
	logger.Printf("Generated %d strategies (%d failed) for run %s", len(records), failed, runID)
	return nil
}

// resolveStrategyRunID picks the run id strategies are stored under:
// the explicit flag, the latest stored run, or a digest of the profile file.
func resolveStrategyRunID(ctx context.Context, flagValue, profilePath string, runs storage.RunStore) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	latest, err := runs.GetLatest(ctx)
	if err == nil {
		return latest.RunID, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return "", fmt.Errorf("load latest run: %w", err)
	}

	data, err := os.ReadFile(profilePath)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(data)
	return idhash.ComputeRunID(hex.EncodeToString(sum[:]), "strategies"), nil
}

func printRunSummary(res *orchestrator.RunResult, outputDir string) {
	run := res.Run
	fmt.Printf("Segmentation completed:\n")
	fmt.Printf("  Run ID: %s\n", run.RunID)
	fmt.Printf("  Items: %d loaded, %d missing price, %d outliers, %d curated\n",
		run.ItemsLoaded, run.DroppedMissingPrice, run.PriceOutliers, run.ItemsCurated)
	fmt.Printf("  Sellers: %d profiled, %d scored, %d errors\n", run.Sellers, run.SellersScored, run.ScoringErrors)
	for _, e := range res.Errors {
		fmt.Printf("  ! %s\n", e)
	}
	fmt.Printf("Outputs written to %s/\n", outputDir)
}
