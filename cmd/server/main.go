// Package main provides the segmentation server:
// - Pipeline (startup, scheduled, on demand): segmentation → output files
// - HTTP API: runs, sellers, strategies, /metrics, /status
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"seller-segment-lab/internal/config"
	"seller-segment-lab/internal/ingestion"
	"seller-segment-lab/internal/pipeline"
	"seller-segment-lab/internal/storage/backend"
)

func main() {
	config.LoadEnvFiles()
	cfg := config.Load()

	// Parse flags (env vars as defaults)
	input := flag.String("input", cfg.InputCSV, "Input items CSV path")
	useFixtures := flag.Bool("use-fixtures", false, "Use the built-in fixture dataset instead of --input")
	outputDir := flag.String("output-dir", cfg.OutputDir, "Output directory for generated files")
	postgresDSN := flag.String("postgres-dsn", cfg.PostgresDSN, "PostgreSQL connection string (empty uses memory)")
	clickhouseDSN := flag.String("clickhouse-dsn", cfg.ClickhouseDSN, "ClickHouse connection string (empty uses memory)")
	addr := flag.String("addr", cfg.ServerAddr, "HTTP listen address")
	pipelineInterval := flag.Duration("pipeline-interval", 0, "Pipeline run interval (0 runs once at startup)")
	verbose := flag.Bool("verbose", cfg.Verbose, "Verbose pipeline output")
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if !*useFixtures && *input == "" {
		logger.Fatal("--input (or SEGMENT_INPUT_CSV) is required (use --use-fixtures for the built-in dataset)")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stores, cleanup, err := backend.Open(ctx, backend.Options{
		PostgresDSN:   *postgresDSN,
		ClickhouseDSN: *clickhouseDSN,
		Logger:        logger,
	})
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	var (
		source ingestion.ItemSource
		label  string
	)
	if *useFixtures {
		source, label = pipeline.FixtureSource(), pipeline.SourceFixtures
	} else {
		source, label = ingestion.NewCSVSource(*input), *input
	}

	thresholds := pipeline.QualityThresholds{
		MaxMissingPriceShare:      cfg.MaxMissingPriceShare,
		MaxOutlierShare:           cfg.MaxOutlierShare,
		MaxUnknownReputationShare: cfg.MaxUnknownReputationShare,
		MaxUnknownConditionShare:  cfg.MaxUnknownConditionShare,
		MinSellers:                cfg.MinSellers,
		MaxScoringErrors:          cfg.MaxScoringErrors,
	}
	runner := pipeline.NewRunner(pipeline.RunnerOptions{
		Source:            source,
		SourceLabel:       label,
		Stores:            stores,
		OutputDir:         *outputDir,
		QualityThresholds: &thresholds,
		Verbose:           *verbose,
		Logger:            log.New(os.Stdout, "[pipeline] ", log.LstdFlags),
	})

	server := NewServer(runner, stores, cfg.CORSAllowOrigins, *pipelineInterval, logger)

	httpServer := &http.Server{
		Addr:              *addr,
		Handler:           server.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Handle shutdown signals
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, initiating graceful shutdown...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown error: %v", err)
		}
	}()

	// Run pipeline scheduler in background
	go func() {
		if err := server.RunScheduler(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("Pipeline scheduler error: %v", err)
		}
	}()

	logger.Printf("Starting HTTP server on %s", *addr)
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("HTTP server error: %v", err)
	}

	logger.Println("Shutdown complete")
}
