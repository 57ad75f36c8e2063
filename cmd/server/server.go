package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"seller-segment-lab/internal/api"
	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/pipeline"
	"seller-segment-lab/internal/storage/backend"
)

// segmenter runs one segmentation pass.
type segmenter interface {
	Segment(ctx context.Context) (*pipelineResult, error)
}

// pipelineResult is the part of a run result the server keeps.
type pipelineResult struct {
	Run    *domain.Run
	Errors []string
}

// runnerAdapter adapts pipeline.Runner to segmenter.
type runnerAdapter struct {
	runner *pipeline.Runner
}

func (a runnerAdapter) Segment(ctx context.Context) (*pipelineResult, error) {
	res, err := a.runner.Segment(ctx)
	if err != nil {
		return nil, err
	}
	return &pipelineResult{Run: res.Run, Errors: res.Errors}, nil
}

// Server holds the pipeline scheduler and the HTTP surface.
type Server struct {
	segmenter        segmenter
	stores           *backend.Stores
	corsOrigins      []string
	pipelineInterval time.Duration
	logger           *log.Logger

	// State
	mu              sync.Mutex
	started         time.Time
	lastPipelineRun time.Time
	lastRunID       string
	lastError       string
	pipelineRunning bool

	// Stats
	pipelineRuns int
}

// NewServer creates a server. A zero interval runs the pipeline once at startup.
func NewServer(runner *pipeline.Runner, stores *backend.Stores, corsOrigins []string, interval time.Duration, logger *log.Logger) *Server {
	return &Server{
		segmenter:        runnerAdapter{runner: runner},
		stores:           stores,
		corsOrigins:      corsOrigins,
		pipelineInterval: interval,
		logger:           logger,
		started:          time.Now(),
	}
}

// Handler returns the API router with the /status endpoint.
func (s *Server) Handler() http.Handler {
	r := api.NewRouter(api.Options{
		RunStore:         s.stores.RunStore,
		SellerStore:      s.stores.SellerStore,
		StrategyStore:    s.stores.StrategyStore,
		Trigger:          s.runPipeline,
		CORSAllowOrigins: s.corsOrigins,
		Logger:           log.New(s.logger.Writer(), "[api] ", log.LstdFlags),
	})
	r.Get("/status", s.handleStatus)
	return r
}

// RunScheduler runs the pipeline immediately, then on every interval tick.
func (s *Server) RunScheduler(ctx context.Context) error {
	s.logger.Printf("Starting pipeline scheduler (interval: %v)...", s.pipelineInterval)

	if _, err := s.runPipeline(ctx); err != nil {
		s.logger.Printf("Pipeline error: %v", err)
	}
	if s.pipelineInterval <= 0 {
		return nil
	}

	ticker := time.NewTicker(s.pipelineInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if _, err := s.runPipeline(ctx); err != nil {
				s.logger.Printf("Pipeline error: %v", err)
			}
		}
	}
}

// runPipeline executes one segmentation pass. Overlapping calls fail with api.ErrRunInProgress.
func (s *Server) runPipeline(ctx context.Context) (*domain.Run, error) {
	s.mu.Lock()
	if s.pipelineRunning {
		s.mu.Unlock()
		return nil, api.ErrRunInProgress
	}
	s.pipelineRunning = true
	s.mu.Unlock()

	s.logger.Println("Running pipeline...")
	start := time.Now()
	res, err := s.segmenter.Segment(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.pipelineRunning = false
	s.lastPipelineRun = time.Now()
	s.pipelineRuns++
	if err != nil {
		s.lastError = err.Error()
		return nil, err
	}
	s.lastError = ""
	s.lastRunID = res.Run.RunID

	s.logger.Printf("Pipeline completed in %v: run %s, %d sellers scored, %d errors",
		time.Since(start), res.Run.RunID, res.Run.SellersScored, len(res.Errors))
	return res.Run, nil
}

// StatusResponse is the JSON response for /status endpoint.
type StatusResponse struct {
	Status          string    `json:"status"`
	Uptime          string    `json:"uptime"`
	LastPipelineRun time.Time `json:"last_pipeline_run,omitempty"`
	LastRunID       string    `json:"last_run_id,omitempty"`
	LastError       string    `json:"last_error,omitempty"`
	PipelineRuns    int       `json:"pipeline_runs"`
	PipelineRunning bool      `json:"pipeline_running"`
}

// handleStatus returns server status as JSON.
func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()

	resp := StatusResponse{
		Status:          "running",
		Uptime:          time.Since(s.started).String(),
		LastPipelineRun: s.lastPipelineRun,
		LastRunID:       s.lastRunID,
		LastError:       s.lastError,
		PipelineRuns:    s.pipelineRuns,
		PipelineRunning: s.pipelineRunning,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resp)
}
