package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage"
)

// LatestRunID is the run id alias that resolves to the most recent run.
const LatestRunID = "latest"

// ErrRunInProgress is returned by a TriggerFunc when a run is already executing.
var ErrRunInProgress = errors.New("run already in progress")

// TriggerFunc runs the segmentation pipeline once and returns the stored run.
type TriggerFunc func(ctx context.Context) (*domain.Run, error)

// Handler holds the dependencies of every endpoint.
type Handler struct {
	runs       storage.RunStore
	sellers    storage.SellerStore
	strategies storage.StrategyStore // optional
	trigger    TriggerFunc           // optional
	logger     *log.Logger

	triggerTimeout time.Duration
}

// Health returns basic health status.
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// GetRun returns a run summary. {runID} may be "latest".
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.resolveRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, newRunResponse(run))
}

// ListSellers returns the scored sellers of a run.
// Optional query parameters size and level filter to one segment; both are required together.
func (h *Handler) ListSellers(w http.ResponseWriter, r *http.Request) {
	run, ok := h.resolveRun(w, r)
	if !ok {
		return
	}

	size := r.URL.Query().Get("size")
	level := r.URL.Query().Get("level")

	var (
		sellers []*domain.SellerPerformance
		err     error
	)
	switch {
	case size == "" && level == "":
		sellers, err = h.sellers.GetByRun(r.Context(), run.RunID)
	case size != "" && level != "":
		sellers, err = h.sellers.GetBySegment(r.Context(), run.RunID, size, level)
	default:
		writeError(w, http.StatusBadRequest, "invalid_filter", "size and level must be given together")
		return
	}
	if err != nil {
		h.internalError(w, "list sellers", err)
		return
	}

	items := make([]SellerResponse, len(sellers))
	for i, p := range sellers {
		items[i] = newSellerResponse(p)
	}
	writeJSON(w, http.StatusOK, ListResponse[SellerResponse]{RunID: run.RunID, Count: len(items), Items: items})
}

// GetSeller returns one scored seller of a run.
func (h *Handler) GetSeller(w http.ResponseWriter, r *http.Request) {
	run, ok := h.resolveRun(w, r)
	if !ok {
		return
	}

	sellerID := chi.URLParam(r, "sellerID")
	p, err := h.sellers.GetBySeller(r.Context(), run.RunID, sellerID)
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "seller_not_found", "no scored seller "+sellerID+" in run "+run.RunID)
		return
	}
	if err != nil {
		h.internalError(w, "get seller", err)
		return
	}
	writeJSON(w, http.StatusOK, newSellerResponse(p))
}

// ListStrategies returns the generated strategies of a run.
func (h *Handler) ListStrategies(w http.ResponseWriter, r *http.Request) {
	run, ok := h.resolveRun(w, r)
	if !ok {
		return
	}

	var records []*domain.StrategyRecord
	if h.strategies != nil {
		var err error
		records, err = h.strategies.GetByRun(r.Context(), run.RunID)
		if err != nil {
			h.internalError(w, "list strategies", err)
			return
		}
	}

	items := make([]StrategyResponse, len(records))
	for i, rec := range records {
		items[i] = newStrategyResponse(rec)
	}
	writeJSON(w, http.StatusOK, ListResponse[StrategyResponse]{RunID: run.RunID, Count: len(items), Items: items})
}

// TriggerRun runs the pipeline on demand and returns the resulting run.
// The run outlives a client disconnect; only triggerTimeout cancels it.
func (h *Handler) TriggerRun(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(r.Context()), h.triggerTimeout)
	defer cancel()

	run, err := h.trigger(ctx)
	if errors.Is(err, ErrRunInProgress) {
		writeError(w, http.StatusConflict, "run_in_progress", err.Error())
		return
	}
	if err != nil {
		h.internalError(w, "trigger run", err)
		return
	}
	writeJSON(w, http.StatusCreated, newRunResponse(run))
}

// resolveRun loads the run named by {runID}, writing a 404 when it does not exist.
func (h *Handler) resolveRun(w http.ResponseWriter, r *http.Request) (*domain.Run, bool) {
	runID := chi.URLParam(r, "runID")

	var (
		run *domain.Run
		err error
	)
	if runID == LatestRunID {
		run, err = h.runs.GetLatest(r.Context())
	} else {
		run, err = h.runs.GetByID(r.Context(), runID)
	}
	if errors.Is(err, storage.ErrNotFound) {
		writeError(w, http.StatusNotFound, "run_not_found", "no run "+runID)
		return nil, false
	}
	if err != nil {
		h.internalError(w, "load run", err)
		return nil, false
	}
	return run, true
}

func (h *Handler) internalError(w http.ResponseWriter, op string, err error) {
	h.logger.Printf("%s: %v", op, err)
	writeError(w, http.StatusInternalServerError, "internal_error", op+" failed")
}
