package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seller-segment-lab/internal/domain"
	"seller-segment-lab/internal/storage/memory"
)

type testEnv struct {
	runs       *memory.RunStore
	sellers    *memory.SellerStore
	strategies *memory.StrategyStore
}

func seller(runID, id, size, level string, total int) *domain.SellerPerformance {
	p := &domain.SellerPerformance{
		RunID:            runID,
		TotalScore:       total,
		PerformanceLevel: level,
	}
	p.SellerID = id
	p.SellerSize = size
	p.PerformanceSegment = size + " - " + level
	return p
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()
	env := &testEnv{
		runs:       memory.NewRunStore(),
		sellers:    memory.NewSellerStore(),
		strategies: memory.NewStrategyStore(),
	}

	require.NoError(t, env.runs.Insert(ctx, &domain.Run{RunID: "run-old", Source: "old.csv", Sellers: 1, CreatedAt: 1000}))
	require.NoError(t, env.runs.Insert(ctx, &domain.Run{RunID: "run-new", Source: "new.csv", Sellers: 3, CreatedAt: 2000}))

	require.NoError(t, env.sellers.InsertBulk(ctx, []*domain.SellerPerformance{
		seller("run-new", "charlie", domain.SizeLongTail, domain.LevelLow, 1),
		seller("run-new", "alpha", domain.SizeKeyAccount, domain.LevelDiamond, 6),
		seller("run-new", "bravo", domain.SizeKeyAccount, domain.LevelDiamond, 6),
		seller("run-old", "alpha", domain.SizeCoreSeller, domain.LevelExpected, 3),
	}))

	require.NoError(t, env.strategies.Insert(ctx, &domain.StrategyRecord{
		RunID:            "run-new",
		SellerID:         "alpha",
		SellerSize:       domain.SizeKeyAccount,
		PerformanceLevel: domain.LevelDiamond,
		Strategy:         "1) Objetivo",
		GeneratedAt:      3000,
	}))
	return env
}

func (e *testEnv) router(trigger TriggerFunc) http.Handler {
	return NewRouter(Options{
		RunStore:         e.runs,
		SellerStore:      e.sellers,
		StrategyStore:    e.strategies,
		Trigger:          trigger,
		CORSAllowOrigins: []string{"https://app.example"},
		Logger:           log.New(io.Discard, "", 0),
	})
}

func do(t *testing.T, h http.Handler, method, path string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	rec := do(t, newTestEnv(t).router(nil), http.MethodGet, "/health")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "healthy", decode[map[string]string](t, rec)["status"])
}

func TestGetRun_Latest(t *testing.T) {
	rec := do(t, newTestEnv(t).router(nil), http.MethodGet, "/api/v1/runs/latest")
	require.Equal(t, http.StatusOK, rec.Code)

	run := decode[RunResponse](t, rec)
	assert.Equal(t, "run-new", run.RunID)
	assert.Equal(t, 3, run.Sellers)
}

func TestGetRun_ByIDAndNotFound(t *testing.T) {
	h := newTestEnv(t).router(nil)

	rec := do(t, h, http.MethodGet, "/api/v1/runs/run-old")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "old.csv", decode[RunResponse](t, rec).Source)

	rec = do(t, h, http.MethodGet, "/api/v1/runs/missing")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "run_not_found", decode[ErrorResponse](t, rec).Error.Code)
}

func TestGetRun_EmptyStore(t *testing.T) {
	h := NewRouter(Options{
		RunStore:    memory.NewRunStore(),
		SellerStore: memory.NewSellerStore(),
		Logger:      log.New(io.Discard, "", 0),
	})
	rec := do(t, h, http.MethodGet, "/api/v1/runs/latest")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListSellers(t *testing.T) {
	rec := do(t, newTestEnv(t).router(nil), http.MethodGet, "/api/v1/runs/latest/sellers")
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[ListResponse[SellerResponse]](t, rec)
	assert.Equal(t, "run-new", list.RunID)
	require.Equal(t, 3, list.Count)
	assert.Equal(t, "alpha", list.Items[0].SellerID)
	assert.Equal(t, "charlie", list.Items[2].SellerID)
}

func TestListSellers_SegmentFilter(t *testing.T) {
	h := newTestEnv(t).router(nil)

	path := "/api/v1/runs/run-new/sellers?size=Key+Account&level=Diamante"
	rec := do(t, h, http.MethodGet, path)
	require.Equal(t, http.StatusOK, rec.Code)

	list := decode[ListResponse[SellerResponse]](t, rec)
	require.Equal(t, 2, list.Count)
	for _, s := range list.Items {
		assert.Equal(t, "Key Account - Diamante", s.PerformanceSegment)
	}

	rec = do(t, h, http.MethodGet, "/api/v1/runs/run-new/sellers?size=Key+Account")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetSeller(t *testing.T) {
	h := newTestEnv(t).router(nil)

	rec := do(t, h, http.MethodGet, "/api/v1/runs/run-old/sellers/alpha")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.SizeCoreSeller, decode[SellerResponse](t, rec).SellerSize)

	rec = do(t, h, http.MethodGet, "/api/v1/runs/run-old/sellers/bravo")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "seller_not_found", decode[ErrorResponse](t, rec).Error.Code)
}

func TestListStrategies(t *testing.T) {
	h := newTestEnv(t).router(nil)

	rec := do(t, h, http.MethodGet, "/api/v1/runs/latest/strategies")
	require.Equal(t, http.StatusOK, rec.Code)
	list := decode[ListResponse[StrategyResponse]](t, rec)
	require.Equal(t, 1, list.Count)
	assert.Equal(t, "1) Objetivo", list.Items[0].Strategy)

	rec = do(t, h, http.MethodGet, "/api/v1/runs/run-old/strategies")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0, decode[ListResponse[StrategyResponse]](t, rec).Count)
}

func TestTriggerRun(t *testing.T) {
	env := newTestEnv(t)

	// Route is absent without a trigger
	rec := do(t, env.router(nil), http.MethodPost, "/api/v1/runs")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	calls := 0
	h := env.router(func(ctx context.Context) (*domain.Run, error) {
		calls++
		return &domain.Run{RunID: "run-triggered"}, nil
	})
	rec = do(t, h, http.MethodPost, "/api/v1/runs")
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "run-triggered", decode[RunResponse](t, rec).RunID)
	assert.Equal(t, 1, calls)

	failing := env.router(func(ctx context.Context) (*domain.Run, error) {
		return nil, errors.New("input missing")
	})
	rec = do(t, failing, http.MethodPost, "/api/v1/runs")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.NotContains(t, rec.Body.String(), "input missing")

	busy := env.router(func(ctx context.Context) (*domain.Run, error) {
		return nil, ErrRunInProgress
	})
	rec = do(t, busy, http.MethodPost, "/api/v1/runs")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestTriggerRun_SurvivesClientDisconnect(t *testing.T) {
	env := newTestEnv(t)

	var runErr error
	var hasDeadline bool
	h := env.router(func(ctx context.Context) (*domain.Run, error) {
		runErr = ctx.Err()
		_, hasDeadline = ctx.Deadline()
		return &domain.Run{RunID: "run-triggered"}, nil
	})

	reqCtx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/runs", nil).WithContext(reqCtx)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.NoError(t, runErr, "pipeline context must not inherit request cancellation")
	assert.True(t, hasDeadline, "pipeline context must be bounded by the trigger timeout")
}

func TestCORS(t *testing.T) {
	h := newTestEnv(t).router(nil)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil)
	req.Header.Set("Origin", "https://app.example")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "https://app.example", rec.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/api/v1/runs/latest", nil)
	req.Header.Set("Origin", "https://evil.example")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMetricsEndpoint(t *testing.T) {
	h := newTestEnv(t).router(nil)
	do(t, h, http.MethodGet, "/health")

	rec := do(t, h, http.MethodGet, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "http_requests_total"), "expected request counter in metrics output")
}
