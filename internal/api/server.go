// Package api serves segmentation runs, scored sellers and strategies over HTTP.
package api

import (
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	corslib "github.com/rs/cors"

	"seller-segment-lab/internal/observability"
	"seller-segment-lab/internal/storage"
)

// DefaultTriggerTimeout bounds an on-demand pipeline run.
const DefaultTriggerTimeout = 10 * time.Minute

// Options configures the router.
type Options struct {
	RunStore      storage.RunStore
	SellerStore   storage.SellerStore
	StrategyStore storage.StrategyStore // nil serves empty strategy lists

	// Trigger enables POST /api/v1/runs when set. It runs detached from the
	// request, bounded by TriggerTimeout (default DefaultTriggerTimeout).
	Trigger        TriggerFunc
	TriggerTimeout time.Duration

	CORSAllowOrigins []string
	Logger           *log.Logger
}

// NewRouter creates the chi router with middleware and routes.
func NewRouter(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(os.Stdout, "[api] ", log.LstdFlags)
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(metricsMiddleware)

	c := corslib.New(corslib.Options{
		AllowedOrigins:   opts.CORSAllowOrigins,
		AllowedMethods:   []string{"GET", "HEAD", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: false,
	})
	r.Use(c.Handler)

	triggerTimeout := opts.TriggerTimeout
	if triggerTimeout <= 0 {
		triggerTimeout = DefaultTriggerTimeout
	}

	h := &Handler{
		runs:           opts.RunStore,
		sellers:        opts.SellerStore,
		strategies:     opts.StrategyStore,
		trigger:        opts.Trigger,
		triggerTimeout: triggerTimeout,
		logger:         logger,
	}

	r.Get("/health", h.Health)
	r.Handle("/metrics", observability.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		if h.trigger != nil {
			r.Post("/runs", h.TriggerRun)
		}
		r.Route("/runs/{runID}", func(r chi.Router) {
			r.Get("/", h.GetRun)
			r.Get("/sellers", h.ListSellers)
			r.Get("/sellers/{sellerID}", h.GetSeller)
			r.Get("/strategies", h.ListStrategies)
		})
	})

	return r
}

// metricsMiddleware counts requests by route pattern and status code.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		observability.RecordHTTPRequest(route, strconv.Itoa(status))
	})
}
