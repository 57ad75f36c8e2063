// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Input metrics
	ItemsLoaded              prometheus.Counter
	ItemsDroppedMissingPrice prometheus.Counter
	ItemsPriceOutliers       prometheus.Counter
	ItemsCurated             prometheus.Counter

	// Segmentation metrics
	SellersProfiled  prometheus.Counter
	SellersBySegment *prometheus.GaugeVec
	ScoringErrors    prometheus.Counter

	// Strategy metrics
	StrategiesGenerated *prometheus.CounterVec
	LLMRequestLatency   prometheus.Histogram

	// Pipeline metrics
	PipelineRunsTotal *prometheus.CounterVec
	PipelineDuration  *prometheus.HistogramVec
	ReportsGenerated  prometheus.Counter

	// Database metrics
	DBQueryDuration *prometheus.HistogramVec
	DBQueryErrors   *prometheus.CounterVec

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec

	// Health metrics
	LastSuccessfulPipeline prometheus.Gauge
}

// NewMetrics creates a new Metrics instance registered on reg.
func NewMetrics(namespace string, reg prometheus.Registerer) *Metrics {
	if namespace == "" {
		namespace = "seller_segment_lab"
	}
	factory := promauto.With(reg)

	return &Metrics{
		// Input metrics
		ItemsLoaded: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "input",
			Name:      "items_loaded_total",
			Help:      "Total number of raw item rows loaded",
		}),
		ItemsDroppedMissingPrice: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "input",
			Name:      "items_dropped_missing_price_total",
			Help:      "Total number of item rows dropped for a missing price",
		}),
		ItemsPriceOutliers: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "input",
			Name:      "items_price_outliers_total",
			Help:      "Total number of item rows routed to price outliers",
		}),
		ItemsCurated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "input",
			Name:      "items_curated_total",
			Help:      "Total number of item rows kept after cleaning",
		}),

		// Segmentation metrics
		SellersProfiled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "segmentation",
			Name:      "sellers_profiled_total",
			Help:      "Total number of seller profiles built",
		}),
		SellersBySegment: factory.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "segmentation",
			Name:      "sellers",
			Help:      "Number of sellers per segment in the last run",
		}, []string{"seller_size", "performance_level"}),
		ScoringErrors: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "segmentation",
			Name:      "scoring_errors_total",
			Help:      "Total number of sellers that could not be scored",
		}),

		// Strategy metrics
		StrategiesGenerated: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "generated_total",
			Help:      "Total number of strategy generations by status",
		}, []string{"status"}),
		LLMRequestLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "strategy",
			Name:      "llm_request_latency_seconds",
			Help:      "Language model request latency in seconds",
			Buckets:   []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		}),

		// Pipeline metrics
		PipelineRunsTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total number of pipeline runs by status",
		}, []string{"phase", "status"}),
		PipelineDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "duration_seconds",
			Help:      "Pipeline execution duration in seconds",
			Buckets:   []float64{0.1, 0.5, 1, 5, 10, 30, 60, 120, 300},
		}, []string{"phase"}),
		ReportsGenerated: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "reports_generated_total",
			Help:      "Total number of reports generated",
		}),

		// Database metrics
		DBQueryDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_duration_seconds",
			Help:      "Database query duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"database", "operation"}),
		DBQueryErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "database",
			Name:      "query_errors_total",
			Help:      "Total number of database query errors",
		}, []string{"database", "operation"}),

		// HTTP metrics
		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of API requests by route and status code",
		}, []string{"route", "code"}),

		// Health metrics
		LastSuccessfulPipeline: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "health",
			Name:      "last_successful_pipeline_timestamp",
			Help:      "Unix timestamp of last successful pipeline run",
		}),
	}
}

var registry = newRegistry()

func newRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// DefaultMetrics is the default metrics instance.
var DefaultMetrics = NewMetrics("", registry)

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// RecordCleaning records the row counts of one cleaning pass.
func RecordCleaning(loaded, droppedMissingPrice, outliers, curated int) {
	DefaultMetrics.ItemsLoaded.Add(float64(loaded))
	DefaultMetrics.ItemsDroppedMissingPrice.Add(float64(droppedMissingPrice))
	DefaultMetrics.ItemsPriceOutliers.Add(float64(outliers))
	DefaultMetrics.ItemsCurated.Add(float64(curated))
}

// RecordSellersProfiled increments the seller profile counter.
func RecordSellersProfiled(n int) {
	DefaultMetrics.SellersProfiled.Add(float64(n))
}

// RecordScoringErrors increments the scoring error counter.
func RecordScoringErrors(n int) {
	DefaultMetrics.ScoringErrors.Add(float64(n))
}

// SetSegmentCounts replaces the per-segment gauges with counts from the last run.
// counts is keyed by [seller_size, performance_level].
func SetSegmentCounts(counts map[[2]string]int) {
	DefaultMetrics.SellersBySegment.Reset()
	for key, n := range counts {
		DefaultMetrics.SellersBySegment.WithLabelValues(key[0], key[1]).Set(float64(n))
	}
}

// RecordStrategyGenerated records a strategy generation outcome.
func RecordStrategyGenerated(failed bool, seconds float64) {
	status := "success"
	if failed {
		status = "error"
	}
	DefaultMetrics.StrategiesGenerated.WithLabelValues(status).Inc()
	DefaultMetrics.LLMRequestLatency.Observe(seconds)
}

// RecordDBQuery records database query metrics.
func RecordDBQuery(database, operation string, seconds float64, err error) {
	DefaultMetrics.DBQueryDuration.WithLabelValues(database, operation).Observe(seconds)
	if err != nil {
		DefaultMetrics.DBQueryErrors.WithLabelValues(database, operation).Inc()
	}
}

// RecordHTTPRequest records one API request.
func RecordHTTPRequest(route, code string) {
	DefaultMetrics.HTTPRequests.WithLabelValues(route, code).Inc()
}

// RecordPipelineRun records a pipeline run.
func RecordPipelineRun(phase, status string, durationSeconds float64) {
	DefaultMetrics.PipelineRunsTotal.WithLabelValues(phase, status).Inc()
	DefaultMetrics.PipelineDuration.WithLabelValues(phase).Observe(durationSeconds)
}

// RecordPipelineSuccess stamps the last successful pipeline gauge.
func RecordPipelineSuccess(unixSeconds int64) {
	DefaultMetrics.LastSuccessfulPipeline.Set(float64(unixSeconds))
}

// RecordReportGenerated increments the reports generated counter.
func RecordReportGenerated() {
	DefaultMetrics.ReportsGenerated.Inc()
}
