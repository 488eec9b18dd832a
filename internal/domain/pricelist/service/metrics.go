package service

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist"
	"github.com/FACorreiaa/supplier-price-sync/internal/domain/pricelist/extractor"
)

const (
	outcomeSuccess = "success"
	outcomeEmpty   = "empty"
	outcomeFailed  = "failed"
)

// Metrics holds the pipeline's Prometheus collectors. A nil *Metrics is a
// valid no-op.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runDuration      *prometheus.HistogramVec
	extractedRecords *prometheus.HistogramVec
	matchesTotal     *prometheus.CounterVec
	priceUpdates     *prometheus.CounterVec
}

// NewMetrics creates the collectors on a fresh registry
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	runsTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pricesync",
			Subsystem: "pipeline",
			Name:      "runs_total",
			Help:      "Total price list runs by outcome.",
		},
		[]string{"outcome"},
	)
	runDuration := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pricesync",
			Subsystem: "pipeline",
			Name:      "run_duration_seconds",
			Help:      "Price list run duration in seconds by outcome.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30, 60},
		},
		[]string{"outcome"},
	)
	extractedRecords := prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "pricesync",
			Subsystem: "extractor",
			Name:      "records",
			Help:      "Records extracted per document by winning strategy.",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"method"},
	)
	matchesTotal := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pricesync",
			Subsystem: "matcher",
			Name:      "results_total",
			Help:      "Match results by status.",
		},
		[]string{"status"},
	)
	priceUpdates := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "pricesync",
			Subsystem: "catalog",
			Name:      "price_updates_total",
			Help:      "Catalog price write-backs by result.",
		},
		[]string{"result"},
	)

	registry.MustRegister(runsTotal, runDuration, extractedRecords, matchesTotal, priceUpdates)

	return &Metrics{
		registry:         registry,
		runsTotal:        runsTotal,
		runDuration:      runDuration,
		extractedRecords: extractedRecords,
		matchesTotal:     matchesTotal,
		priceUpdates:     priceUpdates,
	}
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) observeRun(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.runsTotal.WithLabelValues(outcome).Inc()
	m.runDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func (m *Metrics) observeExtraction(res *extractor.Result) {
	if m == nil || res == nil {
		return
	}
	method := res.Method
	if method == "" {
		method = "none"
	}
	m.extractedRecords.WithLabelValues(method).Observe(float64(len(res.Records)))
}

func (m *Metrics) observeMatches(results []pricelist.MatchResult) {
	if m == nil {
		return
	}
	for _, r := range results {
		m.matchesTotal.WithLabelValues(string(r.Status)).Inc()
	}
}

func (m *Metrics) observeApply(r ApplyResult) {
	if m == nil {
		return
	}
	m.priceUpdates.WithLabelValues("updated").Add(float64(r.Updated))
	m.priceUpdates.WithLabelValues("skipped").Add(float64(r.Skipped))
	m.priceUpdates.WithLabelValues("failed").Add(float64(r.Failed))
}
