package worker

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors exposed by the worker.
type Metrics struct {
	registry *prometheus.Registry

	QuestionsTotal   *prometheus.CounterVec
	RequestDuration  prometheus.Histogram
	CacheHitsTotal   prometheus.Counter
	CacheMissesTotal prometheus.Counter
	DocumentsIndexed prometheus.Gauge
}

// NewMetrics creates and registers the worker's collectors on a private
// registry.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		QuestionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "docqa_questions_total",
				Help: "Questions answered, by outcome.",
			},
			[]string{"outcome"},
		),
		RequestDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "docqa_request_duration_seconds",
				Help:    "End-to-end /ask latency in seconds.",
				Buckets: []float64{0.005, 0.025, 0.1, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		CacheHitsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docqa_answer_cache_hits_total",
				Help: "Answer cache hits.",
			},
		),
		CacheMissesTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "docqa_answer_cache_misses_total",
				Help: "Answer cache misses.",
			},
		),
		DocumentsIndexed: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "docqa_documents_indexed",
				Help: "Documents currently in the knowledge index.",
			},
		),
	}
	m.registry.MustRegister(
		m.QuestionsTotal,
		m.RequestDuration,
		m.CacheHitsTotal,
		m.CacheMissesTotal,
		m.DocumentsIndexed,
	)
	return m
}

// Handler returns the scrape endpoint for this worker's registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
