// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector records note store and summarization metrics.
type Collector struct {
	summaries      *prometheus.CounterVec
	summaryLatency prometheus.Histogram
	notes          prometheus.Gauge
	storeMutations *prometheus.CounterVec
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		summaries: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memo_summarize_total",
			Help: "Summarization requests by outcome.",
		}, []string{"outcome"}),
		summaryLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "memo_summarize_latency_seconds",
			Help:    "Latency of remote summarization calls.",
			Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 30},
		}),
		notes: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "memo_notes",
			Help: "Number of notes in the store.",
		}),
		storeMutations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "memo_store_mutations_total",
			Help: "Persisted note store mutations by kind.",
		}, []string{"op"}),
	}

	reg.MustRegister(
		c.summaries,
		c.summaryLatency,
		c.notes,
		c.storeMutations,
	)
	return c
}

// RecordSummary records one summarization outcome. Calls rejected before
// reaching the model (d == 0) are counted but not timed.
func (c *Collector) RecordSummary(outcome string, d time.Duration) {
	c.summaries.WithLabelValues(outcome).Inc()
	if d > 0 {
		c.summaryLatency.Observe(d.Seconds())
	}
}

// RecordMutation records a persisted store change and the resulting size.
func (c *Collector) RecordMutation(op string, total int) {
	c.storeMutations.WithLabelValues(op).Inc()
	c.notes.Set(float64(total))
}

// SetNotes sets the notes gauge.
func (c *Collector) SetNotes(total int) {
	c.notes.Set(float64(total))
}

// Handler returns the Prometheus scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
