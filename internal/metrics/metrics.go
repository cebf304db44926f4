// Package metrics holds the Prometheus collectors for slug resolution.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "notionblog"

// Metrics records slug cache rebuilds and redirect decisions.
type Metrics struct {
	Rebuilds          *prometheus.CounterVec
	RebuildDuration   prometheus.Histogram
	IndexEntries      prometheus.Gauge
	StaleServed       prometheus.Counter
	RedirectDecisions *prometheus.CounterVec

	gatherer prometheus.Gatherer
}

// New registers the collectors on a fresh registry that also carries the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return NewWithRegistry(reg, reg)
}

// NewWithRegistry registers the collectors on reg and serves from g.
func NewWithRegistry(reg prometheus.Registerer, g prometheus.Gatherer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		gatherer: g,

		// result: "ok", "error" or "shared" (adopted from the shared store)
		Rebuilds: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slug_rebuilds_total",
			Help:      "Slug index rebuilds by result.",
		}, []string{"result"}),

		RebuildDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "slug_rebuild_duration_seconds",
			Help:      "Time spent building the slug index.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		}),

		IndexEntries: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "slug_index_entries",
			Help:      "Entries in the current slug index snapshot.",
		}),

		StaleServed: factory.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "slug_stale_served_total",
			Help:      "Lookups answered from a stale snapshot after a failed rebuild.",
		}),

		RedirectDecisions: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "redirect_decisions_total",
			Help:      "Redirect policy decisions by outcome.",
		}, []string{"outcome"}),
	}
}

// RecordRebuild records one rebuild attempt.
func (m *Metrics) RecordRebuild(result string, d time.Duration, entries int) {
	m.Rebuilds.WithLabelValues(result).Inc()
	m.RebuildDuration.Observe(d.Seconds())
	if entries >= 0 {
		m.IndexEntries.Set(float64(entries))
	}
}

// RecordStaleServed records a lookup answered from a stale snapshot.
func (m *Metrics) RecordStaleServed() {
	m.StaleServed.Inc()
}

// RecordRedirectDecision records a redirect policy outcome.
func (m *Metrics) RecordRedirectDecision(outcome string) {
	m.RedirectDecisions.WithLabelValues(outcome).Inc()
}

// Handler serves the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
