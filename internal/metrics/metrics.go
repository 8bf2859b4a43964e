// Package metrics provides Prometheus metrics for the lottoracle watch loop.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "lottoracle"

// Metrics bundles the collectors recorded by the watch loop. All collectors
// live on a private registry so the handler does not expose default Go metrics.
type Metrics struct {
	registry *prometheus.Registry

	cycles        prometheus.Counter
	cycleFailures prometheus.Counter
	cycleDuration prometheus.Histogram
	drawsIngested prometheus.Counter
	predictions   *prometheus.CounterVec
	archiveDraws  prometheus.Gauge
}

// New creates a Metrics instance with all collectors registered.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	auto := promauto.With(registry)

	return &Metrics{
		registry: registry,
		cycles: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watch_cycles_total",
			Help:      "Total number of completed watch cycles",
		}),
		cycleFailures: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "watch_cycle_failures_total",
			Help:      "Total number of watch cycles that ended in an error",
		}),
		cycleDuration: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "watch_cycle_duration_seconds",
			Help:      "Histogram of watch cycle wall time in seconds",
			Buckets:   prometheus.DefBuckets,
		}),
		drawsIngested: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "draws_ingested_total",
			Help:      "Total number of new draws written to the archive",
		}),
		predictions: auto.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "predictions_generated_total",
				Help:      "Total number of predictions generated, by method",
			},
			[]string{"method"},
		),
		archiveDraws: auto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_draws",
			Help:      "Number of draws currently stored in the archive",
		}),
	}
}

// RecordCycle observes one finished watch cycle.
func (m *Metrics) RecordCycle(duration time.Duration, failed bool) {
	m.cycles.Inc()
	m.cycleDuration.Observe(duration.Seconds())
	if failed {
		m.cycleFailures.Inc()
	}
}

// RecordIngested adds newly archived draws to the ingest counter.
func (m *Metrics) RecordIngested(count int) {
	if count > 0 {
		m.drawsIngested.Add(float64(count))
	}
}

// RecordPrediction increments the prediction counter for a method.
func (m *Metrics) RecordPrediction(method string) {
	m.predictions.WithLabelValues(method).Inc()
}

// SetArchiveSize updates the archive size gauge.
func (m *Metrics) SetArchiveSize(count int) {
	m.archiveDraws.Set(float64(count))
}

// Handler returns an HTTP handler serving the registry in Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
