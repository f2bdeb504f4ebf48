// Package metrics exports analysis metrics to Prometheus.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/hupe1980/isingkm"
)

const namespace = "isingkm"

// PrometheusCollector implements isingkm.MetricsCollector with Prometheus
// counters, gauges and histograms.
type PrometheusCollector struct {
	runs          *prometheus.CounterVec
	runLatency    prometheus.Histogram
	iterations    prometheus.Histogram
	lastSSE       prometheus.Gauge
	reassigned    prometheus.Counter
	emptyClusters prometheus.Counter
	seedFallbacks prometheus.Counter
	projections   *prometheus.CounterVec
	projLatency   prometheus.Histogram
}

var _ isingkm.MetricsCollector = (*PrometheusCollector)(nil)

// NewPrometheusCollector creates the collector and registers its metrics with reg.
// A nil reg uses prometheus.DefaultRegisterer.
func NewPrometheusCollector(reg prometheus.Registerer) (*PrometheusCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &PrometheusCollector{
		runs: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kmeans_runs_total",
			Help:      "Clustering runs by outcome.",
		}, []string{"k", "outcome"}),
		runLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kmeans_run_duration_seconds",
			Help:      "Wall time of clustering runs.",
			Buckets:   prometheus.DefBuckets,
		}),
		iterations: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "kmeans_iterations",
			Help:      "Lloyd iterations per clustering run.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		lastSSE: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "kmeans_sse",
			Help:      "Mean squared error after the latest iteration.",
		}),
		reassigned: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kmeans_reassigned_points_total",
			Help:      "Points whose cluster changed, summed over iterations.",
		}),
		emptyClusters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kmeans_empty_clusters_total",
			Help:      "Clusters that received no points in an iteration.",
		}),
		seedFallbacks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "kmeans_seed_fallbacks_total",
			Help:      "k-means++ draws that fell back to uniform sampling.",
		}),
		projections: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pca_fits_total",
			Help:      "PCA fits by outcome.",
		}, []string{"outcome"}),
		projLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "pca_fit_duration_seconds",
			Help:      "Wall time of PCA fits.",
			Buckets:   prometheus.DefBuckets,
		}),
	}

	for _, col := range []prometheus.Collector{
		c.runs, c.runLatency, c.iterations, c.lastSSE, c.reassigned,
		c.emptyClusters, c.seedFallbacks, c.projections, c.projLatency,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

// RecordRun implements isingkm.MetricsCollector.
func (c *PrometheusCollector) RecordRun(k, iterations int, converged bool, d time.Duration, err error) {
	label := outcome(err)
	if err == nil && !converged {
		label = "max_iter"
	}
	c.runs.WithLabelValues(strconv.Itoa(k), label).Inc()
	c.runLatency.Observe(d.Seconds())
	if err == nil {
		c.iterations.Observe(float64(iterations))
	}
}

// RecordIteration implements isingkm.MetricsCollector.
func (c *PrometheusCollector) RecordIteration(sse float64, changed int) {
	c.lastSSE.Set(sse)
	c.reassigned.Add(float64(changed))
}

// RecordEmptyCluster implements isingkm.MetricsCollector.
func (c *PrometheusCollector) RecordEmptyCluster() { c.emptyClusters.Inc() }

// RecordSeedFallback implements isingkm.MetricsCollector.
func (c *PrometheusCollector) RecordSeedFallback(n int) { c.seedFallbacks.Add(float64(n)) }

// RecordProjection implements isingkm.MetricsCollector.
func (c *PrometheusCollector) RecordProjection(_ int, d time.Duration, err error) {
	c.projections.WithLabelValues(outcome(err)).Inc()
	c.projLatency.Observe(d.Seconds())
}
