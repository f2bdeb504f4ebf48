package isingkm

import (
	"math"
	"sync/atomic"
	"time"
)

// MetricsCollector defines an interface for collecting analysis metrics.
// Implement it to integrate with a monitoring system; see the metrics
// package for a Prometheus implementation.
type MetricsCollector interface {
	// RecordRun is called after each clustering run.
	RecordRun(k, iterations int, converged bool, duration time.Duration, err error)

	// RecordIteration is called after each Lloyd iteration.
	RecordIteration(sse float64, changed int)

	// RecordEmptyCluster is called whenever a cluster loses all its points.
	RecordEmptyCluster()

	// RecordSeedFallback is called with the number of uniform seeding draws in a run.
	RecordSeedFallback(n int)

	// RecordProjection is called after each PCA fit.
	RecordProjection(components int, duration time.Duration, err error)
}

// NoopMetricsCollector discards all metrics.
type NoopMetricsCollector struct{}

func (NoopMetricsCollector) RecordRun(int, int, bool, time.Duration, error) {}
func (NoopMetricsCollector) RecordIteration(float64, int)                   {}
func (NoopMetricsCollector) RecordEmptyCluster()                            {}
func (NoopMetricsCollector) RecordSeedFallback(int)                         {}
func (NoopMetricsCollector) RecordProjection(int, time.Duration, error)     {}

// BasicMetricsCollector keeps simple in-memory counters.
type BasicMetricsCollector struct {
	RunCount         atomic.Int64
	RunErrors        atomic.Int64
	RunConverged     atomic.Int64
	RunTotalNanos    atomic.Int64
	IterationCount   atomic.Int64
	ReassignedPoints atomic.Int64
	EmptyClusters    atomic.Int64
	SeedFallbacks    atomic.Int64
	ProjectionCount  atomic.Int64
	ProjectionErrors atomic.Int64
	// lastSSE holds math.Float64bits of the latest iteration SSE.
	lastSSE atomic.Uint64
}

// RecordRun implements MetricsCollector.
func (b *BasicMetricsCollector) RecordRun(_ int, _ int, converged bool, duration time.Duration, err error) {
	b.RunCount.Add(1)
	b.RunTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.RunErrors.Add(1)
	}
	if converged {
		b.RunConverged.Add(1)
	}
}

// RecordIteration implements MetricsCollector.
func (b *BasicMetricsCollector) RecordIteration(sse float64, changed int) {
	b.IterationCount.Add(1)
	b.ReassignedPoints.Add(int64(changed))
	b.lastSSE.Store(math.Float64bits(sse))
}

// RecordEmptyCluster implements MetricsCollector.
func (b *BasicMetricsCollector) RecordEmptyCluster() {
	b.EmptyClusters.Add(1)
}

// RecordSeedFallback implements MetricsCollector.
func (b *BasicMetricsCollector) RecordSeedFallback(n int) {
	b.SeedFallbacks.Add(int64(n))
}

// RecordProjection implements MetricsCollector.
func (b *BasicMetricsCollector) RecordProjection(_ int, _ time.Duration, err error) {
	b.ProjectionCount.Add(1)
	if err != nil {
		b.ProjectionErrors.Add(1)
	}
}

// GetStats returns a snapshot of current metrics.
func (b *BasicMetricsCollector) GetStats() BasicMetricsStats {
	s := BasicMetricsStats{
		RunCount:         b.RunCount.Load(),
		RunErrors:        b.RunErrors.Load(),
		RunConverged:     b.RunConverged.Load(),
		IterationCount:   b.IterationCount.Load(),
		ReassignedPoints: b.ReassignedPoints.Load(),
		EmptyClusters:    b.EmptyClusters.Load(),
		SeedFallbacks:    b.SeedFallbacks.Load(),
		ProjectionCount:  b.ProjectionCount.Load(),
		ProjectionErrors: b.ProjectionErrors.Load(),
		LastSSE:          math.Float64frombits(b.lastSSE.Load()),
	}
	if s.RunCount > 0 {
		s.RunAvgNanos = b.RunTotalNanos.Load() / s.RunCount
	}
	return s
}

// BasicMetricsStats is a snapshot of BasicMetricsCollector state.
type BasicMetricsStats struct {
	RunCount         int64
	RunErrors        int64
	RunConverged     int64
	RunAvgNanos      int64
	IterationCount   int64
	ReassignedPoints int64
	EmptyClusters    int64
	SeedFallbacks    int64
	ProjectionCount  int64
	ProjectionErrors int64
	LastSSE          float64
}
