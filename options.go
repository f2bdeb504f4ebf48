package isingkm

import (
	"github.com/hupe1980/isingkm/kmeans"
	"github.com/hupe1980/isingkm/pca"
)

type options struct {
	logger           *Logger
	metricsCollector MetricsCollector

	maxIter       int
	tolerance     float64
	emptyCluster  kmeans.EmptyClusterPolicy
	strictSeeding bool
	restarts      int
	workers       int
	seed          uint64

	components   int
	solver       pca.Solver
	onProjection bool
}

func defaultOptions() options {
	return options{
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		maxIter:          100,
		restarts:         1,
		workers:          1,
		seed:             1,
		components:       2,
		solver:           pca.SolverGonum,
	}
}

// Option configures an Analyzer.
type Option func(*options)

// WithLogger sets the logger. A nil logger disables logging.
func WithLogger(l *Logger) Option {
	return func(o *options) {
		if l == nil {
			l = NoopLogger()
		}
		o.logger = l
	}
}

// WithMetricsCollector sets the metrics sink. A nil collector disables metrics.
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithMaxIter sets the Lloyd iteration budget. Default: 100.
func WithMaxIter(n int) Option {
	return func(o *options) { o.maxIter = n }
}

// WithTolerance sets the squared centroid shift treated as convergence. Default: 0.
func WithTolerance(tol float64) Option {
	return func(o *options) { o.tolerance = tol }
}

// WithEmptyClusterPolicy selects how empty clusters are handled. Default: keep.
func WithEmptyClusterPolicy(p kmeans.EmptyClusterPolicy) Option {
	return func(o *options) { o.emptyCluster = p }
}

// WithStrictSeeding makes degenerate k-means++ draws an error.
func WithStrictSeeding(strict bool) Option {
	return func(o *options) { o.strictSeeding = strict }
}

// WithRestarts sets the number of independent seedings. Default: 1.
func WithRestarts(n int) Option {
	return func(o *options) { o.restarts = n }
}

// WithWorkers bounds the goroutines used per iteration. Default: 1.
// Results do not depend on this value.
func WithWorkers(n int) Option {
	return func(o *options) { o.workers = n }
}

// WithSeed sets the seed of the random stream used for k-means++. Default: 1.
func WithSeed(seed uint64) Option {
	return func(o *options) { o.seed = seed }
}

// WithComponents sets the number of principal components. Default: 2.
func WithComponents(n int) Option {
	return func(o *options) { o.components = n }
}

// WithSolver selects the PCA backend. Default: gonum.
func WithSolver(s pca.Solver) Option {
	return func(o *options) { o.solver = s }
}

// WithClusterOnProjection clusters the PCA projection instead of raw spins.
func WithClusterOnProjection(enabled bool) Option {
	return func(o *options) { o.onProjection = enabled }
}
