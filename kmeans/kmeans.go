package kmeans

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// Config controls a clustering run.
type Config struct {
	// K is the number of clusters (1 <= K <= number of points).
	K int

	// MaxIter is the iteration budget (>= 1). Each iteration is one
	// assign/update pass and appends one SSE history entry.
	MaxIter int

	// Tolerance is the largest squared centroid shift still treated as
	// "unchanged". Zero requires exact equality.
	Tolerance float64

	// EmptyCluster selects the empty-cluster policy. Defaults to EmptyKeep.
	EmptyCluster EmptyClusterPolicy

	// StrictSeeding turns degenerate k-means++ draws into ErrDegenerateSeeding
	// instead of falling back to uniform sampling.
	StrictSeeding bool

	// Restarts is the number of independent seedings; the run with the lowest
	// final SSE wins (earliest on ties). Values below 1 mean 1.
	Restarts int

	// Workers bounds the goroutines used within an iteration. Values below 1 mean 1.
	Workers int

	// OnIteration, if set, is called synchronously after every iteration.
	OnIteration func(IterationStats)
}

// IterationStats describes one completed iteration.
type IterationStats struct {
	Restart   int
	Iteration int
	SSE       float64
	// Changed is the number of points whose assignment changed.
	Changed int
	// Shift is the largest squared distance a centroid moved.
	Shift float64
	// Empty lists clusters that received no points.
	Empty []int
}

// EmptyClusterEvent records a cluster that received no points.
type EmptyClusterEvent struct {
	Restart   int
	Iteration int
	Cluster   int
}

// Result is the outcome of a clustering run. It is not mutated after Run returns.
type Result struct {
	Centroids   Points
	Assignments []int
	// SSEHistory holds one mean squared error per completed iteration.
	SSEHistory []float64
	// Converged is false when the run stopped because MaxIter was exhausted.
	Converged bool
	// SeedFallbacks counts k-means++ draws that fell back to uniform sampling.
	SeedFallbacks int
	EmptyClusters []EmptyClusterEvent
	// Restart is the index of the seeding that produced this result.
	Restart int
}

// Iterations returns the number of completed iterations.
func (r *Result) Iterations() int { return len(r.SSEHistory) }

// SSE returns the final mean squared error.
func (r *Result) SSE() float64 {
	if len(r.SSEHistory) == 0 {
		return 0
	}
	return r.SSEHistory[len(r.SSEHistory)-1]
}

// K returns the number of clusters.
func (r *Result) K() int { return r.Centroids.Len() }

// Members returns the indices of the points assigned to cluster c.
func (r *Result) Members(c int) *roaring.Bitmap {
	bm := roaring.New()
	for i, a := range r.Assignments {
		if a == c {
			bm.Add(uint32(i))
		}
	}
	return bm
}

// Sizes returns the number of points in every cluster. Assignments outside
// [0, K) are not counted.
func (r *Result) Sizes() []int {
	sizes := make([]int, r.K())
	for _, a := range r.Assignments {
		if a >= 0 && a < len(sizes) {
			sizes[a]++
		}
	}
	return sizes
}

func (c Config) validate(points Points) error {
	if err := validateK(points, c.K); err != nil {
		return err
	}
	if c.MaxIter < 1 {
		return &ConfigError{Field: "max iterations", Value: c.MaxIter, Reason: "must be at least 1"}
	}
	if c.Tolerance < 0 {
		return &ConfigError{Field: "tolerance", Value: c.Tolerance, Reason: "must not be negative"}
	}
	switch c.EmptyCluster {
	case EmptyKeep, EmptyReseedFarthest, EmptyFail:
	default:
		return &ConfigError{Field: "empty cluster policy", Value: int(c.EmptyCluster), Reason: "unknown policy"}
	}
	return nil
}

// Run clusters points into cfg.K clusters: k-means++ seeding followed by
// Lloyd's iterations until the assignment vector stops changing, the centroid
// shift drops to cfg.Tolerance, or cfg.MaxIter iterations have run.
//
// The context is checked between iterations.
func Run(ctx context.Context, points Points, cfg Config, rng *rand.Rand) (*Result, error) {
	if err := cfg.validate(points); err != nil {
		return nil, err
	}
	if rng == nil {
		return nil, &ConfigError{Field: "rng", Value: nil, Reason: "random source is required"}
	}

	restarts := max(cfg.Restarts, 1)
	workers := max(cfg.Workers, 1)

	var best *Result
	for r := range restarts {
		res, err := runOnce(ctx, points, cfg, rng, r, workers)
		if err != nil {
			return nil, err
		}
		if best == nil || res.SSE() < best.SSE() {
			best = res
		}
	}
	return best, nil
}

func runOnce(ctx context.Context, points Points, cfg Config, rng *rand.Rand, restart, workers int) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	centroids, fallbacks, err := Seed(points, cfg.K, rng)
	if err != nil {
		return nil, err
	}
	if fallbacks > 0 && cfg.StrictSeeding {
		return nil, fmt.Errorf("%w: %d draw(s) had an all-zero distance distribution", ErrDegenerateSeeding, fallbacks)
	}

	res := &Result{
		SeedFallbacks: fallbacks,
		Restart:       restart,
		SSEHistory:    make([]float64, 0, min(cfg.MaxIter, 64)),
	}
	assignments := make([]int, points.Len())

	for iter := 0; ; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if iter == cfg.MaxIter {
			break
		}

		changed, err := assignChunks(ctx, points, centroids, assignments, iter == 0, workers)
		if err != nil {
			return nil, err
		}
		// Same assignments produce the same means: nothing left to do.
		if iter > 0 && changed == 0 {
			res.Converged = true
			break
		}

		next, empty, err := updateChunks(ctx, points, assignments, centroids, cfg.EmptyCluster, workers)
		if err != nil {
			var ece *EmptyClusterError
			if errors.As(err, &ece) {
				ece.Iteration = iter + 1
			}
			return nil, err
		}
		for _, c := range empty {
			res.EmptyClusters = append(res.EmptyClusters, EmptyClusterEvent{Restart: restart, Iteration: iter + 1, Cluster: c})
		}

		shift := maxShift(centroids, next)
		centroids = next

		sse := ComputeSSE(points, centroids, assignments)
		res.SSEHistory = append(res.SSEHistory, sse)

		if cfg.OnIteration != nil {
			cfg.OnIteration(IterationStats{
				Restart:   restart,
				Iteration: iter + 1,
				SSE:       sse,
				Changed:   changed,
				Shift:     shift,
				Empty:     slices.Clone(empty),
			})
		}

		if shift <= cfg.Tolerance {
			res.Converged = true
			break
		}
	}

	res.Centroids = centroids
	res.Assignments = assignments
	return res, nil
}
