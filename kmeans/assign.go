package kmeans

import (
	"context"
	"math"

	"github.com/hupe1980/isingkm/distance"
	"golang.org/x/sync/errgroup"
)

// chunkSize is the number of points handled by one unit of parallel work.
// Partial sums are merged in chunk order, so results do not depend on the
// number of workers.
const chunkSize = 1024

// Assign returns, for every point, the index of its nearest centroid by
// squared Euclidean distance. Ties go to the lowest centroid index.
//
// dst is reused when it has capacity for all points.
func Assign(points, centroids Points, dst []int) []int {
	if cap(dst) < points.Len() {
		dst = make([]int, points.Len())
	}
	dst = dst[:points.Len()]
	for i := range points.Len() {
		dst[i], _ = Nearest(points.Row(i), centroids)
	}
	return dst
}

// Nearest finds the closest centroid for a vector and returns its index and
// squared distance. Ties go to the lowest index, including ties at +Inf when
// squared distances overflow. It returns -1 only when there are no centroids.
func Nearest(vec []float64, centroids Points) (int, float64) {
	if centroids.Len() == 0 {
		return -1, math.Inf(1)
	}
	bestCluster := 0
	minDist := distance.SquaredL2(vec, centroids.Row(0))

	for j := 1; j < centroids.Len(); j++ {
		d := distance.SquaredL2(vec, centroids.Row(j))
		if d < minDist {
			minDist = d
			bestCluster = j
		}
	}

	return bestCluster, minDist
}

// assignChunks overwrites assignments in place and returns how many entries
// changed. When initial is set every entry counts as changed.
func assignChunks(ctx context.Context, points, centroids Points, assignments []int, initial bool, workers int) (int, error) {
	n := points.Len()
	chunks := (n + chunkSize - 1) / chunkSize
	changed := make([]int, chunks)

	work := func(c int) {
		lo, hi := c*chunkSize, min((c+1)*chunkSize, n)
		for i := lo; i < hi; i++ {
			best, _ := Nearest(points.Row(i), centroids)
			if initial || assignments[i] != best {
				changed[c]++
			}
			assignments[i] = best
		}
	}

	if err := forEachChunk(ctx, chunks, workers, work); err != nil {
		return 0, err
	}

	total := 0
	for _, c := range changed {
		total += c
	}
	return total, nil
}

// forEachChunk runs fn for every chunk index, on up to workers goroutines.
// It returns only after every started chunk has finished.
func forEachChunk(ctx context.Context, chunks, workers int, fn func(c int)) error {
	if workers <= 1 || chunks <= 1 {
		for c := range chunks {
			fn(c)
		}
		return nil
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for c := range chunks {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			fn(c)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	return ctx.Err()
}
