package kmeans

import (
	"context"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/isingkm/distance"
)

// EmptyClusterPolicy selects what happens to the centroid of a cluster that
// received no points.
type EmptyClusterPolicy int

const (
	// EmptyKeep retains the previous centroid unchanged.
	EmptyKeep EmptyClusterPolicy = iota
	// EmptyReseedFarthest moves the centroid onto the point that lies farthest
	// from its own updated centroid (lowest index on ties). Points already used
	// for another empty cluster in the same update are skipped. If every point
	// sits exactly on its centroid the previous centroid is kept.
	EmptyReseedFarthest
	// EmptyFail aborts the run with ErrEmptyCluster.
	EmptyFail
)

func (p EmptyClusterPolicy) String() string {
	switch p {
	case EmptyKeep:
		return "keep"
	case EmptyReseedFarthest:
		return "reseed-farthest"
	case EmptyFail:
		return "fail"
	default:
		return "unknown"
	}
}

// ParseEmptyClusterPolicy parses the names produced by String.
func ParseEmptyClusterPolicy(s string) (EmptyClusterPolicy, error) {
	switch s {
	case "", "keep":
		return EmptyKeep, nil
	case "reseed-farthest", "reseed":
		return EmptyReseedFarthest, nil
	case "fail":
		return EmptyFail, nil
	default:
		return 0, &ConfigError{Field: "empty cluster policy", Value: s, Reason: "expected keep, reseed-farthest or fail"}
	}
}

// UpdateCentroids recomputes every centroid as the arithmetic mean of the
// points assigned to it. prev supplies the current centroids, which the
// empty-cluster policy needs. The indices of empty clusters are returned.
func UpdateCentroids(points Points, assignments []int, prev Points, policy EmptyClusterPolicy) (Points, []int, error) {
	return updateChunks(context.Background(), points, assignments, prev, policy, 1)
}

func updateChunks(ctx context.Context, points Points, assignments []int, prev Points, policy EmptyClusterPolicy, workers int) (Points, []int, error) {
	n, dim, k := points.Len(), points.Dim(), prev.Len()
	if len(assignments) != n {
		return Points{}, nil, &ConfigError{Field: "assignments", Value: len(assignments), Reason: "length differs from the number of points"}
	}

	for i, a := range assignments {
		if a < 0 || a >= k {
			return Points{}, nil, &ConfigError{Field: "assignment", Value: i, Reason: "cluster index out of range"}
		}
	}

	chunks := (n + chunkSize - 1) / chunkSize
	partialSums := make([][]float64, chunks)
	partialCounts := make([][]int, chunks)

	work := func(c int) {
		sums := make([]float64, k*dim)
		counts := make([]int, k)
		lo, hi := c*chunkSize, min((c+1)*chunkSize, n)
		for i := lo; i < hi; i++ {
			cluster := assignments[i]
			vec := points.Row(i)
			sum := sums[cluster*dim : (cluster+1)*dim]
			for d := range dim {
				sum[d] += vec[d]
			}
			counts[cluster]++
		}
		partialSums[c] = sums
		partialCounts[c] = counts
	}

	if err := forEachChunk(ctx, chunks, workers, work); err != nil {
		return Points{}, nil, err
	}

	// Merge in chunk order.
	sums := make([]float64, k*dim)
	counts := make([]int, k)
	for c := range chunks {
		for i, v := range partialSums[c] {
			sums[i] += v
		}
		for j, v := range partialCounts[c] {
			counts[j] += v
		}
	}

	next := newCentroids(k, dim)
	var empty []int
	for j := range k {
		center := next.mutableRow(j)
		if counts[j] == 0 {
			empty = append(empty, j)
			copy(center, prev.Row(j))
			continue
		}
		scale := 1.0 / float64(counts[j])
		sum := sums[j*dim : (j+1)*dim]
		for d := range dim {
			center[d] = sum[d] * scale
		}
	}

	if len(empty) == 0 {
		return next, nil, nil
	}

	switch policy {
	case EmptyFail:
		return Points{}, empty, &EmptyClusterError{Cluster: empty[0]}
	case EmptyReseedFarthest:
		reseedFarthest(points, assignments, next, empty)
	}

	return next, empty, nil
}

func reseedFarthest(points Points, assignments []int, centroids Points, empty []int) {
	taken := roaring.New()
	for _, j := range empty {
		best, bestDist := -1, 0.0
		for i := range points.Len() {
			if taken.Contains(uint32(i)) {
				continue
			}
			d := distance.SquaredL2(points.Row(i), centroids.Row(assignments[i]))
			if d > bestDist {
				best, bestDist = i, d
			}
		}
		if best < 0 {
			return
		}
		taken.Add(uint32(best))
		copy(centroids.mutableRow(j), points.Row(best))
	}
}
