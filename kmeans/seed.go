package kmeans

import (
	"math"
	"math/rand/v2"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/hupe1980/isingkm/distance"
)

// Seed selects k initial centroids from points using k-means++.
//
// The first centroid is drawn uniformly. For every point the squared distance
// to the nearest centroid chosen so far (D²) is cached and lowered after each
// pick, and the next centroid is drawn with probability proportional to D².
//
// If D² sums to zero (every remaining point coincides with a chosen centroid)
// the weighted distribution is undefined; the draw then falls back to uniform
// sampling over indices not chosen yet. The number of such fallback draws is
// returned alongside the centroids.
func Seed(points Points, k int, rng *rand.Rand) (Points, int, error) {
	if err := validateK(points, k); err != nil {
		return Points{}, 0, err
	}
	if rng == nil {
		return Points{}, 0, &ConfigError{Field: "rng", Value: nil, Reason: "random source is required"}
	}

	n, dim := points.Len(), points.Dim()
	centroids := newCentroids(k, dim)
	chosen := roaring.New()

	first := rng.IntN(n)
	copy(centroids.mutableRow(0), points.Row(first))
	chosen.Add(uint32(first))

	if k == 1 {
		return centroids, 0, nil
	}

	// Distance to nearest chosen centroid (cached)
	minDistances := make([]float64, n)
	for i := range n {
		minDistances[i] = distance.SquaredL2(points.Row(i), centroids.Row(0))
	}

	fallbacks := 0
	for c := 1; c < k; c++ {
		total := 0.0
		for _, d := range minDistances {
			total += d
		}

		var idx int
		if total > 0 && !math.IsInf(total, 1) {
			idx = weightedDraw(minDistances, total, rng)
		} else {
			var err error
			if idx, err = uniformUnchosen(n, chosen, rng); err != nil {
				return Points{}, fallbacks, err
			}
			fallbacks++
		}

		chosen.Add(uint32(idx))
		center := centroids.mutableRow(c)
		copy(center, points.Row(idx))

		for i := range n {
			if d := distance.SquaredL2(points.Row(i), center); d < minDistances[i] {
				minDistances[i] = d
			}
		}
	}

	return centroids, fallbacks, nil
}

// weightedDraw samples an index with probability weights[i]/total.
// Zero-weight indices are never returned.
func weightedDraw(weights []float64, total float64, rng *rand.Rand) int {
	target := rng.Float64() * total
	cum := 0.0
	last := -1
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		last = i
		cum += w
		if cum > target {
			return i
		}
	}
	// Rounding can leave cum a hair below target.
	return last
}

// uniformUnchosen samples uniformly among the indices in [0,n) not in chosen.
func uniformUnchosen(n int, chosen *roaring.Bitmap, rng *rand.Rand) (int, error) {
	free := roaring.Flip(chosen, 0, uint64(n))
	pick := rng.IntN(int(free.GetCardinality()))
	idx, err := free.Select(uint32(pick))
	if err != nil {
		return 0, err
	}
	return int(idx), nil
}

func validateK(points Points, k int) error {
	if points.Len() == 0 {
		return &ConfigError{Field: "points", Value: 0, Reason: "point set is empty"}
	}
	if k < 1 {
		return &ConfigError{Field: "k", Value: k, Reason: "must be at least 1"}
	}
	if k > points.Len() {
		return &ConfigError{Field: "k", Value: k, Reason: "exceeds the number of points"}
	}
	return nil
}
