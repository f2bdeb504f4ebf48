package kmeans

import (
	"math/rand/v2"
	"sort"
	"testing"

	"github.com/RoaringBitmap/roaring/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeed_Deterministic(t *testing.T) {
	points := blobs(t, newRNG(3), 250, 3, 4)

	c1, f1, err := Seed(points, 4, newRNG(17))
	require.NoError(t, err)
	c2, f2, err := Seed(points, 4, newRNG(17))
	require.NoError(t, err)

	assert.True(t, c1.Equal(c2))
	assert.Equal(t, f1, f2)
	assert.Equal(t, 4, c1.Len())
	assert.Equal(t, 3, c1.Dim())
}

func TestSeed_MinimumOverAllChosenCentroids(t *testing.T) {
	// Duplicates of already chosen values must carry zero weight, which only
	// holds when D² is the minimum over every chosen centroid.
	points := mustRows(t, [][]float64{{0}, {0}, {10}, {10}, {20}})

	for seed := range uint64(50) {
		centroids, fallbacks, err := Seed(points, 3, newRNG(seed))
		require.NoError(t, err)
		assert.Equal(t, 0, fallbacks)

		var got []float64
		for _, c := range centroids.Rows() {
			got = append(got, c[0])
		}
		sort.Float64s(got)
		assert.Equal(t, []float64{0, 10, 20}, got, "seed %d", seed)
	}
}

func TestSeed_CentroidsArePoints(t *testing.T) {
	points := blobs(t, newRNG(12), 50, 2, 2)
	centroids, _, err := Seed(points, 5, newRNG(12))
	require.NoError(t, err)

	for _, c := range centroids.Rows() {
		found := false
		for i := range points.Len() {
			if assert.ObjectsAreEqual(c, points.Row(i)) {
				found = true
				break
			}
		}
		assert.True(t, found, "centroid %v is not an input point", c)
	}
}

func TestSeed_Degenerate(t *testing.T) {
	points := mustRows(t, [][]float64{{2}, {2}, {2}})
	centroids, fallbacks, err := Seed(points, 3, newRNG(1))
	require.NoError(t, err)
	assert.Equal(t, 2, fallbacks)
	assert.Equal(t, [][]float64{{2}, {2}, {2}}, centroids.Rows())
}

func TestSeed_InvalidK(t *testing.T) {
	points := mustRows(t, [][]float64{{0}, {1}})

	_, _, err := Seed(points, 0, newRNG(1))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, _, err = Seed(points, 3, newRNG(1))
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
	_, _, err = Seed(points, 1, nil)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestWeightedDraw_SkipsZeroWeights(t *testing.T) {
	rng := newRNG(9)
	for range 100 {
		assert.Equal(t, 2, weightedDraw([]float64{0, 0, 5, 0}, 5, rng))
	}
}

func TestUniformUnchosen(t *testing.T) {
	chosen := roaring.BitmapOf(0, 1, 3)
	rng := rand.New(rand.NewPCG(1, 2))
	seen := map[int]bool{}
	for range 200 {
		idx, err := uniformUnchosen(5, chosen, rng)
		require.NoError(t, err)
		seen[idx] = true
	}
	assert.Equal(t, map[int]bool{2: true, 4: true}, seen)
}
