package kmeans

import "github.com/hupe1980/isingkm/distance"

// ComputeSSE returns the mean over all points of the squared Euclidean
// distance between a point and its assigned centroid.
func ComputeSSE(points Points, centroids Points, assignments []int) float64 {
	if points.Len() == 0 {
		return 0
	}
	sum := 0.0
	for i := range points.Len() {
		sum += distance.SquaredL2(points.Row(i), centroids.Row(assignments[i]))
	}
	return sum / float64(points.Len())
}

// maxShift returns the largest squared distance any centroid moved.
func maxShift(prev, next Points) float64 {
	shift := 0.0
	for j := range prev.Len() {
		if d := distance.SquaredL2(prev.Row(j), next.Row(j)); d > shift {
			shift = d
		}
	}
	return shift
}
