// Package kmeans implements k-means clustering with k-means++ seeding.
//
// A run seeds k centroids with the k-means++ heuristic (first centroid drawn
// uniformly, each following one drawn with probability proportional to the
// squared distance to the nearest centroid chosen so far) and then refines
// them with Lloyd's algorithm: assign every point to its nearest centroid,
// recompute each centroid as the mean of its points, repeat.
//
// # Lifecycle
//
//	Init      Seed() picks k centroids
//	Iterate   Assign() -> UpdateCentroids() -> ComputeSSE(), one history entry per pass
//	Converged assignment vector stable, centroid shift <= Tolerance, or MaxIter passes done
//
// The exit condition is evaluated at the top of every pass. The SSE recorded
// for a pass is measured after UpdateCentroids: it is the mean squared distance
// between each point and the centroid recomputed from its cluster in that
// pass, not the centroid the point was assigned to. The history is therefore
// non-increasing, and a k=1 run records the population variance after one pass.
//
// # Randomness
//
// All randomness comes from the *rand.Rand handed to Seed or Run. The package
// holds no generator of its own: the same seed and the same input produce
// bitwise-identical results, independent of Config.Workers.
//
// # Limitations
//
// Lloyd's algorithm converges to a local optimum of the SSE, not necessarily
// the global one. Config.Restarts runs several independent seedings and keeps
// the best result, which makes poor optima less likely but does not rule them out.
//
// # Empty clusters
//
// A cluster that loses all of its points is handled by Config.EmptyCluster:
//
//   - EmptyKeep (default): the previous centroid is retained unchanged
//   - EmptyReseedFarthest: the centroid moves to the point farthest from its own centroid
//   - EmptyFail: the run stops with ErrEmptyCluster
//
// Every occurrence is reported in Result.EmptyClusters.
package kmeans
