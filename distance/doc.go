// Package distance provides the float64 kernels used by the clustering and
// projection packages: SquaredL2 for k-means and Dot for PCA projections.
//
// # Usage
//
//	d := distance.SquaredL2(a, b)
//	p := distance.Dot(centered, component)
package distance
