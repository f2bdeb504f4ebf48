// Package pca projects point sets onto their leading principal components.
//
// Two solvers are available:
//
//   - SolverGonum (default): gonum's stat.PC, a thin SVD of the centred data
//   - SolverJacobi: a self-contained one-sided Jacobi SVD, intended for small inputs
//
// Both return components sorted by decreasing variance with the sign fixed so
// that the largest-magnitude loading of every component is positive, so the
// two solvers produce the same projection up to rounding.
package pca
