package kmeans

import (
	"math"
	"slices"
)

// Points is an immutable n × dim matrix of float64 coordinates stored row-major.
//
// It is used both for the input point set and for centroid sets.
type Points struct {
	data []float64
	n    int
	dim  int
}

// NewPoints wraps flattened row-major data (n * dim values).
// The slice is not copied; callers must not modify it afterwards.
func NewPoints(data []float64, dim int) (Points, error) {
	if dim < 1 {
		return Points{}, &ConfigError{Field: "dimension", Value: dim, Reason: "must be at least 1"}
	}
	if len(data) == 0 {
		return Points{}, &ConfigError{Field: "points", Value: 0, Reason: "point set is empty"}
	}
	if len(data)%dim != 0 {
		return Points{}, &ConfigError{Field: "points", Value: len(data), Reason: "length is not a multiple of the dimension"}
	}
	n := len(data) / dim
	if uint64(n) > math.MaxUint32 {
		return Points{}, &ConfigError{Field: "points", Value: n, Reason: "too many points"}
	}
	for i, v := range data {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return Points{}, &ConfigError{Field: "coordinate", Value: i, Reason: "must be finite"}
		}
	}
	return Points{data: data, n: n, dim: dim}, nil
}

// FromRows copies a slice of equally sized rows into a Points matrix.
func FromRows(rows [][]float64) (Points, error) {
	if len(rows) == 0 {
		return Points{}, &ConfigError{Field: "points", Value: 0, Reason: "point set is empty"}
	}
	dim := len(rows[0])
	data := make([]float64, 0, len(rows)*dim)
	for i, r := range rows {
		if len(r) != dim {
			return Points{}, &ConfigError{Field: "row", Value: i, Reason: "ragged rows"}
		}
		data = append(data, r...)
	}
	return NewPoints(data, dim)
}

// Len returns the number of rows.
func (p Points) Len() int { return p.n }

// Dim returns the number of coordinates per row.
func (p Points) Dim() int { return p.dim }

// Row returns a read-only view of row i.
func (p Points) Row(i int) []float64 {
	return p.data[i*p.dim : (i+1)*p.dim : (i+1)*p.dim]
}

// Data returns the underlying flattened data. It must not be modified.
func (p Points) Data() []float64 { return p.data }

// Rows returns a copy of the matrix as a slice of rows.
func (p Points) Rows() [][]float64 {
	out := make([][]float64, p.n)
	for i := range out {
		out[i] = slices.Clone(p.Row(i))
	}
	return out
}

// Clone returns a deep copy.
func (p Points) Clone() Points {
	return Points{data: slices.Clone(p.data), n: p.n, dim: p.dim}
}

// Equal reports whether both matrices have the same shape and bitwise-equal coordinates.
func (p Points) Equal(o Points) bool {
	return p.n == o.n && p.dim == o.dim && slices.Equal(p.data, o.data)
}

func newCentroids(k, dim int) Points {
	return Points{data: make([]float64, k*dim), n: k, dim: dim}
}

func (p Points) mutableRow(i int) []float64 {
	return p.data[i*p.dim : (i+1)*p.dim]
}
