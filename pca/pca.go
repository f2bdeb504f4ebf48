package pca

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/hupe1980/isingkm/distance"
	"github.com/hupe1980/isingkm/kmeans"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

var (
	// ErrTooFewSamples is returned when fewer than two points are given.
	ErrTooFewSamples = errors.New("pca: at least two samples are required")
	// ErrInvalidComponents is returned for a component count outside [1, min(n, dim)].
	ErrInvalidComponents = errors.New("pca: invalid number of components")
	// ErrNotConverged is returned when the decomposition fails.
	ErrNotConverged = errors.New("pca: decomposition did not converge")
)

// Solver selects the decomposition backend.
type Solver int

const (
	SolverGonum Solver = iota
	SolverJacobi
)

func (s Solver) String() string {
	switch s {
	case SolverGonum:
		return "gonum"
	case SolverJacobi:
		return "jacobi"
	default:
		return fmt.Sprintf("Unknown(%d)", s)
	}
}

// ParseSolver parses the names produced by String.
func ParseSolver(s string) (Solver, error) {
	switch s {
	case "", "gonum":
		return SolverGonum, nil
	case "jacobi":
		return SolverJacobi, nil
	default:
		return 0, fmt.Errorf("pca: unknown solver %q", s)
	}
}

// Model is a fitted projection.
type Model struct {
	Solver Solver
	// Mean is the per-coordinate mean subtracted before projecting.
	Mean []float64
	// Components holds one unit-length direction per row, strongest first.
	Components [][]float64
	// Variances holds the sample variance captured by each component.
	Variances []float64
	// ExplainedRatio is Variances divided by the total variance of the data.
	ExplainedRatio []float64
}

// Fit computes the leading principal components of points.
func Fit(points kmeans.Points, components int, solver Solver) (*Model, error) {
	n, dim := points.Len(), points.Dim()
	if n < 2 {
		return nil, ErrTooFewSamples
	}
	if components < 1 || components > min(n, dim) {
		return nil, fmt.Errorf("%w: %d (max %d)", ErrInvalidComponents, components, min(n, dim))
	}

	mean := make([]float64, dim)
	for i := range n {
		for d, v := range points.Row(i) {
			mean[d] += v
		}
	}
	for d := range mean {
		mean[d] /= float64(n)
	}

	centered := make([]float64, n*dim)
	totalVar := 0.0
	for i := range n {
		row := points.Row(i)
		for d := range dim {
			c := row[d] - mean[d]
			centered[i*dim+d] = c
			totalVar += c * c
		}
	}
	totalVar /= float64(n - 1)

	var (
		vecs [][]float64
		vars []float64
		err  error
	)
	switch solver {
	case SolverGonum:
		vecs, vars, err = fitGonum(centered, n, dim)
	case SolverJacobi:
		vecs, vars = fitJacobi(centered, n, dim)
	default:
		err = fmt.Errorf("pca: unknown solver %v", solver)
	}
	if err != nil {
		return nil, err
	}

	m := &Model{
		Solver:         solver,
		Mean:           mean,
		Components:     make([][]float64, components),
		Variances:      make([]float64, components),
		ExplainedRatio: make([]float64, components),
	}
	for c := range components {
		m.Components[c] = fixSign(vecs[c])
		m.Variances[c] = vars[c]
		if totalVar > 0 {
			m.ExplainedRatio[c] = vars[c] / totalVar
		}
	}
	return m, nil
}

// Transform projects points onto the fitted components.
func (m *Model) Transform(points kmeans.Points) (kmeans.Points, error) {
	if points.Dim() != len(m.Mean) {
		return kmeans.Points{}, fmt.Errorf("pca: dimension mismatch: expected %d, got %d", len(m.Mean), points.Dim())
	}
	k := len(m.Components)
	out := make([]float64, 0, points.Len()*k)
	centered := make([]float64, len(m.Mean))
	for i := range points.Len() {
		for d, v := range points.Row(i) {
			centered[d] = v - m.Mean[d]
		}
		for _, comp := range m.Components {
			out = append(out, distance.Dot(centered, comp))
		}
	}
	return kmeans.NewPoints(out, k)
}

// FitTransform fits a model and projects the same points.
func FitTransform(points kmeans.Points, components int, solver Solver) (*Model, kmeans.Points, error) {
	m, err := Fit(points, components, solver)
	if err != nil {
		return nil, kmeans.Points{}, err
	}
	projected, err := m.Transform(points)
	if err != nil {
		return nil, kmeans.Points{}, err
	}
	return m, projected, nil
}

func fitGonum(centered []float64, n, dim int) ([][]float64, []float64, error) {
	var pc stat.PC
	if ok := pc.PrincipalComponents(mat.NewDense(n, dim, centered), nil); !ok {
		return nil, nil, ErrNotConverged
	}

	var v mat.Dense
	pc.VectorsTo(&v)
	vars := pc.VarsTo(nil)

	_, cols := v.Dims()
	vecs := make([][]float64, cols)
	for c := range cols {
		vecs[c] = mat.Col(nil, c, &v)
	}
	return vecs, vars, nil
}

func fitJacobi(centered []float64, n, dim int) ([][]float64, []float64) {
	// Decompose whichever orientation has fewer columns. For A (n × dim) the
	// directions are the columns of V; for A^T they are the columns of U.
	transposed := dim > n
	var a [][]float64
	if transposed {
		a = make([][]float64, dim)
		for d := range dim {
			a[d] = make([]float64, n)
			for i := range n {
				a[d][i] = centered[i*dim+d]
			}
		}
	} else {
		a = make([][]float64, n)
		for i := range n {
			a[i] = append([]float64(nil), centered[i*dim:(i+1)*dim]...)
		}
	}

	u, sigma, v := svd(a)

	order := make([]int, len(sigma))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool { return sigma[order[i]] > sigma[order[j]] })

	basis := v
	if transposed {
		basis = u
	}

	vecs := make([][]float64, len(order))
	vars := make([]float64, len(order))
	for r, j := range order {
		vec := make([]float64, dim)
		for d := range dim {
			vec[d] = basis[d][j]
		}
		vecs[r] = vec
		vars[r] = sigma[j] * sigma[j] / float64(n-1)
	}
	return vecs, vars
}

// fixSign flips vec so that its largest-magnitude entry is positive.
func fixSign(vec []float64) []float64 {
	best := 0
	for i, v := range vec {
		if math.Abs(v) > math.Abs(vec[best]) {
			best = i
		}
	}
	if len(vec) > 0 && vec[best] < 0 {
		for i := range vec {
			vec[i] = -vec[i]
		}
	}
	return vec
}
