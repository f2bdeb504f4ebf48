package pca

import (
	"math"
	"math/rand/v2"
	"testing"

	"github.com/hupe1980/isingkm/kmeans"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// lineData scatters points along direction (1, 2, 0) with small noise.
func lineData(t *testing.T, n int) kmeans.Points {
	t.Helper()
	rng := rand.New(rand.NewPCG(1, 2))
	data := make([]float64, 0, n*3)
	for range n {
		s := rng.NormFloat64() * 5
		data = append(data,
			1+s+0.01*rng.NormFloat64(),
			-2+2*s+0.01*rng.NormFloat64(),
			3+0.01*rng.NormFloat64(),
		)
	}
	p, err := kmeans.NewPoints(data, 3)
	require.NoError(t, err)
	return p
}

func TestFit_RecoversDominantDirection(t *testing.T) {
	points := lineData(t, 500)
	want := []float64{1 / math.Sqrt(5), 2 / math.Sqrt(5), 0}

	for _, solver := range []Solver{SolverGonum, SolverJacobi} {
		t.Run(solver.String(), func(t *testing.T) {
			m, err := Fit(points, 2, solver)
			require.NoError(t, err)
			require.Len(t, m.Components, 2)

			assert.InDeltaSlice(t, want, m.Components[0], 1e-3)
			assert.Greater(t, m.ExplainedRatio[0], 0.99)
			assert.GreaterOrEqual(t, m.Variances[0], m.Variances[1])
			assert.InDelta(t, 1.0, norm(m.Components[1]), 1e-9)
		})
	}
}

func TestFit_SolversAgree(t *testing.T) {
	rng := rand.New(rand.NewPCG(7, 7))
	data := make([]float64, 0, 60*4)
	for range 60 {
		data = append(data, rng.NormFloat64()*4, rng.NormFloat64()*3, rng.NormFloat64()*2, rng.NormFloat64())
	}
	points, err := kmeans.NewPoints(data, 4)
	require.NoError(t, err)

	g, err := Fit(points, 3, SolverGonum)
	require.NoError(t, err)
	j, err := Fit(points, 3, SolverJacobi)
	require.NoError(t, err)

	assert.InDeltaSlice(t, g.Variances, j.Variances, 1e-8)
	assert.InDeltaSlice(t, g.Mean, j.Mean, 1e-12)
	for c := range g.Components {
		assert.InDeltaSlice(t, g.Components[c], j.Components[c], 1e-6, "component %d", c)
	}
}

func TestFit_MoreDimensionsThanSamples(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))
	n, dim := 6, 20
	data := make([]float64, n*dim)
	for i := range data {
		data[i] = rng.NormFloat64()
	}
	points, err := kmeans.NewPoints(data, dim)
	require.NoError(t, err)

	g, err := Fit(points, 2, SolverGonum)
	require.NoError(t, err)
	j, err := Fit(points, 2, SolverJacobi)
	require.NoError(t, err)

	assert.InDeltaSlice(t, g.Variances, j.Variances, 1e-8)
	for c := range 2 {
		assert.InDeltaSlice(t, g.Components[c], j.Components[c], 1e-6)
	}
}

func TestTransform(t *testing.T) {
	points := lineData(t, 200)
	m, projected, err := FitTransform(points, 2, SolverGonum)
	require.NoError(t, err)
	assert.Equal(t, 200, projected.Len())
	assert.Equal(t, 2, projected.Dim())

	// Scores are centred and their variance equals the component variance.
	mean, sq := 0.0, 0.0
	for i := range projected.Len() {
		v := projected.Row(i)[0]
		mean += v
		sq += v * v
	}
	mean /= float64(projected.Len())
	assert.InDelta(t, 0, mean, 1e-9)
	assert.InDelta(t, m.Variances[0], sq/float64(projected.Len()-1), 1e-6*m.Variances[0])

	wrong, err := kmeans.NewPoints([]float64{1, 2}, 2)
	require.NoError(t, err)
	_, err = m.Transform(wrong)
	assert.Error(t, err)
}

func TestFit_Errors(t *testing.T) {
	one, err := kmeans.NewPoints([]float64{1, 2}, 2)
	require.NoError(t, err)
	_, err = Fit(one, 1, SolverGonum)
	assert.ErrorIs(t, err, ErrTooFewSamples)

	two, err := kmeans.NewPoints([]float64{1, 2, 3, 4}, 2)
	require.NoError(t, err)
	_, err = Fit(two, 3, SolverGonum)
	assert.ErrorIs(t, err, ErrInvalidComponents)
	_, err = Fit(two, 0, SolverJacobi)
	assert.ErrorIs(t, err, ErrInvalidComponents)
	_, err = Fit(two, 1, Solver(9))
	assert.Error(t, err)
}

func TestParseSolver(t *testing.T) {
	for _, s := range []Solver{SolverGonum, SolverJacobi} {
		got, err := ParseSolver(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseSolver("tsne")
	assert.Error(t, err)
}

func TestFixSign(t *testing.T) {
	assert.Equal(t, []float64{-0.6, 0.8}, fixSign([]float64{0.6, -0.8}))
	assert.Equal(t, []float64{0.8, 0.6}, fixSign([]float64{0.8, 0.6}))
}

func norm(v []float64) float64 {
	s := 0.0
	for _, x := range v {
		s += x * x
	}
	return math.Sqrt(s)
}
