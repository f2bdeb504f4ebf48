package plot

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/isingkm/ising"
	"github.com/hupe1980/isingkm/kmeans"
)

var pngMagic = []byte("\x89PNG")

func TestClusters(t *testing.T) {
	pts, err := kmeans.FromRows([][]float64{{0, 0}, {0, 1}, {10, 0}, {10, 1}})
	require.NoError(t, err)
	cents, err := kmeans.FromRows([][]float64{{0, 0.5}, {10, 0.5}})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, Clusters(&buf, PNG, "test", pts, []int{0, 0, 1, 1}, cents))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))

	buf.Reset()
	require.NoError(t, Clusters(&buf, SVG, "test", pts, []int{0, 0, 1, 1}, cents))
	assert.Contains(t, buf.String(), "<svg")

	assert.Error(t, Clusters(&buf, PNG, "", pts, []int{0, 0}, cents))
	assert.Error(t, Clusters(&buf, PNG, "", pts, []int{0, 0, 1, 2}, cents))

	oneD, _ := kmeans.FromRows([][]float64{{1}, {2}})
	assert.Error(t, Clusters(&buf, PNG, "", oneD, []int{0, 0}, oneD))
}

func TestSSE(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, SSE(&buf, PNG, []float64{3, 1, 0.5}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic))
	assert.Error(t, SSE(&buf, PNG, nil))
}

func TestObservables(t *testing.T) {
	sums := []ising.Summary{
		{Temperature: 1, AbsMagnetization: 1, Energy: -2},
		{Temperature: 3, AbsMagnetization: 0.1, Energy: -0.8},
	}
	for _, name := range ObservableNames() {
		var buf bytes.Buffer
		require.NoError(t, Observables(&buf, PNG, name, sums), name)
		assert.True(t, bytes.HasPrefix(buf.Bytes(), pngMagic), name)
	}
	var buf bytes.Buffer
	assert.Error(t, Observables(&buf, PNG, "entropy", sums))
	assert.Error(t, Observables(&buf, PNG, "energy", nil))
}

func TestParseFormat(t *testing.T) {
	f, err := ParseFormat(".PNG")
	require.NoError(t, err)
	assert.Equal(t, PNG, f)
	_, err = ParseFormat("gif")
	assert.Error(t, err)
}
