package isingkm

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/isingkm/dataset"
	"github.com/hupe1980/isingkm/kmeans"
	"github.com/hupe1980/isingkm/pca"
)

func twoPhaseDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Generate(context.Background(), dataset.GenerateConfig{
		L:             6,
		Coupling:      1,
		Temperatures:  []float64{1.0, 1.5, 6.0, 8.0},
		Samples:       20,
		Equilibration: 100,
		Every:         3,
		Seed:          11,
	})
	require.NoError(t, err)
	return ds
}

func TestAnalyzer_Analyze(t *testing.T) {
	ds := twoPhaseDataset(t)
	mc := &BasicMetricsCollector{}
	a := New(WithRestarts(5), WithSeed(3), WithMetricsCollector(mc))

	r, err := a.Analyze(context.Background(), ds, 2)
	require.NoError(t, err)

	assert.Equal(t, 6, r.L)
	assert.Equal(t, 80, r.Samples)
	assert.Len(t, r.Observables, 4)
	assert.Len(t, r.ExplainedRatio, 2)
	assert.Equal(t, 80, r.Projected.Len())
	assert.Equal(t, 2, r.Projected.Dim())
	assert.Equal(t, 2, r.ProjectedCentroids.Len())
	assert.True(t, r.Converged)
	require.Len(t, r.Clusters, 2)
	require.Len(t, r.Breakdown, 4)

	ordered, disordered := 0, 1
	if r.Clusters[1].Magnetization > r.Clusters[0].Magnetization {
		ordered, disordered = 1, 0
	}
	assert.Greater(t, r.Clusters[ordered].Magnetization, 0.9)
	assert.Less(t, r.Clusters[disordered].Magnetization, 0.5)

	assert.Greater(t, r.Breakdown[0].Fractions[ordered], 0.5)
	assert.Greater(t, r.Breakdown[1].Fractions[ordered], 0.5)
	assert.Greater(t, r.Breakdown[2].Fractions[disordered], 0.5)
	assert.Greater(t, r.Breakdown[3].Fractions[disordered], 0.5)
	assert.InDelta(t, 3.75, r.TransitionEstimate, 1e-12)

	stats := mc.GetStats()
	assert.Equal(t, int64(1), stats.RunCount)
	assert.Equal(t, int64(1), stats.ProjectionCount)
	assert.Positive(t, stats.IterationCount)
}

func TestAnalyzer_AnalyzeOnProjection(t *testing.T) {
	ds := twoPhaseDataset(t)
	a := New(WithRestarts(3), WithClusterOnProjection(true), WithSolver(pca.SolverJacobi))

	r, err := a.Analyze(context.Background(), ds, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Result.Centroids.Dim())
	assert.Zero(t, r.TransitionEstimate)
	for _, c := range r.Clusters {
		assert.Zero(t, c.Magnetization)
	}
}

func TestAnalyzer_Errors(t *testing.T) {
	a := New()
	empty, err := dataset.New(4, 1)
	require.NoError(t, err)
	_, err = a.Analyze(context.Background(), empty, 2)
	assert.ErrorIs(t, err, ErrEmptyDataset)

	ds := twoPhaseDataset(t)
	_, err = a.Analyze(context.Background(), ds, 0)
	assert.ErrorIs(t, err, ErrInvalidK)
	_, err = a.Analyze(context.Background(), ds, 81)
	assert.ErrorIs(t, err, ErrInvalidK)

	_, err = New(WithMaxIter(0)).Analyze(context.Background(), ds, 2)
	var se *StageError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "clustering", se.Stage)
	assert.ErrorIs(t, err, ErrInvalidConfiguration)
}

func TestAnalyzer_ClusterDeterministic(t *testing.T) {
	points, err := kmeans.FromRows([][]float64{{0}, {1}, {5}, {6}, {20}, {21}})
	require.NoError(t, err)

	a := New(WithSeed(9))
	r1, err := a.Cluster(context.Background(), points, 3)
	require.NoError(t, err)
	r2, err := New(WithSeed(9), WithWorkers(4)).Cluster(context.Background(), points, 3)
	require.NoError(t, err)
	assert.Equal(t, r1.Assignments, r2.Assignments)
	assert.Equal(t, r1.SSEHistory, r2.SSEHistory)
}

func TestAnalyzer_ClusterStrictSeeding(t *testing.T) {
	points, err := kmeans.FromRows([][]float64{{1, 1}, {1, 1}, {1, 1}})
	require.NoError(t, err)

	mc := &BasicMetricsCollector{}
	_, err = New(WithStrictSeeding(true), WithMetricsCollector(mc)).Cluster(context.Background(), points, 2)
	assert.ErrorIs(t, err, ErrDegenerateSeeding)
	assert.Equal(t, int64(1), mc.GetStats().RunErrors)

	res, err := New(WithMetricsCollector(mc)).Cluster(context.Background(), points, 2)
	require.NoError(t, err)
	assert.Positive(t, res.SeedFallbacks)
	assert.Equal(t, int64(res.SeedFallbacks), mc.GetStats().SeedFallbacks)
}

func TestAnalyzer_Logging(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	points, err := kmeans.FromRows([][]float64{{0}, {1}, {10}, {11}})
	require.NoError(t, err)

	_, err = New(WithLogger(logger)).Cluster(context.Background(), points, 2)
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, `"msg":"iteration completed"`)
	assert.Contains(t, out, `"msg":"clustering completed"`)
	assert.Contains(t, out, `"k":2`)
}

func TestAnalyzer_ProjectCancelled(t *testing.T) {
	points, err := kmeans.FromRows([][]float64{{0, 1}, {1, 0}})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = New().Project(ctx, points)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestStageError(t *testing.T) {
	cause := errors.New("boom")
	err := stageError("projection", cause)
	assert.EqualError(t, err, "isingkm: projection: boom")
	assert.ErrorIs(t, err, cause)
	assert.NoError(t, stageError("x", nil))
}

func TestNoopCollectorsAndLoggers(t *testing.T) {
	var mc MetricsCollector = NoopMetricsCollector{}
	mc.RecordRun(1, 1, true, 0, nil)
	mc.RecordIteration(0, 0)
	mc.RecordEmptyCluster()
	mc.RecordSeedFallback(1)
	mc.RecordProjection(2, 0, nil)

	l := NoopLogger().WithStage("test").WithCount(3)
	l.LogDataset(context.Background(), "load", "x", 3, nil)
	l.LogProjection(context.Background(), 2, 0.5, errors.New("bad"))

	a := New(WithLogger(nil), WithMetricsCollector(nil))
	assert.NotNil(t, a.opts.logger)
	assert.NotNil(t, a.opts.metricsCollector)
}
