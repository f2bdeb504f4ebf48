package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/isingkm"
	"github.com/hupe1980/isingkm/blobstore"
	"github.com/hupe1980/isingkm/dataset"
	"github.com/hupe1980/isingkm/ising"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestParseStoreURL(t *testing.T) {
	tests := []struct {
		raw  string
		want storeURL
	}{
		{"./data", storeURL{Scheme: "file", Path: "./data"}},
		{"file://./data", storeURL{Scheme: "file", Path: "./data"}},
		{"file:///var/lib/isingkm", storeURL{Scheme: "file", Path: "/var/lib/isingkm"}},
		{"mem://scratch", storeURL{Scheme: "mem", Host: "scratch"}},
		{"s3://bucket/runs/2024/", storeURL{Scheme: "s3", Bucket: "bucket", Path: "runs/2024"}},
		{"s3://bucket", storeURL{Scheme: "s3", Bucket: "bucket"}},
		{"minio://localhost:9000/ising/ds", storeURL{Scheme: "minio", Host: "localhost:9000", Bucket: "ising", Path: "ds"}},
		{"minio://localhost:9000/ising", storeURL{Scheme: "minio", Host: "localhost:9000", Bucket: "ising"}},
	}
	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := parseStoreURL(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.want.Scheme, got.Scheme)
			assert.Equal(t, tt.want.Host, got.Host)
			assert.Equal(t, tt.want.Bucket, got.Bucket)
			assert.Equal(t, tt.want.Path, got.Path)
		})
	}

	got, err := parseStoreURL("s3://b/p?region=eu-west-1&endpoint=http://localhost:4566")
	require.NoError(t, err)
	assert.Equal(t, "eu-west-1", got.Query.Get("region"))
	assert.Equal(t, "http://localhost:4566", got.Query.Get("endpoint"))
}

func TestParseStoreURL_Errors(t *testing.T) {
	for _, raw := range []string{"", "s3://", "s3:///prefix", "minio://host", "minio:///bucket", "ftp://host/x", "file://"} {
		_, err := parseStoreURL(raw)
		assert.Error(t, err, raw)
	}
}

func TestOpenStore(t *testing.T) {
	ctx := context.Background()

	dir := t.TempDir()
	s, err := openStore(ctx, "file://"+filepath.ToSlash(dir))
	require.NoError(t, err)
	local, ok := s.(*blobstore.LocalStore)
	require.True(t, ok)
	assert.Equal(t, dir, local.Root())

	a, err := openStore(ctx, "mem://shared")
	require.NoError(t, err)
	b, err := openStore(ctx, "mem://shared")
	require.NoError(t, err)
	assert.Same(t, a, b)

	c, err := openStore(ctx, "minio://localhost:9000/bucket?secure=false")
	require.NoError(t, err)
	assert.NotNil(t, c)

	_, err = openStore(ctx, "minio://localhost:9000/bucket?secure=maybe")
	assert.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "isingkm v"+version+" ("+commit+")\n", out)
}

func TestGenerateObservablesCluster(t *testing.T) {
	store := "mem://" + t.Name()
	tmp := t.TempDir()

	out, err := execute(t, "generate",
		"--store", store,
		"--dataset", "small.isng",
		"--log-level", "error",
		"--l", "4",
		"--temperatures", "1.0,6.0",
		"--samples", "4",
		"--equilibration", "20",
		"--every", "2",
		"--workers", "1",
		"--compression", "lz4",
		"--io-limit", "10000000",
	)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote 8 configurations")

	ds, err := dataset.Load(context.Background(), memoryStore(t.Name()), "small.isng")
	require.NoError(t, err)
	assert.Equal(t, 4, ds.L)
	groups := ds.Groups()
	require.Len(t, groups, 2)
	assert.Equal(t, 1.0, groups[0].Temperature)
	assert.Equal(t, 6.0, groups[1].Temperature)

	out, err = execute(t, "observables", "--store", store, "--dataset", "small.isng", "--log-level", "error")
	require.NoError(t, err)
	assert.Contains(t, out, "BINDER")
	assert.Contains(t, out, "1.0000")
	assert.Contains(t, out, "6.0000")

	reportPath := filepath.Join(tmp, "report.yaml")
	metricsPath := filepath.Join(tmp, "isingkm.prom")
	plotDir := filepath.Join(tmp, "plots")
	_, err = execute(t, "cluster",
		"--store", store,
		"--dataset", "small.isng",
		"--log-level", "error",
		"--k", "2",
		"--restarts", "2",
		"--report", reportPath,
		"--metrics-file", metricsPath,
		"--plot-dir", plotDir,
		"--plot-format", "svg",
	)
	require.NoError(t, err)

	data, err := os.ReadFile(reportPath)
	require.NoError(t, err)
	var report isingkm.Report
	require.NoError(t, yaml.Unmarshal(data, &report))
	assert.Equal(t, 4, report.L)
	assert.Equal(t, 2, report.K)
	assert.Equal(t, 8, report.Samples)
	assert.Len(t, report.Clusters, 2)
	assert.Len(t, report.Breakdown, 2)

	prom, err := os.ReadFile(metricsPath)
	require.NoError(t, err)
	assert.Contains(t, string(prom), "isingkm_kmeans_runs_total")

	for _, name := range []string{"clusters", "sse", "energy", "binder"} {
		assert.FileExists(t, filepath.Join(plotDir, name+".svg"))
	}
}

func TestCluster_ConfigFile(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dataDir := filepath.Join(dir, "data")

	ds, err := dataset.New(4, 1)
	require.NoError(t, err)
	up := make([]int8, 16)
	down := make([]int8, 16)
	checker := make([]int8, 16)
	stripes := make([]int8, 16)
	for i := range 16 {
		up[i], down[i] = 1, -1
		checker[i], stripes[i] = -1, -1
		if (i/4+i%4)%2 == 0 {
			checker[i] = 1
		}
		if i%2 == 0 {
			stripes[i] = 1
		}
	}
	for temp, spins := range map[float64][][]int8{1.0: {up, down}, 5.0: {checker, stripes}} {
		for _, s := range spins {
			l, err := ising.FromSpins(4, s)
			require.NoError(t, err)
			require.NoError(t, ds.Add(temp, l))
		}
	}
	require.NoError(t, dataset.Save(ctx, blobstore.NewLocalStore(dataDir), "fixed.isng", ds, dataset.CompressionZSTD))

	cfgPath := filepath.Join(dir, "isingkm.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
log:
  level: error
store: file://`+filepath.ToSlash(dataDir)+`
dataset: fixed.isng
cluster:
  k: 2
  restarts: 3
  solver: jacobi
`), 0o600))

	out, err := execute(t, "cluster", "--config", cfgPath)
	require.NoError(t, err)

	var report isingkm.Report
	require.NoError(t, yaml.Unmarshal([]byte(out), &report))
	assert.Equal(t, 4, report.L)
	assert.Equal(t, 2, report.K)
	assert.Equal(t, 4, report.Samples)
	assert.Len(t, report.Clusters, 2)
	assert.Len(t, report.Observables, 2)
}

func TestCluster_Errors(t *testing.T) {
	store := "mem://" + t.Name()

	_, err := execute(t, "cluster", "--store", store, "--dataset", "missing.isng", "--log-level", "error")
	assert.ErrorIs(t, err, blobstore.ErrNotFound)

	_, err = execute(t, "cluster", "--store", store, "--k", "0", "--log-level", "error")
	assert.ErrorIs(t, err, isingkm.ErrInvalidK)

	_, err = execute(t, "cluster", "--store", store, "--log-level", "loud")
	assert.Error(t, err)

	_, err = execute(t, "generate", "--store", store, "--compression", "brotli", "--log-level", "error")
	assert.Error(t, err)
}
