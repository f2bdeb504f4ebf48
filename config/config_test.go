package config

import (
	"bytes"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_IsValid(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, 2, cfg.Cluster.K)
	assert.Equal(t, 16, cfg.Generate.L)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "isingkm.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
log:
  level: debug
  format: json
store: s3://bucket/runs
compression: lz4
limits:
  bytes_per_sec: 1048576
  max_concurrent: 4
generate:
  l: 8
  temperatures: [1.5, 3.5]
  samples: 10
cluster:
  k: 3
  empty_cluster: reseed-farthest
  solver: jacobi
output:
  plot_dir: plots
  plot_format: svg
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "s3://bucket/runs", cfg.Store)
	assert.Equal(t, int64(1<<20), cfg.Limits.BytesPerSec)
	assert.Equal(t, int64(4), cfg.Limits.MaxConcurrent)
	assert.Equal(t, 8, cfg.Generate.L)
	assert.Equal(t, []float64{1.5, 3.5}, cfg.Generate.Temperatures)
	assert.Equal(t, 10, cfg.Generate.Samples)
	assert.Equal(t, 500, cfg.Generate.Equilibration, "unset keys keep defaults")
	assert.Equal(t, 3, cfg.Cluster.K)
	assert.Equal(t, 5, cfg.Cluster.Restarts)
	assert.Equal(t, "svg", cfg.Output.PlotFormat)

	opts, err := cfg.Cluster.Options()
	require.NoError(t, err)
	assert.Len(t, opts, 10)
}

func TestParse_Errors(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":   "clusterr: {}\n",
		"bad level":     "log: {level: loud}\n",
		"bad format":    "log: {format: xml}\n",
		"bad policy":    "cluster: {empty_cluster: panic}\n",
		"bad solver":    "cluster: {solver: lapack}\n",
		"bad k":         "cluster: {k: 0}\n",
		"bad codec":     "compression: brotli\n",
		"bad plot type": "output: {plot_format: gif}\n",
		"bad limits":    "limits: {bytes_per_sec: -1}\n",
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_Missing(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "none.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLogConfig_Logger(t *testing.T) {
	var buf bytes.Buffer
	l, err := LogConfig{Level: "warn", Format: "json"}.Logger(&buf)
	require.NoError(t, err)
	l.Info("hidden")
	l.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	lvl, err := ParseLevel("DEBUG")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelDebug, lvl)
}

func TestParse_InvalidGenerate(t *testing.T) {
	_, err := Parse([]byte("generate: {l: 1}\n"))
	assert.Error(t, err)
	_, err = Parse([]byte("generate: {temperatures: [-1]}\n"))
	assert.Error(t, err)
}
