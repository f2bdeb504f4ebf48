// Package config loads the YAML configuration of the isingkm command.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/hupe1980/isingkm"
	"github.com/hupe1980/isingkm/dataset"
	"github.com/hupe1980/isingkm/kmeans"
	"github.com/hupe1980/isingkm/pca"
	"github.com/hupe1980/isingkm/plot"
	"github.com/hupe1980/isingkm/resource"
)

// Config is the top-level configuration file.
type Config struct {
	Log         LogConfig              `yaml:"log"`
	Store       string                 `yaml:"store"`
	Dataset     string                 `yaml:"dataset"`
	Compression string                 `yaml:"compression"`
	Limits      resource.Config        `yaml:"limits"`
	Generate    dataset.GenerateConfig `yaml:"generate"`
	Cluster     ClusterConfig          `yaml:"cluster"`
	Output      OutputConfig           `yaml:"output"`
}

// LogConfig selects the log level and handler.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// ClusterConfig mirrors the Analyzer options.
type ClusterConfig struct {
	K             int     `yaml:"k"`
	MaxIter       int     `yaml:"max_iter"`
	Tolerance     float64 `yaml:"tolerance"`
	EmptyCluster  string  `yaml:"empty_cluster"`
	StrictSeeding bool    `yaml:"strict_seeding"`
	Restarts      int     `yaml:"restarts"`
	Workers       int     `yaml:"workers"`
	Seed          uint64  `yaml:"seed"`
	Components    int     `yaml:"components"`
	Solver        string  `yaml:"solver"`
	OnProjection  bool    `yaml:"on_projection"`
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	// Report is the report file; empty or "-" writes to stdout.
	Report string `yaml:"report"`
	// PlotDir receives rendered plots when set.
	PlotDir    string `yaml:"plot_dir"`
	PlotFormat string `yaml:"plot_format"`
	// MetricsFile receives a Prometheus textfile when set.
	MetricsFile string `yaml:"metrics_file"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log:         LogConfig{Level: "info", Format: "text"},
		Store:       "file://./data",
		Dataset:     "ensemble.isng",
		Compression: "zstd",
		Generate:    dataset.DefaultGenerateConfig(),
		Cluster: ClusterConfig{
			K:          2,
			MaxIter:    100,
			Restarts:   5,
			Workers:    1,
			Seed:       1,
			Components: 2,
			Solver:     "gonum",
		},
		Output: OutputConfig{PlotFormat: "png"},
	}
}

// Load reads a YAML file over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults and validates the result.
func Parse(data []byte) (*Config, error) {
	cfg := Default()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config YAML: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks every enumerated field.
func (c *Config) Validate() error {
	if _, err := ParseLevel(c.Log.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: unknown log format %q", c.Log.Format)
	}
	if _, err := dataset.ParseCompression(c.Compression); err != nil {
		return err
	}
	if err := c.Generate.Validate(); err != nil {
		return err
	}
	if _, err := c.Cluster.Options(); err != nil {
		return err
	}
	if c.Cluster.K < 1 {
		return fmt.Errorf("config: cluster.k must be at least 1, got %d", c.Cluster.K)
	}
	if c.Limits.BytesPerSec < 0 || c.Limits.MaxConcurrent < 0 {
		return fmt.Errorf("config: limits must not be negative")
	}
	if c.Output.PlotFormat != "" {
		if _, err := plot.ParseFormat(c.Output.PlotFormat); err != nil {
			return err
		}
	}
	return nil
}

// Options converts the cluster section into Analyzer options.
func (c ClusterConfig) Options() ([]isingkm.Option, error) {
	policy, err := kmeans.ParseEmptyClusterPolicy(c.EmptyCluster)
	if err != nil {
		return nil, err
	}
	solver, err := pca.ParseSolver(c.Solver)
	if err != nil {
		return nil, err
	}
	return []isingkm.Option{
		isingkm.WithMaxIter(c.MaxIter),
		isingkm.WithTolerance(c.Tolerance),
		isingkm.WithEmptyClusterPolicy(policy),
		isingkm.WithStrictSeeding(c.StrictSeeding),
		isingkm.WithRestarts(c.Restarts),
		isingkm.WithWorkers(c.Workers),
		isingkm.WithSeed(c.Seed),
		isingkm.WithComponents(c.Components),
		isingkm.WithSolver(solver),
		isingkm.WithClusterOnProjection(c.OnProjection),
	}, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("config: unknown log level %q", s)
	}
	return l, nil
}

// Logger builds the configured logger writing to w.
func (l LogConfig) Logger(w io.Writer) (*isingkm.Logger, error) {
	level, err := ParseLevel(l.Level)
	if err != nil {
		return nil, err
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(l.Format, "json") {
		return isingkm.NewLogger(slog.NewJSONHandler(w, opts)), nil
	}
	return isingkm.NewLogger(slog.NewTextHandler(w, opts)), nil
}
