package main

import (
	"fmt"
	"io"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/hupe1980/isingkm"
	"github.com/hupe1980/isingkm/dataset"
	"github.com/hupe1980/isingkm/metrics"
	"github.com/hupe1980/isingkm/plot"
)

func newClusterCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cluster",
		Short: "Cluster a dataset and report the detected phases",
		Long: `Project the stored configurations with PCA, cluster them with k-means and
write a YAML report with cluster summaries, the per-temperature breakdown
and the estimated transition temperature.`,
		Args: cobra.NoArgs,
		RunE: a.runCluster,
	}
	cmd.Flags().Int("k", 0, "Number of clusters")
	cmd.Flags().Int("max-iter", 0, "Maximum Lloyd iterations per restart")
	cmd.Flags().Float64("tolerance", 0, "Centroid shift tolerance")
	cmd.Flags().String("empty-cluster", "", "Empty cluster policy (keep, reseed-farthest, fail)")
	cmd.Flags().Bool("strict-seeding", false, "Fail instead of falling back to uniform seeding")
	cmd.Flags().Int("restarts", 0, "Independent seedings; the lowest SSE wins")
	cmd.Flags().Int("workers", 0, "Parallel workers for assignment and update")
	cmd.Flags().Uint64("seed", 0, "Random seed")
	cmd.Flags().Int("components", 0, "PCA components")
	cmd.Flags().String("solver", "", "PCA solver (gonum, jacobi)")
	cmd.Flags().Bool("on-projection", false, "Cluster PCA coordinates instead of raw spins")
	cmd.Flags().String("report", "", "Report file (default stdout)")
	cmd.Flags().String("plot-dir", "", "Directory for cluster and SSE plots")
	cmd.Flags().String("plot-format", "", "Plot format (png, svg, pdf)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus metrics to this textfile")
	return cmd
}

func (a *app) clusterConfig(cmd *cobra.Command) error {
	cc := &a.cfg.Cluster
	flags := cmd.Flags()
	if flags.Changed("k") {
		cc.K, _ = flags.GetInt("k")
	}
	if flags.Changed("max-iter") {
		cc.MaxIter, _ = flags.GetInt("max-iter")
	}
	if flags.Changed("tolerance") {
		cc.Tolerance, _ = flags.GetFloat64("tolerance")
	}
	if flags.Changed("empty-cluster") {
		cc.EmptyCluster, _ = flags.GetString("empty-cluster")
	}
	if flags.Changed("strict-seeding") {
		cc.StrictSeeding, _ = flags.GetBool("strict-seeding")
	}
	if flags.Changed("restarts") {
		cc.Restarts, _ = flags.GetInt("restarts")
	}
	if flags.Changed("workers") {
		cc.Workers, _ = flags.GetInt("workers")
	}
	if flags.Changed("seed") {
		cc.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("components") {
		cc.Components, _ = flags.GetInt("components")
	}
	if flags.Changed("solver") {
		cc.Solver, _ = flags.GetString("solver")
	}
	if flags.Changed("on-projection") {
		cc.OnProjection, _ = flags.GetBool("on-projection")
	}

	out := &a.cfg.Output
	if flags.Changed("report") {
		out.Report, _ = flags.GetString("report")
	}
	if flags.Changed("metrics-file") {
		out.MetricsFile, _ = flags.GetString("metrics-file")
	}
	if cc.K < 1 {
		return fmt.Errorf("%w: k=%d", isingkm.ErrInvalidK, cc.K)
	}
	return nil
}

func (a *app) runCluster(cmd *cobra.Command, _ []string) error {
	if err := a.clusterConfig(cmd); err != nil {
		return err
	}
	opts, err := a.cfg.Cluster.Options()
	if err != nil {
		return err
	}
	opts = append(opts, isingkm.WithLogger(a.logger))

	var reg *prometheus.Registry
	if a.cfg.Output.MetricsFile != "" {
		reg = prometheus.NewRegistry()
		collector, err := metrics.NewPrometheusCollector(reg)
		if err != nil {
			return err
		}
		opts = append(opts, isingkm.WithMetricsCollector(collector))
	}

	ctx := cmd.Context()
	ds, err := dataset.Load(ctx, a.store, a.cfg.Dataset)
	a.logger.LogDataset(ctx, "load", a.cfg.Dataset, datasetLen(ds), err)
	if err != nil {
		return err
	}

	report, err := isingkm.New(opts...).Analyze(ctx, ds, a.cfg.Cluster.K)
	if err != nil {
		return err
	}

	if err := a.writeReport(cmd, report); err != nil {
		return err
	}
	if reg != nil {
		if err := prometheus.WriteToTextfile(a.cfg.Output.MetricsFile, reg); err != nil {
			return fmt.Errorf("write metrics: %w", err)
		}
	}
	return a.writeClusterPlots(cmd, report)
}

func (a *app) writeReport(cmd *cobra.Command, report *isingkm.Report) (err error) {
	path := a.cfg.Output.Report
	if path == "" || path == "-" {
		return writeYAML(cmd.OutOrStdout(), report)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	if err := writeYAML(f, report); err != nil {
		return err
	}
	a.logger.Info("report written", "path", path, "transition_estimate", report.TransitionEstimate)
	return nil
}

func (a *app) writeClusterPlots(cmd *cobra.Command, report *isingkm.Report) error {
	dir, format, err := a.plotTarget(cmd)
	if err != nil || dir == "" {
		return err
	}

	if report.Projected.Dim() >= 2 {
		title := fmt.Sprintf("L=%d k=%d", report.L, report.K)
		if err := writePlot(dir, "clusters", format, func(w io.Writer) error {
			return plot.Clusters(w, format, title, report.Projected, report.Result.Assignments, report.ProjectedCentroids)
		}); err != nil {
			return err
		}
	} else {
		a.logger.Warn("skipping cluster plot", "components", report.Projected.Dim())
	}

	if err := writePlot(dir, "sse", format, func(w io.Writer) error {
		return plot.SSE(w, format, report.Result.SSEHistory)
	}); err != nil {
		return err
	}
	for _, name := range plot.ObservableNames() {
		if err := writePlot(dir, name, format, func(w io.Writer) error {
			return plot.Observables(w, format, name, report.Observables)
		}); err != nil {
			return err
		}
	}
	return nil
}
