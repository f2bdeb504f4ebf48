package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hupe1980/isingkm/dataset"
	"github.com/hupe1980/isingkm/ising"
	"github.com/hupe1980/isingkm/plot"
)

func newObservablesCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "observables",
		Short: "Print thermodynamic observables per temperature",
		Args:  cobra.NoArgs,
		RunE:  a.runObservables,
	}
	cmd.Flags().String("output", "table", "Output format (table, yaml)")
	cmd.Flags().String("plot-dir", "", "Directory for observable plots")
	cmd.Flags().String("plot-format", "", "Plot format (png, svg, pdf)")
	return cmd
}

func (a *app) runObservables(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	ds, err := dataset.Load(ctx, a.store, a.cfg.Dataset)
	a.logger.LogDataset(ctx, "load", a.cfg.Dataset, datasetLen(ds), err)
	if err != nil {
		return err
	}

	summaries, err := ds.Summaries()
	if err != nil {
		return err
	}

	output, _ := cmd.Flags().GetString("output")
	switch output {
	case "table":
		err = writeObservablesTable(cmd.OutOrStdout(), summaries)
	case "yaml":
		err = writeYAML(cmd.OutOrStdout(), summaries)
	default:
		return fmt.Errorf("unknown output format %q", output)
	}
	if err != nil {
		return err
	}

	dir, format, err := a.plotTarget(cmd)
	if err != nil || dir == "" {
		return err
	}
	for _, name := range plot.ObservableNames() {
		if err := writePlot(dir, name, format, func(w io.Writer) error {
			return plot.Observables(w, format, name, summaries)
		}); err != nil {
			return err
		}
	}
	return nil
}

func datasetLen(ds *dataset.Dataset) int {
	if ds == nil {
		return 0
	}
	return ds.Len()
}

func writeObservablesTable(w io.Writer, summaries []ising.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "T\tSAMPLES\tE/N\tM/N\t|M|/N\tCHI\tC\tBINDER")
	for _, s := range summaries {
		fmt.Fprintf(tw, "%.4f\t%d\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\t%.4f\n",
			s.Temperature, s.Samples, s.Energy, s.Magnetization,
			s.AbsMagnetization, s.Susceptibility, s.SpecificHeat, s.Binder)
	}
	return tw.Flush()
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return err
	}
	return enc.Close()
}

// plotTarget resolves the plot directory and format from flags over config.
func (a *app) plotTarget(cmd *cobra.Command) (string, plot.Format, error) {
	dir := a.cfg.Output.PlotDir
	if cmd.Flags().Changed("plot-dir") {
		dir, _ = cmd.Flags().GetString("plot-dir")
	}
	name := a.cfg.Output.PlotFormat
	if cmd.Flags().Changed("plot-format") {
		name, _ = cmd.Flags().GetString("plot-format")
	}
	if name == "" {
		name = string(plot.PNG)
	}
	format, err := plot.ParseFormat(name)
	if err != nil {
		return "", "", err
	}
	return dir, format, nil
}

func writePlot(dir, name string, format plot.Format, render func(io.Writer) error) (err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, name+"."+string(format)))
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()
	return render(f)
}
