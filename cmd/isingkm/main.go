// Package main provides the isingkm CLI entry point.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/hupe1980/isingkm"
	"github.com/hupe1980/isingkm/blobstore"
	"github.com/hupe1980/isingkm/config"
	"github.com/hupe1980/isingkm/resource"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app carries the state shared by every subcommand once the root
// command has resolved configuration, logging and storage.
type app struct {
	cfg    *config.Config
	logger *isingkm.Logger
	store  blobstore.BlobStore
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "isingkm",
		Short: "Unsupervised phase detection for the 2-D Ising model",
		Long: `isingkm samples 2-D Ising configurations with the Metropolis algorithm,
stores them as compressed datasets and clusters them with k-means to
separate the ordered from the disordered phase without labels.

Stores:
  file://dir                       local directory (default)
  mem://name                       in-process memory
  s3://bucket/prefix               AWS S3 (?region=, ?endpoint=)
  minio://host:port/bucket/prefix  MinIO (?secure=false), credentials from MINIO_ACCESS_KEY/MINIO_SECRET_KEY`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd)
		},
	}
	rootCmd.PersistentFlags().String("config", "", "YAML configuration file")
	rootCmd.PersistentFlags().String("store", "", "Dataset store URL")
	rootCmd.PersistentFlags().String("dataset", "", "Dataset blob name")
	rootCmd.PersistentFlags().String("log-level", "", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "", "Log format (text, json)")
	rootCmd.PersistentFlags().Int64("io-limit", 0, "Store throughput limit in bytes per second (0 = unlimited)")

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		// Skip config and store resolution.
		PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "isingkm v%s (%s)\n", version, commit)
		},
	})
	rootCmd.AddCommand(newGenerateCmd(a))
	rootCmd.AddCommand(newObservablesCmd(a))
	rootCmd.AddCommand(newClusterCmd(a))

	return rootCmd
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg := config.Default()
	if path, _ := cmd.Flags().GetString("config"); path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("store") {
		cfg.Store, _ = flags.GetString("store")
	}
	if flags.Changed("dataset") {
		cfg.Dataset, _ = flags.GetString("dataset")
	}
	if flags.Changed("log-level") {
		cfg.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Log.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("io-limit") {
		cfg.Limits.BytesPerSec, _ = flags.GetInt64("io-limit")
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	logger, err := cfg.Log.Logger(cmd.ErrOrStderr())
	if err != nil {
		return err
	}

	store, err := openStore(cmd.Context(), cfg.Store)
	if err != nil {
		return err
	}
	if cfg.Limits != (resource.Config{}) {
		store = blobstore.NewThrottledStore(store, resource.NewController(cfg.Limits))
	}

	a.cfg = cfg
	a.logger = logger
	a.store = store
	return nil
}
