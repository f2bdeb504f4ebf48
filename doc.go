// Package isingkm finds the phases of the 2-D Ising model with k-means.
//
// The pipeline samples spin configurations with Metropolis dynamics (package
// dataset), computes thermodynamic observables per temperature (package
// ising), projects the flattened lattices onto their principal components
// (package pca) and partitions them with k-means++ seeded Lloyd iterations
// (package kmeans).
//
// # Quick Start
//
//	ds, err := dataset.Generate(ctx, dataset.DefaultGenerateConfig())
//	if err != nil { ... }
//
//	a := isingkm.New(
//	    isingkm.WithRestarts(5),
//	    isingkm.WithLogger(isingkm.NewTextLogger(slog.LevelInfo)),
//	)
//	report, err := a.Analyze(ctx, ds, 2)
//	fmt.Println(report.TransitionEstimate)
//
// # Determinism
//
// Every call derives its random stream from the configured seed (WithSeed),
// and the worker count (WithWorkers) never changes results.
//
// # Observability
//
// Structured logs go through Logger (log/slog). Metrics go through a
// MetricsCollector; BasicMetricsCollector keeps in-memory counters and
// metrics.PrometheusCollector exports to Prometheus.
//
// # Command Line
//
// cmd/isingkm wraps the pipeline in generate, observables and cluster
// commands configured by flags or a YAML file (package config).
package isingkm
