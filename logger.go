package isingkm

import (
	"context"
	"log/slog"
	"os"

	"github.com/hupe1980/isingkm/kmeans"
)

// Logger wraps slog.Logger with analysis-specific helpers.
// Field names are consistent across all pipeline stages.
type Logger struct {
	*slog.Logger
}

// NewLogger creates a Logger with the given handler.
// If handler is nil, a text handler to stderr at info level is used.
func NewLogger(handler slog.Handler) *Logger {
	if handler == nil {
		handler = slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: slog.LevelInfo,
		})
	}
	return &Logger{Logger: slog.New(handler)}
}

// NewJSONLogger creates a Logger that writes JSON to stderr.
func NewJSONLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NewTextLogger creates a Logger that writes human-readable text to stderr.
func NewTextLogger(level slog.Level) *Logger {
	return NewLogger(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// NoopLogger discards all output.
func NoopLogger() *Logger {
	return NewLogger(slog.DiscardHandler)
}

// WithK adds the cluster count.
func (l *Logger) WithK(k int) *Logger {
	return &Logger{Logger: l.Logger.With("k", k)}
}

// WithDimension adds the point dimension.
func (l *Logger) WithDimension(dim int) *Logger {
	return &Logger{Logger: l.Logger.With("dimension", dim)}
}

// WithCount adds the number of points or configurations.
func (l *Logger) WithCount(count int) *Logger {
	return &Logger{Logger: l.Logger.With("count", count)}
}

// WithStage tags records with a pipeline stage name.
func (l *Logger) WithStage(stage string) *Logger {
	return &Logger{Logger: l.Logger.With("stage", stage)}
}

// LogIteration logs one Lloyd iteration at debug level.
func (l *Logger) LogIteration(ctx context.Context, s kmeans.IterationStats) {
	l.DebugContext(ctx, "iteration completed",
		"restart", s.Restart,
		"iteration", s.Iteration,
		"sse", s.SSE,
		"changed", s.Changed,
		"shift", s.Shift,
		"empty", s.Empty,
	)
}

// LogRun logs the outcome of a clustering run.
func (l *Logger) LogRun(ctx context.Context, res *kmeans.Result, err error) {
	if err != nil {
		l.ErrorContext(ctx, "clustering failed", "error", err)
		return
	}
	attrs := []any{
		"iterations", res.Iterations(),
		"sse", res.SSE(),
		"converged", res.Converged,
		"restart", res.Restart,
	}
	if res.SeedFallbacks > 0 || len(res.EmptyClusters) > 0 {
		l.WarnContext(ctx, "clustering completed with degenerate steps",
			append(attrs,
				"seed_fallbacks", res.SeedFallbacks,
				"empty_clusters", len(res.EmptyClusters),
			)...,
		)
		return
	}
	l.InfoContext(ctx, "clustering completed", attrs...)
}

// LogProjection logs a PCA fit.
func (l *Logger) LogProjection(ctx context.Context, components int, explained float64, err error) {
	if err != nil {
		l.ErrorContext(ctx, "projection failed",
			"components", components,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "projection fitted",
		"components", components,
		"explained", explained,
	)
}

// LogDataset logs a dataset load, save or generate operation.
func (l *Logger) LogDataset(ctx context.Context, op, name string, count int, err error) {
	if err != nil {
		l.ErrorContext(ctx, "dataset "+op+" failed",
			"name", name,
			"error", err,
		)
		return
	}
	l.InfoContext(ctx, "dataset "+op+" completed",
		"name", name,
		"count", count,
	)
}
