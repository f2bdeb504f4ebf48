package isingkm

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"github.com/hupe1980/isingkm/dataset"
	"github.com/hupe1980/isingkm/ising"
	"github.com/hupe1980/isingkm/kmeans"
	"github.com/hupe1980/isingkm/pca"
)

// Analyzer runs the observables, projection and clustering pipeline.
// It is safe for concurrent use; every call derives its own random stream from the seed.
type Analyzer struct {
	opts options
}

// New creates an Analyzer.
func New(optFns ...Option) *Analyzer {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Analyzer{opts: opts}
}

func (a *Analyzer) rng() *rand.Rand {
	return rand.New(rand.NewPCG(a.opts.seed, a.opts.seed^0x9e3779b97f4a7c15))
}

// Cluster runs k-means on points.
func (a *Analyzer) Cluster(ctx context.Context, points kmeans.Points, k int) (*kmeans.Result, error) {
	log := a.opts.logger.WithK(k).WithCount(points.Len()).WithDimension(points.Dim())
	mc := a.opts.metricsCollector

	cfg := kmeans.Config{
		K:             k,
		MaxIter:       a.opts.maxIter,
		Tolerance:     a.opts.tolerance,
		EmptyCluster:  a.opts.emptyCluster,
		StrictSeeding: a.opts.strictSeeding,
		Restarts:      a.opts.restarts,
		Workers:       a.opts.workers,
		OnIteration: func(s kmeans.IterationStats) {
			log.LogIteration(ctx, s)
			mc.RecordIteration(s.SSE, s.Changed)
			for range s.Empty {
				mc.RecordEmptyCluster()
			}
		},
	}

	start := time.Now()
	res, err := kmeans.Run(ctx, points, cfg, a.rng())
	log.LogRun(ctx, res, err)
	if err != nil {
		mc.RecordRun(k, 0, false, time.Since(start), err)
		return nil, err
	}
	mc.RecordRun(k, res.Iterations(), res.Converged, time.Since(start), nil)
	if res.SeedFallbacks > 0 {
		mc.RecordSeedFallback(res.SeedFallbacks)
	}
	return res, nil
}

// Project fits a PCA model and returns it with the projected points.
func (a *Analyzer) Project(ctx context.Context, points kmeans.Points) (*pca.Model, kmeans.Points, error) {
	if err := ctx.Err(); err != nil {
		return nil, kmeans.Points{}, err
	}
	comps := min(a.opts.components, points.Len(), points.Dim())

	start := time.Now()
	model, projected, err := pca.FitTransform(points, comps, a.opts.solver)
	a.opts.metricsCollector.RecordProjection(comps, time.Since(start), err)

	explained := 0.0
	if err == nil {
		for _, r := range model.ExplainedRatio {
			explained += r
		}
	}
	a.opts.logger.LogProjection(ctx, comps, explained, err)
	return model, projected, err
}

// ClusterSummary describes one cluster of configurations.
type ClusterSummary struct {
	Cluster int `yaml:"cluster" json:"cluster"`
	Size    int `yaml:"size" json:"size"`
	// Magnetization is the mean spin of the centroid, in [-1, 1].
	// It is only meaningful when clustering raw spins.
	Magnetization   float64 `yaml:"magnetization" json:"magnetization"`
	MeanTemperature float64 `yaml:"mean_temperature" json:"mean_temperature"`
	MinTemperature  float64 `yaml:"min_temperature" json:"min_temperature"`
	MaxTemperature  float64 `yaml:"max_temperature" json:"max_temperature"`
}

// TemperatureBreakdown is the share of configurations at one temperature in each cluster.
type TemperatureBreakdown struct {
	Temperature float64   `yaml:"temperature" json:"temperature"`
	Fractions   []float64 `yaml:"fractions" json:"fractions"`
}

// Report is the outcome of Analyze.
type Report struct {
	L       int `yaml:"l" json:"l"`
	K       int `yaml:"k" json:"k"`
	Samples int `yaml:"samples" json:"samples"`

	Observables    []ising.Summary        `yaml:"observables" json:"observables"`
	ExplainedRatio []float64              `yaml:"explained_ratio" json:"explained_ratio"`
	Clusters       []ClusterSummary       `yaml:"clusters" json:"clusters"`
	Breakdown      []TemperatureBreakdown `yaml:"breakdown" json:"breakdown"`

	SSE        float64 `yaml:"sse" json:"sse"`
	Iterations int     `yaml:"iterations" json:"iterations"`
	Converged  bool    `yaml:"converged" json:"converged"`

	// TransitionEstimate is the temperature at which the least magnetised
	// cluster first holds the majority, midway between grid points. Zero when
	// no such crossing exists.
	TransitionEstimate float64 `yaml:"transition_estimate" json:"transition_estimate"`

	Result     *kmeans.Result `yaml:"-" json:"-"`
	Projection *pca.Model     `yaml:"-" json:"-"`
	// Projected holds every configuration in PCA coordinates.
	Projected kmeans.Points `yaml:"-" json:"-"`
	// ProjectedCentroids holds the centroids in PCA coordinates.
	ProjectedCentroids kmeans.Points `yaml:"-" json:"-"`
}

// Analyze computes per-temperature observables, projects the configurations
// onto their principal components and clusters them into k groups.
func (a *Analyzer) Analyze(ctx context.Context, ds *dataset.Dataset, k int) (*Report, error) {
	if ds.Len() == 0 {
		return nil, ErrEmptyDataset
	}
	if k < 1 || k > ds.Len() {
		return nil, fmt.Errorf("%w: %d for %d configurations", ErrInvalidK, k, ds.Len())
	}

	summaries, err := ds.Summaries()
	if err != nil {
		return nil, stageError("observables", err)
	}

	points, err := ds.Points()
	if err != nil {
		return nil, stageError("flatten", err)
	}

	model, projected, err := a.Project(ctx, points)
	if err != nil {
		return nil, stageError("projection", err)
	}

	input := points
	if a.opts.onProjection {
		input = projected
	}
	res, err := a.Cluster(ctx, input, k)
	if err != nil {
		return nil, stageError("clustering", err)
	}

	centroids := res.Centroids
	if !a.opts.onProjection {
		if centroids, err = model.Transform(res.Centroids); err != nil {
			return nil, stageError("projection", err)
		}
	}

	r := &Report{
		L:                  ds.L,
		K:                  k,
		Samples:            ds.Len(),
		Observables:        summaries,
		ExplainedRatio:     model.ExplainedRatio,
		SSE:                res.SSE(),
		Iterations:         res.Iterations(),
		Converged:          res.Converged,
		Result:             res,
		Projection:         model,
		Projected:          projected,
		ProjectedCentroids: centroids,
	}
	r.Clusters = summarizeClusters(ds, res, !a.opts.onProjection)
	r.Breakdown = breakdown(ds, res)
	if !a.opts.onProjection {
		r.TransitionEstimate = transitionEstimate(r.Clusters, r.Breakdown)
	}
	return r, nil
}

func summarizeClusters(ds *dataset.Dataset, res *kmeans.Result, rawSpins bool) []ClusterSummary {
	out := make([]ClusterSummary, res.K())
	for c := range out {
		out[c] = ClusterSummary{Cluster: c, MinTemperature: math.Inf(1), MaxTemperature: math.Inf(-1)}
		if rawSpins {
			row := res.Centroids.Row(c)
			sum := 0.0
			for _, v := range row {
				sum += v
			}
			out[c].Magnetization = sum / float64(len(row))
		}
	}
	for i, c := range res.Assignments {
		t := ds.Temperatures[i]
		s := &out[c]
		s.Size++
		s.MeanTemperature += t
		s.MinTemperature = min(s.MinTemperature, t)
		s.MaxTemperature = max(s.MaxTemperature, t)
	}
	for c := range out {
		if out[c].Size == 0 {
			out[c].MinTemperature, out[c].MaxTemperature = 0, 0
			continue
		}
		out[c].MeanTemperature /= float64(out[c].Size)
	}
	return out
}

func breakdown(ds *dataset.Dataset, res *kmeans.Result) []TemperatureBreakdown {
	groups := ds.Groups()
	out := make([]TemperatureBreakdown, len(groups))
	for i, g := range groups {
		fr := make([]float64, res.K())
		for _, idx := range g.Indices {
			fr[res.Assignments[idx]]++
		}
		for c := range fr {
			fr[c] /= float64(len(g.Indices))
		}
		out[i] = TemperatureBreakdown{Temperature: g.Temperature, Fractions: fr}
	}
	return out
}

func transitionEstimate(clusters []ClusterSummary, bd []TemperatureBreakdown) float64 {
	if len(clusters) < 2 || len(bd) < 2 {
		return 0
	}
	disordered := 0
	for c, s := range clusters {
		if math.Abs(s.Magnetization) < math.Abs(clusters[disordered].Magnetization) {
			disordered = c
		}
	}
	for i := 1; i < len(bd); i++ {
		if bd[i].Fractions[disordered] > 0.5 && bd[i-1].Fractions[disordered] <= 0.5 {
			return (bd[i].Temperature + bd[i-1].Temperature) / 2
		}
	}
	return 0
}
