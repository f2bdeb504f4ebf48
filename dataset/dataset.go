package dataset

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"

	"github.com/hupe1980/isingkm/ising"
	"github.com/hupe1980/isingkm/kmeans"
)

// ErrEmpty is returned when an operation needs at least one configuration.
var ErrEmpty = errors.New("dataset: no configurations")

// Dataset is a set of equally sized lattices with their sampling temperatures.
type Dataset struct {
	L        int
	Coupling float64
	// Temperatures[i] is the temperature Configs[i] was sampled at.
	Temperatures []float64
	Configs      []*ising.Lattice
}

// New returns an empty dataset for L × L lattices.
func New(l int, coupling float64) (*Dataset, error) {
	if l < 2 {
		return nil, fmt.Errorf("%w: %d", ising.ErrInvalidSize, l)
	}
	return &Dataset{L: l, Coupling: coupling}, nil
}

// Len returns the number of configurations.
func (d *Dataset) Len() int { return len(d.Configs) }

// Add appends configurations sampled at temperature t.
func (d *Dataset) Add(t float64, configs ...*ising.Lattice) error {
	if t <= 0 || math.IsNaN(t) || math.IsInf(t, 0) {
		return fmt.Errorf("dataset: invalid temperature %v", t)
	}
	for i, c := range configs {
		if c.L != d.L {
			return fmt.Errorf("dataset: configuration %d has size %d, expected %d", i, c.L, d.L)
		}
	}
	for _, c := range configs {
		d.Configs = append(d.Configs, c)
		d.Temperatures = append(d.Temperatures, t)
	}
	return nil
}

// Points flattens the configurations into an n × L² point set.
func (d *Dataset) Points() (kmeans.Points, error) {
	if d.Len() == 0 {
		return kmeans.Points{}, ErrEmpty
	}
	return ising.Flatten(d.Configs)
}

// Group is the slice of a dataset sampled at one temperature.
type Group struct {
	Temperature float64
	// Indices are positions in the parent dataset, ascending.
	Indices []int
	Configs []*ising.Lattice
}

// Groups partitions the dataset by temperature, ordered by ascending temperature.
func (d *Dataset) Groups() []Group {
	byT := make(map[float64]*Group)
	for i, t := range d.Temperatures {
		g, ok := byT[t]
		if !ok {
			g = &Group{Temperature: t}
			byT[t] = g
		}
		g.Indices = append(g.Indices, i)
		g.Configs = append(g.Configs, d.Configs[i])
	}

	out := make([]Group, 0, len(byT))
	for _, g := range byT {
		out = append(out, *g)
	}
	slices.SortFunc(out, func(a, b Group) int { return cmp.Compare(a.Temperature, b.Temperature) })
	return out
}

// Summaries computes ising.Summarize for every temperature group.
func (d *Dataset) Summaries() ([]ising.Summary, error) {
	groups := d.Groups()
	out := make([]ising.Summary, 0, len(groups))
	for _, g := range groups {
		s, err := ising.Summarize(g.Temperature, d.Coupling, g.Configs)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// Linspace returns n evenly spaced values from lo to hi inclusive.
func Linspace(lo, hi float64, n int) []float64 {
	switch {
	case n <= 0:
		return nil
	case n == 1:
		return []float64{lo}
	}
	out := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range out {
		out[i] = lo + float64(i)*step
	}
	out[n-1] = hi
	return out
}
