package ising

import (
	"errors"
	"fmt"
	"math"
	"math/rand/v2"
	"slices"

	"github.com/hupe1980/isingkm/kmeans"
)

// CriticalTemperature is Onsager's exact transition temperature for J = 1.
var CriticalTemperature = 2 / math.Log(1+math.Sqrt2)

var (
	// ErrInvalidSize is returned for lattice sizes below 2.
	ErrInvalidSize = errors.New("ising: lattice size must be at least 2")
	// ErrInvalidSpin is returned when a spin is neither +1 nor -1.
	ErrInvalidSpin = errors.New("ising: spins must be +1 or -1")
)

// Lattice is an L × L configuration of ±1 spins with periodic boundaries,
// stored row-major.
type Lattice struct {
	L     int
	Spins []int8
}

// NewLattice returns a fully ordered lattice with every spin up.
func NewLattice(l int) (*Lattice, error) {
	if l < 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, l)
	}
	spins := make([]int8, l*l)
	for i := range spins {
		spins[i] = 1
	}
	return &Lattice{L: l, Spins: spins}, nil
}

// NewRandomLattice returns a lattice with independent, uniformly random spins.
func NewRandomLattice(l int, rng *rand.Rand) (*Lattice, error) {
	lat, err := NewLattice(l)
	if err != nil {
		return nil, err
	}
	for i := range lat.Spins {
		if rng.IntN(2) == 0 {
			lat.Spins[i] = -1
		}
	}
	return lat, nil
}

// FromSpins validates and wraps spins (length l*l). The slice is not copied.
func FromSpins(l int, spins []int8) (*Lattice, error) {
	if l < 2 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSize, l)
	}
	if len(spins) != l*l {
		return nil, fmt.Errorf("ising: expected %d spins, got %d", l*l, len(spins))
	}
	for i, s := range spins {
		if s != 1 && s != -1 {
			return nil, fmt.Errorf("%w: site %d has %d", ErrInvalidSpin, i, s)
		}
	}
	return &Lattice{L: l, Spins: spins}, nil
}

// N returns the number of sites.
func (l *Lattice) N() int { return l.L * l.L }

// At returns the spin at row i, column j, wrapping around the edges.
func (l *Lattice) At(i, j int) int8 {
	i = ((i % l.L) + l.L) % l.L
	j = ((j % l.L) + l.L) % l.L
	return l.Spins[i*l.L+j]
}

// Flip reverses the spin at row i, column j.
func (l *Lattice) Flip(i, j int) {
	l.Spins[i*l.L+j] = -l.Spins[i*l.L+j]
}

// neighbourSum returns the sum of the four nearest-neighbour spins of (i, j).
func (l *Lattice) neighbourSum(i, j int) int {
	return int(l.At(i-1, j)) + int(l.At(i+1, j)) + int(l.At(i, j-1)) + int(l.At(i, j+1))
}

// Energy returns H = -J Σ s_i s_j over nearest-neighbour bonds, each bond counted once.
func (l *Lattice) Energy(coupling float64) float64 {
	sum := 0
	for i := range l.L {
		for j := range l.L {
			s := int(l.Spins[i*l.L+j])
			sum += s * (int(l.At(i, j+1)) + int(l.At(i+1, j)))
		}
	}
	return -coupling * float64(sum)
}

// Magnetization returns the total magnetisation Σ s_i.
func (l *Lattice) Magnetization() int {
	m := 0
	for _, s := range l.Spins {
		m += int(s)
	}
	return m
}

// EnergyPerSpin returns Energy(coupling) / N.
func (l *Lattice) EnergyPerSpin(coupling float64) float64 {
	return l.Energy(coupling) / float64(l.N())
}

// MagnetizationPerSpin returns Magnetization() / N.
func (l *Lattice) MagnetizationPerSpin() float64 {
	return float64(l.Magnetization()) / float64(l.N())
}

// Clone returns a deep copy.
func (l *Lattice) Clone() *Lattice {
	return &Lattice{L: l.L, Spins: slices.Clone(l.Spins)}
}

// Vector returns the spins as float64 values, row-major.
func (l *Lattice) Vector() []float64 {
	out := make([]float64, len(l.Spins))
	for i, s := range l.Spins {
		out[i] = float64(s)
	}
	return out
}

// Flatten reshapes configurations into an n × L² point set, one row per lattice.
// All lattices must have the same size.
func Flatten(configs []*Lattice) (kmeans.Points, error) {
	if len(configs) == 0 {
		return kmeans.Points{}, errors.New("ising: no configurations")
	}
	l := configs[0].L
	data := make([]float64, 0, len(configs)*l*l)
	for i, c := range configs {
		if c.L != l {
			return kmeans.Points{}, fmt.Errorf("ising: configuration %d has size %d, expected %d", i, c.L, l)
		}
		for _, s := range c.Spins {
			data = append(data, float64(s))
		}
	}
	return kmeans.NewPoints(data, l*l)
}
