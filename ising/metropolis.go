package ising

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
)

// Sampler runs single-spin-flip Metropolis dynamics on a lattice it owns.
type Sampler struct {
	lattice     *Lattice
	temperature float64
	coupling    float64
	rng         *rand.Rand
	// accept[(s*h+4)/2] is the acceptance probability for a spin s with
	// neighbour sum h.
	accept [5]float64
}

// NewSampler creates a sampler at temperature t. The lattice is modified in place.
func NewSampler(lattice *Lattice, t, coupling float64, rng *rand.Rand) (*Sampler, error) {
	if t <= 0 || math.IsNaN(t) {
		return nil, fmt.Errorf("ising: temperature must be positive, got %v", t)
	}
	if rng == nil {
		return nil, fmt.Errorf("ising: random source is required")
	}
	s := &Sampler{lattice: lattice, temperature: t, coupling: coupling, rng: rng}
	for k := range s.accept {
		sh := float64(2*k - 4)
		dE := 2 * coupling * sh
		s.accept[k] = math.Min(1, math.Exp(-dE/t))
	}
	return s, nil
}

// Lattice returns the current configuration (not a copy).
func (s *Sampler) Lattice() *Lattice { return s.lattice }

// Sweep attempts N single-spin flips at uniformly random sites and returns
// how many were accepted.
func (s *Sampler) Sweep() int {
	l := s.lattice.L
	accepted := 0
	for range s.lattice.N() {
		i, j := s.rng.IntN(l), s.rng.IntN(l)
		sh := int(s.lattice.Spins[i*l+j]) * s.lattice.neighbourSum(i, j)
		p := s.accept[(sh+4)/2]
		if p >= 1 || s.rng.Float64() < p {
			s.lattice.Flip(i, j)
			accepted++
		}
	}
	return accepted
}

// Sample equilibrates for `equilibration` sweeps and then records `samples`
// configurations, one every `every` sweeps.
func (s *Sampler) Sample(ctx context.Context, equilibration, samples, every int) ([]*Lattice, error) {
	if samples < 1 || every < 1 || equilibration < 0 {
		return nil, fmt.Errorf("ising: invalid sampling schedule (equilibration=%d samples=%d every=%d)", equilibration, samples, every)
	}
	for range equilibration {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		s.Sweep()
	}
	out := make([]*Lattice, 0, samples)
	for range samples {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		for range every {
			s.Sweep()
		}
		out = append(out, s.lattice.Clone())
	}
	return out, nil
}
