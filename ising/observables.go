package ising

import (
	"errors"
	"fmt"
	"math"
)

// Summary holds ensemble averages for configurations sampled at one temperature.
// Energy and magnetisation are per spin.
type Summary struct {
	Temperature      float64 `json:"temperature" yaml:"temperature"`
	Samples          int     `json:"samples" yaml:"samples"`
	Energy           float64 `json:"energy" yaml:"energy"`
	Magnetization    float64 `json:"magnetization" yaml:"magnetization"`
	AbsMagnetization float64 `json:"abs_magnetization" yaml:"abs_magnetization"`
	// Susceptibility is N/T (⟨m²⟩ − ⟨|m|⟩²).
	Susceptibility float64 `json:"susceptibility" yaml:"susceptibility"`
	// SpecificHeat is N/T² (⟨e²⟩ − ⟨e⟩²).
	SpecificHeat float64 `json:"specific_heat" yaml:"specific_heat"`
	// Binder is 1 − ⟨m⁴⟩ / (3⟨m²⟩²).
	Binder float64 `json:"binder" yaml:"binder"`
}

// Summarize computes ensemble observables at temperature t.
func Summarize(t, coupling float64, configs []*Lattice) (Summary, error) {
	if t <= 0 || math.IsNaN(t) {
		return Summary{}, fmt.Errorf("ising: temperature must be positive, got %v", t)
	}
	if len(configs) == 0 {
		return Summary{}, errors.New("ising: no configurations")
	}

	n := float64(configs[0].N())
	var e, e2, m, am, m2, m4 float64
	for i, c := range configs {
		if float64(c.N()) != n {
			return Summary{}, fmt.Errorf("ising: configuration %d has %d sites, expected %d", i, c.N(), int(n))
		}
		ei := c.EnergyPerSpin(coupling)
		mi := c.MagnetizationPerSpin()
		e += ei
		e2 += ei * ei
		m += mi
		am += math.Abs(mi)
		m2 += mi * mi
		m4 += mi * mi * mi * mi
	}

	cnt := float64(len(configs))
	e, e2, m, am, m2, m4 = e/cnt, e2/cnt, m/cnt, am/cnt, m2/cnt, m4/cnt

	s := Summary{
		Temperature:      t,
		Samples:          len(configs),
		Energy:           e,
		Magnetization:    m,
		AbsMagnetization: am,
		Susceptibility:   n / t * (m2 - am*am),
		SpecificHeat:     n / (t * t) * (e2 - e*e),
	}
	if m2 > 0 {
		s.Binder = 1 - m4/(3*m2*m2)
	}
	return s, nil
}
