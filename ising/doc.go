// Package ising models square-lattice Ising spin configurations.
//
// It covers the physics side of the analysis pipeline: lattices with
// periodic boundaries, their energy and magnetisation, ensemble observables
// (susceptibility, specific heat, Binder cumulant) and a single-spin-flip
// Metropolis sampler that produces configurations at a given temperature.
//
// Units follow the usual convention k_B = 1; the coupling J defaults to 1.
package ising
