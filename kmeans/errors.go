package kmeans

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidConfiguration is returned when k, the iteration budget or the
	// point set cannot be clustered. It is reported before any computation.
	ErrInvalidConfiguration = errors.New("kmeans: invalid configuration")

	// ErrDegenerateSeeding is returned in strict seeding mode when the
	// distance-weighted sampling distribution collapsed to all zeros.
	ErrDegenerateSeeding = errors.New("kmeans: degenerate seeding distribution")

	// ErrEmptyCluster is returned under EmptyFail when a cluster receives no points.
	ErrEmptyCluster = errors.New("kmeans: empty cluster")
)

// ConfigError describes which input was rejected and why.
//
// It matches ErrInvalidConfiguration via errors.Is.
type ConfigError struct {
	Field  string
	Value  any
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("kmeans: invalid %s (%v): %s", e.Field, e.Value, e.Reason)
}

func (e *ConfigError) Unwrap() error { return ErrInvalidConfiguration }

// EmptyClusterError identifies the cluster that became empty.
//
// It matches ErrEmptyCluster via errors.Is.
type EmptyClusterError struct {
	Iteration int
	Cluster   int
}

func (e *EmptyClusterError) Error() string {
	return fmt.Sprintf("kmeans: cluster %d has no points in iteration %d", e.Cluster, e.Iteration)
}

func (e *EmptyClusterError) Unwrap() error { return ErrEmptyCluster }
