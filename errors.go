package isingkm

import (
	"errors"
	"fmt"

	"github.com/hupe1980/isingkm/dataset"
	"github.com/hupe1980/isingkm/kmeans"
)

// Sentinel errors re-exported from the stage packages so callers of the
// Analyzer need only one import for errors.Is checks.
var (
	ErrInvalidConfiguration = kmeans.ErrInvalidConfiguration
	ErrDegenerateSeeding    = kmeans.ErrDegenerateSeeding
	ErrEmptyCluster         = kmeans.ErrEmptyCluster
	ErrEmptyDataset         = dataset.ErrEmpty
)

// ErrInvalidK is returned when k is outside [1, number of configurations].
var ErrInvalidK = errors.New("isingkm: invalid k")

// StageError reports which pipeline stage failed.
//
// The underlying error can be accessed via errors.Unwrap.
type StageError struct {
	Stage string
	cause error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("isingkm: %s: %v", e.Stage, e.cause)
}

func (e *StageError) Unwrap() error { return e.cause }

func stageError(stage string, err error) error {
	if err == nil {
		return nil
	}
	return &StageError{Stage: stage, cause: err}
}
