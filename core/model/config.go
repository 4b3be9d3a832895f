// Package model drives feature-matrix model building: ingest, optional
// persistence, cleaning, standardization, combinatorial expansion, and
// the multi-strategy reduction search that picks the smallest predictive
// feature subset.
package model

import (
	"errors"
	"fmt"

	"github.com/kush2803/CatLearn/core/featselect"
)

// ScreeningMethod selects the single-pass screening routine applied when
// features outnumber samples.
type ScreeningMethod int

const (
	// RRCS is robust rank correlation screening.
	RRCS ScreeningMethod = iota
	// SIS is sure independence screening.
	SIS
)

func (m ScreeningMethod) String() string {
	switch m {
	case RRCS:
		return "rrcs"
	case SIS:
		return "sis"
	}
	return fmt.Sprintf("screening(%d)", int(m))
}

// ParseScreeningMethod maps a configuration key to a ScreeningMethod.
func ParseScreeningMethod(key string) (ScreeningMethod, error) {
	switch key {
	case "rrcs":
		return RRCS, nil
	case "sis":
		return SIS, nil
	}
	return 0, fmt.Errorf("%w: unknown screening method %q", ErrConfig, key)
}

// Error taxonomy for the pipeline. Everything fatal wraps one of these
// so callers can branch without string matching.
var (
	// ErrConfig marks configuration errors detected before any
	// expensive fitting.
	ErrConfig = errors.New("model: invalid configuration")

	// ErrShapeMismatch marks identifier/target/matrix row-count
	// disagreements, validated at ingest.
	ErrShapeMismatch = errors.New("model: shape mismatch")
)

// Config is the immutable configuration for one Builder. The zero value
// is not useful; start from DefaultConfig.
type Config struct {
	// UpdateTrainDB and UpdateTestDB persist the raw and expanded
	// feature matrices for their partitions.
	UpdateTrainDB bool
	UpdateTestDB  bool

	// DBName is the descriptor store filename; partition tags are
	// prefixed onto it.
	DBName string

	// Screening picks the single-pass screening method; Correlation
	// picks the statistic used by rank-correlation screening.
	Screening   ScreeningMethod
	Correlation featselect.Correlation

	// InitialPrediction runs one unreduced prediction pass for
	// comparison logging before any reduction.
	InitialPrediction bool

	// CleanFeatures removes zero-variance columns before
	// standardization.
	CleanFeatures bool

	// Expand grows the feature set combinatorially before reduction.
	Expand bool

	// Optimize searches for the best subset size. When false, Size
	// must hold the fixed subset size to return.
	Optimize bool
	Size     int

	// TuneHyperparameters refits kernel bandwidths and noise by
	// marginal likelihood after screening, before the size search.
	TuneHyperparameters bool

	// Width and Regularization are the starting kernel bandwidth and
	// noise guesses.
	Width          float64
	Regularization float64

	// PathSteps, PathAlpha and PathMaxIter configure the lasso
	// regularization-path sweep.
	PathSteps   int
	PathAlpha   float64
	PathMaxIter int

	// Workers bounds the parallel size-search evaluations. Zero means
	// one worker per CPU.
	Workers int
}

// DefaultConfig mirrors the reference defaults: rank screening with
// Kendall correlation, expansion and size optimization on, width 0.5 and
// noise 1e-3.
func DefaultConfig() Config {
	return Config{
		UpdateTrainDB:     true,
		UpdateTestDB:      true,
		DBName:            "fpv_store.sqlite",
		Screening:         RRCS,
		Correlation:       featselect.Kendall,
		InitialPrediction: true,
		CleanFeatures:     true,
		Expand:            true,
		Optimize:          true,
		Width:             0.5,
		Regularization:    1e-3,
		PathSteps:         20,
		PathAlpha:         1e-1,
		PathMaxIter:       1_000_000,
	}
}

// validate rejects configurations that can never succeed.
func (c Config) validate() error {
	if !c.Optimize && c.Size <= 0 {
		return fmt.Errorf("%w: a fixed size is required when optimize is off", ErrConfig)
	}
	if c.Width <= 0 || c.Regularization <= 0 {
		return fmt.Errorf("%w: width and regularization must be positive", ErrConfig)
	}
	return nil
}
