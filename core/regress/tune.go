package regress

import (
	"context"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/optimize"
)

// HyperFloor is the lower bound applied to every tuned hyperparameter.
// Bandwidths or noise at zero make the kernel system singular, so the
// tuner never reports values below this.
const HyperFloor = 1e-9

// Tune minimizes the negative log marginal likelihood over the
// per-feature bandwidths and the noise term, starting from a single
// broadcast width and noise guess. The search runs in log-parameter
// space, which keeps every parameter positive; results are floored at
// HyperFloor. Returns the tuned bandwidth vector and noise separately.
func Tune(ctx context.Context, trainX *mat.Dense, trainY []float64, width, noise float64) ([]float64, float64, error) {
	_, d := trainX.Dims()
	if width <= 0 || noise <= 0 {
		return nil, 0, fmt.Errorf("regress: starting width and noise must be positive")
	}

	// theta = (w_1..w_d, noise), searched as u = log(theta).
	u0 := make([]float64, d+1)
	for i := 0; i < d; i++ {
		u0[i] = math.Log(width)
	}
	u0[d] = math.Log(noise)

	problem := optimize.Problem{
		Func: func(u []float64) float64 {
			if ctx.Err() != nil {
				return math.Inf(1)
			}
			theta := make([]float64, len(u))
			for i, v := range u {
				theta[i] = math.Max(math.Exp(v), HyperFloor)
			}
			return NegativeLogLikelihood(theta, trainX, trainY)
		},
	}

	result, err := optimize.Minimize(problem, u0, nil, &optimize.NelderMead{})
	if err != nil {
		return nil, 0, fmt.Errorf("regress: hyperparameter optimization: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}

	widths := make([]float64, d)
	for i := 0; i < d; i++ {
		widths[i] = math.Max(math.Exp(result.X[i]), HyperFloor)
	}
	tunedNoise := math.Max(math.Exp(result.X[d]), HyperFloor)
	return widths, tunedNoise, nil
}
