package regress

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// ErrSingularKernel reports a kernel matrix whose Cholesky factorization
// failed, typically from a zero noise term or duplicated training rows.
var ErrSingularKernel = errors.New("regress: kernel matrix is not positive definite")

// GaussianProcess is the kernel-based surrogate predictor: Gaussian
// kernel regression with per-feature bandwidths and a noise
// regularization term on the diagonal.
type GaussianProcess struct {
	// Widths holds the kernel bandwidths. A single entry broadcasts
	// across all features.
	Widths []float64

	// Noise is the diagonal regularization added to the kernel matrix.
	Noise float64
}

// Prediction bundles the errors of one train/validate cycle.
type Prediction struct {
	TrainRMSE      float64
	ValidationRMSE float64
	Predicted      []float64
}

// widthFor resolves the bandwidth for feature k under broadcasting.
func (g *GaussianProcess) widthFor(k int) float64 {
	if len(g.Widths) == 1 {
		return g.Widths[0]
	}
	return g.Widths[k]
}

// kernelValue evaluates the Gaussian kernel between two feature rows.
func (g *GaussianProcess) kernelValue(a, b []float64) float64 {
	var sum float64
	for k := range a {
		w := g.widthFor(k)
		diff := (a[k] - b[k]) / w
		sum += diff * diff
	}
	return math.Exp(-0.5 * sum)
}

// Predict trains on the train partition and scores both partitions.
// The kernel system is solved once per call; degenerate kernels surface
// as ErrSingularKernel.
func (g *GaussianProcess) Predict(trainX, testX *mat.Dense, trainY, testY []float64) (*Prediction, error) {
	n, d := trainX.Dims()
	if n != len(trainY) {
		return nil, fmt.Errorf("regress: %d training rows but %d targets", n, len(trainY))
	}
	if len(g.Widths) != 1 && len(g.Widths) != d {
		return nil, fmt.Errorf("regress: %d bandwidths for %d features", len(g.Widths), d)
	}

	// K + noise*I, symmetric.
	km := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		ri := trainX.RawRowView(i)
		for j := i; j < n; j++ {
			v := g.kernelValue(ri, trainX.RawRowView(j))
			if i == j {
				v += g.Noise
			}
			km.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(km); !ok {
		return nil, ErrSingularKernel
	}

	yVec := mat.NewVecDense(n, append([]float64(nil), trainY...))
	var alpha mat.VecDense
	if err := chol.SolveVecTo(&alpha, yVec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSingularKernel, err)
	}

	pred := &Prediction{}

	// Training error from in-sample predictions.
	var trainSum float64
	for i := 0; i < n; i++ {
		var p float64
		ri := trainX.RawRowView(i)
		for j := 0; j < n; j++ {
			p += g.kernelValue(ri, trainX.RawRowView(j)) * alpha.AtVec(j)
		}
		diff := p - trainY[i]
		trainSum += diff * diff
	}
	pred.TrainRMSE = math.Sqrt(trainSum / float64(n))

	if testX != nil {
		m, td := testX.Dims()
		if td != d {
			return nil, fmt.Errorf("regress: test has %d features, train has %d", td, d)
		}
		pred.Predicted = make([]float64, m)
		var testSum float64
		for i := 0; i < m; i++ {
			var p float64
			ri := testX.RawRowView(i)
			for j := 0; j < n; j++ {
				p += g.kernelValue(ri, trainX.RawRowView(j)) * alpha.AtVec(j)
			}
			pred.Predicted[i] = p
			if testY != nil {
				diff := p - testY[i]
				testSum += diff * diff
			}
		}
		if testY != nil {
			pred.ValidationRMSE = math.Sqrt(testSum / float64(m))
		}
	}
	return pred, nil
}

// NegativeLogLikelihood is the negative log marginal likelihood of the
// training targets under the Gaussian process defined by theta, where
// theta packs the per-feature bandwidths followed by the noise term.
// It is the objective minimized by the hyperparameter tuner.
func NegativeLogLikelihood(theta []float64, trainX *mat.Dense, trainY []float64) float64 {
	n, d := trainX.Dims()
	g := GaussianProcess{Widths: theta[:len(theta)-1], Noise: theta[len(theta)-1]}
	if len(g.Widths) != 1 && len(g.Widths) != d {
		return math.Inf(1)
	}

	km := mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		ri := trainX.RawRowView(i)
		for j := i; j < n; j++ {
			v := g.kernelValue(ri, trainX.RawRowView(j))
			if i == j {
				v += g.Noise
			}
			km.SetSym(i, j, v)
		}
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(km); !ok {
		return math.Inf(1)
	}

	yVec := mat.NewVecDense(n, append([]float64(nil), trainY...))
	var alpha mat.VecDense
	if err := chol.SolveVecTo(&alpha, yVec); err != nil {
		return math.Inf(1)
	}

	return 0.5*mat.Dot(yVec, &alpha) + 0.5*chol.LogDet() + 0.5*float64(n)*math.Log(2*math.Pi)
}
