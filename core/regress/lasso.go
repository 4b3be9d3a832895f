package regress

import (
	"context"
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// PathOptions configures a lasso regularization-path sweep.
type PathOptions struct {
	// Steps is the number of increasing regularization strengths to
	// visit. Zero means 20.
	Steps int

	// MaxIter bounds the coordinate-descent iterations per step.
	// Zero means 1e5.
	MaxIter int

	// Alpha is the base regularization strength; step k uses k*Alpha.
	// Zero means 1e-1.
	Alpha float64

	// Tolerance is the convergence threshold on the largest
	// coefficient update within a sweep. Zero means 1e-6.
	Tolerance float64

	// Test and TestTarget, when both present, score each step on
	// held-out data; otherwise training error is recorded.
	Test       *mat.Dense
	TestTarget []float64
}

// PathResult summarizes a lasso path sweep.
type PathResult struct {
	// Errors holds the validation RMSE at each step.
	Errors []float64

	// MinError is the smallest validation RMSE along the path.
	MinError float64

	// MinFeatures is the active feature count at the minimum.
	MinFeatures int

	// Order is the full feature ordering by descending importance:
	// features that stay in the support at stronger regularization
	// rank first, ties broken by coefficient magnitude then index.
	Order []int
}

// LassoPath sweeps increasing L1 regularization strengths, fitting a
// coordinate-descent lasso at each step and recording the support and
// validation error. The target is centered internally; the feature
// matrix is expected to be standardized, as the pipeline guarantees.
func LassoPath(ctx context.Context, train *mat.Dense, target []float64, opts PathOptions) (*PathResult, error) {
	n, d := train.Dims()
	if n != len(target) {
		return nil, fmt.Errorf("regress: %d rows but %d targets", n, len(target))
	}
	if opts.Steps <= 0 {
		opts.Steps = 20
	}
	if opts.MaxIter <= 0 {
		opts.MaxIter = 100000
	}
	if opts.Alpha <= 0 {
		opts.Alpha = 1e-1
	}
	if opts.Tolerance <= 0 {
		opts.Tolerance = 1e-6
	}

	yMean := mean(target)
	y := make([]float64, n)
	for i, v := range target {
		y[i] = v - yMean
	}

	// Column views and squared norms, fixed across the path.
	cols := make([][]float64, d)
	colNorm2 := make([]float64, d)
	for j := 0; j < d; j++ {
		cols[j] = mat.Col(nil, j, train)
		colNorm2[j] = dot(cols[j], cols[j])
	}

	res := &PathResult{
		Errors:   make([]float64, 0, opts.Steps),
		MinError: math.Inf(1),
	}
	survival := make([]int, d)
	lastMagnitude := make([]float64, d)

	coef := make([]float64, d)
	residual := append([]float64(nil), y...)

	for step := 1; step <= opts.Steps; step++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		alpha := opts.Alpha * float64(step)

		// Warm start from the previous step's coefficients.
		coordinateDescent(cols, colNorm2, residual, coef, alpha*float64(n), opts.MaxIter, opts.Tolerance)

		active := 0
		for j, c := range coef {
			if c != 0 {
				active++
				survival[j]++
				lastMagnitude[j] = math.Abs(c)
			}
		}

		var rmse float64
		if opts.Test != nil && opts.TestTarget != nil {
			rmse = interceptRMSE(coef, yMean, opts.Test, opts.TestTarget)
		} else {
			rmse = math.Sqrt(dot(residual, residual) / float64(n))
		}
		res.Errors = append(res.Errors, rmse)
		if rmse < res.MinError {
			res.MinError = rmse
			res.MinFeatures = active
		}
	}

	order := make([]int, d)
	for j := range order {
		order[j] = j
	}
	sort.SliceStable(order, func(a, b int) bool {
		if survival[order[a]] != survival[order[b]] {
			return survival[order[a]] > survival[order[b]]
		}
		if lastMagnitude[order[a]] != lastMagnitude[order[b]] {
			return lastMagnitude[order[a]] > lastMagnitude[order[b]]
		}
		return order[a] < order[b]
	})
	res.Order = order
	return res, nil
}

// coordinateDescent runs cyclic soft-thresholding updates in place.
// residual tracks y - X*coef throughout.
func coordinateDescent(cols [][]float64, colNorm2, residual, coef []float64, penalty float64, maxIter int, tol float64) {
	d := len(cols)
	for iter := 0; iter < maxIter; iter++ {
		var maxDelta float64
		for j := 0; j < d; j++ {
			if colNorm2[j] == 0 {
				continue
			}
			old := coef[j]
			// rho = X_j . (residual + X_j * old)
			rho := dot(cols[j], residual) + colNorm2[j]*old
			next := softThreshold(rho, penalty) / colNorm2[j]
			if next == old {
				continue
			}
			delta := next - old
			for i, v := range cols[j] {
				residual[i] -= delta * v
			}
			coef[j] = next
			if math.Abs(delta) > maxDelta {
				maxDelta = math.Abs(delta)
			}
		}
		if maxDelta < tol {
			return
		}
	}
}

func softThreshold(v, penalty float64) float64 {
	switch {
	case v > penalty:
		return v - penalty
	case v < -penalty:
		return v + penalty
	default:
		return 0
	}
}

func interceptRMSE(coef []float64, intercept float64, X *mat.Dense, y []float64) float64 {
	n, _ := X.Dims()
	var sum float64
	for i := 0; i < n; i++ {
		pred := dot(coef, X.RawRowView(i)) + intercept
		diff := pred - y[i]
		sum += diff * diff
	}
	return math.Sqrt(sum / float64(n))
}

func mean(x []float64) float64 {
	var s float64
	for _, v := range x {
		s += v
	}
	return s / float64(len(x))
}
