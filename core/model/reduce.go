package model

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/kush2803/CatLearn/core/featselect"
	"github.com/kush2803/CatLearn/core/regress"
)

// reduce runs the core search: screen when features outnumber samples,
// rank by ridge coefficients, sweep a lasso path for the truncation
// ordering, then (optionally) search every candidate subset size for the
// best validation error.
func (b *Builder) reduce(ctx context.Context, st selectionState) (*Result, error) {
	n, d := st.train.Dims()

	if d > n {
		st = b.screen(st)
		if st.train == nil {
			// A legitimately empty accepted set reduces to zero features.
			b.log.Warn("screening accepted no features")
			return &Result{Names: []string{}}, nil
		}
		_, d = st.train.Dims()
	}

	widths := b.width
	noise := b.noise
	if b.cfg.TuneHyperparameters {
		tuned, tunedNoise, err := regress.Tune(ctx, st.train, st.trainTarget, b.cfg.Width, b.cfg.Regularization)
		if err != nil {
			return nil, fmt.Errorf("model: tune hyperparameters: %w", err)
		}
		widths, noise = tuned, tunedNoise
		b.width, b.noise = tuned, tunedNoise
		b.log.Info("tuned kernel hyperparameters", "features", d, "noise", noise)
	}

	res := &Result{}

	// Ridge ranking: a deterministic importance ordering plus a linear
	// reference error. The ordering itself is diagnostic; truncation
	// follows the lasso path below.
	lambda, err := regress.OptimalRegularization(st.train, st.trainTarget, 0)
	if err != nil {
		return nil, fmt.Errorf("model: ridge regularization search: %w", err)
	}
	coef, err := regress.Ridge(st.train, st.trainTarget, lambda)
	if err != nil {
		return nil, fmt.Errorf("model: ridge ranking: %w", err)
	}
	if st.test != nil && st.testTarget != nil {
		res.LinearError = regress.LinearRMSE(coef, st.test, st.testTarget)
	}

	path, err := regress.LassoPath(ctx, st.train, st.trainTarget, regress.PathOptions{
		Steps:      b.cfg.PathSteps,
		MaxIter:    b.cfg.PathMaxIter,
		Alpha:      b.cfg.PathAlpha,
		Test:       st.test,
		TestTarget: st.testTarget,
	})
	if err != nil {
		return nil, fmt.Errorf("model: lasso path: %w", err)
	}
	res.LassoMinError = path.MinError
	res.LassoMinFeatures = path.MinFeatures

	bestSize := b.cfg.Size
	if b.cfg.Optimize {
		if st.test == nil || st.testTarget == nil {
			return nil, fmt.Errorf("%w: size optimization needs a test partition with targets for validation error", ErrConfig)
		}
		limit := n
		if d < limit {
			limit = d
		}
		search, err := b.sizeSearch(ctx, st, path.Order, widths, noise, limit)
		if err != nil {
			return nil, err
		}
		bestSize = search.bestSize
		res.BestSize = search.bestSize
		res.BestError = search.bestError
		res.SizeErrors = search.errs
		res.PCAError = search.bestPCAError
		res.PCAComponents = search.bestPCAComponents

		b.log.Info("size search finished",
			"max_features", d,
			"best_error", res.BestError,
			"best_size", res.BestSize,
			"pca_error", res.PCAError,
			"pca_components", res.PCAComponents,
			"linear_error", res.LinearError,
			"lasso_error", res.LassoMinError,
			"lasso_features", res.LassoMinFeatures)
	} else {
		if bestSize > d {
			return nil, fmt.Errorf("%w: fixed size %d exceeds %d features after screening", ErrConfig, bestSize, d)
		}
		res.BestSize = bestSize
	}

	// Finalize: keep the top-bestSize features of the path ordering,
	// preserving their original column order, and apply the identical
	// projection to matrices and names.
	keep := sortedPrefix(path.Order, bestSize)
	res.Train = featselect.SelectColumns(st.train, keep)
	if st.test != nil {
		res.Test = featselect.SelectColumns(st.test, keep)
	}
	res.Names = featselect.SelectNames(st.names, keep)
	return res, nil
}

// screen reduces the feature count to at most the sample count, using
// the iterative variant when features exceed twice the samples.
func (b *Builder) screen(st selectionState) selectionState {
	n, d := st.train.Dims()

	var p featselect.Partition
	switch {
	case d > 2*n:
		step := featselect.IterativeStep(d, n)
		p = featselect.Iterative(st.train, st.trainTarget, n, step, b.cfg.Correlation)
		b.log.Info("iterative screening", "features", d, "kept", len(p.Accepted), "step", step)
	case b.cfg.Screening == SIS:
		p = featselect.SureIndependence(st.train, st.trainTarget, n)
		b.log.Info("independence screening", "features", d, "kept", len(p.Accepted))
	default:
		p = featselect.RobustRank(st.train, st.trainTarget, n, b.cfg.Correlation)
		b.log.Info("rank correlation screening", "features", d, "kept", len(p.Accepted), "correlation", b.cfg.Correlation.String())
	}

	out := selectionState{
		train:       featselect.SelectColumns(st.train, p.Accepted),
		names:       featselect.SelectNames(st.names, p.Accepted),
		trainTarget: st.trainTarget,
		testTarget:  st.testTarget,
	}
	if st.test != nil {
		out.test = featselect.SelectColumns(st.test, p.Accepted)
	}
	return out
}

// sizeResult is the reduction over all candidate subset sizes.
type sizeResult struct {
	bestSize  int
	bestError float64

	// errs[s] is the validation RMSE at size s; errs[0] is unused.
	errs []float64

	bestPCAError      float64
	bestPCAComponents int
}

// sizeSearch evaluates every candidate size from 1 to limit. Candidates
// are independent, so they run on a bounded worker group; results land
// in per-size slots and the argmin is taken serially, which keeps the
// outcome deterministic regardless of scheduling.
func (b *Builder) sizeSearch(ctx context.Context, st selectionState, order []int, widths []float64, noise float64, limit int) (*sizeResult, error) {
	errs := make([]float64, limit+1)
	pcaErrs := make([]float64, limit+1)
	pcaComps := make([]int, limit+1)
	for i := range errs {
		errs[i] = math.Inf(1)
		pcaErrs[i] = math.Inf(1)
	}

	workers := b.cfg.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for s := 1; s <= limit; s++ {
		s := s
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			keep := sortedPrefix(order, s)
			reducedTrain := featselect.SelectColumns(st.train, keep)
			reducedTest := featselect.SelectColumns(st.test, keep)

			gp := regress.GaussianProcess{Widths: widthsFor(widths, keep), Noise: noise}
			p, err := gp.Predict(reducedTrain, reducedTest, st.trainTarget, st.testTarget)
			if err != nil {
				return fmt.Errorf("model: size %d prediction: %w", s, err)
			}
			errs[s] = p.ValidationRMSE

			// Parallel comparison: project the same subset onto fewer
			// orthogonal components. Tracked separately and never
			// feeds the feature-selection decision.
			for c := 1; c < s; c++ {
				if err := gctx.Err(); err != nil {
					return err
				}
				ptrain, ptest, err := featselect.PCA(reducedTrain, reducedTest, c)
				if err != nil {
					return fmt.Errorf("model: size %d pca %d: %w", s, c, err)
				}
				pgp := regress.GaussianProcess{Widths: []float64{b.cfg.Width}, Noise: noise}
				pp, err := pgp.Predict(ptrain, ptest, st.trainTarget, st.testTarget)
				if err != nil {
					return fmt.Errorf("model: size %d pca %d prediction: %w", s, c, err)
				}
				if pp.ValidationRMSE < pcaErrs[s] {
					pcaErrs[s] = pp.ValidationRMSE
					pcaComps[s] = c
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := &sizeResult{errs: errs, bestError: math.Inf(1), bestPCAError: math.Inf(1)}
	for s := 1; s <= limit; s++ {
		if errs[s] < out.bestError {
			out.bestError = errs[s]
			out.bestSize = s
		}
		if pcaErrs[s] < out.bestPCAError {
			out.bestPCAError = pcaErrs[s]
			out.bestPCAComponents = pcaComps[s]
		}
	}
	return out, nil
}

// sortedPrefix returns the first s entries of an importance ordering,
// restored to ascending column order so truncation preserves the
// original column layout.
func sortedPrefix(order []int, s int) []int {
	if s > len(order) {
		s = len(order)
	}
	keep := append([]int(nil), order[:s]...)
	sort.Ints(keep)
	return keep
}

// widthsFor projects a per-feature bandwidth vector onto a column
// subset. A single broadcast bandwidth passes through unchanged.
func widthsFor(widths []float64, cols []int) []float64 {
	if len(widths) == 1 {
		return widths
	}
	out := make([]float64, len(cols))
	for i, j := range cols {
		out[i] = widths[j]
	}
	return out
}
