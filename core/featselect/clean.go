// Package featselect holds the feature-matrix transformations the model
// pipeline composes: zero-variance cleaning, standardization, correlation
// screening, combinatorial expansion, and PCA projection. Every transform
// that drops or reorders columns reports the index partition so callers
// can apply the identical change to companion matrices and name lists.
package featselect

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// CleanZeroVariance drops training columns with zero variance and applies
// the identical column removal to the test matrix. The returned dropped
// list holds the original indices of removed columns, ascending. When
// every column is flat the returned matrices are nil.
func CleanZeroVariance(train, test *mat.Dense) (ctrain, ctest *mat.Dense, dropped []int) {
	_, d := train.Dims()

	var kept []int
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, train)
		if stat.PopVariance(col, nil) == 0 {
			dropped = append(dropped, j)
		} else {
			kept = append(kept, j)
		}
	}

	ctrain = selectColumns(train, kept)
	if test != nil {
		ctest = selectColumns(test, kept)
	}
	return ctrain, ctest, dropped
}

// Standardize rescales every training column to zero mean and unit
// standard deviation, and applies the train-derived affine transform to
// the test matrix. Zero-variance columns must be cleaned first; they
// would divide by zero here.
func Standardize(train, test *mat.Dense) (strain, stest *mat.Dense, err error) {
	n, d := train.Dims()

	means := make([]float64, d)
	stds := make([]float64, d)
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, train)
		means[j] = stat.Mean(col, nil)
		stds[j] = stat.PopStdDev(col, nil)
		if stds[j] == 0 {
			return nil, nil, fmt.Errorf("featselect: column %d has zero variance, clean before standardizing", j)
		}
	}

	strain = mat.NewDense(n, d, nil)
	applyAffine(strain, train, means, stds)
	if test != nil {
		tn, td := test.Dims()
		if td != d {
			return nil, nil, fmt.Errorf("featselect: test has %d columns, train has %d", td, d)
		}
		stest = mat.NewDense(tn, td, nil)
		applyAffine(stest, test, means, stds)
	}
	return strain, stest, nil
}

func applyAffine(dst, src *mat.Dense, means, stds []float64) {
	n, d := src.Dims()
	for i := 0; i < n; i++ {
		for j := 0; j < d; j++ {
			dst.Set(i, j, (src.At(i, j)-means[j])/stds[j])
		}
	}
}

// selectColumns builds a new matrix from the given column indices, in
// the given order. An empty index list yields nil, since a dense matrix
// cannot have zero columns.
func selectColumns(m *mat.Dense, cols []int) *mat.Dense {
	n, _ := m.Dims()
	if len(cols) == 0 {
		return nil
	}
	out := mat.NewDense(n, len(cols), nil)
	for k, j := range cols {
		for i := 0; i < n; i++ {
			out.Set(i, k, m.At(i, j))
		}
	}
	return out
}

// DropColumns builds a new matrix without the listed column indices.
func DropColumns(m *mat.Dense, drop []int) *mat.Dense {
	_, d := m.Dims()
	dropSet := make(map[int]bool, len(drop))
	for _, j := range drop {
		dropSet[j] = true
	}
	var kept []int
	for j := 0; j < d; j++ {
		if !dropSet[j] {
			kept = append(kept, j)
		}
	}
	return selectColumns(m, kept)
}

// SelectColumns is the exported column projection used by the pipeline
// when truncating to an ordered feature subset.
func SelectColumns(m *mat.Dense, cols []int) *mat.Dense {
	return selectColumns(m, cols)
}

// DropNames removes the listed indices from a name list, preserving
// order, so names can track matrix columns through a drop.
func DropNames(names []string, drop []int) []string {
	dropSet := make(map[int]bool, len(drop))
	for _, j := range drop {
		dropSet[j] = true
	}
	out := make([]string, 0, len(names)-len(drop))
	for j, n := range names {
		if !dropSet[j] {
			out = append(out, n)
		}
	}
	return out
}

// SelectNames projects a name list onto the given indices, in order.
func SelectNames(names []string, cols []int) []string {
	out := make([]string, len(cols))
	for k, j := range cols {
		out[k] = names[j]
	}
	return out
}
