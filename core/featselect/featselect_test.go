package featselect

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// randomMatrix creates an n x d matrix with seeded uniform entries.
func randomMatrix(n, d int, seed int64) *mat.Dense {
	rng := rand.New(rand.NewSource(seed))
	data := make([]float64, n*d)
	for i := range data {
		data[i] = rng.Float64()*2 - 1
	}
	return mat.NewDense(n, d, data)
}

func TestCleanZeroVariance(t *testing.T) {
	train := mat.NewDense(3, 4, []float64{
		1, 5, 0, 2,
		2, 5, 0, 4,
		3, 5, 0, 6,
	})
	test := mat.NewDense(2, 4, []float64{
		9, 9, 9, 9,
		8, 8, 8, 8,
	})

	ctrain, ctest, dropped := CleanZeroVariance(train, test)
	assert.Equal(t, []int{1, 2}, dropped)

	_, d := ctrain.Dims()
	assert.Equal(t, 2, d)
	// Retained columns keep their values and order.
	assert.Equal(t, 1.0, ctrain.At(0, 0))
	assert.Equal(t, 2.0, ctrain.At(0, 1))
	// Identical drop applied to test.
	_, td := ctest.Dims()
	assert.Equal(t, 2, td)
	assert.Equal(t, 9.0, ctest.At(0, 0))
	assert.Equal(t, 9.0, ctest.At(0, 1))

	// No retained training column has zero variance.
	for j := 0; j < d; j++ {
		col := mat.Col(nil, j, ctrain)
		variance := 0.0
		mean := (col[0] + col[1] + col[2]) / 3
		for _, v := range col {
			variance += (v - mean) * (v - mean)
		}
		assert.Greater(t, variance, 0.0)
	}
}

func TestCleanZeroVarianceAllFlat(t *testing.T) {
	train := mat.NewDense(3, 2, []float64{
		5, 1,
		5, 1,
		5, 1,
	})
	ctrain, ctest, dropped := CleanZeroVariance(train, nil)
	assert.Equal(t, []int{0, 1}, dropped)
	assert.Nil(t, ctrain)
	assert.Nil(t, ctest)
}

func TestStandardize(t *testing.T) {
	train := randomMatrix(20, 5, 1)
	test := randomMatrix(7, 5, 2)

	strain, stest, err := Standardize(train, test)
	require.NoError(t, err)

	n, d := strain.Dims()
	for j := 0; j < d; j++ {
		var sum, sumSq float64
		for i := 0; i < n; i++ {
			v := strain.At(i, j)
			sum += v
			sumSq += v * v
		}
		assert.InDelta(t, 0, sum/float64(n), 1e-10, "column %d mean", j)
		assert.InDelta(t, 1, sumSq/float64(n), 1e-10, "column %d variance", j)
	}

	// Test matrix transformed with train statistics, not its own.
	tn, _ := stest.Dims()
	assert.Equal(t, 7, tn)
}

func TestStandardizeRejectsConstantColumn(t *testing.T) {
	train := mat.NewDense(2, 2, []float64{1, 3, 2, 3})
	_, _, err := Standardize(train, nil)
	assert.Error(t, err)
}

func TestScreeningPartitionCoversIndexSet(t *testing.T) {
	train := randomMatrix(10, 25, 3)
	target := make([]float64, 10)
	for i := range target {
		target[i] = train.At(i, 4) * 3.0 // column 4 drives the target
	}

	for _, p := range []Partition{
		SureIndependence(train, target, 10),
		RobustRank(train, target, 10, Spearman),
		RobustRank(train, target, 10, Kendall),
		Iterative(train, target, 10, 2, Pearson),
	} {
		assert.LessOrEqual(t, len(p.Accepted), 10)
		seen := make(map[int]bool)
		for _, j := range append(append([]int(nil), p.Accepted...), p.Rejected...) {
			assert.False(t, seen[j], "index %d appears twice", j)
			seen[j] = true
		}
		assert.Len(t, seen, 25)
		assert.Contains(t, p.Accepted, 4, "driving feature should survive screening")
	}
}

func TestScreeningSizeCap(t *testing.T) {
	train := randomMatrix(6, 12, 4)
	target := mat.Col(nil, 0, train)

	p := SureIndependence(train, target, 3)
	assert.Len(t, p.Accepted, 3)
	assert.Len(t, p.Rejected, 9)

	// Requesting more than available accepts everything.
	p = SureIndependence(train, target, 40)
	assert.Len(t, p.Accepted, 12)
	assert.Empty(t, p.Rejected)
}

func TestIterativeStep(t *testing.T) {
	assert.Equal(t, 1, IterativeStep(10, 10))
	assert.Equal(t, 1, IterativeStep(20, 10))
	assert.GreaterOrEqual(t, IterativeStep(10000, 10), 2)
}

func TestExpandPrefixPreserving(t *testing.T) {
	e := DefaultExpander()
	m := randomMatrix(6, 4, 5)

	out := e.Expand(m)
	n, w := out.Dims()
	assert.Equal(t, 6, n)
	assert.Equal(t, e.ExpandedWidth(4), w)

	// Restricting to the first d columns recovers the input exactly.
	for i := 0; i < 6; i++ {
		for j := 0; j < 4; j++ {
			assert.Equal(t, m.At(i, j), out.At(i, j))
		}
	}

	// Spot-check the first derived column: product of columns 0 and 1.
	assert.InDelta(t, m.At(0, 0)*m.At(0, 1), out.At(0, 4), 1e-12)
}

func TestExpandLabelsAlign(t *testing.T) {
	e := DefaultExpander()
	names := []string{"f0", "f1", "f2"}
	labels := e.Labels(names)
	assert.Len(t, labels, e.ExpandedWidth(3))
	assert.Equal(t, "f0", labels[0])
	assert.Equal(t, "f0*f1", labels[3])
	assert.Equal(t, "f0/f1", labels[6])
}

func TestExpandGuardsDegenerateValues(t *testing.T) {
	e := DefaultExpander()
	m := mat.NewDense(1, 2, []float64{0, 2})
	out := e.Expand(m)
	_, w := out.Dims()
	for j := 0; j < w; j++ {
		v := out.At(0, j)
		assert.False(t, math.IsNaN(v) || math.IsInf(v, 0), "column %d", j)
	}
}

func TestPCAProjection(t *testing.T) {
	train := randomMatrix(12, 5, 6)
	test := randomMatrix(4, 5, 7)

	ptrain, ptest, err := PCA(train, test, 2)
	require.NoError(t, err)

	_, c := ptrain.Dims()
	assert.Equal(t, 2, c)
	tn, tc := ptest.Dims()
	assert.Equal(t, 4, tn)
	assert.Equal(t, 2, tc)

	_, _, err = PCA(train, test, 9)
	assert.Error(t, err)
	_, _, err = PCA(train, test, 0)
	assert.Error(t, err)
}

func TestDropAndSelectHelpersKeepAlignment(t *testing.T) {
	m := mat.NewDense(2, 4, []float64{
		1, 2, 3, 4,
		5, 6, 7, 8,
	})
	names := []string{"a", "b", "c", "d"}

	dm := DropColumns(m, []int{1, 3})
	dn := DropNames(names, []int{1, 3})
	_, d := dm.Dims()
	require.Equal(t, 2, d)
	assert.Equal(t, []string{"a", "c"}, dn)
	assert.Equal(t, 3.0, dm.At(0, 1))

	sm := SelectColumns(m, []int{3, 0})
	sn := SelectNames(names, []int{3, 0})
	assert.Equal(t, []string{"d", "a"}, sn)
	assert.Equal(t, 4.0, sm.At(0, 0))
	assert.Equal(t, 1.0, sm.At(0, 1))
}
