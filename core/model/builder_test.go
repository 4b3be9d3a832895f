package model

import (
	"context"
	"math"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/kush2803/CatLearn/core/storage"
)

// testProblem builds train/test matrices where column 0 drives the
// target and the rest is noise.
func testProblem(n, testN, d int, seed int64) Input {
	rng := rand.New(rand.NewSource(seed))
	fill := func(rows int) (*mat.Dense, []float64) {
		m := mat.NewDense(rows, d, nil)
		y := make([]float64, rows)
		for i := 0; i < rows; i++ {
			for j := 0; j < d; j++ {
				m.Set(i, j, rng.NormFloat64())
			}
			y[i] = 2*m.At(i, 0) + 0.05*rng.NormFloat64()
		}
		return m, y
	}
	train, trainY := fill(n)
	test, testY := fill(testN)
	return Input{
		Train:       train,
		TrainTarget: trainY,
		Test:        test,
		TestTarget:  testY,
	}
}

// quietConfig keeps tests fast and side-effect free.
func quietConfig() Config {
	cfg := DefaultConfig()
	cfg.UpdateTrainDB = false
	cfg.UpdateTestDB = false
	cfg.InitialPrediction = false
	cfg.Expand = false
	cfg.PathSteps = 10
	cfg.PathMaxIter = 5000
	return cfg
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := quietConfig()
	cfg.Optimize = false
	cfg.Size = 0
	_, err := New(cfg)
	assert.ErrorIs(t, err, ErrConfig)

	cfg = quietConfig()
	cfg.Width = 0
	_, err = New(cfg)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestFromMatrixValidatesShapes(t *testing.T) {
	b, err := New(quietConfig())
	require.NoError(t, err)
	ctx := context.Background()

	in := testProblem(6, 3, 4, 1)
	in.TrainTarget = in.TrainTarget[:5]
	_, err = b.FromMatrix(ctx, in)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	in = testProblem(6, 3, 4, 1)
	in.Names = []string{"too", "few"}
	_, err = b.FromMatrix(ctx, in)
	assert.ErrorIs(t, err, ErrShapeMismatch)

	in = testProblem(6, 3, 4, 1)
	in.TrainIDs = []string{"a"}
	_, err = b.FromMatrix(ctx, in)
	assert.ErrorIs(t, err, ErrShapeMismatch)
}

func TestFixedSizeReturnsExactColumns(t *testing.T) {
	cfg := quietConfig()
	cfg.Optimize = false
	cfg.Size = 2
	b, err := New(cfg)
	require.NoError(t, err)

	in := testProblem(12, 5, 4, 2)
	res, err := b.FromMatrix(context.Background(), in)
	require.NoError(t, err)

	_, d := res.Train.Dims()
	assert.Equal(t, 2, d)
	assert.Len(t, res.Names, 2)
	_, td := res.Test.Dims()
	assert.Equal(t, 2, td)
	assert.Equal(t, 2, res.BestSize)

	// The informative feature survives a top-2 truncation.
	assert.Contains(t, res.Names, "f0")
}

func TestFixedSizeTooLargeIsFatal(t *testing.T) {
	cfg := quietConfig()
	cfg.Optimize = false
	cfg.Size = 4
	b, err := New(cfg)
	require.NoError(t, err)

	// Only 4 features and one is constant, so 3 remain after cleaning.
	in := testProblem(10, 4, 4, 3)
	for i := 0; i < 10; i++ {
		in.Train.Set(i, 3, 1.0)
	}
	for i := 0; i < 4; i++ {
		in.Test.Set(i, 3, 1.0)
	}

	_, err = b.FromMatrix(context.Background(), in)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestOptimizeSearchesSizes(t *testing.T) {
	cfg := quietConfig()
	b, err := New(cfg)
	require.NoError(t, err)

	in := testProblem(14, 6, 5, 4)
	res, err := b.FromMatrix(context.Background(), in)
	require.NoError(t, err)

	assert.GreaterOrEqual(t, res.BestSize, 1)
	assert.LessOrEqual(t, res.BestSize, 5)
	_, d := res.Train.Dims()
	assert.Equal(t, res.BestSize, d)
	assert.Len(t, res.Names, d)

	// PCA comparison ran whenever more than one size was tested.
	if res.BestSize > 1 || res.PCAComponents > 0 {
		assert.GreaterOrEqual(t, res.PCAComponents, 0)
	}
}

func TestOptimizePicksArgminSize(t *testing.T) {
	cfg := quietConfig()
	b, err := New(cfg)
	require.NoError(t, err)

	in := testProblem(14, 6, 5, 4)
	res, err := b.FromMatrix(context.Background(), in)
	require.NoError(t, err)

	// Every candidate size 1..min(n,d) was scored, and the selected
	// size achieves the smallest validation error of them all.
	require.Len(t, res.SizeErrors, 6)
	assert.Equal(t, res.BestError, res.SizeErrors[res.BestSize])
	for s := 1; s < len(res.SizeErrors); s++ {
		assert.False(t, math.IsInf(res.SizeErrors[s], 1), "size %d was not scored", s)
		assert.GreaterOrEqual(t, res.SizeErrors[s], res.BestError)
	}
}

func TestTestMatrixWithoutTargets(t *testing.T) {
	cfg := quietConfig()
	cfg.Optimize = false
	cfg.Size = 2
	b, err := New(cfg)
	require.NoError(t, err)

	// A test partition without targets is valid input: the held-out
	// diagnostics are skipped, the truncation still applies to it.
	in := testProblem(12, 5, 4, 42)
	in.TestTarget = nil
	res, err := b.FromMatrix(context.Background(), in)
	require.NoError(t, err)
	assert.Zero(t, res.LinearError)
	_, td := res.Test.Dims()
	assert.Equal(t, 2, td)

	// The size search scores on held-out error, so it cannot run
	// without targets.
	cfg = quietConfig()
	b, err = New(cfg)
	require.NoError(t, err)
	in = testProblem(12, 5, 4, 42)
	in.TestTarget = nil
	_, err = b.FromMatrix(context.Background(), in)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestAllFlatFeaturesYieldEmptyResult(t *testing.T) {
	cfg := quietConfig()
	b, err := New(cfg)
	require.NoError(t, err)

	in := testProblem(8, 3, 3, 11)
	for i := 0; i < 8; i++ {
		for j := 0; j < 3; j++ {
			in.Train.Set(i, j, 1.0)
		}
	}

	res, err := b.FromMatrix(context.Background(), in)
	require.NoError(t, err)
	assert.Empty(t, res.Names)
	assert.Nil(t, res.Train)
}

func TestScreeningEngagesWhenFeaturesOutnumberSamples(t *testing.T) {
	cfg := quietConfig()
	b, err := New(cfg)
	require.NoError(t, err)

	// 3 samples, 5 features: screening must cut to at most 3 before
	// ranking, so the final size can never exceed 3.
	in := testProblem(3, 3, 5, 5)
	res, err := b.FromMatrix(context.Background(), in)
	require.NoError(t, err)
	assert.LessOrEqual(t, res.BestSize, 3)
}

func TestNoScreeningWhenSamplesOutnumberFeatures(t *testing.T) {
	cfg := quietConfig()
	cfg.Optimize = false
	cfg.Size = 3
	b, err := New(cfg)
	require.NoError(t, err)

	// 10 samples, 5 features: no screening, all 5 reach ranking and a
	// fixed size-3 truncation succeeds.
	in := testProblem(10, 5, 5, 6)
	res, err := b.FromMatrix(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, res.Names, 3)
}

func TestExpandGrowsThenReduces(t *testing.T) {
	cfg := quietConfig()
	cfg.Expand = true
	cfg.Optimize = false
	cfg.Size = 2
	b, err := New(cfg)
	require.NoError(t, err)

	in := testProblem(12, 5, 3, 7)
	res, err := b.FromMatrix(context.Background(), in)
	require.NoError(t, err)
	assert.Len(t, res.Names, 2)
}

func TestDefaultFeatureNames(t *testing.T) {
	cfg := quietConfig()
	cfg.Optimize = false
	cfg.Size = 3
	b, err := New(cfg)
	require.NoError(t, err)

	in := testProblem(10, 4, 4, 8)
	res, err := b.FromMatrix(context.Background(), in)
	require.NoError(t, err)
	for _, name := range res.Names {
		assert.Regexp(t, `^f[0-3]$`, name)
	}
}

func TestPersistWritesDescriptorStore(t *testing.T) {
	dir := t.TempDir()
	cfg := quietConfig()
	cfg.UpdateTrainDB = true
	cfg.UpdateTestDB = true
	cfg.DBName = filepath.Join(dir, "fpv_store.sqlite")
	cfg.Optimize = false
	cfg.Size = 2
	b, err := New(cfg)
	require.NoError(t, err)

	in := testProblem(8, 3, 4, 9)
	in.TrainIDs = []string{"s0", "s1", "s2", "s3", "s4", "s5", "s6", "s7"}
	in.TestIDs = []string{"t0", "t1", "t2"}

	_, err = b.FromMatrix(context.Background(), in)
	require.NoError(t, err)

	store, err := storage.OpenPartition("train", cfg.DBName)
	require.NoError(t, err)
	defer store.Close()

	names, ids, m, targets, err := store.Read(context.Background(), "OriginalFeatureSpace")
	require.NoError(t, err)
	assert.Equal(t, []string{"f0", "f1", "f2", "f3"}, names)
	assert.Equal(t, in.TrainIDs, ids)
	assert.Len(t, targets, 8)
	assert.True(t, mat.Equal(in.Train, m))
}

func TestReduceHonorsCancellation(t *testing.T) {
	b, err := New(quietConfig())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = b.FromMatrix(ctx, testProblem(14, 6, 5, 10))
	assert.Error(t, err)
}

func TestParseScreeningMethod(t *testing.T) {
	m, err := ParseScreeningMethod("sis")
	require.NoError(t, err)
	assert.Equal(t, SIS, m)

	_, err = ParseScreeningMethod("psychic")
	assert.ErrorIs(t, err, ErrConfig)
}
