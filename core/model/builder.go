package model

import (
	"context"
	"fmt"
	"log/slog"

	"gonum.org/v1/gonum/mat"

	"github.com/kush2803/CatLearn/core/atoms"
	"github.com/kush2803/CatLearn/core/featselect"
	"github.com/kush2803/CatLearn/core/fingerprint"
	"github.com/kush2803/CatLearn/core/regress"
	"github.com/kush2803/CatLearn/core/storage"
)

// FingerprintFunc turns a structure list into a feature set. Usually
// (*fingerprint.Generator).Assemble.
type FingerprintFunc func([]*atoms.Structure) (*fingerprint.FeatureSet, error)

// Result is the outcome of a model-building call: the reduced matrices
// with their aligned feature names, plus the diagnostics gathered along
// the way.
type Result struct {
	Names []string
	Train *mat.Dense
	Test  *mat.Dense

	// BestSize is the selected subset size; BestError its validation
	// RMSE when a size search ran.
	BestSize  int
	BestError float64

	// SizeErrors holds the validation RMSE of every candidate subset
	// size visited by the search, indexed by size. Entry 0 is unused.
	SizeErrors []float64

	// LinearError is the held-out RMSE of the ridge ranking model.
	LinearError float64

	// LassoMinError and LassoMinFeatures summarize the path sweep.
	LassoMinError    float64
	LassoMinFeatures int

	// PCAError and PCAComponents track the best projection found by
	// the parallel PCA comparison. Informational only.
	PCAError      float64
	PCAComponents int
}

// Builder owns one pipeline configuration plus the kernel
// hyperparameters carried between stages.
type Builder struct {
	cfg   Config
	log   *slog.Logger
	width []float64
	noise float64
}

// New creates a Builder. The configuration is validated once here so
// misconfiguration fails before any fitting.
func New(cfg Config) (*Builder, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &Builder{
		cfg:   cfg,
		log:   slog.Default().With("component", "model"),
		width: []float64{cfg.Width},
		noise: cfg.Regularization,
	}, nil
}

// FromStructures fingerprints the structures and builds a model from
// the resulting matrices. Test structures are optional.
func (b *Builder) FromStructures(ctx context.Context, trainStructures []*atoms.Structure, fpv FingerprintFunc, trainTarget []float64, testStructures []*atoms.Structure, testTarget []float64, names []string) (*Result, error) {
	trainSet, err := fpv(trainStructures)
	if err != nil {
		return nil, fmt.Errorf("model: fingerprint training structures: %w", err)
	}

	var testSet *fingerprint.FeatureSet
	if testStructures != nil {
		testSet, err = fpv(testStructures)
		if err != nil {
			return nil, fmt.Errorf("model: fingerprint test structures: %w", err)
		}
	}

	in := Input{
		Train:       trainSet.Matrix,
		TrainIDs:    trainSet.IDs,
		TrainTarget: trainTarget,
		Names:       names,
	}
	if testSet != nil {
		in.Test = testSet.Matrix
		in.TestIDs = testSet.IDs
		in.TestTarget = testTarget
	}
	return b.FromMatrix(ctx, in)
}

// Input is a precomputed feature matrix with its companions.
type Input struct {
	Train       *mat.Dense
	TrainIDs    []string
	TrainTarget []float64

	Test       *mat.Dense
	TestIDs    []string
	TestTarget []float64

	// Names labels the feature columns. Empty generates f0..fN-1.
	Names []string
}

// FromMatrix runs the full pipeline on a precomputed matrix: validate,
// persist, optionally expand, then clean/standardize/reduce. Expansion
// deliberately runs on the raw matrix, before cleaning and
// standardization, so composite features (ratios, log products) are
// built from physical values rather than zero-centered ones; cleaning
// then removes any flat columns the expansion produced.
func (b *Builder) FromMatrix(ctx context.Context, in Input) (*Result, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}

	names := in.Names
	_, d := in.Train.Dims()
	if names == nil {
		names = make([]string, d)
		for j := range names {
			names[j] = fmt.Sprintf("f%d", j)
		}
	}

	b.persist(ctx, "OriginalFeatureSpace", names, in)

	train, test := in.Train, in.Test
	if b.cfg.Expand {
		exp := featselect.DefaultExpander()
		train = exp.Expand(train)
		if test != nil {
			test = exp.Expand(test)
		}
		names = exp.Labels(names)
		b.log.Info("expanded feature space", "from", d, "to", len(names))

		expanded := in
		expanded.Train, expanded.Test, expanded.Names = train, test, names
		b.persist(ctx, "ExpandedFeatureSpace", names, expanded)
	}

	return b.build(ctx, selectionState{
		train:       train,
		test:        test,
		names:       names,
		trainTarget: in.TrainTarget,
		testTarget:  in.TestTarget,
	})
}

// validate applies the explicit shape checks the pipeline promises:
// identifiers, targets and matrices must agree on row counts before any
// stage runs.
func (in Input) validate() error {
	if in.Train == nil {
		return fmt.Errorf("%w: nil training matrix", ErrShapeMismatch)
	}
	n, d := in.Train.Dims()
	if len(in.TrainTarget) != n {
		return fmt.Errorf("%w: %d training rows but %d targets", ErrShapeMismatch, n, len(in.TrainTarget))
	}
	if in.TrainIDs != nil && len(in.TrainIDs) != n {
		return fmt.Errorf("%w: %d training rows but %d identifiers", ErrShapeMismatch, n, len(in.TrainIDs))
	}
	if in.Names != nil && len(in.Names) != d {
		return fmt.Errorf("%w: %d columns but %d names", ErrShapeMismatch, d, len(in.Names))
	}
	if in.Test != nil {
		tn, td := in.Test.Dims()
		if td != d {
			return fmt.Errorf("%w: test has %d columns, train has %d", ErrShapeMismatch, td, d)
		}
		if in.TestTarget != nil && len(in.TestTarget) != tn {
			return fmt.Errorf("%w: %d test rows but %d targets", ErrShapeMismatch, tn, len(in.TestTarget))
		}
		if in.TestIDs != nil && len(in.TestIDs) != tn {
			return fmt.Errorf("%w: %d test rows but %d identifiers", ErrShapeMismatch, tn, len(in.TestIDs))
		}
	}
	return nil
}

// persist writes both partitions to the descriptor store. The store is
// a record, not pipeline state: failures are logged and swallowed.
func (b *Builder) persist(ctx context.Context, table string, names []string, in Input) {
	write := func(partition string, ids []string, m *mat.Dense, targets []float64) {
		if m == nil {
			return
		}
		store, err := storage.OpenPartition(partition, b.cfg.DBName)
		if err != nil {
			b.log.Warn("descriptor store unavailable", "partition", partition, "error", err)
			return
		}
		defer store.Close()
		if err := store.Write(ctx, table, names, ids, m, targets); err != nil {
			b.log.Warn("descriptor store write failed", "partition", partition, "table", table, "error", err)
		}
	}

	if b.cfg.UpdateTrainDB {
		write("train", in.TrainIDs, in.Train, in.TrainTarget)
	}
	if b.cfg.UpdateTestDB && in.Test != nil {
		write("test", in.TestIDs, in.Test, in.TestTarget)
	}
}

// selectionState is the immutable value threaded through the pipeline
// stages. Stages return a fresh state; matrices and names always move
// together so a column drop can never leave them misaligned.
type selectionState struct {
	train       *mat.Dense
	test        *mat.Dense
	names       []string
	trainTarget []float64
	testTarget  []float64
}

// build cleans, standardizes, optionally reports a baseline, and
// reduces.
func (b *Builder) build(ctx context.Context, st selectionState) (*Result, error) {
	if b.cfg.CleanFeatures {
		ctrain, ctest, dropped := featselect.CleanZeroVariance(st.train, st.test)
		if len(dropped) > 0 {
			b.log.Info("dropped zero-variance features", "count", len(dropped))
		}
		if ctrain == nil {
			// Every feature was flat; nothing left to select from.
			b.log.Warn("all features dropped as zero variance")
			return &Result{Names: []string{}}, nil
		}
		st = selectionState{
			train:       ctrain,
			test:        ctest,
			names:       featselect.DropNames(st.names, dropped),
			trainTarget: st.trainTarget,
			testTarget:  st.testTarget,
		}
	}

	_, d := st.train.Dims()
	if !b.cfg.Optimize && d <= b.cfg.Size {
		return nil, fmt.Errorf("%w: %d features remain after cleaning, cannot reduce to fixed size %d", ErrConfig, d, b.cfg.Size)
	}

	strain, stest, err := featselect.Standardize(st.train, st.test)
	if err != nil {
		return nil, fmt.Errorf("model: standardize: %w", err)
	}
	st.train, st.test = strain, stest

	if b.cfg.InitialPrediction && st.test != nil && st.testTarget != nil {
		gp := regress.GaussianProcess{Widths: b.width, Noise: b.noise}
		p, err := gp.Predict(st.train, st.test, st.trainTarget, st.testTarget)
		if err != nil {
			b.log.Warn("baseline prediction failed", "error", err)
		} else {
			b.log.Info("baseline model", "validation_rmse", p.ValidationRMSE, "features", d)
		}
	}

	return b.reduce(ctx, st)
}
