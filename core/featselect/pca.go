package featselect

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// PCA projects train and test matrices onto the leading principal
// components of the training data. The projection basis is fitted on the
// training matrix only and applied as-is to the test matrix.
func PCA(train, test *mat.Dense, components int) (ptrain, ptest *mat.Dense, err error) {
	n, d := train.Dims()
	if components < 1 || components > d || components > n {
		return nil, nil, fmt.Errorf("featselect: %d components out of range for %dx%d matrix", components, n, d)
	}

	var pc stat.PC
	if ok := pc.PrincipalComponents(train, nil); !ok {
		return nil, nil, fmt.Errorf("featselect: principal component decomposition failed")
	}

	var vecs mat.Dense
	pc.VectorsTo(&vecs)
	basis := vecs.Slice(0, d, 0, components)

	ptrain = mat.NewDense(n, components, nil)
	ptrain.Mul(train, basis)

	if test != nil {
		tn, td := test.Dims()
		if td != d {
			return nil, nil, fmt.Errorf("featselect: test has %d columns, train has %d", td, d)
		}
		ptest = mat.NewDense(tn, components, nil)
		ptest.Mul(test, basis)
	}
	return ptrain, ptest, nil
}
