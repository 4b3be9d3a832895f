package fingerprint

import (
	"fmt"

	"gonum.org/v1/gonum/mat"

	"github.com/kush2803/CatLearn/core/atoms"
)

// FeatureSet is a feature matrix with row-aligned structure identifiers.
// Row i of Matrix describes the structure with IDs[i]; the two always
// move together.
type FeatureSet struct {
	Matrix *mat.Dense
	IDs    []string
}

// Assemble fingerprints every structure and stacks the vectors into a
// feature matrix. All structures must produce vectors of the same length,
// which holds when they share an atom-type set; a mismatch is a shape
// error, not a truncation.
func (g *Generator) Assemble(structures []*atoms.Structure) (*FeatureSet, error) {
	if len(structures) == 0 {
		return nil, fmt.Errorf("fingerprint: no structures to assemble")
	}

	first, err := g.Fingerprint(structures[0])
	if err != nil {
		return nil, fmt.Errorf("structure %s: %w", structures[0].ID, err)
	}
	d := len(first)

	m := mat.NewDense(len(structures), d, nil)
	m.SetRow(0, first)
	ids := make([]string, len(structures))
	ids[0] = structures[0].ID.String()

	for i, s := range structures[1:] {
		fp, err := g.Fingerprint(s)
		if err != nil {
			return nil, fmt.Errorf("structure %s: %w", s.ID, err)
		}
		if len(fp) != d {
			return nil, fmt.Errorf("fingerprint: structure %s produced %d features, want %d (differing atom-type sets?)", s.ID, len(fp), d)
		}
		m.SetRow(i+1, fp)
		ids[i+1] = s.ID.String()
	}

	return &FeatureSet{Matrix: m, IDs: ids}, nil
}
