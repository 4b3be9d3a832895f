package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kush2803/CatLearn/core/atoms"
)

// ptOxide is a small two-type cluster: a Pt pair bridged by an O atom.
// Pt-Pt distance 2.7 (< 2*1.36+0.2 = 2.92, bonded), Pt-O distances 1.9
// (< 1.36+0.66+0.2 = 2.22, bonded).
func ptOxide() *atoms.Structure {
	return atoms.NewStructure([]atoms.Atom{
		{Position: [3]float64{0, 0, 0}, Number: 78},
		{Position: [3]float64{2.7, 0, 0}, Number: 78},
		{Position: [3]float64{1.35, 1.337, 0}, Number: 8},
	})
}

func TestFingerprintLayoutAndLength(t *testing.T) {
	g := NewGenerator(0, nil)
	fp, err := g.Fingerprint(ptOxide())
	require.NoError(t, err)

	// Two types: 7*2 + 1 hetero = 15 scalars for the unweighted pass.
	assert.Len(t, fp, VectorLength(2, 0))

	names, err := g.FeatureNames([]int{8, 78})
	require.NoError(t, err)
	assert.Len(t, names, len(fp))
	assert.Equal(t, "O_coord_sum", names[0])
	assert.Equal(t, "O_Pt_bonds", names[4])
	assert.Equal(t, "Pt_Pt_bonds", names[11])
}

func TestFingerprintValues(t *testing.T) {
	g := NewGenerator(0, nil)
	fp, err := g.Fingerprint(ptOxide())
	require.NoError(t, err)

	// Type order is ascending atomic number: O first, then Pt.
	// O block: the O atom bonds both Pt atoms, so its coordination is 2.
	assert.InDelta(t, 2.0, fp[0], 1e-12)      // coord sum
	assert.InDelta(t, 4.0, fp[1], 1e-12)      // coord sum of squares
	assert.InDelta(t, 1.41421356, fp[2], 1e-6) // coord sum of roots
	assert.InDelta(t, 2.0, fp[3], 1e-12)      // bonds into O atoms
	assert.InDelta(t, 2.0, fp[4], 1e-12)      // O rows x non-O columns

	// Pt block starts after the O block (7 + 1 hetero entries).
	// Each Pt bonds the other Pt and the O: coordination 2 each.
	assert.InDelta(t, 4.0, fp[8], 1e-12) // coord sum
	assert.InDelta(t, 8.0, fp[9], 1e-12) // coord sum of squares
	// Bonds into Pt atoms: two Pt-Pt entries plus two O->Pt entries.
	assert.InDelta(t, 4.0, fp[11], 1e-12)
}

func TestFingerprintDeterministicAcrossAtomOrder(t *testing.T) {
	g := NewGenerator(0, nil)
	s1 := ptOxide()

	// Same cluster with the atom list permuted.
	s2 := atoms.NewStructure([]atoms.Atom{
		{Position: [3]float64{1.35, 1.337, 0}, Number: 8},
		{Position: [3]float64{2.7, 0, 0}, Number: 78},
		{Position: [3]float64{0, 0, 0}, Number: 78},
	})

	fp1, err := g.Fingerprint(s1)
	require.NoError(t, err)
	fp2, err := g.Fingerprint(s2)
	require.NoError(t, err)
	assert.InDeltaSlice(t, fp1, fp2, 1e-12)
}

func TestFingerprintWeightedPassExtendsVector(t *testing.T) {
	g := NewGenerator(0, []atoms.Property{atoms.Electronegativity, atoms.AtomicWeight})
	fp, err := g.Fingerprint(ptOxide())
	require.NoError(t, err)
	assert.Len(t, fp, VectorLength(2, 2))

	// The unweighted pass is the fixed-position prefix.
	plain := NewGenerator(0, nil)
	base, err := plain.Fingerprint(ptOxide())
	require.NoError(t, err)
	assert.InDeltaSlice(t, base, fp[:len(base)], 1e-12)

	names, err := g.FeatureNames([]int{8, 78})
	require.NoError(t, err)
	assert.Len(t, names, len(fp))
	assert.Equal(t, "electronegativity_O_coord_sum", names[15])
}

func TestFingerprintPropertyLookupFailurePropagates(t *testing.T) {
	g := NewGenerator(0, []atoms.Property{atoms.Electronegativity})
	// Xe carries no electronegativity value.
	s := atoms.NewStructure([]atoms.Atom{{Number: 54}})
	_, err := g.Fingerprint(s)
	assert.Error(t, err)
}

func TestAssembleStacksRowsWithIDs(t *testing.T) {
	g := NewGenerator(0, nil)
	structures := []*atoms.Structure{ptOxide(), ptOxide(), ptOxide()}

	fs, err := g.Assemble(structures)
	require.NoError(t, err)

	r, c := fs.Matrix.Dims()
	assert.Equal(t, 3, r)
	assert.Equal(t, VectorLength(2, 0), c)
	require.Len(t, fs.IDs, 3)
	for i, s := range structures {
		assert.Equal(t, s.ID.String(), fs.IDs[i])
	}
}

func TestAssembleRejectsMixedTypeSets(t *testing.T) {
	g := NewGenerator(0, nil)
	single := atoms.NewStructure([]atoms.Atom{{Number: 78}})
	_, err := g.Assemble([]*atoms.Structure{ptOxide(), single})
	assert.Error(t, err)
}
