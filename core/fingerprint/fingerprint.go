package fingerprint

import (
	"fmt"

	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"

	"github.com/kush2803/CatLearn/core/atoms"
)

// Generator produces fixed-layout fingerprint vectors for structures.
// The layout is fully determined by the structure's distinct atom types
// (iterated in ascending atomic number) and the configured weighting
// properties: one unweighted descriptor pass, then one pass per property
// using a property-weighted connectivity matrix.
type Generator struct {
	// DX is the neighbor-shell buffer distance. Zero means DefaultDX.
	DX float64

	// Properties selects the elemental properties used for the weighted
	// passes, in order. Empty means unweighted only.
	Properties []atoms.Property

	nc *neighborCache
}

// NewGenerator returns a Generator with neighbor-list memoization.
func NewGenerator(dx float64, properties []atoms.Property) *Generator {
	if dx == 0 {
		dx = DefaultDX
	}
	return &Generator{
		DX:         dx,
		Properties: properties,
		nc:         newNeighborCache(512),
	}
}

// Fingerprint computes the full feature vector for one structure.
func (g *Generator) Fingerprint(s *atoms.Structure) ([]float64, error) {
	nl, err := g.nc.get(s, g.DX)
	if err != nil {
		return nil, err
	}

	n := s.Len()
	cm := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		for _, j := range nl[i] {
			cm.Set(i, j, 1)
		}
	}

	an := s.Numbers()
	types := s.TypeSet()

	fp := describe(an, types, cm)

	for _, p := range g.Properties {
		pm, err := PropertyMatrix(s, p)
		if err != nil {
			return nil, fmt.Errorf("weighted pass %s: %w", p, err)
		}
		wcm := WeightConnectivity(cm, pm)
		fp = append(fp, describe(an, types, wcm)...)
	}
	return fp, nil
}

// describe runs one descriptor pass over a (possibly weighted)
// connectivity matrix, producing the per-type blocks in type order.
func describe(an, types []int, cm *mat.Dense) []float64 {
	sums := RowSums(cm)
	gcn := GeneralizedCoordination(cm)

	fp := make([]float64, 0, VectorLength(len(types), 0))
	for ti, e := range types {
		el := typeMask(an, e)

		// Level one: coordination statistics for atoms of this type.
		masked := vek.Mul(sums, el)
		fp = append(fp, vek.Sum(masked), sumSquares(masked), sumRoots(masked))

		// Level two: total bonds into atoms of this type.
		var bonds float64
		for i := 0; i < len(an); i++ {
			bonds += vek.Dot(cm.RawRowView(i), el)
		}
		fp = append(fp, bonds)

		// Heteroatomic bond counts, one per unordered type pair. The
		// construction is asymmetric: rows of the first type against
		// columns of any other type, matching the reference data.
		for range types[ti+1:] {
			var het float64
			for i, ai := range an {
				if ai != e {
					continue
				}
				row := cm.RawRowView(i)
				for j, aj := range an {
					if aj != e {
						het += row[j]
					}
				}
			}
			fp = append(fp, het)
		}

		// Level three: generalized coordination statistics.
		masked = vek.Mul(gcn, el)
		fp = append(fp, vek.Sum(masked), sumSquares(masked), sumRoots(masked))
	}
	return fp
}

// typeMask returns the indicator vector for one atomic number.
func typeMask(an []int, e int) []float64 {
	m := make([]float64, len(an))
	for i, a := range an {
		if a == e {
			m[i] = 1
		}
	}
	return m
}

func sumSquares(x []float64) float64 {
	return vek.Dot(x, x)
}

func sumRoots(x []float64) float64 {
	return vek.Sum(vek.Sqrt(x))
}

// VectorLength returns the fingerprint length for a structure with
// typeCount distinct atom types and propertyCount weighting properties.
// Each pass emits, per type, seven scalars plus one heteroatomic count
// for every later type.
func VectorLength(typeCount, propertyCount int) int {
	perPass := 7*typeCount + typeCount*(typeCount-1)/2
	return (1 + propertyCount) * perPass
}

// FeatureNames returns the column labels matching Fingerprint's layout
// for structures drawn from the given type set.
func (g *Generator) FeatureNames(types []int) ([]string, error) {
	base, err := passNames(types, "")
	if err != nil {
		return nil, err
	}
	names := base
	for _, p := range g.Properties {
		weighted, err := passNames(types, p.String()+"_")
		if err != nil {
			return nil, err
		}
		names = append(names, weighted...)
	}
	return names, nil
}

func passNames(types []int, prefix string) ([]string, error) {
	syms := make([]string, len(types))
	for i, n := range types {
		s, err := atoms.SymbolFor(n)
		if err != nil {
			return nil, err
		}
		syms[i] = s
	}

	var names []string
	for i, s := range syms {
		names = append(names,
			prefix+s+"_coord_sum",
			prefix+s+"_coord_sumsq",
			prefix+s+"_coord_sumroot",
			prefix+s+"_"+s+"_bonds",
		)
		for _, o := range syms[i+1:] {
			names = append(names, prefix+s+"_"+o+"_bonds")
		}
		names = append(names,
			prefix+s+"_gcn_sum",
			prefix+s+"_gcn_sumsq",
			prefix+s+"_gcn_sumroot",
		)
	}
	return names, nil
}
