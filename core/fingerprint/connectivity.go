// Package fingerprint converts atomic structures into fixed-layout numeric
// feature vectors. A structure's geometry and covalent radii define a
// first-shell neighbor list, the neighbor list defines a binary
// connectivity matrix, and the matrix (plain or property-weighted) is
// summarized into per-type descriptor blocks.
package fingerprint

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/viterin/vek"
	"gonum.org/v1/gonum/mat"

	"github.com/kush2803/CatLearn/core/atoms"
)

// DefaultDX is the buffer added to the covalent radius sum when deciding
// whether two atoms are first-shell neighbors, in angstroms.
const DefaultDX = 0.2

// bulkCoordination is the reference coordination number used to normalize
// generalized coordination values (fcc bulk).
const bulkCoordination = 12.0

// ErrShellUnsupported is returned when a neighbor shell beyond the first
// is requested. Higher shells are accepted by the signature for forward
// compatibility but are not implemented, and silently treating them as the
// first shell would corrupt descriptors.
var ErrShellUnsupported = errors.New("fingerprint: neighbor shells beyond the first are not implemented")

// NeighborList computes the first-shell neighbor list for a structure.
// Two atoms i, j are neighbors when their distance d satisfies
// 0 < d < r_i + r_j + dx, with r the covalent radii. If the structure
// carries a precomputed neighbor list it is returned as-is.
func NeighborList(s *atoms.Structure, dx float64, shell int) (map[int][]int, error) {
	if shell != 1 {
		return nil, fmt.Errorf("%w: got shell %d", ErrShellUnsupported, shell)
	}
	if s.Neighbors != nil {
		return s.Neighbors, nil
	}

	n := s.Len()
	radii := make([]float64, n)
	for i, a := range s.Atoms {
		r, err := atoms.CovalentRadius(a.Number)
		if err != nil {
			return nil, fmt.Errorf("atom %d: %w", i, err)
		}
		radii[i] = r
	}

	nl := make(map[int][]int, n)
	for i := 0; i < n; i++ {
		var conn []int
		for j := 0; j < n; j++ {
			if i == j {
				continue
			}
			d := s.Distance(i, j)
			dmax := radii[i] + radii[j] + dx
			if d > 0 && d < dmax {
				conn = append(conn, j)
			}
		}
		nl[i] = conn
	}
	return nl, nil
}

// ConnectivityMatrix builds the binary N×N adjacency matrix from a
// structure's neighbor list. The diagonal is always zero and, for the
// first shell, the matrix is symmetric.
func ConnectivityMatrix(s *atoms.Structure, dx float64) (*mat.Dense, error) {
	nl, err := NeighborList(s, dx, 1)
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
	return cm, nil
}

// RowSums returns the per-atom coordination vector, the sum of each row of
// the (possibly weighted) connectivity matrix.
func RowSums(cm *mat.Dense) []float64 {
	n, _ := cm.Dims()
	sums := make([]float64, n)
	for i := 0; i < n; i++ {
		sums[i] = vek.Sum(cm.RawRowView(i))
	}
	return sums
}

// GeneralizedCoordination returns the per-atom generalized coordination
// vector: each atom's row sum counted once per connected atom, normalized
// by the bulk reference coordination of 12.
func GeneralizedCoordination(cm *mat.Dense) []float64 {
	n, _ := cm.Dims()
	gcn := make([]float64, n)
	for i := 0; i < n; i++ {
		row := cm.RawRowView(i)
		rowSum := vek.Sum(row)
		var tot float64
		for _, v := range row {
			if v != 0 {
				tot += rowSum
			}
		}
		gcn[i] = tot / bulkCoordination
	}
	return gcn
}

// PropertyMatrix broadcasts a per-atom elemental property across all
// pairs: entry (i, j) holds the property value of atom j. A lookup
// failure for any element in the structure propagates unchanged.
func PropertyMatrix(s *atoms.Structure, p atoms.Property) (*mat.Dense, error) {
	sy, err := s.Symbols()
	if err != nil {
		return nil, err
	}

	// One lookup per distinct element.
	values := make(map[string]float64, 4)
	for _, sym := range sy {
		if _, ok := values[sym]; ok {
			continue
		}
		v, err := atoms.LookupProperty(sym, p)
		if err != nil {
			return nil, err
		}
		values[sym] = v
	}

	n := s.Len()
	row := make([]float64, n)
	for j, sym := range sy {
		row[j] = values[sym]
	}
	pm := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		copy(pm.RawRowView(i), row)
	}
	return pm, nil
}

// WeightConnectivity returns the elementwise product of a connectivity
// matrix and a property matrix.
func WeightConnectivity(cm, pm *mat.Dense) *mat.Dense {
	n, _ := cm.Dims()
	w := mat.NewDense(n, n, nil)
	for i := 0; i < n; i++ {
		vek.Mul_Into(w.RawRowView(i), cm.RawRowView(i), pm.RawRowView(i))
	}
	return w
}

// neighborCache memoizes neighbor lists across repeated fingerprint calls
// on the same structures (train and test passes revisit structures).
type neighborCache struct {
	cache *lru.Cache[uuid.UUID, map[int][]int]
}

func newNeighborCache(size int) *neighborCache {
	c, err := lru.New[uuid.UUID, map[int][]int](size)
	if err != nil {
		// Only reachable with a non-positive size.
		panic(err)
	}
	return &neighborCache{cache: c}
}

func (nc *neighborCache) get(s *atoms.Structure, dx float64) (map[int][]int, error) {
	if nl, ok := nc.cache.Get(s.ID); ok {
		return nl, nil
	}
	nl, err := NeighborList(s, dx, 1)
	if err != nil {
		return nil, err
	}
	nc.cache.Add(s.ID, nl)
	return nl, nil
}
