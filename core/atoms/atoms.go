// Package atoms holds the structure model consumed by the fingerprint
// generator: ordered atoms with positions and atomic numbers, plus the
// periodic-table lookups (covalent radii, elemental properties) the
// descriptors are built from.
package atoms

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Atom is a single atom within a structure.
type Atom struct {
	// Position in Cartesian coordinates, length units consistent with
	// the covalent radius table (angstroms).
	Position [3]float64

	// Number is the atomic number (1 = hydrogen).
	Number int
}

// Structure is an ordered, immutable collection of atoms. The identifier
// belongs to the structure, not to any atom, and is opaque to the pipeline.
type Structure struct {
	ID    uuid.UUID
	Atoms []Atom

	// Neighbors optionally carries a precomputed first-shell neighbor
	// list (atom index -> neighbor indices). When present the
	// connectivity builder uses it instead of recomputing distances.
	Neighbors map[int][]int
}

// NewStructure builds a structure with a fresh identifier.
func NewStructure(atomList []Atom) *Structure {
	return &Structure{ID: uuid.New(), Atoms: atomList}
}

// Len returns the atom count.
func (s *Structure) Len() int { return len(s.Atoms) }

// Numbers returns the ordered list of atomic numbers.
func (s *Structure) Numbers() []int {
	ns := make([]int, len(s.Atoms))
	for i, a := range s.Atoms {
		ns[i] = a.Number
	}
	return ns
}

// Symbols returns the ordered chemical symbols for the structure.
func (s *Structure) Symbols() ([]string, error) {
	sy := make([]string, len(s.Atoms))
	for i, a := range s.Atoms {
		sym, err := SymbolFor(a.Number)
		if err != nil {
			return nil, fmt.Errorf("atom %d: %w", i, err)
		}
		sy[i] = sym
	}
	return sy, nil
}

// Distance returns the Euclidean distance between atoms i and j.
func (s *Structure) Distance(i, j int) float64 {
	pi, pj := s.Atoms[i].Position, s.Atoms[j].Position
	dx := pi[0] - pj[0]
	dy := pi[1] - pj[1]
	dz := pi[2] - pj[2]
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}

// TypeSet returns the distinct atomic numbers present, in ascending order.
// Feature layout depends on this ordering being deterministic, so callers
// must never substitute map-iteration order here.
func (s *Structure) TypeSet() []int {
	seen := make(map[int]bool, 4)
	var types []int
	for _, a := range s.Atoms {
		if !seen[a.Number] {
			seen[a.Number] = true
			types = append(types, a.Number)
		}
	}
	// Insertion order is first-appearance order; sort to make the
	// layout independent of atom ordering within the structure.
	sort.Ints(types)
	return types
}
