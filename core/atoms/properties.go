package atoms

import "fmt"

// Property is the closed set of elemental properties available for
// weighting fingerprints. Dynamic property-name strings are deliberately
// not supported; unknown keys must fail at parse time.
type Property int

const (
	// AtomicWeight is the standard atomic weight in unified mass units.
	AtomicWeight Property = iota
	// Electronegativity is the Pauling electronegativity.
	Electronegativity
	// AtomicRadius is the empirical atomic radius in angstroms.
	AtomicRadius
	// ElectronAffinity is the electron affinity in eV.
	ElectronAffinity
	// DipolePolarizability is the static dipole polarizability in
	// atomic units.
	DipolePolarizability
)

// String returns the property key used in configuration and feature names.
func (p Property) String() string {
	switch p {
	case AtomicWeight:
		return "atomic_weight"
	case Electronegativity:
		return "electronegativity"
	case AtomicRadius:
		return "atomic_radius"
	case ElectronAffinity:
		return "electron_affinity"
	case DipolePolarizability:
		return "dipole_polarizability"
	}
	return fmt.Sprintf("property(%d)", int(p))
}

// ParseProperty maps a configuration key to a Property. Unsupported keys
// are an error, not a fallback.
func ParseProperty(key string) (Property, error) {
	switch key {
	case "atomic_weight":
		return AtomicWeight, nil
	case "electronegativity":
		return Electronegativity, nil
	case "atomic_radius":
		return AtomicRadius, nil
	case "electron_affinity":
		return ElectronAffinity, nil
	case "dipole_polarizability":
		return DipolePolarizability, nil
	}
	return 0, &LookupError{Symbol: "", Property: key}
}

// LookupError reports a failed periodic-table lookup. Property weighting
// must never silently default a missing value, so these propagate out of
// fingerprint generation.
type LookupError struct {
	Symbol   string
	Property string
}

func (e *LookupError) Error() string {
	if e.Symbol == "" {
		return fmt.Sprintf("periodic table: unsupported property %q", e.Property)
	}
	return fmt.Sprintf("periodic table: no %s value for element %q", e.Property, e.Symbol)
}

// Per-element property tables. Coverage tracks the elements that show up
// in surface-science datasets; a missing entry is a LookupError, and the
// fix is to extend the table, not to default.

var atomicWeights = map[string]float64{
	"H": 1.008, "He": 4.0026,
	"Li": 6.94, "Be": 9.0122, "B": 10.81, "C": 12.011, "N": 14.007,
	"O": 15.999, "F": 18.998, "Ne": 20.180,
	"Na": 22.990, "Mg": 24.305, "Al": 26.982, "Si": 28.085, "P": 30.974,
	"S": 32.06, "Cl": 35.45, "Ar": 39.948,
	"K": 39.098, "Ca": 40.078, "Sc": 44.956, "Ti": 47.867, "V": 50.942,
	"Cr": 51.996, "Mn": 54.938, "Fe": 55.845, "Co": 58.933, "Ni": 58.693,
	"Cu": 63.546, "Zn": 65.38, "Ga": 69.723, "Ge": 72.630, "As": 74.922,
	"Se": 78.971, "Br": 79.904, "Kr": 83.798,
	"Rb": 85.468, "Sr": 87.62, "Y": 88.906, "Zr": 91.224, "Nb": 92.906,
	"Mo": 95.95, "Ru": 101.07, "Rh": 102.91, "Pd": 106.42, "Ag": 107.87,
	"Cd": 112.41, "In": 114.82, "Sn": 118.71, "Sb": 121.76, "Te": 127.60,
	"I": 126.90, "Xe": 131.29,
	"Cs": 132.91, "Ba": 137.33, "La": 138.91, "Hf": 178.49, "Ta": 180.95,
	"W": 183.84, "Re": 186.21, "Os": 190.23, "Ir": 192.22, "Pt": 195.08,
	"Au": 196.97, "Hg": 200.59, "Tl": 204.38, "Pb": 207.2, "Bi": 208.98,
}

var electronegativities = map[string]float64{
	"H": 2.20,
	"Li": 0.98, "Be": 1.57, "B": 2.04, "C": 2.55, "N": 3.04, "O": 3.44,
	"F": 3.98,
	"Na": 0.93, "Mg": 1.31, "Al": 1.61, "Si": 1.90, "P": 2.19, "S": 2.58,
	"Cl": 3.16,
	"K": 0.82, "Ca": 1.00, "Sc": 1.36, "Ti": 1.54, "V": 1.63, "Cr": 1.66,
	"Mn": 1.55, "Fe": 1.83, "Co": 1.88, "Ni": 1.91, "Cu": 1.90, "Zn": 1.65,
	"Ga": 1.81, "Ge": 2.01, "As": 2.18, "Se": 2.55, "Br": 2.96,
	"Rb": 0.82, "Sr": 0.95, "Y": 1.22, "Zr": 1.33, "Nb": 1.60, "Mo": 2.16,
	"Ru": 2.20, "Rh": 2.28, "Pd": 2.20, "Ag": 1.93, "Cd": 1.69,
	"In": 1.78, "Sn": 1.96, "Sb": 2.05, "Te": 2.10, "I": 2.66,
	"Cs": 0.79, "Ba": 0.89, "La": 1.10, "Hf": 1.30, "Ta": 1.50, "W": 2.36,
	"Re": 1.90, "Os": 2.20, "Ir": 2.20, "Pt": 2.28, "Au": 2.54, "Hg": 2.00,
	"Tl": 1.62, "Pb": 2.33, "Bi": 2.02,
}

var atomicRadiiA = map[string]float64{
	"H": 0.25, "Li": 1.45, "Be": 1.05, "B": 0.85, "C": 0.70, "N": 0.65,
	"O": 0.60, "F": 0.50,
	"Na": 1.80, "Mg": 1.50, "Al": 1.25, "Si": 1.10, "P": 1.00, "S": 1.00,
	"Cl": 1.00,
	"K": 2.20, "Ca": 1.80, "Sc": 1.60, "Ti": 1.40, "V": 1.35, "Cr": 1.40,
	"Mn": 1.40, "Fe": 1.40, "Co": 1.35, "Ni": 1.35, "Cu": 1.35, "Zn": 1.35,
	"Ga": 1.30, "Ge": 1.25, "As": 1.15, "Se": 1.15, "Br": 1.15,
	"Rb": 2.35, "Sr": 2.00, "Y": 1.80, "Zr": 1.55, "Nb": 1.45, "Mo": 1.45,
	"Ru": 1.30, "Rh": 1.35, "Pd": 1.40, "Ag": 1.60, "Cd": 1.55,
	"In": 1.55, "Sn": 1.45, "Sb": 1.45, "Te": 1.40, "I": 1.40,
	"Cs": 2.60, "Ba": 2.15, "La": 1.95, "Hf": 1.55, "Ta": 1.45, "W": 1.35,
	"Re": 1.35, "Os": 1.30, "Ir": 1.35, "Pt": 1.35, "Au": 1.35, "Hg": 1.50,
	"Tl": 1.90, "Pb": 1.80, "Bi": 1.60,
}

var electronAffinities = map[string]float64{
	"H": 0.754,
	"Li": 0.618, "B": 0.280, "C": 1.262, "O": 1.461, "F": 3.401,
	"Na": 0.548, "Al": 0.433, "Si": 1.390, "P": 0.746, "S": 2.077,
	"Cl": 3.613,
	"K": 0.501, "Ca": 0.025, "Sc": 0.188, "Ti": 0.079, "V": 0.525,
	"Cr": 0.666, "Fe": 0.151, "Co": 0.662, "Ni": 1.156, "Cu": 1.235,
	"Ga": 0.430, "Ge": 1.233, "As": 0.814, "Se": 2.021, "Br": 3.364,
	"Rb": 0.486, "Sr": 0.048, "Y": 0.307, "Zr": 0.426, "Nb": 0.893,
	"Mo": 0.748, "Ru": 1.050, "Rh": 1.137, "Pd": 0.562, "Ag": 1.302,
	"In": 0.404, "Sn": 1.112, "Sb": 1.046, "Te": 1.971, "I": 3.059,
	"Cs": 0.472, "Ba": 0.145, "La": 0.470, "Hf": 0.017, "Ta": 0.322,
	"W": 0.815, "Re": 0.150, "Os": 1.100, "Ir": 1.565, "Pt": 2.128,
	"Au": 2.309, "Tl": 0.377, "Pb": 0.356, "Bi": 0.942,
}

var dipolePolarizabilities = map[string]float64{
	"H": 4.51, "He": 1.38,
	"Li": 164.1, "Be": 37.7, "B": 20.5, "C": 11.3, "N": 7.4, "O": 5.3,
	"F": 3.74, "Ne": 2.66,
	"Na": 162.7, "Mg": 71.2, "Al": 57.8, "Si": 37.3, "P": 25.0, "S": 19.4,
	"Cl": 14.6, "Ar": 11.1,
	"K": 289.7, "Ca": 160.8, "Sc": 97.0, "Ti": 100.0, "V": 87.0,
	"Cr": 83.0, "Mn": 68.0, "Fe": 62.0, "Co": 55.0, "Ni": 49.0,
	"Cu": 46.5, "Zn": 38.7, "Ga": 50.0, "Ge": 40.0, "As": 30.0,
	"Se": 28.9, "Br": 21.0, "Kr": 16.8,
	"Rb": 320.0, "Sr": 197.2, "Y": 162.0, "Zr": 112.0, "Nb": 98.0,
	"Mo": 87.0, "Ru": 72.0, "Rh": 66.0, "Pd": 26.1, "Ag": 55.0,
	"Cd": 46.0, "In": 65.0, "Sn": 53.0, "Sb": 43.0, "Te": 38.0, "I": 32.9,
	"Xe": 27.3,
	"Cs": 401.0, "Ba": 272.0, "La": 215.0, "Hf": 103.0, "Ta": 74.0,
	"W": 68.0, "Re": 62.0, "Os": 57.0, "Ir": 54.0, "Pt": 48.0,
	"Au": 36.0, "Hg": 33.9, "Tl": 50.0, "Pb": 47.0, "Bi": 48.0,
}

var propertyTables = map[Property]map[string]float64{
	AtomicWeight:         atomicWeights,
	Electronegativity:    electronegativities,
	AtomicRadius:         atomicRadiiA,
	ElectronAffinity:     electronAffinities,
	DipolePolarizability: dipolePolarizabilities,
}

// LookupProperty returns the scalar value of a property for a chemical
// symbol. Both unknown symbols and uncovered elements yield a LookupError.
func LookupProperty(symbol string, p Property) (float64, error) {
	table, ok := propertyTables[p]
	if !ok {
		return 0, &LookupError{Symbol: symbol, Property: p.String()}
	}
	v, ok := table[symbol]
	if !ok {
		return 0, &LookupError{Symbol: symbol, Property: p.String()}
	}
	return v, nil
}
