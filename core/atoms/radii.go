package atoms

import "fmt"

// covalentRadii holds single-bond covalent radii in angstroms, indexed by
// atomic number (Cordero et al., Dalton Trans. 2008). Index 0 is a
// placeholder so the table lines up with atomic numbers.
var covalentRadii = []float64{
	0,
	0.31, 0.28, // H, He
	1.28, 0.96, 0.84, 0.76, 0.71, 0.66, 0.57, 0.58, // Li-Ne
	1.66, 1.41, 1.21, 1.11, 1.07, 1.05, 1.02, 1.06, // Na-Ar
	2.03, 1.76, // K, Ca
	1.70, 1.60, 1.53, 1.39, 1.39, 1.32, 1.26, 1.24, 1.32, 1.22, // Sc-Zn
	1.22, 1.20, 1.19, 1.20, 1.20, 1.16, // Ga-Kr
	2.20, 1.95, // Rb, Sr
	1.90, 1.75, 1.64, 1.54, 1.47, 1.46, 1.42, 1.39, 1.45, 1.44, // Y-Cd
	1.42, 1.39, 1.39, 1.38, 1.39, 1.40, // In-Xe
	2.44, 2.15, // Cs, Ba
	2.07, 2.04, 2.03, 2.01, 1.99, 1.98, 1.98, 1.96, 1.94, 1.92, // La-Dy
	1.92, 1.89, 1.90, 1.87, 1.87, // Ho-Lu
	1.75, 1.70, 1.62, 1.51, 1.44, 1.41, 1.36, 1.36, 1.32, // Hf-Hg
	1.45, 1.46, 1.48, 1.40, 1.50, 1.50, // Tl-Rn
	2.60, 2.21, // Fr, Ra
	2.15, 2.06, 2.00, 1.96, 1.90, 1.87, 1.80, 1.69, // Ac-Cm
}

// CovalentRadius returns the covalent radius in angstroms for an atomic
// number, or an error when the table has no entry.
func CovalentRadius(number int) (float64, error) {
	if number <= 0 || number >= len(covalentRadii) {
		return 0, fmt.Errorf("covalent radius: no entry for atomic number %d", number)
	}
	return covalentRadii[number], nil
}

var symbols = []string{
	"X",
	"H", "He",
	"Li", "Be", "B", "C", "N", "O", "F", "Ne",
	"Na", "Mg", "Al", "Si", "P", "S", "Cl", "Ar",
	"K", "Ca",
	"Sc", "Ti", "V", "Cr", "Mn", "Fe", "Co", "Ni", "Cu", "Zn",
	"Ga", "Ge", "As", "Se", "Br", "Kr",
	"Rb", "Sr",
	"Y", "Zr", "Nb", "Mo", "Tc", "Ru", "Rh", "Pd", "Ag", "Cd",
	"In", "Sn", "Sb", "Te", "I", "Xe",
	"Cs", "Ba",
	"La", "Ce", "Pr", "Nd", "Pm", "Sm", "Eu", "Gd", "Tb", "Dy",
	"Ho", "Er", "Tm", "Yb", "Lu",
	"Hf", "Ta", "W", "Re", "Os", "Ir", "Pt", "Au", "Hg",
	"Tl", "Pb", "Bi", "Po", "At", "Rn",
	"Fr", "Ra",
	"Ac", "Th", "Pa", "U", "Np", "Pu", "Am", "Cm",
}

var numberBySymbol = func() map[string]int {
	m := make(map[string]int, len(symbols))
	for n, s := range symbols[1:] {
		m[s] = n + 1
	}
	return m
}()

// SymbolFor returns the chemical symbol for an atomic number.
func SymbolFor(number int) (string, error) {
	if number <= 0 || number >= len(symbols) {
		return "", fmt.Errorf("symbol: no entry for atomic number %d", number)
	}
	return symbols[number], nil
}

// NumberFor returns the atomic number for a chemical symbol.
func NumberFor(symbol string) (int, error) {
	n, ok := numberBySymbol[symbol]
	if !ok {
		return 0, fmt.Errorf("symbol: unknown chemical symbol %q", symbol)
	}
	return n, nil
}
