package featselect

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

// Expander grows a feature matrix combinatorially: pairwise products,
// pairwise ratios, exponentiated pair products and log pair products are
// appended after the original columns. The originals stay in place as a
// fixed prefix, so truncating an expanded matrix back to its first d
// columns recovers the input exactly. The transform is elementwise per
// row and carries no fitted state, so applying it to train and test
// independently cannot leak test statistics.
type Expander struct {
	// ExponentA and ExponentB are the powers applied to the first and
	// second member of each pair in the exponentiated variants.
	ExponentA float64
	ExponentB float64
}

// DefaultExpander matches the reference exponent range a=2, b=4.
func DefaultExpander() Expander {
	return Expander{ExponentA: 2, ExponentB: 4}
}

// Expand returns a new matrix holding the original columns followed by
// the derived ones. Ratios against a zero denominator and logs of zero
// are emitted as zero rather than infinities, so downstream cleaning
// sees a flat (droppable) column instead of a poisoned matrix.
func (e Expander) Expand(m *mat.Dense) *mat.Dense {
	n, d := m.Dims()
	out := mat.NewDense(n, e.ExpandedWidth(d), nil)

	for i := 0; i < n; i++ {
		row := m.RawRowView(i)
		dst := out.RawRowView(i)
		copy(dst, row)
		k := d

		// Pairwise products x_a * x_b, a < b.
		for a := 0; a < d; a++ {
			for b := a + 1; b < d; b++ {
				dst[k] = row[a] * row[b]
				k++
			}
		}
		// Pairwise ratios x_a / x_b, ordered pairs.
		for a := 0; a < d; a++ {
			for b := 0; b < d; b++ {
				if a == b {
					continue
				}
				dst[k] = safeDiv(row[a], row[b])
				k++
			}
		}
		// Exponentiated products x_a^A * x_b^B, a != b.
		for a := 0; a < d; a++ {
			for b := 0; b < d; b++ {
				if a == b {
					continue
				}
				dst[k] = math.Pow(row[a], e.ExponentA) * math.Pow(row[b], e.ExponentB)
				k++
			}
		}
		// Log products ln|x_a|^A-style terms: A*ln|x_a| * B*ln|x_b|.
		for a := 0; a < d; a++ {
			for b := a + 1; b < d; b++ {
				dst[k] = e.ExponentA * safeLog(row[a]) * e.ExponentB * safeLog(row[b])
				k++
			}
		}
	}
	return out
}

// ExpandedWidth returns the column count Expand produces for d inputs.
func (e Expander) ExpandedWidth(d int) int {
	pairs := d * (d - 1) / 2
	ordered := d * (d - 1)
	return d + pairs + ordered + ordered + pairs
}

// Labels extends a name list to match Expand's column layout.
func (e Expander) Labels(names []string) []string {
	d := len(names)
	out := make([]string, 0, e.ExpandedWidth(d))
	out = append(out, names...)

	for a := 0; a < d; a++ {
		for b := a + 1; b < d; b++ {
			out = append(out, names[a]+"*"+names[b])
		}
	}
	for a := 0; a < d; a++ {
		for b := 0; b < d; b++ {
			if a != b {
				out = append(out, names[a]+"/"+names[b])
			}
		}
	}
	ea := trimFloat(e.ExponentA)
	eb := trimFloat(e.ExponentB)
	for a := 0; a < d; a++ {
		for b := 0; b < d; b++ {
			if a != b {
				out = append(out, names[a]+"^"+ea+"*"+names[b]+"^"+eb)
			}
		}
	}
	for a := 0; a < d; a++ {
		for b := a + 1; b < d; b++ {
			out = append(out, ea+"ln|"+names[a]+"|*"+eb+"ln|"+names[b]+"|")
		}
	}
	return out
}

func safeDiv(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

func safeLog(v float64) float64 {
	v = math.Abs(v)
	if v == 0 {
		return 0
	}
	return math.Log(v)
}

func trimFloat(f float64) string {
	if f == math.Trunc(f) {
		return fmt.Sprintf("%d", int(f))
	}
	return fmt.Sprintf("%g", f)
}
