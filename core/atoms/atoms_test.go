package atoms

import (
	"errors"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeSetDeterministicOrder(t *testing.T) {
	// Same composition, different atom ordering, must give the same
	// ascending type set.
	s1 := NewStructure([]Atom{{Number: 78}, {Number: 8}, {Number: 78}, {Number: 1}})
	s2 := NewStructure([]Atom{{Number: 1}, {Number: 78}, {Number: 8}, {Number: 78}})

	assert.Equal(t, []int{1, 8, 78}, s1.TypeSet())
	assert.Equal(t, s1.TypeSet(), s2.TypeSet())
}

func TestDistance(t *testing.T) {
	s := NewStructure([]Atom{
		{Position: [3]float64{0, 0, 0}, Number: 1},
		{Position: [3]float64{1, 2, 2}, Number: 1},
	})
	assert.InDelta(t, 3.0, s.Distance(0, 1), 1e-12)
	assert.InDelta(t, s.Distance(0, 1), s.Distance(1, 0), 1e-12)
}

func TestCovalentRadius(t *testing.T) {
	r, err := CovalentRadius(6)
	require.NoError(t, err)
	assert.InDelta(t, 0.76, r, 1e-12)

	_, err = CovalentRadius(0)
	assert.Error(t, err)
	_, err = CovalentRadius(200)
	assert.Error(t, err)
}

func TestSymbolRoundTrip(t *testing.T) {
	for _, n := range []int{1, 6, 26, 78, 79} {
		sym, err := SymbolFor(n)
		require.NoError(t, err)
		back, err := NumberFor(sym)
		require.NoError(t, err)
		assert.Equal(t, n, back)
	}

	_, err := NumberFor("Xx")
	assert.Error(t, err)
}

func TestLookupPropertyKnown(t *testing.T) {
	v, err := LookupProperty("Pt", Electronegativity)
	require.NoError(t, err)
	assert.InDelta(t, 2.28, v, 1e-12)

	v, err = LookupProperty("O", AtomicWeight)
	require.NoError(t, err)
	assert.False(t, math.IsNaN(v))
}

func TestLookupPropertyUnknownSymbolFails(t *testing.T) {
	_, err := LookupProperty("Qq", AtomicWeight)
	require.Error(t, err)

	var le *LookupError
	assert.True(t, errors.As(err, &le))
	assert.Equal(t, "Qq", le.Symbol)
}

func TestParseProperty(t *testing.T) {
	p, err := ParseProperty("electronegativity")
	require.NoError(t, err)
	assert.Equal(t, Electronegativity, p)

	_, err = ParseProperty("vibes")
	var le *LookupError
	require.True(t, errors.As(err, &le))
}
