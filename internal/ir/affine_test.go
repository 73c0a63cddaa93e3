package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAffineMapEval(t *testing.T) {
	m := AffineMap{
		Offset: 7,
		Terms: []Term{
			{Var: "i", Coeff: 3},
			{Var: "j", Coeff: -2},
			{Var: "k", Coeff: 0},
		},
	}

	assert.Equal(t, int64(7), m.Eval(nil), "empty assignment evaluates to the offset")
	assert.Equal(t, int64(7+3*4-2*5), m.Eval(map[string]int64{"i": 4, "j": 5, "k": 9}))
	assert.Equal(t, int64(7+3*4), m.Eval(map[string]int64{"i": 4}), "missing variables evaluate as zero")
}

func TestAffineMapCoeff(t *testing.T) {
	m := AffineMap{Terms: []Term{{Var: "i", Coeff: 5}, {Var: "j", Coeff: 0}}}

	c, ok := m.Coeff("i")
	assert.True(t, ok)
	assert.Equal(t, int64(5), c)

	c, ok = m.Coeff("j")
	assert.True(t, ok, "explicit zero terms are still present")
	assert.Equal(t, int64(0), c)

	_, ok = m.Coeff("missing")
	assert.False(t, ok)
}

func TestAffineMapCloneDoesNotAlias(t *testing.T) {
	m := AffineMap{Offset: 1, Terms: []Term{{Var: "i", Coeff: 2}}}
	c := m.Clone()
	c.Terms[0].Coeff = 99

	orig, _ := m.Coeff("i")
	assert.Equal(t, int64(2), orig)
}

func TestIndexVarSplitPredicates(t *testing.T) {
	// Front-end variable: covers its dimension on its own.
	plain := &IndexVar{Name: "k", Dim: "k", Range: 5, Factor: 1, DimRange: 5}
	assert.True(t, plain.Top())
	assert.False(t, plain.Ragged())

	// Outer half of a 5/2 split: tops the dimension via ceiling division.
	outer := &IndexVar{Name: "k", Dim: "k", Range: 3, Factor: 2, DimRange: 5}
	assert.True(t, outer.Top())
	assert.False(t, outer.Ragged())

	// Inner half of a 5/2 split: 2 does not divide 5.
	inner := &IndexVar{Name: "k_1", Dim: "k", Range: 2, Factor: 1, DimRange: 5}
	assert.False(t, inner.Top())
	assert.True(t, inner.Ragged())

	// Inner half of a 4/2 split: even, nothing ragged.
	even := &IndexVar{Name: "k_1", Dim: "k", Range: 2, Factor: 1, DimRange: 4}
	assert.False(t, even.Top())
	assert.False(t, even.Ragged())
}
