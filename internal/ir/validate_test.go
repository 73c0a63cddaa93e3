package ir

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newVar(name string, rng int64) *IndexVar {
	return &IndexVar{Name: name, Dim: name, Range: rng, Stride: 1, Factor: 1, DimRange: rng}
}

func TestValidateWellFormedTree(t *testing.T) {
	tree := NewTree()
	root := tree.NewBlock(NoBlock, "main")
	kernel := tree.NewBlock(root.ID(), "kernel")
	root.Stmts = append(root.Stmts, &BlockStmt{Block: kernel.ID()})

	kernel.Idxs = []*IndexVar{newVar("i", 4), newVar("j", 1)}
	kernel.Refs = []*Refinement{{
		Buffer: "A",
		Dir:    Read,
		Map:    AffineMap{Terms: []Term{{Var: "i", Coeff: 1}, {Var: "j", Coeff: 4}}},
	}}
	kernel.Stmts = []Stmt{&OpStmt{Name: "copy", Buffers: []string{"A"}}}

	assert.Empty(t, Validate(tree))
}

func TestValidateDuplicateIndexVariable(t *testing.T) {
	tree := NewTree()
	root := tree.NewBlock(NoBlock, "main")
	root.Idxs = []*IndexVar{newVar("i", 4), newVar("i", 2)}

	violations := Validate(tree)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "duplicate index variable")
}

func TestValidateShadowing(t *testing.T) {
	tree := NewTree()
	root := tree.NewBlock(NoBlock, "main")
	root.Idxs = []*IndexVar{newVar("i", 4)}
	child := tree.NewBlock(root.ID(), "inner")
	root.Stmts = append(root.Stmts, &BlockStmt{Block: child.ID()})
	child.Idxs = []*IndexVar{newVar("i", 2)}

	violations := Validate(tree)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "shadows")
	assert.Equal(t, "inner", violations[0].Block)
}

func TestValidateBadRanges(t *testing.T) {
	tree := NewTree()
	root := tree.NewBlock(NoBlock, "main")
	root.Idxs = []*IndexVar{{Name: "i", Dim: "i", Range: 0, Stride: 1, Factor: 0, DimRange: 0}}

	violations := Validate(tree)
	assert.Len(t, violations, 3, "range, factor and dimension range are each reported")
}

func TestValidateRefinementTerms(t *testing.T) {
	tree := NewTree()
	root := tree.NewBlock(NoBlock, "main")
	root.Idxs = []*IndexVar{newVar("i", 4)}
	root.Refs = []*Refinement{{
		Buffer: "A",
		Dir:    Write,
		Map:    AffineMap{Terms: []Term{{Var: "i", Coeff: 1}, {Var: "i", Coeff: 2}, {Var: "ghost", Coeff: 1}}},
	}}

	violations := Validate(tree)
	require.Len(t, violations, 2)
	assert.Contains(t, violations[0].Message, "twice")
	assert.Contains(t, violations[1].Message, "unknown index variable")
}

func TestValidateDuplicateRefinement(t *testing.T) {
	tree := NewTree()
	root := tree.NewBlock(NoBlock, "main")
	root.Refs = []*Refinement{
		{Buffer: "A", Dir: Read},
		{Buffer: "A", Dir: Write},
	}

	violations := Validate(tree)
	require.Len(t, violations, 1)
	assert.Contains(t, violations[0].Message, "duplicate refinement")
}

func TestValidateChildTermsMayUseAncestorVariables(t *testing.T) {
	tree := NewTree()
	root := tree.NewBlock(NoBlock, "main")
	root.Idxs = []*IndexVar{newVar("i", 4)}
	child := tree.NewBlock(root.ID(), "inner")
	root.Stmts = append(root.Stmts, &BlockStmt{Block: child.ID()})
	child.Idxs = []*IndexVar{newVar("j", 2)}
	child.Refs = []*Refinement{{
		Buffer: "A",
		Dir:    Read,
		Map:    AffineMap{Terms: []Term{{Var: "i", Coeff: 2}, {Var: "j", Coeff: 1}}},
	}}

	assert.Empty(t, Validate(tree))
}

func TestResolveWalksAncestors(t *testing.T) {
	tree := NewTree()
	root := tree.NewBlock(NoBlock, "main")
	root.Idxs = []*IndexVar{newVar("i", 4)}
	child := tree.NewBlock(root.ID(), "inner")
	root.Stmts = append(root.Stmts, &BlockStmt{Block: child.ID()})
	child.Idxs = []*IndexVar{newVar("j", 2)}

	v, where, ok := tree.Resolve(child.ID(), "i")
	require.True(t, ok)
	assert.Equal(t, root.ID(), where)
	assert.Equal(t, int64(4), v.Range)

	_, _, ok = tree.Resolve(root.ID(), "j")
	assert.False(t, ok, "resolution never descends")
}

func TestFreshName(t *testing.T) {
	tree := NewTree()
	root := tree.NewBlock(NoBlock, "main")
	root.Idxs = []*IndexVar{newVar("k", 4)}

	first := tree.FreshName("k")
	assert.Equal(t, "k_1", first)

	root.Idxs = append(root.Idxs, newVar(first, 2))
	assert.Equal(t, "k_2", tree.FreshName("k"))
}
