package grammar

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tessera/internal/ir"
)

func TestParseMatMul(t *testing.T) {
	source := `
// 5x5 matrix multiply, row-major buffers
block main [] {
  block kernel [k:5:1, m:5:1, n:5:1] {
    ref A read = 0 + 1*k + 5*m + 0*n
    ref B read = 0 + 5*k + 0*m + 1*n
    ref C readwrite = 0 + 0*k + 5*m + 1*n
    do mac(C, A, B)
  }
}
`
	tree, err := Parse("matmul.tss", source)
	require.NoError(t, err)

	root := tree.Root()
	assert.Equal(t, "main", root.Name)
	assert.Empty(t, root.Idxs)
	require.Len(t, root.Stmts, 1)

	kernelID, ok := tree.Find("kernel")
	require.True(t, ok)
	kernel := tree.Block(kernelID)
	require.Len(t, kernel.Idxs, 3)
	assert.Equal(t, &ir.IndexVar{Name: "m", Dim: "m", Range: 5, Stride: 1, Factor: 1, DimRange: 5}, kernel.Idxs[1])

	ref, ok := kernel.Refinement("C")
	require.True(t, ok)
	assert.Equal(t, ir.ReadWrite, ref.Dir)
	assert.Equal(t, ir.AffineMap{
		Terms: []ir.Term{{Var: "k", Coeff: 0}, {Var: "m", Coeff: 5}, {Var: "n", Coeff: 1}},
	}, ref.Map)

	require.Len(t, kernel.Stmts, 1)
	op, ok := kernel.Stmts[0].(*ir.OpStmt)
	require.True(t, ok)
	assert.Equal(t, "mac", op.Name)
	assert.Equal(t, []string{"C", "A", "B"}, op.Buffers)
}

func TestParseDefaultsAndSigns(t *testing.T) {
	source := `
block b [i:3] {
  ref X write = 10 - 2*i
}
`
	tree, err := Parse("signs.tss", source)
	require.NoError(t, err)

	root := tree.Root()
	assert.Equal(t, int64(1), root.Idxs[0].Stride, "stride defaults to 1")

	ref, ok := root.Refinement("X")
	require.True(t, ok)
	assert.Equal(t, int64(10), ref.Map.Offset)
	coeff, present := ref.Map.Coeff("i")
	assert.True(t, present)
	assert.Equal(t, int64(-2), coeff)
}

func TestParseNegativeStride(t *testing.T) {
	tree, err := Parse("neg.tss", `
block b [i:4:-1] {
  ref X read = 3 - 1*i
}
`)
	require.NoError(t, err)
	assert.Equal(t, int64(-1), tree.Root().Idxs[0].Stride)

	// Reverse-strided trees still round-trip through the printer.
	text := ir.Print(tree, tree.Root().ID())
	reparsed, err := Parse("neg_reparse.tss", text)
	require.NoError(t, err)
	assert.Equal(t, text, ir.Print(reparsed, reparsed.Root().ID()))
}

func TestParseSplitAnnotation(t *testing.T) {
	source := `
block b [k:3:2=k*2<5, k_1:2:1=k*1<5] {
  ref A read = 0 + 2*k + 1*k_1
}
`
	tree, err := Parse("split.tss", source)
	require.NoError(t, err)

	v := tree.Root().Idxs[1]
	assert.Equal(t, "k_1", v.Name)
	assert.Equal(t, "k", v.Dim)
	assert.Equal(t, int64(1), v.Factor)
	assert.Equal(t, int64(5), v.DimRange)
	assert.True(t, v.Ragged())
}

func TestParseSyntaxError(t *testing.T) {
	_, err := Parse("bad.tss", `block b [i:3] { ref = }`)
	assert.Error(t, err)
}

func TestParseRejectsInvalidNest(t *testing.T) {
	// Syntactically fine, structurally broken: the refinement names a
	// variable no scope declares.
	_, err := Parse("ghost.tss", `
block b [i:3] {
  ref A read = 0 + 1*q
}
`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown index variable")
}
