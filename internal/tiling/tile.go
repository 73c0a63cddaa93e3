// Package tiling splits a block's loop dimensions into outer/inner
// level pairs while preserving the addresses every refinement computes.
package tiling

import (
	"fmt"

	"tessera/internal/ir"
)

// ShapeMismatchError reports a tile shape that violates Apply's
// preconditions. It always indicates a caller bug and is never retried.
type ShapeMismatchError struct {
	Block  string
	Reason string
}

func (e *ShapeMismatchError) Error() string {
	return fmt.Sprintf("tile shape mismatch on block %s: %s", e.Block, e.Reason)
}

// SplitTerm rewrites one affine term coefficient*v for a dimension being
// split with the given tile size into its outer and inner counterparts:
// coefficient*tile on the outer variable plus coefficient on the inner.
func SplitTerm(term ir.Term, outer, inner string, tile int64) (ir.Term, ir.Term) {
	return ir.Term{Var: outer, Coeff: term.Coeff * tile},
		ir.Term{Var: inner, Coeff: term.Coeff}
}

// Apply tiles a block in place: each index variable with range R, base
// stride S and tile size T becomes an outer variable (range ceil(R/T),
// stride S*T) on the block itself and an inner variable (range T,
// stride S) on a freshly created nested block, which also takes over
// the block's original statements and its rewritten refinements.
// Refinements anywhere below the block whose terms reference a split
// variable are rewritten through the same split, so every map in the
// subtree keeps addressing the elements it did before.
//
// The tile size need not divide the range; the outer range is always a
// ceiling division, so the combined space outer*T+inner can overshoot R
// by up to T-1 on the final outer step. Apply never shrinks the inner
// range to compensate — downstream consumers mask or guard the
// out-of-range iterations using the access analyzer's constraints.
//
// Shape entries pair with block.Idxs in declaration order. Apply
// returns the id of the new inner block.
func Apply(t *ir.Tree, id ir.BlockID, shape []int64) (ir.BlockID, error) {
	b := t.Block(id)
	if len(shape) != len(b.Idxs) {
		return ir.NoBlock, &ShapeMismatchError{
			Block:  b.Name,
			Reason: fmt.Sprintf("block has %d index variables, shape has %d entries", len(b.Idxs), len(shape)),
		}
	}
	for i, size := range shape {
		if size < 1 {
			return ir.NoBlock, &ShapeMismatchError{
				Block:  b.Name,
				Reason: fmt.Sprintf("tile size %d for %q must be at least 1", size, b.Idxs[i].Name),
			}
		}
	}

	inner := t.NewBlock(id, b.Name+"_tile")

	// Both halves are new variables; the originals are discarded whole
	// so no historical range or stride is ever mutated.
	outerIdxs := make([]*ir.IndexVar, len(b.Idxs))
	innerName := make(map[string]string, len(b.Idxs))
	tileOf := make(map[string]int64, len(b.Idxs))
	for i, v := range b.Idxs {
		tile := shape[i]
		outerIdxs[i] = &ir.IndexVar{
			Name:     v.Name,
			Dim:      v.Dim,
			Range:    ceilDiv(v.Range, tile),
			Stride:   v.Stride * tile,
			Factor:   v.Factor * tile,
			DimRange: v.DimRange,
		}
		// Appending as we go keeps FreshName aware of the names already
		// handed out within this split.
		in := &ir.IndexVar{
			Name:     t.FreshName(v.Dim),
			Dim:      v.Dim,
			Range:    tile,
			Stride:   v.Stride,
			Factor:   v.Factor,
			DimRange: v.DimRange,
		}
		inner.Idxs = append(inner.Idxs, in)
		innerName[v.Name] = in.Name
		tileOf[v.Name] = tile
	}

	splitMap := func(m ir.AffineMap) ir.AffineMap {
		out := ir.AffineMap{Offset: m.Offset}
		for _, term := range m.Terms {
			in, split := innerName[term.Var]
			if !split {
				out.Terms = append(out.Terms, term)
				continue
			}
			outTerm, inTerm := SplitTerm(term, term.Var, in, tileOf[term.Var])
			out.Terms = append(out.Terms, outTerm, inTerm)
		}
		return out
	}

	// Refinements migrate to the inner block: the rewritten maps need
	// both levels' variables in scope, and the outer level re-derives
	// nothing until something actually dereferences the buffer there.
	rewritten := make([]*ir.Refinement, 0, len(b.Refs))
	for _, r := range b.Refs {
		rewritten = append(rewritten, &ir.Refinement{Buffer: r.Buffer, Dir: r.Dir, Map: splitMap(r.Map)})
	}

	inner.Refs = rewritten
	inner.Stmts = b.Stmts
	for _, s := range inner.Stmts {
		if bs, ok := s.(*ir.BlockStmt); ok {
			t.Adopt(bs.Block, inner.ID())
		}
	}

	// Descendant blocks may reference the split variables too, since
	// the outer half keeps its name with a changed meaning. Their maps
	// go through the same rewrite; both halves stay in scope below the
	// inner block.
	var rewriteBelow func(id ir.BlockID)
	rewriteBelow = func(id ir.BlockID) {
		for _, kid := range t.Children(id) {
			for _, r := range t.Block(kid).Refs {
				r.Map = splitMap(r.Map)
			}
			rewriteBelow(kid)
		}
	}
	rewriteBelow(inner.ID())

	b.Idxs = outerIdxs
	b.Refs = nil
	b.Stmts = []ir.Stmt{&ir.BlockStmt{Block: inner.ID()}}

	return inner.ID(), nil
}

func ceilDiv(a, b int64) int64 {
	return (a + b - 1) / b
}
