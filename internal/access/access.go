// Package access derives, for a buffer referenced inside a loop nest,
// the linear addressing behavior induced by the enclosing loop
// structure: per-level strides and ranges, hoistability of the
// innermost access, and the boundary constraints a backend must guard
// when a tiling split does not evenly divide its dimension.
package access

import (
	"fmt"

	"tessera/internal/ir"
)

// Index is one loop variable's contribution to a pattern, reported
// under its source dimension's label so both halves of a split read as
// the same dimension at two levels.
type Index struct {
	Name   string
	Stride int64
	Range  int64
}

// Constraint asserts sum(Coeffs[i]*value(pattern.Indices[i])) < Bound
// for every iteration that may touch real data. Coefficients live in
// iteration space: for a split dimension they recombine the outer and
// inner variables into the original loop index.
type Constraint struct {
	Coeffs []int64
	Bound  int64
}

// Pattern describes one refinement chain for a buffer: the collapsed
// contribution of every level from the analyzed block down to the
// innermost block still refining the buffer.
//
// Exterior means the address is invariant across the innermost level's
// own variables, so a backend may hoist the access out of that loop.
// Exact means every boundary of every split folded into the pattern is
// fully captured: either the split divides its dimension evenly, or a
// constraint row expresses the ragged edge. A pattern is inexact only
// when a ragged split's enclosing variables are out of scope, leaving
// the overshoot inexpressible from the analyzed subtree.
type Pattern struct {
	Exterior    bool
	Exact       bool
	Offset      int64
	Indices     []Index
	Constraints []Constraint
}

// AmbiguousRefinementError reports sibling blocks declaring
// different-offset refinements for one buffer with no enclosing
// refinement to disambiguate them. This is a malformed tree, not a
// normal analysis outcome.
type AmbiguousRefinementError struct {
	Block  string
	Buffer string
}

func (e *AmbiguousRefinementError) Error() string {
	return fmt.Sprintf("ambiguous refinements for buffer %s under block %s", e.Buffer, e.Block)
}

// UnknownBufferError is returned by Require when a buffer the caller
// insists on is never accessed in the analyzed subtree. Compute itself
// treats absence as a valid empty answer.
type UnknownBufferError struct {
	Buffer string
}

func (e *UnknownBufferError) Error() string {
	return fmt.Sprintf("buffer %s is not accessed in the analyzed subtree", e.Buffer)
}

// Compute walks the subtree rooted at id and returns one Pattern per
// refinement chain for the buffer, in depth-first statement order. A
// buffer accessed nowhere below id yields an empty, error-free result.
// The tree is not mutated.
func Compute(t *ir.Tree, id ir.BlockID, buffer string) ([]Pattern, error) {
	var out []Pattern
	if err := search(t, id, id, buffer, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Require wraps Compute for callers whose contract demands the buffer
// be present, converting an empty result into UnknownBufferError.
func Require(t *ir.Tree, id ir.BlockID, buffer string) ([]Pattern, error) {
	pats, err := Compute(t, id, buffer)
	if err != nil {
		return nil, err
	}
	if len(pats) == 0 {
		return nil, &UnknownBufferError{Buffer: buffer}
	}
	return pats, nil
}

// search descends from cur looking for the first block that refines the
// buffer; each such block starts a chain that descend then follows.
func search(t *ir.Tree, start, cur ir.BlockID, buffer string, out *[]Pattern) error {
	b := t.Block(cur)
	if _, ok := b.Refinement(buffer); ok {
		acc := newFold()
		return descend(t, start, cur, buffer, acc, out)
	}

	// Siblings re-deriving the buffer at different offsets with no
	// refinement here to arbitrate make the chains ambiguous.
	var seen *ir.Refinement
	for _, kid := range t.Children(cur) {
		ref, ok := t.Block(kid).Refinement(buffer)
		if !ok {
			continue
		}
		if seen != nil && seen.Map.Offset != ref.Map.Offset {
			return &AmbiguousRefinementError{Block: b.Name, Buffer: buffer}
		}
		seen = ref
	}

	for _, kid := range t.Children(cur) {
		if err := search(t, start, kid, buffer, out); err != nil {
			return err
		}
	}
	return nil
}

// fold accumulates a chain's offsets and coefficients in descent order.
type fold struct {
	offset  int64
	coeff   map[string]int64
	present map[string]bool
}

func newFold() *fold {
	return &fold{coeff: make(map[string]int64), present: make(map[string]bool)}
}

func (f *fold) clone() *fold {
	c := newFold()
	c.offset = f.offset
	for k, v := range f.coeff {
		c.coeff[k] = v
	}
	for k := range f.present {
		c.present[k] = true
	}
	return c
}

func (f *fold) add(m ir.AffineMap) {
	f.offset += m.Offset
	for _, t := range m.Terms {
		f.coeff[t.Var] += t.Coeff
		f.present[t.Var] = true
	}
}

// descend follows a live chain: cur refines the buffer. The chain
// extends into every nested block that re-derives the buffer and ends
// where none does.
func descend(t *ir.Tree, start, cur ir.BlockID, buffer string, acc *fold, out *[]Pattern) error {
	b := t.Block(cur)
	ref, _ := b.Refinement(buffer)
	acc.add(ref.Map)

	extended := false
	for _, kid := range t.Children(cur) {
		if _, ok := t.Block(kid).Refinement(buffer); ok {
			extended = true
			if err := descend(t, start, kid, buffer, acc.clone(), out); err != nil {
				return err
			}
		}
	}
	if !extended {
		*out = append(*out, flatten(t, start, cur, acc))
	}
	return nil
}
