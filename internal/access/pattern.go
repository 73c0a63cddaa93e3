package access

import (
	"tessera/internal/ir"
)

// entry pairs a pattern index with the variable it came from and the
// level it was declared at, for constraint and exteriority bookkeeping.
type entry struct {
	v         *ir.IndexVar
	stride    int64
	innermost bool
}

// flatten turns an accumulated chain into its Pattern. Variables are
// listed outermost level first, in each level's declaration order,
// covering exactly the in-scope variables the folded maps mention;
// terms resolving to ancestors of the analyzed block are dropped, since
// those loops are invariant with respect to the analyzed subtree.
func flatten(t *ir.Tree, start, innermost ir.BlockID, acc *fold) Pattern {
	// Path from the analyzed block down to the chain's last refinement.
	var path []ir.BlockID
	for id := innermost; ; id = t.Block(id).Parent() {
		path = append(path, id)
		if id == start {
			break
		}
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	var entries []entry
	for _, id := range path {
		for _, v := range t.Block(id).Idxs {
			if !acc.present[v.Name] {
				continue
			}
			entries = append(entries, entry{
				v:         v,
				stride:    acc.coeff[v.Name],
				innermost: id == innermost,
			})
		}
	}

	p := Pattern{
		Exterior: exterior(t, innermost, acc),
		Exact:    true,
		Offset:   acc.offset,
	}
	for _, e := range entries {
		p.Indices = append(p.Indices, Index{Name: e.v.Dim, Stride: e.stride, Range: e.v.Range})
	}
	boundDims(entries, &p)
	return p
}

// exterior reports whether the innermost level's own variables all have
// zero accumulated coefficient, i.e. the address never moves across
// that loop's iterations.
func exterior(t *ir.Tree, innermost ir.BlockID, acc *fold) bool {
	for _, v := range t.Block(innermost).Idxs {
		if acc.coeff[v.Name] != 0 {
			return false
		}
	}
	return true
}

// boundDims regroups the entries by source dimension and, per
// dimension, decides between three outcomes:
//
//   - the in-scope variables span the whole dimension exactly: the
//     tiling (if any) divides evenly and nothing needs guarding;
//   - they span more than the dimension: a ragged split overshoots, and
//     a constraint row recombining the levels bounds the flattened
//     index below the original range;
//   - they span less than the dimension while a ragged level is in
//     scope: the overshoot exists but its enclosing variables are out
//     of scope, so no row can express it and the pattern goes inexact.
//
// Rows appear in first-encounter order of dimensions.
func boundDims(entries []entry, p *Pattern) {
	var dims [][]int
	slot := make(map[string]int)
	for i, e := range entries {
		d, ok := slot[e.v.Dim]
		if !ok {
			d = len(dims)
			slot[e.v.Dim] = d
			dims = append(dims, nil)
		}
		dims[d] = append(dims[d], i)
	}

	for _, members := range dims {
		var span int64
		var ragged bool
		dimRange := entries[members[0]].v.DimRange
		for _, i := range members {
			v := entries[i].v
			span += v.Factor * (v.Range - 1)
			if v.Ragged() {
				ragged = true
			}
		}
		switch {
		case span > dimRange-1:
			row := Constraint{Coeffs: make([]int64, len(entries)), Bound: dimRange}
			for _, i := range members {
				row.Coeffs[i] = entries[i].v.Factor
			}
			p.Constraints = append(p.Constraints, row)
		case span < dimRange-1 && ragged:
			p.Exact = false
		}
	}
}
