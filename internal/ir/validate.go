package ir

import "fmt"

// Violation is one structural invariant breach found by Validate.
type Violation struct {
	Block   string
	Message string
}

func (v Violation) String() string {
	return fmt.Sprintf("block %s: %s", v.Block, v.Message)
}

// Validate walks the whole tree and collects every invariant breach
// rather than stopping at the first, so a malformed front-end tree is
// reported in one pass.
//
// Checked invariants:
//   - index-variable names are unique within their block and do not
//     shadow any ancestor's variable
//   - every range, factor and dimension range is at least 1
//   - refinement terms only reference variables visible in scope, and
//     no variable appears twice in one map
//   - a block declares at most one refinement per buffer
//   - nested-block statements agree with the arena's parent links
func Validate(t *Tree) []Violation {
	var out []Violation
	if t.Len() == 0 {
		return []Violation{{Block: "", Message: "empty tree"}}
	}
	validateBlock(t, t.Root().id, &out)
	return out
}

func validateBlock(t *Tree, id BlockID, out *[]Violation) {
	b := t.Block(id)
	report := func(format string, args ...interface{}) {
		*out = append(*out, Violation{Block: b.Name, Message: fmt.Sprintf(format, args...)})
	}

	local := make(map[string]bool)
	for _, v := range b.Idxs {
		if local[v.Name] {
			report("duplicate index variable %q", v.Name)
		}
		local[v.Name] = true
		if b.parent != NoBlock {
			if _, where, ok := t.Resolve(b.parent, v.Name); ok {
				report("index variable %q shadows a declaration in block %s", v.Name, t.Block(where).Name)
			}
		}
		if v.Range < 1 {
			report("index variable %q has range %d", v.Name, v.Range)
		}
		if v.Factor < 1 {
			report("index variable %q has factor %d", v.Name, v.Factor)
		}
		if v.DimRange < 1 {
			report("index variable %q has dimension range %d", v.Name, v.DimRange)
		}
	}

	buffers := make(map[string]bool)
	for _, r := range b.Refs {
		if buffers[r.Buffer] {
			report("duplicate refinement for buffer %q", r.Buffer)
		}
		buffers[r.Buffer] = true
		seen := make(map[string]bool)
		for _, term := range r.Map.Terms {
			if seen[term.Var] {
				report("refinement for %q references %q twice", r.Buffer, term.Var)
			}
			seen[term.Var] = true
			if _, _, ok := t.Resolve(id, term.Var); !ok {
				report("refinement for %q references unknown index variable %q", r.Buffer, term.Var)
			}
		}
	}

	for _, s := range b.Stmts {
		bs, ok := s.(*BlockStmt)
		if !ok {
			continue
		}
		if bs.Block < 0 || int(bs.Block) >= t.Len() {
			report("nested block id %d out of range", bs.Block)
			continue
		}
		if t.Block(bs.Block).parent != id {
			report("nested block %s does not link back to its parent", t.Block(bs.Block).Name)
		}
		validateBlock(t, bs.Block, out)
	}
}
