package ir

import (
	"fmt"
)

// BlockID addresses a block inside its Tree's arena.
type BlockID int

// NoBlock marks the root's missing parent.
const NoBlock BlockID = -1

// Block is one level of a loop nest: its index variables, the buffer
// refinements declared at this level, and an ordered statement list.
type Block struct {
	id     BlockID
	parent BlockID

	Name  string
	Idxs  []*IndexVar
	Refs  []*Refinement
	Stmts []Stmt
}

// ID returns the block's arena id.
func (b *Block) ID() BlockID { return b.id }

// Parent returns the enclosing block's id, or NoBlock for the root.
func (b *Block) Parent() BlockID { return b.parent }

// Index returns the block's own index variable with the given name.
func (b *Block) Index(name string) (*IndexVar, bool) {
	for _, v := range b.Idxs {
		if v.Name == name {
			return v, true
		}
	}
	return nil, false
}

// Refinement returns the block's refinement for a buffer, if declared.
func (b *Block) Refinement(buffer string) (*Refinement, bool) {
	for _, r := range b.Refs {
		if r.Buffer == buffer {
			return r, true
		}
	}
	return nil, false
}

// Tree is an arena of blocks addressed by BlockID, with explicit parent
// links so scope resolution walks ancestors rather than capturing them.
type Tree struct {
	blocks []*Block
}

// NewTree returns an empty tree; the first block created becomes root.
func NewTree() *Tree {
	return &Tree{}
}

// NewBlock allocates a block under the given parent. The caller is
// responsible for appending a BlockStmt to the parent's statement list;
// the arena only records the upward link.
func (t *Tree) NewBlock(parent BlockID, name string) *Block {
	b := &Block{
		id:     BlockID(len(t.blocks)),
		parent: parent,
		Name:   name,
	}
	t.blocks = append(t.blocks, b)
	return b
}

// Block returns the block for an id. The id must come from this tree.
func (t *Tree) Block(id BlockID) *Block {
	return t.blocks[id]
}

// Root returns the first allocated block.
func (t *Tree) Root() *Block {
	return t.blocks[0]
}

// Len returns the number of blocks in the arena.
func (t *Tree) Len() int {
	return len(t.blocks)
}

// Children returns the ids of nested blocks in statement order.
func (t *Tree) Children(id BlockID) []BlockID {
	var kids []BlockID
	for _, s := range t.Block(id).Stmts {
		if bs, ok := s.(*BlockStmt); ok {
			kids = append(kids, bs.Block)
		}
	}
	return kids
}

// Resolve finds the index variable with the given name visible from a
// block, walking the ancestor chain. It returns the variable and the
// id of the declaring block.
func (t *Tree) Resolve(from BlockID, name string) (*IndexVar, BlockID, bool) {
	for id := from; id != NoBlock; id = t.Block(id).parent {
		if v, ok := t.Block(id).Index(name); ok {
			return v, id, true
		}
	}
	return nil, NoBlock, false
}

// Adopt rewrites a block's parent link. Transforms that move a
// BlockStmt between statement lists must call this to keep the upward
// links consistent with the nesting.
func (t *Tree) Adopt(child, parent BlockID) {
	t.Block(child).parent = parent
}

// Find returns the first block with the given name in depth-first
// statement order.
func (t *Tree) Find(name string) (BlockID, bool) {
	if len(t.blocks) == 0 {
		return NoBlock, false
	}
	var walk func(id BlockID) (BlockID, bool)
	walk = func(id BlockID) (BlockID, bool) {
		if t.Block(id).Name == name {
			return id, true
		}
		for _, kid := range t.Children(id) {
			if found, ok := walk(kid); ok {
				return found, true
			}
		}
		return NoBlock, false
	}
	return walk(t.Root().id)
}

// FreshName derives an index-variable name from base that collides with
// no variable anywhere in the tree. Global uniqueness is stronger than
// the no-shadowing invariant requires, but keeps repeated tilings of
// sibling subtrees from producing confusing duplicate names.
func (t *Tree) FreshName(base string) string {
	used := make(map[string]bool)
	for _, b := range t.blocks {
		for _, v := range b.Idxs {
			used[v.Name] = true
		}
	}
	for n := 1; ; n++ {
		name := fmt.Sprintf("%s_%d", base, n)
		if !used[name] {
			return name
		}
	}
}
