package ir

// Loop-nest IR used by the tiling engine and the access analyzer.
// A tree of blocks models one kernel: each block declares the loop
// dimensions of its level, the buffer refinements valid in its scope,
// and an ordered statement list mixing nested blocks and opaque ops.

// Direction categorizes how a refinement's buffer is accessed.
type Direction string

const (
	Read      Direction = "read"
	Write     Direction = "write"
	ReadWrite Direction = "readwrite"
)

// IndexVar is one loop dimension declared by a block.
//
// Name is unique along the declaring block's ancestor chain. Dim is the
// label of the source loop dimension the variable scans; a front-end
// variable has Dim == Name, and tiling propagates Dim to both halves of
// a split so access analysis can report and regroup them by dimension.
//
// Factor is the variable's multiplier in the flattened value of its
// source dimension (front-end variables carry 1), and DimRange is that
// dimension's pre-tiling trip count. Together they let the analyzer
// reconstruct boundary facts for a split without re-deriving it.
type IndexVar struct {
	Name     string
	Dim      string
	Range    int64
	Stride   int64
	Factor   int64
	DimRange int64
}

// Top reports whether the variable covers its whole source dimension on
// its own, i.e. it is the outermost level of the dimension's split tree
// (or the dimension was never split).
func (v *IndexVar) Top() bool {
	return v.Factor*v.Range >= v.DimRange
}

// Ragged reports whether the variable is a split level that does not
// evenly cover its source dimension, so the combined iteration space
// overshoots the dimension's range on the final outer step.
func (v *IndexVar) Ragged() bool {
	return !v.Top() && v.DimRange%(v.Factor*v.Range) != 0
}

// Term is one linear component of an AffineMap.
type Term struct {
	Var   string
	Coeff int64
}

// AffineMap is Offset + sum(Coeff*value(Var)) over Terms. Terms may
// carry explicit zero coefficients; a variable must not appear twice.
type AffineMap struct {
	Offset int64
	Terms  []Term
}

// Coeff returns the coefficient for an index variable and whether the
// map carries a term for it at all.
func (m AffineMap) Coeff(name string) (int64, bool) {
	for _, t := range m.Terms {
		if t.Var == name {
			return t.Coeff, true
		}
	}
	return 0, false
}

// Eval computes the map's value under an assignment of index variables.
// Variables missing from env evaluate as zero.
func (m AffineMap) Eval(env map[string]int64) int64 {
	v := m.Offset
	for _, t := range m.Terms {
		v += t.Coeff * env[t.Var]
	}
	return v
}

// Clone returns a deep copy so rewrites never alias the original terms.
func (m AffineMap) Clone() AffineMap {
	terms := make([]Term, len(m.Terms))
	copy(terms, m.Terms)
	return AffineMap{Offset: m.Offset, Terms: terms}
}

// Refinement binds a buffer to its linear address expression within the
// scope of the declaring block.
type Refinement struct {
	Buffer string
	Dir    Direction
	Map    AffineMap
}

// Stmt is one entry in a block's statement list.
type Stmt interface {
	stmtNode()
}

// BlockStmt nests a child block.
type BlockStmt struct {
	Block BlockID
}

// OpStmt is an opaque compute operation; the core only cares which
// refinements it touches, by buffer name.
type OpStmt struct {
	Name    string
	Buffers []string
}

func (*BlockStmt) stmtNode() {}
func (*OpStmt) stmtNode()    {}
