package grammar

// Textual form of the loop-nest IR. One file holds one root block:
//
//	block main [] {
//	  block kernel [k:5:1, m:5:1, n:5:1] {
//	    ref A read = 0 + 1*k + 5*m + 0*n
//	    do mac(C, A, B)
//	  }
//	}
//
// Index variables read name:range:stride, with an optional
// =dim*factor<dimrange annotation carrying the split lineage of
// variables produced by tiling, so dumped tiled trees parse back.

type Program struct {
	Root *BlockNode `@@`
}

type BlockNode struct {
	Name  string      `"block" @Ident`
	Idxs  []*IdxNode  `"[" [ @@ { "," @@ } ] "]"`
	Items []*ItemNode `"{" @@* "}"`
}

type IdxNode struct {
	Name   string     `@Ident ":"`
	Range  int64      `@Integer`
	Stride *IntNode   `[ ":" @@ ]`
	Split  *SplitNode `[ "=" @@ ]`
}

// IntNode is a possibly negative integer literal; strides may step
// backwards through a buffer.
type IntNode struct {
	Neg   bool  `[ @"-" ]`
	Value int64 `@Integer`
}

func (n *IntNode) Int() int64 {
	if n.Neg {
		return -n.Value
	}
	return n.Value
}

type SplitNode struct {
	Dim      string `@Ident "*"`
	Factor   int64  `@Integer "<"`
	DimRange int64  `@Integer`
}

type ItemNode struct {
	Ref   *RefNode   `  @@`
	Op    *OpNode    `| @@`
	Child *BlockNode `| @@`
}

type RefNode struct {
	Buffer string    `"ref" @Ident`
	Dir    string    `@("read" | "write" | "readwrite")`
	Expr   *ExprNode `"=" @@`
}

type ExprNode struct {
	Neg    bool        `[ @"-" ]`
	Offset int64       `@Integer`
	Terms  []*TermNode `@@*`
}

type TermNode struct {
	Sign  string `@("+" | "-")`
	Coeff int64  `@Integer "*"`
	Var   string `@Ident`
}

type OpNode struct {
	Name    string   `"do" @Ident "("`
	Buffers []string `[ @Ident { "," @Ident } ] ")"`
}
