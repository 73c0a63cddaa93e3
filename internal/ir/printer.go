package ir

import (
	"fmt"
	"strings"
)

// Printer renders a tree in the textual loop-nest form understood by
// the grammar package, so dumped trees can be fed back into the tools.
type Printer struct {
	indent int
	output strings.Builder
}

// NewPrinter creates a printer starting at indent level zero.
func NewPrinter() *Printer {
	return &Printer{indent: 0}
}

// Print returns the textual form of the subtree rooted at id.
func Print(t *Tree, id BlockID) string {
	p := NewPrinter()
	p.printBlock(t, id)
	return p.output.String()
}

func (p *Printer) writeIndent() {
	for i := 0; i < p.indent; i++ {
		p.output.WriteString("  ")
	}
}

func (p *Printer) writeLine(format string, args ...interface{}) {
	p.writeIndent()
	p.output.WriteString(fmt.Sprintf(format, args...))
	p.output.WriteString("\n")
}

func (p *Printer) printBlock(t *Tree, id BlockID) {
	b := t.Block(id)

	idxs := make([]string, len(b.Idxs))
	for i, v := range b.Idxs {
		idxs[i] = formatIdx(v)
	}
	p.writeLine("block %s [%s] {", b.Name, strings.Join(idxs, ", "))
	p.indent++

	for _, r := range b.Refs {
		p.writeLine("ref %s %s = %s", r.Buffer, r.Dir, formatMap(r.Map))
	}
	for _, s := range b.Stmts {
		switch s := s.(type) {
		case *BlockStmt:
			p.printBlock(t, s.Block)
		case *OpStmt:
			p.writeLine("do %s(%s)", s.Name, strings.Join(s.Buffers, ", "))
		}
	}

	p.indent--
	p.writeLine("}")
}

// formatIdx renders name:range:stride, with a =dim*factor<dimrange
// split annotation for variables produced by tiling.
func formatIdx(v *IndexVar) string {
	s := fmt.Sprintf("%s:%d:%d", v.Name, v.Range, v.Stride)
	if v.Dim != v.Name || v.Factor != 1 || v.DimRange != v.Range {
		s += fmt.Sprintf("=%s*%d<%d", v.Dim, v.Factor, v.DimRange)
	}
	return s
}

func formatMap(m AffineMap) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "%d", m.Offset)
	for _, t := range m.Terms {
		if t.Coeff < 0 {
			fmt.Fprintf(&sb, " - %d*%s", -t.Coeff, t.Var)
		} else {
			fmt.Fprintf(&sb, " + %d*%s", t.Coeff, t.Var)
		}
	}
	return sb.String()
}
