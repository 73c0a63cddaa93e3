package grammar

import (
	"fmt"

	"tessera/internal/ir"
)

// Tree converts the parsed program into an IR tree.
func (p *Program) Tree() (*ir.Tree, error) {
	t := ir.NewTree()
	if err := buildBlock(t, ir.NoBlock, p.Root); err != nil {
		return nil, err
	}
	return t, nil
}

func buildBlock(t *ir.Tree, parent ir.BlockID, node *BlockNode) error {
	b := t.NewBlock(parent, node.Name)
	if parent != ir.NoBlock {
		pb := t.Block(parent)
		pb.Stmts = append(pb.Stmts, &ir.BlockStmt{Block: b.ID()})
	}

	for _, idx := range node.Idxs {
		v := &ir.IndexVar{
			Name:     idx.Name,
			Dim:      idx.Name,
			Range:    idx.Range,
			Stride:   1,
			Factor:   1,
			DimRange: idx.Range,
		}
		if idx.Stride != nil {
			v.Stride = idx.Stride.Int()
		}
		if idx.Split != nil {
			v.Dim = idx.Split.Dim
			v.Factor = idx.Split.Factor
			v.DimRange = idx.Split.DimRange
		}
		b.Idxs = append(b.Idxs, v)
	}

	for _, item := range node.Items {
		switch {
		case item.Ref != nil:
			dir, err := direction(item.Ref.Dir)
			if err != nil {
				return err
			}
			b.Refs = append(b.Refs, &ir.Refinement{
				Buffer: item.Ref.Buffer,
				Dir:    dir,
				Map:    item.Ref.Expr.Map(),
			})
		case item.Op != nil:
			b.Stmts = append(b.Stmts, &ir.OpStmt{
				Name:    item.Op.Name,
				Buffers: item.Op.Buffers,
			})
		case item.Child != nil:
			if err := buildBlock(t, b.ID(), item.Child); err != nil {
				return err
			}
		}
	}
	return nil
}

// Map converts the expression node into an affine map, applying signs.
func (e *ExprNode) Map() ir.AffineMap {
	m := ir.AffineMap{Offset: e.Offset}
	if e.Neg {
		m.Offset = -m.Offset
	}
	for _, term := range e.Terms {
		coeff := term.Coeff
		if term.Sign == "-" {
			coeff = -coeff
		}
		m.Terms = append(m.Terms, ir.Term{Var: term.Var, Coeff: coeff})
	}
	return m
}

func direction(s string) (ir.Direction, error) {
	switch s {
	case "read":
		return ir.Read, nil
	case "write":
		return ir.Write, nil
	case "readwrite":
		return ir.ReadWrite, nil
	}
	return "", fmt.Errorf("unknown refinement direction %q", s)
}
