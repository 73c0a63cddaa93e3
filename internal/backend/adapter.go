// Package backend defines the interface through which code-generating
// consumers receive a tiled tree and its buffer access descriptors.
// Adapters themselves (vector ISAs, GPU dispatch, bytecode) live
// outside this module.
package backend

import (
	"tessera/internal/access"
	"tessera/internal/ir"
)

// Binding packages everything an adapter needs to materialize one
// buffer: its direction and the access patterns reachable from the
// root it will lower.
type Binding struct {
	Buffer   string
	Dir      ir.Direction
	Patterns []access.Pattern
}

// Hoistable reports whether every pattern is exterior, i.e. the
// buffer's address is invariant across each innermost loop and the
// load or bind may be lifted out of it.
func (b Binding) Hoistable() bool {
	for _, p := range b.Patterns {
		if !p.Exterior {
			return false
		}
	}
	return true
}

// NeedsGuard reports whether any pattern requires the adapter to gate
// iterations before trusting the computed address, either through an
// explicit constraint row or because the pattern is inexact.
func (b Binding) NeedsGuard() bool {
	for _, p := range b.Patterns {
		if !p.Exact || len(p.Constraints) > 0 {
			return true
		}
	}
	return false
}

// Adapter lowers a tiled tree plus buffer bindings into target code.
// Implementations must evaluate every constraint of a guarded binding
// before using its address and define deterministic skip/mask behavior
// for out-of-range iterations.
type Adapter interface {
	Lower(t *ir.Tree, root ir.BlockID, bindings []Binding) error
}

// Bind assembles the bindings for the buffers an adapter intends to
// materialize under root. Every listed buffer must be accessed in the
// subtree; a missing one surfaces as access.UnknownBufferError.
func Bind(t *ir.Tree, root ir.BlockID, buffers ...string) ([]Binding, error) {
	bindings := make([]Binding, 0, len(buffers))
	for _, buffer := range buffers {
		pats, err := access.Require(t, root, buffer)
		if err != nil {
			return nil, err
		}
		bindings = append(bindings, Binding{
			Buffer:   buffer,
			Dir:      refDirection(t, root, buffer),
			Patterns: pats,
		})
	}
	return bindings, nil
}

// refDirection finds the first refinement for the buffer in depth-first
// order and reports its direction; Bind only calls this for buffers
// known to be refined somewhere in the subtree.
func refDirection(t *ir.Tree, id ir.BlockID, buffer string) ir.Direction {
	if ref, ok := t.Block(id).Refinement(buffer); ok {
		return ref.Dir
	}
	for _, kid := range t.Children(id) {
		if dir := refDirection(t, kid, buffer); dir != "" {
			return dir
		}
	}
	return ""
}
