package ast

import "github.com/dekarrin/dooble/internal/diag"

// Pool is the contiguous growable arena that owns every Node produced while
// parsing one translation unit. Its first element is always a Block (the
// translation-unit scope, spec.md §3.2).
type Pool struct {
	nodes []Node
}

// NewPool returns an empty Pool with room for n nodes before its first
// reallocation.
func NewPool(n int) *Pool {
	return &Pool{nodes: make([]Node, 0, n)}
}

// Append adds node to the pool and returns a stable NodeRef to it. Because
// children are referenced by index rather than pointer, growing the backing
// slice never invalidates a previously returned NodeRef.
func (p *Pool) Append(node Node) NodeRef {
	p.nodes = append(p.nodes, node)
	return NodeRef(len(p.nodes) - 1)
}

// Get returns the Node at ref. Panics with diag.InternalError if ref is out
// of range: an out-of-range ref can only come from a bug in the parser or
// semantic pass, not from malformed input.
func (p *Pool) Get(ref NodeRef) *Node {
	if ref < 0 || int(ref) >= len(p.nodes) {
		diag.Panic("ast: NodeRef %d out of range (pool has %d nodes)", ref, len(p.nodes))
	}
	return &p.nodes[ref]
}

// Len returns the number of nodes currently in the pool.
func (p *Pool) Len() int {
	return len(p.nodes)
}

// Root returns a NodeRef to the pool's first node, the translation unit's
// top-level Block.
func (p *Pool) Root() NodeRef {
	return NodeRef(0)
}
