package sema

import "github.com/dekarrin/dooble/internal/ast"

// Run executes all five sub-phases of the semantic pass over one
// translation unit (spec.md §4.4), P2 first (P1 reads the global table P2
// fills), then P1, P3, P4 and P5. Each sub-phase must complete before the
// next begins; Run stops early and returns false as soon as a sub-phase
// whose failure would make later phases meaningless reports one (P3's
// topological sort failing leaves nothing to resolve types in order of).
// Diagnostics from every phase that did run are left in g.Sink regardless
// of the return value.
func Run(g *Globals, root ast.NodeRef) bool {
	g.P2CollectGlobals(root)

	g.P1VerifyAliases()

	order, ok := g.P3TopoSort()
	if !ok {
		return false
	}

	scope := NewScopeStack()
	g.P4ResolveGlobals(order, scope)

	return g.P5Verify(root, scope) && !g.Sink.HasErrors()
}
