package sema

import "github.com/dekarrin/dooble/internal/diag"

// frame is one level of the explicit DFS stack (topo_DFS_util's
// DFSWalkElement): the symbol currently being visited and the index of the
// next dependency to descend into. Using an explicit stack sized at the
// global symbol count avoids native call-stack overflow on deep dependency
// chains (spec.md §4.4 data structure note).
type frame struct {
	info *SymbolInfo
	i    int
}

// P3TopoSort produces an ordering of every global symbol such that each
// dependency precedes its dependents (spec.md §4.4 P3). It starts a DFS from
// every root (parent_count == 0) and reports a cycle, by name, the moment
// the walk re-enters a symbol already active on the stack. Once the
// root-driven walks are exhausted, each symbol still unvisited — one on or
// below a pure cycle with no root at all, as in scenario S5 — is walked the
// same way, which re-enters that cycle and reports it.
func (g *Globals) P3TopoSort() (order []string, ok bool) {
	for _, name := range g.order {
		info := g.table[name]
		if info.ParentCount != 0 {
			continue
		}
		if !g.topoDFS(info, &order) {
			return nil, false
		}
	}

	for _, name := range g.order {
		info := g.table[name]
		if info.Visited {
			continue
		}
		if !g.topoDFS(info, &order) {
			return nil, false
		}
	}

	return order, true
}

func (g *Globals) topoDFS(root *SymbolInfo, order *[]string) bool {
	stack := []frame{{root, 0}}
	root.Visited = true
	root.ActiveVisitation = true

	for len(stack) > 0 {
		top := &stack[len(stack)-1]

		if top.i >= len(top.info.Deps) {
			top.info.ActiveVisitation = false
			*order = append(*order, top.info.Name)
			stack = stack[:len(stack)-1]
			continue
		}

		depName := top.info.Deps[top.i]
		top.i++

		child := g.table[depName]
		if child == nil {
			continue // not a global symbol; nothing further to order
		}

		if child.ActiveVisitation {
			g.Sink.Errorf(diag.Semantic, 0, 0, "",
				"circular variable dependency: %s referenced in %s",
				top.info.Name, child.Name)
			return false
		}
		if !child.Visited {
			child.Visited = true
			child.ActiveVisitation = true
			stack = append(stack, frame{child, 0})
		}
	}

	return true
}
