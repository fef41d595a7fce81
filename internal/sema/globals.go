// Package sema implements the semantic pass (spec.md §3.4/§4.4): global
// symbol collection and dependency analysis, topological ordering of
// constant declarations, type inference for expressions, and scope-aware
// full verification. It runs after internal/parse has produced an AST pool
// and a typetree.Tree already carrying every type alias registered during
// parsing.
package sema

import (
	"github.com/dekarrin/dooble/internal/ast"
	"github.com/dekarrin/dooble/internal/diag"
	"github.com/dekarrin/dooble/internal/typetree"
	"github.com/google/uuid"
)

// maxSymbolNameLen is the 40-byte cap the reference implementation's
// hash_str imposes on symbol-table keys (spec.md §9 Open Question 3). Go
// strings have no such limit, so it is kept only as an enforced diagnostic
// at insertion rather than a real storage constraint.
const maxSymbolNameLen = 40

// SymbolInfo is a global symbol's entry in Globals, one per top-level
// constant declaration (spec.md §3.4).
type SymbolInfo struct {
	Name    string
	Decl    ast.NodeRef
	Type    typetree.ID // typetree.Void until P4 resolves it
	HasType bool        // true if Decl declared an explicit type

	Visited          bool
	ActiveVisitation bool
	ParentCount      int // in-degree: |{x : y depends on x}|

	Deps []string // names this symbol's rvalue references
}

// Globals is the global symbol table (spec.md §3.4): a mapping from symbol
// name to SymbolInfo, plus the AST pool and TypeTree it was built over.
type Globals struct {
	UnitID uuid.UUID

	Pool  *ast.Pool
	Types *typetree.Tree
	Sink  *diag.Sink

	table map[string]*SymbolInfo
	order []string // insertion order, for deterministic iteration
}

// NewGlobals prepares an empty symbol table for one translation unit.
func NewGlobals(pool *ast.Pool, types *typetree.Tree, sink *diag.Sink) *Globals {
	return &Globals{
		UnitID: uuid.New(),
		Pool:   pool,
		Types:  types,
		Sink:   sink,
		table:  make(map[string]*SymbolInfo),
	}
}

// Lookup returns the SymbolInfo for name, or nil if it is not a global.
func (g *Globals) Lookup(name string) *SymbolInfo {
	return g.table[name]
}

// Names returns every global symbol name in insertion order.
func (g *Globals) Names() []string {
	return g.order
}

// P2CollectGlobals walks the top-level Block root and, for every constant
// Decl, inserts a SymbolInfo (ported from semantic.c's add_symbols) and
// records dependency edges from its rvalue (ported from
// visit_restrictions/add_restriction).
func (g *Globals) P2CollectGlobals(root ast.NodeRef) {
	block := g.Pool.Get(root)
	if block.Kind != ast.KindBlock {
		diag.Panic("cannot add symbols from non-block")
	}

	for _, stmtRef := range block.Block.Stmts {
		stmt := g.Pool.Get(stmtRef)
		if stmt.Kind != ast.KindDecl || !stmt.Decl.IsConst {
			continue
		}
		g.addGlobal(stmtRef, stmt)
	}

	for _, stmtRef := range block.Block.Stmts {
		stmt := g.Pool.Get(stmtRef)
		if stmt.Kind != ast.KindDecl || !stmt.Decl.IsConst {
			continue
		}
		info := g.table[stmt.Decl.Name]
		if info == nil || stmt.Decl.Assign == ast.NilRef {
			continue
		}
		g.collectDependencies(info, stmt.Decl.Assign)
	}
}

func (g *Globals) addGlobal(ref ast.NodeRef, n *ast.Node) {
	name := n.Decl.Name
	if len(name) > maxSymbolNameLen {
		g.Sink.Errorf(diag.Semantic, n.Line, 1, "",
			"symbol name %q exceeds the %d-byte limit", name, maxSymbolNameLen)
		return
	}

	info := &SymbolInfo{
		Name:    name,
		Decl:    ref,
		Type:    typetree.Void,
		HasType: n.Decl.HasType,
	}
	if info.HasType {
		info.Type = typetree.ID(n.Decl.TypeRef)
	}

	g.table[name] = info
	g.order = append(g.order, name)
}

// collectDependencies walks an rvalue recursively looking for identifier
// literals, each of which becomes a dependency edge from owner to that
// name. This is visit_restrictions from semantic.c: EX_CALL only descends
// into the caller (argument evaluation isn't needed for type inference or
// compile-time constant folding), and EX_SUBMEMBER only descends into its
// base expression.
func (g *Globals) collectDependencies(owner *SymbolInfo, ref ast.NodeRef) {
	if ref == ast.NilRef {
		return
	}
	n := g.Pool.Get(ref)

	switch n.Kind {
	case ast.KindBinOp:
		g.collectDependencies(owner, n.BinOp.Left)
		g.collectDependencies(owner, n.BinOp.Right)
	case ast.KindUnary:
		g.collectDependencies(owner, n.Unary.Expr)
	case ast.KindCall:
		g.collectDependencies(owner, n.Call.Caller)
	case ast.KindSubMember:
		g.collectDependencies(owner, n.SubMember.Expr)
	case ast.KindLiteral:
		if n.Literal.LitKind == ast.LitIdent {
			g.addDependency(owner, n.Literal.SVal)
		}
	}
}

func (g *Globals) addDependency(owner *SymbolInfo, depName string) {
	dep := g.table[depName]
	if dep == nil {
		// Not a global (a local, builtin, or forward-unresolvable name);
		// P4/P5 will catch a genuinely unknown identifier via scope lookup.
		return
	}
	owner.Deps = append(owner.Deps, depName)
	dep.ParentCount++
}

// P1VerifyAliases is the alias-materialization check (spec.md §4.4 P1): the
// TypeTree already has every Name->target alias recorded during parsing
// (internal/parse's parseTypeAliasRHS); here every Name leaf reachable from
// a global's declared type must resolve to either a primitive or a
// registered alias, never dangle.
func (g *Globals) P1VerifyAliases() {
	for _, name := range g.order {
		info := g.table[name]
		if !info.HasType {
			continue
		}
		g.verifyAliasChain(info.Type)
	}
}

func (g *Globals) verifyAliasChain(id typetree.ID) {
	if id == typetree.Void {
		return
	}
	leaf := g.Types.Lookup(id)
	if leaf.Tag == typetree.TagName {
		resolved := g.Types.ResolveAlias(id)
		if resolved == id && !isPrimitiveName(leaf.Name) {
			g.Sink.Errorf(diag.Semantic, 0, 0, "",
				"type %q has no backing alias and is not primitive", leaf.Name)
		}
	}
}

func isPrimitiveName(name string) bool {
	switch name {
	case "int", "float", "dooble", "bool", "string", "char", "null":
		return true
	default:
		return false
	}
}
