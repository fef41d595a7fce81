package sema

import (
	"github.com/dekarrin/dooble/internal/ast"
	"github.com/dekarrin/dooble/internal/diag"
	"github.com/dekarrin/dooble/internal/lex"
	"github.com/dekarrin/dooble/internal/typetree"
)

// P4ResolveGlobals walks the topological order produced by P3TopoSort and,
// for every symbol with no declared type, infers one from its rvalue
// (spec.md §4.4 P4). Symbols that already carry an explicit declared type
// are left alone — resolveType is only ever asked to fill in the gaps.
func (g *Globals) P4ResolveGlobals(order []string, scope *ScopeStack) {
	for _, name := range order {
		info := g.table[name]
		if info.HasType {
			continue
		}
		if info.Decl == ast.NilRef {
			continue
		}
		decl := g.Pool.Get(info.Decl)
		if decl.Decl.Assign == ast.NilRef {
			continue // type-alias decl; nothing to infer
		}
		info.Type = g.resolveType(decl.Decl.Assign, scope)
	}
}

// resolveType is resolve_type from semantic.c: fully functional on the AST,
// mutating only the TypeTree (by interning new leaves for function
// literals). It returns typetree.Void and emits a diagnostic on failure.
func (g *Globals) resolveType(ref ast.NodeRef, scope *ScopeStack) typetree.ID {
	if ref == ast.NilRef {
		return typetree.Void
	}
	n := g.Pool.Get(ref)

	switch n.Kind {
	case ast.KindBinOp:
		return g.resolveBinOp(&n.BinOp, scope)
	case ast.KindUnary:
		return g.resolveUnary(&n.Unary, scope)
	case ast.KindCall:
		return g.resolveType(n.Call.Caller, scope)
	case ast.KindSubMember:
		return g.resolveSubMember(&n.SubMember, scope)
	case ast.KindFunction:
		return g.resolveFunction(&n.Function, scope)
	case ast.KindLiteral:
		return g.resolveLiteral(&n.Literal, n.Line, scope)
	default:
		return typetree.Void
	}
}

func (g *Globals) resolveLiteral(lit *ast.LiteralNode, line int, scope *ScopeStack) typetree.ID {
	switch lit.LitKind {
	case ast.LitStr:
		return g.Types.BasicType(typetree.StringIndex)
	case ast.LitBool:
		return g.Types.BasicType(typetree.BoolIndex)
	case ast.LitInt:
		return g.Types.BasicType(typetree.IntIndex)
	case ast.LitFloat:
		return g.Types.BasicType(typetree.DoobleIndex)
	case ast.LitNil:
		return g.Types.BasicType(typetree.NullIndex)
	case ast.LitIdent:
		if scope != nil {
			if t, ok := scope.Lookup(lit.SVal); ok {
				return t
			}
		}
		if info := g.table[lit.SVal]; info != nil {
			return info.Type
		}
		g.Sink.Errorf(diag.Semantic, line, 1, "", "undefined identifier %q", lit.SVal)
		return typetree.Void
	default:
		g.Sink.Errorf(diag.Semantic, line, 1, "", "unresolvable literal kind")
		return typetree.Void
	}
}

func (g *Globals) resolveUnary(u *ast.UnaryNode, scope *ScopeStack) typetree.ID {
	t := g.resolveType(u.Expr, scope)
	if t == typetree.Void {
		return typetree.Void
	}

	switch u.Op {
	case lex.KindNot:
		if t != g.Types.BasicType(typetree.BoolIndex) {
			g.Sink.Errorf(diag.Semantic, 0, 0, "", "'not' operator must be followed by a boolean expression")
			return typetree.Void
		}
		return t
	case lex.KindMinus:
		if !g.isNumeric(t) {
			g.Sink.Errorf(diag.Semantic, 0, 0, "", "unary '-' must be followed by a numeric expression")
			return typetree.Void
		}
		return t
	case lex.KindStar:
		return g.Types.AsPointer(t)
	case lex.KindAmper:
		return g.Types.AsAddress(t)
	default:
		diag.Panic("resolveUnary: unhandled operator %v", u.Op)
		return typetree.Void
	}
}

func (g *Globals) resolveBinOp(b *ast.BinOpNode, scope *ScopeStack) typetree.ID {
	typeA := g.resolveType(b.Left, scope)
	typeB := g.resolveType(b.Right, scope)
	if typeA == typetree.Void || typeB == typetree.Void {
		return typetree.Void
	}

	switch b.Op {
	case lex.KindAnd, lex.KindOr:
		if typeA != typeB {
			g.Sink.Errorf(diag.Semantic, 0, 0, "", "mismatched types in expression")
			return typetree.Void
		}
		if typeA != g.Types.BasicType(typetree.BoolIndex) {
			g.Sink.Errorf(diag.Semantic, 0, 0, "", "both sides of 'and'/'or' are not boolean expressions")
			return typetree.Void
		}
		return typeA

	case lex.KindIs, lex.KindNot:
		if typeA != typeB {
			g.Sink.Errorf(diag.Semantic, 0, 0, "", "mismatched types in expression")
			return typetree.Void
		}
		return typeA

	case lex.KindAmper, lex.KindBitOr, lex.KindDotDot,
		lex.KindLess, lex.KindLessEq, lex.KindGreater, lex.KindGreaterEq,
		lex.KindStar, lex.KindPlus, lex.KindSlash, lex.KindMinus:
		if typeA != typeB {
			g.Sink.Errorf(diag.Semantic, 0, 0, "", "mismatched types in expression")
			return typetree.Void
		}
		if !g.isNumeric(typeA) {
			g.Sink.Errorf(diag.Semantic, 0, 0, "", "both sides of arithmetic expression are not number expressions")
			return typetree.Void
		}
		return typeA

	default:
		diag.Panic("resolveBinOp: unhandled operator %v", b.Op)
		return typetree.Void
	}
}

func (g *Globals) isNumeric(t typetree.ID) bool {
	return t == g.Types.BasicType(typetree.IntIndex) ||
		t == g.Types.BasicType(typetree.FloatIndex) ||
		t == g.Types.BasicType(typetree.DoobleIndex)
}

// resolveSubMember is the SubMember type-inference rule spec.md §9 leaves
// open: resolve the struct/union type of expr (through any Name alias),
// then look up name in its member list. A missing member is a semantic
// diagnostic, not a panic (the reference implementation's resolve_type
// simply PANICs here with a "not available yet" TODO).
func (g *Globals) resolveSubMember(m *ast.SubMemberNode, scope *ScopeStack) typetree.ID {
	baseType := g.resolveType(m.Expr, scope)
	if baseType == typetree.Void {
		return typetree.Void
	}

	resolved := g.Types.ResolveAlias(baseType)
	leaf := g.Types.Lookup(resolved)
	if leaf.Tag != typetree.TagStruct && leaf.Tag != typetree.TagUnion {
		g.Sink.Errorf(diag.Semantic, 0, 0, "", "cannot access member %q on a non-aggregate type", m.Name)
		return typetree.Void
	}

	for _, member := range leaf.Members {
		if member.Name == m.Name {
			return member.Type
		}
	}

	g.Sink.Errorf(diag.Semantic, 0, 0, "", "no member %q on type", m.Name)
	return typetree.Void
}

// resolveFunction interns a Fn leaf over a function literal's argument
// types and (if present) its declared return type.
func (g *Globals) resolveFunction(fn *ast.FunctionNode, scope *ScopeStack) typetree.ID {
	params := make([]typetree.ID, 0, len(fn.Args))
	for _, argRef := range fn.Args {
		arg := g.Pool.Get(argRef)
		if arg.Decl.HasType {
			params = append(params, typetree.ID(arg.Decl.TypeRef))
		} else {
			params = append(params, typetree.Void)
		}
	}

	ret := typetree.Void
	if fn.HasRetType {
		ret = typetree.ID(fn.RetTypeRef)
	}

	return g.Types.GetLeaf(typetree.NoParent, typetree.Leaf{
		Tag:      typetree.TagFn,
		FnRet:    ret,
		FnParams: params,
	})
}
