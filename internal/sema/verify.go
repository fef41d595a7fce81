package sema

import (
	"github.com/dekarrin/dooble/internal/ast"
	"github.com/dekarrin/dooble/internal/diag"
	"github.com/dekarrin/dooble/internal/lex"
	"github.com/dekarrin/dooble/internal/typetree"
)

// ScopeStack is a stack of open name->type frames, pushed on entering a
// Block and popped on leaving it (spec.md §3.4/§4.4's "Scope-stack
// mechanics"). spec.md §9 calls the reference implementation's
// single-arena, pointer-fixed-up frame layout a micro-optimization "not
// needed for correctness"; this keeps the same push/pop/lookup contract
// with a plain slice of Go maps instead.
type ScopeStack struct {
	frames []map[string]typetree.ID
}

// NewScopeStack returns an empty stack with one frame already pushed, for
// top-level lookups performed before any Block is entered.
func NewScopeStack() *ScopeStack {
	s := &ScopeStack{}
	s.Push()
	return s
}

// Push opens a new frame on entering a Block.
func (s *ScopeStack) Push() {
	s.frames = append(s.frames, make(map[string]typetree.ID))
}

// Pop closes the current frame on leaving a Block.
func (s *ScopeStack) Pop() {
	s.frames = s.frames[:len(s.frames)-1]
}

// Insert records (name, t) in the current top frame only (spec.md §3.4
// invariant).
func (s *ScopeStack) Insert(name string, t typetree.ID) {
	s.frames[len(s.frames)-1][name] = t
}

// Lookup walks frames from top to root, returning the first match.
func (s *ScopeStack) Lookup(name string) (typetree.ID, bool) {
	for i := len(s.frames) - 1; i >= 0; i-- {
		if t, ok := s.frames[i][name]; ok {
			return t, true
		}
	}
	return typetree.Void, false
}

// ShadowsOuter reports whether name is already bound in some frame other
// than the current top one.
func (s *ScopeStack) ShadowsOuter(name string) bool {
	for i := len(s.frames) - 2; i >= 0; i-- {
		if _, ok := s.frames[i][name]; ok {
			return true
		}
	}
	return false
}

// P5Verify walks every statement of root with the given scope stack,
// resolving types and validating control-flow conditions (spec.md §4.4 P5).
// It reports success iff every sub-node it visits resolved to a non-void
// type.
func (g *Globals) P5Verify(root ast.NodeRef, scope *ScopeStack) bool {
	return g.verifyStmt(root, scope, typetree.Void)
}

// verifyStmt verifies stmt and its children. retType is the enclosing
// function's declared return type, or typetree.Void if it has none (or
// there is no enclosing function, as at top level): a KindReturn carrying
// an expression is checked against retType only when retType is non-Void,
// matching the same "nothing to compare against" leniency verifyDecl
// already applies to untyped declarations.
func (g *Globals) verifyStmt(ref ast.NodeRef, scope *ScopeStack, retType typetree.ID) bool {
	if ref == ast.NilRef {
		return true
	}
	n := g.Pool.Get(ref)

	switch n.Kind {
	case ast.KindBlock:
		scope.Push()
		ok := true
		for _, stmt := range n.Block.Stmts {
			if !g.verifyStmt(stmt, scope, retType) {
				ok = false
			}
		}
		scope.Pop()
		return ok

	case ast.KindDecl:
		return g.verifyDecl(&n.Decl, n.Line, scope)

	case ast.KindIf:
		ok := g.verifyCondition(n.If.Condition, n.Line, scope)
		ok = g.verifyStmt(n.If.Stmt, scope, retType) && ok
		if n.If.ElseCase != ast.NilRef {
			ok = g.verifyStmt(n.If.ElseCase, scope, retType) && ok
		}
		return ok

	case ast.KindForEach, ast.KindDoEach, ast.KindDontEach:
		ok := g.verifyRange(n.ForEach.Range, n.Line, scope)
		return g.verifyStmt(n.ForEach.Stmt, scope, retType) && ok

	case ast.KindForWhile, ast.KindDoWhile, ast.KindDontWhile:
		ok := g.verifyCondition(n.ForWhile.Condition, n.Line, scope)
		return g.verifyStmt(n.ForWhile.Stmt, scope, retType) && ok

	case ast.KindPass:
		return true

	case ast.KindReturn:
		if n.Return.Expr == ast.NilRef {
			return true
		}
		t := g.resolveType(n.Return.Expr, scope)
		if t == typetree.Void {
			return false
		}
		if retType != typetree.Void && t != retType {
			g.Sink.Errorf(diag.Semantic, n.Line, 1, "",
				"returned type does not match the function's declared return type")
			return false
		}
		return true

	default:
		// an expression statement
		return g.resolveType(ref, scope) != typetree.Void
	}
}

func (g *Globals) verifyDecl(d *ast.DeclNode, line int, scope *ScopeStack) bool {
	t := typetree.Void
	if d.Assign != ast.NilRef {
		t = g.resolveType(d.Assign, scope)
		if d.HasType && t != typetree.Void && t != typetree.ID(d.TypeRef) {
			g.Sink.Errorf(diag.Semantic, line, 1, "",
				"declared type of %q does not match its assigned expression", d.Name)
			t = typetree.Void
		}
		if rhs := g.Pool.Get(d.Assign); rhs.Kind == ast.KindFunction {
			if !g.verifyFunctionBody(&rhs.Function, scope) {
				t = typetree.Void
			}
		}
	} else if d.HasType {
		t = typetree.ID(d.TypeRef)
	}

	if scope.ShadowsOuter(d.Name) {
		g.Sink.Warnf(diag.Semantic, line, 1, "", "%q shadows a declaration from an outer scope", d.Name)
	}

	scope.Insert(d.Name, t)

	if d.Assign == ast.NilRef {
		return true // type-alias decl: nothing further to verify
	}
	return t != typetree.Void
}

// verifyFunctionBody pushes one frame binding each argument's declared type,
// verifies every body statement within it, then pops. Arguments with no
// declared type are bound as Void; P5 has no inference source for them
// (spec.md §4.4 defers full call-signature checking to P5 generally, and
// parameter type inference from call sites is out of scope entirely).
func (g *Globals) verifyFunctionBody(fn *ast.FunctionNode, scope *ScopeStack) bool {
	scope.Push()
	defer scope.Pop()

	for _, argRef := range fn.Args {
		arg := g.Pool.Get(argRef)
		t := typetree.Void
		if arg.Decl.HasType {
			t = typetree.ID(arg.Decl.TypeRef)
		}
		scope.Insert(arg.Decl.Name, t)
	}

	retType := typetree.Void
	if fn.HasRetType {
		retType = typetree.ID(fn.RetTypeRef)
	}

	ok := true
	body := g.Pool.Get(fn.Body)
	for _, stmt := range body.Block.Stmts {
		if !g.verifyStmt(stmt, scope, retType) {
			ok = false
		}
	}
	return ok
}

func (g *Globals) verifyCondition(ref ast.NodeRef, line int, scope *ScopeStack) bool {
	t := g.resolveType(ref, scope)
	if t != g.Types.BasicType(typetree.BoolIndex) {
		g.Sink.Errorf(diag.Semantic, line, 1, "", "condition must be a boolean expression")
		return false
	}
	return true
}

func (g *Globals) verifyRange(ref ast.NodeRef, line int, scope *ScopeStack) bool {
	if ref == ast.NilRef {
		g.Sink.Errorf(diag.Semantic, line, 1, "", "for-each range is missing")
		return false
	}
	n := g.Pool.Get(ref)
	if n.Kind != ast.KindBinOp || n.BinOp.Op != lex.KindDotDot {
		g.Sink.Errorf(diag.Semantic, line, 1, "", "for-each range must be a '..' expression")
		return false
	}
	return g.resolveType(ref, scope) != typetree.Void
}
