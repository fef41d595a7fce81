package parse

import (
	"strings"
	"testing"

	"github.com/dekarrin/dooble/internal/ast"
	"github.com/dekarrin/dooble/internal/diag"
	"github.com/dekarrin/dooble/internal/lex"
	"github.com/dekarrin/dooble/internal/typetree"
	"github.com/stretchr/testify/assert"
)

func parseSource(t *testing.T, src string) (*ast.Pool, ast.NodeRef, *diag.Sink) {
	t.Helper()
	sink := &diag.Sink{}
	toks := lex.New([]byte(src), sink).Lex()
	assert.False(t, sink.HasErrors(), "lexing %q should not error", src)

	pool, root := Parse(toks, []byte(src), typetree.NewTree(), sink)
	return pool, root, sink
}

func Test_Parse_root_isBlockAtIndexZero(t *testing.T) {
	pool, root, _ := parseSource(t, "x := 1\n")
	assert.Equal(t, ast.NodeRef(0), root)
	assert.Equal(t, ast.KindBlock, pool.Get(root).Kind)
}

func Test_Parse_decl_constVsVar(t *testing.T) {
	pool, root, sink := parseSource(t, "x := 1\ny :: 2\n")
	assert.False(t, sink.HasErrors())

	stmts := pool.Get(root).Block.Stmts
	assert.Len(t, stmts, 2)

	x := pool.Get(stmts[0])
	assert.Equal(t, ast.KindDecl, x.Kind)
	assert.False(t, x.Decl.IsConst)
	assert.Equal(t, "x", x.Decl.Name)

	y := pool.Get(stmts[1])
	assert.True(t, y.Decl.IsConst)
	assert.Equal(t, "y", y.Decl.Name)
}

func Test_Parse_decl_qualifiersAnyOrder(t *testing.T) {
	pool, root, sink := parseSource(t, "x final pub : int = 1\n")
	assert.False(t, sink.HasErrors())

	decl := pool.Get(pool.Get(root).Block.Stmts[0])
	assert.True(t, decl.Decl.Quals.Final)
	assert.True(t, decl.Decl.Quals.Pub)
	assert.True(t, decl.Decl.HasType)
}

// Test_Parse_callChain is scenario S6.
func Test_Parse_callChain(t *testing.T) {
	pool, root, sink := parseSource(t, "hello_world(1,2,)(3)(4,5)(6,).hi(7,8,9)\n")
	assert.False(t, sink.HasErrors())

	top := pool.Get(pool.Get(root).Block.Stmts[0])
	assert.Equal(t, ast.KindCall, top.Kind)
	assert.Len(t, top.Call.Args, 3)

	sub := pool.Get(top.Call.Caller)
	assert.Equal(t, ast.KindSubMember, sub.Kind)
	assert.Equal(t, "hi", sub.SubMember.Name)

	call6 := pool.Get(sub.SubMember.Expr)
	assert.Equal(t, ast.KindCall, call6.Kind)
	assert.Len(t, call6.Call.Args, 1)

	call45 := pool.Get(call6.Call.Caller)
	assert.Len(t, call45.Call.Args, 2)

	call3 := pool.Get(call45.Call.Caller)
	assert.Len(t, call3.Call.Args, 1)

	call12 := pool.Get(call3.Call.Caller)
	assert.Len(t, call12.Call.Args, 2)

	ident := pool.Get(call12.Call.Caller)
	assert.Equal(t, ast.KindLiteral, ident.Kind)
	assert.Equal(t, ast.LitIdent, ident.Literal.LitKind)
	assert.Equal(t, "hello_world", ident.Literal.SVal)
}

// Test_Parse_functionLiteralDisambiguation is scenario S7.
func Test_Parse_functionLiteralDisambiguation(t *testing.T) {
	pool, root, sink := parseSource(t, "func :: () {}\n")
	assert.False(t, sink.HasErrors())

	decl := pool.Get(pool.Get(root).Block.Stmts[0])
	fn := pool.Get(decl.Decl.Assign)
	assert.Equal(t, ast.KindFunction, fn.Kind)
	assert.False(t, fn.Function.HasRetType)
	assert.Empty(t, fn.Function.Args)
	assert.Empty(t, pool.Get(fn.Function.Body).Block.Stmts)
}

func Test_Parse_parenthesizedExprNotFunctionLiteral(t *testing.T) {
	pool, root, sink := parseSource(t, "x := (1 + 2) * 3\n")
	assert.False(t, sink.HasErrors())

	decl := pool.Get(pool.Get(root).Block.Stmts[0])
	mul := pool.Get(decl.Decl.Assign)
	assert.Equal(t, ast.KindBinOp, mul.Kind)
	assert.Equal(t, lex.KindStar, mul.BinOp.Op)

	add := pool.Get(mul.BinOp.Left)
	assert.Equal(t, ast.KindBinOp, add.Kind)
	assert.Equal(t, lex.KindPlus, add.BinOp.Op)
}

func Test_Parse_functionLiteralWithReturnType(t *testing.T) {
	pool, root, sink := parseSource(t, "my_func :: (a: int, b: int) int {\n return a + b\n}\n")
	assert.False(t, sink.HasErrors())

	decl := pool.Get(pool.Get(root).Block.Stmts[0])
	fn := pool.Get(decl.Decl.Assign)
	assert.Equal(t, ast.KindFunction, fn.Kind)
	assert.True(t, fn.Function.HasRetType)
	assert.Len(t, fn.Function.Args, 2)

	body := pool.Get(fn.Function.Body)
	assert.Len(t, body.Block.Stmts, 1)
	ret := pool.Get(body.Block.Stmts[0])
	assert.Equal(t, ast.KindReturn, ret.Kind)

	retExpr := pool.Get(ret.Return.Expr)
	assert.Equal(t, ast.KindBinOp, retExpr.Kind)
	assert.Equal(t, lex.KindPlus, retExpr.BinOp.Op)
}

// Test_Parse_functionLiteralWithArrowReturnType covers the explicit-arrow
// return-type form, which the bare-return-type form in
// Test_Parse_functionLiteralWithReturnType does not exercise.
func Test_Parse_functionLiteralWithArrowReturnType(t *testing.T) {
	pool, root, sink := parseSource(t, "my_func :: (a: int) -> int {\n return a\n}\n")
	assert.False(t, sink.HasErrors())

	decl := pool.Get(pool.Get(root).Block.Stmts[0])
	fn := pool.Get(decl.Decl.Assign)
	assert.Equal(t, ast.KindFunction, fn.Kind)
	assert.True(t, fn.Function.HasRetType)
	assert.Len(t, fn.Function.Args, 1)

	body := pool.Get(fn.Function.Body)
	assert.Len(t, body.Block.Stmts, 1)
	ret := pool.Get(body.Block.Stmts[0])
	assert.Equal(t, ast.KindReturn, ret.Kind)
	assert.NotEqual(t, ast.NilRef, ret.Return.Expr)
}

func Test_Parse_bareReturnHasNoExpr(t *testing.T) {
	pool, root, sink := parseSource(t, "my_func :: () {\n return\n}\n")
	assert.False(t, sink.HasErrors())

	decl := pool.Get(pool.Get(root).Block.Stmts[0])
	fn := pool.Get(decl.Decl.Assign)
	body := pool.Get(fn.Function.Body)
	assert.Len(t, body.Block.Stmts, 1)
	ret := pool.Get(body.Block.Stmts[0])
	assert.Equal(t, ast.KindReturn, ret.Kind)
	assert.Equal(t, ast.NilRef, ret.Return.Expr)
}

func Test_Parse_ifElif(t *testing.T) {
	pool, root, sink := parseSource(t, "if a { x := 1 } elif b { x := 2 } else { x := 3 }\n")
	assert.False(t, sink.HasErrors())

	top := pool.Get(pool.Get(root).Block.Stmts[0])
	assert.Equal(t, ast.KindIf, top.Kind)
	assert.NotEqual(t, ast.NilRef, top.If.ElseCase)

	elif := pool.Get(top.If.ElseCase)
	assert.Equal(t, ast.KindIf, elif.Kind)
	assert.NotEqual(t, ast.NilRef, elif.If.ElseCase)

	els := pool.Get(elif.If.ElseCase)
	assert.Equal(t, ast.KindBlock, els.Kind)
}

func Test_Parse_forEach(t *testing.T) {
	pool, root, sink := parseSource(t, "for &x in 1..10 { y := x }\n")
	assert.False(t, sink.HasErrors())

	top := pool.Get(pool.Get(root).Block.Stmts[0])
	assert.Equal(t, ast.KindForEach, top.Kind)
	assert.True(t, top.ForEach.ByRef)
	assert.Equal(t, "x", top.ForEach.Ident)

	rng := pool.Get(top.ForEach.Range)
	assert.Equal(t, ast.KindBinOp, rng.Kind)
	assert.Equal(t, lex.KindDotDot, rng.BinOp.Op)
}

func Test_Parse_forWhile(t *testing.T) {
	pool, root, sink := parseSource(t, "for a < 10 { a := a + 1 }\n")
	assert.False(t, sink.HasErrors())

	top := pool.Get(pool.Get(root).Block.Stmts[0])
	assert.Equal(t, ast.KindForWhile, top.Kind)
}

func Test_Parse_doForEach(t *testing.T) {
	pool, root, sink := parseSource(t, "do { x := 1 } for y in 1..3\n")
	assert.False(t, sink.HasErrors())

	top := pool.Get(pool.Get(root).Block.Stmts[0])
	assert.Equal(t, ast.KindDoEach, top.Kind)
	assert.Equal(t, "y", top.ForEach.Ident)
	assert.Equal(t, ast.KindBlock, pool.Get(top.ForEach.Stmt).Kind)
}

func Test_Parse_dontForWhile(t *testing.T) {
	pool, root, sink := parseSource(t, "don't { x := 1 } for a\n")
	assert.False(t, sink.HasErrors())

	top := pool.Get(pool.Get(root).Block.Stmts[0])
	assert.Equal(t, ast.KindDontWhile, top.Kind)
}

func Test_Parse_typeAliasDecl(t *testing.T) {
	tree := typetree.NewTree()
	sink := &diag.Sink{}
	toks := lex.New([]byte("Point :: struct { x: int; y: int }\n"), sink).Lex()
	assert.False(t, sink.HasErrors())

	pool, root := Parse(toks, nil, tree, sink)
	assert.False(t, sink.HasErrors())

	decl := pool.Get(pool.Get(root).Block.Stmts[0])
	assert.Equal(t, ast.NilRef, decl.Decl.Assign, "a type-alias decl contributes no runtime value")

	named := tree.GetLeaf(typetree.NoParent, typetree.Leaf{Tag: typetree.TagName, Name: "Point"})
	resolved := tree.ResolveAlias(named)
	leaf := tree.Lookup(resolved)
	assert.Equal(t, typetree.TagStruct, leaf.Tag)
	assert.Len(t, leaf.Members, 2)
}

func Test_Parse_callArityDiagnostic(t *testing.T) {
	sink := &diag.Sink{}
	var src string
	for i := 0; i < ast.MaxCallArgs+2; i++ {
		if i > 0 {
			src += ","
		}
		src += "1"
	}
	toks := lex.New([]byte("f("+src+")\n"), sink).Lex()
	Parse(toks, nil, typetree.NewTree(), sink)
	assert.True(t, sink.HasErrors())
}

func Test_Parse_typeFSA_optionalArrayName(t *testing.T) {
	tree := typetree.NewTree()
	sink := &diag.Sink{}
	toks := lex.New([]byte("x : ?[10]int = 1\n"), sink).Lex()
	assert.False(t, sink.HasErrors())

	pool, root := Parse(toks, nil, tree, sink)
	assert.False(t, sink.HasErrors())

	decl := pool.Get(pool.Get(root).Block.Stmts[0])
	assert.True(t, decl.Decl.HasType)

	leaf := tree.Lookup(typetree.ID(decl.Decl.TypeRef))
	assert.Equal(t, typetree.TagOpt, leaf.Tag)

	arrLeaf := tree.Lookup(leaf.Parent)
	assert.Equal(t, typetree.TagArr, arrLeaf.Tag)
	assert.Equal(t, 10, arrLeaf.ArrSize)

	nameLeaf := tree.Lookup(arrLeaf.Parent)
	assert.Equal(t, typetree.TagName, nameLeaf.Tag)
	assert.Equal(t, "int", nameLeaf.Name)
}

func Test_Parse_typeFSA_missingTypeListsStarters(t *testing.T) {
	sink := &diag.Sink{}
	toks := lex.New([]byte("x : ,\n"), sink).Lex()
	Parse(toks, nil, typetree.NewTree(), sink)

	assert.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.All() {
		if strings.Contains(d.Error(), "expected a type, starting with one of") {
			found = true
		}
	}
	assert.True(t, found, "expected a diagnostic naming the allowed type starters")
}
