package sema

import (
	"testing"

	"github.com/dekarrin/dooble/internal/diag"
	"github.com/dekarrin/dooble/internal/lex"
	"github.com/dekarrin/dooble/internal/parse"
	"github.com/dekarrin/dooble/internal/typetree"
	"github.com/stretchr/testify/assert"
)

func compile(t *testing.T, src string) *Globals {
	t.Helper()
	sink := &diag.Sink{}
	toks := lex.New([]byte(src), sink).Lex()
	assert.False(t, sink.HasErrors(), "lexing %q should not error", src)

	types := typetree.NewTree()
	pool, root := parse.Parse(toks, []byte(src), types, sink)
	assert.False(t, sink.HasErrors(), "parsing %q should not error", src)

	g := NewGlobals(pool, types, sink)
	g.P2CollectGlobals(root)
	return g
}

func Test_Globals_collectsConstantsOnly(t *testing.T) {
	g := compile(t, "a :: 1\nb := 2\n")
	assert.NotNil(t, g.Lookup("a"))
	assert.Nil(t, g.Lookup("b"), "var decl is not a global symbol")
}

func Test_Globals_dependencyEdges(t *testing.T) {
	g := compile(t, "a :: 1\nb :: a + 1\n")

	a := g.Lookup("a")
	b := g.Lookup("b")
	assert.Equal(t, 1, a.ParentCount, "a has one dependent: b")
	assert.Equal(t, 0, b.ParentCount)
	assert.Equal(t, []string{"a"}, b.Deps)
}

func Test_Globals_callOnlyWalksCaller(t *testing.T) {
	g := compile(t, "f :: 1\na :: 2\nb :: f(a)\n")
	b := g.Lookup("b")
	assert.Equal(t, []string{"f"}, b.Deps, "call arguments are not walked for dependencies")
}

func Test_TopoSort_ordersDependenciesFirst(t *testing.T) {
	g := compile(t, "b :: a + 1\na :: 1\n")
	order, ok := g.P3TopoSort()
	assert.True(t, ok)

	idxA, idxB := indexOf(order, "a"), indexOf(order, "b")
	assert.True(t, idxA < idxB, "a must precede b in topological order")
}

// Test_TopoSort_circularDependency is scenario S5.
func Test_TopoSort_circularDependency(t *testing.T) {
	g := compile(t, "A :: B\nB :: A\n")
	_, ok := g.P3TopoSort()
	assert.False(t, ok)
	assert.True(t, g.Sink.HasErrors())

	found := false
	for _, d := range g.Sink.All() {
		if d.Kind == diag.Semantic {
			found = true
		}
	}
	assert.True(t, found, "expected a semantic diagnostic reporting the cycle")
}

func Test_ResolveGlobals_infersArithmeticType(t *testing.T) {
	g := compile(t, "a :: 1\nb :: a + 2\n")
	order, ok := g.P3TopoSort()
	assert.True(t, ok)

	scope := NewScopeStack()
	g.P4ResolveGlobals(order, scope)

	b := g.Lookup("b")
	assert.Equal(t, g.Types.BasicType(typetree.IntIndex), b.Type)
}

func Test_ResolveGlobals_mismatchedArithmeticTypesIsVoid(t *testing.T) {
	g := compile(t, "a :: 1\nb :: true\nc :: a + b\n")
	order, ok := g.P3TopoSort()
	assert.True(t, ok)

	scope := NewScopeStack()
	g.P4ResolveGlobals(order, scope)

	c := g.Lookup("c")
	assert.Equal(t, typetree.Void, c.Type)
	assert.True(t, g.Sink.HasErrors())
}

func Test_Run_fullPipelineSucceedsOnValidUnit(t *testing.T) {
	sink := &diag.Sink{}
	src := "a :: 1\nb :: a + 2\nmain :: () { x := a + b }\n"
	toks := lex.New([]byte(src), sink).Lex()
	assert.False(t, sink.HasErrors())

	types := typetree.NewTree()
	pool, root := parse.Parse(toks, []byte(src), types, sink)
	assert.False(t, sink.HasErrors())

	g := NewGlobals(pool, types, sink)
	assert.True(t, Run(g, root))
	assert.False(t, sink.HasErrors())
}

func Test_Run_functionBodyWithReturnVerifiesSuccessfully(t *testing.T) {
	sink := &diag.Sink{}
	src := "my_func :: (a: int, b: int) int {\n return a + b\n}\n"
	toks := lex.New([]byte(src), sink).Lex()
	assert.False(t, sink.HasErrors())

	types := typetree.NewTree()
	pool, root := parse.Parse(toks, []byte(src), types, sink)
	assert.False(t, sink.HasErrors())

	g := NewGlobals(pool, types, sink)
	assert.True(t, Run(g, root))
	assert.False(t, sink.HasErrors())
}

func Test_Run_functionReturningMismatchedTypeFails(t *testing.T) {
	sink := &diag.Sink{}
	src := "my_func :: (a: int) int {\n return true\n}\n"
	toks := lex.New([]byte(src), sink).Lex()
	assert.False(t, sink.HasErrors())

	types := typetree.NewTree()
	pool, root := parse.Parse(toks, []byte(src), types, sink)
	assert.False(t, sink.HasErrors())

	g := NewGlobals(pool, types, sink)
	assert.False(t, Run(g, root), "returning bool from an int-declared function must fail verification")
	assert.True(t, sink.HasErrors())
}

func Test_ScopeStack_shadowingOuterDeclRecordsWarningNotError(t *testing.T) {
	sink := &diag.Sink{}
	src := "my_func :: () {\n x := 1\n if true {\n  x := 2\n }\n}\n"
	toks := lex.New([]byte(src), sink).Lex()
	assert.False(t, sink.HasErrors())

	types := typetree.NewTree()
	pool, root := parse.Parse(toks, []byte(src), types, sink)
	assert.False(t, sink.HasErrors())

	g := NewGlobals(pool, types, sink)
	assert.True(t, Run(g, root))
	assert.False(t, sink.HasErrors(), "shadowing is a warning, not an error")
	assert.True(t, sink.HasWarnings())
}

func Test_ScopeStack_pushPopShadowing(t *testing.T) {
	s := NewScopeStack()
	s.Insert("x", 1)
	s.Push()
	s.Insert("x", 2)

	v, ok := s.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, typetree.ID(2), v)

	s.Pop()
	v, ok = s.Lookup("x")
	assert.True(t, ok)
	assert.Equal(t, typetree.ID(1), v)
}

func indexOf(ss []string, s string) int {
	for i, v := range ss {
		if v == s {
			return i
		}
	}
	return -1
}
