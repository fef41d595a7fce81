// Package target implements the back-end code builder (spec.md §4.5): a
// deferred stream of build operations, separate from emission, so a
// back-end can consume the same stream however it likes. GetGenerated
// (render.go) walks the stream once and renders C; cbackend.go maps
// TypeTree types onto the C declarators that stream carries.
//
// Grounded directly on original_source/codegen/codegen.c's CodeGen: the
// stream is an append-only slice rather than a hand-grown C array
// (TargetAST ast_stack), and rendering is a single forward pass over it
// exactly like the reference's consume/generate pair.
package target

// NodeKind tags the variant a streamNode holds (spec.md §4.5's
// Identifier/Scope/ScopeEnd/Statement/Function/Call/Expression stream
// nodes).
type NodeKind int

const (
	KindIdentifier NodeKind = iota
	KindScope
	KindScopeEnd
	KindStatement
	KindFunction
	KindCall
	KindExpression
)

// CTypeElemTag distinguishes the two kinds of type modifier a CType chain
// can carry (codegen.h's CTypeElement union).
type CTypeElemTag int

const (
	ElemPtr CTypeElemTag = iota
	ElemArr
)

// CTypeElem is one modifier in a CType's chain: a pointer (with its own
// const) or a fixed array size.
type CTypeElem struct {
	Tag     CTypeElemTag
	ArrSize int
	IsConst bool // ElemPtr only
}

// CType is a reversed linear chain of pointer/array modifiers plus a base
// type name, optional const/volatile, and an optional function-pointer
// parameter list (spec.md §4.5 "Type rendering").
type CType struct {
	Modifiers  []CTypeElem
	Params     []CType // non-nil/non-empty marks this a function-pointer type
	IsConst    bool
	IsVolatile bool
	TypeName   string
}

// AddPtr appends a pointer modifier.
func (t *CType) AddPtr(isConst bool) {
	t.Modifiers = append(t.Modifiers, CTypeElem{Tag: ElemPtr, IsConst: isConst})
}

// AddArr appends a fixed-size array modifier.
func (t *CType) AddArr(size int) {
	t.Modifiers = append(t.Modifiers, CTypeElem{Tag: ElemArr, ArrSize: size})
}

// Identifier is a named, typed declarator (codegen.h's Identifier).
type Identifier struct {
	Name     string
	Type     CType
	IsStatic bool
	IsExtern bool
}

type scopeNode struct {
	parent      int // index into the stream, -1 for no parent
	identifiers []Identifier
}

type functionNode struct {
	name       string
	returnType CType
	params     []Identifier
	isStatic   bool
}

type callNode struct {
	name   string
	params int
}

// streamNode is one element of the Builder's deferred stream
// (codegen.c's TargetAST).
type streamNode struct {
	kind NodeKind

	ident Identifier
	scope scopeNode
	fn    functionNode
	call  callNode
	expr  string
}
