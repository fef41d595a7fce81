// Package ast holds the pool-allocated AST produced by internal/parse. Nodes
// never reference each other by pointer: every child reference is a NodeRef,
// an index into the Pool that owns it, so the pool can grow without
// invalidating any reference already handed out (the source implementation
// this is ported from has a latent pointer-invalidation bug here; see
// spec.md §9 and DESIGN.md).
package ast

import "github.com/dekarrin/dooble/internal/lex"

// NodeRef is a stable reference to a Node within the Pool that owns it.
type NodeRef int

// NilRef is the zero-value-safe "no node" reference. Pool index 0 is always
// a valid Block (the translation-unit scope, per spec.md §3.2), so NilRef
// cannot collide with a real reference and is used for optional children.
const NilRef NodeRef = -1

// Kind tags the variant a Node holds.
type Kind int

const (
	KindPass Kind = iota
	KindIf
	KindForEach
	KindForWhile
	KindDoEach
	KindDoWhile
	KindDontEach
	KindDontWhile
	KindBlock
	KindDecl
	KindBinOp
	KindUnary
	KindCall
	KindSubMember
	KindFunction
	KindLiteral
	KindReturn
)

func (k Kind) String() string {
	switch k {
	case KindPass:
		return "Pass"
	case KindIf:
		return "If"
	case KindForEach:
		return "ForEach"
	case KindForWhile:
		return "ForWhile"
	case KindDoEach:
		return "DoEach"
	case KindDoWhile:
		return "DoWhile"
	case KindDontEach:
		return "DontEach"
	case KindDontWhile:
		return "DontWhile"
	case KindBlock:
		return "Block"
	case KindDecl:
		return "Decl"
	case KindBinOp:
		return "BinOp"
	case KindUnary:
		return "Unary"
	case KindCall:
		return "Call"
	case KindSubMember:
		return "SubMember"
	case KindFunction:
		return "Function"
	case KindLiteral:
		return "Literal"
	case KindReturn:
		return "Return"
	default:
		return "?"
	}
}

// LiteralKind tags the payload carried by a Literal node.
type LiteralKind int

const (
	LitStr LiteralKind = iota
	LitIdent
	LitBool
	LitInt
	LitFloat
	LitNil
)

// Qualifiers are the declaration modifiers recognized between a decl's name
// and its ':'. They may appear in any order.
type Qualifiers struct {
	Static  bool
	Pub     bool
	Co      bool
	Protect bool
	Final   bool
}

// Node is a single element of a Pool: a tagged variant over every AST node
// shape in the language. Only the field matching Kind is meaningful; Node is
// a flat struct (rather than an interface per variant) so Pool can be a
// plain slice with O(1) index access and no per-node boxing.
type Node struct {
	Kind Kind
	Line int

	If        IfNode
	ForEach   ForEachNode
	ForWhile  ForWhileNode
	Block     BlockNode
	Decl      DeclNode
	BinOp     BinOpNode
	Unary     UnaryNode
	Call      CallNode
	SubMember SubMemberNode
	Function  FunctionNode
	Literal   LiteralNode
	Return    ReturnNode
}

// IfNode is `if condition stmt (else elseCase)?`. ElseCase is NilRef when
// there is no else/elif chain.
type IfNode struct {
	Condition NodeRef
	Stmt      NodeRef
	ElseCase  NodeRef
}

// ForEachNode is `for [&]ident in range stmt`, and also the body of
// `do stmt for [&]ident in range` / `don't stmt for [&]ident in range` when
// Kind is KindDoEach/KindDontEach.
type ForEachNode struct {
	ByRef bool
	Ident string
	Range NodeRef
	Stmt  NodeRef
}

// ForWhileNode is `for condition stmt`, and also the body of `do ... for` /
// `don't ... for` when Kind is KindDoWhile/KindDontWhile.
//
// Loop policy (spec.md §9 Open Question, resolved): KindForWhile checks
// Condition before every iteration, including the first, and loops while
// Condition is true. KindDoWhile runs Stmt once unconditionally, then
// re-checks Condition before each subsequent iteration, matching a C
// do-while. KindDontWhile checks Condition before every iteration
// including the first, and loops while Condition is false.
type ForWhileNode struct {
	Condition NodeRef
	Stmt      NodeRef
}

// BlockNode is an ordered sequence of statements, and is the only node kind
// guaranteed to be Pool index 0 for the outermost translation unit.
type BlockNode struct {
	Stmts []NodeRef
}

// DeclNode is `name quals* : type? (: | =)? rhs?`. HasType is false and
// TypeRef is typetree.Void when the type was omitted and inferred instead.
type DeclNode struct {
	Name    string
	IsConst bool
	HasType bool
	// TypeRef identifies the declared type in the TypeTree; only valid when
	// HasType is true. Declared as an int to avoid an import cycle with
	// internal/typetree — internal/parse populates it via typetree.ID(...).
	TypeRef int
	Assign  NodeRef // NilRef if no rhs
	Quals   Qualifiers
}

// BinOpNode is a binary operator expression; Op is the lex.Kind of the
// operator token (e.g. lex.KindPlus, lex.KindAnd, lex.KindIs).
type BinOpNode struct {
	Op    lex.Kind
	Left  NodeRef
	Right NodeRef
}

// UnaryNode is a unary prefix operator expression; Op is one of
// lex.KindMinus, lex.KindNot, lex.KindStar, lex.KindAmper.
type UnaryNode struct {
	Op   lex.Kind
	Expr NodeRef
}

// CallNode is `caller(args...)`. At most 127 arguments are allowed (spec.md
// §4.2).
type CallNode struct {
	Caller NodeRef
	Args   []NodeRef
}

// MaxCallArgs is the parser's arity ceiling for a single call (spec.md
// §4.2); exceeding it is a diagnostic, not a panic.
const MaxCallArgs = 127

// SubMemberNode is `expr.name`.
type SubMemberNode struct {
	Expr NodeRef
	Name string
}

// FunctionNode is a function literal: `(args...) -> ret? { body }`.
type FunctionNode struct {
	HasRetType bool
	RetTypeRef int
	Args       []NodeRef // each a NodeRef to a Decl node
	Body       NodeRef   // NodeRef to a Block node
}

// ReturnNode is `return expr?`. Expr is NilRef for a bare `return`.
type ReturnNode struct {
	Expr NodeRef
}

// LiteralNode carries one of the base literal kinds.
type LiteralNode struct {
	LitKind LiteralKind
	IVal    int64
	FVal    float64
	SVal    string // Str and Ident payload
	BVal    bool
}
