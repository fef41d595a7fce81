package target

import "github.com/dekarrin/dooble/internal/diag"

// Builder accumulates a deferred stream of output-build operations
// (codegen.c's CodeGen). Nothing is rendered until GetGenerated is called.
type Builder struct {
	stream      []streamNode
	activeScope int // index into stream, -1 when no scope is open
	traverse    int
	indentLevel int
	out         []byte
}

// NewBuilder returns an empty Builder ready to accept Emit* calls.
func NewBuilder() *Builder {
	return &Builder{activeScope: -1}
}

func (b *Builder) push(n streamNode) int {
	b.stream = append(b.stream, n)
	return len(b.stream) - 1
}

// EmitScope opens a new scope, nested under whichever scope is currently
// active (or top-level if none is). Scope/ScopeEnd must be strictly
// balanced (spec.md §4.5).
func (b *Builder) EmitScope() {
	idx := b.push(streamNode{kind: KindScope, scope: scopeNode{parent: b.activeScope}})
	b.activeScope = idx
}

// EmitScopeEnd closes the most recently opened still-open scope.
func (b *Builder) EmitScopeEnd() {
	if b.activeScope < 0 {
		diag.Panic("EmitScopeEnd: no active scope")
	}
	parent := b.stream[b.activeScope].scope.parent
	b.push(streamNode{kind: KindScopeEnd})
	b.activeScope = parent
}

// EmitStatement terminates the previously emitted expression with a ';'.
func (b *Builder) EmitStatement() {
	b.push(streamNode{kind: KindStatement})
}

// EmitIdentifier attaches a declared identifier to the currently active
// scope. Requires an active Scope (spec.md §4.5's Identifier contract); a
// reserved-word name is rejected rather than silently accepted.
func (b *Builder) EmitIdentifier(name string, isStatic, isExtern bool, typ CType) {
	if b.activeScope < 0 || b.stream[b.activeScope].kind != KindScope {
		diag.Panic("EmitIdentifier: no active scope")
	}
	if IsReserved(name) {
		diag.Panic("EmitIdentifier: %q is a reserved word", name)
	}

	scope := &b.stream[b.activeScope].scope
	scope.identifiers = append(scope.identifiers, Identifier{
		Name: name, Type: typ, IsStatic: isStatic, IsExtern: isExtern,
	})
}

// EmitFunction begins a function definition and opens its body scope in one
// step, mirroring codegen.h's EMIT_FUNC macro (emit_function followed
// unconditionally by EMIT_SCOPE()).
func (b *Builder) EmitFunction(name string, isStatic bool, ret CType, params []Identifier) {
	b.push(streamNode{
		kind: KindFunction,
		fn: functionNode{
			name:       name,
			returnType: ret,
			params:     append([]Identifier(nil), params...),
			isStatic:   isStatic,
		},
	})
	b.EmitScope()
}

// EmitCall begins a call to name with nParams arguments; rendering consumes
// the next nParams stream nodes, in order, as the call's arguments
// (spec.md §4.5).
func (b *Builder) EmitCall(name string, nParams int) {
	b.push(streamNode{kind: KindCall, call: callNode{name: name, params: nParams}})
}

// EmitExpression appends a template expression; each '$' in template
// consumes the next stream node, in order, when rendered (spec.md §4.5).
func (b *Builder) EmitExpression(template string) {
	b.push(streamNode{kind: KindExpression, expr: template})
}

// EmitAtomic appends literal output text verbatim — an EmitExpression whose
// template carries no '$' placeholders (codegen.h's EMIT_ATOMIC).
func (b *Builder) EmitAtomic(text string) {
	b.EmitExpression(text)
}

// EmitBinOp is a convenience for a two-operand infix expression.
func (b *Builder) EmitBinOp(op string) {
	b.EmitExpression("$ " + op + " $")
}

// EmitIf, EmitFor, EmitReturn, EmitAssign mirror codegen.h's prebuilt
// expression-template conveniences.
func (b *Builder) EmitIf()          { b.EmitExpression("if ($)") }
func (b *Builder) EmitFor()         { b.EmitExpression("for ($; $; $)") }
func (b *Builder) EmitReturn()      { b.EmitExpression("return ") }
func (b *Builder) EmitAssign(v string) { b.EmitExpression(v + " = ") }

// EmitRetval is `return <val>;` as two stream nodes — an Expression
// followed by a Statement, exactly as codegen.h's EMIT_RETVAL macro
// expands.
func (b *Builder) EmitRetval(val string) {
	b.EmitExpression("return " + val)
	b.EmitStatement()
}
