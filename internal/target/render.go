package target

import (
	"strconv"
	"strings"

	"github.com/dekarrin/dooble/internal/diag"
)

// indentUnit is 4 spaces (spec.md §8.2 S4's expected output uses 4-space
// indentation; the reference implementation uses a raw tab character, but
// nothing in the spec depends on the literal byte, only the visible
// column).
const indentUnit = "    "

// GetGenerated walks the stream once, renders it to C source text, and
// empties the Builder (codegen.c's get_generated).
func (b *Builder) GetGenerated() string {
	b.traverse = 0
	b.indentLevel = 0

	for b.traverse < len(b.stream) {
		b.generate(b.consume())
	}

	out := string(b.out)
	b.stream = nil
	b.out = nil
	b.activeScope = -1
	return out
}

func (b *Builder) consume() *streamNode {
	if b.traverse >= len(b.stream) {
		diag.Panic("consume: at end of stream")
	}
	n := &b.stream[b.traverse]
	b.traverse++
	return n
}

// indent trims any partial, unindented line back to its last newline (the
// fixup codegen.c's indent() performs after a statement leaves trailing
// indentation that a following ScopeEnd must erase) and writes indentLevel
// indent units.
func (b *Builder) indent() {
	if len(b.out) > 0 && b.out[len(b.out)-1] != '\n' {
		i := len(b.out)
		for i > 0 && b.out[i-1] != '\n' {
			i--
		}
		b.out = b.out[:i]
	}
	for i := 0; i < b.indentLevel; i++ {
		b.out = append(b.out, indentUnit...)
	}
}

func (b *Builder) write(s string) {
	b.out = append(b.out, s...)
}

func (b *Builder) generate(n *streamNode) {
	switch n.kind {
	case KindFunction:
		b.generateFunction(&n.fn)
	case KindCall:
		b.generateCall(&n.call)
	case KindScope:
		b.generateScope(&n.scope)
	case KindScopeEnd:
		diag.Panic("KindScopeEnd should be handled in generateScope")
	case KindStatement:
		b.generateStatement()
	case KindIdentifier:
		b.write(b.generateIdentifier(&n.ident, false))
	case KindExpression:
		b.generateExpression(n.expr)
	}
}

func (b *Builder) generateStatement() {
	b.write(";\n")
	b.indent()
}

// generateType renders a CType's declarator for name (spec.md §4.5 "Type
// rendering"): const/volatile first, then the base type name, then the
// declarator built outward from name through Modifiers in order, one step
// at a time. A pointer step prepends its star; an array step appends its
// `[N]`, parenthesizing the declarator built so far first if the last step
// applied was a pointer (so `*p` followed by an array step becomes the
// pointer-to-array `(*p)[N]` rather than the array-of-pointers `*p[N]`).
// A function-pointer parameter list, if any, wraps the whole declarator.
func (b *Builder) generateType(t *CType, name string) string {
	var out strings.Builder

	if t.IsConst {
		out.WriteString("const ")
	}
	if t.IsVolatile {
		out.WriteString("volatile ")
	}
	out.WriteString(t.TypeName)
	out.WriteByte(' ')

	declarator := name
	isPtr := false
	for _, mod := range t.Modifiers {
		switch mod.Tag {
		case ElemPtr:
			star := "*"
			if mod.IsConst {
				star += "const "
			}
			declarator = star + declarator
			isPtr = true
		case ElemArr:
			if isPtr {
				declarator = "(" + declarator + ")"
				isPtr = false
			}
			declarator += "[" + strconv.Itoa(mod.ArrSize) + "]"
		}
	}

	isFnPtr := len(t.Params) > 0
	if isFnPtr {
		declarator = "(" + declarator + ")"
	}
	out.WriteString(declarator)

	if isFnPtr {
		out.WriteByte('(')
		for i, p := range t.Params {
			p := p
			out.WriteString(b.generateType(&p, ""))
			if i != len(t.Params)-1 {
				out.WriteByte(',')
			}
		}
		out.WriteByte(')')
	}

	return out.String()
}

func (b *Builder) generateIdentifier(ident *Identifier, _ bool) string {
	var prefix strings.Builder
	if ident.IsStatic {
		prefix.WriteString("static ")
	}
	if ident.IsExtern {
		prefix.WriteString("extern ")
	}
	return prefix.String() + b.generateType(&ident.Type, ident.Name)
}

func (b *Builder) generateScope(scope *scopeNode) {
	b.write(" {\n")
	b.indentLevel++
	b.indent()

	for i := range scope.identifiers {
		b.write(b.generateIdentifier(&scope.identifiers[i], false))
		b.generateStatement()
	}

	for b.traverse < len(b.stream) && b.stream[b.traverse].kind != KindScopeEnd {
		b.generate(b.consume())
	}
	if b.traverse >= len(b.stream) {
		diag.Panic("generated scope does not have an end")
	}
	b.consume() // the ScopeEnd itself

	b.indentLevel--
	b.indent()
	b.write("}\n")
}

func (b *Builder) generateFunction(fn *functionNode) {
	var sig strings.Builder
	sig.WriteString(fn.name)
	sig.WriteByte('(')
	if len(fn.params) == 0 {
		sig.WriteString("void")
	} else {
		for i := range fn.params {
			sig.WriteString(b.generateIdentifier(&fn.params[i], true))
			if i != len(fn.params)-1 {
				sig.WriteByte(',')
			}
		}
	}
	sig.WriteByte(')')

	b.write(b.generateType(&fn.returnType, sig.String()))
}

func (b *Builder) generateCall(call *callNode) {
	b.write(call.name)
	b.write("(")
	for i := 0; i < call.params; i++ {
		b.generate(b.consume())
		if i != call.params-1 {
			b.write(", ")
		}
	}
	b.write(")")
}

func (b *Builder) generateExpression(tmpl string) {
	for i := 0; i < len(tmpl); i++ {
		if tmpl[i] == '$' {
			b.generate(b.consume())
		} else {
			b.out = append(b.out, tmpl[i])
		}
	}
}
