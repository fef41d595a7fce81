package ast

import (
	"fmt"
	"strings"

	"github.com/dekarrin/dooble/internal/lex"
)

// binOpText renders a BinOp/Unary operator token kind the way the reference
// AST printer does, for diagnostic output.
var binOpText = map[lex.Kind]string{
	lex.KindStar: "*", lex.KindSlash: "/", lex.KindPlus: "+", lex.KindMinus: "-",
	lex.KindAmper: "&", lex.KindBitOr: "|", lex.KindLess: "<", lex.KindLessEq: "<=",
	lex.KindGreater: ">", lex.KindGreaterEq: ">=", lex.KindIs: "is", lex.KindNot: "is not",
	lex.KindAnd: "and", lex.KindOr: "or", lex.KindDotDot: "..", lex.KindDot: ".",
}

var unaryOpText = map[lex.Kind]string{
	lex.KindMinus: "-", lex.KindNot: "not", lex.KindStar: "*", lex.KindAmper: "&",
}

// Printer renders a Pool as an indented, parenthesized tree for diagnostics
// and debugging, mirroring the reference implementation's print_ast.
type Printer struct {
	pool   *Pool
	indent int
	sb     strings.Builder
}

// Print renders ref and every node it transitively references.
func Print(pool *Pool, ref NodeRef) string {
	p := &Printer{pool: pool}
	p.print(ref)
	return p.sb.String()
}

func (p *Printer) line(format string, a ...any) {
	p.sb.WriteString(strings.Repeat("\t", p.indent))
	fmt.Fprintf(&p.sb, format, a...)
	p.sb.WriteByte('\n')
}

func (p *Printer) print(ref NodeRef) {
	if ref == NilRef {
		return
	}
	n := p.pool.Get(ref)

	switch n.Kind {
	case KindPass:
		p.line("...")

	case KindIf:
		p.line("(if")
		p.indent++
		p.print(n.If.Condition)
		p.print(n.If.Stmt)
		if n.If.ElseCase != NilRef {
			p.line("else:")
			p.print(n.If.ElseCase)
		}
		p.indent--
		p.line(")")

	case KindForEach, KindDoEach, KindDontEach:
		head := "for"
		switch n.Kind {
		case KindDoEach:
			head = "do"
		case KindDontEach:
			head = "don't"
		}
		ref := ""
		if n.ForEach.ByRef {
			ref = "&"
		}
		p.line("(%s %s%s in", head, ref, n.ForEach.Ident)
		p.indent++
		p.print(n.ForEach.Range)
		p.print(n.ForEach.Stmt)
		p.indent--
		p.line(")")

	case KindForWhile, KindDoWhile, KindDontWhile:
		head := "for"
		switch n.Kind {
		case KindDoWhile:
			head = "do"
		case KindDontWhile:
			head = "don't"
		}
		p.line("(%s while", head)
		p.indent++
		p.print(n.ForWhile.Condition)
		p.print(n.ForWhile.Stmt)
		p.indent--
		p.line(")")

	case KindBlock:
		p.line("({}")
		p.indent++
		for _, s := range n.Block.Stmts {
			p.print(s)
		}
		p.indent--
		p.line(")")

	case KindDecl:
		sep := ":="
		if n.Decl.IsConst {
			sep = "::"
		}
		p.line("(%s %s", sep, n.Decl.Name)
		p.indent++
		if n.Decl.Quals.Static {
			p.line("static")
		}
		if n.Decl.Quals.Pub {
			p.line("pub")
		}
		if n.Decl.Quals.Co {
			p.line("co")
		}
		if n.Decl.Quals.Protect {
			p.line("protect")
		}
		if n.Decl.Quals.Final {
			p.line("final")
		}
		p.print(n.Decl.Assign)
		p.indent--
		p.line(")")

	case KindBinOp:
		p.line("(binop: %s", binOpText[n.BinOp.Op])
		p.indent++
		p.print(n.BinOp.Left)
		p.print(n.BinOp.Right)
		p.indent--
		p.line(")")

	case KindUnary:
		p.line("(unary: %s", unaryOpText[n.Unary.Op])
		p.indent++
		p.print(n.Unary.Expr)
		p.indent--
		p.line(")")

	case KindCall:
		p.line("(call()")
		p.indent++
		p.print(n.Call.Caller)
		p.line("args:")
		for _, a := range n.Call.Args {
			p.print(a)
		}
		p.indent--
		p.line(")")

	case KindSubMember:
		p.line("(.%s", n.SubMember.Name)
		p.indent++
		p.print(n.SubMember.Expr)
		p.indent--
		p.line(")")

	case KindFunction:
		p.line("(fn()")
		p.indent++
		for _, a := range n.Function.Args {
			p.print(a)
		}
		p.line("body:")
		p.print(n.Function.Body)
		p.indent--
		p.line(")")

	case KindLiteral:
		switch n.Literal.LitKind {
		case LitInt:
			p.line("%d", n.Literal.IVal)
		case LitFloat:
			p.line("%f", n.Literal.FVal)
		case LitBool:
			p.line("%t", n.Literal.BVal)
		case LitStr:
			p.line("'%s'", n.Literal.SVal)
		case LitIdent:
			p.line("%s", n.Literal.SVal)
		case LitNil:
			p.line("nil")
		}

	case KindReturn:
		p.line("(return")
		p.indent++
		p.print(n.Return.Expr)
		p.indent--
		p.line(")")
	}
}
