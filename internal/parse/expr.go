package parse

import (
	"github.com/dekarrin/dooble/internal/ast"
	"github.com/dekarrin/dooble/internal/lex"
)

// expr is the grammar's entry point: range ( '..' doesn't recurse further
// up, so expr and range coincide).
func (p *Parser) expr() ast.NodeRef {
	return p.rangeExpr()
}

func (p *Parser) rangeExpr() ast.NodeRef {
	line := p.peek().Line
	left := p.logic()
	if p.match(lex.KindDotDot) {
		right := p.logic()
		return p.append(ast.Node{Kind: ast.KindBinOp, Line: line, BinOp: ast.BinOpNode{
			Op: lex.KindDotDot, Left: left, Right: right,
		}})
	}
	return left
}

func (p *Parser) logic() ast.NodeRef {
	left := p.equality()
	for p.check(lex.KindAnd) || p.check(lex.KindOr) {
		line := p.peek().Line
		op := p.advance().Kind
		right := p.equality()
		left = p.append(ast.Node{Kind: ast.KindBinOp, Line: line, BinOp: ast.BinOpNode{Op: op, Left: left, Right: right}})
	}
	return left
}

// equality parses `comparison ( 'is' 'not'? comparison )*`. The optional
// 'not' after 'is' is folded into the operator: `is not` is recorded as a
// single lex.KindNot-tagged BinOp so the semantic pass doesn't need to
// special-case a two-token operator.
func (p *Parser) equality() ast.NodeRef {
	left := p.comparison()
	for p.check(lex.KindIs) {
		line := p.peek().Line
		p.advance()
		op := lex.KindIs
		if p.match(lex.KindNot) {
			op = lex.KindNot
		}
		right := p.comparison()
		left = p.append(ast.Node{Kind: ast.KindBinOp, Line: line, BinOp: ast.BinOpNode{Op: op, Left: left, Right: right}})
	}
	return left
}

func (p *Parser) comparison() ast.NodeRef {
	left := p.bitwise()
	for p.check(lex.KindLess) || p.check(lex.KindLessEq) || p.check(lex.KindGreater) || p.check(lex.KindGreaterEq) {
		line := p.peek().Line
		op := p.advance().Kind
		right := p.bitwise()
		left = p.append(ast.Node{Kind: ast.KindBinOp, Line: line, BinOp: ast.BinOpNode{Op: op, Left: left, Right: right}})
	}
	return left
}

func (p *Parser) bitwise() ast.NodeRef {
	left := p.sum()
	for p.check(lex.KindBitOr) || p.check(lex.KindAmper) {
		line := p.peek().Line
		op := p.advance().Kind
		right := p.sum()
		left = p.append(ast.Node{Kind: ast.KindBinOp, Line: line, BinOp: ast.BinOpNode{Op: op, Left: left, Right: right}})
	}
	return left
}

func (p *Parser) sum() ast.NodeRef {
	left := p.factor()
	for p.check(lex.KindPlus) || p.check(lex.KindMinus) {
		line := p.peek().Line
		op := p.advance().Kind
		right := p.factor()
		left = p.append(ast.Node{Kind: ast.KindBinOp, Line: line, BinOp: ast.BinOpNode{Op: op, Left: left, Right: right}})
	}
	return left
}

func (p *Parser) factor() ast.NodeRef {
	left := p.unary()
	for p.check(lex.KindStar) || p.check(lex.KindSlash) {
		line := p.peek().Line
		op := p.advance().Kind
		right := p.unary()
		left = p.append(ast.Node{Kind: ast.KindBinOp, Line: line, BinOp: ast.BinOpNode{Op: op, Left: left, Right: right}})
	}
	return left
}

func (p *Parser) unary() ast.NodeRef {
	switch p.peek().Kind {
	case lex.KindMinus, lex.KindNot, lex.KindStar, lex.KindAmper:
		line := p.peek().Line
		op := p.advance().Kind
		expr := p.call()
		return p.append(ast.Node{Kind: ast.KindUnary, Line: line, Unary: ast.UnaryNode{Op: op, Expr: expr}})
	default:
		return p.call()
	}
}

// call parses `atom ( '(' args? ')' | '.' IDENT )*`, left-associating any
// chain of calls and member accesses (S6: each call consumes its own ')'
// regardless of trailing commas inside).
func (p *Parser) call() ast.NodeRef {
	expr := p.atom()

	for {
		switch {
		case p.check(lex.KindLParen):
			line := p.peek().Line
			p.advance()
			args := p.callArgs()
			p.expect(lex.KindRParen, "')'")
			expr = p.append(ast.Node{Kind: ast.KindCall, Line: line, Call: ast.CallNode{Caller: expr, Args: args}})

		case p.check(lex.KindDot):
			line := p.peek().Line
			p.advance()
			name := p.consume(lex.KindIdent, "member name").SVal
			expr = p.append(ast.Node{Kind: ast.KindSubMember, Line: line, SubMember: ast.SubMemberNode{Expr: expr, Name: name}})

		default:
			return expr
		}
	}
}

// callArgs parses a comma-separated argument list up to (not including) the
// closing ')', tolerating a trailing comma, and diagnoses but does not stop
// parsing at more than ast.MaxCallArgs arguments.
func (p *Parser) callArgs() []ast.NodeRef {
	var args []ast.NodeRef
	if p.check(lex.KindRParen) {
		return args
	}

	for {
		if p.check(lex.KindRParen) {
			break
		}
		args = append(args, p.expr())
		if len(args) == ast.MaxCallArgs+1 {
			p.errorHere("call has more than %d arguments", ast.MaxCallArgs)
		}
		if !p.match(lex.KindComma) {
			break
		}
	}
	return args
}

// atom parses a literal, identifier, parenthesized expression, or function
// literal. A leading '(' is ambiguous between the last two and is resolved
// by scanning ahead to the matching ')' and inspecting what follows it.
func (p *Parser) atom() ast.NodeRef {
	tok := p.peek()
	switch tok.Kind {
	case lex.KindInt:
		p.advance()
		return p.append(ast.Node{Kind: ast.KindLiteral, Line: tok.Line, Literal: ast.LiteralNode{LitKind: ast.LitInt, IVal: tok.IVal}})

	case lex.KindFloat:
		p.advance()
		return p.append(ast.Node{Kind: ast.KindLiteral, Line: tok.Line, Literal: ast.LiteralNode{LitKind: ast.LitFloat, FVal: tok.FVal}})

	case lex.KindString:
		p.advance()
		return p.append(ast.Node{Kind: ast.KindLiteral, Line: tok.Line, Literal: ast.LiteralNode{LitKind: ast.LitStr, SVal: tok.SVal}})

	case lex.KindTrue, lex.KindFalse:
		p.advance()
		return p.append(ast.Node{Kind: ast.KindLiteral, Line: tok.Line, Literal: ast.LiteralNode{LitKind: ast.LitBool, BVal: tok.Kind == lex.KindTrue}})

	case lex.KindNil:
		p.advance()
		return p.append(ast.Node{Kind: ast.KindLiteral, Line: tok.Line, Literal: ast.LiteralNode{LitKind: ast.LitNil}})

	case lex.KindIdent:
		p.advance()
		return p.append(ast.Node{Kind: ast.KindLiteral, Line: tok.Line, Literal: ast.LiteralNode{LitKind: ast.LitIdent, SVal: tok.SVal}})

	case lex.KindLParen:
		if p.isFunctionLiteralAhead() {
			return p.functionLiteral()
		}
		p.advance()
		e := p.expr()
		p.expect(lex.KindRParen, "')'")
		return e

	default:
		p.errorHere("expected an expression")
		p.advance()
		return ast.NilRef
	}
}

// exprContinuation is the set of token kinds that can legally follow a
// parenthesized subexpression used as a primary (an operator, a further
// call/member-access opener, or a statement/list terminator). Anything
// outside this set — most commonly a return-type name, or '{' with no
// return type — can only mean the parens were a function literal's
// argument list instead (S3, S7).
var exprContinuation = map[lex.Kind]bool{
	lex.KindDot: true, lex.KindDotDot: true, lex.KindDotDotDot: true,
	lex.KindPlus: true, lex.KindMinus: true, lex.KindStar: true, lex.KindSlash: true,
	lex.KindAmper: true, lex.KindBitOr: true,
	lex.KindLess: true, lex.KindLessEq: true, lex.KindGreater: true, lex.KindGreaterEq: true,
	lex.KindIs: true, lex.KindAnd: true, lex.KindOr: true,
	lex.KindLParen: true, lex.KindRParen: true, lex.KindRSquare: true, lex.KindRBrace: true,
	lex.KindComma: true, lex.KindSemi: true, lex.KindColon: true, lex.KindEqual: true,
	lex.KindEOF: true,
}

// isFunctionLiteralAhead looks past the current '(' to its matching ')' by
// counting nested parens, then checks whether what follows could continue
// an expression; if not, the parens must have been a function literal's
// argument list (S7).
func (p *Parser) isFunctionLiteralAhead() bool {
	depth := 0
	i := 0
	for {
		tok := p.peekAhead(i)
		if tok.Kind == lex.KindEOF {
			return false
		}
		if tok.Kind == lex.KindLParen {
			depth++
		} else if tok.Kind == lex.KindRParen {
			depth--
			if depth == 0 {
				next := p.peekAhead(i + 1)
				return !exprContinuation[next.Kind]
			}
		}
		i++
	}
}

// functionLiteral parses `(args...) -> ret? { body }`. Each argument is a
// `name : type` pair, parsed as a Decl node (with no rhs) so arguments and
// locals share the same representation.
func (p *Parser) functionLiteral() ast.NodeRef {
	line := p.peek().Line
	p.expect(lex.KindLParen, "'('")

	var args []ast.NodeRef
	for !p.check(lex.KindRParen) {
		argLine := p.peek().Line
		name := p.consume(lex.KindIdent, "parameter name").SVal
		p.expect(lex.KindColon, "':'")
		typeID, ok := p.parseType()
		typeRef := int(typeID)
		args = append(args, p.append(ast.Node{Kind: ast.KindDecl, Line: argLine, Decl: ast.DeclNode{
			Name: name, IsConst: false, HasType: ok, TypeRef: typeRef, Assign: ast.NilRef,
		}}))
		if !p.match(lex.KindComma) {
			break
		}
	}
	p.expect(lex.KindRParen, "')'")

	hasRet := false
	retRef := 0
	if p.match(lex.KindArrow) || !p.check(lex.KindLBrace) {
		id, ok := p.parseType()
		if ok {
			hasRet = true
			retRef = int(id)
		}
	}

	body := p.block()

	return p.append(ast.Node{Kind: ast.KindFunction, Line: line, Function: ast.FunctionNode{
		HasRetType: hasRet, RetTypeRef: retRef, Args: args, Body: body,
	}})
}
