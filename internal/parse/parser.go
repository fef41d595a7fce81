// Package parse implements the dooble recursive-descent parser: tokens in,
// an internal/ast.Pool out. Grammar dispatch is hand-rolled rather than
// table-driven, because several productions need lookahead that doesn't
// factor into a generic grammar-table engine: function-literal-vs-
// parenthesized-expression disambiguation, the for/do/don't body swap, and
// the type-parsing FSA (typeparse.go).
package parse

import (
	"strings"

	"github.com/dekarrin/dooble/internal/ast"
	"github.com/dekarrin/dooble/internal/diag"
	"github.com/dekarrin/dooble/internal/lex"
	"github.com/dekarrin/dooble/internal/typetree"
)

// Parser holds the mutable state carried through one translation unit's
// parse: position in the token stream, the AST pool it appends to, the
// shared TypeTree it interns into, and the diagnostic sink it reports to.
//
// Errors are sticky in spirit rather than in a literal boolean flag: every
// parse function that hits a malformed construct reports a diagnostic to
// sink and returns its best-effort placeholder (usually ast.NilRef), so the
// caller always gets a complete tree back and checks sink.HasErrors() to
// decide whether to trust it.
type Parser struct {
	toks  []lex.Token
	pos   int
	lines []string

	pool  *ast.Pool
	types *typetree.Tree
	sink  *diag.Sink
}

// Parse parses one translation unit's token stream (as produced by
// lex.Lexer.Lex) into an ast.Pool, returning the pool and a NodeRef to its
// root Block. source is used only to recover line text for diagnostics.
func Parse(toks []lex.Token, source []byte, types *typetree.Tree, sink *diag.Sink) (*ast.Pool, ast.NodeRef) {
	p := &Parser{
		toks:  toks,
		lines: strings.Split(string(source), "\n"),
		pool:  ast.NewPool(len(toks)),
		types: types,
		sink:  sink,
	}

	// Reserve index 0 for the translation unit's Block up front: Pool.Root
	// is always index 0, but the root's statement list isn't known until
	// every statement (and every node each one transitively references) has
	// already been appended.
	root := p.pool.Append(ast.Node{Kind: ast.KindBlock})

	var stmts []ast.NodeRef
	for !p.check(lex.KindEOF) {
		stmts = append(stmts, p.statement())
	}

	*p.pool.Get(root) = ast.Node{Kind: ast.KindBlock, Line: 1, Block: ast.BlockNode{Stmts: stmts}}
	return p.pool, root
}

func (p *Parser) fullLine(line int) string {
	if line < 1 || line > len(p.lines) {
		return ""
	}
	return p.lines[line-1]
}

func (p *Parser) errorHere(format string, a ...any) {
	tok := p.peek()
	p.sink.Errorf(diag.Syntactic, tok.Line, tok.Col, p.fullLine(tok.Line), format, a...)
}

func (p *Parser) peek() lex.Token {
	return p.toks[p.pos]
}

// peekAhead returns the token n positions beyond the current one, clamped
// to the final (EOF) token so lookahead never runs off the stream.
func (p *Parser) peekAhead(n int) lex.Token {
	i := p.pos + n
	if i >= len(p.toks) {
		i = len(p.toks) - 1
	}
	return p.toks[i]
}

func (p *Parser) advance() lex.Token {
	t := p.toks[p.pos]
	if p.pos < len(p.toks)-1 {
		p.pos++
	}
	return t
}

func (p *Parser) check(k lex.Kind) bool {
	return p.peek().Kind == k
}

func (p *Parser) match(k lex.Kind) bool {
	if p.check(k) {
		p.advance()
		return true
	}
	return false
}

// expect reports a diagnostic and returns false if the current token is not
// k; otherwise it consumes it and returns true.
func (p *Parser) expect(k lex.Kind, msg string) bool {
	if p.match(k) {
		return true
	}
	p.errorHere("expected %s", msg)
	return false
}

// consume is expect's value-returning sibling, for productions that need
// the consumed token's payload (e.g. an identifier's lexeme).
func (p *Parser) consume(k lex.Kind, msg string) lex.Token {
	if p.check(k) {
		return p.advance()
	}
	p.errorHere("expected %s", msg)
	return p.peek()
}

// resync skips tokens until a statement boundary (a semicolon, which it
// consumes, or EOF) so one malformed statement doesn't cascade into
// spurious diagnostics for everything after it.
func (p *Parser) resync() {
	for !p.check(lex.KindEOF) {
		if p.match(lex.KindSemi) {
			return
		}
		p.advance()
	}
}

func (p *Parser) append(n ast.Node) ast.NodeRef {
	return p.pool.Append(n)
}

// statement dispatches on the current token per spec's statement grammar:
// if/for/do/don't/block/return take their corresponding non-terminal;
// IDENT qualifier* ':' takes a declaration; a bare ';' is an empty statement (most
// commonly the auto-inserted semicolon that follows a block's closing
// '}'); anything else is an expression statement.
func (p *Parser) statement() ast.NodeRef {
	switch p.peek().Kind {
	case lex.KindSemi:
		line := p.peek().Line
		p.advance()
		return p.append(ast.Node{Kind: ast.KindPass, Line: line})

	case lex.KindIf:
		return p.ifStatement()

	case lex.KindFor:
		return p.forStatement()

	case lex.KindDo:
		return p.doStatement(ast.KindDoEach, ast.KindDoWhile)

	case lex.KindDont:
		return p.doStatement(ast.KindDontEach, ast.KindDontWhile)

	case lex.KindLBrace:
		return p.block()

	case lex.KindReturn:
		return p.returnStatement()

	case lex.KindIdent:
		// a declaration's qualifiers sit between its name and ':', so look
		// past any of them before deciding.
		ahead := 1
	qualsAhead:
		for {
			switch p.peekAhead(ahead).Kind {
			case lex.KindStatic, lex.KindPub, lex.KindCo, lex.KindProtect, lex.KindFinal:
				ahead++
			default:
				break qualsAhead
			}
		}
		if p.peekAhead(ahead).Kind == lex.KindColon {
			return p.decl()
		}
		return p.exprStatement()

	default:
		return p.exprStatement()
	}
}

// block parses `{ statement* }`. Unlike Parse's translation-unit root, a
// nested block is appended to the pool in the normal append-on-finish
// order; only the root needs the reserve-then-patch trick, since nothing
// but Parse itself needs a nested block's ref before it's fully built.
func (p *Parser) block() ast.NodeRef {
	line := p.peek().Line
	p.expect(lex.KindLBrace, "'{'")

	var stmts []ast.NodeRef
	for !p.check(lex.KindRBrace) && !p.check(lex.KindEOF) {
		stmts = append(stmts, p.statement())
	}
	p.expect(lex.KindRBrace, "'}'")

	return p.append(ast.Node{Kind: ast.KindBlock, Line: line, Block: ast.BlockNode{Stmts: stmts}})
}

func (p *Parser) exprStatement() ast.NodeRef {
	e := p.expr()
	if e == ast.NilRef {
		// atom() already reported a diagnostic; resynchronize at the next
		// statement boundary instead of letting the failure cascade into
		// whatever token follows.
		p.resync()
		return e
	}
	p.match(lex.KindSemi)
	return e
}

// returnStatement parses `return expr?`. The trailing expression is omitted
// when the next token can't start one: a bare `return` followed by the
// auto-inserted `;`, a block's closing `}`, or end of stream.
func (p *Parser) returnStatement() ast.NodeRef {
	line := p.peek().Line
	p.advance() // 'return'

	expr := ast.NilRef
	if !p.check(lex.KindSemi) && !p.check(lex.KindRBrace) && !p.check(lex.KindEOF) {
		expr = p.expr()
	}

	p.match(lex.KindSemi)
	return p.append(ast.Node{Kind: ast.KindReturn, Line: line, Return: ast.ReturnNode{Expr: expr}})
}

func (p *Parser) ifStatement() ast.NodeRef {
	line := p.peek().Line
	p.advance() // 'if'

	cond := p.expr()
	stmt := p.statement()

	elseCase := ast.NilRef
	if p.match(lex.KindElse) {
		elseCase = p.statement()
	} else if p.check(lex.KindElif) {
		// 'elif' reuses the 'if' dispatch, nested as this if's else-case.
		elseCase = p.ifStatement()
	}

	return p.append(ast.Node{Kind: ast.KindIf, Line: line, If: ast.IfNode{
		Condition: cond, Stmt: stmt, ElseCase: elseCase,
	}})
}

// forHead is the parsed head of a for-production — either the `[&]ident in
// range` form or a bare `condition` — before a body statement has been
// attached. Splitting head-parsing from body-attachment lets `do`/`don't`
// reuse it with a body statement that was already parsed before `for`.
type forHead struct {
	isEach bool

	byRef     bool
	ident     string
	rangeExpr ast.NodeRef

	cond ast.NodeRef
}

// parseForHead parses the shared `[&]ident in range` / `condition` grammar,
// disambiguating by looking past an optional leading '&' for `IDENT 'in'`.
func (p *Parser) parseForHead() forHead {
	ahead := 0
	if p.check(lex.KindAmper) {
		ahead = 1
	}

	if p.peekAhead(ahead).Kind == lex.KindIdent && p.peekAhead(ahead+1).Kind == lex.KindIn {
		byRef := false
		if p.check(lex.KindAmper) {
			p.advance()
			byRef = true
		}
		ident := p.consume(lex.KindIdent, "identifier").SVal
		p.expect(lex.KindIn, "'in'")
		rng := p.expr()
		return forHead{isEach: true, byRef: byRef, ident: ident, rangeExpr: rng}
	}

	return forHead{isEach: false, cond: p.expr()}
}

// buildForNode tags head+stmt as a ForEach/ForWhile node, using eachKind for
// the `[&]ident in range` form and whileKind for the `condition` form.
func (p *Parser) buildForNode(line int, head forHead, stmt ast.NodeRef, eachKind, whileKind ast.Kind) ast.NodeRef {
	if head.isEach {
		return p.append(ast.Node{Kind: eachKind, Line: line, ForEach: ast.ForEachNode{
			ByRef: head.byRef, Ident: head.ident, Range: head.rangeExpr, Stmt: stmt,
		}})
	}
	return p.append(ast.Node{Kind: whileKind, Line: line, ForWhile: ast.ForWhileNode{
		Condition: head.cond, Stmt: stmt,
	}})
}

// forStatement parses `for [&]ident in range stmt` or `for condition stmt`.
func (p *Parser) forStatement() ast.NodeRef {
	line := p.peek().Line
	p.advance() // 'for'
	head := p.parseForHead()
	stmt := p.statement()
	return p.buildForNode(line, head, stmt, ast.KindForEach, ast.KindForWhile)
}

// doStatement parses `do statement for ...` / `don't statement for ...`: a
// statement is parsed first, then 'for' is required, and the parsed
// statement becomes the loop body of the for-head that follows, tagged as
// a Do*/Dont* variant rather than a plain For*.
func (p *Parser) doStatement(eachKind, whileKind ast.Kind) ast.NodeRef {
	line := p.peek().Line
	p.advance() // 'do' / "don't"

	body := p.statement()
	p.expect(lex.KindFor, "'for'")
	head := p.parseForHead()
	return p.buildForNode(line, head, body, eachKind, whileKind)
}

// decl parses `IDENT qualifier* ':' type? (':' | '=')? rhs?`. A constant
// declaration whose rhs begins with struct/sumtype/alias registers a type
// alias in the TypeTree instead of producing an assignment node.
func (p *Parser) decl() ast.NodeRef {
	line := p.peek().Line
	name := p.consume(lex.KindIdent, "identifier").SVal

	var quals ast.Qualifiers
	for {
		switch p.peek().Kind {
		case lex.KindStatic:
			quals.Static = true
		case lex.KindPub:
			quals.Pub = true
		case lex.KindCo:
			quals.Co = true
		case lex.KindProtect:
			quals.Protect = true
		case lex.KindFinal:
			quals.Final = true
		default:
			goto qualsDone
		}
		p.advance()
	}
qualsDone:

	p.expect(lex.KindColon, "':'")

	hasType := false
	typeRef := int(typetree.Void)
	if !p.check(lex.KindColon) && !p.check(lex.KindEqual) && !p.check(lex.KindSemi) && !p.check(lex.KindEOF) {
		id, ok := p.parseType()
		if ok {
			hasType = true
			typeRef = int(id)
		}
	}

	isConst := false
	hasSep := false
	switch {
	case p.match(lex.KindColon):
		isConst, hasSep = true, true
	case p.match(lex.KindEqual):
		isConst, hasSep = false, true
	}

	assign := ast.NilRef
	if hasSep {
		switch p.peek().Kind {
		case lex.KindStruct, lex.KindSumtype, lex.KindAlias:
			p.parseTypeAliasRHS(name)
		default:
			assign = p.expr()
		}
	}

	p.match(lex.KindSemi)

	return p.append(ast.Node{Kind: ast.KindDecl, Line: line, Decl: ast.DeclNode{
		Name: name, IsConst: isConst, HasType: hasType, TypeRef: typeRef, Assign: assign, Quals: quals,
	}})
}

// parseTypeAliasRHS handles the `name :: struct {...}` / `name :: sumtype
// {...}` / `name :: alias T` forms: it materializes a Name leaf for `name`
// and records an alias from it to the parsed rhs type. These declarations
// contribute no runtime value (the caller leaves Assign as ast.NilRef).
func (p *Parser) parseTypeAliasRHS(name string) {
	var target typetree.ID
	switch p.peek().Kind {
	case lex.KindAlias:
		p.advance()
		id, ok := p.parseType()
		if !ok {
			return
		}
		target = id
	default:
		id, ok := p.parseType()
		if !ok {
			return
		}
		target = id
	}

	alias := p.types.GetLeaf(typetree.NoParent, typetree.Leaf{Tag: typetree.TagName, Name: name})
	p.types.AddTypedef(alias, target)
}
