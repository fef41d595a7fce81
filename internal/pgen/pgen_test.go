package pgen

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_Lexer_simpleRule(t *testing.T) {
	toks, err := NewLexer([]byte(`expr -> term ('+' term)*;`)).Lex()
	assert.NoError(t, err)

	var kinds []Kind
	for _, tok := range toks {
		kinds = append(kinds, tok.Kind)
	}
	assert.Equal(t, []Kind{
		KindIdent, KindArrow, KindIdent,
		KindLParen, KindString, KindIdent, KindRParen, KindStar,
		KindSemi, KindEOF,
	}, kinds)
}

func Test_Lexer_skipsCommentsAndWhitespace(t *testing.T) {
	toks, err := NewLexer([]byte("# a comment\nfoo -> 'x'; # trailing\n")).Lex()
	assert.NoError(t, err)
	assert.Equal(t, KindIdent, toks[0].Kind)
	assert.Equal(t, "foo", toks[0].Text)
}

func Test_Lexer_unterminatedStringIsError(t *testing.T) {
	_, err := NewLexer([]byte(`rule -> 'unterminated;`)).Lex()
	assert.Error(t, err)
}

func Test_Parser_sequenceWithQuantifiedGroup(t *testing.T) {
	toks, err := NewLexer([]byte(`expr -> term ('+' term)*;`)).Lex()
	assert.NoError(t, err)

	g, err := NewParser(toks).Parse()
	assert.NoError(t, err)
	assert.Len(t, g.Rules, 1)

	r := g.Rules[0]
	assert.Equal(t, "expr", r.Name)
	assert.Len(t, r.Items, 2)

	assert.NotNil(t, r.Items[0].Atom)
	assert.Equal(t, "term", r.Items[0].Atom.Text)
	assert.Equal(t, QuantNone, r.Items[0].Quant)

	assert.Len(t, r.Items[1].Group, 2)
	assert.Equal(t, QuantStar, r.Items[1].Quant)
	assert.Equal(t, AtomString, r.Items[1].Group[0].Atom.Kind)
	assert.Equal(t, "+", r.Items[1].Group[0].Atom.Text)
}

func Test_Parser_choiceAlternatives(t *testing.T) {
	toks, err := NewLexer([]byte(`stmt -> ('if' | 'while');`)).Lex()
	assert.NoError(t, err)

	g, err := NewParser(toks).Parse()
	assert.NoError(t, err)

	r := g.Rules[0]
	assert.Len(t, r.Items, 1)
	assert.Len(t, r.Items[0].Choice, 2)
	assert.Equal(t, "if", r.Items[0].Choice[0][0].Atom.Text)
	assert.Equal(t, "while", r.Items[0].Choice[1][0].Atom.Text)
}

func Test_Parser_missingSemiIsError(t *testing.T) {
	toks, err := NewLexer([]byte(`stmt -> 'x'`)).Lex()
	assert.NoError(t, err)

	_, err = NewParser(toks).Parse()
	assert.Error(t, err)
}

func Test_Parser_emptyRuleIsError(t *testing.T) {
	toks, err := NewLexer([]byte(`stmt -> ;`)).Lex()
	assert.NoError(t, err)

	_, err = NewParser(toks).Parse()
	assert.Error(t, err)
}

func Test_Emitter_tokensFileDeclaresEachLiteral(t *testing.T) {
	g := &Grammar{Rules: []Rule{
		{Name: "stmt", Items: []Item{
			{Choice: [][]Item{
				{{Atom: &Atom{Kind: AtomString, Text: "if"}}},
				{{Atom: &Atom{Kind: AtomString, Text: "while"}}},
			}},
		}},
	}}

	e := NewEmitter(g, Config{PackageName: "gen"})
	out, err := e.EmitTokens()
	assert.NoError(t, err)
	assert.Contains(t, out, "package gen")
	assert.Contains(t, out, "TokenIf")
	assert.Contains(t, out, "TokenWhile")
	assert.Contains(t, out, "func MatchToken(")
}

func Test_Emitter_parserFileDeclaresRuleFunc(t *testing.T) {
	g := &Grammar{Rules: []Rule{
		{Name: "term", Items: []Item{
			{Atom: &Atom{Kind: AtomRegex, Text: `[0-9]+`}},
		}},
	}}

	e := NewEmitter(g, Config{PackageName: "gen"})
	out, err := e.EmitParser()
	assert.NoError(t, err)
	assert.Contains(t, out, "func (p *ParserState) Parseterm() (*Node, error)")
	assert.Contains(t, out, "MatchToken(p.Src, p.Pos)")
}

func Test_Generate_fullPipelineProducesBothFiles(t *testing.T) {
	src := []byte(`
digit -> /[0-9]+/;
expr -> digit ('+' digit)*;
`)
	tokens, parser, err := Generate(src, Config{PackageName: "arith"})
	assert.NoError(t, err)
	assert.True(t, strings.Contains(tokens, "package arith"))
	assert.True(t, strings.Contains(parser, "package arith"))
	assert.Contains(t, parser, "Parsedigit")
	assert.Contains(t, parser, "Parseexpr")
	assert.Contains(t, tokens, "TokenRegex0Pattern")
}

func Test_Generate_malformedGrammarReturnsError(t *testing.T) {
	_, _, err := Generate([]byte(`rule -> `), Config{PackageName: "gen"})
	assert.Error(t, err)
}
