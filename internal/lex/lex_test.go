package lex

import (
	"testing"

	"github.com/dekarrin/dooble/internal/diag"
	"github.com/stretchr/testify/assert"
)

func kinds(toks []Token) []Kind {
	ks := make([]Kind, len(toks))
	for i, t := range toks {
		ks[i] = t.Kind
	}
	return ks
}

// Test_Lex_numericGreed is scenario S1: "1,2\n" yields INT, COMMA, INT, SEMI, EOF.
func Test_Lex_numericGreed(t *testing.T) {
	sink := &diag.Sink{}
	toks := New([]byte("1,2\n"), sink).Lex()

	assert.False(t, sink.HasErrors())
	assert.Equal(t, []Kind{KindInt, KindComma, KindInt, KindSemi, KindEOF}, kinds(toks))
	assert.Equal(t, int64(1), toks[0].IVal)
	assert.Equal(t, int64(2), toks[2].IVal)
}

// Test_Lex_mixedRadix is scenario S2.
func Test_Lex_mixedRadix(t *testing.T) {
	sink := &diag.Sink{}
	toks := New([]byte("1293342\t123_45.6\t0xFF_00_00\t0b101010\n"), sink).Lex()

	assert.False(t, sink.HasErrors())
	assert.Equal(t, []Kind{KindInt, KindFloat, KindInt, KindInt, KindSemi, KindEOF}, kinds(toks))
	assert.Equal(t, int64(1293342), toks[0].IVal)
	assert.Equal(t, 12345.6, toks[1].FVal)
	assert.Equal(t, int64(0xFF0000), toks[2].IVal)
	assert.Equal(t, int64(0b101010), toks[3].IVal)
}

// Test_Lex_functionRoundTrip is scenario S3: 22 tokens.
func Test_Lex_functionRoundTrip(t *testing.T) {
	sink := &diag.Sink{}
	toks := New([]byte("my_func :: (a: int, b: int) int {\n return a + b\n}\n"), sink).Lex()

	assert.False(t, sink.HasErrors())
	assert.Len(t, toks, 22)
	assert.Equal(t, KindEOF, toks[len(toks)-1].Kind)
}

func Test_Lex_keywordsNeverIdent(t *testing.T) {
	testCases := []struct {
		name  string
		input string
		want  Kind
	}{
		{"static", "static", KindStatic},
		{"dont", "don't", KindDont},
		{"ident not keyword prefix", "dont_", KindIdent},
		{"struct", "struct", KindStruct},
		{"sumtype", "sumtype", KindSumtype},
		{"alias", "alias", KindAlias},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &diag.Sink{}
			toks := New([]byte(tc.input), sink).Lex()
			assert.Equal(t, tc.want, toks[0].Kind)
		})
	}
}

func Test_Lex_autoSemicolon(t *testing.T) {
	sink := &diag.Sink{}
	toks := New([]byte("x\n"), sink).Lex()
	assert.Equal(t, []Kind{KindIdent, KindSemi, KindEOF}, kinds(toks))
}

func Test_Lex_noAutoSemicolonAfterOpeners(t *testing.T) {
	testCases := []struct {
		name  string
		input string
	}{
		{"dot", "a.\nb"},
		{"comma", "a,\nb"},
		{"lbrace", "{\nb"},
		{"lparen", "(\nb"},
		{"lsquare", "[\nb"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			sink := &diag.Sink{}
			toks := New([]byte(tc.input), sink).Lex()
			for _, k := range kinds(toks)[:len(toks)-1] {
				assert.NotEqual(t, KindSemi, k)
			}
		})
	}
}

// Test_Lex_bareRangeLiteral guards against the range operator's second
// '.' being mistaken for a second decimal point.
func Test_Lex_bareRangeLiteral(t *testing.T) {
	sink := &diag.Sink{}
	toks := New([]byte("1..10\n"), sink).Lex()

	assert.False(t, sink.HasErrors())
	assert.Equal(t, []Kind{KindInt, KindDotDot, KindInt, KindSemi, KindEOF}, kinds(toks))
	assert.Equal(t, int64(1), toks[0].IVal)
	assert.Equal(t, int64(10), toks[2].IVal)
}

func Test_Lex_floatThenRange(t *testing.T) {
	sink := &diag.Sink{}
	toks := New([]byte("1.5..10\n"), sink).Lex()

	assert.False(t, sink.HasErrors())
	assert.Equal(t, []Kind{KindFloat, KindDotDot, KindInt, KindSemi, KindEOF}, kinds(toks))
	assert.Equal(t, 1.5, toks[0].FVal)
}

// Test_Lex_autoSemicolonLineAcrossBlankLines guards the synthetic
// semicolon against being attributed to a later blank line instead of the
// line the statement it terminates actually ended on.
func Test_Lex_autoSemicolonLineAcrossBlankLines(t *testing.T) {
	sink := &diag.Sink{}
	toks := New([]byte("x\n\ny\n"), sink).Lex()

	assert.False(t, sink.HasErrors())
	assert.Equal(t, []Kind{KindIdent, KindSemi, KindIdent, KindSemi, KindEOF}, kinds(toks))
	assert.Equal(t, 1, toks[0].Line, "x")
	assert.Equal(t, 1, toks[1].Line, "semicolon ending x's statement belongs on x's line")
	assert.Equal(t, 3, toks[2].Line, "y")
	assert.Equal(t, 3, toks[3].Line, "semicolon ending y's statement")
}

func Test_Lex_unterminatedString(t *testing.T) {
	sink := &diag.Sink{}
	New([]byte("'hello"), sink).Lex()
	assert.True(t, sink.HasErrors())
}

func Test_Lex_comment(t *testing.T) {
	sink := &diag.Sink{}
	toks := New([]byte("x -- a comment\ny"), sink).Lex()
	assert.False(t, sink.HasErrors())
	assert.Equal(t, []Kind{KindIdent, KindSemi, KindIdent, KindEOF}, kinds(toks))
}
