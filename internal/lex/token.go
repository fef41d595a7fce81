package lex

import "fmt"

// Kind is the tag of a Token. Kinds partition into keywords,
// operators/punctuation, literal-carriers, and the end-of-stream sentinel.
type Kind int

const (
	// KindEOF is the end-of-stream sentinel; every Lex call produces exactly
	// one, as the final token in the stream.
	KindEOF Kind = iota

	// Literal-carrying kinds.
	KindInt
	KindFloat
	KindString
	KindIdent

	// Punctuation / operators.
	KindDot
	KindDotDot
	KindDotDotDot
	KindComma
	KindLBrace
	KindRBrace
	KindLParen
	KindRParen
	KindLSquare
	KindRSquare
	KindSemi
	KindColon
	KindEqual
	KindAmper
	KindBitOr
	KindBitNot
	KindLess
	KindLessEq
	KindGreater
	KindGreaterEq
	KindStar
	KindPlus
	KindMinus
	KindSlash
	KindQuest
	KindBang
	KindArrow

	// Keywords.
	KindAlloc
	KindAnd
	KindBreak
	KindCase
	KindCo
	KindContinue
	KindDefer
	KindDo
	KindDont
	KindElse
	KindElif
	KindFall
	KindFalse
	KindFinal
	KindFor
	KindFree
	KindIf
	KindIn
	KindIs
	KindInclude
	KindMap
	KindMatch
	KindNil
	KindNot
	KindOr
	KindPackage
	KindProtocol
	KindProtect
	KindPub
	KindReturn
	KindStatic
	KindStruct
	KindSumtype
	KindTest
	KindTrue
	KindVec
	KindYield
	KindAlias
)

// keywords maps the reserved-word lexeme to its keyword Kind. Populated once
// at init from the ordered keyword list below so the set and the
// human-readable names (String) can't drift apart.
var keywords map[string]Kind

type keywordEntry struct {
	text string
	kind Kind
}

// keywordTable is the fixed keyword set named in the source language
// surface: alloc and break case co continue defer do don't else elif fall
// false final for free if in is include map match nil not or package
// protocol protect pub return static struct sumtype test true vec yield
// alias.
var keywordTable = []keywordEntry{
	{"alloc", KindAlloc},
	{"and", KindAnd},
	{"break", KindBreak},
	{"case", KindCase},
	{"co", KindCo},
	{"continue", KindContinue},
	{"defer", KindDefer},
	{"do", KindDo},
	{"don't", KindDont},
	{"else", KindElse},
	{"elif", KindElif},
	{"fall", KindFall},
	{"false", KindFalse},
	{"final", KindFinal},
	{"for", KindFor},
	{"free", KindFree},
	{"if", KindIf},
	{"in", KindIn},
	{"is", KindIs},
	{"include", KindInclude},
	{"map", KindMap},
	{"match", KindMatch},
	{"nil", KindNil},
	{"not", KindNot},
	{"or", KindOr},
	{"package", KindPackage},
	{"protocol", KindProtocol},
	{"protect", KindProtect},
	{"pub", KindPub},
	{"return", KindReturn},
	{"static", KindStatic},
	{"struct", KindStruct},
	{"sumtype", KindSumtype},
	{"test", KindTest},
	{"true", KindTrue},
	{"vec", KindVec},
	{"yield", KindYield},
	{"alias", KindAlias},
}

func init() {
	keywords = make(map[string]Kind, len(keywordTable))
	for _, e := range keywordTable {
		keywords[e.text] = e.kind
	}
}

// noAutoSemiBefore is the set of token Kinds after which a newline does NOT
// insert an automatic semicolon, because the construct is still "open":
// `. , { ( [ ;` per the source language surface.
var noAutoSemiBefore = map[Kind]bool{
	KindDot:    true,
	KindComma:  true,
	KindLBrace: true,
	KindLParen: true,
	KindLSquare: true,
	KindSemi:   true,
}

// Token is a lexeme read from source text, tagged with its Kind, its 1-indexed
// line and column, and at most one payload (int, float, or string) depending
// on Kind.
type Token struct {
	Kind Kind
	Line int
	Col  int

	// Lexeme is the exact source text the token was scanned from (set for
	// identifiers and keywords; empty for punctuation/operator tokens and
	// literals).
	Lexeme string

	IVal int64
	FVal float64
	SVal string
}

// IsKeyword reports whether k is one of the fixed reserved words.
func (k Kind) IsKeyword() bool {
	return k >= KindAlloc && k <= KindAlias
}

func (t Token) String() string {
	switch t.Kind {
	case KindInt:
		return fmt.Sprintf("INT(%d)", t.IVal)
	case KindFloat:
		return fmt.Sprintf("FLOAT(%g)", t.FVal)
	case KindString:
		return fmt.Sprintf("STR(%q)", t.SVal)
	case KindIdent:
		return fmt.Sprintf("IDENT(%s)", t.SVal)
	case KindEOF:
		return "EOF"
	default:
		if t.Lexeme != "" {
			return t.Lexeme
		}
		return kindNames[t.Kind]
	}
}

var kindNames = map[Kind]string{
	KindDot: ".", KindDotDot: "..", KindDotDotDot: "...", KindComma: ",",
	KindLBrace: "{", KindRBrace: "}", KindLParen: "(", KindRParen: ")",
	KindLSquare: "[", KindRSquare: "]", KindSemi: ";", KindColon: ":",
	KindEqual: "=", KindAmper: "&", KindBitOr: "|", KindBitNot: "~",
	KindLess: "<", KindLessEq: "<=", KindGreater: ">", KindGreaterEq: ">=",
	KindStar: "*", KindPlus: "+", KindMinus: "-", KindSlash: "/",
	KindQuest: "?", KindBang: "!", KindArrow: "->",
}
