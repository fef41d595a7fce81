package parse

import (
	"github.com/dekarrin/dooble/internal/lex"
	"github.com/dekarrin/dooble/internal/typetree"
	"github.com/dekarrin/dooble/internal/util"
)

// typeStarters names every token kind parseTypeFrom accepts as the start
// of a type production, in the order checked, for use in the diagnostic
// raised when none of them match.
var typeStarters = []string{"!", "?", "* or &", "[", "(", "an identifier", "struct", "sumtype", "map"}

// typeState is a state of the type-parsing FSA (spec.md §4.2). Each state
// after typeNone corresponds to one modifier or terminal production just
// consumed; the transition table below says what production is allowed to
// come next in a left-to-right read of the modifier chain (the reference
// comment `?[10]int` parses as Opt, then Arr(10), then Name("int"), and is
// built bottom-up as the recursion unwinds).
type typeState int

const (
	typeNone typeState = iota
	typeOpt
	typeRes
	typePtr
	typeArr
	typeFunc
	typeName
	typeStruct
	typeSum
	typeMap
)

// typeTransitions encodes the FSA's transition table. The terminal
// productions (Func, Name, Struct, Sum, Map) accept nothing further: once
// parsed, they end the chain. A deviation from the source table as quoted
// in spec.md §4.2: that table lists "None" as a valid next-state from Opt
// and Res, which would mean a bare trailing '?' or '!' with no operand; in
// a left-to-right modifier read that is a dangling modifier, so it is
// excluded here (DESIGN.md open-question addition). The table also omits
// Sum entirely from every "allowed next" set despite describing sumtype
// and struct identically in prose; Sum is restored everywhere Struct
// appears. `map[K]V` is likewise not named by the FSA's state list at all,
// despite Map being a first-class TypeTree tag and back-end target
// (spec.md §6.3); it is added here as a terminal production reachable
// everywhere Struct/Sum are.
var typeTransitions = map[typeState]map[typeState]bool{
	typeNone: {typeOpt: true, typeRes: true, typePtr: true, typeArr: true, typeFunc: true, typeName: true, typeStruct: true, typeSum: true, typeMap: true},
	typeRes:  {typeOpt: true, typePtr: true, typeArr: true, typeFunc: true, typeName: true, typeStruct: true, typeSum: true, typeMap: true},
	typeOpt:  {typePtr: true, typeArr: true, typeFunc: true, typeName: true, typeStruct: true, typeSum: true, typeMap: true},
	typePtr:  {typeOpt: true, typePtr: true, typeArr: true, typeFunc: true, typeName: true, typeStruct: true, typeSum: true, typeMap: true},
	typeArr:  {typeOpt: true, typePtr: true, typeArr: true, typeFunc: true, typeName: true, typeStruct: true, typeSum: true, typeMap: true},
	typeFunc:   {},
	typeName:   {},
	typeStruct: {},
	typeSum:    {},
	typeMap:    {},
}

func canFollowType(from, to typeState) bool {
	return typeTransitions[from][to]
}

// parseType parses one complete type starting in state typeNone and
// returns its interned typetree.ID, plus whether parsing succeeded (on
// failure, the caller should treat the declaration as untyped rather than
// trust typetree.Void as a real type).
func (p *Parser) parseType() (typetree.ID, bool) {
	return p.parseTypeFrom(typeNone)
}

// parseTypeFrom parses the production allowed to follow `from`, wrapping
// whatever it parses recursively for prefix modifiers (Res, Opt, Ptr, Arr).
func (p *Parser) parseTypeFrom(from typeState) (typetree.ID, bool) {
	var to typeState
	switch p.peek().Kind {
	case lex.KindBang:
		to = typeRes
	case lex.KindQuest:
		to = typeOpt
	case lex.KindStar, lex.KindAmper:
		to = typePtr
	case lex.KindLSquare:
		to = typeArr
	case lex.KindLParen:
		to = typeFunc
	case lex.KindIdent:
		to = typeName
	case lex.KindStruct:
		to = typeStruct
	case lex.KindSumtype:
		to = typeSum
	case lex.KindMap:
		to = typeMap
	default:
		starters := make([]string, len(typeStarters))
		copy(starters, typeStarters)
		p.errorHere("expected a type, starting with one of %s", util.MakeTextList(starters))
		return typetree.Void, false
	}

	if !canFollowType(from, to) {
		p.errorHere("unexpected type modifier here")
		return typetree.Void, false
	}

	switch to {
	case typeRes:
		p.advance()
		inner, ok := p.parseTypeFrom(typeRes)
		if !ok {
			return typetree.Void, false
		}
		return p.types.GetLeaf(inner, typetree.Leaf{Tag: typetree.TagErr}), true

	case typeOpt:
		p.advance()
		inner, ok := p.parseTypeFrom(typeOpt)
		if !ok {
			return typetree.Void, false
		}
		return p.types.GetLeaf(inner, typetree.Leaf{Tag: typetree.TagOpt}), true

	case typePtr:
		p.advance()
		inner, ok := p.parseTypeFrom(typePtr)
		if !ok {
			return typetree.Void, false
		}
		return p.types.GetLeaf(inner, typetree.Leaf{Tag: typetree.TagPtr}), true

	case typeArr:
		return p.parseArrType()

	case typeFunc:
		return p.parseFuncType()

	case typeName:
		name := p.advance()
		return p.types.GetLeaf(typetree.NoParent, typetree.Leaf{Tag: typetree.TagName, Name: name.SVal}), true

	case typeStruct:
		p.advance()
		return p.parseAggregateType(typetree.TagStruct)

	case typeSum:
		p.advance()
		return p.parseAggregateType(typetree.TagUnion)

	case typeMap:
		return p.parseMapType()
	}

	p.errorHere("expected a type")
	return typetree.Void, false
}

// parseArrType parses `[N]T` (fixed), `[vec]T` (growable), or `[]T`
// (slice), already past the caller's dispatch but not past the `[` itself.
func (p *Parser) parseArrType() (typetree.ID, bool) {
	p.expect(lex.KindLSquare, "'['")

	switch {
	case p.match(lex.KindRSquare):
		inner, ok := p.parseTypeFrom(typeArr)
		if !ok {
			return typetree.Void, false
		}
		return p.types.GetLeaf(inner, typetree.Leaf{Tag: typetree.TagSlice}), true

	case p.match(lex.KindVec):
		p.expect(lex.KindRSquare, "']'")
		inner, ok := p.parseTypeFrom(typeArr)
		if !ok {
			return typetree.Void, false
		}
		return p.types.GetLeaf(inner, typetree.Leaf{Tag: typetree.TagVec}), true

	default:
		size := p.consume(lex.KindInt, "array size")
		p.expect(lex.KindRSquare, "']'")
		inner, ok := p.parseTypeFrom(typeArr)
		if !ok {
			return typetree.Void, false
		}
		return p.types.GetLeaf(inner, typetree.Leaf{Tag: typetree.TagArr, ArrSize: int(size.IVal)}), true
	}
}

// parseFuncType parses `(T1, T2, ...) -> Ret`, with the return type
// optional (an omitted return type interns as typetree.Void).
func (p *Parser) parseFuncType() (typetree.ID, bool) {
	p.expect(lex.KindLParen, "'('")

	var params []typetree.ID
	for !p.check(lex.KindRParen) {
		id, ok := p.parseTypeFrom(typeNone)
		if ok {
			params = append(params, id)
		}
		if !p.match(lex.KindComma) {
			break
		}
	}
	p.expect(lex.KindRParen, "')'")

	ret := typetree.Void
	if p.match(lex.KindArrow) {
		id, ok := p.parseTypeFrom(typeNone)
		if ok {
			ret = id
		}
	}

	return p.types.GetLeaf(typetree.NoParent, typetree.Leaf{Tag: typetree.TagFn, FnRet: ret, FnParams: params}), true
}

// parseAggregateType parses `{ member: type; ... }`, already past the
// struct/sumtype keyword. Members are separated by ';' (typically the
// auto-inserted semicolon after each member's type).
func (p *Parser) parseAggregateType(tag typetree.Tag) (typetree.ID, bool) {
	p.expect(lex.KindLBrace, "'{'")

	var members []typetree.Member
	for !p.check(lex.KindRBrace) && !p.check(lex.KindEOF) {
		name := p.consume(lex.KindIdent, "member name").SVal
		p.expect(lex.KindColon, "':'")
		id, ok := p.parseTypeFrom(typeNone)
		if ok {
			members = append(members, typetree.Member{Name: name, Type: id})
		}
		p.match(lex.KindSemi)
	}
	p.expect(lex.KindRBrace, "'}'")

	return p.types.GetLeaf(typetree.NoParent, typetree.Leaf{Tag: tag, Members: members}), true
}

// parseMapType parses `map[K]V`, already knowing the current token is the
// 'map' keyword.
func (p *Parser) parseMapType() (typetree.ID, bool) {
	p.expect(lex.KindMap, "'map'")
	p.expect(lex.KindLSquare, "'['")
	key, keyOK := p.parseTypeFrom(typeNone)
	p.expect(lex.KindRSquare, "']'")
	val, valOK := p.parseTypeFrom(typeNone)
	if !keyOK || !valOK {
		return typetree.Void, false
	}
	return p.types.GetLeaf(typetree.NoParent, typetree.Leaf{Tag: typetree.TagMap, MapKey: key, MapVal: val}), true
}
