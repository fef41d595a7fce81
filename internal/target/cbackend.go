package target

import (
	"fmt"

	"github.com/dekarrin/dooble/internal/typetree"
)

// CBackend maps typetree.ID chains onto CType declarators per spec.md
// §6.3's mapping table, and accumulates the anonymous aggregates (structs
// generated for Struct/Union/Opt/Err/Slice/Vec/Map leaves) that must be
// forward-declared once, before anything referencing them, per spec.md
// §4.5's "Anonymous aggregates are accumulated during type-building."
type CBackend struct {
	Tree *typetree.Tree

	anonNames  map[typetree.ID]string
	anonFields map[typetree.ID][]Identifier
	anonOrder  []typetree.ID
	nextAnon   int
}

// NewCBackend prepares a backend over tree; nothing is emitted until
// EmitAnonymousTypedefs is called.
func NewCBackend(tree *typetree.Tree) *CBackend {
	return &CBackend{
		Tree:       tree,
		anonNames:  make(map[typetree.ID]string),
		anonFields: make(map[typetree.ID][]Identifier),
	}
}

// TypeOf converts a typetree.ID into the CType that renders its spec.md
// §6.3 C mapping.
func (cb *CBackend) TypeOf(id typetree.ID) CType {
	if id == typetree.Void {
		return CType{TypeName: "void"}
	}

	leaf := cb.Tree.Lookup(id)

	switch leaf.Tag {
	case typetree.TagName:
		return CType{TypeName: leaf.Name}

	case typetree.TagPtr:
		t := cb.TypeOf(leaf.Parent)
		t.Modifiers = append([]CTypeElem{{Tag: ElemPtr}}, t.Modifiers...)
		return t

	case typetree.TagArr:
		t := cb.TypeOf(leaf.Parent)
		t.Modifiers = append([]CTypeElem{{Tag: ElemArr, ArrSize: leaf.ArrSize}}, t.Modifiers...)
		return t

	case typetree.TagFn:
		ret := cb.TypeOf(leaf.FnRet)
		ret.Params = make([]CType, len(leaf.FnParams))
		for i, p := range leaf.FnParams {
			ret.Params[i] = cb.TypeOf(p)
		}
		return ret

	case typetree.TagOpt, typetree.TagErr:
		// spec.md §6.3: both map to the identical layout `struct { bool
		// is_valid; T *opt; }` — Opt and Err are distinguished at the
		// source-language level (optional vs. error-result) but have no
		// distinct C representation, matching the table's identical rows.
		return CType{TypeName: cb.anonOptLike(id, leaf.Parent)}

	case typetree.TagSlice:
		return CType{TypeName: cb.anonSlice(id, leaf.Parent)}

	case typetree.TagVec:
		return CType{TypeName: cb.anonVec(id, leaf.Parent)}

	case typetree.TagMap:
		// spec.md §6.3 leaves Map "not yet defined." Resolved here: an
		// opaque forward-declared aggregate carrying parallel key/value
		// arrays and a length, the same shape as Vec but doubled — the
		// simplest representation that needs no hash table machinery from
		// the back-end itself (the source-language runtime, not this
		// compiler, would supply insert/lookup).
		return CType{TypeName: cb.anonMap(id, leaf.MapKey, leaf.MapVal)}

	case typetree.TagStruct, typetree.TagUnion:
		return CType{TypeName: cb.anonAggregate(id, leaf)}

	default:
		return CType{TypeName: "void"}
	}
}

func (cb *CBackend) allocName(id typetree.ID) string {
	if name, ok := cb.anonNames[id]; ok {
		return name
	}
	name := fmt.Sprintf("anon%d", cb.nextAnon)
	cb.nextAnon++
	cb.anonNames[id] = name
	cb.anonOrder = append(cb.anonOrder, id)
	return name
}

func (cb *CBackend) anonOptLike(id, inner typetree.ID) string {
	name := cb.allocName(id)
	if _, done := cb.anonFields[id]; done {
		return name
	}
	ptr := cb.TypeOf(inner)
	ptr.Modifiers = append([]CTypeElem{{Tag: ElemPtr}}, ptr.Modifiers...)
	cb.anonFields[id] = []Identifier{
		{Name: "is_valid", Type: CType{TypeName: "bool"}},
		{Name: "opt", Type: ptr},
	}
	return name
}

func (cb *CBackend) anonSlice(id, inner typetree.ID) string {
	name := cb.allocName(id)
	if _, done := cb.anonFields[id]; done {
		return name
	}
	ptr := cb.TypeOf(inner)
	ptr.Modifiers = append([]CTypeElem{{Tag: ElemPtr}}, ptr.Modifiers...)
	cb.anonFields[id] = []Identifier{
		{Name: "arr", Type: ptr},
		{Name: "len", Type: CType{TypeName: "size_t"}},
	}
	return name
}

func (cb *CBackend) anonVec(id, inner typetree.ID) string {
	name := cb.allocName(id)
	if _, done := cb.anonFields[id]; done {
		return name
	}
	ptr := cb.TypeOf(inner)
	ptr.Modifiers = append([]CTypeElem{{Tag: ElemPtr}}, ptr.Modifiers...)
	cb.anonFields[id] = []Identifier{
		{Name: "arr", Type: ptr},
		{Name: "cap", Type: CType{TypeName: "size_t"}},
		{Name: "len", Type: CType{TypeName: "size_t"}},
	}
	return name
}

func (cb *CBackend) anonMap(id, keyID, valID typetree.ID) string {
	name := cb.allocName(id)
	if _, done := cb.anonFields[id]; done {
		return name
	}
	keyPtr := cb.TypeOf(keyID)
	keyPtr.Modifiers = append([]CTypeElem{{Tag: ElemPtr}}, keyPtr.Modifiers...)
	valPtr := cb.TypeOf(valID)
	valPtr.Modifiers = append([]CTypeElem{{Tag: ElemPtr}}, valPtr.Modifiers...)
	cb.anonFields[id] = []Identifier{
		{Name: "keys", Type: keyPtr},
		{Name: "vals", Type: valPtr},
		{Name: "len", Type: CType{TypeName: "size_t"}},
	}
	return name
}

func (cb *CBackend) anonAggregate(id typetree.ID, leaf typetree.Leaf) string {
	name := cb.allocName(id)
	if _, done := cb.anonFields[id]; done {
		return name
	}
	fields := make([]Identifier, len(leaf.Members))
	for i, m := range leaf.Members {
		fields[i] = Identifier{Name: m.Name, Type: cb.TypeOf(m.Type)}
	}
	cb.anonFields[id] = fields
	return name
}

// EmitAnonymousTypedefs emits, via b, one `typedef struct anonN { ... }
// anonN;`-shaped scope per accumulated aggregate, in first-requested order,
// ahead of anything that references them (spec.md §4.5). Each field is
// emitted as a scope identifier the same way a struct's members are.
func (cb *CBackend) EmitAnonymousTypedefs(b *Builder) {
	for _, id := range cb.anonOrder {
		name := cb.anonNames[id]
		b.EmitExpression("typedef struct " + name)
		b.EmitScope()
		for _, field := range cb.anonFields[id] {
			b.EmitIdentifier(field.Name, field.IsStatic, field.IsExtern, field.Type)
		}
		b.EmitScopeEnd()
		b.EmitAtomic(" " + name)
		b.EmitStatement()
	}
}
