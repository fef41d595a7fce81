// Package typetree implements the TypeTree: a canonicalizing, prefix-shared
// representation of structural types (spec.md §3.3/§4.3). Types are
// interned leaf-by-leaf; two leaves under the same parent that are
// structurally equal collapse onto the same ID, which is then a type's
// identity (equality on types is identity-equality once interned).
//
// This realizes spec.md §9's suggested simplification over the reference
// implementation: rather than walking parent pointers to compare two types,
// the Tree is a pure interning table keyed by (parent, tag, payload), so
// identity equality falls out of insertion rather than needing a separate
// comparison pass.
package typetree

// ID is a typeid: the stable identity of an interned leaf, i.e. a type.
type ID int

// NoParent is passed as the parent of a leaf with no parent chain (a base
// type). It is also returned by inference functions on failure, since no
// real leaf can ever be assigned this ID.
const NoParent ID = -1

// Void is the sentinel returned by type inference on failure. It is the same
// value as NoParent: the two concepts never need to be told apart, since one
// is only ever passed as a parent argument and the other only ever returned
// as a result.
const Void ID = NoParent

// Tag identifies which kind of type modifier or base a Leaf represents.
type Tag int

const (
	TagName Tag = iota
	TagPtr
	TagOpt
	TagErr
	TagArr
	TagSlice
	TagVec
	TagMap
	TagFn
	TagStruct
	TagUnion
)

func (t Tag) String() string {
	switch t {
	case TagName:
		return "Name"
	case TagPtr:
		return "Ptr"
	case TagOpt:
		return "Opt"
	case TagErr:
		return "Err"
	case TagArr:
		return "Arr"
	case TagSlice:
		return "Slice"
	case TagVec:
		return "Vec"
	case TagMap:
		return "Map"
	case TagFn:
		return "Fn"
	case TagStruct:
		return "Struct"
	case TagUnion:
		return "Union"
	default:
		return "?"
	}
}

// Member is one (name, type) pair of a Struct or Union leaf.
type Member struct {
	Name string
	Type ID
}

// Leaf is one node of the TypeTree: a single type modifier or base, plus the
// parent it was interned under.
type Leaf struct {
	Tag    Tag
	Parent ID

	Name string // TagName

	ArrSize int // TagArr

	MapKey ID // TagMap
	MapVal ID // TagMap

	FnRet    ID   // TagFn
	FnParams []ID // TagFn

	Members []Member // TagStruct, TagUnion
}

// clone returns a deep copy of l, so interning never lets a caller's slice
// backing (FnParams/Members) alias tree-owned storage.
func (l Leaf) clone() Leaf {
	out := l
	if l.FnParams != nil {
		out.FnParams = append([]ID(nil), l.FnParams...)
	}
	if l.Members != nil {
		out.Members = append([]Member(nil), l.Members...)
	}
	return out
}

// PrimitiveIndex names the seven built-in base types, interned once at
// NewTree time into branch 0 (the NoParent branch).
type PrimitiveIndex int

const (
	IntIndex PrimitiveIndex = iota
	FloatIndex
	DoobleIndex
	BoolIndex
	StringIndex
	CharIndex
	NullIndex
	numPrimitives
)

var primitiveNames = [numPrimitives]string{
	IntIndex: "int", FloatIndex: "float", DoobleIndex: "dooble",
	BoolIndex: "bool", StringIndex: "string", CharIndex: "char", NullIndex: "null",
}

// Tree interns every type reachable from a compile. The zero value is not
// ready to use; construct one with NewTree.
type Tree struct {
	leaves   []Leaf
	children map[ID][]ID // parent -> ordered ids interned directly under it
	aliases  map[ID]ID

	basics [numPrimitives]ID
}

// NewTree returns a Tree with the seven primitive base types already
// interned.
func NewTree() *Tree {
	t := &Tree{
		children: make(map[ID][]ID),
		aliases:  make(map[ID]ID),
	}
	for i := PrimitiveIndex(0); i < numPrimitives; i++ {
		t.basics[i] = t.GetLeaf(NoParent, Leaf{Tag: TagName, Name: primitiveNames[i]})
	}
	return t
}

// BasicType returns the typeid of the primitive at index.
func (t *Tree) BasicType(index PrimitiveIndex) ID {
	if index < 0 || index >= numPrimitives {
		return Void
	}
	return t.basics[index]
}

// leafEqual implements spec.md §4.3's equality rule. Tags must match; the
// payload comparison depends on tag. Struct/Union leaves are never
// structurally equal to one another, even to themselves under separate
// insertions — each aggregate occurrence is a distinct type (use a Name
// alias to share one). Every other tag's "parent chain equal" requirement
// is already satisfied implicitly, since leafEqual is only ever called
// between leaves interned under the same parent bucket.
func leafEqual(a, b Leaf) bool {
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case TagArr:
		return a.ArrSize == b.ArrSize
	case TagName:
		return a.Name == b.Name
	case TagMap:
		return a.MapKey == b.MapKey && a.MapVal == b.MapVal
	case TagFn:
		if a.FnRet != b.FnRet || len(a.FnParams) != len(b.FnParams) {
			return false
		}
		for i := range a.FnParams {
			if a.FnParams[i] != b.FnParams[i] {
				return false
			}
		}
		return true
	case TagStruct, TagUnion:
		return false
	default: // TagPtr, TagOpt, TagErr, TagSlice, TagVec
		return true
	}
}

// LeafExists is a pure lookup: it reports whether a leaf equal to template
// is already interned under parent, without inserting one.
func (t *Tree) LeafExists(parent ID, template Leaf) bool {
	_, ok := t.find(parent, template)
	return ok
}

func (t *Tree) find(parent ID, template Leaf) (ID, bool) {
	for _, id := range t.children[parent] {
		if leafEqual(t.leaves[id], template) {
			return id, true
		}
	}
	return Void, false
}

// GetLeaf looks up a leaf equal to template under parent; if found, returns
// its id. Otherwise it deep-copies template (so owned payloads such as
// member lists, parameter sequences, and names are never aliased to caller
// memory) and interns it as a new leaf, returning the new id.
func (t *Tree) GetLeaf(parent ID, template Leaf) ID {
	if id, ok := t.find(parent, template); ok {
		return id
	}

	leaf := template.clone()
	leaf.Parent = parent
	id := ID(len(t.leaves))
	t.leaves = append(t.leaves, leaf)
	t.children[parent] = append(t.children[parent], id)
	return id
}

// Lookup returns the Leaf stored at id. Behavior is undefined (will panic)
// if id is not a valid identity returned by this Tree.
func (t *Tree) Lookup(id ID) Leaf {
	return t.leaves[id]
}

// AddTypedef records that alias `from` resolves to `to`, for `A :: B`-style
// type aliases (spec.md §3.3).
func (t *Tree) AddTypedef(from, to ID) {
	t.aliases[from] = to
}

// ResolveAlias follows the alias table from id until a fixed point (an id
// with no further alias entry) and returns it. A self-referential or
// circular alias chain returns the first id the walk reaches a second time,
// rather than looping forever.
func (t *Tree) ResolveAlias(id ID) ID {
	seen := map[ID]bool{}
	for {
		if seen[id] {
			return id
		}
		seen[id] = true
		next, ok := t.aliases[id]
		if !ok {
			return id
		}
		id = next
	}
}

// AsPointer interns (or returns the existing) Ptr leaf over t.
func (tree *Tree) AsPointer(t ID) ID {
	return tree.GetLeaf(t, Leaf{Tag: TagPtr})
}

// AsAddress interns (or returns the existing) Ptr leaf over t. The source
// language's unary '&' ("address-of") and '*' ("pointer-to") both resolve to
// the same Ptr leaf tag — the reference implementation's type header
// declares separate as_pointer/as_address entry points but only one leaf
// tag, so there is nothing for the two operations to produce differently at
// the type level; they are kept as separate functions here only to mirror
// that entry-point split at the call sites in internal/sema.
func (tree *Tree) AsAddress(t ID) ID {
	return tree.GetLeaf(t, Leaf{Tag: TagPtr})
}
