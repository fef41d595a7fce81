package typetree

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_NewTree_internsPrimitives(t *testing.T) {
	tree := NewTree()

	testCases := []struct {
		name  string
		index PrimitiveIndex
		want  string
	}{
		{"int", IntIndex, "int"},
		{"float", FloatIndex, "float"},
		{"dooble", DoobleIndex, "dooble"},
		{"bool", BoolIndex, "bool"},
		{"string", StringIndex, "string"},
		{"char", CharIndex, "char"},
		{"null", NullIndex, "null"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			id := tree.BasicType(tc.index)
			leaf := tree.Lookup(id)
			assert.Equal(t, TagName, leaf.Tag)
			assert.Equal(t, tc.want, leaf.Name)
		})
	}
}

// Test_GetLeaf_interning is invariant 4: equal templates + equal parent
// always return the same typeid.
func Test_GetLeaf_interning(t *testing.T) {
	tree := NewTree()
	intID := tree.BasicType(IntIndex)

	a := tree.GetLeaf(intID, Leaf{Tag: TagArr, ArrSize: 3})
	b := tree.GetLeaf(intID, Leaf{Tag: TagArr, ArrSize: 3})
	c := tree.GetLeaf(intID, Leaf{Tag: TagArr, ArrSize: 4})

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
}

func Test_GetLeaf_structNeverEqual(t *testing.T) {
	tree := NewTree()

	a := tree.GetLeaf(NoParent, Leaf{Tag: TagStruct, Members: []Member{{Name: "x", Type: tree.BasicType(IntIndex)}}})
	b := tree.GetLeaf(NoParent, Leaf{Tag: TagStruct, Members: []Member{{Name: "x", Type: tree.BasicType(IntIndex)}}})

	assert.NotEqual(t, a, b, "two struct leaves with identical payloads must still be distinct types")
}

func Test_GetLeaf_deepCopiesOwnedPayload(t *testing.T) {
	tree := NewTree()

	params := []ID{tree.BasicType(IntIndex)}
	fn := tree.GetLeaf(NoParent, Leaf{Tag: TagFn, FnRet: tree.BasicType(BoolIndex), FnParams: params})

	params[0] = ID(9999)

	leaf := tree.Lookup(fn)
	assert.Equal(t, tree.BasicType(IntIndex), leaf.FnParams[0], "mutating the caller's slice after interning must not affect the tree")
}

func Test_AddTypedef_ResolveAlias(t *testing.T) {
	tree := NewTree()
	name := tree.GetLeaf(NoParent, Leaf{Tag: TagName, Name: "MyInt"})
	tree.AddTypedef(name, tree.BasicType(IntIndex))

	assert.Equal(t, tree.BasicType(IntIndex), tree.ResolveAlias(name))
}

func Test_ResolveAlias_breaksCycles(t *testing.T) {
	tree := NewTree()
	a := tree.GetLeaf(NoParent, Leaf{Tag: TagName, Name: "A"})
	b := tree.GetLeaf(NoParent, Leaf{Tag: TagName, Name: "B"})
	tree.AddTypedef(a, b)
	tree.AddTypedef(b, a)

	assert.NotPanics(t, func() { tree.ResolveAlias(a) })
}

func Test_AsPointer_AsAddress_sameLeaf(t *testing.T) {
	tree := NewTree()
	intID := tree.BasicType(IntIndex)

	assert.Equal(t, tree.AsPointer(intID), tree.AsAddress(intID))
}

func Test_LeafExists(t *testing.T) {
	tree := NewTree()
	intID := tree.BasicType(IntIndex)

	assert.False(t, tree.LeafExists(intID, Leaf{Tag: TagPtr}))
	tree.AsPointer(intID)
	assert.True(t, tree.LeafExists(intID, Leaf{Tag: TagPtr}))
}
