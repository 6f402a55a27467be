package track

import (
	"github.com/dusk-indust/unitymerge/internal/docnode"
	"github.com/dusk-indust/unitymerge/internal/report"
)

// Tree is a tracked slot whose value is an arbitrary node, such as the value
// of a prefab property override. A nil Node means the slot is absent.
type Tree struct {
	Node    *docnode.Node
	Changed bool

	base *docnode.Node
}

// TreeOf returns a slot holding n.
func TreeOf(n *docnode.Node) Tree {
	return Tree{Node: n}
}

// Diff compares t with the base slot structurally.
func (t *Tree) Diff(base *Tree) bool {
	t.base = base.Node
	t.Changed = !docnode.Equal(t.Node, base.Node)
	return t.Changed
}

// Merge resolves t against theirs, logging under name.
func (t *Tree) Merge(name string, theirs *Tree, r *report.Report) {
	mine, their := nodeSlot(t.Node, t.base), nodeSlot(theirs.Node, theirs.base)
	if decide(r, name, mine, their, docnode.Equal(t.Node, theirs.Node)) {
		t.Node = theirs.Node.Clone()
	}
}
