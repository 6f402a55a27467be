package scene

import (
	"fmt"

	"github.com/dusk-indust/unitymerge/internal/docnode"
	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/track"
	"github.com/dusk-indust/unitymerge/internal/unityyaml"
)

// Transform is a hierarchy node. RectTransform loads as a Transform; its
// extra layout fields stay in the residual bag.
//
// m_Children duplicates what m_Father already says. It is loaded only to
// break ordering ties, excluded from diff and merge, and rewritten from the
// graph by the link pass.
type Transform struct {
	Base

	Rotation  track.Array[string]
	Position  track.Array[string]
	Scale     track.Array[string]
	Father    track.Ref
	RootOrder track.Value[int32]
	EulerHint track.Array[string]

	children    []int64
	hasChildren bool
}

func loadTransform(o unityyaml.Object) (*Transform, error) {
	t := &Transform{}
	l := newLoader(o.Body)
	t.loadHead(l)
	l.vector("m_LocalRotation", track.Vec4, &t.Rotation)
	l.vector("m_LocalPosition", track.Vec3, &t.Position)
	l.vector("m_LocalScale", track.Vec3, &t.Scale)
	if l.body.Has("m_Children") {
		t.hasChildren = true
		for i, it := range l.sequence("m_Children") {
			ref, err := track.LoadRef(it)
			if err != nil {
				l.fail(fmt.Sprintf("m_Children[%d]", i), err)
				break
			}
			t.children = append(t.children, ref.ID())
		}
	}
	l.ref("m_Father", &t.Father)
	loadInt(l, "m_RootOrder", &t.RootOrder)
	l.vector("m_LocalEulerAnglesHint", track.Vec3, &t.EulerHint)
	if err := l.finish(&t.Base, o); err != nil {
		return nil, err
	}
	return t, nil
}

// Children returns the child transform ids in hierarchy order as of the
// last link pass.
func (t *Transform) Children() []int64 {
	return append([]int64(nil), t.children...)
}

func (t *Transform) Save() *docnode.Node {
	s := newSaver()
	t.saveHead(s)
	s.vector("m_LocalRotation", track.Vec4, t.Rotation)
	s.vector("m_LocalPosition", track.Vec3, t.Position)
	s.vector("m_LocalScale", track.Vec3, t.Scale)
	if t.hasChildren || len(t.children) > 0 {
		items := make([]*docnode.Node, len(t.children))
		for i, id := range t.children {
			ref := track.LocalRef(id)
			items[i] = ref.Node()
		}
		s.sequence("m_Children", items)
	}
	s.ref("m_Father", t.Father)
	saveInt(s, "m_RootOrder", t.RootOrder)
	s.vector("m_LocalEulerAnglesHint", track.Vec3, t.EulerHint)
	s.rest(t.Rest)
	return s.node(t.order)
}

func (t *Transform) Diff(base Entity) bool {
	b := base.(*Transform)
	changed := t.diffHead(&b.Base)
	changed = t.Rotation.Diff(&b.Rotation) || changed
	changed = t.Position.Diff(&b.Position) || changed
	changed = t.Scale.Diff(&b.Scale) || changed
	changed = t.Father.Diff(&b.Father) || changed
	changed = t.RootOrder.Diff(&b.RootOrder) || changed
	changed = t.EulerHint.Diff(&b.EulerHint) || changed
	changed = t.diffRest(&b.Base) || changed
	t.modified = changed
	return changed
}

func (t *Transform) Merge(base, theirs Entity, r *report.Report) {
	b, th := base.(*Transform), theirs.(*Transform)
	r.Push(t.Describe(), t.ScenePath())
	defer r.Pop()

	t.mergeHead(&th.Base, r)
	t.Rotation.Merge("m_LocalRotation", &th.Rotation, r)
	t.Position.Merge("m_LocalPosition", &th.Position, r)
	t.Scale.Merge("m_LocalScale", &th.Scale, r)
	t.hasChildren = t.hasChildren || th.hasChildren
	t.Father.Merge("m_Father", &th.Father, r)
	t.RootOrder.Merge("m_RootOrder", &th.RootOrder, r)
	t.EulerHint.Merge("m_LocalEulerAnglesHint", &th.EulerHint, r)
	t.mergeTail(&b.Base, &th.Base, r)
}

func (t *Transform) Equal(other Entity) bool {
	return equalSaved(t, other)
}
