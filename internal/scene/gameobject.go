package scene

import (
	"fmt"

	"github.com/dusk-indust/unitymerge/internal/docnode"
	"github.com/dusk-indust/unitymerge/internal/merge"
	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/track"
	"github.com/dusk-indust/unitymerge/internal/unityyaml"
)

// ComponentRef is one entry of a game object's m_Component list. Label is
// the entry's key: "component", or the class id in files older than 5.5.
type ComponentRef struct {
	Label string
	Ref   track.Ref

	modified bool
	pinned   bool
}

func (c *ComponentRef) Key() string       { return c.Ref.Key() }
func (c *ComponentRef) Describe() string  { return "m_Component " + c.Ref.Key() }
func (c *ComponentRef) ScenePath() string { return "" }
func (c *ComponentRef) Modified() bool    { return c.modified || c.pinned }

func (c *ComponentRef) Diff(base *ComponentRef) bool {
	c.modified = c.Ref.Diff(&base.Ref) || c.Label != base.Label
	return c.modified
}

func (c *ComponentRef) Merge(base, theirs *ComponentRef, r *report.Report) {
	c.Ref.Merge(c.Describe(), &theirs.Ref, r)
	if c.Label == base.Label {
		c.Label = theirs.Label
	}
}

func (c *ComponentRef) Equal(o *ComponentRef) bool {
	return c.Label == o.Label && docnode.Equal(c.Ref.Node(), o.Ref.Node())
}

func (c *ComponentRef) node() *docnode.Node {
	m := docnode.Mapping()
	m.Set(c.Label, c.Ref.Node())
	return m
}

func loadComponentRef(n *docnode.Node) (*ComponentRef, error) {
	if n.Kind != docnode.KindMapping || len(n.Pairs) != 1 {
		return nil, fmt.Errorf("%w: component entry must be a single-key mapping, got %s", track.ErrShape, n)
	}
	ref, err := track.LoadRef(n.Pairs[0].Value)
	if err != nil {
		return nil, err
	}
	return &ComponentRef{Label: n.Pairs[0].Key, Ref: ref}, nil
}

// GameObject is the container entity: a named node of the hierarchy that
// owns a transform and components.
type GameObject struct {
	Base

	Components        []*ComponentRef
	hasComponents     bool
	Layer             track.Value[int32]
	Name              track.Value[string]
	TagString         track.Value[string]
	Icon              track.Ref
	NavMeshLayer      track.Value[int32]
	StaticEditorFlags track.Value[int64]
	IsActive          track.Value[int32]
}

func loadGameObject(o unityyaml.Object) (*GameObject, error) {
	g := &GameObject{}
	l := newLoader(o.Body)
	g.loadHead(l)
	if l.body.Has("m_Component") {
		g.hasComponents = true
		for i, it := range l.sequence("m_Component") {
			c, err := loadComponentRef(it)
			if err != nil {
				l.fail(fmt.Sprintf("m_Component[%d]", i), err)
				break
			}
			g.Components = append(g.Components, c)
		}
	}
	loadInt(l, "m_Layer", &g.Layer)
	l.str("m_Name", &g.Name)
	l.str("m_TagString", &g.TagString)
	l.ref("m_Icon", &g.Icon)
	loadInt(l, "m_NavMeshLayer", &g.NavMeshLayer)
	loadInt(l, "m_StaticEditorFlags", &g.StaticEditorFlags)
	loadInt(l, "m_IsActive", &g.IsActive)
	if err := l.finish(&g.Base, o); err != nil {
		return nil, err
	}
	if dups := merge.Duplicates(g.Components); len(dups) > 0 {
		return nil, fmt.Errorf("%w: GameObject &%d lists components %v more than once", ErrMalformedInput, g.id, dups)
	}
	return g, nil
}

func (g *GameObject) Save() *docnode.Node {
	s := newSaver()
	g.saveHead(s)
	if g.hasComponents || len(g.Components) > 0 {
		items := make([]*docnode.Node, len(g.Components))
		for i, c := range g.Components {
			items[i] = c.node()
		}
		s.sequence("m_Component", items)
	}
	saveInt(s, "m_Layer", g.Layer)
	s.str("m_Name", g.Name)
	s.str("m_TagString", g.TagString)
	s.ref("m_Icon", g.Icon)
	saveInt(s, "m_NavMeshLayer", g.NavMeshLayer)
	saveInt(s, "m_StaticEditorFlags", g.StaticEditorFlags)
	saveInt(s, "m_IsActive", g.IsActive)
	s.rest(g.Rest)
	return s.node(g.order)
}

func (g *GameObject) Diff(base Entity) bool {
	b := base.(*GameObject)
	changed := g.diffHead(&b.Base)
	changed = merge.Diff(b.Components, g.Components) || changed
	changed = g.Layer.Diff(&b.Layer) || changed
	changed = g.Name.Diff(&b.Name) || changed
	changed = g.TagString.Diff(&b.TagString) || changed
	changed = g.Icon.Diff(&b.Icon) || changed
	changed = g.NavMeshLayer.Diff(&b.NavMeshLayer) || changed
	changed = g.StaticEditorFlags.Diff(&b.StaticEditorFlags) || changed
	changed = g.IsActive.Diff(&b.IsActive) || changed
	changed = g.diffRest(&b.Base) || changed
	g.modified = changed
	return changed
}

func (g *GameObject) Merge(base, theirs Entity, r *report.Report) {
	b, t := base.(*GameObject), theirs.(*GameObject)
	r.Push(g.Describe(), g.ScenePath())
	defer r.Pop()

	g.mergeHead(&t.Base, r)
	g.Components = merge.Lists(b.Components, g.Components, t.Components, r)
	g.hasComponents = g.hasComponents || t.hasComponents
	g.Layer.Merge("m_Layer", &t.Layer, r)
	g.Name.Merge("m_Name", &t.Name, r)
	g.TagString.Merge("m_TagString", &t.TagString, r)
	g.Icon.Merge("m_Icon", &t.Icon, r)
	g.NavMeshLayer.Merge("m_NavMeshLayer", &t.NavMeshLayer, r)
	g.StaticEditorFlags.Merge("m_StaticEditorFlags", &t.StaticEditorFlags, r)
	g.IsActive.Merge("m_IsActive", &t.IsActive, r)
	g.mergeTail(&b.Base, &t.Base, r)
}

func (g *GameObject) Equal(other Entity) bool {
	return equalSaved(g, other)
}

// equalSaved compares two entities by their rendered bodies.
func equalSaved(a, b Entity) bool {
	return a.Kind() == b.Kind() && docnode.Equal(a.Save(), b.Save())
}
