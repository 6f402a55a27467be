package scene

import (
	"fmt"
	"slices"

	"github.com/dusk-indust/unitymerge/internal/docnode"
	"github.com/dusk-indust/unitymerge/internal/merge"
	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/track"
	"github.com/dusk-indust/unitymerge/internal/unityyaml"
)

// PropertyOverride is one entry of m_Modification.m_Modifications: a value
// the instance overrides on an object of the source prefab. Overrides are
// identified by target and property path.
type PropertyOverride struct {
	Target          track.Ref
	PropertyPath    string
	Value           track.Tree
	ObjectReference track.Ref

	modified bool
}

func (p *PropertyOverride) Key() string       { return p.Target.Key() + "/" + p.PropertyPath }
func (p *PropertyOverride) Describe() string  { return p.PropertyPath + " @" + p.Target.Key() }
func (p *PropertyOverride) ScenePath() string { return "" }
func (p *PropertyOverride) Modified() bool    { return p.modified }

func (p *PropertyOverride) Diff(base *PropertyOverride) bool {
	changed := p.Value.Diff(&base.Value)
	changed = p.ObjectReference.Diff(&base.ObjectReference) || changed
	changed = p.Target.Diff(&base.Target) || changed
	p.modified = changed
	return changed
}

func (p *PropertyOverride) Merge(base, theirs *PropertyOverride, r *report.Report) {
	p.Target.Merge(p.Describe()+" target", &theirs.Target, r)
	p.Value.Merge(p.Describe()+" value", &theirs.Value, r)
	p.ObjectReference.Merge(p.Describe()+" objectReference", &theirs.ObjectReference, r)
}

func (p *PropertyOverride) Equal(o *PropertyOverride) bool {
	return docnode.Equal(p.node(), o.node())
}

func (p *PropertyOverride) node() *docnode.Node {
	m := docnode.Mapping()
	m.Set("target", p.Target.Node())
	m.Set("propertyPath", docnode.Scalar(p.PropertyPath))
	if p.Value.Node != nil {
		m.Set("value", p.Value.Node)
	}
	if p.ObjectReference.Present {
		m.Set("objectReference", p.ObjectReference.Node())
	}
	return m
}

func loadPropertyOverride(n *docnode.Node) (*PropertyOverride, error) {
	if n.Kind != docnode.KindMapping {
		return nil, fmt.Errorf("%w: modification must be a mapping, got %s", track.ErrShape, n.Kind)
	}
	p := &PropertyOverride{}
	l := newLoader(n)
	l.ref("target", &p.Target)
	var path track.Value[string]
	l.str("propertyPath", &path)
	p.PropertyPath = path.Value
	p.Value = track.TreeOf(l.take("value"))
	l.ref("objectReference", &p.ObjectReference)
	if l.err != nil {
		return nil, l.err
	}
	if !p.Target.Present || !path.Present {
		return nil, fmt.Errorf("%w: modification %s needs target and propertyPath", track.ErrShape, n)
	}
	return p, nil
}

// RemovedComponent is one entry of m_Modification.m_RemovedComponents.
type RemovedComponent struct {
	Ref track.Ref

	modified bool
}

func (c *RemovedComponent) Key() string       { return c.Ref.Key() }
func (c *RemovedComponent) Describe() string  { return "m_RemovedComponents " + c.Ref.Key() }
func (c *RemovedComponent) ScenePath() string { return "" }
func (c *RemovedComponent) Modified() bool    { return c.modified }

func (c *RemovedComponent) Diff(base *RemovedComponent) bool {
	c.modified = c.Ref.Diff(&base.Ref)
	return c.modified
}

func (c *RemovedComponent) Merge(_, theirs *RemovedComponent, r *report.Report) {
	c.Ref.Merge(c.Describe(), &theirs.Ref, r)
}

func (c *RemovedComponent) Equal(o *RemovedComponent) bool {
	return docnode.Equal(c.Ref.Node(), o.Ref.Node())
}

// PrefabInstance is the instance-override entity: a placed copy of a prefab
// asset plus the overrides applied to it.
type PrefabInstance struct {
	Base

	hasModification   bool
	TransformParent   track.Ref
	Modifications     []*PropertyOverride
	RemovedComponents []*RemovedComponent
	// ModificationRest holds the keys of m_Modification without a typed slot.
	ModificationRest *track.Fields
	modOrder         []string
	SourcePrefab     track.Ref
}

func loadPrefabInstance(o unityyaml.Object) (*PrefabInstance, error) {
	p := &PrefabInstance{ModificationRest: track.NewFields()}
	l := newLoader(o.Body)
	p.loadHead(l)
	if mod := l.take("m_Modification"); mod != nil {
		if err := p.loadModification(mod); err != nil {
			l.fail("m_Modification", err)
		}
	}
	l.ref("m_SourcePrefab", &p.SourcePrefab)
	if err := l.finish(&p.Base, o); err != nil {
		return nil, err
	}
	if dups := merge.Duplicates(p.Modifications); len(dups) > 0 {
		return nil, fmt.Errorf("%w: PrefabInstance &%d overrides %v more than once", ErrMalformedInput, p.id, dups)
	}
	if dups := merge.Duplicates(p.RemovedComponents); len(dups) > 0 {
		return nil, fmt.Errorf("%w: PrefabInstance &%d removes components %v more than once", ErrMalformedInput, p.id, dups)
	}
	return p, nil
}

func (p *PrefabInstance) loadModification(n *docnode.Node) error {
	if n.Kind != docnode.KindMapping {
		return fmt.Errorf("%w: expected mapping, got %s", track.ErrShape, n.Kind)
	}
	p.hasModification = true
	l := newLoader(n)
	l.ref("m_TransformParent", &p.TransformParent)
	for i, it := range l.sequence("m_Modifications") {
		mod, err := loadPropertyOverride(it)
		if err != nil {
			return fmt.Errorf("m_Modifications[%d]: %w", i, err)
		}
		p.Modifications = append(p.Modifications, mod)
	}
	for i, it := range l.sequence("m_RemovedComponents") {
		ref, err := track.LoadRef(it)
		if err != nil {
			return fmt.Errorf("m_RemovedComponents[%d]: %w", i, err)
		}
		p.RemovedComponents = append(p.RemovedComponents, &RemovedComponent{Ref: ref})
	}
	if l.err != nil {
		return l.err
	}
	p.modOrder = n.Keys()
	p.ModificationRest = l.residual()
	return nil
}

// Override returns the value the instance sets for propertyPath on the
// source object identified by target, or nil.
func (p *PrefabInstance) Override(target track.Ref, propertyPath string) *docnode.Node {
	key := target.Key() + "/" + propertyPath
	for _, m := range p.Modifications {
		if m.Key() == key {
			return m.Value.Node
		}
	}
	return nil
}

func (p *PrefabInstance) Save() *docnode.Node {
	s := newSaver()
	p.saveHead(s)
	if p.hasModification {
		ms := newSaver()
		ms.ref("m_TransformParent", p.TransformParent)
		if len(p.Modifications) > 0 || slices.Contains(p.modOrder, "m_Modifications") {
			mods := make([]*docnode.Node, len(p.Modifications))
			for i, m := range p.Modifications {
				mods[i] = m.node()
			}
			ms.sequence("m_Modifications", mods)
		}
		if len(p.RemovedComponents) > 0 || slices.Contains(p.modOrder, "m_RemovedComponents") {
			removed := make([]*docnode.Node, len(p.RemovedComponents))
			for i, c := range p.RemovedComponents {
				removed[i] = c.Ref.Node()
			}
			ms.sequence("m_RemovedComponents", removed)
		}
		ms.rest(p.ModificationRest)
		s.set("m_Modification", ms.node(p.modOrder))
	}
	s.ref("m_SourcePrefab", p.SourcePrefab)
	s.rest(p.Rest)
	return s.node(p.order)
}

func (p *PrefabInstance) Diff(base Entity) bool {
	b := base.(*PrefabInstance)
	changed := p.diffHead(&b.Base)
	changed = p.TransformParent.Diff(&b.TransformParent) || changed
	changed = merge.Diff(b.Modifications, p.Modifications) || changed
	changed = merge.Diff(b.RemovedComponents, p.RemovedComponents) || changed
	changed = p.ModificationRest.Diff(b.ModificationRest) || changed
	changed = p.SourcePrefab.Diff(&b.SourcePrefab) || changed
	changed = p.diffRest(&b.Base) || changed
	p.modified = changed
	return changed
}

// Merge merges the instance. The m_Modification record gets its own scope
// so its keys cannot be confused with the instance's own.
func (p *PrefabInstance) Merge(base, theirs Entity, r *report.Report) {
	b, t := base.(*PrefabInstance), theirs.(*PrefabInstance)
	r.Push(p.Describe(), p.ScenePath())
	defer r.Pop()

	p.mergeHead(&t.Base, r)

	r.Push("m_Modification", "")
	p.hasModification = p.hasModification || t.hasModification
	p.TransformParent.Merge("m_TransformParent", &t.TransformParent, r)
	p.Modifications = merge.Lists(b.Modifications, p.Modifications, t.Modifications, r)
	p.RemovedComponents = merge.Lists(b.RemovedComponents, p.RemovedComponents, t.RemovedComponents, r)
	p.ModificationRest.Merge(b.ModificationRest, t.ModificationRest, r)
	p.modOrder = mergeOrder(p.modOrder, t.modOrder)
	r.Pop()

	p.SourcePrefab.Merge("m_SourcePrefab", &t.SourcePrefab, r)
	p.mergeTail(&b.Base, &t.Base, r)
}

func (p *PrefabInstance) Equal(other Entity) bool {
	return equalSaved(p, other)
}
