package scene

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/dusk-indust/unitymerge/internal/logs"
	"github.com/dusk-indust/unitymerge/internal/track"
)

// DanglingRef is a local reference whose target is not in the graph. It is
// kept as written; the target may be an object Unity strips on load.
type DanglingRef struct {
	From   int64
	Field  string
	Target int64
}

// Graph is the set of entities of one document. Entities are stored in
// document order; every relationship between them is derived by Link and
// addressed by id.
type Graph struct {
	header   []string
	entities []Entity
	byID     map[int64]int

	parent      map[int64]int64   // transform -> parent transform
	children    map[int64][]int64 // transform -> child transforms, ordered
	roots       []int64           // transforms without a parent
	transformOf map[int64]int64   // game object -> transform
	owner       map[int64]int64   // component -> game object
	components  map[int64][]int64 // game object -> components

	dangling []DanglingRef
}

func newGraph(header []string, entities []Entity) *Graph {
	g := &Graph{header: header, entities: entities}
	g.Link()
	return g
}

// Len returns the number of entities.
func (g *Graph) Len() int { return len(g.entities) }

// Entities returns the entities in document order.
func (g *Graph) Entities() []Entity { return slices.Clone(g.entities) }

// Get returns the entity with id, or nil.
func (g *Graph) Get(id int64) Entity {
	if i, ok := g.byID[id]; ok {
		return g.entities[i]
	}
	return nil
}

// Parent returns the parent transform of the transform id.
func (g *Graph) Parent(id int64) (int64, bool) {
	p, ok := g.parent[id]
	return p, ok
}

// Children returns the ordered child transforms of the transform id.
func (g *Graph) Children(id int64) []int64 { return slices.Clone(g.children[id]) }

// Roots returns the transforms without a parent, in document order.
func (g *Graph) Roots() []int64 { return slices.Clone(g.roots) }

// TransformOf returns the transform of the game object id.
func (g *Graph) TransformOf(id int64) (int64, bool) {
	t, ok := g.transformOf[id]
	return t, ok
}

// Owner returns the game object that owns the component id.
func (g *Graph) Owner(id int64) (int64, bool) {
	o, ok := g.owner[id]
	return o, ok
}

// Components returns the components of the game object id, in m_Component
// order followed by owned components the list does not mention.
func (g *Graph) Components(id int64) []int64 { return slices.Clone(g.components[id]) }

// Dangling returns the unresolved local references found by the last link
// pass.
func (g *Graph) Dangling() []DanglingRef { return slices.Clone(g.dangling) }

// Link rebuilds every derived relationship from the entities' own reference
// fields. It runs after load and after merge; nothing it computes is ever
// merged.
func (g *Graph) Link() {
	g.byID = make(map[int64]int, len(g.entities))
	for i, e := range g.entities {
		g.byID[e.ID()] = i
	}
	g.parent = make(map[int64]int64)
	g.children = make(map[int64][]int64)
	g.roots = nil
	g.transformOf = make(map[int64]int64)
	g.owner = make(map[int64]int64)
	g.components = make(map[int64][]int64)
	g.dangling = nil

	g.linkOwners()
	g.linkHierarchy()
	g.linkComponents()
	g.linkPaths()
	g.checkRefs()
}

func (g *Graph) linkOwners() {
	for _, e := range g.entities {
		b := e.Common()
		if !b.GameObject.IsLocal() {
			continue
		}
		goID := b.GameObject.ID()
		if _, ok := g.Get(goID).(*GameObject); !ok {
			continue
		}
		g.owner[e.ID()] = goID
		if _, ok := e.(*Transform); ok {
			g.transformOf[goID] = e.ID()
		}
	}
}

// fatherOf returns the parent a transform declares. A stripped transform
// has no m_Father; its prefab instance's m_TransformParent stands in.
func (g *Graph) fatherOf(t *Transform) track.Ref {
	if t.Father.Present || !t.stripped {
		return t.Father
	}
	if p, ok := g.Get(t.PrefabInstance.ID()).(*PrefabInstance); ok {
		return p.TransformParent
	}
	return track.Ref{}
}

// rootOrder returns the sibling order of t. A stripped transform takes it
// from its prefab instance's overrides.
func (g *Graph) rootOrder(t *Transform) (int32, bool) {
	if t.RootOrder.Present {
		return t.RootOrder.Value, true
	}
	if !t.stripped {
		return 0, false
	}
	p, ok := g.Get(t.PrefabInstance.ID()).(*PrefabInstance)
	if !ok {
		return 0, false
	}
	n := p.Override(t.SourceObject, "m_RootOrder")
	if n == nil {
		return 0, false
	}
	v, err := track.ParseInt[int32](n.Value)
	return v, err == nil
}

// linkHierarchy derives parent and child edges from m_Father. Siblings are
// ordered by root order, then by their position in the parent's previous
// m_Children, then by id.
func (g *Graph) linkHierarchy() {
	type sibling struct {
		id    int64
		order int64
		prev  int
	}
	groups := make(map[int64][]sibling)
	for _, e := range g.entities {
		t, ok := e.(*Transform)
		if !ok {
			continue
		}
		father := g.fatherOf(t)
		p, isTransform := g.Get(father.ID()).(*Transform)
		if father.IsNull() || !father.IsLocal() || !isTransform {
			g.roots = append(g.roots, t.id)
			continue
		}
		g.parent[t.id] = p.id
		s := sibling{id: t.id, order: math.MaxInt64, prev: math.MaxInt}
		if o, ok := g.rootOrder(t); ok {
			s.order = int64(o)
		}
		if i := slices.Index(p.children, t.id); i >= 0 {
			s.prev = i
		}
		groups[p.id] = append(groups[p.id], s)
	}

	for _, e := range g.entities {
		t, ok := e.(*Transform)
		if !ok {
			continue
		}
		sibs := groups[t.id]
		slices.SortFunc(sibs, func(a, b sibling) int {
			return cmp.Or(cmp.Compare(a.order, b.order), cmp.Compare(a.prev, b.prev), cmp.Compare(a.id, b.id))
		})
		ids := make([]int64, len(sibs))
		for i, s := range sibs {
			ids[i] = s.id
		}
		if len(ids) > 0 {
			g.children[t.id] = ids
		}
		if !t.stripped {
			t.children = ids
		}
	}
}

func (g *Graph) linkComponents() {
	for _, e := range g.entities {
		obj, ok := e.(*GameObject)
		if !ok {
			continue
		}
		var ids []int64
		for _, c := range obj.Components {
			if !c.Ref.IsLocal() {
				continue
			}
			if g.Get(c.Ref.ID()) == nil {
				g.dangle(obj.id, "m_Component", c.Ref.ID())
				continue
			}
			ids = append(ids, c.Ref.ID())
		}
		g.components[obj.id] = ids
	}
	for _, e := range g.entities {
		if goID, ok := g.owner[e.ID()]; ok && !slices.Contains(g.components[goID], e.ID()) {
			g.components[goID] = append(g.components[goID], e.ID())
		}
	}
}

// linkPaths assigns every entity its hierarchy path. A game object's path
// is its parent object's path plus its name; components share their
// owner's path; a prefab instance sits under its transform parent.
func (g *Graph) linkPaths() {
	memo := make(map[int64]string)
	var objectPath func(goID int64, depth int) string
	objectPath = func(goID int64, depth int) string {
		if p, ok := memo[goID]; ok {
			return p
		}
		obj, ok := g.Get(goID).(*GameObject)
		if !ok || depth > len(g.entities) {
			return ""
		}
		prefix := ""
		if t, ok := g.transformOf[goID]; ok {
			prefix = g.transformPath(t, depth, objectPath)
		} else if obj.stripped {
			prefix = g.instancePath(obj.PrefabInstance.ID(), depth, objectPath)
		}
		p := prefix + "/" + obj.Name.Value
		memo[goID] = p
		return p
	}

	for _, e := range g.entities {
		b := e.Common()
		switch v := e.(type) {
		case *GameObject:
			b.path = objectPath(v.id, 0)
		case *PrefabInstance:
			b.path = g.instancePath(v.id, 0, objectPath)
		default:
			if goID, ok := g.owner[e.ID()]; ok {
				b.path = objectPath(goID, 0)
			} else if b.stripped {
				b.path = g.instancePath(b.PrefabInstance.ID(), 0, objectPath)
			} else {
				b.path = ""
			}
		}
	}
}

// transformPath is the path of the object owning the parent of transform t.
func (g *Graph) transformPath(t int64, depth int, objectPath func(int64, int) string) string {
	parent, ok := g.parent[t]
	if !ok {
		return ""
	}
	goID, ok := g.owner[parent]
	if !ok {
		return ""
	}
	return objectPath(goID, depth+1)
}

// instancePath is the path of the object owning a prefab instance's
// transform parent.
func (g *Graph) instancePath(id int64, depth int, objectPath func(int64, int) string) string {
	p, ok := g.Get(id).(*PrefabInstance)
	if !ok || !p.TransformParent.IsLocal() {
		return ""
	}
	goID, ok := g.owner[p.TransformParent.ID()]
	if !ok {
		return ""
	}
	return objectPath(goID, depth+1)
}

func (g *Graph) checkRefs() {
	for _, e := range g.entities {
		b := e.Common()
		g.checkRef(b.id, "m_GameObject", b.GameObject)
		g.checkRef(b.id, "m_PrefabInstance", b.PrefabInstance)
		switch v := e.(type) {
		case *Transform:
			g.checkRef(v.id, "m_Father", v.Father)
		case *PrefabInstance:
			g.checkRef(v.id, "m_TransformParent", v.TransformParent)
		}
	}
}

func (g *Graph) checkRef(from int64, field string, ref track.Ref) {
	if ref.IsLocal() && g.Get(ref.ID()) == nil {
		g.dangle(from, field, ref.ID())
	}
}

func (g *Graph) dangle(from int64, field string, target int64) {
	g.dangling = append(g.dangling, DanglingRef{From: from, Field: field, Target: target})
	logs.Warn("scene: dangling reference",
		zap.Int64("from", from),
		zap.String("field", field),
		zap.Int64("target", target))
}

// Path returns the hierarchy path of id, or "".
func (g *Graph) Path(id int64) string {
	if e := g.Get(id); e != nil {
		return e.ScenePath()
	}
	return ""
}

// Name returns a readable name for id: the game object name for game
// objects, otherwise the entity description.
func (g *Graph) Name(id int64) string {
	switch e := g.Get(id).(type) {
	case nil:
		return ""
	case *GameObject:
		if n := strings.TrimSpace(e.Name.Value); n != "" {
			return n
		}
		return e.Describe()
	default:
		return e.Describe()
	}
}
