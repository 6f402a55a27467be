package scene

import (
	"slices"

	"go.uber.org/zap"

	"github.com/dusk-indust/unitymerge/internal/logs"
	"github.com/dusk-indust/unitymerge/internal/track"
)

// requires returns the ids e cannot exist without in g: its game object, a
// game object's transform, a transform's parent, and the prefab instance
// it comes from or sits under.
func (g *Graph) requires(e Entity) []int64 {
	var ids []int64
	b := e.Common()
	if b.GameObject.IsLocal() {
		ids = append(ids, b.GameObject.ID())
	}
	if b.PrefabInstance.IsLocal() {
		ids = append(ids, b.PrefabInstance.ID())
	}
	switch v := e.(type) {
	case *GameObject:
		if t, ok := g.TransformOf(v.id); ok {
			ids = append(ids, t)
		}
	case *Transform:
		if p, ok := g.Parent(v.id); ok {
			ids = append(ids, p)
		}
	case *PrefabInstance:
		if v.TransformParent.IsLocal() {
			ids = append(ids, v.TransformParent.ID())
		}
	}
	return ids
}

// pinRequired marks every base object that side's added or changed objects
// depend on, along with the m_Component entries naming them. A removal of
// a pinned object by the other side is then a conflict that keeps it.
func pinRequired(base, side *Graph) {
	needed := make(map[int64]bool)
	var queue []int64
	for _, e := range side.entities {
		if b := base.Get(e.ID()); b == nil || e.Diff(b) {
			queue = append(queue, e.ID())
		}
	}
	for len(queue) > 0 {
		id := queue[0]
		queue = queue[1:]
		if needed[id] {
			continue
		}
		needed[id] = true
		if e := side.Get(id); e != nil {
			queue = append(queue, side.requires(e)...)
		}
	}

	for _, e := range side.entities {
		if base.Get(e.ID()) == nil {
			continue
		}
		if needed[e.ID()] {
			e.Common().pinned = true
		}
		obj, ok := e.(*GameObject)
		if !ok {
			continue
		}
		for _, c := range obj.Components {
			if c.Ref.IsLocal() && needed[c.Ref.ID()] {
				c.pinned = true
			}
		}
	}
}

// componentLists records the m_Component entries of every input, by game
// object, and the ids of every input object.
type componentLists struct {
	labels map[int64]map[int64]string
	known  map[int64]bool
}

func collectComponentLists(graphs ...*Graph) componentLists {
	cl := componentLists{labels: make(map[int64]map[int64]string), known: make(map[int64]bool)}
	for _, g := range graphs {
		for _, e := range g.entities {
			cl.known[e.ID()] = true
			obj, ok := e.(*GameObject)
			if !ok {
				continue
			}
			for _, c := range obj.Components {
				if !c.Ref.IsLocal() {
					continue
				}
				if cl.labels[obj.id] == nil {
					cl.labels[obj.id] = make(map[int64]string)
				}
				if _, ok := cl.labels[obj.id][c.Ref.ID()]; !ok {
					cl.labels[obj.id][c.Ref.ID()] = c.Label
				}
			}
		}
	}
	return cl
}

// dropRemoved removes m_Component entries whose component existed in an
// input but did not survive the merge.
func (cl componentLists) dropRemoved(entities []Entity) {
	present := make(map[int64]bool, len(entities))
	for _, e := range entities {
		present[e.ID()] = true
	}
	for _, e := range entities {
		obj, ok := e.(*GameObject)
		if !ok {
			continue
		}
		obj.Components = slices.DeleteFunc(obj.Components, func(c *ComponentRef) bool {
			id := c.Ref.ID()
			gone := c.Ref.IsLocal() && cl.known[id] && !present[id]
			if gone {
				logs.Warn("scene: dropped entry of removed component",
					zap.Int64("gameObject", obj.id),
					zap.Int64("component", id))
			}
			return gone
		})
	}
}

// restoreListed appends the entries an input listed for components the
// merged game object still owns but whose entry was removed. It relinks g
// when anything changed.
func (cl componentLists) restoreListed(g *Graph) {
	changed := false
	for _, e := range g.entities {
		obj, ok := e.(*GameObject)
		if !ok {
			continue
		}
		for _, id := range g.Components(obj.id) {
			label, was := cl.labels[obj.id][id]
			if !was || slices.ContainsFunc(obj.Components, func(c *ComponentRef) bool {
				return c.Ref.IsLocal() && c.Ref.ID() == id
			}) {
				continue
			}
			obj.Components = append(obj.Components, &ComponentRef{Label: label, Ref: track.LocalRef(id)})
			logs.Warn("scene: restored entry of kept component",
				zap.Int64("gameObject", obj.id),
				zap.Int64("component", id))
			changed = true
		}
	}
	if changed {
		g.Link()
	}
}
