package scene

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/dusk-indust/unitymerge/internal/logs"
	"github.com/dusk-indust/unitymerge/internal/merge"
	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/unityyaml"
)

func newEntity(o unityyaml.Object) (Entity, error) {
	switch o.Kind {
	case "GameObject":
		return loadGameObject(o)
	case "Transform", "RectTransform":
		return loadTransform(o)
	case "MonoBehaviour":
		return loadMonoBehaviour(o)
	case "PrefabInstance":
		return loadPrefabInstance(o)
	default:
		return loadUnmapped(o)
	}
}

// Load builds a linked graph with one entity per object of f. File ids
// must be unique.
func Load(f *unityyaml.File) (*Graph, error) {
	entities := make([]Entity, 0, len(f.Objects))
	lines := make(map[int64]int, len(f.Objects))
	for _, o := range f.Objects {
		if first, dup := lines[o.FileID]; dup {
			return nil, fmt.Errorf("%w: file id %d used by the objects at lines %d and %d", ErrMalformedInput, o.FileID, first, o.Line)
		}
		lines[o.FileID] = o.Line
		e, err := newEntity(o)
		if err != nil {
			return nil, err
		}
		entities = append(entities, e)
	}
	g := newGraph(slices.Clone(f.Header), entities)
	logs.Debug("scene: loaded",
		zap.Int("entities", g.Len()),
		zap.Int("roots", len(g.roots)),
		zap.Int("dangling", len(g.dangling)))
	return g, nil
}

// LoadFile reads and loads the scene or prefab at path.
func LoadFile(path string) (*Graph, error) {
	f, err := unityyaml.ReadFile(path)
	if err != nil {
		return nil, err
	}
	g, err := Load(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// File renders the graph back into a document, one object per entity in
// graph order.
func (g *Graph) File() *unityyaml.File {
	f := &unityyaml.File{Header: slices.Clone(g.header)}
	for _, e := range g.entities {
		b := e.Common()
		f.Objects = append(f.Objects, unityyaml.Object{
			ClassID:  b.classID,
			FileID:   b.id,
			Stripped: b.stripped,
			Kind:     b.kind,
			Body:     e.Save(),
		})
	}
	return f
}

// WriteFile saves the graph to path.
func (g *Graph) WriteFile(path string) error {
	return g.File().WriteFile(path)
}

// Merge merges mine and theirs against base and returns the linked result.
// Every decision goes through r. The identity rules are checked on all
// three graphs before anything is touched: an id must name the same kind of
// object everywhere it appears.
//
// An object one side removed stays, as a conflict, while anything the other
// side added or changed depends on it: its game object, transform, parent
// transform or prefab instance. The merged m_Component lists are then made
// to agree with the objects that survived.
//
// The result reuses mine's and theirs' entities; neither input graph is
// usable afterwards.
func Merge(base, mine, theirs *Graph, r *report.Report) (*Graph, error) {
	if err := checkKinds(base, mine, theirs); err != nil {
		return nil, err
	}
	lists := collectComponentLists(base, mine, theirs)
	pinRequired(base, mine)
	pinRequired(base, theirs)
	entities := merge.Lists(base.entities, mine.entities, theirs.entities, r)
	lists.dropRemoved(entities)
	out := newGraph(slices.Clone(mine.header), entities)
	lists.restoreListed(out)
	logs.Info("scene: merged",
		zap.Int("base", base.Len()),
		zap.Int("mine", mine.Len()),
		zap.Int("theirs", theirs.Len()),
		zap.Int("result", out.Len()))
	return out, nil
}

func checkKinds(base, mine, theirs *Graph) error {
	named := []struct {
		name string
		g    *Graph
	}{{"base", base}, {"local", mine}, {"remote", theirs}}
	for i, a := range named {
		for _, b := range named[i+1:] {
			for _, e := range a.g.entities {
				o := b.g.Get(e.ID())
				if o != nil && o.Kind() != e.Kind() {
					return fmt.Errorf("%w: object &%d is a %s in %s but a %s in %s",
						ErrMalformedInput, e.ID(), e.Kind(), a.name, o.Kind(), b.name)
				}
			}
		}
	}
	return nil
}

// ChangeKind classifies an entity in a two-way comparison.
type ChangeKind string

const (
	Added    ChangeKind = "added"
	Removed  ChangeKind = "removed"
	Modified ChangeKind = "modified"
)

// Change is one entry of a document diff.
type Change struct {
	Kind        ChangeKind
	ID          int64
	Description string
	Path        string
}

// Diff compares g with base entity by entity. The result lists entities
// g modified or added in g's order, then entities base had and g dropped.
func (g *Graph) Diff(base *Graph) []Change {
	var out []Change
	for _, e := range g.entities {
		b := base.Get(e.ID())
		switch {
		case b == nil:
			out = append(out, Change{Kind: Added, ID: e.ID(), Description: e.Describe(), Path: e.ScenePath()})
		case b.Kind() != e.Kind() || e.Diff(b):
			out = append(out, Change{Kind: Modified, ID: e.ID(), Description: e.Describe(), Path: e.ScenePath()})
		}
	}
	for _, b := range base.entities {
		if g.Get(b.ID()) == nil {
			out = append(out, Change{Kind: Removed, ID: b.ID(), Description: b.Describe(), Path: b.ScenePath()})
		}
	}
	return out
}
