// Package scene models the objects of a Unity scene or prefab as typed
// entities, links them into a graph and merges three graphs of the same
// document.
//
// Entities are matched across documents by file id alone. Relationships
// between entities (hierarchy, ownership) are never stored as pointers; the
// graph derives them by id in a link pass that runs after every load and
// every merge.
package scene

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/dusk-indust/unitymerge/internal/docnode"
	"github.com/dusk-indust/unitymerge/internal/merge"
	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/track"
	"github.com/dusk-indust/unitymerge/internal/unityyaml"
)

// ErrMalformedInput is returned when an object does not have the shape its
// kind requires, or a document breaks the identity rules. It is the same
// sentinel the text layer returns.
var ErrMalformedInput = unityyaml.ErrMalformed

// Entity is one identity-bearing object of a document.
type Entity interface {
	merge.Item[Entity]
	ID() int64
	Kind() string
	// Matches is the identity predicate: true iff the ids are equal.
	Matches(other Entity) bool
	Common() *Base
	// Save renders the object body.
	Save() *docnode.Node
}

// Base holds what every entity has: identity, header data, the fields
// Unity writes on every object, and the residual bag.
type Base struct {
	id       int64
	kind     string
	classID  int
	stripped bool
	order    []string
	modified bool
	pinned   bool
	path     string

	HideFlags         track.Value[int32]
	SourceObject      track.Ref
	PrefabInstance    track.Ref
	PrefabAsset       track.Ref
	SerializedVersion track.Value[int32]
	GameObject        track.Ref
	Rest              *track.Fields
}

func (b *Base) ID() int64 { return b.id }

func (b *Base) Kind() string { return b.kind }

func (b *Base) ClassID() int { return b.classID }

func (b *Base) Stripped() bool { return b.stripped }

// Common returns the shared part of the entity.
func (b *Base) Common() *Base { return b }

// Key is the decimal file id.
func (b *Base) Key() string { return strconv.FormatInt(b.id, 10) }

// Matches reports whether other has the same id.
func (b *Base) Matches(other Entity) bool {
	return other != nil && other.ID() == b.id
}

// Modified returns the result of the last Diff. An entity another changed
// entity depends on counts as modified.
func (b *Base) Modified() bool { return b.modified || b.pinned }

// ScenePath is the hierarchy path assigned by the last link pass.
func (b *Base) ScenePath() string { return b.path }

// Describe names the entity in report lines and logs.
func (b *Base) Describe() string { return fmt.Sprintf("%s %d", b.kind, b.id) }

func (b *Base) loadHead(l *loader) {
	loadInt(l, "m_ObjectHideFlags", &b.HideFlags)
	l.ref("m_CorrespondingSourceObject", &b.SourceObject)
	l.ref("m_PrefabInstance", &b.PrefabInstance)
	l.ref("m_PrefabAsset", &b.PrefabAsset)
	loadInt(l, "serializedVersion", &b.SerializedVersion)
	l.ref("m_GameObject", &b.GameObject)
}

func (b *Base) saveHead(s *saver) {
	saveInt(s, "m_ObjectHideFlags", b.HideFlags)
	s.ref("m_CorrespondingSourceObject", b.SourceObject)
	s.ref("m_PrefabInstance", b.PrefabInstance)
	s.ref("m_PrefabAsset", b.PrefabAsset)
	saveInt(s, "serializedVersion", b.SerializedVersion)
	s.ref("m_GameObject", b.GameObject)
}

func (b *Base) diffHead(o *Base) bool {
	changed := b.HideFlags.Diff(&o.HideFlags)
	changed = b.SourceObject.Diff(&o.SourceObject) || changed
	changed = b.PrefabInstance.Diff(&o.PrefabInstance) || changed
	changed = b.PrefabAsset.Diff(&o.PrefabAsset) || changed
	changed = b.SerializedVersion.Diff(&o.SerializedVersion) || changed
	changed = b.GameObject.Diff(&o.GameObject) || changed
	return changed
}

func (b *Base) diffRest(o *Base) bool {
	return b.Rest.Diff(o.Rest)
}

func (b *Base) mergeHead(t *Base, r *report.Report) {
	b.HideFlags.Merge("m_ObjectHideFlags", &t.HideFlags, r)
	b.SourceObject.Merge("m_CorrespondingSourceObject", &t.SourceObject, r)
	b.PrefabInstance.Merge("m_PrefabInstance", &t.PrefabInstance, r)
	b.PrefabAsset.Merge("m_PrefabAsset", &t.PrefabAsset, r)
	b.SerializedVersion.Merge("serializedVersion", &t.SerializedVersion, r)
	b.GameObject.Merge("m_GameObject", &t.GameObject, r)
}

// mergeTail merges the residual bag and folds keys only theirs has into
// the write order.
func (b *Base) mergeTail(base, t *Base, r *report.Report) {
	b.Rest.Merge(base.Rest, t.Rest, r)
	b.order = mergeOrder(b.order, t.order)
}

// mergeOrder returns mine with the keys only theirs has inserted after the
// key that precedes them in theirs.
func mergeOrder(mine, theirs []string) []string {
	out := slices.Clone(mine)
	for i, k := range theirs {
		if slices.Contains(out, k) {
			continue
		}
		at := len(out)
		if i > 0 {
			if j := slices.Index(out, theirs[i-1]); j >= 0 {
				at = j + 1
			}
		}
		out = slices.Insert(out, at, k)
	}
	return out
}

// loader claims keys of an object body for typed slots. Keys nobody claims
// end up in the residual bag. The first error sticks.
type loader struct {
	body    *docnode.Node
	claimed map[string]bool
	err     error
}

func newLoader(body *docnode.Node) *loader {
	return &loader{body: body, claimed: make(map[string]bool)}
}

func (l *loader) fail(key string, err error) {
	if l.err == nil {
		l.err = fmt.Errorf("%s: %w", key, err)
	}
}

// take claims key and returns its node, or nil when absent.
func (l *loader) take(key string) *docnode.Node {
	n := l.body.Get(key)
	if n != nil {
		l.claimed[key] = true
	}
	return n
}

func loadInt[T track.Integer](l *loader, key string, v *track.Value[T]) {
	n := l.take(key)
	if n == nil {
		return
	}
	x, err := track.LoadInt[T](n)
	if err != nil {
		l.fail(key, err)
		return
	}
	*v = x
}

func (l *loader) str(key string, v *track.Value[string]) {
	n := l.take(key)
	if n == nil {
		return
	}
	x, err := track.LoadString(n)
	if err != nil {
		l.fail(key, err)
		return
	}
	*v = x
}

func (l *loader) ref(key string, v *track.Ref) {
	n := l.take(key)
	if n == nil {
		return
	}
	x, err := track.LoadRef(n)
	if err != nil {
		l.fail(key, err)
		return
	}
	*v = x
}

func (l *loader) vector(key string, axes []string, v *track.Array[string]) {
	n := l.take(key)
	if n == nil {
		return
	}
	x, err := track.LoadVector(n, axes)
	if err != nil {
		l.fail(key, err)
		return
	}
	*v = x
}

// sequence claims a block or flow sequence.
func (l *loader) sequence(key string) []*docnode.Node {
	n := l.take(key)
	if n == nil {
		return nil
	}
	if n.Kind != docnode.KindSequence {
		l.fail(key, fmt.Errorf("%w: expected sequence, got %s", track.ErrShape, n.Kind))
		return nil
	}
	return n.Items
}

// residual collects the keys nobody claimed.
func (l *loader) residual() *track.Fields {
	f := track.NewFields()
	for _, p := range l.body.Pairs {
		if !l.claimed[p.Key] {
			f.Set(p.Key, p.Value)
		}
	}
	return f
}

// finish fills b's identity, key order and residual bag.
func (l *loader) finish(b *Base, o unityyaml.Object) error {
	b.id, b.kind, b.classID, b.stripped = o.FileID, o.Kind, o.ClassID, o.Stripped
	b.order = l.body.Keys()
	b.Rest = l.residual()
	if l.err != nil {
		return fmt.Errorf("%w: %s &%d (line %d): %w", ErrMalformedInput, o.Kind, o.FileID, o.Line, l.err)
	}
	return nil
}

// saver collects the keys of an object body and writes them in load order,
// followed by keys the object did not have when loaded.
type saver struct {
	keys []string
	vals map[string]*docnode.Node
}

func newSaver() *saver {
	return &saver{vals: make(map[string]*docnode.Node)}
}

func (s *saver) set(key string, n *docnode.Node) {
	if n == nil {
		return
	}
	if _, ok := s.vals[key]; !ok {
		s.keys = append(s.keys, key)
	}
	s.vals[key] = n
}

func saveInt[T track.Integer](s *saver, key string, v track.Value[T]) {
	if v.Present {
		s.set(key, track.IntNode(v.Value))
	}
}

func (s *saver) str(key string, v track.Value[string]) {
	if v.Present {
		s.set(key, docnode.Scalar(v.Value))
	}
}

func (s *saver) ref(key string, v track.Ref) {
	if v.Present {
		s.set(key, v.Node())
	}
}

func (s *saver) vector(key string, axes []string, v track.Array[string]) {
	if v.Present {
		s.set(key, track.VectorNode(v.Value, axes))
	}
}

// sequence writes items as a block sequence, or as [] when empty.
func (s *saver) sequence(key string, items []*docnode.Node) {
	seq := docnode.Sequence(items...)
	seq.Flow = len(items) == 0
	s.set(key, seq)
}

func (s *saver) rest(f *track.Fields) {
	for _, k := range f.Keys() {
		s.set(k, f.Get(k).Clone())
	}
}

func (s *saver) node(order []string) *docnode.Node {
	out := docnode.Mapping()
	for _, k := range order {
		if n, ok := s.vals[k]; ok {
			out.Set(k, n)
		}
	}
	for _, k := range s.keys {
		if !out.Has(k) {
			out.Set(k, s.vals[k])
		}
	}
	return out
}
