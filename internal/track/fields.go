package track

import (
	"github.com/dusk-indust/unitymerge/internal/docnode"
	"github.com/dusk-indust/unitymerge/internal/report"
)

// Fields is the residual bag: every key of an object that no typed slot
// claims, in document order.
type Fields struct {
	keys    []string
	values  map[string]*docnode.Node
	changed map[string]bool
	// removed lists base keys this side dropped, set by Diff.
	removed []string
}

// NewFields returns an empty bag.
func NewFields() *Fields {
	return &Fields{values: make(map[string]*docnode.Node)}
}

// Len returns the number of keys.
func (f *Fields) Len() int { return len(f.keys) }

// Keys returns the keys in document order.
func (f *Fields) Keys() []string { return append([]string(nil), f.keys...) }

// Get returns the node stored under key, or nil.
func (f *Fields) Get(key string) *docnode.Node { return f.values[key] }

// Has reports whether key is present.
func (f *Fields) Has(key string) bool {
	_, ok := f.values[key]
	return ok
}

// Set stores n under key, appending key when new.
func (f *Fields) Set(key string, n *docnode.Node) {
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = n
}

// Delete removes key.
func (f *Fields) Delete(key string) {
	if _, ok := f.values[key]; !ok {
		return
	}
	delete(f.values, key)
	for i, k := range f.keys {
		if k == key {
			f.keys = append(f.keys[:i], f.keys[i+1:]...)
			break
		}
	}
}

// Changed reports whether key differed from the base at the last Diff.
func (f *Fields) Changed(key string) bool { return f.changed[key] }

// Removed returns the base keys missing from this side at the last Diff.
func (f *Fields) Removed() []string { return f.removed }

// Diff compares every key with base. A key missing on either side counts
// as a change.
func (f *Fields) Diff(base *Fields) bool {
	f.changed = make(map[string]bool, len(f.keys))
	f.removed = nil
	modified := false
	for _, k := range f.keys {
		if !docnode.Equal(f.values[k], base.values[k]) {
			f.changed[k] = true
			modified = true
		}
	}
	for _, k := range base.keys {
		if !f.Has(k) {
			f.removed = append(f.removed, k)
			modified = true
		}
	}
	return modified
}

// Merge merges theirs into f key by key. The base distinguishes a key added
// by one side from a key removed by the other. Keys keep f's order; keys
// only theirs introduces are appended in their order.
func (f *Fields) Merge(base, theirs *Fields, r *report.Report) {
	keys := f.Keys()
	for _, k := range theirs.keys {
		if !f.Has(k) {
			keys = append(keys, k)
		}
	}
	for _, k := range keys {
		b, m, t := base.values[k], f.values[k], theirs.values[k]
		mine, their := nodeSlot(m, b), nodeSlot(t, b)
		if !decide(r, k, mine, their, docnode.Equal(m, t)) {
			continue
		}
		if t == nil {
			f.Delete(k)
		} else {
			f.Set(k, t.Clone())
		}
	}
}

func nodeSlot(n, base *docnode.Node) slot {
	s := slot{
		present: n != nil,
		hadOld:  base != nil,
		changed: !docnode.Equal(n, base),
	}
	if n != nil {
		s.now = n.String()
	}
	if base != nil {
		s.was = base.String()
	}
	return s
}

// Clone returns a deep copy without diff state.
func (f *Fields) Clone() *Fields {
	c := NewFields()
	for _, k := range f.keys {
		c.Set(k, f.values[k].Clone())
	}
	return c
}
