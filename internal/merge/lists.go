// Package merge implements the three-way merge of identity-keyed
// collections. It is generic over Item so the same algorithm serves the
// top-level entity list and nested lists such as a game object's component
// references or a prefab instance's property overrides.
package merge

import (
	"github.com/dusk-indust/unitymerge/internal/report"
)

// Item is an element of a mergeable collection. Items are matched across
// base, mine and theirs by Key alone, never by position or content.
type Item[T any] interface {
	Key() string
	// Describe names the item in report lines.
	Describe() string
	// ScenePath locates the item in the hierarchy, "" when it has none.
	ScenePath() string
	// Modified returns the result of the last Diff.
	Modified() bool
	Diff(base T) bool
	// Merge merges theirs into the receiver in place.
	Merge(base, theirs T, r *report.Report)
	// Equal reports content equality, used when both sides add the same key.
	Equal(other T) bool
}

// Duplicates returns keys that occur more than once in items.
func Duplicates[T Item[T]](items []T) []string {
	seen := make(map[string]bool, len(items))
	var dups []string
	for _, it := range items {
		k := it.Key()
		if seen[k] {
			dups = append(dups, k)
		}
		seen[k] = true
	}
	return dups
}

// Diff diffs every item of items against its base counterpart and reports
// whether the collection differs from base: an item added, removed or
// modified.
func Diff[T Item[T]](base, items []T) bool {
	baseBy := index(base)
	changed := len(base) != len(items)
	for _, it := range items {
		b, ok := baseBy[it.Key()]
		if !ok {
			changed = true
			continue
		}
		if it.Diff(b) {
			changed = true
		}
	}
	return changed
}

func index[T Item[T]](items []T) map[string]T {
	m := make(map[string]T, len(items))
	for _, it := range items {
		m[it.Key()] = it
	}
	return m
}

// Lists merges mine and theirs against base and returns the merged
// collection. Keys must be unique within each input. Shared items are merged
// in place, so the result aliases elements of mine and theirs.
//
// The result keeps mine's order, followed by items only theirs holds. Every
// structural decision is taken through r:
//   - added by one side: kept (a replay may veto it)
//   - removed by one side, untouched by the other: removed
//   - removed by one side, modified by the other: conflict, the modified
//     item is kept by default
//   - added by both sides with the same key: kept silently when equal,
//     otherwise a conflict that defaults to theirs
func Lists[T Item[T]](base, mine, theirs []T, r *report.Report) []T {
	baseBy, mineBy, theirsBy := index(base), index(mine), index(theirs)
	for _, m := range mine {
		if b, ok := baseBy[m.Key()]; ok {
			m.Diff(b)
		}
	}
	for _, t := range theirs {
		if b, ok := baseBy[t.Key()]; ok {
			t.Diff(b)
		}
	}

	out := make([]T, 0, len(mine)+len(theirs))
	seen := make(map[string]bool, cap(out))
	keep := func(it T) {
		if !seen[it.Key()] {
			seen[it.Key()] = true
			out = append(out, it)
		}
	}

	for _, m := range mine {
		b, inBase := baseBy[m.Key()]
		t, inTheirs := theirsBy[m.Key()]
		switch {
		case inBase && inTheirs:
			m.Merge(b, t, r)
			keep(m)
		case inBase:
			if m.Modified() {
				if !decide(r, m, "Modified in mine but removed in theirs", true, false) {
					keep(m)
				}
			} else if !decide(r, m, "Removed in theirs", false, true) {
				keep(m)
			}
		case inTheirs:
			if m.Equal(t) {
				keep(m)
				continue
			}
			if decide(r, m, "Added in both with different content", true, true) {
				keep(t)
			} else {
				keep(m)
			}
		default:
			if !decide(r, m, "Added in mine", false, false) {
				keep(m)
			}
		}
	}

	for _, t := range theirs {
		if _, inMine := mineBy[t.Key()]; inMine {
			continue
		}
		if _, inBase := baseBy[t.Key()]; inBase {
			if t.Modified() {
				if decide(r, t, "Modified in theirs but removed in mine", true, true) {
					keep(t)
				}
			} else if decide(r, t, "Removed in mine", false, false) {
				keep(t)
			}
			continue
		}
		if decide(r, t, "Added in theirs", false, true) {
			keep(t)
		}
	}
	return out
}

// decide logs a structural decision about it in the scope of its hierarchy
// position.
func decide[T Item[T]](r *report.Report, it T, message string, conflict, theirs bool) bool {
	r.Push("", it.ScenePath())
	defer r.Pop()
	return r.Decide(report.Decision{
		Subject:  it.Describe(),
		Message:  message,
		Conflict: conflict,
		Theirs:   theirs,
	})
}

