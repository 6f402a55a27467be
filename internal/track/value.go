// Package track holds the tracked slots entities are built from: typed
// values and arrays that remember presence and change-since-baseline,
// cross-object references, and the residual bag of untyped fields.
//
// Every slot follows the same two-step protocol. Diff compares a slot with
// the same slot of the base document and caches the outcome. Merge then
// combines mine (the receiver) with theirs, funnelling every decision
// through the merge report.
package track

import (
	"fmt"
	"slices"

	"github.com/dusk-indust/unitymerge/internal/report"
)

// Value is a tracked scalar slot.
type Value[T comparable] struct {
	Value   T
	Old     T    // base value, for messages only
	HasOld  bool // base had the slot
	Present bool
	Changed bool
}

// Of returns a present value.
func Of[T comparable](v T) Value[T] {
	return Value[T]{Value: v, Present: true}
}

// Set assigns v and marks the slot present.
func (v *Value[T]) Set(x T) {
	v.Value = x
	v.Present = true
}

// Clear marks the slot absent.
func (v *Value[T]) Clear() {
	var zero T
	v.Value = zero
	v.Present = false
}

// Diff compares v with the base slot. Both absent is unchanged; a presence
// mismatch is a change; otherwise values are compared.
func (v *Value[T]) Diff(base *Value[T]) bool {
	v.Old, v.HasOld = base.Value, base.Present
	v.Changed = diffSlot(v.Present, base.Present, func() bool { return v.Value != base.Value })
	return v.Changed
}

// Merge resolves v against theirs, logging under name. Both sides must have
// been diffed against the same base.
func (v *Value[T]) Merge(name string, theirs *Value[T], r *report.Report) {
	same := v.Present == theirs.Present && (!v.Present || v.Value == theirs.Value)
	if decide(r, name, v.slot(), theirs.slot(), same) {
		v.Value, v.Present = theirs.Value, theirs.Present
	}
}

func (v *Value[T]) slot() slot {
	return slot{
		present: v.Present,
		hadOld:  v.HasOld,
		changed: v.Changed,
		now:     fmt.Sprint(v.Value),
		was:     fmt.Sprint(v.Old),
	}
}

// Array is a tracked array slot (vectors, id lists).
type Array[T comparable] struct {
	Value   []T
	Old     []T
	HasOld  bool
	Present bool
	Changed bool

	eq func(a, b T) bool
}

// ArrayOf returns a present array.
func ArrayOf[T comparable](v ...T) Array[T] {
	return Array[T]{Value: v, Present: true}
}

// Set assigns v and marks the slot present.
func (a *Array[T]) Set(v []T) {
	a.Value = v
	a.Present = true
}

// Diff compares a with the base slot element-wise.
func (a *Array[T]) Diff(base *Array[T]) bool {
	a.Old, a.HasOld = base.Value, base.Present
	a.Changed = diffSlot(a.Present, base.Present, func() bool { return !a.equal(base, base.Value) })
	return a.Changed
}

// equal compares a's value with v using the element comparison of a or
// other, falling back to ==.
func (a *Array[T]) equal(other *Array[T], v []T) bool {
	eq := a.eq
	if eq == nil {
		eq = other.eq
	}
	if eq == nil {
		return slices.Equal(a.Value, v)
	}
	return slices.EqualFunc(a.Value, v, eq)
}

// Merge resolves a against theirs, logging under name.
func (a *Array[T]) Merge(name string, theirs *Array[T], r *report.Report) {
	same := a.Present == theirs.Present && (!a.Present || a.equal(theirs, theirs.Value))
	if decide(r, name, a.slot(), theirs.slot(), same) {
		a.Value, a.Present = slices.Clone(theirs.Value), theirs.Present
		if a.eq == nil {
			a.eq = theirs.eq
		}
	}
}

func (a *Array[T]) slot() slot {
	return slot{
		present: a.Present,
		hadOld:  a.HasOld,
		changed: a.Changed,
		now:     fmt.Sprint(a.Value),
		was:     fmt.Sprint(a.Old),
	}
}

func diffSlot(present, basePresent bool, differs func() bool) bool {
	switch {
	case !present && !basePresent:
		return false
	case present != basePresent:
		return true
	default:
		return differs()
	}
}

// slot is the side-independent view of one side of a decision, used for the
// decision itself and for report messages.
type slot struct {
	present bool
	hadOld  bool
	changed bool
	now     string
	was     string
}

func (s slot) String() string {
	switch {
	case !s.present:
		return "removed"
	case !s.hadOld:
		return "added: " + s.now
	default:
		return "new: " + s.now + " old: " + s.was
	}
}

func (s slot) message(side string) string {
	switch {
	case !s.present:
		return fmt.Sprintf("Property removed in %s - %s", side, s.was)
	case !s.hadOld:
		return fmt.Sprintf("Property added in %s - %s", side, s.now)
	default:
		return fmt.Sprintf("Property modified in %s - new: %s old: %s", side, s.now, s.was)
	}
}

// decide applies the tracked-value policy and reports whether theirs wins.
// Neither side changed, or both changed to the same result, is silent.
// A one-sided change takes that side. Diverging changes are a conflict that
// defaults to theirs, unless theirs removed what mine modified.
func decide(r *report.Report, name string, mine, theirs slot, same bool) bool {
	switch {
	case mine.changed && theirs.changed:
		if same {
			return false
		}
		return r.Decide(report.Decision{
			Subject:  name,
			Message:  fmt.Sprintf("Property conflict - mine [ %s ] theirs [ %s ]", mine, theirs),
			Conflict: true,
			Theirs:   theirs.present || !mine.present,
		})
	case theirs.changed:
		return r.Decide(report.Decision{Subject: name, Message: theirs.message("theirs"), Theirs: true})
	case mine.changed:
		return r.Decide(report.Decision{Subject: name, Message: mine.message("mine"), Theirs: false})
	}
	return false
}
