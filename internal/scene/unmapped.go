package scene

import (
	"github.com/dusk-indust/unitymerge/internal/docnode"
	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/unityyaml"
)

// Unmapped is any object kind without a typed schema. Beyond the common
// fields it is carried entirely by the residual bag.
type Unmapped struct {
	Base
}

func loadUnmapped(o unityyaml.Object) (*Unmapped, error) {
	u := &Unmapped{}
	l := newLoader(o.Body)
	u.loadHead(l)
	if err := l.finish(&u.Base, o); err != nil {
		return nil, err
	}
	return u, nil
}

func (u *Unmapped) Save() *docnode.Node {
	s := newSaver()
	u.saveHead(s)
	s.rest(u.Rest)
	return s.node(u.order)
}

func (u *Unmapped) Diff(base Entity) bool {
	b := base.Common()
	changed := u.diffHead(b)
	changed = u.diffRest(b) || changed
	u.modified = changed
	return changed
}

func (u *Unmapped) Merge(base, theirs Entity, r *report.Report) {
	r.Push(u.Describe(), u.ScenePath())
	defer r.Pop()
	u.mergeHead(theirs.Common(), r)
	u.mergeTail(base.Common(), theirs.Common(), r)
}

func (u *Unmapped) Equal(other Entity) bool {
	return equalSaved(u, other)
}
