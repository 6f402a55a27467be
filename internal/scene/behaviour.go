package scene

import (
	"fmt"

	"github.com/dusk-indust/unitymerge/internal/docnode"
	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/track"
	"github.com/dusk-indust/unitymerge/internal/unityyaml"
)

// MonoBehaviour is a script component. Serialized script fields are not
// known ahead of time and live in the residual bag.
type MonoBehaviour struct {
	Base

	Enabled         track.Value[int32]
	EditorHideFlags track.Value[int32]
	Script          track.Ref
}

func loadMonoBehaviour(o unityyaml.Object) (*MonoBehaviour, error) {
	m := &MonoBehaviour{}
	l := newLoader(o.Body)
	m.loadHead(l)
	loadInt(l, "m_Enabled", &m.Enabled)
	loadInt(l, "m_EditorHideFlags", &m.EditorHideFlags)
	l.ref("m_Script", &m.Script)
	if err := l.finish(&m.Base, o); err != nil {
		return nil, err
	}
	return m, nil
}

// Describe includes the script guid so scopes stay readable in reports.
func (m *MonoBehaviour) Describe() string {
	return fmt.Sprintf("%s %d guid: %s", m.kind, m.id, m.Script.GUID.Value)
}

func (m *MonoBehaviour) Save() *docnode.Node {
	s := newSaver()
	m.saveHead(s)
	saveInt(s, "m_Enabled", m.Enabled)
	saveInt(s, "m_EditorHideFlags", m.EditorHideFlags)
	s.ref("m_Script", m.Script)
	s.rest(m.Rest)
	return s.node(m.order)
}

func (m *MonoBehaviour) Diff(base Entity) bool {
	b := base.(*MonoBehaviour)
	changed := m.diffHead(&b.Base)
	changed = m.Enabled.Diff(&b.Enabled) || changed
	changed = m.EditorHideFlags.Diff(&b.EditorHideFlags) || changed
	changed = m.Script.Diff(&b.Script) || changed
	changed = m.diffRest(&b.Base) || changed
	m.modified = changed
	return changed
}

func (m *MonoBehaviour) Merge(base, theirs Entity, r *report.Report) {
	b, t := base.(*MonoBehaviour), theirs.(*MonoBehaviour)
	r.Push(m.Describe(), m.ScenePath())
	defer r.Pop()

	m.mergeHead(&t.Base, r)
	m.Enabled.Merge("m_Enabled", &t.Enabled, r)
	m.EditorHideFlags.Merge("m_EditorHideFlags", &t.EditorHideFlags, r)
	m.Script.Merge("m_Script", &t.Script, r)
	m.mergeTail(&b.Base, &t.Base, r)
}

func (m *MonoBehaviour) Equal(other Entity) bool {
	return equalSaved(m, other)
}
