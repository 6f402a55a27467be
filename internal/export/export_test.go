package export

import (
	"bytes"
	"encoding/json"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/scene"
)

func loadScene(t *testing.T, name string) *scene.Graph {
	t.Helper()
	g, err := scene.LoadFile(filepath.Join("..", "..", "testdata", "scenes", name))
	require.NoError(t, err)
	return g
}

func sampleReport(t *testing.T) *report.Report {
	t.Helper()
	text := strings.Join([]string{
		"/",
		"    /Player [OVERRIDE: MINE]",
		"        /GameObject 100",
		"            [CONFLICT] [THEIRS] 'm_Name' Property conflict - mine [ A ] theirs [ B ]",
		"    /Lamp",
		"        [MINE] 'GameObject 500' Added in mine",
		"",
	}, "\n")
	r, err := report.Load(strings.NewReader(text))
	require.NoError(t, err)
	return r
}

func TestExportReport_LoadedRunHasNoDecisions(t *testing.T) {
	e := ExportReport(sampleReport(t), "merged.unity.mergereport")

	assert.Equal(t, "merged.unity.mergereport", e.Source)
	assert.Equal(t, "replaying", e.Mode)
	assert.NotEmpty(t, e.ExportedAt)
	assert.Empty(t, e.Decisions)
	assert.Zero(t, e.Summary.Decisions)
}

func TestExportTree(t *testing.T) {
	e := ExportTree(sampleReport(t).Loaded(), "x.mergereport")

	assert.Empty(t, e.Mode)
	assert.Equal(t, SummaryExport{Scopes: 2, Decisions: 2, Conflicts: 1, Unresolved: 1}, e.Summary)
	assert.Equal(t, []OverrideExport{{Path: []string{"Player"}, Side: "MINE"}}, e.Overrides)
	require.Len(t, e.Decisions, 2)
	assert.Equal(t, DecisionExport{
		Path:     []string{"Player", "GameObject 100"},
		Subject:  "m_Name",
		Message:  "Property conflict - mine [ A ] theirs [ B ]",
		Side:     "THEIRS",
		Conflict: true,
	}, e.Decisions[0])
	assert.Equal(t, []string{"Lamp"}, e.Decisions[1].Path)
}

func TestExportTree_Nil(t *testing.T) {
	e := ExportTree(nil, "")
	assert.Empty(t, e.Decisions)
	assert.Empty(t, e.Overrides)
}

func TestExportReport_Recorded(t *testing.T) {
	r := report.New()
	r.Push("GameObject 200", "/Player/Sword")
	r.Decide(report.Decision{Subject: "m_Name", Message: "Property conflict", Conflict: true, Theirs: true})
	r.Pop()
	r.Push("", "/Lamp")
	r.Decide(report.Decision{Subject: "GameObject 500", Message: "Added in mine"})
	r.Pop()

	e := ExportReport(r, "")
	assert.Equal(t, "recording", e.Mode)
	assert.Equal(t, SummaryExport{Scopes: 2, Decisions: 2, Conflicts: 1, Unresolved: 1}, e.Summary)
	require.Len(t, e.Decisions, 2)
	assert.Equal(t, DecisionExport{
		Path:     []string{"Player", "Sword", "GameObject 200"},
		Subject:  "m_Name",
		Message:  "Property conflict",
		Side:     "THEIRS",
		Conflict: true,
	}, e.Decisions[0])
	assert.Equal(t, []string{"Lamp"}, e.Decisions[1].Path)
	assert.Equal(t, "MINE", e.Decisions[1].Side)
	assert.Empty(t, e.Overrides)
}

func TestExportReport_Overrides(t *testing.T) {
	r := sampleReport(t)
	r.Push("GameObject 100", "/Player")
	r.Decide(report.Decision{Subject: "m_Name", Conflict: true, Theirs: true})
	r.Pop()

	e := ExportReport(r, "")
	assert.Equal(t, []OverrideExport{{Path: []string{"Player"}, Side: "MINE"}}, e.Overrides)
	require.Len(t, e.Decisions, 1)
	assert.Equal(t, "MINE", e.Decisions[0].Side)
	assert.True(t, e.Decisions[0].Resolved)
}

func TestWriteReport_JSON(t *testing.T) {
	r := report.New()
	r.Push("GameObject 100", "/Player")
	r.Decide(report.Decision{Subject: "m_Layer", Message: "Property modified in mine"})
	r.Pop()

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, ExportReport(r, "x"), FormatJSON))

	var got map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Equal(t, "x", got["source"])
	decisions := got["decisions"].([]any)
	require.Len(t, decisions, 1)
	assert.Equal(t, "m_Layer", decisions[0].(map[string]any)["subject"])
}

func TestWriteReport_Msgpack(t *testing.T) {
	r := report.New()
	r.Push("GameObject 100", "/Player")
	r.Decide(report.Decision{Subject: "m_Layer", Conflict: true, Theirs: true})
	r.Pop()
	want := ExportReport(r, "scene.mergereport")

	var buf bytes.Buffer
	require.NoError(t, WriteReport(&buf, want, FormatMsgpack))
	got, err := ReadMsgpack(&buf)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteReport_UnknownFormat(t *testing.T) {
	err := WriteReport(&bytes.Buffer{}, &ReportExport{}, "xml")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "xml")
}

func TestHierarchy(t *testing.T) {
	nodes := Hierarchy(loadScene(t, "local.unity"))
	require.Len(t, nodes, 3)

	assert.Equal(t, TreeNode{
		ID:         100,
		Name:       "Player",
		Components: []string{"Transform 101", "MonoBehaviour 102 guid: 6b1c4e2f8a9d4c3e9f0a1b2c3d4e5f60"},
	}, nodes[0])
	assert.Equal(t, TreeNode{
		ID:         200,
		Name:       "Sword",
		Depth:      1,
		Parent:     100,
		Components: []string{"Transform 201"},
	}, nodes[1])
	assert.Equal(t, int64(500), nodes[2].ID)
	assert.Empty(t, nodes[2].Components)
}

func TestWriteTree(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTree(&buf, loadScene(t, "local.unity")))
	want := strings.Join([]string{
		"Player &100",
		"  - Transform 101",
		"  - MonoBehaviour 102 guid: 6b1c4e2f8a9d4c3e9f0a1b2c3d4e5f60",
		"  Sword &200",
		"    - Transform 201",
		"Lamp &500",
		"",
	}, "\n")
	assert.Equal(t, want, buf.String())
}

func TestGenerateMermaid(t *testing.T) {
	got := GenerateMermaid(loadScene(t, "local.unity"))
	want := strings.Join([]string{
		"graph TD",
		`  N0["Player"]`,
		`  N1["Sword"]`,
		`  N2["Lamp"]`,
		"  N0 --> N1",
		"",
	}, "\n")
	assert.Equal(t, want, got)
}

func TestMermaidLabel(t *testing.T) {
	assert.Equal(t, "say #quot;hi#quot;", mermaidLabel(`say "hi"`))
}
