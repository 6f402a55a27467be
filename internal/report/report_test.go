package report

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReport_RecordDefaults(t *testing.T) {
	r := New()
	assert.Equal(t, Recording, r.Mode())

	r.Push("GameObject Player", "Root")
	got := r.Decide(Decision{Subject: "m_Name", Message: "Property conflict", Conflict: true, Theirs: true})
	assert.True(t, got)
	got = r.Decide(Decision{Subject: "m_Layer", Message: "Property modified in mine", Theirs: false})
	assert.False(t, got)
	r.Pop()

	s := r.Summary()
	assert.Equal(t, 1, s.Scopes)
	assert.Equal(t, 2, s.Decisions)
	assert.Equal(t, 1, s.Conflicts)
	assert.Equal(t, 1, s.Unresolved)
	assert.True(t, s.HasConflicts())
}

func TestReport_WriteFormat(t *testing.T) {
	r := New()
	r.Push("GameObject Player", "Root")
	r.Decide(Decision{Subject: "m_Name", Message: "Property conflict", Conflict: true, Theirs: true})
	r.Push("Transform 4", "")
	r.Decide(Decision{Subject: "it's", Message: "Property modified in mine"})
	r.Pop()
	r.Pop()

	want := strings.Join([]string{
		"/",
		"    /Root",
		"        /GameObject Player",
		"            [CONFLICT] [THEIRS] 'm_Name' Property conflict",
		"            /Transform 4",
		"                [MINE] 'it''s' Property modified in mine",
		"",
	}, "\n")
	assert.Equal(t, want, r.String())
}

func TestReport_EmptyWritesNothing(t *testing.T) {
	r := New()
	r.Push("GameObject A", "A")
	r.Pop()
	assert.Equal(t, "", r.String())
	assert.Zero(t, r.Summary().Decisions)
}

func TestReport_PopNeverRemovesRoot(t *testing.T) {
	r := New()
	r.Pop()
	r.Pop()
	assert.Equal(t, 0, r.Depth())
	r.Push("x", "a/b")
	assert.Equal(t, 1, r.Depth())
}

func TestReport_RoundTrip(t *testing.T) {
	r := New()
	r.Push("GameObject Player", "Root/Player")
	r.Decide(Decision{Subject: "m_Name", Message: "Property conflict - mine [ new: A old: X ] theirs [ new: B old: X ]", Conflict: true, Theirs: true})
	r.Pop()
	text := r.String()

	loaded, err := Load(strings.NewReader(text))
	require.NoError(t, err)
	assert.Equal(t, Replaying, loaded.Mode())

	loaded.Push("GameObject Player", "Root/Player")
	loaded.Decide(Decision{Subject: "m_Name", Message: "Property conflict - mine [ new: A old: X ] theirs [ new: B old: X ]", Conflict: true, Theirs: true})
	loaded.Pop()
	assert.Equal(t, text, loaded.String())
	assert.Zero(t, loaded.Summary().Unresolved)
}

func TestReport_ReplayForcesLoggedDecision(t *testing.T) {
	src := `/
    /Root
        /GameObject Player
            [CONFLICT] [MINE] 'm_Name' Property conflict
`
	r, err := Load(strings.NewReader(src))
	require.NoError(t, err)

	r.Push("GameObject Player", "Root")
	assert.False(t, r.Decide(Decision{Subject: "m_Name", Conflict: true, Theirs: true}))
	// Not in the loaded report: default policy and logged as new.
	assert.True(t, r.Decide(Decision{Subject: "m_Layer", Conflict: true, Theirs: true}))
	r.Pop()

	s := r.Summary()
	assert.Equal(t, 2, s.Conflicts)
	assert.Equal(t, 1, s.Unresolved)
}

func TestReport_ReplayPathMustMatch(t *testing.T) {
	src := `/
    /Other
        [MINE] 'm_Name' x
`
	r, err := Load(strings.NewReader(src))
	require.NoError(t, err)

	r.Push("GameObject Player", "Root")
	assert.True(t, r.Decide(Decision{Subject: "m_Name", Conflict: true, Theirs: true}))
	r.Pop()
}

func TestReport_OverrideAppliesBelowScope(t *testing.T) {
	src := `/
    /Root [OVERRIDE: MINE]
        /GameObject Player
            [CONFLICT] [THEIRS] 'm_Name' logged theirs
    /Elsewhere
        [THEIRS] 'm_Name' x
`
	r, err := Load(strings.NewReader(src))
	require.NoError(t, err)

	r.Push("GameObject Player", "Root")
	assert.False(t, r.Decide(Decision{Subject: "m_Name", Conflict: true, Theirs: true}), "override beats logged entry")
	r.Push("Transform 4", "")
	assert.False(t, r.Decide(Decision{Subject: "m_RootOrder", Theirs: true}), "override reaches unlogged descendants")
	r.Pop()
	r.Pop()

	r.Push("", "Elsewhere")
	assert.True(t, r.Decide(Decision{Subject: "m_Name", Theirs: false}))
	r.Pop()

	assert.Contains(t, r.String(), "/Root [OVERRIDE: MINE]")
}

func TestReport_RootOverride(t *testing.T) {
	r, err := Load(strings.NewReader("/ [OVERRIDE: THEIRS]\n"))
	require.NoError(t, err)
	r.Push("a", "b")
	assert.True(t, r.Decide(Decision{Subject: "s", Theirs: false}))
}

func TestLoad_CommentsAndBlankLines(t *testing.T) {
	src := "# edited by hand\n\n/\n    /Root\n\n        [MINE] 'x' msg\n"
	r, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	r.Push("", "Root")
	assert.False(t, r.Decide(Decision{Subject: "x", Theirs: true}))
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"bad indent", "/\n  /Root\n"},
		{"tab indent", "/\n\t/Root\n"},
		{"named top scope", "/Root\n"},
		{"too deep", "/\n        /Root\n"},
		{"entry at top", "[MINE] 'x' y\n"},
		{"both sides", "/\n    /R\n        [MINE] [THEIRS] 'x' y\n"},
		{"no side", "/\n    /R\n        [CONFLICT] 'x' y\n"},
		{"garbage", "/\n    hello\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.src))
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrReportParse))
		})
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "scene.unity.mergereport")

	r := New()
	r.Push("GameObject A", "A")
	r.Decide(Decision{Subject: "m_Name", Theirs: true})
	r.Pop()
	require.NoError(t, r.WriteFile(path))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, Replaying, loaded.Mode())

	require.NoError(t, os.WriteFile(path, []byte("nonsense\n"), 0o644))
	_, err = LoadFile(path)
	assert.ErrorIs(t, err, ErrReportParse)

	_, err = LoadFile(filepath.Join(dir, "missing"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrReportParse)
}

func TestReport_Walk(t *testing.T) {
	r := New()
	r.Push("GameObject A", "Root")
	r.Decide(Decision{Subject: "m_Name", Theirs: true})
	r.Pop()

	var paths []string
	r.Walk(func(path []string, e Entry) {
		paths = append(paths, strings.Join(path, "/")+":"+e.Subject)
	})
	assert.Equal(t, []string{"Root/GameObject A:m_Name"}, paths)
}

func TestReport_LoadedSummary(t *testing.T) {
	src := `/
    /Player [OVERRIDE: THEIRS]
        [CONFLICT] [MINE] 'm_Name' Property conflict
        [THEIRS] 'm_Layer'
`
	r, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, Summary{Scopes: 1, Decisions: 2, Conflicts: 1, Unresolved: 1, Overrides: 1}, r.Loaded().Summary())
	assert.Equal(t, Summary{}, r.Summary())
	assert.Nil(t, New().Loaded())
	assert.Equal(t, Summary{}, New().Loaded().Summary())
}

func TestNode_StringRendersLoadedTree(t *testing.T) {
	src := strings.Join([]string{
		"/",
		"    /Player [OVERRIDE: MINE]",
		"        /GameObject 100",
		"            [CONFLICT] [THEIRS] 'm_Name' Property conflict",
		"",
	}, "\n")
	r, err := Load(strings.NewReader(src))
	require.NoError(t, err)
	assert.Equal(t, src, r.Loaded().String())
	assert.Empty(t, (*Node)(nil).String())
}
