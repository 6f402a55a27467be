package status

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/unitymerge/internal/report"
)

const suffix = ".mergereport"

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestScanReports(t *testing.T) {
	root := t.TempDir()
	conflicted := "/\n    /Player\n        [CONFLICT] [THEIRS] 'm_Name' Property conflict\n"
	clean := "/\n    /Player\n        [MINE] 'm_Layer' Property modified in mine\n"

	writeFile(t, filepath.Join(root, "Assets", "Main.unity"), "")
	writeFile(t, filepath.Join(root, "Assets", "Main.unity"+suffix), conflicted)
	writeFile(t, filepath.Join(root, "Assets", "Prefabs", "Hero.prefab"), "")
	writeFile(t, filepath.Join(root, "Assets", "Prefabs", "Hero.prefab"+suffix), clean)
	writeFile(t, filepath.Join(root, "Assets", "Gone.unity"+suffix), clean)
	writeFile(t, filepath.Join(root, "Assets", "Broken.unity"+suffix), "garbage\n")
	writeFile(t, filepath.Join(root, "Library", "Cached.unity"+suffix), conflicted)
	writeFile(t, filepath.Join(root, ".git", "Old.unity"+suffix), conflicted)

	got, err := ScanReports(root, suffix)
	require.NoError(t, err)
	require.Len(t, got, 4)

	labels := make(map[string]string)
	for _, s := range got {
		rel, err := filepath.Rel(root, s.Path)
		require.NoError(t, err)
		labels[filepath.ToSlash(rel)] = s.Label()
	}
	assert.Equal(t, map[string]string{
		"Assets/Main.unity" + suffix:          "review",
		"Assets/Prefabs/Hero.prefab" + suffix: "clean",
		"Assets/Gone.unity" + suffix:          "orphaned",
		"Assets/Broken.unity" + suffix:        "malformed",
	}, labels)
	assert.Equal(t, 2, CountPending(got))
	assert.IsIncreasing(t, []string{got[0].Path, got[1].Path, got[2].Path, got[3].Path})
}

func TestInspect(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "Main.unity"+suffix)
	writeFile(t, filepath.Join(dir, "Main.unity"), "")
	writeFile(t, path, "/ [OVERRIDE: MINE]\n    /Player\n        [CONFLICT] [THEIRS] 'm_Name'\n")

	s := Inspect(path, suffix)
	require.NoError(t, s.Err)
	assert.Equal(t, filepath.Join(dir, "Main.unity"), s.Merged)
	assert.True(t, s.MergedExists)
	assert.Equal(t, report.Summary{Scopes: 1, Decisions: 1, Conflicts: 1, Unresolved: 1, Overrides: 1}, s.Summary)
	assert.True(t, s.Pending())
}

func TestInspect_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.unity"+suffix)
	writeFile(t, path, "\t/bad\n")
	s := Inspect(path, suffix)
	assert.ErrorIs(t, s.Err, report.ErrReportParse)
	assert.Equal(t, "malformed", s.Label())
}

func TestScanReports_MissingRoot(t *testing.T) {
	_, err := ScanReports(filepath.Join(t.TempDir(), "nope"), suffix)
	assert.Error(t, err)
}
