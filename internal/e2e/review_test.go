//go:build e2e

package e2e

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/unitymerge/internal/config"
	"github.com/dusk-indust/unitymerge/internal/export"
	"github.com/dusk-indust/unitymerge/internal/orchestrator"
	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/scene"
	"github.com/dusk-indust/unitymerge/internal/status"
)

// TestReviewCycle walks one conflicting merge from the first run to a
// clean replay: record, list as pending, export, pick a side, replay.
func TestReviewCycle(t *testing.T) {
	dir := t.TempDir()
	req := orchestrator.Request{
		Base:   scenes("base.unity"),
		Local:  scenes("local.unity"),
		Remote: scenes("remote.unity"),
		Merged: filepath.Join(dir, "Assets", "Main.unity"),
	}
	require.NoError(t, os.MkdirAll(filepath.Dir(req.Merged), 0o755))

	p := orchestrator.NewPipeline(nil)
	defer p.Close()

	// --- First run records the conflict ---

	res, err := p.Run(context.Background(), req)
	require.ErrorIs(t, err, orchestrator.ErrReviewRequired)
	require.True(t, res.ReportWritten)

	found, err := status.ScanReports(dir, config.DefaultReportSuffix)
	require.NoError(t, err)
	require.Len(t, found, 1)
	assert.Equal(t, "review", found[0].Label())
	assert.Equal(t, 1, status.CountPending(found))

	// --- The report exports with its decision paths ---

	loaded, err := report.LoadFile(res.ReportPath)
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, export.WriteReport(&buf, export.ExportTree(loaded.Loaded(), res.ReportPath), export.FormatMsgpack))
	exported, err := export.ReadMsgpack(&buf)
	require.NoError(t, err)
	assert.Equal(t, 1, exported.Summary.Conflicts)

	var conflict *export.DecisionExport
	for i := range exported.Decisions {
		if exported.Decisions[i].Conflict {
			conflict = &exported.Decisions[i]
		}
	}
	require.NotNil(t, conflict)
	assert.Equal(t, "m_Name", conflict.Subject)
	assert.Equal(t, "THEIRS", conflict.Side)

	// --- Pick mine and replay ---

	text, err := os.ReadFile(res.ReportPath)
	require.NoError(t, err)
	edited := strings.Replace(string(text), "[CONFLICT] [THEIRS]", "[CONFLICT] [MINE]", 1)
	require.NoError(t, os.WriteFile(res.ReportPath, []byte(edited), 0o644))

	res, err = p.Run(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, report.Replaying, res.Mode)

	merged, err := scene.LoadFile(req.Merged)
	require.NoError(t, err)
	assert.Equal(t, "Sword", merged.Get(200).(*scene.GameObject).Name.Value)
	assert.Equal(t, "4", merged.Get(102).(*scene.MonoBehaviour).Rest.Get("speed").Value)
	assert.Empty(t, res.Dangling)

	// A second replay of the same report is byte-identical.
	first, err := os.ReadFile(req.Merged)
	require.NoError(t, err)
	_, err = p.Run(context.Background(), req)
	require.NoError(t, err)
	second, err := os.ReadFile(req.Merged)
	require.NoError(t, err)
	assert.Equal(t, string(first), string(second))
}
