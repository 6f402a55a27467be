//go:build e2e

package e2e

import (
	"context"
	"errors"
	"flag"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dusk-indust/unitymerge/internal/orchestrator"
)

var update = flag.Bool("update", false, "update golden files")

// goldenDir returns the path to the testdata/golden directory.
func goldenDir() string {
	return filepath.Join("..", "..", "testdata", "golden")
}

func scenes(name string) string {
	return filepath.Join("..", "..", "testdata", "scenes", name)
}

// goldenCases maps a remote fixture to the golden files of its merge with
// local.unity.
var goldenCases = []struct {
	remote string
	merged string
	report string
}{
	{"remote.unity", "conflict_merged.unity", "conflict_report.txt"},
	{"remote_clean.unity", "clean_merged.unity", "clean_report.txt"},
}

// runMergeForGolden merges local.unity with remote against base.unity and
// returns the merged and report paths.
func runMergeForGolden(t *testing.T, remote string) (string, string) {
	t.Helper()

	p := orchestrator.NewPipeline(nil)
	drainDone := make(chan struct{})
	go func() {
		defer close(drainDone)
		for range p.Progress() {
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	req := orchestrator.Request{
		Base:   scenes("base.unity"),
		Local:  scenes("local.unity"),
		Remote: scenes(remote),
		Merged: filepath.Join(t.TempDir(), "merged.unity"),
	}
	res, err := p.Run(ctx, req)
	if err != nil && !errors.Is(err, orchestrator.ErrReviewRequired) {
		require.NoError(t, err)
	}

	p.Close()
	<-drainDone

	return req.Merged, res.ReportPath
}

// TestGolden compares merge output against the committed golden files.
func TestGolden(t *testing.T) {
	for _, gc := range goldenCases {
		t.Run(gc.remote, func(t *testing.T) {
			merged, reportPath := runMergeForGolden(t, gc.remote)
			for out, name := range map[string]string{merged: gc.merged, reportPath: gc.report} {
				golden, err := os.ReadFile(filepath.Join(goldenDir(), name))
				require.NoError(t, err, "golden file %s; run TestUpdateGolden with -update to regenerate", name)

				actual, err := os.ReadFile(out)
				require.NoError(t, err)
				assert.Equal(t, string(golden), string(actual), "output does not match golden file %s", name)
			}
		})
	}
}

// TestUpdateGolden regenerates golden files from the current merge output.
// Run with: go test -tags e2e -run TestUpdateGolden ./internal/e2e/ -update
func TestUpdateGolden(t *testing.T) {
	if !*update {
		t.Skip("skipping golden file update; run with -update flag")
	}
	require.NoError(t, os.MkdirAll(goldenDir(), 0o755))

	for _, gc := range goldenCases {
		merged, reportPath := runMergeForGolden(t, gc.remote)
		for out, name := range map[string]string{merged: gc.merged, reportPath: gc.report} {
			data, err := os.ReadFile(out)
			require.NoError(t, err)
			require.NoError(t, os.WriteFile(filepath.Join(goldenDir(), name), data, 0o644))
			t.Logf("updated %s", name)
		}
	}
}
