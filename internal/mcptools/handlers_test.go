package mcptools

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMergeService_MergeDocuments_RequiresPaths(t *testing.T) {
	svc := NewMergeService(nil)
	_, _, err := svc.MergeDocuments(context.Background(), nil, MergeDocumentsInput{
		Base:   fixture("base.unity"),
		Local:  fixture("local.unity"),
		Merged: filepath.Join(t.TempDir(), "out.unity"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "remote is required")
}

func TestMergeService_MergeDocuments_Clean(t *testing.T) {
	svc := NewMergeService(nil)
	_, out, err := svc.MergeDocuments(context.Background(), nil, MergeDocumentsInput{
		Base:   fixture("base.unity"),
		Remote: fixture("remote_clean.unity"),
		Local:  fixture("local.unity"),
		Merged: filepath.Join(t.TempDir(), "out.unity"),
	})
	require.NoError(t, err)
	assert.False(t, out.ReviewRequired)
	assert.Zero(t, out.Conflicts)
	assert.Empty(t, out.Report)
}

func TestMergeService_MergeDocuments_LoadError(t *testing.T) {
	svc := NewMergeService(nil)
	_, _, err := svc.MergeDocuments(context.Background(), nil, MergeDocumentsInput{
		Base:   fixture("base.unity"),
		Remote: fixture("missing.unity"),
		Local:  fixture("local.unity"),
		Merged: filepath.Join(t.TempDir(), "out.unity"),
	})
	require.Error(t, err)
}

func TestMergeService_DescribeHierarchy_UnknownFormat(t *testing.T) {
	svc := NewMergeService(nil)
	_, _, err := svc.DescribeHierarchy(context.Background(), nil, DescribeHierarchyInput{
		Path:   fixture("base.unity"),
		Format: "dot",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "dot")
}

func TestMergeService_ListReports_Empty(t *testing.T) {
	svc := NewMergeService(nil)
	_, out, err := svc.ListReports(context.Background(), nil, ListReportsInput{Root: t.TempDir()})
	require.NoError(t, err)
	assert.Empty(t, out.Reports)
	assert.Zero(t, out.Pending)
}
