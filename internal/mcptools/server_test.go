package mcptools

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixture(name string) string {
	return filepath.Join("..", "..", "testdata", "scenes", name)
}

// setupServerClient wires an MCP server and client together using in-memory
// transports.
func setupServerClient(t *testing.T) *mcp.ClientSession {
	t.Helper()

	server := NewMergeMCPServer(NewMergeService(nil))
	st, ct := mcp.NewInMemoryTransports()
	ctx := context.Background()

	_, err := server.Connect(ctx, st, nil)
	require.NoError(t, err)

	client := mcp.NewClient(&mcp.Implementation{
		Name:    "test-client",
		Version: "1.0.0",
	}, nil)
	session, err := client.Connect(ctx, ct, nil)
	require.NoError(t, err)

	t.Cleanup(func() {
		session.Close()
	})
	return session
}

func callTool[T any](t *testing.T, session *mcp.ClientSession, name string, args any) T {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	require.NoError(t, err)
	require.False(t, result.IsError, "%s returned an error: %v", name, result.Content)
	require.NotNil(t, result.StructuredContent)

	raw, err := json.Marshal(result.StructuredContent)
	require.NoError(t, err)
	var out T
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestMCPListTools(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.ListTools(context.Background(), &mcp.ListToolsParams{})
	require.NoError(t, err)

	names := make([]string, len(result.Tools))
	for i, tool := range result.Tools {
		names[i] = tool.Name
	}
	sort.Strings(names)
	assert.Equal(t, []string{"describe_hierarchy", "list_reports", "merge_documents", "summarize_report"}, names)
}

func TestMCPMergeThenSummarize(t *testing.T) {
	session := setupServerClient(t)
	dir := t.TempDir()
	merged := filepath.Join(dir, "Main.unity")

	out := callTool[MergeDocumentsOutput](t, session, "merge_documents", MergeDocumentsInput{
		Base:   fixture("base.unity"),
		Remote: fixture("remote.unity"),
		Local:  fixture("local.unity"),
		Merged: merged,
	})
	assert.True(t, out.ReviewRequired)
	assert.Equal(t, "recording", out.Mode)
	assert.Equal(t, 1, out.Conflicts)
	assert.True(t, out.ReportWritten)
	assert.Contains(t, out.Report, "[CONFLICT] [THEIRS] 'm_Name'")

	sum := callTool[SummarizeReportOutput](t, session, "summarize_report", SummarizeReportInput{Path: out.ReportPath})
	require.Len(t, sum.Conflicts, 1)
	assert.Equal(t, ConflictEntry{
		Path:    "/Player/Sword/GameObject 200",
		Subject: "m_Name",
		Side:    "THEIRS",
		Message: "Property conflict - mine [ new: Sword old: Weapon ] theirs [ new: Axe old: Weapon ]",
	}, sum.Conflicts[0])
	assert.Positive(t, sum.Decisions)

	list := callTool[ListReportsOutput](t, session, "list_reports", ListReportsInput{Root: dir})
	require.Len(t, list.Reports, 1)
	assert.Equal(t, "review", list.Reports[0].State)
	assert.Equal(t, 1, list.Pending)
}

func TestMCPDescribeHierarchy(t *testing.T) {
	session := setupServerClient(t)

	out := callTool[DescribeHierarchyOutput](t, session, "describe_hierarchy", DescribeHierarchyInput{
		Path: fixture("base.unity"),
	})
	assert.Equal(t, 5, out.Objects)
	require.Len(t, out.Nodes, 2)
	assert.Equal(t, "Player", out.Nodes[0].Name)
	assert.Equal(t, "Weapon", out.Nodes[1].Name)
	assert.Equal(t, 1, out.Nodes[1].Depth)
	assert.True(t, strings.HasPrefix(out.Rendered, "Player &100\n"))

	mermaid := callTool[DescribeHierarchyOutput](t, session, "describe_hierarchy", DescribeHierarchyInput{
		Path:   fixture("base.unity"),
		Format: "mermaid",
	})
	assert.True(t, strings.HasPrefix(mermaid.Rendered, "graph TD\n"))
}

func TestMCPDescribeHierarchy_MissingFile(t *testing.T) {
	session := setupServerClient(t)

	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      "describe_hierarchy",
		Arguments: DescribeHierarchyInput{Path: fixture("missing.unity")},
	})
	require.NoError(t, err)
	assert.True(t, result.IsError)
}
