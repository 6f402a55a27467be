package mcptools

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// version is set by the linker at build time.
var version = "dev"

// NewMergeMCPServer creates an MCP server with the merge tools registered.
func NewMergeMCPServer(svc *MergeService) *mcp.Server {
	server := mcp.NewServer(&mcp.Implementation{
		Name:    "unitymerge",
		Version: version,
	}, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "merge_documents",
		Description: "Three-way merge of Unity scene or prefab files. Replays the report next to the merged file when one exists, otherwise records a fresh one. Returns decision counts and, when review is required, the report text.",
	}, svc.MergeDocuments)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "describe_hierarchy",
		Description: "Load a scene or prefab and list its game objects by hierarchy, with their components. Renders as indented text or as a Mermaid diagram.",
	}, svc.DescribeHierarchy)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "summarize_report",
		Description: "Read a merge report and list the conflicts it logged, with their scope paths and the side taken.",
	}, svc.SummarizeReport)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_reports",
		Description: "Find merge reports under a directory and tell which ones still wait for review.",
	}, svc.ListReports)

	return server
}

// RunStdio runs server on the stdio transport, blocking until stdin is
// closed or ctx is cancelled.
func RunStdio(ctx context.Context, server *mcp.Server) error {
	return server.Run(ctx, &mcp.StdioTransport{})
}
