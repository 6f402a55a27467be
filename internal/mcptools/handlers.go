package mcptools

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/dusk-indust/unitymerge/internal/config"
	"github.com/dusk-indust/unitymerge/internal/export"
	"github.com/dusk-indust/unitymerge/internal/orchestrator"
	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/scene"
	"github.com/dusk-indust/unitymerge/internal/status"
)

// MergeService handles the merge tool calls.
type MergeService struct {
	cfg *config.ProjectConfig
}

// NewMergeService creates a MergeService. A nil cfg uses the defaults.
func NewMergeService(cfg *config.ProjectConfig) *MergeService {
	if cfg == nil {
		cfg = config.Default()
	}
	return &MergeService{cfg: cfg}
}

// MergeDocuments runs one merge. A run that needs review is a successful
// tool call with ReviewRequired set and the report text attached.
func (s *MergeService) MergeDocuments(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input MergeDocumentsInput,
) (*mcp.CallToolResult, MergeDocumentsOutput, error) {
	required := []struct{ name, value string }{
		{"base", input.Base}, {"remote", input.Remote}, {"local", input.Local}, {"merged", input.Merged},
	}
	for _, f := range required {
		if f.value == "" {
			return nil, MergeDocumentsOutput{}, fmt.Errorf("%s is required", f.name)
		}
	}

	p := orchestrator.NewPipeline(s.cfg)
	defer p.Close()
	res, err := p.Run(ctx, orchestrator.Request{
		Base:        input.Base,
		Remote:      input.Remote,
		Local:       input.Local,
		Merged:      input.Merged,
		Report:      input.Report,
		WriteReport: input.WriteReport,
	})
	if err != nil && !errors.Is(err, orchestrator.ErrReviewRequired) {
		return nil, MergeDocumentsOutput{}, err
	}

	out := MergeDocumentsOutput{
		Merged:         input.Merged,
		ReportPath:     res.ReportPath,
		ReportWritten:  res.ReportWritten,
		Mode:           res.Mode.String(),
		Decisions:      res.Summary.Decisions,
		Conflicts:      res.Summary.Conflicts,
		Unresolved:     res.Summary.Unresolved,
		Dangling:       len(res.Dangling),
		ReviewRequired: res.ReviewRequired(),
	}
	if out.ReviewRequired {
		out.Report = res.Report.String()
	}
	return nil, out, nil
}

// DescribeHierarchy loads one document and lists its game objects.
func (s *MergeService) DescribeHierarchy(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input DescribeHierarchyInput,
) (*mcp.CallToolResult, DescribeHierarchyOutput, error) {
	if input.Path == "" {
		return nil, DescribeHierarchyOutput{}, fmt.Errorf("path is required")
	}
	g, err := scene.LoadFile(input.Path)
	if err != nil {
		return nil, DescribeHierarchyOutput{}, err
	}

	out := DescribeHierarchyOutput{Objects: g.Len(), Nodes: []HierarchyNode{}}
	for _, n := range export.Hierarchy(g) {
		out.Nodes = append(out.Nodes, HierarchyNode{
			ID:         n.ID,
			Name:       n.Name,
			Depth:      n.Depth,
			Components: n.Components,
		})
	}
	for _, d := range g.Dangling() {
		out.Dangling = append(out.Dangling, fmt.Sprintf("&%d %s -> &%d", d.From, d.Field, d.Target))
	}

	switch input.Format {
	case "", "text":
		var sb strings.Builder
		if err := export.WriteTree(&sb, g); err != nil {
			return nil, DescribeHierarchyOutput{}, err
		}
		out.Rendered = sb.String()
	case "mermaid":
		out.Rendered = export.GenerateMermaid(g)
	default:
		return nil, DescribeHierarchyOutput{}, fmt.Errorf("unknown format %q (want text or mermaid)", input.Format)
	}
	return nil, out, nil
}

// SummarizeReport reads a report file and lists its conflicts.
func (s *MergeService) SummarizeReport(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input SummarizeReportInput,
) (*mcp.CallToolResult, SummarizeReportOutput, error) {
	if input.Path == "" {
		return nil, SummarizeReportOutput{}, fmt.Errorf("path is required")
	}
	r, err := report.LoadFile(input.Path)
	if err != nil {
		return nil, SummarizeReportOutput{}, err
	}

	tree := r.Loaded()
	sum := tree.Summary()
	out := SummarizeReportOutput{
		Scopes:    sum.Scopes,
		Decisions: sum.Decisions,
		Overrides: sum.Overrides,
		Conflicts: []ConflictEntry{},
	}
	tree.Walk(func(path []string, e report.Entry) {
		if !e.Conflict {
			return
		}
		out.Conflicts = append(out.Conflicts, ConflictEntry{
			Path:    "/" + strings.Join(path, "/"),
			Subject: e.Subject,
			Side:    report.Side(e.Theirs).String(),
			Message: e.Message,
		})
	})
	return nil, out, nil
}

// ListReports scans a directory for report files.
func (s *MergeService) ListReports(
	_ context.Context,
	_ *mcp.CallToolRequest,
	input ListReportsInput,
) (*mcp.CallToolResult, ListReportsOutput, error) {
	root := input.Root
	if root == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, ListReportsOutput{}, err
		}
		root = wd
	}
	found, err := status.ScanReports(root, s.cfg.ReportSuffix)
	if err != nil {
		return nil, ListReportsOutput{}, fmt.Errorf("scan %s: %w", root, err)
	}

	out := ListReportsOutput{Reports: []ReportInfo{}, Pending: status.CountPending(found)}
	for _, st := range found {
		info := ReportInfo{
			Path:      st.Path,
			Merged:    st.Merged,
			State:     st.Label(),
			Conflicts: st.Summary.Conflicts,
		}
		if st.Err != nil {
			info.Error = st.Err.Error()
		}
		out.Reports = append(out.Reports, info)
	}
	return nil, out, nil
}
