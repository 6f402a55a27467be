package mcptools

// Tool input and output types. Field tags drive the JSON schema the SDK
// publishes for each tool.

// MergeDocumentsInput is the input for the merge_documents tool.
type MergeDocumentsInput struct {
	Base        string `json:"base" jsonschema:"common ancestor document"`
	Remote      string `json:"remote" jsonschema:"their version (the branch being merged in)"`
	Local       string `json:"local" jsonschema:"my version (the current branch)"`
	Merged      string `json:"merged" jsonschema:"path the merged document is written to"`
	Report      string `json:"report,omitempty" jsonschema:"report file (default: merged path plus the configured suffix)"`
	WriteReport bool   `json:"writeReport,omitempty" jsonschema:"write the report even when nothing was decided"`
}

// MergeDocumentsOutput is the result of the merge_documents tool.
type MergeDocumentsOutput struct {
	Merged         string `json:"merged"`
	ReportPath     string `json:"reportPath"`
	ReportWritten  bool   `json:"reportWritten"`
	Mode           string `json:"mode"` // "recording" or "replaying"
	Decisions      int    `json:"decisions"`
	Conflicts      int    `json:"conflicts"`
	Unresolved     int    `json:"unresolved"`
	Dangling       int    `json:"dangling"`
	ReviewRequired bool   `json:"reviewRequired"`
	Report         string `json:"report,omitempty"`
}

// DescribeHierarchyInput is the input for the describe_hierarchy tool.
type DescribeHierarchyInput struct {
	Path   string `json:"path" jsonschema:"scene or prefab file"`
	Format string `json:"format,omitempty" jsonschema:"text (default) or mermaid"`
}

// DescribeHierarchyOutput is the result of the describe_hierarchy tool.
type DescribeHierarchyOutput struct {
	Objects  int             `json:"objects"`
	Nodes    []HierarchyNode `json:"nodes"`
	Rendered string          `json:"rendered"`
	Dangling []string        `json:"dangling,omitempty"`
}

// HierarchyNode is one game object of a hierarchy.
type HierarchyNode struct {
	ID         int64    `json:"id"`
	Name       string   `json:"name"`
	Depth      int      `json:"depth"`
	Components []string `json:"components,omitempty"`
}

// SummarizeReportInput is the input for the summarize_report tool.
type SummarizeReportInput struct {
	Path string `json:"path" jsonschema:"merge report file"`
}

// SummarizeReportOutput is the result of the summarize_report tool.
type SummarizeReportOutput struct {
	Scopes    int             `json:"scopes"`
	Decisions int             `json:"decisions"`
	Overrides int             `json:"overrides"`
	Conflicts []ConflictEntry `json:"conflicts"`
}

// ConflictEntry is one conflict logged in a report.
type ConflictEntry struct {
	Path    string `json:"path"`
	Subject string `json:"subject"`
	Side    string `json:"side"`
	Message string `json:"message,omitempty"`
}

// ListReportsInput is the input for the list_reports tool.
type ListReportsInput struct {
	Root string `json:"root,omitempty" jsonschema:"directory to scan (default: cwd)"`
}

// ListReportsOutput is the result of the list_reports tool.
type ListReportsOutput struct {
	Reports []ReportInfo `json:"reports"`
	Pending int          `json:"pending"`
}

// ReportInfo describes one report file on disk.
type ReportInfo struct {
	Path      string `json:"path"`
	Merged    string `json:"merged"`
	State     string `json:"state"`
	Conflicts int    `json:"conflicts"`
	Error     string `json:"error,omitempty"`
}
