package export

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/dusk-indust/unitymerge/internal/report"
)

// Output formats for a report export.
const (
	FormatJSON    = "json"
	FormatMsgpack = "msgpack"
)

// ReportExport is the machine-readable form of a merge report.
type ReportExport struct {
	Source     string           `json:"source,omitempty" msgpack:"source,omitempty"`
	ExportedAt string           `json:"exportedAt" msgpack:"exportedAt"`
	Mode       string           `json:"mode,omitempty" msgpack:"mode,omitempty"`
	Summary    SummaryExport    `json:"summary" msgpack:"summary"`
	Overrides  []OverrideExport `json:"overrides,omitempty" msgpack:"overrides,omitempty"`
	Decisions  []DecisionExport `json:"decisions" msgpack:"decisions"`
}

// SummaryExport mirrors report.Summary.
type SummaryExport struct {
	Scopes     int `json:"scopes" msgpack:"scopes"`
	Decisions  int `json:"decisions" msgpack:"decisions"`
	Conflicts  int `json:"conflicts" msgpack:"conflicts"`
	Unresolved int `json:"unresolved" msgpack:"unresolved"`
}

// OverrideExport is a scope forced to one side.
type OverrideExport struct {
	Path []string `json:"path" msgpack:"path"`
	Side string   `json:"side" msgpack:"side"`
}

// DecisionExport is one logged decision.
type DecisionExport struct {
	Path     []string `json:"path" msgpack:"path"`
	Subject  string   `json:"subject" msgpack:"subject"`
	Message  string   `json:"message,omitempty" msgpack:"message,omitempty"`
	Side     string   `json:"side" msgpack:"side"`
	Conflict bool     `json:"conflict,omitempty" msgpack:"conflict,omitempty"`
	Resolved bool     `json:"resolved,omitempty" msgpack:"resolved,omitempty"`
}

// ExportReport flattens the decisions r took during a run. source names
// the file the report is written to and may be empty.
func ExportReport(r *report.Report, source string) *ReportExport {
	e := exportTree(r.Root(), source)
	e.Mode = r.Mode().String()
	return e
}

// ExportTree flattens a report tree as read from disk, typically
// report.Report.Loaded.
func ExportTree(n *report.Node, source string) *ReportExport {
	return exportTree(n, source)
}

func exportTree(n *report.Node, source string) *ReportExport {
	sum := n.Summary()
	out := &ReportExport{
		Source:     source,
		ExportedAt: time.Now().UTC().Format(time.RFC3339),
		Summary: SummaryExport{
			Scopes:     sum.Scopes,
			Decisions:  sum.Decisions,
			Conflicts:  sum.Conflicts,
			Unresolved: sum.Unresolved,
		},
		Decisions: []DecisionExport{},
	}
	if n == nil {
		return out
	}
	collectOverrides(n, nil, out)
	n.Walk(func(path []string, e report.Entry) {
		out.Decisions = append(out.Decisions, DecisionExport{
			Path:     append([]string{}, path...),
			Subject:  e.Subject,
			Message:  e.Message,
			Side:     report.Side(e.Theirs).String(),
			Conflict: e.Conflict,
			Resolved: e.Resolved,
		})
	})
	return out
}

func collectOverrides(n *report.Node, path []string, out *ReportExport) {
	if n.Override != nil {
		out.Overrides = append(out.Overrides, OverrideExport{
			Path: append([]string{}, path...),
			Side: n.Override.String(),
		})
	}
	for _, c := range n.Children {
		collectOverrides(c, append(path[:len(path):len(path)], c.Name), out)
	}
}

// WriteReport encodes e to w in format.
func WriteReport(w io.Writer, e *ReportExport, format string) error {
	switch format {
	case FormatJSON, "":
		data, err := json.MarshalIndent(e, "", "  ")
		if err != nil {
			return fmt.Errorf("marshal JSON: %w", err)
		}
		_, err = w.Write(append(data, '\n'))
		return err
	case FormatMsgpack:
		if err := msgpack.NewEncoder(w).Encode(e); err != nil {
			return fmt.Errorf("encode msgpack: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown export format %q (want %s or %s)", format, FormatJSON, FormatMsgpack)
	}
}

// ReadMsgpack decodes an export written with FormatMsgpack.
func ReadMsgpack(r io.Reader) (*ReportExport, error) {
	var e ReportExport
	if err := msgpack.NewDecoder(r).Decode(&e); err != nil {
		return nil, fmt.Errorf("decode msgpack: %w", err)
	}
	return &e, nil
}
