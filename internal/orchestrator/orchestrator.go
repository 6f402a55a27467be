// Package orchestrator runs the merge pipeline: load the three documents,
// merge them under a recording or replaying report, then write the merged
// document and its report.
package orchestrator

import (
	"errors"

	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/scene"
)

// ErrReviewRequired is returned when a run needs a human to read its
// report. The merged file and the report are written before it is
// returned.
var ErrReviewRequired = errors.New("merge recorded conflicts; review the report and run again")

// Stage identifies a pipeline stage.
type Stage int

const (
	StageLoad Stage = iota
	StageMerge
	StageWrite
)

func (s Stage) String() string {
	names := [...]string{"load", "merge", "write"}
	if int(s) >= 0 && int(s) < len(names) {
		return names[s]
	}
	return "unknown"
}

// ProgressEvent is emitted while a merge runs.
type ProgressEvent struct {
	Stage   Stage
	Section string // input role or output file
	Status  ProgressStatus
	Message string
}

// ProgressStatus is the state of a section within a stage.
type ProgressStatus string

const (
	ProgressPending  ProgressStatus = "pending"
	ProgressWorking  ProgressStatus = "working"
	ProgressComplete ProgressStatus = "complete"
	ProgressFailed   ProgressStatus = "failed"
)

// Request names the files of one merge invocation.
type Request struct {
	Base   string
	Remote string
	Local  string
	Merged string

	// Report overrides the report path derived from Merged.
	Report string
	// WriteReport forces the report to be written even when nothing was
	// decided.
	WriteReport bool
}

// Result describes a finished merge.
type Result struct {
	Mode          report.Mode
	ReportPath    string
	ReportWritten bool
	Summary       report.Summary
	Dangling      []scene.DanglingRef

	// Graph is the merged document, already written to Request.Merged.
	Graph *scene.Graph
	// Report holds the decisions of this run.
	Report *report.Report
}

// ReviewRequired reports whether the run must stop for a human to read the
// report: a recording run that logged a conflict, or a replay that met a
// conflict its report did not decide.
func (r *Result) ReviewRequired() bool {
	if r.Mode == report.Replaying {
		return r.Summary.Unresolved > 0
	}
	return r.Summary.HasConflicts()
}
