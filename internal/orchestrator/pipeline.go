package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	"go.uber.org/zap"

	"github.com/dusk-indust/unitymerge/internal/config"
	"github.com/dusk-indust/unitymerge/internal/logs"
	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/scene"
)

// Pipeline runs merges for one project configuration.
type Pipeline struct {
	cfg      *config.ProjectConfig
	progress *ProgressReporter
}

// NewPipeline creates a Pipeline. A nil cfg uses the defaults.
func NewPipeline(cfg *config.ProjectConfig) *Pipeline {
	if cfg == nil {
		cfg = config.Default()
	}
	return &Pipeline{cfg: cfg, progress: NewProgressReporter()}
}

// Progress returns a channel that emits progress events.
func (p *Pipeline) Progress() <-chan ProgressEvent {
	return p.progress.Subscribe()
}

// Close shuts down the progress reporter.
func (p *Pipeline) Close() {
	p.progress.Close()
}

// ReportPath returns the report file used for req.
func (p *Pipeline) ReportPath(req Request) string {
	if req.Report != "" {
		return req.Report
	}
	return p.cfg.ReportPath(req.Merged)
}

// Run performs one merge. When the report file exists the run replays it;
// a report that cannot be parsed fails the run before any input is read.
// Otherwise the run records a fresh report.
//
// The merged document is always written on success. A run that needs a
// human to look at the report returns the result together with
// ErrReviewRequired: a recording run that logged a conflict, or a replay
// that met a conflict the loaded report did not decide.
func (p *Pipeline) Run(ctx context.Context, req Request) (*Result, error) {
	reportPath := p.ReportPath(req)
	r, err := openReport(reportPath)
	if err != nil {
		return nil, err
	}
	logs.Info("merge: start",
		zap.String("merged", req.Merged),
		zap.String("report", reportPath),
		zap.Stringer("mode", r.Mode()))

	in, err := LoadInputs(ctx, req, p.progress.Emit)
	if err != nil {
		return nil, err
	}

	p.progress.Emit(ProgressEvent{Stage: StageMerge, Section: req.Merged, Status: ProgressWorking})
	merged, err := scene.Merge(in.Base, in.Local, in.Remote, r)
	if err != nil {
		p.progress.Emit(ProgressEvent{Stage: StageMerge, Section: req.Merged, Status: ProgressFailed, Message: err.Error()})
		return nil, fmt.Errorf("merge %s: %w", req.Merged, err)
	}
	res := &Result{
		Mode:       r.Mode(),
		ReportPath: reportPath,
		Summary:    r.Summary(),
		Dangling:   merged.Dangling(),
		Graph:      merged,
		Report:     r,
	}
	p.progress.Emit(ProgressEvent{
		Stage:   StageMerge,
		Section: req.Merged,
		Status:  ProgressComplete,
		Message: fmt.Sprintf("%d decisions, %d conflicts", res.Summary.Decisions, res.Summary.Conflicts),
	})

	if err := p.write(req.Merged, func() error { return merged.WriteFile(req.Merged) }); err != nil {
		return nil, err
	}
	if p.shouldWriteReport(req, res) {
		if err := p.write(reportPath, func() error { return r.WriteFile(reportPath) }); err != nil {
			return nil, err
		}
		res.ReportWritten = true
	}

	logs.Info("merge: done",
		zap.String("merged", req.Merged),
		zap.Int("decisions", res.Summary.Decisions),
		zap.Int("conflicts", res.Summary.Conflicts),
		zap.Int("unresolved", res.Summary.Unresolved),
		zap.Int("dangling", len(res.Dangling)))

	if res.ReviewRequired() {
		return res, ErrReviewRequired
	}
	return res, nil
}

// shouldWriteReport decides whether this run leaves a report behind. A
// replay only rewrites the file it read when new conflicts turned up.
func (p *Pipeline) shouldWriteReport(req Request, res *Result) bool {
	if res.Mode == report.Replaying {
		return res.Summary.Unresolved > 0
	}
	return res.Summary.Decisions > 0 || req.WriteReport || p.cfg.WriteReport()
}

func (p *Pipeline) write(path string, fn func() error) error {
	p.progress.Emit(ProgressEvent{Stage: StageWrite, Section: path, Status: ProgressWorking})
	if err := fn(); err != nil {
		p.progress.Emit(ProgressEvent{Stage: StageWrite, Section: path, Status: ProgressFailed, Message: err.Error()})
		return err
	}
	p.progress.Emit(ProgressEvent{Stage: StageWrite, Section: path, Status: ProgressComplete})
	return nil
}

// openReport loads the report at path for replay, or starts a recording
// when there is none.
func openReport(path string) (*report.Report, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return report.New(), nil
	} else if err != nil {
		return nil, fmt.Errorf("stat report %s: %w", path, err)
	}
	return report.LoadFile(path)
}
