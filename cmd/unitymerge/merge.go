package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/unitymerge/internal/export"
	"github.com/dusk-indust/unitymerge/internal/orchestrator"
	"github.com/dusk-indust/unitymerge/internal/report"
)

// exportOpts asks merge to also write the run's decisions in machine form.
type exportOpts struct {
	path   string
	format string
}

func newMergeCmd(a *app) *cobra.Command {
	var req orchestrator.Request
	var exp exportOpts
	cmd := &cobra.Command{
		Use:   "merge BASE REMOTE LOCAL MERGED",
		Short: "Merge two versions of a scene or prefab against their common base",
		Long: `Merge LOCAL (mine) and REMOTE (theirs) against BASE and write MERGED.

When the report file exists the merge replays it; otherwise a fresh report
is recorded. Exit status: 0 merged, 1 review the report and run again,
2 failed.

As a git mergetool:
  cmd = unitymerge merge "$BASE" "$REMOTE" "$LOCAL" "$MERGED"`,
		Args: cobra.ExactArgs(4),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Base, req.Remote, req.Local, req.Merged = args[0], args[1], args[2], args[3]
			return a.runMerge(cmd, req, exp)
		},
	}
	cmd.Flags().StringVar(&req.Report, "report", "", "report file (default: MERGED plus the configured suffix)")
	cmd.Flags().BoolVar(&req.WriteReport, "write-report", false, "write the report even when nothing was decided")
	cmd.Flags().StringVar(&exp.path, "export", "", "also write this run's decisions to `FILE`")
	cmd.Flags().StringVar(&exp.format, "export-format", export.FormatJSON, "format for --export (json|msgpack)")
	return cmd
}

func (a *app) runMerge(cmd *cobra.Command, req orchestrator.Request, exp exportOpts) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	p := orchestrator.NewPipeline(a.cfg)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for ev := range p.Progress() {
			if !a.quiet {
				fmt.Fprintln(a.stderr, a.colors.dim.Sprint(orchestrator.FormatProgress(ev)))
			}
		}
	}()
	res, err := p.Run(ctx, req)
	p.Close()
	<-done

	if err != nil && !errors.Is(err, orchestrator.ErrReviewRequired) {
		return err
	}
	a.printMergeSummary(res)
	if exp.path != "" {
		if werr := writeExport(exp.path, export.ExportReport(res.Report, res.ReportPath), exp.format); werr != nil {
			return werr
		}
	}
	return err
}

func writeExport(path string, e *export.ReportExport, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := export.WriteReport(f, e, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func (a *app) printMergeSummary(res *orchestrator.Result) {
	s := res.Summary
	conflicts := a.colors.good.Sprintf("%d conflicts", s.Conflicts)
	if s.Conflicts > 0 {
		conflicts = a.colors.bad.Sprintf("%d conflicts", s.Conflicts)
	}
	fmt.Fprintf(a.stdout, "%s %d objects (%s): %d decisions, %s\n",
		a.colors.bold.Sprint("merged"), res.Graph.Len(), res.Mode, s.Decisions, conflicts)
	if res.Mode == report.Replaying && s.Unresolved > 0 {
		fmt.Fprintf(a.stdout, "  %d conflicts were not in the report and used the default\n", s.Unresolved)
	}
	if n := len(res.Dangling); n > 0 {
		fmt.Fprintf(a.stdout, "  %s\n", a.colors.warn.Sprintf("%d references point outside the document", n))
	}
	if res.ReportWritten {
		fmt.Fprintf(a.stdout, "  report: %s\n", res.ReportPath)
	}
}
