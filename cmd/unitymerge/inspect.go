package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/dusk-indust/unitymerge/internal/export"
	"github.com/dusk-indust/unitymerge/internal/report"
	"github.com/dusk-indust/unitymerge/internal/scene"
	"github.com/dusk-indust/unitymerge/internal/ui"
)

func newDiffCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "diff BASE OTHER",
		Short: "List the objects OTHER added, removed or modified relative to BASE",
		Args:  cobra.ExactArgs(2),
		RunE: func(_ *cobra.Command, args []string) error {
			base, err := scene.LoadFile(args[0])
			if err != nil {
				return err
			}
			other, err := scene.LoadFile(args[1])
			if err != nil {
				return err
			}
			changes := other.Diff(base)
			for _, c := range changes {
				var mark string
				switch c.Kind {
				case scene.Added:
					mark = a.colors.good.Sprint("+")
				case scene.Removed:
					mark = a.colors.bad.Sprint("-")
				default:
					mark = a.colors.warn.Sprint("~")
				}
				path := c.Path
				if path == "" {
					path = "/"
				}
				fmt.Fprintf(a.stdout, "%s %s %s\n", mark, c.Description, a.colors.dim.Sprint(path))
			}
			if len(changes) == 0 && !a.quiet {
				fmt.Fprintln(a.stdout, "no changes")
			}
			return nil
		},
	}
}

func newTreeCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "tree FILE",
		Short: "Print the game object hierarchy of a scene or prefab",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			g, err := scene.LoadFile(args[0])
			if err != nil {
				return err
			}
			switch format {
			case "text":
				return export.WriteTree(a.stdout, g)
			case "mermaid":
				_, err := fmt.Fprint(a.stdout, export.GenerateMermaid(g))
				return err
			default:
				return fmt.Errorf("unknown format %q (want text or mermaid)", format)
			}
		},
	}
	cmd.Flags().StringVar(&format, "format", "text", "output format (text|mermaid)")
	return cmd
}

func newReportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Inspect merge reports",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show FILE",
		Short: "Print a merge report with its conflicts highlighted",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			r, err := report.LoadFile(args[0])
			if err != nil {
				return err
			}
			tree := r.Loaded()
			if text := tree.String(); text != "" {
				for _, line := range strings.Split(strings.TrimSuffix(text, "\n"), "\n") {
					switch {
					case strings.Contains(line, "[CONFLICT]"):
						line = a.colors.bad.Sprint(line)
					case strings.Contains(line, "[OVERRIDE:"):
						line = a.colors.warn.Sprint(line)
					}
					fmt.Fprintln(a.stdout, line)
				}
			}
			s := tree.Summary()
			fmt.Fprintf(a.stdout, "%d decisions, %d conflicts, %d overrides\n", s.Decisions, s.Conflicts, s.Overrides)
			return nil
		},
	})
	cmd.AddCommand(newReviewCmd(a))
	return cmd
}

func newReviewCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "review FILE",
		Short: "Pick a side for each conflict of a merge report interactively",
		Args:  cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			r, err := report.LoadFile(args[0])
			if err != nil {
				return err
			}
			tree := r.Loaded()
			model := ui.NewReviewModel(args[0], tree)
			if model.Len() == 0 {
				fmt.Fprintln(a.stdout, "no conflicts to review")
				return nil
			}
			if !isTerminal(a.stdout) {
				return errors.New("review needs a terminal; edit the report by hand instead")
			}
			if _, err := tea.NewProgram(model, tea.WithOutput(a.stdout)).Run(); err != nil {
				return err
			}
			if !model.Saved() {
				fmt.Fprintln(a.stdout, "report left unchanged")
				return nil
			}
			if err := os.WriteFile(args[0], []byte(tree.String()), 0o644); err != nil {
				return fmt.Errorf("write report %s: %w", args[0], err)
			}
			fmt.Fprintf(a.stdout, "%d of %d conflicts changed; run the merge again to apply\n", model.Changed(), model.Len())
			return nil
		},
	}
}
