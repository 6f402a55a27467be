package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/dusk-indust/unitymerge/internal/config"
	"github.com/dusk-indust/unitymerge/internal/logs"
	"github.com/dusk-indust/unitymerge/internal/orchestrator"
)

// version is set by goreleaser at build time.
var version = "dev"

// Exit codes.
const (
	exitOK     = 0
	exitReview = 1
	exitError  = 2
)

// app carries what every command needs once the root flags are parsed.
type app struct {
	stdout io.Writer
	stderr io.Writer

	configDir string
	colorFlag string
	logLevel  string
	quiet     bool

	cfg    *config.ProjectConfig
	colors palette
}

func main() {
	a := &app{stdout: os.Stdout, stderr: os.Stderr, colors: newPalette(false)}
	err := newRootCmd(a).Execute()
	logs.Sync()
	code := exitCode(err)
	if err != nil {
		if code == exitReview {
			fmt.Fprintln(os.Stderr, a.colors.warn.Sprint(err.Error()))
		} else {
			fmt.Fprintf(os.Stderr, "%s %v\n", a.colors.bad.Sprint("error:"), err)
		}
	}
	os.Exit(code)
}

func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, orchestrator.ErrReviewRequired):
		return exitReview
	default:
		return exitError
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "unitymerge",
		Short: "Three-way merge for Unity scenes and prefabs",
		Long: `unitymerge merges Unity YAML scenes and prefabs object by object.

A first run writes a merge report next to the merged file and exits 1 when
it had to pick a side. Edit the report to choose sides, then run the same
merge again: the report is replayed and the merge exits 0.`,
		Version:           version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetOut(a.stdout)
	root.SetErr(a.stderr)

	root.PersistentFlags().StringVar(&a.configDir, "config", ".", "directory holding .unitymerge.yml or .unitymerge.toml")
	root.PersistentFlags().StringVar(&a.colorFlag, "color", "", "colorize output (auto|on|off)")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (debug|info|warn|error)")
	root.PersistentFlags().BoolVar(&a.quiet, "quiet", false, "suppress progress output")

	root.AddCommand(
		newMergeCmd(a),
		newDiffCmd(a),
		newTreeCmd(a),
		newReportCmd(a),
		newExportCmd(a),
		newStatusCmd(a),
		newServeMCPCmd(a),
		newVersionCmd(a),
	)
	return root
}

// setup loads the project config, applies flag overrides, and starts
// logging.
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.configDir)
	if err != nil {
		return err
	}
	if a.colorFlag != "" {
		cfg.Color = a.colorFlag
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	switch cfg.Color {
	case config.ColorAuto, config.ColorOn, config.ColorOff:
	default:
		return fmt.Errorf("--color must be one of auto, on, off; got %q", cfg.Color)
	}
	a.cfg = cfg
	a.colors = newPalette(cfg.Color == config.ColorOn || (cfg.Color == config.ColorAuto && isTerminal(a.stdout)))

	if err := logs.Init("unitymerge", cfg.Log); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	return nil
}

// isTerminal reports whether w is a terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// palette holds the colors used for terminal output.
type palette struct {
	good, bad, warn, dim, bold *color.Color
}

func newPalette(enabled bool) palette {
	p := palette{
		good: color.New(color.FgGreen),
		bad:  color.New(color.FgRed, color.Bold),
		warn: color.New(color.FgYellow),
		dim:  color.New(color.Faint),
		bold: color.New(color.Bold),
	}
	for _, c := range []*color.Color{p.good, p.bad, p.warn, p.dim, p.bold} {
		if enabled {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}
