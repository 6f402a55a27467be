package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/unitymerge/internal/export"
	"github.com/dusk-indust/unitymerge/internal/report"
)

func newExportCmd(a *app) *cobra.Command {
	var format, out string
	cmd := &cobra.Command{
		Use:   "export REPORT",
		Short: "Export a merge report as JSON or msgpack",
		Long: `Export a merge report as JSON or msgpack.

REPORT is a report file, or a msgpack export (*.msgpack) to convert.`,
		Args: cobra.ExactArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			data, err := readExportSource(args[0])
			if err != nil {
				return err
			}

			if out == "" {
				if format == export.FormatMsgpack && isTerminal(a.stdout) {
					return errors.New("refusing to write msgpack to a terminal; use --out")
				}
				return export.WriteReport(a.stdout, data, format)
			}

			return writeExport(out, data, format)
		},
	}
	cmd.Flags().StringVar(&format, "format", export.FormatJSON, "output format (json|msgpack)")
	cmd.Flags().StringVarP(&out, "out", "o", "", "write to file instead of stdout")
	return cmd
}

// readExportSource loads a report file, or decodes an earlier msgpack
// export as is.
func readExportSource(path string) (*export.ReportExport, error) {
	if filepath.Ext(path) != "."+export.FormatMsgpack {
		r, err := report.LoadFile(path)
		if err != nil {
			return nil, err
		}
		return export.ExportTree(r.Loaded(), path), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return export.ReadMsgpack(f)
}
