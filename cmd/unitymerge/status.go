package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/unitymerge/internal/status"
)

func newStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status [DIR]",
		Short: "List merge reports under DIR and the ones waiting for review",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			root := "."
			if len(args) == 1 {
				root = args[0]
			}
			found, err := status.ScanReports(root, a.cfg.ReportSuffix)
			if err != nil {
				return err
			}
			if len(found) == 0 {
				fmt.Fprintln(a.stdout, "No merge reports found.")
				return nil
			}
			for _, s := range found {
				label := fmt.Sprintf("%-9s", s.Label())
				switch s.Label() {
				case "clean":
					label = a.colors.good.Sprint(label)
				case "review", "malformed":
					label = a.colors.bad.Sprint(label)
				default:
					label = a.colors.warn.Sprint(label)
				}
				fmt.Fprintf(a.stdout, "  %s %s", label, s.Path)
				switch {
				case s.Err != nil:
					fmt.Fprintf(a.stdout, " (%v)", s.Err)
				case s.Summary.Conflicts > 0:
					fmt.Fprintf(a.stdout, " (%d conflicts)", s.Summary.Conflicts)
				}
				fmt.Fprintln(a.stdout)
			}
			fmt.Fprintf(a.stdout, "%d of %d reports pending review.\n", status.CountPending(found), len(found))
			return nil
		},
	}
}
