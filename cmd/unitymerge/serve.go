package main

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/dusk-indust/unitymerge/internal/mcptools"
)

func newServeMCPCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "serve-mcp",
		Short: "Serve the merge tools over MCP on stdio",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()
			server := mcptools.NewMergeMCPServer(mcptools.NewMergeService(a.cfg))
			return mcptools.RunStdio(ctx, server)
		},
	}
}
