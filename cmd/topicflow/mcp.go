package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/aretw0/topicflow/pkg/adapters/mcp"
	"github.com/spf13/cobra"
)

func newMCPCmd() *cobra.Command {
	var transport, addr string

	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Run the Model Context Protocol (MCP) server",
		Long: `Exposes project validation and diagrams as MCP tools for AI agents.

Supported Transports:
- stdio (default): Uses Standard Input/Output. Ideal for local process integration.
- sse: Uses Server-Sent Events over HTTP. Ideal for remote agents or debuggers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a := appFrom(cmd)
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			ed, closeStore, err := a.editor(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = closeStore() }()

			srv := mcp.NewServer(ed.Projects, ed.Fields, a.logger)
			switch transport {
			case "stdio":
				// Logs go to stderr so they never corrupt JSON-RPC on stdout.
				a.logger.Info("Starting topicflow MCP server (stdio)")
				return srv.ServeStdio()
			case "sse":
				a.logger.Info("Starting topicflow MCP server (SSE)", "addr", addr)
				return srv.ServeSSE(ctx, addr, "http://localhost"+addr)
			default:
				return fmt.Errorf("unknown transport %q (stdio|sse)", transport)
			}
		},
	}
	cmd.Flags().StringVar(&transport, "transport", "stdio", "Transport protocol to use: 'stdio' or 'sse'")
	cmd.Flags().StringVar(&addr, "sse-addr", ":8081", "Listen address (only for SSE)")
	return cmd
}
