package main

import (
	"fmt"

	"github.com/spf13/cobra"

	mcpserver "github.com/gnana997/popupkit/pkg/mcp"
	"github.com/gnana997/popupkit/pkg/mcplog"
	"github.com/gnana997/popupkit/pkg/preview"
)

func newServeCmd(a *app) *cobra.Command {
	var logPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the MCP server on stdio",
		Long: `Starts a Model Context Protocol server on stdio exposing the component
registry, design document tools, reminder generator and merger to AI agents.
Logs go to stderr; tool calls are appended to the MCP log when one is set.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("mcp-log") {
				logPath = a.cfg.MCPLogPath
			}
			callLog, err := mcplog.NewLogger(logPath)
			if err != nil {
				return err
			}
			defer callLog.Close()

			tk, checker := a.toolkit()
			defer checker.Close()

			mcpserver.Version = Version
			a.logger.Info("MCP server started on stdio",
				"components", tk.Registry.Len(),
				"mcp_log", logPath)

			if err := mcpserver.NewServer(tk, callLog).ServeStdio(); err != nil {
				return fmt.Errorf("server error: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&logPath, "mcp-log", "", "append tool calls to this JSONL file")
	return cmd
}

func newPreviewCmd(a *app) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Start the HTTP preview server",
		Long: `Serves the toolkit over HTTP for editor integrations: component listing
and rendering, design document updates, reminder generation and merging.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = a.cfg.Preview.Addr
			}
			tk, checker := a.toolkit()
			defer checker.Close()

			ctx, stop := signalContext(cmd.Context())
			defer stop()
			return preview.New(tk, a.logger).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, "+defaultPreviewAddr+")")
	return cmd
}
