// Package mcp exposes the component registry, design updater, reminder
// generator and merger as MCP tools.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/gnana997/popupkit/pkg/mcplog"
	"github.com/gnana997/popupkit/pkg/toolkit"
)

const serverName = "popupkit"

// Version is reported to MCP clients. It is set by the CLI.
var Version = "0.1.0-dev"

// Server is an MCP server over a toolkit.
type Server struct {
	mcpServer *server.MCPServer
	tk        *toolkit.Toolkit
	logger    *mcplog.Logger // nil disables call logging
}

// NewServer creates a server. A nil logger disables call logging.
func NewServer(tk *toolkit.Toolkit, logger *mcplog.Logger) *Server {
	s := &Server{tk: tk, logger: logger}

	opts := []server.ServerOption{
		server.WithToolCapabilities(false),
		server.WithRecovery(),
	}
	if logger != nil {
		opts = append(opts, server.WithToolHandlerMiddleware(s.loggingMiddleware()))
	}

	s.mcpServer = server.NewMCPServer(serverName, Version, opts...)
	s.mcpServer.AddTools(
		server.ServerTool{Tool: listComponentsTool, Handler: s.handleListComponents},
		server.ServerTool{Tool: getComponentTool, Handler: s.handleGetComponent},
		server.ServerTool{Tool: searchComponentsTool, Handler: s.handleSearchComponents},
		server.ServerTool{Tool: renderComponentTool, Handler: s.handleRenderComponent},
		server.ServerTool{Tool: detectComponentsTool, Handler: s.handleDetectComponents},
		server.ServerTool{Tool: updateComponentTool, Handler: s.handleUpdateComponent},
		server.ServerTool{Tool: injectComponentTool, Handler: s.handleInjectComponent},
		server.ServerTool{Tool: generateReminderTool, Handler: s.handleGenerateReminder},
		server.ServerTool{Tool: mergeTemplateTool, Handler: s.handleMergeTemplate},
	)

	return s
}

// MCPServer returns the underlying server, for in-process clients.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio serves MCP on stdin/stdout. Logging must go to stderr.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}
