// Package mcp exposes the guideline dataset to AI agents over the Model
// Context Protocol.
package mcp

import (
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/emsguide/internal/expansion"
	"github.com/ziadkadry99/emsguide/internal/guide"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes guideline lookup tools.
type Server struct {
	doc  *guide.Document
	opts expansion.Options
	log  *slog.Logger
	mcp  *server.MCPServer
}

// NewServer creates a new MCP server over doc. log must not write to
// stdout.
func NewServer(doc *guide.Document, opts expansion.Options, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		doc:  doc,
		opts: opts,
		log:  log,
	}

	s.mcp = server.NewMCPServer(
		"emsguide",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(searchGuidelinesTool, s.handleSearchGuidelines)
	s.mcp.AddTool(getGuidelineTool, s.handleGetGuideline)
	s.mcp.AddTool(listGuidelinesTool, s.handleListGuidelines)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	s.log.Info("mcp server listening on stdio", "entries", len(s.doc.Entries))
	return server.ServeStdio(s.mcp)
}
