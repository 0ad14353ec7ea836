package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/campusbot/internal/chatbot"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Backend answers and searches over the indexed corpus.
type Backend interface {
	Ask(ctx context.Context, question string) (*chatbot.Answer, error)
	Search(ctx context.Context, query string, k int) ([]chatbot.Result, error)
	Len() int
}

// Server wraps an MCP server that exposes the campus assistant as tools.
type Server struct {
	bot Backend
	mcp *server.MCPServer
}

// NewServer creates a new MCP server backed by bot.
func NewServer(bot Backend) *Server {
	s := &Server{bot: bot}

	s.mcp = server.NewMCPServer(
		"campusbot",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(askQuestionTool, s.handleAskQuestion)
	s.mcp.AddTool(searchDocumentsTool, s.handleSearchDocuments)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
