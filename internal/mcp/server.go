package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/ziadkadry99/support-bot/internal/orchestrator"
	"github.com/ziadkadry99/support-bot/internal/vectordb"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Chatter handles one conversational turn. Satisfied by
// *orchestrator.Orchestrator.
type Chatter interface {
	Chat(ctx context.Context, turn orchestrator.ChatTurn) (orchestrator.ChatResponse, error)
}

// Server wraps an MCP server that exposes the support knowledge base and
// chat pipeline to agent clients.
type Server struct {
	store   vectordb.VectorStore
	chatter Chatter
	mcp     *server.MCPServer
}

// NewServer creates a new MCP server. chatter may be nil, in which case the
// ask_support tool reports that chat is unavailable.
func NewServer(store vectordb.VectorStore, chatter Chatter) *Server {
	s := &Server{
		store:   store,
		chatter: chatter,
	}

	s.mcp = server.NewMCPServer(
		"supportbot",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchKnowledgeBaseTool, s.handleSearchKnowledgeBase)
	s.mcp.AddTool(askSupportTool, s.handleAskSupport)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
