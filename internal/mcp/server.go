package mcp

import (
	"context"

	"github.com/mark3labs/mcp-go/server"

	"github.com/labhouse/matsearch/internal/docstore"
	"github.com/labhouse/matsearch/internal/logger"
	"github.com/labhouse/matsearch/internal/searcher"
	"github.com/labhouse/matsearch/internal/vecstore"
)

const (
	// ServerName is the MCP server name
	ServerName = "matsearch-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies. It exposes the
// unified material search as LLM tool calls over stdio.
type Server struct {
	mcp      *server.MCPServer
	searcher *searcher.Searcher
	docs     docstore.MaterialStore
	vectors  vecstore.VectorStore
	log      *logger.Logger
}

// NewServer creates a new MCP server instance. The vector store may be nil;
// search then degrades to document-store strategies and the status tool
// reports the index as unavailable.
func NewServer(srch *searcher.Searcher, docs docstore.MaterialStore, vectors vecstore.VectorStore, log *logger.Logger) *Server {
	s := &Server{
		mcp:      server.NewMCPServer(ServerName, ServerVersion),
		searcher: srch,
		docs:     docs,
		vectors:  vectors,
		log:      log,
	}
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	return server.ServeStdio(s.mcp)
}

func (s *Server) registerTools() {
	s.mcp.AddTool(searchMaterialsTool(), s.handleSearchMaterials)
	s.mcp.AddTool(getIndexStatusTool(), s.handleGetIndexStatus)
}
