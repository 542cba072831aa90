package mcp

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/neerajchowdary889/doctx/internal/config"
	"github.com/neerajchowdary889/doctx/internal/engine"
	"github.com/neerajchowdary889/doctx/pkg/version"
)

// serverName identifies the implementation to MCP clients.
const serverName = "doctx"

// Server is the MCP server for doctx. It bridges AI clients with the
// document context engine over stdio.
type Server struct {
	mcp    *mcp.Server
	engine *engine.Engine
	config *config.Config
	logger *slog.Logger
}

// ToolInfo contains information about a registered tool.
type ToolInfo struct {
	Name        string
	Description string
}

// toolDescriptions is the registered tool set in registration order.
var toolDescriptions = []ToolInfo{
	{
		Name:        "search_docs",
		Description: "Full-text search over the indexed document tree. Ranks by BM25 relevance and supports tag, path, file-type and recency filters with stable pagination.",
	},
	{
		Name:        "get_document",
		Description: "Fetch one document by its path key, including metadata, tags and full body. Set metadata_only to skip the body.",
	},
	{
		Name:        "list_documents",
		Description: "List indexed documents ordered by path, optionally filtered by tag, path prefix or file type.",
	},
	{
		Name:        "get_tags",
		Description: "List every tag in the index with its document count, most common first.",
	},
	{
		Name:        "get_statistics",
		Description: "Index statistics: document and term counts, sizes, watcher mode and index generation. Use to verify the index is ready.",
	},
	{
		Name:        "reindex_all",
		Description: "Re-scan the whole document tree and reconcile the index against it. Synchronous; use after bulk changes outside the watcher's view.",
	},
	{
		Name:        "clear_index",
		Description: "Drop every document from the index. Requires confirm=true. Files on disk are not touched.",
	},
	{
		Name:        "upload_document",
		Description: "Write a document into the tree and index it immediately. The document is searchable as soon as the call returns.",
	},
}

// NewServer creates an MCP server around a started engine.
func NewServer(eng *engine.Engine, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	if eng == nil {
		return nil, errors.New("engine is required")
	}
	if cfg == nil {
		cfg = config.NewConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}

	s := &Server{
		engine: eng,
		config: cfg,
		logger: logger,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    serverName,
			Version: version.Version,
		},
		nil,
	)

	s.registerTools()
	return s, nil
}

// MCPServer returns the underlying MCP server instance.
func (s *Server) MCPServer() *mcp.Server {
	return s.mcp
}

// Info returns the server name and version.
func (s *Server) Info() (name, ver string) {
	return serverName, version.Version
}

// ListTools returns all registered tools.
func (s *Server) ListTools() []ToolInfo {
	out := make([]ToolInfo, len(toolDescriptions))
	copy(out, toolDescriptions)
	return out
}

func (s *Server) registerTools() {
	s.logger.Debug("registering MCP tools")

	tool := func(name string) *mcp.Tool {
		for _, t := range toolDescriptions {
			if t.Name == name {
				return &mcp.Tool{Name: t.Name, Description: t.Description}
			}
		}
		return &mcp.Tool{Name: name}
	}

	mcp.AddTool(s.mcp, tool("search_docs"), s.handleSearchDocs)
	mcp.AddTool(s.mcp, tool("get_document"), s.handleGetDocument)
	mcp.AddTool(s.mcp, tool("list_documents"), s.handleListDocuments)
	mcp.AddTool(s.mcp, tool("get_tags"), s.handleGetTags)
	mcp.AddTool(s.mcp, tool("get_statistics"), s.handleGetStatistics)
	mcp.AddTool(s.mcp, tool("reindex_all"), s.handleReindexAll)
	mcp.AddTool(s.mcp, tool("clear_index"), s.handleClearIndex)
	mcp.AddTool(s.mcp, tool("upload_document"), s.handleUploadDocument)

	s.logger.Info("MCP tools registered", slog.Int("count", len(toolDescriptions)))
}

// Serve runs the server on the configured transport until the context
// is cancelled.
func (s *Server) Serve(ctx context.Context) error {
	transport := s.config.Server.Transport
	if transport == "" {
		transport = "stdio"
	}
	s.logger.Info("starting MCP server", slog.String("transport", transport))

	switch transport {
	case "stdio":
		err := s.mcp.Run(ctx, &mcp.StdioTransport{})
		if err != nil && !errors.Is(err, context.Canceled) {
			s.logger.Error("MCP server stopped with error", slog.String("error", err.Error()))
			return err
		}
		s.logger.Info("MCP server stopped")
		return nil
	default:
		return fmt.Errorf("unknown transport: %s (supported: stdio)", transport)
	}
}

// generateRequestID creates a short unique request ID for log
// correlation.
func generateRequestID() string {
	b := make([]byte, 4)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}
