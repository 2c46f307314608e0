package mcp

import (
	"context"

	"github.com/farazfarid/rag-chatbot-confluence/internal/data/store"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/embedding"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/vectorDB"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Server wraps the MCP server with its dependencies.
type Server struct {
	server *mcp.Server
}

type Config struct {
	Service  rag.Service
	Embedder embedding.Embedder
	VectorDB vectorDB.DataProcessor
	Registry store.DocumentRegistry
}

// NewServer registers the retrieval tools on a stdio-capable MCP server.
func NewServer(cfg *Config) *Server {
	impl := &mcp.Implementation{
		Name:    "confluence-rag-server",
		Version: "v1.0.0",
	}

	server := mcp.NewServer(impl, nil)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "search_chunks",
		Description: "Search the indexed knowledge base semantically. Returns ranked chunks with their owning document ids.",
	}, makeSearchHandler(cfg.VectorDB, cfg.Embedder))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "ask",
		Description: "Ask a question and get an answer grounded on the indexed documents, with the chunks it was grounded on.",
	}, makeAskHandler(cfg.Service))

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_document",
		Description: "Look up an ingested document by id. Returns its metadata and chunk count.",
	}, makeGetDocumentHandler(cfg.Registry))

	return &Server{server: server}
}

// Run serves over stdio until the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
