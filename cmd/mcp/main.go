// The mcp command serves the retrieval tools over stdio for MCP clients
// (Claude Desktop, IDE integrations). It talks to the same vector index
// as the HTTP API but keeps sessions in memory per process.
package main

import (
	"context"
	"os"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/data/store"
	"github.com/farazfarid/rag-chatbot-confluence/internal/mcp"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/chunker"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/embedding/googleEmbedding"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/ingest"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/llm/gemini"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/vectorDB/qdrantDB"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
)

func main() {
	logger_i.Init()
	logger := logger_i.NewLogger("mcp-main")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	vectorDB, err := qdrantDB.NewQdrantClient(ctx, config.DocumentIndexName)
	if err != nil {
		logger.Error("Could not connect to the vector store", "error", err)
		os.Exit(1)
	}

	embedder, err := googleEmbedding.NewGoogleEmbedder(ctx, config.GoogleEmbeddingModel, config.GoogleAPIKey())
	if err != nil {
		logger.Error("Could not initialize the embedding provider", "error", err)
		os.Exit(1)
	}

	llmProvider, err := gemini.NewGeminiClient(ctx, config.GeminiModelName, config.GoogleAPIKey())
	if err != nil {
		logger.Error("Could not initialize the model provider", "error", err)
		os.Exit(1)
	}

	splitter, err := chunker.NewSplitter(config.DefaultChunkSize, config.DefaultOverlap)
	if err != nil {
		logger.Error("Invalid chunking configuration", "error", err)
		os.Exit(1)
	}

	registry := store.InitInMemoryDocumentRegistry()
	sessions := store.InitInMemorySessionStore()

	pipeline := ingest.NewPipeline(ingest.NewFetcher(), splitter, embedder, vectorDB)
	service := rag.NewService(pipeline, embedder, vectorDB, llmProvider, registry, sessions)

	server := mcp.NewServer(&mcp.Config{
		Service:  service,
		Embedder: embedder,
		VectorDB: vectorDB,
		Registry: registry,
	})

	logger.Info("MCP server ready on stdio")
	if err := server.Run(ctx); err != nil {
		logger.Error("MCP server stopped", "error", err)
		os.Exit(1)
	}
}
