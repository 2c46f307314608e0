package mcp

import (
	"context"
	"fmt"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/data/store"
	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/embedding"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/vectorDB"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func makeSearchHandler(dataProcessor vectorDB.DataProcessor, embedder embedding.Embedder) func(
	context.Context, *mcp.CallToolRequest, SearchInput,
) (*mcp.CallToolResult, SearchOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input SearchInput) (
		*mcp.CallToolResult, SearchOutput, error,
	) {
		topK := input.TopK
		if topK <= 0 {
			topK = config.DefaultTopK
		}

		queryVector, err := embedder.GetEmbedding(ctx, input.Query)
		if err != nil {
			return nil, SearchOutput{}, fmt.Errorf("failed to embed query: %w", err)
		}

		matches, err := dataProcessor.Search(ctx, queryVector, topK)
		if err != nil {
			return nil, SearchOutput{}, fmt.Errorf("search failed: %w", err)
		}

		if len(matches) == 0 {
			return nil, SearchOutput{
				Results: []SearchHit{},
				Message: "No matching chunks found. Try broader search terms.",
			}, nil
		}
		return nil, SearchOutput{Results: toSearchHits(matches)}, nil
	}
}

func makeAskHandler(service rag.Service) func(
	context.Context, *mcp.CallToolRequest, AskInput,
) (*mcp.CallToolResult, AskOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input AskInput) (
		*mcp.CallToolResult, AskOutput, error,
	) {
		result, err := service.Answer(ctx, input.Query, input.TopK, input.SessionId)
		if err != nil {
			return nil, AskOutput{}, fmt.Errorf("could not generate an answer: %w", err)
		}

		return nil, AskOutput{
			Answer:    result.Answer,
			SessionId: result.SessionId,
			Sources:   toSearchHits(result.Sources),
		}, nil
	}
}

func makeGetDocumentHandler(registry store.DocumentRegistry) func(
	context.Context, *mcp.CallToolRequest, GetDocumentInput,
) (*mcp.CallToolResult, GetDocumentOutput, error) {
	return func(ctx context.Context, req *mcp.CallToolRequest, input GetDocumentInput) (
		*mcp.CallToolResult, GetDocumentOutput, error,
	) {
		record, found := registry.GetDocument(ctx, input.DocumentId)
		if !found {
			return nil, GetDocumentOutput{DocumentId: input.DocumentId, Found: false}, nil
		}

		return nil, GetDocumentOutput{
			DocumentId: record.Document.Id,
			Source:     record.Document.Source,
			Title:      record.Document.Title,
			Type:       record.Document.Type,
			Chunks:     record.Chunks,
			Found:      true,
		}, nil
	}
}

func toSearchHits(matches []commonModels.SearchMatch) []SearchHit {
	hits := make([]SearchHit, 0, len(matches))
	for _, match := range matches {
		hits = append(hits, SearchHit{
			DocumentId: match.DocumentId,
			ChunkId:    match.ChunkId,
			Content:    match.Content,
			Title:      match.Title,
			Score:      match.Score,
		})
	}
	return hits
}
