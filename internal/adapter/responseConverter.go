package adapter

import (
	"time"

	"github.com/farazfarid/rag-chatbot-confluence/internal/api"
	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
)

func ToIngestResponse(result commonModels.IngestResult) api.IngestResponse {
	return api.IngestResponse{
		DocumentId:      result.DocumentId,
		ChunksProcessed: result.ChunksProcessed,
		Message:         "Document processed successfully",
	}
}

func ToChatResponse(result commonModels.ChatResult) api.ChatResponse {
	sources := make([]api.ChatSource, 0, len(result.Sources))
	for _, match := range result.Sources {
		sources = append(sources, api.ChatSource{
			DocumentId: match.DocumentId,
			ChunkId:    match.ChunkId,
			Title:      match.Title,
			Score:      match.Score,
		})
	}
	return api.ChatResponse{
		Answer:    result.Answer,
		SessionId: result.SessionId,
		Sources:   sources,
	}
}

func ToDocumentResponse(record commonModels.RegistryRecord) api.DocumentResponse {
	return api.DocumentResponse{
		DocumentId: record.Document.Id,
		Source:     record.Document.Source,
		Title:      record.Document.Title,
		Type:       record.Document.Type,
		Chunks:     record.Chunks,
		IngestedAt: record.Document.IngestedAt.Format(time.RFC3339),
	}
}

func ToErrorResponse(code int, message string) api.ErrorResponse {
	return api.ErrorResponse{
		Code:    code,
		Message: message,
	}
}
