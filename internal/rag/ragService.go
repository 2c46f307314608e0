package rag

import (
	"context"
	"time"

	"github.com/farazfarid/rag-chatbot-confluence/internal/adapter/utils"
	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/data/store"
	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
	"github.com/farazfarid/rag-chatbot-confluence/internal/metrics"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/embedding"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/ingest"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/llm"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/vectorDB"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
)

// Service is the orchestrator behind the two entrypoints. Failure policy
// lives here, not in the adapters: a dead embedder or vector store
// degrades retrieval to an ungrounded answer, while a dead generator
// fails the request.
type Service interface {
	IngestDocument(ctx context.Context, ref ingest.DocumentRef) (commonModels.IngestResult, error)
	Answer(ctx context.Context, query string, topK int, sessionId string) (commonModels.ChatResult, error)

	// DeleteDocument removes the indexed chunks and the registry record.
	// Returns false when the document id is unknown.
	DeleteDocument(ctx context.Context, documentId string) (bool, error)
}

type service struct {
	pipeline *ingest.Pipeline
	embedder embedding.Embedder
	vectorDB vectorDB.DataProcessor
	provider llm.Provider
	registry store.DocumentRegistry
	sessions store.SessionStore
	logger   *logger_i.Logger
}

func NewService(
	pipeline *ingest.Pipeline,
	embedder embedding.Embedder,
	dataProcessor vectorDB.DataProcessor,
	provider llm.Provider,
	registry store.DocumentRegistry,
	sessions store.SessionStore,
) Service {
	return &service{
		pipeline: pipeline,
		embedder: embedder,
		vectorDB: dataProcessor,
		provider: provider,
		registry: registry,
		sessions: sessions,
		logger:   logger_i.NewLogger("ragService"),
	}
}

func (s *service) IngestDocument(ctx context.Context, ref ingest.DocumentRef) (commonModels.IngestResult, error) {
	result, err := s.pipeline.Ingest(ctx, ref)
	if err != nil {
		return result, err
	}

	record := commonModels.RegistryRecord{
		Document: commonModels.Document{
			Id:         result.DocumentId,
			Source:     ref.Source,
			Title:      ref.Title,
			Type:       ref.Type,
			IngestedAt: time.Now().UTC(),
		},
		Chunks: result.ChunksProcessed,
	}
	if err := s.registry.SaveDocument(ctx, record); err != nil {
		// the chunks are indexed, losing the registry entry is not worth failing over
		s.logger.Warn("could not record ingested document",
			"documentId", result.DocumentId, "error", err, "traceId", ctx.Value(config.TRACE_ID_KEY))
	}
	return result, nil
}

func (s *service) DeleteDocument(ctx context.Context, documentId string) (bool, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId)

	if _, found := s.registry.GetDocument(ctx, documentId); !found {
		return false, nil
	}
	//vectors go first so a failure leaves the record visible for a retry
	if err := s.vectorDB.DeleteDocument(ctx, documentId); err != nil {
		log.Error("could not delete indexed chunks", "error", err)
		return true, err
	}
	s.registry.DeleteDocument(ctx, documentId)
	log.Info("document deleted")
	return true, nil
}

func (s *service) Answer(ctx context.Context, query string, topK int, sessionId string) (commonModels.ChatResult, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if sessionId == "" {
		sessionId = utils.GetNewUUID()
		log.Debug("started new session", "sessionId", sessionId)
	}
	if topK == 0 {
		topK = config.DefaultTopK
	}

	queryVector := s.embedQuery(ctx, query, log)

	if answer, hit := s.checkCache(ctx, queryVector); hit {
		log.Info("answer served from semantic cache", "sessionId", sessionId)
		metrics.IncrementCacheHits()
		result := commonModels.ChatResult{Answer: answer, SessionId: sessionId, FromCache: true}
		s.recordExchange(ctx, sessionId, query, answer, log)
		return result, nil
	}

	matches := s.search(ctx, queryVector, topK, log)
	history := s.history(ctx, sessionId, log)

	answer, err := s.generate(ctx, query, matches, history)
	if err != nil {
		log.Error("answer generation failed", "error", err)
		return commonModels.ChatResult{}, err
	}

	s.cacheAnswer(query, queryVector, answer, matches, log)
	s.recordExchange(ctx, sessionId, query, answer, log)

	return commonModels.ChatResult{
		Answer:    answer,
		SessionId: sessionId,
		Sources:   matches,
	}, nil
}
