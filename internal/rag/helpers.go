package rag

import (
	"context"
	"time"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/data/store"
	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
	"github.com/farazfarid/rag-chatbot-confluence/internal/metrics"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
)

// embedQuery returns nil when the embedder fails. A nil vector means no
// retrieval and no cache, the answer is generated ungrounded.
func (s *service) embedQuery(ctx context.Context, query string, log *logger_i.Logger) []float32 {
	callCtx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	start := time.Now()
	vector, err := s.embedder.GetEmbedding(callCtx, query)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil {
		log.Warn("query embedding failed, answering without retrieval", "error", err)
		return nil
	}
	return vector
}

func (s *service) checkCache(ctx context.Context, queryVector []float32) (string, bool) {
	if queryVector == nil {
		return "", false
	}
	answer, hit, err := s.vectorDB.GetCachedAnswer(ctx, queryVector)
	if err != nil {
		// cache trouble never blocks the answer path
		return "", false
	}
	return answer, hit
}

// search degrades to no context on any store error so a missing
// knowledge base cannot break the chat flow.
func (s *service) search(ctx context.Context, queryVector []float32, topK int, log *logger_i.Logger) []commonModels.SearchMatch {
	if queryVector == nil {
		return nil
	}

	start := time.Now()
	matches, err := s.vectorDB.Search(ctx, queryVector, topK)
	metrics.CaptureExecutionMetrics("vectordb_search", time.Since(start))
	if err != nil {
		log.Warn("retrieval failed, answering without context", "error", err)
		return nil
	}
	return matches
}

func (s *service) history(ctx context.Context, sessionId string, log *logger_i.Logger) []string {
	history, err := s.sessions.History(ctx, sessionId)
	if err != nil {
		log.Warn("could not load session history", "sessionId", sessionId, "error", err)
		return nil
	}
	return history
}

func (s *service) generate(ctx context.Context, query string, matches []commonModels.SearchMatch, history []string) (string, error) {
	contexts := make([]string, 0, len(matches))
	for _, match := range matches {
		contexts = append(contexts, match.Content)
	}

	callCtx, cancel := context.WithTimeout(ctx, config.ProviderCallTimeout)
	defer cancel()

	start := time.Now()
	answer, err := s.provider.Generate(callCtx, query, contexts, history)
	metrics.CaptureExecutionMetrics("llm_generate", time.Since(start))
	return answer, err
}

// cacheAnswer writes behind the response, the request does not wait for
// the cache. Only grounded answers are cached: an answer produced with no
// retrieved context would keep shadowing retrieval for near-identical
// questions after documents arrive.
func (s *service) cacheAnswer(query string, queryVector []float32, answer string, matches []commonModels.SearchMatch, log *logger_i.Logger) {
	if queryVector == nil || len(matches) == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.ProviderCallTimeout)
		defer cancel()
		if err := s.vectorDB.SaveToCache(ctx, query, queryVector, answer); err != nil {
			log.Warn("could not cache answer", "error", err)
		}
	}()
}

func (s *service) recordExchange(ctx context.Context, sessionId string, question string, answer string, log *logger_i.Logger) {
	err := s.sessions.AppendExchange(ctx, sessionId, store.Exchange{Question: question, Answer: answer})
	if err != nil {
		log.Warn("could not record exchange", "sessionId", sessionId, "error", err)
	}
}
