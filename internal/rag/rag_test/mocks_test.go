package rag_test

import (
	"context"
	"sync"

	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/ingest"
)

type mockFetcher struct {
	fetchFunc func(ctx context.Context, ref ingest.DocumentRef) ([]byte, error)
}

func (m *mockFetcher) Fetch(ctx context.Context, ref ingest.DocumentRef) ([]byte, error) {
	return m.fetchFunc(ctx, ref)
}

type mockEmbedder struct {
	getEmbeddingFunc func(ctx context.Context, text string) ([]float32, error)
}

func (m *mockEmbedder) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return m.getEmbeddingFunc(ctx, text)
}

func (m *mockEmbedder) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := m.getEmbeddingFunc(ctx, chunk)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

type mockDataProcessor struct {
	mu       sync.Mutex
	upserted []commonModels.DocChunk
	cached   map[string]string

	ensureCollectionFunc func(ctx context.Context) error
	upsertChunksFunc     func(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
	searchFunc           func(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchMatch, error)
	deleteDocumentFunc   func(ctx context.Context, documentId string) error
	getCachedAnswerFunc  func(ctx context.Context, queryVector []float32) (string, bool, error)
	saveToCacheFunc      func(ctx context.Context, id string, vector []float32, answer string) error

	deleted []string
}

func (m *mockDataProcessor) EnsureCollection(ctx context.Context) error {
	if m.ensureCollectionFunc != nil {
		return m.ensureCollectionFunc(ctx)
	}
	return nil
}

func (m *mockDataProcessor) UpsertChunks(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if m.upsertChunksFunc != nil {
		if err := m.upsertChunksFunc(ctx, chunks, vectors); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.upserted = append(m.upserted, chunks...)
	m.mu.Unlock()
	return nil
}

func (m *mockDataProcessor) Search(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchMatch, error) {
	if m.searchFunc != nil {
		return m.searchFunc(ctx, queryVector, topK)
	}
	return nil, nil
}

func (m *mockDataProcessor) DeleteDocument(ctx context.Context, documentId string) error {
	if m.deleteDocumentFunc != nil {
		if err := m.deleteDocumentFunc(ctx, documentId); err != nil {
			return err
		}
	}
	m.mu.Lock()
	m.deleted = append(m.deleted, documentId)
	m.mu.Unlock()
	return nil
}

func (m *mockDataProcessor) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	if m.getCachedAnswerFunc != nil {
		return m.getCachedAnswerFunc(ctx, queryVector)
	}
	return "", false, nil
}

func (m *mockDataProcessor) SaveToCache(ctx context.Context, id string, vector []float32, answer string) error {
	if m.saveToCacheFunc != nil {
		return m.saveToCacheFunc(ctx, id, vector, answer)
	}
	m.mu.Lock()
	if m.cached == nil {
		m.cached = make(map[string]string)
	}
	m.cached[id] = answer
	m.mu.Unlock()
	return nil
}

func (m *mockDataProcessor) Health(ctx context.Context) error {
	return nil
}

type generateCall struct {
	query    string
	contexts []string
	history  []string
}

type mockProvider struct {
	mu    sync.Mutex
	calls []generateCall

	generateFunc func(ctx context.Context, query string, contexts []string, messageHistory []string) (string, error)
}

func (m *mockProvider) Generate(ctx context.Context, query string, contexts []string, messageHistory []string) (string, error) {
	m.mu.Lock()
	m.calls = append(m.calls, generateCall{query: query, contexts: contexts, history: messageHistory})
	m.mu.Unlock()
	if m.generateFunc != nil {
		return m.generateFunc(ctx, query, contexts, messageHistory)
	}
	return "generated answer", nil
}

func (m *mockProvider) lastCall() (generateCall, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return generateCall{}, false
	}
	return m.calls[len(m.calls)-1], true
}
