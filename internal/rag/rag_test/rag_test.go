package rag_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/data/store"
	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/chunker"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/ingest"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/llm"
)

type serviceFixture struct {
	embedder  *mockEmbedder
	vectorDB  *mockDataProcessor
	provider  *mockProvider
	registry  *store.InMemoryDocumentRegistry
	sessions  *store.InMemorySessionStore
	service   rag.Service
}

func newServiceFixture(t *testing.T, documentText string) *serviceFixture {
	t.Helper()

	embedder := &mockEmbedder{getEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.5, 0.5}, nil
	}}
	dataProcessor := &mockDataProcessor{}
	provider := &mockProvider{}
	registry := store.InitInMemoryDocumentRegistry()
	sessions := store.InitInMemorySessionStore()

	fetcher := &mockFetcher{fetchFunc: func(ctx context.Context, ref ingest.DocumentRef) ([]byte, error) {
		return []byte(documentText), nil
	}}
	splitter, err := chunker.NewSplitter(config.DefaultChunkSize, config.DefaultOverlap)
	if err != nil {
		t.Fatalf("NewSplitter: %v", err)
	}
	pipeline := ingest.NewPipeline(fetcher, splitter, embedder, dataProcessor)

	return &serviceFixture{
		embedder: embedder,
		vectorDB: dataProcessor,
		provider: provider,
		registry: registry,
		sessions: sessions,
		service:  rag.NewService(pipeline, embedder, dataProcessor, provider, registry, sessions),
	}
}

func TestAnswerWithEmptyStore(t *testing.T) {
	f := newServiceFixture(t, "irrelevant")

	result, err := f.service.Answer(context.Background(), "what is the runbook?", 0, "")
	if err != nil {
		t.Fatalf("Answer must not fail on an empty store: %v", err)
	}
	if result.Answer == "" {
		t.Error("expected a generated answer")
	}
	if len(result.Sources) != 0 {
		t.Errorf("expected no sources, got %d", len(result.Sources))
	}

	call, ok := f.provider.lastCall()
	if !ok {
		t.Fatal("generation must still run with empty context")
	}
	if len(call.contexts) != 0 {
		t.Errorf("expected empty context set, got %v", call.contexts)
	}

	prompt := llm.BuildPrompt(call.query, call.contexts, call.history)
	if !strings.Contains(prompt, "Context:\n\n\nQuestion:") {
		t.Errorf("context block should be verifiably empty in the prompt:\n%s", prompt)
	}
}

func TestAnswerEmbeddingFailureSkipsRetrieval(t *testing.T) {
	f := newServiceFixture(t, "irrelevant")
	f.embedder.getEmbeddingFunc = func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("embedding offline")
	}

	searchCalled := false
	f.vectorDB.searchFunc = func(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchMatch, error) {
		searchCalled = true
		return nil, nil
	}

	result, err := f.service.Answer(context.Background(), "anything", 0, "")
	if err != nil {
		t.Fatalf("embedding failure must degrade, not fail: %v", err)
	}
	if searchCalled {
		t.Error("search must be skipped when the query could not be embedded")
	}
	if result.Answer == "" {
		t.Error("expected a generated answer despite missing retrieval")
	}
}

func TestAnswerSearchFailureDegradesToNoContext(t *testing.T) {
	f := newServiceFixture(t, "irrelevant")
	f.vectorDB.searchFunc = func(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchMatch, error) {
		return nil, errors.New("collection missing")
	}

	result, err := f.service.Answer(context.Background(), "anything", 0, "")
	if err != nil {
		t.Fatalf("a broken store must not break chat: %v", err)
	}
	if len(result.Sources) != 0 {
		t.Errorf("expected no sources after search failure, got %d", len(result.Sources))
	}
}

func TestAnswerGenerationFailureIsSurfaced(t *testing.T) {
	f := newServiceFixture(t, "irrelevant")
	f.provider.generateFunc = func(ctx context.Context, query string, contexts []string, messageHistory []string) (string, error) {
		return "", errors.New("model unavailable")
	}

	_, err := f.service.Answer(context.Background(), "anything", 0, "")
	if err == nil {
		t.Fatal("generation failure must surface as an error")
	}
}

func TestAnswerServedFromCache(t *testing.T) {
	f := newServiceFixture(t, "irrelevant")
	f.vectorDB.getCachedAnswerFunc = func(ctx context.Context, queryVector []float32) (string, bool, error) {
		return "cached answer", true, nil
	}

	result, err := f.service.Answer(context.Background(), "repeat question", 0, "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if !result.FromCache || result.Answer != "cached answer" {
		t.Errorf("expected cache hit, got %+v", result)
	}
	if _, called := f.provider.lastCall(); called {
		t.Error("cache hit must not invoke the model")
	}
}

func TestAnswerCacheWritePolicy(t *testing.T) {
	//only grounded answers enter the semantic cache - a pre-ingest
	//"insufficient information" answer would otherwise keep matching
	//near-identical questions after documents arrive
	f := newServiceFixture(t, "irrelevant")

	saved := make(chan string, 2)
	f.vectorDB.saveToCacheFunc = func(ctx context.Context, id string, vector []float32, answer string) error {
		saved <- answer
		return nil
	}

	if _, err := f.service.Answer(context.Background(), "pre-ingest question", 0, ""); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	select {
	case answer := <-saved:
		t.Errorf("answer without retrieved context must not be cached, got %q", answer)
	case <-time.After(50 * time.Millisecond):
	}

	f.vectorDB.searchFunc = func(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchMatch, error) {
		return []commonModels.SearchMatch{
			{DocumentId: "d1", ChunkId: "d1_chunk_0", Content: "alpha", Score: 0.9},
		}, nil
	}
	if _, err := f.service.Answer(context.Background(), "grounded question", 0, ""); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	select {
	case <-saved:
	case <-time.After(time.Second):
		t.Error("grounded answer was never written to the cache")
	}
}

func TestAnswerSourcesCarryRetrievedMatches(t *testing.T) {
	f := newServiceFixture(t, "irrelevant")
	matches := []commonModels.SearchMatch{
		{DocumentId: "d1", ChunkId: "d1_chunk_0", Content: "alpha", Score: 0.9},
		{DocumentId: "d1", ChunkId: "d1_chunk_1", Content: "beta", Score: 0.7},
	}
	f.vectorDB.searchFunc = func(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchMatch, error) {
		return matches, nil
	}

	result, err := f.service.Answer(context.Background(), "q", 0, "")
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(result.Sources) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(result.Sources))
	}
	if result.Sources[0].Score < result.Sources[1].Score {
		t.Error("sources must keep descending score order")
	}

	call, _ := f.provider.lastCall()
	if len(call.contexts) != 2 || call.contexts[0] != "alpha" || call.contexts[1] != "beta" {
		t.Errorf("contexts must be chunk contents in retrieval order, got %v", call.contexts)
	}
}

func TestAnswerTopKHandling(t *testing.T) {
	f := newServiceFixture(t, "irrelevant")

	var gotTopK int
	f.vectorDB.searchFunc = func(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchMatch, error) {
		gotTopK = topK
		return nil, nil
	}

	if _, err := f.service.Answer(context.Background(), "q", 0, ""); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if gotTopK != config.DefaultTopK {
		t.Errorf("unspecified top_k must default to %d, got %d", config.DefaultTopK, gotTopK)
	}

	if _, err := f.service.Answer(context.Background(), "q", 3, ""); err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if gotTopK != 3 {
		t.Errorf("explicit top_k must pass through, got %d", gotTopK)
	}
}

func TestAnswerSessionHistoryFlowsIntoPrompt(t *testing.T) {
	f := newServiceFixture(t, "irrelevant")

	first, err := f.service.Answer(context.Background(), "first question", 0, "")
	if err != nil {
		t.Fatalf("first Answer: %v", err)
	}
	if first.SessionId == "" {
		t.Fatal("a new session id must be assigned")
	}

	second, err := f.service.Answer(context.Background(), "follow up", 0, first.SessionId)
	if err != nil {
		t.Fatalf("second Answer: %v", err)
	}
	if second.SessionId != first.SessionId {
		t.Errorf("session id must be stable, got %q then %q", first.SessionId, second.SessionId)
	}

	call, _ := f.provider.lastCall()
	if len(call.history) == 0 {
		t.Fatal("second answer must see the first exchange as history")
	}
	if !strings.Contains(call.history[0], "first question") {
		t.Errorf("history should contain the earlier question, got %q", call.history[0])
	}
}

func TestDeleteDocumentRemovesChunksAndRecord(t *testing.T) {
	text := strings.Repeat("Deletion must clean up the index and the registry. ", 40)
	f := newServiceFixture(t, text)

	result, err := f.service.IngestDocument(context.Background(), ingest.DocumentRef{
		URL: "http://example.com/doc.txt",
	})
	if err != nil {
		t.Fatalf("IngestDocument: %v", err)
	}

	found, err := f.service.DeleteDocument(context.Background(), result.DocumentId)
	if err != nil || !found {
		t.Fatalf("DeleteDocument = (%v, %v), want (true, nil)", found, err)
	}
	if len(f.vectorDB.deleted) != 1 || f.vectorDB.deleted[0] != result.DocumentId {
		t.Errorf("vector store deletions = %v, want [%s]", f.vectorDB.deleted, result.DocumentId)
	}
	if _, still := f.registry.GetDocument(context.Background(), result.DocumentId); still {
		t.Error("registry record must be gone after delete")
	}

	found, err = f.service.DeleteDocument(context.Background(), "unknown-id")
	if err != nil {
		t.Fatalf("deleting an unknown id must not fail: %v", err)
	}
	if found {
		t.Error("unknown id must report not found")
	}
}

func TestDeleteDocumentVectorFailureKeepsRecord(t *testing.T) {
	text := strings.Repeat("A failed index cleanup must leave the record for a retry. ", 40)
	f := newServiceFixture(t, text)

	result, err := f.service.IngestDocument(context.Background(), ingest.DocumentRef{
		URL: "http://example.com/doc.txt",
	})
	if err != nil {
		t.Fatalf("IngestDocument: %v", err)
	}

	f.vectorDB.deleteDocumentFunc = func(ctx context.Context, documentId string) error {
		return errors.New("qdrant unreachable")
	}

	if _, err := f.service.DeleteDocument(context.Background(), result.DocumentId); err == nil {
		t.Fatal("vector store failure must surface as an error")
	}
	if _, still := f.registry.GetDocument(context.Background(), result.DocumentId); !still {
		t.Error("registry record must survive a failed index cleanup")
	}
}

func TestIngestDocumentRecordsRegistry(t *testing.T) {
	text := strings.Repeat("Chunking is the unit of retrieval in this system. ", 60)
	f := newServiceFixture(t, text)

	result, err := f.service.IngestDocument(context.Background(), ingest.DocumentRef{
		URL:   "http://example.com/doc.txt",
		Title: "Chunking Notes",
	})
	if err != nil {
		t.Fatalf("IngestDocument: %v", err)
	}

	record, found := f.registry.GetDocument(context.Background(), result.DocumentId)
	if !found {
		t.Fatal("ingested document must be registered")
	}
	if record.Chunks != result.ChunksProcessed {
		t.Errorf("registry chunk count %d, want %d", record.Chunks, result.ChunksProcessed)
	}
	if record.Document.Title != "Chunking Notes" {
		t.Errorf("registry title %q", record.Document.Title)
	}
}
