package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/chunker"
)

type fetcherMock struct {
	fetchFunc func(ctx context.Context, ref DocumentRef) ([]byte, error)
}

func (f *fetcherMock) Fetch(ctx context.Context, ref DocumentRef) ([]byte, error) {
	return f.fetchFunc(ctx, ref)
}

type embedderMock struct {
	getEmbeddingFunc func(ctx context.Context, text string) ([]float32, error)
}

func (e *embedderMock) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	return e.getEmbeddingFunc(ctx, text)
}

func (e *embedderMock) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(chunks))
	for _, chunk := range chunks {
		vector, err := e.getEmbeddingFunc(ctx, chunk)
		if err != nil {
			return nil, err
		}
		vectors = append(vectors, vector)
	}
	return vectors, nil
}

type storeMock struct {
	mu sync.Mutex

	ensureCalls int
	upserted    []commonModels.DocChunk

	ensureFunc func(ctx context.Context) error
	upsertFunc func(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error
}

func (s *storeMock) EnsureCollection(ctx context.Context) error {
	s.mu.Lock()
	s.ensureCalls++
	s.mu.Unlock()
	if s.ensureFunc != nil {
		return s.ensureFunc(ctx)
	}
	return nil
}

func (s *storeMock) UpsertChunks(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if s.upsertFunc != nil {
		if err := s.upsertFunc(ctx, chunks, vectors); err != nil {
			return err
		}
	}
	s.mu.Lock()
	s.upserted = append(s.upserted, chunks...)
	s.mu.Unlock()
	return nil
}

func (s *storeMock) Search(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchMatch, error) {
	return nil, nil
}

func (s *storeMock) DeleteDocument(ctx context.Context, documentId string) error {
	return nil
}

func (s *storeMock) GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error) {
	return "", false, nil
}

func (s *storeMock) SaveToCache(ctx context.Context, query string, queryVector []float32, answer string) error {
	return nil
}

func (s *storeMock) Health(ctx context.Context) error {
	return nil
}

func newTestPipeline(t *testing.T, fetcher Fetcher, embedder *embedderMock, store *storeMock) *Pipeline {
	t.Helper()
	splitter, err := chunker.NewSplitter(1000, 200)
	if err != nil {
		t.Fatalf("NewSplitter: %v", err)
	}
	return NewPipeline(fetcher, splitter, embedder, store)
}

func textFetcher(text string) *fetcherMock {
	return &fetcherMock{fetchFunc: func(ctx context.Context, ref DocumentRef) ([]byte, error) {
		return []byte(text), nil
	}}
}

func okEmbedder() *embedderMock {
	return &embedderMock{getEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
		return []float32{0.1, 0.2, 0.3}, nil
	}}
}

func longText(chars int) string {
	var sb strings.Builder
	sentence := "The quick brown fox jumps over the lazy dog near the riverbank today. "
	for sb.Len() < chars {
		sb.WriteString(sentence)
	}
	return sb.String()[:chars]
}

func TestIngestRejectsMissingSource(t *testing.T) {
	pipeline := newTestPipeline(t, textFetcher("whatever"), okEmbedder(), &storeMock{})

	_, err := pipeline.Ingest(context.Background(), DocumentRef{})
	if !errors.Is(err, ErrNoSource) {
		t.Fatalf("expected ErrNoSource, got %v", err)
	}
}

func TestIngestAbortsOnFetchFailure(t *testing.T) {
	fetcher := &fetcherMock{fetchFunc: func(ctx context.Context, ref DocumentRef) ([]byte, error) {
		return nil, errors.New("connection refused")
	}}
	store := &storeMock{}
	pipeline := newTestPipeline(t, fetcher, okEmbedder(), store)

	_, err := pipeline.Ingest(context.Background(), DocumentRef{URL: "http://example.com/doc.txt"})
	if err == nil {
		t.Fatal("expected error when fetch fails")
	}
	if len(store.upserted) != 0 {
		t.Fatalf("nothing should be upserted after a fetch failure, got %d chunks", len(store.upserted))
	}
}

func TestIngestAbortsOnInvalidUTF8(t *testing.T) {
	fetcher := &fetcherMock{fetchFunc: func(ctx context.Context, ref DocumentRef) ([]byte, error) {
		return []byte{0xff, 0xfe, 0xfd}, nil
	}}
	pipeline := newTestPipeline(t, fetcher, okEmbedder(), &storeMock{})

	_, err := pipeline.Ingest(context.Background(), DocumentRef{URL: "http://example.com/doc.txt"})
	if err == nil {
		t.Fatal("expected error for undecodable content")
	}
}

func TestIngestAllEmbeddingsFailStillSucceeds(t *testing.T) {
	embedder := &embedderMock{getEmbeddingFunc: func(ctx context.Context, text string) ([]float32, error) {
		return nil, errors.New("quota exceeded")
	}}
	store := &storeMock{}
	pipeline := newTestPipeline(t, textFetcher(longText(2500)), embedder, store)

	result, err := pipeline.Ingest(context.Background(), DocumentRef{URL: "http://example.com/doc.txt"})
	if err != nil {
		t.Fatalf("per-chunk embedding failures must not fail the document: %v", err)
	}
	if result.ChunksProcessed != 0 {
		t.Errorf("expected 0 processed chunks, got %d", result.ChunksProcessed)
	}
	if result.ChunksSkipped == 0 {
		t.Error("expected skipped chunks to be counted")
	}
	if len(store.upserted) != 0 {
		t.Errorf("no chunks should reach the store, got %d", len(store.upserted))
	}
}

func TestIngestUpsertFailureSkipsChunk(t *testing.T) {
	var failOnce sync.Once
	store := &storeMock{
		upsertFunc: func(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
			var err error
			failOnce.Do(func() { err = errors.New("store unavailable") })
			return err
		},
	}
	pipeline := newTestPipeline(t, textFetcher(longText(2500)), okEmbedder(), store)

	result, err := pipeline.Ingest(context.Background(), DocumentRef{URL: "http://example.com/doc.txt"})
	if err != nil {
		t.Fatalf("a failed upsert must not fail the document: %v", err)
	}
	if result.ChunksSkipped != 1 {
		t.Errorf("expected exactly 1 skipped chunk, got %d", result.ChunksSkipped)
	}
	if result.ChunksProcessed != len(store.upserted) {
		t.Errorf("processed count %d does not match stored chunks %d", result.ChunksProcessed, len(store.upserted))
	}
}

func TestIngestChunkIdFormat(t *testing.T) {
	store := &storeMock{}
	pipeline := newTestPipeline(t, textFetcher(longText(2500)), okEmbedder(), store)

	result, err := pipeline.Ingest(context.Background(), DocumentRef{URL: "http://example.com/doc.txt"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.ChunksProcessed < 3 || result.ChunksProcessed > 4 {
		t.Errorf("expected 3 or 4 chunks for a 2500 character document, got %d", result.ChunksProcessed)
	}

	seen := make(map[string]bool)
	for _, chunk := range store.upserted {
		expected := fmt.Sprintf("%s_chunk_%d", result.DocumentId, chunk.Index)
		if chunk.ChunkId != expected {
			t.Errorf("chunk id %q, want %q", chunk.ChunkId, expected)
		}
		if seen[chunk.ChunkId] {
			t.Errorf("duplicate chunk id %q", chunk.ChunkId)
		}
		seen[chunk.ChunkId] = true
		if chunk.Doc.Id != result.DocumentId {
			t.Errorf("chunk owned by %q, want %q", chunk.Doc.Id, result.DocumentId)
		}
	}
}

func TestIngestIsIdempotentPerContent(t *testing.T) {
	store := &storeMock{}
	pipeline := newTestPipeline(t, textFetcher(longText(2500)), okEmbedder(), store)

	first, err := pipeline.Ingest(context.Background(), DocumentRef{URL: "http://example.com/a.txt"})
	if err != nil {
		t.Fatalf("first Ingest: %v", err)
	}
	second, err := pipeline.Ingest(context.Background(), DocumentRef{URL: "http://example.com/b.txt", Title: "Other"})
	if err != nil {
		t.Fatalf("second Ingest: %v", err)
	}
	if first.DocumentId != second.DocumentId {
		t.Errorf("identical text must hash to the same document id: %q vs %q", first.DocumentId, second.DocumentId)
	}
}

func TestIngestEmptyDocument(t *testing.T) {
	store := &storeMock{}
	pipeline := newTestPipeline(t, textFetcher("   \n\t  "), okEmbedder(), store)

	result, err := pipeline.Ingest(context.Background(), DocumentRef{URL: "http://example.com/empty.txt"})
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if result.ChunksProcessed != 0 {
		t.Errorf("expected 0 chunks, got %d", result.ChunksProcessed)
	}
	if store.ensureCalls != 0 {
		t.Error("schema should not be touched when there is nothing to index")
	}
}

func TestIngestEnsuresSchemaOnce(t *testing.T) {
	store := &storeMock{}
	pipeline := newTestPipeline(t, textFetcher(longText(2500)), okEmbedder(), store)

	if _, err := pipeline.Ingest(context.Background(), DocumentRef{URL: "http://example.com/doc.txt"}); err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	if store.ensureCalls != 1 {
		t.Errorf("expected exactly 1 EnsureCollection call, got %d", store.ensureCalls)
	}
}

func TestClassifyReference(t *testing.T) {
	tests := []struct {
		reference string
		want      contentKind
	}{
		{"http://example.com/handbook.pdf", kindPDF},
		{"http://example.com/doc.pdf?version=2", kindPDF},
		{"http://example.com/doc.docx#section-3", kindDOCX},
		{"docs/report.PDF", kindPDF},
		{"notes.docx", kindDOCX},
		{"legacy.rtf", kindDOCX},
		{"slides.odt", kindDOCX},
		{"readme.md", kindText},
		{"plain", kindText},
	}
	for _, tt := range tests {
		if got := classifyReference(tt.reference); got != tt.want {
			t.Errorf("classifyReference(%q) = %v, want %v", tt.reference, got, tt.want)
		}
	}
}
