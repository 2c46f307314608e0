package ingest

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
	"github.com/farazfarid/rag-chatbot-confluence/internal/metrics"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/chunker"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/embedding"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/vectorDB"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
)

// Pipeline drives a document from raw bytes to persisted chunks:
// fetch, extract, chunk, then embed and upsert each chunk.
// Fetch and extraction failures abort the document; embedding and
// upsert failures only drop the affected chunk.
type Pipeline struct {
	fetcher  Fetcher
	splitter *chunker.Splitter
	embedder embedding.Embedder
	store    vectorDB.DataProcessor
	workers  int
	logger   *logger_i.Logger
}

func NewPipeline(fetcher Fetcher, splitter *chunker.Splitter, embedder embedding.Embedder, store vectorDB.DataProcessor) *Pipeline {
	return &Pipeline{
		fetcher:  fetcher,
		splitter: splitter,
		embedder: embedder,
		store:    store,
		workers:  config.IngestWorkerCount,
		logger:   logger_i.NewLogger("ingestPipeline"),
	}
}

// DocumentID is the identity of a document: a hash over the full
// extracted text, so re-ingesting identical content overwrites the
// same chunks instead of duplicating them.
func DocumentID(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

func ChunkID(documentId string, index int) string {
	return fmt.Sprintf("%s_chunk_%d", documentId, index)
}

func (p *Pipeline) Ingest(ctx context.Context, ref DocumentRef) (commonModels.IngestResult, error) {
	traceId := ctx.Value(config.TRACE_ID_KEY)

	if err := ref.Validate(); err != nil {
		return commonModels.IngestResult{}, err
	}

	content, err := p.fetcher.Fetch(ctx, ref)
	if err != nil {
		return commonModels.IngestResult{}, fmt.Errorf("fetching document: %w", err)
	}

	text, err := extractText(content, classifyReference(ref.reference()))
	if err != nil {
		return commonModels.IngestResult{}, fmt.Errorf("extracting document text: %w", err)
	}

	doc := p.buildDocument(ref, text)
	pieces := p.splitter.Split(text)

	chunks := make([]commonModels.DocChunk, 0, len(pieces))
	for i, piece := range pieces {
		if strings.TrimSpace(piece) == "" {
			continue
		}
		chunks = append(chunks, commonModels.DocChunk{
			Doc:     doc,
			ChunkId: ChunkID(doc.Id, i),
			Index:   i,
			Content: piece,
		})
	}

	if len(chunks) == 0 {
		p.logger.Warn("document produced no chunks", "documentId", doc.Id, "traceId", traceId)
		return commonModels.IngestResult{DocumentId: doc.Id}, nil
	}

	if err := p.store.EnsureCollection(ctx); err != nil {
		return commonModels.IngestResult{}, fmt.Errorf("ensuring collection: %w", err)
	}

	processed, skipped := p.indexChunks(ctx, chunks)

	p.logger.Info("ingestion complete",
		"documentId", doc.Id, "chunks", len(chunks),
		"processed", processed, "skipped", skipped, "traceId", traceId)
	metrics.IncrementDocumentsIngested()

	return commonModels.IngestResult{
		DocumentId:      doc.Id,
		ChunksProcessed: processed,
		ChunksSkipped:   skipped,
	}, nil
}

// indexChunks embeds and upserts chunks on a bounded pool. One batch
// call covers the whole run when the provider allows it; otherwise each
// worker embeds its own chunks. Chunks are independent, so a failed
// chunk is counted and dropped without touching its siblings.
func (p *Pipeline) indexChunks(ctx context.Context, chunks []commonModels.DocChunk) (int, int) {
	vectors := p.batchEmbed(ctx, chunks)

	var processed, skipped atomic.Int64

	jobs := make(chan int)
	var wg sync.WaitGroup

	workers := p.workers
	if workers < 1 {
		workers = 1
	}
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			metrics.IncrementActiveIngestWorkerCount()
			defer metrics.DecrementActiveIngestWorkerCount()

			for i := range jobs {
				var vector []float32
				if vectors != nil {
					vector = vectors[i]
				}
				if p.indexOne(ctx, chunks[i], vector) {
					processed.Add(1)
				} else {
					skipped.Add(1)
					metrics.IncrementChunksSkipped()
				}
			}
		}()
	}

	for i := range chunks {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return int(processed.Load()), int(skipped.Load())
}

// batchEmbed returns nil when the batch call cannot be used, which
// sends every chunk down the per-chunk embedding path instead.
func (p *Pipeline) batchEmbed(ctx context.Context, chunks []commonModels.DocChunk) [][]float32 {
	contents := make([]string, len(chunks))
	for i, chunk := range chunks {
		contents[i] = chunk.Content
	}

	start := time.Now()
	vectors, err := p.embedder.BatchEmbedding(ctx, contents)
	metrics.CaptureExecutionMetrics("embedding", time.Since(start))
	if err != nil || len(vectors) != len(chunks) {
		p.logger.Warn("batch embedding unavailable, embedding per chunk", "error", err)
		return nil
	}
	return vectors
}

func (p *Pipeline) indexOne(ctx context.Context, chunk commonModels.DocChunk, vector []float32) bool {
	if vector == nil {
		start := time.Now()
		embedded, err := p.embedder.GetEmbedding(ctx, chunk.Content)
		metrics.CaptureExecutionMetrics("embedding", time.Since(start))
		if err != nil {
			p.logger.Warn("skipping chunk, embedding failed", "chunkId", chunk.ChunkId, "error", err)
			return false
		}
		vector = embedded
	}

	start := time.Now()
	err := p.store.UpsertChunks(ctx, []commonModels.DocChunk{chunk}, [][]float32{vector})
	metrics.CaptureExecutionMetrics("vectordb_upsert", time.Since(start))
	if err != nil {
		p.logger.Warn("skipping chunk, upsert failed", "chunkId", chunk.ChunkId, "error", err)
		return false
	}
	return true
}

func (p *Pipeline) buildDocument(ref DocumentRef, text string) commonModels.Document {
	doc := commonModels.Document{
		Id:         DocumentID(text),
		Source:     ref.Source,
		Title:      ref.Title,
		Type:       ref.Type,
		IngestedAt: time.Now().UTC(),
	}
	if doc.Source == "" {
		doc.Source = ref.reference()
	}
	if doc.Title == "" {
		doc.Title = "Untitled"
	}
	if doc.Type == "" {
		doc.Type = "document"
	}
	return doc
}
