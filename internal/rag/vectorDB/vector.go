package vectorDB

import (
	"context"

	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
)

type DataProcessor interface {
	// EnsureCollection is idempotent: it creates the document index with the
	// configured vector dimension and cosine distance only when missing.
	EnsureCollection(ctx context.Context) error

	// UpsertChunks writes chunks keyed by chunk id, last-write-wins. A failed
	// batch is reported but does not stop the remaining batches.
	UpsertChunks(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error

	// Search returns up to topK matches in non-increasing score order.
	// topK <= 0 yields an empty result without error.
	Search(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchMatch, error)

	// DeleteDocument removes every chunk indexed under the document id.
	// Deleting an unknown id is not an error.
	DeleteDocument(ctx context.Context, documentId string) error

	GetCachedAnswer(ctx context.Context, queryVector []float32) (string, bool, error)
	SaveToCache(ctx context.Context, id string, vector []float32, answer string) error

	Health(ctx context.Context) error
}
