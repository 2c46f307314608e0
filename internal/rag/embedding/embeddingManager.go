package embedding

import "context"

// Embedder produces fixed-dimension vectors. Implementations return an error
// instead of a partial vector; callers decide whether a failure skips the
// unit of work or empties the retrieval context.
type Embedder interface {
	GetEmbedding(ctx context.Context, text string) ([]float32, error)
	BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error)
}
