package openaiEmbedding

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/embedding"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
	"github.com/openai/openai-go"
)

type client struct {
	openAi *openai.Client
	model  string
	logger *logger_i.Logger
}

// NewOpenAIEmbedder builds an embedder backed by the OpenAI embeddings API,
// reading OPENAI_API_KEY from the environment. text-embedding-3-small emits
// 1536-dimension vectors, matching the vector store's declared dimension.
func NewOpenAIEmbedder(modelName string) (embedding.Embedder, error) {
	if os.Getenv("OPENAI_API_KEY") == "" {
		return nil, errors.New("OPENAI_API_KEY environment variable not set")
	}

	c := openai.NewClient()
	return &client{
		openAi: &c,
		model:  modelName,
		logger: logger_i.NewLogger("openai_embedding"),
	}, nil
}

func (c *client) GetEmbedding(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.BatchEmbedding(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vectors[0], nil
}

func (c *client) BatchEmbedding(ctx context.Context, chunks []string) ([][]float32, error) {
	log := c.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	resp, err := c.doCall(ctx, chunks)
	if err != nil {
		if isRateLimitError(err) {
			time.Sleep(5 * time.Second)
			log.Debug("Retrying after rate limit backoff")
			resp, err = c.doCall(ctx, chunks)
		}
		if err != nil {
			log.Error("Error getting Embeddings from OpenAI", "error", err)
			return nil, err
		}
	}

	if len(resp.Data) != len(chunks) {
		return nil, fmt.Errorf("openai embedding: got %d vectors for %d inputs", len(resp.Data), len(chunks))
	}

	vectors := make([][]float32, len(resp.Data))
	for i, data := range resp.Data {
		vectors[i] = toFloat32(data.Embedding)
	}
	return vectors, nil
}

func (c *client) doCall(ctx context.Context, chunks []string) (*openai.CreateEmbeddingResponse, error) {
	return c.openAi.Embeddings.New(ctx, openai.EmbeddingNewParams{
		Input: openai.EmbeddingNewParamsInputUnion{
			OfArrayOfStrings: chunks,
		},
		Model: openai.EmbeddingModel(c.model),
	})
}

func isRateLimitError(err error) bool {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429
	}
	return false
}

// toFloat32 narrows the API's float64 vectors to the float32 the vector
// store persists.
func toFloat32(f64 []float64) []float32 {
	f32 := make([]float32, len(f64))
	for i, v := range f64 {
		f32[i] = float32(v)
	}
	return f32
}
