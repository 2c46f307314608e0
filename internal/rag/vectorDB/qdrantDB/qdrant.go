package qdrantDB

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
	"github.com/farazfarid/rag-chatbot-confluence/internal/rag/vectorDB"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
	"github.com/google/uuid"
	"github.com/qdrant/go-client/qdrant"
)

var dimension = uint64(config.EmbeddingOutputDimensionality)

const upsertBatchSize = 100

type ClientHolder struct {
	QObj           *qdrant.Client
	collectionName string
	logger         *logger_i.Logger
}

// NewQdrantClient connects to Qdrant over gRPC and makes sure both the
// document index and the semantic cache collection exist. The connection is
// closed when ctx is cancelled.
func NewQdrantClient(ctx context.Context, collectionName string) (vectorDB.DataProcessor, error) {
	logger := logger_i.NewLogger("Qdrant")

	host := config.GetEnv("QDRANT_HOST", config.QdrantHost)
	port, err := strconv.Atoi(os.Getenv("QDRANT_PORT"))
	if err != nil {
		port = config.QdrantGrpcPort
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:     host,
		Port:     port,
		UseTLS:   config.QdrantUseTLS,
		PoolSize: uint(config.QdrantPoolSize),
	})
	if err != nil {
		logger.Error("could not instantiate: ", "error:", err)
		return nil, err
	}

	db := &ClientHolder{
		QObj:           client,
		collectionName: collectionName,
		logger:         logger,
	}

	if err := db.EnsureCollection(ctx); err != nil {
		logger.Error("could not create collection: ", "collectionName", collectionName, "error:", err)
		return nil, err
	}
	initCacheCollection(ctx, db)

	go closeQdrant(ctx, db)
	return db, nil
}

func closeQdrant(ctx context.Context, db *ClientHolder) {
	<-ctx.Done()
	db.logger.Info("Shutting down Qdrant")
	if err := db.QObj.Close(); err != nil {
		db.logger.Error("could not close Qdrant: ", "error:", err)
	}
}

func (db *ClientHolder) EnsureCollection(ctx context.Context) error {
	return createCollection(ctx, db.QObj, db.collectionName, true)
}

func (db *ClientHolder) Health(ctx context.Context) error {
	result, err := db.QObj.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("qdrant health check failed: %w", err)
	}
	if result == nil || result.Title == "" {
		return errors.New("qdrant health check returned invalid response")
	}
	return nil
}

func (db *ClientHolder) Search(ctx context.Context, queryVector []float32, topK int) ([]commonModels.SearchMatch, error) {
	loggr := db.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY))

	if topK <= 0 {
		return nil, nil
	}
	if len(queryVector) != int(dimension) {
		return nil, fmt.Errorf("query vector has %d dimensions, expected %d", len(queryVector), dimension)
	}

	result, err := db.QObj.Query(ctx, &qdrant.QueryPoints{
		CollectionName: db.collectionName,
		Query:          qdrant.NewQuery(queryVector...),
		Limit:          qdrant.PtrOf(uint64(topK)),
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		loggr.Error("Error querying Qdrant: ", "error:", err)
		return nil, err
	}

	matches := make([]commonModels.SearchMatch, 0, len(result))
	for _, hit := range result {
		matches = append(matches, commonModels.SearchMatch{
			DocumentId: hit.Payload["document_id"].GetStringValue(),
			ChunkId:    hit.Payload["chunk_id"].GetStringValue(),
			Content:    hit.Payload["content"].GetStringValue(),
			Title:      hit.Payload["title"].GetStringValue(),
			Source:     hit.Payload["source"].GetStringValue(),
			DocType:    hit.Payload["type"].GetStringValue(),
			Score:      hit.Score,
		})
	}

	loggr.Debug("Vector search complete", "matches", len(matches))
	return matches, nil
}

func (db *ClientHolder) UpsertChunks(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	if len(chunks) != len(vectors) {
		return fmt.Errorf("mismatch: got %d chunks but %d vectors", len(chunks), len(vectors))
	}
	for i, vector := range vectors {
		if len(vector) != int(dimension) {
			return fmt.Errorf("chunk %d has %d dimensions, expected %d", i, len(vector), dimension)
		}
	}

	var batchErrs []error
	for i := 0; i < len(chunks); i += upsertBatchSize {
		end := i + upsertBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}

		if err := db.upsertBatch(ctx, chunks[i:end], vectors[i:end]); err != nil {
			//a failed batch must not stop the remaining batches
			db.logger.Error("qdrant upsert batch failed", "from", i, "to", end, "error", err)
			batchErrs = append(batchErrs, fmt.Errorf("batch %d-%d: %w", i, end, err))
		}
	}
	return errors.Join(batchErrs...)
}

func (db *ClientHolder) upsertBatch(ctx context.Context, chunks []commonModels.DocChunk, vectors [][]float32) error {
	qdrantPoints := make([]*qdrant.PointStruct, len(chunks))

	for i, chunk := range chunks {
		qdrantPoints[i] = &qdrant.PointStruct{
			Id:      qdrant.NewID(PointID(chunk.ChunkId)),
			Vectors: qdrant.NewVectors(vectors[i]...),
			Payload: qdrant.NewValueMap(map[string]any{
				"document_id": chunk.Doc.Id,
				"chunk_id":    chunk.ChunkId,
				"chunk_index": chunk.Index,
				"content":     chunk.Content,
				"title":       chunk.Doc.Title,
				"source":      chunk.Doc.Source,
				"type":        chunk.Doc.Type,
				"timestamp":   chunk.Doc.IngestedAt.Format(time.RFC3339),
			}),
		}
	}

	_, err := db.QObj.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: db.collectionName,
		Points:         qdrantPoints,
		Wait:           qdrant.PtrOf(true),
	})
	return err
}

// DeleteDocument drops every point whose payload carries the document id.
// The document_id payload index makes this a cheap filtered delete.
func (db *ClientHolder) DeleteDocument(ctx context.Context, documentId string) error {
	loggr := db.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId)

	_, err := db.QObj.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: db.collectionName,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentId),
			},
		}),
		Wait: qdrant.PtrOf(true),
	})
	if err != nil {
		loggr.Error("Error deleting document points: ", "error:", err)
		return err
	}
	loggr.Debug("Document points deleted")
	return nil
}

// PointID maps a logical chunk id onto the UUID space Qdrant accepts as a
// point id. The mapping is deterministic, so re-ingesting identical content
// overwrites the same points instead of accumulating duplicates.
func PointID(chunkId string) string {
	return uuid.NewMD5(uuid.NameSpaceURL, []byte(chunkId)).String()
}

func createCollection(ctx context.Context, client *qdrant.Client, collectionName string, withIndexes bool) error {
	if collectionName == "" {
		return errors.New("empty collection name")
	}

	exists, err := client.CollectionExists(ctx, collectionName)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	err = client.CreateCollection(ctx, &qdrant.CreateCollection{
		CollectionName: collectionName,
		VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
			Size:     dimension,
			Distance: qdrant.Distance_Cosine,
		}),
	})
	if err != nil {
		return err
	}

	if withIndexes {
		return createPayloadIndexes(ctx, client, collectionName)
	}
	return nil
}

// createPayloadIndexes indexes the exact-match keys the API filters and
// reports on. Without them payload filtering degrades badly on large indexes.
func createPayloadIndexes(ctx context.Context, client *qdrant.Client, collectionName string) error {
	for _, field := range []string{"document_id", "chunk_id", "type"} {
		_, err := client.CreateFieldIndex(ctx, &qdrant.CreateFieldIndexCollection{
			CollectionName: collectionName,
			FieldName:      field,
			FieldType:      qdrant.FieldType_FieldTypeKeyword.Enum(),
		})
		if err != nil {
			return fmt.Errorf("failed to create index for field %s: %w", field, err)
		}
	}
	return nil
}
