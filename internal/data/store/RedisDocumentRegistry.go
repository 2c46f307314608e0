package store

import (
	"context"
	"encoding/json"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/data/redisStore"
	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
)

type RedisDocumentRegistry struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisDocumentRegistry(ctx context.Context) (*RedisDocumentRegistry, error) {
	redis, err := redisStore.GetRedisStore(ctx, config.RedisDocumentRegistry)
	if err != nil {
		return nil, err
	}
	return &RedisDocumentRegistry{
		store:  redis,
		logger: logger_i.NewLogger("DocumentRegistry"),
	}, nil
}

func (s *RedisDocumentRegistry) SaveDocument(ctx context.Context, record commonModels.RegistryRecord) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", record.Document.Id)
	data, err := json.Marshal(record)
	if err != nil {
		return err
	}

	//same content hashes to the same id, so a hit here is a re-ingest
	known, err := s.store.Exists(ctx, record.Document.Id)
	if err != nil {
		known = false
	}

	err = s.store.Set(ctx, record.Document.Id, data, config.RedisDocumentRegistryTTL)
	if err == nil {
		if known {
			log.Debug("Updated existing document record")
		} else {
			log.Debug("Saved document record")
		}
	}
	return err
}

func (s *RedisDocumentRegistry) GetDocument(ctx context.Context, documentId string) (commonModels.RegistryRecord, bool) {
	var record commonModels.RegistryRecord
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "documentId", documentId)

	val, err := s.store.Get(ctx, documentId)
	if s.store.IsNil(err) {
		return record, false
	} else if err != nil {
		log.Error("Failed to read document record", "error", err)
		return record, false
	}

	if err = json.Unmarshal([]byte(val), &record); err != nil {
		log.Error("Corrupt document record", "error", err)
		return record, false
	}
	return record, true
}

func (s *RedisDocumentRegistry) DeleteDocument(ctx context.Context, documentId string) {
	if err := s.store.Del(ctx, documentId); err != nil {
		s.logger.Error("Error deleting document record", "documentId", documentId, "error", err)
		return
	}
	s.logger.Debug("Document record deleted", "documentId", documentId)
}

func TestDocumentRegistry(store *redisStore.Store) *RedisDocumentRegistry {
	return &RedisDocumentRegistry{
		store:  store,
		logger: logger_i.NewLogger("test registry"),
	}
}
