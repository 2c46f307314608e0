package store

import (
	"context"
	"sync"

	"github.com/farazfarid/rag-chatbot-confluence/internal/domain/commonModels"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
)

var inMemLogger = logger_i.NewLogger("InMem Registry")

// InMemoryDocumentRegistry backs local development when Redis is not
// running. Records vanish on restart.
type InMemoryDocumentRegistry struct {
	mutex   *sync.RWMutex
	records map[string]commonModels.RegistryRecord
}

func InitInMemoryDocumentRegistry() *InMemoryDocumentRegistry {
	return &InMemoryDocumentRegistry{
		mutex:   new(sync.RWMutex),
		records: make(map[string]commonModels.RegistryRecord),
	}
}

func (r *InMemoryDocumentRegistry) SaveDocument(ctx context.Context, record commonModels.RegistryRecord) error {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	r.records[record.Document.Id] = record
	inMemLogger.Debug("Saved document record", "documentId", record.Document.Id)
	return nil
}

func (r *InMemoryDocumentRegistry) GetDocument(ctx context.Context, documentId string) (commonModels.RegistryRecord, bool) {
	r.mutex.RLock()
	defer r.mutex.RUnlock()
	record, found := r.records[documentId]
	return record, found
}

func (r *InMemoryDocumentRegistry) DeleteDocument(ctx context.Context, documentId string) {
	r.mutex.Lock()
	defer r.mutex.Unlock()
	delete(r.records, documentId)
}
