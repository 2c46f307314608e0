package store

import (
	"context"
	"sync"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
)

type InMemorySessionStore struct {
	mutex    *sync.RWMutex
	sessions map[string][]Exchange
}

func InitInMemorySessionStore() *InMemorySessionStore {
	return &InMemorySessionStore{
		mutex:    new(sync.RWMutex),
		sessions: make(map[string][]Exchange),
	}
}

func (s *InMemorySessionStore) AppendExchange(ctx context.Context, sessionId string, exchange Exchange) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	entries := append(s.sessions[sessionId], exchange)
	if len(entries) > config.SessionHistoryDepth {
		entries = entries[len(entries)-config.SessionHistoryDepth:]
	}
	s.sessions[sessionId] = entries
	return nil
}

func (s *InMemorySessionStore) History(ctx context.Context, sessionId string) ([]string, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entries := s.sessions[sessionId]
	history := make([]string, 0, len(entries))
	for _, exchange := range entries {
		history = append(history, formatExchange(exchange))
	}
	return history, nil
}
