package store

import (
	"context"
	"encoding/json"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/internal/data/redisStore"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
)

type RedisSessionStore struct {
	store  *redisStore.Store
	logger *logger_i.Logger
}

func NewRedisSessionStore(ctx context.Context) (*RedisSessionStore, error) {
	redis, err := redisStore.GetRedisStore(ctx, config.RedisSessionStore)
	if err != nil {
		return nil, err
	}
	return &RedisSessionStore{
		store:  redis,
		logger: logger_i.NewLogger("SessionStore"),
	}, nil
}

func (s *RedisSessionStore) AppendExchange(ctx context.Context, sessionId string, exchange Exchange) error {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)

	data, err := json.Marshal(exchange)
	if err != nil {
		return err
	}
	if err = s.store.ListPush(ctx, sessionId, data); err != nil {
		log.Error("error saving exchange", "error", err)
		return err
	}

	// keep the session bounded, old exchanges age out of the prompt anyway
	if err = s.store.ListTrim(ctx, sessionId, config.SessionHistoryDepth); err != nil {
		log.Warn("could not trim session history", "error", err)
	}
	if err = s.store.Expire(ctx, sessionId, config.RedisSessionStoreTTL); err != nil {
		log.Warn("could not refresh session ttl", "error", err)
	}
	log.Debug("Saved exchange")
	return nil
}

func (s *RedisSessionStore) History(ctx context.Context, sessionId string) ([]string, error) {
	log := s.logger.With("traceId", ctx.Value(config.TRACE_ID_KEY), "sessionId", sessionId)

	raw, err := s.store.ListRecent(ctx, sessionId, config.SessionHistoryDepth)
	if err != nil && !s.store.IsNil(err) {
		log.Error("Error getting history", "error", err)
		return nil, err
	}

	history := make([]string, 0, len(raw))
	for _, entry := range raw {
		var exchange Exchange
		if err := json.Unmarshal([]byte(entry), &exchange); err != nil {
			log.Warn("skipping corrupt history entry", "error", err)
			continue
		}
		history = append(history, formatExchange(exchange))
	}
	return history, nil
}

func TestSessionStore(store *redisStore.Store) *RedisSessionStore {
	return &RedisSessionStore{
		store:  store,
		logger: logger_i.NewLogger("test sessions"),
	}
}
