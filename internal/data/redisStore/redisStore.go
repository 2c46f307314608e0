package redisStore

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/farazfarid/rag-chatbot-confluence/internal/config"
	"github.com/farazfarid/rag-chatbot-confluence/pkg/logger_i"
	"github.com/redis/go-redis/v9"
)

var (
	instances = make(map[int]*Store)
	mu        sync.RWMutex
	once      sync.Once
)

type Store struct {
	client *redis.Client
	logger *logger_i.Logger
	Type   int
}

// GetRedisStore hands out one client per logical database. The registry
// and session stores live in separate databases so their keyspaces
// cannot collide.
func GetRedisStore(ctx context.Context, DBType int) (*Store, error) {

	mu.RLock()
	instance, exists := instances[DBType]
	mu.RUnlock()

	if exists {
		return instance, nil
	}

	mu.Lock()
	defer mu.Unlock()

	if instance, exists = instances[DBType]; exists {
		return instance, nil
	}
	return createNewStore(ctx, DBType)
}

func closeRedisStores(ctx context.Context) {
	<-ctx.Done()
	mu.Lock()
	defer mu.Unlock()
	for _, store := range instances {
		if err := store.client.Close(); err != nil {
			store.logger.Error("Error closing redis client", "error", err)
		}
	}
}

func createNewStore(ctx context.Context, dbType int) (*Store, error) {
	newClient := redis.NewClient(&redis.Options{
		Addr:                  config.GetEnv("REDIS_ADDR", config.RedisAddr),
		Password:              config.GetEnv("REDIS_PASSWORD", config.RedisPassword),
		DB:                    dbType,
		ContextTimeoutEnabled: true,
		ReadTimeout:           30 * time.Second,
		WriteTimeout:          30 * time.Second,
	})

	logger := logger_i.NewLogger("redisStore-db" + strconv.Itoa(dbType))

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	if err := newClient.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("redis is offline: %w", err)
	}

	logger.Info("Redis store init successfully")

	newStore := &Store{
		client: newClient,
		logger: logger,
		Type:   dbType,
	}

	instances[dbType] = newStore
	once.Do(func() {
		go closeRedisStores(ctx)
	})
	return newStore, nil
}

// Only in a _test.go file or behind a build tag
func NewTestStore(client *redis.Client) *Store {
	return &Store{
		client: client,
		logger: logger_i.NewLogger("redisStore-test"),
	}
}
