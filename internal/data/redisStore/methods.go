package redisStore

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

func (s *Store) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return s.client.Set(ctx, key, value, expiration).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	return s.client.Get(ctx, key).Result()
}

func (s *Store) Del(ctx context.Context, keys ...string) error {
	return s.client.Del(ctx, keys...).Err()
}

func (s *Store) IsNil(err error) bool {
	return errors.Is(err, redis.Nil)
}

func (s *Store) Exists(ctx context.Context, key string) (bool, error) {
	count, err := s.client.Exists(ctx, key).Result()
	return count > 0, err
}

// list operations for the session store

func (s *Store) ListPush(ctx context.Context, key string, value interface{}) error {
	return s.client.RPush(ctx, key, value).Err()
}

// ListRecent returns up to count elements from the tail of the list,
// oldest first.
func (s *Store) ListRecent(ctx context.Context, key string, count int64) ([]string, error) {
	if count < 1 {
		return []string{}, nil
	}
	return s.client.LRange(ctx, key, -count, -1).Result()
}

// ListTrim keeps only the newest max elements.
func (s *Store) ListTrim(ctx context.Context, key string, max int64) error {
	return s.client.LTrim(ctx, key, -max, -1).Err()
}

func (s *Store) Expire(ctx context.Context, key string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return s.client.Expire(ctx, key, ttl).Err()
}
