package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

var _ Store = (*redisStore)(nil)

// cmdable is the part of the redis client the store needs.
type cmdable interface {
	Get(context.Context, string) *redis.StringCmd
	Set(context.Context, string, any, time.Duration) *redis.StatusCmd
	Del(context.Context, ...string) *redis.IntCmd
}

type redisStore struct {
	client cmdable
	closer func() error
	prefix string
	ttl    time.Duration
	logger *zap.Logger
}

// NewRedis namespaces keys with prefix and expires every write after ttl.
// A zero ttl keeps values forever.
func NewRedis(client *redis.Client, prefix string, ttl time.Duration, logger *zap.Logger) Store {
	return newRedisStore(client, client.Close, prefix, ttl, logger)
}

func newRedisStore(client cmdable, closer func() error, prefix string, ttl time.Duration, logger *zap.Logger) *redisStore {
	return &redisStore{
		client: client,
		closer: closer,
		prefix: prefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (s *redisStore) key(key string) string {
	if s.prefix == "" {
		return key
	}
	return fmt.Sprintf("%s:%s", s.prefix, key)
}

func (s *redisStore) Get(ctx context.Context, key string) ([]byte, error) {
	value, err := s.client.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		s.logger.Error("Failed to get key", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("failed to get key %q: %w", key, err)
	}
	return value, nil
}

func (s *redisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.key(key), value, s.ttl).Err(); err != nil {
		s.logger.Error("Failed to set key", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to set key %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		s.logger.Error("Failed to delete key", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("failed to delete key %q: %w", key, err)
	}
	return nil
}

func (s *redisStore) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}
