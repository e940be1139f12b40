package credential

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps the token in Redis under prefix + TokenKey, so several
// client processes on one host can share a session.
type RedisStore struct {
	Client *redis.Client
	prefix string
}

// NewRedisStore creates a store using client. prefix namespaces the key.
func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{Client: client, prefix: prefix}
}

// Key returns the redis key the token lives under.
func (s *RedisStore) Key() string {
	return s.prefix + TokenKey
}

func (s *RedisStore) Token(ctx context.Context) (string, error) {
	token, err := s.Client.Get(ctx, s.Key()).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read token from redis: %w", err)
	}
	return token, nil
}

func (s *RedisStore) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.Client.Set(ctx, s.Key(), token, 0).Err(); err != nil {
		return fmt.Errorf("failed to store token in redis: %w", err)
	}
	return nil
}

func (s *RedisStore) Clear(ctx context.Context) error {
	if err := s.Client.Del(ctx, s.Key()).Err(); err != nil {
		return fmt.Errorf("failed to clear token in redis: %w", err)
	}
	return nil
}
