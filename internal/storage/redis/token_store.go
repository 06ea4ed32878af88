package redis

import (
	"context"
	"errors"
	"fmt"

	"github.com/makkenzo/license-admin-console/internal/domain/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const keyPrefix = "license-admin:"

// TokenStore shares the admin token between console replicas through Redis.
type TokenStore struct {
	client *redis.Client
	key    string
	logger *zap.Logger
}

var _ session.TokenStore = (*TokenStore)(nil)

func NewTokenStore(client *redis.Client, logger *zap.Logger) *TokenStore {
	return &TokenStore{
		client: client,
		key:    keyPrefix + session.StorageKey,
		logger: logger.Named("RedisTokenStore"),
	}
}

func (s *TokenStore) Token(ctx context.Context) (string, error) {
	token, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		s.logger.Error("Failed to read session token", zap.Error(err))
		return "", fmt.Errorf("redis get %s: %w", s.key, err)
	}
	return token, nil
}

func (s *TokenStore) SetToken(ctx context.Context, token string) error {
	if err := s.client.Set(ctx, s.key, token, 0).Err(); err != nil {
		s.logger.Error("Failed to store session token", zap.Error(err))
		return fmt.Errorf("redis set %s: %w", s.key, err)
	}
	return nil
}

func (s *TokenStore) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		s.logger.Error("Failed to clear session token", zap.Error(err))
		return fmt.Errorf("redis del %s: %w", s.key, err)
	}
	return nil
}

// Ping reports whether the backing Redis is reachable.
func (s *TokenStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
