package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/jwalitptl/optorecord-api/internal/repository"
)

const revokedPrefix = "auth:revoked:"

type tokenStore struct {
	client redis.Cmdable
}

// NewTokenStore keeps revoked token ids as expiring keys.
func NewTokenStore(client redis.Cmdable) repository.TokenStore {
	return &tokenStore{client: client}
}

func (s *tokenStore) Revoke(ctx context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	if err := s.client.Set(ctx, revokedPrefix+jti, 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}
	return nil
}

func (s *tokenStore) IsRevoked(ctx context.Context, jti string) (bool, error) {
	n, err := s.client.Exists(ctx, revokedPrefix+jti).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token revocation: %w", err)
	}
	return n > 0, nil
}
