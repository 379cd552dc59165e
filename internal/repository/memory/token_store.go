package memory

import (
	"context"
	"time"

	"github.com/patrickmn/go-cache"

	"github.com/jwalitptl/optorecord-api/internal/repository"
)

type tokenStore struct {
	cache *cache.Cache
}

// NewTokenStore is the single-instance revocation store used without Redis.
func NewTokenStore(cleanupInterval time.Duration) repository.TokenStore {
	return &tokenStore{cache: cache.New(cache.NoExpiration, cleanupInterval)}
}

func (s *tokenStore) Revoke(_ context.Context, jti string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	s.cache.Set(jti, struct{}{}, ttl)
	return nil
}

func (s *tokenStore) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, found := s.cache.Get(jti)
	return found, nil
}
