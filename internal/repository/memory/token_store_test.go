package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenStore(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(time.Minute)

	revoked, err := store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.False(t, revoked)

	require.NoError(t, store.Revoke(ctx, "jti-1", time.Hour))
	revoked, err = store.IsRevoked(ctx, "jti-1")
	require.NoError(t, err)
	assert.True(t, revoked)
}

func TestTokenStoreExpires(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(time.Minute)

	require.NoError(t, store.Revoke(ctx, "short", 10*time.Millisecond))
	time.Sleep(30 * time.Millisecond)

	revoked, err := store.IsRevoked(ctx, "short")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestTokenStoreIgnoresExpiredTokens(t *testing.T) {
	ctx := context.Background()
	store := NewTokenStore(time.Minute)

	require.NoError(t, store.Revoke(ctx, "old", -time.Second))
	revoked, _ := store.IsRevoked(ctx, "old")
	assert.False(t, revoked)
}
