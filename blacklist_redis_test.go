package flightdeck_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	flightdeck "github.com/velocityworks/flightdeck"
)

func newRedisFixture(t *testing.T) *flightdeck.RedisBlacklist {
	t.Helper()

	mr := miniredis.RunT(t)

	store, err := flightdeck.NewRedisBlacklist("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	return store
}

func TestRedisBlacklist(t *testing.T) {
	ctx := context.Background()

	t.Run("contains is false for unknown tokens", func(t *testing.T) {
		store := newRedisFixture(t)

		revoked, err := store.Contains(ctx, "unknown-token")

		require.NoError(t, err)
		assert.False(t, revoked)
	})

	t.Run("add then contains", func(t *testing.T) {
		store := newRedisFixture(t)

		err := store.Add(ctx, "revoked-token", time.Now().Add(time.Hour))
		require.NoError(t, err)

		revoked, err := store.Contains(ctx, "revoked-token")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("re-adding the same token is fine", func(t *testing.T) {
		store := newRedisFixture(t)

		exp := time.Now().Add(time.Hour)
		require.NoError(t, store.Add(ctx, "revoked-token", exp))
		require.NoError(t, store.Add(ctx, "revoked-token", exp))

		revoked, err := store.Contains(ctx, "revoked-token")
		require.NoError(t, err)
		assert.True(t, revoked)
	})

	t.Run("revocations without a readable expiry still stick", func(t *testing.T) {
		store := newRedisFixture(t)

		require.NoError(t, store.Add(ctx, "opaque-token", time.Time{}))

		revoked, err := store.Contains(ctx, "opaque-token")
		require.NoError(t, err)
		assert.True(t, revoked)
	})
}

func TestRedisBlacklist_ExpiryDrivenPurge(t *testing.T) {
	ctx := context.Background()

	mr := miniredis.RunT(t)
	store, err := flightdeck.NewRedisBlacklist("redis://"+mr.Addr(), "")
	require.NoError(t, err)
	defer store.Close()

	require.NoError(t, store.Add(ctx, "short-lived", time.Now().Add(30*time.Minute)))

	revoked, err := store.Contains(ctx, "short-lived")
	require.NoError(t, err)
	assert.True(t, revoked)

	// Past the token's own expiry the record purges itself; the codec
	// rejects the token from then on anyway.
	mr.FastForward(time.Hour)

	revoked, err = store.Contains(ctx, "short-lived")
	require.NoError(t, err)
	assert.False(t, revoked)
}

func TestNewRedisBlacklist_BadURL(t *testing.T) {
	_, err := flightdeck.NewRedisBlacklist("not-a-redis-url", "")
	assert.Error(t, err)
}
