package stratus_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fabshop-io/stratus-client/pkg/stratus"
)

func TestMemoryCache(t *testing.T) {
	t.Parallel()
	t.Run("set and get", func(t *testing.T) {
		t.Parallel()

		cache := stratus.NewMemoryCache(10)
		ctx := context.Background()

		entry := &stratus.CacheEntry{Data: []byte("body"), ExpiresAt: time.Now().Add(time.Minute)}
		require.NoError(t, cache.Set(ctx, "k", entry))

		got, err := cache.Get(ctx, "k")
		require.NoError(t, err)
		assert.Equal(t, []byte("body"), got.Data)
		assert.True(t, cache.Has(ctx, "k"))
	})

	t.Run("missing key", func(t *testing.T) {
		t.Parallel()

		cache := stratus.NewMemoryCache(10)

		_, err := cache.Get(context.Background(), "absent")
		assert.ErrorIs(t, err, stratus.ErrCacheKeyNotFound)
	})

	t.Run("expired entries are stale and dropped", func(t *testing.T) {
		t.Parallel()

		cache := stratus.NewMemoryCache(10)
		ctx := context.Background()

		entry := &stratus.CacheEntry{Data: []byte("old"), ExpiresAt: time.Now().Add(-time.Second)}
		require.NoError(t, cache.Set(ctx, "k", entry))

		_, err := cache.Get(ctx, "k")
		assert.ErrorIs(t, err, stratus.ErrCacheEntryStale)
		assert.False(t, cache.Has(ctx, "k"))
	})

	t.Run("evicts the soonest-to-expire entry when full", func(t *testing.T) {
		t.Parallel()

		cache := stratus.NewMemoryCache(2)
		ctx := context.Background()

		require.NoError(t, cache.Set(ctx, "soon", &stratus.CacheEntry{ExpiresAt: time.Now().Add(time.Second)}))
		require.NoError(t, cache.Set(ctx, "later", &stratus.CacheEntry{ExpiresAt: time.Now().Add(time.Hour)}))
		require.NoError(t, cache.Set(ctx, "new", &stratus.CacheEntry{ExpiresAt: time.Now().Add(time.Hour)}))

		assert.False(t, cache.Has(ctx, "soon"))
		assert.True(t, cache.Has(ctx, "later"))
		assert.True(t, cache.Has(ctx, "new"))
	})

	t.Run("cleanup drops expired entries", func(t *testing.T) {
		t.Parallel()

		cache := stratus.NewMemoryCache(10)
		ctx := context.Background()

		require.NoError(t, cache.Set(ctx, "old", &stratus.CacheEntry{ExpiresAt: time.Now().Add(-time.Second)}))
		require.NoError(t, cache.Set(ctx, "live", &stratus.CacheEntry{ExpiresAt: time.Now().Add(time.Hour)}))

		cache.Cleanup()

		assert.False(t, cache.Has(ctx, "old"))
		assert.True(t, cache.Has(ctx, "live"))
	})
}

func TestCacheManager(t *testing.T) {
	t.Parallel()
	t.Run("cache keys sort query parameters", func(t *testing.T) {
		t.Parallel()

		manager := stratus.NewCacheManager(stratus.NewMemoryCache(10), nil)

		key := manager.GetCacheKey("GET", "/v1/package", map[string]string{
			"pagesize": "1000",
			"page":     "0",
			"include":  "id,name",
		})

		assert.Equal(t, "GET:/v1/package:include=id,name&page=0&pagesize=1000", key)
		assert.Equal(t, "GET:/health", manager.GetCacheKey("GET", "/health", nil))
	})

	t.Run("set, get and invalidate", func(t *testing.T) {
		t.Parallel()

		manager := stratus.NewCacheManager(stratus.NewMemoryCache(10), &stratus.CacheOptions{TTL: time.Minute})
		ctx := context.Background()

		manager.Set(ctx, "k", []byte("body"))

		data, ok := manager.Get(ctx, "k")
		require.True(t, ok)
		assert.Equal(t, []byte("body"), data)

		manager.Invalidate(ctx)

		_, ok = manager.Get(ctx, "k")
		assert.False(t, ok)
	})
}

func TestNewCacheFromConfig(t *testing.T) {
	t.Parallel()
	t.Run("memory backend", func(t *testing.T) {
		t.Parallel()

		cache, err := stratus.NewCacheFromConfig(&stratus.CacheConfig{Type: stratus.CacheTypeMemory})
		require.NoError(t, err)
		assert.NotNil(t, cache)
	})

	t.Run("none disables caching", func(t *testing.T) {
		t.Parallel()

		manager, err := stratus.NewCacheManagerFromConfig(&stratus.CacheConfig{Type: stratus.CacheTypeNone})
		require.NoError(t, err)
		assert.Nil(t, manager)
	})

	t.Run("nats requires connection settings", func(t *testing.T) {
		t.Parallel()

		_, err := stratus.NewCacheFromConfig(&stratus.CacheConfig{Type: stratus.CacheTypeNATS})
		assert.ErrorIs(t, err, stratus.ErrNATSConfigRequired)
	})

	t.Run("unsupported type", func(t *testing.T) {
		t.Parallel()

		_, err := stratus.NewCacheFromConfig(&stratus.CacheConfig{Type: "redis"})
		assert.ErrorIs(t, err, stratus.ErrUnsupportedCacheType)
	})
}
