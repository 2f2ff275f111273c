package store_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scavin/discourse-bilibili-onebox/internal/resolver"
	"github.com/scavin/discourse-bilibili-onebox/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingCache struct {
	err error
}

func (f *failingCache) Get(context.Context, string) (string, error) {
	return "", f.err
}

func (f *failingCache) Put(context.Context, string, string, time.Duration) error {
	return f.err
}

func (f *failingCache) Ping(context.Context) error {
	return f.err
}

func TestLayeredCache(t *testing.T) {
	ctx := context.Background()

	t.Run("reads through and populates local", func(t *testing.T) {
		local := store.NewMemoryCache(10)
		shared := store.NewMemoryCache(10)
		_ = shared.Put(ctx, "short:abc", "video:BV1", time.Hour)

		cache := store.NewLayeredCache(local, shared, time.Minute)

		got, err := cache.Get(ctx, "short:abc")

		require.NoError(t, err)
		assert.Equal(t, "video:BV1", got)

		fromLocal, err := local.Get(ctx, "short:abc")
		require.NoError(t, err)
		assert.Equal(t, "video:BV1", fromLocal)
	})

	t.Run("miss in both layers", func(t *testing.T) {
		cache := store.NewLayeredCache(store.NewMemoryCache(10), store.NewMemoryCache(10), time.Minute)

		_, err := cache.Get(ctx, "short:none")

		assert.ErrorIs(t, err, resolver.ErrCacheMiss)
	})

	t.Run("put writes both layers", func(t *testing.T) {
		local := store.NewMemoryCache(10)
		shared := store.NewMemoryCache(10)
		cache := store.NewLayeredCache(local, shared, time.Minute)

		require.NoError(t, cache.Put(ctx, "live:1", "1", time.Hour))

		_, err := local.Get(ctx, "live:1")
		require.NoError(t, err)
		_, err = shared.Get(ctx, "live:1")
		require.NoError(t, err)
	})

	t.Run("shared write failure skips local", func(t *testing.T) {
		local := store.NewMemoryCache(10)
		cache := store.NewLayeredCache(local, &failingCache{err: errors.New("down")}, time.Minute)

		err := cache.Put(ctx, "live:1", "1", time.Hour)

		require.Error(t, err)
		assert.Equal(t, 0, local.Len())
	})

	t.Run("serves local copy when shared is down", func(t *testing.T) {
		local := store.NewMemoryCache(10)
		_ = local.Put(ctx, "live:2", "2", time.Hour)
		cache := store.NewLayeredCache(local, &failingCache{err: errors.New("down")}, time.Minute)

		got, err := cache.Get(ctx, "live:2")

		require.NoError(t, err)
		assert.Equal(t, "2", got)
	})

	t.Run("ping reports shared failure", func(t *testing.T) {
		cache := store.NewLayeredCache(store.NewMemoryCache(10), &failingCache{err: errors.New("down")}, time.Minute)

		assert.Error(t, cache.Ping(ctx))
	})
}
