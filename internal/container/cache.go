package container

import (
	"context"
	"fmt"
	"time"

	"github.com/samber/do"
	"github.com/scavin/discourse-bilibili-onebox/internal/health"
	"github.com/scavin/discourse-bilibili-onebox/internal/resolver"
	"github.com/scavin/discourse-bilibili-onebox/internal/store"
)

// layeredLocalTTL bounds how stale a local copy in front of Redis can get.
const layeredLocalTTL = 5 * time.Minute

// CachePackage provides the resolution cache selected by CacheBackend and a
// health checker for it.
func CachePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (resolver.Cache, error) {
		opts := do.MustInvoke[*Options](i)

		switch opts.CacheBackend {
		case CacheMemory:
			return store.NewMemoryCache(opts.CacheSize), nil
		case CacheRedis:
			client := do.MustInvoke[*RedisClient](i)

			return store.NewRedisCache(client.Client), nil
		case CacheLayered:
			client := do.MustInvoke[*RedisClient](i)

			return store.NewLayeredCache(
				store.NewMemoryCache(opts.CacheSize),
				store.NewRedisCache(client.Client),
				layeredLocalTTL,
			), nil
		default:
			return nil, fmt.Errorf("unknown cache backend %q", opts.CacheBackend)
		}
	})

	do.Provide(injector, func(i *do.Injector) (health.Checker, error) {
		cache := do.MustInvoke[resolver.Cache](i)

		if p, ok := cache.(health.Checker); ok {
			return p, nil
		}

		return health.CheckerFunc(func(context.Context) error { return nil }), nil
	})
}
