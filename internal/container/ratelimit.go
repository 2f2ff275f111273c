package container

import (
	"github.com/samber/do"
	"github.com/scavin/discourse-bilibili-onebox/internal/ratelimit"
	"github.com/scavin/discourse-bilibili-onebox/internal/store"
)

// RateLimitPackage provides the limiter for resolving routes. Windows live
// in Redis whenever the cache does, so all server processes share them.
func RateLimitPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (ratelimit.Store, error) {
		opts := do.MustInvoke[*Options](i)

		if opts.CacheBackend == CacheMemory {
			return store.NewRateLimitMemoryStore(), nil
		}

		client := do.MustInvoke[*RedisClient](i)

		return store.NewRateLimitRedisStore(client.Client), nil
	})

	do.Provide(injector, func(i *do.Injector) (*ratelimit.PolicyLimiter, error) {
		opts := do.MustInvoke[*Options](i)

		return ratelimit.NewPolicyLimiter(
			do.MustInvoke[ratelimit.Store](i),
			ratelimit.DefaultPolicy(opts.RateLimitPerMinute, opts.RateLimitPerHour),
		), nil
	})
}
