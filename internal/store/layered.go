package store

import (
	"context"
	"errors"
	"time"

	"github.com/scavin/discourse-bilibili-onebox/internal/resolver"
)

// LayeredCache keeps a short-lived local copy in front of a shared cache.
type LayeredCache struct {
	local    resolver.Cache
	shared   resolver.Cache
	localTTL time.Duration
}

// NewLayeredCache creates a read-through decorator. Local entries live for
// at most localTTL, never longer than the TTL given to Put.
func NewLayeredCache(local, shared resolver.Cache, localTTL time.Duration) *LayeredCache {
	return &LayeredCache{
		local:    local,
		shared:   shared,
		localTTL: localTTL,
	}
}

func (l *LayeredCache) Get(ctx context.Context, key string) (string, error) {
	if value, err := l.local.Get(ctx, key); err == nil {
		return value, nil
	}

	value, err := l.shared.Get(ctx, key)
	if err != nil {
		return "", err
	}

	// Populate local layer
	_ = l.local.Put(ctx, key, value, l.localTTL)

	return value, nil
}

// Put writes the shared layer first; the local copy is only kept when the
// shared write succeeded.
func (l *LayeredCache) Put(ctx context.Context, key, value string, ttl time.Duration) error {
	if err := l.shared.Put(ctx, key, value, ttl); err != nil {
		return err
	}

	return l.local.Put(ctx, key, value, min(ttl, l.localTTL))
}

// Ping checks whichever layer supports it.
func (l *LayeredCache) Ping(ctx context.Context) error {
	var errs []error

	for _, layer := range []resolver.Cache{l.local, l.shared} {
		if p, ok := layer.(interface{ Ping(context.Context) error }); ok {
			if err := p.Ping(ctx); err != nil {
				errs = append(errs, err)
			}
		}
	}

	return errors.Join(errs...)
}

var _ resolver.Cache = (*LayeredCache)(nil)
