package ratelimit

import (
	"context"
	"time"
)

// Store records requests per key over a sliding window.
type Store interface {
	// Record records a request and returns the count of requests in the
	// current window, pruning expired entries.
	Record(ctx context.Context, key string, window time.Duration) (count int64, err error)
}
