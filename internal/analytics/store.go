package analytics

import "context"

// Store defines the interface for persisting resolution events.
type Store interface {
	SaveResolution(ctx context.Context, event *ResolutionEvent) error
}

// Reporter summarizes persisted resolution events.
type Reporter interface {
	CountByOutcome(ctx context.Context, key string) (map[string]int64, error)
}
