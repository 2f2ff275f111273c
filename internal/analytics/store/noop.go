package store

import (
	"context"

	"github.com/scavin/discourse-bilibili-onebox/internal/analytics"
	"go.uber.org/zap"
)

// Noop is a no-op implementation of analytics.Store that logs events.
type Noop struct {
	logger *zap.Logger
}

// NewNoop creates a new no-op analytics store.
func NewNoop(logger *zap.Logger) *Noop {
	return &Noop{logger: logger}
}

func (n *Noop) SaveResolution(_ context.Context, event *analytics.ResolutionEvent) error {
	n.logger.Info("link resolution event received",
		zap.String("key", event.Key),
		zap.String("target", event.Target),
		zap.String("outcome", event.Outcome),
		zap.String("value", event.Value),
		zap.Int64("durationMs", event.DurationMs),
		zap.Time("resolvedAt", event.ResolvedAt),
	)

	return nil
}

// CountByOutcome always reports no events; nothing is kept.
func (n *Noop) CountByOutcome(_ context.Context, _ string) (map[string]int64, error) {
	return map[string]int64{}, nil
}
