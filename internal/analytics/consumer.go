package analytics

import (
	"context"
	"fmt"

	"github.com/scavin/discourse-bilibili-onebox/internal/messaging"
	"go.uber.org/zap"
)

// NewResolutionHandler returns the message handler that persists resolution
// events to store. Events without a key are rejected so they get nacked.
func NewResolutionHandler(store Store, logger *zap.Logger) messaging.Handler[ResolutionEvent] {
	return func(ctx context.Context, event *ResolutionEvent) error {
		if event.Key == "" {
			return fmt.Errorf("resolution event without key (outcome %q)", event.Outcome)
		}

		if err := store.SaveResolution(ctx, event); err != nil {
			return fmt.Errorf("save resolution %s: %w", event.Key, err)
		}

		logger.Debug("stored resolution event",
			zap.String("key", event.Key),
			zap.String("outcome", event.Outcome),
		)

		return nil
	}
}
