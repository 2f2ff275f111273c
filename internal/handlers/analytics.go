package handlers

import (
	"context"

	"github.com/danielgtaylor/huma/v2"
	"github.com/scavin/discourse-bilibili-onebox/internal/analytics"
	"go.uber.org/zap"
)

// AnalyticsHandler reports on stored resolution events.
type AnalyticsHandler struct {
	reporter analytics.Reporter
	logger   *zap.Logger
}

// NewAnalyticsHandler creates a new analytics handler.
func NewAnalyticsHandler(reporter analytics.Reporter, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{reporter: reporter, logger: logger}
}

func (h *AnalyticsHandler) ResolutionStats(
	ctx context.Context, req *ResolutionStatsRequest,
) (*ResolutionStatsResponse, error) {
	counts, err := h.reporter.CountByOutcome(ctx, req.Key)
	if err != nil {
		h.logger.Error("failed to count resolutions",
			zap.String("requestId", RequestMetaFromContext(ctx).RequestID),
			zap.String("key", req.Key),
			zap.Error(err),
		)

		return nil, huma.Error500InternalServerError("failed to count resolutions")
	}

	resp := &ResolutionStatsResponse{}
	resp.Body.Key = req.Key
	resp.Body.Counts = counts

	return resp, nil
}
