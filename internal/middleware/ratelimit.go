package middleware

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strconv"

	"github.com/danielgtaylor/huma/v2"
	"github.com/scavin/discourse-bilibili-onebox/internal/handlers"
	"github.com/scavin/discourse-bilibili-onebox/internal/ratelimit"
	"go.uber.org/zap"
)

// RateLimiter returns a Huma middleware that limits operations declaring a
// ratelimit scope, keyed by client IP and User-Agent. It reads the metadata
// set by RequestMeta, so it must be registered after it. A failing store
// lets the request through.
func RateLimiter(
	api huma.API,
	limiter *ratelimit.PolicyLimiter,
	logger *zap.Logger,
) func(ctx huma.Context, next func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		scopes := ratelimit.ScopesFor(ctx.Operation())
		if len(scopes) == 0 {
			next(ctx)

			return
		}

		meta := requestMeta(ctx)

		allowed, exceeded, err := limiter.Allow(ctx.Context(), clientKey(meta), scopes)
		if err != nil {
			logger.Error("rate limit check failed",
				zap.String("requestId", meta.RequestID),
				zap.String("path", operationPath(ctx)),
				zap.Error(err),
			)
			next(ctx)

			return
		}

		if !allowed {
			rejectExceeded(api, ctx, exceeded, meta, logger)

			return
		}

		next(ctx)
	}
}

func requestMeta(ctx huma.Context) handlers.RequestMeta {
	meta := handlers.RequestMetaFromContext(ctx.Context())
	if meta.ClientIP == "" {
		meta.ClientIP = extractClientIP(ctx)
		meta.UserAgent = ctx.Header("User-Agent")
	}

	return meta
}

func clientKey(meta handlers.RequestMeta) string {
	hash := sha256.Sum256([]byte(meta.ClientIP + "|" + meta.UserAgent))

	return hex.EncodeToString(hash[:])
}

func operationPath(ctx huma.Context) string {
	if op := ctx.Operation(); op != nil {
		return op.Path
	}

	return ""
}

func rejectExceeded(
	api huma.API,
	ctx huma.Context,
	exceeded *ratelimit.LimitExceeded,
	meta handlers.RequestMeta,
	logger *zap.Logger,
) {
	logger.Warn("rate limit exceeded",
		zap.String("requestId", meta.RequestID),
		zap.String("path", operationPath(ctx)),
		zap.String("scope", string(exceeded.Scope)),
		zap.Int64("count", exceeded.Count),
		zap.Int64("max", exceeded.Config.Max),
		zap.Duration("window", exceeded.Config.Window),
		zap.String("client_ip", meta.ClientIP),
		zap.String("user_agent", meta.UserAgent),
		zap.String("referrer", meta.Referrer),
	)

	ctx.SetHeader("Retry-After", strconv.Itoa(int(exceeded.Config.Window.Seconds())))

	msg := fmt.Sprintf("rate limit exceeded: %d/%d requests in %s",
		exceeded.Count, exceeded.Config.Max, exceeded.Config.Window)
	_ = huma.WriteErr(api, ctx, http.StatusTooManyRequests, msg)
}
