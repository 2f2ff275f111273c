package middleware

import (
	"strings"

	"github.com/danielgtaylor/huma/v2"
	"github.com/jaevor/go-nanoid"
	"github.com/scavin/discourse-bilibili-onebox/internal/handlers"
)

// RequestIDHeader carries the request id in and out.
const RequestIDHeader = "X-Request-ID"

const requestIDLength = 12

// RequestMeta is a middleware that adds a request id, client IP, user-agent
// and referrer to the request context. An incoming X-Request-ID is kept;
// otherwise one is generated. The id is echoed on the response.
func RequestMeta(_ huma.API) func(ctx huma.Context, next func(huma.Context)) {
	// Standard only fails for lengths outside 2..255.
	newID, _ := nanoid.Standard(requestIDLength)

	return func(ctx huma.Context, next func(huma.Context)) {
		id := strings.TrimSpace(ctx.Header(RequestIDHeader))
		if id == "" || len(id) > 64 {
			id = newID()
		}

		meta := handlers.RequestMeta{
			RequestID: id,
			ClientIP:  extractClientIP(ctx),
			UserAgent: ctx.Header("User-Agent"),
			Referrer:  ctx.Header("Referer"),
		}

		ctx.SetHeader(RequestIDHeader, id)

		newCtx := handlers.ContextWithRequestMeta(ctx.Context(), meta)
		ctx = huma.WithContext(ctx, newCtx)

		next(ctx)
	}
}

func extractClientIP(ctx huma.Context) string {
	// Check X-Forwarded-For first (may contain multiple IPs)
	if xff := ctx.Header("X-Forwarded-For"); xff != "" {
		// Take the first IP (original client)
		if idx := strings.Index(xff, ","); idx != -1 {
			return strings.TrimSpace(xff[:idx])
		}

		return strings.TrimSpace(xff)
	}

	if xri := ctx.Header("X-Real-IP"); xri != "" {
		return xri
	}

	host := ctx.RemoteAddr()
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}

	return host
}
