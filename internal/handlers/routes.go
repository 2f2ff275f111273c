package handlers

import (
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/scavin/discourse-bilibili-onebox/internal/ratelimit"
)

// RegisterRoutes registers the rewriting and resolution routes. Each of them
// can reach the short host or the live room API, so all share the resolve
// rate limit scope.
func RegisterRoutes(api huma.API, h *OneboxHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "apply-revision",
		Method:      http.MethodPost,
		Path:        "/revisions",
		Summary:     "Rewrite raw post content",
		Description: "Applies the pre-commit transforms, expanding standalone short and live links.",
		Tags:        []string{"Rewrite"},
		Metadata:    ratelimit.Metadata(ratelimit.ScopeResolve),
	}, h.ApplyRevision)

	huma.Register(api, huma.Operation{
		OperationID: "cook",
		Method:      http.MethodPost,
		Path:        "/cook",
		Summary:     "Rewrite rendered HTML",
		Description: "Replaces bare block links and marked anchors with player embeds.",
		Tags:        []string{"Rewrite"},
		Metadata:    ratelimit.Metadata(ratelimit.ScopeResolve),
	}, h.Cook)

	huma.Register(api, huma.Operation{
		OperationID: "onebox",
		Method:      http.MethodGet,
		Path:        "/onebox",
		Summary:     "Render embed for a link",
		Tags:        []string{"Links"},
		Metadata:    ratelimit.Metadata(ratelimit.ScopeResolve),
	}, h.Onebox)

	huma.Register(api, huma.Operation{
		OperationID: "resolve",
		Method:      http.MethodGet,
		Path:        "/resolve",
		Summary:     "Resolve a link to its canonical identifier",
		Tags:        []string{"Links"},
		Metadata:    ratelimit.Metadata(ratelimit.ScopeResolve),
	}, h.Resolve)

	huma.Register(api, huma.Operation{
		OperationID: "matchers",
		Method:      http.MethodGet,
		Path:        "/matchers",
		Summary:     "Describe recognized links",
		Description: "Returns the inline anchor pattern and hosts for registering host-side matchers.",
		Tags:        []string{"Links"},
	}, h.Matchers)
}

// RegisterAnalyticsRoutes registers the resolution statistics route.
func RegisterAnalyticsRoutes(api huma.API, h *AnalyticsHandler) {
	huma.Register(api, huma.Operation{
		OperationID: "resolution-stats",
		Method:      http.MethodGet,
		Path:        "/analytics/resolutions",
		Summary:     "Count resolutions of a cache key by outcome",
		Tags:        []string{"Analytics"},
	}, h.ResolutionStats)
}
