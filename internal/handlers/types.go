package handlers

// ApplyRevisionRequest is the request body for rewriting raw post content.
type ApplyRevisionRequest struct {
	Body struct {
		PostID string `doc:"Post the revision belongs to" example:"1042"                    json:"postId,omitempty"`
		Action string `doc:"create or edit"               enum:"create,edit" example:"create" json:"action,omitempty"`
		Raw    string `doc:"Raw post content"             example:"https://b23.tv/ab12CD"      json:"raw"`
	}
}

// ApplyRevisionResponse carries the content to persist.
type ApplyRevisionResponse struct {
	Body struct {
		PostID  string `doc:"Post the revision belongs to"             json:"postId,omitempty"`
		Raw     string `doc:"Rewritten raw content"                    json:"raw"`
		Changed bool   `doc:"Whether any transform altered the content" json:"changed"`
	}
}

// CookRequest is the request body for rewriting rendered HTML.
type CookRequest struct {
	Body struct {
		HTML string `doc:"Rendered post HTML" json:"html" maxLength:"1048576"`
	}
}

// CookResponse is the rewritten HTML.
type CookResponse struct {
	Body struct {
		HTML     string `doc:"HTML with embeds"           json:"html"`
		Replaced int    `doc:"Number of anchors replaced" json:"replaced"`
	}
}

// LinkRequest names a single link URL.
type LinkRequest struct {
	URL string `doc:"Link to resolve" example:"https://b23.tv/ab12CD" query:"url" required:"true"`
}

// OneboxResponse is the embed fragment for one link.
type OneboxResponse struct {
	Body struct {
		HTML string `doc:"Player iframe markup" json:"html"`
	}
}

// ResolveResponse is the canonical form of one link.
type ResolveResponse struct {
	Body struct {
		Kind         string `doc:"video or live"          example:"video"                                      json:"kind"`
		ID           string `doc:"Canonical identifier"   example:"BV1xyz456"                                  json:"id"`
		CanonicalURL string `doc:"Long-form canonical URL" example:"https://www.bilibili.com/video/BV1xyz456" json:"canonicalUrl"`
	}
}

// MatchersResponse describes what the service recognizes, so a host can
// register its own link matchers.
type MatchersResponse struct {
	Body struct {
		InlinePattern string `doc:"Regexp matching marked inline anchors" json:"inlinePattern"`
		ShortDomain   string `doc:"Short-link host"                       json:"shortDomain"`
		VideoDomain   string `doc:"Video site domain"                     json:"videoDomain"`
		LiveHost      string `doc:"Live-streaming host"                   json:"liveHost"`
		MarkerClass   string `doc:"Anchor class marking an inline embed"  json:"markerClass"`
	}
}

// ResolutionStatsRequest names a cache key such as short:ab12CD.
type ResolutionStatsRequest struct {
	Key string `doc:"Resolution cache key" example:"short:ab12CD" query:"key" required:"true"`
}

// ResolutionStatsResponse counts recorded resolutions per outcome.
type ResolutionStatsResponse struct {
	Body struct {
		Key    string           `doc:"Resolution cache key" json:"key"`
		Counts map[string]int64 `doc:"Events per outcome"   json:"counts"`
	}
}
