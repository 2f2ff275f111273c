package linkid

// TargetKind is the closed set of link variants the resolver understands.
type TargetKind int

const (
	// TargetVideo is a canonical video URL; the id is read straight from it.
	TargetVideo TargetKind = iota + 1
	// TargetLive is a /blanc/<id> bare-player live URL.
	TargetLive
	// TargetShortLink is a short-domain slug resolved by following redirects.
	TargetShortLink
	// TargetLiveShortLink is a /<id> live URL whose id may be a short room
	// alias that the room API maps to the real id.
	TargetLiveShortLink
)

func (k TargetKind) String() string {
	switch k {
	case TargetVideo:
		return "video"
	case TargetLive:
		return "live"
	case TargetShortLink:
		return "short_link"
	case TargetLiveShortLink:
		return "live_short_link"
	default:
		return "unknown"
	}
}

// Target is a classified link: its variant plus the token that variant
// extracts (video id, room id or short-link slug).
type Target struct {
	Kind  TargetKind
	Value string
}

// CacheKey is the resolution cache key for the target. Canonical video
// links need no network resolution and have no key.
func (t Target) CacheKey() string {
	switch t.Kind {
	case TargetShortLink:
		return "short:" + t.Value
	case TargetLive, TargetLiveShortLink:
		return LiveCacheKey(t.Value)
	default:
		return ""
	}
}

// LiveCacheKey is the cache key for a room id.
func LiveCacheKey(roomID string) string {
	return "live:" + roomID
}

// Classify decides which variant rawURL belongs to in one step.
func (m *Matcher) Classify(rawURL string) (Target, bool) {
	if slug, ok := m.Normalize(rawURL); ok {
		return Target{Kind: TargetShortLink, Value: slug}, true
	}

	if id, ok := m.VideoID(rawURL); ok {
		return Target{Kind: TargetVideo, Value: id}, true
	}

	if id, blanc, ok := m.liveRoom(rawURL); ok {
		if blanc {
			return Target{Kind: TargetLive, Value: id}, true
		}

		return Target{Kind: TargetLiveShortLink, Value: id}, true
	}

	return Target{}, false
}
