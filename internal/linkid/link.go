package linkid

import "regexp"

// Kind names the type of content a canonical identifier points at.
type Kind string

const (
	KindVideo Kind = "video"
	KindLive  Kind = "live"
)

var (
	videoToken = regexp.MustCompile(`^[A-Za-z0-9]+$`)
	roomToken  = regexp.MustCompile(`^[0-9]+$`)
)

// Link is a canonical, embeddable identifier.
type Link struct {
	Kind Kind
	ID   string
}

// Valid reports whether the identifier matches the grammar of its kind.
func (l Link) Valid() bool {
	switch l.Kind {
	case KindVideo:
		return videoToken.MatchString(l.ID)
	case KindLive:
		return roomToken.MatchString(l.ID)
	default:
		return false
	}
}

// ValidToken reports whether id is well-formed for kind.
func ValidToken(kind Kind, id string) bool {
	return Link{Kind: kind, ID: id}.Valid()
}

// Hosts holds the site-specific domains the matchers are built from.
type Hosts struct {
	// ShortDomain is the exact host of the short-link service, e.g. "b23.tv".
	ShortDomain string
	// VideoDomain is the registrable video-site domain; "www." and "m."
	// variants are accepted on input.
	VideoDomain string
	// LiveHost is the live-streaming subdomain, e.g. "live.bilibili.com".
	LiveHost string
	// MarkerClass is the anchor class that flags an inline video reference.
	MarkerClass string
}

// DefaultHosts returns the production domains.
func DefaultHosts() Hosts {
	return Hosts{
		ShortDomain: "b23.tv",
		VideoDomain: "bilibili.com",
		LiveHost:    "live.bilibili.com",
		MarkerClass: "bilibili-onebox",
	}
}
