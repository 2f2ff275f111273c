// Package linkid recognizes video, live-room and short links and extracts
// their identifiers. Everything here is pure: no I/O, no errors, malformed
// input simply does not match.
package linkid

import (
	"regexp"
	"strings"
)

// Matcher holds the compiled patterns for one set of Hosts.
type Matcher struct {
	hosts  Hosts
	video  *regexp.Regexp
	live   *regexp.Regexp
	short  *regexp.Regexp
	inline *regexp.Regexp
}

// NewMatcher compiles the link patterns for hosts.
func NewMatcher(hosts Hosts) *Matcher {
	videoHost := `(?i:https?://(?:www\.|m\.)?` + regexp.QuoteMeta(hosts.VideoDomain) + `)`
	videoHref := videoHost + `/video/([A-Za-z0-9]+)(?:[/?#][^"'\s>]*)?`
	marker := `(?:[^"']*\s)?` + regexp.QuoteMeta(hosts.MarkerClass) + `(?:\s[^"']*)?`

	hrefFirst := `<a\s(?:[^>]*?\s)?href=["']` + videoHref + `["'][^>]*?\sclass=["']` + marker + `["']`
	classFirst := `<a\s(?:[^>]*?\s)?class=["']` + marker + `["'][^>]*?\shref=["']` + videoHref + `["']`

	return &Matcher{
		hosts: hosts,
		video: regexp.MustCompile(`^` + videoHost + `/video/([A-Za-z0-9]+)(?:[/?#].*)?$`),
		live: regexp.MustCompile(
			`^(?i:https?://` + regexp.QuoteMeta(hosts.LiveHost) + `)/(blanc/)?([0-9]+)(?:[/?#].*)?$`,
		),
		short: regexp.MustCompile(
			`^(?i:https?://` + regexp.QuoteMeta(hosts.ShortDomain) + `)/([A-Za-z0-9]+)/?(?:\?.*)?$`,
		),
		inline: regexp.MustCompile(hrefFirst + `|` + classFirst),
	}
}

// Hosts returns the domains the matcher was built for.
func (m *Matcher) Hosts() Hosts {
	return m.hosts
}

// VideoID extracts the token from a canonical video URL.
func (m *Matcher) VideoID(rawURL string) (string, bool) {
	match := m.video.FindStringSubmatch(strings.TrimSpace(rawURL))
	if match == nil {
		return "", false
	}

	return match[1], true
}

// LiveRoomID extracts the numeric room id from a canonical live URL, either
// /<id> or /blanc/<id>.
func (m *Matcher) LiveRoomID(rawURL string) (string, bool) {
	id, _, ok := m.liveRoom(rawURL)

	return id, ok
}

func (m *Matcher) liveRoom(rawURL string) (id string, blanc bool, ok bool) {
	match := m.live.FindStringSubmatch(strings.TrimSpace(rawURL))
	if match == nil {
		return "", false, false
	}

	return match[2], match[1] != "", true
}

// InlinePattern is the single composite pattern matching an anchor fragment
// that points at a canonical video URL and carries the marker class, in
// either attribute order. Submatch 1 or 2 holds the video token.
func (m *Matcher) InlinePattern() *regexp.Regexp {
	return m.inline
}

// InlineVideoID extracts the video token from an inline anchor reference.
func (m *Matcher) InlineVideoID(fragment string) (string, bool) {
	match := m.inline.FindStringSubmatch(fragment)
	if match == nil {
		return "", false
	}

	for _, group := range match[1:] {
		if group != "" {
			return group, true
		}
	}

	return "", false
}

// Extract returns the canonical link encoded directly in rawURL, trying the
// video form first and then the live form.
func (m *Matcher) Extract(rawURL string) (Link, bool) {
	if id, ok := m.VideoID(rawURL); ok {
		return Link{Kind: KindVideo, ID: id}, true
	}

	if id, ok := m.LiveRoomID(rawURL); ok {
		return Link{Kind: KindLive, ID: id}, true
	}

	return Link{}, false
}

// CanonicalURL renders the long-form URL for link.
func (m *Matcher) CanonicalURL(link Link) string {
	switch link.Kind {
	case KindVideo:
		return "https://www." + m.hosts.VideoDomain + "/video/" + link.ID
	case KindLive:
		return "https://" + m.hosts.LiveHost + "/" + link.ID
	default:
		return ""
	}
}
