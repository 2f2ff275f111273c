package linkid

import (
	"net/url"
	"strings"
)

// IsShortLink reports whether rawURL is a short-domain link with a single
// alphanumeric slug, optionally followed by a slash and/or query string.
func (m *Matcher) IsShortLink(rawURL string) bool {
	_, ok := m.Normalize(rawURL)

	return ok
}

// Normalize returns the lookup key (slug) of a short link. URLs that differ
// only by a trailing slash or query string share a key.
func (m *Matcher) Normalize(rawURL string) (string, bool) {
	rawURL = strings.TrimSpace(rawURL)

	match := m.short.FindStringSubmatch(rawURL)
	if match == nil {
		return "", false
	}

	if _, err := url.Parse(rawURL); err != nil {
		return "", false
	}

	return match[1], true
}

// ShortLinkURL rebuilds the request URL for a key. The trailing slash is
// always dropped: the short-link origin answers "/slug/" with a 200 page
// instead of a redirect.
func (m *Matcher) ShortLinkURL(key string) string {
	return "https://" + m.hosts.ShortDomain + "/" + key
}
