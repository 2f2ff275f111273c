package resolver

import (
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
)

// Redirects expands short links by following HTTP redirects hop by hop.
type Redirects struct {
	client  *http.Client
	matcher *linkid.Matcher
	cfg     Config
}

// NewRedirects creates a redirect resolver. The client's own redirect policy
// is replaced so every hop is counted here.
func NewRedirects(client *http.Client, matcher *linkid.Matcher, cfg Config) *Redirects {
	return &Redirects{
		client:  noFollow(client),
		matcher: matcher,
		cfg:     cfg.withDefaults(),
	}
}

// Resolve follows redirects from rawURL and extracts the canonical link from
// where they end. It returns ErrNotFound when the final URL carries no
// identifier and a *NetworkError for anything else that goes wrong. The whole
// chain is bounded by Config.Budget.
func (r *Redirects) Resolve(ctx context.Context, rawURL string) (linkid.Link, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.Budget())
	defer cancel()

	current, err := url.Parse(rawURL)
	if err != nil {
		return linkid.Link{}, networkError(rawURL, "malformed url", err)
	}

	hops := 0

	for {
		status, location, err := r.hop(ctx, current)
		if err != nil {
			return linkid.Link{}, networkError(current.String(), "request failed", err)
		}

		if !isRedirect(status) {
			if status < http.StatusOK || status >= http.StatusMultipleChoices {
				return linkid.Link{}, networkError(current.String(), "unexpected status "+strconv.Itoa(status), nil)
			}

			if link, ok := r.matcher.Extract(current.String()); ok {
				return link, nil
			}

			return linkid.Link{}, ErrNotFound
		}

		if location == "" {
			return linkid.Link{}, networkError(current.String(), "redirect without location", nil)
		}

		hops++
		if hops > r.cfg.MaxRedirects {
			return linkid.Link{}, networkError(rawURL, "too many redirects", nil)
		}

		next, err := current.Parse(location)
		if err != nil {
			return linkid.Link{}, networkError(current.String(), "malformed location", err)
		}

		if next.Scheme != "http" && next.Scheme != "https" {
			return linkid.Link{}, networkError(next.String(), "unsupported scheme", nil)
		}

		current = next

		// The identifier is in the URL itself; fetching the page adds nothing.
		if link, ok := r.matcher.Extract(current.String()); ok {
			return link, nil
		}
	}
}

func (r *Redirects) hop(ctx context.Context, target *url.URL) (int, string, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.HopTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return 0, "", err
	}

	req.Header.Set("User-Agent", r.cfg.UserAgent)

	resp, err := r.client.Do(req)
	if err != nil {
		return 0, "", err
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))

	return resp.StatusCode, resp.Header.Get("Location"), nil
}

func isRedirect(status int) bool {
	switch status {
	case http.StatusMovedPermanently, http.StatusFound, http.StatusSeeOther,
		http.StatusTemporaryRedirect, http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}
