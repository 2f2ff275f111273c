package resolver

import (
	"net/http"
	"time"
)

const (
	// CacheTTL is how long a successful resolution is reused.
	CacheTTL = 24 * time.Hour

	DefaultMaxRedirects = 5
	DefaultHopTimeout   = 5 * time.Second
	DefaultUserAgent    = "Mozilla/5.0 (compatible; discourse-bilibili-onebox/1.0; " +
		"+https://github.com/scavin/discourse-bilibili-onebox)"

	maxBodyBytes = 1 << 20
)

// Config bounds every outbound resolution.
type Config struct {
	// MaxRedirects is the number of redirects followed before giving up.
	MaxRedirects int
	// HopTimeout bounds each individual request.
	HopTimeout time.Duration
	UserAgent  string
}

// DefaultConfig returns the production limits.
func DefaultConfig() Config {
	return Config{
		MaxRedirects: DefaultMaxRedirects,
		HopTimeout:   DefaultHopTimeout,
		UserAgent:    DefaultUserAgent,
	}
}

// Budget is the longest one short-link resolution can take. Following
// MaxRedirects redirects takes MaxRedirects+1 requests, each bounded by
// HopTimeout.
func (c Config) Budget() time.Duration {
	c = c.withDefaults()

	return time.Duration(c.MaxRedirects+1) * c.HopTimeout
}

func (c Config) withDefaults() Config {
	if c.MaxRedirects < 0 {
		c.MaxRedirects = 0
	}

	if c.HopTimeout <= 0 {
		c.HopTimeout = DefaultHopTimeout
	}

	if c.UserAgent == "" {
		c.UserAgent = DefaultUserAgent
	}

	return c
}

// NewHTTPClient returns a client that never follows redirects on its own;
// the resolvers count hops themselves.
func NewHTTPClient() *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:               http.ProxyFromEnvironment,
			MaxIdleConns:        20,
			MaxIdleConnsPerHost: 5,
			IdleConnTimeout:     30 * time.Second,
			TLSHandshakeTimeout: DefaultHopTimeout,
		},
		CheckRedirect: func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

func noFollow(client *http.Client) *http.Client {
	if client == nil {
		return NewHTTPClient()
	}

	c := *client
	c.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}

	return &c
}
