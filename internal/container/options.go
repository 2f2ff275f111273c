package container

import "fmt"

// Options configures the server. humacli reads them from flags and
// SERVICE_* environment variables.
type Options struct {
	Port      int    `default:"8888"    help:"Port to listen on"          short:"p"`
	LogFormat string `default:"console" help:"Log format: console or json"`

	CacheBackend string `default:"memory"         help:"Resolution cache: memory, redis or layered"`
	CacheSize    int    `default:"10000"          help:"Entries kept by the in-memory cache"`
	RedisAddr    string `default:"localhost:6379" help:"Redis server address"                      short:"r"`

	Analytics   string `default:"none" help:"Resolution events: none, memory or redis"`
	DatabaseURL string `default:""     help:"Postgres URL for stored resolution events"`

	ShortDomain  string `default:"b23.tv"                       help:"Short-link host"`
	VideoDomain  string `default:"bilibili.com"                 help:"Video site domain"`
	LiveHost     string `default:"live.bilibili.com"            help:"Live-streaming host"`
	LiveAPIBase  string `default:"https://api.live.bilibili.com" help:"Live room API origin"`
	MarkerClass  string `default:"bilibili-onebox"              help:"Anchor class marking an inline embed"`
	MaxRedirects int    `default:"5"                            help:"Redirects followed per short link"`
	HopTimeoutMs int    `default:"5000"                         help:"Timeout per outbound request in milliseconds"`
	UserAgent    string `default:""                             help:"User-Agent for outbound requests"`

	RateLimitPerMinute int64 `default:"60"   help:"Resolving requests per client per minute, 0 disables"`
	RateLimitPerHour   int64 `default:"1000" help:"Resolving requests per client per hour, 0 disables"`
}

const (
	CacheMemory  = "memory"
	CacheRedis   = "redis"
	CacheLayered = "layered"

	AnalyticsNone   = "none"
	AnalyticsMemory = "memory"
	AnalyticsRedis  = "redis"
)

// Validate rejects unknown backends.
func (o *Options) Validate() error {
	switch o.CacheBackend {
	case CacheMemory, CacheRedis, CacheLayered:
	default:
		return fmt.Errorf("unknown cache backend %q", o.CacheBackend)
	}

	switch o.Analytics {
	case AnalyticsNone, AnalyticsMemory, AnalyticsRedis:
	default:
		return fmt.Errorf("unknown analytics mode %q", o.Analytics)
	}

	if o.RateLimitPerMinute < 0 || o.RateLimitPerHour < 0 {
		return fmt.Errorf("rate limits must not be negative")
	}

	if o.MaxRedirects < 0 {
		return fmt.Errorf("max redirects must not be negative, got %d", o.MaxRedirects)
	}

	return nil
}

// UsesRedis reports whether any configured component talks to Redis.
func (o *Options) UsesRedis() bool {
	return o.CacheBackend == CacheRedis || o.CacheBackend == CacheLayered || o.Analytics == AnalyticsRedis
}

// RateLimited reports whether resolving routes are rate limited.
func (o *Options) RateLimited() bool {
	return o.RateLimitPerMinute > 0 || o.RateLimitPerHour > 0
}
