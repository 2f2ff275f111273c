package container_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielgtaylor/huma/v2"
	"github.com/go-chi/chi/v5"
	"github.com/samber/do"
	"github.com/scavin/discourse-bilibili-onebox/internal/analytics"
	"github.com/scavin/discourse-bilibili-onebox/internal/container"
	"github.com/scavin/discourse-bilibili-onebox/internal/messaging"
	"github.com/scavin/discourse-bilibili-onebox/internal/resolver"
	"github.com/scavin/discourse-bilibili-onebox/internal/revision"
	"github.com/scavin/discourse-bilibili-onebox/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func testOptions() *container.Options {
	return &container.Options{
		Port:         8888,
		LogFormat:    "console",
		CacheBackend: container.CacheMemory,
		CacheSize:    100,
		RedisAddr:    "localhost:6379",
		Analytics:    container.AnalyticsMemory,
		ShortDomain:  "b23.tv",
		VideoDomain:  "bilibili.com",
		LiveHost:     "live.bilibili.com",
		LiveAPIBase:  resolver.DefaultLiveAPIBase,
		MarkerClass:  "bilibili-onebox",
		MaxRedirects: 5,
		HopTimeoutMs: 1000,
	}
}

func newInjector(t *testing.T, opts *container.Options) *do.Injector {
	t.Helper()

	injector := do.New()
	do.ProvideValue(injector, opts)
	do.ProvideValue(injector, zap.NewNop())
	container.RedisPackage(injector)
	container.PostgresPackage(injector)
	container.CachePackage(injector)
	container.PublisherGroupPackage(injector)
	container.AnalyticsStorePackage(injector)
	container.ConsumerGroupPackage(injector)
	container.ResolverPackage(injector)
	container.RewritePackage(injector)
	container.RateLimitPackage(injector)
	container.HTTPPackage(injector)

	t.Cleanup(func() { _ = injector.Shutdown() })

	return injector
}

func TestOptions_Validate(t *testing.T) {
	t.Run("defaults are valid", func(t *testing.T) {
		assert.NoError(t, testOptions().Validate())
	})

	t.Run("unknown cache backend", func(t *testing.T) {
		opts := testOptions()
		opts.CacheBackend = "memcached"

		assert.Error(t, opts.Validate())
	})

	t.Run("unknown analytics mode", func(t *testing.T) {
		opts := testOptions()
		opts.Analytics = "kafka"

		assert.Error(t, opts.Validate())
	})

	t.Run("negative rate limit", func(t *testing.T) {
		opts := testOptions()
		opts.RateLimitPerMinute = -1

		assert.Error(t, opts.Validate())
	})

	t.Run("negative redirects", func(t *testing.T) {
		opts := testOptions()
		opts.MaxRedirects = -1

		assert.Error(t, opts.Validate())
	})
}

func TestHTTPPackage(t *testing.T) {
	injector := newInjector(t, testOptions())

	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	t.Run("health", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"cache":"healthy"`)
		assert.NotContains(t, w.Body.String(), `"redis"`)
		assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	})

	t.Run("matchers", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/matchers", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"markerClass":"bilibili-onebox"`)
	})

	t.Run("resolution stats without database", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/analytics/resolutions?key=short:abc", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"counts":{}`)
	})

	t.Run("resolve canonical video without network", func(t *testing.T) {
		w := httptest.NewRecorder()
		router.ServeHTTP(w, httptest.NewRequest(http.MethodGet,
			"/resolve?url=https://www.bilibili.com/video/BV1xx411c7mD", nil))

		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"id":"BV1xx411c7mD"`)
	})
}

func TestHTTPPackage_RedisHealth(t *testing.T) {
	opts := testOptions()
	opts.Analytics = container.AnalyticsRedis
	opts.RedisAddr = "127.0.0.1:1"

	injector := newInjector(t, opts)

	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"degraded"`)
	assert.Contains(t, w.Body.String(), `"redis":"unhealthy"`)
	assert.Contains(t, w.Body.String(), `"cache":"healthy"`)
}

func TestHTTPPackage_RateLimit(t *testing.T) {
	opts := testOptions()
	opts.RateLimitPerMinute = 2

	injector := newInjector(t, opts)

	router := do.MustInvoke[*chi.Mux](injector)
	_ = do.MustInvoke[huma.API](injector)

	resolve := func() int {
		req := httptest.NewRequest(http.MethodGet, "/resolve?url=https://www.bilibili.com/video/BV1xx411c7mD", nil)
		req.Header.Set("X-Forwarded-For", "198.51.100.7")

		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)

		return w.Code
	}

	assert.Equal(t, http.StatusOK, resolve())
	assert.Equal(t, http.StatusOK, resolve())
	assert.Equal(t, http.StatusTooManyRequests, resolve())

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRewritePackage_RevisionChain(t *testing.T) {
	injector := newInjector(t, testOptions())

	chain := do.MustInvoke[*revision.Chain](injector)

	assert.Equal(t, []string{container.TransformExpandShortLinks}, chain.Names())

	rev := chain.Apply(context.Background(), revision.Revision{Raw: "plain text\n"})
	assert.Equal(t, "plain text\n", rev.Raw)
}

func TestCachePackage_Memory(t *testing.T) {
	injector := newInjector(t, testOptions())

	cache := do.MustInvoke[resolver.Cache](injector)

	_, ok := cache.(*store.MemoryCache)
	assert.True(t, ok)
}

func TestInProcessAnalytics(t *testing.T) {
	injector := newInjector(t, testOptions())

	group := do.MustInvoke[*messaging.ConsumerGroup](injector)
	require.NoError(t, group.Start(context.Background()))
	assert.Equal(t, 1, group.Len())

	publishers := do.MustInvoke[*messaging.PublisherGroup](injector)
	require.True(t, publishers.Enabled())

	publish := messaging.PublishFor[analytics.ResolutionEvent](publishers, analytics.TopicLinkResolved)
	err := publish(&analytics.ResolutionEvent{
		Key:        "short:abc",
		Target:     "short_link",
		Outcome:    "resolved",
		ResolvedAt: time.Now(),
	})

	assert.NoError(t, err)
}

func TestPublisherGroupPackage_None(t *testing.T) {
	opts := testOptions()
	opts.Analytics = container.AnalyticsNone

	injector := newInjector(t, opts)

	publishers := do.MustInvoke[*messaging.PublisherGroup](injector)
	group := do.MustInvoke[*messaging.ConsumerGroup](injector)

	assert.False(t, publishers.Enabled())
	assert.Equal(t, 0, group.Len())
}
