package resolver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
	"github.com/scavin/discourse-bilibili-onebox/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() resolver.Config {
	return resolver.Config{
		MaxRedirects: 5,
		HopTimeout:   time.Second,
		UserAgent:    "onebox-test/1.0",
	}
}

func newRedirects(cfg resolver.Config) *resolver.Redirects {
	return resolver.NewRedirects(http.DefaultClient, linkid.NewMatcher(linkid.DefaultHosts()), cfg)
}

func TestRedirects_Resolve(t *testing.T) {
	t.Run("stops at canonical video location", func(t *testing.T) {
		var hits atomic.Int32

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.Redirect(w, r, "https://www.bilibili.com/video/BV1xx411c7mD?share_source=copy", http.StatusFound)
		}))
		defer srv.Close()

		link, err := newRedirects(testConfig()).Resolve(context.Background(), srv.URL+"/abc123")

		require.NoError(t, err)
		assert.Equal(t, linkid.Link{Kind: linkid.KindVideo, ID: "BV1xx411c7mD"}, link)
		assert.Equal(t, int32(1), hits.Load())
	})

	t.Run("stops at live room location", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "https://live.bilibili.com/12345?broadcast_type=0", http.StatusMovedPermanently)
		}))
		defer srv.Close()

		link, err := newRedirects(testConfig()).Resolve(context.Background(), srv.URL+"/xyz")

		require.NoError(t, err)
		assert.Equal(t, linkid.Link{Kind: linkid.KindLive, ID: "12345"}, link)
	})

	t.Run("follows relative locations", func(t *testing.T) {
		var hits atomic.Int32

		mux := http.NewServeMux()
		mux.HandleFunc("/start", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Location", "/middle")
			w.WriteHeader(http.StatusMovedPermanently)
		})
		mux.HandleFunc("/middle", func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			w.Header().Set("Location", "https://m.bilibili.com/video/av170001")
			w.WriteHeader(http.StatusTemporaryRedirect)
		})

		srv := httptest.NewServer(mux)
		defer srv.Close()

		link, err := newRedirects(testConfig()).Resolve(context.Background(), srv.URL+"/start")

		require.NoError(t, err)
		assert.Equal(t, "av170001", link.ID)
		assert.Equal(t, int32(2), hits.Load())
	})

	t.Run("extracts from final page url", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/video/BV1ab", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html></html>"))
		})

		srv := httptest.NewServer(mux)
		defer srv.Close()

		hosts := linkid.DefaultHosts()
		hosts.VideoDomain = strings.TrimPrefix(srv.URL, "http://")

		redirects := resolver.NewRedirects(http.DefaultClient, linkid.NewMatcher(hosts), testConfig())

		link, err := redirects.Resolve(context.Background(), srv.URL+"/video/BV1ab")

		require.NoError(t, err)
		assert.Equal(t, "BV1ab", link.ID)
	})

	t.Run("not found when final page has no identifier", func(t *testing.T) {
		mux := http.NewServeMux()
		mux.HandleFunc("/s", func(w http.ResponseWriter, r *http.Request) {
			http.Redirect(w, r, "/home", http.StatusFound)
		})
		mux.HandleFunc("/home", func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte("<html></html>"))
		})

		srv := httptest.NewServer(mux)
		defer srv.Close()

		_, err := newRedirects(testConfig()).Resolve(context.Background(), srv.URL+"/s")

		require.ErrorIs(t, err, resolver.ErrNotFound)
		assert.Equal(t, "not_found", resolver.Outcome(err))
	})

	t.Run("gives up after max redirects", func(t *testing.T) {
		var hits atomic.Int32

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			hits.Add(1)
			http.Redirect(w, r, "/loop", http.StatusFound)
		}))
		defer srv.Close()

		_, err := newRedirects(testConfig()).Resolve(context.Background(), srv.URL+"/loop")

		require.ErrorIs(t, err, resolver.ErrNetwork)
		assert.Contains(t, err.Error(), "too many redirects")
		assert.Equal(t, int32(6), hits.Load())
	})

	t.Run("non-success status is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer srv.Close()

		_, err := newRedirects(testConfig()).Resolve(context.Background(), srv.URL+"/abc")

		var netErr *resolver.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Contains(t, netErr.Reason, "502")
	})

	t.Run("redirect without location is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusFound)
		}))
		defer srv.Close()

		_, err := newRedirects(testConfig()).Resolve(context.Background(), srv.URL+"/abc")

		require.ErrorIs(t, err, resolver.ErrNetwork)
	})

	t.Run("rejects non-http location", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.Header().Set("Location", "ftp://example.com/file")
			w.WriteHeader(http.StatusFound)
		}))
		defer srv.Close()

		_, err := newRedirects(testConfig()).Resolve(context.Background(), srv.URL+"/abc")

		require.ErrorIs(t, err, resolver.ErrNetwork)
	})

	t.Run("hop timeout is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-r.Context().Done():
			case <-time.After(2 * time.Second):
			}
		}))
		defer srv.Close()

		cfg := testConfig()
		cfg.HopTimeout = 50 * time.Millisecond

		_, err := newRedirects(cfg).Resolve(context.Background(), srv.URL+"/slow")

		require.ErrorIs(t, err, resolver.ErrNetwork)
		assert.Equal(t, "network_error", resolver.Outcome(err))
	})

	t.Run("sends user agent", func(t *testing.T) {
		var agent atomic.Value

		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			agent.Store(r.UserAgent())
			http.Redirect(w, r, "https://www.bilibili.com/video/BV1ua", http.StatusFound)
		}))
		defer srv.Close()

		_, err := newRedirects(testConfig()).Resolve(context.Background(), srv.URL+"/ua")

		require.NoError(t, err)
		assert.Equal(t, "onebox-test/1.0", agent.Load())
	})

	t.Run("unreachable host is a network error", func(t *testing.T) {
		srv := httptest.NewServer(http.NotFoundHandler())
		addr := srv.URL
		srv.Close()

		_, err := newRedirects(testConfig()).Resolve(context.Background(), addr+"/gone")

		require.ErrorIs(t, err, resolver.ErrNetwork)
	})
}
