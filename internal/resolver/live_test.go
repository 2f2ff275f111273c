package resolver_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/scavin/discourse-bilibili-onebox/internal/resolver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRoomAPI(t *testing.T, status int, body string) (*httptest.Server, <-chan *http.Request) {
	t.Helper()

	captured := make(chan *http.Request, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case captured <- r.Clone(context.Background()):
		default:
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)

	return srv, captured
}

func TestLiveRooms_Resolve(t *testing.T) {
	t.Run("returns persistent room id", func(t *testing.T) {
		srv, requests := newRoomAPI(t, http.StatusOK,
			`{"code":0,"msg":"ok","message":"ok","data":{"room_id":999999,"short_id":12345,"uid":1}}`)

		rooms := resolver.NewLiveRooms(http.DefaultClient, srv.URL, testConfig())

		id, err := rooms.Resolve(context.Background(), "12345")

		require.NoError(t, err)

		req := <-requests
		assert.Equal(t, "999999", id)
		assert.Equal(t, "/room/v1/Room/get_info", req.URL.Path)
		assert.Equal(t, "12345", req.URL.Query().Get("room_id"))
		assert.Equal(t, "application/json", req.Header.Get("Accept"))
		assert.Equal(t, "onebox-test/1.0", req.Header.Get("User-Agent"))
	})

	t.Run("unknown room is not found", func(t *testing.T) {
		srv, _ := newRoomAPI(t, http.StatusOK, `{"code":60004,"msg":"room not found","message":"room not found","data":[]}`)

		rooms := resolver.NewLiveRooms(http.DefaultClient, srv.URL, testConfig())

		_, err := rooms.Resolve(context.Background(), "1")

		require.ErrorIs(t, err, resolver.ErrNotFound)
		assert.NotErrorIs(t, err, resolver.ErrNetwork)
	})

	t.Run("missing room id is not found", func(t *testing.T) {
		srv, _ := newRoomAPI(t, http.StatusOK, `{"code":0,"data":{"short_id":5}}`)

		rooms := resolver.NewLiveRooms(http.DefaultClient, srv.URL, testConfig())

		_, err := rooms.Resolve(context.Background(), "5")

		require.ErrorIs(t, err, resolver.ErrNotFound)
	})

	t.Run("malformed json is a network error", func(t *testing.T) {
		srv, _ := newRoomAPI(t, http.StatusOK, `{"code":0,"data":`)

		rooms := resolver.NewLiveRooms(http.DefaultClient, srv.URL, testConfig())

		_, err := rooms.Resolve(context.Background(), "5")

		require.ErrorIs(t, err, resolver.ErrNetwork)
	})

	t.Run("non-200 is a network error", func(t *testing.T) {
		srv, _ := newRoomAPI(t, http.StatusServiceUnavailable, `{}`)

		rooms := resolver.NewLiveRooms(http.DefaultClient, srv.URL, testConfig())

		_, err := rooms.Resolve(context.Background(), "5")

		var netErr *resolver.NetworkError
		require.ErrorAs(t, err, &netErr)
		assert.Contains(t, netErr.Reason, "503")
	})

	t.Run("api base with path prefix", func(t *testing.T) {
		srv, requests := newRoomAPI(t, http.StatusOK, `{"code":0,"data":{"room_id":7}}`)

		rooms := resolver.NewLiveRooms(http.DefaultClient, srv.URL+"/proxy/", testConfig())

		id, err := rooms.Resolve(context.Background(), "7")

		require.NoError(t, err)

		req := <-requests
		assert.Equal(t, "7", id)
		assert.Equal(t, "/proxy/room/v1/Room/get_info", req.URL.Path)
	})
}
