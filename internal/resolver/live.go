package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

// DefaultLiveAPIBase is the origin of the room info API.
const DefaultLiveAPIBase = "https://api.live.bilibili.com"

const roomInfoPath = "room/v1/Room/get_info"

// LiveRooms maps a (possibly short) live room id to the persistent room id.
type LiveRooms struct {
	client  *http.Client
	apiBase string
	cfg     Config
}

// NewLiveRooms creates a room resolver against apiBase.
func NewLiveRooms(client *http.Client, apiBase string, cfg Config) *LiveRooms {
	if apiBase == "" {
		apiBase = DefaultLiveAPIBase
	}

	return &LiveRooms{
		client:  noFollow(client),
		apiBase: apiBase,
		cfg:     cfg.withDefaults(),
	}
}

type roomInfoResponse struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

type roomInfo struct {
	RoomID  *int64 `json:"room_id"`
	ShortID int64  `json:"short_id"`
}

// Resolve looks roomID up and returns the real room id.
func (l *LiveRooms) Resolve(ctx context.Context, roomID string) (string, error) {
	endpoint, err := l.endpoint(roomID)
	if err != nil {
		return "", networkError(l.apiBase, "malformed api base", err)
	}

	body, err := l.fetch(ctx, endpoint)
	if err != nil {
		return "", err
	}

	var resp roomInfoResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", networkError(endpoint, "malformed json", err)
	}

	// Failed lookups carry "data": [] rather than an object.
	if resp.Code != 0 {
		return "", fmt.Errorf("room %s: code %d %q: %w", roomID, resp.Code, resp.Message, ErrNotFound)
	}

	var info roomInfo
	if err := json.Unmarshal(resp.Data, &info); err != nil {
		return "", networkError(endpoint, "malformed room data", err)
	}

	if info.RoomID == nil || *info.RoomID <= 0 {
		return "", fmt.Errorf("room %s: missing room_id: %w", roomID, ErrNotFound)
	}

	return strconv.FormatInt(*info.RoomID, 10), nil
}

func (l *LiveRooms) endpoint(roomID string) (string, error) {
	base, err := url.Parse(l.apiBase)
	if err != nil {
		return "", err
	}

	u := base.JoinPath(roomInfoPath)
	q := u.Query()
	q.Set("room_id", roomID)
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (l *LiveRooms) fetch(ctx context.Context, endpoint string) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, l.cfg.HopTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, networkError(endpoint, "malformed url", err)
	}

	req.Header.Set("User-Agent", l.cfg.UserAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := l.client.Do(req)
	if err != nil {
		return nil, networkError(endpoint, "request failed", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, networkError(endpoint, "unexpected status "+strconv.Itoa(resp.StatusCode), nil)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, networkError(endpoint, "reading body", err)
	}

	return body, nil
}
