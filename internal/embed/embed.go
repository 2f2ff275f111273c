// Package embed renders player iframes for canonical links.
package embed

import (
	"fmt"
	"html"
	"net/url"
	"regexp"

	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
)

const (
	DefaultVideoPlayerURL = "https://player.bilibili.com/player.html"
	DefaultLivePlayerURL  = "https://www.bilibili.com/blackboard/live/live-activity-player.html"
	DefaultHeight         = 430
)

// Legacy numeric video ids use the aid parameter instead of bvid.
var avID = regexp.MustCompile(`^(?i:av)([0-9]+)$`)

// Templates holds the player endpoints. Fragment output depends only on
// these and the link.
type Templates struct {
	VideoPlayerURL string
	LivePlayerURL  string
	Height         int
}

// DefaultTemplates returns the public player endpoints.
func DefaultTemplates() Templates {
	return Templates{
		VideoPlayerURL: DefaultVideoPlayerURL,
		LivePlayerURL:  DefaultLivePlayerURL,
		Height:         DefaultHeight,
	}
}

// Fragment returns the iframe markup for the given link. It reports false
// when id does not satisfy the token grammar of kind.
func (t Templates) Fragment(kind linkid.Kind, id string) (string, bool) {
	if !linkid.ValidToken(kind, id) {
		return "", false
	}

	src, ok := t.playerURL(kind, id)
	if !ok {
		return "", false
	}

	height := t.Height
	if height <= 0 {
		height = DefaultHeight
	}

	return fmt.Sprintf(
		`<iframe src='%s' scrolling='no' border='0' frameborder='no' framespacing='0' `+
			`width='100%%' height='%d' allowfullscreen='true'></iframe>`,
		html.EscapeString(src), height,
	), true
}

// Link is Fragment for a linkid.Link.
func (t Templates) Link(link linkid.Link) (string, bool) {
	return t.Fragment(link.Kind, link.ID)
}

func (t Templates) playerURL(kind linkid.Kind, id string) (string, bool) {
	q := url.Values{}

	var base string

	switch kind {
	case linkid.KindVideo:
		base = t.VideoPlayerURL
		if m := avID.FindStringSubmatch(id); m != nil {
			q.Set("aid", m[1])
		} else {
			q.Set("bvid", id)
		}

		q.Set("high_quality", "1")
		q.Set("autoplay", "0")
	case linkid.KindLive:
		base = t.LivePlayerURL
		q.Set("cid", id)
		q.Set("quality", "0")
	default:
		return "", false
	}

	if base == "" {
		return "", false
	}

	return base + "?" + q.Encode(), true
}
