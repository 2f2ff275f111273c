package rewrite_test

import (
	"context"
	"sync"

	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
)

func testHosts() linkid.Hosts {
	return linkid.Hosts{
		ShortDomain: "b23.tv",
		VideoDomain: "example-video.com",
		LiveHost:    "live.example.com",
		MarkerClass: "video-onebox",
	}
}

// stubResolver classifies with a real matcher and answers from a fixed
// table, standing in for the cached network resolver.
type stubResolver struct {
	matcher *linkid.Matcher
	links   map[string]linkid.Link

	mu    sync.Mutex
	calls map[string]int
}

func newStubResolver(links map[string]linkid.Link) *stubResolver {
	return &stubResolver{
		matcher: linkid.NewMatcher(testHosts()),
		links:   links,
		calls:   make(map[string]int),
	}
}

func (s *stubResolver) Resolve(_ context.Context, rawURL string) (linkid.Link, bool) {
	s.mu.Lock()
	s.calls[rawURL]++
	s.mu.Unlock()

	if link, ok := s.links[rawURL]; ok {
		return link, true
	}

	if link, ok := s.matcher.Extract(rawURL); ok && link.Kind == linkid.KindVideo {
		return link, true
	}

	return linkid.Link{}, false
}

func (s *stubResolver) callCount(rawURL string) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.calls[rawURL]
}
