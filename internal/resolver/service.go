package resolver

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/scavin/discourse-bilibili-onebox/internal/analytics"
	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
	"github.com/scavin/discourse-bilibili-onebox/internal/messaging"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// Cache stores resolved identifiers by key. Get returns ErrCacheMiss for
// unknown or expired keys; implementations must be safe for concurrent use.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Put(ctx context.Context, key, value string, ttl time.Duration) error
}

// Redirector resolves a short-link URL to a canonical link.
type Redirector interface {
	Resolve(ctx context.Context, rawURL string) (linkid.Link, error)
}

// RoomResolver maps a live room id to its persistent id.
type RoomResolver interface {
	Resolve(ctx context.Context, roomID string) (string, error)
}

// Service is the lookup-or-resolve path in front of the network resolvers.
// Only successful resolutions are cached, so transient failures are retried
// the next time the same link shows up.
type Service struct {
	matcher   *linkid.Matcher
	redirects Redirector
	rooms     RoomResolver
	cache     Cache
	ttl       time.Duration
	group     singleflight.Group
	publish   messaging.Publish[analytics.ResolutionEvent]
	logger    *zap.Logger
}

// NewService wires the resolvers to a cache.
func NewService(
	matcher *linkid.Matcher,
	redirects Redirector,
	rooms RoomResolver,
	cache Cache,
	publish messaging.Publish[analytics.ResolutionEvent],
	logger *zap.Logger,
) *Service {
	return &Service{
		matcher:   matcher,
		redirects: redirects,
		rooms:     rooms,
		cache:     cache,
		ttl:       CacheTTL,
		publish:   publish,
		logger:    logger,
	}
}

// Matcher returns the link matcher the service classifies with.
func (s *Service) Matcher() *linkid.Matcher {
	return s.matcher
}

// Resolve classifies rawURL and returns its canonical link. Failures of any
// kind are reported as false.
func (s *Service) Resolve(ctx context.Context, rawURL string) (linkid.Link, bool) {
	target, ok := s.matcher.Classify(rawURL)
	if !ok {
		return linkid.Link{}, false
	}

	switch target.Kind {
	case linkid.TargetVideo:
		return linkid.Link{Kind: linkid.KindVideo, ID: target.Value}, true
	case linkid.TargetShortLink:
		return s.ResolveShortLink(ctx, target.Value)
	case linkid.TargetLive, linkid.TargetLiveShortLink:
		id, ok := s.ResolveLiveRoom(ctx, target.Value)
		if !ok {
			return linkid.Link{}, false
		}

		return linkid.Link{Kind: linkid.KindLive, ID: id}, true
	default:
		return linkid.Link{}, false
	}
}

// ResolveShortLink expands the short link with the given key.
func (s *Service) ResolveShortLink(ctx context.Context, key string) (linkid.Link, bool) {
	// Slugs share the alphanumeric video token grammar.
	if !linkid.ValidToken(linkid.KindVideo, key) {
		return linkid.Link{}, false
	}

	target := linkid.Target{Kind: linkid.TargetShortLink, Value: key}

	value, ok := s.lookup(ctx, target, func(ctx context.Context) (string, error) {
		link, err := s.redirects.Resolve(ctx, s.matcher.ShortLinkURL(key))
		if err != nil {
			return "", err
		}

		return encodeLink(link), nil
	})
	if !ok {
		return linkid.Link{}, false
	}

	link, ok := decodeLink(value)
	if !ok {
		s.logger.Warn("discarding malformed cached link",
			zap.String("key", target.CacheKey()),
			zap.String("value", value),
		)

		return linkid.Link{}, false
	}

	// A short link may land on a live room alias; canonicalize it too.
	if link.Kind == linkid.KindLive {
		if id, ok := s.ResolveLiveRoom(ctx, link.ID); ok {
			link.ID = id
		}
	}

	return link, true
}

// ResolveLiveRoom returns the persistent room id for roomID.
func (s *Service) ResolveLiveRoom(ctx context.Context, roomID string) (string, bool) {
	if !linkid.ValidToken(linkid.KindLive, roomID) {
		return "", false
	}

	target := linkid.Target{Kind: linkid.TargetLiveShortLink, Value: roomID}

	id, ok := s.lookup(ctx, target, func(ctx context.Context) (string, error) {
		id, err := s.rooms.Resolve(ctx, roomID)
		if err != nil {
			return "", err
		}

		if !linkid.ValidToken(linkid.KindLive, id) {
			return "", ErrNotFound
		}

		// The real id maps to itself, so canonical links hit the cache.
		if id != roomID {
			s.put(ctx, linkid.LiveCacheKey(id), id)
		}

		return id, nil
	})

	return id, ok
}

func (s *Service) lookup(
	ctx context.Context,
	target linkid.Target,
	resolve func(ctx context.Context) (string, error),
) (string, bool) {
	key := target.CacheKey()

	value, err := s.cache.Get(ctx, key)
	if err == nil {
		return value, true
	}

	if !errors.Is(err, ErrCacheMiss) {
		s.logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
	}

	// The shared call outlives any one caller; HopTimeout still bounds it.
	shared := context.WithoutCancel(ctx)

	ch := s.group.DoChan(key, func() (any, error) {
		start := time.Now()
		value, err := resolve(shared)
		s.record(target, value, err, time.Since(start))

		if err != nil {
			return "", err
		}

		s.put(shared, key, value)

		return value, nil
	})

	var res singleflight.Result

	select {
	case res = <-ch:
	case <-ctx.Done():
		s.logger.Debug("lookup abandoned", zap.String("key", key), zap.Error(ctx.Err()))

		return "", false
	}

	if res.Err != nil {
		s.logger.Debug("link not resolved",
			zap.String("key", key),
			zap.String("outcome", Outcome(res.Err)),
			zap.Error(res.Err),
		)

		return "", false
	}

	return res.Val.(string), true
}

func (s *Service) put(ctx context.Context, key, value string) {
	if err := s.cache.Put(ctx, key, value, s.ttl); err != nil {
		s.logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func (s *Service) record(target linkid.Target, value string, err error, elapsed time.Duration) {
	event := &analytics.ResolutionEvent{
		Key:        target.CacheKey(),
		Target:     target.Kind.String(),
		Outcome:    Outcome(err),
		Value:      value,
		DurationMs: elapsed.Milliseconds(),
		ResolvedAt: time.Now().UTC(),
	}

	if err != nil {
		event.Reason = err.Error()
	}

	if err := s.publish(event); err != nil {
		s.logger.Error("failed to publish resolution event",
			zap.String("key", event.Key),
			zap.Error(err),
		)
	}
}

func encodeLink(link linkid.Link) string {
	return string(link.Kind) + ":" + link.ID
}

func decodeLink(value string) (linkid.Link, bool) {
	kind, id, ok := strings.Cut(value, ":")
	if !ok {
		return linkid.Link{}, false
	}

	link := linkid.Link{Kind: linkid.Kind(kind), ID: id}

	return link, link.Valid()
}
