package container

import (
	"time"

	"github.com/samber/do"
	"github.com/scavin/discourse-bilibili-onebox/internal/analytics"
	"github.com/scavin/discourse-bilibili-onebox/internal/linkid"
	"github.com/scavin/discourse-bilibili-onebox/internal/messaging"
	"github.com/scavin/discourse-bilibili-onebox/internal/resolver"
	"go.uber.org/zap"
)

// ResolverPackage provides the link matcher and the cached resolution
// service.
func ResolverPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*linkid.Matcher, error) {
		opts := do.MustInvoke[*Options](i)

		return linkid.NewMatcher(linkid.Hosts{
			ShortDomain: opts.ShortDomain,
			VideoDomain: opts.VideoDomain,
			LiveHost:    opts.LiveHost,
			MarkerClass: opts.MarkerClass,
		}), nil
	})

	do.Provide(injector, func(i *do.Injector) (*resolver.Service, error) {
		opts := do.MustInvoke[*Options](i)
		matcher := do.MustInvoke[*linkid.Matcher](i)
		cache := do.MustInvoke[resolver.Cache](i)
		publishers := do.MustInvoke[*messaging.PublisherGroup](i)
		logger := do.MustInvoke[*zap.Logger](i)

		cfg := resolver.Config{
			MaxRedirects: opts.MaxRedirects,
			HopTimeout:   time.Duration(opts.HopTimeoutMs) * time.Millisecond,
			UserAgent:    opts.UserAgent,
		}
		client := resolver.NewHTTPClient()

		return resolver.NewService(
			matcher,
			resolver.NewRedirects(client, matcher, cfg),
			resolver.NewLiveRooms(client, opts.LiveAPIBase, cfg),
			cache,
			messaging.PublishFor[analytics.ResolutionEvent](publishers, analytics.TopicLinkResolved),
			logger.Named("resolver"),
		), nil
	})
}
