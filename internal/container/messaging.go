package container

import (
	"fmt"

	"github.com/ThreeDotsLabs/watermill-redisstream/pkg/redisstream"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/samber/do"
	"github.com/scavin/discourse-bilibili-onebox/internal/analytics"
	analyticsstore "github.com/scavin/discourse-bilibili-onebox/internal/analytics/store"
	"github.com/scavin/discourse-bilibili-onebox/internal/messaging"
	"go.uber.org/zap"
)

// ConsumerGroupName is the Redis stream consumer group of the analytics
// consumer.
const ConsumerGroupName = "onebox-analytics"

// InProcessBus is the channel pub/sub used when analytics stays in the
// server process.
type InProcessBus struct {
	*gochannel.GoChannel
}

func (b *InProcessBus) Shutdown() error {
	return b.Close()
}

// PublisherGroupPackage provides the publisher for resolution events as
// selected by Analytics.
func PublisherGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*InProcessBus, error) {
		logger := do.MustInvoke[*zap.Logger](i)

		return &InProcessBus{GoChannel: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 256},
			messaging.NewZapLogger(logger.Named("bus")),
		)}, nil
	})

	do.Provide(injector, func(i *do.Injector) (*messaging.PublisherGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		switch opts.Analytics {
		case AnalyticsNone:
			return messaging.NewPublisherGroup(nil), nil
		case AnalyticsMemory:
			return messaging.NewPublisherGroup(do.MustInvoke[*InProcessBus](i)), nil
		case AnalyticsRedis:
			client := do.MustInvoke[*RedisClient](i)

			publisher, err := redisstream.NewPublisher(
				redisstream.PublisherConfig{Client: client.Client},
				messaging.NewZapLogger(logger.Named("publisher")),
			)
			if err != nil {
				return nil, fmt.Errorf("create redis stream publisher: %w", err)
			}

			return messaging.NewPublisherGroup(publisher), nil
		default:
			return nil, fmt.Errorf("unknown analytics mode %q", opts.Analytics)
		}
	})
}

// AnalyticsStorePackage provides the resolution event sink and its reporter:
// Postgres when DatabaseURL is set, a logging no-op otherwise.
func AnalyticsStorePackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (analytics.Store, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)

		if opts.DatabaseURL == "" {
			return analyticsstore.NewNoop(logger.Named("analytics")), nil
		}

		pool := do.MustInvoke[*PostgresPool](i)

		return analyticsstore.NewPostgres(pool.Pool), nil
	})

	do.Provide(injector, func(i *do.Injector) (analytics.Reporter, error) {
		reporter, ok := do.MustInvoke[analytics.Store](i).(analytics.Reporter)
		if !ok {
			return nil, fmt.Errorf("analytics store cannot report")
		}

		return reporter, nil
	})
}

// ConsumerGroupPackage provides the consumers persisting resolution events.
// The subscriber mirrors the publisher chosen by Analytics.
func ConsumerGroupPackage(injector *do.Injector) {
	do.Provide(injector, func(i *do.Injector) (*messaging.ConsumerGroup, error) {
		opts := do.MustInvoke[*Options](i)
		logger := do.MustInvoke[*zap.Logger](i)
		sink := do.MustInvoke[analytics.Store](i)

		var subscriber message.Subscriber

		switch opts.Analytics {
		case AnalyticsMemory:
			subscriber = do.MustInvoke[*InProcessBus](i)
		case AnalyticsRedis:
			client := do.MustInvoke[*RedisClient](i)

			sub, err := redisstream.NewSubscriber(
				redisstream.SubscriberConfig{
					Client:        client.Client,
					ConsumerGroup: ConsumerGroupName,
				},
				messaging.NewZapLogger(logger.Named("subscriber")),
			)
			if err != nil {
				return nil, fmt.Errorf("create redis stream subscriber: %w", err)
			}

			subscriber = sub
		default:
			return messaging.NewConsumerGroup(nil, logger), nil
		}

		group := messaging.NewConsumerGroup(subscriber, logger)
		group.Add(messaging.NewConsumer(
			subscriber,
			analytics.TopicLinkResolved,
			analytics.NewResolutionHandler(sink, logger.Named("analytics")),
			logger,
		))

		return group, nil
	})
}
