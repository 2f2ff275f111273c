package messaging

import (
	"encoding/json"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// Metadata keys set on every published message.
const (
	MetadataTopic       = "topic"
	MetadataPublishedAt = "published_at"
)

// Publish is a function that publishes a typed event.
type Publish[T any] func(event *T) error

// NewPublishFunc creates a typed publish function for a specific topic.
func NewPublishFunc[T any](publisher message.Publisher, topic string) Publish[T] {
	return func(event *T) error {
		payload, err := json.Marshal(event)
		if err != nil {
			return err
		}

		msg := message.NewMessage(watermill.NewUUID(), payload)
		msg.Metadata.Set(MetadataTopic, topic)
		msg.Metadata.Set(MetadataPublishedAt, time.Now().UTC().Format(time.RFC3339Nano))

		return publisher.Publish(topic, msg)
	}
}

// Discard returns a publish function that drops every event.
func Discard[T any]() Publish[T] {
	return func(*T) error { return nil }
}

// PublisherGroup owns the publisher behind the typed publish functions.
type PublisherGroup struct {
	publisher message.Publisher
}

// NewPublisherGroup creates a new publisher group. A nil publisher yields a
// group whose publish functions discard events.
func NewPublisherGroup(publisher message.Publisher) *PublisherGroup {
	return &PublisherGroup{publisher: publisher}
}

// Publisher returns the underlying message publisher, nil when discarding.
func (g *PublisherGroup) Publisher() message.Publisher {
	return g.publisher
}

// Enabled reports whether events leave the process.
func (g *PublisherGroup) Enabled() bool {
	return g.publisher != nil
}

// Shutdown closes the underlying publisher.
func (g *PublisherGroup) Shutdown() error {
	if g.publisher == nil {
		return nil
	}

	return g.publisher.Close()
}

// PublishFor builds the typed publish function for topic on group.
func PublishFor[T any](g *PublisherGroup, topic string) Publish[T] {
	if !g.Enabled() {
		return Discard[T]()
	}

	return NewPublishFunc[T](g.publisher, topic)
}
