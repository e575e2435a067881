package jetstream

import (
	"context"

	"github.com/nats-io/nats.go"
)

// ClientInterface is the subset of JetStream used by the intake consumer
// and the load generator.
type ClientInterface interface {
	// SetupStream creates the stream or updates it when its core settings drifted.
	SetupStream(ctx context.Context, streamConfig *nats.StreamConfig) error

	// SetupConsumer creates the durable consumer on streamName, recreating it on config drift.
	SetupConsumer(ctx context.Context, streamName string, consumerConfig *nats.ConsumerConfig) error

	// SubscribePush binds a queue subscription to an existing push consumer.
	SubscribePush(subject, consumer, group, stream string, handler nats.MsgHandler) (*nats.Subscription, error)

	// SubscribePull binds a pull subscription to an existing durable consumer on streamName.
	SubscribePull(streamName, subject, consumer string) (*nats.Subscription, error)

	// Publish publishes data to subject with optional headers.
	Publish(subject string, data []byte, headers map[string]string) error

	Close()
}
