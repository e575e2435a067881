package jetstream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// Client wraps a NATS connection and its JetStream context.
type Client struct {
	nc *nats.Conn
	js nats.JetStreamContext
}

var _ ClientInterface = (*Client)(nil)

// NewClient connects to NATS, retrying in the background while the server is unreachable.
func NewClient(url string) (*Client, error) {
	nc, err := nats.Connect(url,
		nats.Name("agency-core"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			if err != nil {
				logger.Log.Warn("NATS disconnected", zap.Error(err))
			}
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
		nats.ErrorHandler(func(nc *nats.Conn, s *nats.Subscription, err error) {
			logger.Log.Error("NATS error", zap.Error(err))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to connect to %s: %v", apperrors.ErrNATS, url, err)
	}

	js, err := nc.JetStream()
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("%w: failed to create JetStream context: %v", apperrors.ErrNATS, err)
	}

	return &Client{nc: nc, js: js}, nil
}

// SetupStream ensures the stream exists with the given configuration
func (c *Client) SetupStream(ctx context.Context, streamConfig *nats.StreamConfig) error {
	log := logger.FromContext(ctx).With(zap.String("stream", streamConfig.Name))

	stream, err := c.js.StreamInfo(streamConfig.Name)
	if err != nil && !errors.Is(err, nats.ErrStreamNotFound) {
		return fmt.Errorf("failed to get stream info for '%s': %w", streamConfig.Name, err)
	}

	switch {
	case stream == nil:
		if _, err = c.js.AddStream(streamConfig); err != nil {
			return fmt.Errorf("failed to add stream '%s': %w", streamConfig.Name, err)
		}
		log.Info("Created stream", zap.Strings("subjects", streamConfig.Subjects))
	case !streamConfigEqual(stream.Config, *streamConfig):
		if _, err = c.js.UpdateStream(streamConfig); err != nil {
			return fmt.Errorf("failed to update stream '%s': %w", streamConfig.Name, err)
		}
		log.Info("Updated stream", zap.Strings("subjects", streamConfig.Subjects))
	default:
		log.Debug("Stream up to date")
	}
	return nil
}

// SetupConsumer ensures the durable consumer exists on streamName.
// Consumers cannot change most settings in place, so drift is handled by delete and re-add.
func (c *Client) SetupConsumer(ctx context.Context, streamName string, consumerConfig *nats.ConsumerConfig) error {
	log := logger.FromContext(ctx).With(zap.String("stream", streamName), zap.String("consumer", consumerConfig.Durable))

	consumer, err := c.js.ConsumerInfo(streamName, consumerConfig.Durable)
	if err != nil && !errors.Is(err, nats.ErrConsumerNotFound) {
		return fmt.Errorf("failed to get consumer info for stream '%s', consumer '%s': %w", streamName, consumerConfig.Durable, err)
	}

	if consumer != nil {
		if consumerConfigEqual(consumer.Config, *consumerConfig) {
			// Push consumers keep the inbox they were created with.
			consumerConfig.DeliverSubject = consumer.Config.DeliverSubject
			log.Debug("Consumer up to date")
			return nil
		}
		log.Warn("Consumer config mismatch, recreating")
		if err = c.js.DeleteConsumer(streamName, consumerConfig.Durable); err != nil {
			return fmt.Errorf("failed to delete consumer '%s' from stream '%s': %w", consumerConfig.Durable, streamName, err)
		}
	}

	if _, err = c.js.AddConsumer(streamName, consumerConfig); err != nil {
		return fmt.Errorf("failed to add consumer '%s' to stream '%s': %w", consumerConfig.Durable, streamName, err)
	}
	log.Info("Created consumer",
		zap.String("queue_group", consumerConfig.DeliverGroup),
		zap.Strings("filter_subjects", consumerConfig.FilterSubjects),
	)
	return nil
}

// SubscribePush creates a push-based queue subscription bound to stream.
func (c *Client) SubscribePush(subject, consumer, group, stream string, handler nats.MsgHandler) (*nats.Subscription, error) {
	sub, err := c.js.QueueSubscribe(
		subject,
		group,
		handler,
		nats.Durable(consumer),
		nats.ManualAck(),
		nats.BindStream(stream),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to subscribe: %w", err)
	}
	return sub, nil
}

// SubscribePull creates a pull-based consumer subscription
func (c *Client) SubscribePull(streamName, subject, consumer string) (*nats.Subscription, error) {
	sub, err := c.js.PullSubscribe(subject, consumer, nats.Bind(streamName, consumer))
	if err != nil {
		return nil, fmt.Errorf("failed to create pull subscription for stream '%s', consumer '%s': %w", streamName, consumer, err)
	}
	return sub, nil
}

// Publish publishes a message to a subject with optional headers
func (c *Client) Publish(subject string, data []byte, headers map[string]string) error {
	msg := nats.NewMsg(subject)
	msg.Data = data
	for k, v := range headers {
		msg.Header.Add(k, v)
	}

	if _, err := c.js.PublishMsg(msg); err != nil {
		return fmt.Errorf("%w: failed to publish to %s: %v", apperrors.ErrNATS, subject, err)
	}
	return nil
}

// Close closes the NATS connection. Subscriptions should be drained first.
func (c *Client) Close() {
	if c.nc != nil {
		c.nc.Close()
	}
}

// Ping reports an error unless the connection is currently established.
func (c *Client) Ping(_ context.Context) error {
	if c.nc == nil {
		return fmt.Errorf("%w: no connection", apperrors.ErrNATS)
	}
	if status := c.nc.Status(); status != nats.CONNECTED {
		return fmt.Errorf("%w: connection is %s", apperrors.ErrNATS, status)
	}
	return nil
}
