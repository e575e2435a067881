package ingestion

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/config"
	"gitlab.com/timkado/api/agency-core/internal/jetstream"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/observer"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

const consumerType = "intake"

// AckNakAction represents the decision made after processing a message
type AckNakAction int

const (
	ActionAck      AckNakAction = iota // Processed, ACK it
	ActionNakDelay                     // Retryable error, NAK with calculated delay
	ActionDLQ                          // Max retries reached or fatal error, publish to DLQ then ACK
)

// acker is the part of *nats.Msg used to settle a delivery.
type acker interface {
	Ack(opts ...nats.AckOpt) error
	Nak(opts ...nats.AckOpt) error
	NakWithDelay(delay time.Duration, opts ...nats.AckOpt) error
}

// IntakeConsumer delivers intake events from JetStream to the router.
type IntakeConsumer struct {
	client        jetstream.ClientInterface
	router        RouterInterface
	cfg           config.ConsumerNatsConfig
	dlqSubject    string
	ctx           context.Context
	cancel        context.CancelFunc
	sub           *nats.Subscription
	filterSubject string
}

// NewIntakeConsumer creates the intake consumer. dlqSubject is the base subject
// failed events are published under.
func NewIntakeConsumer(client jetstream.ClientInterface, router RouterInterface, cfg config.ConsumerNatsConfig, dlqSubject string) *IntakeConsumer {
	ctx, cancel := context.WithCancel(context.Background())
	ctx = logger.WithLogger(ctx, logger.Log.With(zap.String("consumerType", consumerType)))

	return &IntakeConsumer{
		client:     client,
		router:     router,
		cfg:        cfg,
		dlqSubject: dlqSubject,
		ctx:        ctx,
		cancel:     cancel,
	}
}

// DLQStreamName is the stream holding dead-lettered intake events.
func (c *IntakeConsumer) DLQStreamName() string {
	return c.cfg.Stream + "_dlq"
}

// Setup configures the intake stream, its DLQ stream and the durable consumer.
func (c *IntakeConsumer) Setup() error {
	log := logger.FromContext(c.ctx)
	log.Info("Setting up IntakeConsumer...", zap.String("stream", c.cfg.Stream), zap.String("consumer", c.cfg.Consumer))

	maxAgeRetention := time.Duration(c.cfg.MaxAge*24) * time.Hour

	streamCfg := &nats.StreamConfig{
		Name:      c.cfg.Stream,
		Subjects:  c.cfg.SubjectList,
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    maxAgeRetention,
	}
	if err := c.client.SetupStream(c.ctx, streamCfg); err != nil {
		return fmt.Errorf("failed to setup intake stream '%s': %w", c.cfg.Stream, err)
	}

	dlqCfg := &nats.StreamConfig{
		Name:      c.DLQStreamName(),
		Subjects:  []string{c.dlqSubject + ".>"},
		Storage:   nats.FileStorage,
		Retention: nats.LimitsPolicy,
		MaxAge:    maxAgeRetention,
	}
	if err := c.client.SetupStream(c.ctx, dlqCfg); err != nil {
		return fmt.Errorf("failed to setup DLQ stream '%s': %w", dlqCfg.Name, err)
	}

	consumerCfg := &nats.ConsumerConfig{
		Durable:        c.cfg.Consumer,
		DeliverGroup:   c.cfg.QueueGroup,
		FilterSubjects: c.cfg.SubjectList,
		AckPolicy:      nats.AckExplicitPolicy,
		DeliverSubject: nats.NewInbox(),
		MaxDeliver:     c.cfg.MaxDeliver,
		AckWait:        60 * time.Second,
		MaxAckPending:  500,
		ReplayPolicy:   nats.ReplayInstantPolicy,
		DeliverPolicy:  nats.DeliverAllPolicy,
	}
	if err := c.client.SetupConsumer(c.ctx, c.cfg.Stream, consumerCfg); err != nil {
		return fmt.Errorf("failed to setup intake consumer '%s' for stream '%s': %w", c.cfg.Consumer, c.cfg.Stream, err)
	}

	if len(c.cfg.SubjectList) == 1 {
		c.filterSubject = c.cfg.SubjectList[0]
	}

	log.Info("IntakeConsumer setup complete")
	return nil
}

// Start subscribes to the intake stream
func (c *IntakeConsumer) Start() error {
	log := logger.FromContext(c.ctx)

	sub, err := c.client.SubscribePush(c.filterSubject, c.cfg.Consumer, c.cfg.QueueGroup, c.cfg.Stream, c.handleMessage)
	if err != nil {
		log.Error("Failed to subscribe intake consumer", zap.Error(err),
			zap.String("stream", c.cfg.Stream),
			zap.String("consumer", c.cfg.Consumer),
			zap.String("group", c.cfg.QueueGroup),
		)
		return fmt.Errorf("failed to subscribe intake consumer '%s': %w", c.cfg.Consumer, err)
	}
	c.sub = sub
	log.Info("IntakeConsumer subscribed successfully")
	return nil
}

// Stop drains the subscription and cancels in-flight handler contexts.
func (c *IntakeConsumer) Stop() {
	log := logger.FromContext(c.ctx)
	log.Info("Stopping IntakeConsumer...")
	if c.sub != nil {
		if err := c.sub.Drain(); err != nil {
			log.Error("Error draining intake subscription", zap.Error(err))
		}
	}
	c.cancel()
	log.Info("IntakeConsumer stopped")
}

// determineAckNakAction decides the fate of a message from the processing
// result and the number of deliveries so far.
func determineAckNakAction(processingErr error, numDelivered uint64, maxDeliver int, nakBaseDelay, nakMaxDelay time.Duration) (AckNakAction, time.Duration) {
	if processingErr == nil {
		return ActionAck, 0
	}

	if numDelivered >= uint64(maxDeliver) || !apperrors.IsRetryable(processingErr) {
		return ActionDLQ, 0
	}

	delay := nakBaseDelay
	if numDelivered > 1 {
		delay = nakBaseDelay * (1 << (numDelivered - 1))
	}
	if delay > nakMaxDelay || delay <= 0 {
		delay = nakMaxDelay
	}
	return ActionNakDelay, delay
}

func (c *IntakeConsumer) handleMessage(msg *nats.Msg) {
	log := logger.FromContext(c.ctx)

	metadata, err := msg.Metadata()
	if err != nil {
		log.Error("Failed to read message metadata", zap.Error(err), zap.String("subject", msg.Subject))
		if nakErr := msg.Nak(); nakErr != nil {
			log.Error("Failed to NAK message", zap.Error(nakErr))
		}
		observer.IncEventProcessingAction("", consumerType, "nak_metadata_error", "metadata")
		return
	}

	var msgID string
	if msg.Header != nil {
		msgID = msg.Header.Get(nats.MsgIdHdr)
	}
	if msgID == "" {
		msgID = fmt.Sprintf("msg-%d", metadata.Sequence.Stream)
	}

	c.process(msg, &model.MessageMetadata{
		StreamSequence:   metadata.Sequence.Stream,
		ConsumerSequence: metadata.Sequence.Consumer,
		NumDelivered:     metadata.NumDelivered,
		NumPending:       metadata.NumPending,
		Timestamp:        metadata.Timestamp,
		Stream:           metadata.Stream,
		Consumer:         metadata.Consumer,
		Domain:           metadata.Domain,
		MessageID:        msgID,
		MessageSubject:   msg.Subject,
	}, msg.Data)
}

// process routes one delivery and settles it with msg.
func (c *IntakeConsumer) process(msg acker, metadata *model.MessageMetadata, data []byte) {
	startTime := utils.Now()
	eventType, _ := model.MapToBaseEventType(metadata.MessageSubject)
	et := string(eventType)

	msgCtx := logger.WithLogger(c.ctx, logger.FromContext(c.ctx).With(
		zap.String("nats_message_id", metadata.MessageID),
		zap.Uint64("stream_sequence", metadata.StreamSequence),
		zap.String("subject", metadata.MessageSubject),
	))
	log := logger.FromContext(msgCtx)

	defer func() {
		observer.ObserveEventProcessingDuration(et, consumerType, time.Since(startTime))
		if r := recover(); r != nil {
			log.Error("[panic] Recovered from panic in message handler", zap.Any("panic", r), zap.Stack("stack"))
			observer.IncEventsFailed(et, consumerType)
			observer.IncEventProcessingAction(et, consumerType, "panic_nak", "panic")
			if nakErr := msg.Nak(); nakErr != nil {
				log.Error("Failed to NAK message after panic", zap.Error(nakErr))
			}
		}
	}()

	observer.IncEventsReceived(et, consumerType)
	processingErr := c.router.Route(msgCtx, metadata, data)

	action, nakDelay := determineAckNakAction(processingErr, metadata.NumDelivered, c.cfg.MaxDeliver, c.cfg.NakBaseDelay, c.cfg.NakMaxDelay)

	errorType := "none"
	if processingErr != nil {
		errorType = observer.SanitizeErrorType(processingErr.Error())
	}

	switch action {
	case ActionAck:
		log.Info("Successfully processed message", zap.Duration("duration", time.Since(startTime)))
		observer.IncEventsProcessed(et, consumerType)
		observer.IncEventProcessingAction(et, consumerType, "ack_success", errorType)
		if ackErr := msg.Ack(); ackErr != nil {
			log.Error("Failed to ACK message after successful processing", zap.Error(ackErr))
		}

	case ActionNakDelay:
		log.Info("NAKing message with delay for redelivery",
			zap.Error(processingErr),
			zap.Uint64("num_delivered", metadata.NumDelivered),
			zap.Int("max_deliver", c.cfg.MaxDeliver),
			zap.Duration("nak_delay", nakDelay),
		)
		observer.IncEventsFailed(et, consumerType)
		observer.IncEventProcessingAction(et, consumerType, "nak_retry", errorType)
		if nakErr := msg.NakWithDelay(nakDelay); nakErr != nil {
			log.Error("Failed to NAK message with delay", zap.Error(nakErr))
		}

	case ActionDLQ:
		observer.IncEventsFailed(et, consumerType)
		if err := c.publishDLQ(metadata, data, processingErr); err != nil {
			log.Error("Failed to publish message to DLQ, NAKing original message", zap.Error(err))
			observer.IncEventProcessingAction(et, consumerType, "nak_dlq_publish_fail", "dlq_publish_fail")
			if nakErr := msg.Nak(); nakErr != nil {
				log.Error("Failed to NAK message after DLQ publish error", zap.Error(nakErr))
			}
			return
		}
		log.Warn("Message sent to DLQ", zap.Error(processingErr), zap.Uint64("num_delivered", metadata.NumDelivered))
		observer.IncEventProcessingAction(et, consumerType, "dlq_published_ack_success", errorType)
		if ackErr := msg.Ack(); ackErr != nil {
			log.Error("Failed to ACK message after DLQ publish", zap.Error(ackErr))
		}
	}
}

// DLQSubjectFor returns the dead-letter subject of an intake subject,
// e.g. "v1.dlq" + "v1.intake.call-report" -> "v1.dlq.intake.call-report".
func DLQSubjectFor(dlqSubject, sourceSubject string) string {
	eventType, ok := model.MapToBaseEventType(sourceSubject)
	if !ok {
		return dlqSubject + ".unknown"
	}
	return dlqSubject + "." + string(eventType.GetBaseType())
}

func (c *IntakeConsumer) publishDLQ(metadata *model.MessageMetadata, data []byte, processingErr error) error {
	errorType := "fatal"
	if apperrors.IsRetryable(processingErr) {
		errorType = "retryable"
	}

	original := json.RawMessage(data)
	if !json.Valid(data) {
		original, _ = json.Marshal(string(data))
	}

	payload, err := json.Marshal(model.DLQPayload{
		SourceSubject:   metadata.MessageSubject,
		OriginalPayload: original,
		Error:           processingErr.Error(),
		ErrorType:       errorType,
		RetryCount:      metadata.NumDelivered,
		MaxRetry:        c.cfg.MaxDeliver,
		Timestamp:       utils.Now(),
	})
	if err != nil {
		return fmt.Errorf("marshal DLQ payload: %w", err)
	}

	headers := map[string]string{"Original-Nats-Msg-Id": metadata.MessageID}
	return c.client.Publish(DLQSubjectFor(c.dlqSubject, metadata.MessageSubject), payload, headers)
}
