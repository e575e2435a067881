package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/config"
	clientmock "gitlab.com/timkado/api/agency-core/internal/jetstream/mock"
	"gitlab.com/timkado/api/agency-core/internal/model"
)

type fakeAcker struct {
	acks   int
	naks   int
	delays []time.Duration
}

func (f *fakeAcker) Ack(...nats.AckOpt) error { f.acks++; return nil }
func (f *fakeAcker) Nak(...nats.AckOpt) error { f.naks++; return nil }
func (f *fakeAcker) NakWithDelay(d time.Duration, _ ...nats.AckOpt) error {
	f.delays = append(f.delays, d)
	return nil
}

func testConsumerConfig() config.ConsumerNatsConfig {
	return config.ConsumerNatsConfig{
		Stream:       "intake_events",
		Consumer:     "agency-core-intake",
		QueueGroup:   "agency-core",
		SubjectList:  []string{"v1.intake.>"},
		MaxAge:       1,
		MaxDeliver:   3,
		NakBaseDelay: time.Second,
		NakMaxDelay:  3 * time.Second,
	}
}

func TestDetermineAckNakAction(t *testing.T) {
	retry := apperrors.NewRetryable(apperrors.ErrDatabase, "db")
	fatal := apperrors.NewFatal(apperrors.ErrNotFound, "gone")

	tests := []struct {
		name      string
		err       error
		delivered uint64
		action    AckNakAction
		delay     time.Duration
	}{
		{name: "success", err: nil, delivered: 1, action: ActionAck},
		{name: "fatal goes to DLQ at once", err: fatal, delivered: 1, action: ActionDLQ},
		{name: "unclassified goes to DLQ", err: errors.New("x"), delivered: 1, action: ActionDLQ},
		{name: "first retry uses base delay", err: retry, delivered: 1, action: ActionNakDelay, delay: time.Second},
		{name: "second retry doubles", err: retry, delivered: 2, action: ActionNakDelay, delay: 2 * time.Second},
		{name: "retries exhausted", err: retry, delivered: 3, action: ActionDLQ},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			action, delay := determineAckNakAction(tc.err, tc.delivered, 3, time.Second, 3*time.Second)
			assert.Equal(t, tc.action, action)
			assert.Equal(t, tc.delay, delay)
		})
	}

	_, capped := determineAckNakAction(retry, 4, 10, time.Second, 3*time.Second)
	assert.Equal(t, 3*time.Second, capped)
}

func TestDLQSubjectFor(t *testing.T) {
	assert.Equal(t, "v1.dlq.intake.call-report", DLQSubjectFor("v1.dlq", "v1.intake.call-report"))
	assert.Equal(t, "v1.dlq.intake.document-extracted", DLQSubjectFor("v1.dlq", "v1.intake.document-extracted.7"))
	assert.Equal(t, "v1.dlq.unknown", DLQSubjectFor("v1.dlq", "v1.whatever"))
}

func TestIntakeConsumer_Setup(t *testing.T) {
	testContext(t)
	client := new(clientmock.ClientMock)
	cfg := testConsumerConfig()
	consumer := NewIntakeConsumer(client, NewRouter(), cfg, "v1.dlq")

	client.On("SetupStream", mock.Anything, mock.MatchedBy(func(sc *nats.StreamConfig) bool {
		return sc.Name == "intake_events" && sc.MaxAge == 24*time.Hour &&
			assert.ObjectsAreEqual([]string{"v1.intake.>"}, sc.Subjects)
	})).Return(nil).Once()
	client.On("SetupStream", mock.Anything, mock.MatchedBy(func(sc *nats.StreamConfig) bool {
		return sc.Name == "intake_events_dlq" && assert.ObjectsAreEqual([]string{"v1.dlq.>"}, sc.Subjects)
	})).Return(nil).Once()
	client.On("SetupConsumer", mock.Anything, "intake_events", mock.MatchedBy(func(cc *nats.ConsumerConfig) bool {
		return cc.Durable == "agency-core-intake" &&
			cc.DeliverGroup == "agency-core" &&
			cc.AckPolicy == nats.AckExplicitPolicy &&
			cc.MaxDeliver == 3 &&
			cc.DeliverSubject != ""
	})).Return(nil)

	require.NoError(t, consumer.Setup())
	client.AssertExpectations(t)

	client.On("SubscribePush", "v1.intake.>", "agency-core-intake", "agency-core", "intake_events", mock.Anything).
		Return((*nats.Subscription)(nil), nil)
	require.NoError(t, consumer.Start())
	consumer.Stop()
	client.AssertExpectations(t)
}

func TestIntakeConsumer_SetupFailure(t *testing.T) {
	testContext(t)
	client := new(clientmock.ClientMock)
	client.On("SetupStream", mock.Anything, mock.Anything).Return(errors.New("no jetstream"))

	err := NewIntakeConsumer(client, NewRouter(), testConsumerConfig(), "v1.dlq").Setup()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "intake_events")
	client.AssertNotCalled(t, "SetupConsumer", mock.Anything, mock.Anything, mock.Anything)
}

func TestIntakeConsumer_Process(t *testing.T) {
	testContext(t)
	metadata := func(delivered uint64) *model.MessageMetadata {
		return &model.MessageMetadata{
			MessageSubject: string(model.V1CallReport),
			MessageID:      "msg-1",
			NumDelivered:   delivered,
		}
	}

	t.Run("ack on success", func(t *testing.T) {
		router := NewRouter()
		router.Register(model.V1CallReport, func(_ context.Context, _ model.EventType, _ *model.MessageMetadata, _ []byte) error { return nil })
		msg := &fakeAcker{}

		NewIntakeConsumer(new(clientmock.ClientMock), router, testConsumerConfig(), "v1.dlq").process(msg, metadata(1), []byte(`{}`))
		assert.Equal(t, 1, msg.acks)
	})

	t.Run("retryable error is redelivered later", func(t *testing.T) {
		router := NewRouter()
		router.Register(model.V1CallReport, func(_ context.Context, _ model.EventType, _ *model.MessageMetadata, _ []byte) error {
			return apperrors.NewRetryable(apperrors.ErrDatabase, "db")
		})
		msg := &fakeAcker{}

		NewIntakeConsumer(new(clientmock.ClientMock), router, testConsumerConfig(), "v1.dlq").process(msg, metadata(2), []byte(`{}`))
		assert.Equal(t, []time.Duration{2 * time.Second}, msg.delays)
		assert.Zero(t, msg.acks)
	})

	t.Run("fatal error is dead-lettered and acked", func(t *testing.T) {
		router := NewRouter()
		router.Register(model.V1CallReport, func(_ context.Context, _ model.EventType, _ *model.MessageMetadata, _ []byte) error {
			return apperrors.NewFatal(apperrors.ErrNotFound, "customer not found")
		})
		client := new(clientmock.ClientMock)
		client.On("Publish", "v1.dlq.intake.call-report", mock.MatchedBy(func(data []byte) bool {
			var p model.DLQPayload
			return json.Unmarshal(data, &p) == nil &&
				p.ErrorType == "fatal" &&
				p.SourceSubject == string(model.V1CallReport) &&
				string(p.OriginalPayload) == `{"a":1}` &&
				p.RetryCount == 1
		}), map[string]string{"Original-Nats-Msg-Id": "msg-1"}).Return(nil)
		msg := &fakeAcker{}

		NewIntakeConsumer(client, router, testConsumerConfig(), "v1.dlq").process(msg, metadata(1), []byte(`{"a":1}`))
		assert.Equal(t, 1, msg.acks)
		client.AssertExpectations(t)
	})

	t.Run("DLQ publish failure naks", func(t *testing.T) {
		router := NewRouter()
		router.Register(model.V1CallReport, func(_ context.Context, _ model.EventType, _ *model.MessageMetadata, _ []byte) error {
			return apperrors.NewFatal(errors.New("bad"), "bad")
		})
		client := new(clientmock.ClientMock)
		client.On("Publish", mock.Anything, mock.Anything, mock.Anything).Return(apperrors.ErrNATS)
		msg := &fakeAcker{}

		NewIntakeConsumer(client, router, testConsumerConfig(), "v1.dlq").process(msg, metadata(1), []byte(`not json`))
		assert.Equal(t, 1, msg.naks)
		assert.Zero(t, msg.acks)
	})

	t.Run("panic naks", func(t *testing.T) {
		router := NewRouter()
		router.Register(model.V1CallReport, func(_ context.Context, _ model.EventType, _ *model.MessageMetadata, _ []byte) error {
			panic("boom")
		})
		msg := &fakeAcker{}

		NewIntakeConsumer(new(clientmock.ClientMock), router, testConsumerConfig(), "v1.dlq").process(msg, metadata(1), nil)
		assert.Equal(t, 1, msg.naks)
	})
}
