package dlqworker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/apperrors"
	"gitlab.com/timkado/api/agency-core/internal/config"
	"gitlab.com/timkado/api/agency-core/internal/ingestion"
	internal_js "gitlab.com/timkado/api/agency-core/internal/jetstream"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/observer"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

const (
	defaultMsgChanCap = 100
	fetchBatchSize    = 10
	fetchMaxWait      = 5 * time.Second
	taskTimeout       = time.Minute
)

// settler is the part of *nats.Msg used to settle a DLQ delivery.
type settler interface {
	Ack(opts ...nats.AckOpt) error
	NakWithDelay(delay time.Duration, opts ...nats.AckOpt) error
	Term(opts ...nats.AckOpt) error
}

// Worker re-drives dead-lettered intake events through the intake router.
// Retryable failures are retried with exponential backoff until MaxRetries,
// fatal ones are terminated and stay in the DLQ stream for inspection.
type Worker struct {
	cfg        config.DLQWorkerConfig
	stream     string
	dlqSubject string
	durable    string
	logger     *zap.Logger
	js         internal_js.ClientInterface
	pool       *ants.Pool
	router     ingestion.RouterInterface
	msgCh      chan *nats.Msg
	stopWg     sync.WaitGroup
	cancel     context.CancelFunc
}

// NewWorker creates the worker pool and the durable pull consumer on stream.
// The stream itself is created by the intake consumer.
func NewWorker(cfg config.DLQWorkerConfig, stream, dlqSubject string, jsClient internal_js.ClientInterface, router ingestion.RouterInterface) (*Worker, error) {
	log := logger.Log.Named("dlq_worker")

	pool, err := ants.NewPool(cfg.Workers,
		ants.WithLogger(newAntsLoggerAdapter(log.Named("ants_pool"))),
		ants.WithPanicHandler(func(err interface{}) {
			log.Error("Worker panic caught", zap.Any("error", err), zap.Stack("stack"))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create ants pool: %w", err)
	}

	durable := strings.ReplaceAll(dlqSubject, ".", "_") + "_worker"
	consumerCfg := &nats.ConsumerConfig{
		Durable:       durable,
		FilterSubject: dlqSubject + ".>",
		AckPolicy:     nats.AckExplicitPolicy,
		AckWait:       cfg.AckWait,
		MaxAckPending: cfg.MaxAckPending,
		DeliverPolicy: nats.DeliverAllPolicy,
		ReplayPolicy:  nats.ReplayInstantPolicy,
	}
	if err := jsClient.SetupConsumer(context.Background(), stream, consumerCfg); err != nil {
		pool.Release()
		return nil, fmt.Errorf("failed to setup DLQ consumer '%s' for stream '%s': %w", durable, stream, err)
	}

	log.Info("DLQ worker initialized", zap.Int("pool_size", cfg.Workers), zap.String("consumer", durable))
	return &Worker{
		cfg:        cfg,
		stream:     stream,
		dlqSubject: dlqSubject,
		durable:    durable,
		logger:     log,
		js:         jsClient,
		pool:       pool,
		router:     router,
		msgCh:      make(chan *nats.Msg, defaultMsgChanCap),
	}, nil
}

// Start launches the fetch and dispatch loops and returns.
func (w *Worker) Start(ctx context.Context) error {
	sub, err := w.js.SubscribePull(w.stream, w.dlqSubject+".>", w.durable)
	if err != nil {
		return fmt.Errorf("failed to create DLQ pull subscription: %w", err)
	}

	derivedCtx, cancel := context.WithCancel(ctx)
	w.cancel = cancel

	w.stopWg.Add(2)
	go w.fetchMessages(derivedCtx, sub)
	go w.dispatchMessages(derivedCtx)

	w.logger.Info("DLQ worker started", zap.String("stream", w.stream))
	return nil
}

// Stop stops the loops and waits for running tasks.
func (w *Worker) Stop() {
	w.logger.Info("Stopping DLQ worker...")
	if w.cancel != nil {
		w.cancel()
	}
	w.stopWg.Wait()
	w.pool.Release()
	w.logger.Info("DLQ worker stopped")
}

func (w *Worker) fetchMessages(ctx context.Context, sub *nats.Subscription) {
	defer w.stopWg.Done()

	for ctx.Err() == nil {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchMaxWait)
		msgs, err := sub.Fetch(fetchBatchSize, nats.Context(fetchCtx))
		cancel()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) ||
				errors.Is(err, nats.ErrTimeout) || errors.Is(err, nats.ErrConnectionClosed) {
				continue
			}
			w.logger.Error("Failed to fetch DLQ messages", zap.Error(err))
			select {
			case <-time.After(time.Second):
			case <-ctx.Done():
			}
			continue
		}

		for _, msg := range msgs {
			select {
			case w.msgCh <- msg:
			case <-ctx.Done():
				return
			}
		}
	}
}

func (w *Worker) dispatchMessages(ctx context.Context) {
	defer w.stopWg.Done()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-w.msgCh:
			current := msg
			err := w.pool.Submit(func() {
				taskCtx, cancel := context.WithTimeout(context.Background(), taskTimeout)
				defer cancel()

				var delivered uint64 = 1
				if meta, err := current.Metadata(); err == nil {
					delivered = meta.NumDelivered
				}
				w.handle(taskCtx, current, current.Data, delivered)
			})
			if err != nil {
				w.logger.Error("Failed to submit task to ants pool", zap.Error(err))
				if nakErr := current.NakWithDelay(5 * time.Second); nakErr != nil {
					w.logger.Error("Failed to NAK message after pool submission error", zap.Error(nakErr))
				}
			}
		}
	}
}

// handle re-drives one DLQ message. numDelivered counts deliveries from the DLQ stream.
func (w *Worker) handle(ctx context.Context, msg settler, data []byte, numDelivered uint64) {
	startTime := time.Now()
	defer func() { observer.ObserveDlqProcessingDuration(time.Since(startTime)) }()

	var payload model.DLQPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		w.logger.Error("Failed to unmarshal DLQ payload", zap.Error(err), zap.ByteString("data", data))
		w.settle(msg.Term(), "dropped")
		return
	}

	log := logger.FromContextOr(ctx, w.logger).With(
		zap.String("source_subject", payload.SourceSubject),
		zap.Uint64("attempt", numDelivered),
		zap.String("original_error", payload.Error),
	)

	if payload.ErrorType != "retryable" {
		log.Warn("Parking fatal event in DLQ")
		w.settle(msg.Term(), "parked")
		return
	}

	handlerCtx := logger.WithLogger(ctx, log)
	err := w.router.Route(handlerCtx, &model.MessageMetadata{
		MessageSubject: payload.SourceSubject,
		NumDelivered:   numDelivered,
		Timestamp:      payload.Timestamp,
	}, payload.OriginalPayload)

	switch {
	case err == nil:
		log.Info("Re-drove event from DLQ")
		w.settle(msg.Ack(), "redriven")
	case !apperrors.IsRetryable(err) || numDelivered >= uint64(w.cfg.MaxRetries):
		log.Warn("Giving up on DLQ event", zap.Error(err), zap.Int("max_retries", w.cfg.MaxRetries))
		w.settle(msg.Term(), "exhausted")
	default:
		delay := calculateBackoffDelay(numDelivered, w.cfg.BaseDelay, w.cfg.MaxDelay)
		log.Info("Retrying DLQ event with backoff", zap.Error(err), zap.Duration("delay", delay))
		w.settle(msg.NakWithDelay(delay), "retry")
	}
}

func (w *Worker) settle(err error, outcome string) {
	if err != nil {
		w.logger.Error("Failed to settle DLQ message", zap.String("outcome", outcome), zap.Error(err))
		outcome = "settle_failed"
	}
	observer.IncDlqTask(outcome)
}

// calculateBackoffDelay doubles base for every attempt after the first, capped at max.
func calculateBackoffDelay(attempt uint64, base, maxDelay time.Duration) time.Duration {
	if attempt <= 1 {
		return base
	}
	if attempt > 32 {
		return maxDelay
	}
	delay := base * time.Duration(1<<(attempt-1))
	if delay > maxDelay || delay <= 0 {
		return maxDelay
	}
	return delay
}

type antsLoggerAdapter struct {
	logger *zap.Logger
}

func newAntsLoggerAdapter(logger *zap.Logger) *antsLoggerAdapter {
	return &antsLoggerAdapter{logger: logger}
}

func (a *antsLoggerAdapter) Printf(format string, args ...interface{}) {
	a.logger.Info(fmt.Sprintf(format, args...))
}
