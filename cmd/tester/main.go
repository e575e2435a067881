package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/config"
	"gitlab.com/timkado/api/agency-core/internal/jetstream"
	"gitlab.com/timkado/api/agency-core/internal/model"
	"gitlab.com/timkado/api/agency-core/internal/observer"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// eventTarget is what a generated event refers to.
type eventTarget struct {
	Phones             []string
	BusinessID         int64
	UploadedDocumentID int64
}

// BatchTask is a batch of subjects published by one worker invocation.
type BatchTask struct {
	Subjects   []string
	Target     eventTarget
	NatsClient jetstream.ClientInterface
	wg         *sync.WaitGroup
}

const defaultBatchSize = 50

func main() {
	cfg, err := config.LoadConfig("")
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		os.Exit(1)
	}

	natsURL := flag.String("url", cfg.NATS.URL, "NATS server URL")
	subjectsStr := flag.String("subjects", strings.Join([]string{string(model.V1CallReport), string(model.V1DocumentExtracted)}, ","), "Comma-separated list of intake subjects")
	rate := flag.Int("rate", 50, "Target messages per second (total)")
	duration := flag.Duration("duration", time.Minute, "Load test duration")
	concurrency := flag.Int("concurrency", 10, "Number of concurrent workers")
	batchSize := flag.Int("batch-size", defaultBatchSize, "Number of messages to generate/publish per worker batch")
	phonesStr := flag.String("phones", "", "Comma-separated customer phone numbers for call reports (random when empty)")
	businessID := flag.Int64("business-id", 1, "Business id for document-extracted events")
	uploadedDocID := flag.Int64("uploaded-document-id", 1, "Uploaded document id for document-extracted events")
	metricsPort := flag.Int("metrics-port", 9091, "Port for Prometheus metrics endpoint")
	logLevel := flag.String("log-level", cfg.LogLevel, "Log level (debug, info, warn, error)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Intake Load Generator\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Publishes fake call reports and extracted documents to the intake stream.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if *batchSize <= 0 {
		*batchSize = defaultBatchSize
	}
	if *rate <= 0 {
		fmt.Println("rate must be positive")
		os.Exit(1)
	}

	if err := logger.Initialize(*logLevel); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	observer.InitMetrics(true)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metricsServer := startMetricsServer(*metricsPort)
	var metricsWg sync.WaitGroup
	metricsWg.Add(1)
	go func() {
		defer metricsWg.Done()
		<-ctx.Done()
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := metricsServer.Shutdown(shutdownCtx); err != nil {
			logger.Log.Error("Metrics server shutdown error", zap.Error(err))
		}
	}()

	subjects := splitNonEmpty(*subjectsStr)
	if len(subjects) == 0 {
		logger.Log.Fatal("No subjects provided")
	}
	target := eventTarget{
		Phones:             splitNonEmpty(*phonesStr),
		BusinessID:         *businessID,
		UploadedDocumentID: *uploadedDocID,
	}

	logger.Log.Info("Starting intake load generator",
		zap.String("nats_url", *natsURL),
		zap.Strings("subjects", subjects),
		zap.Int("rate_per_sec", *rate),
		zap.Duration("duration", *duration),
		zap.Int("concurrency", *concurrency),
		zap.Int("batch_size", *batchSize),
		zap.Int("metrics_port", *metricsPort),
	)

	natsClient, err := jetstream.NewClient(*natsURL)
	if err != nil {
		logger.Log.Fatal("Failed to connect to NATS", zap.String("url", *natsURL), zap.Error(err))
	}
	defer natsClient.Close()

	gofakeit.Seed(time.Now().UnixNano())

	var wg sync.WaitGroup
	pool, err := ants.NewPoolWithFunc(*concurrency, func(data interface{}) {
		publishBatch(data.(BatchTask))
	})
	if err != nil {
		logger.Log.Fatal("Failed to create worker pool", zap.Error(err))
	}
	defer pool.Release()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	loopDone := make(chan struct{})
	go func() {
		defer close(loopDone)
		runBatchLoadLoop(ctx, *rate, *duration, *batchSize, subjects, target, natsClient, pool, &wg)
	}()

	select {
	case sig := <-sigChan:
		logger.Log.Info("Received termination signal, shutting down...", zap.String("signal", sig.String()))
		cancel()
		<-loopDone
	case <-loopDone:
		logger.Log.Info("Load generation duration finished")
	}

	logger.Log.Info("Waiting for active publishing tasks to complete...")
	wg.Wait()
	cancel()
	metricsWg.Wait()

	logger.Log.Info("Load generator shutdown complete.")
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func startMetricsServer(port int) *http.Server {
	logger.Log.Info("Starting Prometheus metrics server", zap.Int("port", port))
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("Failed to start Prometheus metrics server", zap.Error(err))
		}
	}()
	return server
}

// runBatchLoadLoop generates subjects at rate and hands them to the pool in batches.
func runBatchLoadLoop(ctx context.Context, rate int, duration time.Duration, batchSize int, subjects []string, target eventTarget, nc jetstream.ClientInterface, pool *ants.PoolWithFunc, wg *sync.WaitGroup) {
	ticker := time.NewTicker(time.Second / time.Duration(rate))
	defer ticker.Stop()

	durationTimer := time.NewTimer(duration)
	defer durationTimer.Stop()

	counter := 0
	batch := make([]string, 0, batchSize)

	submit := func() {
		if len(batch) == 0 {
			return
		}
		task := BatchTask{Subjects: batch, Target: target, NatsClient: nc, wg: wg}
		wg.Add(len(batch))
		if err := pool.Invoke(task); err != nil {
			logger.Log.Warn("Failed to invoke worker pool for batch", zap.Int("batch_task_count", len(batch)), zap.Error(err))
			wg.Add(-len(batch))
			for _, subject := range batch {
				observer.IncLoadgenPublishErrors(subject)
			}
		}
		batch = make([]string, 0, batchSize)
	}

	for {
		select {
		case <-ctx.Done():
			submit()
			return
		case <-durationTimer.C:
			submit()
			return
		case <-ticker.C:
			subject := subjects[counter%len(subjects)]
			counter++
			observer.IncLoadgenMessagesAttempted(subject)

			batch = append(batch, subject)
			if len(batch) >= batchSize {
				submit()
			}
		}
	}
}

// buildPayload returns the fake event for subject.
func buildPayload(subject string, target eventTarget) (interface{}, error) {
	base, _ := model.MapToBaseEventType(subject)
	switch base {
	case model.V1CallReport:
		phone := ""
		if len(target.Phones) > 0 {
			phone = target.Phones[gofakeit.Number(0, len(target.Phones)-1)]
		}
		return model.NewCallReportPayload(phone), nil
	case model.V1DocumentExtracted:
		return model.NewDocumentExtractedPayload(target.BusinessID, target.UploadedDocumentID), nil
	default:
		return nil, fmt.Errorf("unsupported subject %q", subject)
	}
}

func publishBatch(task BatchTask) {
	for _, subject := range task.Subjects {
		func() {
			defer task.wg.Done()

			payload, err := buildPayload(subject, task.Target)
			if err != nil {
				logger.Log.Error("Failed to build payload", zap.String("subject", subject), zap.Error(err))
				observer.IncLoadgenPublishErrors(subject)
				return
			}
			data, err := json.Marshal(payload)
			if err != nil {
				logger.Log.Error("Failed to marshal payload", zap.String("subject", subject), zap.Error(err))
				observer.IncLoadgenPublishErrors(subject)
				return
			}

			headers := map[string]string{"Nats-Msg-Id": uuid.NewString()}
			if err := task.NatsClient.Publish(subject, data, headers); err != nil {
				logger.Log.Error("Failed to publish message", zap.String("subject", subject), zap.Error(err))
				observer.IncLoadgenPublishErrors(subject)
				return
			}
			observer.IncLoadgenMessagesPublished(subject)
		}()
	}
}
