package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/app"
	"gitlab.com/timkado/api/agency-core/internal/config"
	"gitlab.com/timkado/api/agency-core/internal/dlqworker"
	"gitlab.com/timkado/api/agency-core/internal/extract"
	"gitlab.com/timkado/api/agency-core/internal/filestore"
	"gitlab.com/timkado/api/agency-core/internal/healthcheck"
	"gitlab.com/timkado/api/agency-core/internal/ingestion"
	"gitlab.com/timkado/api/agency-core/internal/jetstream"
	"gitlab.com/timkado/api/agency-core/internal/llm"
	"gitlab.com/timkado/api/agency-core/internal/observer"
	"gitlab.com/timkado/api/agency-core/internal/pkg/jwt"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
	"gitlab.com/timkado/api/agency-core/internal/voice"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
	"gitlab.com/timkado/api/agency-core/pkg/utils"
)

func serveCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API, health server and intake consumer",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := bootstrap(*configPath)
			if err != nil {
				return err
			}
			defer logger.Sync()
			return serve(cfg)
		},
	}
}

// intake groups the queue components, which only exist when NATS is enabled.
type intake struct {
	client    *jetstream.Client
	consumer  *ingestion.IntakeConsumer
	dlqWorker *dlqworker.Worker
}

func serve(cfg *config.Config) error {
	observer.InitMetrics(cfg.Metrics.Enabled)

	logger.Log.Info("Starting agency core",
		zap.String("environment", cfg.Environment),
		zap.Int("port", cfg.Server.Port),
		zap.Bool("nats_enabled", cfg.NATS.Enabled),
	)

	mainCtx, mainCancel := context.WithCancel(context.Background())
	defer mainCancel()

	postgresRepo, err := initPostgresRepo(mainCtx, cfg.Database.PostgresDSN, cfg.Database.PostgresAutoMigrate)
	if err != nil {
		return err
	}

	tokens, err := jwt.NewManager(cfg.Auth.JWTSecret, cfg.Auth.Issuer, cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("failed to initialize token manager: %w", err)
	}

	files, err := filestore.NewDiskStore(cfg.Storage.MediaRoot, cfg.Storage.MaxUploadBytes)
	if err != nil {
		return fmt.Errorf("failed to initialize file store: %w", err)
	}

	extractionPool, err := extract.NewPool(cfg.WorkerPools.Extraction, logger.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize extraction pool: %w", err)
	}

	deps := usecase.Dependencies{
		Repo:      postgresRepo,
		Files:     files,
		Pool:      extractionPool,
		Providers: initProviders(cfg),
		Tokens:    tokens,
	}
	if cfg.Voice.APIKey != "" {
		deps.Caller = voice.NewClient(cfg.Voice)
	} else {
		logger.Log.Warn("Voice provider API key not set, outbound calls are disabled")
	}
	service := usecase.NewService(deps)

	apiServer := app.NewServer(cfg, service, tokens)

	healthServer := healthcheck.NewServer(strconv.Itoa(cfg.Metrics.Port), logger.Log)
	healthServer.RegisterCheck("postgres", postgresRepo)
	if cfg.Metrics.Enabled {
		healthServer.RegisterMetricsHandler(promhttp.Handler())
		logger.Log.Info("Metrics endpoint enabled", zap.String("path", "/metrics"), zap.Int("port", cfg.Metrics.Port))
	} else {
		logger.Log.Info("Metrics endpoint disabled for environment", zap.String("environment", cfg.Environment))
	}

	var queue *intake
	if cfg.NATS.Enabled {
		queue, err = startIntake(mainCtx, cfg, service)
		if err != nil {
			return err
		}
		healthServer.RegisterCheck("nats", queue.client)
	}

	healthServer.Start()
	apiErrCh := apiServer.Start()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	select {
	case sig := <-sigChan:
		logger.Log.Info("Received termination signal", zap.String("signal", sig.String()))
	case err := <-apiErrCh:
		logger.Log.Error("API server failed, initiating shutdown...", zap.Error(err))
	}

	mainCancel()

	timeout := cfg.Server.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	logger.Log.Info("Starting graceful shutdown", zap.Duration("timeout", timeout))

	var wg sync.WaitGroup

	stop := func(name string, fn func()) {
		wg.Add(1)
		utils.SafeGo(func() {
			defer wg.Done()
			logger.Log.Info("[shutdown] Stopping " + name)
			start := time.Now()
			fn()
			logger.Log.Info("[shutdown] Stopped "+name, zap.Duration("duration", time.Since(start)))
		}, func(r interface{}, stack []byte) {
			logger.Log.Error("[shutdown] Panic while stopping "+name,
				zap.Any("panic", r),
				zap.ByteString("stack", stack),
			)
			wg.Done()
		})
	}

	stop("API server", func() {
		if err := apiServer.Stop(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Error stopping API server", zap.Error(err))
		}
	})
	if queue != nil {
		stop("intake consumer", func() {
			queue.consumer.Stop()
			if queue.dlqWorker != nil {
				queue.dlqWorker.Stop()
			}
			queue.client.Close()
		})
	}
	stop("health check server", func() {
		if err := healthServer.Stop(shutdownCtx); err != nil {
			logger.Log.Error("[shutdown] Error stopping health check server", zap.Error(err))
		}
	})
	stop("extraction pool", extractionPool.Release)

	// Wait with a timeout for all components to shut down
	waitCh := make(chan struct{})
	go func() {
		wg.Wait()
		close(waitCh)
	}()

	select {
	case <-waitCh:
		logger.Log.Info("[shutdown] All components stopped gracefully")
	case <-shutdownCtx.Done():
		logger.Log.Warn("[shutdown] Graceful shutdown timed out, forcing exit")
	}

	logger.Log.Info("[shutdown] Closing PostgreSQL connection")
	closeRepo(postgresRepo)

	logger.Log.Info("Agency core shutdown complete")
	return nil
}

func initProviders(cfg *config.Config) *llm.Registry {
	var providers []llm.Provider
	if cfg.AI.Anthropic.APIKey != "" {
		providers = append(providers, llm.NewAnthropic(cfg.AI.Anthropic))
	}
	if cfg.AI.OpenAI.APIKey != "" {
		providers = append(providers, llm.NewOpenAI(cfg.AI.OpenAI))
	}
	registry := llm.NewRegistry(providers...)
	logger.Log.Info("Text generation providers configured", zap.Strings("providers", registry.Names()))
	return registry
}

// startIntake connects to JetStream, then creates and starts the intake
// consumer and, when enabled, the DLQ worker.
func startIntake(ctx context.Context, cfg *config.Config, service *usecase.Service) (*intake, error) {
	client, err := jetstream.NewClient(cfg.NATS.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to create JetStream client: %w", err)
	}

	router := ingestion.NewRouter()
	ingestion.NewIntakeHandler(service).Register(router)

	consumer := ingestion.NewIntakeConsumer(client, router, cfg.NATS.Intake, cfg.NATS.DLQSubject)
	if err := consumer.Setup(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to set up intake consumer: %w", err)
	}
	if err := consumer.Start(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to start intake consumer: %w", err)
	}

	q := &intake{client: client, consumer: consumer}
	if !cfg.NATS.DLQ.Enabled {
		return q, nil
	}

	worker, err := dlqworker.NewWorker(cfg.NATS.DLQ, consumer.DLQStreamName(), cfg.NATS.DLQSubject, client, router)
	if err != nil {
		consumer.Stop()
		client.Close()
		return nil, fmt.Errorf("failed to initialize DLQ worker: %w", err)
	}
	if err := worker.Start(ctx); err != nil {
		worker.Stop()
		consumer.Stop()
		client.Close()
		return nil, fmt.Errorf("failed to start DLQ worker: %w", err)
	}
	q.dlqWorker = worker
	return q, nil
}
