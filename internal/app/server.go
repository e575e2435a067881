package app

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"gitlab.com/timkado/api/agency-core/internal/config"
	"gitlab.com/timkado/api/agency-core/internal/handlers"
	"gitlab.com/timkado/api/agency-core/internal/middleware"
	"gitlab.com/timkado/api/agency-core/internal/usecase"
	"gitlab.com/timkado/api/agency-core/pkg/logger"
)

// Server is the public HTTP API.
type Server struct {
	httpServer *http.Server
}

// NewEngine builds the gin engine with the request middleware chain and all routes.
func NewEngine(svc *usecase.Service, verifier middleware.TokenVerifier, maxUploadBytes int64) *gin.Engine {
	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.AccessLog(), middleware.Recovery())
	if maxUploadBytes > 0 {
		engine.MaxMultipartMemory = maxUploadBytes
	}
	SetupRouter(engine, handlers.New(svc), verifier)
	return engine
}

// NewServer wraps the engine with CORS and the configured timeouts.
func NewServer(cfg *config.Config, svc *usecase.Service, verifier middleware.TokenVerifier) *Server {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	engine := NewEngine(svc, verifier, cfg.Storage.MaxUploadBytes)

	corsHandler := cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           int((12 * time.Hour).Seconds()),
	})

	return &Server{
		httpServer: &http.Server{
			Addr:              ":" + strconv.Itoa(cfg.Server.Port),
			Handler:           corsHandler.Handler(engine),
			ReadTimeout:       cfg.Server.ReadTimeout,
			ReadHeaderTimeout: 10 * time.Second,
			WriteTimeout:      cfg.Server.WriteTimeout,
		},
	}
}

// Handler returns the CORS-wrapped handler.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Start serves in the background. A listen failure is sent on the returned channel.
func (s *Server) Start() <-chan error {
	errCh := make(chan error, 1)
	go func() {
		logger.Log.Info("Starting API server", zap.String("addr", s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Log.Error("API server error", zap.Error(err))
			errCh <- err
		}
		close(errCh)
	}()
	return errCh
}

// Stop gracefully shuts down the HTTP server
func (s *Server) Stop(ctx context.Context) error {
	logger.Log.Info("Stopping API server")
	return s.httpServer.Shutdown(ctx)
}
