package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/information-sharing-networks/kyc-demo/internal/config"
	"github.com/information-sharing-networks/kyc-demo/internal/kyc"
	"github.com/information-sharing-networks/kyc-demo/internal/logger"
	"github.com/information-sharing-networks/kyc-demo/internal/server/handlers"
	"github.com/information-sharing-networks/kyc-demo/internal/server/middleware"
	"github.com/information-sharing-networks/kyc-demo/internal/version"
)

type Server struct {
	config   *config.Environment
	logger   *slog.Logger
	router   *chi.Mux
	service  *kyc.Service
	reporter *kyc.LogReporter
}

// NewServer wires the Sumsub client and workflows and registers the routes.
func NewServer(cfg *config.Environment, logger *slog.Logger) *Server {
	reporter := kyc.NewLogReporter(logger.With(slog.String("component", "kyc")))

	server := &Server{
		config:   cfg,
		logger:   logger,
		router:   chi.NewRouter(),
		service:  kyc.NewService(cfg.SumsubClient(logger), cfg.SumsubLevelName, reporter, logger),
		reporter: reporter,
	}

	server.setupMiddleware()
	server.registerRoutes()

	return server
}

// Router returns the configured router
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) setupMiddleware() {
	s.router.Use(chimiddleware.RequestID)
	s.router.Use(chimiddleware.RealIP)
	s.router.Use(logger.RequestLogging(s.logger))
	s.router.Use(chimiddleware.Recoverer)
	s.router.Use(middleware.SecurityHeaders(s.config.Environment))
	s.router.Use(middleware.RateLimit(s.config.RateLimitRPS, s.config.RateLimitBurst))
	s.router.Use(middleware.RequestSizeLimit(s.config.MaxRequestBodyBytes))
}

func (s *Server) registerRoutes() {
	s.router.Group(func(r chi.Router) {
		r.Use(chimiddleware.Timeout(s.config.WriteTimeout))

		r.Get("/health/live", handlers.HandleHealth)
		r.Get("/version", handlers.HandleVersion(version.Get()))
		r.Method(http.MethodGet, "/metrics", kyc.NewMetricsExporter(s.reporter).Handler())
	})

	// no request timeout: a regenerate run is never cut off between the reset and the link call,
	// each upstream call is bounded by SUMSUB_HTTP_TIMEOUT instead
	s.router.Post("/v1/users/{externalUserId}/session-link", handlers.HandleGenerateSessionLink(s.service))
	s.router.Post("/v1/users/{externalUserId}/session-link/regenerate", handlers.HandleRegenerateSessionLink(s.service))
}

func (s *Server) Start(ctx context.Context) error {
	serverAddr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)

	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           s.router,
		ReadTimeout:       s.config.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      s.config.WriteTimeout,
		IdleTimeout:       s.config.IdleTimeout,
	}

	serverErrors := make(chan error, 1)

	go func() {
		s.logger.Info("service listening",
			slog.String("environment", s.config.Environment),
			slog.String("address", serverAddr))

		err := httpServer.ListenAndServe()
		if err != nil && err != http.ErrServerClosed {
			serverErrors <- fmt.Errorf("server failed to start: %w", err)
		}
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-ctx.Done():
		s.logger.Info("shutdown signal received")
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), s.config.ServerShutdownTimeout)
	defer shutdownCancel()

	s.logger.Info("shutting down HTTP server")

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("HTTP server shutdown error",
			slog.String("error", err.Error()))
		return fmt.Errorf("HTTP server shutdown failed: %w", err)
	}

	s.logger.Info("HTTP server shutdown complete")
	return nil
}
