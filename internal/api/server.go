package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/wonny/macrodash/pkg/config"
	"github.com/wonny/macrodash/pkg/logger"
)

// Server represents the HTTP API server
// ⭐ SSOT: API 서버 설정은 이 파일에서만
type Server struct {
	httpServer *http.Server
	logger     *logger.Logger
	name       string
}

// New creates a new API server
func New(cfg *config.Config, log *logger.Logger, router http.Handler) *Server {
	// 요청 타임아웃보다 쓰기 타임아웃이 짧으면 502/504 응답을 못 보냄
	writeTimeout := cfg.Pipeline.RequestTimeout + 5*time.Second
	if writeTimeout < 15*time.Second {
		writeTimeout = 15 * time.Second
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: writeTimeout,
			IdleTimeout:  60 * time.Second,
		},
		logger: log,
		name:   "API server",
	}
}

// NewMetricsServer serves the Prometheus handler on the metrics port
func NewMetricsServer(cfg *config.Config, log *logger.Logger, handler http.Handler) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", handler)

	return &Server{
		httpServer: &http.Server{
			Addr:         ":" + cfg.MetricsPort,
			Handler:      mux,
			ReadTimeout:  5 * time.Second,
			WriteTimeout: 10 * time.Second,
		},
		logger: log,
		name:   "metrics server",
	}
}

// Addr returns the listen address
func (s *Server) Addr() string {
	return s.httpServer.Addr
}

// Start starts the HTTP server
func (s *Server) Start() error {
	s.logger.WithField("addr", s.httpServer.Addr).Info("Starting " + s.name)

	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start %s: %w", s.name, err)
	}

	return nil
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("Shutting down " + s.name)

	if err := s.httpServer.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown %s: %w", s.name, err)
	}

	return nil
}
