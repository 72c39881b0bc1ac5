package commands

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/wonny/macrodash/internal/api"
	"github.com/wonny/macrodash/internal/api/handlers"
	"github.com/wonny/macrodash/internal/scheduler"
)

// apiCmd represents the api command
var apiCmd = &cobra.Command{
	Use:   "api",
	Short: "API 서버 시작",
	Long: `REST API 서버를 시작합니다.

Endpoints:
  GET    /health                          - Health check
  GET    /api/dashboard?window=1y&rows=0  - 대시보드 (테이블 + 요약)
  GET    /api/windows                     - Lookback 프리셋
  GET    /api/catalog                     - 시리즈 카탈로그
  GET    /api/cache                       - 캐시 상태
  DELETE /api/cache                       - 캐시 비우기

Example:
  go run ./cmd/macrodash api
  go run ./cmd/macrodash api --port 8080 --with-scheduler`,
	RunE: runAPIServer,
}

var (
	apiPort       string
	withScheduler bool
)

func init() {
	rootCmd.AddCommand(apiCmd)

	// Flags
	apiCmd.Flags().StringVar(&apiPort, "port", "", "API 서버 포트 (default: PORT)")
	apiCmd.Flags().BoolVar(&withScheduler, "with-scheduler", false, "캐시 warm-up 스케줄러 함께 실행")
}

func runAPIServer(cmd *cobra.Command, args []string) error {
	fmt.Println("=== macrodash API Server ===")

	a, err := bootstrap()
	if err != nil {
		return err
	}
	defer a.Close()

	// Override port if flag is set
	if apiPort != "" {
		a.cfg.Port = apiPort
	}

	log := a.log
	log.WithFields(map[string]interface{}{
		"port": a.cfg.Port,
		"env":  a.cfg.Env,
	}).Info("Initializing API server")

	// Handlers + router
	h := api.Handlers{
		Dashboard: handlers.NewDashboardHandler(a.pipeline, a.resolver, log),
		Catalog:   handlers.NewCatalogHandler(a.catalog, a.pipeline.CatalogHash()),
		Cache:     handlers.NewCacheHandler(a.pipeline, log),
	}
	router := api.NewRouter(h, api.RouterOptions{
		Metrics:        a.metrics,
		RequestTimeout: a.cfg.Pipeline.RequestTimeout,
	}, log)

	servers := []*api.Server{api.New(a.cfg, log, router)}
	if a.cfg.MetricsEnabled {
		servers = append(servers, api.NewMetricsServer(a.cfg, log, a.metrics.Handler()))
	}

	for _, s := range servers {
		go func(s *api.Server) {
			if err := s.Start(); err != nil {
				log.WithError(err).Fatal("Failed to start server")
			}
		}(s)
	}

	var sched *scheduler.Scheduler
	if withScheduler {
		sched, err = a.newScheduler()
		if err != nil {
			return fmt.Errorf("init scheduler: %w", err)
		}
		sched.Start()
	}

	log.Info("API server started successfully")
	fmt.Printf("\n✅ Server running on http://localhost:%s\n", a.cfg.Port)
	if a.cfg.MetricsEnabled {
		fmt.Printf("📈 Metrics on http://localhost:%s/metrics\n", a.cfg.MetricsPort)
	}
	if sched != nil {
		fmt.Printf("⏰ Scheduler jobs: %v\n", sched.GetAllJobs())
	}
	fmt.Println("\nPress Ctrl+C to stop")

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	if sched != nil {
		sched.Stop()
	}

	// Graceful shutdown with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	var shutdownErr error
	for _, s := range servers {
		if err := s.Shutdown(ctx); err != nil {
			shutdownErr = errors.Join(shutdownErr, err)
		}
	}
	if shutdownErr != nil {
		return fmt.Errorf("server shutdown failed: %w", shutdownErr)
	}

	log.Info("Server stopped")
	return nil
}
