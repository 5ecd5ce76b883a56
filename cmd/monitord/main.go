package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/pulseguard/pulseguard/internal/alerting"
	"github.com/pulseguard/pulseguard/internal/config"
	"github.com/pulseguard/pulseguard/internal/httpapi"
	"github.com/pulseguard/pulseguard/internal/httpapi/middleware"
	"github.com/pulseguard/pulseguard/internal/jobs"
	"github.com/pulseguard/pulseguard/internal/logging"
	"github.com/pulseguard/pulseguard/internal/notify"
	"github.com/pulseguard/pulseguard/internal/probe"
	"github.com/pulseguard/pulseguard/internal/repo"
	"github.com/pulseguard/pulseguard/internal/repo/memory"
	"github.com/pulseguard/pulseguard/internal/repo/postgres"
	"github.com/pulseguard/pulseguard/internal/scheduler"
)

func main() {
	cfg := config.FromEnv()
	logger, err := logging.NewLogger(cfg.LogDir)
	if err != nil {
		log.Fatal(err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		registry repo.MonitorRegistry
		history  repo.HistoryStore
		alerts   repo.AlertStore
	)
	if cfg.DatabaseURL != "" {
		if err := postgres.Migrate(cfg.DatabaseURL); err != nil {
			logger.Fatal("migrate_error", zap.Error(err))
		}
		store, err := postgres.New(ctx, cfg.DatabaseURL, logger)
		if err != nil {
			logger.Fatal("db_connect_error", zap.Error(err))
		}
		defer store.Close()
		registry, history, alerts = store, store, store
		logger.Info("store_selected", zap.String("store", "postgres"))
	} else {
		store := memory.New()
		registry, history, alerts = store, store, store
		logger.Warn("store_selected", zap.String("store", "memory"))
	}

	var notifier notify.Notifier
	if s := notify.NewSlack(cfg.SlackWebhookURL); s != nil {
		notifier = s
	}
	emitter := alerting.NewEmitter(logger, alerts, notifier)

	prober := probe.NewHTTPProber()
	sched := scheduler.New(logger, registry, history, emitter, prober,
		cfg.CheckInterval, cfg.MaxConcurrent)

	janitor := jobs.NewJanitor(logger, history, alerts, cfg.RetentionDays)
	if err := janitor.Start(); err != nil {
		logger.Fatal("janitor_start_error", zap.Error(err))
	}
	defer janitor.Stop()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sched.Run(ctx)
	}()

	api := httpapi.NewServer(logger, registry, history, alerts, prober, cfg.DefaultTimeout)
	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: api.Router(middleware.Keys{
			Public: cfg.PublicAPIKeys,
			Admin:  cfg.AdminAPIKeys,
		}, cfg.APIRatePerMin, cfg.APIBurst),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		logger.Info("api_listen", zap.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api_serve_error", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown_started")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("api_shutdown_error", zap.Error(err))
	}

	// The scheduler drains in-flight checks before Run returns.
	wg.Wait()
	logger.Info("shutdown_complete")
}
