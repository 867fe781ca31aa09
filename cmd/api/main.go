package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"campuspulse-backend/infrastructure/config"
	"campuspulse-backend/infrastructure/di"
	"campuspulse-backend/interfaces/http/rest"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	container, err := di.InitializeContainer(ctx, cfg)
	if err != nil {
		log.Fatalf("building container: %v", err)
	}
	logger := container.Logger
	defer func() { _ = logger.Sync() }()

	if cfg.DynamicConfigPath != "" {
		watcher := config.NewWatcher(cfg.DynamicConfigPath, logger, func(dc config.DynamicConfig) {
			container.Scheduler.SetIntervals(dc.EngagementInterval(), dc.NotificationInterval())
		})
		if err := watcher.Start(ctx); err != nil {
			logger.Warn("Dynamic config watcher failed to start", zap.Error(err))
		}
	}

	container.Sessions.StartSweeper(ctx)
	container.Scheduler.Start(ctx)

	server := &http.Server{
		Addr:         cfg.ServerAddress,
		Handler:      rest.NewRouter(container).Setup(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("Server listening",
			zap.String("address", cfg.ServerAddress),
			zap.String("backend", cfg.StorageBackend),
			zap.String("environment", cfg.Environment),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown failed", zap.Error(err))
	}

	container.Scheduler.Stop()
	cancel()

	if container.TracingShutdown != nil {
		if err := container.TracingShutdown(shutdownCtx); err != nil {
			logger.Warn("Trace flush failed", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
}
