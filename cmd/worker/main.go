package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/aplika/jobboard/internal/config"
	"github.com/aplika/jobboard/internal/hirebase"
	"github.com/aplika/jobboard/internal/logger"
	"github.com/aplika/jobboard/internal/repository"
	"github.com/aplika/jobboard/internal/scheduler"
	"github.com/aplika/jobboard/internal/service"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "jobboard-worker",
	})
	logger.SetDefault(appLogger)
	defer logger.Sync()

	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	jobRepo := repository.NewJobRepository(db)
	runRepo := repository.NewSyncRunRepository(db)

	fetcher := hirebase.NewClient(hirebase.Config{
		Endpoint:   cfg.Hirebase.Endpoint,
		APIKey:     cfg.Hirebase.APIKey,
		PageLimit:  cfg.Hirebase.PageLimit,
		SortBy:     cfg.Hirebase.SortBy,
		SortOrder:  cfg.Hirebase.SortOrder,
		Timeout:    cfg.Hirebase.Timeout,
		Retries:    cfg.Hirebase.Retries,
		RetryDelay: cfg.Hirebase.RetryDelay,
	})

	syncService := service.NewSyncService(fetcher, jobRepo, runRepo, &service.SyncConfig{
		StaleAfterDays: cfg.Sync.StaleAfterDays,
		PlateauPages:   cfg.Sync.PlateauPages,
	})
	retentionService := service.NewRetentionService(jobRepo, cfg.Retention.MaxAgeDays)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sched := scheduler.New(syncService, retentionService, cfg.Sync.IntervalHours, cfg.Retention.Schedule)
	if err := sched.Start(ctx); err != nil {
		appLogger.WithError(err).Fatal("Failed to start scheduler")
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down worker...")
	cancel()
	sched.Stop()
	appLogger.Info("Worker exited")
}
