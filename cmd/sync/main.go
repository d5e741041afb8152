package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aplika/jobboard/internal/config"
	"github.com/aplika/jobboard/internal/hirebase"
	"github.com/aplika/jobboard/internal/logger"
	"github.com/aplika/jobboard/internal/repository"
	"github.com/aplika/jobboard/internal/service"
)

func main() {
	appLogger := logger.New(&logger.Config{
		Level:       "info",
		Format:      "json",
		ServiceName: "jobboard-sync",
	})
	logger.SetDefault(appLogger)
	defer logger.Sync()

	firstRun := flag.Bool("first-run", false, "Disable the plateau stop condition for initial backfill")
	sweep := flag.Bool("sweep", false, "Run the retention sweep instead of an ingestion run")
	configPath := flag.String("config", "", "Path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	jobRepo := repository.NewJobRepository(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		appLogger.Info("Received shutdown signal, canceling...")
		cancel()
	}()

	if *sweep {
		deleted, err := service.NewRetentionService(jobRepo, cfg.Retention.MaxAgeDays).
			Sweep(ctx, time.Now().UTC())
		if err != nil {
			appLogger.WithError(err).Fatal("Retention sweep failed")
		}
		appLogger.WithField("deleted", deleted).Info("Retention sweep completed")
		return
	}

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

	runRepo := repository.NewSyncRunRepository(db)
	syncService := service.NewSyncService(fetcher, jobRepo, runRepo, &service.SyncConfig{
		StaleAfterDays: cfg.Sync.StaleAfterDays,
		PlateauPages:   cfg.Sync.PlateauPages,
	})

	stats, err := syncService.Run(ctx, *firstRun)
	if err != nil {
		appLogger.WithError(err).Fatal("Ingestion run failed")
	}
	appLogger.WithFields(logger.Fields{
		"pages":       stats.Pages,
		"created":     stats.Created,
		"updated":     stats.Updated,
		"skipped":     stats.Skipped,
		"stop_reason": stats.StopReason,
	}).Info("Ingestion run completed")
}
