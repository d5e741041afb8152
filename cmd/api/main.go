package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aplika/jobboard/internal/api"
	"github.com/aplika/jobboard/internal/config"
	"github.com/aplika/jobboard/internal/hirebase"
	"github.com/aplika/jobboard/internal/logger"
	"github.com/aplika/jobboard/internal/repository"
	"github.com/aplika/jobboard/internal/service"
)

func main() {
	appLogger := logger.New(nil)
	logger.SetDefault(appLogger)
	defer logger.Sync()

	// Support CONFIG_PATH environment variable for production deployments
	cfg, err := config.Load(os.Getenv("CONFIG_PATH"))
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to load config")
	}

	db, err := repository.InitDB(&cfg.Database)
	if err != nil {
		appLogger.WithError(err).Fatal("Failed to initialize database")
	}

	ctx := context.Background()

	// The facet cache degrades to per-request rebuilds without Redis, so an
	// unreachable cache backend is not fatal for the API.
	rdb, err := repository.NewRedisClient(ctx, cfg.Redis.URL)
	if err != nil {
		appLogger.WithError(err).Warn("Redis unavailable, facet caching disabled")
		rdb = nil
	} else {
		defer rdb.Close()
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

	jobService := service.NewJobService(jobRepo)
	facetService := service.NewFacetService(rdb, jobRepo, cfg.Cache.FacetTTL)
	syncService := service.NewSyncService(fetcher, jobRepo, runRepo, &service.SyncConfig{
		StaleAfterDays: cfg.Sync.StaleAfterDays,
		PlateauPages:   cfg.Sync.PlateauPages,
	})

	router := api.SetupRouter(jobService, facetService, syncService, &cfg.Server)

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}

	go func() {
		appLogger.WithFields(logger.Fields{
			"port": cfg.Server.Port,
			"mode": cfg.Server.Mode,
		}).Info("Starting API server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			appLogger.WithError(err).Fatal("Failed to start server")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	appLogger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		appLogger.WithError(err).Fatal("Server forced to shutdown")
	}

	appLogger.Info("Server exited")
}
