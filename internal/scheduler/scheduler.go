// Package scheduler wires up the cron jobs that periodically trigger
// ingestion runs and the retention sweep.
package scheduler

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/aplika/jobboard/internal/logger"
	"github.com/aplika/jobboard/internal/service"
)

// Scheduler wraps robfig/cron and manages the periodic sync and sweep jobs.
type Scheduler struct {
	cron      *cron.Cron
	sync      *service.SyncService
	retention *service.RetentionService
	syncSpec  string // e.g. "@every 6h"
	sweepSpec string // e.g. "@daily"
}

// New creates a Scheduler that syncs every intervalHours hours and sweeps on
// sweepSpec.
func New(sync *service.SyncService, retention *service.RetentionService, intervalHours int, sweepSpec string) *Scheduler {
	if intervalHours <= 0 {
		intervalHours = 6
	}
	if sweepSpec == "" {
		sweepSpec = "@daily"
	}
	return &Scheduler{
		cron:      cron.New(),
		sync:      sync,
		retention: retention,
		syncSpec:  fmt.Sprintf("@every %dh", intervalHours),
		sweepSpec: sweepSpec,
	}
}

// Start registers the jobs and starts the scheduler. Also runs one sync
// immediately so a fresh deployment is populated without waiting for the
// first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	if _, err := s.cron.AddFunc(s.syncSpec, func() { s.runSync(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(sync): %w", err)
	}
	if _, err := s.cron.AddFunc(s.sweepSpec, func() { s.runSweep(ctx) }); err != nil {
		return fmt.Errorf("cron.AddFunc(sweep): %w", err)
	}

	s.cron.Start()
	logger.CtxInfo(ctx, "Scheduler started: sync %s, sweep %s", s.syncSpec, s.sweepSpec)

	go s.runSync(ctx)

	return nil
}

// Stop gracefully shuts down the scheduler, waiting for a running job to
// finish.
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	logger.Default().Info("Scheduler stopped")
}

// runSync triggers one ingestion run. A tick that fires while the previous
// run is still active is skipped: two concurrent runs would race on the same
// upsert keys and plateau heuristic.
func (s *Scheduler) runSync(ctx context.Context) {
	if _, err := s.sync.Run(ctx, false); err != nil {
		if errors.Is(err, service.ErrRunInProgress) {
			logger.CtxWarn(ctx, "Previous sync run still active, skipping tick")
			return
		}
		logger.CtxError(ctx, "Sync run failed: %v", err)
	}
}

func (s *Scheduler) runSweep(ctx context.Context) {
	if _, err := s.retention.Sweep(ctx, time.Now().UTC()); err != nil {
		logger.CtxError(ctx, "Retention sweep failed: %v", err)
	}
}
