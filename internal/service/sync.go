package service

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/aplika/jobboard/internal/domain"
	"github.com/aplika/jobboard/internal/hirebase"
	"github.com/aplika/jobboard/internal/logger"
)

// ErrRunInProgress means an ingestion run is already active. Runs race on
// the same upsert keys and plateau heuristic, so only one may execute at a
// time.
var ErrRunInProgress = errors.New("an ingestion run is already active")

// PageFetcher fetches one upstream page. Satisfied by *hirebase.Client.
type PageFetcher interface {
	FetchPage(ctx context.Context, page int) (*hirebase.PageResponse, error)
	PageLimit() int
}

// JobStore persists normalized job records. Satisfied by *repository.JobRepository.
type JobStore interface {
	Upsert(ctx context.Context, job *domain.Job) (bool, error)
}

// RunLog records run lifecycle for observability. Satisfied by
// *repository.SyncRunRepository. May be nil.
type RunLog interface {
	Start(ctx context.Context, id string, firstRun bool) error
	Finish(ctx context.Context, id string, status domain.RunStatus, stats *domain.RunStats, errLog string) error
}

// SyncConfig holds the stop-condition thresholds.
type SyncConfig struct {
	StaleAfterDays int // leading record older than this stops the run
	PlateauPages   int // consecutive full-update pages that stop the run
}

// SyncService walks upstream pages in order and ingests them until a stop
// condition fires. Pages are processed strictly sequentially: the plateau
// counter and the newest-first ordering assumption both depend on it.
type SyncService struct {
	fetcher        PageFetcher
	store          JobStore
	runs           RunLog
	staleAfterDays int
	plateauPages   int
	running        atomic.Bool
	now            func() time.Time
}

// NewSyncService creates a SyncService. runs may be nil when run records are
// not wanted (tests, one-shot CLI against a dry store).
func NewSyncService(fetcher PageFetcher, store JobStore, runs RunLog, cfg *SyncConfig) *SyncService {
	staleAfter := 8
	plateau := 5
	if cfg != nil {
		if cfg.StaleAfterDays > 0 {
			staleAfter = cfg.StaleAfterDays
		}
		if cfg.PlateauPages > 0 {
			plateau = cfg.PlateauPages
		}
	}
	return &SyncService{
		fetcher:        fetcher,
		store:          store,
		runs:           runs,
		staleAfterDays: staleAfter,
		plateauPages:   plateau,
		now:            time.Now,
	}
}

// Run executes one ingestion run. firstRun disables the plateau gate so an
// empty store can be back-filled past pages of already-seen data.
//
// The page loop stops on the first of: a fetch that exhausted its retries,
// an empty page, a stale leading record, the plateau gate, or the known page
// total. Per-record failures are logged and skipped without affecting
// siblings. The returned error is non-nil only when the run ended on a fetch
// failure or when another run was active.
func (s *SyncService) Run(ctx context.Context, firstRun bool) (*domain.RunStats, error) {
	if !s.running.CompareAndSwap(false, true) {
		return nil, ErrRunInProgress
	}
	defer s.running.Store(false)

	return s.run(ctx, uuid.New().String(), firstRun)
}

// StartAsync launches a run in the background and returns its id
// immediately. The run is fire-and-forget: its outcome is observable only
// through logs and the sync_runs table.
func (s *SyncService) StartAsync(firstRun bool) (string, error) {
	if !s.running.CompareAndSwap(false, true) {
		return "", ErrRunInProgress
	}

	runID := uuid.New().String()
	go func() {
		defer s.running.Store(false)
		// Detached from the triggering request on purpose.
		_, _ = s.run(context.Background(), runID, firstRun)
	}()
	return runID, nil
}

func (s *SyncService) run(ctx context.Context, runID string, firstRun bool) (*domain.RunStats, error) {
	ctx = logger.SetRunID(ctx, runID)

	stats := &domain.RunStats{StartTime: s.now()}
	if s.runs != nil {
		if err := s.runs.Start(ctx, runID, firstRun); err != nil {
			logger.CtxError(ctx, "Failed to record run start: %v", err)
		}
	}
	logger.CtxInfo(ctx, "Starting ingestion run (first_run=%v)", firstRun)

	limit := s.fetcher.PageLimit()
	totalPages := 0
	plateau := 0
	var runErr error

	for page := 1; ; page++ {
		pctx := logger.WithField(ctx, logger.FieldPage, page)

		resp, err := s.fetcher.FetchPage(pctx, page)
		if err != nil {
			logger.CtxError(pctx, "Fetch for page %d failed, ending run: %v", page, err)
			stats.StopReason = domain.StopFetchFailed
			runErr = err
			break
		}
		if len(resp.Jobs) == 0 {
			logger.CtxInfo(pctx, "No jobs found on page %d", page)
			stats.StopReason = domain.StopEmptyPage
			break
		}

		// Pages arrive newest-first, so a stale leading record means every
		// later page is stale too. An unparseable date never stops the run.
		if posted, ok := hirebase.PostedAt(resp.Jobs[0]); ok {
			ageDays := int(s.now().Sub(posted).Hours() / 24)
			if ageDays > s.staleAfterDays {
				logger.CtxInfo(pctx, "First job on page %d is %d days old, stopping", page, ageDays)
				stats.StopReason = domain.StopStale
				break
			}
		} else {
			logger.CtxWarn(pctx, "Could not parse posting date of first job on page %d, proceeding with page", page)
		}

		created, updated := s.processPage(pctx, resp.Jobs, stats)
		stats.Pages++
		logger.CtxInfo(pctx, "Page %d: created %d jobs, updated %d jobs", page, created, updated)

		// A full-update page saw nothing new. Enough of them in a row means
		// the feed looped back into already-ingested data.
		if updated == limit {
			plateau++
		} else {
			plateau = 0
		}
		if plateau >= s.plateauPages && !firstRun {
			logger.CtxInfo(pctx, "%d consecutive full-update pages, stopping", plateau)
			stats.StopReason = domain.StopPlateau
			break
		}

		if page == 1 && resp.TotalPages > 0 {
			totalPages = resp.TotalPages
			logger.CtxInfo(pctx, "Upstream reports %d total pages", totalPages)
		}
		known := totalPages
		if known == 0 {
			// No declared total: keep advancing until an empty page shows up.
			known = page + 1
		}
		if page >= known {
			stats.StopReason = domain.StopCompleted
			break
		}
	}

	stats.EndTime = s.now()

	status := domain.RunStatusCompleted
	errLog := ""
	if runErr != nil {
		status = domain.RunStatusFailed
		errLog = runErr.Error()
	}
	if s.runs != nil {
		if err := s.runs.Finish(ctx, runID, status, stats, errLog); err != nil {
			logger.CtxError(ctx, "Failed to record run finish: %v", err)
		}
	}

	logger.FromContext(ctx).WithFields(logger.Fields{
		"pages":       stats.Pages,
		"created":     stats.Created,
		"updated":     stats.Updated,
		"skipped":     stats.Skipped,
		"stop_reason": stats.StopReason,
		"duration":    stats.EndTime.Sub(stats.StartTime).String(),
	}).Info("Ingestion run finished")

	return stats, runErr
}

// processPage normalizes and upserts every record of a page. Each record is
// its own transaction; a bad record is logged and skipped so its siblings
// still land.
func (s *SyncService) processPage(ctx context.Context, jobs []hirebase.RawJob, stats *domain.RunStats) (created, updated int) {
	for _, raw := range jobs {
		job, err := hirebase.Normalize(raw, s.now())
		if err != nil {
			logger.CtxWarn(ctx, "Skipping record: %v", err)
			stats.Skipped++
			continue
		}

		wasCreated, err := s.store.Upsert(ctx, job)
		if err != nil {
			logger.CtxError(ctx, "Failed to process job %s: %v", job.ExternalID, err)
			stats.Skipped++
			continue
		}

		if wasCreated {
			created++
		} else {
			updated++
		}
		stats.Processed++
	}

	stats.Created += created
	stats.Updated += updated
	return created, updated
}
