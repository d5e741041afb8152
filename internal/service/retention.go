package service

import (
	"context"
	"time"

	"github.com/aplika/jobboard/internal/logger"
)

// JobPruner deletes aged job records. Satisfied by *repository.JobRepository.
type JobPruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RetentionService deletes job records once they age out of the retention
// window. Age is measured from first-seen time, not from the posting date.
type RetentionService struct {
	pruner JobPruner
	maxAge time.Duration
}

// NewRetentionService creates a RetentionService keeping records for
// maxAgeDays days.
func NewRetentionService(pruner JobPruner, maxAgeDays int) *RetentionService {
	if maxAgeDays <= 0 {
		maxAgeDays = 7
	}
	return &RetentionService{
		pruner: pruner,
		maxAge: time.Duration(maxAgeDays) * 24 * time.Hour,
	}
}

// Sweep deletes every job first seen before now minus the retention window
// in one bulk operation and returns the deleted count.
func (s *RetentionService) Sweep(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-s.maxAge)
	deleted, err := s.pruner.DeleteOlderThan(ctx, cutoff)
	if err != nil {
		logger.CtxError(ctx, "Retention sweep failed: %v", err)
		return 0, err
	}
	logger.CtxInfo(ctx, "Deleted %d jobs older than %s", deleted, s.maxAge)
	return deleted, nil
}
