// Package jobs runs periodic background work on a cron schedule.
package jobs

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/hongminglow/mediavault/internal/logging"
)

const refreshTimeout = 30 * time.Second

// UsageSource measures the bytes stored on disk.
type UsageSource interface {
	DiskUsage(ctx context.Context) (int64, error)
}

// UsageSink records the latest measurement.
type UsageSink interface {
	SetDiskUsage(bytes int64)
}

// Scheduler wraps a cron runner.
type Scheduler struct {
	cron   *cron.Cron
	logger logging.Logger
}

func NewScheduler(logger logging.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		logger: logger.With("module", "jobs"),
	}
}

// AddDiskUsageRefresh schedules a periodic disk measurement pushed into sink.
func (s *Scheduler) AddDiskUsageRefresh(spec string, src UsageSource, sink UsageSink) error {
	_, err := s.cron.AddFunc(spec, func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		if err := RefreshDiskUsage(ctx, src, sink); err != nil {
			s.logger.Warn(ctx, "disk usage refresh failed", "err", err)
		}
	})
	if err != nil {
		return fmt.Errorf("schedule disk usage refresh %q: %w", spec, err)
	}
	return nil
}

// Run starts the scheduler and blocks until ctx is done, then waits for
// running jobs to finish.
func (s *Scheduler) Run(ctx context.Context) error {
	s.cron.Start()
	s.logger.Info(ctx, "scheduler started", "jobs", len(s.cron.Entries()))
	<-ctx.Done()
	<-s.cron.Stop().Done()
	return nil
}

// RefreshDiskUsage takes one measurement.
func RefreshDiskUsage(ctx context.Context, src UsageSource, sink UsageSink) error {
	bytes, err := src.DiskUsage(ctx)
	if err != nil {
		return err
	}
	sink.SetDiskUsage(bytes)
	return nil
}
