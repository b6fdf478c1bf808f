// internal/app/system/tasks/jobs.go
package tasks

import (
	"context"
	"errors"
	"time"

	"github.com/dalemusser/stratashare/internal/app/store/localcache"
	"github.com/dalemusser/stratashare/internal/app/system/syncer"
	"go.uber.org/zap"
)

// PerformanceSyncJob creates a job that runs one sync cycle on each tick,
// pushing queued records to the remote store and pulling recent remote
// updates into the local cache. A cycle skipped because the syncer is
// unauthenticated or offline is not an error.
func PerformanceSyncJob(s *syncer.Syncer, interval time.Duration, logger *zap.Logger) Job {
	return Job{
		Name:     "performance-sync",
		Interval: interval,
		Run: func(ctx context.Context) error {
			err := s.SyncNow(ctx)
			if errors.Is(err, syncer.ErrSyncUnavailable) {
				logger.Debug("sync cycle skipped", zap.Error(err))
				return nil
			}
			return err
		},
	}
}

// LocalCacheCompactJob creates a job that drops orphaned pending-sync
// queue entries and lets SQLite reclaim space.
func LocalCacheCompactJob(cache *localcache.Store, logger *zap.Logger) Job {
	return Job{
		Name:     "local-cache-compact",
		Interval: 6 * time.Hour,
		Run: func(ctx context.Context) error {
			if err := cache.Compact(); err != nil {
				return err
			}
			logger.Debug("local cache compacted")
			return nil
		},
	}
}
