package worker

import (
	"context"
	"time"

	"github.com/jwalitptl/homecare-api/internal/repository"
	"github.com/jwalitptl/homecare-api/pkg/logger"
)

// OutboxCleanupWorker purges processed outbox rows older than the retention.
type OutboxCleanupWorker struct {
	repo      repository.OutboxRepository
	retention time.Duration
	interval  time.Duration
	logger    *logger.Logger
	now       func() time.Time
}

func NewOutboxCleanupWorker(repo repository.OutboxRepository, retention, interval time.Duration, logger *logger.Logger) *OutboxCleanupWorker {
	if interval <= 0 {
		interval = time.Hour
	}
	return &OutboxCleanupWorker{
		repo:      repo,
		retention: retention,
		interval:  interval,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

func (w *OutboxCleanupWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if _, err := w.Purge(ctx); err != nil {
				w.logger.Error(err, "failed to purge outbox")
			}
		}
	}
}

// Purge deletes processed events older than the retention. A non-positive
// retention keeps everything.
func (w *OutboxCleanupWorker) Purge(ctx context.Context) (int64, error) {
	if w.retention <= 0 {
		return 0, nil
	}
	n, err := w.repo.DeleteProcessedBefore(ctx, w.now().Add(-w.retention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		w.logger.Info("outbox purged", "deleted", n)
	}
	return n, nil
}
