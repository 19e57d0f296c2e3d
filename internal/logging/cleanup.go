package logging

import (
	"context"
	"log/slog"
	"time"
)

// Pruner deletes log rows older than a cutoff.
type Pruner interface {
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// RunCleanup deletes system logs older than retention immediately and then
// every interval, until ctx is cancelled.
func RunCleanup(ctx context.Context, p Pruner, retention, interval time.Duration) {
	prune := func() {
		cutoff := time.Now().UTC().Add(-retention)
		deleted, err := p.DeleteOlderThan(ctx, cutoff)
		if err != nil {
			if ctx.Err() == nil {
				slog.Error("log cleanup failed", "error", err)
			}
			return
		}
		if deleted > 0 {
			slog.Info("log cleanup completed", "deleted", deleted, "retention_days", int(retention.Hours()/24))
		}
	}

	prune()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			prune()
		case <-ctx.Done():
			return
		}
	}
}
