package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// Worker applies queued tasks to the indexer until its context is cancelled.
type Worker struct {
	queue   Queue
	indexer Indexer
	backoff time.Duration
}

func NewWorker(q Queue, idx Indexer) *Worker {
	return &Worker{queue: q, indexer: idx, backoff: time.Second}
}

func (w *Worker) Run(ctx context.Context) {
	slog.Info("index worker started")
	defer slog.Info("index worker stopped")

	for {
		task, err := w.queue.Dequeue(ctx)
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, ErrQueueClosed) {
				return
			}
			slog.Error("index queue read failed", "error", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(w.backoff):
			}
			continue
		}

		if err := w.apply(ctx, task); err != nil {
			slog.Warn("index task failed", "op", task.Op, "idea_id", task.IdeaID, "error", err)
		}
	}
}

func (w *Worker) apply(ctx context.Context, task Task) error {
	switch task.Op {
	case OpUpsert:
		if task.Doc == nil {
			return fmt.Errorf("upsert task without document")
		}
		return w.indexer.Upsert(ctx, *task.Doc)
	case OpDelete:
		return w.indexer.Delete(ctx, task.IdeaID)
	default:
		return fmt.Errorf("unknown index op %q", task.Op)
	}
}
