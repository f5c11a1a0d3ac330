package ingest

import (
	"context"
	"log/slog"
	"time"

	"github.com/documind/documind/internal/async"
	"github.com/documind/documind/internal/documents"
)

// Stats counts what a runner saw, for the shutdown log line.
type Stats struct {
	Seen         uint32
	Ingested     uint32
	Deduplicated uint32
	Failed       uint32
}

type Runner struct {
	svc    *documents.Service
	queue  async.Queue
	logger *slog.Logger

	// Reprocess enqueues files whose content is already known.
	Reprocess bool
}

func NewRunner(svc *documents.Service, queue async.Queue, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{svc: svc, queue: queue, logger: logger}
}

// Run consumes watcher events until ctx ends or the channels close,
// registering each file and queueing it for processing.
func (r *Runner) Run(ctx context.Context, events <-chan string, errs <-chan error) Stats {
	var stats Stats
	for {
		select {
		case <-ctx.Done():
			r.logStats(stats)
			return stats
		case path, ok := <-events:
			if !ok {
				r.logStats(stats)
				return stats
			}
			stats.Seen++
			doc, dedup, err := r.svc.IngestPath(ctx, path)
			if err != nil {
				stats.Failed++
				r.logger.Error("ingest.file_failed", "path", path, "error", err)
				continue
			}
			if dedup {
				stats.Deduplicated++
				if !r.Reprocess {
					r.logger.Debug("ingest.skip_duplicate", "path", path, "document_id", doc.ID)
					continue
				}
			}
			stats.Ingested++
			if err := r.queue.Enqueue(ctx, async.Job{
				DocumentID:  doc.ID,
				Force:       dedup && r.Reprocess,
				SubmittedAt: time.Now(),
			}); err != nil {
				r.logger.Error("ingest.enqueue_failed", "document_id", doc.ID, "error", err)
			}
		case err, ok := <-errs:
			if !ok {
				errs = nil // stop selecting on the closed channel
				continue
			}
			r.logger.Warn("ingest.watcher_error", "error", err)
		}
	}
}

func (r *Runner) logStats(s Stats) {
	r.logger.Info("ingest.done",
		"seen", s.Seen, "ingested", s.Ingested,
		"deduplicated", s.Deduplicated, "failed", s.Failed)
}
