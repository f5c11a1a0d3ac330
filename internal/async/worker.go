package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/documind/documind/internal/entity"
)

// Processor is what a worker invokes per job. The documents service
// satisfies it.
type Processor interface {
	ProcessDocument(ctx context.Context, id uuid.UUID) (*entity.Extraction, error)
}

type DocumentQueue struct {
	proc    Processor
	logger  *slog.Logger
	workers int
	timeout time.Duration

	ch   chan Job
	wg   sync.WaitGroup
	once sync.Once

	mu     sync.Mutex
	closed bool
}

type Option func(*DocumentQueue)

func WithWorkers(n int) Option {
	return func(q *DocumentQueue) {
		if n > 0 {
			q.workers = n
		}
	}
}

func WithQueueSize(n int) Option {
	return func(q *DocumentQueue) {
		if n > 0 {
			q.ch = make(chan Job, n)
		}
	}
}

func WithProcessTimeout(d time.Duration) Option {
	return func(q *DocumentQueue) {
		if d > 0 {
			q.timeout = d
		}
	}
}

func NewDocumentQueue(proc Processor, logger *slog.Logger, opts ...Option) *DocumentQueue {
	if logger == nil {
		logger = slog.Default()
	}
	q := &DocumentQueue{
		proc:    proc,
		logger:  logger,
		workers: 4,
		timeout: 2 * time.Minute,
		ch:      make(chan Job, 256),
	}
	for _, o := range opts {
		o(q)
	}
	q.start()
	return q
}

func (q *DocumentQueue) start() {
	q.once.Do(func() {
		for i := 0; i < q.workers; i++ {
			q.wg.Add(1)
			go func(workerID int) {
				defer q.wg.Done()
				q.logger.Info("worker started", "worker_id", workerID)

				for job := range q.ch {
					ctx, cancel := context.WithTimeout(context.Background(), q.timeout)
					ex, err := q.proc.ProcessDocument(ctx, job.DocumentID)
					cancel()

					if err != nil {
						q.logger.Error("processing failed", "worker_id", workerID, "document_id", job.DocumentID, "error", err)
					} else {
						q.logger.Info("processed document",
							"worker_id", workerID, "document_id", job.DocumentID,
							"extraction_id", ex.ID, "document_type", ex.DocumentType, "valid", ex.DocumentValid)
					}
				}

				q.logger.Info("worker stopped", "worker_id", workerID)
			}(i + 1)
		}
	})
}

func (q *DocumentQueue) Enqueue(_ context.Context, job Job) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		q.logger.Warn("cannot enqueue: queue is shutting down", "document_id", job.DocumentID)
		return nil
	}
	select {
	case q.ch <- job:
		q.logger.Info("queued document for processing", "document_id", job.DocumentID, "force", job.Force)
	default:
		q.logger.Warn("queue full, applying backpressure", "document_id", job.DocumentID)
		q.ch <- job
	}
	return nil
}

func (q *DocumentQueue) Shutdown(ctx context.Context) {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	q.closed = true
	close(q.ch)
	q.mu.Unlock()

	done := make(chan struct{})
	go func() { defer close(done); q.wg.Wait() }()

	select {
	case <-ctx.Done():
		q.logger.Warn("shutdown interrupted by context")
	case <-done:
		q.logger.Info("queue drained, shutdown complete")
	}
}
