// Package async runs document processing on a bounded worker pool so
// ingestion never blocks on OCR or pipeline latency.
package async

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Queue is the submission side of the pool. Producers (HTTP handlers, the
// filesystem runner) only ever see this interface.
type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}

// Job asks the pool to run the processing pipeline over one stored
// document. Force distinguishes an explicit reprocess from a fresh ingest.
type Job struct {
	DocumentID  uuid.UUID
	Force       bool
	SubmittedAt time.Time
	TraceID     string
}
