package common

import (
	"context"
	"time"
)

// contextKey keeps request-scoped values from colliding with other
// packages' context entries.
type contextKey string

const (
	ContextKeyRequestID  contextKey = "request_id"
	ContextKeyDocumentID contextKey = "document_id"
)

// WithRequestID tags ctx with the ID assigned to the inbound request.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// RequestIDFromContext returns the request ID, or "" when none was set.
func RequestIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ContextKeyRequestID)
}

// WithDocumentID tags ctx with the document a unit of work is about, so
// worker and OCR logs can be tied back to it.
func WithDocumentID(ctx context.Context, documentID string) context.Context {
	return context.WithValue(ctx, ContextKeyDocumentID, documentID)
}

// DocumentIDFromContext returns the document ID, or "" when none was set.
func DocumentIDFromContext(ctx context.Context) string {
	return stringValue(ctx, ContextKeyDocumentID)
}

func stringValue(ctx context.Context, key contextKey) string {
	s, _ := ctx.Value(key).(string)
	return s
}

// WithTimeout creates a context with the specified timeout.
func WithTimeout(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, timeout)
}
