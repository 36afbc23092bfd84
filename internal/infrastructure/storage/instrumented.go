package storage

import (
	"context"
	"time"

	"github.com/janhq/genai-proxy/internal/domain/payload"
	"github.com/janhq/genai-proxy/internal/infrastructure/metrics"
	"github.com/janhq/genai-proxy/internal/infrastructure/observability"
)

// Instrumented records upload metrics and a span around another store.
type Instrumented struct {
	backend string
	next    payload.BlobStore
}

func NewInstrumented(backend string, next payload.BlobStore) *Instrumented {
	return &Instrumented{backend: backend, next: next}
}

func (i *Instrumented) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	ctx, span := observability.StartSpan(ctx, "storage.put")
	defer span.End()

	start := time.Now()
	url, err := i.next.Put(ctx, key, data, contentType)
	status := "success"
	if err != nil {
		status = "error"
		observability.RecordError(ctx, err)
	}
	metrics.RecordUpload(i.backend, contentType, status, len(data), time.Since(start).Seconds())
	return url, err
}
