// Package storage holds the blob store backends used for attachment uploads.
package storage

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/janhq/genai-proxy/internal/config"
	"github.com/janhq/genai-proxy/internal/domain/payload"
	"github.com/janhq/genai-proxy/internal/infrastructure/replicate"
)

// NewLocalIfEnabled returns the local backend, or nil when another backend is configured.
func NewLocalIfEnabled(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	if !cfg.IsLocalStorage() {
		return nil, nil
	}
	return NewLocalStorage(cfg, log)
}

// NewBlobStore selects the backend named by BLOB_STORE_BACKEND and wraps it with metrics.
func NewBlobStore(ctx context.Context, cfg *config.Config, upstream *replicate.Client, local *LocalStorage, log zerolog.Logger) (payload.BlobStore, error) {
	var store payload.BlobStore
	switch {
	case cfg.IsS3Storage():
		s3Store, err := NewS3Storage(ctx, cfg, log)
		if err != nil {
			return nil, err
		}
		store = s3Store
	case cfg.IsLocalStorage():
		if local == nil {
			return nil, fmt.Errorf("local storage backend selected but not initialized")
		}
		store = local
	default:
		store = upstream
	}

	log.Info().Str("backend", cfg.BlobStoreBackend).Msg("blob store selected")
	return NewInstrumented(cfg.BlobStoreBackend, store), nil
}
