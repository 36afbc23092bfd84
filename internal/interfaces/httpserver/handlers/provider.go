package handlers

import (
	"github.com/rs/zerolog"

	"github.com/janhq/genai-proxy/internal/domain/job"
	"github.com/janhq/genai-proxy/internal/domain/route"
	"github.com/janhq/genai-proxy/internal/infrastructure/storage"
)

// Provider wires HTTP handlers. Files is nil unless the local blob backend is active.
type Provider struct {
	Jobs  *JobHandler
	Files *FilesHandler
}

func NewProvider(registry *route.Registry, service *job.Service, local *storage.LocalStorage, log zerolog.Logger) *Provider {
	p := &Provider{
		Jobs: NewJobHandler(registry, service, log),
	}
	if local != nil {
		p.Files = NewFilesHandler(local, log)
	}
	return p
}
