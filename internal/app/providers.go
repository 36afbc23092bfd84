// Package app assembles the proxy components shared by the server and the CLI.
package app

import (
	"context"
	"fmt"

	"github.com/google/wire"
	"github.com/rs/zerolog"

	"github.com/janhq/genai-proxy/internal/config"
	"github.com/janhq/genai-proxy/internal/domain/job"
	"github.com/janhq/genai-proxy/internal/domain/payload"
	"github.com/janhq/genai-proxy/internal/domain/route"
	"github.com/janhq/genai-proxy/internal/infrastructure/replicate"
	"github.com/janhq/genai-proxy/internal/infrastructure/storage"
	"github.com/janhq/genai-proxy/internal/infrastructure/versioncache"
)

// ProviderSet builds a *job.Service from config and a logger.
var ProviderSet = wire.NewSet(
	NewRouteRegistry,
	replicate.NewClient,
	NewVersionCache,
	storage.NewLocalIfEnabled,
	storage.NewBlobStore,
	NewUploader,
	NewJobService,
)

// NewRouteRegistry loads ROUTES_FILE when set and the built-in table otherwise.
func NewRouteRegistry(cfg *config.Config, log zerolog.Logger) (*route.Registry, error) {
	routes := route.Defaults()
	if cfg.RoutesFile != "" {
		loaded, err := route.LoadFile(cfg.RoutesFile)
		if err != nil {
			return nil, err
		}
		routes = loaded
	}

	registry, err := route.NewRegistry(routes)
	if err != nil {
		return nil, err
	}
	if err := job.CheckRoutes(registry.Routes()); err != nil {
		return nil, err
	}

	for _, r := range registry.Routes() {
		log.Info().
			Str("route", r.Key).
			Str("kind", r.Kind).
			Str("model", r.Reference.String()).
			Bool("pinned", r.Reference.Pinned()).
			Msg("route registered")
	}
	return registry, nil
}

func NewVersionCache(client *replicate.Client, cfg *config.Config, log zerolog.Logger) *versioncache.Cache {
	return versioncache.New(client, cfg.ModelVersionCacheTTL, log)
}

func NewUploader(store payload.BlobStore, cfg *config.Config, log zerolog.Logger) *payload.Uploader {
	return payload.NewUploader(store, cfg.MaxPayloadBytes, log)
}

func NewJobService(registry *route.Registry, client *replicate.Client, cache *versioncache.Cache, uploader *payload.Uploader, log zerolog.Logger) *job.Service {
	return job.NewService(registry, client, cache, uploader, log)
}

// Components is everything a front end needs to talk to the job service.
type Components struct {
	Registry *route.Registry
	Service  *job.Service
	Local    *storage.LocalStorage
}

// Build assembles the components by hand, in the same order ProviderSet does.
func Build(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Components, error) {
	if cfg.ReplicateAPIToken == "" {
		log.Warn().Msg("REPLICATE_API_TOKEN is not set; upstream calls will be rejected")
	}

	registry, err := NewRouteRegistry(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("load routes: %w", err)
	}
	client := replicate.NewClient(cfg, log)

	local, err := storage.NewLocalIfEnabled(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("initialize local storage: %w", err)
	}
	store, err := storage.NewBlobStore(ctx, cfg, client, local, log)
	if err != nil {
		return nil, fmt.Errorf("initialize blob store: %w", err)
	}

	service := NewJobService(registry, client, NewVersionCache(client, cfg, log), NewUploader(store, cfg, log), log)
	return &Components{Registry: registry, Service: service, Local: local}, nil
}
