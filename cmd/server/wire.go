//go:build wireinject

package main

import (
	"context"

	"github.com/google/wire"

	"github.com/janhq/genai-proxy/internal/app"
	"github.com/janhq/genai-proxy/internal/config"
	"github.com/janhq/genai-proxy/internal/infrastructure/logger"
	"github.com/janhq/genai-proxy/internal/interfaces/httpserver"
	"github.com/janhq/genai-proxy/internal/interfaces/httpserver/handlers"
)

// BuildApplication assembles the proxy with Wire.
func BuildApplication(ctx context.Context) (*Application, error) {
	wire.Build(
		config.Load,
		logger.New,
		app.ProviderSet,
		handlers.NewProvider,
		httpserver.New,
		NewApplication,
	)
	return nil, nil
}
