package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/janhq/genai-proxy/internal/app"
	"github.com/janhq/genai-proxy/internal/config"
	"github.com/janhq/genai-proxy/internal/infrastructure/logger"
)

// session is the configured pipeline one command works with.
type session struct {
	cfg        *config.Config
	log        zerolog.Logger
	components *app.Components
}

func loadEnvFiles(extra string) error {
	for _, path := range []string{".env", "../.env"} {
		if _, err := os.Stat(path); err == nil {
			if err := godotenv.Overload(path); err != nil {
				return err
			}
		}
	}
	if extra != "" {
		return godotenv.Overload(extra)
	}
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, zerolog.Logger, error) {
	envFile, _ := cmd.Flags().GetString("env-file")
	if err := loadEnvFiles(envFile); err != nil {
		return nil, zerolog.Nop(), err
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	// stdout carries the JSON result.
	return cfg, logger.NewWithWriter(cfg, os.Stderr), nil
}

func newSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	cfg, log, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	components, err := app.Build(ctx, cfg, log)
	if err != nil {
		return nil, err
	}
	return &session{cfg: cfg, log: log, components: components}, nil
}
