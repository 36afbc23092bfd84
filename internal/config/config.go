package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the proxy.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"genai-proxy"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"PORT" envDefault:"8000"`
	LogLevel        string        `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat       string        `env:"LOG_FORMAT" envDefault:"console"` // Options: "console" or "json"
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
	CORSOrigins     []string      `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`

	// Upstream provider
	ReplicateAPIToken string        `env:"REPLICATE_API_TOKEN"`
	ReplicateBaseURL  string        `env:"REPLICATE_BASE_URL" envDefault:"https://api.replicate.com/v1"`
	UpstreamTimeout   time.Duration `env:"UPSTREAM_TIMEOUT" envDefault:"30s"`

	// Route table. Zero TTL resolves the latest version on every submission.
	RoutesFile           string        `env:"ROUTES_FILE"`
	ModelVersionCacheTTL time.Duration `env:"MODEL_VERSION_CACHE_TTL" envDefault:"10m"`

	// Payload indirection
	BlobStoreBackend string `env:"BLOB_STORE_BACKEND" envDefault:"upstream"` // Options: "upstream", "s3" or "local"
	MaxPayloadBytes  int64  `env:"MAX_PAYLOAD_BYTES" envDefault:"20971520"`

	// Local Storage Configuration
	LocalStoragePath    string `env:"LOCAL_STORAGE_PATH" envDefault:"./uploads"`
	LocalStorageBaseURL string `env:"LOCAL_STORAGE_BASE_URL"` // e.g. "http://localhost:8000/files"

	// S3 Storage Configuration
	S3Endpoint     string        `env:"S3_ENDPOINT"`
	S3Region       string        `env:"S3_REGION" envDefault:"us-west-2"`
	S3Bucket       string        `env:"S3_BUCKET"`
	S3AccessKeyID  string        `env:"S3_ACCESS_KEY_ID"`
	S3SecretKey    string        `env:"S3_SECRET_ACCESS_KEY"`
	S3UsePathStyle bool          `env:"S3_USE_PATH_STYLE" envDefault:"true"`
	S3PresignTTL   time.Duration `env:"S3_PRESIGN_TTL" envDefault:"24h"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.ReplicateAPIToken = strings.TrimSpace(cfg.ReplicateAPIToken)
	cfg.ReplicateBaseURL = strings.TrimSuffix(strings.TrimSpace(cfg.ReplicateBaseURL), "/")
	cfg.S3Bucket = strings.TrimSpace(cfg.S3Bucket)
	cfg.S3AccessKeyID = strings.TrimSpace(cfg.S3AccessKeyID)
	cfg.S3SecretKey = strings.TrimSpace(cfg.S3SecretKey)
	cfg.S3Endpoint = strings.TrimSpace(cfg.S3Endpoint)
	cfg.BlobStoreBackend = strings.ToLower(strings.TrimSpace(cfg.BlobStoreBackend))
	if cfg.MaxPayloadBytes <= 0 {
		cfg.MaxPayloadBytes = 20 * 1024 * 1024
	}
	if cfg.ModelVersionCacheTTL < 0 {
		return nil, fmt.Errorf("MODEL_VERSION_CACHE_TTL must not be negative")
	}

	switch cfg.BlobStoreBackend {
	case "", "upstream":
		cfg.BlobStoreBackend = "upstream"
	case "local":
		if strings.TrimSpace(cfg.LocalStoragePath) == "" {
			return nil, fmt.Errorf("LOCAL_STORAGE_PATH is required when BLOB_STORE_BACKEND is local")
		}
	case "s3":
		if cfg.S3Bucket == "" {
			return nil, fmt.Errorf("S3_BUCKET is required when BLOB_STORE_BACKEND is s3")
		}
	default:
		return nil, fmt.Errorf("unknown BLOB_STORE_BACKEND %q", cfg.BlobStoreBackend)
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// IsLocalStorage returns true if the local blob backend is configured.
func (c *Config) IsLocalStorage() bool {
	return c.BlobStoreBackend == "local"
}

// IsS3Storage returns true if the S3 blob backend is configured.
func (c *Config) IsS3Storage() bool {
	return c.BlobStoreBackend == "s3"
}

// LocalFilesBaseURL returns the public prefix for files served by the local backend.
func (c *Config) LocalFilesBaseURL() string {
	if base := strings.TrimSpace(c.LocalStorageBaseURL); base != "" {
		return strings.TrimSuffix(base, "/")
	}
	return fmt.Sprintf("http://localhost:%d/files", c.HTTPPort)
}
