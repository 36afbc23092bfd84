package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/janhq/genai-proxy/internal/config"
)

// ErrNotFound is returned by Open for keys that do not exist.
var ErrNotFound = errors.New("file not found")

// typeSuffix names the sidecar holding the content type given to Put.
const typeSuffix = ".content-type"

// LocalStorage keeps attachments on disk; the proxy serves them under /files.
type LocalStorage struct {
	basePath string
	baseURL  string
	log      zerolog.Logger
}

// NewLocalStorage creates a new local filesystem storage backend.
func NewLocalStorage(cfg *config.Config, log zerolog.Logger) (*LocalStorage, error) {
	logger := log.With().Str("component", "local-storage").Logger()

	basePath := strings.TrimSpace(cfg.LocalStoragePath)
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create local storage directory: %w", err)
	}

	storage := &LocalStorage{
		basePath: basePath,
		baseURL:  cfg.LocalFilesBaseURL(),
		log:      logger,
	}

	logger.Info().
		Str("path", basePath).
		Str("base_url", storage.baseURL).
		Msg("local storage initialized")

	return storage, nil
}

// Put writes data under key and returns its public URL.
func (l *LocalStorage) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if contentType != "" {
		if err := os.WriteFile(fullPath+typeSuffix, []byte(contentType), 0644); err != nil {
			return "", fmt.Errorf("failed to write content type: %w", err)
		}
	}

	l.log.Debug().
		Str("key", key).
		Int("bytes", len(data)).
		Msg("file uploaded to local storage")

	return fmt.Sprintf("%s/%s", l.baseURL, filepath.ToSlash(key)), nil
}

// Open returns the stored file and its content type.
func (l *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, string, error) {
	fullPath, err := l.path(key)
	if err != nil {
		return nil, "", err
	}

	file, err := os.Open(fullPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, "", ErrNotFound
		}
		return nil, "", fmt.Errorf("failed to open file: %w", err)
	}
	return file, l.contentType(fullPath), nil
}

// contentType returns the type recorded at Put, falling back to the file itself
// for files written without one.
func (l *LocalStorage) contentType(fullPath string) string {
	if recorded, err := os.ReadFile(fullPath + typeSuffix); err == nil {
		if ct := strings.TrimSpace(string(recorded)); ct != "" {
			return ct
		}
	} else if !os.IsNotExist(err) {
		l.log.Warn().Err(err).Str("path", fullPath).Msg("failed to read content type")
	}
	return contentTypeOf(fullPath)
}

// path resolves key inside basePath, rejecting traversal.
func (l *LocalStorage) path(key string) (string, error) {
	clean := filepath.Clean("/" + filepath.FromSlash(key))
	if clean == string(filepath.Separator) || strings.HasSuffix(clean, typeSuffix) {
		return "", ErrNotFound
	}
	return filepath.Join(l.basePath, clean), nil
}

// contentTypeOf trusts the extension the uploader chose and sniffs otherwise.
func contentTypeOf(path string) string {
	if ct := mime.TypeByExtension(filepath.Ext(path)); ct != "" {
		return ct
	}
	if m, err := mimetype.DetectFile(path); err == nil {
		return m.String()
	}
	return "application/octet-stream"
}
