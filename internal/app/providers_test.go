package app

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/janhq/genai-proxy/internal/config"
	"github.com/janhq/genai-proxy/internal/domain/route"
)

func TestNewRouteRegistry(t *testing.T) {
	dir := t.TempDir()
	custom := filepath.Join(dir, "routes.yaml")
	require.NoError(t, os.WriteFile(custom, []byte(`routes:
  - key: caption
    kind: img2txt
    model: salesforce/blip
`), 0o600))
	unknownKind := filepath.Join(dir, "unknown.yaml")
	require.NoError(t, os.WriteFile(unknownKind, []byte(`routes:
  - key: video
    model: acme/video
`), 0o600))

	tests := []struct {
		name    string
		file    string
		keys    []string
		wantErr bool
	}{
		{name: "built-in table", keys: []string{
			route.KeyImg2Img, route.KeyImg2Txt, route.KeyImg3D,
			route.KeyPhotoMaker, route.KeyTxt2Img, route.KeyTxt3D,
		}},
		{name: "routes file", file: custom, keys: []string{"caption"}},
		{name: "unknown kind", file: unknownKind, wantErr: true},
		{name: "missing file", file: filepath.Join(dir, "nope.yaml"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			registry, err := NewRouteRegistry(&config.Config{RoutesFile: tt.file}, zerolog.Nop())
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.keys, registry.Keys())
		})
	}
}

func TestBuildWithLocalBackend(t *testing.T) {
	cfg := &config.Config{
		ReplicateBaseURL:     "http://127.0.0.1:1/v1",
		UpstreamTimeout:      time.Second,
		ModelVersionCacheTTL: time.Minute,
		BlobStoreBackend:     "local",
		LocalStoragePath:     t.TempDir(),
		HTTPPort:             8000,
		MaxPayloadBytes:      1 << 20,
	}

	components, err := Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.NotNil(t, components.Service)
	assert.NotNil(t, components.Local)
	assert.Len(t, components.Registry.Routes(), 6)

	cfg.BlobStoreBackend = "upstream"
	components, err = Build(context.Background(), cfg, zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, components.Local)
}
