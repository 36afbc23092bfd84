// Package payload turns inline binary attachments into fetchable URLs so job
// submissions carry a reference instead of the bytes.
package payload

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog"

	"github.com/janhq/genai-proxy/internal/utils/assetid"
	"github.com/janhq/genai-proxy/internal/utils/platformerrors"
)

const (
	dataScheme     = "data:"
	encodingMarker = "base64"
	fallbackExt    = ".bin"
)

// BlobStore persists bytes and returns a URL the provider can fetch.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) (string, error)
}

// Inline is a decoded data URL.
type Inline struct {
	MimeType string
	Data     []byte
}

// Asset is the result of one upload.
type Asset struct {
	Data     []byte
	MimeType string
	URL      string
}

// Uploader decodes inline payloads and writes them to a blob store.
type Uploader struct {
	store    BlobStore
	maxBytes int64
	log      zerolog.Logger
}

func NewUploader(store BlobStore, maxBytes int64, log zerolog.Logger) *Uploader {
	return &Uploader{
		store:    store,
		maxBytes: maxBytes,
		log:      log.With().Str("component", "payload-uploader").Logger(),
	}
}

// IsInline reports whether value looks like a data URL.
func IsInline(value string) bool {
	return strings.HasPrefix(strings.TrimSpace(value), dataScheme)
}

// IsRemote reports whether value is already a fetchable http(s) URL.
func IsRemote(value string) bool {
	v := strings.ToLower(strings.TrimSpace(value))
	return strings.HasPrefix(v, "https://") || strings.HasPrefix(v, "http://")
}

// Decode parses "data:<mime>;base64,<payload>".
func Decode(ctx context.Context, value string) (*Inline, error) {
	value = strings.TrimSpace(value)
	if !strings.HasPrefix(value, dataScheme) {
		return nil, invalidEncoding(ctx, "attachment is not a data URL", nil)
	}
	header, body, ok := strings.Cut(strings.TrimPrefix(value, dataScheme), ",")
	if !ok {
		return nil, invalidEncoding(ctx, "data URL has no payload", nil)
	}

	params := strings.Split(header, ";")
	if len(params) < 2 || !strings.EqualFold(strings.TrimSpace(params[len(params)-1]), encodingMarker) {
		return nil, invalidEncoding(ctx, "data URL must be base64 encoded", nil)
	}
	mimeType := strings.ToLower(strings.TrimSpace(params[0]))
	if mimeType == "" {
		mimeType = "application/octet-stream"
	}

	data, err := base64.StdEncoding.DecodeString(body)
	if err != nil {
		return nil, invalidEncoding(ctx, "data URL payload is not valid base64", err)
	}
	if len(data) == 0 {
		return nil, invalidEncoding(ctx, "data URL payload is empty", nil)
	}
	return &Inline{MimeType: mimeType, Data: data}, nil
}

// Extension derives a file extension from a MIME type.
func Extension(mimeType string) string {
	if m := mimetype.Lookup(mimeType); m != nil && m.Extension() != "" {
		return m.Extension()
	}
	return fallbackExt
}

// Upload decodes value and stores it. A store failure is returned as UploadFailed
// and is not retried.
func (u *Uploader) Upload(ctx context.Context, value string) (*Asset, error) {
	inline, err := Decode(ctx, value)
	if err != nil {
		return nil, err
	}
	if u.maxBytes > 0 && int64(len(inline.Data)) > u.maxBytes {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeValidation,
			fmt.Sprintf("Attachment exceeds maximum size of %d bytes", u.maxBytes),
			nil, "payload-too-large",
			map[string]any{"bytes": len(inline.Data)})
	}

	key := assetid.New() + Extension(inline.MimeType)
	url, err := u.store.Put(ctx, key, inline.Data, inline.MimeType)
	if err != nil {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeUploadFailed,
			"Failed to upload attachment",
			err, "payload-upload-failed",
			map[string]any{"key": key, "mime": inline.MimeType, "bytes": len(inline.Data)})
	}

	u.log.Debug().
		Str("key", key).
		Str("mime", inline.MimeType).
		Int("bytes", len(inline.Data)).
		Msg("attachment uploaded")

	return &Asset{Data: inline.Data, MimeType: inline.MimeType, URL: url}, nil
}

// Resolve returns a URL for an attachment field: remote URLs pass through,
// data URLs are uploaded, anything else is rejected.
func (u *Uploader) Resolve(ctx context.Context, value string) (string, error) {
	if IsRemote(value) {
		return strings.TrimSpace(value), nil
	}
	asset, err := u.Upload(ctx, value)
	if err != nil {
		return "", err
	}
	return asset.URL, nil
}

func invalidEncoding(ctx context.Context, message string, err error) error {
	return platformerrors.NewError(ctx, platformerrors.LayerDomain,
		platformerrors.ErrorTypeInvalidPayloadEncoding, message, err, "payload-invalid-encoding")
}
