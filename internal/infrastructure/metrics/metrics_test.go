package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMediaType(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"image/png", "image"},
		{"IMAGE/WEBP", "image"},
		{"audio/x-custom", "audio"},
		{"application/x-8f3a1c", "application"},
		{"text/plain; charset=utf-8", "text"},
		{"x-evil/anything", "other"},
		{"", "other"},
		{"garbage", "other"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, MediaType(tt.in))
		})
	}
}

func TestRecordUploadBoundsSeries(t *testing.T) {
	UploadsTotal.Reset()

	for _, ct := range []string{
		"application/x-aaaa",
		"application/x-bbbb",
		"application/x-cccc",
		"application/x-dddd",
	} {
		RecordUpload("local", ct, "success", 10, 0.01)
	}

	assert.Equal(t, 1, testutil.CollectAndCount(UploadsTotal))
	assert.Equal(t, float64(4), testutil.ToFloat64(UploadsTotal.WithLabelValues("local", "application", "success")))
}
