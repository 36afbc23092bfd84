package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "genai"
	subsystem = "proxy"
)

var (
	// Request counters
	RequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"method", "endpoint"},
	)

	// Job submissions by route and outcome
	SubmissionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "submissions_total",
			Help:      "Total job submissions",
		},
		[]string{"route", "status"},
	)

	// Canonical status observed per poll
	PollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "polls_total",
			Help:      "Total job status polls by canonical status",
		},
		[]string{"status"},
	)

	// Upstream provider calls
	UpstreamRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_requests_total",
			Help:      "Total calls to the inference provider",
		},
		[]string{"operation", "status"},
	)

	UpstreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upstream_duration_seconds",
			Help:      "Inference provider call duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"operation"},
	)

	// Version cache lookups
	VersionCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "version_cache_lookups_total",
			Help:      "Model version cache lookups by result",
		},
		[]string{"result"},
	)

	// Upload counters
	UploadsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "uploads_total",
			Help:      "Total attachment uploads",
		},
		[]string{"backend", "media_type", "status"},
	)

	UploadBytesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upload_bytes_total",
			Help:      "Total attachment bytes uploaded",
		},
		[]string{"backend"},
	)

	UploadDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "upload_duration_seconds",
			Help:      "Attachment upload duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.5, 1, 2, 5},
		},
		[]string{"backend"},
	)
)

// RecordRequest records an HTTP request
func RecordRequest(method, endpoint, status string, durationSec float64) {
	RequestsTotal.WithLabelValues(method, endpoint, status).Inc()
	RequestDuration.WithLabelValues(method, endpoint).Observe(durationSec)
}

// RecordSubmission records the outcome of one job submission
func RecordSubmission(route, status string) {
	SubmissionsTotal.WithLabelValues(route, status).Inc()
}

// RecordPoll records the status returned by a poll
func RecordPoll(status string) {
	PollsTotal.WithLabelValues(status).Inc()
}

// RecordUpstream records one provider call
func RecordUpstream(operation, status string, durationSec float64) {
	UpstreamRequestsTotal.WithLabelValues(operation, status).Inc()
	UpstreamDuration.WithLabelValues(operation).Observe(durationSec)
}

// RecordVersionLookup records a cache hit, miss or bypass
func RecordVersionLookup(result string) {
	VersionCacheTotal.WithLabelValues(result).Inc()
}

// RecordUpload records an attachment upload. The content type comes from the
// caller, so only its top-level type is used as a label.
func RecordUpload(backend, contentType, status string, bytes int, durationSec float64) {
	UploadsTotal.WithLabelValues(backend, MediaType(contentType), status).Inc()
	UploadDuration.WithLabelValues(backend).Observe(durationSec)
	if status == "success" {
		UploadBytesTotal.WithLabelValues(backend).Add(float64(bytes))
	}
}

var mediaTypes = map[string]bool{
	"application": true,
	"audio":       true,
	"font":        true,
	"image":       true,
	"model":       true,
	"text":        true,
	"video":       true,
}

// MediaType reduces a MIME type to its registered top-level type, or "other".
func MediaType(contentType string) string {
	top, _, _ := strings.Cut(strings.ToLower(strings.TrimSpace(contentType)), "/")
	if mediaTypes[top] {
		return top
	}
	return "other"
}
