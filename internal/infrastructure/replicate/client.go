// Package replicate adapts the Replicate HTTP API to the job domain.
package replicate

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"resty.dev/v3"

	"github.com/janhq/genai-proxy/internal/config"
	"github.com/janhq/genai-proxy/internal/infrastructure/metrics"
	"github.com/janhq/genai-proxy/internal/infrastructure/observability"
	"github.com/janhq/genai-proxy/internal/utils/platformerrors"
)

type httpClientStartsAt struct{}

// Client talks to the provider. One outbound call per method; nothing is retried.
type Client struct {
	http    *resty.Client
	baseURL string
	log     zerolog.Logger
}

func NewClient(cfg *config.Config, log zerolog.Logger) *Client {
	log = log.With().Str("component", "replicate-client").Logger()
	return &Client{
		http:    newRestyClient(cfg, log),
		baseURL: strings.TrimRight(cfg.ReplicateBaseURL, "/"),
		log:     log,
	}
}

func newRestyClient(cfg *config.Config, log zerolog.Logger) *resty.Client {
	client := resty.New().
		SetTimeout(cfg.UpstreamTimeout).
		SetHeader("Accept", "application/json")
	if cfg.ReplicateAPIToken != "" {
		client.SetHeader("Authorization", "Bearer "+cfg.ReplicateAPIToken)
	}

	client.AddRequestMiddleware(func(c *resty.Client, r *resty.Request) error {
		r.SetContext(context.WithValue(r.Context(), httpClientStartsAt{}, time.Now()))
		return nil
	})
	client.AddResponseMiddleware(func(c *resty.Client, r *resty.Response) error {
		startTime, _ := r.Request.Context().Value(httpClientStartsAt{}).(time.Time)
		log.Debug().
			Str("request_id", platformerrors.RequestIDFromContext(r.Request.Context())).
			Int("status", r.StatusCode()).
			Str("method", r.Request.Method).
			Str("url", r.Request.URL).
			Dur("latency", time.Since(startTime)).
			Msg("HTTP client request")
		return nil
	})
	return client
}

func (c *Client) endpoint(path string) string {
	if strings.HasPrefix(path, "/") {
		return c.baseURL + path
	}
	return c.baseURL + "/" + path
}

// call wraps one provider round trip with a span and metrics.
func (c *Client) call(ctx context.Context, operation string, fn func(ctx context.Context) (*resty.Response, error)) (*resty.Response, error) {
	ctx, span := observability.StartSpan(ctx, "replicate."+operation, trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	start := time.Now()
	resp, err := fn(ctx)
	status := "error"
	if err == nil {
		status = fmt.Sprintf("%d", resp.StatusCode())
		span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode()))
	}
	metrics.RecordUpstream(operation, status, time.Since(start).Seconds())

	if err != nil {
		observability.RecordError(ctx, err)
		c.log.Error().Err(err).Str("operation", operation).Msg("provider call failed")
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstreamUnavailable,
			"Inference provider is unavailable",
			err, "replicate-unreachable", map[string]any{"operation": operation})
	}
	return resp, nil
}

// errorFromResponse maps a non-2xx response onto the error taxonomy. 422 is a
// caller-fixable input problem; everything else is an upstream failure.
func (c *Client) errorFromResponse(ctx context.Context, resp *resty.Response, operation string) error {
	detail := parseProblem(resp.Bytes())
	fields := map[string]any{"operation": operation, "status": resp.StatusCode()}

	if resp.StatusCode() == 422 && detail != "" {
		return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeValidation, detail, nil, "replicate-invalid-input", fields)
	}

	message := fmt.Sprintf("Inference provider returned status %d", resp.StatusCode())
	if detail != "" {
		message = fmt.Sprintf("%s: %s", message, detail)
	}
	c.log.Warn().Str("operation", operation).Int("status", resp.StatusCode()).Str("detail", detail).Msg("provider returned error")
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure,
		platformerrors.ErrorTypeUpstreamUnavailable, message, nil, "replicate-http-error", fields)
}
