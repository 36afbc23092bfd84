package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"resty.dev/v3"

	"github.com/janhq/genai-proxy/internal/domain/job"
	"github.com/janhq/genai-proxy/internal/utils/platformerrors"
)

type createPredictionRequest struct {
	Version string         `json:"version,omitempty"`
	Input   job.Parameters `json:"input"`
}

type prediction struct {
	ID      string          `json:"id"`
	Version string          `json:"version"`
	Status  string          `json:"status"`
	Output  json.RawMessage `json:"output"`
	Error   json.RawMessage `json:"error"`
}

var statusMap = map[string]job.Status{
	"starting":   job.StatusQueued,
	"processing": job.StatusRunning,
	"succeeded":  job.StatusSucceeded,
	"failed":     job.StatusFailed,
	"canceled":   job.StatusCanceled,
	"cancelled":  job.StatusCanceled,
	"aborted":    job.StatusCanceled,
}

// NormalizeStatus maps the provider vocabulary onto canonical statuses.
func NormalizeStatus(raw string) (job.Status, bool) {
	s, ok := statusMap[strings.ToLower(strings.TrimSpace(raw))]
	return s, ok
}

// CreatePrediction submits a job. A target without a version goes through the
// model-scoped endpoint.
func (c *Client) CreatePrediction(ctx context.Context, target job.Target, params job.Parameters) (string, error) {
	body := createPredictionRequest{Version: target.Version, Input: params}
	path := "/predictions"
	if target.Version == "" {
		owner, name, ok := strings.Cut(target.Model, "/")
		if !ok {
			return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
				platformerrors.ErrorTypeInternal,
				fmt.Sprintf("invalid model %q", target.Model), nil, "replicate-invalid-model")
		}
		path = fmt.Sprintf("/models/%s/%s/predictions", url.PathEscape(owner), url.PathEscape(name))
	}

	resp, err := c.call(ctx, "create_prediction", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetHeader("Content-Type", "application/json").
			SetBody(body).
			Post(c.endpoint(path))
	})
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", c.errorFromResponse(ctx, resp, "create_prediction")
	}

	var p prediction
	if err := json.Unmarshal(resp.Bytes(), &p); err != nil || p.ID == "" {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstreamUnavailable,
			"Inference provider returned an unreadable prediction", err, "replicate-decode")
	}
	return p.ID, nil
}

// GetPrediction fetches a job and normalizes its status and output.
func (c *Client) GetPrediction(ctx context.Context, id string) (*job.Prediction, error) {
	resp, err := c.call(ctx, "get_prediction", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			Get(c.endpoint("/predictions/" + url.PathEscape(id)))
	})
	if err != nil {
		return nil, err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeJobNotFound, "Prediction not found", nil, "replicate-prediction-not-found",
			map[string]any{"prediction_id": id})
	}
	if resp.IsError() {
		return nil, c.errorFromResponse(ctx, resp, "get_prediction")
	}

	var p prediction
	if err := json.Unmarshal(resp.Bytes(), &p); err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstreamUnavailable,
			"Inference provider returned an unreadable prediction", err, "replicate-decode")
	}
	return toDomain(ctx, id, &p)
}

func toDomain(ctx context.Context, id string, p *prediction) (*job.Prediction, error) {
	status, ok := NormalizeStatus(p.Status)
	if !ok {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstreamUnavailable,
			fmt.Sprintf("Inference provider reported unknown status %q", p.Status),
			nil, "replicate-unknown-status", map[string]any{"prediction_id": id})
	}

	output, err := job.ParseOutput(p.Output)
	if err != nil {
		return nil, platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstreamUnavailable,
			"Inference provider returned unreadable output", err, "replicate-decode-output")
	}

	if p.ID != "" {
		id = p.ID
	}
	return &job.Prediction{ID: id, Status: status, Output: output, Error: errorText(p.Error)}, nil
}

// errorText flattens the provider error field, which may be a string or an object.
func errorText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	if msg := parseProblem(raw); msg != "" {
		return msg
	}
	return string(raw)
}

// parseProblem extracts a message from a provider error body.
func parseProblem(body []byte) string {
	var problem struct {
		Detail  string `json:"detail"`
		Title   string `json:"title"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &problem); err != nil {
		return strings.TrimSpace(string(body))
	}
	for _, v := range []string{problem.Detail, problem.Message, problem.Title} {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
