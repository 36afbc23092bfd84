package replicate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"resty.dev/v3"

	"github.com/janhq/genai-proxy/internal/utils/platformerrors"
)

type model struct {
	Owner         string `json:"owner"`
	Name          string `json:"name"`
	LatestVersion *struct {
		ID string `json:"id"`
	} `json:"latest_version"`
}

// LatestVersion returns the newest published version id of an owner/name
// model, or "" when the model publishes none (official models).
func (c *Client) LatestVersion(ctx context.Context, modelRef string) (string, error) {
	owner, name, ok := strings.Cut(modelRef, "/")
	if !ok {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeInternal,
			fmt.Sprintf("invalid model %q", modelRef), nil, "replicate-invalid-model")
	}

	resp, err := c.call(ctx, "get_model", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			Get(c.endpoint(fmt.Sprintf("/models/%s/%s", url.PathEscape(owner), url.PathEscape(name))))
	})
	if err != nil {
		return "", err
	}
	if resp.StatusCode() == http.StatusNotFound {
		return "", platformerrors.NewErrorWithContext(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstreamUnavailable,
			fmt.Sprintf("Model %s is not available upstream", modelRef),
			nil, "replicate-model-not-found", map[string]any{"model": modelRef})
	}
	if resp.IsError() {
		return "", c.errorFromResponse(ctx, resp, "get_model")
	}

	var m model
	if err := json.Unmarshal(resp.Bytes(), &m); err != nil {
		return "", platformerrors.NewError(ctx, platformerrors.LayerInfrastructure,
			platformerrors.ErrorTypeUpstreamUnavailable,
			"Inference provider returned an unreadable model", err, "replicate-decode")
	}
	if m.LatestVersion == nil {
		return "", nil
	}
	return m.LatestVersion.ID, nil
}
