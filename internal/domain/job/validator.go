package job

import (
	"context"
	"fmt"
	"strings"

	"github.com/janhq/genai-proxy/internal/domain/route"
	"github.com/janhq/genai-proxy/internal/utils/platformerrors"
)

// Validate checks req against the route policy. Missing identity fields are
// rejected; bounded convenience parameters are clamped instead.
func Validate(ctx context.Context, rt route.Route, req Request) (*Input, error) {
	if req == nil {
		return nil, validationError(ctx, "body", "Request body is required")
	}
	if req.Kind() != rt.Kind {
		return nil, platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
			platformerrors.ErrorTypeInternal,
			fmt.Sprintf("request kind %s does not match route %s", req.Kind(), rt.Key),
			nil, "job-kind-mismatch",
			map[string]any{"route_key": rt.Key, "route_kind": rt.Kind, "request_kind": req.Kind()})
	}
	return req.build(ctx, rt.Policy)
}

func requireText(ctx context.Context, value, field, message string) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", validationError(ctx, field, message)
	}
	return trimmed, nil
}

func validationError(ctx context.Context, field, message string) error {
	return platformerrors.NewErrorWithContext(ctx, platformerrors.LayerDomain,
		platformerrors.ErrorTypeValidation, message, nil, "job-validation",
		map[string]any{"missing_field": field})
}

func baseParams(policy route.Policy) Parameters {
	params := make(Parameters, len(policy.Defaults)+4)
	for k, v := range policy.Defaults {
		params[k] = v
	}
	return params
}

// setOutputs writes num_outputs clamped to [1, MaxOutputs]. Routes without a
// maximum take no count parameter.
func setOutputs(params Parameters, policy route.Policy, requested *int) {
	if policy.MaxOutputs <= 0 {
		return
	}
	n := policy.DefaultOutputs
	if requested != nil {
		n = *requested
	}
	if n < 1 {
		n = 1
	}
	if n > policy.MaxOutputs {
		n = policy.MaxOutputs
	}
	params["num_outputs"] = n
}

// applyTrigger keeps prompts that already contain the trigger token, in any
// case, and wraps the others in the route template.
func applyTrigger(prompt string, policy route.Policy) string {
	if policy.TriggerToken == "" || strings.Contains(strings.ToLower(prompt), strings.ToLower(policy.TriggerToken)) {
		return prompt
	}
	return fmt.Sprintf(policy.TriggerTemplate, prompt)
}

func clampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
