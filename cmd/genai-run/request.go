package main

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/spf13/cobra"

	"github.com/janhq/genai-proxy/internal/domain/job"
	"github.com/janhq/genai-proxy/internal/domain/payload"
	"github.com/janhq/genai-proxy/internal/domain/route"
)

// result is what run, submit and poll print.
type result struct {
	PredictionID string      `json:"prediction_id"`
	Status       job.Status  `json:"status,omitempty"`
	Output       *job.Output `json:"output,omitempty"`
	Error        string      `json:"error,omitempty"`
}

func addRequestFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("prompt", "p", "", "Text prompt")
	cmd.Flags().StringP("image", "i", "", "Image as a local file, an http(s) URL or a data URL")
	cmd.Flags().String("style", "", "Style name (photomaker)")
	cmd.Flags().Int("num-outputs", 0, "Number of outputs to request")
	cmd.Flags().Float64("strength", 0, "Prompt strength between 0 and 1 (img2img)")
	cmd.Flags().String("input", "", "Raw JSON request body; flags override its fields")
}

// requestFields merges --input with the individual flags into the JSON body
// the HTTP endpoint would receive.
func requestFields(cmd *cobra.Command) (map[string]any, error) {
	fields := map[string]any{}
	if raw, _ := cmd.Flags().GetString("input"); raw != "" {
		if err := json.Unmarshal([]byte(raw), &fields); err != nil {
			return nil, fmt.Errorf("--input must be a JSON object: %w", err)
		}
	}

	if v, _ := cmd.Flags().GetString("prompt"); v != "" {
		fields["prompt"] = v
	}
	if v, _ := cmd.Flags().GetString("style"); v != "" {
		fields["style"] = v
	}
	if cmd.Flags().Changed("num-outputs") {
		v, _ := cmd.Flags().GetInt("num-outputs")
		fields["num_outputs"] = v
	}
	if cmd.Flags().Changed("strength") {
		v, _ := cmd.Flags().GetFloat64("strength")
		fields["strength"] = v
	}
	if v, _ := cmd.Flags().GetString("image"); v != "" {
		image, err := imageValue(v)
		if err != nil {
			return nil, err
		}
		fields["image"] = image
	}
	return fields, nil
}

// imageValue passes URLs through and inlines local files as data URLs.
func imageValue(value string) (string, error) {
	if payload.IsInline(value) || payload.IsRemote(value) {
		return value, nil
	}
	data, err := os.ReadFile(value)
	if err != nil {
		return "", fmt.Errorf("read image %s: %w", value, err)
	}
	mt := mimetype.Detect(data).String()
	if i := strings.IndexByte(mt, ';'); i >= 0 {
		mt = mt[:i]
	}
	return "data:" + mt + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// buildRequest decodes fields into the request variant of rt.
func buildRequest(rt route.Route, fields map[string]any) (job.Request, error) {
	req, ok := job.NewRequest(rt.Kind)
	if !ok {
		return nil, fmt.Errorf("route %s has unsupported kind %q", rt.Key, rt.Kind)
	}
	body, err := json.Marshal(fields)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(body, req); err != nil {
		return nil, fmt.Errorf("request fields do not match %s: %w", rt.Key, err)
	}
	return req, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
