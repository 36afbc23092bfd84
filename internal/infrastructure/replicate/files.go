package replicate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"resty.dev/v3"
)

type fileResponse struct {
	ID   string `json:"id"`
	URLs struct {
		Get string `json:"get"`
	} `json:"urls"`
}

// Put uploads an attachment to the provider files API and returns its fetch URL.
func (c *Client) Put(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	resp, err := c.call(ctx, "upload_file", func(ctx context.Context) (*resty.Response, error) {
		return c.http.R().
			SetContext(ctx).
			SetMultipartFields(&resty.MultipartField{
				Name:        "content",
				FileName:    key,
				ContentType: contentType,
				Reader:      bytes.NewReader(data),
			}).
			Post(c.endpoint("/files"))
	})
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", c.errorFromResponse(ctx, resp, "upload_file")
	}

	var f fileResponse
	if err := json.Unmarshal(resp.Bytes(), &f); err != nil {
		return "", fmt.Errorf("decode file response: %w", err)
	}
	if f.URLs.Get == "" {
		return "", fmt.Errorf("file response for %s has no url", key)
	}
	return f.URLs.Get, nil
}
