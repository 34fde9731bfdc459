// Package rewrite is the HTTP client for the rewrite server's POST /api/mutate.
package rewrite

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/example/pebble/internal/core/stage"
	"github.com/example/pebble/internal/ports/secondary"
)

// Client implements secondary.RewriteClient over HTTP.
type Client struct {
	endpoint string
	http     *http.Client
}

// NewClient creates a Client for endpoint. timeout bounds each request.
func NewClient(endpoint string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &Client{endpoint: endpoint, http: &http.Client{Timeout: timeout}}
}

type mutateRequest struct {
	Text  string `json:"text"`
	Stage int    `json:"stage"`
}

type mutateResponse struct {
	OK     bool   `json:"ok"`
	Result string `json:"result"`
	Error  string `json:"error"`
}

// Rewrite posts text and s and returns the server's result.
func (c *Client) Rewrite(ctx context.Context, text string, s stage.Stage) (string, error) {
	body, err := json.Marshal(mutateRequest{Text: text, Stage: int(s)})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("rewrite request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read rewrite response: %w", err)
	}
	var out mutateResponse
	// A body that is not JSON is reported through the status or the ok flag.
	_ = json.Unmarshal(raw, &out)

	if resp.StatusCode != http.StatusOK || !out.OK {
		msg := out.Error
		if msg == "" {
			msg = "mutate failed"
		}
		return "", fmt.Errorf("rewrite server returned %d: %w", resp.StatusCode, errors.New(msg))
	}
	return out.Result, nil
}

var _ secondary.RewriteClient = (*Client)(nil)
