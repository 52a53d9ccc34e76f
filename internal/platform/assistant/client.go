// Package assistant calls the external text-generation service used by the
// chat feature. The service is an opaque JSON-over-HTTP endpoint; callers
// treat any failure as recoverable.
package assistant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Generator produces an assistant reply for a prompt. Implemented by Client
// and stubbed in tests.
type Generator interface {
	Generate(ctx context.Context, prompt, promptContext string) (string, error)
}

// Config holds the external service endpoint settings.
type Config struct {
	URL     string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client is the HTTP implementation of Generator.
type Client struct {
	cfg    Config
	client *http.Client
}

func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: timeout},
	}
}

type generateRequest struct {
	Model   string `json:"model,omitempty"`
	Prompt  string `json:"prompt"`
	Context string `json:"context,omitempty"`
}

type generateResponse struct {
	Text string `json:"text"`
}

// Generate POSTs the prompt to the configured endpoint and returns the
// generated text. Transport failures and non-2xx statuses are errors.
func (c *Client) Generate(ctx context.Context, prompt, promptContext string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Model:   c.cfg.Model,
		Prompt:  prompt,
		Context: promptContext,
	})
	if err != nil {
		return "", fmt.Errorf("marshal generate request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.URL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build generate request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.cfg.APIKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("POST %s: %w", c.cfg.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Drain a little of the body for the error message
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("generation endpoint returned status %d: %s", resp.StatusCode, snippet)
	}

	var out generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode generate response: %w", err)
	}
	if out.Text == "" {
		return "", fmt.Errorf("generation endpoint returned empty text")
	}
	return out.Text, nil
}
