// internal/adapters/llm/client.go

// Package llm talks to an OpenAI-compatible chat completions endpoint and
// provides the query enhancer, the extraction service and site discovery.
package llm

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"pricescout/internal/platform/errors"
	"pricescout/internal/platform/httpclient"
	"pricescout/internal/platform/logx"
)

const (
	providerName    = "llm"
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultModel    = "gpt-4o-mini"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("llm: api key not configured")

// Config holds the chat completion settings.
type Config struct {
	Endpoint    string
	APIKey      string
	Model       string
	Temperature float64

	// MaxContentChars caps the cleaned page sent for extraction.
	MaxContentChars int

	// Timeout bounds one completion call. 0 = caller's context only.
	Timeout time.Duration
}

// Client is a minimal chat completions client.
type Client struct {
	http   *httpclient.Client
	cfg    Config
	logger logx.Logger
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []chatMessage   `json:"messages"`
	Temperature    float64         `json:"temperature"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// NewClient creates a chat completions client on the shared HTTP client.
func NewClient(client *httpclient.Client, cfg Config, logger logx.Logger) *Client {
	if logger == nil {
		logger = logx.Nop()
	}
	if strings.TrimSpace(cfg.Endpoint) == "" {
		cfg.Endpoint = defaultEndpoint
	}
	if cfg.Model == "" {
		cfg.Model = defaultModel
	}
	return &Client{
		http:   client,
		cfg:    cfg,
		logger: logger.With("component", providerName),
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return providerName }

// HealthCheck reports whether the client is configured. It does not call the
// endpoint.
func (c *Client) HealthCheck(ctx context.Context) error {
	if c.cfg.APIKey == "" {
		return ErrMissingAPIKey
	}
	return nil
}

// Complete sends a single user prompt and returns the assistant's text.
// jsonOutput asks the model for a JSON object.
func (c *Client) Complete(ctx context.Context, prompt string, jsonOutput bool) (string, error) {
	if c.cfg.APIKey == "" {
		return "", ErrMissingAPIKey
	}
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	req := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
	}
	if jsonOutput {
		req.ResponseFormat = &responseFormat{Type: "json_object"}
	}
	payload, err := json.Marshal(req)
	if err != nil {
		return "", errors.Wrap(err, "encode chat request")
	}

	start := time.Now()
	body, err := c.http.PostJSON(ctx, c.cfg.Endpoint, payload, map[string]string{
		"Authorization": "Bearer " + c.cfg.APIKey,
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion")
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", errors.Wrapf(errors.ErrInvalidResponse, "chat completion: %v", err)
	}
	if resp.Error != nil {
		return "", errors.Errorf("chat completion: %s", resp.Error.Message)
	}
	if len(resp.Choices) == 0 {
		return "", errors.Wrap(errors.ErrInvalidResponse, "chat completion returned no choices")
	}

	c.logger.Debug("completion received",
		"model", c.cfg.Model,
		"json", jsonOutput,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp.Choices[0].Message.Content, nil
}
