// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// ErrorType categorizes client errors for handling.
type ErrorType int

const (
	ErrTypeUnknown ErrorType = iota
	ErrTypeNotRunning
	ErrTypeTimeout
	ErrTypeModelNotFound
	ErrTypeConnection
	ErrTypeInvalidResponse
)

// ClientError is an error from the Ollama client.
type ClientError struct {
	Type    ErrorType
	Message string
	Cause   error
}

func (e *ClientError) Error() string {
	if e.Cause != nil {
		return e.Message + ": " + e.Cause.Error()
	}
	return e.Message
}

func (e *ClientError) Unwrap() error {
	return e.Cause
}

// Sentinel errors for easy checking.
var (
	ErrNotRunning    = &ClientError{Type: ErrTypeNotRunning, Message: "Ollama is not running"}
	ErrTimeout       = &ClientError{Type: ErrTypeTimeout, Message: "request timed out"}
	ErrModelNotFound = &ClientError{Type: ErrTypeModelNotFound, Message: "model not found"}
)

// =============================================================================
// CLIENT CONFIGURATION
// =============================================================================

// Config holds Ollama client options.
type Config struct {
	// BaseURL is the Ollama API base URL. Explicit IPv4 avoids IPv6
	// resolution issues with localhost on some platforms.
	BaseURL string

	// Timeout for non-streaming requests.
	Timeout time.Duration

	// Model used when a request does not name one.
	Model string

	// Temperature for sampling. Zero leaves it at the model default.
	Temperature float64

	// MaxRetries for transient connection failures.
	MaxRetries int

	// RetryDelay between retries.
	RetryDelay time.Duration

	// RequestsPerSecond caps outgoing API requests.
	RequestsPerSecond float64
}

// DefaultConfig returns the default client configuration.
func DefaultConfig() *Config {
	return &Config{
		BaseURL:           "http://127.0.0.1:11434",
		Timeout:           30 * time.Second,
		Model:             "qwen2.5-coder:14b",
		MaxRetries:        3,
		RetryDelay:        time.Second,
		RequestsPerSecond: 2,
	}
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Ollama API. Safe for concurrent use.
type Client struct {
	config     *Config
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewClient creates a client, filling defaults for zero config values.
func NewClient(config *Config) *Client {
	if config == nil {
		config = DefaultConfig()
	}
	def := DefaultConfig()
	if config.BaseURL == "" {
		config.BaseURL = def.BaseURL
	}
	if config.Timeout == 0 {
		config.Timeout = def.Timeout
	}
	if config.Model == "" {
		config.Model = def.Model
	}
	if config.MaxRetries == 0 {
		config.MaxRetries = def.MaxRetries
	}
	if config.RetryDelay == 0 {
		config.RetryDelay = def.RetryDelay
	}
	if config.RequestsPerSecond == 0 {
		config.RequestsPerSecond = def.RequestsPerSecond
	}

	return &Client{
		config:     config,
		httpClient: &http.Client{Timeout: config.Timeout},
		limiter:    rate.NewLimiter(rate.Limit(config.RequestsPerSecond), 1),
	}
}

// Model returns the configured default model name.
func (c *Client) Model() string {
	return c.config.Model
}

// =============================================================================
// HEALTH AND MODELS
// =============================================================================

// CheckRunning verifies that Ollama is reachable.
func (c *Client) CheckRunning(ctx context.Context) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL, nil)
	if err != nil {
		return &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return ErrTimeout
		}
		return ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &ClientError{Type: ErrTypeConnection, Message: "unexpected status from Ollama: " + resp.Status}
	}
	return nil
}

// ListModels retrieves the locally available models.
func (c *Client) ListModels(ctx context.Context) ([]ModelInfo, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.config.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrNotRunning
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to list models: " + resp.Status}
	}

	var result ListModelsResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to decode response", Cause: err}
	}
	return result.Models, nil
}

// =============================================================================
// STREAMING CHAT
// =============================================================================

// ChatStream sends a chat request and streams the response, invoking
// callback per chunk. The final frame is folded into the returned
// ChatResponse with the accumulated text and any tool calls. Connection
// failures before the first byte are retried up to MaxRetries.
func (c *Client) ChatStream(ctx context.Context, messages []Message, tools []Tool, callback StreamCallback) (*ChatResponse, error) {
	reqBody := ChatRequest{
		Model:    c.config.Model,
		Messages: messages,
		Stream:   true,
		Tools:    tools,
	}
	if c.config.Temperature > 0 {
		reqBody.Options = &Options{Temperature: c.config.Temperature}
	}
	body, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "failed to marshal request", Cause: err}
	}

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.config.RetryDelay):
			}
		}

		resp, err := c.openStream(ctx, body)
		if err != nil {
			if !isRetryable(err) {
				return nil, err
			}
			lastErr = err
			continue
		}

		final, err := consumeStream(ctx, resp, callback)
		if err != nil {
			// The stream broke mid-response; retrying would replay
			// partial output through the callback.
			return nil, err
		}
		return final, nil
	}
	return nil, lastErr
}

func (c *Client) openStream(ctx context.Context, body []byte) (*http.Response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, &ClientError{Type: ErrTypeConnection, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("Content-Type", "application/json")

	// A streaming response can stay open far longer than the request
	// timeout; rely on ctx instead.
	streamClient := &http.Client{Timeout: 0}
	resp, err := streamClient.Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, ErrNotRunning
	}

	if resp.StatusCode == http.StatusNotFound {
		resp.Body.Close()
		return nil, ErrModelNotFound
	}
	if resp.StatusCode != http.StatusOK {
		defer resp.Body.Close()
		var apiErr APIError
		if err := json.NewDecoder(resp.Body).Decode(&apiErr); err == nil && apiErr.Error != "" {
			if strings.Contains(apiErr.Error, "not found") {
				return nil, ErrModelNotFound
			}
			return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: apiErr.Error}
		}
		return nil, &ClientError{Type: ErrTypeInvalidResponse, Message: "chat request failed: " + resp.Status}
	}
	return resp, nil
}

func consumeStream(ctx context.Context, resp *http.Response, callback StreamCallback) (*ChatResponse, error) {
	defer resp.Body.Close()

	reader := NewStreamReader(resp.Body)
	if err := reader.Process(ctx, callback); err != nil {
		return nil, err
	}
	return reader.Final(), nil
}

func isRetryable(err error) bool {
	var ce *ClientError
	if errors.As(err, &ce) {
		return ce.Type == ErrTypeNotRunning || ce.Type == ErrTypeConnection
	}
	return false
}
