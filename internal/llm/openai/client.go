package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"resumepro/internal/llm"
	"resumepro/internal/shared/telemetry"
)

const (
	defaultEndpoint = "https://api.openai.com/v1/chat/completions"
	defaultTimeout  = 120 * time.Second
	// maxResponseBytes bounds what is read from a completion response.
	maxResponseBytes = 4 << 20
)

// APIError is a non-2xx answer from the completions endpoint.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Type != "" {
		return fmt.Sprintf("openai: status %d: %s (%s)", e.Status, e.Message, e.Type)
	}
	return fmt.Sprintf("openai: status %d: %s", e.Status, e.Message)
}

// Retryable reports whether the provider asked the caller to come back later.
func (e *APIError) Retryable() bool {
	return e.Status == http.StatusTooManyRequests || e.Status >= http.StatusInternalServerError
}

// Option customizes a Client.
type Option func(*Client)

// WithEndpoint points the client at a compatible completions URL.
func WithEndpoint(url string) Option {
	return func(c *Client) { c.endpoint = url }
}

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// Client implements llm.Client against the Chat Completions API.
type Client struct {
	apiKey   string
	model    string
	endpoint string
	http     *http.Client
}

// NewClient builds a client. OPENAI_TIMEOUT_SECONDS overrides the request timeout.
func NewClient(apiKey, model string, opts ...Option) (*Client, error) {
	model = strings.TrimSpace(model)
	if model == "" {
		return nil, errors.New("LLM_MODEL is required for OpenAI")
	}
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("OPENAI_API_KEY is required")
	}
	c := &Client{
		apiKey:   apiKey,
		model:    model,
		endpoint: defaultEndpoint,
		http:     &http.Client{Timeout: timeoutFromEnv()},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

func timeoutFromEnv() time.Duration {
	raw := strings.TrimSpace(os.Getenv("OPENAI_TIMEOUT_SECONDS"))
	if secs, err := strconv.Atoi(raw); err == nil && secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultTimeout
}

type wireMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type completionRequest struct {
	Model          string        `json:"model"`
	Messages       []wireMessage `json:"messages"`
	Temperature    *float32      `json:"temperature,omitempty"`
	ResponseFormat *struct {
		Type string `json:"type"`
	} `json:"response_format,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Message      wireMessage `json:"message"`
		FinishReason string      `json:"finish_reason"`
	} `json:"choices"`
	Usage *struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage,omitempty"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete returns the trimmed content of the first choice.
func (c *Client) Complete(ctx context.Context, in llm.Request) (string, error) {
	if len(in.Messages) == 0 {
		return "", llm.ErrEmptyRequest
	}
	body, err := json.Marshal(c.buildRequest(in))
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	started := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("openai: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("openai: read response: %w", err)
	}
	var parsed completionResponse
	decodeErr := json.Unmarshal(raw, &parsed)
	if resp.StatusCode >= http.StatusBadRequest || parsed.Error != nil {
		apiErr := &APIError{Status: resp.StatusCode, Message: strings.TrimSpace(string(raw))}
		if decodeErr == nil && parsed.Error != nil {
			apiErr.Message, apiErr.Type = parsed.Error.Message, parsed.Error.Type
		}
		return "", apiErr
	}
	if decodeErr != nil {
		return "", fmt.Errorf("openai: decode response: %w", decodeErr)
	}
	if len(parsed.Choices) == 0 {
		return "", errors.New("openai: response has no choices")
	}

	fields := map[string]any{
		"provider":    "openai",
		"model":       c.model,
		"duration_ms": time.Since(started).Milliseconds(),
		"finish":      parsed.Choices[0].FinishReason,
	}
	if parsed.Usage != nil {
		fields["prompt_tokens"] = parsed.Usage.PromptTokens
		fields["completion_tokens"] = parsed.Usage.CompletionTokens
	}
	telemetry.Info("llm.completion", fields)

	content := strings.TrimSpace(parsed.Choices[0].Message.Content)
	if content == "" {
		return "", errors.New("openai: empty completion")
	}
	return content, nil
}

func (c *Client) buildRequest(in llm.Request) completionRequest {
	out := completionRequest{Model: c.model}
	if system := strings.TrimSpace(in.System); system != "" {
		out.Messages = append(out.Messages, wireMessage{Role: "system", Content: system})
	}
	for _, m := range in.Messages {
		role := llm.RoleUser
		if m.Role == llm.RoleAssistant {
			role = llm.RoleAssistant
		}
		out.Messages = append(out.Messages, wireMessage{Role: role, Content: m.Content})
	}
	if !in.JSON {
		return out
	}
	out.ResponseFormat = &struct {
		Type string `json:"type"`
	}{Type: "json_object"}
	// gpt-5 models reject an explicit temperature.
	if !fixedTemperature(c.model) {
		zero := float32(0)
		out.Temperature = &zero
	}
	return out
}

func fixedTemperature(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "gpt-5")
}

var _ llm.Client = (*Client)(nil)
