package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/googleai"

	"resumepro/internal/llm"
)

// DefaultModel is used when LLM_MODEL is empty.
const DefaultModel = "gemini-2.5-flash"

// Client implements llm.Client on top of the langchaingo Google AI model.
type Client struct {
	model llms.Model
	name  string
}

// NewClient builds a Gemini-backed client.
func NewClient(ctx context.Context, apiKey, model string) (*Client, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY is required")
	}
	if strings.TrimSpace(model) == "" {
		model = DefaultModel
	}
	m, err := googleai.New(ctx,
		googleai.WithAPIKey(apiKey),
		googleai.WithDefaultModel(model),
	)
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Client{model: m, name: model}, nil
}

// NewWithModel wraps an existing langchaingo model.
func NewWithModel(model llms.Model, name string) *Client {
	return &Client{model: model, name: name}
}

// Complete flattens the request into one prompt and returns the model text.
func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	if len(req.Messages) == 0 {
		return "", llm.ErrEmptyRequest
	}
	var opts []llms.CallOption
	prompt := llm.Flatten(req)
	if req.JSON {
		opts = append(opts, llms.WithTemperature(0), llms.WithJSONMode())
		prompt += "\n\nRespond with valid JSON only. Do not wrap the output in markdown code blocks."
	}
	resp, err := llms.GenerateFromSinglePrompt(ctx, c.model, prompt, opts...)
	if err != nil {
		return "", fmt.Errorf("gemini generate: %w", err)
	}
	out := strings.TrimSpace(resp)
	if req.JSON {
		out = llm.CleanJSON(out)
	}
	if out == "" {
		return "", fmt.Errorf("gemini response empty content")
	}
	return out, nil
}

var _ llm.Client = (*Client)(nil)
