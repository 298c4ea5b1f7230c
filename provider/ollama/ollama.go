package ollama_provider

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/mohammad-safakhou/localseo/models"
)

const (
	DefaultBaseURL = "http://localhost:11434"
	DefaultModel   = "mistral"
)

type generateRequest struct {
	Model   string         `json:"model"`
	Prompt  string         `json:"prompt"`
	System  string         `json:"system,omitempty"`
	Stream  bool           `json:"stream"`
	Options map[string]any `json:"options,omitempty"`
}

type generateResponse struct {
	Response string `json:"response"`
}

// client talks to a local Ollama server over its /api/generate endpoint
type client struct {
	http    *HTTPClient
	baseURL string
	model   string
}

func NewOllamaClient(baseURL, model string, timeout time.Duration) *client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &client{
		http:    NewHTTPClient(timeout, 1, 250*time.Millisecond),
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
	}
}

func (c *client) Name() string { return "ollama:" + c.model }

func (c *client) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	body := generateRequest{
		Model:  c.model,
		Prompt: req.Prompt,
		System: req.System,
		Stream: false,
		Options: map[string]any{
			"temperature": req.Temperature,
		},
	}
	if req.MaxTokens > 0 {
		body.Options["num_predict"] = req.MaxTokens
	}

	var out generateResponse
	if err := c.http.DoJSON(ctx, http.MethodPost, c.baseURL+"/api/generate", nil, body, &out); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if strings.TrimSpace(out.Response) == "" {
		return "", fmt.Errorf("no response from ollama")
	}
	return out.Response, nil
}
