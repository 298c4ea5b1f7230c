package openai_provider

import (
	"context"
	"fmt"
	"strings"

	"github.com/mohammad-safakhou/localseo/models"
	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const DefaultModel = "gpt-4o-mini"

// client implements the provider interface using OpenAI chat completions
type client struct {
	api   openai.Client
	model string
}

// NewOpenAIClient creates a new OpenAI client. baseURL is optional.
func NewOpenAIClient(apiKey, model, baseURL string) *client {
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}
	if model == "" {
		model = DefaultModel
	}
	return &client{api: openai.NewClient(opts...), model: model}
}

func (c *client) Name() string { return "openai:" + c.model }

func (c *client) Complete(ctx context.Context, req models.CompletionRequest) (string, error) {
	var messages []openai.ChatCompletionMessageParamUnion
	if strings.TrimSpace(req.System) != "" {
		messages = append(messages, openai.SystemMessage(req.System))
	}
	messages = append(messages, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(c.model),
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
	}
	if req.MaxTokens > 0 {
		params.MaxTokens = openai.Int(int64(req.MaxTokens))
	}

	resp, err := c.api.Chat.Completions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("openai API error: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no response from openai")
	}
	return resp.Choices[0].Message.Content, nil
}
