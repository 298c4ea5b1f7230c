package provider

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mohammad-safakhou/localseo/config"
	"github.com/mohammad-safakhou/localseo/models"
	anthropic_provider "github.com/mohammad-safakhou/localseo/provider/anthropic"
	gemini_provider "github.com/mohammad-safakhou/localseo/provider/gemini"
	ollama_provider "github.com/mohammad-safakhou/localseo/provider/ollama"
	openai_provider "github.com/mohammad-safakhou/localseo/provider/openai"
)

// Client represents different LLM providers
type Client string

const (
	OpenAI    Client = "openai"
	Anthropic Client = "anthropic"
	Gemini    Client = "gemini"
	Ollama    Client = "ollama"
)

// Completion is a single prompt sent to a provider.
type Completion = models.CompletionRequest

// Provider is the interface that all LLM implementations must satisfy
type Provider interface {
	Complete(ctx context.Context, req Completion) (string, error)
	Name() string
}

var ErrMissingAPIKey = errors.New("api key not configured")

// New creates an LLM client from the llm config section.
// timeout bounds HTTP calls for providers that own their transport.
func New(ctx context.Context, cfg config.LLMConfig, timeout time.Duration) (Provider, error) {
	switch Client(cfg.Provider) {
	case OpenAI:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrMissingAPIKey)
		}
		return openai_provider.NewOpenAIClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case Anthropic:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrMissingAPIKey)
		}
		return anthropic_provider.NewAnthropicClient(cfg.APIKey, cfg.Model, cfg.BaseURL), nil
	case Gemini:
		if cfg.APIKey == "" {
			return nil, fmt.Errorf("%s: %w", cfg.Provider, ErrMissingAPIKey)
		}
		c, err := gemini_provider.NewGeminiClient(ctx, cfg.APIKey, cfg.Model)
		if err != nil {
			return nil, err
		}
		return c, nil
	case Ollama:
		return ollama_provider.NewOllamaClient(cfg.BaseURL, cfg.Model, timeout), nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider %q", cfg.Provider)
	}
}
