package generation

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/mohammad-safakhou/localseo/internal/metrics"
	"github.com/mohammad-safakhou/localseo/models"
	"github.com/mohammad-safakhou/localseo/provider"
)

const systemPrompt = "You are a content engineering specialist. You create compelling SEO headlines that make great first impressions and improve click-through rates. Always respond with a valid JSON array containing exactly %d headlines."

// PromptRenderer resolves a prompt key into the final prompt text.
type PromptRenderer interface {
	Render(key string, vars map[string]string) (string, error)
}

// ExternalBackend asks a text-generation provider for headlines.
type ExternalBackend struct {
	Provider          provider.Provider
	Prompts           PromptRenderer
	DefaultPrompt     string
	Timeout           time.Duration
	Temperature       float64
	MaxTokens         int
	RequireExactCount bool
	Debug             bool
	Logger            *log.Logger
	Metrics           *metrics.Metrics
}

func (b *ExternalBackend) Generate(ctx context.Context, req Request) (Result, error) {
	count := req.Count
	if count <= 0 {
		count = 5
	}
	key := req.PromptKey
	if key == "" {
		key = b.DefaultPrompt
	}
	prompt, err := b.Prompts.Render(key, PromptVars(req.Descriptor, count))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrBackend, err)
	}

	timeout := b.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	// detached: a client disconnect must not cancel generation
	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	start := time.Now()
	raw, err := b.Provider.Complete(callCtx, provider.Completion{
		System:      fmt.Sprintf(systemPrompt, count),
		Prompt:      prompt,
		Temperature: b.Temperature,
		MaxTokens:   b.MaxTokens,
	})
	b.Metrics.ObserveGeneration(b.Provider.Name(), time.Since(start))
	if err != nil {
		return Result{}, fmt.Errorf("%w: %s: %w", ErrBackend, b.Provider.Name(), err)
	}
	if b.Debug {
		b.logger().Printf("raw %s response: %s", b.Provider.Name(), raw)
	}

	headlines := Normalize(ExtractHeadlines(raw), count)
	if len(headlines) == 0 {
		return Result{}, fmt.Errorf("%w: %w", ErrBackend, ErrNoHeadlines)
	}
	if b.RequireExactCount && len(headlines) != count {
		return Result{}, fmt.Errorf("%w: expected %d headlines, got %d", ErrBackend, count, len(headlines))
	}
	return Result{
		Headlines:  headlines,
		Provenance: models.ProvenanceExternal,
		Model:      b.Provider.Name(),
		Prompt:     key,
	}, nil
}

func (b *ExternalBackend) logger() *log.Logger {
	if b.Logger == nil {
		return defaultLogger
	}
	return b.Logger
}

// PromptVars builds the placeholder values available to prompt templates.
func PromptVars(d models.BusinessDescriptor, count int) map[string]string {
	typ := strings.TrimSpace(d.MainType)
	if sub := strings.TrimSpace(d.SubType); sub != "" && !strings.EqualFold(sub, typ) {
		typ = strings.TrimSpace(sub + " " + typ)
	}
	desc := strings.TrimSpace(d.Description)
	if desc == "" {
		desc = fmt.Sprintf("%s is a %s business in %s.", d.Name, typ, d.Location)
	}
	return map[string]string{
		"name":        d.Name,
		"type":        typ,
		"mainType":    d.MainType,
		"subType":     d.SubType,
		"location":    d.Location,
		"description": desc,
		"count":       strconv.Itoa(count),
	}
}
