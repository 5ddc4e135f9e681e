package engine

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go-kit/llm"
	"golang.org/x/time/rate"
)

// KitGenerator generates through go-kit's LLM client, which rotates through
// fallback API keys on quota errors. The client is bound to one model and
// sampling config, so per-request Model and Temperature are ignored.
type KitGenerator struct {
	complete func(ctx context.Context, prompt string) (string, error)
	limiter  *rate.Limiter
}

// NewKitGenerator validates cfg and builds a go-kit backed generator.
func NewKitGenerator(cfg LLMConfig) (*KitGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: api key is required")
	}
	cfg.applyDefaults()
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	client := llm.NewClient(cfg.APIBase, cfg.APIKey, cfg.Model,
		llm.WithFallbackKeys(cfg.FallbackKeys),
		llm.WithMaxTokens(cfg.MaxTokens),
		llm.WithTemperature(*cfg.Temperature),
		llm.WithHTTPClient(hc),
	)
	return &KitGenerator{
		complete: func(ctx context.Context, prompt string) (string, error) {
			return client.Complete(ctx, "", prompt)
		},
		limiter: newLimiter(cfg.RequestsPerMinute),
	}, nil
}

func (g *KitGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	metrics.LLMCalls.Add(1)
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			metrics.LLMErrors.Add(1)
			return "", &Error{Kind: KindTransport, Err: err}
		}
	}
	out, err := g.complete(ctx, req.Prompt)
	if err != nil {
		metrics.LLMErrors.Add(1)
		return "", &Error{Kind: KindTransport, Err: err}
	}
	return stripFences(out), nil
}

// NewGenerator picks the backend named by provider ("http", "kit" or "openai").
func NewGenerator(provider string, cfg LLMConfig) (Generator, error) {
	switch provider {
	case "kit":
		g, err := NewKitGenerator(cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "openai":
		g, err := NewOpenAIGenerator(cfg)
		if err != nil {
			return nil, err
		}
		return g, nil
	}
	c, err := NewGenerationClient(cfg)
	if err != nil {
		return nil, err
	}
	return c, nil
}
