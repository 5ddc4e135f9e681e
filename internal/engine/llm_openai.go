package engine

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"

	"github.com/anatolykoptev/go-kit/strutil"
	openai "github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"
)

// OpenAIGenerator generates through the go-openai SDK. Per-request Model,
// Temperature and MaxTokens are honored like GenerationClient does.
type OpenAIGenerator struct {
	cli      *openai.Client
	defaults GenerationRequest
	limiter  *rate.Limiter
}

// NewOpenAIGenerator validates cfg and builds an SDK-backed generator.
func NewOpenAIGenerator(cfg LLMConfig) (*OpenAIGenerator, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: api key is required")
	}
	cfg.applyDefaults()

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	clientConfig.BaseURL = strings.TrimRight(cfg.APIBase, "/")
	if cfg.HTTPClient != nil {
		clientConfig.HTTPClient = cfg.HTTPClient
	} else {
		clientConfig.HTTPClient = &http.Client{Timeout: cfg.Timeout}
	}

	return &OpenAIGenerator{
		cli: openai.NewClientWithConfig(clientConfig),
		defaults: GenerationRequest{
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
		limiter: newLimiter(cfg.RequestsPerMinute),
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	metrics.LLMCalls.Add(1)
	out, err := g.generate(ctx, req)
	if err != nil {
		metrics.LLMErrors.Add(1)
	}
	return out, err
}

func (g *OpenAIGenerator) generate(ctx context.Context, req GenerationRequest) (string, error) {
	if g.limiter != nil {
		if err := g.limiter.Wait(ctx); err != nil {
			return "", &Error{Kind: KindTransport, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}
	if req.Model == "" {
		req.Model = g.defaults.Model
	}
	if req.Temperature == nil {
		req.Temperature = g.defaults.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = g.defaults.MaxTokens
	}

	resp, err := g.cli.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: req.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: req.Prompt},
		},
		MaxTokens:   req.MaxTokens,
		Temperature: sdkTemperature(*req.Temperature),
	})
	if err != nil {
		return "", openAIError(err)
	}
	if len(resp.Choices) == 0 {
		return "", &Error{Kind: KindEndpoint, Err: fmt.Errorf("%w: no choices", ErrMalformedResponse)}
	}
	return stripFences(resp.Choices[0].Message.Content), nil
}

// sdkTemperature keeps an explicit 0 on the wire; the SDK drops a zero
// float32 through omitempty.
func sdkTemperature(t float64) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(t)
}

// openAIError maps SDK failures onto the endpoint/transport split.
func openAIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode != 0 {
		return &Error{
			Kind:   KindEndpoint,
			Status: apiErr.HTTPStatusCode,
			Body:   strutil.TruncateWith(apiErr.Message, errorBodyLimit, "..."),
		}
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode != 0 {
		body := ""
		if reqErr.Err != nil {
			body = reqErr.Err.Error()
		}
		return &Error{
			Kind:   KindEndpoint,
			Status: reqErr.HTTPStatusCode,
			Body:   strutil.TruncateWith(body, errorBodyLimit, "..."),
		}
	}
	return &Error{Kind: KindTransport, Err: err}
}
