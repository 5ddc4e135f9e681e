package engine

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/anatolykoptev/go-kit/strutil"
	"golang.org/x/time/rate"
)

// errorBodyLimit caps how much of a failed response body is kept.
const errorBodyLimit = 300

// GenerationRequest is one completion call.
type GenerationRequest struct {
	Prompt      string
	Model       string
	Temperature *float64 // nil takes the backend default; 0 is sent as 0
	MaxTokens   int
}

// Generator issues one completion request per call. Implementations keep no
// conversation state between calls.
type Generator interface {
	Generate(ctx context.Context, req GenerationRequest) (string, error)
}

// LLMConfig configures a generation backend.
type LLMConfig struct {
	APIBase           string
	APIKey            string
	FallbackKeys      []string // kit backend only
	Model             string
	Temperature       *float64 // nil means DefaultTemperature
	MaxTokens         int
	Timeout           time.Duration
	RequestsPerMinute int
	HTTPClient        *http.Client // optional; Timeout is applied when nil
}

func (c *LLMConfig) applyDefaults() {
	if c.APIBase == "" {
		c.APIBase = DefaultLLMAPIBase
	}
	if c.Model == "" {
		c.Model = DefaultLLMModel
	}
	if c.Temperature == nil {
		c.Temperature = Float64(DefaultTemperature)
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultLLMTimeout
	}
}

// Float64 returns a pointer to v, for optional request fields.
func Float64(v float64) *float64 { return &v }

// newLimiter paces calls to rpm requests per minute; nil means unlimited.
func newLimiter(rpm int) *rate.Limiter {
	if rpm <= 0 {
		return nil
	}
	return rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1)
}

// GenerationClient talks to an OpenAI-compatible chat completions endpoint.
type GenerationClient struct {
	endpoint string
	apiKey   string
	defaults GenerationRequest
	hc       *http.Client
	limiter  *rate.Limiter
}

// NewGenerationClient validates cfg and builds a client.
func NewGenerationClient(cfg LLMConfig) (*GenerationClient, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("llm: api key is required")
	}
	cfg.applyDefaults()
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	return &GenerationClient{
		endpoint: strings.TrimRight(cfg.APIBase, "/") + "/chat/completions",
		apiKey:   cfg.APIKey,
		defaults: GenerationRequest{
			Model:       cfg.Model,
			Temperature: cfg.Temperature,
			MaxTokens:   cfg.MaxTokens,
		},
		hc:      hc,
		limiter: newLimiter(cfg.RequestsPerMinute),
	}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// Generate sends req.Prompt as a single user message. Zero fields in req take
// the client defaults; a nil Temperature does too.
func (c *GenerationClient) Generate(ctx context.Context, req GenerationRequest) (string, error) {
	metrics.LLMCalls.Add(1)
	out, err := c.generate(ctx, c.withDefaults(req))
	if err != nil {
		metrics.LLMErrors.Add(1)
	}
	return out, err
}

func (c *GenerationClient) withDefaults(req GenerationRequest) GenerationRequest {
	if req.Model == "" {
		req.Model = c.defaults.Model
	}
	if req.Temperature == nil {
		req.Temperature = c.defaults.Temperature
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = c.defaults.MaxTokens
	}
	return req
}

func (c *GenerationClient) generate(ctx context.Context, req GenerationRequest) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", &Error{Kind: KindTransport, Err: fmt.Errorf("rate limit wait: %w", err)}
		}
	}

	body, err := json.Marshal(chatRequest{
		Model:       req.Model,
		Messages:    []chatMessage{{Role: "user", Content: req.Prompt}},
		Temperature: *req.Temperature,
		MaxTokens:   req.MaxTokens,
	})
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 4*errorBodyLimit))
		return "", &Error{
			Kind:   KindEndpoint,
			Status: resp.StatusCode,
			Body:   strutil.TruncateWith(strings.TrimSpace(string(snippet)), errorBodyLimit, "..."),
		}
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4*1024*1024))
	if err != nil {
		return "", &Error{Kind: KindTransport, Err: fmt.Errorf("read body: %w", err)}
	}
	var out chatResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &Error{Kind: KindEndpoint, Err: fmt.Errorf("%w: %v", ErrMalformedResponse, err)}
	}
	if len(out.Choices) == 0 {
		return "", &Error{Kind: KindEndpoint, Err: fmt.Errorf("%w: no choices", ErrMalformedResponse)}
	}
	return stripFences(out.Choices[0].Message.Content), nil
}

// stripFences removes markdown code fences from LLM output.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```markdown")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
