package engine

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Default generation settings, matching Groq's OpenAI-compatible API.
const (
	DefaultLLMAPIBase  = "https://api.groq.com/openai/v1"
	DefaultLLMModel    = "gemma2-9b-it"
	DefaultLLMTimeout  = 60 * time.Second
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 2048
)

// Config holds all engine configuration, injected from main.
type Config struct {
	LLMProvider        string // "http" (default), "kit" or "openai"
	LLMAPIKey          string
	LLMAPIKeyFallbacks []string
	LLMAPIBase         string
	LLMModel           string
	LLMTemperature     float64
	LLMMaxTokens       int
	LLMChunkMaxTokens  int
	LLMTimeout         time.Duration
	LLMRequestsPerMin  int // 0 = unlimited

	ThreadMode        string // auto, single, chunked
	ChunkSize         int
	TranscriptLangs   []string
	TranscriptTimeout time.Duration
	TranscriptBrowser bool // fetch watch pages through BrowserClient

	RedisURL             string
	CacheTTL             time.Duration
	CacheMaxEntries      int
	CacheCleanupInterval time.Duration

	HTTPClient *http.Client // transcript fetching
}

// Validate rejects configurations that cannot serve a single request.
func (c Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.LLMAPIKey) == "" {
		errs = append(errs, errors.New("LLM_API_KEY (or GROQ_API_KEY) is required"))
	}
	switch c.LLMProvider {
	case "", "http", "kit", "openai":
	default:
		errs = append(errs, fmt.Errorf("unknown LLM_PROVIDER %q", c.LLMProvider))
	}
	switch c.ThreadMode {
	case "", "auto", "single", "chunked":
	default:
		errs = append(errs, fmt.Errorf("unknown THREAD_MODE %q", c.ThreadMode))
	}
	if c.ChunkSize < 0 {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must not be negative, got %d", c.ChunkSize))
	}
	return errors.Join(errs...)
}

// LLM returns the generation client settings.
func (c Config) LLM() LLMConfig {
	return LLMConfig{
		APIBase:           c.LLMAPIBase,
		APIKey:            c.LLMAPIKey,
		FallbackKeys:      c.LLMAPIKeyFallbacks,
		Model:             c.LLMModel,
		Temperature:       Float64(c.LLMTemperature),
		MaxTokens:         c.LLMMaxTokens,
		Timeout:           c.LLMTimeout,
		RequestsPerMinute: c.LLMRequestsPerMin,
	}
}
