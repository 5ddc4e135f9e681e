// go_thread: YouTube video to social media thread MCP server.
//
// Exposes two MCP tools: thread_generate, transcript_chunks.
// Runs as HTTP MCP server or stdio transport.
package main

import (
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/anatolykoptev/go-kit/env"
	"github.com/anatolykoptev/go-mcpserver"
	"github.com/anatolykoptev/go_thread/internal/engine"
	"github.com/anatolykoptev/go_thread/internal/engine/sources"
	"github.com/anatolykoptev/go_thread/internal/engine/thread"
	"github.com/anatolykoptev/go_thread/internal/threadserver"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

var (
	version = "dev"
	mcpPort = env.Str("MCP_PORT", "8893")
)

func main() {
	svc, err := initEngine()
	if err != nil {
		slog.Error("engine init failed", slog.Any("error", err))
		os.Exit(1)
	}

	slog.Info("starting go_thread",
		slog.String("port", mcpPort),
	)

	server := mcp.NewServer(&mcp.Implementation{
		Name:    "go_thread",
		Version: version,
	}, nil)

	threadserver.RegisterTools(server, svc)
	slog.Info("tools registered", slog.Int("count", threadserver.ToolCount))

	if err := mcpserver.Run(server, mcpserver.Config{
		Name:         "go_thread",
		Version:      version,
		Port:         mcpPort,
		WriteTimeout: 600 * time.Second,
		Metrics:      engine.FormatMetrics,
	}); err != nil {
		slog.Error("server failed", slog.Any("error", err))
	}
}

func loadConfig() engine.Config {
	apiKey := env.Str("LLM_API_KEY", "")
	if apiKey == "" {
		apiKey = env.Str("GROQ_API_KEY", "")
	}
	return engine.Config{
		LLMProvider:        env.Str("LLM_PROVIDER", "http"),
		LLMAPIKey:          apiKey,
		LLMAPIKeyFallbacks: env.List("LLM_API_KEY_FALLBACKS", ""),
		LLMAPIBase:         env.Str("LLM_API_BASE", engine.DefaultLLMAPIBase),
		LLMModel:           env.Str("LLM_MODEL", engine.DefaultLLMModel),
		LLMTemperature:     env.Float("LLM_TEMPERATURE", engine.DefaultTemperature),
		LLMMaxTokens:       env.Int("LLM_MAX_TOKENS", engine.DefaultMaxTokens),
		LLMChunkMaxTokens:  env.Int("LLM_CHUNK_MAX_TOKENS", 512),
		LLMTimeout:         env.Duration("LLM_TIMEOUT", engine.DefaultLLMTimeout),
		LLMRequestsPerMin:  env.Int("LLM_RPM", 0),

		ThreadMode:        env.Str("THREAD_MODE", "auto"),
		ChunkSize:         env.Int("CHUNK_SIZE", thread.DefaultChunkSize),
		TranscriptLangs:   env.List("TRANSCRIPT_LANGS", "en"),
		TranscriptTimeout: env.Duration("TRANSCRIPT_TIMEOUT", 30*time.Second),
		TranscriptBrowser: env.Str("TRANSCRIPT_BROWSER", "") == "true",

		RedisURL:             env.Str("REDIS_URL", ""),
		CacheTTL:             env.Duration("CACHE_TTL", 6*time.Hour),
		CacheMaxEntries:      env.Int("CACHE_MAX_ENTRIES", 500),
		CacheCleanupInterval: env.Duration("CACHE_CLEANUP_INTERVAL", 300*time.Second),

		HTTPClient: &http.Client{
			Timeout: 15 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     60 * time.Second,
			},
		},
	}
}

func initEngine() (*thread.Service, error) {
	c := loadConfig()
	if err := c.Validate(); err != nil {
		return nil, err
	}

	engine.InitCache(c.RedisURL, c.CacheTTL, c.CacheMaxEntries, c.CacheCleanupInterval)

	gen, err := engine.NewGenerator(c.LLMProvider, c.LLM())
	if err != nil {
		return nil, err
	}
	slog.Info("llm client ready",
		slog.String("provider", c.LLMProvider),
		slog.String("model", c.LLMModel),
		slog.Int("fallback_keys", len(c.LLMAPIKeyFallbacks)),
	)

	yt := sources.NewYouTube(c.HTTPClient)
	if c.TranscriptBrowser {
		bc, err := engine.NewBrowserClient(c.HTTPClient.Timeout)
		if err != nil {
			slog.Warn("browser client init failed, using plain HTTP", slog.Any("error", err))
		} else {
			yt.Browser = bc
			slog.Info("browser client initialized")
		}
	}

	driver := thread.NewDriver(gen, thread.DefaultPersonas(), thread.DriverOptions{
		Model:          c.LLMModel,
		Temperature:    engine.Float64(c.LLMTemperature),
		MaxTokens:      c.LLMMaxTokens,
		ChunkMaxTokens: c.LLMChunkMaxTokens,
	})

	return thread.NewService(yt, driver, thread.ServiceOptions{
		Mode:         thread.ParseMode(c.ThreadMode),
		ChunkSize:    c.ChunkSize,
		Langs:        c.TranscriptLangs,
		FetchTimeout: c.TranscriptTimeout,
	}), nil
}
