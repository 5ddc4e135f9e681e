package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
)

// Metrics tracks operational counters across the engine.
var metrics struct {
	ThreadRequests     atomic.Int64
	ThreadErrors       atomic.Int64
	TranscriptRequests atomic.Int64
	TranscriptErrors   atomic.Int64
	LLMCalls           atomic.Int64
	LLMErrors          atomic.Int64
	ChunksGenerated    atomic.Int64
	ChunksDropped      atomic.Int64
}

// GetMetrics returns a snapshot of all metrics including cache stats.
func GetMetrics() map[string]int64 {
	hits, misses := CacheStats()
	return map[string]int64{
		"thread_requests":     metrics.ThreadRequests.Load(),
		"thread_errors":       metrics.ThreadErrors.Load(),
		"transcript_requests": metrics.TranscriptRequests.Load(),
		"transcript_errors":   metrics.TranscriptErrors.Load(),
		"llm_calls":           metrics.LLMCalls.Load(),
		"llm_errors":          metrics.LLMErrors.Load(),
		"chunks_generated":    metrics.ChunksGenerated.Load(),
		"chunks_dropped":      metrics.ChunksDropped.Load(),
		"cache_hits":          hits,
		"cache_misses":        misses,
	}
}

// FormatMetrics returns metrics as a simple text format for HTTP endpoint.
func FormatMetrics() string {
	m := GetMetrics()
	var sb strings.Builder
	keys := []string{
		"thread_requests", "thread_errors",
		"transcript_requests", "transcript_errors",
		"llm_calls", "llm_errors",
		"chunks_generated", "chunks_dropped",
		"cache_hits", "cache_misses",
	}
	for _, k := range keys {
		fmt.Fprintf(&sb, "%s %d\n", k, m[k])
	}
	return sb.String()
}

// Incrementors for sub-packages.
func IncrThreadRequests()     { metrics.ThreadRequests.Add(1) }
func IncrThreadErrors()       { metrics.ThreadErrors.Add(1) }
func IncrTranscriptRequests() { metrics.TranscriptRequests.Add(1) }
func IncrTranscriptErrors()   { metrics.TranscriptErrors.Add(1) }
func IncrChunksGenerated()    { metrics.ChunksGenerated.Add(1) }
func IncrChunksDropped()      { metrics.ChunksDropped.Add(1) }

// TrackOperation logs a warning if an operation takes longer than threshold.
func TrackOperation(ctx context.Context, name string, threshold time.Duration, fn func(context.Context) error) error {
	start := time.Now()
	err := fn(ctx)
	elapsed := time.Since(start)
	if elapsed > threshold {
		slog.Warn("slow operation", slog.String("op", name), slog.Duration("elapsed", elapsed))
	}
	return err
}
