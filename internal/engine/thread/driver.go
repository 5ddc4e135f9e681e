package thread

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/anatolykoptev/go_thread/internal/engine"
)

// Mode selects how a transcript is turned into prompts.
type Mode string

const (
	ModeAuto    Mode = "auto"    // chunked when the transcript needs more than one chunk
	ModeSingle  Mode = "single"  // one call with the whole (truncated) transcript
	ModeChunked Mode = "chunked" // one call per chunk
)

// ParseMode maps a config or tool value to a Mode, defaulting to ModeAuto.
func ParseMode(s string) Mode {
	switch Mode(strings.ToLower(strings.TrimSpace(s))) {
	case ModeSingle:
		return ModeSingle
	case ModeChunked:
		return ModeChunked
	}
	return ModeAuto
}

const (
	singlePassLimit  = 10000 // transcript characters embedded in a single-pass prompt
	singlePassTweets = "5-8"
	chunkTweets      = "2-3"
	chunkMaxTokens   = 512
)

// DriverOptions tunes generation requests. Zero values defer to the generator.
type DriverOptions struct {
	Model          string
	Temperature    *float64
	MaxTokens      int // single-pass budget
	ChunkMaxTokens int // per-chunk budget, default 512
}

// Driver builds prompts and calls the generator, strictly one call at a time.
type Driver struct {
	gen      engine.Generator
	personas Personas
	opts     DriverOptions
}

// NewDriver returns a driver using personas for style directives.
func NewDriver(gen engine.Generator, personas Personas, opts DriverOptions) *Driver {
	if opts.ChunkMaxTokens == 0 {
		opts.ChunkMaxTokens = chunkMaxTokens
	}
	return &Driver{gen: gen, personas: personas, opts: opts}
}

// SinglePass generates a thread from the whole transcript in one call.
// A failed call is returned as the error.
func (d *Driver) SinglePass(ctx context.Context, transcript, tone string) (Thread, error) {
	prompt := fmt.Sprintf(singlePassPrompt,
		d.personas.Directive(tone),
		singlePassTweets,
		engine.TruncateRunes(transcript, singlePassLimit, ""),
	)
	reply, err := d.gen.Generate(ctx, engine.GenerationRequest{
		Prompt:      prompt,
		Model:       d.opts.Model,
		Temperature: d.opts.Temperature,
		MaxTokens:   d.opts.MaxTokens,
	})
	if err != nil {
		return Thread{Chunks: 1, FailedChunks: 1}, err
	}
	return Thread{Posts: Normalize(reply), Chunks: 1}, nil
}

// Chunked generates a few posts per chunk, in order. A chunk whose call fails
// is logged and left out; the others still make up the thread. The per-chunk
// results are normalized once more as a whole, so numbering and dedup span
// the entire thread.
func (d *Driver) Chunked(ctx context.Context, chunks []Chunk, tone string) (Thread, error) {
	directive := d.personas.Directive(tone)
	t := Thread{Chunks: len(chunks)}

	parts := make([]string, 0, len(chunks))
	for i, ch := range chunks {
		if err := ctx.Err(); err != nil {
			return t, &engine.Error{Kind: engine.KindTransport, Err: err}
		}
		prompt := fmt.Sprintf(chunkPrompt, contextNote(i, len(chunks), directive), chunkTweets, ch.Text)
		reply, err := d.gen.Generate(ctx, engine.GenerationRequest{
			Prompt:      prompt,
			Model:       d.opts.Model,
			Temperature: d.opts.Temperature,
			MaxTokens:   d.opts.ChunkMaxTokens,
		})
		if err != nil {
			t.FailedChunks++
			engine.IncrChunksDropped()
			slog.Warn("thread: chunk generation failed, dropping chunk",
				slog.Int("chunk", i+1), slog.Int("chunks", len(chunks)), slog.Any("error", err))
			continue
		}
		engine.IncrChunksGenerated()
		if body := NormalizeText(reply); body != "" {
			parts = append(parts, body)
		}
	}

	t.Posts = Normalize(strings.Join(parts, "\n\n"))
	if t.FailedChunks > 0 {
		slog.Warn("thread: partial generation",
			slog.Int("failed", t.FailedChunks), slog.Int("chunks", len(chunks)), slog.Int("posts", len(t.Posts)))
	}
	return t, nil
}

// contextNote tells the model where the chunk sits and who it writes for.
func contextNote(i, n int, directive string) string {
	pos := "Beginning of transcript"
	if i > 0 {
		pos = fmt.Sprintf("Part %d/%d of transcript", i+1, n)
	}
	return pos + ". Audience style: " + directive
}
