package threadserver

import (
	"context"
	"errors"
	"strings"

	"github.com/anatolykoptev/go_thread/internal/engine"
	"github.com/anatolykoptev/go_thread/internal/engine/thread"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type TranscriptChunksInput struct {
	URL       string `json:"url" jsonschema:"YouTube video URL"`
	ChunkSize int    `json:"chunk_size,omitempty" jsonschema:"Max characters per chunk (default: server setting, 4000)"`
}

type TranscriptChunk struct {
	Text    string `json:"text"`
	Chars   int    `json:"chars"`
	Overlap int    `json:"overlap"`
}

type TranscriptChunksOutput struct {
	VideoID  string            `json:"video_id,omitempty"`
	OK       bool              `json:"ok"`
	Error    string            `json:"error,omitempty"`
	RawChars int               `json:"raw_chars"`
	Chunks   []TranscriptChunk `json:"chunks"`
}

func registerTranscriptChunks(server *mcp.Server, p Pipeline) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "transcript_chunks",
		Description: "Fetch a YouTube transcript, clean it (timestamps, sound cues, speaker labels, filler words and stopwords removed) and split it into overlapping chunks. No LLM call; shows exactly what thread_generate sends in chunked mode.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input TranscriptChunksInput) (*mcp.CallToolResult, TranscriptChunksOutput, error) {
		if strings.TrimSpace(input.URL) == "" {
			return nil, TranscriptChunksOutput{}, errors.New("url is required")
		}
		if input.ChunkSize < 0 {
			return nil, TranscriptChunksOutput{}, errors.New("chunk_size must be positive")
		}
		return nil, transcriptChunks(ctx, p, input), nil
	})
}

func transcriptChunks(ctx context.Context, p Pipeline, input TranscriptChunksInput) TranscriptChunksOutput {
	id, chunks, err := p.Transcript(ctx, input.URL, input.ChunkSize)
	out := TranscriptChunksOutput{VideoID: id, Chunks: []TranscriptChunk{}}
	if err != nil {
		out.Error = engine.ErrorMessage(err)
		return out
	}
	out.OK = true
	out.RawChars = len([]rune(chunks.Raw))
	for _, ch := range chunks.Items {
		out.Chunks = append(out.Chunks, TranscriptChunk{
			Text:    ch.Text,
			Chars:   len([]rune(ch.Text)),
			Overlap: ch.Overlap,
		})
	}
	return out
}

var _ Pipeline = (*thread.Service)(nil)
