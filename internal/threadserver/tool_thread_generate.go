package threadserver

import (
	"context"
	"errors"
	"strings"

	"github.com/anatolykoptev/go_thread/internal/engine/thread"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type ThreadGenerateInput struct {
	URL  string `json:"url" jsonschema:"YouTube video URL (youtube.com/watch?v=... or youtu.be/...)"`
	Tone string `json:"tone,omitempty" jsonschema:"Audience tone: boomer, gen z, gen a (default: gen z)"`
	Mode string `json:"mode,omitempty" jsonschema:"Generation mode: auto, single, chunked (default: server setting)"`
}

type ThreadGenerateOutput struct {
	VideoID      string   `json:"video_id,omitempty"`
	Tone         string   `json:"tone"`
	Mode         string   `json:"mode,omitempty"`
	OK           bool     `json:"ok"`
	Thread       string   `json:"thread"`
	Posts        []string `json:"posts"`
	Chunks       int      `json:"chunks"`
	FailedChunks int      `json:"failed_chunks"`
}

func registerThreadGenerate(server *mcp.Server, p Pipeline) {
	mcp.AddTool(server, &mcp.Tool{
		Name:        "thread_generate",
		Description: "Turn a YouTube video into a numbered Twitter/X thread of at most 9 posts, written for the chosen audience tone. Fetches the English transcript, cleans and chunks it, and asks the LLM for posts. Failures are returned in the thread field prefixed with ❌ and ok=false.",
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: true},
	}, func(ctx context.Context, _ *mcp.CallToolRequest, input ThreadGenerateInput) (*mcp.CallToolResult, ThreadGenerateOutput, error) {
		if strings.TrimSpace(input.URL) == "" {
			return nil, ThreadGenerateOutput{}, errors.New("url is required")
		}
		return nil, generate(ctx, p, input), nil
	})
}

func generate(ctx context.Context, p Pipeline, input ThreadGenerateInput) ThreadGenerateOutput {
	tone := input.Tone
	if strings.TrimSpace(tone) == "" {
		tone = thread.ToneGenZ
	}
	var mode thread.Mode
	if strings.TrimSpace(input.Mode) != "" {
		mode = thread.ParseMode(input.Mode)
	}

	res, err := p.Generate(ctx, input.URL, tone, mode)
	posts := res.Thread.Posts
	if posts == nil {
		posts = []string{}
	}
	return ThreadGenerateOutput{
		VideoID:      res.VideoID,
		Tone:         thread.NormalizeTone(tone),
		Mode:         string(res.Mode),
		OK:           err == nil,
		Thread:       thread.Render(res.Thread, err),
		Posts:        posts,
		Chunks:       res.Thread.Chunks,
		FailedChunks: res.Thread.FailedChunks,
	}
}
