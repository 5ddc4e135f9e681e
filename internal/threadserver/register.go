// Package threadserver exposes the thread pipeline as MCP tools:
// thread_generate and transcript_chunks.
package threadserver

import (
	"context"

	"github.com/anatolykoptev/go_thread/internal/engine/thread"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Pipeline is the part of *thread.Service the tools call.
type Pipeline interface {
	Generate(ctx context.Context, url, tone string, mode thread.Mode) (thread.Result, error)
	Transcript(ctx context.Context, url string, chunkSize int) (string, thread.Chunks, error)
}

// ToolCount is the number of tools RegisterTools adds.
const ToolCount = 2

// RegisterTools registers all thread tools on the given MCP server.
func RegisterTools(server *mcp.Server, p Pipeline) {
	registerThreadGenerate(server, p)
	registerTranscriptChunks(server, p)
}
