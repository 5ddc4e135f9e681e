package thread

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/anatolykoptev/go_thread/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reply struct {
	text string
	err  error
}

// fakeGenerator answers calls in order and records every request.
type fakeGenerator struct {
	mu      sync.Mutex
	replies []reply
	reqs    []engine.GenerationRequest
}

func (g *fakeGenerator) Generate(_ context.Context, req engine.GenerationRequest) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	i := len(g.reqs)
	g.reqs = append(g.reqs, req)
	if i >= len(g.replies) {
		return "", errors.New("unexpected call")
	}
	return g.replies[i].text, g.replies[i].err
}

func (g *fakeGenerator) calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.reqs)
}

var errTransport = &engine.Error{Kind: engine.KindTransport, Err: errors.New("connection reset")}

func chunksOf(texts ...string) []Chunk {
	out := make([]Chunk, len(texts))
	for i, s := range texts {
		out[i] = Chunk{Text: s, Sentences: []string{s}}
	}
	return out
}

func TestChunkedPartialFailure(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{
		{text: "1. Chunk one opens with a hook\n2. Chunk one explains the main idea\n3. Chunk one lands a neat takeaway"},
		{err: errTransport},
	}}
	d := NewDriver(gen, DefaultPersonas(), DriverOptions{})

	th, err := d.Chunked(context.Background(), chunksOf("first part.", "second part."), ToneGenZ)
	require.NoError(t, err)
	assert.Equal(t, 2, th.Chunks)
	assert.Equal(t, 1, th.FailedChunks)
	assert.Equal(t, []string{
		"1. Chunk one opens with a hook",
		"2. Chunk one explains the main idea",
		"3. Chunk one lands a neat takeaway",
	}, th.Posts)

	out := Render(th, err)
	assert.True(t, strings.HasPrefix(out, Banner+"\n\n1. Chunk one opens"))
	assert.Equal(t, 2, gen.calls())
}

func TestChunkedRenumbersAcrossChunks(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{
		{text: "1. Alpha post has enough words\n2. Beta post has enough words"},
		{err: errTransport},
		{text: "1. Gamma post has enough words\n2. alpha post has enough words!"},
	}}
	d := NewDriver(gen, DefaultPersonas(), DriverOptions{})

	th, err := d.Chunked(context.Background(), chunksOf("a.", "b.", "c."), ToneBoomer)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1. Alpha post has enough words",
		"2. Beta post has enough words",
		"3. Gamma post has enough words",
	}, th.Posts)
	assert.Equal(t, 1, th.FailedChunks)
}

func TestChunkedCapsAtNine(t *testing.T) {
	var replies []reply
	for _, w := range []string{"one", "two", "three", "four", "five"} {
		replies = append(replies, reply{text: "1. Chunk " + w + " first post is here\n2. Chunk " + w + " second post is here"})
	}
	gen := &fakeGenerator{replies: replies}
	d := NewDriver(gen, DefaultPersonas(), DriverOptions{})

	th, err := d.Chunked(context.Background(), chunksOf("a.", "b.", "c.", "d.", "e."), ToneGenA)
	require.NoError(t, err)
	assert.Len(t, th.Posts, MaxPosts)
	assert.Equal(t, "9. Chunk five first post is here", th.Posts[8])
}

func TestChunkedAllFail(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{err: errTransport}, {err: errTransport}}}
	d := NewDriver(gen, DefaultPersonas(), DriverOptions{})

	th, err := d.Chunked(context.Background(), chunksOf("a.", "b."), ToneGenZ)
	require.NoError(t, err)
	assert.Empty(t, th.Posts)
	assert.Equal(t, 2, th.FailedChunks)
	assert.Equal(t, Banner+"\n\n", Render(th, nil))
}

func TestChunkedPrompts(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{text: ""}, {text: ""}, {text: ""}}}
	d := NewDriver(gen, DefaultPersonas(), DriverOptions{Model: "m", Temperature: engine.Float64(0.3)})

	_, err := d.Chunked(context.Background(), chunksOf("alpha text.", "beta text.", "gamma text."), ToneBoomer)
	require.NoError(t, err)
	require.Len(t, gen.reqs, 3)

	directive := DefaultPersonas().Directive(ToneBoomer)
	assert.Contains(t, gen.reqs[0].Prompt, "Context: Beginning of transcript. Audience style: "+directive)
	assert.Contains(t, gen.reqs[1].Prompt, "Context: Part 2/3 of transcript. Audience style: "+directive)
	assert.Contains(t, gen.reqs[2].Prompt, "Part 3/3 of transcript")
	assert.Contains(t, gen.reqs[1].Prompt, "beta text.")
	assert.Contains(t, gen.reqs[0].Prompt, "Write 2-3 concise")
	for _, r := range gen.reqs {
		assert.Equal(t, chunkMaxTokens, r.MaxTokens)
		assert.Equal(t, "m", r.Model)
		require.NotNil(t, r.Temperature)
		assert.Equal(t, 0.3, *r.Temperature)
	}
}

func TestChunkedCancelled(t *testing.T) {
	gen := &fakeGenerator{}
	d := NewDriver(gen, DefaultPersonas(), DriverOptions{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := d.Chunked(ctx, chunksOf("a."), ToneGenZ)
	require.Error(t, err)
	assert.Equal(t, engine.KindTransport, engine.KindOf(err))
	assert.Equal(t, 0, gen.calls())
}

func TestSinglePass(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{text: "Sure!\n1. Hook line that grabs attention fast\n2. Insight that keeps readers scrolling on"}}}
	d := NewDriver(gen, DefaultPersonas(), DriverOptions{MaxTokens: 1024})

	transcript := strings.Repeat("a", singlePassLimit+500)
	th, err := d.SinglePass(context.Background(), transcript, ToneGenZ)
	require.NoError(t, err)
	assert.Equal(t, []string{
		"1. Hook line that grabs attention fast",
		"2. Insight that keeps readers scrolling on",
	}, th.Posts)
	assert.Equal(t, 1, th.Chunks)

	require.Len(t, gen.reqs, 1)
	prompt := gen.reqs[0].Prompt
	assert.Contains(t, prompt, strings.Repeat("a", singlePassLimit))
	assert.NotContains(t, prompt, strings.Repeat("a", singlePassLimit+1))
	assert.Contains(t, prompt, "chain of 5-8 concise tweets")
	assert.Contains(t, prompt, DefaultPersonas().Directive(ToneGenZ))
	assert.Equal(t, 1024, gen.reqs[0].MaxTokens)
}

func TestSinglePassError(t *testing.T) {
	gen := &fakeGenerator{replies: []reply{{err: &engine.Error{Kind: engine.KindEndpoint, Status: 500, Body: "boom"}}}}
	d := NewDriver(gen, DefaultPersonas(), DriverOptions{})

	th, err := d.SinglePass(context.Background(), "short transcript", ToneGenZ)
	require.Error(t, err)
	assert.Equal(t, 1, th.FailedChunks)
	assert.Equal(t, "❌ LLM API error: 500 - boom", Render(th, err))
}
