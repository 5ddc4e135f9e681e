package thread

import (
	"strings"
	"unicode/utf8"
)

const (
	// DefaultChunkSize is the chunk bound in characters.
	DefaultChunkSize = 4000
	// OverlapSentences is how many trailing sentences of a chunk are repeated
	// at the start of the next one.
	OverlapSentences = 3
)

// Chunk is a run of consecutive sentences. The first Overlap sentences repeat
// the tail of the previous chunk.
type Chunk struct {
	Text      string   `json:"text"`
	Sentences []string `json:"-"`
	Overlap   int      `json:"overlap"`
}

// Fresh returns the sentences not shared with the previous chunk.
func (c Chunk) Fresh() []string {
	return c.Sentences[c.Overlap:]
}

// Chunks is the chunked cleaned transcript plus the raw transcript it came from.
type Chunks struct {
	Raw   string
	Items []Chunk
}

// Texts returns the chunk strings in transcript order.
func (c Chunks) Texts() []string {
	out := make([]string, len(c.Items))
	for i, ch := range c.Items {
		out[i] = ch.Text
	}
	return out
}

// ChunkOptions bounds chunk size. Size <= 0 means DefaultChunkSize.
type ChunkOptions struct {
	Size int
}

// Split groups the sentences of cleaned into chunks of at most opts.Size
// characters. Each chunk after the first starts with up to OverlapSentences
// trailing sentences of its predecessor; the overlap shrinks when keeping it
// would break the bound. A sentence longer than the bound on its own becomes
// a single-sentence chunk and is never split.
func Split(raw, cleaned string, opts ChunkOptions) Chunks {
	size := opts.Size
	if size <= 0 {
		size = DefaultChunkSize
	}
	out := Chunks{Raw: raw}

	var cur []string
	curLen, overlap := 0, 0
	flush := func() {
		out.Items = append(out.Items, Chunk{
			Text:      strings.Join(cur, " "),
			Sentences: cur,
			Overlap:   overlap,
		})
	}

	for _, s := range splitSentences(cleaned) {
		n := utf8.RuneCountInString(s)
		if len(cur) == 0 {
			cur, curLen = []string{s}, n
			continue
		}
		if curLen+1+n <= size {
			cur = append(cur, s)
			curLen += 1 + n
			continue
		}

		flush()
		k := min(OverlapSentences, len(cur))
		for ; k > 0; k-- {
			if joinedLen(cur[len(cur)-k:])+1+n <= size {
				break
			}
		}
		seed := make([]string, 0, k+1)
		seed = append(seed, cur[len(cur)-k:]...)
		cur = append(seed, s)
		curLen = joinedLen(cur)
		overlap = k
	}
	if len(cur) > 0 {
		flush()
	}
	return out
}

// joinedLen is the rune length of sentences joined with single spaces.
func joinedLen(sentences []string) int {
	if len(sentences) == 0 {
		return 0
	}
	n := len(sentences) - 1
	for _, s := range sentences {
		n += utf8.RuneCountInString(s)
	}
	return n
}
