package thread

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"
)

// tenCharSentences returns n sentences of exactly ten characters.
func tenCharSentences(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("word%02d xx.", i)
	}
	return out
}

func TestSplitProperties(t *testing.T) {
	sizes := []int{21, 32, 43, 60, 200}
	sentences := tenCharSentences(25)
	cleaned := strings.Join(sentences, " ")

	for _, size := range sizes {
		t.Run(fmt.Sprintf("size=%d", size), func(t *testing.T) {
			chunks := Split("raw", cleaned, ChunkOptions{Size: size})
			if len(chunks.Items) == 0 {
				t.Fatal("no chunks")
			}
			if chunks.Raw != "raw" {
				t.Errorf("Raw = %q", chunks.Raw)
			}

			var fresh []string
			for i, ch := range chunks.Items {
				if n := utf8.RuneCountInString(ch.Text); n > size && len(ch.Sentences) > 1 {
					t.Errorf("chunk %d has %d chars, bound %d", i, n, size)
				}
				if ch.Text != strings.Join(ch.Sentences, " ") {
					t.Errorf("chunk %d text does not match its sentences", i)
				}
				if i == 0 && ch.Overlap != 0 {
					t.Errorf("first chunk overlap = %d", ch.Overlap)
				}
				if ch.Overlap > OverlapSentences {
					t.Errorf("chunk %d overlap %d > %d", i, ch.Overlap, OverlapSentences)
				}
				if i > 0 {
					prev := chunks.Items[i-1].Sentences
					tail := strings.Join(prev[len(prev)-ch.Overlap:], "|")
					head := strings.Join(ch.Sentences[:ch.Overlap], "|")
					if tail != head {
						t.Errorf("chunk %d overlap %q does not match previous tail %q", i, head, tail)
					}
				}
				fresh = append(fresh, ch.Fresh()...)
			}
			if strings.Join(fresh, " ") != cleaned {
				t.Errorf("fresh sentences do not reconstruct the transcript:\n got  %q\n want %q",
					strings.Join(fresh, " "), cleaned)
			}
		})
	}
}

func TestSplitFullOverlapWhenRoomy(t *testing.T) {
	// 43 chars holds four sentences, so each overflow keeps three.
	chunks := Split("", strings.Join(tenCharSentences(6), " "), ChunkOptions{Size: 43})
	if len(chunks.Items) != 3 {
		t.Fatalf("got %d chunks, want 3", len(chunks.Items))
	}
	for i, ch := range chunks.Items[1:] {
		if ch.Overlap != OverlapSentences {
			t.Errorf("chunk %d overlap = %d, want %d", i+1, ch.Overlap, OverlapSentences)
		}
	}
}

func TestSplitOversizedSentence(t *testing.T) {
	long := "this sentence is definitely longer than twenty."
	cleaned := "short one. " + long + " tail here."
	chunks := Split("", cleaned, ChunkOptions{Size: 20})

	got := chunks.Texts()
	want := []string{"short one.", long, "tail here."}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Errorf("Split() = %q, want %q", got, want)
	}
	for i, ch := range chunks.Items {
		if ch.Overlap != 0 {
			t.Errorf("chunk %d overlap = %d, want 0", i, ch.Overlap)
		}
	}
}

func TestSplitSmallTranscript(t *testing.T) {
	chunks := Split("raw text", "Only one sentence here.", ChunkOptions{})
	if len(chunks.Items) != 1 || chunks.Items[0].Text != "Only one sentence here." {
		t.Errorf("Split() = %+v", chunks.Items)
	}

	if empty := Split("", "", ChunkOptions{}); len(empty.Items) != 0 {
		t.Errorf("Split(empty) = %+v", empty.Items)
	}
}

func TestSplitCountsRunes(t *testing.T) {
	// Each sentence is 6 runes but 7 or 8 bytes.
	s := "héllö. wörld. ñandú."
	chunks := Split("", s, ChunkOptions{Size: 13})
	if len(chunks.Items) != 2 {
		t.Fatalf("got %d chunks, want 2: %q", len(chunks.Items), chunks.Texts())
	}
}
