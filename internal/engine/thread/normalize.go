package thread

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/anatolykoptev/go_thread/internal/engine"
)

const (
	// MaxPosts caps the number of posts in a thread.
	MaxPosts = 9
	// minWords is the word count a segment must exceed to count as a post.
	minWords = 4
)

// Banner heads every successful thread.
const Banner = "🧵 Generated Twitter Thread:"

var (
	markerRe  = regexp.MustCompile(`\n\s*\d+[.)]`)
	nonWordRe = regexp.MustCompile(`[^\p{L}\p{N}_]+`)
)

// Normalize parses a model reply into at most MaxPosts numbered posts:
// split on enumeration markers, drop fragments of minWords words or fewer,
// drop repeats (case and punctuation insensitive, first wins) and renumber.
// Text before the first marker is discarded.
func Normalize(reply string) []string {
	segments := markerRe.Split("\n"+reply, -1)[1:]

	seen := make(map[string]struct{}, len(segments))
	posts := make([]string, 0, MaxPosts)
	for _, seg := range segments {
		if len(posts) == MaxPosts {
			break
		}
		seg = strings.TrimSpace(seg)
		if len(strings.Fields(seg)) <= minWords {
			continue
		}
		key := nonWordRe.ReplaceAllString(strings.ToLower(seg), "")
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		posts = append(posts, fmt.Sprintf("%d. %s", len(posts)+1, seg))
	}
	return posts
}

// NormalizeText is Normalize joined with blank lines.
func NormalizeText(reply string) string {
	return strings.Join(Normalize(reply), "\n\n")
}

// Thread is the generated result.
type Thread struct {
	Posts        []string `json:"posts"`
	Chunks       int      `json:"chunks"`
	FailedChunks int      `json:"failed_chunks"`
}

// Body returns the posts separated by blank lines.
func (t Thread) Body() string {
	return strings.Join(t.Posts, "\n\n")
}

// Render produces the caller-facing artifact: the marker-prefixed message when
// err is set, otherwise the banner, a blank line and the thread body.
func Render(t Thread, err error) string {
	if err != nil {
		return engine.ErrorMessage(err)
	}
	return Banner + "\n\n" + t.Body()
}
