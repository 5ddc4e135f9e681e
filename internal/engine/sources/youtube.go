package sources

import (
	"context"
	"net/url"
	"strings"
	"time"
)

// TranscriptEntry is one timed caption line.
type TranscriptEntry struct {
	Text     string        `json:"text"`
	Offset   time.Duration `json:"offset"`
	Duration time.Duration `json:"duration"`
}

// TranscriptFetcher resolves a video ID to its caption entries.
// Failures are *engine.Error values with KindFetch or KindResolution.
type TranscriptFetcher interface {
	Fetch(ctx context.Context, videoID string, langs []string) ([]TranscriptEntry, error)
}

// VideoID extracts the video ID from a youtu.be or youtube.com URL.
// ok is false for any other host or when no ID is present.
func VideoID(rawURL string) (id string, ok bool) {
	u, err := url.Parse(strings.TrimSpace(rawURL))
	if err != nil {
		return "", false
	}
	host := strings.ToLower(u.Host)
	switch {
	case strings.Contains(host, "youtu.be"):
		id = strings.TrimLeft(u.Path, "/")
	case strings.Contains(host, "youtube.com"):
		id = u.Query().Get("v")
	}
	return id, id != ""
}

// JoinEntries concatenates entry texts with single spaces.
func JoinEntries(entries []TranscriptEntry) string {
	texts := make([]string, 0, len(entries))
	for _, e := range entries {
		texts = append(texts, e.Text)
	}
	return strings.Join(texts, " ")
}
