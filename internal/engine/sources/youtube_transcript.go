package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/anatolykoptev/go_thread/internal/engine"
)

// YouTube transcript fetching.
// Primary:  scrape watch page ytInitialPlayerResponse → caption XML
// Fallback: ANDROID Innertube /player → captionTracks
// The fallback runs only when the watch page failed for an unclassified reason;
// disabled, missing and unavailable are final answers.

// PageGetter fetches a page and returns its body and status. It is
// satisfied by *engine.BrowserClient.
type PageGetter interface {
	Get(ctx context.Context, url string, headers map[string]string) ([]byte, int, error)
}

// YouTube fetches caption tracks from youtube.com.
type YouTube struct {
	HTTPClient *http.Client
	Browser    PageGetter // optional; used for the watch page when set
	WatchURL   string     // video ID is appended
	PlayerURL  string
}

// NewYouTube returns a fetcher using hc, or a 15s-timeout client when hc is nil.
func NewYouTube(hc *http.Client) *YouTube {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &YouTube{HTTPClient: hc, WatchURL: ytWatchURL, PlayerURL: ytInnertubeURL}
}

// Fetch returns the caption entries for videoID in the first available language
// of langs. Results are cached by video and language list.
func (y *YouTube) Fetch(ctx context.Context, videoID string, langs []string) ([]TranscriptEntry, error) {
	if videoID == "" {
		return nil, &engine.Error{Kind: engine.KindResolution, Err: engine.ErrInvalidVideoID}
	}
	if len(langs) == 0 {
		langs = []string{"en"}
	}
	engine.IncrTranscriptRequests()

	cacheKey := engine.CacheKey("transcript", videoID, strings.Join(langs, ","))
	if entries, ok := engine.CacheLoadJSON[[]TranscriptEntry](ctx, cacheKey); ok && len(entries) > 0 {
		return entries, nil
	}

	entries, err := y.fetch(ctx, videoID, langs)
	if err != nil {
		engine.IncrTranscriptErrors()
		return nil, engine.NewFetchError(err)
	}
	engine.CacheStoreJSON(ctx, cacheKey, entries)
	return entries, nil
}

func (y *YouTube) fetch(ctx context.Context, videoID string, langs []string) ([]TranscriptEntry, error) {
	entries, err := y.viaPageScrape(ctx, videoID, langs)
	if err == nil || isClassified(err) || ctx.Err() != nil {
		return entries, err
	}
	slog.Warn("youtube: page scrape failed, trying player",
		slog.String("id", videoID), slog.Any("error", err))
	return y.viaPlayer(ctx, videoID, langs)
}

func isClassified(err error) bool {
	return errors.Is(err, engine.ErrTranscriptsDisabled) ||
		errors.Is(err, engine.ErrNoTranscript) ||
		errors.Is(err, engine.ErrVideoUnavailable)
}

// viaPageScrape scrapes the watch page HTML and reads the caption tracks
// from ytInitialPlayerResponse.
func (y *YouTube) viaPageScrape(ctx context.Context, videoID string, langs []string) ([]TranscriptEntry, error) {
	page, err := y.watchPage(ctx, videoID)
	if err != nil {
		return nil, err
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return nil, fmt.Errorf("parse watch page: %w", err)
	}
	jsonData := findPlayerResponse(doc)
	if jsonData == nil {
		return nil, errors.New("ytInitialPlayerResponse not found in watch page")
	}

	var playerResp innertubePlayerResp
	if err := json.Unmarshal(jsonData, &playerResp); err != nil {
		return nil, fmt.Errorf("decode ytInitialPlayerResponse: %w", err)
	}
	return y.fromPlayerResponse(ctx, playerResp, langs)
}

func (y *YouTube) watchPage(ctx context.Context, videoID string) ([]byte, error) {
	u := y.WatchURL + videoID
	if y.Browser != nil {
		body, status, err := y.Browser.Get(ctx, u, map[string]string{"accept-language": "en-US,en;q=0.9"})
		if err != nil {
			return nil, fmt.Errorf("watch page: %w", err)
		}
		if status != http.StatusOK {
			return nil, fmt.Errorf("watch page: HTTP %d", status)
		}
		return body, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.RandomUserAgent())
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := y.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("watch page: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("watch page: HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(io.LimitReader(resp.Body, 6*1024*1024))
}

// findPlayerResponse returns the ytInitialPlayerResponse JSON object from
// the first <script> that assigns it.
func findPlayerResponse(doc *goquery.Document) []byte {
	var found []byte
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		text := s.Text()
		idx := strings.Index(text, ytInitialPlayerResponseMarker)
		if idx < 0 {
			return true
		}
		found = extractJSON([]byte(text[idx+len(ytInitialPlayerResponseMarker):]))
		return found == nil
	})
	return found
}

// viaPlayer uses the ANDROID Innertube /player endpoint.
func (y *YouTube) viaPlayer(ctx context.Context, videoID string, langs []string) ([]TranscriptEntry, error) {
	reqBody, err := json.Marshal(innertubeReq{
		VideoID: videoID,
		Context: innertubeCtx{
			Client: innertubeClient{
				ClientName:        "ANDROID",
				ClientVersion:     ytAndroidVersion,
				AndroidSdkVersion: 30,
				Hl:                "en",
				Gl:                "US",
			},
		},
		RacyCheckOk:    true,
		ContentCheckOk: true,
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, y.PlayerURL+"?prettyPrint=false", bytes.NewReader(reqBody))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", ytAndroidUA)
	req.Header.Set("X-Youtube-Client-Name", "3")
	req.Header.Set("X-Youtube-Client-Version", ytAndroidVersion)

	resp, err := y.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("android innertube: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return nil, fmt.Errorf("android innertube: HTTP %d: %s", resp.StatusCode, snippet)
	}

	var playerResp innertubePlayerResp
	if err := json.NewDecoder(resp.Body).Decode(&playerResp); err != nil {
		return nil, fmt.Errorf("decode player: %w", err)
	}
	return y.fromPlayerResponse(ctx, playerResp, langs)
}

// fromPlayerResponse classifies the player response and fetches the chosen track.
func (y *YouTube) fromPlayerResponse(ctx context.Context, pr innertubePlayerResp, langs []string) ([]TranscriptEntry, error) {
	if ps := pr.PlayabilityStatus; ps != nil {
		switch ps.Status {
		case "ERROR", "UNPLAYABLE":
			return nil, fmt.Errorf("%w: %s", engine.ErrVideoUnavailable, ps.Reason)
		case "LOGIN_REQUIRED":
			// Bot checks show up here too, so the other endpoint may still succeed.
			return nil, fmt.Errorf("login required: %s", ps.Reason)
		}
	}
	if pr.Captions == nil {
		return nil, engine.ErrTranscriptsDisabled
	}
	tracks := pr.Captions.PlayerCaptionsTracklistRenderer.CaptionTracks
	if len(tracks) == 0 {
		return nil, engine.ErrTranscriptsDisabled
	}
	track, err := pickBestTrack(tracks, langs)
	if err != nil {
		return nil, err
	}
	return y.fetchTimedText(ctx, track.BaseURL)
}

// needsPoToken reports whether a caption track URL requires a PoToken (browser-only).
// Tracks with &exp=xpe cannot be fetched server-side.
func needsPoToken(baseURL string) bool {
	return strings.Contains(baseURL, "&exp=xpe")
}

// pickBestTrack selects the best usable caption track for the given language preferences:
// manual track, then auto-generated, then a regional variant (en → en-GB).
func pickBestTrack(tracks []captionTrack, langs []string) (captionTrack, error) {
	usable := make([]captionTrack, 0, len(tracks))
	for _, t := range tracks {
		if !needsPoToken(t.BaseURL) {
			usable = append(usable, t)
		}
	}
	if len(usable) == 0 {
		return captionTrack{}, errors.New("all caption tracks require PoToken")
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang && t.Kind != "asr" {
				return t, nil
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if t.LanguageCode == lang {
				return t, nil
			}
		}
	}
	for _, lang := range langs {
		for _, t := range usable {
			if strings.HasPrefix(t.LanguageCode, lang+"-") {
				return t, nil
			}
		}
	}
	return captionTrack{}, fmt.Errorf("%w for languages %v", engine.ErrNoTranscript, langs)
}

// fetchTimedText fetches and parses a YouTube timedtext XML caption URL.
func (y *YouTube) fetchTimedText(ctx context.Context, baseURL string) ([]TranscriptEntry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, strings.Replace(baseURL, "&fmt=srv3", "", 1), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", engine.UserAgentBot)

	resp, err := y.HTTPClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch timedtext: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch timedtext: HTTP %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, 2*1024*1024))
	if err != nil {
		return nil, err
	}
	entries, err := parseTimedText(body)
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, errors.New("empty caption track")
	}
	return entries, nil
}

func parseTimedText(body []byte) ([]TranscriptEntry, error) {
	var tt ytTimedText
	if err := xml.Unmarshal(body, &tt); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	entries := make([]TranscriptEntry, 0, len(tt.Lines)+len(tt.Paras))
	for _, line := range tt.Lines {
		if text := engine.CleanHTML(line.Text); text != "" {
			entries = append(entries, TranscriptEntry{
				Text:     text,
				Offset:   seconds(line.Start),
				Duration: seconds(line.Dur),
			})
		}
	}
	for _, p := range tt.Paras {
		if text := engine.CleanHTML(p.Inner); text != "" {
			entries = append(entries, TranscriptEntry{
				Text:     text,
				Offset:   time.Duration(p.T) * time.Millisecond,
				Duration: time.Duration(p.D) * time.Millisecond,
			})
		}
	}
	return entries, nil
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

// extractJSON returns the balanced JSON object at the start of b.
func extractJSON(b []byte) []byte {
	if len(b) == 0 || b[0] != '{' {
		return nil
	}
	depth := 0
	inStr, escaped := false, false
	for i, c := range b {
		if inStr {
			switch {
			case escaped:
				escaped = false
			case c == '\\':
				escaped = true
			case c == '"':
				inStr = false
			}
			continue
		}
		switch c {
		case '"':
			inStr = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return b[:i+1]
			}
		}
	}
	return nil
}
