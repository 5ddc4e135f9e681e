package thread

import (
	"context"
	"log/slog"
	"time"

	"github.com/anatolykoptev/go_thread/internal/engine"
	"github.com/anatolykoptev/go_thread/internal/engine/sources"
)

const defaultFetchTimeout = 30 * time.Second

// ServiceOptions configures the URL-to-thread pipeline.
type ServiceOptions struct {
	Mode         Mode
	ChunkSize    int
	Langs        []string
	FetchTimeout time.Duration
}

// Service runs resolve → fetch → clean → chunk → generate for one video.
// It holds no per-request state and is safe for concurrent use.
type Service struct {
	fetcher sources.TranscriptFetcher
	driver  *Driver
	opts    ServiceOptions
}

// NewService wires a transcript source and a driver.
func NewService(fetcher sources.TranscriptFetcher, driver *Driver, opts ServiceOptions) *Service {
	if opts.Mode == "" {
		opts.Mode = ModeAuto
	}
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if len(opts.Langs) == 0 {
		opts.Langs = []string{"en"}
	}
	if opts.FetchTimeout <= 0 {
		opts.FetchTimeout = defaultFetchTimeout
	}
	return &Service{fetcher: fetcher, driver: driver, opts: opts}
}

// Result describes a finished generation.
type Result struct {
	VideoID string
	Mode    Mode // the mode actually used, never ModeAuto
	Thread  Thread
}

// Transcript resolves url and returns its chunked cleaned transcript.
func (s *Service) Transcript(ctx context.Context, url string, chunkSize int) (string, Chunks, error) {
	id, ok := sources.VideoID(url)
	if !ok {
		return "", Chunks{}, &engine.Error{Kind: engine.KindResolution, Err: engine.ErrInvalidVideoID}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, s.opts.FetchTimeout)
	defer cancel()
	entries, err := s.fetcher.Fetch(fetchCtx, id, s.opts.Langs)
	if err != nil {
		if engine.KindOf(err) == 0 {
			err = engine.NewFetchError(err)
		}
		return id, Chunks{}, err
	}

	if chunkSize <= 0 {
		chunkSize = s.opts.ChunkSize
	}
	raw := sources.JoinEntries(entries)
	return id, Split(raw, Clean(raw), ChunkOptions{Size: chunkSize}), nil
}

// Generate builds a thread for the video at url in the given tone. An empty
// mode uses the service default.
func (s *Service) Generate(ctx context.Context, url, tone string, mode Mode) (Result, error) {
	engine.IncrThreadRequests()
	if mode == "" {
		mode = s.opts.Mode
	}

	var res Result
	err := engine.TrackOperation(ctx, "thread:"+url, 30*time.Second, func(ctx context.Context) error {
		var err error
		res, err = s.generate(ctx, url, tone, mode)
		return err
	})
	if err != nil {
		engine.IncrThreadErrors()
		slog.Warn("thread: generation failed",
			slog.String("url", url), slog.String("kind", engine.KindOf(err).String()), slog.Any("error", err))
		return res, err
	}
	slog.Info("thread: generated",
		slog.String("id", res.VideoID), slog.String("mode", string(res.Mode)),
		slog.Int("chunks", res.Thread.Chunks), slog.Int("posts", len(res.Thread.Posts)))
	return res, nil
}

func (s *Service) generate(ctx context.Context, url, tone string, mode Mode) (Result, error) {
	id, chunks, err := s.Transcript(ctx, url, 0)
	res := Result{VideoID: id}
	if err != nil {
		return res, err
	}

	if mode == ModeAuto {
		mode = ModeSingle
		if len(chunks.Items) > 1 {
			mode = ModeChunked
		}
	}
	res.Mode = mode

	if mode == ModeChunked {
		res.Thread, err = s.driver.Chunked(ctx, chunks.Items, tone)
	} else {
		res.Thread, err = s.driver.SinglePass(ctx, chunks.Raw, tone)
	}
	return res, err
}
