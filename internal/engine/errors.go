package engine

import (
	"errors"
	"fmt"
	"strings"
)

// ErrorMarker prefixes every user-facing failure message.
const ErrorMarker = "❌"

// Kind classifies where in the pipeline a failure happened.
type Kind int

const (
	KindResolution Kind = iota + 1 // URL did not yield a video ID
	KindFetch                      // transcript source failed
	KindTransport                  // generation endpoint unreachable or timed out
	KindEndpoint                   // generation endpoint answered badly
)

func (k Kind) String() string {
	switch k {
	case KindResolution:
		return "resolution"
	case KindFetch:
		return "fetch"
	case KindTransport:
		return "transport"
	case KindEndpoint:
		return "endpoint"
	}
	return "unknown"
}

// Fetch causes. Wrapped by *Error with KindFetch.
var (
	ErrTranscriptsDisabled = errors.New("transcripts disabled")
	ErrNoTranscript        = errors.New("no transcript found")
	ErrVideoUnavailable    = errors.New("video unavailable")
	ErrInvalidVideoID      = errors.New("invalid video id")
	ErrMalformedResponse   = errors.New("malformed completion response")
)

// Error is the typed failure crossing component boundaries.
type Error struct {
	Kind   Kind
	Status int    // KindEndpoint: HTTP status, 0 when the body failed to parse
	Body   string // KindEndpoint: truncated response body
	Err    error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindEndpoint && e.Status != 0:
		return fmt.Sprintf("%s: status %d: %s", e.Kind, e.Status, e.Body)
	case e.Err != nil:
		return fmt.Sprintf("%s: %v", e.Kind, e.Err)
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error { return e.Err }

// Message renders the marker-prefixed text shown to the caller.
func (e *Error) Message() string {
	switch e.Kind {
	case KindResolution:
		return ErrorMarker + " Invalid video ID."
	case KindFetch:
		switch {
		case errors.Is(e.Err, ErrTranscriptsDisabled):
			return ErrorMarker + " Transcripts are disabled for this video."
		case errors.Is(e.Err, ErrNoTranscript):
			return ErrorMarker + " No transcript found (not available in English or at all)."
		case errors.Is(e.Err, ErrVideoUnavailable):
			return ErrorMarker + " Video is unavailable."
		}
		return fmt.Sprintf("%s Unexpected error: %v", ErrorMarker, e.Err)
	case KindTransport:
		return fmt.Sprintf("%s LLM request failed: %v", ErrorMarker, e.Err)
	case KindEndpoint:
		if e.Status != 0 {
			return fmt.Sprintf("%s LLM API error: %d - %s", ErrorMarker, e.Status, e.Body)
		}
		return ErrorMarker + " Invalid JSON from LLM API"
	}
	return fmt.Sprintf("%s Unexpected error: %v", ErrorMarker, e.Err)
}

// NewFetchError wraps a transcript source failure.
func NewFetchError(err error) *Error {
	return &Error{Kind: KindFetch, Err: err}
}

// ErrorMessage renders any error as a marker-prefixed message.
func ErrorMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message()
	}
	return fmt.Sprintf("%s Unexpected error: %v", ErrorMarker, err)
}

// IsErrorMessage reports whether s is a rendered failure.
func IsErrorMessage(s string) bool {
	return strings.HasPrefix(s, ErrorMarker)
}

// KindOf returns the Kind of err, or 0 when err is not an *Error.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return 0
}
