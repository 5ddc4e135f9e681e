package engine

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"resolution", &Error{Kind: KindResolution, Err: ErrInvalidVideoID}, "❌ Invalid video ID."},
		{"disabled", NewFetchError(ErrTranscriptsDisabled), "❌ Transcripts are disabled for this video."},
		{"not found wrapped", NewFetchError(fmt.Errorf("%w for languages [en]", ErrNoTranscript)),
			"❌ No transcript found (not available in English or at all)."},
		{"unavailable", NewFetchError(fmt.Errorf("%w: private", ErrVideoUnavailable)), "❌ Video is unavailable."},
		{"unclassified fetch", NewFetchError(errors.New("watch page: HTTP 429")), "❌ Unexpected error: watch page: HTTP 429"},
		{"transport", &Error{Kind: KindTransport, Err: errors.New("dial tcp: refused")}, "❌ LLM request failed: dial tcp: refused"},
		{"endpoint status", &Error{Kind: KindEndpoint, Status: 500, Body: "boom"}, "❌ LLM API error: 500 - boom"},
		{"endpoint parse", &Error{Kind: KindEndpoint, Err: ErrMalformedResponse}, "❌ Invalid JSON from LLM API"},
		{"plain error", errors.New("bare"), "❌ Unexpected error: bare"},
		{"wrapped typed", fmt.Errorf("outer: %w", NewFetchError(ErrTranscriptsDisabled)), "❌ Transcripts are disabled for this video."},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ErrorMessage(tt.err)
			if got != tt.want {
				t.Errorf("ErrorMessage() = %q, want %q", got, tt.want)
			}
			if !IsErrorMessage(got) {
				t.Errorf("IsErrorMessage(%q) = false", got)
			}
		})
	}
}

func TestKindOf(t *testing.T) {
	if k := KindOf(errors.New("x")); k != 0 {
		t.Errorf("KindOf(plain) = %v, want 0", k)
	}
	if k := KindOf(fmt.Errorf("a: %w", &Error{Kind: KindEndpoint})); k != KindEndpoint {
		t.Errorf("KindOf(wrapped) = %v, want endpoint", k)
	}
	if !errors.Is(NewFetchError(ErrNoTranscript), ErrNoTranscript) {
		t.Error("Unwrap should expose the cause")
	}
	if IsErrorMessage("🧵 Generated Twitter Thread:") {
		t.Error("banner is not an error message")
	}
}

func TestConfigValidate(t *testing.T) {
	ok := Config{LLMAPIKey: "k", LLMProvider: "http", ThreadMode: "auto", ChunkSize: 4000}
	if err := ok.Validate(); err != nil {
		t.Fatalf("Validate() = %v", err)
	}

	zero := ok
	zero.ChunkSize = 0
	if err := zero.Validate(); err != nil {
		t.Errorf("Validate() with CHUNK_SIZE=0 = %v, want nil", err)
	}

	tests := []struct {
		name string
		mut  func(*Config)
		want string
	}{
		{"missing key", func(c *Config) { c.LLMAPIKey = "" }, "LLM_API_KEY"},
		{"unknown provider", func(c *Config) { c.LLMProvider = "grpc" }, `unknown LLM_PROVIDER "grpc"`},
		{"unknown mode", func(c *Config) { c.ThreadMode = "parallel" }, `unknown THREAD_MODE "parallel"`},
		{"negative chunk size", func(c *Config) { c.ChunkSize = -1 }, "CHUNK_SIZE must not be negative, got -1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := ok
			tt.mut(&c)
			err := c.Validate()
			if err == nil {
				t.Fatal("Validate() = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("Validate() = %q, want it to contain %q", err, tt.want)
			}
		})
	}
}

func TestConfigLLMKeepsZeroTemperature(t *testing.T) {
	c := Config{LLMAPIKey: "k", LLMTemperature: 0}
	got := c.LLM().Temperature
	if got == nil || *got != 0 {
		t.Errorf("LLM().Temperature = %v, want pointer to 0", got)
	}
}

func TestCleanHTML(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"it&#39;s", "it's"},
		{"it&amp;#39;s", "it's"},
		{"<font color=\"#fff\">hi</font> there ", "hi there"},
		{"plain", "plain"},
	}
	for _, tt := range tests {
		if got := CleanHTML(tt.in); got != tt.want {
			t.Errorf("CleanHTML(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
