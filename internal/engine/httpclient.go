package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	fhttp "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
)

// maxPageBytes bounds a page read through BrowserClient.
const maxPageBytes = 6 * 1024 * 1024

// BrowserClient wraps tls-client with a Chrome TLS fingerprint.
// Watch pages served to a Go TLS handshake are more often bot-walled,
// so the transcript source can route its page scrape through this client.
type BrowserClient struct {
	client tls_client.HttpClient
}

// NewBrowserClient creates a client that impersonates Chrome 131.
// Redirects are followed so consent and locale hops land on the page.
func NewBrowserClient(timeout time.Duration) (*BrowserClient, error) {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	opts := []tls_client.HttpClientOption{
		tls_client.WithTimeoutSeconds(int(timeout / time.Second)),
		tls_client.WithClientProfile(profiles.Chrome_131),
		tls_client.WithCookieJar(tls_client.NewCookieJar()),
	}
	client, err := tls_client.NewHttpClient(nil, opts...)
	if err != nil {
		return nil, fmt.Errorf("tls-client init: %w", err)
	}
	return &BrowserClient{client: client}, nil
}

// Get fetches url with Chrome headers and returns body bytes and status.
func (bc *BrowserClient) Get(ctx context.Context, url string, headers map[string]string) ([]byte, int, error) {
	req, err := fhttp.NewRequestWithContext(ctx, fhttp.MethodGet, url, nil)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	for k, v := range ChromeHeaders() {
		req.Header.Set(k, v)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	// Chrome-like header order matters for fingerprinting
	req.Header[fhttp.HeaderOrderKey] = []string{
		"accept",
		"accept-language",
		"accept-encoding",
		"cookie",
		"user-agent",
	}

	resp, err := bc.client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("tls request: %w", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, maxPageBytes)); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read body: %w", err)
	}
	return buf.Bytes(), resp.StatusCode, nil
}

// ChromeHeaders returns common Chrome browser headers with a rotating User-Agent.
func ChromeHeaders() map[string]string {
	return map[string]string{
		"accept":          "text/html,application/xhtml+xml,application/xml;q=0.9,image/avif,image/webp,*/*;q=0.8",
		"accept-language": "en-US,en;q=0.9",
		"user-agent":      RandomUserAgent(),
	}
}
