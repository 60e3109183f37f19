// Package extract fetches web pages and turns them into index documents:
// robots.txt checks, sitemap discovery, main-text extraction and language
// detection.
package extract

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/FranksOps/puresearch/internal/transport"
	"github.com/FranksOps/puresearch/pkg/httpclient"
	"github.com/FranksOps/puresearch/pkg/ratelimit"
)

const (
	DefaultUserAgent = "puresearch-indexer/1.0 (+https://github.com/FranksOps/puresearch)"
	// MaxBodyBytes caps how much of a page is read.
	MaxBodyBytes = 10 << 20
)

// FetchConfig configures a Fetcher.
type FetchConfig struct {
	Timeout      time.Duration
	MaxRedirects int
	UserAgent    string
	Profile      transport.Profile
	Limiter      *ratelimit.Limiter
	// Transport overrides Profile, mostly for tests.
	Transport http.RoundTripper
}

// Page is a fetched document.
type Page struct {
	URL        string // final URL after redirects
	StatusCode int
	Header     http.Header
	Body       []byte
	Truncated  bool // Body was cut at MaxBodyBytes
	Duration   time.Duration
	FetchedAt  time.Time
}

// Fetcher performs paced GET requests with one shared client.
type Fetcher struct {
	config FetchConfig
	client *httpclient.Client
}

// NewFetcher initializes a new Fetcher with the given configuration.
func NewFetcher(cfg FetchConfig) (*Fetcher, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRedirects == 0 {
		cfg.MaxRedirects = 5
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}

	rt := cfg.Transport
	if rt == nil {
		tr, err := transport.New(transport.Options{Profile: cfg.Profile})
		if err != nil {
			return nil, fmt.Errorf("failed to setup transport: %w", err)
		}
		rt = tr
	}

	client, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: cfg.MaxRedirects,
		MaxBodyBytes: MaxBodyBytes,
		Transport:    rt,
		Header: http.Header{
			"User-Agent":      {cfg.UserAgent},
			"Accept":          {"text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8"},
			"Accept-Language": {"en-US,en;q=0.5"},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Fetcher{config: cfg, client: client}, nil
}

// UserAgent is the agent string sent with every request and matched against
// robots.txt groups.
func (f *Fetcher) UserAgent() string { return f.config.UserAgent }

// Fetch GETs targetURL. Non-2xx responses are returned, not treated as errors.
func (f *Fetcher) Fetch(ctx context.Context, targetURL string) (*Page, error) {
	if f.config.Limiter != nil {
		if err := f.config.Limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("rate limiter failed: %w", err)
		}
	}

	start := time.Now()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := f.client.Do(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, truncated, err := f.client.ReadBody(resp)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	return &Page{
		URL:        resp.Request.URL.String(),
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
		Truncated:  truncated,
		Duration:   time.Since(start),
		FetchedAt:  start.UTC(),
	}, nil
}
