// Package api is the client for the PureSearch backend: search, classify,
// index and crawl. Every failure is reported as a *RequestError.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/FranksOps/puresearch/internal/transport"
	"github.com/FranksOps/puresearch/pkg/httpclient"
	"github.com/google/uuid"
)

const (
	DefaultBaseURL   = "http://localhost:8080/api/v1"
	DefaultUserAgent = "puresearch-client/1.0"
	DefaultPerPage   = 10

	maxResponseBytes = 8 << 20
)

var errResponseTooLarge = errors.New("response body exceeds 8 MiB")

// Service is the set of backend operations. *Client implements it; hooks and
// pages depend on this interface.
type Service interface {
	Search(ctx context.Context, query string, page, perPage int) (*SearchResponse, error)
	Classify(ctx context.Context, text, pageURL string) (*ClassificationResponse, error)
	Index(ctx context.Context, req IndexRequest) (*IndexResponse, error)
	SubmitCrawl(ctx context.Context, targetURL string, depth int) (*CrawlResponse, error)
	CrawlStatus(ctx context.Context, requestID string) (*CrawlStatus, error)
}

var _ Service = (*Client)(nil)

// Config defines the setup for the API client.
type Config struct {
	// BaseURL is the gateway prefix, e.g. http://localhost:8080/api/v1.
	BaseURL string
	Timeout time.Duration
	// TLSProfile selects the ClientHello used for https backends.
	TLSProfile         transport.Profile
	InsecureSkipVerify bool
	UserAgent          string
	// Transport overrides TLSProfile entirely when set.
	Transport http.RoundTripper
	Observers []Observer
	Logger    *slog.Logger
}

// Client issues requests against the backend. It holds no per-call state and
// is safe for concurrent use.
type Client struct {
	base      string
	http      *httpclient.Client
	observers []Observer
	logger    *slog.Logger
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = DefaultUserAgent
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid base url %q", cfg.BaseURL)
	}

	rt := cfg.Transport
	if rt == nil {
		tr, err := transport.New(transport.Options{
			Profile:            cfg.TLSProfile,
			InsecureSkipVerify: cfg.InsecureSkipVerify,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to setup transport: %w", err)
		}
		rt = tr
	}

	hc, err := httpclient.New(httpclient.Config{
		Timeout:      cfg.Timeout,
		MaxRedirects: 5,
		MaxBodyBytes: maxResponseBytes,
		UseCookieJar: true,
		Transport:    rt,
		Header: http.Header{
			"Accept":     {"application/json"},
			"User-Agent": {cfg.UserAgent},
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return &Client{
		base:      strings.TrimRight(base.String(), "/"),
		http:      hc,
		observers: cfg.Observers,
		logger:    cfg.Logger,
	}, nil
}

// Search runs a query. page <= 0 means 1 and perPage <= 0 means DefaultPerPage.
func (c *Client) Search(ctx context.Context, query string, page, perPage int) (*SearchResponse, error) {
	if page <= 0 {
		page = 1
	}
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	q := url.Values{}
	q.Set("q", query)
	q.Set("page", strconv.Itoa(page))
	q.Set("per_page", strconv.Itoa(perPage))

	var out SearchResponse
	if err := c.do(ctx, OpSearch, query, http.MethodGet, "/search", q, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Classify asks the backend whether text reads as human-written. Empty text
// is sent as-is.
func (c *Client) Classify(ctx context.Context, text, pageURL string) (*ClassificationResponse, error) {
	var out ClassificationResponse
	body := classifyRequest{Text: text, URL: pageURL}
	if err := c.do(ctx, OpClassify, pageURL, http.MethodPost, "/classify", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Index submits a document to the search index.
func (c *Client) Index(ctx context.Context, req IndexRequest) (*IndexResponse, error) {
	var out IndexResponse
	if err := c.do(ctx, OpIndex, req.URL, http.MethodPost, "/index", nil, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SubmitCrawl queues targetURL for crawling. depth is passed through; callers
// keep it within 1..3.
func (c *Client) SubmitCrawl(ctx context.Context, targetURL string, depth int) (*CrawlResponse, error) {
	var out CrawlResponse
	body := crawlRequest{URL: targetURL, Depth: depth}
	if err := c.do(ctx, OpCrawlSubmit, targetURL, http.MethodPost, "/crawl", nil, body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CrawlStatus reports progress for a request id issued by SubmitCrawl.
func (c *Client) CrawlStatus(ctx context.Context, requestID string) (*CrawlStatus, error) {
	var out CrawlStatus
	p := "/crawl/status/" + url.PathEscape(requestID)
	if err := c.do(ctx, OpCrawlStatus, requestID, http.MethodGet, p, nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op Op, target, method, path string, query url.Values, body, out any) error {
	call := Call{
		ID:        uuid.New().String(),
		Op:        op,
		Target:    target,
		StartedAt: time.Now().UTC(),
	}

	status, rerr := c.roundTrip(ctx, call.ID, op, method, path, query, body, out)
	call.Status = status
	call.Duration = time.Since(call.StartedAt)
	call.Err = rerr
	c.notify(ctx, call)

	if rerr != nil {
		return rerr
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, requestID string, op Op, method, path string, query url.Values, body, out any) (int, *RequestError) {
	endpoint := c.base + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, &RequestError{Op: string(op), Kind: KindDecode, Message: fmt.Sprintf("failed to encode %s request: %v", op, err), Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return 0, transportError(string(op), err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", requestID)

	resp, err := c.http.Do(ctx, req)
	if err != nil {
		return 0, transportError(string(op), err)
	}
	defer resp.Body.Close()

	raw, truncated, err := c.http.ReadBody(resp)
	if err != nil {
		return resp.StatusCode, transportError(string(op), err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var eb errorBody
		if !truncated {
			_ = json.Unmarshal(raw, &eb)
		}
		return resp.StatusCode, statusError(string(op), resp.StatusCode, eb)
	}
	if truncated {
		return resp.StatusCode, decodeError(string(op), errResponseTooLarge)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, decodeError(string(op), err)
		}
	}
	return resp.StatusCode, nil
}

func (c *Client) notify(ctx context.Context, call Call) {
	if call.Err != nil {
		c.logger.Warn("api call failed", "op", call.Op, "status", call.Status, "kind", call.Err.Kind, "duration", call.Duration, "err", call.Err)
	} else {
		c.logger.Debug("api call", "op", call.Op, "status", call.Status, "duration", call.Duration)
	}
	for _, o := range c.observers {
		o.ObserveCall(ctx, call)
	}
}
