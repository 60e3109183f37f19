package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"time"
)

// Config defines the setup for the HTTP Client.
type Config struct {
	Timeout      time.Duration
	MaxRedirects int
	// UseCookieJar keeps cookies between calls, the equivalent of sending
	// same-origin credentials to the backend.
	UseCookieJar bool
	// Header values applied to every request that does not already set them.
	Header http.Header
	// MaxBodyBytes caps ReadBody. 0 means no limit.
	MaxBodyBytes int64
	// Provide a custom Transport, e.g. for a TLS profile from internal/transport.
	Transport http.RoundTripper
}

// Client wraps a standard http.Client to provide configurable timeouts,
// redirect policies, default headers and cookie management.
type Client struct {
	*http.Client
	header  http.Header
	maxBody int64
}

// New creates a new HTTP client based on the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	c := &http.Client{
		Timeout: cfg.Timeout,
	}

	if cfg.MaxRedirects >= 0 {
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= cfg.MaxRedirects {
				return fmt.Errorf("context: stopped after %d redirects", cfg.MaxRedirects)
			}
			return nil
		}
	} else {
		// Don't follow any redirects if max < 0
		c.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}

	if cfg.UseCookieJar {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, fmt.Errorf("context: %w", err)
		}
		c.Jar = jar
	}

	if cfg.Transport != nil {
		c.Transport = cfg.Transport
	}

	return &Client{Client: c, header: cfg.Header.Clone(), maxBody: cfg.MaxBodyBytes}, nil
}

// Do executes an HTTP request. The provided context.Context should control
// the overarching request timeout/cancellation independent of the client timeout.
func (c *Client) Do(ctx context.Context, req *http.Request) (*http.Response, error) {
	if ctx == nil {
		return nil, errors.New("context: context cannot be nil")
	}

	// Always clone the request with the provided context
	reqWithCtx := req.Clone(ctx)
	for k, vals := range c.header {
		if reqWithCtx.Header.Get(k) != "" {
			continue
		}
		for _, v := range vals {
			reqWithCtx.Header.Add(k, v)
		}
	}

	resp, err := c.Client.Do(reqWithCtx)
	if err != nil {
		return nil, fmt.Errorf("context: %w", err)
	}
	return resp, nil
}

// ReadBody reads resp.Body up to the configured MaxBodyBytes. truncated is
// true when the body was longer than the limit; the returned bytes are the
// first MaxBodyBytes of it. The caller still closes the body.
func (c *Client) ReadBody(resp *http.Response) (body []byte, truncated bool, err error) {
	if c.maxBody <= 0 {
		body, err = io.ReadAll(resp.Body)
		if err != nil {
			return nil, false, fmt.Errorf("context: %w", err)
		}
		return body, false, nil
	}

	body, err = io.ReadAll(io.LimitReader(resp.Body, c.maxBody+1))
	if err != nil {
		return nil, false, fmt.Errorf("context: %w", err)
	}
	if int64(len(body)) > c.maxBody {
		return body[:c.maxBody], true, nil
	}
	return body, false, nil
}
