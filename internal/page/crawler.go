package page

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/FranksOps/puresearch/internal/api"
	"github.com/FranksOps/puresearch/internal/hook"
	"github.com/FranksOps/puresearch/internal/render"
	"github.com/FranksOps/puresearch/pkg/ratelimit"
)

const (
	MinDepth = 1
	MaxDepth = 3

	DefaultPollInterval = 2 * time.Second
)

var (
	ErrMissingURL = errors.New("a url is required")
	ErrNoCrawl    = errors.New("no crawl has been submitted")
)

// ClampDepth keeps depth within MinDepth..MaxDepth.
func ClampDepth(depth int) int {
	return max(MinDepth, min(depth, MaxDepth))
}

// CrawlerOptions configures a CrawlerPage.
type CrawlerOptions struct {
	// OnPoll is called with every status a Watch poll returns.
	OnPoll func(api.CrawlStatus)
	Logger *slog.Logger
}

// CrawlerView is everything the crawler page renders.
type CrawlerView struct {
	URL        string
	Depth      int
	RequestID  string
	Status     api.CrawlStatus
	Badge      string
	Submitting bool
	Checking   bool
	SubmitErr  error
	StatusErr  error
}

// Err returns whichever error is showing, status errors first.
func (v CrawlerView) Err() error {
	if v.StatusErr != nil {
		return v.StatusErr
	}
	return v.SubmitErr
}

// CrawlerPage submits crawl requests and tracks one request id. The id lives
// only here; it is gone once the page is dropped.
type CrawlerPage struct {
	hooks  *hook.Crawler
	onPoll func(api.CrawlStatus)
	logger *slog.Logger

	mu        sync.Mutex
	url       string
	depth     int
	requestID string
}

func NewCrawlerPage(h *hook.Crawler, opts CrawlerOptions) *CrawlerPage {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &CrawlerPage{hooks: h, onPoll: opts.OnPoll, logger: opts.Logger, depth: MinDepth}
}

// Submit queues rawURL for crawling. A bare host gets an https scheme and
// depth is clamped to 1..3. The request id is kept for status checks.
func (p *CrawlerPage) Submit(ctx context.Context, rawURL string, depth int) (*api.CrawlResponse, error) {
	target, err := normalizeTarget(rawURL)
	if err != nil {
		return nil, err
	}
	depth = ClampDepth(depth)

	resp, err := p.hooks.Submit(ctx, target, depth)
	if err != nil {
		// The view keeps describing the job that was last accepted.
		return nil, err
	}

	p.mu.Lock()
	p.url, p.depth, p.requestID = target, depth, resp.RequestID
	p.mu.Unlock()
	// A new job makes the previous job's status meaningless.
	p.hooks.Status.Reset()

	p.logger.Info("crawl submitted", "url", target, "depth", depth, "request_id", resp.RequestID)
	return resp, nil
}

// Track adopts an existing request id, e.g. one passed on the command line.
func (p *CrawlerPage) Track(requestID string) {
	p.mu.Lock()
	p.requestID = requestID
	p.mu.Unlock()
	p.hooks.Status.Reset()
}

// RequestID returns the id of the tracked crawl, or "".
func (p *CrawlerPage) RequestID() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.requestID
}

// CheckStatus fetches the tracked crawl's status once.
func (p *CrawlerPage) CheckStatus(ctx context.Context) (*api.CrawlStatus, error) {
	id := p.RequestID()
	if id == "" {
		return nil, ErrNoCrawl
	}
	return p.hooks.Check(ctx, id)
}

// Watch polls the tracked crawl every interval until it reaches a terminal
// state, a check fails, or ctx is done. interval <= 0 means
// DefaultPollInterval.
func (p *CrawlerPage) Watch(ctx context.Context, interval time.Duration) (*api.CrawlStatus, error) {
	if p.RequestID() == "" {
		return nil, ErrNoCrawl
	}
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	limiter := ratelimit.Every(interval, 0)
	for {
		if err := limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("context: %w", err)
		}

		st, err := p.CheckStatus(ctx)
		if err != nil {
			return nil, err
		}
		if p.onPoll != nil {
			p.onPoll(*st)
		}
		p.logger.Debug("crawl poll", "request_id", p.RequestID(), "status", st.Status, "crawled", st.CrawledPages, "total", st.TotalPages)
		if st.Status.Terminal() {
			return st, nil
		}
	}
}

// View derives the page from both hooks. The badge reflects the latest status
// check, or the submission's initial status when none has been made.
func (p *CrawlerPage) View() CrawlerView {
	p.mu.Lock()
	v := CrawlerView{URL: p.url, Depth: p.depth, RequestID: p.requestID}
	p.mu.Unlock()

	sub := p.hooks.Submission.State()
	st := p.hooks.Status.State()

	v.Submitting = sub.IsLoading
	v.Checking = st.IsLoading
	v.SubmitErr = sub.Err
	v.StatusErr = st.Err

	switch {
	case st.Data != nil:
		v.Status = *st.Data
	case sub.Data != nil && sub.Data.RequestID == v.RequestID:
		v.Status = sub.Data.Status
	}
	if v.Status.Status != "" {
		v.Badge = render.CrawlBadge(v.Status)
	}
	return v
}

func normalizeTarget(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", ErrMissingURL
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("invalid url %q", raw)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return "", fmt.Errorf("unsupported scheme %q", u.Scheme)
	}
	return u.String(), nil
}
