// Package pipeline feeds the backend from the web: it indexes single pages
// and fans sitemap URLs out into index or crawl submissions.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/FranksOps/puresearch/internal/api"
	"github.com/FranksOps/puresearch/internal/extract"
	"github.com/FranksOps/puresearch/pkg/ratelimit"
)

var (
	// ErrDisallowed is returned when robots.txt forbids fetching a URL.
	ErrDisallowed = errors.New("pipeline: disallowed by robots.txt")
	// ErrNotHTML is returned for pages that are not HTML documents.
	ErrNotHTML = errors.New("pipeline: not an html document")
	// ErrChallenged is returned when a bot-protection page answered instead
	// of the document. Such pages are skipped, never retried.
	ErrChallenged = errors.New("pipeline: bot-protection challenge")
)

// Config configures a Pipeline.
type Config struct {
	// Concurrency bounds in-flight submissions during sitemap fan-out.
	// Defaults to 4.
	Concurrency int
	// RespectRobots checks robots.txt before fetching or submitting a URL.
	RespectRobots bool
	// RequestsPerSecond paces fan-out submissions. 0 disables pacing.
	RequestsPerSecond float64
	// Jitter applies randomness to the pacing (0.0 to 1.0).
	Jitter float64
	Logger *slog.Logger
}

// Status is the per-URL result of a fan-out.
type Status string

const (
	StatusSubmitted Status = "submitted"
	StatusSkipped   Status = "skipped"
	StatusFailed    Status = "failed"
)

// Outcome reports what happened to one sitemap URL.
type Outcome struct {
	URL    string
	Status Status
	// RequestID is the crawl handle or index id returned by the backend.
	RequestID string
	Err       error
}

// Pipeline connects the extract package to an api.Service.
type Pipeline struct {
	svc       api.Service
	fetcher   *extract.Fetcher
	robots    *extract.RobotsAuditor
	sitemaps  *extract.SitemapReader
	extractor *extract.Extractor
	limiter   *ratelimit.Limiter
	cfg       Config
	logger    *slog.Logger
}

func New(svc api.Service, fetcher *extract.Fetcher, cfg Config) *Pipeline {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		svc:       svc,
		fetcher:   fetcher,
		robots:    extract.NewRobotsAuditor(fetcher, logger),
		sitemaps:  extract.NewSitemapReader(fetcher, logger),
		extractor: extract.NewExtractor(),
		limiter:   ratelimit.NewLimiter(cfg.RequestsPerSecond, cfg.Jitter),
		cfg:       cfg,
		logger:    logger,
	}
}

// Document fetches targetURL and extracts its readable content without
// submitting it.
func (p *Pipeline) Document(ctx context.Context, targetURL string) (*extract.Document, error) {
	if err := p.checkRobots(ctx, targetURL); err != nil {
		return nil, err
	}

	page, err := p.fetcher.Fetch(ctx, targetURL)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", targetURL, err)
	}
	if provider, ok := extract.DetectChallenge(page, extract.DefaultChallengeDetectors()); ok {
		return nil, fmt.Errorf("%s (%s): %w", targetURL, provider, ErrChallenged)
	}
	if page.StatusCode >= 400 {
		return nil, fmt.Errorf("fetch %s: bad status code: %d", targetURL, page.StatusCode)
	}
	if ct := page.Header.Get("Content-Type"); ct != "" {
		mediaType, _, _ := mime.ParseMediaType(ct)
		if mediaType != "text/html" && mediaType != "application/xhtml+xml" {
			return nil, fmt.Errorf("%s (%s): %w", targetURL, mediaType, ErrNotHTML)
		}
	}

	doc, err := p.extractor.Extract(page.URL, page.Body)
	if err != nil {
		return nil, fmt.Errorf("extract %s: %w", targetURL, err)
	}
	return doc, nil
}

// IndexURL fetches targetURL, extracts it and submits it for indexing.
func (p *Pipeline) IndexURL(ctx context.Context, targetURL string) (*api.IndexResponse, error) {
	doc, err := p.Document(ctx, targetURL)
	if err != nil {
		return nil, err
	}

	resp, err := p.svc.Index(ctx, doc.IndexRequest())
	if err != nil {
		return nil, err
	}
	p.logger.Debug("indexed page", "url", doc.URL, "id", resp.ID, "language", doc.Language)
	return resp, nil
}

// IndexSitemap indexes every page listed by sitemapURL.
func (p *Pipeline) IndexSitemap(ctx context.Context, sitemapURL string) ([]Outcome, error) {
	return p.fanOut(ctx, sitemapURL, func(ctx context.Context, u string) (string, error) {
		resp, err := p.IndexURL(ctx, u)
		if err != nil {
			return "", err
		}
		return resp.ID, nil
	})
}

// SubmitSitemap queues a crawl of depth for every page listed by sitemapURL.
func (p *Pipeline) SubmitSitemap(ctx context.Context, sitemapURL string, depth int) ([]Outcome, error) {
	return p.fanOut(ctx, sitemapURL, func(ctx context.Context, u string) (string, error) {
		if err := p.checkRobots(ctx, u); err != nil {
			return "", err
		}
		resp, err := p.svc.SubmitCrawl(ctx, u, depth)
		if err != nil {
			return "", err
		}
		return resp.RequestID, nil
	})
}

// fanOut runs submit for each sitemap URL with bounded concurrency. Per-URL
// failures are reported in the outcomes; only sitemap and context errors are
// returned.
func (p *Pipeline) fanOut(ctx context.Context, sitemapURL string, submit func(ctx context.Context, u string) (string, error)) ([]Outcome, error) {
	urls, err := p.sitemaps.Read(ctx, sitemapURL)
	if err != nil {
		return nil, fmt.Errorf("read sitemap: %w", err)
	}

	start := time.Now()
	outcomes := make([]Outcome, len(urls))

	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.Concurrency)

	for i, u := range urls {
		g.Go(func() error {
			outcomes[i] = Outcome{URL: u}

			if err := p.limiter.Wait(gCtx); err != nil {
				outcomes[i].Status, outcomes[i].Err = StatusFailed, err
				return nil
			}

			id, err := submit(gCtx, u)
			switch {
			case errors.Is(err, ErrDisallowed):
				outcomes[i].Status, outcomes[i].Err = StatusSkipped, err
				p.logger.Debug("url blocked by robots.txt", "url", u)
			case errors.Is(err, ErrChallenged):
				outcomes[i].Status, outcomes[i].Err = StatusSkipped, err
				p.logger.Info("url answered with a challenge page", "url", u, "err", err)
			case err != nil:
				outcomes[i].Status, outcomes[i].Err = StatusFailed, err
				p.logger.Warn("submission failed", "url", u, "err", err)
			default:
				outcomes[i].Status, outcomes[i].RequestID = StatusSubmitted, id
			}
			return nil
		})
	}
	_ = g.Wait()

	p.logger.Info("sitemap processed", "sitemap", sitemapURL, "urls", len(urls), "duration", time.Since(start))

	if err := ctx.Err(); err != nil {
		return outcomes, err
	}
	return outcomes, nil
}

func (p *Pipeline) checkRobots(ctx context.Context, targetURL string) error {
	if !p.cfg.RespectRobots {
		return nil
	}
	allowed, err := p.robots.IsAllowed(ctx, targetURL)
	if err != nil {
		return fmt.Errorf("robots check: %w", err)
	}
	if !allowed {
		return fmt.Errorf("%s: %w", targetURL, ErrDisallowed)
	}
	return nil
}

// Tally counts outcomes by status.
func Tally(outcomes []Outcome) map[Status]int {
	counts := make(map[Status]int, 3)
	for _, o := range outcomes {
		counts[o.Status]++
	}
	return counts
}
