package extract

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"github.com/temoto/robotstxt"
)

// RobotsAuditor fetches, caches and applies robots.txt rules per host.
type RobotsAuditor struct {
	fetcher *Fetcher
	logger  *slog.Logger
	mu      sync.RWMutex
	cache   map[string]*robotstxt.RobotsData
}

func NewRobotsAuditor(fetcher *Fetcher, logger *slog.Logger) *RobotsAuditor {
	if logger == nil {
		logger = slog.Default()
	}
	return &RobotsAuditor{
		fetcher: fetcher,
		logger:  logger,
		cache:   make(map[string]*robotstxt.RobotsData),
	}
}

// IsAllowed reports whether the fetcher's user agent may fetch targetURL.
// A missing or unreachable robots.txt allows everything.
func (r *RobotsAuditor) IsAllowed(ctx context.Context, targetURL string) (bool, error) {
	u, err := url.Parse(targetURL)
	if err != nil {
		return false, fmt.Errorf("invalid url: %w", err)
	}

	host := u.Scheme + "://" + u.Host

	data, err := r.getOrFetch(ctx, host)
	if err != nil {
		r.logger.Debug("robots.txt fetch failed, defaulting to allow", "host", host, "err", err)
		return true, nil
	}

	if data == nil {
		return true, nil
	}

	path := u.EscapedPath()
	if path == "" {
		path = "/"
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return data.FindGroup(r.fetcher.UserAgent()).Test(path), nil
}

// Sitemaps returns the Sitemap: entries of host's robots.txt.
func (r *RobotsAuditor) Sitemaps(ctx context.Context, host string) ([]string, error) {
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "https://" + host
	}
	host = strings.TrimRight(host, "/")

	data, err := r.getOrFetch(ctx, host)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}
	return data.Sitemaps, nil
}

func (r *RobotsAuditor) getOrFetch(ctx context.Context, host string) (*robotstxt.RobotsData, error) {
	r.mu.RLock()
	data, exists := r.cache[host]
	r.mu.RUnlock()

	if exists {
		return data, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	data, exists = r.cache[host]
	if exists {
		return data, nil
	}

	page, err := r.fetcher.Fetch(ctx, host+"/robots.txt")
	if err != nil {
		r.cache[host] = nil
		return nil, fmt.Errorf("fetch error: %w", err)
	}

	if page.StatusCode >= 400 {
		r.cache[host] = nil
		return nil, nil
	}

	parsed, err := robotstxt.FromBytes(page.Body)
	if err != nil {
		r.cache[host] = nil
		return nil, fmt.Errorf("parse error: %w", err)
	}

	r.cache[host] = parsed
	return parsed, nil
}
