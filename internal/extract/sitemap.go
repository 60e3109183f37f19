package extract

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oxffaa/gopher-parse-sitemap"
)

// maxSitemapDepth bounds how many index levels are followed.
const maxSitemapDepth = 3

var errNoEntries = errors.New("no entries")

// SitemapReader lists the page URLs of a sitemap or sitemap index.
type SitemapReader struct {
	fetcher *Fetcher
	logger  *slog.Logger
}

func NewSitemapReader(fetcher *Fetcher, logger *slog.Logger) *SitemapReader {
	if logger == nil {
		logger = slog.Default()
	}
	return &SitemapReader{
		fetcher: fetcher,
		logger:  logger,
	}
}

// Read fetches sitemapURL and returns every page location it lists, following
// nested indexes. Duplicates are dropped; order is document order.
func (s *SitemapReader) Read(ctx context.Context, sitemapURL string) ([]string, error) {
	seen := make(map[string]bool)
	var urls []string
	err := s.read(ctx, sitemapURL, 0, func(loc string) {
		if loc == "" || seen[loc] {
			return
		}
		seen[loc] = true
		urls = append(urls, loc)
	})
	if err != nil {
		return nil, err
	}
	return urls, nil
}

func (s *SitemapReader) read(ctx context.Context, sitemapURL string, depth int, emit func(string)) error {
	s.logger.Debug("fetching sitemap", "url", sitemapURL, "depth", depth)

	page, err := s.fetcher.Fetch(ctx, sitemapURL)
	if err != nil {
		return fmt.Errorf("failed to fetch sitemap: %w", err)
	}
	if page.StatusCode >= 400 {
		return fmt.Errorf("bad status code: %d", page.StatusCode)
	}

	var locs []string
	err = sitemap.Parse(bytes.NewReader(page.Body), func(e sitemap.Entry) error {
		locs = append(locs, e.GetLocation())
		return nil
	})
	if err == nil && len(locs) > 0 {
		for _, l := range locs {
			emit(l)
		}
		return nil
	}

	// It might be a sitemap index or invalid XML
	var nested []string
	indexErr := sitemap.ParseIndex(bytes.NewReader(page.Body), func(e sitemap.IndexEntry) error {
		nested = append(nested, e.GetLocation())
		return nil
	})
	if err == nil {
		err = indexErr
	}
	if err == nil && len(nested) == 0 {
		err = errNoEntries
	}
	if indexErr != nil || len(nested) == 0 {
		return fmt.Errorf("failed to parse as sitemap or index: %w", err)
	}

	if depth+1 > maxSitemapDepth {
		s.logger.Warn("sitemap index nesting too deep, skipping", "url", sitemapURL)
		return nil
	}
	for _, n := range nested {
		if err := s.read(ctx, n, depth+1, emit); err != nil {
			s.logger.Warn("failed to fetch nested sitemap", "url", n, "err", err)
		}
	}
	return nil
}
