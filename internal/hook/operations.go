package hook

import (
	"context"
	"log/slog"

	"github.com/FranksOps/puresearch/internal/api"
)

// Search is the hook behind the search page.
type Search struct {
	*Hook[api.SearchResponse]
	svc api.Service
}

func NewSearch(svc api.Service, logger *slog.Logger) *Search {
	return &Search{Hook: New[api.SearchResponse]("search", logger), svc: svc}
}

// Trigger runs a search and settles the hook with its outcome.
func (s *Search) Trigger(ctx context.Context, query string, page, perPage int) (*api.SearchResponse, error) {
	return s.Run(ctx, func(ctx context.Context) (*api.SearchResponse, error) {
		return s.svc.Search(ctx, query, page, perPage)
	})
}

// Classifier is the hook behind text classification.
type Classifier struct {
	*Hook[api.ClassificationResponse]
	svc api.Service
}

func NewClassifier(svc api.Service, logger *slog.Logger) *Classifier {
	return &Classifier{Hook: New[api.ClassificationResponse]("classify", logger), svc: svc}
}

func (c *Classifier) Trigger(ctx context.Context, text, pageURL string) (*api.ClassificationResponse, error) {
	return c.Run(ctx, func(ctx context.Context) (*api.ClassificationResponse, error) {
		return c.svc.Classify(ctx, text, pageURL)
	})
}

// Crawler pairs two independent hooks: one for submissions and one for
// status checks. Each has its own loading flag.
type Crawler struct {
	Submission *Hook[api.CrawlResponse]
	Status     *Hook[api.CrawlStatus]
	svc        api.Service
}

func NewCrawler(svc api.Service, logger *slog.Logger) *Crawler {
	return &Crawler{
		Submission: New[api.CrawlResponse]("crawl_submit", logger),
		Status:     New[api.CrawlStatus]("crawl_status", logger),
		svc:        svc,
	}
}

// Submit queues a crawl. depth is passed through unchanged.
func (c *Crawler) Submit(ctx context.Context, targetURL string, depth int) (*api.CrawlResponse, error) {
	return c.Submission.Run(ctx, func(ctx context.Context) (*api.CrawlResponse, error) {
		return c.svc.SubmitCrawl(ctx, targetURL, depth)
	})
}

// Check fetches the status of a previously submitted crawl.
func (c *Crawler) Check(ctx context.Context, requestID string) (*api.CrawlStatus, error) {
	return c.Status.Run(ctx, func(ctx context.Context) (*api.CrawlStatus, error) {
		return c.svc.CrawlStatus(ctx, requestID)
	})
}

func (c *Crawler) Close() {
	c.Submission.Close()
	c.Status.Close()
}

// Indexer is the hook behind document submission.
type Indexer struct {
	*Hook[api.IndexResponse]
	svc api.Service
}

func NewIndexer(svc api.Service, logger *slog.Logger) *Indexer {
	return &Indexer{Hook: New[api.IndexResponse]("index", logger), svc: svc}
}

func (i *Indexer) Trigger(ctx context.Context, req api.IndexRequest) (*api.IndexResponse, error) {
	return i.Run(ctx, func(ctx context.Context) (*api.IndexResponse, error) {
		return i.svc.Index(ctx, req)
	})
}
