package page

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/FranksOps/puresearch/internal/api"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// fakeService answers from canned data and records the calls it receives.
type fakeService struct {
	mu sync.Mutex

	searchErr   error
	total       int
	results     []api.SearchResult
	searchCalls []string

	statuses    []api.CrawlStatus // returned in order, last one repeats
	statusCalls int
	statusErr   error
	submitErr   error
	submits     []int // depths
}

func (f *fakeService) Search(ctx context.Context, query string, page, perPage int) (*api.SearchResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchCalls = append(f.searchCalls, fmt.Sprintf("%s#%d", query, page))
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	return &api.SearchResponse{Query: query, Results: f.results, Total: f.total, Page: page, PerPage: perPage}, nil
}

func (f *fakeService) Classify(ctx context.Context, text, pageURL string) (*api.ClassificationResponse, error) {
	return &api.ClassificationResponse{TextSample: text}, nil
}

func (f *fakeService) Index(ctx context.Context, req api.IndexRequest) (*api.IndexResponse, error) {
	return &api.IndexResponse{URL: req.URL, Indexed: true}, nil
}

func (f *fakeService) SubmitCrawl(ctx context.Context, url string, depth int) (*api.CrawlResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submits = append(f.submits, depth)
	if f.submitErr != nil {
		return nil, f.submitErr
	}
	return &api.CrawlResponse{RequestID: "abc123", Status: api.CrawlStatus{Status: api.CrawlPending}}, nil
}

func (f *fakeService) CrawlStatus(ctx context.Context, id string) (*api.CrawlStatus, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.statusErr != nil {
		return nil, f.statusErr
	}
	if id != "abc123" {
		return nil, &api.RequestError{Op: "crawl_status", Kind: api.KindHTTPStatus, Status: 404, Message: "crawl request not found"}
	}
	i := min(f.statusCalls, len(f.statuses)-1)
	f.statusCalls++
	st := f.statuses[i]
	return &st, nil
}

func (f *fakeService) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.searchCalls...)
}

func results(n int) []api.SearchResult {
	out := make([]api.SearchResult, n)
	for i := range out {
		ct := "article"
		if i%2 == 1 {
			ct = "blog"
		}
		out[i] = api.SearchResult{
			ID:          fmt.Sprint(i + 1),
			Title:       fmt.Sprintf("History %d", i+1),
			URL:         fmt.Sprintf("https://www.example.com/history/%d", i+1),
			Confidence:  float64(55 + i*5),
			ContentType: ct,
		}
	}
	return out
}
