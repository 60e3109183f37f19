package fakebackend

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/FranksOps/puresearch/internal/api"
)

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

func newTestClient(t *testing.T, cfg Config) (*api.Client, *Server) {
	t.Helper()
	cfg.Logger = discard
	srv := New(cfg)
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)

	client, err := api.New(api.Config{BaseURL: ts.URL + BasePath, Timeout: 5 * time.Second, Logger: discard})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return client, srv
}

func TestSearch_Pagination(t *testing.T) {
	client, _ := newTestClient(t, Config{})

	resp, err := client.Search(context.Background(), "authentic", 1, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Documents 1, 2 and 7 mention "authentic".
	if resp.Total != 3 || len(resp.Results) != 2 || resp.PerPage != 2 || resp.Page != 1 {
		t.Fatalf("unexpected first page %+v", resp)
	}
	if resp.Results[0].ID != "1" || resp.Results[1].ID != "2" {
		t.Errorf("expected corpus order, got %s %s", resp.Results[0].ID, resp.Results[1].ID)
	}

	resp, err = client.Search(context.Background(), "authentic", 2, 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(resp.Results) != 1 || resp.Results[0].ID != "7" {
		t.Fatalf("unexpected second page %+v", resp.Results)
	}
	if resp.Results[0].ContentType != "blog" || resp.Results[0].PublishedDate == "" {
		t.Errorf("expected metadata to round trip, got %+v", resp.Results[0])
	}

	resp, err = client.Search(context.Background(), "authentic", 9, 2)
	if err != nil || len(resp.Results) != 0 || resp.Total != 3 {
		t.Errorf("expected empty page past the end, got %+v %v", resp, err)
	}
}

func TestSearch_PagePastEnd(t *testing.T) {
	client, _ := newTestClient(t, Config{})

	for _, page := range []int{3, math.MaxInt} {
		resp, err := client.Search(context.Background(), "authentic", page, 2)
		if err != nil {
			t.Fatalf("page %d: unexpected error: %v", page, err)
		}
		if resp.Total != 3 || len(resp.Results) != 0 {
			t.Errorf("page %d: expected an empty page of 3 total, got %+v", page, resp)
		}
	}
}

func TestSearch_MissingQuery(t *testing.T) {
	client, _ := newTestClient(t, Config{})

	_, err := client.Search(context.Background(), "  ", 1, 10)
	if api.StatusOf(err) != http.StatusBadRequest {
		t.Fatalf("expected 400, got %v", err)
	}
	if !strings.Contains(err.Error(), "query parameter 'q' is required") {
		t.Errorf("expected backend message in error, got %v", err)
	}
}

func TestClassify(t *testing.T) {
	client, _ := newTestClient(t, Config{})

	human, err := client.Classify(context.Background(), "We rowed out past the breakwater at dawn, my grandfather humming the same old tune he always hummed.", "https://example.com/a")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !human.Result.IsHuman || human.Result.Confidence < 50 {
		t.Errorf("expected human verdict, got %+v", human.Result)
	}
	if human.TextSample == "" || human.URL != "https://example.com/a" {
		t.Errorf("expected snake_case sample and url to decode, got %+v", human)
	}

	machine, err := client.Classify(context.Background(), "It is important to note that we must delve into the topic.", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if machine.Result.IsHuman || !machine.Result.Analysis.PatternsDetected {
		t.Errorf("expected machine verdict with patterns, got %+v", machine.Result)
	}

	if _, err := client.Classify(context.Background(), "", ""); api.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for empty text, got %v", err)
	}
}

func TestIndex_MakesDocumentSearchable(t *testing.T) {
	client, _ := newTestClient(t, Config{})

	resp, err := client.Index(context.Background(), api.IndexRequest{
		URL:         "https://blog.example.org/kayak",
		Title:       "Building a Skin-on-Frame Kayak",
		Description: "Notes from the workshop.",
		Content:     "I spent the winter lashing ribs to stringers in my garage.",
		ContentType: "blog",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Indexed || resp.ID == "" || resp.Timestamp == "" {
		t.Errorf("unexpected index response %+v", resp)
	}

	found, err := client.Search(context.Background(), "kayak", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found.Total != 1 || found.Results[0].ID != resp.ID || found.Results[0].ContentType != "blog" {
		t.Errorf("expected indexed document in results, got %+v", found)
	}

	_, err = client.Index(context.Background(), api.IndexRequest{URL: "ftp://x", Content: "x"})
	if api.StatusOf(err) != http.StatusBadRequest {
		t.Errorf("expected 400 for bad url, got %v", err)
	}
}

func TestCrawl_Lifecycle(t *testing.T) {
	client, _ := newTestClient(t, Config{PagesPerLevel: 6})
	ctx := context.Background()

	sub, err := client.SubmitCrawl(ctx, "https://example.com", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sub.RequestID == "" || sub.Status.Status != api.CrawlPending {
		t.Fatalf("unexpected submission %+v", sub)
	}

	st, err := client.CrawlStatus(ctx, sub.RequestID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Status != api.CrawlInProgress || st.CrawledPages != 6 || st.TotalPages != 12 {
		t.Errorf("unexpected first poll %+v", st)
	}

	st, _ = client.CrawlStatus(ctx, sub.RequestID)
	if st.Status != api.CrawlCompleted || st.CrawledPages != 12 {
		t.Errorf("unexpected second poll %+v", st)
	}

	st, _ = client.CrawlStatus(ctx, sub.RequestID)
	if st.Status != api.CrawlCompleted {
		t.Errorf("completed jobs must stay completed, got %+v", st)
	}
}

func TestCrawl_FailedHost(t *testing.T) {
	client, _ := newTestClient(t, Config{})
	ctx := context.Background()

	sub, err := client.SubmitCrawl(ctx, "https://nowhere.invalid", 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, _ = client.CrawlStatus(ctx, sub.RequestID)
	st, _ := client.CrawlStatus(ctx, sub.RequestID)
	if st.Status != api.CrawlFailed || !strings.Contains(st.Message, "nowhere.invalid") {
		t.Errorf("expected failed crawl, got %+v", st)
	}
}

func TestCrawl_UnknownID(t *testing.T) {
	client, _ := newTestClient(t, Config{})

	_, err := client.CrawlStatus(context.Background(), "missing")
	var rerr *api.RequestError
	if !errors.As(err, &rerr) || rerr.Status != http.StatusNotFound || rerr.Message != "crawl request not found" {
		t.Errorf("expected 404 with backend message, got %v", err)
	}
}

func TestHealthAndErrorBody(t *testing.T) {
	ts := httptest.NewServer(New(Config{Logger: discard}).Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}

	resp, err = http.Get(ts.URL + BasePath + "/crawl/status/nope")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	var body struct {
		Status  int    `json:"status"`
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if body.Status != 404 || body.Error != "not_found" {
		t.Errorf("unexpected error body %+v", body)
	}
}

func TestLatency_RespectsClientTimeout(t *testing.T) {
	client, _ := newTestClient(t, Config{Latency: 200 * time.Millisecond})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := client.Search(ctx, "music", 1, 10)
	if api.KindOf(err) != api.KindTimeout {
		t.Errorf("expected timeout kind, got %v", err)
	}
}

func TestClassifyHeuristic(t *testing.T) {
	if v := classify(""); v.confidence != 0 || v.isHuman {
		t.Errorf("expected empty verdict, got %+v", v)
	}
	v := classify("one two three four")
	if v.complexity != 1 || v.confidence != 95 || !v.isHuman {
		t.Errorf("unexpected verdict %+v", v)
	}
	v = classify("the the the the")
	if v.complexity != 0.25 {
		t.Errorf("expected 0.25 complexity, got %v", v.complexity)
	}
}
