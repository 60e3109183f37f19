package extract

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestFetcher_Success(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") != "TestIndexer/1.0" {
			t.Errorf("expected configured User-Agent, got %q", r.Header.Get("User-Agent"))
		}
		w.Header().Set("X-Test", "true")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}))
	defer ts.Close()

	fetcher, err := NewFetcher(FetchConfig{Timeout: 5 * time.Second, UserAgent: "TestIndexer/1.0"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	page, err := fetcher.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.StatusCode != http.StatusOK {
		t.Errorf("expected status 200, got %d", page.StatusCode)
	}
	if string(page.Body) != "ok" {
		t.Errorf("expected body 'ok', got %s", string(page.Body))
	}
	if page.Header.Get("X-Test") != "true" {
		t.Errorf("expected X-Test header 'true', got %v", page.Header["X-Test"])
	}
	if page.Duration == 0 {
		t.Errorf("expected non-zero duration")
	}
	if page.FetchedAt.IsZero() {
		t.Errorf("expected fetch time")
	}
}

func TestFetcher_DefaultUserAgent(t *testing.T) {
	var got string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = r.Header.Get("User-Agent")
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{})
	if _, err := fetcher.Fetch(context.Background(), ts.URL); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != DefaultUserAgent {
		t.Errorf("expected %q, got %q", DefaultUserAgent, got)
	}
}

func TestFetcher_Redirect(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/old", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/new", http.StatusMovedPermanently)
	})
	mux.HandleFunc("/new", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("moved"))
	})
	ts := httptest.NewServer(mux)
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{Timeout: 5 * time.Second})
	page, err := fetcher.Fetch(context.Background(), ts.URL+"/old")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.HasSuffix(page.URL, "/new") {
		t.Errorf("expected final url to end in /new, got %s", page.URL)
	}
}

func TestFetcher_Timeout(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(50 * time.Millisecond)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{Timeout: 10 * time.Millisecond})
	if _, err := fetcher.Fetch(context.Background(), ts.URL); err == nil {
		t.Fatal("expected timeout error")
	}
}

func TestFetcher_NonOKIsNotAnError(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer ts.Close()

	fetcher, _ := NewFetcher(FetchConfig{})
	page, err := fetcher.Fetch(context.Background(), ts.URL)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", page.StatusCode)
	}
}
