// Package journaltest holds the conformance test every journal.Backend runs.
package journaltest

import (
	"context"
	"testing"
	"time"

	"github.com/FranksOps/puresearch/internal/journal"
)

// Run saves three records and checks filtering, ordering and paging.
func Run(t *testing.T, b journal.Backend) {
	t.Helper()
	ctx := context.Background()
	now := time.Now().Truncate(time.Second).UTC()

	records := []*journal.Record{
		{ID: "r1", Op: "search", Target: "history", StatusCode: 200, Outcome: "ok", Duration: 120 * time.Millisecond, CreatedAt: now.Add(-3 * time.Hour)},
		{ID: "r2", Op: "crawl_status", Target: "abc123", StatusCode: 404, Outcome: "http_status", Error: "crawl_status: crawl request not found (status 404)", Duration: 15 * time.Millisecond, CreatedAt: now.Add(-2 * time.Hour)},
		{ID: "r3", Op: "search", Target: "art", Outcome: "network", Error: "search: search request failed: connection refused", Duration: 2 * time.Millisecond, CreatedAt: now.Add(-1 * time.Hour)},
	}
	for _, r := range records {
		if err := b.Save(ctx, r); err != nil {
			t.Fatalf("Failed to save record %s: %v", r.ID, err)
		}
	}

	all, err := b.Query(ctx, journal.Filter{})
	if err != nil {
		t.Fatalf("Failed to query records: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("Expected 3 records, got %d", len(all))
	}
	if all[0].ID != "r3" || all[2].ID != "r1" {
		t.Errorf("Expected newest first, got %s..%s", all[0].ID, all[2].ID)
	}

	got := all[1]
	if got.Op != "crawl_status" || got.Target != "abc123" || got.StatusCode != 404 || got.Outcome != "http_status" {
		t.Errorf("Unexpected record %+v", got)
	}
	if got.Error != records[1].Error {
		t.Errorf("Expected error %q, got %q", records[1].Error, got.Error)
	}
	if got.Duration.Milliseconds() != 15 {
		t.Errorf("Expected 15ms, got %v", got.Duration)
	}
	if got.CreatedAt.Unix() != records[1].CreatedAt.Unix() {
		t.Errorf("Expected CreatedAt %v, got %v", records[1].CreatedAt, got.CreatedAt)
	}

	search, err := b.Query(ctx, journal.Filter{Op: "search"})
	if err != nil {
		t.Fatalf("Failed to query by op: %v", err)
	}
	if len(search) != 2 {
		t.Errorf("Expected 2 search records, got %d", len(search))
	}

	failed := true
	failures, err := b.Query(ctx, journal.Filter{Failed: &failed})
	if err != nil {
		t.Fatalf("Failed to query failures: %v", err)
	}
	if len(failures) != 2 {
		t.Errorf("Expected 2 failures, got %d", len(failures))
	}

	ok := false
	successes, err := b.Query(ctx, journal.Filter{Failed: &ok})
	if err != nil {
		t.Fatalf("Failed to query successes: %v", err)
	}
	if len(successes) != 1 || successes[0].ID != "r1" {
		t.Errorf("Expected only r1 to succeed, got %v", successes)
	}

	since := now.Add(-90 * time.Minute)
	recent, err := b.Query(ctx, journal.Filter{Since: &since})
	if err != nil {
		t.Fatalf("Failed to query with Since: %v", err)
	}
	if len(recent) != 1 || recent[0].ID != "r3" {
		t.Errorf("Expected only r3 since %v, got %d records", since, len(recent))
	}

	paged, err := b.Query(ctx, journal.Filter{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("Failed to query with paging: %v", err)
	}
	if len(paged) != 1 || paged[0].ID != "r2" {
		t.Errorf("Expected r2 for limit 1 offset 1, got %v", paged)
	}

	skipped, err := b.Query(ctx, journal.Filter{Offset: 2})
	if err != nil {
		t.Fatalf("Failed to query with offset: %v", err)
	}
	if len(skipped) != 1 || skipped[0].ID != "r1" {
		t.Errorf("Expected r1 for offset 2, got %v", skipped)
	}

	target, err := b.Query(ctx, journal.Filter{Target: "history"})
	if err != nil {
		t.Fatalf("Failed to query by target: %v", err)
	}
	if len(target) != 1 || target[0].ID != "r1" {
		t.Errorf("Expected r1 for target history, got %v", target)
	}
}
