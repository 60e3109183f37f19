package journal

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/FranksOps/puresearch/internal/api"
)

type memBackend struct {
	mu      sync.Mutex
	records []*Record
	err     error
}

func (m *memBackend) Save(ctx context.Context, r *Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.records = append(m.records, r)
	return nil
}

func (m *memBackend) Query(ctx context.Context, f Filter) ([]*Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*Record
	for _, r := range m.records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return f.Window(out), nil
}

func (m *memBackend) Close() error { return nil }

func TestFromCall(t *testing.T) {
	started := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	r := FromCall(api.Call{
		ID:        "id-1",
		Op:        api.OpCrawlStatus,
		Target:    "abc123",
		Status:    404,
		StartedAt: started,
		Duration:  40 * time.Millisecond,
		Err:       &api.RequestError{Op: "crawl_status", Kind: api.KindHTTPStatus, Status: 404, Message: "not found"},
	})

	if r.ID != "id-1" || r.Op != "crawl_status" || r.Target != "abc123" || r.StatusCode != 404 {
		t.Errorf("unexpected record %+v", r)
	}
	if r.Outcome != "http_status" || !r.Failed() {
		t.Errorf("expected failed http_status record, got %q", r.Outcome)
	}
	if r.Error != "crawl_status: not found (status 404)" {
		t.Errorf("unexpected error text %q", r.Error)
	}
	if !r.CreatedAt.Equal(started) {
		t.Errorf("expected CreatedAt to be the call start")
	}

	ok := FromCall(api.Call{Op: api.OpSearch, Status: 200})
	if ok.Failed() || ok.Error != "" || ok.CreatedAt.IsZero() {
		t.Errorf("unexpected success record %+v", ok)
	}
}

func TestRecorder_WritesEvenWhenCallContextIsCancelled(t *testing.T) {
	b := &memBackend{}
	rec := NewRecorder(b, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rec.ObserveCall(ctx, api.Call{ID: "x", Op: api.OpSearch, Status: 200})

	if len(b.records) != 1 || b.records[0].ID != "x" {
		t.Errorf("expected the call to be journaled, got %v", b.records)
	}
}

func TestRecorder_SaveErrorIsSwallowed(t *testing.T) {
	b := &memBackend{err: errors.New("disk full")}
	rec := NewRecorder(b, slog.New(slog.NewTextHandler(io.Discard, nil)))
	rec.ObserveCall(context.Background(), api.Call{ID: "x", Op: api.OpSearch})
}

func TestFilter_Window(t *testing.T) {
	recs := []*Record{{ID: "1"}, {ID: "2"}, {ID: "3"}}
	got := Filter{Limit: 2}.Window(recs)
	if len(got) != 2 || got[0].ID != "3" || got[1].ID != "2" {
		t.Errorf("unexpected window %v", got)
	}
	if got := (Filter{Offset: 5}).Window([]*Record{{ID: "1"}}); len(got) != 0 {
		t.Errorf("expected empty window")
	}
}
