package hook

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

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

type stubService struct {
	search      func(ctx context.Context, query string, page, perPage int) (*api.SearchResponse, error)
	crawlSubmit func(ctx context.Context, url string, depth int) (*api.CrawlResponse, error)
	crawlStatus func(ctx context.Context, id string) (*api.CrawlStatus, error)
}

func (s *stubService) Search(ctx context.Context, query string, page, perPage int) (*api.SearchResponse, error) {
	return s.search(ctx, query, page, perPage)
}

func (s *stubService) Classify(ctx context.Context, text, pageURL string) (*api.ClassificationResponse, error) {
	return &api.ClassificationResponse{Result: api.ClassificationResult{IsHuman: true, Confidence: 91}, TextSample: text}, nil
}

func (s *stubService) Index(ctx context.Context, req api.IndexRequest) (*api.IndexResponse, error) {
	return &api.IndexResponse{ID: "1", URL: req.URL, Indexed: true}, nil
}

func (s *stubService) SubmitCrawl(ctx context.Context, url string, depth int) (*api.CrawlResponse, error) {
	return s.crawlSubmit(ctx, url, depth)
}

func (s *stubService) CrawlStatus(ctx context.Context, id string) (*api.CrawlStatus, error) {
	return s.crawlStatus(ctx, id)
}

func TestHook_InitialState(t *testing.T) {
	h := New[api.SearchResponse]("search", discard)
	st := h.State()
	if st.IsLoading || st.Err != nil || st.Data != nil {
		t.Errorf("expected idle state, got %+v", st)
	}
	if st.Phase() != Idle {
		t.Errorf("expected Idle, got %v", st.Phase())
	}
}

func TestSearch_FailureKeepsPreviousData(t *testing.T) {
	fail := false
	svc := &stubService{search: func(ctx context.Context, query string, page, perPage int) (*api.SearchResponse, error) {
		if fail {
			return nil, &api.RequestError{Op: "search", Kind: api.KindHTTPStatus, Status: 500, Message: "boom"}
		}
		return &api.SearchResponse{Query: query, Total: 1, Page: 1, PerPage: 10, Results: []api.SearchResult{{ID: "1"}}}, nil
	}}
	s := NewSearch(svc, discard)

	resp, err := s.Trigger(context.Background(), "history", 1, 10)
	if err != nil || resp == nil {
		t.Fatalf("unexpected result %v %v", resp, err)
	}
	if s.State().Phase() != Success {
		t.Errorf("expected Success, got %v", s.State().Phase())
	}

	fail = true
	resp, err = s.Trigger(context.Background(), "history", 2, 10)
	if resp != nil || err == nil {
		t.Fatalf("expected (nil, err), got %v %v", resp, err)
	}

	st := s.State()
	if st.IsLoading {
		t.Errorf("expected loading to be cleared")
	}
	if api.StatusOf(st.Err) != 500 {
		t.Errorf("expected 500 error in state, got %v", st.Err)
	}
	if st.Data == nil || st.Data.Query != "history" || len(st.Data.Results) != 1 {
		t.Errorf("expected previous data to survive the failure, got %+v", st.Data)
	}
	if st.Phase() != Failure {
		t.Errorf("expected Failure, got %v", st.Phase())
	}
}

func TestHook_LoadingStateDuringCall(t *testing.T) {
	h := New[int]("n", discard)
	one := 1
	_, _ = h.Run(context.Background(), func(ctx context.Context) (*int, error) {
		return nil, errors.New("first failure")
	})
	_, _ = h.Run(context.Background(), func(ctx context.Context) (*int, error) {
		return &one, nil
	})

	_, _ = h.Run(context.Background(), func(ctx context.Context) (*int, error) {
		st := h.State()
		if !st.IsLoading || st.Err != nil {
			t.Errorf("expected loading with cleared error, got %+v", st)
		}
		if st.Data == nil || *st.Data != 1 {
			t.Errorf("expected prior data to remain while loading")
		}
		return nil, errors.New("second failure")
	})
}

func TestHook_StaleCompletionIsDiscarded(t *testing.T) {
	h := New[string]("search", discard)

	firstStarted := make(chan struct{})
	releaseFirst := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)

	var firstResp *string
	go func() {
		defer wg.Done()
		firstResp, _ = h.Run(context.Background(), func(ctx context.Context) (*string, error) {
			close(firstStarted)
			<-releaseFirst
			v := "first"
			return &v, nil
		})
	}()
	<-firstStarted

	second, err := h.Run(context.Background(), func(ctx context.Context) (*string, error) {
		v := "second"
		return &v, nil
	})
	if err != nil || *second != "second" {
		t.Fatalf("unexpected second result %v %v", second, err)
	}

	close(releaseFirst)
	wg.Wait()

	if firstResp == nil || *firstResp != "first" {
		t.Errorf("caller of the stale call should still get its own response")
	}
	st := h.State()
	if st.IsLoading || st.Data == nil || *st.Data != "second" {
		t.Errorf("expected latest-issued call to own the state, got %+v", st)
	}
}

func TestHook_LoadingUntilLatestSettles(t *testing.T) {
	h := New[string]("search", discard)

	run := func(v string) (started, release, done chan struct{}) {
		started, release, done = make(chan struct{}), make(chan struct{}), make(chan struct{})
		go func() {
			defer close(done)
			_, _ = h.Run(context.Background(), func(ctx context.Context) (*string, error) {
				close(started)
				<-release
				return &v, nil
			})
		}()
		<-started
		return started, release, done
	}

	_, releaseA, doneA := run("a")
	_, releaseB, doneB := run("b")

	close(releaseA)
	<-doneA
	if st := h.State(); !st.IsLoading || st.Data != nil {
		t.Errorf("expected stale completion to leave state loading and empty, got %+v", st)
	}

	close(releaseB)
	<-doneB
	if st := h.State(); st.IsLoading || st.Data == nil || *st.Data != "b" {
		t.Errorf("expected b to settle the state, got %+v", st)
	}
}

func TestHook_Subscribe(t *testing.T) {
	h := New[int]("n", discard)

	var mu sync.Mutex
	var phases []Phase
	unsubscribe := h.Subscribe(func(st State[int]) {
		mu.Lock()
		phases = append(phases, st.Phase())
		mu.Unlock()
	})

	v := 3
	_, _ = h.Run(context.Background(), func(ctx context.Context) (*int, error) { return &v, nil })
	_, _ = h.Run(context.Background(), func(ctx context.Context) (*int, error) { return nil, errors.New("x") })
	unsubscribe()
	_, _ = h.Run(context.Background(), func(ctx context.Context) (*int, error) { return &v, nil })

	mu.Lock()
	defer mu.Unlock()
	want := []Phase{Loading, Success, Loading, Failure}
	if len(phases) != len(want) {
		t.Fatalf("expected %v, got %v", want, phases)
	}
	for i := range want {
		if phases[i] != want[i] {
			t.Errorf("transition %d: expected %v, got %v", i, want[i], phases[i])
		}
	}
}

func TestHook_SubscriberSeesLatestStateLast(t *testing.T) {
	h := New[string]("search", discard)

	entered, gate := make(chan struct{}), make(chan struct{})
	var (
		mu    sync.Mutex
		calls int
		last  State[string]
	)
	h.Subscribe(func(st State[string]) {
		mu.Lock()
		calls++
		first := calls == 1
		mu.Unlock()
		if first {
			close(entered)
			<-gate
		}
		mu.Lock()
		last = st
		mu.Unlock()
	})

	run := func(v string) chan struct{} {
		done := make(chan struct{})
		go func() {
			defer close(done)
			_, _ = h.Run(context.Background(), func(ctx context.Context) (*string, error) { return &v, nil })
		}()
		return done
	}

	// a's loading snapshot is held inside the subscriber while b starts.
	doneA := run("a")
	<-entered
	doneB := run("b")
	for {
		h.mu.Lock()
		seq := h.seq
		h.mu.Unlock()
		if seq == 2 {
			break
		}
		time.Sleep(time.Millisecond)
	}
	close(gate)
	<-doneA
	<-doneB

	st := h.State()
	if st.IsLoading || st.Data == nil || *st.Data != "b" {
		t.Fatalf("expected b to settle the state, got %+v", st)
	}
	mu.Lock()
	defer mu.Unlock()
	if last.IsLoading || last.Data == nil || *last.Data != "b" {
		t.Errorf("expected last delivered snapshot to match the settled state, got %+v", last)
	}
}

func TestHook_Close(t *testing.T) {
	h := New[int]("n", discard)

	started, release := make(chan struct{}), make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		v := 9
		resp, err := h.Run(context.Background(), func(ctx context.Context) (*int, error) {
			close(started)
			<-release
			return &v, nil
		})
		if err != nil || *resp != 9 {
			t.Errorf("in-flight caller should still receive its result")
		}
	}()
	<-started
	h.Close()
	close(release)
	<-done

	if h.State().Data != nil {
		t.Errorf("completion after Close must not touch state")
	}
	if _, err := h.Run(context.Background(), func(ctx context.Context) (*int, error) { return nil, nil }); !errors.Is(err, ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
}

func TestHook_Reset(t *testing.T) {
	h := New[int]("n", discard)
	v := 1
	_, _ = h.Run(context.Background(), func(ctx context.Context) (*int, error) { return &v, nil })
	h.Reset()
	if h.State().Phase() != Idle {
		t.Errorf("expected Idle after Reset")
	}
}

func TestCrawler_IndependentHooks(t *testing.T) {
	statusStarted, releaseStatus := make(chan struct{}), make(chan struct{})
	svc := &stubService{
		crawlSubmit: func(ctx context.Context, url string, depth int) (*api.CrawlResponse, error) {
			return &api.CrawlResponse{RequestID: "abc123", Status: api.CrawlStatus{Status: api.CrawlPending}}, nil
		},
		crawlStatus: func(ctx context.Context, id string) (*api.CrawlStatus, error) {
			close(statusStarted)
			<-releaseStatus
			return &api.CrawlStatus{Status: api.CrawlCompleted, CrawledPages: 12}, nil
		},
	}
	c := NewCrawler(svc, discard)
	defer c.Close()

	sub, err := c.Submit(context.Background(), "https://example.com", 2)
	if err != nil || sub.RequestID != "abc123" {
		t.Fatalf("unexpected submit result %v %v", sub, err)
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = c.Check(context.Background(), sub.RequestID)
	}()
	<-statusStarted

	if !c.Status.State().IsLoading {
		t.Errorf("expected status hook to be loading")
	}
	if c.Submission.State().IsLoading {
		t.Errorf("submission hook must not share the status loading flag")
	}

	close(releaseStatus)
	<-done

	if st := c.Status.State(); st.Data == nil || st.Data.CrawledPages != 12 {
		t.Errorf("unexpected status state %+v", st)
	}
	if c.Submission.State().Data.RequestID != "abc123" {
		t.Errorf("request id must be unchanged by status checks")
	}
}

func TestClassifierAndIndexer(t *testing.T) {
	svc := &stubService{}
	c := NewClassifier(svc, discard)
	if _, err := c.Trigger(context.Background(), "", ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if c.State().Data.Result.Confidence != 91 {
		t.Errorf("unexpected classify state %+v", c.State())
	}

	i := NewIndexer(svc, discard)
	if resp, err := i.Trigger(context.Background(), api.IndexRequest{URL: "https://example.com"}); err != nil || !resp.Indexed {
		t.Errorf("unexpected index result %v %v", resp, err)
	}
}
