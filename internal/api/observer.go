package api

import (
	"context"
	"time"
)

// Op names a backend operation.
type Op string

const (
	OpSearch      Op = "search"
	OpClassify    Op = "classify"
	OpIndex       Op = "index"
	OpCrawlSubmit Op = "crawl_submit"
	OpCrawlStatus Op = "crawl_status"
)

// Call describes one finished request. Err is nil on success.
type Call struct {
	ID        string // X-Request-ID sent with the request
	Op        Op
	Target    string // query, URL or crawl request id the call was about
	Status    int    // HTTP status, 0 when no response was received
	StartedAt time.Time
	Duration  time.Duration
	Err       *RequestError
}

// Outcome is "ok" or the error kind, suitable as a metric label.
func (c Call) Outcome() string {
	if c.Err == nil {
		return "ok"
	}
	return c.Err.Kind.String()
}

// Observer is notified after every call, successful or not.
type Observer interface {
	ObserveCall(ctx context.Context, call Call)
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(ctx context.Context, call Call)

func (f ObserverFunc) ObserveCall(ctx context.Context, call Call) { f(ctx, call) }
