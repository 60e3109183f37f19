// Package hook holds per-operation request state. A Hook owns exactly one
// State and is the only thing that mutates it.
package hook

import (
	"context"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned by Run after Close.
var ErrClosed = errors.New("hook: closed")

// State is the observable request state of one hook instance.
// Data keeps the last successful response, even after a failure.
type State[T any] struct {
	IsLoading bool
	Err       error
	Data      *T
}

// Phase names where a State sits in Idle -> Loading -> {Success, Failure}.
type Phase int

const (
	Idle Phase = iota
	Loading
	Success
	Failure
)

func (p Phase) String() string {
	switch p {
	case Loading:
		return "loading"
	case Success:
		return "success"
	case Failure:
		return "failure"
	default:
		return "idle"
	}
}

// Phase derives the state machine position from the fields.
func (s State[T]) Phase() Phase {
	switch {
	case s.IsLoading:
		return Loading
	case s.Err != nil:
		return Failure
	case s.Data != nil:
		return Success
	default:
		return Idle
	}
}

// Hook guards a State with a monotonically increasing sequence number: only
// the most recently issued call may settle the state. Completions of earlier
// calls are handed back to their callers and otherwise dropped.
type Hook[T any] struct {
	name   string
	logger *slog.Logger

	mu      sync.Mutex
	state   State[T]
	seq     uint64
	version uint64 // bumped on every transition
	closed  bool
	subs    map[int]func(State[T])
	nextSub int

	// pubMu serialises delivery; delivered is the newest version handed to
	// subscribers. Guarded by pubMu.
	pubMu     sync.Mutex
	delivered uint64
}

// New creates an idle hook. name is only used in log lines.
func New[T any](name string, logger *slog.Logger) *Hook[T] {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hook[T]{
		name:   name,
		logger: logger,
		subs:   make(map[int]func(State[T])),
	}
}

// State returns a snapshot of the current state.
func (h *Hook[T]) State() State[T] {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Subscribe registers fn to receive a snapshot after every transition.
// Snapshots arrive one at a time and never older than one already delivered,
// so the last snapshot fn sees is the hook's current state. fn must not
// trigger the same hook synchronously. The returned func removes the
// subscription.
func (h *Hook[T]) Subscribe(fn func(State[T])) (unsubscribe func()) {
	h.mu.Lock()
	id := h.nextSub
	h.nextSub++
	h.subs[id] = fn
	h.mu.Unlock()

	return func() {
		h.mu.Lock()
		delete(h.subs, id)
		h.mu.Unlock()
	}
}

// Close detaches the hook. Calls in flight still return to their callers but
// no longer touch state, and later Runs fail with ErrClosed.
func (h *Hook[T]) Close() {
	h.mu.Lock()
	h.closed = true
	h.subs = make(map[int]func(State[T]))
	h.mu.Unlock()
}

// Run is the trigger: it marks the hook loading, calls fn, and settles the
// state with the outcome unless a newer Run has started in the meantime.
func (h *Hook[T]) Run(ctx context.Context, fn func(ctx context.Context) (*T, error)) (*T, error) {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return nil, ErrClosed
	}
	h.seq++
	seq := h.seq
	h.state.IsLoading = true
	h.state.Err = nil
	v, snap, subs := h.transition()
	h.mu.Unlock()
	h.publish(v, subs, snap)

	resp, err := fn(ctx)

	h.mu.Lock()
	if h.closed || seq != h.seq {
		latest, closed := h.seq, h.closed
		h.mu.Unlock()
		h.logger.Debug("discarding stale completion", "hook", h.name, "seq", seq, "latest", latest, "closed", closed)
		return settle(resp, err)
	}
	h.state.IsLoading = false
	if err != nil {
		h.state.Err = err
	} else {
		h.state.Data = resp
	}
	v, snap, subs = h.transition()
	h.mu.Unlock()
	h.publish(v, subs, snap)

	return settle(resp, err)
}

// Reset returns the hook to Idle. A call in flight is treated as stale.
func (h *Hook[T]) Reset() {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return
	}
	h.seq++
	h.state = State[T]{}
	v, snap, subs := h.transition()
	h.mu.Unlock()
	h.publish(v, subs, snap)
}

// transition stamps the current state with a new version and returns it
// with the subscribers to notify. Must be called with mu held.
func (h *Hook[T]) transition() (uint64, State[T], []func(State[T])) {
	h.version++
	subs := make([]func(State[T]), 0, len(h.subs))
	for _, fn := range h.subs {
		subs = append(subs, fn)
	}
	return h.version, h.state, subs
}

// publish delivers snap unless a newer version already went out.
func (h *Hook[T]) publish(version uint64, subs []func(State[T]), snap State[T]) {
	h.pubMu.Lock()
	defer h.pubMu.Unlock()
	if version <= h.delivered {
		return
	}
	h.delivered = version
	for _, fn := range subs {
		fn(snap)
	}
}

func settle[T any](resp *T, err error) (*T, error) {
	if err != nil {
		return nil, err
	}
	return resp, nil
}
