// Package journal is an append-only log of backend API calls, kept for
// diagnostics. Nothing reads it back to restore client state.
package journal

import (
	"context"
	"time"

	"github.com/FranksOps/puresearch/internal/api"
)

// Record is the outcome of one API call.
type Record struct {
	ID         string        `json:"id"` // X-Request-ID of the call
	Op         string        `json:"op"`
	Target     string        `json:"target"`
	StatusCode int           `json:"status_code"`
	Outcome    string        `json:"outcome"` // "ok" or the error kind
	Error      string        `json:"error,omitempty"`
	Duration   time.Duration `json:"duration"`
	CreatedAt  time.Time     `json:"created_at"`
}

// Failed reports whether the call ended in an error.
func (r *Record) Failed() bool { return r.Outcome != "ok" }

// FromCall converts an observed call.
func FromCall(call api.Call) *Record {
	r := &Record{
		ID:         call.ID,
		Op:         string(call.Op),
		Target:     call.Target,
		StatusCode: call.Status,
		Outcome:    call.Outcome(),
		Duration:   call.Duration,
		CreatedAt:  call.StartedAt,
	}
	if call.Err != nil {
		r.Error = call.Err.Error()
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	return r
}

// Filter allows querying for specific Records.
type Filter struct {
	Op     string
	Target string
	Failed *bool
	Since  *time.Time
	Limit  int
	Offset int
}

// Match applies every filter except Limit and Offset.
func (f Filter) Match(r *Record) bool {
	if f.Op != "" && r.Op != f.Op {
		return false
	}
	if f.Target != "" && r.Target != f.Target {
		return false
	}
	if f.Failed != nil && r.Failed() != *f.Failed {
		return false
	}
	if f.Since != nil && r.CreatedAt.Before(*f.Since) {
		return false
	}
	return true
}

// Window orders records newest first, then applies Offset and Limit. File
// backends use it; SQL backends do the same in the query.
func (f Filter) Window(records []*Record) []*Record {
	for i, j := 0, len(records)-1; i < j; i, j = i+1, j-1 {
		records[i], records[j] = records[j], records[i]
	}

	if f.Offset > 0 {
		if f.Offset >= len(records) {
			return []*Record{}
		}
		records = records[f.Offset:]
	}

	if f.Limit > 0 && f.Limit < len(records) {
		records = records[:f.Limit]
	}
	return records
}

// Backend defines the interface for storing and querying call records.
type Backend interface {
	Save(ctx context.Context, record *Record) error
	Query(ctx context.Context, filter Filter) ([]*Record, error)
	Close() error
}
