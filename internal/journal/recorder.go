package journal

import (
	"context"
	"log/slog"
	"time"

	"github.com/FranksOps/puresearch/internal/api"
)

var _ api.Observer = (*Recorder)(nil)

// Recorder writes every observed call to a Backend. Save failures are logged
// and never reach the caller of the API.
type Recorder struct {
	backend Backend
	timeout time.Duration
	logger  *slog.Logger
}

func NewRecorder(backend Backend, logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Recorder{backend: backend, timeout: 5 * time.Second, logger: logger}
}

func (r *Recorder) ObserveCall(ctx context.Context, call api.Call) {
	// The record is written even when the call was cancelled.
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
	defer cancel()

	if err := r.backend.Save(ctx, FromCall(call)); err != nil {
		r.logger.Warn("failed to journal api call", "op", call.Op, "id", call.ID, "err", err)
	}
}
