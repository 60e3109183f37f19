package metrics

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/FranksOps/puresearch/internal/api"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puresearch_api_requests_total",
			Help: "Total number of backend API calls by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "puresearch_api_request_duration_seconds",
			Help:    "Duration of backend API calls in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
		[]string{"op"},
	)

	APIResponseStatus = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puresearch_api_response_status_total",
			Help: "HTTP status codes returned by the backend",
		},
		[]string{"op", "status"},
	)

	CrawlPollsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "puresearch_crawl_polls_total",
			Help: "Total number of crawl status polls by reported state",
		},
		[]string{"state"},
	)
)

// RecordCall updates the metrics for one finished API call.
func RecordCall(call api.Call) {
	op := string(call.Op)
	APIRequestsTotal.WithLabelValues(op, call.Outcome()).Inc()
	APIRequestDuration.WithLabelValues(op).Observe(call.Duration.Seconds())
	if call.Status > 0 {
		APIResponseStatus.WithLabelValues(op, strconv.Itoa(call.Status)).Inc()
	}
}

// RecordCrawlPoll counts one status poll.
func RecordCrawlPoll(st api.CrawlStatus) {
	state := string(st.Status)
	if state == "" {
		state = "unknown"
	}
	CrawlPollsTotal.WithLabelValues(state).Inc()
}

// Observer feeds API calls into the collectors.
var Observer api.Observer = api.ObserverFunc(func(_ context.Context, call api.Call) {
	RecordCall(call)
})

// Server encapsulates an HTTP server for Prometheus metrics.
type Server struct {
	srv *http.Server
}

// Start begins listening on the specified port and exposes /metrics.
func Start(port int, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		// Suppress the error from intentional shutdown
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("metrics server failed", "port", port, "err", err)
		}
	}()

	return &Server{srv: srv}
}

// Stop gracefully shuts down the metrics server.
func (s *Server) Stop(ctx context.Context) error {
	if s.srv == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.srv.Shutdown(ctx)
}
