package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/FranksOps/puresearch/internal/api"
	"github.com/FranksOps/puresearch/internal/config"
	"github.com/FranksOps/puresearch/internal/extract"
	"github.com/FranksOps/puresearch/internal/journal"
	"github.com/FranksOps/puresearch/internal/journal/csvbackend"
	"github.com/FranksOps/puresearch/internal/journal/jsonbackend"
	"github.com/FranksOps/puresearch/internal/journal/postgres"
	"github.com/FranksOps/puresearch/internal/journal/sqlite"
	"github.com/FranksOps/puresearch/internal/logging"
	"github.com/FranksOps/puresearch/internal/metrics"
	"github.com/FranksOps/puresearch/internal/page"
	"github.com/FranksOps/puresearch/internal/pipeline"
	"github.com/FranksOps/puresearch/internal/render"
	"github.com/FranksOps/puresearch/internal/transport"
)

var errNoJournal = errors.New("no journal configured; set journal.backend and journal.dsn")

// app holds what the subcommands share. Everything is built on first use and
// released by close.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	// opener handles Enter in interactive search; nil means the browser.
	opener render.Opener

	cfg    *config.Config
	logger *slog.Logger

	client  *api.Client
	session *page.Session
	backend journal.Backend
	metrics *metrics.Server
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut, logger: slog.Default()}
}

// init loads configuration and installs the logger.
func (a *app) init(cfg *config.Config) error {
	logger, err := logging.New(cfg.Log.Level, cfg.Log.Format, a.errOut)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	a.cfg, a.logger = cfg, logger
	return nil
}

// journalBackend opens the configured journal, or returns nil when none is
// configured.
func (a *app) journalBackend(ctx context.Context) (journal.Backend, error) {
	if a.backend != nil || a.cfg.Journal.Backend == config.JournalNone {
		return a.backend, nil
	}

	var (
		b   journal.Backend
		err error
	)
	dsn := a.cfg.Journal.DSN
	switch a.cfg.Journal.Backend {
	case config.JournalSQLite:
		b, err = sqlite.New(dsn)
	case config.JournalPostgres:
		b, err = postgres.New(ctx, dsn)
	case config.JournalJSON:
		b, err = jsonbackend.New(dsn)
	case config.JournalCSV:
		b, err = csvbackend.New(dsn)
	default:
		err = fmt.Errorf("unknown journal backend %q", a.cfg.Journal.Backend)
	}
	if err != nil {
		return nil, fmt.Errorf("context: open %s journal: %w", a.cfg.Journal.Backend, err)
	}
	a.backend = b
	return b, nil
}

// observers wires metrics and the journal into the API client.
func (a *app) observers(ctx context.Context) ([]api.Observer, error) {
	var obs []api.Observer
	if a.cfg.Metrics.Port > 0 {
		if a.metrics == nil {
			a.metrics = metrics.Start(a.cfg.Metrics.Port, a.logger)
			a.logger.Info("serving metrics", "port", a.cfg.Metrics.Port)
		}
		obs = append(obs, metrics.Observer)
	}
	b, err := a.journalBackend(ctx)
	if err != nil {
		return nil, err
	}
	if b != nil {
		obs = append(obs, journal.NewRecorder(b, a.logger))
	}
	return obs, nil
}

func (a *app) apiClient(ctx context.Context) (*api.Client, error) {
	if a.client != nil {
		return a.client, nil
	}
	obs, err := a.observers(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := transport.ParseProfile(a.cfg.API.TLSProfile)
	if err != nil {
		return nil, err
	}
	c, err := api.New(api.Config{
		BaseURL:            a.cfg.API.BaseURL,
		Timeout:            a.cfg.API.Timeout,
		TLSProfile:         profile,
		InsecureSkipVerify: a.cfg.API.InsecureSkipVerify,
		UserAgent:          a.cfg.API.UserAgent,
		Observers:          obs,
		Logger:             a.logger,
	})
	if err != nil {
		return nil, err
	}
	a.client = c
	return c, nil
}

// mountSession returns the mounted page session for this invocation.
func (a *app) mountSession(ctx context.Context, theme page.Theme) (*page.Session, error) {
	if a.session != nil {
		return a.session, nil
	}
	c, err := a.apiClient(ctx)
	if err != nil {
		return nil, err
	}
	s := page.NewSession(c, theme, a.logger)
	if err := s.Mount(); err != nil {
		return nil, err
	}
	a.session = s
	return s, nil
}

func (a *app) pipeline(ctx context.Context) (*pipeline.Pipeline, error) {
	c, err := a.apiClient(ctx)
	if err != nil {
		return nil, err
	}
	profile, err := transport.ParseProfile(a.cfg.API.TLSProfile)
	if err != nil {
		return nil, err
	}
	fetcher, err := extract.NewFetcher(extract.FetchConfig{
		Timeout:   a.cfg.API.Timeout,
		UserAgent: a.cfg.Index.UserAgent,
		Profile:   profile,
	})
	if err != nil {
		return nil, err
	}
	return pipeline.New(c, fetcher, pipeline.Config{
		Concurrency:       a.cfg.Index.Concurrency,
		RespectRobots:     a.cfg.Index.RespectRobots,
		RequestsPerSecond: a.cfg.Index.RequestsPerSecond,
		Jitter:            a.cfg.Index.Jitter,
		Logger:            a.logger,
	}), nil
}

func (a *app) close() {
	if a.session != nil {
		a.session.Unmount()
	}
	if a.metrics != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := a.metrics.Stop(ctx); err != nil {
			a.logger.Warn("failed to stop metrics server", "err", err)
		}
	}
	if a.backend != nil {
		if err := a.backend.Close(); err != nil {
			a.logger.Warn("failed to close journal", "err", err)
		}
	}
}
