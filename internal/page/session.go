package page

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/FranksOps/puresearch/internal/api"
	"github.com/FranksOps/puresearch/internal/hook"
)

// Theme is the colour scheme preference.
type Theme string

const (
	ThemeSystem Theme = "system"
	ThemeLight  Theme = "light"
	ThemeDark   Theme = "dark"
)

func ParseTheme(s string) (Theme, error) {
	switch t := Theme(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return ThemeSystem, nil
	case ThemeSystem, ThemeLight, ThemeDark:
		return t, nil
	default:
		return "", fmt.Errorf("unknown theme %q", s)
	}
}

var ErrNotMounted = errors.New("session is not mounted")

// Session is the ambient state shared by the pages of one front end: the
// theme and one hook per operation. Hooks exist between Mount and Unmount.
type Session struct {
	svc    api.Service
	logger *slog.Logger

	mu         sync.Mutex
	theme      Theme
	mounted    bool
	search     *hook.Search
	classifier *hook.Classifier
	crawler    *hook.Crawler
	indexer    *hook.Indexer
}

func NewSession(svc api.Service, theme Theme, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	if theme == "" {
		theme = ThemeSystem
	}
	return &Session{svc: svc, theme: theme, logger: logger}
}

// Mount creates the session's hooks. Mounting twice is an error.
func (s *Session) Mount() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.mounted {
		return errors.New("session already mounted")
	}
	s.search = hook.NewSearch(s.svc, s.logger)
	s.classifier = hook.NewClassifier(s.svc, s.logger)
	s.crawler = hook.NewCrawler(s.svc, s.logger)
	s.indexer = hook.NewIndexer(s.svc, s.logger)
	s.mounted = true
	return nil
}

// Unmount closes every hook; completions still in flight are discarded.
func (s *Session) Unmount() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return
	}
	s.search.Close()
	s.classifier.Close()
	s.crawler.Close()
	s.indexer.Close()
	s.search, s.classifier, s.crawler, s.indexer = nil, nil, nil, nil
	s.mounted = false
}

func (s *Session) SearchPage(perPage int) (*SearchPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil, ErrNotMounted
	}
	return NewSearchPage(s.search, perPage), nil
}

func (s *Session) CrawlerPage(opts CrawlerOptions) (*CrawlerPage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil, ErrNotMounted
	}
	if opts.Logger == nil {
		opts.Logger = s.logger
	}
	return NewCrawlerPage(s.crawler, opts), nil
}

func (s *Session) Classifier() (*hook.Classifier, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil, ErrNotMounted
	}
	return s.classifier, nil
}

func (s *Session) Indexer() (*hook.Indexer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.mounted {
		return nil, ErrNotMounted
	}
	return s.indexer, nil
}

func (s *Session) Theme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.theme
}

func (s *Session) SetTheme(t Theme) {
	s.mu.Lock()
	s.theme = t
	s.mu.Unlock()
}

// ToggleTheme flips between light and dark; system switches to dark.
func (s *Session) ToggleTheme() Theme {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.theme == ThemeDark {
		s.theme = ThemeLight
	} else {
		s.theme = ThemeDark
	}
	return s.theme
}
