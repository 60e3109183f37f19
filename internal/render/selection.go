package render

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
)

// Key is a navigation keystroke.
type Key int

const (
	KeyNone Key = iota
	ArrowDown
	ArrowUp
	Enter
)

// ParseKey maps terminal input to a Key. Arrow escape sequences and the vi
// keys j/k are both understood.
func ParseKey(s string) Key {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "j", "down", "\x1b[b":
		return ArrowDown
	case "k", "up", "\x1b[a":
		return ArrowUp
	case "", "enter", "o":
		return Enter
	default:
		return KeyNone
	}
}

// Opener opens a URL in a new browsing context.
type Opener interface {
	Open(url string) error
}

// OpenerFunc adapts a function to Opener.
type OpenerFunc func(url string) error

func (f OpenerFunc) Open(url string) error { return f(url) }

// BrowserOpener hands URLs to the platform's default browser.
type BrowserOpener struct {
	Ctx context.Context
}

func (b BrowserOpener) Open(url string) error {
	ctx := b.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	var cmd *exec.Cmd
	switch runtime.GOOS {
	case "darwin":
		cmd = exec.CommandContext(ctx, "open", url)
	case "windows":
		cmd = exec.CommandContext(ctx, "rundll32", "url.dll,FileProtocolHandler", url)
	default:
		cmd = exec.CommandContext(ctx, "xdg-open", url)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("context: %w", err)
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

// Selection is a cursor over a rendered list. Moving past either end wraps
// around. -1 means nothing is selected.
type Selection struct {
	urls   []string
	index  int
	opener Opener
}

func NewSelection(urls []string, opener Opener) *Selection {
	return &Selection{urls: urls, index: -1, opener: opener}
}

// Index returns the selected row, or -1.
func (s *Selection) Index() int { return s.index }

// Len returns the number of rows.
func (s *Selection) Len() int { return len(s.urls) }

// Reset replaces the rows and clears the cursor.
func (s *Selection) Reset(urls []string) {
	s.urls = urls
	s.index = -1
}

// Select moves the cursor to i. Out-of-range values clear it.
func (s *Selection) Select(i int) {
	if i < 0 || i >= len(s.urls) {
		s.index = -1
		return
	}
	s.index = i
}

// Handle applies key. On Enter with a selected row it opens the row's URL and
// returns it.
func (s *Selection) Handle(key Key) (opened string, err error) {
	n := len(s.urls)
	if n == 0 {
		return "", nil
	}

	switch key {
	case ArrowDown:
		s.index = (s.index + 1) % n
	case ArrowUp:
		if s.index <= 0 {
			s.index = n - 1
		} else {
			s.index--
		}
	case Enter:
		if s.index < 0 {
			return "", nil
		}
		u := s.urls[s.index]
		if s.opener == nil {
			return "", fmt.Errorf("no opener configured")
		}
		if err := s.opener.Open(u); err != nil {
			return "", fmt.Errorf("open %s: %w", u, err)
		}
		return u, nil
	}
	return "", nil
}
