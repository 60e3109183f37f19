package render

import (
	"errors"
	"testing"
)

func fiveURLs() []string {
	return []string{
		"https://example.com/0",
		"https://example.com/1",
		"https://example.com/2",
		"https://example.com/3",
		"https://example.com/4",
	}
}

func TestSelection_Wraps(t *testing.T) {
	s := NewSelection(fiveURLs(), nil)

	s.Select(4)
	_, _ = s.Handle(ArrowDown)
	if s.Index() != 0 {
		t.Errorf("ArrowDown from 4: got %d, want 0", s.Index())
	}

	_, _ = s.Handle(ArrowUp)
	if s.Index() != 4 {
		t.Errorf("ArrowUp from 0: got %d, want 4", s.Index())
	}

	_, _ = s.Handle(ArrowUp)
	if s.Index() != 3 {
		t.Errorf("ArrowUp from 4: got %d, want 3", s.Index())
	}
}

func TestSelection_NoSelectionStart(t *testing.T) {
	s := NewSelection(fiveURLs(), nil)
	if s.Index() != -1 {
		t.Fatalf("expected no selection initially")
	}
	_, _ = s.Handle(ArrowDown)
	if s.Index() != 0 {
		t.Errorf("first ArrowDown should select 0, got %d", s.Index())
	}

	s.Reset(fiveURLs())
	_, _ = s.Handle(ArrowUp)
	if s.Index() != 4 {
		t.Errorf("first ArrowUp should select the last row, got %d", s.Index())
	}
}

func TestSelection_EnterOpens(t *testing.T) {
	var opened []string
	s := NewSelection(fiveURLs(), OpenerFunc(func(u string) error {
		opened = append(opened, u)
		return nil
	}))

	if u, err := s.Handle(Enter); err != nil || u != "" {
		t.Errorf("Enter without selection should do nothing, got %q %v", u, err)
	}

	s.Select(2)
	u, err := s.Handle(Enter)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if u != "https://example.com/2" || len(opened) != 1 || opened[0] != u {
		t.Errorf("expected row 2 to be opened, got %q %v", u, opened)
	}
}

func TestSelection_OpenError(t *testing.T) {
	boom := errors.New("no browser")
	s := NewSelection(fiveURLs(), OpenerFunc(func(string) error { return boom }))
	s.Select(0)
	if _, err := s.Handle(Enter); !errors.Is(err, boom) {
		t.Errorf("expected opener error, got %v", err)
	}

	s = NewSelection(fiveURLs(), nil)
	s.Select(0)
	if _, err := s.Handle(Enter); err == nil {
		t.Errorf("expected error without opener")
	}
}

func TestSelection_Empty(t *testing.T) {
	s := NewSelection(nil, nil)
	_, _ = s.Handle(ArrowDown)
	_, _ = s.Handle(ArrowUp)
	if s.Index() != -1 {
		t.Errorf("empty selection must stay unselected")
	}
}

func TestParseKey(t *testing.T) {
	tests := map[string]Key{
		"j":      ArrowDown,
		"\x1b[B": ArrowDown,
		"K":      ArrowUp,
		"up":     ArrowUp,
		"":       Enter,
		"enter":  Enter,
		"x":      KeyNone,
	}
	for in, want := range tests {
		if got := ParseKey(in); got != want {
			t.Errorf("ParseKey(%q) = %v, want %v", in, got, want)
		}
	}
}
